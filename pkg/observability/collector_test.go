package observability

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCollector_CountsLifecycleEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	hooks := c.Hooks()

	hooks.OnSpawn("w-1", "thread")
	hooks.OnSpawn("w-2", "process")
	hooks.OnSpawn("w-3", "thread")

	assert.Equal(t, 2.0, testutil.ToFloat64(c.spawned.WithLabelValues("thread")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.spawned.WithLabelValues("process")))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.live))

	hooks.OnMessage("w-1")
	hooks.OnMessage("w-1")
	hooks.OnError("w-2", errors.New("boom"))
	hooks.OnExit("w-2")

	assert.Equal(t, 2.0, testutil.ToFloat64(c.messages))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.errors))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.live))
}

func TestCollector_RegistersWithRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewCollector(reg)

	families, err := reg.Gather()
	assert.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	// Counters without observations are absent until first increment; the
	// gauge is always exported.
	assert.True(t, names["threads_workers_live"])
}
