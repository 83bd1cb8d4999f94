package redis

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koineramitranjan/threads/pkg/adapters/process"
	"github.com/koineramitranjan/threads/pkg/ports"
)

func newTestClient(t *testing.T) *backend.Client {
	t.Helper()
	srv := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestAllocator_Contract(t *testing.T) {
	alloc := NewAllocator(newTestClient(t))
	ports.RunPortAllocatorContract(t, alloc, process.DefaultBasePort)
}

func TestAllocator_CustomBaseAndKey(t *testing.T) {
	alloc := NewAllocator(newTestClient(t), WithBase(7000), WithKey("custom:counter"))
	ports.RunPortAllocatorContract(t, alloc, 7000)
}

func TestAllocator_SharedAcrossClients(t *testing.T) {
	srv := miniredis.RunT(t)
	clientA := backend.NewClient(&backend.Options{Addr: srv.Addr()})
	clientB := backend.NewClient(&backend.Options{Addr: srv.Addr()})
	t.Cleanup(func() {
		_ = clientA.Close()
		_ = clientB.Close()
	})

	allocA := NewAllocator(clientA)
	allocB := NewAllocator(clientB)

	seen := map[int]bool{}
	for i := 0; i < 10; i++ {
		a, b := allocA.Next(), allocB.Next()
		assert.False(t, seen[a], "port %d handed out twice", a)
		assert.False(t, seen[b], "port %d handed out twice", b)
		seen[a], seen[b] = true, true
	}
	assert.Len(t, seen, 20)
}

func TestAllocator_FallsBackWhenRedisDown(t *testing.T) {
	srv := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	alloc := NewAllocator(client)
	require.Equal(t, process.DefaultBasePort, alloc.Next())

	srv.Close()

	// Allocation must still make progress on the local counter.
	first := alloc.Next()
	second := alloc.Next()
	assert.GreaterOrEqual(t, first, process.DefaultBasePort)
	assert.Equal(t, first+1, second)
}
