package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, lister Lister) *httptest.Server {
	t.Helper()
	reg := prometheus.NewRegistry()
	gauge := prometheus.NewGauge(prometheus.GaugeOpts{Name: "threads_workers_live"})
	reg.MustRegister(gauge)
	gauge.Set(2)

	srv := httptest.NewServer(NewHandler(lister, reg))
	t.Cleanup(srv.Close)
	return srv
}

func TestHandler_Healthz(t *testing.T) {
	srv := newTestServer(t, ListerFunc(func() []WorkerInfo { return nil }))

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "ok", string(body))
}

func TestHandler_WorkersSnapshot(t *testing.T) {
	srv := newTestServer(t, ListerFunc(func() []WorkerInfo {
		return []WorkerInfo{
			{ID: "w-1", State: "running", Transport: "thread"},
			{ID: "w-2", State: "idle", Transport: "process"},
		}
	}))

	resp, err := http.Get(srv.URL + "/workers")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var workers []WorkerInfo
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&workers))
	require.Len(t, workers, 2)
	assert.Equal(t, "w-1", workers[0].ID)
	assert.Equal(t, "process", workers[1].Transport)
}

func TestHandler_WorkersEmptyIsArray(t *testing.T) {
	srv := newTestServer(t, ListerFunc(func() []WorkerInfo { return nil }))

	resp, err := http.Get(srv.URL + "/workers")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "[]", strings.TrimSpace(string(body)))
}

func TestHandler_Metrics(t *testing.T) {
	srv := newTestServer(t, ListerFunc(func() []WorkerInfo { return nil }))

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "threads_workers_live 2")
}
