package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthAndLive(t *testing.T) {
	s := NewServer(Config{ServiceName: "line-monitor", Version: "1.2.0", Port: "0"})

	rec := get(t, s.Handler(), "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	var resp Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "line-monitor", resp.Service)
	assert.Equal(t, "1.2.0", resp.Version)

	assert.Equal(t, http.StatusOK, get(t, s.Handler(), "/live").Code)
}

func TestReadyReportsEachCheck(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	s := NewServer(Config{
		ServiceName: "line-monitor",
		Port:        "0",
		Checks: map[string]Checker{
			"redis":    RedisChecker(client),
			"database": CheckerFunc(func(context.Context) error { return errors.New("connection refused") }),
		},
	})
	s.SetReady(true)

	rec := get(t, s.Handler(), "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var resp Readiness
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "not_ready", resp.Status)
	assert.Equal(t, "ok", resp.Checks["redis"])
	assert.Contains(t, resp.Checks["database"], "connection refused")
}

func TestReadyRequiresSetReady(t *testing.T) {
	s := NewServer(Config{ServiceName: "predict", Port: "0"})
	assert.Equal(t, http.StatusServiceUnavailable, get(t, s.Handler(), "/ready").Code)

	s.SetReady(true)
	assert.Equal(t, http.StatusOK, get(t, s.Handler(), "/ready").Code)
}

func TestReadyWithoutChecks(t *testing.T) {
	s := NewServer(Config{ServiceName: "predict", Port: "0"})
	s.SetReady(true)

	rec := get(t, s.Handler(), "/ready")
	var resp Readiness
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Empty(t, resp.Checks)
}

func TestShutdownBeforeStart(t *testing.T) {
	s := NewServer(Config{ServiceName: "predict", Port: "0"})
	assert.NoError(t, s.Shutdown())
}

func TestMetricsEndpoint(t *testing.T) {
	s := NewServer(Config{ServiceName: "predict", Port: "0"})
	assert.Equal(t, http.StatusOK, get(t, s.Handler(), "/metrics").Code)
}
