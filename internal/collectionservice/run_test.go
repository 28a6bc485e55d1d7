package collectionservice

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitrine-app/vitrine/internal/config"
)

func TestCalculateStartupHealthTimeout(t *testing.T) {
	assert.Equal(t, 60, calculateStartupHealthTimeout(5))
	assert.Equal(t, 60, calculateStartupHealthTimeout(30))
	assert.Equal(t, 90, calculateStartupHealthTimeout(45))
}

type flipReporter struct{ n atomic.Int32 }

func (f *flipReporter) IsHealthy() bool { return f.n.Add(1) > 2 }

func TestWaitUntilHealthy(t *testing.T) {
	cfg := &config.Config{HealthIntervalSeconds: 1}
	require.NoError(t, waitUntilHealthy(context.Background(), cfg, &flipReporter{}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	never := &flipReporter{}
	never.n.Store(-1 << 20)
	assert.ErrorIs(t, waitUntilHealthy(ctx, cfg, never), context.Canceled)
}

func TestStoreAndRouterWiring(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := &config.Config{
		BuildTarget:               "local",
		DBDriver:                  "sqlite",
		SQLitePath:                filepath.Join(t.TempDir(), "svc.db"),
		DevAPIKey:                 "k",
		HealthIntervalSeconds:     1,
		HealthProbeTimeoutSeconds: 1,
	}
	log := zerolog.Nop()
	st, closeStore, err := initStore(ctx, cfg, log)
	require.NoError(t, err)
	defer closeStore()

	svcHealth := startHealthCheckers(ctx, cfg, log, st)
	require.Eventually(t, svcHealth.IsHealthy, 5*time.Second, 20*time.Millisecond)

	srv := httptest.NewServer(buildRouter(st, svcHealth.IsHealthy, cfg, log))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/users/nobody", nil)
	req.Header.Set("Authorization", "Bearer k")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
