package health

import (
	"context"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// HealthChecker reports the cached health of one dependency of the service.
// The collection service registers the store checker.
type HealthChecker interface {
	Name() string
	IsHealthy() bool
	Start(ctx context.Context, interval time.Duration)
}

// ServiceHealthChecker folds dependency checkers into the flag served by
// /api/health. The service is up only while every dependency is.
type ServiceHealthChecker struct {
	deps []HealthChecker
	log  zerolog.Logger

	up   atomic.Bool
	mu   sync.Mutex
	down []string
}

func NewServiceHealthChecker(log zerolog.Logger, deps ...HealthChecker) *ServiceHealthChecker {
	return &ServiceHealthChecker{deps: deps, log: log}
}

// IsHealthy is false until the first evaluation has run.
func (h *ServiceHealthChecker) IsHealthy() bool { return h.up.Load() }

// Unhealthy names the dependencies that failed the last evaluation.
func (h *ServiceHealthChecker) Unhealthy() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.down)
}

// Start evaluates the dependencies now and on every tick until ctx is done.
func (h *ServiceHealthChecker) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	h.evaluate()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.evaluate()
		}
	}
}

func (h *ServiceHealthChecker) evaluate() {
	var down []string
	for _, c := range h.deps {
		if !c.IsHealthy() {
			down = append(down, c.Name())
		}
	}

	h.mu.Lock()
	changed := !slices.Equal(down, h.down)
	h.down = down
	h.mu.Unlock()

	was := h.up.Swap(len(down) == 0)
	if !changed && was == (len(down) == 0) {
		return
	}
	if len(down) == 0 {
		h.log.Info().Int("dependencies", len(h.deps)).Msg("service health: UP")
		return
	}
	h.log.Error().Str("unhealthy", strings.Join(down, ",")).Msg("service health: DOWN")
}

// RunProbeLoop runs probe immediately and then on every tick, storing 1 in
// flag when the probe succeeds and 0 otherwise. A non-positive timeout means 2s.
func RunProbeLoop(ctx context.Context, interval, timeout time.Duration, flag *atomic.Int32, probe func(context.Context) bool) {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	check := func() {
		checkCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		if probe(checkCtx) {
			flag.Store(1)
		} else {
			flag.Store(0)
		}
	}

	check()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			check()
		}
	}
}
