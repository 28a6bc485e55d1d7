// Package notify carries non-blocking, user-visible warnings out of the
// service and selection layers.
package notify

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

// Warner reports a recoverable problem to the user without interrupting them.
type Warner interface {
	Warn(ctx context.Context, message string, err error)
}

// WarnerFunc adapts a function to Warner.
type WarnerFunc func(ctx context.Context, message string, err error)

func (f WarnerFunc) Warn(ctx context.Context, message string, err error) { f(ctx, message, err) }

// LogWarner writes warnings to the global zerolog logger.
type LogWarner struct{}

func (LogWarner) Warn(_ context.Context, message string, err error) {
	log.Warn().Err(err).Msg(message)
}

// Recorder keeps warnings in memory; handy in tests.
type Recorder struct {
	mu       sync.Mutex
	messages []string
}

func (r *Recorder) Warn(_ context.Context, message string, _ error) {
	r.mu.Lock()
	r.messages = append(r.messages, message)
	r.mu.Unlock()
}

// Messages returns a copy of the recorded warnings.
func (r *Recorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.messages...)
}
