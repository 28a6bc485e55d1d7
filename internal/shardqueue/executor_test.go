package shardqueue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestFIFOOrderingPerKey(t *testing.T) {
	p := NewShardExecutor(Config{Shards: 4, QueueSize: 16})
	defer p.Stop()

	var (
		mu    sync.Mutex
		order []int
	)
	for i := 0; i < 8; i++ {
		v := i
		require.NoError(t, p.Submit(context.Background(), "user-1", JobFunc(func(context.Context) error {
			mu.Lock()
			order = append(order, v)
			mu.Unlock()
			return nil
		})))
	}
	require.NoError(t, p.Barrier(context.Background(), "user-1"))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7}, order)
}

func TestDifferentKeysRunInParallel(t *testing.T) {
	p := NewShardExecutor(Config{Shards: 2, QueueSize: 4})
	defer p.Stop()

	keyA := "a"
	keyB := "b"
	for tries := 0; tries < 100 && p.shardFor(keyB) == p.shardFor(keyA); tries++ {
		keyB += "x"
	}
	require.NotEqual(t, p.shardFor(keyA), p.shardFor(keyB))

	start := make(chan struct{})
	done := make(chan struct{})
	require.NoError(t, p.Submit(context.Background(), keyA, JobFunc(func(context.Context) error {
		<-start
		close(done)
		return nil
	})))
	require.NoError(t, p.Submit(context.Background(), keyB, JobFunc(func(context.Context) error {
		close(start)
		return nil
	})))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("jobs on different shards blocked each other")
	}
}

func TestRetryUntilSuccess(t *testing.T) {
	p := NewShardExecutor(Config{Shards: 1, MaxAttempts: 3, BaseBackoff: 5 * time.Millisecond})
	defer p.Stop()

	var attempts atomic.Int32
	require.NoError(t, p.Submit(context.Background(), "k", JobFunc(func(context.Context) error {
		if attempts.Add(1) < 3 {
			return errors.New("transient")
		}
		return nil
	})))
	require.NoError(t, p.Barrier(context.Background(), "k"))
	assert.EqualValues(t, 3, attempts.Load())
}

func TestPermanentErrorIsNotRetried(t *testing.T) {
	var handled atomic.Int32
	p := NewShardExecutor(Config{
		Shards:       1,
		MaxAttempts:  5,
		BaseBackoff:  5 * time.Millisecond,
		ErrorHandler: func(error) { handled.Add(1) },
	})
	defer p.Stop()

	var attempts atomic.Int32
	require.NoError(t, p.Submit(context.Background(), "k", JobFunc(func(context.Context) error {
		attempts.Add(1)
		return Permanent(errors.New("bad input"))
	})))
	require.NoError(t, p.Barrier(context.Background(), "k"))
	assert.EqualValues(t, 1, attempts.Load())
	assert.EqualValues(t, 1, handled.Load())
}

func TestPanickingJobDoesNotKillShard(t *testing.T) {
	var handled atomic.Int32
	p := NewShardExecutor(Config{Shards: 1, MaxAttempts: 1, ErrorHandler: func(error) { handled.Add(1) }})
	defer p.Stop()

	require.NoError(t, p.Submit(context.Background(), "k", JobFunc(func(context.Context) error { panic("boom") })))
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, p.Barrier(ctx, "k"), "shard keeps serving after a panic")
	assert.EqualValues(t, 1, handled.Load())
}

func TestCanceledJobIsSkipped(t *testing.T) {
	var handled atomic.Int32
	p := NewShardExecutor(Config{Shards: 1, QueueSize: 2, MaxAttempts: 1, ErrorHandler: func(error) { handled.Add(1) }})
	defer p.Stop()

	release := make(chan struct{})
	started := make(chan struct{})
	require.NoError(t, p.Submit(context.Background(), "k", JobFunc(func(context.Context) error {
		close(started)
		<-release
		return nil
	})))
	<-started

	var ran atomic.Bool
	jobCtx, cancelJob := context.WithCancel(context.Background())
	require.NoError(t, p.Submit(jobCtx, "k", JobFunc(func(context.Context) error {
		ran.Store(true)
		return nil
	})))
	cancelJob()
	close(release)

	require.NoError(t, p.Barrier(context.Background(), "k"))
	assert.False(t, ran.Load())
	assert.EqualValues(t, 1, handled.Load())
}

func TestQueueFull(t *testing.T) {
	p := NewShardExecutor(Config{Shards: 1, QueueSize: 1, EnqueueTimeout: 10 * time.Millisecond})
	defer p.Stop()

	release := make(chan struct{})
	started := make(chan struct{})
	require.NoError(t, p.Submit(context.Background(), "k", JobFunc(func(context.Context) error {
		close(started)
		<-release
		return nil
	})))
	<-started
	require.NoError(t, p.Submit(context.Background(), "k", JobFunc(func(context.Context) error { return nil })))

	err := p.Submit(context.Background(), "k", JobFunc(func(context.Context) error { return nil }))
	assert.ErrorIs(t, err, ErrQueueFull)
	var qf *QueueFullError
	require.ErrorAs(t, err, &qf)
	assert.Equal(t, 1, qf.Capacity)
	close(release)
}

func TestSubmitAfterStop(t *testing.T) {
	p := NewShardExecutor(Config{Shards: 2})
	p.Stop()
	p.Stop()

	assert.ErrorIs(t, p.Submit(context.Background(), "k", JobFunc(func(context.Context) error { return nil })), ErrExecutorClosed)
	assert.ErrorIs(t, p.Barrier(context.Background(), "k"), ErrExecutorClosed)
}

func TestStopDrainsQueuedJobs(t *testing.T) {
	p := NewShardExecutor(Config{Shards: 1, QueueSize: 8})

	var ran atomic.Int32
	for i := 0; i < 5; i++ {
		require.NoError(t, p.Submit(context.Background(), "k", JobFunc(func(context.Context) error {
			ran.Add(1)
			return nil
		})))
	}
	require.NoError(t, p.Close())
	assert.EqualValues(t, 5, ran.Load())
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("VITRINE_PERSIST_SHARDS", "8")
	t.Setenv("VITRINE_PERSIST_MAX_ATTEMPTS", "2")
	t.Setenv("VITRINE_PERSIST_BASE_BACKOFF", "250ms")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Shards)
	assert.Equal(t, 128, cfg.QueueSize)
	assert.Equal(t, 2, cfg.MaxAttempts)
	assert.Equal(t, 250*time.Millisecond, cfg.BaseBackoff)
	assert.Equal(t, 100*time.Millisecond, cfg.EnqueueTimeout)
}
