package main

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"

	"github.com/vitrine-app/vitrine/client"
	"github.com/vitrine-app/vitrine/internal/devicecache"
	"github.com/vitrine-app/vitrine/internal/health"
	"github.com/vitrine-app/vitrine/internal/localstate"
	"github.com/vitrine-app/vitrine/internal/selector"
	"github.com/vitrine-app/vitrine/internal/shardqueue"
)

// session is one signed-in selector backed by the service and a device cache.
type session struct {
	client *client.Client
	sel    *selector.Selector
	closer io.Closer
}

// openSession resolves the active collection for --user.
func (f *flags) openSession(ctx context.Context, stderr io.Writer) (*session, error) {
	if err := f.requireUser(); err != nil {
		return nil, err
	}
	cache, closer, err := f.openCache(ctx)
	if err != nil {
		return nil, err
	}
	qcfg, err := shardqueue.LoadConfig()
	if err != nil {
		if closer != nil {
			_ = closer.Close()
		}
		return nil, fmt.Errorf("persist config: %w", err)
	}
	c := f.newClient(stderr)
	s := &session{client: c, sel: selector.New(c, c, cache, selector.WithQueueConfig(qcfg)), closer: closer}

	id, err := c.Identity(ctx, f.user)
	if err != nil {
		_ = s.Close(ctx)
		return nil, fmt.Errorf("sign in %s: %w", f.user, err)
	}
	if err := s.sel.OnIdentityChanged(ctx, id); err != nil {
		_ = s.Close(ctx)
		return nil, err
	}
	return s, nil
}

// Close flushes pending preference writes before releasing the cache.
func (s *session) Close(ctx context.Context) error {
	if err := s.sel.Wait(ctx); err != nil {
		log.Warn().Err(err).Msg("Pending preference writes did not finish")
	}
	_ = s.sel.Close()
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

// openCache opens the --cache backend and checks that it answers.
func (f *flags) openCache(ctx context.Context) (devicecache.Cache, io.Closer, error) {
	cache, closer, err := f.dialCache(ctx)
	if err != nil {
		return nil, nil, err
	}
	if err := pingCache(ctx, cache, closer); err != nil {
		return nil, nil, err
	}
	return cache, closer, nil
}

// pingCache releases the cache when it does not answer its health ping.
func pingCache(ctx context.Context, cache devicecache.Cache, closer io.Closer) error {
	p, ok := cache.(health.HealthPinger)
	if !ok {
		return nil
	}
	if err := p.HealthPing(ctx); err != nil {
		if closer != nil {
			_ = closer.Close()
		}
		return fmt.Errorf("device cache: %w", err)
	}
	return nil
}

func (f *flags) dialCache(ctx context.Context) (devicecache.Cache, io.Closer, error) {
	switch f.cache {
	case "memory":
		return devicecache.NewMemory(), nil, nil
	case "redis":
		r, err := devicecache.DialRedis(ctx, f.redisAddr, f.cacheTTL)
		if err != nil {
			return nil, nil, fmt.Errorf("device cache: %w", err)
		}
		return r, r, nil
	case "sqlite", "":
		path := f.cachePath
		if path == "" {
			p, err := localstate.DBPath()
			if err != nil {
				return nil, nil, err
			}
			path = p
		}
		c, err := devicecache.OpenSQLite(ctx, path)
		if err != nil {
			return nil, nil, fmt.Errorf("device cache: %w", err)
		}
		return c, c, nil
	default:
		return nil, nil, fmt.Errorf("unknown --cache %q (want sqlite, redis or memory)", f.cache)
	}
}
