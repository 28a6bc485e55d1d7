package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitrine-app/vitrine/internal/api"
	"github.com/vitrine-app/vitrine/internal/auth"
	"github.com/vitrine-app/vitrine/internal/devicecache"
	"github.com/vitrine-app/vitrine/internal/health"
	"github.com/vitrine-app/vitrine/internal/model"
	"github.com/vitrine-app/vitrine/internal/notify"
	"github.com/vitrine-app/vitrine/internal/selector"
	"github.com/vitrine-app/vitrine/internal/services"
	"github.com/vitrine-app/vitrine/internal/store/sqlite"
)

const testKey = "ctl-key"

type harness struct {
	t   *testing.T
	url string
	dir string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	st, db, err := sqlite.OpenStore(context.Background(), filepath.Join(dir, "svc.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	srv := httptest.NewServer(api.NewRouter(api.Deps{
		Users:       services.NewUserService(st),
		Collections: services.NewCollectionService(st, &notify.Recorder{}),
		Preferences: services.NewPreferenceService(st),
		Authorizer:  auth.NewDevAuthorizer(testKey, st.Users()),
		IsHealthy:   func() bool { return true },
	}))
	t.Cleanup(srv.Close)
	return &harness{t: t, url: srv.URL, dir: dir}
}

// run executes the CLI and returns stdout.
func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--api", h.url, "--key", testKey}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func (h *harness) mustRun(v interface{}, args ...string) {
	h.t.Helper()
	out, err := h.run(args...)
	require.NoError(h.t, err, out)
	if v != nil {
		require.NoError(h.t, json.Unmarshal([]byte(out), v), out)
	}
}

func TestCollectionctlFlow(t *testing.T) {
	h := newHarness(t)
	laptop := filepath.Join(h.dir, "laptop.db")
	phone := filepath.Join(h.dir, "phone.db")

	var u model.User
	h.mustRun(&u, "users", "create", "--id", "alice", "--email", "alice@example.com")
	assert.Equal(t, "alice", u.UserID)
	h.mustRun(nil, "users", "create", "--id", "bob", "--email", "bob@example.com")

	var watches, purses model.Collection
	h.mustRun(&watches, "--user", "alice", "create", "--name", "Watches", "--kind", "watches")
	h.mustRun(&purses, "--user", "alice", "create", "--name", "Purses", "--kind", "purses")

	var list []model.AccessibleCollection
	h.mustRun(&list, "--user", "alice", "collections")
	require.Len(t, list, 2)
	assert.Equal(t, "Purses", list[0].Name)

	var v activeView
	h.mustRun(&v, "--user", "alice", "--cache-path", laptop, "use", watches.CollectionID)
	assert.Equal(t, selector.RuleExplicit, v.Rule)
	assert.Equal(t, model.KindWatches, v.KindConfig.Kind)

	v = activeView{}
	h.mustRun(&v, "--user", "alice", "--cache-path", phone, "active")
	require.NotNil(t, v.Active)
	assert.Equal(t, watches.CollectionID, v.Active.CollectionID)
	assert.Equal(t, selector.RuleCrossDevice, v.Rule)

	_, err := h.run("--user", "bob", "--cache", "memory", "use", watches.CollectionID)
	assert.Error(t, err, "bob has no grant yet")

	var g model.AccessGrant
	h.mustRun(&g, "--user", "alice", "grant", purses.CollectionID, "bob", "--role", "viewer")
	assert.Equal(t, model.RoleViewer, g.Role)
	v = activeView{}
	h.mustRun(&v, "--user", "bob", "--cache", "memory", "active")
	require.NotNil(t, v.Active)
	assert.Equal(t, purses.CollectionID, v.Active.CollectionID)
	assert.Equal(t, "Purse", v.KindConfig.Singular)

	h.mustRun(nil, "--user", "alice", "revoke", purses.CollectionID, "bob")
	v = activeView{}
	h.mustRun(&v, "--user", "bob", "--cache", "memory", "refetch")
	assert.Nil(t, v.Active)
	assert.Equal(t, model.DefaultKind, v.KindConfig.Kind)
}

func TestCommandErrors(t *testing.T) {
	h := newHarness(t)
	_, err := h.run("collections")
	assert.ErrorContains(t, err, "--user required")

	_, err = h.run("--user", "ghost", "--cache", "memory", "active")
	assert.Error(t, err)

	_, err = h.run("--user", "x", "--cache", "floppy", "active")
	assert.ErrorContains(t, err, "unknown --cache")
}

type deadCache struct {
	*devicecache.Memory
	closed bool
}

func (d *deadCache) HealthPing(context.Context) error { return errors.New("connection refused") }
func (d *deadCache) Close() error                     { d.closed = true; return nil }

func TestUnreachableCacheIsReleased(t *testing.T) {
	ctx := context.Background()
	dead := &deadCache{Memory: devicecache.NewMemory()}
	err := pingCache(ctx, dead, dead)
	assert.ErrorContains(t, err, "device cache: connection refused")
	assert.True(t, dead.closed)

	require.NoError(t, pingCache(ctx, devicecache.NewMemory(), nil), "caches without a ping are accepted")

	f := &flags{cache: "sqlite", cachePath: filepath.Join(t.TempDir(), "cache.db")}
	cache, closer, err := f.openCache(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = closer.Close() })
	_, ok := cache.(health.HealthPinger)
	assert.True(t, ok)
}
