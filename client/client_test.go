package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitrine-app/vitrine/internal/api"
	"github.com/vitrine-app/vitrine/internal/auth"
	"github.com/vitrine-app/vitrine/internal/model"
	"github.com/vitrine-app/vitrine/internal/notify"
	"github.com/vitrine-app/vitrine/internal/selector"
	"github.com/vitrine-app/vitrine/internal/services"
	"github.com/vitrine-app/vitrine/internal/store/sqlite"
)

const testKey = "test-key"

var (
	_ selector.Repository      = (*Client)(nil)
	_ selector.PreferenceStore = (*Client)(nil)
)

// newBackend serves the real router over a temp SQLite store.
func newBackend(t *testing.T) *httptest.Server {
	t.Helper()
	st, db, err := sqlite.OpenStore(context.Background(), filepath.Join(t.TempDir(), "client.db"))
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
	return srv
}

func TestNewPanicsOnMissingArgs(t *testing.T) {
	assert.Panics(t, func() { New("", testKey) })
	assert.Panics(t, func() { New("http://localhost", "") })
	assert.Panics(t, func() { New("http://localhost", testKey, WithRetry(0, time.Millisecond)) })
	assert.Panics(t, func() { New("http://localhost", testKey, WithWarner(nil)) })
}

func TestEndToEndAgainstRouter(t *testing.T) {
	ctx := context.Background()
	c := New(newBackend(t).URL, testKey)

	_, err := c.CreateUser(ctx, CreateUserRequest{UserID: "owner", Email: "owner@example.com"})
	require.NoError(t, err)
	_, err = c.CreateUser(ctx, CreateUserRequest{UserID: "guest", Email: "guest@example.com"})
	require.NoError(t, err)

	_, err = c.CreateUser(ctx, CreateUserRequest{UserID: "owner", Email: "dup@example.com"})
	assert.ErrorIs(t, err, ErrConflict)
	_, err = c.GetUser(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	id, err := c.Identity(ctx, "owner")
	require.NoError(t, err)
	assert.Equal(t, model.Identity{UserID: "owner"}, id)

	col, err := c.CreateCollection(ctx, "owner", "Daily", model.KindWatches)
	require.NoError(t, err)

	_, err = c.GrantAccess(ctx, "guest", col.CollectionID, "guest", model.RoleViewer)
	assert.ErrorIs(t, err, ErrForbidden)
	g, err := c.GrantAccess(ctx, "owner", col.CollectionID, "guest", model.RoleEditor)
	require.NoError(t, err)
	assert.Equal(t, model.RoleEditor, g.Role)

	list, err := c.ListAccessibleCollections(ctx, "guest", false)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Daily", list[0].Name)
	assert.Equal(t, model.RoleEditor, list[0].Role)

	require.NoError(t, c.RevokeAccess(ctx, "owner", col.CollectionID, "guest"))
	list, err = c.ListAccessibleCollections(ctx, "guest", false)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NotNil(t, list)
}

func TestPreferenceRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := New(newBackend(t).URL, testKey)
	_, err := c.CreateUser(ctx, CreateUserRequest{UserID: "alice", Email: "alice@example.com"})
	require.NoError(t, err)

	p, err := c.LoadPreference(ctx, "alice")
	require.NoError(t, err)
	assert.Nil(t, p, "no record yet")

	_, err = c.SaveDefault(ctx, "alice", "c-default")
	require.NoError(t, err)
	p, err = c.SaveLastSelected(ctx, "alice", "c-last")
	require.NoError(t, err)
	assert.Equal(t, "c-default", p.Default())
	assert.Equal(t, "c-last", p.LastSelected())

	p, err = c.LoadPreference(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "c-last", p.LastSelected())

	_, err = c.SaveDefault(ctx, "alice", "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUnknownUserIsUnauthorized(t *testing.T) {
	c := New(newBackend(t).URL, testKey)
	_, err := c.LoadPreference(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrUnauthorized)

	bad := New(newBackend(t).URL, "wrong-key")
	_, err = bad.GetUser(context.Background(), "anyone")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestRetriesTransientFailures(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		assert.Equal(t, "Bearer "+testKey, r.Header.Get("Authorization"))
		assert.Equal(t, "bob", r.Header.Get(auth.UserHeader))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"userId":"bob","email":"bob@example.com"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, testKey, WithRetry(3, time.Millisecond))
	before := testutil.ToFloat64(retriesTotal.WithLabelValues("load_preference"))
	_, err := c.LoadPreference(context.Background(), "bob")
	require.NoError(t, err)
	assert.EqualValues(t, 3, hits.Load())
	assert.Equal(t, before+2, testutil.ToFloat64(retriesTotal.WithLabelValues("load_preference")))
}

func TestClientErrorsAreNotRetried(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":"Forbidden","code":403,"message":"nope"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, testKey, WithRetry(5, time.Millisecond))
	err := c.RevokeAccess(context.Background(), "a", "c", "b")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Contains(t, err.Error(), "nope")
	assert.EqualValues(t, 1, hits.Load())
}

func TestListFailureWarnsAndReturnsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	rec := &notify.Recorder{}
	c := New(srv.URL, testKey, WithRetry(1, time.Millisecond), WithWarner(rec))
	list, err := c.ListAccessibleCollections(context.Background(), "alice", false)
	require.Error(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
	assert.Equal(t, []string{"Could not load your collections"}, rec.Messages())

	var herr *HTTPError
	require.ErrorAs(t, err, &herr)
	assert.Equal(t, http.StatusInternalServerError, herr.StatusCode)
}

func TestAnonymousListSkipsNetwork(t *testing.T) {
	c := New("http://127.0.0.1:1", testKey, WithRetry(1, time.Millisecond))
	list, err := c.ListAccessibleCollections(context.Background(), "", false)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCanceledContextStopsRetrying(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	c := New(srv.URL, testKey, WithRetry(1000, 20*time.Millisecond))
	_, err := c.GetUser(ctx, "x")
	require.Error(t, err)
	assert.Less(t, hits.Load(), int32(1000))
}
