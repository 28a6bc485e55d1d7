package client

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitrine-app/vitrine/internal/devicecache"
	"github.com/vitrine-app/vitrine/internal/model"
	"github.com/vitrine-app/vitrine/internal/selector"
)

// Two devices share the service; the pick made on one is restored on the other.
func TestSelectionFollowsUserAcrossDevices(t *testing.T) {
	ctx := context.Background()
	c := New(newBackend(t).URL, testKey, WithRetry(2, time.Millisecond))

	_, err := c.CreateUser(ctx, CreateUserRequest{UserID: "alice", Email: "alice@example.com"})
	require.NoError(t, err)
	first, err := c.CreateCollection(ctx, "alice", "A watches", model.KindWatches)
	require.NoError(t, err)
	second, err := c.CreateCollection(ctx, "alice", "B sneakers", model.KindSneakers)
	require.NoError(t, err)

	alice := model.Identity{UserID: "alice"}

	laptop := selector.New(c, c, devicecache.NewMemory())
	t.Cleanup(func() { _ = laptop.Close() })
	require.NoError(t, laptop.OnIdentityChanged(ctx, alice))
	assert.Equal(t, first.CollectionID, laptop.ActiveID())
	assert.Equal(t, selector.RuleOwner, laptop.Rule())

	laptop.SetActiveCollection(ctx, second.CollectionID)
	require.NoError(t, laptop.Wait(ctx))

	phone := selector.New(c, c, devicecache.NewMemory())
	t.Cleanup(func() { _ = phone.Close() })
	require.NoError(t, phone.OnIdentityChanged(ctx, alice))
	assert.Equal(t, second.CollectionID, phone.ActiveID())
	assert.Equal(t, selector.RuleCrossDevice, phone.Rule())
	assert.Equal(t, model.KindSneakers, phone.Kind())
}
