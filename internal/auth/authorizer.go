package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/vitrine-app/vitrine/internal/model"
)

// Authorizer validates an API key and resolves the calling user in one call.
type Authorizer interface {
	// Authorize checks apiKey. An empty userID authenticates the key alone and
	// yields an anonymous identity; otherwise the user must exist.
	Authorize(ctx context.Context, apiKey, userID string) (model.Identity, error)
}

// UserLookup fetches user records; store.Users satisfies it.
type UserLookup interface {
	Get(ctx context.Context, userID string) (*model.User, error)
}

// DevAuthorizer accepts a single shared key and trusts the user named in the
// request. The admin flag comes from the user record.
type DevAuthorizer struct {
	key   string
	users UserLookup
}

// NewDevAuthorizer creates a DevAuthorizer for key.
func NewDevAuthorizer(key string, users UserLookup) *DevAuthorizer {
	return &DevAuthorizer{key: key, users: users}
}

func (d *DevAuthorizer) Authorize(ctx context.Context, apiKey, userID string) (model.Identity, error) {
	if apiKey == "" || apiKey != d.key {
		return model.Identity{}, ErrInvalidAPIKey
	}
	if userID == "" {
		return model.Identity{}, nil
	}
	u, err := d.users.Get(ctx, userID)
	if errors.Is(err, model.ErrNotFound) {
		return model.Identity{}, fmt.Errorf("%w: %s", ErrUnknownUser, userID)
	}
	if err != nil {
		return model.Identity{}, err
	}
	return model.Identity{UserID: u.UserID, IsAdmin: u.IsAdmin}, nil
}
