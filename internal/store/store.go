package store

import (
	"context"

	"github.com/vitrine-app/vitrine/internal/model"
)

// Store exposes persistence operations required by services.
// Implementations live under internal/store/<driver>/ (postgres, sqlite).
// Lookups of a single missing row return an error wrapping model.ErrNotFound.
type Store interface {
	Users() Users
	Collections() Collections
	Grants() Grants
	Preferences() Preferences
}

type Users interface {
	Create(ctx context.Context, u *model.User) (*model.User, error)
	Get(ctx context.Context, userID string) (*model.User, error)
	// GetMany returns the users that exist among userIDs; missing ids are skipped.
	GetMany(ctx context.Context, userIDs []string) ([]*model.User, error)
}

type Collections interface {
	// Create inserts the collection and an owner grant for its creator in one transaction.
	Create(ctx context.Context, c *model.Collection) (*model.Collection, error)
	GetByID(ctx context.Context, collectionID string) (*model.Collection, error)
	// GetMany returns the collections that exist among collectionIDs.
	GetMany(ctx context.Context, collectionIDs []string) ([]*model.Collection, error)
}

type Grants interface {
	// Upsert creates or replaces the role for (UserID, CollectionID).
	Upsert(ctx context.Context, g *model.AccessGrant) (*model.AccessGrant, error)
	Get(ctx context.Context, userID, collectionID string) (*model.AccessGrant, error)
	ListByUser(ctx context.Context, userID string) ([]*model.AccessGrant, error)
	Delete(ctx context.Context, userID, collectionID string) error
}

type Preferences interface {
	Get(ctx context.Context, userID string) (*model.SelectionPreference, error)
	// UpsertLastSelected inserts the user's row if absent, else updates last-selected only.
	UpsertLastSelected(ctx context.Context, userID, collectionID string) (*model.SelectionPreference, error)
	// UpsertDefault inserts the user's row if absent, else updates the default only.
	UpsertDefault(ctx context.Context, userID, collectionID string) (*model.SelectionPreference, error)
}
