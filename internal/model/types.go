package model

import "time"

// Kind is the category of items a Collection tracks.
type Kind string

const (
	KindWatches  Kind = "watches"
	KindSneakers Kind = "sneakers"
	KindPurses   Kind = "purses"
)

// DefaultKind is reported when no collection is active. Data created before
// collections carried a kind was all watches.
const DefaultKind = KindWatches

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindWatches, KindSneakers, KindPurses:
		return true
	}
	return false
}

// Role is a user's access level on a collection.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleEditor, RoleViewer:
		return true
	}
	return false
}

// User is an account that can sign in and hold access grants.
type User struct {
	UserID       string    `json:"userId"`
	Email        string    `json:"email"`
	DisplayName  *string   `json:"displayName,omitempty"`
	IsAdmin      bool      `json:"isAdmin"`
	CreationTime time.Time `json:"creationTime"`
}

// Identity is the signed-in caller as seen by the selection layer.
type Identity struct {
	UserID  string `json:"userId"`
	IsAdmin bool   `json:"isAdmin"`
}

// Anonymous reports whether no user is signed in.
func (i Identity) Anonymous() bool { return i.UserID == "" }

// Collection is a named, typed group of tracked items.
type Collection struct {
	CollectionID string    `json:"collectionId"`
	Name         string    `json:"name"`
	Kind         Kind      `json:"kind"`
	CreatedBy    string    `json:"createdBy"`
	CreationTime time.Time `json:"creationTime"`
	UpdateTime   time.Time `json:"updateTime"`
}

// AccessGrant is one user's role on one collection.
// There is at most one grant per (UserID, CollectionID).
type AccessGrant struct {
	UserID       string    `json:"userId"`
	CollectionID string    `json:"collectionId"`
	Role         Role      `json:"role"`
	CreationTime time.Time `json:"creationTime"`
}

// AccessibleCollection is a Collection decorated with the caller's role.
// OwnerName and OwnerEmail are only populated for admin callers.
type AccessibleCollection struct {
	Collection
	Role       Role    `json:"role"`
	OwnerName  *string `json:"ownerName,omitempty"`
	OwnerEmail *string `json:"ownerEmail,omitempty"`
}

// SelectionPreference is the durable per-user record of the default and the
// last chosen collection. Exactly one row exists per user.
type SelectionPreference struct {
	UserID                   string    `json:"userId"`
	DefaultCollectionID      *string   `json:"defaultCollectionId,omitempty"`
	LastSelectedCollectionID *string   `json:"lastSelectedCollectionId,omitempty"`
	UpdateTime               time.Time `json:"updateTime"`
}

// LastSelected returns the last-selected id or "" when unset.
func (p *SelectionPreference) LastSelected() string {
	if p == nil || p.LastSelectedCollectionID == nil {
		return ""
	}
	return *p.LastSelectedCollectionID
}

// Default returns the default collection id or "" when unset.
func (p *SelectionPreference) Default() string {
	if p == nil || p.DefaultCollectionID == nil {
		return ""
	}
	return *p.DefaultCollectionID
}
