package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/vitrine-app/vitrine/internal/model"
	"github.com/vitrine-app/vitrine/internal/notify"
	"github.com/vitrine-app/vitrine/internal/store"
)

const maxCollectionName = 60

// CollectionService lists the collections a caller can reach and manages
// collections and their access grants.
type CollectionService struct {
	store  store.Store
	warner notify.Warner
}

// NewCollectionService creates a collection service. A nil warner logs warnings.
func NewCollectionService(s store.Store, w notify.Warner) *CollectionService {
	if w == nil {
		w = notify.LogWarner{}
	}
	return &CollectionService{store: s, warner: w}
}

// ListAccessibleCollections returns every collection callerID holds a grant on,
// decorated with the caller's role. Admin callers also get owner name and email.
//
// An empty callerID or a caller without grants yields an empty list. On a
// fetch failure the caller is warned and gets an empty list with the error,
// which they should treat as "no change".
func (s *CollectionService) ListAccessibleCollections(ctx context.Context, callerID string, isAdmin bool) ([]model.AccessibleCollection, error) {
	if callerID == "" {
		return []model.AccessibleCollection{}, nil
	}

	grants, err := s.store.Grants().ListByUser(ctx, callerID)
	if err != nil {
		return []model.AccessibleCollection{}, s.fetchFailed(ctx, callerID, err)
	}
	if len(grants) == 0 {
		return []model.AccessibleCollection{}, nil
	}

	roles := make(map[string]model.Role, len(grants))
	ids := make([]string, 0, len(grants))
	for _, g := range grants {
		roles[g.CollectionID] = g.Role
		ids = append(ids, g.CollectionID)
	}

	cols, err := s.store.Collections().GetMany(ctx, ids)
	if err != nil {
		return []model.AccessibleCollection{}, s.fetchFailed(ctx, callerID, err)
	}

	var owners map[string]*model.User
	if isAdmin {
		owners = s.loadOwners(ctx, callerID, cols)
	}

	out := make([]model.AccessibleCollection, 0, len(cols))
	for _, c := range cols {
		role, ok := roles[c.CollectionID]
		if !ok {
			continue
		}
		ac := model.AccessibleCollection{Collection: *c, Role: role}
		if u := owners[c.CreatedBy]; u != nil {
			email := u.Email
			ac.OwnerName = u.DisplayName
			ac.OwnerEmail = &email
		}
		out = append(out, ac)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].CollectionID < out[j].CollectionID
	})
	return out, nil
}

// loadOwners fetches creator profiles. A failure only drops the enrichment.
func (s *CollectionService) loadOwners(ctx context.Context, callerID string, cols []*model.Collection) map[string]*model.User {
	seen := make(map[string]bool, len(cols))
	creators := make([]string, 0, len(cols))
	for _, c := range cols {
		if !seen[c.CreatedBy] {
			seen[c.CreatedBy] = true
			creators = append(creators, c.CreatedBy)
		}
	}
	users, err := s.store.Users().GetMany(ctx, creators)
	if err != nil {
		log.Warn().Err(err).Str("userID", callerID).Msg("Loading collection owners failed")
		s.warner.Warn(ctx, "Could not load collection owner details", err)
		return nil
	}
	owners := make(map[string]*model.User, len(users))
	for _, u := range users {
		owners[u.UserID] = u
	}
	return owners
}

func (s *CollectionService) fetchFailed(ctx context.Context, callerID string, err error) error {
	log.Warn().Err(err).Str("userID", callerID).Msg("ListAccessibleCollections failed")
	s.warner.Warn(ctx, "Could not load your collections", err)
	return fmt.Errorf("list accessible collections: %w", err)
}

// CreateCollection creates a collection owned by creatorID.
func (s *CollectionService) CreateCollection(ctx context.Context, creatorID, name string, kind model.Kind) (*model.Collection, error) {
	name = strings.TrimSpace(name)
	if creatorID == "" {
		return nil, model.NewValidationError("userID", "user ID is required")
	}
	if name == "" {
		return nil, model.NewValidationError("name", "name is required")
	}
	if len(name) > maxCollectionName {
		return nil, model.NewValidationError("name", fmt.Sprintf("name exceeds %d characters", maxCollectionName))
	}
	if !kind.Valid() {
		return nil, model.NewValidationError("kind", "kind must be one of watches, sneakers, purses")
	}

	log.Info().Str("userID", creatorID).Str("kind", string(kind)).Msg("Creating collection")
	c, err := s.store.Collections().Create(ctx, &model.Collection{Name: name, Kind: kind, CreatedBy: creatorID})
	if err != nil {
		log.Error().Err(err).Str("userID", creatorID).Msg("Failed to create collection")
		return nil, err
	}
	return c, nil
}

// GrantAccess gives userID the role on collectionID. The actor must be an
// admin or an owner of the collection. The creator cannot be demoted.
func (s *CollectionService) GrantAccess(ctx context.Context, actor model.Identity, collectionID, userID string, role model.Role) (*model.AccessGrant, error) {
	if collectionID == "" || userID == "" {
		return nil, model.NewValidationError("grant", "collection ID and user ID are required")
	}
	if !role.Valid() {
		return nil, model.NewValidationError("role", "role must be one of owner, editor, viewer")
	}
	c, err := s.authorizeManage(ctx, actor, collectionID)
	if err != nil {
		return nil, err
	}
	if c.CreatedBy == userID && role != model.RoleOwner {
		return nil, fmt.Errorf("creator keeps the owner role on %s: %w", collectionID, model.ErrConflict)
	}
	log.Info().Str("actor", actor.UserID).Str("collectionID", collectionID).Str("userID", userID).Str("role", string(role)).Msg("Granting collection access")
	return s.store.Grants().Upsert(ctx, &model.AccessGrant{UserID: userID, CollectionID: collectionID, Role: role})
}

// RevokeAccess removes userID's grant on collectionID. The creator's owner
// grant cannot be revoked.
func (s *CollectionService) RevokeAccess(ctx context.Context, actor model.Identity, collectionID, userID string) error {
	if collectionID == "" || userID == "" {
		return model.NewValidationError("grant", "collection ID and user ID are required")
	}
	c, err := s.authorizeManage(ctx, actor, collectionID)
	if err != nil {
		return err
	}
	if c.CreatedBy == userID {
		return fmt.Errorf("creator keeps the owner role on %s: %w", collectionID, model.ErrConflict)
	}
	log.Info().Str("actor", actor.UserID).Str("collectionID", collectionID).Str("userID", userID).Msg("Revoking collection access")
	return s.store.Grants().Delete(ctx, userID, collectionID)
}

func (s *CollectionService) authorizeManage(ctx context.Context, actor model.Identity, collectionID string) (*model.Collection, error) {
	c, err := s.store.Collections().GetByID(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	if actor.IsAdmin {
		return c, nil
	}
	g, err := s.store.Grants().Get(ctx, actor.UserID, collectionID)
	if errors.Is(err, model.ErrNotFound) || (err == nil && g.Role != model.RoleOwner) {
		return nil, fmt.Errorf("%s may not manage %s: %w", actor.UserID, collectionID, model.ErrForbidden)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}
