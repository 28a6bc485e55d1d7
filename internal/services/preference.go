package services

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/vitrine-app/vitrine/internal/model"
	"github.com/vitrine-app/vitrine/internal/store"
)

// PreferenceService reads and upserts the durable per-user SelectionPreference.
type PreferenceService struct {
	store store.Store
}

func NewPreferenceService(s store.Store) *PreferenceService { return &PreferenceService{store: s} }

// LoadPreference returns the user's preference, or nil when none was saved yet.
func (s *PreferenceService) LoadPreference(ctx context.Context, userID string) (*model.SelectionPreference, error) {
	if userID == "" {
		return nil, model.NewValidationError("userID", "user ID is required")
	}
	p, err := s.store.Preferences().Get(ctx, userID)
	if errors.Is(err, model.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		log.Warn().Err(err).Str("userID", userID).Msg("LoadPreference failed")
		return nil, err
	}
	return p, nil
}

// SaveLastSelected upserts the user's last-selected collection.
func (s *PreferenceService) SaveLastSelected(ctx context.Context, userID, collectionID string) (*model.SelectionPreference, error) {
	if err := validatePreference(userID, collectionID); err != nil {
		return nil, err
	}
	return s.store.Preferences().UpsertLastSelected(ctx, userID, collectionID)
}

// SaveDefault upserts the user's default collection.
func (s *PreferenceService) SaveDefault(ctx context.Context, userID, collectionID string) (*model.SelectionPreference, error) {
	if err := validatePreference(userID, collectionID); err != nil {
		return nil, err
	}
	return s.store.Preferences().UpsertDefault(ctx, userID, collectionID)
}

func validatePreference(userID, collectionID string) error {
	if userID == "" {
		return model.NewValidationError("userID", "user ID is required")
	}
	if collectionID == "" {
		return model.NewValidationError("collectionID", "collection ID is required")
	}
	return nil
}
