package client

import (
	"context"
	"net/http"

	"github.com/vitrine-app/vitrine/internal/model"
)

// LoadPreference returns userID's durable preference, or nil when the user
// has never saved one.
func (c *Client) LoadPreference(ctx context.Context, userID string) (*model.SelectionPreference, error) {
	var out model.SelectionPreference
	if err := c.call(ctx, "load_preference", http.MethodGet, "/api/me/preference", userID, nil, &out); err != nil {
		return nil, err
	}
	if out.DefaultCollectionID == nil && out.LastSelectedCollectionID == nil {
		return nil, nil
	}
	return &out, nil
}

// SaveLastSelected records collectionID as userID's last pick.
func (c *Client) SaveLastSelected(ctx context.Context, userID, collectionID string) (*model.SelectionPreference, error) {
	return c.savePreference(ctx, "save_last_selected", "/api/me/preference/last-selected", userID, collectionID)
}

// SaveDefault records collectionID as userID's default.
func (c *Client) SaveDefault(ctx context.Context, userID, collectionID string) (*model.SelectionPreference, error) {
	return c.savePreference(ctx, "save_default", "/api/me/preference/default", userID, collectionID)
}

func (c *Client) savePreference(ctx context.Context, op, path, userID, collectionID string) (*model.SelectionPreference, error) {
	var out model.SelectionPreference
	body := map[string]string{"collectionId": collectionID}
	if err := c.call(ctx, op, http.MethodPut, path, userID, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
