package client

import (
	"context"
	"net/http"

	"github.com/vitrine-app/vitrine/internal/model"
)

type listResponse struct {
	Collections []model.AccessibleCollection `json:"collections"`
	Count       int                          `json:"count"`
}

// ListAccessibleCollections returns the collections callerID can access.
// The service decides owner enrichment from the caller's record, so isAdmin
// is only carried for the interface.
//
// On failure the user is warned and an empty list is returned with the error.
func (c *Client) ListAccessibleCollections(ctx context.Context, callerID string, _ bool) ([]model.AccessibleCollection, error) {
	if callerID == "" {
		return []model.AccessibleCollection{}, nil
	}
	var out listResponse
	if err := c.call(ctx, "list_collections", http.MethodGet, "/api/me/collections", callerID, nil, &out); err != nil {
		c.warner.Warn(ctx, "Could not load your collections", err)
		return []model.AccessibleCollection{}, err
	}
	if out.Collections == nil {
		out.Collections = []model.AccessibleCollection{}
	}
	return out.Collections, nil
}

// CreateCollection creates a collection owned by actorID.
func (c *Client) CreateCollection(ctx context.Context, actorID, name string, kind model.Kind) (*model.Collection, error) {
	var out model.Collection
	body := map[string]interface{}{"name": name, "kind": kind}
	if err := c.call(ctx, "create_collection", http.MethodPost, "/api/collections", actorID, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GrantAccess gives userID the role on collectionID, acting as actorID.
func (c *Client) GrantAccess(ctx context.Context, actorID, collectionID, userID string, role model.Role) (*model.AccessGrant, error) {
	var out model.AccessGrant
	path := "/api/collections/" + escape(collectionID) + "/grants/" + escape(userID)
	if err := c.call(ctx, "grant_access", http.MethodPut, path, actorID, map[string]interface{}{"role": role}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RevokeAccess removes userID's grant on collectionID, acting as actorID.
func (c *Client) RevokeAccess(ctx context.Context, actorID, collectionID, userID string) error {
	path := "/api/collections/" + escape(collectionID) + "/grants/" + escape(userID)
	return c.call(ctx, "revoke_access", http.MethodDelete, path, actorID, nil, nil)
}
