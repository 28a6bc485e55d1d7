package client

import (
	"context"
	"net/http"

	"github.com/vitrine-app/vitrine/internal/model"
)

// CreateUserRequest is the body of a user registration.
type CreateUserRequest struct {
	UserID      string  `json:"userId"`
	Email       string  `json:"email"`
	DisplayName *string `json:"displayName,omitempty"`
	IsAdmin     bool    `json:"isAdmin"`
}

// CreateUser registers a new user. Only the API key is required.
func (c *Client) CreateUser(ctx context.Context, req CreateUserRequest) (*model.User, error) {
	var out model.User
	if err := c.call(ctx, "create_user", http.MethodPost, "/api/users", "", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetUser retrieves a user by ID.
func (c *Client) GetUser(ctx context.Context, userID string) (*model.User, error) {
	var out model.User
	if err := c.call(ctx, "get_user", http.MethodGet, "/api/users/"+escape(userID), "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Identity resolves userID into the identity the selection layer tracks.
func (c *Client) Identity(ctx context.Context, userID string) (model.Identity, error) {
	if userID == "" {
		return model.Identity{}, nil
	}
	u, err := c.GetUser(ctx, userID)
	if err != nil {
		return model.Identity{}, err
	}
	return model.Identity{UserID: u.UserID, IsAdmin: u.IsAdmin}, nil
}
