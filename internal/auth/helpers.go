package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/vitrine-app/vitrine/internal/api/validate"
)

// UserHeader names the calling user for the dev authorizer.
const UserHeader = "X-Vitrine-User"

// ExtractAPIKey extracts the key from a "Bearer <key>" Authorization header.
func ExtractAPIKey(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", ErrMissingAPIKey
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", fmt.Errorf("%w: expected 'Bearer <api_key>'", ErrInvalidAPIKey)
	}
	return parts[1], nil
}

// ExtractUserID returns the user id from UserHeader, "" when absent.
func ExtractUserID(r *http.Request) (string, error) {
	id := strings.TrimSpace(r.Header.Get(UserHeader))
	if id == "" {
		return "", nil
	}
	if err := validate.UserID(id); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidUserID, err)
	}
	return id, nil
}
