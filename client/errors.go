package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/vitrine-app/vitrine/internal/model"
)

// ErrUnauthorized is returned when the service rejects the API key or user.
var ErrUnauthorized = errors.New("unauthorized")

// Re-exported so callers compare against a single symbol.
var (
	ErrNotFound   = model.ErrNotFound
	ErrForbidden  = model.ErrForbidden
	ErrConflict   = model.ErrConflict
	ErrValidation = model.ErrValidation
)

// HTTPError is a non-2xx response. It unwraps to the matching sentinel so
// errors.Is works the same on both sides of the wire.
type HTTPError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: HTTP %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: HTTP %d: %s", e.Op, e.StatusCode, e.Message)
}

func (e *HTTPError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusBadRequest:
		return model.ErrValidation
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return model.ErrForbidden
	case http.StatusNotFound:
		return model.ErrNotFound
	case http.StatusConflict:
		return model.ErrConflict
	}
	return nil
}

// Retryable reports whether another attempt could succeed:
// 5xx, 408 and 429 are transient, other 4xx are not.
func (e *HTTPError) Retryable() bool {
	switch {
	case e.StatusCode == http.StatusRequestTimeout, e.StatusCode == http.StatusTooManyRequests:
		return true
	case e.StatusCode >= 400 && e.StatusCode < 500:
		return false
	default:
		return true
	}
}

func newHTTPError(op string, status int, body []byte) *HTTPError {
	var payload struct {
		Message string `json:"message"`
	}
	msg := ""
	if json.Unmarshal(body, &payload) == nil {
		msg = payload.Message
	}
	return &HTTPError{Op: op, StatusCode: status, Message: msg}
}

func newNetworkError(op string, err error) error {
	return fmt.Errorf("%s network error: %w", op, err)
}
