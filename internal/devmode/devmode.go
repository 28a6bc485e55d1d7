// Package devmode provides shared configuration for development mode across client and server.
package devmode

// APIKey is the shared development mode API key used by both client and server.
// It is refused when the service runs in production.
const APIKey = "vitrine-dev-key"
