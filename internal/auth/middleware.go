package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/vitrine-app/vitrine/internal/api/respond"
	"github.com/vitrine-app/vitrine/internal/model"
)

type ctxKey struct{}

// WithIdentity returns ctx carrying id.
func WithIdentity(ctx context.Context, id model.Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the identity stored by the middleware.
func FromContext(ctx context.Context) (model.Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(model.Identity)
	return id, ok
}

// RequireKey authenticates the API key. A user header, if present, is
// resolved too, but it is optional.
func RequireKey(a Authorizer) func(http.Handler) http.Handler {
	return middleware(a, false)
}

// RequireUser authenticates the API key and requires a known user.
func RequireUser(a Authorizer) func(http.Handler) http.Handler {
	return middleware(a, true)
}

func middleware(a Authorizer, needUser bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key, err := ExtractAPIKey(r)
			if err != nil {
				respond.WriteUnauthorized(w, err.Error())
				return
			}
			userID, err := ExtractUserID(r)
			if err != nil {
				respond.WriteBadRequest(w, err.Error())
				return
			}
			if needUser && userID == "" {
				respond.WriteUnauthorized(w, ErrMissingUserID.Error())
				return
			}

			id, err := a.Authorize(r.Context(), key, userID)
			switch {
			case errors.Is(err, ErrInvalidAPIKey), errors.Is(err, ErrUnknownUser):
				respond.WriteUnauthorized(w, err.Error())
				return
			case err != nil:
				log.Error().Err(err).Str("userID", userID).Msg("Authorization lookup failed")
				respond.WriteInternalError(w, "authorization failed")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}
