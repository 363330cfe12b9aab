package middleware

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/hlog"
)

type adminResolver interface {
	IsAdmin(ctx context.Context, identityID string) (bool, error)
}

// RequireAdmin allows the request through only when the authenticated
// identity is an administrator. It must run after Auth.
func RequireAdmin(resolver adminResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			admin, err := resolver.IsAdmin(r.Context(), claims.IdentityID)
			if err != nil {
				hlog.FromRequest(r).Error().Err(err).Msg("resolve admin")
				writeJSONError(w, http.StatusInternalServerError, "Internal server error")
				return
			}
			if !admin {
				writeJSONError(w, http.StatusForbidden, "Forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
