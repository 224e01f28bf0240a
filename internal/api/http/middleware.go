package http

import (
	"context"
	"net/http"
	"strings"

	"evfleet-ops-backend/internal/domain"
	"evfleet-ops-backend/internal/security"
)

type contextKey string

const actorKey contextKey = "actor"

// AuthMiddleware verifies the staff bearer token once per request and
// stores the resolved actor in the request context. Handlers read it back
// with ActorFrom and pass it to services as an explicit parameter; nothing
// below the HTTP layer touches the request context for identity.
func AuthMiddleware(tokens security.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				writeError(w, http.StatusUnauthorized, "missing bearer token", false)
				return
			}
			claims, err := tokens.ValidateToken(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid or expired token", false)
				return
			}
			ctx := context.WithValue(r.Context(), actorKey, claims.Actor())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ActorFrom returns the staff actor resolved by AuthMiddleware.
func ActorFrom(r *http.Request) (domain.Actor, bool) {
	actor, ok := r.Context().Value(actorKey).(domain.Actor)
	return actor, ok
}
