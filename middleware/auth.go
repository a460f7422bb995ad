package middleware

import (
	"context"
	"net/http"
	"strings"

	authsvc "newsdesk/internal/auth/service"
	"newsdesk/pkg/logger"
)

type contextKey string

const IdentityKey contextKey = "identity"

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

// AuthMiddleware rejects requests without a valid session token and stores the
// verified identity in the request context.
func AuthMiddleware(v authsvc.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := v.Verify(BearerToken(r))
			if err != nil {
				logger.Sugar.Infof("Rejected %s %s: %v", r.Method, r.URL.Path, err)
				RespondError(w, r, http.StatusUnauthorized, "Unauthorized")
				return
			}
			ctx := context.WithValue(r.Context(), IdentityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFrom returns the identity stored by AuthMiddleware.
func IdentityFrom(ctx context.Context) (authsvc.Identity, bool) {
	identity, ok := ctx.Value(IdentityKey).(authsvc.Identity)
	return identity, ok
}
