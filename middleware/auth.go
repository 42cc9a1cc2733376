package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"notedesk/auth"
)

type contextKey string

const identityKey contextKey = "identity"

// RequireAuth expects an Authorization header of the form "Bearer <token>".
// A missing or malformed header is 401, a token the service rejects is 403.
// On success the decoded claims are attached to the request context.
func RequireAuth(tokens *auth.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			tokenStr := strings.TrimPrefix(header, "Bearer ")
			if header == "" || tokenStr == header || tokenStr == "" {
				writeAuthError(w, http.StatusUnauthorized, "Token missing")
				return
			}

			claims, err := tokens.Parse(tokenStr)
			if err != nil {
				writeAuthError(w, http.StatusForbidden, "Token invalid or expired")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), claims)))
		})
	}
}

// WithIdentity attaches decoded token claims to a context.
func WithIdentity(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, identityKey, claims)
}

// Identity returns the claims attached by RequireAuth, if any.
func Identity(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(identityKey).(*auth.Claims)
	return claims, ok
}

func writeAuthError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
