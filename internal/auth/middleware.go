package auth

import (
	"context"
	"net/http"
	"strings"
)

// contextKey is an unexported type for context keys in this package, so no
// other package can read or shadow the authenticated user ID.
type contextKey string

const userIDKey contextKey = "userID"

// AccessTokenCookie and RefreshTokenCookie are the canonical cookie names.
// They are the single source of truth for setting, reading and clearing the
// session cookies — clearing a cookie only works if the name matches the one
// it was set under.
const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

// RequireAuth enforces authentication on protected routes.
//
// The access token is read from the accessToken HttpOnly cookie, or from an
// "Authorization: Bearer <token>" header for non-browser clients. On success
// the verified user ID is stored in the request context; on failure the
// chain stops with 401.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := tokenFromRequest(r)
			if raw == "" {
				unauthorized(w)
				return
			}

			userID, err := tokens.Verify(raw, AccessToken)
			if err != nil {
				unauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext retrieves the authenticated user's ID.
// Returns ("", false) on routes not behind RequireAuth.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

func tokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(AccessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	// Same envelope shape the handler package produces; hand-rolled here to
	// avoid an import cycle between auth and handler.
	_, _ = w.Write([]byte(`{"statusCode":401,"message":"valid authentication required","errors":[],"success":false}`))
}
