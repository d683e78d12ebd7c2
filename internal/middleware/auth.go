// Package middleware holds the HTTP middleware shared by the route groups.
package middleware

import (
	"context"
	"net/http"

	"github.com/Lohit-Behera/canva/internal/api"
	"github.com/Lohit-Behera/canva/internal/auth"
	"github.com/Lohit-Behera/canva/internal/logging"
)

// Authenticator resolves the caller from the token cookies.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken, refreshToken string) (*auth.Identity, *auth.TokenPair, error)
}

// RequireAuth validates the token cookies and injects the caller's identity
// into the request context. When the access token has expired but the
// refresh token is still good, the pair is rotated and new cookies are set
// on the response before the handler runs.
func RequireAuth(authn Authenticator, cookies auth.Cookies) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			access, refresh := auth.TokensFromRequest(r)

			id, rotated, err := authn.Authenticate(r.Context(), access, refresh)
			if err != nil {
				cookies.Clear(w)
				api.WriteError(w, r, err)
				return
			}
			if rotated != nil {
				cookies.Set(w, rotated)
			}

			logging.SetUserID(r.Context(), id.UserID)
			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
		})
	}
}
