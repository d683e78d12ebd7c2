package auth

import (
	"net/http"
	"time"
)

// Cookies writes the token pair as http-only cookies.
type Cookies struct {
	Secure   bool
	SameSite http.SameSite
}

// Set writes both token cookies with max-age matching each token's expiry.
func (c Cookies) Set(w http.ResponseWriter, pair *TokenPair) {
	http.SetCookie(w, c.cookie(AccessCookie, pair.Access, time.Until(pair.AccessExpires)))
	http.SetCookie(w, c.cookie(RefreshCookie, pair.Refresh, time.Until(pair.RefreshExpires)))
}

// Clear expires both token cookies.
func (c Cookies) Clear(w http.ResponseWriter) {
	for _, name := range []string{AccessCookie, RefreshCookie} {
		ck := c.cookie(name, "", 0)
		ck.MaxAge = -1
		ck.Expires = time.Unix(0, 0)
		http.SetCookie(w, ck)
	}
}

func (c Cookies) cookie(name, value string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: c.SameSite,
		MaxAge:   int(ttl / time.Second),
	}
}

// TokensFromRequest reads the access and refresh cookies. An Authorization
// bearer header is accepted for the access token when no cookie is sent.
func TokensFromRequest(r *http.Request) (access, refresh string) {
	if ck, err := r.Cookie(AccessCookie); err == nil {
		access = ck.Value
	}
	if access == "" {
		if h := r.Header.Get("Authorization"); len(h) > 7 && h[:7] == "Bearer " {
			access = h[7:]
		}
	}
	if ck, err := r.Cookie(RefreshCookie); err == nil {
		refresh = ck.Value
	}
	return access, refresh
}
