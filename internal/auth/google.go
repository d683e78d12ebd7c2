package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"
)

// GoogleUserInfoURL is the OpenID userinfo endpoint.
const GoogleUserInfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"

var googleEndpoint = oauth2.Endpoint{
	AuthURL:   "https://accounts.google.com/o/oauth2/auth",
	TokenURL:  "https://oauth2.googleapis.com/token",
	AuthStyle: oauth2.AuthStyleInParams,
}

// GoogleProfile is the subset of the userinfo response we use.
type GoogleProfile struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// GoogleExchanger turns an authorization code into the signed-in profile.
type GoogleExchanger interface {
	Exchange(ctx context.Context, code string) (*GoogleProfile, error)
}

// GoogleClient exchanges codes with Google's OAuth endpoints.
type GoogleClient struct {
	cfg         *oauth2.Config
	userInfoURL string
}

// NewGoogleClient configures the code exchange. redirectURL is
// "postmessage" for codes obtained through the JS popup flow.
func NewGoogleClient(clientID, clientSecret, redirectURL string) *GoogleClient {
	return &GoogleClient{
		cfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     googleEndpoint,
			Scopes:       []string{"openid", "email", "profile"},
		},
		userInfoURL: GoogleUserInfoURL,
	}
}

// WithEndpoints points the client at alternative token and userinfo URLs.
func (g *GoogleClient) WithEndpoints(tokenURL, userInfoURL string) *GoogleClient {
	g.cfg.Endpoint = oauth2.Endpoint{TokenURL: tokenURL, AuthStyle: oauth2.AuthStyleInParams}
	g.userInfoURL = userInfoURL
	return g
}

// Exchange trades the code for tokens and fetches the user's profile.
func (g *GoogleClient) Exchange(ctx context.Context, code string) (*GoogleProfile, error) {
	tok, err := g.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("google token exchange: %w", err)
	}
	if tok.AccessToken == "" {
		return nil, fmt.Errorf("google token exchange: empty access token")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.userInfoURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := g.cfg.Client(ctx, tok).Do(req)
	if err != nil {
		return nil, fmt.Errorf("google userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("google userinfo returned %d: %s", resp.StatusCode, string(body))
	}

	var p GoogleProfile
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("google userinfo: decode: %w", err)
	}
	return &p, nil
}
