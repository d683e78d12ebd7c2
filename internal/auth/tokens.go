package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Cookie names carrying the token pair.
const (
	AccessCookie  = "accessToken"
	RefreshCookie = "refreshToken"
)

// Claims are embedded in both access and refresh tokens.
type Claims struct {
	UserID string `json:"id"`
	Name   string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// TokenPair is an issued access/refresh token pair.
type TokenPair struct {
	Access         string
	AccessExpires  time.Time
	Refresh        string
	RefreshExpires time.Time
}

// TokenIssuer signs and verifies access and refresh tokens with distinct
// secrets and lifetimes.
type TokenIssuer struct {
	accessSecret  []byte
	accessTTL     time.Duration
	refreshSecret []byte
	refreshTTL    time.Duration
	now           func() time.Time
}

func NewTokenIssuer(accessSecret string, accessTTL time.Duration, refreshSecret string, refreshTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{
		accessSecret:  []byte(accessSecret),
		accessTTL:     accessTTL,
		refreshSecret: []byte(refreshSecret),
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
}

// Issue signs a new pair for the user.
func (t *TokenIssuer) Issue(userID, name string) (*TokenPair, error) {
	now := t.now()
	access, accessExp, err := t.sign(userID, name, t.accessSecret, now, t.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refresh, refreshExp, err := t.sign(userID, name, t.refreshSecret, now, t.refreshTTL)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}
	return &TokenPair{
		Access:         access,
		AccessExpires:  accessExp,
		Refresh:        refresh,
		RefreshExpires: refreshExp,
	}, nil
}

func (t *TokenIssuer) sign(userID, name string, secret []byte, now time.Time, ttl time.Duration) (string, time.Time, error) {
	exp := now.Add(ttl)
	claims := &Claims{
		UserID: userID,
		Name:   name,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	return tok, exp, err
}

// ParseAccess validates an access token.
func (t *TokenIssuer) ParseAccess(token string) (*Claims, error) {
	return t.parse(token, t.accessSecret)
}

// ParseRefresh validates a refresh token.
func (t *TokenIssuer) ParseRefresh(token string) (*Claims, error) {
	return t.parse(token, t.refreshSecret)
}

func (t *TokenIssuer) parse(token string, secret []byte) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(tok *jwt.Token) (interface{}, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	c, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || c.UserID == "" {
		return nil, errors.New("invalid token claims")
	}
	return c, nil
}
