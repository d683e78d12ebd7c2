package auth

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Revoker remembers access tokens that were logged out before they expired.
type Revoker interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// RevocationStore wraps Redis for the revoked-token list. Entries expire
// with the token they block, so the set never outgrows live tokens.
type RevocationStore struct {
	rdb *redis.Client
}

func NewRevocationStore(rdb *redis.Client) *RevocationStore {
	return &RevocationStore{rdb: rdb}
}

// Revoke blocks tokenID until the given expiry.
func (s *RevocationStore) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 || tokenID == "" {
		return nil
	}
	return s.rdb.Set(ctx, "revoked:"+tokenID, 1, ttl).Err()
}

// IsRevoked reports whether tokenID was revoked.
func (s *RevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	err := s.rdb.Get(ctx, "revoked:"+tokenID).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
