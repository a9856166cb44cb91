package auth

import (
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"github.com/pouriya/restcommander-sub000/internal/syncmap"
	"github.com/zeebo/blake3"
)

// DefaultTokenTTL is one week.
const DefaultTokenTTL = 604800 * time.Second

// TokenStore maps issued tokens to their absolute expiry.
type TokenStore struct {
	tokens *syncmap.Map[time.Time]
	now    func() time.Time
}

// NewTokenStore creates an empty store using now as the clock.
func NewTokenStore(now func() time.Time) *TokenStore {
	if now == nil {
		now = time.Now
	}
	return &TokenStore{tokens: syncmap.New[time.Time](), now: now}
}

// Issue creates a new token valid for ttl.
func (s *TokenStore) Issue(ttl time.Duration) string {
	seed := uuid.New()
	digest := blake3.Sum256(seed[:])
	token := hex.EncodeToString(digest[:])
	s.tokens.Set(token, s.now().Add(ttl))
	return token
}

// Check validates token. Expired tokens are rejected but kept.
func (s *TokenStore) Check(token string) error {
	expiry, ok := s.tokens.Get(token)
	if !ok {
		return ErrInvalidToken
	}
	if !s.now().Before(expiry) {
		return ErrTokenExpired
	}
	return nil
}

// Len returns the number of stored tokens, expired ones included.
func (s *TokenStore) Len() int {
	return s.tokens.Len()
}
