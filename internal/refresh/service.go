package refresh

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"
)

// Service wraps repository operations with business logic
type Service struct {
	repo Repository
}

func NewService(r Repository) *Service { return &Service{repo: r} }

// Issue stores a new refresh token for the user and returns its value
func (s *Service) Issue(ctx context.Context, uid string, ttl time.Duration) (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	v := hex.EncodeToString(b)
	t := &Token{
		Value:     v,
		UID:       uid,
		ExpiresAt: time.Now().UTC().Add(ttl),
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return "", err
	}
	return v, nil
}

// Validate returns the token if the value is known and not expired
func (s *Service) Validate(ctx context.Context, value string) (*Token, error) {
	t, err := s.repo.GetByValue(ctx, value)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, nil
	}
	if time.Now().UTC().After(t.ExpiresAt) {
		// cleanup expired token
		_ = s.repo.DeleteByValue(ctx, value)
		return nil, nil
	}
	return t, nil
}

func (s *Service) Revoke(ctx context.Context, value string) error {
	return s.repo.DeleteByValue(ctx, value)
}
