package refresh

import (
	"context"
	"sync"
	"time"
)

// MemoryRepository implements Repository in process memory. Used in tests and
// when neither Redis nor MongoDB is configured.
type MemoryRepository struct {
	mu     sync.RWMutex
	tokens map[string]*Token
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{tokens: make(map[string]*Token)}
}

func (r *MemoryRepository) Create(ctx context.Context, t *Token) error {
	now := time.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.ExpiresAt.IsZero() {
		t.ExpiresAt = now.Add(7 * 24 * time.Hour)
	}
	cp := *t
	r.mu.Lock()
	r.tokens[t.Value] = &cp
	r.mu.Unlock()
	return nil
}

func (r *MemoryRepository) GetByValue(ctx context.Context, value string) (*Token, error) {
	r.mu.RLock()
	t, ok := r.tokens[value]
	r.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (r *MemoryRepository) DeleteByValue(ctx context.Context, value string) error {
	r.mu.Lock()
	delete(r.tokens, value)
	r.mu.Unlock()
	return nil
}
