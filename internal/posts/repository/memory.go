package repository

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/classfeed/classfeed/go-services/internal/posts"
	"github.com/google/uuid"
)

var ErrNotFound = errors.New("post not found")

// Repository provides post persistence operations.
type Repository interface {
	Create(ctx context.Context, p *posts.Post) (string, error)
	Get(ctx context.Context, id string) (*posts.Post, error)
	List(ctx context.Context) ([]*posts.Post, error)
	Update(ctx context.Context, p *posts.Post) error
	Delete(ctx context.Context, id string) error
}

// MemoryRepo is a simple in-memory repository used for development and unit
// tests.
type MemoryRepo struct {
	mu    sync.RWMutex
	store map[string]*posts.Post
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{store: make(map[string]*posts.Post)}
}

func (m *MemoryRepo) Create(ctx context.Context, p *posts.Post) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	cp := *p
	m.store[p.ID] = &cp
	return p.ID, nil
}

func (m *MemoryRepo) Get(ctx context.Context, id string) (*posts.Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.store[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MemoryRepo) List(ctx context.Context) ([]*posts.Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*posts.Post, 0, len(m.store))
	for _, p := range m.store {
		cp := *p
		out = append(out, &cp)
	}
	// newest first, matching the feed ordering
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryRepo) Update(ctx context.Context, p *posts.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[p.ID]; !ok {
		return ErrNotFound
	}
	cp := *p
	m.store[p.ID] = &cp
	return nil
}

func (m *MemoryRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[id]; !ok {
		return ErrNotFound
	}
	delete(m.store, id)
	return nil
}
