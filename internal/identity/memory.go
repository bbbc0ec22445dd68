package identity

import (
	"context"
	"strings"
	"sync"

	"github.com/classfeed/classfeed/go-services/internal/models"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// minPasswordLen mirrors the provider policy enforced at registration.
const minPasswordLen = 6

type memoryAccount struct {
	identity models.Identity
	hash     []byte
}

// MemoryProvider is an in-process Provider used for development and tests.
// Accounts live in a map keyed by lowercased email; passwords are stored as
// bcrypt hashes.
type MemoryProvider struct {
	notifier

	mu       sync.Mutex
	accounts map[string]*memoryAccount
	current  *models.Identity
}

func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{accounts: map[string]*memoryAccount{}}
}

func (p *MemoryProvider) SignUp(ctx context.Context, email, password, displayName string) (*models.Identity, error) {
	key := strings.ToLower(strings.TrimSpace(email))
	if len(password) < minPasswordLen {
		return nil, ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	if _, exists := p.accounts[key]; exists {
		p.mu.Unlock()
		return nil, ErrEmailInUse
	}
	acct := &memoryAccount{
		identity: models.Identity{ID: uuid.NewString(), DisplayName: displayName, Email: key},
		hash:     hash,
	}
	p.accounts[key] = acct
	ident := acct.identity
	p.current = &ident
	p.mu.Unlock()

	p.publish(&ident)
	return &ident, nil
}

func (p *MemoryProvider) SignIn(ctx context.Context, email, password string) (*models.Identity, error) {
	key := strings.ToLower(strings.TrimSpace(email))

	p.mu.Lock()
	acct, ok := p.accounts[key]
	p.mu.Unlock()
	if !ok {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(acct.hash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	p.mu.Lock()
	ident := acct.identity
	p.current = &ident
	p.mu.Unlock()

	p.publish(&ident)
	return &ident, nil
}

func (p *MemoryProvider) SignOut(ctx context.Context) error {
	p.mu.Lock()
	p.current = nil
	p.mu.Unlock()
	p.publish(nil)
	return nil
}

func (p *MemoryProvider) Current() *models.Identity {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return nil
	}
	ident := *p.current
	return &ident
}

func (p *MemoryProvider) OnAuthChange(fn func(*models.Identity)) func() {
	return p.subscribe(fn)
}
