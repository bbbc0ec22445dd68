package identity

import (
	"context"
	"errors"
	"sync"

	"github.com/classfeed/classfeed/go-services/internal/models"
)

var (
	// ErrInvalidCredentials is returned by SignIn when email/password don't match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailInUse is returned by SignUp when an account already exists for the email.
	ErrEmailInUse = errors.New("email already in use")
	// ErrWeakPassword is returned by SignUp when the password fails the provider policy.
	ErrWeakPassword = errors.New("password too weak")
)

// Provider is the narrow identity-provider contract the session layer depends
// on. SignIn and SignUp make the returned identity current and notify
// subscribers; SignOut clears it. Auth-change callbacks fire for every
// transition and stay subscribed until the returned unsubscribe func is called
// (normally only at full teardown).
type Provider interface {
	SignIn(ctx context.Context, email, password string) (*models.Identity, error)
	SignUp(ctx context.Context, email, password, displayName string) (*models.Identity, error)
	SignOut(ctx context.Context) error
	Current() *models.Identity
	OnAuthChange(fn func(*models.Identity)) (unsubscribe func())
}

// notifier fans auth-change events out to subscribers. Embedded by provider
// implementations; callbacks run synchronously on the publishing goroutine.
type notifier struct {
	mu   sync.Mutex
	next int
	subs map[int]func(*models.Identity)
}

func (n *notifier) subscribe(fn func(*models.Identity)) func() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.subs == nil {
		n.subs = map[int]func(*models.Identity){}
	}
	id := n.next
	n.next++
	n.subs[id] = fn
	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.subs, id)
	}
}

func (n *notifier) publish(ident *models.Identity) {
	n.mu.Lock()
	fns := make([]func(*models.Identity), 0, len(n.subs))
	for _, fn := range n.subs {
		fns = append(fns, fn)
	}
	n.mu.Unlock()
	for _, fn := range fns {
		fn(ident)
	}
}
