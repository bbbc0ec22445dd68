package session

import (
	"context"
	"sync"
	"time"

	"github.com/classfeed/classfeed/go-services/internal/models"
	"github.com/classfeed/classfeed/go-services/pkg/logger"
	"github.com/classfeed/classfeed/go-services/pkg/metrics"
)

// RoleResolver is the profile lookup the manager depends on. Implemented by
// users.Service. found=false with a nil error means "no profile document";
// a non-nil error means the lookup itself failed.
type RoleResolver interface {
	ResolveRole(ctx context.Context, userID string) (role models.Role, found bool, err error)
}

// AuthSource is the slice of the identity provider the manager consumes.
type AuthSource interface {
	OnAuthChange(fn func(*models.Identity)) (unsubscribe func())
	Current() *models.Identity
}

// DefaultResolveTimeout bounds how long a session may sit in RolePending
// before the fetch is abandoned and the role resolves to unknown.
const DefaultResolveTimeout = 10 * time.Second

// Manager is the session state machine. It owns the single process-wide
// auth subscription, triggers a role fetch per identity event, and exposes
// exactly one authoritative Session value at any time. Role-fetch results
// are tagged with the epoch of the identity event that issued them; a result
// arriving after a newer event is discarded, so a stale fetch can never
// overwrite a newer session.
type Manager struct {
	resolver RoleResolver
	timeout  time.Duration

	// deliverMu serializes state-change+notify pairs so subscribers observe
	// session values in the order they became authoritative.
	deliverMu sync.Mutex

	mu      sync.Mutex
	current Session
	epoch   uint64
	unsub   func()
	subs    map[int]func(Session)
	nextSub int
}

// Option configures a Manager.
type Option func(*Manager)

// WithResolveTimeout overrides DefaultResolveTimeout.
func WithResolveTimeout(d time.Duration) Option {
	return func(m *Manager) { m.timeout = d }
}

func NewManager(resolver RoleResolver, opts ...Option) *Manager {
	m := &Manager{
		resolver: resolver,
		timeout:  DefaultResolveTimeout,
		current:  LoggedOut(),
		subs:     map[int]func(Session){},
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Start subscribes to the auth source and seeds the machine with the
// provider's current identity. The subscription lives until Close.
func (m *Manager) Start(src AuthSource) {
	m.mu.Lock()
	already := m.unsub != nil
	m.mu.Unlock()
	if already {
		return
	}
	unsub := src.OnAuthChange(m.apply)
	m.mu.Lock()
	m.unsub = unsub
	m.mu.Unlock()
	m.apply(src.Current())
}

// Close releases the auth subscription. Called only at full app teardown.
func (m *Manager) Close() {
	m.mu.Lock()
	unsub := m.unsub
	m.unsub = nil
	m.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}

// Current returns a copy of the authoritative session.
func (m *Manager) Current() Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// Subscribe registers a callback invoked with every new session value.
// Callbacks run synchronously in delivery order; they may call Current but
// must not block.
func (m *Manager) Subscribe(fn func(Session)) (unsubscribe func()) {
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

// apply handles one identity event from the provider.
func (m *Manager) apply(ident *models.Identity) {
	m.deliverMu.Lock()
	defer m.deliverMu.Unlock()

	m.mu.Lock()
	m.epoch++
	epoch := m.epoch
	if ident == nil {
		// logout discards any in-flight fetch via the epoch bump
		m.current = LoggedOut()
		snap := m.snapshotLocked()
		m.mu.Unlock()
		m.notify(snap)
		return
	}
	id := *ident
	m.current = Session{Authenticated: true, Identity: &id, Role: models.RoleUnknown, RoleState: RolePending}
	snap := m.snapshotLocked()
	m.mu.Unlock()
	m.notify(snap)

	go m.resolve(epoch, id.ID)
}

// resolve runs the role fetch issued for the given epoch and applies the
// result only if that epoch is still the active one.
func (m *Manager) resolve(epoch uint64, userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()
	role, found, err := m.resolver.ResolveRole(ctx, userID)

	m.deliverMu.Lock()
	defer m.deliverMu.Unlock()

	m.mu.Lock()
	if m.epoch != epoch || !m.current.Authenticated || m.current.Identity.ID != userID {
		m.mu.Unlock()
		logger.Debugf("session: discarding stale role result for %s (epoch %d)", userID, epoch)
		return
	}
	var outcome string
	switch {
	case err != nil:
		// fetch failed: stay authenticated with no assumed role
		m.current.Role = models.RoleUnknown
		outcome = "failed"
		logger.Warnf("session: role fetch for %s failed: %v", userID, err)
	case !found:
		// no profile document: fall back to the default role
		m.current.Role = models.RoleStudent
		outcome = "defaulted"
	default:
		m.current.Role = role
		outcome = "resolved"
	}
	m.current.RoleState = RoleResolved
	snap := m.snapshotLocked()
	m.mu.Unlock()

	metrics.RoleResolutions.WithLabelValues(outcome).Inc()
	m.notify(snap)
}

func (m *Manager) snapshotLocked() Session {
	s := m.current
	if s.Identity != nil {
		id := *s.Identity
		s.Identity = &id
	}
	return s
}

func (m *Manager) notify(s Session) {
	m.mu.Lock()
	fns := make([]func(Session), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.mu.Unlock()
	for _, fn := range fns {
		fn(s)
	}
}
