package session

import "github.com/classfeed/classfeed/go-services/internal/models"

// RoleState says whether the session's role fetch has completed. Consumers
// must treat RolePending like an unprivileged role: no privileged UI or
// route may unlock before the state is RoleResolved.
type RoleState int

const (
	RolePending RoleState = iota
	RoleResolved
)

// Session is the single authoritative (authenticated, identity, role) value
// driving navigation. It is derived, never persisted, and rebuilt on every
// auth event. Invariants: Authenticated==false implies Identity==nil and
// Role==RoleUnknown; Role==RoleUnknown with RoleResolved means the profile
// fetch failed and the caller must not assume a default.
type Session struct {
	Authenticated bool
	Identity      *models.Identity
	Role          models.Role
	RoleState     RoleState
}

// LoggedOut is the session value before any identity event and after sign-out.
func LoggedOut() Session {
	return Session{RoleState: RoleResolved}
}

// RoleDecided reports whether privileged affordances are decidable yet:
// either there is no authenticated identity, or the role fetch finished.
func (s Session) RoleDecided() bool {
	return !s.Authenticated || s.RoleState == RoleResolved
}
