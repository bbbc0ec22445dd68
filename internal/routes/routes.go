// Package routes maps a session to the set of navigable destinations. The
// functions here are pure and total: every session value yields a decision,
// and any ambiguity (pending role, unknown role, malformed input) resolves
// to the most restrictive set.
package routes

import (
	"github.com/classfeed/classfeed/go-services/internal/models"
	"github.com/classfeed/classfeed/go-services/internal/session"
)

// Route names a top-level navigable destination in the mobile app.
type Route string

const (
	RouteLogin      Route = "login"
	RouteRegister   Route = "register"
	RouteFeed       Route = "feed"
	RoutePostDetail Route = "post-detail"
	RouteNewPost    Route = "new-post"
	RouteEditPost   Route = "edit-post"
	RouteRoster     Route = "instructor-roster"
	RouteGrantRole  Route = "grant-instructor"
)

// Set is an allowed-route set.
type Set map[Route]bool

// Contains reports whether the route is reachable.
func (s Set) Contains(r Route) bool { return s[r] }

// Routes returns the members in a stable order, for serialization.
func (s Set) Routes() []Route {
	order := []Route{
		RouteLogin, RouteRegister,
		RouteFeed, RoutePostDetail,
		RouteNewPost, RouteEditPost,
		RouteRoster, RouteGrantRole,
	}
	out := make([]Route, 0, len(s))
	for _, r := range order {
		if s[r] {
			out = append(out, r)
		}
	}
	return out
}

func newSet(rs ...Route) Set {
	s := make(Set, len(rs))
	for _, r := range rs {
		s[r] = true
	}
	return s
}

// Allowed computes the navigable route set for a session. Recomputed
// synchronously whenever the session changes; a pending or unknown role gets
// the minimal authenticated view so privileged UI never flickers in before
// the role is resolved.
func Allowed(s session.Session) Set {
	if !s.Authenticated {
		return newSet(RouteLogin, RouteRegister)
	}
	if s.RoleState != session.RoleResolved {
		return newSet(RouteFeed, RoutePostDetail)
	}
	if s.Role.AtLeast(models.RoleInstructor) {
		return newSet(RouteFeed, RoutePostDetail, RouteNewPost, RouteEditPost, RouteRoster, RouteGrantRole)
	}
	// student, unknown, or any unrecognized value: feed only
	return newSet(RouteFeed, RoutePostDetail)
}

// CanNavigate is a convenience for screen-level gating.
func CanNavigate(s session.Session, r Route) bool {
	return Allowed(s).Contains(r)
}
