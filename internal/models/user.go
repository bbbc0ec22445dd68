package models

import "time"

// Role is the authorization tier stored on a user profile.
type Role string

const (
	RoleStudent    Role = "student"
	RoleInstructor Role = "instructor"
	RoleAdmin      Role = "admin"

	// RoleUnknown marks a session whose profile fetch is pending or failed.
	// It is never stored; consumers must treat it as unprivileged.
	RoleUnknown Role = ""
)

// Valid reports whether r is one of the storable role values.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleInstructor, RoleAdmin:
		return true
	}
	return false
}

// AtLeast checks if the role meets or exceeds the target role.
// Admin counts as at least instructor-level access.
func (r Role) AtLeast(target Role) bool {
	return target.level() > 0 && r.level() >= target.level()
}

func (r Role) level() int {
	switch r {
	case RoleAdmin:
		return 30
	case RoleInstructor:
		return 20
	case RoleStudent:
		return 10
	}
	return 0
}

// UserProfile is the application user document stored in the "users" collection.
// One profile per identity: the document id equals the owning identity's id.
type UserProfile struct {
	ID        string    `bson:"_id" json:"id"`
	Name      string    `bson:"name" json:"name"`
	Email     string    `bson:"email" json:"email"`
	Role      Role      `bson:"role" json:"role"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}
