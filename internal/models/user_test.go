package models

import "testing"

func TestRoleValid(t *testing.T) {
	for _, r := range []Role{RoleStudent, RoleInstructor, RoleAdmin} {
		if !r.Valid() {
			t.Fatalf("%q should be valid", r)
		}
	}
	for _, r := range []Role{RoleUnknown, Role("professor"), Role("ADMIN")} {
		if r.Valid() {
			t.Fatalf("%q should not be valid", r)
		}
	}
}

func TestRoleAtLeast(t *testing.T) {
	cases := []struct {
		role, target Role
		want         bool
	}{
		{RoleAdmin, RoleInstructor, true},
		{RoleAdmin, RoleAdmin, true},
		{RoleInstructor, RoleInstructor, true},
		{RoleInstructor, RoleAdmin, false},
		{RoleStudent, RoleInstructor, false},
		{RoleStudent, RoleStudent, true},
		{RoleUnknown, RoleStudent, false},
		{RoleUnknown, RoleInstructor, false},
		// an unknown target can never be satisfied, even by admin
		{RoleAdmin, RoleUnknown, false},
		{RoleUnknown, RoleUnknown, false},
	}
	for _, c := range cases {
		if got := c.role.AtLeast(c.target); got != c.want {
			t.Fatalf("%q.AtLeast(%q) = %v, want %v", c.role, c.target, got, c.want)
		}
	}
}

func TestAuthorName(t *testing.T) {
	cases := []struct {
		ident *Identity
		want  string
	}{
		{&Identity{DisplayName: "Jane Doe", Email: "jane@example.com"}, "Jane Doe"},
		{&Identity{Email: "jane@example.com"}, "jane@example.com"},
		{&Identity{}, "Anonymous"},
		{nil, "Anonymous"},
	}
	for _, c := range cases {
		if got := c.ident.AuthorName(); got != c.want {
			t.Fatalf("AuthorName() = %q, want %q", got, c.want)
		}
	}
}
