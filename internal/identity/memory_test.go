package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/classfeed/classfeed/go-services/internal/models"
)

func TestMemoryProviderSignUpAndSignIn(t *testing.T) {
	p := NewMemoryProvider()
	ctx := context.Background()

	ident, err := p.SignUp(ctx, "Jane@Example.com", "secret1", "Jane Doe")
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}
	if ident.ID == "" {
		t.Fatal("expected generated id")
	}
	if ident.Email != "jane@example.com" {
		t.Fatalf("email = %q, want lowercased", ident.Email)
	}
	if ident.DisplayName != "Jane Doe" {
		t.Fatalf("displayName = %q", ident.DisplayName)
	}

	// email matching is case-insensitive on sign-in too
	got, err := p.SignIn(ctx, "JANE@example.COM", "secret1")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if got.ID != ident.ID {
		t.Fatalf("sign-in returned different identity: %s vs %s", got.ID, ident.ID)
	}
}

func TestMemoryProviderSignUpErrors(t *testing.T) {
	p := NewMemoryProvider()
	ctx := context.Background()

	if _, err := p.SignUp(ctx, "a@example.com", "short", "A"); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
	if _, err := p.SignUp(ctx, "a@example.com", "secret1", "A"); err != nil {
		t.Fatalf("sign up: %v", err)
	}
	if _, err := p.SignUp(ctx, "A@Example.com", "secret2", "A2"); !errors.Is(err, ErrEmailInUse) {
		t.Fatalf("expected ErrEmailInUse, got %v", err)
	}
}

func TestMemoryProviderInvalidCredentials(t *testing.T) {
	p := NewMemoryProvider()
	ctx := context.Background()
	if _, err := p.SignUp(ctx, "a@example.com", "secret1", "A"); err != nil {
		t.Fatalf("sign up: %v", err)
	}

	if _, err := p.SignIn(ctx, "a@example.com", "wrong-pass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, err := p.SignIn(ctx, "nobody@example.com", "secret1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestMemoryProviderAuthChangeEvents(t *testing.T) {
	p := NewMemoryProvider()
	ctx := context.Background()

	var events []*models.Identity
	unsub := p.OnAuthChange(func(i *models.Identity) { events = append(events, i) })
	defer unsub()

	ident, err := p.SignUp(ctx, "a@example.com", "secret1", "A")
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}
	if err := p.SignOut(ctx); err != nil {
		t.Fatalf("sign out: %v", err)
	}

	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	if events[0] == nil || events[0].ID != ident.ID {
		t.Fatalf("first event = %+v", events[0])
	}
	if events[1] != nil {
		t.Fatalf("second event should be nil (logged out), got %+v", events[1])
	}
	if p.Current() != nil {
		t.Fatal("Current should be nil after sign-out")
	}

	// events stop after unsubscribe
	unsub()
	if _, err := p.SignIn(ctx, "a@example.com", "secret1"); err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("received event after unsubscribe: %d", len(events))
	}
}
