package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/classfeed/classfeed/go-services/internal/models"
	"github.com/classfeed/classfeed/go-services/internal/session"
	"github.com/classfeed/classfeed/go-services/pkg/metrics"
)

var (
	// ErrLookupFailed wraps store/network failures during a profile lookup,
	// distinct from the profile simply not existing.
	ErrLookupFailed = errors.New("profile lookup failed")
	// ErrInvalidRole flags a stored role value outside the known enum — a
	// data-integrity fault, never silently defaulted.
	ErrInvalidRole = errors.New("invalid stored role")
	// ErrPermissionDenied is returned when the acting session may not perform
	// the requested operation. No store call is made in that case.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrNoSuchUser is returned by the role-grant flow when no profile matches
	// the target email.
	ErrNoSuchUser = errors.New("no user found with this email")
)

// Service encapsulates profile business logic: registration, role resolution
// and the instructor role-grant flow.
type Service struct {
	repo ProfileRepository
}

func NewService(r ProfileRepository) *Service {
	return &Service{repo: r}
}

// Register creates the profile document for a freshly signed-up identity.
// New accounts always start as students; promotion happens through
// GrantInstructor.
func (s *Service) Register(ctx context.Context, ident *models.Identity, name string) (*models.UserProfile, error) {
	if ident == nil || ident.ID == "" {
		return nil, fmt.Errorf("identity required for registration")
	}
	if name == "" {
		name = ident.DisplayName
	}
	p := &models.UserProfile{
		ID:        ident.ID,
		Name:      name,
		Email:     ident.Email,
		Role:      models.RoleStudent,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}
	return p, nil
}

// GetByID returns the profile for an identity id, or (nil, nil) when absent.
func (s *Service) GetByID(ctx context.Context, id string) (*models.UserProfile, error) {
	return s.repo.GetByID(ctx, id)
}

// ResolveRole looks the profile up by identity id and reports its role.
// Outcomes are kept distinct so callers can decide the fallback themselves:
//   - (role, true, nil)    profile exists, stored role returned verbatim
//   - ("", false, nil)     no profile document for the id
//   - ("", false, err)     lookup failed (wraps ErrLookupFailed)
//   - ("", true, err)      profile exists but its role is unrecognized (ErrInvalidRole)
func (s *Service) ResolveRole(ctx context.Context, userID string) (models.Role, bool, error) {
	p, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return models.RoleUnknown, false, fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}
	if p == nil {
		return models.RoleUnknown, false, nil
	}
	if !p.Role.Valid() {
		return models.RoleUnknown, true, fmt.Errorf("%w: %q for user %s", ErrInvalidRole, p.Role, userID)
	}
	return p.Role, true, nil
}

// ListByRole returns all profiles carrying the given role (the instructor
// and student roster screens).
func (s *Service) ListByRole(ctx context.Context, role models.Role) ([]*models.UserProfile, error) {
	return s.repo.FindByRole(ctx, role)
}

// List returns every profile regardless of role.
func (s *Service) List(ctx context.Context) ([]*models.UserProfile, error) {
	return s.repo.List(ctx)
}

// GrantInstructor promotes the profile matching the target email to
// instructor, optionally renaming it. The acting session must itself be
// instructor-or-above; the check runs before any store access.
func (s *Service) GrantInstructor(ctx context.Context, actor session.Session, email, name string) (*models.UserProfile, error) {
	if !actor.Authenticated || !actor.Role.AtLeast(models.RoleInstructor) {
		metrics.PermissionDenied.WithLabelValues("grant").Inc()
		return nil, ErrPermissionDenied
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, ErrNoSuchUser
	}
	matches, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}
	if len(matches) == 0 {
		return nil, ErrNoSuchUser
	}
	// first match wins, mirroring the original grant flow
	target := matches[0]
	if err := s.repo.UpdateRole(ctx, target.ID, name, models.RoleInstructor); err != nil {
		return nil, fmt.Errorf("update role: %w", err)
	}
	target.Role = models.RoleInstructor
	if name != "" {
		target.Name = name
	}
	return target, nil
}
