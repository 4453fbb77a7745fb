package users

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/othmanee23/oraxonoptic/internal/authz"
	"github.com/othmanee23/oraxonoptic/internal/shared"
)

// ErrEmailTaken indicates a create/update against an existing address.
var ErrEmailTaken = errors.New("users: email already registered")

// RepositoryPort defines data access methods for user management.
type RepositoryPort interface {
	List(ctx context.Context, limit, offset int) ([]User, int, error)
	Get(ctx context.Context, id int64) (*User, error)
	Create(ctx context.Context, user *User, passwordHash string) error
	Update(ctx context.Context, user *User) error
	SetActive(ctx context.Context, id int64, active bool) error
	SetPermissions(ctx context.Context, id int64, override authz.PermissionSet) error
	SetStores(ctx context.Context, id int64, storeIDs []int64) error
}

// SessionRevoker revokes every live session of a user.
type SessionRevoker interface {
	ClearUser(ctx context.Context, userID int64) error
}

// Service handles user management business logic.
type Service struct {
	repo     RepositoryPort
	sessions SessionRevoker
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, sessions SessionRevoker) *Service {
	return &Service{repo: repo, sessions: sessions}
}

// List returns a page of users plus the total count.
func (s *Service) List(ctx context.Context, page, perPage int) ([]User, shared.Pagination, error) {
	users, total, err := s.repo.List(ctx, perPage, shared.Offset(page, perPage))
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return users, shared.NewPagination(page, perPage, total), nil
}

// Get fetches a single user.
func (s *Service) Get(ctx context.Context, id int64) (*User, error) {
	return s.repo.Get(ctx, id)
}

// CreateInput carries the admin-created account fields.
type CreateInput struct {
	Email     string
	FirstName string
	LastName  string
	Phone     string
	Role      string
	Password  string
	StoreIDs  []int64
}

// Create registers an account from the management screen. Unlike signup,
// the account is usable immediately: the admin vouches for the address.
func (s *Service) Create(ctx context.Context, in CreateInput) (*User, error) {
	role, err := authz.ParseRole(in.Role)
	if err != nil {
		return nil, shared.FieldErrors{"role": "Rôle inconnu"}
	}
	if len(in.Password) < 8 {
		return nil, shared.FieldErrors{"password": "Le mot de passe doit contenir au moins 8 caractères"}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	user := &User{
		Email:           in.Email,
		FirstName:       in.FirstName,
		LastName:        in.LastName,
		Phone:           in.Phone,
		Role:            role,
		IsActive:        true,
		EmailVerifiedAt: &now,
		StoreIDs:        in.StoreIDs,
	}
	if err := s.repo.Create(ctx, user, string(hash)); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, shared.FieldErrors{"email": "Cette adresse email est déjà utilisée"}
		}
		return nil, err
	}
	if len(in.StoreIDs) > 0 {
		if err := s.repo.SetStores(ctx, user.ID, in.StoreIDs); err != nil {
			return nil, err
		}
	}
	return user, nil
}

// UpdateInput carries the editable account fields.
type UpdateInput struct {
	FirstName string
	LastName  string
	Phone     string
	Role      string
	StoreIDs  *[]int64
}

// Update edits identity, role and store assignment.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (*User, error) {
	user, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	role, err := authz.ParseRole(in.Role)
	if err != nil {
		return nil, shared.FieldErrors{"role": "Rôle inconnu"}
	}
	user.FirstName = in.FirstName
	user.LastName = in.LastName
	user.Phone = in.Phone
	user.Role = role
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	if in.StoreIDs != nil {
		if err := s.repo.SetStores(ctx, id, *in.StoreIDs); err != nil {
			return nil, err
		}
		user.StoreIDs = *in.StoreIDs
	}
	return user, nil
}

// ToggleActive flips the active flag. Toggling twice returns the account to
// its original state. Deactivation revokes every live session so the change
// takes effect immediately.
func (s *Service) ToggleActive(ctx context.Context, id int64) (*User, error) {
	user, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	user.IsActive = !user.IsActive
	if err := s.repo.SetActive(ctx, id, user.IsActive); err != nil {
		return nil, err
	}
	if !user.IsActive {
		if err := s.sessions.ClearUser(ctx, id); err != nil {
			return nil, err
		}
	}
	return user, nil
}

// SetPermissions installs or clears (nil) the per-user override.
func (s *Service) SetPermissions(ctx context.Context, id int64, raw map[string][]string) (*User, error) {
	user, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	override := authz.FromStrings(raw)
	if err := validateOverride(override); err != nil {
		return nil, err
	}
	if err := s.repo.SetPermissions(ctx, id, override); err != nil {
		return nil, err
	}
	user.Permissions = override
	return user, nil
}

func validateOverride(override authz.PermissionSet) error {
	if override == nil {
		return nil
	}
	valid := map[authz.Action]bool{
		authz.ActionView:   true,
		authz.ActionCreate: true,
		authz.ActionEdit:   true,
		authz.ActionDelete: true,
	}
	for module, actions := range override {
		for _, action := range actions {
			if !valid[action] {
				return shared.FieldErrors{"permissions": "Action inconnue pour le module " + module}
			}
		}
	}
	return nil
}
