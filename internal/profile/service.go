package profile

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/othmanee23/oraxonoptic/internal/authz"
	"github.com/othmanee23/oraxonoptic/internal/shared"
)

// Account is the profile view of the signed-in user.
type Account struct {
	ID          int64
	Email       string
	FirstName   string
	LastName    string
	Phone       string
	Role        authz.Role
	Permissions authz.PermissionSet
	IsActive    bool
	LastLogin   *time.Time
	CreatedAt   time.Time
}

// Effective resolves the permissions in force for this account.
func (a *Account) Effective() authz.PermissionSet {
	return authz.Effective(a.Role, a.Permissions)
}

// RepositoryPort defines data access for the profile screen.
type RepositoryPort interface {
	Get(ctx context.Context, userID int64) (*Account, error)
	PasswordHash(ctx context.Context, userID int64) (string, error)
	UpdateIdentity(ctx context.Context, userID int64, firstName, lastName, phone string) error
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error
}

// Service handles profile reads and edits.
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Get fetches the canonical profile of a user.
func (s *Service) Get(ctx context.Context, userID int64) (*Account, error) {
	return s.repo.Get(ctx, userID)
}

// UpdateInput carries the editable profile fields. The password block is
// optional; when Password is set the current password must check out.
type UpdateInput struct {
	FirstName       string
	LastName        string
	Phone           string
	CurrentPassword string
	Password        string
	ConfirmPassword string
}

// Update edits identity and, when requested, rotates the password. It returns
// the canonical profile so the caller can reconcile the session snapshot.
func (s *Service) Update(ctx context.Context, userID int64, in UpdateInput) (*Account, error) {
	fields := shared.FieldErrors{}
	if len(in.FirstName) < 2 || len(in.FirstName) > 50 {
		fields.Add("first_name", "Le prénom doit contenir entre 2 et 50 caractères")
	}
	if len(in.LastName) < 2 || len(in.LastName) > 50 {
		fields.Add("last_name", "Le nom doit contenir entre 2 et 50 caractères")
	}
	changePassword := in.Password != "" || in.ConfirmPassword != "" || in.CurrentPassword != ""
	if changePassword {
		if in.CurrentPassword == "" {
			fields.Add("current_password", "Le mot de passe actuel est requis")
		}
		if len(in.Password) < 8 {
			fields.Add("password", "Le mot de passe doit contenir au moins 8 caractères")
		} else if in.Password != in.ConfirmPassword {
			fields.Add("password_confirmation", "Les mots de passe ne correspondent pas")
		}
	}
	if err := fields.AsError(); err != nil {
		return nil, err
	}

	if changePassword {
		hash, err := s.repo.PasswordHash(ctx, userID)
		if err != nil {
			return nil, err
		}
		if bcrypt.CompareHashAndPassword([]byte(hash), []byte(in.CurrentPassword)) != nil {
			return nil, shared.FieldErrors{"current_password": "Le mot de passe actuel est incorrect"}
		}
		rehashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		if err := s.repo.UpdatePassword(ctx, userID, string(rehashed)); err != nil {
			return nil, err
		}
	}

	if err := s.repo.UpdateIdentity(ctx, userID, in.FirstName, in.LastName, in.Phone); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, userID)
}

// SnapshotProfile converts the canonical account into the partial profile the
// session layer merges during Refresh.
func SnapshotProfile(account *Account) shared.Profile {
	email := account.Email
	first := account.FirstName
	last := account.LastName
	role := string(account.Role)
	active := account.IsActive
	return shared.Profile{
		Email:       &email,
		FirstName:   &first,
		LastName:    &last,
		Role:        &role,
		Permissions: account.Effective().Strings(),
		IsActive:    &active,
		LastLogin:   account.LastLogin,
	}
}
