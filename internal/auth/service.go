package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/othmanee23/oraxonoptic/internal/authz"
	"github.com/othmanee23/oraxonoptic/internal/shared"
)

// ErrEmailTaken indicates a signup against an existing address.
var ErrEmailTaken = errors.New("auth: email already registered")

// Mailer enqueues the transactional emails of the auth flows.
type Mailer interface {
	SendVerification(ctx context.Context, email, token string) error
	SendPasswordReset(ctx context.Context, email, token string) error
}

// Service wraps the authentication business rules.
type Service struct {
	repo      Repository
	sessions  *shared.SessionManager
	mailer    Mailer
	verifyTTL time.Duration
	resetTTL  time.Duration
}

// NewService constructs a new Service.
func NewService(repo Repository, sessions *shared.SessionManager, mailer Mailer, verifyTTL, resetTTL time.Duration) *Service {
	return &Service{repo: repo, sessions: sessions, mailer: mailer, verifyTTL: verifyTTL, resetTTL: resetTTL}
}

// LoginResult is the outcome of a successful authentication.
type LoginResult struct {
	Session  *shared.Session
	User     *User
	Redirect string
}

// Login authenticates credentials and issues a session. Local validation
// failures short-circuit before the repository is consulted. The redirect is
// the administrative console for super_admin regardless of any intended deep
// link, else the intended link or the default app route.
func (s *Service) Login(ctx context.Context, email, password, intended string) (*LoginResult, error) {
	if errs := validateLogin(email, password); errs != nil {
		return nil, errs
	}
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if !user.IsActive || !user.Verified() {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}

	now := time.Now().UTC()
	sess := &shared.Session{
		UserID:      user.ID,
		Email:       user.Email,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		Role:        string(user.Role),
		Permissions: user.EffectivePermissions().Strings(),
		IsActive:    user.IsActive,
		LastLogin:   now,
	}
	if err := s.sessions.Issue(ctx, sess); err != nil {
		return nil, err
	}
	if err := s.repo.RecordLogin(ctx, user.ID, now); err != nil {
		return nil, err
	}
	user.LastLogin = &now

	redirect := intended
	if user.Role == authz.RoleSuperAdmin {
		redirect = authz.AdminConsoleRoute
	} else if redirect == "" {
		redirect = authz.ShopConsoleRoute
	}
	return &LoginResult{Session: sess, User: user, Redirect: redirect}, nil
}

// Logout revokes the session behind the token.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.sessions.Clear(ctx, token)
}

// SignupInput carries the signup form fields.
type SignupInput struct {
	FirstName       string
	LastName        string
	Email           string
	Phone           string
	Password        string
	ConfirmPassword string
}

// Signup registers a new account pending email verification. It never logs
// the user in: the created account stays unverified until the emailed link
// is followed.
func (s *Service) Signup(ctx context.Context, in SignupInput) error {
	if errs := validateSignup(in); errs != nil {
		return errs
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user := &User{
		Email:        in.Email,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Phone:        in.Phone,
		PasswordHash: string(hash),
		Role:         authz.RoleVendeur,
		IsActive:     true,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return shared.FieldErrors{"email": "Cette adresse email est déjà utilisée"}
		}
		return err
	}
	token := uuid.NewString()
	if err := s.repo.CreateVerificationToken(ctx, user.ID, token, time.Now().UTC().Add(s.verifyTTL)); err != nil {
		return err
	}
	return s.mailer.SendVerification(ctx, user.Email, token)
}

// VerifyEmail consumes a verification token and marks the account verified.
func (s *Service) VerifyEmail(ctx context.Context, token string) error {
	userID, err := s.repo.ConsumeVerificationToken(ctx, token)
	if err != nil {
		return shared.ErrInvalidToken
	}
	return s.repo.MarkVerified(ctx, userID, time.Now().UTC())
}

// ForgotPassword issues a reset token when the address is known. Unknown
// addresses still succeed so the endpoint cannot be used to enumerate
// accounts.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	if !validEmail(email) {
		return shared.FieldErrors{"email": "Adresse email invalide"}
	}
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		return err
	}
	token := uuid.NewString()
	if err := s.repo.CreatePasswordResetToken(ctx, user.ID, token, time.Now().UTC().Add(s.resetTTL)); err != nil {
		return err
	}
	return s.mailer.SendPasswordReset(ctx, user.Email, token)
}

// ResetPassword validates the token/email pair from the reset link and
// replaces the password. Every live session of the account is revoked.
func (s *Service) ResetPassword(ctx context.Context, token, email, password, confirm string) error {
	if token == "" || email == "" {
		return shared.ErrInvalidToken
	}
	errs := shared.FieldErrors{}
	validatePasswordPair(errs, password, confirm)
	if err := errs.AsError(); err != nil {
		return err
	}
	userID, err := s.repo.ConsumePasswordResetToken(ctx, token, email)
	if err != nil {
		return shared.ErrInvalidToken
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return err
	}
	return s.sessions.ClearUser(ctx, userID)
}

// Restore rehydrates the session behind a bearer token, refreshing it
// against the canonical account row so a stale snapshot cannot outlive a
// deactivation or role change.
func (s *Service) Restore(ctx context.Context, token string) (*shared.Session, error) {
	sess, err := s.sessions.Restore(ctx, token)
	if err != nil || sess == nil {
		return nil, err
	}
	user, err := s.repo.FindByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			_ = s.sessions.Clear(ctx, token)
			return nil, nil
		}
		return nil, err
	}
	if !user.IsActive {
		_ = s.sessions.Clear(ctx, token)
		return nil, nil
	}
	role := string(user.Role)
	if err := s.sessions.Refresh(ctx, sess, shared.Profile{
		Email:       &user.Email,
		FirstName:   &user.FirstName,
		LastName:    &user.LastName,
		Role:        &role,
		Permissions: user.EffectivePermissions().Strings(),
		IsActive:    &user.IsActive,
		LastLogin:   user.LastLogin,
	}); err != nil {
		return nil, err
	}
	return sess, nil
}
