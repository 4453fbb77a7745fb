package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/othmanee23/oraxonoptic/internal/auth"
	"github.com/othmanee23/oraxonoptic/internal/authz"
	"github.com/othmanee23/oraxonoptic/internal/shared"

	_ "github.com/othmanee23/oraxonoptic/testing"
)

type mockRepo struct {
	usersByEmail map[string]*auth.User
	usersByID    map[int64]*auth.User
	nextID       int64

	verifyTokens map[string]int64
	resetTokens  map[string]int64

	// lookups counts repository hits so tests can assert that local
	// validation short-circuits before any data access.
	lookups int
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		usersByEmail: make(map[string]*auth.User),
		usersByID:    make(map[int64]*auth.User),
		verifyTokens: make(map[string]int64),
		resetTokens:  make(map[string]int64),
		nextID:       1,
	}
}

func (m *mockRepo) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	m.lookups++
	u, ok := m.usersByEmail[email]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (m *mockRepo) FindByID(ctx context.Context, id int64) (*auth.User, error) {
	m.lookups++
	u, ok := m.usersByID[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (m *mockRepo) CreateUser(ctx context.Context, user *auth.User) error {
	m.lookups++
	if _, ok := m.usersByEmail[user.Email]; ok {
		return auth.ErrEmailTaken
	}
	user.ID = m.nextID
	m.nextID++
	user.CreatedAt = time.Now().UTC()
	stored := *user
	m.usersByEmail[user.Email] = &stored
	m.usersByID[user.ID] = &stored
	return nil
}

func (m *mockRepo) RecordLogin(ctx context.Context, userID int64, at time.Time) error {
	if u, ok := m.usersByID[userID]; ok {
		u.LastLogin = &at
	}
	return nil
}

func (m *mockRepo) MarkVerified(ctx context.Context, userID int64, at time.Time) error {
	if u, ok := m.usersByID[userID]; ok {
		u.EmailVerifiedAt = &at
	}
	return nil
}

func (m *mockRepo) CreateVerificationToken(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	m.verifyTokens[token] = userID
	return nil
}

func (m *mockRepo) ConsumeVerificationToken(ctx context.Context, token string) (int64, error) {
	id, ok := m.verifyTokens[token]
	if !ok {
		return 0, shared.ErrInvalidToken
	}
	delete(m.verifyTokens, token)
	return id, nil
}

func (m *mockRepo) CreatePasswordResetToken(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	m.resetTokens[token] = userID
	return nil
}

func (m *mockRepo) ConsumePasswordResetToken(ctx context.Context, token, email string) (int64, error) {
	id, ok := m.resetTokens[token]
	if !ok {
		return 0, shared.ErrInvalidToken
	}
	if u, found := m.usersByID[id]; !found || u.Email != email {
		return 0, shared.ErrInvalidToken
	}
	delete(m.resetTokens, token)
	return id, nil
}

func (m *mockRepo) UpdatePassword(ctx context.Context, userID int64, hash string) error {
	if u, ok := m.usersByID[userID]; ok {
		u.PasswordHash = hash
	}
	return nil
}

type mockMailer struct {
	verifications []string
	resets        []string
	lastToken     string
}

func (m *mockMailer) SendVerification(ctx context.Context, email, token string) error {
	m.verifications = append(m.verifications, email)
	m.lastToken = token
	return nil
}

func (m *mockMailer) SendPasswordReset(ctx context.Context, email, token string) error {
	m.resets = append(m.resets, email)
	m.lastToken = token
	return nil
}

func newService(t *testing.T) (*auth.Service, *mockRepo, *mockMailer, *shared.SessionManager) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessions := shared.NewSessionManager(client, "test-secret", time.Hour)
	repo := newMockRepo()
	mailer := &mockMailer{}
	service := auth.NewService(repo, sessions, mailer, 48*time.Hour, time.Hour)
	return service, repo, mailer, sessions
}

func seedUser(t *testing.T, repo *mockRepo, email, password string, role authz.Role) *auth.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	now := time.Now().UTC()
	user := &auth.User{
		Email:           email,
		FirstName:       "Nadia",
		LastName:        "Benali",
		PasswordHash:    string(hash),
		Role:            role,
		IsActive:        true,
		EmailVerifiedAt: &now,
	}
	require.NoError(t, repo.CreateUser(context.Background(), user))
	repo.lookups = 0
	return user
}

func TestLoginShortPasswordNeverHitsRepository(t *testing.T) {
	service, repo, _, _ := newService(t)
	seedUser(t, repo, "v@oraxon.ma", "longenough", authz.RoleVendeur)

	_, err := service.Login(context.Background(), "v@oraxon.ma", "short", "")

	var fields shared.FieldErrors
	require.ErrorAs(t, err, &fields)
	assert.Contains(t, fields, "password")
	assert.NotContains(t, fields, "email")
	assert.Zero(t, repo.lookups, "local validation must short-circuit before any data access")
}

func TestLoginInvalidEmailNeverHitsRepository(t *testing.T) {
	service, repo, _, _ := newService(t)

	_, err := service.Login(context.Background(), "not-an-email", "longenough", "")

	var fields shared.FieldErrors
	require.ErrorAs(t, err, &fields)
	assert.Contains(t, fields, "email")
	assert.Zero(t, repo.lookups)
}

func TestLoginSuccessIssuesSession(t *testing.T) {
	service, repo, _, sessions := newService(t)
	seedUser(t, repo, "v@oraxon.ma", "longenough", authz.RoleVendeur)

	result, err := service.Login(context.Background(), "v@oraxon.ma", "longenough", "")
	require.NoError(t, err)
	assert.Equal(t, authz.ShopConsoleRoute, result.Redirect)
	assert.NotEmpty(t, result.Session.Token)
	assert.Equal(t, "vendeur", result.Session.Role)
	assert.NotNil(t, result.User.LastLogin)

	restored, err := sessions.Restore(context.Background(), result.Session.Token)
	require.NoError(t, err)
	require.NotNil(t, restored)
	assert.Equal(t, result.User.ID, restored.UserID)
}

func TestLoginIntendedDeepLink(t *testing.T) {
	service, repo, _, _ := newService(t)
	seedUser(t, repo, "v@oraxon.ma", "longenough", authz.RoleVendeur)

	result, err := service.Login(context.Background(), "v@oraxon.ma", "longenough", "/app/stock/42")
	require.NoError(t, err)
	assert.Equal(t, "/app/stock/42", result.Redirect)
}

func TestLoginSuperAdminIgnoresIntendedLink(t *testing.T) {
	service, repo, _, _ := newService(t)
	seedUser(t, repo, "root@oraxon.ma", "longenough", authz.RoleSuperAdmin)

	result, err := service.Login(context.Background(), "root@oraxon.ma", "longenough", "/app/stock/42")
	require.NoError(t, err)
	assert.Equal(t, authz.AdminConsoleRoute, result.Redirect)
}

func TestLoginRejectsUnverifiedAccount(t *testing.T) {
	service, repo, _, _ := newService(t)
	user := seedUser(t, repo, "v@oraxon.ma", "longenough", authz.RoleVendeur)
	repo.usersByID[user.ID].EmailVerifiedAt = nil
	repo.usersByEmail[user.Email].EmailVerifiedAt = nil

	_, err := service.Login(context.Background(), "v@oraxon.ma", "longenough", "")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestLoginRejectsInactiveAccount(t *testing.T) {
	service, repo, _, _ := newService(t)
	user := seedUser(t, repo, "v@oraxon.ma", "longenough", authz.RoleVendeur)
	repo.usersByID[user.ID].IsActive = false
	repo.usersByEmail[user.Email].IsActive = false

	_, err := service.Login(context.Background(), "v@oraxon.ma", "longenough", "")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestSignupPasswordMismatchFlagsConfirmationField(t *testing.T) {
	service, repo, _, _ := newService(t)

	err := service.Signup(context.Background(), auth.SignupInput{
		FirstName:       "Nadia",
		LastName:        "Benali",
		Email:           "n@oraxon.ma",
		Password:        "abcdefgh",
		ConfirmPassword: "abcdefgi",
	})

	var fields shared.FieldErrors
	require.ErrorAs(t, err, &fields)
	assert.Contains(t, fields, "confirmPassword")
	assert.NotContains(t, fields, "password")
	assert.Zero(t, repo.lookups)
}

func TestSignupShortNamesRejected(t *testing.T) {
	service, _, _, _ := newService(t)

	err := service.Signup(context.Background(), auth.SignupInput{
		FirstName:       "N",
		LastName:        "B",
		Email:           "n@oraxon.ma",
		Password:        "abcdefgh",
		ConfirmPassword: "abcdefgh",
	})

	var fields shared.FieldErrors
	require.ErrorAs(t, err, &fields)
	assert.Contains(t, fields, "firstName")
	assert.Contains(t, fields, "lastName")
}

func TestSignupEnqueuesVerificationMail(t *testing.T) {
	service, repo, mailer, _ := newService(t)

	err := service.Signup(context.Background(), auth.SignupInput{
		FirstName:       "Nadia",
		LastName:        "Benali",
		Email:           "n@oraxon.ma",
		Password:        "abcdefgh",
		ConfirmPassword: "abcdefgh",
	})
	require.NoError(t, err)
	require.Len(t, mailer.verifications, 1)

	created := repo.usersByEmail["n@oraxon.ma"]
	require.NotNil(t, created)
	assert.False(t, created.Verified(), "signup must not auto-verify")

	// The verification link completes the account.
	require.NoError(t, service.VerifyEmail(context.Background(), mailer.lastToken))
	assert.True(t, repo.usersByID[created.ID].Verified())
}

func TestSignupDuplicateEmailSurfacesFieldError(t *testing.T) {
	service, repo, _, _ := newService(t)
	seedUser(t, repo, "n@oraxon.ma", "longenough", authz.RoleVendeur)

	err := service.Signup(context.Background(), auth.SignupInput{
		FirstName:       "Nadia",
		LastName:        "Benali",
		Email:           "n@oraxon.ma",
		Password:        "abcdefgh",
		ConfirmPassword: "abcdefgh",
	})

	var fields shared.FieldErrors
	require.ErrorAs(t, err, &fields)
	assert.Contains(t, fields, "email")
}

func TestVerifyEmailUnknownToken(t *testing.T) {
	service, _, _, _ := newService(t)
	err := service.VerifyEmail(context.Background(), "nope")
	assert.ErrorIs(t, err, shared.ErrInvalidToken)
}

func TestForgotPasswordUnknownEmailStillAcks(t *testing.T) {
	service, _, mailer, _ := newService(t)
	require.NoError(t, service.ForgotPassword(context.Background(), "ghost@oraxon.ma"))
	assert.Empty(t, mailer.resets)
}

func TestResetPasswordFlow(t *testing.T) {
	service, repo, mailer, sessions := newService(t)
	user := seedUser(t, repo, "v@oraxon.ma", "oldpassword", authz.RoleVendeur)

	result, err := service.Login(context.Background(), "v@oraxon.ma", "oldpassword", "")
	require.NoError(t, err)

	require.NoError(t, service.ForgotPassword(context.Background(), user.Email))
	require.Len(t, mailer.resets, 1)

	err = service.ResetPassword(context.Background(), mailer.lastToken, user.Email, "newpassword", "newpassword")
	require.NoError(t, err)

	// Old sessions are revoked.
	restored, err := sessions.Restore(context.Background(), result.Session.Token)
	require.NoError(t, err)
	assert.Nil(t, restored)

	// The new password works, the old one does not.
	_, err = service.Login(context.Background(), user.Email, "oldpassword", "")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
	_, err = service.Login(context.Background(), user.Email, "newpassword", "")
	assert.NoError(t, err)
}

func TestResetPasswordMissingLinkParts(t *testing.T) {
	service, _, _, _ := newService(t)
	err := service.ResetPassword(context.Background(), "", "v@oraxon.ma", "newpassword", "newpassword")
	assert.ErrorIs(t, err, shared.ErrInvalidToken)
	err = service.ResetPassword(context.Background(), "tok", "", "newpassword", "newpassword")
	assert.ErrorIs(t, err, shared.ErrInvalidToken)
}

func TestResetPasswordMismatchFlagsConfirmationField(t *testing.T) {
	service, _, _, _ := newService(t)
	err := service.ResetPassword(context.Background(), "tok", "v@oraxon.ma", "abcdefgh", "abcdefgi")
	var fields shared.FieldErrors
	require.ErrorAs(t, err, &fields)
	assert.Contains(t, fields, "confirmPassword")
}

func TestRestoreDropsDeactivatedAccount(t *testing.T) {
	service, repo, _, _ := newService(t)
	user := seedUser(t, repo, "v@oraxon.ma", "longenough", authz.RoleVendeur)

	result, err := service.Login(context.Background(), user.Email, "longenough", "")
	require.NoError(t, err)

	repo.usersByID[user.ID].IsActive = false
	repo.usersByEmail[user.Email].IsActive = false

	restored, err := service.Restore(context.Background(), result.Session.Token)
	require.NoError(t, err)
	assert.Nil(t, restored)
}

func TestRestorePicksUpRoleChange(t *testing.T) {
	service, repo, _, _ := newService(t)
	user := seedUser(t, repo, "v@oraxon.ma", "longenough", authz.RoleVendeur)

	result, err := service.Login(context.Background(), user.Email, "longenough", "")
	require.NoError(t, err)

	repo.usersByID[user.ID].Role = authz.RoleManager
	repo.usersByEmail[user.Email].Role = authz.RoleManager

	restored, err := service.Restore(context.Background(), result.Session.Token)
	require.NoError(t, err)
	require.NotNil(t, restored)
	assert.Equal(t, "manager", restored.Role)
	assert.Contains(t, restored.Permissions, authz.ModuleUtilisateurs)
}
