package profile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/othmanee23/oraxonoptic/internal/authz"
	"github.com/othmanee23/oraxonoptic/internal/shared"
)

type mockRepository struct {
	account         Account
	hash            string
	passwordUpdates int
	identityUpdates int
}

func (m *mockRepository) Get(ctx context.Context, userID int64) (*Account, error) {
	if userID != m.account.ID {
		return nil, shared.ErrNotFound
	}
	copied := m.account
	return &copied, nil
}

func (m *mockRepository) PasswordHash(ctx context.Context, userID int64) (string, error) {
	if userID != m.account.ID {
		return "", shared.ErrNotFound
	}
	return m.hash, nil
}

func (m *mockRepository) UpdateIdentity(ctx context.Context, userID int64, firstName, lastName, phone string) error {
	if userID != m.account.ID {
		return shared.ErrNotFound
	}
	m.account.FirstName = firstName
	m.account.LastName = lastName
	m.account.Phone = phone
	m.identityUpdates++
	return nil
}

func (m *mockRepository) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	if userID != m.account.ID {
		return shared.ErrNotFound
	}
	m.hash = passwordHash
	m.passwordUpdates++
	return nil
}

func newMockRepository(t *testing.T) *mockRepository {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("ancienmdp"), bcrypt.MinCost)
	require.NoError(t, err)
	return &mockRepository{
		account: Account{ID: 7, Email: "v@oraxon.ma", FirstName: "Nadia", LastName: "Benali", Role: authz.RoleVendeur, IsActive: true},
		hash:    string(hash),
	}
}

func TestUpdateIdentityOnly(t *testing.T) {
	repo := newMockRepository(t)
	service := NewService(repo)

	account, err := service.Update(context.Background(), 7, UpdateInput{
		FirstName: "Yasmine", LastName: "Benali", Phone: "0600000000",
	})
	require.NoError(t, err)
	assert.Equal(t, "Yasmine", account.FirstName)
	assert.Equal(t, 0, repo.passwordUpdates)
}

func TestUpdatePasswordRequiresCurrent(t *testing.T) {
	repo := newMockRepository(t)
	service := NewService(repo)

	_, err := service.Update(context.Background(), 7, UpdateInput{
		FirstName: "Nadia", LastName: "Benali",
		Password: "nouveaumdp", ConfirmPassword: "nouveaumdp",
	})
	var fields shared.FieldErrors
	require.ErrorAs(t, err, &fields)
	assert.Contains(t, fields, "current_password")
	assert.Equal(t, 0, repo.passwordUpdates)
	assert.Equal(t, 0, repo.identityUpdates)
}

func TestUpdatePasswordWrongCurrent(t *testing.T) {
	repo := newMockRepository(t)
	service := NewService(repo)

	_, err := service.Update(context.Background(), 7, UpdateInput{
		FirstName: "Nadia", LastName: "Benali",
		CurrentPassword: "pasbon", Password: "nouveaumdp", ConfirmPassword: "nouveaumdp",
	})
	var fields shared.FieldErrors
	require.ErrorAs(t, err, &fields)
	assert.Contains(t, fields, "current_password")
	assert.Equal(t, 0, repo.passwordUpdates)
}

func TestUpdatePasswordMismatch(t *testing.T) {
	service := NewService(newMockRepository(t))

	_, err := service.Update(context.Background(), 7, UpdateInput{
		FirstName: "Nadia", LastName: "Benali",
		CurrentPassword: "ancienmdp", Password: "nouveaumdp", ConfirmPassword: "autrechose",
	})
	var fields shared.FieldErrors
	require.ErrorAs(t, err, &fields)
	assert.Contains(t, fields, "password_confirmation")
}

func TestUpdatePasswordTooShort(t *testing.T) {
	service := NewService(newMockRepository(t))

	_, err := service.Update(context.Background(), 7, UpdateInput{
		FirstName: "Nadia", LastName: "Benali",
		CurrentPassword: "ancienmdp", Password: "court", ConfirmPassword: "court",
	})
	var fields shared.FieldErrors
	require.ErrorAs(t, err, &fields)
	assert.Contains(t, fields, "password")
}

func TestUpdatePasswordRotates(t *testing.T) {
	repo := newMockRepository(t)
	service := NewService(repo)

	_, err := service.Update(context.Background(), 7, UpdateInput{
		FirstName: "Nadia", LastName: "Benali",
		CurrentPassword: "ancienmdp", Password: "nouveaumdp", ConfirmPassword: "nouveaumdp",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.passwordUpdates)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.hash), []byte("nouveaumdp")))
	assert.Error(t, bcrypt.CompareHashAndPassword([]byte(repo.hash), []byte("ancienmdp")))
}

func TestUpdateShortName(t *testing.T) {
	repo := newMockRepository(t)
	service := NewService(repo)

	_, err := service.Update(context.Background(), 7, UpdateInput{FirstName: "N", LastName: "Benali"})
	var fields shared.FieldErrors
	require.ErrorAs(t, err, &fields)
	assert.Contains(t, fields, "first_name")
	assert.Equal(t, 0, repo.identityUpdates)
}

func TestSnapshotProfileCarriesCanonicalFields(t *testing.T) {
	repo := newMockRepository(t)
	account, err := repo.Get(context.Background(), 7)
	require.NoError(t, err)

	p := SnapshotProfile(account)
	require.NotNil(t, p.Role)
	assert.Equal(t, "vendeur", *p.Role)
	require.NotNil(t, p.IsActive)
	assert.True(t, *p.IsActive)
	assert.NotEmpty(t, p.Permissions)
}
