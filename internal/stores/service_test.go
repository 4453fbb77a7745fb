package stores

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/othmanee23/oraxonoptic/internal/shared"
)

type mockRepository struct {
	stores      map[int64]Store
	assignments map[int64][]int64
}

func (m *mockRepository) List(ctx context.Context) ([]Store, error) {
	out := []Store{}
	for _, s := range m.stores {
		out = append(out, s)
	}
	return out, nil
}

func (m *mockRepository) Get(ctx context.Context, id int64) (*Store, error) {
	s, ok := m.stores[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &s, nil
}

func (m *mockRepository) ForUser(ctx context.Context, userID int64) ([]Store, error) {
	out := []Store{}
	for _, id := range m.assignments[userID] {
		if s, ok := m.stores[id]; ok && s.IsActive {
			out = append(out, s)
		}
	}
	return out, nil
}

type mockSelector struct{}

func (mockSelector) SelectStore(ctx context.Context, sess *shared.Session, storeID *int64) error {
	sess.StoreID = storeID
	return nil
}

type mockInvalidator struct {
	invalidated []int64
}

func (m *mockInvalidator) InvalidateStore(ctx context.Context, storeID int64) error {
	m.invalidated = append(m.invalidated, storeID)
	return nil
}

func fixture() (*mockRepository, *mockInvalidator, *Service) {
	repo := &mockRepository{
		stores: map[int64]Store{
			1: {ID: 1, Name: "Optique Centre", IsActive: true},
			2: {ID: 2, Name: "Optique Marina", IsActive: true},
			3: {ID: 3, Name: "Ancien magasin", IsActive: false},
		},
		assignments: map[int64][]int64{7: {1}},
	}
	cache := &mockInvalidator{}
	return repo, cache, NewService(repo, mockSelector{}, cache)
}

func vendeurSession() *shared.Session {
	return &shared.Session{UserID: 7, Role: "vendeur"}
}

func TestListForShopStaffSeesAssignment(t *testing.T) {
	_, _, service := fixture()

	list, err := service.ListFor(context.Background(), vendeurSession())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(1), list[0].ID)
}

func TestListForAdminSeesAll(t *testing.T) {
	_, _, service := fixture()

	list, err := service.ListFor(context.Background(), &shared.Session{UserID: 1, Role: "admin"})
	require.NoError(t, err)
	assert.Len(t, list, 3)
}

func TestSelectAssignedStore(t *testing.T) {
	_, _, service := fixture()
	sess := vendeurSession()

	id := int64(1)
	require.NoError(t, service.Select(context.Background(), sess, &id))
	require.NotNil(t, sess.StoreID)
	assert.Equal(t, int64(1), *sess.StoreID)
}

func TestSelectUnassignedStoreForbidden(t *testing.T) {
	_, _, service := fixture()
	sess := vendeurSession()

	id := int64(2)
	err := service.Select(context.Background(), sess, &id)
	assert.ErrorIs(t, err, ErrNotAssigned)
	assert.Nil(t, sess.StoreID)
}

func TestSelectInactiveStore(t *testing.T) {
	_, _, service := fixture()
	sess := &shared.Session{UserID: 1, Role: "admin"}

	id := int64(3)
	err := service.Select(context.Background(), sess, &id)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestSelectClearInvalidatesPreviousCache(t *testing.T) {
	_, cache, service := fixture()
	sess := vendeurSession()

	id := int64(1)
	require.NoError(t, service.Select(context.Background(), sess, &id))
	assert.Empty(t, cache.invalidated)

	require.NoError(t, service.Select(context.Background(), sess, nil))
	assert.Nil(t, sess.StoreID)
	assert.Equal(t, []int64{1}, cache.invalidated)
}

func TestSelectSwitchInvalidatesPreviousCache(t *testing.T) {
	repo, cache, service := fixture()
	repo.assignments[7] = []int64{1, 2}
	sess := vendeurSession()

	first, second := int64(1), int64(2)
	require.NoError(t, service.Select(context.Background(), sess, &first))
	require.NoError(t, service.Select(context.Background(), sess, &second))
	assert.Equal(t, []int64{1}, cache.invalidated)
}

func TestAccessibleMatchesSelectionRules(t *testing.T) {
	_, _, service := fixture()

	sess := vendeurSession()
	assert.True(t, service.Accessible(context.Background(), sess, 1))
	assert.False(t, service.Accessible(context.Background(), sess, 2))
	assert.False(t, service.Accessible(context.Background(), sess, 99))

	admin := &shared.Session{UserID: 1, Role: "admin"}
	assert.True(t, service.Accessible(context.Background(), admin, 99))
}
