package stores

import (
	"context"
	"errors"

	"github.com/othmanee23/oraxonoptic/internal/authz"
	"github.com/othmanee23/oraxonoptic/internal/shared"
)

// ErrNotAssigned indicates a store outside the caller's assignment.
var ErrNotAssigned = errors.New("stores: store not assigned to user")

// RepositoryPort defines data access for stores.
type RepositoryPort interface {
	List(ctx context.Context) ([]Store, error)
	Get(ctx context.Context, id int64) (*Store, error)
	ForUser(ctx context.Context, userID int64) ([]Store, error)
}

// SessionSelector persists the store selection on the session snapshot.
type SessionSelector interface {
	SelectStore(ctx context.Context, sess *shared.Session, storeID *int64) error
}

// CacheInvalidator drops cached aggregates for a store after the selection
// or underlying data changes.
type CacheInvalidator interface {
	InvalidateStore(ctx context.Context, storeID int64) error
}

// Service handles store listing and scope selection.
type Service struct {
	repo     RepositoryPort
	sessions SessionSelector
	cache    CacheInvalidator
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, sessions SessionSelector, cache CacheInvalidator) *Service {
	return &Service{repo: repo, sessions: sessions, cache: cache}
}

// ListFor returns the stores the session may select. Platform operators see
// every store; shop staff only their assignment.
func (s *Service) ListFor(ctx context.Context, sess *shared.Session) ([]Store, error) {
	if authz.Role(sess.Role) == authz.RoleSuperAdmin || authz.Role(sess.Role) == authz.RoleAdmin {
		return s.repo.List(ctx)
	}
	return s.repo.ForUser(ctx, sess.UserID)
}

// Select changes the session's store scope. Passing nil clears the
// selection. The previous store's cached aggregates are invalidated so a
// later switch back does not serve stale figures.
func (s *Service) Select(ctx context.Context, sess *shared.Session, storeID *int64) error {
	previous := sess.StoreID
	if storeID != nil {
		store, err := s.repo.Get(ctx, *storeID)
		if err != nil {
			return err
		}
		if !store.IsActive {
			return shared.ErrNotFound
		}
		if !s.assigned(ctx, sess, *storeID) {
			return ErrNotAssigned
		}
	}
	if err := s.sessions.SelectStore(ctx, sess, storeID); err != nil {
		return err
	}
	if previous != nil && (storeID == nil || *previous != *storeID) {
		if err := s.cache.InvalidateStore(ctx, *previous); err != nil {
			return err
		}
	}
	return nil
}

// Accessible reports whether the session may read data scoped to storeID.
// It applies the same assignment rules as Select, so a scope header cannot
// reach stores the caller could not select.
func (s *Service) Accessible(ctx context.Context, sess *shared.Session, storeID int64) bool {
	return s.assigned(ctx, sess, storeID)
}

func (s *Service) assigned(ctx context.Context, sess *shared.Session, storeID int64) bool {
	role := authz.Role(sess.Role)
	if role == authz.RoleSuperAdmin || role == authz.RoleAdmin {
		return true
	}
	assigned, err := s.repo.ForUser(ctx, sess.UserID)
	if err != nil {
		return false
	}
	for _, store := range assigned {
		if store.ID == storeID {
			return true
		}
	}
	return false
}
