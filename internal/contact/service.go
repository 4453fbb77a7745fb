package contact

import (
	"context"

	"github.com/othmanee23/oraxonoptic/internal/shared"
)

// RepositoryPort defines data access for the inbox.
type RepositoryPort interface {
	List(ctx context.Context, onlyUnread bool, limit, offset int) ([]Message, int, error)
	Get(ctx context.Context, id int64) (*Message, error)
	SetRead(ctx context.Context, id int64, read bool) error
	Delete(ctx context.Context, id int64) error
}

// Service handles the contact-message inbox.
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// List returns a page of messages, optionally unread only.
func (s *Service) List(ctx context.Context, onlyUnread bool, page, perPage int) ([]Message, shared.Pagination, error) {
	messages, total, err := s.repo.List(ctx, onlyUnread, perPage, shared.Offset(page, perPage))
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return messages, shared.NewPagination(page, perPage, total), nil
}

// SetRead flips the read flag and returns the updated message.
func (s *Service) SetRead(ctx context.Context, id int64, read bool) (*Message, error) {
	if err := s.repo.SetRead(ctx, id, read); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// Delete removes a message permanently.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
