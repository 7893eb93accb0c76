package service

import (
	"context"
	"strings"

	"kodbank/internal/domain"
	"kodbank/internal/repository"
)

// Limits for recipient discovery.
const (
	ContactListLimit   = 10
	SearchResultLimit  = 5
	MinSearchQueryRune = 3
)

type DirectoryService struct {
	store repository.Store
}

func NewDirectoryService(store repository.Store) *DirectoryService {
	return &DirectoryService{store: store}
}

// List returns other active users as transfer contacts.
func (s *DirectoryService) List(ctx context.Context, userID int64) ([]domain.Contact, error) {
	return s.store.ListActive(ctx, userID, ContactListLimit)
}

// Search matches active users by username or email substring. Short queries
// return nothing rather than the whole directory.
func (s *DirectoryService) Search(ctx context.Context, query string) ([]domain.Contact, error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < MinSearchQueryRune {
		return []domain.Contact{}, nil
	}
	return s.store.SearchActive(ctx, query, SearchResultLimit)
}
