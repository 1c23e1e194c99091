package application

import (
	"context"
	"strings"

	"github.com/atvirokodosprendimai/pressroom/internal/domain"
)

type ReadService struct {
	repo domain.PublishingRepository
}

func NewReadService(repo domain.PublishingRepository) *ReadService {
	return &ReadService{repo: repo}
}

// ListContent narrows by the named scope and orders newest first, with the
// owning account and tags eager-loaded. An empty scope means no status filter.
func (s *ReadService) ListContent(ctx context.Context, scope string, page, pageSize int) (domain.ContentPage, error) {
	var status *domain.ContentStatus
	if strings.TrimSpace(scope) != "" {
		parsed, ok := domain.ParseContentStatus(strings.TrimSpace(scope))
		if !ok {
			return domain.ContentPage{}, &domain.InvalidScopeError{Scope: scope}
		}
		status = &parsed
	}
	if page <= 0 {
		return domain.ContentPage{}, domain.Invalid("page", "must be positive")
	}
	if pageSize <= 0 {
		return domain.ContentPage{}, domain.Invalid("page_size", "must be positive")
	}

	items, total, err := s.repo.ListContentPage(ctx, status, page, pageSize)
	if err != nil {
		return domain.ContentPage{}, err
	}
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return domain.ContentPage{
		Items:       items,
		CurrentPage: page,
		TotalPages:  totalPages,
	}, nil
}

func (s *ReadService) GetContentByID(ctx context.Context, id uint) (domain.Content, error) {
	if id == 0 {
		return domain.Content{}, domain.Invalid("id", "is required")
	}
	return s.repo.GetContentWithRelations(ctx, id)
}

// GetAccountByID returns the account with its profile and contents loaded.
// A missing profile or an empty content list is not an error.
func (s *ReadService) GetAccountByID(ctx context.Context, id uint) (domain.Account, error) {
	if id == 0 {
		return domain.Account{}, domain.Invalid("id", "is required")
	}
	return s.repo.GetAccountWithRelations(ctx, id)
}

func (s *ReadService) GetProfileByAccountID(ctx context.Context, accountID uint) (domain.Profile, error) {
	if accountID == 0 {
		return domain.Profile{}, domain.Invalid("account_id", "is required")
	}
	return s.repo.GetProfileByAccountID(ctx, accountID)
}

func (s *ReadService) GetTagByID(ctx context.Context, id uint) (domain.Tag, error) {
	if id == 0 {
		return domain.Tag{}, domain.Invalid("id", "is required")
	}
	return s.repo.GetTagByID(ctx, id)
}

func (s *ReadService) ListAccounts(ctx context.Context, query string, limit int) ([]domain.Account, error) {
	if limit <= 0 {
		limit = 100
	}
	if limit > 1000 {
		limit = 1000
	}
	return s.repo.ListAccounts(ctx, query, limit)
}

func (s *ReadService) ListTags(ctx context.Context, query string, limit int) ([]domain.Tag, error) {
	if limit <= 0 {
		limit = 100
	}
	if limit > 1000 {
		limit = 1000
	}
	return s.repo.ListTags(ctx, query, limit)
}
