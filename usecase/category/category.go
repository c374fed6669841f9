package category

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/fastygo/focus/domain"
	"github.com/fastygo/focus/repository"
)

type UseCase struct {
	categories repository.CategoryRepository
	logger     *zap.Logger
}

func New(categories repository.CategoryRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{categories: categories, logger: logger}
}

func (uc *UseCase) Create(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	if category == nil || category.UserID == "" || strings.TrimSpace(category.Name) == "" {
		return nil, domain.ErrInvalidPayload
	}
	icon, err := domain.ParseIcon(string(category.Icon))
	if err != nil {
		return nil, err
	}
	category.Icon = icon
	category.Name = strings.TrimSpace(category.Name)

	created, err := uc.categories.Create(ctx, category)
	if err != nil {
		return nil, domain.Unavailable("create category", err)
	}
	return created, nil
}

func (uc *UseCase) List(ctx context.Context, userID string) ([]domain.Category, error) {
	categories, err := uc.categories.ListByUser(ctx, userID)
	if err != nil {
		return nil, domain.Unavailable("list categories", err)
	}
	return categories, nil
}
