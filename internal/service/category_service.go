package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/service-crm/internal/cache"
	"github.com/spec-kit/service-crm/internal/domain"
	"github.com/spec-kit/service-crm/internal/repository"
	apperrors "github.com/spec-kit/service-crm/pkg/util"
)

// CategoryService serves the category picker.
type CategoryService struct {
	categories repository.CategoryRepository
	cache      cache.Cache
	ttl        time.Duration
	logger     *zap.Logger
}

// NewCategoryService builds the service.
func NewCategoryService(categories repository.CategoryRepository, c cache.Cache, ttl time.Duration, logger *zap.Logger) *CategoryService {
	return &CategoryService{categories: categories, cache: c, ttl: ttl, logger: orNop(logger)}
}

// ListActive returns active categories ordered by name.
func (s *CategoryService) ListActive(ctx context.Context) ([]domain.Category, error) {
	var cached []domain.Category
	if cacheGet(ctx, s.cache, s.logger, cache.KeyCategories, &cached) {
		return cached, nil
	}
	categories, err := s.categories.ListActive(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if categories == nil {
		categories = []domain.Category{}
	}
	cacheSet(ctx, s.cache, s.logger, cache.KeyCategories, categories, s.ttl)
	return categories, nil
}

// Create adds a category and drops the cached list.
func (s *CategoryService) Create(ctx context.Context, name, description string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("name is required", map[string]any{"field": "name"})
	}
	category := &domain.Category{Name: name, Description: strings.TrimSpace(description), IsActive: true}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, apperrors.MapError(err)
	}
	cacheInvalidate(ctx, s.cache, s.logger, cache.KeyCategories)
	return category, nil
}
