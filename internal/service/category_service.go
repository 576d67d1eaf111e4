package service

import (
	"context"
	"strings"

	"github.com/dafibh/sentinel/sentinel-backend/internal/domain"
	"github.com/google/uuid"
)

// CategoryService handles category-related business logic
type CategoryService struct {
	categoryRepo domain.CategoryRepository
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(categoryRepo domain.CategoryRepository) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo}
}

// CategoryInput holds the input for creating or updating a category
type CategoryInput struct {
	Name        string
	Type        domain.CategoryType
	Description *string
	Icon        *string
}

func (in CategoryInput) validate() (string, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return "", domain.ErrNameRequired
	}
	if len(name) > domain.MaxCategoryNameLength {
		return "", domain.ErrNameTooLong
	}
	if !in.Type.IsValid() {
		return "", domain.ErrInvalidCategoryType
	}
	return name, nil
}

// CreateCategory creates a category owned by the user
func (s *CategoryService) CreateCategory(ctx context.Context, userID uuid.UUID, input CategoryInput) (*domain.Category, error) {
	name, err := input.validate()
	if err != nil {
		return nil, err
	}

	owner := userID
	return s.categoryRepo.Create(ctx, &domain.Category{
		UserID:      &owner,
		Name:        name,
		Type:        input.Type,
		Description: input.Description,
		Icon:        input.Icon,
	})
}

// GetCategories lists the user's categories and the system defaults
func (s *CategoryService) GetCategories(ctx context.Context, userID uuid.UUID, filters *domain.CategoryFilters) ([]*domain.Category, error) {
	if filters != nil && filters.Type != nil && !filters.Type.IsValid() {
		return nil, domain.ErrInvalidCategoryType
	}
	return s.categoryRepo.GetAllByUser(ctx, userID, filters)
}

// GetCategoryByID retrieves a category visible to the user
func (s *CategoryService) GetCategoryByID(ctx context.Context, userID uuid.UUID, id int32) (*domain.Category, error) {
	return s.categoryRepo.GetByID(ctx, userID, id)
}

// UpdateCategory updates a category owned by the user. System defaults are read-only.
func (s *CategoryService) UpdateCategory(ctx context.Context, userID uuid.UUID, id int32, input CategoryInput) (*domain.Category, error) {
	name, err := input.validate()
	if err != nil {
		return nil, err
	}

	existing, err := s.categoryRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if existing.UserID == nil {
		return nil, domain.ErrCategoryNotFound
	}

	existing.Name = name
	existing.Type = input.Type
	existing.Description = input.Description
	existing.Icon = input.Icon
	return s.categoryRepo.Update(ctx, existing)
}

// DeleteCategory deletes a category owned by the user
func (s *CategoryService) DeleteCategory(ctx context.Context, userID uuid.UUID, id int32) error {
	return s.categoryRepo.Delete(ctx, userID, id)
}
