package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/dafibh/sentinel/sentinel-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type defaultCategory struct {
	name string
	icon string
}

// DefaultIncomeCategories are created for every new user
var DefaultIncomeCategories = []defaultCategory{
	{"Salary", "briefcase"},
	{"Freelance", "laptop"},
	{"Investment", "trending-up"},
	{"Bonus", "gift"},
	{"Other Income", "plus-circle"},
}

// DefaultExpenseCategories are created for every new user
var DefaultExpenseCategories = []defaultCategory{
	{"Groceries", "shopping-cart"},
	{"Transport", "car"},
	{"Utilities", "zap"},
	{"Entertainment", "film"},
	{"Healthcare", "heart"},
	{"Dining", "coffee"},
	{"Shopping", "shopping-bag"},
	{"Education", "book"},
	{"Insurance", "shield"},
	{"Other Expense", "more-horizontal"},
}

// ProvisioningService prepares the data a new user starts with
type ProvisioningService struct {
	categoryRepo domain.CategoryRepository
}

// NewProvisioningService creates a new ProvisioningService
func NewProvisioningService(categoryRepo domain.CategoryRepository) *ProvisioningService {
	return &ProvisioningService{categoryRepo: categoryRepo}
}

// ProvisionUser creates the default income and expense categories for the user.
// Categories the user already has are skipped; the number created is returned.
func (s *ProvisioningService) ProvisionUser(ctx context.Context, userID uuid.UUID) (int, error) {
	created := 0

	groups := []struct {
		categoryType domain.CategoryType
		defaults     []defaultCategory
	}{
		{domain.CategoryTypeIncome, DefaultIncomeCategories},
		{domain.CategoryTypeExpense, DefaultExpenseCategories},
	}

	for _, group := range groups {
		for _, def := range group.defaults {
			_, err := s.categoryRepo.GetByName(ctx, userID, def.name, group.categoryType)
			if err == nil {
				continue
			}
			if !errors.Is(err, domain.ErrCategoryNotFound) {
				return created, fmt.Errorf("failed to look up category %q: %w", def.name, err)
			}

			owner := userID
			icon := def.icon
			_, err = s.categoryRepo.Create(ctx, &domain.Category{
				UserID:    &owner,
				Name:      def.name,
				Type:      group.categoryType,
				Icon:      &icon,
				IsDefault: true,
			})
			if errors.Is(err, domain.ErrCategoryAlreadyExists) {
				continue
			}
			if err != nil {
				return created, fmt.Errorf("failed to create category %q: %w", def.name, err)
			}
			created++
		}
	}

	log.Info().
		Str("user_id", userID.String()).
		Int("categories_created", created).
		Msg("User provisioned")

	return created, nil
}
