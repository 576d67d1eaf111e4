package service

import (
	"context"
	"time"

	"github.com/dafibh/sentinel/sentinel-backend/internal/domain"
	"github.com/dafibh/sentinel/sentinel-backend/internal/metrics"
	"github.com/dafibh/sentinel/sentinel-backend/internal/util"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BudgetService handles budget-related business logic
type BudgetService struct {
	budgetRepo   domain.BudgetRepository
	categoryRepo domain.CategoryRepository
	expenseRepo  domain.ExpenseRepository
	now          func() time.Time
}

// NewBudgetService creates a new BudgetService
func NewBudgetService(budgetRepo domain.BudgetRepository, categoryRepo domain.CategoryRepository, expenseRepo domain.ExpenseRepository) *BudgetService {
	return &BudgetService{
		budgetRepo:   budgetRepo,
		categoryRepo: categoryRepo,
		expenseRepo:  expenseRepo,
		now:          time.Now,
	}
}

// SetClock overrides the clock used for "current month" lookups
func (s *BudgetService) SetClock(now func() time.Time) {
	s.now = now
}

// BudgetInput holds the input for creating or updating a budget
type BudgetInput struct {
	CategoryID  int32
	LimitAmount decimal.Decimal
	StartDate   time.Time
	EndDate     time.Time
}

func (s *BudgetService) validate(ctx context.Context, userID uuid.UUID, input BudgetInput) (*domain.Category, error) {
	if input.LimitAmount.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}
	if util.DateOnly(input.EndDate).Before(util.DateOnly(input.StartDate)) {
		return nil, domain.ErrInvalidRange
	}
	return s.categoryRepo.GetByID(ctx, userID, input.CategoryID)
}

// CreateBudget creates a budget for one of the user's categories
func (s *BudgetService) CreateBudget(ctx context.Context, userID uuid.UUID, input BudgetInput) (*domain.Budget, error) {
	category, err := s.validate(ctx, userID, input)
	if err != nil {
		return nil, err
	}

	return s.budgetRepo.Create(ctx, &domain.Budget{
		UserID:       userID,
		CategoryID:   category.ID,
		CategoryName: category.Name,
		LimitAmount:  input.LimitAmount,
		StartDate:    util.DateOnly(input.StartDate),
		EndDate:      util.DateOnly(input.EndDate),
	})
}

// GetBudgets lists all of the user's budgets
func (s *BudgetService) GetBudgets(ctx context.Context, userID uuid.UUID) ([]*domain.Budget, error) {
	return s.budgetRepo.GetAllByUser(ctx, userID)
}

// GetBudgetByID retrieves one of the user's budgets
func (s *BudgetService) GetBudgetByID(ctx context.Context, userID uuid.UUID, id int32) (*domain.Budget, error) {
	return s.budgetRepo.GetByID(ctx, userID, id)
}

// UpdateBudget replaces a budget's category, limit and period
func (s *BudgetService) UpdateBudget(ctx context.Context, userID uuid.UUID, id int32, input BudgetInput) (*domain.Budget, error) {
	existing, err := s.budgetRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	category, err := s.validate(ctx, userID, input)
	if err != nil {
		return nil, err
	}

	existing.CategoryID = category.ID
	existing.CategoryName = category.Name
	existing.LimitAmount = input.LimitAmount
	existing.StartDate = util.DateOnly(input.StartDate)
	existing.EndDate = util.DateOnly(input.EndDate)
	return s.budgetRepo.Update(ctx, existing)
}

// DeleteBudget deletes one of the user's budgets
func (s *BudgetService) DeleteBudget(ctx context.Context, userID uuid.UUID, id int32) error {
	return s.budgetRepo.Delete(ctx, userID, id)
}

// GetCurrentMonthBudgets lists budgets active on the first day of the given month,
// defaulting to the current month when year or month is nil
func (s *BudgetService) GetCurrentMonthBudgets(ctx context.Context, userID uuid.UUID, year, month *int) ([]*domain.Budget, error) {
	y, m, err := resolveYearMonth(s.now(), year, month)
	if err != nil {
		return nil, err
	}
	first, _ := util.MonthBounds(y, m)
	return s.budgetRepo.GetActive(ctx, userID, first)
}

// GetExceededBudgets lists budgets whose spending is above the limit
func (s *BudgetService) GetExceededBudgets(ctx context.Context, userID uuid.UUID) ([]*domain.Budget, error) {
	budgets, err := s.budgetRepo.GetAllByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	exceeded := []*domain.Budget{}
	for _, b := range budgets {
		categoryID := b.CategoryID
		expenses, err := s.expenseRepo.GetByDateRange(ctx, userID, domain.DateRange{Start: b.StartDate, End: b.EndDate}, &categoryID)
		if err != nil {
			return nil, err
		}
		if metrics.EvaluateBudget(b, expenses).Exceeded {
			exceeded = append(exceeded, b)
		}
	}
	return exceeded, nil
}

// resolveYearMonth defaults missing values to now and validates the result
func resolveYearMonth(now time.Time, year, month *int) (int, time.Month, error) {
	y, m := now.Year(), int(now.Month())
	if year != nil {
		y = *year
	}
	if month != nil {
		m = *month
	}
	if !util.IsValidYearMonth(y, m) {
		return 0, 0, domain.ErrInvalidRange
	}
	return y, time.Month(m), nil
}
