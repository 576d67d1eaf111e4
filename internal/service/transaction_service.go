package service

import (
	"context"
	"strings"
	"time"

	"github.com/dafibh/sentinel/sentinel-backend/internal/domain"
	"github.com/dafibh/sentinel/sentinel-backend/internal/util"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// TransactionService handles income and expense business logic
type TransactionService struct {
	incomeRepo   domain.IncomeRepository
	expenseRepo  domain.ExpenseRepository
	categoryRepo domain.CategoryRepository
	// balanceCheck rejects expenses above the user's current balance
	balanceCheck bool
}

// NewTransactionService creates a new TransactionService
func NewTransactionService(
	incomeRepo domain.IncomeRepository,
	expenseRepo domain.ExpenseRepository,
	categoryRepo domain.CategoryRepository,
	balanceCheck bool,
) *TransactionService {
	return &TransactionService{
		incomeRepo:   incomeRepo,
		expenseRepo:  expenseRepo,
		categoryRepo: categoryRepo,
		balanceCheck: balanceCheck,
	}
}

// IncomeInput holds the input for creating or updating an income
type IncomeInput struct {
	CategoryID  *int32
	Amount      decimal.Decimal
	Date        time.Time
	Description *string
}

// ExpenseInput holds the input for creating or updating an expense
type ExpenseInput struct {
	CategoryID     *int32
	Amount         decimal.Decimal
	Date           time.Time
	Description    *string
	Currency       string
	OriginalAmount *decimal.Decimal
	ExchangeRate   *decimal.Decimal
}

// resolveCategory checks the category is visible to the user and of the expected type
func (s *TransactionService) resolveCategory(ctx context.Context, userID uuid.UUID, id *int32, want domain.CategoryType) (*string, error) {
	if id == nil {
		return nil, nil
	}
	category, err := s.categoryRepo.GetByID(ctx, userID, *id)
	if err != nil {
		return nil, err
	}
	if category.Type != want {
		return nil, domain.ErrInvalidCategoryType
	}
	return &category.Name, nil
}

// CreateIncome records an income
func (s *TransactionService) CreateIncome(ctx context.Context, userID uuid.UUID, input IncomeInput) (*domain.Income, error) {
	if !input.Amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}
	categoryName, err := s.resolveCategory(ctx, userID, input.CategoryID, domain.CategoryTypeIncome)
	if err != nil {
		return nil, err
	}

	return s.incomeRepo.Create(ctx, &domain.Income{
		UserID:       userID,
		CategoryID:   input.CategoryID,
		CategoryName: categoryName,
		Amount:       input.Amount,
		Date:         util.DateOnly(input.Date),
		Description:  input.Description,
	})
}

// GetIncomes lists the user's incomes
func (s *TransactionService) GetIncomes(ctx context.Context, userID uuid.UUID) ([]*domain.Income, error) {
	return s.incomeRepo.GetAllByUser(ctx, userID)
}

// GetIncomeByID retrieves one of the user's incomes
func (s *TransactionService) GetIncomeByID(ctx context.Context, userID uuid.UUID, id int32) (*domain.Income, error) {
	return s.incomeRepo.GetByID(ctx, userID, id)
}

// UpdateIncome replaces an income's fields
func (s *TransactionService) UpdateIncome(ctx context.Context, userID uuid.UUID, id int32, input IncomeInput) (*domain.Income, error) {
	if !input.Amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}
	existing, err := s.incomeRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	categoryName, err := s.resolveCategory(ctx, userID, input.CategoryID, domain.CategoryTypeIncome)
	if err != nil {
		return nil, err
	}

	existing.CategoryID = input.CategoryID
	existing.CategoryName = categoryName
	existing.Amount = input.Amount
	existing.Date = util.DateOnly(input.Date)
	existing.Description = input.Description
	return s.incomeRepo.Update(ctx, existing)
}

// DeleteIncome deletes one of the user's incomes
func (s *TransactionService) DeleteIncome(ctx context.Context, userID uuid.UUID, id int32) error {
	return s.incomeRepo.Delete(ctx, userID, id)
}

func normalizeCurrency(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return domain.DefaultBaseCurrency, nil
	}
	if len(code) != 3 {
		return "", domain.ErrInvalidCurrency
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return "", domain.ErrInvalidCurrency
		}
	}
	return code, nil
}

func (s *TransactionService) buildExpense(ctx context.Context, userID uuid.UUID, input ExpenseInput) (*domain.Expense, error) {
	if !input.Amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}
	currency, err := normalizeCurrency(input.Currency)
	if err != nil {
		return nil, err
	}
	rate := decimal.NewFromInt(1)
	if input.ExchangeRate != nil {
		if !input.ExchangeRate.IsPositive() {
			return nil, domain.ErrInvalidAmount
		}
		rate = *input.ExchangeRate
	}
	if input.OriginalAmount != nil && !input.OriginalAmount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}
	categoryName, err := s.resolveCategory(ctx, userID, input.CategoryID, domain.CategoryTypeExpense)
	if err != nil {
		return nil, err
	}

	return &domain.Expense{
		UserID:         userID,
		CategoryID:     input.CategoryID,
		CategoryName:   categoryName,
		Amount:         input.Amount,
		Date:           util.DateOnly(input.Date),
		Description:    input.Description,
		Currency:       currency,
		OriginalAmount: input.OriginalAmount,
		ExchangeRate:   rate,
	}, nil
}

// CurrentBalance returns total income minus total expense for the user
func (s *TransactionService) CurrentBalance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	income, err := s.incomeRepo.SumAll(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	expense, err := s.expenseRepo.SumAll(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	return income.Sub(expense), nil
}

// CreateExpense records an expense. With the balance check enabled, amounts above
// the current balance are rejected with ErrInsufficientBalance.
func (s *TransactionService) CreateExpense(ctx context.Context, userID uuid.UUID, input ExpenseInput) (*domain.Expense, error) {
	expense, err := s.buildExpense(ctx, userID, input)
	if err != nil {
		return nil, err
	}

	if s.balanceCheck {
		balance, err := s.CurrentBalance(ctx, userID)
		if err != nil {
			return nil, err
		}
		if expense.Amount.GreaterThan(balance) {
			log.Debug().
				Str("user_id", userID.String()).
				Str("amount", expense.Amount.StringFixed(2)).
				Str("balance", balance.StringFixed(2)).
				Msg("Expense rejected by balance check")
			return nil, domain.ErrInsufficientBalance
		}
	}

	return s.expenseRepo.Create(ctx, expense)
}

// GetExpenses lists the user's expenses
func (s *TransactionService) GetExpenses(ctx context.Context, userID uuid.UUID) ([]*domain.Expense, error) {
	return s.expenseRepo.GetAllByUser(ctx, userID)
}

// GetExpenseByID retrieves one of the user's expenses
func (s *TransactionService) GetExpenseByID(ctx context.Context, userID uuid.UUID, id int32) (*domain.Expense, error) {
	return s.expenseRepo.GetByID(ctx, userID, id)
}

// UpdateExpense replaces an expense's fields
func (s *TransactionService) UpdateExpense(ctx context.Context, userID uuid.UUID, id int32, input ExpenseInput) (*domain.Expense, error) {
	existing, err := s.expenseRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	updated, err := s.buildExpense(ctx, userID, input)
	if err != nil {
		return nil, err
	}

	updated.ID = existing.ID
	return s.expenseRepo.Update(ctx, updated)
}

// DeleteExpense deletes one of the user's expenses
func (s *TransactionService) DeleteExpense(ctx context.Context, userID uuid.UUID, id int32) error {
	return s.expenseRepo.Delete(ctx, userID, id)
}
