package postgres

import (
	"context"
	"fmt"

	"github.com/dafibh/sentinel/sentinel-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const expenseSelect = `
	SELECT e.id, e.user_id, e.category_id, c.name, e.amount, e.date, e.description,
	       e.currency, e.original_amount, e.exchange_rate, e.created_at, e.updated_at
	FROM expenses e
	LEFT JOIN categories c ON c.id = e.category_id`

// ExpenseRepository implements domain.ExpenseRepository using PostgreSQL
type ExpenseRepository struct {
	pool *pgxpool.Pool
}

// NewExpenseRepository creates a new ExpenseRepository
func NewExpenseRepository(pool *pgxpool.Pool) *ExpenseRepository {
	return &ExpenseRepository{pool: pool}
}

type expenseParams struct {
	amount         pgtype.Numeric
	originalAmount pgtype.Numeric
	exchangeRate   pgtype.Numeric
}

func toExpenseParams(expense *domain.Expense) (expenseParams, error) {
	var p expenseParams
	var err error
	if p.amount, err = decimalToPgNumeric(expense.Amount); err != nil {
		return p, fmt.Errorf("invalid amount: %w", err)
	}
	if p.originalAmount, err = decimalPtrToPgNumeric(expense.OriginalAmount); err != nil {
		return p, fmt.Errorf("invalid original amount: %w", err)
	}
	if p.exchangeRate, err = decimalToPgNumeric(expense.ExchangeRate); err != nil {
		return p, fmt.Errorf("invalid exchange rate: %w", err)
	}
	return p, nil
}

// Create records an expense
func (r *ExpenseRepository) Create(ctx context.Context, expense *domain.Expense) (*domain.Expense, error) {
	p, err := toExpenseParams(expense)
	if err != nil {
		return nil, err
	}

	var id int32
	err = r.pool.QueryRow(ctx, `
		INSERT INTO expenses (user_id, category_id, amount, date, description, currency, original_amount, exchange_rate)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		expense.UserID,
		expense.CategoryID,
		p.amount,
		timeToPgDate(expense.Date),
		expense.Description,
		expense.Currency,
		p.originalAmount,
		p.exchangeRate,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("create expense: %w", err)
	}
	return r.GetByID(ctx, expense.UserID, id)
}

// GetByID retrieves an expense within the user's scope
func (r *ExpenseRepository) GetByID(ctx context.Context, userID uuid.UUID, id int32) (*domain.Expense, error) {
	expense, err := scanExpense(r.pool.QueryRow(ctx, expenseSelect+` WHERE e.id = $1 AND e.user_id = $2`, id, userID))
	if err != nil {
		return nil, notFound(err, domain.ErrExpenseNotFound, "get expense")
	}
	return expense, nil
}

// GetByDateRange returns expenses dated within the closed range, optionally for one category
func (r *ExpenseRepository) GetByDateRange(ctx context.Context, userID uuid.UUID, dateRange domain.DateRange, categoryID *int32) ([]*domain.Expense, error) {
	query := expenseSelect + ` WHERE e.user_id = $1 AND e.date BETWEEN $2 AND $3`
	args := []any{userID, timeToPgDate(dateRange.Start), timeToPgDate(dateRange.End)}
	if categoryID != nil {
		query += ` AND e.category_id = $4`
		args = append(args, *categoryID)
	}
	query += ` ORDER BY e.date, e.id`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list expenses by date: %w", err)
	}
	return collect(rows, scanExpense)
}

// GetAllByUser lists every expense of a user, newest first
func (r *ExpenseRepository) GetAllByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Expense, error) {
	rows, err := r.pool.Query(ctx, expenseSelect+` WHERE e.user_id = $1 ORDER BY e.date DESC, e.id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return collect(rows, scanExpense)
}

// Update updates an expense
func (r *ExpenseRepository) Update(ctx context.Context, expense *domain.Expense) (*domain.Expense, error) {
	p, err := toExpenseParams(expense)
	if err != nil {
		return nil, err
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE expenses
		SET category_id = $3, amount = $4, date = $5, description = $6,
		    currency = $7, original_amount = $8, exchange_rate = $9, updated_at = NOW()
		WHERE id = $1 AND user_id = $2`,
		expense.ID,
		expense.UserID,
		expense.CategoryID,
		p.amount,
		timeToPgDate(expense.Date),
		expense.Description,
		expense.Currency,
		p.originalAmount,
		p.exchangeRate,
	)
	if err != nil {
		return nil, fmt.Errorf("update expense: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, domain.ErrExpenseNotFound
	}
	return r.GetByID(ctx, expense.UserID, expense.ID)
}

// Delete deletes an expense
func (r *ExpenseRepository) Delete(ctx context.Context, userID uuid.UUID, id int32) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM expenses WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrExpenseNotFound
	}
	return nil
}

// SumAll totals every expense of a user
func (r *ExpenseRepository) SumAll(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	var total pgtype.Numeric
	if err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(amount), 0) FROM expenses WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("sum expenses: %w", err)
	}
	return pgNumericToDecimal(total), nil
}

func scanExpense(row rowScanner) (*domain.Expense, error) {
	expense := &domain.Expense{}
	var amount, originalAmount, exchangeRate pgtype.Numeric
	var date pgtype.Date
	err := row.Scan(
		&expense.ID,
		&expense.UserID,
		&expense.CategoryID,
		&expense.CategoryName,
		&amount,
		&date,
		&expense.Description,
		&expense.Currency,
		&originalAmount,
		&exchangeRate,
		&expense.CreatedAt,
		&expense.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	expense.Amount = pgNumericToDecimal(amount)
	expense.Date = pgDateToTime(date)
	expense.OriginalAmount = pgNumericToDecimalPtr(originalAmount)
	expense.ExchangeRate = pgNumericToDecimal(exchangeRate)
	return expense, nil
}
