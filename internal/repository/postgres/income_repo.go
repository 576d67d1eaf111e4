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

const incomeSelect = `
	SELECT i.id, i.user_id, i.category_id, c.name, i.amount, i.date, i.description, i.created_at, i.updated_at
	FROM incomes i
	LEFT JOIN categories c ON c.id = i.category_id`

// IncomeRepository implements domain.IncomeRepository using PostgreSQL
type IncomeRepository struct {
	pool *pgxpool.Pool
}

// NewIncomeRepository creates a new IncomeRepository
func NewIncomeRepository(pool *pgxpool.Pool) *IncomeRepository {
	return &IncomeRepository{pool: pool}
}

// Create records an income
func (r *IncomeRepository) Create(ctx context.Context, income *domain.Income) (*domain.Income, error) {
	amount, err := decimalToPgNumeric(income.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	var id int32
	err = r.pool.QueryRow(ctx, `
		INSERT INTO incomes (user_id, category_id, amount, date, description)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		income.UserID,
		income.CategoryID,
		amount,
		timeToPgDate(income.Date),
		income.Description,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("create income: %w", err)
	}
	return r.GetByID(ctx, income.UserID, id)
}

// GetByID retrieves an income within the user's scope
func (r *IncomeRepository) GetByID(ctx context.Context, userID uuid.UUID, id int32) (*domain.Income, error) {
	income, err := scanIncome(r.pool.QueryRow(ctx, incomeSelect+` WHERE i.id = $1 AND i.user_id = $2`, id, userID))
	if err != nil {
		return nil, notFound(err, domain.ErrIncomeNotFound, "get income")
	}
	return income, nil
}

// GetByDateRange returns incomes dated within the closed range
func (r *IncomeRepository) GetByDateRange(ctx context.Context, userID uuid.UUID, dateRange domain.DateRange) ([]*domain.Income, error) {
	rows, err := r.pool.Query(ctx,
		incomeSelect+` WHERE i.user_id = $1 AND i.date BETWEEN $2 AND $3 ORDER BY i.date, i.id`,
		userID, timeToPgDate(dateRange.Start), timeToPgDate(dateRange.End),
	)
	if err != nil {
		return nil, fmt.Errorf("list incomes by date: %w", err)
	}
	return collect(rows, scanIncome)
}

// GetAllByUser lists every income of a user, newest first
func (r *IncomeRepository) GetAllByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Income, error) {
	rows, err := r.pool.Query(ctx, incomeSelect+` WHERE i.user_id = $1 ORDER BY i.date DESC, i.id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list incomes: %w", err)
	}
	return collect(rows, scanIncome)
}

// Update updates an income
func (r *IncomeRepository) Update(ctx context.Context, income *domain.Income) (*domain.Income, error) {
	amount, err := decimalToPgNumeric(income.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE incomes
		SET category_id = $3, amount = $4, date = $5, description = $6, updated_at = NOW()
		WHERE id = $1 AND user_id = $2`,
		income.ID,
		income.UserID,
		income.CategoryID,
		amount,
		timeToPgDate(income.Date),
		income.Description,
	)
	if err != nil {
		return nil, fmt.Errorf("update income: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, domain.ErrIncomeNotFound
	}
	return r.GetByID(ctx, income.UserID, income.ID)
}

// Delete deletes an income
func (r *IncomeRepository) Delete(ctx context.Context, userID uuid.UUID, id int32) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM incomes WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete income: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrIncomeNotFound
	}
	return nil
}

// SumAll totals every income of a user
func (r *IncomeRepository) SumAll(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	var total pgtype.Numeric
	if err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(amount), 0) FROM incomes WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("sum incomes: %w", err)
	}
	return pgNumericToDecimal(total), nil
}

func scanIncome(row rowScanner) (*domain.Income, error) {
	income := &domain.Income{}
	var amount pgtype.Numeric
	var date pgtype.Date
	err := row.Scan(
		&income.ID,
		&income.UserID,
		&income.CategoryID,
		&income.CategoryName,
		&amount,
		&date,
		&income.Description,
		&income.CreatedAt,
		&income.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	income.Amount = pgNumericToDecimal(amount)
	income.Date = pgDateToTime(date)
	return income, nil
}
