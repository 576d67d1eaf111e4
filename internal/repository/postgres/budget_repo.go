package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/dafibh/sentinel/sentinel-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const budgetSelect = `
	SELECT b.id, b.user_id, b.category_id, c.name, b.limit_amount, b.start_date, b.end_date, b.created_at, b.updated_at
	FROM budgets b
	JOIN categories c ON c.id = b.category_id`

// BudgetRepository implements domain.BudgetRepository using PostgreSQL
type BudgetRepository struct {
	pool *pgxpool.Pool
}

// NewBudgetRepository creates a new BudgetRepository
func NewBudgetRepository(pool *pgxpool.Pool) *BudgetRepository {
	return &BudgetRepository{pool: pool}
}

// Create creates a new budget
func (r *BudgetRepository) Create(ctx context.Context, budget *domain.Budget) (*domain.Budget, error) {
	limit, err := decimalToPgNumeric(budget.LimitAmount)
	if err != nil {
		return nil, fmt.Errorf("invalid limit amount: %w", err)
	}

	var id int32
	err = r.pool.QueryRow(ctx, `
		INSERT INTO budgets (user_id, category_id, limit_amount, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		budget.UserID,
		budget.CategoryID,
		limit,
		timeToPgDate(budget.StartDate),
		timeToPgDate(budget.EndDate),
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("create budget: %w", err)
	}
	return r.GetByID(ctx, budget.UserID, id)
}

// GetByID retrieves a budget by its ID within the user's scope
func (r *BudgetRepository) GetByID(ctx context.Context, userID uuid.UUID, id int32) (*domain.Budget, error) {
	budget, err := scanBudget(r.pool.QueryRow(ctx, budgetSelect+` WHERE b.id = $1 AND b.user_id = $2`, id, userID))
	if err != nil {
		return nil, notFound(err, domain.ErrBudgetNotFound, "get budget")
	}
	return budget, nil
}

// GetAllByUser retrieves all budgets of a user, newest period first
func (r *BudgetRepository) GetAllByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Budget, error) {
	rows, err := r.pool.Query(ctx, budgetSelect+` WHERE b.user_id = $1 ORDER BY b.start_date DESC, b.id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	return collect(rows, scanBudget)
}

// GetActive returns budgets whose closed period contains asOf
func (r *BudgetRepository) GetActive(ctx context.Context, userID uuid.UUID, asOf time.Time) ([]*domain.Budget, error) {
	rows, err := r.pool.Query(ctx,
		budgetSelect+` WHERE b.user_id = $1 AND b.start_date <= $2 AND b.end_date >= $2 ORDER BY c.name, b.id`,
		userID, timeToPgDate(asOf),
	)
	if err != nil {
		return nil, fmt.Errorf("list active budgets: %w", err)
	}
	return collect(rows, scanBudget)
}

// Update updates an existing budget
func (r *BudgetRepository) Update(ctx context.Context, budget *domain.Budget) (*domain.Budget, error) {
	limit, err := decimalToPgNumeric(budget.LimitAmount)
	if err != nil {
		return nil, fmt.Errorf("invalid limit amount: %w", err)
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE budgets
		SET category_id = $3, limit_amount = $4, start_date = $5, end_date = $6, updated_at = NOW()
		WHERE id = $1 AND user_id = $2`,
		budget.ID,
		budget.UserID,
		budget.CategoryID,
		limit,
		timeToPgDate(budget.StartDate),
		timeToPgDate(budget.EndDate),
	)
	if err != nil {
		return nil, fmt.Errorf("update budget: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, domain.ErrBudgetNotFound
	}
	return r.GetByID(ctx, budget.UserID, budget.ID)
}

// Delete deletes a budget
func (r *BudgetRepository) Delete(ctx context.Context, userID uuid.UUID, id int32) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM budgets WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBudgetNotFound
	}
	return nil
}

func scanBudget(row rowScanner) (*domain.Budget, error) {
	budget := &domain.Budget{}
	var limit pgtype.Numeric
	var start, end pgtype.Date
	err := row.Scan(
		&budget.ID,
		&budget.UserID,
		&budget.CategoryID,
		&budget.CategoryName,
		&limit,
		&start,
		&end,
		&budget.CreatedAt,
		&budget.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	budget.LimitAmount = pgNumericToDecimal(limit)
	budget.StartDate = pgDateToTime(start)
	budget.EndDate = pgDateToTime(end)
	return budget, nil
}
