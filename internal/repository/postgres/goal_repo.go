package postgres

import (
	"context"
	"fmt"

	"github.com/dafibh/sentinel/sentinel-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const goalColumns = `id, user_id, name, description, target_amount, current_amount, target_date, category_id, is_completed, created_at, updated_at`

// GoalRepository implements domain.GoalRepository using PostgreSQL
type GoalRepository struct {
	pool *pgxpool.Pool
}

// NewGoalRepository creates a new GoalRepository
func NewGoalRepository(pool *pgxpool.Pool) *GoalRepository {
	return &GoalRepository{pool: pool}
}

// Create creates a new goal
func (r *GoalRepository) Create(ctx context.Context, goal *domain.Goal) (*domain.Goal, error) {
	target, err := decimalToPgNumeric(goal.TargetAmount)
	if err != nil {
		return nil, fmt.Errorf("invalid target amount: %w", err)
	}
	current, err := decimalToPgNumeric(goal.CurrentAmount)
	if err != nil {
		return nil, fmt.Errorf("invalid current amount: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO goals (user_id, name, description, target_amount, current_amount, target_date, category_id, is_completed)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+goalColumns,
		goal.UserID,
		goal.Name,
		goal.Description,
		target,
		current,
		timeToPgDate(goal.TargetDate),
		goal.CategoryID,
		goal.IsCompleted,
	)
	created, err := scanGoal(row)
	if err != nil {
		return nil, fmt.Errorf("create goal: %w", err)
	}
	return created, nil
}

// GetByID retrieves a goal by its ID within the user's scope
func (r *GoalRepository) GetByID(ctx context.Context, userID uuid.UUID, id int32) (*domain.Goal, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+goalColumns+` FROM goals WHERE id = $1 AND user_id = $2`, id, userID)
	goal, err := scanGoal(row)
	if err != nil {
		return nil, notFound(err, domain.ErrGoalNotFound, "get goal")
	}
	return goal, nil
}

// GetByUser lists goals ordered by target date, optionally filtered by completion state
func (r *GoalRepository) GetByUser(ctx context.Context, userID uuid.UUID, completed *bool) ([]*domain.Goal, error) {
	query := `SELECT ` + goalColumns + ` FROM goals WHERE user_id = $1`
	args := []any{userID}
	if completed != nil {
		query += ` AND is_completed = $2`
		args = append(args, *completed)
	}
	query += ` ORDER BY target_date, id`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	return collect(rows, scanGoal)
}

// Update updates an existing goal
func (r *GoalRepository) Update(ctx context.Context, goal *domain.Goal) (*domain.Goal, error) {
	target, err := decimalToPgNumeric(goal.TargetAmount)
	if err != nil {
		return nil, fmt.Errorf("invalid target amount: %w", err)
	}
	current, err := decimalToPgNumeric(goal.CurrentAmount)
	if err != nil {
		return nil, fmt.Errorf("invalid current amount: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
		UPDATE goals
		SET name = $3, description = $4, target_amount = $5, current_amount = $6,
		    target_date = $7, category_id = $8, is_completed = $9, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING `+goalColumns,
		goal.ID,
		goal.UserID,
		goal.Name,
		goal.Description,
		target,
		current,
		timeToPgDate(goal.TargetDate),
		goal.CategoryID,
		goal.IsCompleted,
	)
	updated, err := scanGoal(row)
	if err != nil {
		return nil, notFound(err, domain.ErrGoalNotFound, "update goal")
	}
	return updated, nil
}

// MarkCompleted sets is_completed; already completed goals are left untouched
func (r *GoalRepository) MarkCompleted(ctx context.Context, userID uuid.UUID, id int32) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE goals SET is_completed = TRUE, updated_at = NOW()
		WHERE id = $1 AND user_id = $2 AND NOT is_completed`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("mark goal completed: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	// no row changed: either already completed or missing
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM goals WHERE id = $1 AND user_id = $2)`, id, userID).Scan(&exists); err != nil {
		return fmt.Errorf("check goal: %w", err)
	}
	if !exists {
		return domain.ErrGoalNotFound
	}
	return nil
}

// Delete deletes a goal
func (r *GoalRepository) Delete(ctx context.Context, userID uuid.UUID, id int32) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM goals WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrGoalNotFound
	}
	return nil
}

func scanGoal(row rowScanner) (*domain.Goal, error) {
	goal := &domain.Goal{}
	var target, current pgtype.Numeric
	var targetDate pgtype.Date
	err := row.Scan(
		&goal.ID,
		&goal.UserID,
		&goal.Name,
		&goal.Description,
		&target,
		&current,
		&targetDate,
		&goal.CategoryID,
		&goal.IsCompleted,
		&goal.CreatedAt,
		&goal.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	goal.TargetAmount = pgNumericToDecimal(target)
	goal.CurrentAmount = pgNumericToDecimal(current)
	goal.TargetDate = pgDateToTime(targetDate)
	return goal, nil
}
