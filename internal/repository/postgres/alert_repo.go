package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dafibh/sentinel/sentinel-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const alertColumns = `id, user_id, title, message, alert_type, related_subject, is_read, created_on, created_at, updated_at`

// AlertRepository implements domain.AlertRepository using PostgreSQL
type AlertRepository struct {
	pool *pgxpool.Pool
}

// NewAlertRepository creates a new AlertRepository
func NewAlertRepository(pool *pgxpool.Pool) *AlertRepository {
	return &AlertRepository{pool: pool}
}

// Create inserts an alert. The (user, type, subject, day) unique index arbitrates
// concurrent writers: a conflicting insert returns no row.
func (r *AlertRepository) Create(ctx context.Context, alert *domain.Alert) (*domain.Alert, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO alerts (user_id, title, message, alert_type, related_subject, is_read, created_on)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, alert_type, related_subject, created_on) DO NOTHING
		RETURNING `+alertColumns,
		alert.UserID,
		alert.Title,
		alert.Message,
		string(alert.AlertType),
		alert.RelatedSubject,
		alert.IsRead,
		timeToPgDate(alert.CreatedOn),
	)
	created, err := scanAlert(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isPgUniqueViolation(err) {
			return nil, domain.ErrAlertAlreadyExists
		}
		return nil, fmt.Errorf("create alert: %w", err)
	}
	return created, nil
}

// ExistsOnDate reports whether an alert with the dedup key was already created on day
func (r *AlertRepository) ExistsOnDate(ctx context.Context, userID uuid.UUID, alertType domain.AlertType, subject string, day time.Time) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM alerts
			WHERE user_id = $1 AND alert_type = $2 AND related_subject = $3 AND created_on = $4
		)`,
		userID, string(alertType), subject, timeToPgDate(day),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check alert: %w", err)
	}
	return exists, nil
}

// GetByID retrieves an alert within the user's scope
func (r *AlertRepository) GetByID(ctx context.Context, userID uuid.UUID, id int32) (*domain.Alert, error) {
	alert, err := scanAlert(r.pool.QueryRow(ctx, `SELECT `+alertColumns+` FROM alerts WHERE id = $1 AND user_id = $2`, id, userID))
	if err != nil {
		return nil, notFound(err, domain.ErrAlertNotFound, "get alert")
	}
	return alert, nil
}

// GetByUser lists alerts newest first
func (r *AlertRepository) GetByUser(ctx context.Context, userID uuid.UUID, filters *domain.AlertFilters) ([]*domain.Alert, error) {
	conditions := []string{"user_id = $1"}
	args := []any{userID}
	if filters != nil {
		if filters.AlertType != nil {
			args = append(args, string(*filters.AlertType))
			conditions = append(conditions, fmt.Sprintf("alert_type = $%d", len(args)))
		}
		if filters.IsRead != nil {
			args = append(args, *filters.IsRead)
			conditions = append(conditions, fmt.Sprintf("is_read = $%d", len(args)))
		}
	}

	query := `SELECT ` + alertColumns + ` FROM alerts WHERE ` + strings.Join(conditions, " AND ") + ` ORDER BY created_at DESC, id DESC`
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	return collect(rows, scanAlert)
}

// MarkRead marks one alert as read and returns it
func (r *AlertRepository) MarkRead(ctx context.Context, userID uuid.UUID, id int32) (*domain.Alert, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE alerts SET is_read = TRUE, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING `+alertColumns,
		id, userID,
	)
	alert, err := scanAlert(row)
	if err != nil {
		return nil, notFound(err, domain.ErrAlertNotFound, "mark alert read")
	}
	return alert, nil
}

// MarkAllRead marks every unread alert of the user as read
func (r *AlertRepository) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE alerts SET is_read = TRUE, updated_at = NOW() WHERE user_id = $1 AND NOT is_read`, userID)
	if err != nil {
		return 0, fmt.Errorf("mark all alerts read: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Delete deletes an alert
func (r *AlertRepository) Delete(ctx context.Context, userID uuid.UUID, id int32) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM alerts WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete alert: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAlertNotFound
	}
	return nil
}

func scanAlert(row rowScanner) (*domain.Alert, error) {
	alert := &domain.Alert{}
	var alertType string
	var createdOn pgtype.Date
	err := row.Scan(
		&alert.ID,
		&alert.UserID,
		&alert.Title,
		&alert.Message,
		&alertType,
		&alert.RelatedSubject,
		&alert.IsRead,
		&createdOn,
		&alert.CreatedAt,
		&alert.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	alert.AlertType = domain.AlertType(alertType)
	alert.CreatedOn = pgDateToTime(createdOn)
	return alert, nil
}
