package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Budget caps spending for one category over the closed interval [StartDate, EndDate]
type Budget struct {
	ID           int32           `json:"id"`
	UserID       uuid.UUID       `json:"userId"`
	CategoryID   int32           `json:"categoryId"`
	CategoryName string          `json:"categoryName"`
	LimitAmount  decimal.Decimal `json:"limitAmount"`
	StartDate    time.Time       `json:"startDate"`
	EndDate      time.Time       `json:"endDate"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// IsActiveOn reports whether the budget period contains the calendar date of day
func (b *Budget) IsActiveOn(day time.Time) bool {
	d := calendarDate(day)
	return !d.Before(calendarDate(b.StartDate)) && !d.After(calendarDate(b.EndDate))
}

func calendarDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

type BudgetRepository interface {
	Create(ctx context.Context, budget *Budget) (*Budget, error)
	GetByID(ctx context.Context, userID uuid.UUID, id int32) (*Budget, error)
	GetAllByUser(ctx context.Context, userID uuid.UUID) ([]*Budget, error)
	// GetActive returns budgets whose period contains asOf
	GetActive(ctx context.Context, userID uuid.UUID, asOf time.Time) ([]*Budget, error)
	Update(ctx context.Context, budget *Budget) (*Budget, error)
	Delete(ctx context.Context, userID uuid.UUID, id int32) error
}
