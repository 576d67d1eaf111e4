package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Goal is a long-term savings target
type Goal struct {
	ID            int32           `json:"id"`
	UserID        uuid.UUID       `json:"userId"`
	Name          string          `json:"name"`
	Description   *string         `json:"description,omitempty"`
	TargetAmount  decimal.Decimal `json:"targetAmount"`
	CurrentAmount decimal.Decimal `json:"currentAmount"`
	TargetDate    time.Time       `json:"targetDate"`
	CategoryID    *int32          `json:"categoryId,omitempty"`
	IsCompleted   bool            `json:"isCompleted"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

var hundred = decimal.NewFromInt(100)

// ProgressPercentage returns progress towards the target, capped at 100
func (g *Goal) ProgressPercentage() decimal.Decimal {
	if !g.TargetAmount.IsPositive() {
		return decimal.Zero
	}
	pct := g.CurrentAmount.Div(g.TargetAmount).Mul(hundred)
	if pct.GreaterThan(hundred) {
		return hundred
	}
	return pct
}

// RemainingAmount returns how much is still needed, never negative
func (g *Goal) RemainingAmount() decimal.Decimal {
	remaining := g.TargetAmount.Sub(g.CurrentAmount)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// IsReached reports whether the current amount meets the target
func (g *Goal) IsReached() bool {
	return g.CurrentAmount.GreaterThanOrEqual(g.TargetAmount)
}

type GoalRepository interface {
	Create(ctx context.Context, goal *Goal) (*Goal, error)
	GetByID(ctx context.Context, userID uuid.UUID, id int32) (*Goal, error)
	// GetByUser lists goals, optionally filtered by completion state
	GetByUser(ctx context.Context, userID uuid.UUID, completed *bool) ([]*Goal, error)
	Update(ctx context.Context, goal *Goal) (*Goal, error)
	// MarkCompleted sets is_completed; calling it on a completed goal is a no-op
	MarkCompleted(ctx context.Context, userID uuid.UUID, id int32) error
	Delete(ctx context.Context, userID uuid.UUID, id int32) error
}
