package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Income is a received amount
type Income struct {
	ID           int32           `json:"id"`
	UserID       uuid.UUID       `json:"userId"`
	CategoryID   *int32          `json:"categoryId,omitempty"`
	CategoryName *string         `json:"categoryName,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	Date         time.Time       `json:"date"`
	Description  *string         `json:"description,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// Expense is a spent amount. Amount is always expressed in the user's base currency;
// Currency, OriginalAmount and ExchangeRate record how it was entered.
type Expense struct {
	ID             int32            `json:"id"`
	UserID         uuid.UUID        `json:"userId"`
	CategoryID     *int32           `json:"categoryId,omitempty"`
	CategoryName   *string          `json:"categoryName,omitempty"`
	Amount         decimal.Decimal  `json:"amount"`
	Date           time.Time        `json:"date"`
	Description    *string          `json:"description,omitempty"`
	Currency       string           `json:"currency"`
	OriginalAmount *decimal.Decimal `json:"originalAmount,omitempty"`
	ExchangeRate   decimal.Decimal  `json:"exchangeRate"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

// DateRange is a closed interval of calendar dates
type DateRange struct {
	Start time.Time
	End   time.Time
}

type IncomeRepository interface {
	Create(ctx context.Context, income *Income) (*Income, error)
	GetByID(ctx context.Context, userID uuid.UUID, id int32) (*Income, error)
	GetByDateRange(ctx context.Context, userID uuid.UUID, dateRange DateRange) ([]*Income, error)
	GetAllByUser(ctx context.Context, userID uuid.UUID) ([]*Income, error)
	Update(ctx context.Context, income *Income) (*Income, error)
	Delete(ctx context.Context, userID uuid.UUID, id int32) error
	SumAll(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error)
}

type ExpenseRepository interface {
	Create(ctx context.Context, expense *Expense) (*Expense, error)
	GetByID(ctx context.Context, userID uuid.UUID, id int32) (*Expense, error)
	// GetByDateRange returns expenses dated within the range, optionally restricted to one category
	GetByDateRange(ctx context.Context, userID uuid.UUID, dateRange DateRange, categoryID *int32) ([]*Expense, error)
	GetAllByUser(ctx context.Context, userID uuid.UUID) ([]*Expense, error)
	Update(ctx context.Context, expense *Expense) (*Expense, error)
	Delete(ctx context.Context, userID uuid.UUID, id int32) error
	SumAll(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error)
}
