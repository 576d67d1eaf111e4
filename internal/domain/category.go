package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// CategoryType distinguishes income from expense categories
type CategoryType string

const (
	CategoryTypeIncome  CategoryType = "income"
	CategoryTypeExpense CategoryType = "expense"
)

// IsValid reports whether t is a known category type
func (t CategoryType) IsValid() bool {
	return t == CategoryTypeIncome || t == CategoryTypeExpense
}

// Category groups incomes and expenses. A nil UserID marks a system default category
// that is visible to every user.
type Category struct {
	ID          int32        `json:"id"`
	UserID      *uuid.UUID   `json:"userId"`
	Name        string       `json:"name"`
	Type        CategoryType `json:"type"`
	Description *string      `json:"description,omitempty"`
	Icon        *string      `json:"icon,omitempty"`
	IsDefault   bool         `json:"isDefault"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// CategoryFilters narrows category listings
type CategoryFilters struct {
	Type      *CategoryType
	IsDefault *bool
	Search    string
}

type CategoryRepository interface {
	Create(ctx context.Context, category *Category) (*Category, error)
	// GetByID returns a category owned by the user or a system default category
	GetByID(ctx context.Context, userID uuid.UUID, id int32) (*Category, error)
	GetByName(ctx context.Context, userID uuid.UUID, name string, categoryType CategoryType) (*Category, error)
	// GetAllByUser returns the user's categories plus system defaults, ordered by name
	GetAllByUser(ctx context.Context, userID uuid.UUID, filters *CategoryFilters) ([]*Category, error)
	Update(ctx context.Context, category *Category) (*Category, error)
	Delete(ctx context.Context, userID uuid.UUID, id int32) error
}
