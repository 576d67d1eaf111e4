package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DefaultBaseCurrency is the currency aggregated totals are expressed in when a user has not chosen one
const DefaultBaseCurrency = "USD"

// User represents a user in the system
type User struct {
	ID           uuid.UUID `json:"id"`
	Auth0ID      string    `json:"auth0Id"`
	Email        string    `json:"email"`
	Name         *string   `json:"name"`
	PictureURL   *string   `json:"pictureUrl"`
	BaseCurrency string    `json:"baseCurrency"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserRepository defines the interface for user persistence operations
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByAuth0ID(ctx context.Context, auth0ID string) (*User, error)
	GetAll(ctx context.Context) ([]*User, error)
	// CreateOrGetByAuth0ID returns the user and whether it was created by this call
	CreateOrGetByAuth0ID(ctx context.Context, auth0ID, email string, name, pictureURL *string) (*User, bool, error)
}
