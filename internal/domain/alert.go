package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AlertType is the severity/kind shown to the user
type AlertType string

const (
	AlertTypeDanger  AlertType = "danger"
	AlertTypeSuccess AlertType = "success"
	AlertTypeTip     AlertType = "tip"
	AlertTypeInfo    AlertType = "info"
)

// IsValid reports whether t is a known alert type
func (t AlertType) IsValid() bool {
	switch t {
	case AlertTypeDanger, AlertTypeSuccess, AlertTypeTip, AlertTypeInfo:
		return true
	}
	return false
}

// Alert is a notification generated for a user. At most one alert exists per
// (UserID, AlertType, RelatedSubject, CreatedOn).
type Alert struct {
	ID             int32     `json:"id"`
	UserID         uuid.UUID `json:"userId"`
	Title          string    `json:"title"`
	Message        string    `json:"message"`
	AlertType      AlertType `json:"alertType"`
	RelatedSubject string    `json:"relatedSubject"`
	IsRead         bool      `json:"isRead"`
	CreatedOn      time.Time `json:"createdOn"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// AlertFilters narrows alert listings
type AlertFilters struct {
	AlertType *AlertType
	IsRead    *bool
}

type AlertRepository interface {
	// Create inserts the alert; returns ErrAlertAlreadyExists when the dedup key is taken
	Create(ctx context.Context, alert *Alert) (*Alert, error)
	ExistsOnDate(ctx context.Context, userID uuid.UUID, alertType AlertType, subject string, day time.Time) (bool, error)
	GetByID(ctx context.Context, userID uuid.UUID, id int32) (*Alert, error)
	GetByUser(ctx context.Context, userID uuid.UUID, filters *AlertFilters) ([]*Alert, error)
	MarkRead(ctx context.Context, userID uuid.UUID, id int32) (*Alert, error)
	// MarkAllRead returns the number of alerts that changed state
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
	Delete(ctx context.Context, userID uuid.UUID, id int32) error
}
