package service

import (
	"context"

	"github.com/dafibh/sentinel/sentinel-backend/internal/domain"
	"github.com/google/uuid"
)

// AlertService handles reading and acknowledging alerts
type AlertService struct {
	alertRepo domain.AlertRepository
}

// NewAlertService creates a new AlertService
func NewAlertService(alertRepo domain.AlertRepository) *AlertService {
	return &AlertService{alertRepo: alertRepo}
}

// GetAlerts lists the user's alerts, newest first
func (s *AlertService) GetAlerts(ctx context.Context, userID uuid.UUID, filters *domain.AlertFilters) ([]*domain.Alert, error) {
	if filters != nil && filters.AlertType != nil && !filters.AlertType.IsValid() {
		return nil, domain.ErrInvalidAlertType
	}
	return s.alertRepo.GetByUser(ctx, userID, filters)
}

// GetUnread lists unread alerts
func (s *AlertService) GetUnread(ctx context.Context, userID uuid.UUID) ([]*domain.Alert, error) {
	unread := false
	return s.alertRepo.GetByUser(ctx, userID, &domain.AlertFilters{IsRead: &unread})
}

// GetAlertByID retrieves one of the user's alerts
func (s *AlertService) GetAlertByID(ctx context.Context, userID uuid.UUID, id int32) (*domain.Alert, error) {
	return s.alertRepo.GetByID(ctx, userID, id)
}

// MarkRead marks one alert as read
func (s *AlertService) MarkRead(ctx context.Context, userID uuid.UUID, id int32) (*domain.Alert, error) {
	return s.alertRepo.MarkRead(ctx, userID, id)
}

// MarkAllRead marks every unread alert as read and returns how many changed
func (s *AlertService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.alertRepo.MarkAllRead(ctx, userID)
}

// DeleteAlert deletes one of the user's alerts
func (s *AlertService) DeleteAlert(ctx context.Context, userID uuid.UUID, id int32) error {
	return s.alertRepo.Delete(ctx, userID, id)
}
