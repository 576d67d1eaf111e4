package handler

import (
	"net/http"
	"strings"

	"github.com/dafibh/sentinel/sentinel-backend/internal/domain"
	"github.com/dafibh/sentinel/sentinel-backend/internal/service"
	"github.com/dafibh/sentinel/sentinel-backend/internal/util"
	"github.com/dafibh/sentinel/sentinel-backend/internal/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// AlertHandler handles alert HTTP requests
type AlertHandler struct {
	alertService      *service.AlertService
	alertCheckService *service.AlertCheckService
	publisher         websocket.EventPublisher
}

// NewAlertHandler creates a new AlertHandler
func NewAlertHandler(alertService *service.AlertService, alertCheckService *service.AlertCheckService, publisher websocket.EventPublisher) *AlertHandler {
	if publisher == nil {
		publisher = &websocket.NoOpPublisher{}
	}
	return &AlertHandler{
		alertService:      alertService,
		alertCheckService: alertCheckService,
		publisher:         publisher,
	}
}

// AlertResponse represents an alert in API responses
type AlertResponse struct {
	ID             int32  `json:"id"`
	Title          string `json:"title"`
	Message        string `json:"message"`
	AlertType      string `json:"alertType"`
	RelatedSubject string `json:"relatedSubject"`
	IsRead         bool   `json:"isRead"`
	CreatedOn      string `json:"createdOn"`
	CreatedAt      string `json:"createdAt"`
}

// UnreadAlertsResponse is the unread alert list with its count
type UnreadAlertsResponse struct {
	Count  int             `json:"count"`
	Alerts []AlertResponse `json:"alerts"`
}

// MarkAllReadResponse reports how many alerts changed state
type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}

func toAlertResponse(a *domain.Alert) AlertResponse {
	return AlertResponse{
		ID:             a.ID,
		Title:          a.Title,
		Message:        a.Message,
		AlertType:      string(a.AlertType),
		RelatedSubject: a.RelatedSubject,
		IsRead:         a.IsRead,
		CreatedOn:      util.FormatDate(a.CreatedOn),
		CreatedAt:      timestamp(a.CreatedAt),
	}
}

func toAlertResponses(alerts []*domain.Alert) []AlertResponse {
	response := make([]AlertResponse, len(alerts))
	for i, a := range alerts {
		response[i] = toAlertResponse(a)
	}
	return response
}

// GetAlerts lists alerts, newest first. Query: alert_type, is_read
// GET /alerts
func (h *AlertHandler) GetAlerts(c echo.Context) error {
	userID, ok := requireUserID(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	filters := &domain.AlertFilters{}
	if t := c.QueryParam("alert_type"); t != "" {
		alertType := domain.AlertType(strings.ToLower(t))
		filters.AlertType = &alertType
	}
	isRead, err := parseOptionalBool(c, "is_read")
	if err != nil {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "is_read", Message: "Must be true or false"},
		})
	}
	filters.IsRead = isRead

	alerts, err := h.alertService.GetAlerts(c.Request().Context(), userID, filters)
	if err != nil {
		return handleServiceError(c, err, "Failed to get alerts")
	}
	return c.JSON(http.StatusOK, toAlertResponses(alerts))
}

// GetUnread lists unread alerts with their count
// GET /alerts/unread
func (h *AlertHandler) GetUnread(c echo.Context) error {
	userID, ok := requireUserID(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	alerts, err := h.alertService.GetUnread(c.Request().Context(), userID)
	if err != nil {
		return handleServiceError(c, err, "Failed to get unread alerts")
	}
	return c.JSON(http.StatusOK, UnreadAlertsResponse{
		Count:  len(alerts),
		Alerts: toAlertResponses(alerts),
	})
}

// GetAlert returns one alert
// GET /alerts/:id
func (h *AlertHandler) GetAlert(c echo.Context) error {
	userID, ok := requireUserID(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}
	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid alert ID", nil)
	}

	alert, err := h.alertService.GetAlertByID(c.Request().Context(), userID, id)
	if err != nil {
		return handleServiceError(c, err, "Failed to get alert")
	}
	return c.JSON(http.StatusOK, toAlertResponse(alert))
}

// MarkRead marks one alert as read
// PATCH /alerts/:id/mark-read
func (h *AlertHandler) MarkRead(c echo.Context) error {
	userID, ok := requireUserID(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}
	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid alert ID", nil)
	}

	alert, err := h.alertService.MarkRead(c.Request().Context(), userID, id)
	if err != nil {
		return handleServiceError(c, err, "Failed to mark alert as read")
	}

	h.publisher.Publish(userID, websocket.AlertUpdated(alert))
	return c.JSON(http.StatusOK, toAlertResponse(alert))
}

// MarkAllRead marks every unread alert as read
// PATCH /alerts/mark-all-read
func (h *AlertHandler) MarkAllRead(c echo.Context) error {
	userID, ok := requireUserID(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	updated, err := h.alertService.MarkAllRead(c.Request().Context(), userID)
	if err != nil {
		return handleServiceError(c, err, "Failed to mark alerts as read")
	}

	if updated > 0 {
		h.publisher.Publish(userID, websocket.AlertsAllRead(updated))
	}
	return c.JSON(http.StatusOK, MarkAllReadResponse{Updated: updated})
}

// DeleteAlert deletes an alert
// DELETE /alerts/:id
func (h *AlertHandler) DeleteAlert(c echo.Context) error {
	userID, ok := requireUserID(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}
	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid alert ID", nil)
	}

	if err := h.alertService.DeleteAlert(c.Request().Context(), userID, id); err != nil {
		return handleServiceError(c, err, "Failed to delete alert")
	}

	h.publisher.Publish(userID, websocket.AlertDeleted(id))
	return c.NoContent(http.StatusNoContent)
}

// CheckAlerts runs the budget and goal evaluation for the caller only
// POST /alerts/check
func (h *AlertHandler) CheckAlerts(c echo.Context) error {
	userID, ok := requireUserID(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	report, err := h.alertCheckService.CheckUser(c.Request().Context(), userID)
	if err != nil {
		return handleServiceError(c, err, "Failed to run alert check")
	}

	log.Info().
		Str("user_id", userID.String()).
		Int("alerts_generated", report.AlertsGenerated).
		Int("alerts_suppressed", report.AlertsSuppressed).
		Msg("Alert check completed for user")

	return c.JSON(http.StatusOK, report)
}
