package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/dafibh/sentinel/sentinel-backend/internal/domain"
	"github.com/dafibh/sentinel/sentinel-backend/internal/middleware"
	"github.com/dafibh/sentinel/sentinel-backend/internal/util"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// ProblemDetails represents an RFC 7807 Problem Details response
type ProblemDetails struct {
	Type     string            `json:"type"`
	Title    string            `json:"title"`
	Status   int               `json:"status"`
	Detail   string            `json:"detail,omitempty"`
	Instance string            `json:"instance,omitempty"`
	Errors   []ValidationError `json:"errors,omitempty"`
}

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error types
const (
	ErrorTypeValidation   = "https://sentinel.app/errors/validation"
	ErrorTypeNotFound     = "https://sentinel.app/errors/not-found"
	ErrorTypeUnauthorized = "https://sentinel.app/errors/unauthorized"
	ErrorTypeForbidden    = "https://sentinel.app/errors/forbidden"
	ErrorTypeConflict     = "https://sentinel.app/errors/conflict"
	ErrorTypeInternal     = "https://sentinel.app/errors/internal"
)

// NewValidationError creates a validation error response
func NewValidationError(c echo.Context, detail string, errors []ValidationError) error {
	return c.JSON(http.StatusBadRequest, ProblemDetails{
		Type:     ErrorTypeValidation,
		Title:    "Validation Error",
		Status:   http.StatusBadRequest,
		Detail:   detail,
		Instance: c.Request().URL.Path,
		Errors:   errors,
	})
}

// NewNotFoundError creates a not found error response
func NewNotFoundError(c echo.Context, detail string) error {
	return c.JSON(http.StatusNotFound, ProblemDetails{
		Type:     ErrorTypeNotFound,
		Title:    "Not Found",
		Status:   http.StatusNotFound,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewUnauthorizedError creates an unauthorized error response
func NewUnauthorizedError(c echo.Context, detail string) error {
	return c.JSON(http.StatusUnauthorized, ProblemDetails{
		Type:     ErrorTypeUnauthorized,
		Title:    "Unauthorized",
		Status:   http.StatusUnauthorized,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewForbiddenError creates a forbidden error response
func NewForbiddenError(c echo.Context, detail string) error {
	return c.JSON(http.StatusForbidden, ProblemDetails{
		Type:     ErrorTypeForbidden,
		Title:    "Forbidden",
		Status:   http.StatusForbidden,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewConflictError creates a conflict error response
func NewConflictError(c echo.Context, detail string) error {
	return c.JSON(http.StatusConflict, ProblemDetails{
		Type:     ErrorTypeConflict,
		Title:    "Conflict",
		Status:   http.StatusConflict,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewInternalError creates an internal error response
func NewInternalError(c echo.Context, detail string) error {
	return c.JSON(http.StatusInternalServerError, ProblemDetails{
		Type:     ErrorTypeInternal,
		Title:    "Internal Server Error",
		Status:   http.StatusInternalServerError,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// handleServiceError maps domain errors to problem details. Unknown errors are
// logged and rendered as 500 with the given fallback detail.
func handleServiceError(c echo.Context, err error, fallback string) error {
	switch {
	case errors.Is(err, domain.ErrCategoryNotFound):
		return NewNotFoundError(c, "Category not found")
	case errors.Is(err, domain.ErrBudgetNotFound):
		return NewNotFoundError(c, "Budget not found")
	case errors.Is(err, domain.ErrGoalNotFound):
		return NewNotFoundError(c, "Goal not found")
	case errors.Is(err, domain.ErrIncomeNotFound):
		return NewNotFoundError(c, "Income not found")
	case errors.Is(err, domain.ErrExpenseNotFound):
		return NewNotFoundError(c, "Expense not found")
	case errors.Is(err, domain.ErrAlertNotFound):
		return NewNotFoundError(c, "Alert not found")
	case errors.Is(err, domain.ErrAPITokenNotFound):
		return NewNotFoundError(c, "API token not found")
	case errors.Is(err, domain.ErrUserNotFound):
		return NewNotFoundError(c, "User not found")
	case errors.Is(err, domain.ErrNotFound):
		return NewNotFoundError(c, "Resource not found")
	case errors.Is(err, domain.ErrCategoryAlreadyExists):
		return NewConflictError(c, "A category with this name and type already exists")
	case errors.Is(err, domain.ErrAlreadyExists):
		return NewConflictError(c, "Resource already exists")
	case errors.Is(err, domain.ErrInvalidRange):
		return NewValidationError(c, "Invalid date range", nil)
	case errors.Is(err, domain.ErrInvalidAmount):
		return NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "amount", Message: "Amount is out of range"},
		})
	case errors.Is(err, domain.ErrInsufficientBalance):
		return NewValidationError(c, "Expense amount exceeds current balance", []ValidationError{
			{Field: "amount", Message: "Insufficient balance"},
		})
	case errors.Is(err, domain.ErrInvalidCurrency):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "currency", Message: "Must be a 3-letter ISO 4217 code"},
		})
	case errors.Is(err, domain.ErrNameRequired):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "name", Message: "Name is required"},
		})
	case errors.Is(err, domain.ErrNameTooLong):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "name", Message: "Name is too long"},
		})
	case errors.Is(err, domain.ErrInvalidCategoryType):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "type", Message: "Must be 'income' or 'expense' and match the transaction kind"},
		})
	case errors.Is(err, domain.ErrInvalidAlertType):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "alert_type", Message: "Must be one of danger, success, tip, info"},
		})
	case errors.Is(err, domain.ErrTooManyAPITokens):
		return NewValidationError(c, "Maximum number of API tokens reached (10)", nil)
	case errors.Is(err, domain.ErrInvalidTokenScope):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "scopes", Message: "Must be any of read, write, alerts:check"},
		})
	}

	log.Error().Err(err).Str("path", c.Request().URL.Path).Msg(fallback)
	return NewInternalError(c, fallback)
}

// requireUserID returns the authenticated user ID and whether one is present
func requireUserID(c echo.Context) (uuid.UUID, bool) {
	userID := middleware.GetUserID(c)
	return userID, userID != uuid.Nil
}

// parseIDParam parses the :id path parameter as a positive int32
func parseIDParam(c echo.Context) (int32, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 32)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return int32(id), nil
}

// parseOptionalInt parses an optional integer query parameter
func parseOptionalInt(c echo.Context, name string) (*int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// parseOptionalBool parses an optional boolean query parameter
func parseOptionalBool(c echo.Context, name string) (*bool, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// parseAmount parses a decimal string field
func parseAmount(raw string) (decimal.Decimal, error) {
	return decimal.NewFromString(raw)
}

// parseOptionalAmount parses an optional decimal string field
func parseOptionalAmount(raw *string) (*decimal.Decimal, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(*raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// parseDateOrToday parses a YYYY-MM-DD field, defaulting to today
func parseDateOrToday(raw *string) (time.Time, error) {
	if raw == nil || *raw == "" {
		return util.DateOnly(time.Now()), nil
	}
	return util.ParseDate(*raw)
}

// money renders a decimal with two fractional digits
func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func moneyPtr(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := money(*d)
	return &s
}

func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
