package handler

import (
	"net/http"

	"github.com/dafibh/sentinel/sentinel-backend/internal/domain"
	"github.com/dafibh/sentinel/sentinel-backend/internal/service"
	"github.com/dafibh/sentinel/sentinel-backend/internal/util"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// BudgetHandler handles budget HTTP requests
type BudgetHandler struct {
	budgetService *service.BudgetService
}

// NewBudgetHandler creates a new BudgetHandler
func NewBudgetHandler(budgetService *service.BudgetService) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService}
}

// BudgetRequest represents the create/update budget request body
type BudgetRequest struct {
	CategoryID  int32  `json:"categoryId"`
	LimitAmount string `json:"limitAmount"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
}

// BudgetResponse represents a budget in API responses
type BudgetResponse struct {
	ID           int32  `json:"id"`
	CategoryID   int32  `json:"categoryId"`
	CategoryName string `json:"categoryName"`
	LimitAmount  string `json:"limitAmount"`
	StartDate    string `json:"startDate"`
	EndDate      string `json:"endDate"`
	CreatedAt    string `json:"createdAt"`
	UpdatedAt    string `json:"updatedAt"`
}

func toBudgetResponse(b *domain.Budget) BudgetResponse {
	return BudgetResponse{
		ID:           b.ID,
		CategoryID:   b.CategoryID,
		CategoryName: b.CategoryName,
		LimitAmount:  money(b.LimitAmount),
		StartDate:    util.FormatDate(b.StartDate),
		EndDate:      util.FormatDate(b.EndDate),
		CreatedAt:    timestamp(b.CreatedAt),
		UpdatedAt:    timestamp(b.UpdatedAt),
	}
}

func toBudgetResponses(budgets []*domain.Budget) []BudgetResponse {
	response := make([]BudgetResponse, len(budgets))
	for i, b := range budgets {
		response[i] = toBudgetResponse(b)
	}
	return response
}

// parse validates the request shape; range and amount rules live in the service
func (r BudgetRequest) parse() (service.BudgetInput, []ValidationError) {
	var errs []ValidationError
	if r.CategoryID <= 0 {
		errs = append(errs, ValidationError{Field: "categoryId", Message: "Category ID is required"})
	}
	limit, err := parseAmount(r.LimitAmount)
	if err != nil {
		errs = append(errs, ValidationError{Field: "limitAmount", Message: "Must be a valid decimal number"})
	}
	start, err := util.ParseDate(r.StartDate)
	if err != nil {
		errs = append(errs, ValidationError{Field: "startDate", Message: "Must be in YYYY-MM-DD format"})
	}
	end, err := util.ParseDate(r.EndDate)
	if err != nil {
		errs = append(errs, ValidationError{Field: "endDate", Message: "Must be in YYYY-MM-DD format"})
	}
	return service.BudgetInput{
		CategoryID:  r.CategoryID,
		LimitAmount: limit,
		StartDate:   start,
		EndDate:     end,
	}, errs
}

// CreateBudget creates a budget
// POST /budgets
func (h *BudgetHandler) CreateBudget(c echo.Context) error {
	userID, ok := requireUserID(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req BudgetRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	input, errs := req.parse()
	if len(errs) > 0 {
		return NewValidationError(c, "Validation failed", errs)
	}

	budget, err := h.budgetService.CreateBudget(c.Request().Context(), userID, input)
	if err != nil {
		return handleServiceError(c, err, "Failed to create budget")
	}

	log.Info().
		Str("user_id", userID.String()).
		Int32("budget_id", budget.ID).
		Msg("Budget created")

	return c.JSON(http.StatusCreated, toBudgetResponse(budget))
}

// GetBudgets lists all budgets
// GET /budgets
func (h *BudgetHandler) GetBudgets(c echo.Context) error {
	userID, ok := requireUserID(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	budgets, err := h.budgetService.GetBudgets(c.Request().Context(), userID)
	if err != nil {
		return handleServiceError(c, err, "Failed to get budgets")
	}
	return c.JSON(http.StatusOK, toBudgetResponses(budgets))
}

// GetBudget returns one budget
// GET /budgets/:id
func (h *BudgetHandler) GetBudget(c echo.Context) error {
	userID, ok := requireUserID(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}
	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid budget ID", nil)
	}

	budget, err := h.budgetService.GetBudgetByID(c.Request().Context(), userID, id)
	if err != nil {
		return handleServiceError(c, err, "Failed to get budget")
	}
	return c.JSON(http.StatusOK, toBudgetResponse(budget))
}

// UpdateBudget replaces a budget
// PUT /budgets/:id
func (h *BudgetHandler) UpdateBudget(c echo.Context) error {
	userID, ok := requireUserID(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}
	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid budget ID", nil)
	}

	var req BudgetRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	input, errs := req.parse()
	if len(errs) > 0 {
		return NewValidationError(c, "Validation failed", errs)
	}

	budget, err := h.budgetService.UpdateBudget(c.Request().Context(), userID, id, input)
	if err != nil {
		return handleServiceError(c, err, "Failed to update budget")
	}
	return c.JSON(http.StatusOK, toBudgetResponse(budget))
}

// DeleteBudget deletes a budget
// DELETE /budgets/:id
func (h *BudgetHandler) DeleteBudget(c echo.Context) error {
	userID, ok := requireUserID(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}
	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid budget ID", nil)
	}

	if err := h.budgetService.DeleteBudget(c.Request().Context(), userID, id); err != nil {
		return handleServiceError(c, err, "Failed to delete budget")
	}
	return c.NoContent(http.StatusNoContent)
}

// GetCurrentMonthBudgets lists budgets active in the given or current month
// GET /budgets/current-month?year&month
func (h *BudgetHandler) GetCurrentMonthBudgets(c echo.Context) error {
	userID, ok := requireUserID(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}
	year, month, errs := parseYearMonthQuery(c)
	if len(errs) > 0 {
		return NewValidationError(c, "Validation failed", errs)
	}

	budgets, err := h.budgetService.GetCurrentMonthBudgets(c.Request().Context(), userID, year, month)
	if err != nil {
		return handleServiceError(c, err, "Failed to get budgets")
	}
	return c.JSON(http.StatusOK, toBudgetResponses(budgets))
}

// GetExceededBudgets lists budgets whose spending is over the limit
// GET /budgets/exceeded
func (h *BudgetHandler) GetExceededBudgets(c echo.Context) error {
	userID, ok := requireUserID(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	budgets, err := h.budgetService.GetExceededBudgets(c.Request().Context(), userID)
	if err != nil {
		return handleServiceError(c, err, "Failed to get exceeded budgets")
	}
	return c.JSON(http.StatusOK, toBudgetResponses(budgets))
}

// parseYearMonthQuery reads the optional year and month query parameters
func parseYearMonthQuery(c echo.Context) (*int, *int, []ValidationError) {
	var errs []ValidationError
	year, err := parseOptionalInt(c, "year")
	if err != nil {
		errs = append(errs, ValidationError{Field: "year", Message: "Must be a number"})
	}
	month, err := parseOptionalInt(c, "month")
	if err != nil {
		errs = append(errs, ValidationError{Field: "month", Message: "Must be a number"})
	}
	return year, month, errs
}
