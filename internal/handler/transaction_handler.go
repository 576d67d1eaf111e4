package handler

import (
	"net/http"

	"github.com/dafibh/sentinel/sentinel-backend/internal/domain"
	"github.com/dafibh/sentinel/sentinel-backend/internal/service"
	"github.com/dafibh/sentinel/sentinel-backend/internal/util"
	"github.com/dafibh/sentinel/sentinel-backend/internal/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// TransactionHandler handles income and expense HTTP requests
type TransactionHandler struct {
	transactionService *service.TransactionService
	publisher          websocket.EventPublisher
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(transactionService *service.TransactionService, publisher websocket.EventPublisher) *TransactionHandler {
	if publisher == nil {
		publisher = &websocket.NoOpPublisher{}
	}
	return &TransactionHandler{
		transactionService: transactionService,
		publisher:          publisher,
	}
}

// IncomeRequest represents the create/update income request body
type IncomeRequest struct {
	CategoryID  *int32  `json:"categoryId,omitempty"`
	Amount      string  `json:"amount"`
	Date        *string `json:"date,omitempty"`
	Description *string `json:"description,omitempty"`
}

// ExpenseRequest represents the create/update expense request body
type ExpenseRequest struct {
	CategoryID     *int32  `json:"categoryId,omitempty"`
	Amount         string  `json:"amount"`
	Date           *string `json:"date,omitempty"`
	Description    *string `json:"description,omitempty"`
	Currency       string  `json:"currency,omitempty"`
	OriginalAmount *string `json:"originalAmount,omitempty"`
	ExchangeRate   *string `json:"exchangeRate,omitempty"`
}

// IncomeResponse represents an income in API responses
type IncomeResponse struct {
	ID           int32   `json:"id"`
	CategoryID   *int32  `json:"categoryId,omitempty"`
	CategoryName *string `json:"categoryName,omitempty"`
	Amount       string  `json:"amount"`
	Date         string  `json:"date"`
	Description  *string `json:"description,omitempty"`
	CreatedAt    string  `json:"createdAt"`
	UpdatedAt    string  `json:"updatedAt"`
}

// ExpenseResponse represents an expense in API responses
type ExpenseResponse struct {
	ID             int32   `json:"id"`
	CategoryID     *int32  `json:"categoryId,omitempty"`
	CategoryName   *string `json:"categoryName,omitempty"`
	Amount         string  `json:"amount"`
	Date           string  `json:"date"`
	Description    *string `json:"description,omitempty"`
	Currency       string  `json:"currency"`
	OriginalAmount *string `json:"originalAmount,omitempty"`
	ExchangeRate   string  `json:"exchangeRate"`
	CreatedAt      string  `json:"createdAt"`
	UpdatedAt      string  `json:"updatedAt"`
}

func toIncomeResponse(in *domain.Income) IncomeResponse {
	return IncomeResponse{
		ID:           in.ID,
		CategoryID:   in.CategoryID,
		CategoryName: in.CategoryName,
		Amount:       money(in.Amount),
		Date:         util.FormatDate(in.Date),
		Description:  in.Description,
		CreatedAt:    timestamp(in.CreatedAt),
		UpdatedAt:    timestamp(in.UpdatedAt),
	}
}

func toExpenseResponse(exp *domain.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:             exp.ID,
		CategoryID:     exp.CategoryID,
		CategoryName:   exp.CategoryName,
		Amount:         money(exp.Amount),
		Date:           util.FormatDate(exp.Date),
		Description:    exp.Description,
		Currency:       exp.Currency,
		OriginalAmount: moneyPtr(exp.OriginalAmount),
		ExchangeRate:   exp.ExchangeRate.StringFixed(6),
		CreatedAt:      timestamp(exp.CreatedAt),
		UpdatedAt:      timestamp(exp.UpdatedAt),
	}
}

func (r IncomeRequest) parse() (service.IncomeInput, []ValidationError) {
	var errs []ValidationError
	amount, err := parseAmount(r.Amount)
	if err != nil {
		errs = append(errs, ValidationError{Field: "amount", Message: "Must be a valid decimal number"})
	}
	date, err := parseDateOrToday(r.Date)
	if err != nil {
		errs = append(errs, ValidationError{Field: "date", Message: "Must be in YYYY-MM-DD format"})
	}
	return service.IncomeInput{
		CategoryID:  r.CategoryID,
		Amount:      amount,
		Date:        date,
		Description: r.Description,
	}, errs
}

func (r ExpenseRequest) parse() (service.ExpenseInput, []ValidationError) {
	var errs []ValidationError
	amount, err := parseAmount(r.Amount)
	if err != nil {
		errs = append(errs, ValidationError{Field: "amount", Message: "Must be a valid decimal number"})
	}
	date, err := parseDateOrToday(r.Date)
	if err != nil {
		errs = append(errs, ValidationError{Field: "date", Message: "Must be in YYYY-MM-DD format"})
	}
	original, err := parseOptionalAmount(r.OriginalAmount)
	if err != nil {
		errs = append(errs, ValidationError{Field: "originalAmount", Message: "Must be a valid decimal number"})
	}
	rate, err := parseOptionalAmount(r.ExchangeRate)
	if err != nil {
		errs = append(errs, ValidationError{Field: "exchangeRate", Message: "Must be a valid decimal number"})
	}
	return service.ExpenseInput{
		CategoryID:     r.CategoryID,
		Amount:         amount,
		Date:           date,
		Description:    r.Description,
		Currency:       r.Currency,
		OriginalAmount: original,
		ExchangeRate:   rate,
	}, errs
}

// CreateIncome records an income
// POST /incomes
func (h *TransactionHandler) CreateIncome(c echo.Context) error {
	userID, ok := requireUserID(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req IncomeRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	input, errs := req.parse()
	if len(errs) > 0 {
		return NewValidationError(c, "Validation failed", errs)
	}

	income, err := h.transactionService.CreateIncome(c.Request().Context(), userID, input)
	if err != nil {
		return handleServiceError(c, err, "Failed to create income")
	}

	response := toIncomeResponse(income)
	h.publisher.Publish(userID, websocket.IncomeCreated(response))

	log.Info().
		Str("user_id", userID.String()).
		Int32("income_id", income.ID).
		Msg("Income created")

	return c.JSON(http.StatusCreated, response)
}

// GetIncomes lists incomes, newest first
// GET /incomes
func (h *TransactionHandler) GetIncomes(c echo.Context) error {
	userID, ok := requireUserID(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	incomes, err := h.transactionService.GetIncomes(c.Request().Context(), userID)
	if err != nil {
		return handleServiceError(c, err, "Failed to get incomes")
	}

	response := make([]IncomeResponse, len(incomes))
	for i, in := range incomes {
		response[i] = toIncomeResponse(in)
	}
	return c.JSON(http.StatusOK, response)
}

// GetIncome returns one income
// GET /incomes/:id
func (h *TransactionHandler) GetIncome(c echo.Context) error {
	userID, ok := requireUserID(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}
	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid income ID", nil)
	}

	income, err := h.transactionService.GetIncomeByID(c.Request().Context(), userID, id)
	if err != nil {
		return handleServiceError(c, err, "Failed to get income")
	}
	return c.JSON(http.StatusOK, toIncomeResponse(income))
}

// UpdateIncome replaces an income
// PUT /incomes/:id
func (h *TransactionHandler) UpdateIncome(c echo.Context) error {
	userID, ok := requireUserID(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}
	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid income ID", nil)
	}

	var req IncomeRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	input, errs := req.parse()
	if len(errs) > 0 {
		return NewValidationError(c, "Validation failed", errs)
	}

	income, err := h.transactionService.UpdateIncome(c.Request().Context(), userID, id, input)
	if err != nil {
		return handleServiceError(c, err, "Failed to update income")
	}

	response := toIncomeResponse(income)
	h.publisher.Publish(userID, websocket.IncomeUpdated(response))
	return c.JSON(http.StatusOK, response)
}

// DeleteIncome deletes an income
// DELETE /incomes/:id
func (h *TransactionHandler) DeleteIncome(c echo.Context) error {
	userID, ok := requireUserID(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}
	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid income ID", nil)
	}

	if err := h.transactionService.DeleteIncome(c.Request().Context(), userID, id); err != nil {
		return handleServiceError(c, err, "Failed to delete income")
	}

	h.publisher.Publish(userID, websocket.IncomeDeleted(id))
	return c.NoContent(http.StatusNoContent)
}

// CreateExpense records an expense
// POST /expenses
func (h *TransactionHandler) CreateExpense(c echo.Context) error {
	userID, ok := requireUserID(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req ExpenseRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	input, errs := req.parse()
	if len(errs) > 0 {
		return NewValidationError(c, "Validation failed", errs)
	}

	expense, err := h.transactionService.CreateExpense(c.Request().Context(), userID, input)
	if err != nil {
		return handleServiceError(c, err, "Failed to create expense")
	}

	response := toExpenseResponse(expense)
	h.publisher.Publish(userID, websocket.ExpenseCreated(response))

	log.Info().
		Str("user_id", userID.String()).
		Int32("expense_id", expense.ID).
		Msg("Expense created")

	return c.JSON(http.StatusCreated, response)
}

// GetExpenses lists expenses, newest first
// GET /expenses
func (h *TransactionHandler) GetExpenses(c echo.Context) error {
	userID, ok := requireUserID(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	expenses, err := h.transactionService.GetExpenses(c.Request().Context(), userID)
	if err != nil {
		return handleServiceError(c, err, "Failed to get expenses")
	}

	response := make([]ExpenseResponse, len(expenses))
	for i, exp := range expenses {
		response[i] = toExpenseResponse(exp)
	}
	return c.JSON(http.StatusOK, response)
}

// GetExpense returns one expense
// GET /expenses/:id
func (h *TransactionHandler) GetExpense(c echo.Context) error {
	userID, ok := requireUserID(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}
	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid expense ID", nil)
	}

	expense, err := h.transactionService.GetExpenseByID(c.Request().Context(), userID, id)
	if err != nil {
		return handleServiceError(c, err, "Failed to get expense")
	}
	return c.JSON(http.StatusOK, toExpenseResponse(expense))
}

// UpdateExpense replaces an expense
// PUT /expenses/:id
func (h *TransactionHandler) UpdateExpense(c echo.Context) error {
	userID, ok := requireUserID(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}
	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid expense ID", nil)
	}

	var req ExpenseRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	input, errs := req.parse()
	if len(errs) > 0 {
		return NewValidationError(c, "Validation failed", errs)
	}

	expense, err := h.transactionService.UpdateExpense(c.Request().Context(), userID, id, input)
	if err != nil {
		return handleServiceError(c, err, "Failed to update expense")
	}

	response := toExpenseResponse(expense)
	h.publisher.Publish(userID, websocket.ExpenseUpdated(response))
	return c.JSON(http.StatusOK, response)
}

// DeleteExpense deletes an expense
// DELETE /expenses/:id
func (h *TransactionHandler) DeleteExpense(c echo.Context) error {
	userID, ok := requireUserID(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}
	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid expense ID", nil)
	}

	if err := h.transactionService.DeleteExpense(c.Request().Context(), userID, id); err != nil {
		return handleServiceError(c, err, "Failed to delete expense")
	}

	h.publisher.Publish(userID, websocket.ExpenseDeleted(id))
	return c.NoContent(http.StatusNoContent)
}
