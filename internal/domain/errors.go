package domain

import "errors"

// Domain errors
var (
	ErrNotFound      = errors.New("resource not found")
	ErrAlreadyExists = errors.New("resource already exists")
	ErrInvalidInput  = errors.New("invalid input")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrInternalError = errors.New("internal error")
	ErrUserNotFound  = errors.New("user not found")
	ErrNameRequired  = errors.New("name is required")
	ErrNameTooLong   = errors.New("name exceeds maximum length")

	// ErrInvalidRange covers end dates before start dates and non-existent year/month values
	ErrInvalidRange = errors.New("invalid date range")
	// ErrInvalidAmount covers negative limits/targets and non-positive transaction amounts
	ErrInvalidAmount = errors.New("invalid amount")
)

// Category errors
var (
	ErrCategoryNotFound      = errors.New("category not found")
	ErrCategoryAlreadyExists = errors.New("category already exists")
	ErrInvalidCategoryType   = errors.New("invalid category type")
)

// Budget and goal errors
var (
	ErrBudgetNotFound = errors.New("budget not found")
	ErrGoalNotFound   = errors.New("goal not found")
)

// Transaction errors
var (
	ErrIncomeNotFound      = errors.New("income not found")
	ErrExpenseNotFound     = errors.New("expense not found")
	ErrInsufficientBalance = errors.New("expense amount exceeds current balance")
	ErrInvalidCurrency     = errors.New("invalid currency code")
)

// Alert errors
var (
	ErrAlertNotFound      = errors.New("alert not found")
	ErrAlertAlreadyExists = errors.New("alert already exists for today")
	ErrInvalidAlertType   = errors.New("invalid alert type")
)

// API token errors
var (
	ErrAPITokenNotFound  = errors.New("api token not found")
	ErrTooManyAPITokens  = errors.New("maximum number of api tokens reached")
	ErrInvalidTokenScope = errors.New("invalid api token scope")
)

// Validation constants
const (
	MaxCategoryNameLength = 100
	MaxGoalNameLength     = 200
	MaxAlertTitleLength   = 200
	MaxSubjectLength      = MaxGoalNameLength
)
