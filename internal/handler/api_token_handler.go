package handler

import (
	"net/http"

	"github.com/dafibh/sentinel/sentinel-backend/internal/domain"
	"github.com/dafibh/sentinel/sentinel-backend/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// APITokenHandler handles API token-related HTTP requests
type APITokenHandler struct {
	apiTokenService *service.APITokenService
}

// NewAPITokenHandler creates a new APITokenHandler
func NewAPITokenHandler(apiTokenService *service.APITokenService) *APITokenHandler {
	return &APITokenHandler{apiTokenService: apiTokenService}
}

// CreateAPITokenRequest represents the create token request body.
// Scopes default to read-only access.
type CreateAPITokenRequest struct {
	Description string              `json:"description"`
	Scopes      []domain.TokenScope `json:"scopes"`
}

// CreateAPIToken creates a token for programmatic access. JWT auth only.
// POST /api-tokens
func (h *APITokenHandler) CreateAPIToken(c echo.Context) error {
	userID, ok := requireUserID(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req CreateAPITokenRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	if req.Description == "" {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "description", Message: "Description is required"},
		})
	}
	if len(req.Description) > 255 {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "description", Message: "Description must be 255 characters or less"},
		})
	}

	result, err := h.apiTokenService.Create(c.Request().Context(), userID, req.Description, req.Scopes...)
	if err != nil {
		return handleServiceError(c, err, "Failed to create API token")
	}

	return c.JSON(http.StatusCreated, result)
}

// GetAPITokens lists the caller's active tokens. JWT auth only.
// GET /api-tokens
func (h *APITokenHandler) GetAPITokens(c echo.Context) error {
	userID, ok := requireUserID(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	tokens, err := h.apiTokenService.GetByUser(c.Request().Context(), userID)
	if err != nil {
		return handleServiceError(c, err, "Failed to get API tokens")
	}

	return c.JSON(http.StatusOK, tokens)
}

// RevokeAPIToken revokes a token. JWT auth only.
// DELETE /api-tokens/:id
func (h *APITokenHandler) RevokeAPIToken(c echo.Context) error {
	userID, ok := requireUserID(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	tokenID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid token ID", nil)
	}

	if err := h.apiTokenService.Revoke(c.Request().Context(), userID, tokenID); err != nil {
		return handleServiceError(c, err, "Failed to revoke API token")
	}

	return c.NoContent(http.StatusNoContent)
}
