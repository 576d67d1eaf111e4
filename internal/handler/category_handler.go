package handler

import (
	"net/http"
	"strings"

	"github.com/dafibh/sentinel/sentinel-backend/internal/domain"
	"github.com/dafibh/sentinel/sentinel-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// CategoryHandler handles category-related HTTP requests
type CategoryHandler struct {
	categoryService *service.CategoryService
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categoryService *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// CategoryRequest represents the create/update category request body
type CategoryRequest struct {
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	Description *string `json:"description,omitempty"`
	Icon        *string `json:"icon,omitempty"`
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID          int32   `json:"id"`
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	Description *string `json:"description,omitempty"`
	Icon        *string `json:"icon,omitempty"`
	IsDefault   bool    `json:"isDefault"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

func toCategoryResponse(c *domain.Category) CategoryResponse {
	return CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Type:        string(c.Type),
		Description: c.Description,
		Icon:        c.Icon,
		IsDefault:   c.IsDefault,
		CreatedAt:   timestamp(c.CreatedAt),
		UpdatedAt:   timestamp(c.UpdatedAt),
	}
}

func (r CategoryRequest) toInput() service.CategoryInput {
	return service.CategoryInput{
		Name:        r.Name,
		Type:        domain.CategoryType(strings.ToLower(strings.TrimSpace(r.Type))),
		Description: r.Description,
		Icon:        r.Icon,
	}
}

// CreateCategory creates a user-owned category
// POST /categories
func (h *CategoryHandler) CreateCategory(c echo.Context) error {
	userID, ok := requireUserID(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req CategoryRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	category, err := h.categoryService.CreateCategory(c.Request().Context(), userID, req.toInput())
	if err != nil {
		return handleServiceError(c, err, "Failed to create category")
	}

	log.Info().
		Str("user_id", userID.String()).
		Int32("category_id", category.ID).
		Msg("Category created")

	return c.JSON(http.StatusCreated, toCategoryResponse(category))
}

// GetCategories lists the user's categories and the system defaults.
// Query: type, is_default, search
// GET /categories
func (h *CategoryHandler) GetCategories(c echo.Context) error {
	userID, ok := requireUserID(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	filters := &domain.CategoryFilters{Search: strings.TrimSpace(c.QueryParam("search"))}
	if t := c.QueryParam("type"); t != "" {
		categoryType := domain.CategoryType(strings.ToLower(t))
		filters.Type = &categoryType
	}
	isDefault, err := parseOptionalBool(c, "is_default")
	if err != nil {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "is_default", Message: "Must be true or false"},
		})
	}
	filters.IsDefault = isDefault

	categories, err := h.categoryService.GetCategories(c.Request().Context(), userID, filters)
	if err != nil {
		return handleServiceError(c, err, "Failed to get categories")
	}

	response := make([]CategoryResponse, len(categories))
	for i, category := range categories {
		response[i] = toCategoryResponse(category)
	}
	return c.JSON(http.StatusOK, response)
}

// GetCategory returns one category
// GET /categories/:id
func (h *CategoryHandler) GetCategory(c echo.Context) error {
	userID, ok := requireUserID(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}
	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid category ID", nil)
	}

	category, err := h.categoryService.GetCategoryByID(c.Request().Context(), userID, id)
	if err != nil {
		return handleServiceError(c, err, "Failed to get category")
	}
	return c.JSON(http.StatusOK, toCategoryResponse(category))
}

// UpdateCategory updates a user-owned category
// PUT /categories/:id
func (h *CategoryHandler) UpdateCategory(c echo.Context) error {
	userID, ok := requireUserID(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}
	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid category ID", nil)
	}

	var req CategoryRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	category, err := h.categoryService.UpdateCategory(c.Request().Context(), userID, id, req.toInput())
	if err != nil {
		return handleServiceError(c, err, "Failed to update category")
	}
	return c.JSON(http.StatusOK, toCategoryResponse(category))
}

// DeleteCategory deletes a user-owned category
// DELETE /categories/:id
func (h *CategoryHandler) DeleteCategory(c echo.Context) error {
	userID, ok := requireUserID(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}
	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid category ID", nil)
	}

	if err := h.categoryService.DeleteCategory(c.Request().Context(), userID, id); err != nil {
		return handleServiceError(c, err, "Failed to delete category")
	}

	log.Info().
		Str("user_id", userID.String()).
		Int32("category_id", id).
		Msg("Category deleted")

	return c.NoContent(http.StatusNoContent)
}
