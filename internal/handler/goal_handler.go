package handler

import (
	"net/http"

	"github.com/dafibh/sentinel/sentinel-backend/internal/domain"
	"github.com/dafibh/sentinel/sentinel-backend/internal/service"
	"github.com/dafibh/sentinel/sentinel-backend/internal/util"
	"github.com/dafibh/sentinel/sentinel-backend/internal/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// GoalHandler handles savings goal HTTP requests
type GoalHandler struct {
	goalService *service.GoalService
	publisher   websocket.EventPublisher
}

// NewGoalHandler creates a new GoalHandler
func NewGoalHandler(goalService *service.GoalService, publisher websocket.EventPublisher) *GoalHandler {
	if publisher == nil {
		publisher = &websocket.NoOpPublisher{}
	}
	return &GoalHandler{goalService: goalService, publisher: publisher}
}

// GoalRequest represents the create/update goal request body
type GoalRequest struct {
	Name          string  `json:"name"`
	Description   *string `json:"description,omitempty"`
	TargetAmount  string  `json:"targetAmount"`
	CurrentAmount *string `json:"currentAmount,omitempty"`
	TargetDate    string  `json:"targetDate"`
	CategoryID    *int32  `json:"categoryId,omitempty"`
}

// UpdateProgressRequest represents the update-progress request body
type UpdateProgressRequest struct {
	CurrentAmount string `json:"currentAmount"`
}

// GoalResponse represents a goal in API responses
type GoalResponse struct {
	ID                 int32   `json:"id"`
	Name               string  `json:"name"`
	Description        *string `json:"description,omitempty"`
	TargetAmount       string  `json:"targetAmount"`
	CurrentAmount      string  `json:"currentAmount"`
	RemainingAmount    string  `json:"remainingAmount"`
	ProgressPercentage string  `json:"progressPercentage"`
	TargetDate         string  `json:"targetDate"`
	CategoryID         *int32  `json:"categoryId,omitempty"`
	IsCompleted        bool    `json:"isCompleted"`
	CreatedAt          string  `json:"createdAt"`
	UpdatedAt          string  `json:"updatedAt"`
}

func toGoalResponse(g *domain.Goal) GoalResponse {
	return GoalResponse{
		ID:                 g.ID,
		Name:               g.Name,
		Description:        g.Description,
		TargetAmount:       money(g.TargetAmount),
		CurrentAmount:      money(g.CurrentAmount),
		RemainingAmount:    money(g.RemainingAmount()),
		ProgressPercentage: money(g.ProgressPercentage()),
		TargetDate:         util.FormatDate(g.TargetDate),
		CategoryID:         g.CategoryID,
		IsCompleted:        g.IsCompleted,
		CreatedAt:          timestamp(g.CreatedAt),
		UpdatedAt:          timestamp(g.UpdatedAt),
	}
}

func toGoalResponses(goals []*domain.Goal) []GoalResponse {
	response := make([]GoalResponse, len(goals))
	for i, g := range goals {
		response[i] = toGoalResponse(g)
	}
	return response
}

func (r GoalRequest) parse() (service.GoalInput, []ValidationError) {
	var errs []ValidationError
	target, err := parseAmount(r.TargetAmount)
	if err != nil {
		errs = append(errs, ValidationError{Field: "targetAmount", Message: "Must be a valid decimal number"})
	}
	current := decimal.Zero
	if parsed, err := parseOptionalAmount(r.CurrentAmount); err != nil {
		errs = append(errs, ValidationError{Field: "currentAmount", Message: "Must be a valid decimal number"})
	} else if parsed != nil {
		current = *parsed
	}
	targetDate, err := util.ParseDate(r.TargetDate)
	if err != nil {
		errs = append(errs, ValidationError{Field: "targetDate", Message: "Must be in YYYY-MM-DD format"})
	}
	return service.GoalInput{
		Name:          r.Name,
		Description:   r.Description,
		TargetAmount:  target,
		CurrentAmount: current,
		TargetDate:    targetDate,
		CategoryID:    r.CategoryID,
	}, errs
}

// CreateGoal creates a savings goal
// POST /goals
func (h *GoalHandler) CreateGoal(c echo.Context) error {
	userID, ok := requireUserID(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req GoalRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	input, errs := req.parse()
	if len(errs) > 0 {
		return NewValidationError(c, "Validation failed", errs)
	}

	goal, err := h.goalService.CreateGoal(c.Request().Context(), userID, input)
	if err != nil {
		return handleServiceError(c, err, "Failed to create goal")
	}

	log.Info().
		Str("user_id", userID.String()).
		Int32("goal_id", goal.ID).
		Msg("Goal created")

	return c.JSON(http.StatusCreated, toGoalResponse(goal))
}

// GetGoals lists goals, optionally filtered by is_completed
// GET /goals
func (h *GoalHandler) GetGoals(c echo.Context) error {
	userID, ok := requireUserID(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}
	completed, err := parseOptionalBool(c, "is_completed")
	if err != nil {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "is_completed", Message: "Must be true or false"},
		})
	}

	goals, err := h.goalService.GetGoals(c.Request().Context(), userID, completed)
	if err != nil {
		return handleServiceError(c, err, "Failed to get goals")
	}
	return c.JSON(http.StatusOK, toGoalResponses(goals))
}

// GetActiveGoals lists goals that are not completed
// GET /goals/active
func (h *GoalHandler) GetActiveGoals(c echo.Context) error {
	userID, ok := requireUserID(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	goals, err := h.goalService.GetActiveGoals(c.Request().Context(), userID)
	if err != nil {
		return handleServiceError(c, err, "Failed to get goals")
	}
	return c.JSON(http.StatusOK, toGoalResponses(goals))
}

// GetGoal returns one goal
// GET /goals/:id
func (h *GoalHandler) GetGoal(c echo.Context) error {
	userID, ok := requireUserID(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}
	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid goal ID", nil)
	}

	goal, err := h.goalService.GetGoalByID(c.Request().Context(), userID, id)
	if err != nil {
		return handleServiceError(c, err, "Failed to get goal")
	}
	return c.JSON(http.StatusOK, toGoalResponse(goal))
}

// UpdateGoal replaces a goal's editable fields
// PUT /goals/:id
func (h *GoalHandler) UpdateGoal(c echo.Context) error {
	userID, ok := requireUserID(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}
	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid goal ID", nil)
	}

	var req GoalRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	input, errs := req.parse()
	if len(errs) > 0 {
		return NewValidationError(c, "Validation failed", errs)
	}

	goal, err := h.goalService.UpdateGoal(c.Request().Context(), userID, id, input)
	if err != nil {
		return handleServiceError(c, err, "Failed to update goal")
	}
	return c.JSON(http.StatusOK, toGoalResponse(goal))
}

// MarkCompleted flags a goal as completed
// PATCH /goals/:id/mark-completed
func (h *GoalHandler) MarkCompleted(c echo.Context) error {
	userID, ok := requireUserID(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}
	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid goal ID", nil)
	}

	goal, err := h.goalService.MarkCompleted(c.Request().Context(), userID, id)
	if err != nil {
		return handleServiceError(c, err, "Failed to complete goal")
	}

	response := toGoalResponse(goal)
	h.publisher.Publish(userID, websocket.GoalCompleted(response))
	return c.JSON(http.StatusOK, response)
}

// UpdateProgress sets the saved amount; reaching the target completes the goal
// PATCH /goals/:id/update-progress
func (h *GoalHandler) UpdateProgress(c echo.Context) error {
	userID, ok := requireUserID(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}
	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid goal ID", nil)
	}

	var req UpdateProgressRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	amount, err := parseAmount(req.CurrentAmount)
	if err != nil {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "currentAmount", Message: "Must be a valid decimal number"},
		})
	}

	ctx := c.Request().Context()
	before, err := h.goalService.GetGoalByID(ctx, userID, id)
	if err != nil {
		return handleServiceError(c, err, "Failed to update goal progress")
	}
	wasCompleted := before.IsCompleted

	goal, err := h.goalService.UpdateProgress(ctx, userID, id, amount)
	if err != nil {
		return handleServiceError(c, err, "Failed to update goal progress")
	}

	response := toGoalResponse(goal)
	if goal.IsCompleted && !wasCompleted {
		h.publisher.Publish(userID, websocket.GoalCompleted(response))
	}
	return c.JSON(http.StatusOK, response)
}

// DeleteGoal deletes a goal
// DELETE /goals/:id
func (h *GoalHandler) DeleteGoal(c echo.Context) error {
	userID, ok := requireUserID(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}
	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid goal ID", nil)
	}

	if err := h.goalService.DeleteGoal(c.Request().Context(), userID, id); err != nil {
		return handleServiceError(c, err, "Failed to delete goal")
	}
	return c.NoContent(http.StatusNoContent)
}
