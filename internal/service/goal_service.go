package service

import (
	"context"
	"strings"
	"time"

	"github.com/dafibh/sentinel/sentinel-backend/internal/domain"
	"github.com/dafibh/sentinel/sentinel-backend/internal/util"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GoalService handles savings goal business logic
type GoalService struct {
	goalRepo     domain.GoalRepository
	categoryRepo domain.CategoryRepository
}

// NewGoalService creates a new GoalService
func NewGoalService(goalRepo domain.GoalRepository, categoryRepo domain.CategoryRepository) *GoalService {
	return &GoalService{goalRepo: goalRepo, categoryRepo: categoryRepo}
}

// GoalInput holds the input for creating or updating a goal
type GoalInput struct {
	Name          string
	Description   *string
	TargetAmount  decimal.Decimal
	CurrentAmount decimal.Decimal
	TargetDate    time.Time
	CategoryID    *int32
}

func (s *GoalService) validate(ctx context.Context, userID uuid.UUID, input GoalInput) (string, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return "", domain.ErrNameRequired
	}
	if len(name) > domain.MaxGoalNameLength {
		return "", domain.ErrNameTooLong
	}
	if input.TargetAmount.IsNegative() || input.CurrentAmount.IsNegative() {
		return "", domain.ErrInvalidAmount
	}
	if input.CategoryID != nil {
		if _, err := s.categoryRepo.GetByID(ctx, userID, *input.CategoryID); err != nil {
			return "", err
		}
	}
	return name, nil
}

// CreateGoal creates a savings goal
func (s *GoalService) CreateGoal(ctx context.Context, userID uuid.UUID, input GoalInput) (*domain.Goal, error) {
	name, err := s.validate(ctx, userID, input)
	if err != nil {
		return nil, err
	}

	return s.goalRepo.Create(ctx, &domain.Goal{
		UserID:        userID,
		Name:          name,
		Description:   input.Description,
		TargetAmount:  input.TargetAmount,
		CurrentAmount: input.CurrentAmount,
		TargetDate:    util.DateOnly(input.TargetDate),
		CategoryID:    input.CategoryID,
	})
}

// GetGoals lists the user's goals, optionally filtered by completion
func (s *GoalService) GetGoals(ctx context.Context, userID uuid.UUID, completed *bool) ([]*domain.Goal, error) {
	return s.goalRepo.GetByUser(ctx, userID, completed)
}

// GetActiveGoals lists goals that are not completed
func (s *GoalService) GetActiveGoals(ctx context.Context, userID uuid.UUID) ([]*domain.Goal, error) {
	open := false
	return s.goalRepo.GetByUser(ctx, userID, &open)
}

// GetGoalByID retrieves one of the user's goals
func (s *GoalService) GetGoalByID(ctx context.Context, userID uuid.UUID, id int32) (*domain.Goal, error) {
	return s.goalRepo.GetByID(ctx, userID, id)
}

// UpdateGoal replaces a goal's editable fields. Completion is kept once set.
func (s *GoalService) UpdateGoal(ctx context.Context, userID uuid.UUID, id int32, input GoalInput) (*domain.Goal, error) {
	existing, err := s.goalRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	name, err := s.validate(ctx, userID, input)
	if err != nil {
		return nil, err
	}

	existing.Name = name
	existing.Description = input.Description
	existing.TargetAmount = input.TargetAmount
	existing.CurrentAmount = input.CurrentAmount
	existing.TargetDate = util.DateOnly(input.TargetDate)
	existing.CategoryID = input.CategoryID
	return s.goalRepo.Update(ctx, existing)
}

// MarkCompleted flags a goal as completed
func (s *GoalService) MarkCompleted(ctx context.Context, userID uuid.UUID, id int32) (*domain.Goal, error) {
	if err := s.goalRepo.MarkCompleted(ctx, userID, id); err != nil {
		return nil, err
	}
	return s.goalRepo.GetByID(ctx, userID, id)
}

// UpdateProgress sets the saved amount and completes the goal once the target is reached
func (s *GoalService) UpdateProgress(ctx context.Context, userID uuid.UUID, id int32, currentAmount decimal.Decimal) (*domain.Goal, error) {
	if currentAmount.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}

	goal, err := s.goalRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	goal.CurrentAmount = currentAmount
	if goal.IsReached() {
		goal.IsCompleted = true
	}
	return s.goalRepo.Update(ctx, goal)
}

// DeleteGoal deletes one of the user's goals
func (s *GoalService) DeleteGoal(ctx context.Context, userID uuid.UUID, id int32) error {
	return s.goalRepo.Delete(ctx, userID, id)
}
