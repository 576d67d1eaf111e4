package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dafibh/sentinel/sentinel-backend/internal/alerting"
	"github.com/dafibh/sentinel/sentinel-backend/internal/domain"
	"github.com/dafibh/sentinel/sentinel-backend/internal/metrics"
	"github.com/dafibh/sentinel/sentinel-backend/internal/util"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// AlertPublisher delivers newly created alerts to live channels.
// Delivery is best effort: failures are logged by the implementation and never fail a run.
type AlertPublisher interface {
	PublishAlert(ctx context.Context, alert *domain.Alert)
}

// FailureReporter receives entity failures that were skipped during a run
type FailureReporter interface {
	ReportFailure(ctx context.Context, err error, tags map[string]string)
}

// Skipped entity kinds
const (
	SkippedUser   = "user"
	SkippedBudget = "budget"
	SkippedGoal   = "goal"
)

// SkippedEntity records a user, budget or goal whose evaluation failed
type SkippedEntity struct {
	Entity string    `json:"entity"`
	ID     string    `json:"id"`
	UserID uuid.UUID `json:"userId"`
	Reason string    `json:"reason"`
}

// AlertCheckReport summarises one alert check run
type AlertCheckReport struct {
	StartedAt        time.Time       `json:"startedAt"`
	FinishedAt       time.Time       `json:"finishedAt"`
	UsersProcessed   int             `json:"usersProcessed"`
	AlertsGenerated  int             `json:"alertsGenerated"`
	AlertsSuppressed int             `json:"alertsSuppressed"`
	GoalsCompleted   int             `json:"goalsCompleted"`
	Skipped          []SkippedEntity `json:"skipped"`
}

func (r *AlertCheckReport) merge(u *userCheckResult) {
	r.UsersProcessed++
	r.AlertsGenerated += u.generated
	r.AlertsSuppressed += u.suppressed
	r.GoalsCompleted += u.goalsCompleted
	r.Skipped = append(r.Skipped, u.skipped...)
}

type userCheckResult struct {
	generated      int
	suppressed     int
	goalsCompleted int
	skipped        []SkippedEntity
}

func (u *userCheckResult) skip(entity, id string, userID uuid.UUID, err error) {
	u.skipped = append(u.skipped, SkippedEntity{Entity: entity, ID: id, UserID: userID, Reason: err.Error()})
}

// AlertCheckService evaluates budgets and goals and creates de-duplicated alerts
type AlertCheckService struct {
	userRepo    domain.UserRepository
	budgetRepo  domain.BudgetRepository
	goalRepo    domain.GoalRepository
	expenseRepo domain.ExpenseRepository
	alertRepo   domain.AlertRepository
	publisher   AlertPublisher
	reporter    FailureReporter
	logger      zerolog.Logger
	concurrency int
	now         func() time.Time
}

// NewAlertCheckService creates a new AlertCheckService
func NewAlertCheckService(
	userRepo domain.UserRepository,
	budgetRepo domain.BudgetRepository,
	goalRepo domain.GoalRepository,
	expenseRepo domain.ExpenseRepository,
	alertRepo domain.AlertRepository,
	logger zerolog.Logger,
	concurrency int,
) *AlertCheckService {
	if concurrency < 1 {
		concurrency = 1
	}
	return &AlertCheckService{
		userRepo:    userRepo,
		budgetRepo:  budgetRepo,
		goalRepo:    goalRepo,
		expenseRepo: expenseRepo,
		alertRepo:   alertRepo,
		logger:      logger.With().Str("component", "alert_check").Logger(),
		concurrency: concurrency,
		now:         time.Now,
	}
}

// SetPublisher sets the publisher notified for every created alert
func (s *AlertCheckService) SetPublisher(publisher AlertPublisher) {
	s.publisher = publisher
}

// SetFailureReporter sets the reporter notified for every skipped entity
func (s *AlertCheckService) SetFailureReporter(reporter FailureReporter) {
	s.reporter = reporter
}

// SetClock overrides the clock used to determine "today"
func (s *AlertCheckService) SetClock(now func() time.Time) {
	s.now = now
}

// RunAlertCheck evaluates every user, or only userFilter when set.
// Users are processed in parallel; a failing user never fails the run.
func (s *AlertCheckService) RunAlertCheck(ctx context.Context, userFilter *uuid.UUID) (*AlertCheckReport, error) {
	var users []*domain.User
	if userFilter != nil {
		user, err := s.userRepo.GetByID(ctx, *userFilter)
		if err != nil {
			return nil, err
		}
		users = []*domain.User{user}
	} else {
		all, err := s.userRepo.GetAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list users: %w", err)
		}
		users = all
	}

	report := &AlertCheckReport{StartedAt: s.now(), Skipped: []SkippedEntity{}}
	today := util.DateOnly(report.StartedAt)

	s.logger.Info().
		Int("users", len(users)).
		Str("date", util.FormatDate(today)).
		Msg("Starting alert check")

	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(s.concurrency)

	for _, user := range users {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			result := s.safeCheckUser(ctx, user, today)
			mu.Lock()
			report.merge(result)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	report.FinishedAt = s.now()

	s.logger.Info().
		Int("users_processed", report.UsersProcessed).
		Int("alerts_generated", report.AlertsGenerated).
		Int("alerts_suppressed", report.AlertsSuppressed).
		Int("goals_completed", report.GoalsCompleted).
		Int("skipped", len(report.Skipped)).
		Dur("elapsed", report.FinishedAt.Sub(report.StartedAt)).
		Msg("Completed alert check")

	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}

// CheckUser runs the alert check for a single user
func (s *AlertCheckService) CheckUser(ctx context.Context, userID uuid.UUID) (*AlertCheckReport, error) {
	return s.RunAlertCheck(ctx, &userID)
}

// safeCheckUser turns a panic during one user's evaluation into a skipped user
func (s *AlertCheckService) safeCheckUser(ctx context.Context, user *domain.User, today time.Time) (result *userCheckResult) {
	defer func() {
		if r := recover(); r != nil {
			result = &userCheckResult{}
			s.recordFailure(ctx, result, SkippedUser, user.ID.String(), user.ID, fmt.Errorf("panic during alert check: %v", r))
		}
	}()
	return s.checkUser(ctx, user, today)
}

func (s *AlertCheckService) checkUser(ctx context.Context, user *domain.User, today time.Time) *userCheckResult {
	result := &userCheckResult{}
	logger := s.logger.With().Str("user_id", user.ID.String()).Logger()

	currency := user.BaseCurrency
	if currency == "" {
		currency = domain.DefaultBaseCurrency
	}

	// budgets and goals are evaluated independently
	budgets, err := s.budgetRepo.GetActive(ctx, user.ID, today)
	if err != nil {
		s.recordFailure(ctx, result, SkippedUser, user.ID.String(), user.ID, fmt.Errorf("failed to load budgets: %w", err))
	}

	for _, budget := range budgets {
		if err := s.checkBudget(ctx, result, user, budget, today, currency); err != nil {
			s.recordFailure(ctx, result, SkippedBudget, fmt.Sprint(budget.ID), user.ID, err)
		}
	}

	open := false
	goals, err := s.goalRepo.GetByUser(ctx, user.ID, &open)
	if err != nil {
		s.recordFailure(ctx, result, SkippedUser, user.ID.String(), user.ID, fmt.Errorf("failed to load goals: %w", err))
		return result
	}

	for _, goal := range goals {
		if err := s.checkGoal(ctx, result, user, goal, today, currency); err != nil {
			s.recordFailure(ctx, result, SkippedGoal, fmt.Sprint(goal.ID), user.ID, err)
		}
	}

	logger.Debug().
		Int("budgets", len(budgets)).
		Int("goals", len(goals)).
		Int("generated", result.generated).
		Int("suppressed", result.suppressed).
		Msg("Checked user")

	return result
}

func (s *AlertCheckService) checkBudget(ctx context.Context, result *userCheckResult, user *domain.User, budget *domain.Budget, today time.Time, currency string) error {
	categoryID := budget.CategoryID
	expenses, err := s.expenseRepo.GetByDateRange(ctx, user.ID, domain.DateRange{Start: budget.StartDate, End: budget.EndDate}, &categoryID)
	if err != nil {
		return fmt.Errorf("failed to load expenses: %w", err)
	}

	snapshot := metrics.BudgetSnapshot(budget, expenses, today)
	decision := alerting.EvaluateBudget(budget, snapshot, currency)
	if decision == nil {
		return nil
	}

	s.logger.Debug().
		Str("user_id", user.ID.String()).
		Int32("budget_id", budget.ID).
		Str("outcome", string(decision.Outcome)).
		Str("percentage", snapshot.Percentage.StringFixed(2)).
		Msg("Budget classified")

	return s.emit(ctx, result, user.ID, decision, today)
}

func (s *AlertCheckService) checkGoal(ctx context.Context, result *userCheckResult, user *domain.User, goal *domain.Goal, today time.Time, currency string) error {
	decision := alerting.EvaluateGoal(goal, today, currency)
	if decision == nil {
		return nil
	}

	// the goal leaves the open set only once its completion alert is stored
	if err := s.emit(ctx, result, user.ID, decision, today); err != nil {
		return err
	}
	if decision.Outcome != alerting.OutcomeGoalCompleted {
		return nil
	}

	if err := s.goalRepo.MarkCompleted(ctx, user.ID, goal.ID); err != nil {
		return fmt.Errorf("failed to mark goal completed: %w", err)
	}
	result.goalsCompleted++
	s.logger.Info().
		Str("user_id", user.ID.String()).
		Int32("goal_id", goal.ID).
		Msg("Goal completed")
	return nil
}

// emit creates the alert unless one already exists for (user, type, subject, today)
func (s *AlertCheckService) emit(ctx context.Context, result *userCheckResult, userID uuid.UUID, decision *alerting.Decision, today time.Time) error {
	subject := alerting.TruncateSubject(decision.Subject)
	exists, err := s.alertRepo.ExistsOnDate(ctx, userID, decision.AlertType, subject, today)
	if err != nil {
		return fmt.Errorf("failed to check existing alerts: %w", err)
	}
	if exists {
		result.suppressed++
		return nil
	}

	alert, err := s.alertRepo.Create(ctx, &domain.Alert{
		UserID:         userID,
		Title:          alerting.TruncateTitle(decision.Title),
		Message:        decision.Message,
		AlertType:      decision.AlertType,
		RelatedSubject: subject,
		CreatedOn:      today,
	})
	if err != nil {
		if errors.Is(err, domain.ErrAlertAlreadyExists) {
			result.suppressed++
			return nil
		}
		return fmt.Errorf("failed to create alert: %w", err)
	}

	result.generated++
	if s.publisher != nil {
		s.publisher.PublishAlert(ctx, alert)
	}
	return nil
}

func (s *AlertCheckService) recordFailure(ctx context.Context, result *userCheckResult, entity, id string, userID uuid.UUID, err error) {
	s.logger.Error().
		Err(err).
		Str("entity", entity).
		Str("entity_id", id).
		Str("user_id", userID.String()).
		Msg("Skipping entity in alert check")

	result.skip(entity, id, userID, err)

	if s.reporter != nil {
		s.reporter.ReportFailure(ctx, err, map[string]string{
			"entity":    entity,
			"entity_id": id,
			"user_id":   userID.String(),
		})
	}
}
