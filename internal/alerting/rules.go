// Package alerting classifies budgets and goals into alert outcomes and renders alert text.
package alerting

import (
	"time"

	"github.com/dafibh/sentinel/sentinel-backend/internal/domain"
	"github.com/dafibh/sentinel/sentinel-backend/internal/metrics"
	"github.com/dafibh/sentinel/sentinel-backend/internal/util"
	"github.com/shopspring/decimal"
)

// Thresholds used by the budget and goal rules
var (
	AtRiskPercentage  = decimal.NewFromInt(75)
	OnTrackPercentage = decimal.NewFromInt(50)
)

const (
	EndingSoonDays   = 3
	GoalDeadlineDays = 30
)

// Outcome is the classification of one budget or goal in one run
type Outcome string

const (
	OutcomeNone             Outcome = ""
	OutcomeBudgetExceeded   Outcome = "budget_exceeded"
	OutcomeBudgetAtRisk     Outcome = "budget_at_risk"
	OutcomeBudgetOnTrack    Outcome = "budget_on_track"
	OutcomeBudgetEndingSoon Outcome = "budget_ending_soon"
	OutcomeGoalCompleted    Outcome = "goal_completed"
	OutcomeGoalDeadline     Outcome = "goal_deadline"
)

// AlertType maps an outcome to the alert type shown to the user
func (o Outcome) AlertType() domain.AlertType {
	switch o {
	case OutcomeBudgetExceeded, OutcomeBudgetAtRisk:
		return domain.AlertTypeDanger
	case OutcomeBudgetOnTrack, OutcomeGoalCompleted:
		return domain.AlertTypeSuccess
	case OutcomeBudgetEndingSoon:
		return domain.AlertTypeTip
	case OutcomeGoalDeadline:
		return domain.AlertTypeInfo
	}
	return ""
}

// Severity orders budget outcomes from healthy (0) to exceeded (3)
func (o Outcome) Severity() int {
	switch o {
	case OutcomeBudgetExceeded:
		return 3
	case OutcomeBudgetAtRisk:
		return 2
	case OutcomeBudgetEndingSoon, OutcomeNone:
		return 1
	}
	return 0
}

// ClassifyBudget applies the budget rules in order; the first match wins
func ClassifyBudget(snap metrics.Snapshot) Outcome {
	switch {
	case snap.Spent.GreaterThan(snap.LimitAmount):
		return OutcomeBudgetExceeded
	case snap.Percentage.GreaterThanOrEqual(AtRiskPercentage) && snap.ProjectedTotal.GreaterThan(snap.LimitAmount):
		return OutcomeBudgetAtRisk
	case snap.Percentage.LessThanOrEqual(OnTrackPercentage):
		return OutcomeBudgetOnTrack
	case snap.DaysRemaining <= EndingSoonDays && snap.Remaining.IsPositive():
		return OutcomeBudgetEndingSoon
	}
	return OutcomeNone
}

// ClassifyGoal returns the outcome for an open goal as of today.
// Completed goals never produce an outcome.
func ClassifyGoal(goal *domain.Goal, today time.Time) Outcome {
	if goal.IsCompleted {
		return OutcomeNone
	}
	if goal.IsReached() {
		return OutcomeGoalCompleted
	}
	days := util.DaysBetween(today, goal.TargetDate)
	if days > 0 && days <= GoalDeadlineDays {
		return OutcomeGoalDeadline
	}
	return OutcomeNone
}

// Decision is a classified entity together with the alert to create for it
type Decision struct {
	Outcome   Outcome
	AlertType domain.AlertType
	Subject   string
	Title     string
	Message   string
}

// EvaluateBudget classifies the budget snapshot and renders its alert, or returns nil
func EvaluateBudget(budget *domain.Budget, snap metrics.Snapshot, currency string) *Decision {
	outcome := ClassifyBudget(snap)
	if outcome == OutcomeNone {
		return nil
	}
	title, message := renderBudget(outcome, budget.CategoryName, snap, currency)
	return &Decision{
		Outcome:   outcome,
		AlertType: outcome.AlertType(),
		Subject:   budget.CategoryName,
		Title:     title,
		Message:   message,
	}
}

// EvaluateGoal classifies the goal and renders its alert, or returns nil
func EvaluateGoal(goal *domain.Goal, today time.Time, currency string) *Decision {
	outcome := ClassifyGoal(goal, today)
	if outcome == OutcomeNone {
		return nil
	}
	title, message := renderGoal(outcome, goal, util.DaysBetween(today, goal.TargetDate), currency)
	return &Decision{
		Outcome:   outcome,
		AlertType: outcome.AlertType(),
		Subject:   goal.Name,
		Title:     title,
		Message:   message,
	}
}
