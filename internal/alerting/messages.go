package alerting

import (
	"fmt"
	"strings"

	"github.com/dafibh/sentinel/sentinel-backend/internal/domain"
	"github.com/dafibh/sentinel/sentinel-backend/internal/metrics"
	"github.com/shopspring/decimal"
)

func money(amount decimal.Decimal, currency string) string {
	return currency + " " + amount.StringFixed(2)
}

func renderBudget(outcome Outcome, category string, snap metrics.Snapshot, currency string) (string, string) {
	var b strings.Builder

	switch outcome {
	case OutcomeBudgetExceeded:
		fmt.Fprintf(&b, "You have exceeded your budget for %s.\n", category)
		fmt.Fprintf(&b, "Limit: %s\n", money(snap.LimitAmount, currency))
		fmt.Fprintf(&b, "Current Spending: %s\n", money(snap.Spent, currency))
		fmt.Fprintf(&b, "Overspent by: %s", money(snap.Spent.Sub(snap.LimitAmount), currency))
		return "Budget Exceeded: " + category, b.String()

	case OutcomeBudgetAtRisk:
		fmt.Fprintf(&b, "At your current spending pace, you will exceed your %s budget by the end of the period.\n", category)
		fmt.Fprintf(&b, "Limit: %s\n", money(snap.LimitAmount, currency))
		fmt.Fprintf(&b, "Current Spending: %s (%s%%)\n", money(snap.Spent, currency), snap.Percentage.StringFixed(1))
		fmt.Fprintf(&b, "Projected End: %s\n", money(snap.ProjectedTotal, currency))
		fmt.Fprintf(&b, "Days Remaining: %d", snap.DaysRemaining)
		return "Budget At Risk: " + category, b.String()

	case OutcomeBudgetOnTrack:
		fmt.Fprintf(&b, "You're managing your %s budget well.\n", category)
		fmt.Fprintf(&b, "Limit: %s\n", money(snap.LimitAmount, currency))
		fmt.Fprintf(&b, "Current Spending: %s (%s%%)\n", money(snap.Spent, currency), snap.Percentage.StringFixed(1))
		fmt.Fprintf(&b, "Remaining: %s", money(snap.Remaining, currency))
		return "Budget On Track: " + category, b.String()

	case OutcomeBudgetEndingSoon:
		fmt.Fprintf(&b, "Your %s budget period ends in %d day(s).\n", category, snap.DaysRemaining)
		fmt.Fprintf(&b, "You have %s remaining.\n", money(snap.Remaining, currency))
		b.WriteString("Review your spending for this period.")
		return "Tip: " + category + " Budget Ending Soon", b.String()
	}

	return "", ""
}

func renderGoal(outcome Outcome, goal *domain.Goal, daysUntilTarget int, currency string) (string, string) {
	switch outcome {
	case OutcomeGoalCompleted:
		return "Goal Completed: " + goal.Name,
			fmt.Sprintf("Congratulations! You've reached your goal: %s", goal.Name)

	case OutcomeGoalDeadline:
		remaining := goal.RemainingAmount()
		daily := metrics.PerDay(remaining, daysUntilTarget)

		var b strings.Builder
		fmt.Fprintf(&b, "Your goal %q is due in %d day(s).\n", goal.Name, daysUntilTarget)
		fmt.Fprintf(&b, "Target: %s\n", money(goal.TargetAmount, currency))
		fmt.Fprintf(&b, "Current: %s\n", money(goal.CurrentAmount, currency))
		fmt.Fprintf(&b, "Remaining: %s\n", money(remaining, currency))
		fmt.Fprintf(&b, "Daily Needed: %s", money(daily, currency))
		return "Goal Deadline Approaching: " + goal.Name, b.String()
	}

	return "", ""
}

// TruncateTitle keeps titles within the stored column width
func TruncateTitle(title string) string {
	return truncateRunes(title, domain.MaxAlertTitleLength)
}

// TruncateSubject keeps a related subject within the stored column width.
// Category and goal names already fit; this guards names stored before a limit change.
func TruncateSubject(subject string) string {
	return truncateRunes(subject, domain.MaxSubjectLength)
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
