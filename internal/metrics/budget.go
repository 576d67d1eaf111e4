package metrics

import (
	"time"

	"github.com/dafibh/sentinel/sentinel-backend/internal/domain"
	"github.com/dafibh/sentinel/sentinel-backend/internal/util"
	"github.com/shopspring/decimal"
)

// BudgetStatus is the spending state of a budget over its whole period
type BudgetStatus struct {
	Budget     *domain.Budget
	Spent      decimal.Decimal
	Remaining  decimal.Decimal
	Percentage decimal.Decimal
	Exceeded   bool
}

// Snapshot is the budget state at a point in time, including spending pace
type Snapshot struct {
	LimitAmount    decimal.Decimal
	Spent          decimal.Decimal
	Remaining      decimal.Decimal
	Percentage     decimal.Decimal
	DailyAverage   decimal.Decimal
	ProjectedTotal decimal.Decimal
	DaysElapsed    int
	DaysRemaining  int
}

// SpentInBudget sums expenses of the budget's category dated within the budget period
func SpentInBudget(budget *domain.Budget, expenses []*domain.Expense) decimal.Decimal {
	spent := decimal.Zero
	for _, exp := range expenses {
		if exp.CategoryID == nil || *exp.CategoryID != budget.CategoryID {
			continue
		}
		if !util.InDateRange(exp.Date, budget.StartDate, budget.EndDate) {
			continue
		}
		spent = spent.Add(exp.Amount)
	}
	return spent
}

// EvaluateBudget computes spent, remaining and percentage for a budget.
// A zero limit yields a zero percentage rather than a division error.
func EvaluateBudget(budget *domain.Budget, expenses []*domain.Expense) *BudgetStatus {
	spent := SpentInBudget(budget, expenses)
	return &BudgetStatus{
		Budget:     budget,
		Spent:      spent,
		Remaining:  budget.LimitAmount.Sub(spent),
		Percentage: Percent(spent, budget.LimitAmount),
		Exceeded:   spent.GreaterThan(budget.LimitAmount),
	}
}

// BudgetSnapshot computes the budget state as of today, with the daily pace measured
// over the elapsed part of the period and projected linearly to its end
func BudgetSnapshot(budget *domain.Budget, expenses []*domain.Expense, today time.Time) Snapshot {
	status := EvaluateBudget(budget, expenses)

	daysElapsed := util.DaysBetween(budget.StartDate, today) + 1
	daysRemaining := util.DaysBetween(today, budget.EndDate)
	pace := PerDay(status.Spent, daysElapsed)

	return Snapshot{
		LimitAmount:    budget.LimitAmount,
		Spent:          status.Spent,
		Remaining:      status.Remaining,
		Percentage:     status.Percentage,
		DailyAverage:   pace,
		ProjectedTotal: Project(status.Spent, pace, daysRemaining),
		DaysElapsed:    daysElapsed,
		DaysRemaining:  daysRemaining,
	}
}
