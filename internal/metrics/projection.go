package metrics

import (
	"time"

	"github.com/dafibh/sentinel/sentinel-backend/internal/domain"
	"github.com/dafibh/sentinel/sentinel-backend/internal/util"
	"github.com/shopspring/decimal"
)

// Projection extrapolates the current month's spending to its last day
type Projection struct {
	Today               time.Time
	DaysPassed          int
	DaysRemaining       int
	CurrentSpent        decimal.Decimal
	DailyAverage        decimal.Decimal
	ProjectedEndOfMonth decimal.Decimal
}

// ProjectSpending projects end-of-month spending from the expenses dated in today's month
func ProjectSpending(expenses []*domain.Expense, today time.Time) *Projection {
	daysPassed := today.Day()
	daysRemaining := util.DaysInMonth(today.Year(), today.Month()) - daysPassed

	spent := decimal.Zero
	for _, exp := range expenses {
		if inMonth(exp.Date, today.Year(), today.Month()) {
			spent = spent.Add(exp.Amount)
		}
	}

	daily := PerDay(spent, daysPassed)
	return &Projection{
		Today:               util.DateOnly(today),
		DaysPassed:          daysPassed,
		DaysRemaining:       daysRemaining,
		CurrentSpent:        spent,
		DailyAverage:        daily,
		ProjectedEndOfMonth: Project(spent, daily, daysRemaining),
	}
}
