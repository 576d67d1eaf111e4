package metrics

import (
	"time"

	"github.com/dafibh/sentinel/sentinel-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// MonthlySummary holds income/expense totals for one calendar month
type MonthlySummary struct {
	Year         int
	Month        time.Month
	TotalIncome  decimal.Decimal
	TotalExpense decimal.Decimal
	NetBalance   decimal.Decimal
	IncomeCount  int
	ExpenseCount int
}

// Summarize totals the incomes and expenses dated within the given month
func Summarize(incomes []*domain.Income, expenses []*domain.Expense, year int, month time.Month) *MonthlySummary {
	summary := &MonthlySummary{
		Year:         year,
		Month:        month,
		TotalIncome:  decimal.Zero,
		TotalExpense: decimal.Zero,
	}

	for _, inc := range incomes {
		if !inMonth(inc.Date, year, month) {
			continue
		}
		summary.TotalIncome = summary.TotalIncome.Add(inc.Amount)
		summary.IncomeCount++
	}

	for _, exp := range expenses {
		if !inMonth(exp.Date, year, month) {
			continue
		}
		summary.TotalExpense = summary.TotalExpense.Add(exp.Amount)
		summary.ExpenseCount++
	}

	summary.NetBalance = summary.TotalIncome.Sub(summary.TotalExpense)
	return summary
}

func inMonth(d time.Time, year int, month time.Month) bool {
	return d.Year() == year && d.Month() == month
}
