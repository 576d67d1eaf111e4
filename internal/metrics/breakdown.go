package metrics

import (
	"fmt"
	"sort"
	"time"

	"github.com/dafibh/sentinel/sentinel-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// UncategorizedLabel names the group for expenses without a category
const UncategorizedLabel = "Uncategorized"

// CategoryTotal is the spending of one category within a month
type CategoryTotal struct {
	CategoryID *int32
	Category   string
	Total      decimal.Decimal
	Count      int
}

// Breakdown groups a month's expenses by category
type Breakdown struct {
	Year          int
	Month         time.Month
	Categories    []CategoryTotal
	TotalExpenses decimal.Decimal
}

// CategoryBreakdown groups the month's expenses by category, largest total first.
// Categories with equal totals keep the order in which they first appear in expenses.
func CategoryBreakdown(expenses []*domain.Expense, year int, month time.Month) *Breakdown {
	result := &Breakdown{
		Year:          year,
		Month:         month,
		Categories:    []CategoryTotal{},
		TotalExpenses: decimal.Zero,
	}

	// index into result.Categories; -1 keys the uncategorized group
	index := make(map[int32]int)
	uncategorized := -1

	for _, exp := range expenses {
		if !inMonth(exp.Date, year, month) {
			continue
		}
		result.TotalExpenses = result.TotalExpenses.Add(exp.Amount)

		var pos int
		var ok bool
		if exp.CategoryID == nil {
			pos, ok = uncategorized, uncategorized >= 0
		} else {
			pos, ok = index[*exp.CategoryID]
		}

		if !ok {
			entry := CategoryTotal{Category: UncategorizedLabel, Total: decimal.Zero}
			if exp.CategoryID != nil {
				id := *exp.CategoryID
				entry.CategoryID = &id
				if exp.CategoryName != nil {
					entry.Category = *exp.CategoryName
				} else {
					entry.Category = fmt.Sprintf("Category %d", id)
				}
			}
			result.Categories = append(result.Categories, entry)
			pos = len(result.Categories) - 1
			if exp.CategoryID == nil {
				uncategorized = pos
			} else {
				index[*exp.CategoryID] = pos
			}
		}

		result.Categories[pos].Total = result.Categories[pos].Total.Add(exp.Amount)
		result.Categories[pos].Count++
	}

	sort.SliceStable(result.Categories, func(i, j int) bool {
		return result.Categories[i].Total.GreaterThan(result.Categories[j].Total)
	})

	return result
}
