package metrics

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Percent returns part/whole*100, or zero when whole is not positive
func Percent(part, whole decimal.Decimal) decimal.Decimal {
	if !whole.IsPositive() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred)
}

// PerDay divides amount by days, or returns zero when days is not positive
func PerDay(amount decimal.Decimal, days int) decimal.Decimal {
	if days <= 0 {
		return decimal.Zero
	}
	return amount.Div(decimal.NewFromInt(int64(days)))
}

// Project extends spent linearly by dailyRate for the remaining days
func Project(spent, dailyRate decimal.Decimal, daysRemaining int) decimal.Decimal {
	if daysRemaining <= 0 {
		return spent
	}
	return spent.Add(dailyRate.Mul(decimal.NewFromInt(int64(daysRemaining))))
}
