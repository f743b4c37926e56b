// Package income normalizes income amounts between period frequencies.
package income

import (
	"fmt"

	"github.com/shopspring/decimal"

	"ronin/internal/models"
	"ronin/internal/money"
)

// weekHundredths is the length of each recurring period measured in
// hundredths of a week. Every conversion factor is a ratio of two entries:
// weekly->monthly is 4.33, monthly->yearly is 12, quarterly->yearly is 4.
var weekHundredths = map[models.PeriodType]decimal.Decimal{
	models.PeriodWeekly:    decimal.NewFromInt(100),
	models.PeriodMonthly:   decimal.NewFromInt(433),
	models.PeriodQuarterly: decimal.NewFromInt(1299),
	models.PeriodYearly:    decimal.NewFromInt(5196),
}

// Factor returns the multiplier that converts an amount stated per from
// into an amount per to. ONE_TIME on either side has a factor of 1.
// Unknown period types panic.
func Factor(from, to models.PeriodType) decimal.Decimal {
	mustValid(from)
	mustValid(to)
	if from == to || from == models.PeriodOneTime || to == models.PeriodOneTime {
		return decimal.NewFromInt(1)
	}
	return weekHundredths[to].Div(weekHundredths[from])
}

// Adjusted converts amount received every from period into the equivalent
// amount for one to period, rounded to cents.
//
// Identical frequencies return the amount untouched. A ONE_TIME income is
// counted once at full value whatever the budget period, and a recurring
// income placed in a ONE_TIME budget is counted once as well.
func Adjusted(amount decimal.Decimal, from, to models.PeriodType) decimal.Decimal {
	mustValid(from)
	mustValid(to)
	if from == to || from == models.PeriodOneTime || to == models.PeriodOneTime {
		return amount
	}
	return money.RoundToCents(amount.Mul(Factor(from, to)))
}

func mustValid(p models.PeriodType) {
	if !p.Valid() {
		panic(fmt.Sprintf("income: unknown period type %q", p))
	}
}
