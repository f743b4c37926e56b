// Package ledger computes per-category spending from transactions.
//
// Callers pass transactions that have already been filtered for soft
// deletes. The functions here never look at DeletedAt.
package ledger

import (
	"github.com/shopspring/decimal"

	"ronin/internal/models"
	"ronin/internal/money"
)

// Status classifies a utilization percentage.
type Status string

const (
	StatusUnder    Status = "under"
	StatusComplete Status = "complete"
	StatusOver     Status = "over"
)

var hundred = decimal.NewFromInt(100)

// CategorySummary is the reconciled state of one budget category.
type CategorySummary struct {
	Allocated          decimal.Decimal `json:"allocated" swaggertype:"string"`
	Spent              decimal.Decimal `json:"spent" swaggertype:"string"`
	Remaining          decimal.Decimal `json:"remaining" swaggertype:"string"`
	UtilizationPercent decimal.Decimal `json:"utilization_percent" swaggertype:"string"`
	Status             Status          `json:"status"`
	OverBudget         bool            `json:"over_budget"`
}

// CategorySpent returns the net spend of txs. RETURN amounts are subtracted
// and every other type is added. The sum is rounded once.
func CategorySpent(txs []models.Transaction) decimal.Decimal {
	values := make([]decimal.Decimal, 0, len(txs))
	for _, tx := range txs {
		if tx.Type == models.TransactionTypeReturn {
			values = append(values, tx.Amount.Neg())
			continue
		}
		values = append(values, tx.Amount)
	}
	return money.SumMonetaryValues(values...)
}

// CategoryRemaining returns allocated minus spent, rounded to cents.
func CategoryRemaining(allocated, spent decimal.Decimal) decimal.Decimal {
	return money.RoundToCents(allocated.Sub(spent))
}

// CategoryUtilizationPercent returns spent as a percentage of allocated.
// A zero allocation yields 0; use the sign of CategoryRemaining to detect
// spending against an empty allocation.
func CategoryUtilizationPercent(allocated, spent decimal.Decimal) decimal.Decimal {
	return money.Percent(spent, allocated)
}

// Classify maps a percentage to under, complete (exactly 100) or over.
func Classify(percent decimal.Decimal) Status {
	switch percent.Cmp(hundred) {
	case -1:
		return StatusUnder
	case 0:
		return StatusComplete
	default:
		return StatusOver
	}
}

// StatusFor classifies percent and then lets remaining override it: a
// negative remainder is over, and complete needs nothing left, so a percent
// that only rounds to 100 stays under.
func StatusFor(percent, remaining decimal.Decimal) Status {
	status := Classify(percent)
	switch {
	case remaining.IsNegative():
		return StatusOver
	case status == StatusComplete && !remaining.IsZero():
		return StatusUnder
	}
	return status
}

// Summarize reconciles one category. OverBudget follows the remaining
// amount, so an empty allocation with spending is still flagged.
func Summarize(allocated decimal.Decimal, txs []models.Transaction) CategorySummary {
	spent := CategorySpent(txs)
	remaining := CategoryRemaining(allocated, spent)
	percent := CategoryUtilizationPercent(allocated, spent)
	status := StatusFor(percent, remaining)
	overBudget := remaining.IsNegative()

	return CategorySummary{
		Allocated:          money.RoundToCents(allocated),
		Spent:              spent,
		Remaining:          remaining,
		UtilizationPercent: percent,
		Status:             status,
		OverBudget:         overBudget,
	}
}
