// Package allocation rolls category ledgers and normalized incomes up into
// budget-level totals and strategy recommendations.
package allocation

import (
	"github.com/shopspring/decimal"

	"ronin/internal/income"
	"ronin/internal/ledger"
	"ronin/internal/models"
	"ronin/internal/money"
)

// BudgetTotals is the reconciled state of a budget.
//
// AllocationRemaining (income not yet assigned to a category) and
// SpendingRemaining (income not yet spent) are different quantities.
type BudgetTotals struct {
	TotalIncome         decimal.Decimal  `json:"total_income" swaggertype:"string"`
	TotalAllocated      decimal.Decimal  `json:"total_allocated" swaggertype:"string"`
	TotalSpent          decimal.Decimal  `json:"total_spent" swaggertype:"string"`
	AllocationRemaining decimal.Decimal  `json:"allocation_remaining" swaggertype:"string"`
	SpendingRemaining   decimal.Decimal  `json:"spending_remaining" swaggertype:"string"`
	SpentPercent        decimal.Decimal  `json:"spent_percent" swaggertype:"string"`
	Status              ledger.Status    `json:"status"`
	Balanced            bool             `json:"balanced"`
	Categories          []CategoryTotals `json:"categories"`
}

// CategoryTotals pairs a budget category with its ledger summary.
type CategoryTotals struct {
	BudgetCategoryID string               `json:"budget_category_id"`
	Name             string               `json:"name"`
	Group            models.CategoryGroup `json:"group"`
	ledger.CategorySummary
}

// Recommendation is a suggested allocation for a group (50/30/20) or a
// single category (PERCENTAGE).
type Recommendation struct {
	Group            models.CategoryGroup `json:"group"`
	BudgetCategoryID string               `json:"budget_category_id,omitempty"`
	Percent          decimal.Decimal      `json:"percent" swaggertype:"string"`
	Recommended      decimal.Decimal      `json:"recommended" swaggertype:"string"`
	Allocated        decimal.Decimal      `json:"allocated" swaggertype:"string"`
	OverRecommended  bool                 `json:"over_recommended"`
}

// FiftyThirtyTwenty is the share of income suggested for each group.
var FiftyThirtyTwenty = map[models.CategoryGroup]decimal.Decimal{
	models.CategoryGroupNeeds:      decimal.RequireFromString("0.5"),
	models.CategoryGroupWants:      decimal.RequireFromString("0.3"),
	models.CategoryGroupInvestment: decimal.RequireFromString("0.2"),
}

var hundred = decimal.NewFromInt(100)

// TotalIncome sums every income normalized to the budget's period.
func TotalIncome(budget models.Budget) decimal.Decimal {
	values := make([]decimal.Decimal, 0, len(budget.Incomes))
	for _, inc := range budget.Incomes {
		values = append(values, income.Adjusted(inc.Amount, inc.Frequency, budget.Period))
	}
	return money.SumMonetaryValues(values...)
}

// Totals reconciles budget. Incomes, Categories and each category's
// Transactions must be loaded and free of soft-deleted rows.
func Totals(budget models.Budget) BudgetTotals {
	totalIncome := TotalIncome(budget)

	allocated := make([]decimal.Decimal, 0, len(budget.Categories))
	spent := make([]decimal.Decimal, 0, len(budget.Categories))
	categories := make([]CategoryTotals, 0, len(budget.Categories))
	for _, bc := range budget.Categories {
		summary := ledger.Summarize(bc.AllocatedAmount, bc.Transactions)
		allocated = append(allocated, bc.AllocatedAmount)
		spent = append(spent, summary.Spent)
		categories = append(categories, CategoryTotals{
			BudgetCategoryID: bc.ID,
			Name:             bc.Name,
			Group:            bc.Group,
			CategorySummary:  summary,
		})
	}

	totalAllocated := money.SumMonetaryValues(allocated...)
	totalSpent := money.SumMonetaryValues(spent...)
	spentPercent := money.Percent(totalSpent, totalIncome)
	spendingRemaining := money.RoundToCents(totalIncome.Sub(totalSpent))

	totals := BudgetTotals{
		TotalIncome:         totalIncome,
		TotalAllocated:      totalAllocated,
		TotalSpent:          totalSpent,
		AllocationRemaining: money.RoundToCents(totalIncome.Sub(totalAllocated)),
		SpendingRemaining:   spendingRemaining,
		SpentPercent:        spentPercent,
		Status:              ledger.StatusFor(spentPercent, spendingRemaining),
		Categories:          categories,
	}
	if budget.Strategy == models.BudgetStrategyZeroSum {
		totals.Balanced = ZeroSumBalanced(totals)
	}
	return totals
}

// ZeroSumBalanced reports whether every unit of income has been assigned.
// It is informational; budgets are saved either way.
func ZeroSumBalanced(totals BudgetTotals) bool {
	return totals.AllocationRemaining.IsZero()
}

// Recommend returns allocation suggestions for the budget's strategy.
// FIFTY_THIRTY_TWENTY yields one entry per group, PERCENTAGE one entry per
// category that carries an AllocationPercent, and ZERO_SUM nothing.
// OverRecommended is a warning only.
func Recommend(budget models.Budget) []Recommendation {
	totalIncome := TotalIncome(budget)

	switch budget.Strategy {
	case models.BudgetStrategyFiftyThirtyTwenty:
		byGroup := make(map[models.CategoryGroup][]decimal.Decimal)
		for _, bc := range budget.Categories {
			byGroup[bc.Group] = append(byGroup[bc.Group], bc.AllocatedAmount)
		}

		recs := make([]Recommendation, 0, len(models.CategoryGroups))
		for _, group := range models.CategoryGroups {
			share := FiftyThirtyTwenty[group]
			recommended := money.RoundToCents(totalIncome.Mul(share))
			actual := money.SumMonetaryValues(byGroup[group]...)
			recs = append(recs, Recommendation{
				Group:           group,
				Percent:         share.Mul(hundred),
				Recommended:     recommended,
				Allocated:       actual,
				OverRecommended: actual.GreaterThan(recommended),
			})
		}
		return recs

	case models.BudgetStrategyPercentage:
		recs := make([]Recommendation, 0, len(budget.Categories))
		for _, bc := range budget.Categories {
			if bc.AllocationPercent == nil {
				continue
			}
			recommended := money.RoundToCents(totalIncome.Mul(*bc.AllocationPercent).Div(hundred))
			allocated := money.RoundToCents(bc.AllocatedAmount)
			recs = append(recs, Recommendation{
				Group:            bc.Group,
				BudgetCategoryID: bc.ID,
				Percent:          *bc.AllocationPercent,
				Recommended:      recommended,
				Allocated:        allocated,
				OverRecommended:  allocated.GreaterThan(recommended),
			})
		}
		return recs
	}

	return []Recommendation{}
}
