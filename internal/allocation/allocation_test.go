package allocation

import (
	"testing"

	"github.com/shopspring/decimal"

	"ronin/internal/ledger"
	"ronin/internal/models"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func dp(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

func assertDecimal(t *testing.T, name, want string, got decimal.Decimal) {
	t.Helper()
	if !got.Equal(d(want)) {
		t.Errorf("%s: expected %s, got %s", name, want, got)
	}
}

func category(id string, group models.CategoryGroup, allocated string, txs ...models.Transaction) models.BudgetCategory {
	bc := models.BudgetCategory{
		Name:            id,
		Group:           group,
		AllocatedAmount: d(allocated),
		Transactions:    txs,
	}
	bc.ID = id
	return bc
}

func regular(amount string) models.Transaction {
	return models.Transaction{Type: models.TransactionTypeRegular, Amount: d(amount)}
}

func TestTotalIncome_MixedFrequencies(t *testing.T) {
	budget := models.Budget{
		Period: models.PeriodMonthly,
		Incomes: []models.Income{
			{Amount: d("1000"), Frequency: models.PeriodMonthly},
			{Amount: d("250"), Frequency: models.PeriodWeekly},
		},
	}
	assertDecimal(t, "total income", "2082.50", TotalIncome(budget))
}

func TestTotals(t *testing.T) {
	budget := models.Budget{
		Strategy: models.BudgetStrategyZeroSum,
		Period:   models.PeriodMonthly,
		Incomes:  []models.Income{{Amount: d("3000"), Frequency: models.PeriodMonthly}},
		Categories: []models.BudgetCategory{
			category("rent", models.CategoryGroupNeeds, "1500", regular("1500")),
			category("food", models.CategoryGroupNeeds, "500",
				regular("120.10"),
				models.Transaction{Type: models.TransactionTypeReturn, Amount: d("20.10")},
			),
			category("fun", models.CategoryGroupWants, "300"),
		},
	}

	totals := Totals(budget)

	assertDecimal(t, "total income", "3000", totals.TotalIncome)
	assertDecimal(t, "total allocated", "2300", totals.TotalAllocated)
	assertDecimal(t, "total spent", "1600", totals.TotalSpent)
	assertDecimal(t, "allocation remaining", "700", totals.AllocationRemaining)
	assertDecimal(t, "spending remaining", "1400", totals.SpendingRemaining)
	assertDecimal(t, "spent percent", "53.33", totals.SpentPercent)

	if totals.Status != ledger.StatusUnder {
		t.Errorf("expected status under, got %s", totals.Status)
	}
	if totals.Balanced {
		t.Error("expected unbalanced zero-sum budget")
	}
	if len(totals.Categories) != 3 {
		t.Fatalf("expected 3 category totals, got %d", len(totals.Categories))
	}
	if totals.Categories[0].Status != ledger.StatusComplete {
		t.Errorf("expected rent complete, got %s", totals.Categories[0].Status)
	}
	assertDecimal(t, "food spent", "100", totals.Categories[1].Spent)
}

func TestTotals_EmptyBudget(t *testing.T) {
	totals := Totals(models.Budget{Period: models.PeriodMonthly})

	assertDecimal(t, "total income", "0", totals.TotalIncome)
	assertDecimal(t, "spent percent", "0", totals.SpentPercent)
	if totals.Status != ledger.StatusUnder {
		t.Errorf("expected under, got %s", totals.Status)
	}
	if totals.Categories == nil {
		t.Error("expected empty, non-nil categories")
	}
}

func TestTotals_OverSpent(t *testing.T) {
	budget := models.Budget{
		Period:     models.PeriodMonthly,
		Incomes:    []models.Income{{Amount: d("100"), Frequency: models.PeriodMonthly}},
		Categories: []models.BudgetCategory{category("a", models.CategoryGroupWants, "100", regular("150"))},
	}
	totals := Totals(budget)

	if totals.Status != ledger.StatusOver {
		t.Errorf("expected over, got %s", totals.Status)
	}
	assertDecimal(t, "spending remaining", "-50", totals.SpendingRemaining)
}

func TestTotals_ZeroIncomeOverSpent(t *testing.T) {
	budget := models.Budget{
		Period:     models.PeriodMonthly,
		Categories: []models.BudgetCategory{category("a", models.CategoryGroupNeeds, "100", regular("40"))},
	}
	totals := Totals(budget)

	assertDecimal(t, "total income", "0", totals.TotalIncome)
	assertDecimal(t, "spending remaining", "-40", totals.SpendingRemaining)
	assertDecimal(t, "spent percent", "0", totals.SpentPercent)
	if totals.Status != ledger.StatusOver {
		t.Errorf("expected over, got %s", totals.Status)
	}
}

func TestZeroSumBalanced(t *testing.T) {
	budget := models.Budget{
		Strategy: models.BudgetStrategyZeroSum,
		Period:   models.PeriodMonthly,
		Incomes:  []models.Income{{Amount: d("1000"), Frequency: models.PeriodMonthly}},
		Categories: []models.BudgetCategory{
			category("a", models.CategoryGroupNeeds, "600.50"),
			category("b", models.CategoryGroupWants, "399.50"),
		},
	}
	if !Totals(budget).Balanced {
		t.Error("expected balanced budget")
	}
}

func TestRecommend_FiftyThirtyTwenty(t *testing.T) {
	budget := models.Budget{
		Strategy: models.BudgetStrategyFiftyThirtyTwenty,
		Period:   models.PeriodMonthly,
		Incomes:  []models.Income{{Amount: d("4000"), Frequency: models.PeriodMonthly}},
		Categories: []models.BudgetCategory{
			category("rent", models.CategoryGroupNeeds, "1800"),
			category("food", models.CategoryGroupNeeds, "300"),
			category("fun", models.CategoryGroupWants, "1000"),
		},
	}

	recs := Recommend(budget)
	if len(recs) != 3 {
		t.Fatalf("expected 3 recommendations, got %d", len(recs))
	}

	needs, wants, investment := recs[0], recs[1], recs[2]
	if needs.Group != models.CategoryGroupNeeds || wants.Group != models.CategoryGroupWants || investment.Group != models.CategoryGroupInvestment {
		t.Fatalf("unexpected group order: %s, %s, %s", needs.Group, wants.Group, investment.Group)
	}

	assertDecimal(t, "needs recommended", "2000", needs.Recommended)
	assertDecimal(t, "needs allocated", "2100", needs.Allocated)
	assertDecimal(t, "needs percent", "50", needs.Percent)
	if !needs.OverRecommended {
		t.Error("expected needs over recommended")
	}

	assertDecimal(t, "wants recommended", "1200", wants.Recommended)
	if wants.OverRecommended {
		t.Error("expected wants within recommendation")
	}

	assertDecimal(t, "investment recommended", "800", investment.Recommended)
	assertDecimal(t, "investment allocated", "0", investment.Allocated)
}

func TestRecommend_Percentage(t *testing.T) {
	withPercent := category("save", models.CategoryGroupInvestment, "150")
	withPercent.AllocationPercent = dp("12.5")

	budget := models.Budget{
		Strategy: models.BudgetStrategyPercentage,
		Period:   models.PeriodMonthly,
		Incomes:  []models.Income{{Amount: d("1000"), Frequency: models.PeriodMonthly}},
		Categories: []models.BudgetCategory{
			withPercent,
			category("misc", models.CategoryGroupWants, "50"),
		},
	}

	recs := Recommend(budget)
	if len(recs) != 1 {
		t.Fatalf("expected 1 recommendation, got %d", len(recs))
	}
	if recs[0].BudgetCategoryID != "save" {
		t.Errorf("expected recommendation for save, got %s", recs[0].BudgetCategoryID)
	}
	assertDecimal(t, "recommended", "125", recs[0].Recommended)
	if !recs[0].OverRecommended {
		t.Error("expected over recommended")
	}
}

func TestRecommend_ZeroSumEmpty(t *testing.T) {
	recs := Recommend(models.Budget{Strategy: models.BudgetStrategyZeroSum, Period: models.PeriodMonthly})
	if recs == nil || len(recs) != 0 {
		t.Errorf("expected empty recommendations, got %v", recs)
	}
}
