package income

import (
	"testing"

	"github.com/shopspring/decimal"

	"ronin/internal/models"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestAdjusted(t *testing.T) {
	cases := []struct {
		name   string
		amount string
		from   models.PeriodType
		to     models.PeriodType
		want   string
	}{
		{"weekly_to_monthly", "250", models.PeriodWeekly, models.PeriodMonthly, "1082.50"},
		{"monthly_to_quarterly", "1000", models.PeriodMonthly, models.PeriodQuarterly, "3000"},
		{"monthly_to_yearly", "1000", models.PeriodMonthly, models.PeriodYearly, "12000"},
		{"quarterly_to_yearly", "300", models.PeriodQuarterly, models.PeriodYearly, "1200"},
		{"weekly_to_yearly", "100", models.PeriodWeekly, models.PeriodYearly, "5196"},
		{"yearly_to_monthly", "12000", models.PeriodYearly, models.PeriodMonthly, "1000"},
		{"monthly_to_weekly", "433", models.PeriodMonthly, models.PeriodWeekly, "100"},
		{"monthly_to_weekly_rounded", "1000", models.PeriodMonthly, models.PeriodWeekly, "230.95"},
		{"one_time_into_monthly", "500", models.PeriodOneTime, models.PeriodMonthly, "500"},
		{"monthly_into_one_time", "500", models.PeriodMonthly, models.PeriodOneTime, "500"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Adjusted(d(tc.amount), tc.from, tc.to)
			if !got.Equal(d(tc.want)) {
				t.Errorf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestAdjusted_SameFrequencyUnchanged(t *testing.T) {
	for _, p := range models.PeriodTypes {
		amount := d("1234.567")
		if got := Adjusted(amount, p, p); !got.Equal(amount) {
			t.Errorf("%s->%s: expected %s, got %s", p, p, amount, got)
		}
	}
}

func TestAdjusted_MatchesFactor(t *testing.T) {
	amount := d("1234.56")
	for _, from := range models.PeriodTypes {
		for _, to := range models.PeriodTypes {
			if from == to || from == models.PeriodOneTime || to == models.PeriodOneTime {
				continue
			}
			want := amount.Mul(Factor(from, to)).Round(2)
			if got := Adjusted(amount, from, to); !got.Equal(want) {
				t.Errorf("%s->%s: expected %s, got %s", from, to, want, got)
			}
		}
	}
}

func TestAdjusted_InvalidTypePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for unknown period type")
		}
	}()
	Adjusted(d("10"), models.PeriodType("DAILY"), models.PeriodMonthly)
}

func TestFactor(t *testing.T) {
	t.Run("weekly_to_monthly", func(t *testing.T) {
		if got := Factor(models.PeriodWeekly, models.PeriodMonthly); !got.Equal(d("4.33")) {
			t.Errorf("expected 4.33, got %s", got)
		}
	})

	t.Run("monthly_to_quarterly", func(t *testing.T) {
		if got := Factor(models.PeriodMonthly, models.PeriodQuarterly); !got.Equal(d("3")) {
			t.Errorf("expected 3, got %s", got)
		}
	})

	t.Run("one_time", func(t *testing.T) {
		if got := Factor(models.PeriodOneTime, models.PeriodYearly); !got.Equal(d("1")) {
			t.Errorf("expected 1, got %s", got)
		}
	})
}
