package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"ronin/internal/models"
	"ronin/internal/period"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestCard creates an active card of the given type.
func CreateTestCard(t *testing.T, db *gorm.DB, userID string, cardType models.CardType) *models.Card {
	t.Helper()

	card := &models.Card{
		UserID:   userID,
		Name:     fmt.Sprintf("Test Card %d", nextID()),
		Type:     cardType,
		LastFour: "4242",
		IsActive: true,
	}
	if err := db.Create(card).Error; err != nil {
		t.Fatalf("failed to create test card: %v", err)
	}
	return card
}

// CreateTestCategory creates a category template in the given group.
func CreateTestCategory(t *testing.T, db *gorm.DB, userID string, group models.CategoryGroup) *models.Category {
	t.Helper()

	category := &models.Category{
		UserID: userID,
		Name:   fmt.Sprintf("Test Category %d", nextID()),
		Group:  group,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestBudget creates an active zero-sum monthly budget covering the
// current month.
func CreateTestBudget(t *testing.T, db *gorm.DB, userID string) *models.Budget {
	t.Helper()
	now := time.Now().UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return CreateTestBudgetWithPeriod(t, db, userID, models.PeriodMonthly, start)
}

// CreateTestBudgetWithPeriod creates an active zero-sum budget for the given
// period and start date. The end date comes from the period calculator
// except for ONE_TIME budgets, which end a week after start.
func CreateTestBudgetWithPeriod(t *testing.T, db *gorm.DB, userID string, p models.PeriodType, start time.Time) *models.Budget {
	t.Helper()

	end := period.End(start, p)
	if p == models.PeriodOneTime {
		end = start.AddDate(0, 0, 7)
	}

	budget := &models.Budget{
		UserID:      userID,
		Name:        fmt.Sprintf("Test Budget %d", nextID()),
		Strategy:    models.BudgetStrategyZeroSum,
		Period:      p,
		StartAt:     start,
		EndAt:       &end,
		IsRecurring: p.IsRecurring(),
		Status:      models.BudgetStatusActive,
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}

// CreateTestBudgetCategory creates an ad-hoc budget category with the given allocation.
func CreateTestBudgetCategory(t *testing.T, db *gorm.DB, budgetID string, group models.CategoryGroup, allocated string) *models.BudgetCategory {
	t.Helper()

	bc := &models.BudgetCategory{
		BudgetID:        budgetID,
		Name:            fmt.Sprintf("Test Budget Category %d", nextID()),
		Group:           group,
		AllocatedAmount: decimal.RequireFromString(allocated),
	}
	if err := db.Create(bc).Error; err != nil {
		t.Fatalf("failed to create test budget category: %v", err)
	}
	return bc
}

// CreateTestIncome creates a planned income for a budget.
func CreateTestIncome(t *testing.T, db *gorm.DB, budgetID string, amount string, frequency models.PeriodType) *models.Income {
	t.Helper()

	income := &models.Income{
		BudgetID:  budgetID,
		Amount:    decimal.RequireFromString(amount),
		Source:    fmt.Sprintf("Test Income %d", nextID()),
		Frequency: frequency,
		IsPlanned: true,
	}
	if err := db.Create(income).Error; err != nil {
		t.Fatalf("failed to create test income: %v", err)
	}
	return income
}

// CreateTestTransaction creates a transaction in a budget, optionally
// assigned to a budget category.
func CreateTestTransaction(t *testing.T, db *gorm.DB, userID, budgetID string, budgetCategoryID *string, txType models.TransactionType, amount string) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		UserID:           userID,
		BudgetID:         budgetID,
		BudgetCategoryID: budgetCategoryID,
		Type:             txType,
		Amount:           decimal.RequireFromString(amount),
		OccurredAt:       time.Now(),
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}
