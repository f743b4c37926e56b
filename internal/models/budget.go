package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BudgetStrategy is the rule set used to distribute income across categories
type BudgetStrategy string

const (
	BudgetStrategyZeroSum           BudgetStrategy = "ZERO_SUM"
	BudgetStrategyPercentage        BudgetStrategy = "PERCENTAGE"
	BudgetStrategyFiftyThirtyTwenty BudgetStrategy = "FIFTY_THIRTY_TWENTY"
)

// Valid reports whether s is a known strategy.
func (s BudgetStrategy) Valid() bool {
	switch s {
	case BudgetStrategyZeroSum, BudgetStrategyPercentage, BudgetStrategyFiftyThirtyTwenty:
		return true
	}
	return false
}

// BudgetStatus is the lifecycle state of a budget
type BudgetStatus string

const (
	BudgetStatusActive    BudgetStatus = "active"
	BudgetStatusCompleted BudgetStatus = "completed"
	BudgetStatusArchived  BudgetStatus = "archived"
)

// Valid reports whether s is a known status.
func (s BudgetStatus) Valid() bool {
	switch s {
	case BudgetStatusActive, BudgetStatusCompleted, BudgetStatusArchived:
		return true
	}
	return false
}

// Budget owns incomes and budget categories for one period.
type Budget struct {
	Base
	UserID         string         `gorm:"type:uuid;not null;index" json:"user_id"`
	Name           string         `gorm:"not null" json:"name"`
	Strategy       BudgetStrategy `gorm:"not null" json:"strategy"`
	Period         PeriodType     `gorm:"not null" json:"period"`
	StartAt        time.Time      `gorm:"not null" json:"start_at"`
	EndAt          *time.Time     `json:"end_at,omitempty"`
	IsRecurring    bool           `json:"is_recurring"`
	Status         BudgetStatus   `gorm:"not null;default:'active'" json:"status"`
	RolledOverToID *string        `gorm:"type:uuid" json:"rolled_over_to_id,omitempty"`

	// Relationships
	Incomes    []Income         `gorm:"foreignKey:BudgetID" json:"incomes,omitempty"`
	Categories []BudgetCategory `gorm:"foreignKey:BudgetID" json:"categories,omitempty"`
}

// BudgetCategory joins a budget to a category template (or an ad-hoc name)
// and carries the allocation for that budget only.
type BudgetCategory struct {
	Base
	BudgetID          string           `gorm:"type:uuid;not null;index" json:"budget_id"`
	CategoryID        *string          `gorm:"type:uuid;index" json:"category_id,omitempty"`
	Name              string           `gorm:"not null" json:"name"`
	Group             CategoryGroup    `gorm:"column:category_group;not null" json:"group"`
	AllocatedAmount   decimal.Decimal  `gorm:"type:numeric(14,2);not null;default:0" json:"allocated_amount" swaggertype:"string"`
	AllocationPercent *decimal.Decimal `gorm:"type:numeric(5,2)" json:"allocation_percent,omitempty" swaggertype:"string"`

	// Relationships
	Category     *Category     `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Transactions []Transaction `gorm:"foreignKey:BudgetCategoryID" json:"transactions,omitempty"`
}

// Income is money expected or received for a budget. It only feeds totals;
// nothing is spent against it directly.
type Income struct {
	Base
	BudgetID   string          `gorm:"type:uuid;not null;index" json:"budget_id"`
	Amount     decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount" swaggertype:"string"`
	Source     string          `gorm:"not null" json:"source"`
	Frequency  PeriodType      `gorm:"not null" json:"frequency"`
	IsPlanned  bool            `json:"is_planned"`
	ReceivedAt *time.Time      `json:"received_at,omitempty"`
}
