package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType represents the type of transaction
type TransactionType string

const (
	TransactionTypeRegular     TransactionType = "REGULAR"
	TransactionTypeReturn      TransactionType = "RETURN"
	TransactionTypeCardPayment TransactionType = "CARD_PAYMENT"
	TransactionTypeIncome      TransactionType = "INCOME"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeRegular, TransactionTypeReturn, TransactionTypeCardPayment, TransactionTypeIncome:
		return true
	}
	return false
}

// Transaction is the atomic ledger entry. REGULAR amounts add to spend and
// RETURN amounts (stored positive) subtract from it. CARD_PAYMENT rows come
// in linked pairs.
type Transaction struct {
	Base
	UserID              string          `gorm:"type:uuid;not null;index" json:"user_id"`
	BudgetID            string          `gorm:"type:uuid;not null;index" json:"budget_id"`
	BudgetCategoryID    *string         `gorm:"type:uuid;index" json:"budget_category_id,omitempty"`
	CardID              *string         `gorm:"type:uuid;index" json:"card_id,omitempty"`
	LinkedTransactionID *string         `gorm:"type:uuid" json:"linked_transaction_id,omitempty"`
	Type                TransactionType `gorm:"column:transaction_type;not null" json:"transaction_type"`
	Amount              decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount" swaggertype:"string"`
	Description         string          `json:"description"`
	OccurredAt          time.Time       `gorm:"not null" json:"occurred_at"`

	// Relationships
	BudgetCategory *BudgetCategory `gorm:"foreignKey:BudgetCategoryID" json:"budget_category,omitempty"`
	Card           *Card           `gorm:"foreignKey:CardID" json:"card,omitempty"`
}

// IsCardPayment reports whether t is one side of a card-to-card transfer.
func (t *Transaction) IsCardPayment() bool {
	return t.Type == TransactionTypeCardPayment
}
