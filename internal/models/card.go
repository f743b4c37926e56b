package models

// CardType represents the kind of payment card
type CardType string

const (
	CardTypeDebit  CardType = "DEBIT"
	CardTypeCredit CardType = "CREDIT"
)

// Valid reports whether t is a known card type.
func (t CardType) Valid() bool {
	return t == CardTypeDebit || t == CardTypeCredit
}

// Card is a payment card transactions can be charged to. Card payments move
// money between two cards.
type Card struct {
	Base
	UserID   string   `gorm:"type:uuid;not null;index" json:"user_id"`
	Name     string   `gorm:"not null" json:"name"`
	Type     CardType `gorm:"not null" json:"type"`
	LastFour string   `gorm:"size:4" json:"last_four,omitempty"`
	Color    string   `json:"color,omitempty"`
	IsActive bool     `gorm:"default:true" json:"is_active"`

	// Relationships
	Transactions []Transaction `gorm:"foreignKey:CardID" json:"transactions,omitempty"`
}
