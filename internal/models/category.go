package models

// CategoryGroup is the 50/30/20 bucket a category belongs to
type CategoryGroup string

const (
	CategoryGroupNeeds      CategoryGroup = "NEEDS"
	CategoryGroupWants      CategoryGroup = "WANTS"
	CategoryGroupInvestment CategoryGroup = "INVESTMENT"
)

// CategoryGroups lists every group in reporting order.
var CategoryGroups = []CategoryGroup{CategoryGroupNeeds, CategoryGroupWants, CategoryGroupInvestment}

// Valid reports whether g is a known group.
func (g CategoryGroup) Valid() bool {
	switch g {
	case CategoryGroupNeeds, CategoryGroupWants, CategoryGroupInvestment:
		return true
	}
	return false
}

// Category is a reusable spending template owned by a user. Budgets
// reference it through BudgetCategory, each with its own allocation.
type Category struct {
	Base
	UserID      string        `gorm:"type:uuid;not null;index" json:"user_id"`
	Name        string        `gorm:"not null" json:"name"`
	Group       CategoryGroup `gorm:"column:category_group;not null" json:"group"`
	Description string        `json:"description"`
	Icon        string        `json:"icon"`
	Color       string        `json:"color"`

	// Relationships
	BudgetCategories []BudgetCategory `gorm:"foreignKey:CategoryID" json:"budget_categories,omitempty"`
}
