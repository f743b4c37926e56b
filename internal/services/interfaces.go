package services

import (
	"time"

	"github.com/shopspring/decimal"

	"ronin/internal/allocation"
	"ronin/internal/cardpayment"
	"ronin/internal/ledger"
	"ronin/internal/models"
	"ronin/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, firstName, lastName string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
	StoreRefreshTokenHash(userID string, tokenHash string) error
	GetRefreshTokenHash(userID string) (string, error)
}

// CardBalance is the net of all live transactions charged to a card.
type CardBalance struct {
	CardID           string          `json:"card_id"`
	Balance          decimal.Decimal `json:"balance" swaggertype:"string"`
	TransactionCount int64           `json:"transaction_count"`
}

// CardServicer defines the contract for card-related business logic.
type CardServicer interface {
	CreateCard(userID, name string, cardType models.CardType, lastFour, color string) (*models.Card, error)
	GetUserCards(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Card], error)
	GetCardByID(userID, cardID string) (*models.Card, error)
	UpdateCard(userID, cardID string, name, lastFour, color *string, isActive *bool) (*models.Card, error)
	DeleteCard(userID, cardID string) error
	GetCardBalance(userID, cardID string) (*CardBalance, error)
}

// UpdateCategoryInput holds optional category changes. A nil field is left untouched.
type UpdateCategoryInput struct {
	Name        *string
	Group       *models.CategoryGroup
	Description *string
	Icon        *string
	Color       *string
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	CreateCategory(userID, name string, group models.CategoryGroup, description, icon, color string) (*models.Category, error)
	GetUserCategories(userID string, group *models.CategoryGroup, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	GetCategoryByID(userID, categoryID string) (*models.Category, error)
	UpdateCategory(userID, categoryID string, in UpdateCategoryInput) (*models.Category, error)
	DeleteCategory(userID, categoryID string) error
}

// BudgetCategoryInput describes a budget category to create. When
// CategoryID is set, Name and Group default to the template's.
type BudgetCategoryInput struct {
	CategoryID        *string
	Name              string
	Group             models.CategoryGroup
	AllocatedAmount   decimal.Decimal
	AllocationPercent *decimal.Decimal
}

// UpdateBudgetCategoryInput holds optional budget category changes.
type UpdateBudgetCategoryInput struct {
	Name              *string
	Group             *models.CategoryGroup
	AllocatedAmount   *decimal.Decimal
	AllocationPercent *decimal.Decimal
}

// IncomeInput describes an income to create.
type IncomeInput struct {
	Amount     decimal.Decimal
	Source     string
	Frequency  models.PeriodType
	IsPlanned  bool
	ReceivedAt *time.Time
}

// UpdateIncomeInput holds optional income changes.
type UpdateIncomeInput struct {
	Amount     *decimal.Decimal
	Source     *string
	Frequency  *models.PeriodType
	IsPlanned  *bool
	ReceivedAt *time.Time
}

// CreateBudgetInput describes a new budget. EndAt is computed from the
// period unless Period is ONE_TIME, where it is required.
type CreateBudgetInput struct {
	Name        string
	Strategy    models.BudgetStrategy
	Period      models.PeriodType
	StartAt     time.Time
	EndAt       *time.Time
	IsRecurring *bool
	Categories  []BudgetCategoryInput
	Incomes     []IncomeInput
}

// UpdateBudgetInput holds optional budget changes.
type UpdateBudgetInput struct {
	Name        *string
	Strategy    *models.BudgetStrategy
	Period      *models.PeriodType
	StartAt     *time.Time
	EndAt       *time.Time
	IsRecurring *bool
	Status      *models.BudgetStatus
}

// BudgetFilter holds optional filter parameters for listing budgets.
type BudgetFilter struct {
	Status *models.BudgetStatus
	Period *models.PeriodType
}

// BudgetServicer defines the contract for budget-related business logic.
type BudgetServicer interface {
	CreateBudget(userID string, in CreateBudgetInput) (*models.Budget, error)
	GetUserBudgets(userID string, page pagination.PageRequest, filter BudgetFilter) (*pagination.PageResponse[models.Budget], error)
	GetBudgetByID(userID, budgetID string) (*models.Budget, error)
	UpdateBudget(userID, budgetID string, in UpdateBudgetInput) (*models.Budget, error)
	DeleteBudget(userID, budgetID string) error
	GetBudgetTotals(userID, budgetID string) (*allocation.BudgetTotals, error)
	GetRecommendations(userID, budgetID string) ([]allocation.Recommendation, error)
	AddBudgetCategory(userID, budgetID string, in BudgetCategoryInput) (*models.BudgetCategory, error)
	UpdateBudgetCategory(userID, budgetID, budgetCategoryID string, in UpdateBudgetCategoryInput) (*models.BudgetCategory, error)
	RemoveBudgetCategory(userID, budgetID, budgetCategoryID string) error
	AddIncome(userID, budgetID string, in IncomeInput) (*models.Income, error)
	UpdateIncome(userID, budgetID, incomeID string, in UpdateIncomeInput) (*models.Income, error)
	RemoveIncome(userID, budgetID, incomeID string) error
	GetCategorySummary(userID, budgetID, budgetCategoryID string) (*ledger.CategorySummary, error)
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	FromDate         *time.Time
	ToDate           *time.Time
	Type             *models.TransactionType
	BudgetCategoryID *string
	CardID           *string
	MinAmount        *decimal.Decimal
	MaxAmount        *decimal.Decimal
}

// CreateTransactionInput describes a REGULAR, RETURN or INCOME transaction.
type CreateTransactionInput struct {
	BudgetID         string
	BudgetCategoryID *string
	CardID           *string
	Type             models.TransactionType
	Amount           decimal.Decimal
	Description      string
	OccurredAt       time.Time
}

// UpdateTransactionInput holds optional transaction changes.
// ClearCategory unassigns the budget category.
type UpdateTransactionInput struct {
	BudgetCategoryID *string
	ClearCategory    bool
	CardID           *string
	Type             *models.TransactionType
	Amount           *decimal.Decimal
	Description      *string
	OccurredAt       *time.Time
}

// CardPaymentInput describes a transfer from one card to another.
type CardPaymentInput struct {
	BudgetID    string
	FromCardID  string
	ToCardID    string
	Amount      decimal.Decimal
	Description string
	OccurredAt  time.Time
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	CreateTransaction(userID string, in CreateTransactionInput) (*models.Transaction, error)
	GetBudgetTransactions(userID, budgetID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetTransactionByID(userID, transactionID string) (*models.Transaction, error)
	UpdateTransaction(userID, transactionID string, in UpdateTransactionInput) (*models.Transaction, error)
	DuplicateTransaction(userID, transactionID string) (*models.Transaction, error)
	DeleteTransaction(userID, transactionID string) (*models.Transaction, error)
	CreateCardPayment(userID string, in CardPaymentInput) (*cardpayment.Pair, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}
