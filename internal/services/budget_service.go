package services

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"ronin/internal/allocation"
	apperrors "ronin/internal/errors"
	"ronin/internal/ledger"
	"ronin/internal/models"
	"ronin/internal/money"
	"ronin/internal/pagination"
	"ronin/internal/period"
)

var maxAllocationPercent = decimal.NewFromInt(100)

// budgetService handles budget-related business logic.
type budgetService struct {
	db *gorm.DB
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB) BudgetServicer {
	return &budgetService{db: db}
}

func orderedByCreation(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC, id ASC")
}

// CreateBudget creates a budget together with its initial categories and
// incomes. Everything is written in one database transaction.
func (s *budgetService) CreateBudget(userID string, in CreateBudgetInput) (*models.Budget, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "budget name is required")
	}
	if !in.Strategy.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown budget strategy")
	}
	if !in.Period.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown period type")
	}
	if in.StartAt.IsZero() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "start date is required")
	}

	endAt, err := resolveEnd(in.StartAt, in.Period, in.EndAt)
	if err != nil {
		return nil, err
	}

	isRecurring := in.Period.IsRecurring()
	if in.IsRecurring != nil {
		isRecurring = *in.IsRecurring && in.Period.IsRecurring()
	}

	categories := make([]models.BudgetCategory, 0, len(in.Categories))
	for _, c := range in.Categories {
		bc, err := s.buildBudgetCategory(s.db, userID, c)
		if err != nil {
			return nil, err
		}
		categories = append(categories, *bc)
	}

	incomes := make([]models.Income, 0, len(in.Incomes))
	for _, i := range in.Incomes {
		inc, err := buildIncome(i)
		if err != nil {
			return nil, err
		}
		incomes = append(incomes, *inc)
	}

	budget := &models.Budget{
		UserID:      userID,
		Name:        strings.TrimSpace(in.Name),
		Strategy:    in.Strategy,
		Period:      in.Period,
		StartAt:     in.StartAt,
		EndAt:       &endAt,
		IsRecurring: isRecurring,
		Status:      models.BudgetStatusActive,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Incomes", "Categories").Create(budget).Error; err != nil {
			return err
		}
		for i := range categories {
			categories[i].BudgetID = budget.ID
			if err := tx.Create(&categories[i]).Error; err != nil {
				return err
			}
		}
		for i := range incomes {
			incomes[i].BudgetID = budget.ID
			if err := tx.Create(&incomes[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return s.GetBudgetByID(userID, budget.ID)
}

// resolveEnd returns the end date for a budget. Recurring periods always
// use the period calculator; ONE_TIME needs an explicit end on or after start.
func resolveEnd(start time.Time, p models.PeriodType, explicit *time.Time) (time.Time, error) {
	if p != models.PeriodOneTime {
		return period.End(start, p), nil
	}
	if explicit == nil || explicit.IsZero() {
		return time.Time{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "end date is required for ONE_TIME budgets")
	}
	if explicit.Before(start) {
		return time.Time{}, apperrors.ErrInvalidPeriodRange
	}
	return *explicit, nil
}

// GetUserBudgets returns a paginated list of budgets for the user with optional filters.
func (s *budgetService) GetUserBudgets(userID string, page pagination.PageRequest, filter BudgetFilter) (*pagination.PageResponse[models.Budget], error) {
	page.Defaults()

	base := s.db.Model(&models.Budget{}).Where("user_id = ?", userID)
	if filter.Status != nil {
		base = base.Where("status = ?", *filter.Status)
	}
	if filter.Period != nil {
		base = base.Where("period = ?", *filter.Period)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var budgets []models.Budget
	if err := base.Order("start_at DESC").Scopes(pagination.Paginate(page)).Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(budgets, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetBudgetByID returns a budget with its incomes and categories if it belongs to the user.
func (s *budgetService) GetBudgetByID(userID, budgetID string) (*models.Budget, error) {
	var budget models.Budget
	err := s.db.
		Preload("Incomes", orderedByCreation).
		Preload("Categories", orderedByCreation).
		Where("id = ? AND user_id = ?", budgetID, userID).
		First(&budget).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &budget, nil
}

// ownedBudget checks ownership without loading relations.
func (s *budgetService) ownedBudget(userID, budgetID string) (*models.Budget, error) {
	var budget models.Budget
	if err := s.db.Where("id = ? AND user_id = ?", budgetID, userID).First(&budget).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &budget, nil
}

// UpdateBudget updates a budget. Changing the period or start date
// recomputes the end date; an explicit end date is only accepted for
// ONE_TIME budgets.
func (s *budgetService) UpdateBudget(userID, budgetID string, in UpdateBudgetInput) (*models.Budget, error) {
	budget, err := s.ownedBudget(userID, budgetID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if in.Name != nil && strings.TrimSpace(*in.Name) != "" {
		updates["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Strategy != nil {
		if !in.Strategy.Valid() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown budget strategy")
		}
		updates["strategy"] = *in.Strategy
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown budget status")
		}
		updates["status"] = *in.Status
	}

	p := budget.Period
	if in.Period != nil {
		if !in.Period.Valid() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown period type")
		}
		p = *in.Period
	}
	start := budget.StartAt
	if in.StartAt != nil && !in.StartAt.IsZero() {
		start = *in.StartAt
	}

	if in.Period != nil || in.StartAt != nil || in.EndAt != nil {
		if in.EndAt != nil && p != models.PeriodOneTime {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "end date is computed for recurring periods")
		}
		explicit := in.EndAt
		if explicit == nil {
			explicit = budget.EndAt
		}
		end, err := resolveEnd(start, p, explicit)
		if err != nil {
			return nil, err
		}
		updates["period"] = p
		updates["start_at"] = start
		updates["end_at"] = end
		if !p.IsRecurring() {
			updates["is_recurring"] = false
		}
	}

	if in.IsRecurring != nil {
		updates["is_recurring"] = *in.IsRecurring && p.IsRecurring()
	}

	if len(updates) > 0 {
		if err := s.db.Model(budget).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return s.GetBudgetByID(userID, budgetID)
}

// DeleteBudget soft-deletes a budget along with its categories, incomes
// and transactions.
func (s *budgetService) DeleteBudget(userID, budgetID string) error {
	budget, err := s.ownedBudget(userID, budgetID)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("budget_id = ?", budget.ID).Delete(&models.Transaction{}).Error; err != nil {
			return err
		}
		if err := tx.Where("budget_id = ?", budget.ID).Delete(&models.Income{}).Error; err != nil {
			return err
		}
		if err := tx.Where("budget_id = ?", budget.ID).Delete(&models.BudgetCategory{}).Error; err != nil {
			return err
		}
		return tx.Delete(budget).Error
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// loadForTotals loads a budget with incomes, categories and the live
// transactions of each category.
func (s *budgetService) loadForTotals(userID, budgetID string) (*models.Budget, error) {
	var budget models.Budget
	err := s.db.
		Preload("Incomes", orderedByCreation).
		Preload("Categories", orderedByCreation).
		Preload("Categories.Transactions").
		Where("id = ? AND user_id = ?", budgetID, userID).
		First(&budget).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &budget, nil
}

// GetBudgetTotals reconciles a budget's incomes, allocations and spending.
func (s *budgetService) GetBudgetTotals(userID, budgetID string) (*allocation.BudgetTotals, error) {
	budget, err := s.loadForTotals(userID, budgetID)
	if err != nil {
		return nil, err
	}
	totals := allocation.Totals(*budget)
	return &totals, nil
}

// GetRecommendations returns the strategy's suggested allocations.
func (s *budgetService) GetRecommendations(userID, budgetID string) ([]allocation.Recommendation, error) {
	budget, err := s.GetBudgetByID(userID, budgetID)
	if err != nil {
		return nil, err
	}
	return allocation.Recommend(*budget), nil
}

// buildBudgetCategory validates in and fills name and group from the
// category template when one is referenced.
func (s *budgetService) buildBudgetCategory(db *gorm.DB, userID string, in BudgetCategoryInput) (*models.BudgetCategory, error) {
	if in.AllocatedAmount.IsNegative() {
		return nil, apperrors.ErrNegativeAllocation
	}
	if err := validatePercent(in.AllocationPercent); err != nil {
		return nil, err
	}

	bc := &models.BudgetCategory{
		CategoryID:      in.CategoryID,
		Name:            strings.TrimSpace(in.Name),
		Group:           in.Group,
		AllocatedAmount: money.RoundToCents(in.AllocatedAmount),
	}
	if in.AllocationPercent != nil {
		pct := money.RoundToCents(*in.AllocationPercent)
		bc.AllocationPercent = &pct
	}

	if in.CategoryID != nil {
		var template models.Category
		if err := db.Where("id = ? AND user_id = ?", *in.CategoryID, userID).First(&template).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.ErrCategoryNotFound
			}
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if bc.Name == "" {
			bc.Name = template.Name
		}
		if bc.Group == "" {
			bc.Group = template.Group
		}
	}

	if bc.Name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "budget category name is required")
	}
	if !bc.Group.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category group must be NEEDS, WANTS or INVESTMENT")
	}
	return bc, nil
}

func validatePercent(pct *decimal.Decimal) error {
	if pct == nil {
		return nil
	}
	if pct.IsNegative() || pct.GreaterThan(maxAllocationPercent) {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "allocation percent must be between 0 and 100")
	}
	return nil
}

func buildIncome(in IncomeInput) (*models.Income, error) {
	if !in.Amount.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "income amount must be greater than zero")
	}
	if !in.Frequency.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown income frequency")
	}
	if strings.TrimSpace(in.Source) == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "income source is required")
	}
	return &models.Income{
		Amount:     money.RoundToCents(in.Amount),
		Source:     strings.TrimSpace(in.Source),
		Frequency:  in.Frequency,
		IsPlanned:  in.IsPlanned,
		ReceivedAt: in.ReceivedAt,
	}, nil
}

// AddBudgetCategory adds a category allocation to a budget.
func (s *budgetService) AddBudgetCategory(userID, budgetID string, in BudgetCategoryInput) (*models.BudgetCategory, error) {
	budget, err := s.ownedBudget(userID, budgetID)
	if err != nil {
		return nil, err
	}

	bc, err := s.buildBudgetCategory(s.db, userID, in)
	if err != nil {
		return nil, err
	}
	bc.BudgetID = budget.ID

	if err := s.db.Create(bc).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return bc, nil
}

func (s *budgetService) findBudgetCategory(budgetID, budgetCategoryID string) (*models.BudgetCategory, error) {
	var bc models.BudgetCategory
	if err := s.db.Where("id = ? AND budget_id = ?", budgetCategoryID, budgetID).First(&bc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &bc, nil
}

// UpdateBudgetCategory changes a category's name, group or allocation.
func (s *budgetService) UpdateBudgetCategory(userID, budgetID, budgetCategoryID string, in UpdateBudgetCategoryInput) (*models.BudgetCategory, error) {
	budget, err := s.ownedBudget(userID, budgetID)
	if err != nil {
		return nil, err
	}
	bc, err := s.findBudgetCategory(budget.ID, budgetCategoryID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if in.Name != nil && strings.TrimSpace(*in.Name) != "" {
		updates["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Group != nil {
		if !in.Group.Valid() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category group must be NEEDS, WANTS or INVESTMENT")
		}
		updates["category_group"] = *in.Group
	}
	if in.AllocatedAmount != nil {
		if in.AllocatedAmount.IsNegative() {
			return nil, apperrors.ErrNegativeAllocation
		}
		updates["allocated_amount"] = money.RoundToCents(*in.AllocatedAmount)
	}
	if in.AllocationPercent != nil {
		if err := validatePercent(in.AllocationPercent); err != nil {
			return nil, err
		}
		updates["allocation_percent"] = money.RoundToCents(*in.AllocationPercent)
	}

	if len(updates) > 0 {
		if err := s.db.Model(bc).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return s.findBudgetCategory(budget.ID, bc.ID)
}

// RemoveBudgetCategory soft-deletes a budget category. A category that
// still has live transactions is kept so spending history is not lost.
func (s *budgetService) RemoveBudgetCategory(userID, budgetID, budgetCategoryID string) error {
	budget, err := s.ownedBudget(userID, budgetID)
	if err != nil {
		return err
	}
	bc, err := s.findBudgetCategory(budget.ID, budgetCategoryID)
	if err != nil {
		return err
	}

	var txCount int64
	if err := s.db.Model(&models.Transaction{}).Where("budget_category_id = ?", bc.ID).Count(&txCount).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if txCount > 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidOperation, "budget category has transactions; reassign or delete them first")
	}

	if err := s.db.Delete(bc).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// AddIncome adds an income to a budget.
func (s *budgetService) AddIncome(userID, budgetID string, in IncomeInput) (*models.Income, error) {
	budget, err := s.ownedBudget(userID, budgetID)
	if err != nil {
		return nil, err
	}

	inc, err := buildIncome(in)
	if err != nil {
		return nil, err
	}
	inc.BudgetID = budget.ID

	if err := s.db.Create(inc).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return inc, nil
}

func (s *budgetService) findIncome(budgetID, incomeID string) (*models.Income, error) {
	var inc models.Income
	if err := s.db.Where("id = ? AND budget_id = ?", incomeID, budgetID).First(&inc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrIncomeNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &inc, nil
}

// UpdateIncome updates an income's fields.
func (s *budgetService) UpdateIncome(userID, budgetID, incomeID string, in UpdateIncomeInput) (*models.Income, error) {
	budget, err := s.ownedBudget(userID, budgetID)
	if err != nil {
		return nil, err
	}
	inc, err := s.findIncome(budget.ID, incomeID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if in.Amount != nil {
		if !in.Amount.IsPositive() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "income amount must be greater than zero")
		}
		updates["amount"] = money.RoundToCents(*in.Amount)
	}
	if in.Source != nil && strings.TrimSpace(*in.Source) != "" {
		updates["source"] = strings.TrimSpace(*in.Source)
	}
	if in.Frequency != nil {
		if !in.Frequency.Valid() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown income frequency")
		}
		updates["frequency"] = *in.Frequency
	}
	if in.IsPlanned != nil {
		updates["is_planned"] = *in.IsPlanned
	}
	if in.ReceivedAt != nil {
		updates["received_at"] = *in.ReceivedAt
	}

	if len(updates) > 0 {
		if err := s.db.Model(inc).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return s.findIncome(budget.ID, inc.ID)
}

// RemoveIncome soft-deletes an income.
func (s *budgetService) RemoveIncome(userID, budgetID, incomeID string) error {
	budget, err := s.ownedBudget(userID, budgetID)
	if err != nil {
		return err
	}
	inc, err := s.findIncome(budget.ID, incomeID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(inc).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// GetCategorySummary reconciles a single budget category.
func (s *budgetService) GetCategorySummary(userID, budgetID, budgetCategoryID string) (*ledger.CategorySummary, error) {
	budget, err := s.ownedBudget(userID, budgetID)
	if err != nil {
		return nil, err
	}

	var bc models.BudgetCategory
	err = s.db.Preload("Transactions").
		Where("id = ? AND budget_id = ?", budgetCategoryID, budget.ID).
		First(&bc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	summary := ledger.Summarize(bc.AllocatedAmount, bc.Transactions)
	return &summary, nil
}
