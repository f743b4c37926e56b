package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "ronin/internal/errors"
	"ronin/internal/events"
	"ronin/internal/logger"
	"ronin/internal/models"
	"ronin/internal/pagination"
	"ronin/internal/services"
)

// BudgetSubscriber attaches a websocket client to a budget's live updates.
type BudgetSubscriber interface {
	Subscribe(w http.ResponseWriter, r *http.Request, budgetID, userID string) error
}

// BudgetHandler handles budget-related requests.
type BudgetHandler struct {
	budgetService services.BudgetServicer
	auditService  services.AuditServicer
	notifier      services.Notifier
	subscriber    BudgetSubscriber
}

// NewBudgetHandler creates a new BudgetHandler. subscriber may be nil, in
// which case the websocket endpoint reports 503.
func NewBudgetHandler(
	budgetService services.BudgetServicer,
	auditService services.AuditServicer,
	notifier services.Notifier,
	subscriber BudgetSubscriber,
) *BudgetHandler {
	return &BudgetHandler{
		budgetService: budgetService,
		auditService:  auditService,
		notifier:      notifier,
		subscriber:    subscriber,
	}
}

// BudgetCategoryRequest describes a budget category. When category_id is
// set, name and group default to the category template's.
type BudgetCategoryRequest struct {
	CategoryID        *string              `json:"category_id" binding:"omitempty,uuid"`
	Name              string               `json:"name" binding:"max=100"`
	Group             models.CategoryGroup `json:"group" binding:"omitempty,category_group"`
	AllocatedAmount   decimal.Decimal      `json:"allocated_amount" binding:"decimal_gte0" swaggertype:"string"`
	AllocationPercent *decimal.Decimal     `json:"allocation_percent" swaggertype:"string"`
}

func (r BudgetCategoryRequest) toInput() services.BudgetCategoryInput {
	return services.BudgetCategoryInput{
		CategoryID:        r.CategoryID,
		Name:              r.Name,
		Group:             r.Group,
		AllocatedAmount:   r.AllocatedAmount,
		AllocationPercent: r.AllocationPercent,
	}
}

// UpdateBudgetCategoryRequest holds budget category changes.
type UpdateBudgetCategoryRequest struct {
	Name              *string               `json:"name" binding:"omitempty,min=1,max=100"`
	Group             *models.CategoryGroup `json:"group" binding:"omitempty,category_group"`
	AllocatedAmount   *decimal.Decimal      `json:"allocated_amount" binding:"omitempty,decimal_gte0" swaggertype:"string"`
	AllocationPercent *decimal.Decimal      `json:"allocation_percent" swaggertype:"string"`
}

// IncomeRequest describes an income.
type IncomeRequest struct {
	Amount     decimal.Decimal   `json:"amount" binding:"decimal_gt0" swaggertype:"string"`
	Source     string            `json:"source" binding:"required,max=100"`
	Frequency  models.PeriodType `json:"frequency" binding:"required,period_type"`
	IsPlanned  bool              `json:"is_planned"`
	ReceivedAt *time.Time        `json:"received_at"`
}

func (r IncomeRequest) toInput() services.IncomeInput {
	return services.IncomeInput{
		Amount:     r.Amount,
		Source:     r.Source,
		Frequency:  r.Frequency,
		IsPlanned:  r.IsPlanned,
		ReceivedAt: r.ReceivedAt,
	}
}

// UpdateIncomeRequest holds income changes.
type UpdateIncomeRequest struct {
	Amount     *decimal.Decimal   `json:"amount" binding:"omitempty,decimal_gt0" swaggertype:"string"`
	Source     *string            `json:"source" binding:"omitempty,min=1,max=100"`
	Frequency  *models.PeriodType `json:"frequency" binding:"omitempty,period_type"`
	IsPlanned  *bool              `json:"is_planned"`
	ReceivedAt *time.Time         `json:"received_at"`
}

// CreateBudgetRequest represents the request payload for creating a budget.
type CreateBudgetRequest struct {
	Name        string                  `json:"name" binding:"required,min=1,max=100"`
	Strategy    models.BudgetStrategy   `json:"strategy" binding:"required,budget_strategy"`
	Period      models.PeriodType       `json:"period" binding:"required,period_type"`
	StartAt     time.Time               `json:"start_at" binding:"required"`
	EndAt       *time.Time              `json:"end_at"`
	IsRecurring *bool                   `json:"is_recurring"`
	Categories  []BudgetCategoryRequest `json:"categories" binding:"omitempty,dive"`
	Incomes     []IncomeRequest         `json:"incomes" binding:"omitempty,dive"`
}

// UpdateBudgetRequest represents the request payload for updating a budget.
type UpdateBudgetRequest struct {
	Name        *string                `json:"name" binding:"omitempty,min=1,max=100"`
	Strategy    *models.BudgetStrategy `json:"strategy" binding:"omitempty,budget_strategy"`
	Period      *models.PeriodType     `json:"period" binding:"omitempty,period_type"`
	StartAt     *time.Time             `json:"start_at"`
	EndAt       *time.Time             `json:"end_at"`
	IsRecurring *bool                  `json:"is_recurring"`
	Status      *models.BudgetStatus   `json:"status" binding:"omitempty,budget_status"`
}

// budgetPath resolves the authenticated user and the :id budget parameter.
func budgetPath(c *gin.Context) (userID, budgetID string, err error) {
	userID, err = getUserID(c)
	if err != nil {
		return "", "", err
	}
	budgetID, err = parsePathID(c, "id")
	if err != nil {
		return "", "", err
	}
	return userID, budgetID, nil
}

// CreateBudget handles the creation of a new budget.
// @Summary     Create a budget
// @Description Create a budget for a period. Categories and incomes may be created in the same request.
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateBudgetRequest true "Budget details"
// @Success     201 {object} models.Budget "Budget created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets [post]
func (h *BudgetHandler) CreateBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	in := services.CreateBudgetInput{
		Name:        req.Name,
		Strategy:    req.Strategy,
		Period:      req.Period,
		StartAt:     req.StartAt,
		EndAt:       req.EndAt,
		IsRecurring: req.IsRecurring,
	}
	for _, bc := range req.Categories {
		in.Categories = append(in.Categories, bc.toInput())
	}
	for _, inc := range req.Incomes {
		in.Incomes = append(in.Incomes, inc.toInput())
	}

	budget, err := h.budgetService.CreateBudget(userID, in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_BUDGET", "budget", budget.ID, c.ClientIP(),
		map[string]interface{}{"name": budget.Name, "strategy": budget.Strategy, "period": budget.Period})

	c.JSON(http.StatusCreated, gin.H{"budget": budget})
}

// GetBudgets handles listing budgets for the authenticated user.
// @Summary     Get budgets
// @Description Get a paginated list of budgets, newest period first
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       status    query string false "Filter by status (active/completed/archived)"
// @Param       period    query string false "Filter by period (WEEKLY/MONTHLY/QUARTERLY/YEARLY/ONE_TIME)"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Budget] "Paginated budgets"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets [get]
func (h *BudgetHandler) GetBudgets(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	var filter services.BudgetFilter
	if v := c.Query("status"); v != "" {
		s := models.BudgetStatus(v)
		if !s.Valid() {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "status must be one of active, completed, archived"))
			return
		}
		filter.Status = &s
	}
	if v := c.Query("period"); v != "" {
		p, err := models.ParsePeriodType(v)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
			return
		}
		filter.Period = &p
	}

	result, err := h.budgetService.GetUserBudgets(userID, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetBudget handles retrieving a specific budget.
// @Summary     Get budget by ID
// @Description Get a budget with its incomes and categories
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Budget ID"
// @Success     200 {object} models.Budget "Budget details"
// @Failure     400 {object} ErrorResponse "Invalid budget ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id} [get]
func (h *BudgetHandler) GetBudget(c *gin.Context) {
	userID, budgetID, err := budgetPath(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budget, err := h.budgetService.GetBudgetByID(userID, budgetID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"budget": budget})
}

// UpdateBudget handles updating an existing budget.
// @Summary     Update budget
// @Description Update a budget. Changing period or start recomputes the end date.
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string              true "Budget ID"
// @Param       request body UpdateBudgetRequest true "Budget changes"
// @Success     200 {object} models.Budget "Updated budget"
// @Failure     400 {object} ErrorResponse "Invalid input or budget ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id} [put]
func (h *BudgetHandler) UpdateBudget(c *gin.Context) {
	userID, budgetID, err := budgetPath(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	budget, err := h.budgetService.UpdateBudget(userID, budgetID, services.UpdateBudgetInput{
		Name:        req.Name,
		Strategy:    req.Strategy,
		Period:      req.Period,
		StartAt:     req.StartAt,
		EndAt:       req.EndAt,
		IsRecurring: req.IsRecurring,
		Status:      req.Status,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_BUDGET", "budget", budget.ID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"budget": budget})
}

// DeleteBudget handles deleting a budget.
// @Summary     Delete budget
// @Description Soft-delete a budget along with its categories, incomes and transactions
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Budget ID"
// @Success     200 {object} map[string]string "Budget deleted"
// @Failure     400 {object} ErrorResponse "Invalid budget ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id} [delete]
func (h *BudgetHandler) DeleteBudget(c *gin.Context) {
	userID, budgetID, err := budgetPath(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.budgetService.DeleteBudget(userID, budgetID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_BUDGET", "budget", budgetID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Budget deleted successfully"})
}

// GetBudgetTotals handles reconciling a budget.
// @Summary     Get budget totals
// @Description Income, allocation and spending totals with a per-category breakdown
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Budget ID"
// @Success     200 {object} allocation.BudgetTotals "Budget totals"
// @Failure     400 {object} ErrorResponse "Invalid budget ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/totals [get]
func (h *BudgetHandler) GetBudgetTotals(c *gin.Context) {
	userID, budgetID, err := budgetPath(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	totals, err := h.budgetService.GetBudgetTotals(userID, budgetID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, totals)
}

// GetRecommendations handles strategy recommendations for a budget.
// @Summary     Get allocation recommendations
// @Description Suggested allocations for the budget's strategy (empty for ZERO_SUM)
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Budget ID"
// @Success     200 {array}  allocation.Recommendation "Recommendations"
// @Failure     400 {object} ErrorResponse "Invalid budget ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/recommendations [get]
func (h *BudgetHandler) GetRecommendations(c *gin.Context) {
	userID, budgetID, err := budgetPath(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	recs, err := h.budgetService.GetRecommendations(userID, budgetID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recommendations": recs})
}

// AddBudgetCategory handles adding a category allocation to a budget.
// @Summary     Add budget category
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                true "Budget ID"
// @Param       request body BudgetCategoryRequest true "Budget category"
// @Success     201 {object} models.BudgetCategory "Budget category created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget or category not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/categories [post]
func (h *BudgetHandler) AddBudgetCategory(c *gin.Context) {
	userID, budgetID, err := budgetPath(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req BudgetCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	bc, err := h.budgetService.AddBudgetCategory(userID, budgetID, req.toInput())
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_BUDGET_CATEGORY", "budget_category", bc.ID, c.ClientIP(),
		map[string]interface{}{"budget_id": budgetID, "allocated_amount": bc.AllocatedAmount.String()})
	h.notifier.LedgerChanged(userID, budgetID, events.TypeAllocationChanged, bc.ID)

	c.JSON(http.StatusCreated, gin.H{"budget_category": bc})
}

// UpdateBudgetCategory handles changing a budget category.
// @Summary     Update budget category
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id               path string                      true "Budget ID"
// @Param       budgetCategoryId path string                      true "Budget category ID"
// @Param       request          body UpdateBudgetCategoryRequest true "Changes"
// @Success     200 {object} models.BudgetCategory "Updated budget category"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget category not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/categories/{budgetCategoryId} [put]
func (h *BudgetHandler) UpdateBudgetCategory(c *gin.Context) {
	userID, budgetID, err := budgetPath(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	bcID, err := parsePathID(c, "budgetCategoryId")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateBudgetCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	bc, err := h.budgetService.UpdateBudgetCategory(userID, budgetID, bcID, services.UpdateBudgetCategoryInput{
		Name:              req.Name,
		Group:             req.Group,
		AllocatedAmount:   req.AllocatedAmount,
		AllocationPercent: req.AllocationPercent,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_BUDGET_CATEGORY", "budget_category", bc.ID, c.ClientIP(), nil)
	h.notifier.LedgerChanged(userID, budgetID, events.TypeAllocationChanged, bc.ID)

	c.JSON(http.StatusOK, gin.H{"budget_category": bc})
}

// RemoveBudgetCategory handles removing a budget category.
// @Summary     Remove budget category
// @Description Remove a category allocation. Refused while live transactions reference it.
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       id               path string true "Budget ID"
// @Param       budgetCategoryId path string true "Budget category ID"
// @Success     200 {object} map[string]string "Budget category removed"
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget category not found"
// @Failure     409 {object} ErrorResponse "Budget category has transactions"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/categories/{budgetCategoryId} [delete]
func (h *BudgetHandler) RemoveBudgetCategory(c *gin.Context) {
	userID, budgetID, err := budgetPath(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	bcID, err := parsePathID(c, "budgetCategoryId")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.budgetService.RemoveBudgetCategory(userID, budgetID, bcID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_BUDGET_CATEGORY", "budget_category", bcID, c.ClientIP(), nil)
	h.notifier.LedgerChanged(userID, budgetID, events.TypeAllocationChanged, bcID)

	c.JSON(http.StatusOK, gin.H{"message": "Budget category removed successfully"})
}

// GetCategorySummary handles the ledger summary for one budget category.
// @Summary     Get budget category summary
// @Description Allocated, spent, remaining and utilization for one budget category
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       id               path string true "Budget ID"
// @Param       budgetCategoryId path string true "Budget category ID"
// @Success     200 {object} ledger.CategorySummary "Category summary"
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget category not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/categories/{budgetCategoryId}/summary [get]
func (h *BudgetHandler) GetCategorySummary(c *gin.Context) {
	userID, budgetID, err := budgetPath(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	bcID, err := parsePathID(c, "budgetCategoryId")
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.budgetService.GetCategorySummary(userID, budgetID, bcID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// AddIncome handles adding an income to a budget.
// @Summary     Add income
// @Description Add an income. Its amount is normalized to the budget's period in totals.
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string        true "Budget ID"
// @Param       request body IncomeRequest true "Income"
// @Success     201 {object} models.Income "Income created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/incomes [post]
func (h *BudgetHandler) AddIncome(c *gin.Context) {
	userID, budgetID, err := budgetPath(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req IncomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	inc, err := h.budgetService.AddIncome(userID, budgetID, req.toInput())
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_INCOME", "income", inc.ID, c.ClientIP(),
		map[string]interface{}{"budget_id": budgetID, "amount": inc.Amount.String(), "frequency": inc.Frequency})
	h.notifier.LedgerChanged(userID, budgetID, events.TypeAllocationChanged, inc.ID)

	c.JSON(http.StatusCreated, gin.H{"income": inc})
}

// UpdateIncome handles changing an income.
// @Summary     Update income
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id       path string              true "Budget ID"
// @Param       incomeId path string              true "Income ID"
// @Param       request  body UpdateIncomeRequest true "Changes"
// @Success     200 {object} models.Income "Updated income"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Income not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/incomes/{incomeId} [put]
func (h *BudgetHandler) UpdateIncome(c *gin.Context) {
	userID, budgetID, err := budgetPath(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	incomeID, err := parsePathID(c, "incomeId")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateIncomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	inc, err := h.budgetService.UpdateIncome(userID, budgetID, incomeID, services.UpdateIncomeInput{
		Amount:     req.Amount,
		Source:     req.Source,
		Frequency:  req.Frequency,
		IsPlanned:  req.IsPlanned,
		ReceivedAt: req.ReceivedAt,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_INCOME", "income", inc.ID, c.ClientIP(), nil)
	h.notifier.LedgerChanged(userID, budgetID, events.TypeAllocationChanged, inc.ID)

	c.JSON(http.StatusOK, gin.H{"income": inc})
}

// RemoveIncome handles removing an income.
// @Summary     Remove income
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       id       path string true "Budget ID"
// @Param       incomeId path string true "Income ID"
// @Success     200 {object} map[string]string "Income removed"
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Income not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/incomes/{incomeId} [delete]
func (h *BudgetHandler) RemoveIncome(c *gin.Context) {
	userID, budgetID, err := budgetPath(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	incomeID, err := parsePathID(c, "incomeId")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.budgetService.RemoveIncome(userID, budgetID, incomeID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_INCOME", "income", incomeID, c.ClientIP(), nil)
	h.notifier.LedgerChanged(userID, budgetID, events.TypeAllocationChanged, incomeID)

	c.JSON(http.StatusOK, gin.H{"message": "Income removed successfully"})
}

// Subscribe upgrades the connection to a websocket that receives the
// budget's totals after every ledger write.
// @Summary     Subscribe to budget updates
// @Description Websocket. Messages are {"type":"budget.totals","budget_id":...,"data":{...}}.
// @Tags        budgets
// @Security    BearerAuth
// @Param       id path string true "Budget ID"
// @Success     101 "Switching protocols"
// @Failure     400 {object} ErrorResponse "Invalid budget ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     503 {object} ErrorResponse "Realtime updates disabled"
// @Router      /budgets/{id}/ws [get]
func (h *BudgetHandler) Subscribe(c *gin.Context) {
	userID, budgetID, err := budgetPath(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if h.subscriber == nil {
		respondWithError(c, errRealtimeDisabled)
		return
	}

	if _, err := h.budgetService.GetBudgetByID(userID, budgetID); err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.subscriber.Subscribe(c.Writer, c.Request, budgetID, userID); err != nil {
		logger.Get().Warnw("websocket subscribe failed", "budget_id", budgetID, "error", err)
	}
}

var errRealtimeDisabled = &apperrors.AppError{
	Code:       "REALTIME_DISABLED",
	Message:    "Realtime updates are not enabled",
	StatusCode: http.StatusServiceUnavailable,
}
