package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "ronin/internal/errors"
	"ronin/internal/events"
	"ronin/internal/models"
	"ronin/internal/pagination"
	"ronin/internal/services"
)

// TransactionHandler handles transaction-related requests.
type TransactionHandler struct {
	transactionService services.TransactionServicer
	auditService       services.AuditServicer
	notifier           services.Notifier
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(
	transactionService services.TransactionServicer,
	auditService services.AuditServicer,
	notifier services.Notifier,
) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
		auditService:       auditService,
		notifier:           notifier,
	}
}

// CreateTransactionRequest represents the request payload for creating a transaction
type CreateTransactionRequest struct {
	BudgetID         string                 `json:"budget_id" binding:"required,uuid"`
	BudgetCategoryID *string                `json:"budget_category_id" binding:"omitempty,uuid"`
	CardID           *string                `json:"card_id" binding:"omitempty,uuid"`
	Type             models.TransactionType `json:"transaction_type" binding:"required,transaction_type"`
	Amount           decimal.Decimal        `json:"amount" binding:"decimal_ne0" swaggertype:"string"`
	Description      string                 `json:"description" binding:"max=500"`
	OccurredAt       *time.Time             `json:"occurred_at"`
}

// UpdateTransactionRequest represents the request payload for updating a transaction.
// Set clear_category to unassign the budget category.
type UpdateTransactionRequest struct {
	BudgetCategoryID *string                 `json:"budget_category_id" binding:"omitempty,uuid"`
	ClearCategory    bool                    `json:"clear_category"`
	CardID           *string                 `json:"card_id" binding:"omitempty,uuid"`
	Type             *models.TransactionType `json:"transaction_type" binding:"omitempty,transaction_type"`
	Amount           *decimal.Decimal        `json:"amount" binding:"omitempty,decimal_ne0" swaggertype:"string"`
	Description      *string                 `json:"description" binding:"omitempty,max=500"`
	OccurredAt       *time.Time              `json:"occurred_at"`
}

// CardPaymentRequest represents a transfer from one card to another.
type CardPaymentRequest struct {
	BudgetID    string          `json:"budget_id" binding:"required,uuid"`
	FromCardID  string          `json:"from_card_id" binding:"required,uuid"`
	ToCardID    string          `json:"to_card_id" binding:"required,uuid"`
	Amount      decimal.Decimal `json:"amount" binding:"decimal_ne0" swaggertype:"string"`
	Description string          `json:"description" binding:"max=500"`
	OccurredAt  *time.Time      `json:"occurred_at"`
}

func timeOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

// CreateTransaction handles the creation of a new transaction
// @Summary     Create a transaction
// @Description Record a REGULAR, RETURN or INCOME transaction against a budget. Card payments use /transactions/card-payment.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateTransactionRequest true "Transaction details"
// @Success     201 {object} models.Transaction "Transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget, category or card not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	tx, err := h.transactionService.CreateTransaction(userID, services.CreateTransactionInput{
		BudgetID:         req.BudgetID,
		BudgetCategoryID: req.BudgetCategoryID,
		CardID:           req.CardID,
		Type:             req.Type,
		Amount:           req.Amount,
		Description:      req.Description,
		OccurredAt:       timeOrZero(req.OccurredAt),
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_TRANSACTION", "transaction", tx.ID, c.ClientIP(),
		map[string]interface{}{"type": tx.Type, "amount": tx.Amount.String(), "budget_id": tx.BudgetID})
	h.notifier.LedgerChanged(userID, tx.BudgetID, events.TypeTransactionCreated, tx.ID)

	c.JSON(http.StatusCreated, gin.H{"transaction": tx})
}

// CreateCardPayment handles a card-to-card payment
// @Summary     Create a card payment
// @Description Move money from one card to another. Two linked CARD_PAYMENT transactions are written atomically.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CardPaymentRequest true "Card payment details"
// @Success     201 {object} cardpayment.Pair "Card payment created"
// @Failure     400 {object} ErrorResponse "Invalid input, same card or zero amount"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget or card not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/card-payment [post]
func (h *TransactionHandler) CreateCardPayment(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CardPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	pair, err := h.transactionService.CreateCardPayment(userID, services.CardPaymentInput{
		BudgetID:    req.BudgetID,
		FromCardID:  req.FromCardID,
		ToCardID:    req.ToCardID,
		Amount:      req.Amount,
		Description: req.Description,
		OccurredAt:  timeOrZero(req.OccurredAt),
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_CARD_PAYMENT", "transaction", pair.From.ID, c.ClientIP(),
		map[string]interface{}{
			"from_card_id": req.FromCardID,
			"to_card_id":   req.ToCardID,
			"amount":       pair.To.Amount.String(),
			"linked_id":    pair.To.ID,
		})
	h.notifier.LedgerChanged(userID, req.BudgetID, events.TypeCardPaymentCreated, pair.From.ID, pair.To.ID)

	c.JSON(http.StatusCreated, gin.H{"card_payment": pair})
}

// GetBudgetTransactions handles listing a budget's transactions
// @Summary     Get budget transactions
// @Description Get a paginated, filterable list of a budget's transactions, newest first
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id                 path  string true  "Budget ID"
// @Param       from_date          query string false "Start date (YYYY-MM-DD or RFC 3339)"
// @Param       to_date            query string false "End date (YYYY-MM-DD or RFC 3339)"
// @Param       transaction_type   query string false "REGULAR/RETURN/CARD_PAYMENT/INCOME"
// @Param       budget_category_id query string false "Budget category ID"
// @Param       card_id            query string false "Card ID"
// @Param       min_amount         query string false "Minimum amount"
// @Param       max_amount         query string false "Maximum amount"
// @Param       page               query int    false "Page number (default 1)"
// @Param       page_size          query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Transaction] "Paginated transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id}/transactions [get]
func (h *TransactionHandler) GetBudgetTransactions(c *gin.Context) {
	userID, budgetID, err := budgetPath(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	filter, err := parseTransactionFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.transactionService.GetBudgetTransactions(userID, budgetID, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func parseTransactionFilter(c *gin.Context) (services.TransactionFilter, error) {
	var filter services.TransactionFilter
	var err error

	if filter.FromDate, err = parseQueryDate(c, "from_date"); err != nil {
		return filter, err
	}
	if filter.ToDate, err = parseQueryDate(c, "to_date"); err != nil {
		return filter, err
	}
	if filter.FromDate != nil && filter.ToDate != nil && filter.ToDate.Before(*filter.FromDate) {
		return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "to_date must not be before from_date")
	}

	if v := c.Query("transaction_type"); v != "" {
		t := models.TransactionType(v)
		if !t.Valid() {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "transaction_type must be one of REGULAR, RETURN, CARD_PAYMENT, INCOME")
		}
		filter.Type = &t
	}

	bcID := c.Query("budget_category_id")
	if filter.BudgetCategoryID, err = parseOptionalID(&bcID, "budget_category_id"); err != nil {
		return filter, err
	}
	cardID := c.Query("card_id")
	if filter.CardID, err = parseOptionalID(&cardID, "card_id"); err != nil {
		return filter, err
	}

	if filter.MinAmount, err = parseQueryDecimal(c, "min_amount"); err != nil {
		return filter, err
	}
	if filter.MaxAmount, err = parseQueryDecimal(c, "max_amount"); err != nil {
		return filter, err
	}
	return filter, nil
}

// GetTransactionByID handles retrieving a specific transaction
// @Summary     Get transaction by ID
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} models.Transaction "Transaction details"
// @Failure     400 {object} ErrorResponse "Invalid transaction ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [get]
func (h *TransactionHandler) GetTransactionByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	tx, err := h.transactionService.GetTransactionByID(userID, transactionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": tx})
}

// UpdateTransaction handles updating a transaction
// @Summary     Update transaction
// @Description Update a transaction. Card payments are immutable; delete and recreate them instead.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                   true "Transaction ID"
// @Param       request body UpdateTransactionRequest true "Transaction changes"
// @Success     200 {object} models.Transaction "Updated transaction"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     409 {object} ErrorResponse "Card payment is immutable"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	tx, err := h.transactionService.UpdateTransaction(userID, transactionID, services.UpdateTransactionInput{
		BudgetCategoryID: req.BudgetCategoryID,
		ClearCategory:    req.ClearCategory,
		CardID:           req.CardID,
		Type:             req.Type,
		Amount:           req.Amount,
		Description:      req.Description,
		OccurredAt:       req.OccurredAt,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_TRANSACTION", "transaction", tx.ID, c.ClientIP(),
		map[string]interface{}{"type": tx.Type, "amount": tx.Amount.String()})
	h.notifier.LedgerChanged(userID, tx.BudgetID, events.TypeTransactionUpdated, tx.ID)

	c.JSON(http.StatusOK, gin.H{"transaction": tx})
}

// DuplicateTransaction handles copying a transaction
// @Summary     Duplicate transaction
// @Description Copy a transaction dated now. Card payments cannot be duplicated.
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     201 {object} models.Transaction "Copy created"
// @Failure     400 {object} ErrorResponse "Invalid transaction ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     409 {object} ErrorResponse "Card payment is immutable"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id}/duplicate [post]
func (h *TransactionHandler) DuplicateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	tx, err := h.transactionService.DuplicateTransaction(userID, transactionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DUPLICATE_TRANSACTION", "transaction", tx.ID, c.ClientIP(),
		map[string]interface{}{"source_id": transactionID})
	h.notifier.LedgerChanged(userID, tx.BudgetID, events.TypeTransactionCreated, tx.ID)

	c.JSON(http.StatusCreated, gin.H{"transaction": tx})
}

// DeleteTransaction handles deleting a transaction
// @Summary     Delete transaction
// @Description Soft-delete a transaction. Deleting either side of a card payment deletes both.
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} map[string]string "Transaction deleted"
// @Failure     400 {object} ErrorResponse "Invalid transaction ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	tx, err := h.transactionService.DeleteTransaction(userID, transactionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	eventType := events.TypeTransactionDeleted
	ids := []string{tx.ID}
	if tx.IsCardPayment() {
		eventType = events.TypeCardPaymentDeleted
		if tx.LinkedTransactionID != nil {
			ids = append(ids, *tx.LinkedTransactionID)
		}
	}

	h.auditService.Log(userID, "DELETE_TRANSACTION", "transaction", tx.ID, c.ClientIP(),
		map[string]interface{}{"deleted_ids": ids})
	h.notifier.LedgerChanged(userID, tx.BudgetID, eventType, ids...)

	c.JSON(http.StatusOK, gin.H{"message": "Transaction deleted successfully"})
}
