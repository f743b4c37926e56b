package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"ronin/internal/cardpayment"
	apperrors "ronin/internal/errors"
	"ronin/internal/logger"
	"ronin/internal/models"
	"ronin/internal/money"
	"ronin/internal/pagination"
	"ronin/internal/period"
)

// transactionService handles transaction-related business logic.
// Card payments are written through the cardpayment linker so both sides
// of a pair always change together.
type transactionService struct {
	db     *gorm.DB
	linker *cardpayment.Linker
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB) TransactionServicer {
	return &transactionService{
		db:     db,
		linker: cardpayment.NewLinker(cardpayment.NewGormStore(db)),
	}
}

func (s *transactionService) ownedBudget(userID, budgetID string) (*models.Budget, error) {
	var budget models.Budget
	if err := s.db.Where("id = ? AND user_id = ?", budgetID, userID).First(&budget).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &budget, nil
}

func (s *transactionService) ownedCard(userID, cardID string) (*models.Card, error) {
	var card models.Card
	if err := s.db.Where("id = ? AND user_id = ?", cardID, userID).First(&card).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCardNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &card, nil
}

// budgetRange is the budget's own span; an explicit EndAt wins over the
// computed period end.
func budgetRange(b *models.Budget) period.Range {
	r := period.Current(b.StartAt, b.Period)
	if b.EndAt != nil {
		r.End = *b.EndAt
	}
	return r
}

// checkBudgetCategory verifies the budget category belongs to the budget.
func (s *transactionService) checkBudgetCategory(budgetID, budgetCategoryID string) error {
	var count int64
	if err := s.db.Model(&models.BudgetCategory{}).
		Where("id = ? AND budget_id = ?", budgetCategoryID, budgetID).
		Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count == 0 {
		return apperrors.ErrBudgetCategoryNotFound
	}
	return nil
}

// validateEntry checks a non card payment transaction in its final shape.
func validateEntry(tx *models.Transaction) error {
	if !tx.Type.Valid() {
		return apperrors.ErrInvalidTransactionType
	}
	if tx.IsCardPayment() {
		return apperrors.WithMessage(apperrors.ErrInvalidTransactionType, "card payments must be created as a pair")
	}
	if money.IsZero(tx.Amount) {
		return apperrors.ErrZeroAmount
	}
	if tx.Amount.IsNegative() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be positive; record refunds as RETURN")
	}
	if tx.Type == models.TransactionTypeIncome && tx.BudgetCategoryID != nil {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "income transactions cannot be assigned to a budget category")
	}
	return nil
}

// CreateTransaction records a REGULAR, RETURN or INCOME transaction.
func (s *transactionService) CreateTransaction(userID string, in CreateTransactionInput) (*models.Transaction, error) {
	occurredAt := in.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}

	tx := &models.Transaction{
		UserID:           userID,
		BudgetID:         in.BudgetID,
		BudgetCategoryID: in.BudgetCategoryID,
		CardID:           in.CardID,
		Type:             in.Type,
		Amount:           money.RoundToCents(in.Amount),
		Description:      strings.TrimSpace(in.Description),
		OccurredAt:       occurredAt,
	}
	if err := validateEntry(tx); err != nil {
		return nil, err
	}

	budget, err := s.ownedBudget(userID, in.BudgetID)
	if err != nil {
		return nil, err
	}
	if !budgetRange(budget).Contains(occurredAt) {
		logger.Named("transactions").Infow("transaction dated outside budget period",
			"budget_id", budget.ID, "occurred_at", occurredAt)
	}
	if tx.BudgetCategoryID != nil {
		if err := s.checkBudgetCategory(in.BudgetID, *tx.BudgetCategoryID); err != nil {
			return nil, err
		}
	}
	if tx.CardID != nil {
		if _, err := s.ownedCard(userID, *tx.CardID); err != nil {
			return nil, err
		}
	}

	if err := s.db.Create(tx).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return tx, nil
}

// GetBudgetTransactions returns a paginated, filtered list of a budget's
// transactions, newest first.
func (s *transactionService) GetBudgetTransactions(
	userID, budgetID string,
	page pagination.PageRequest,
	filter TransactionFilter,
) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	if _, err := s.ownedBudget(userID, budgetID); err != nil {
		return nil, err
	}

	base := s.db.Model(&models.Transaction{}).Where("user_id = ? AND budget_id = ?", userID, budgetID)
	base = applyTransactionFilters(base, filter)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := base.Order("occurred_at DESC, id DESC").Scopes(pagination.Paginate(page)).Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

func applyTransactionFilters(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if f.FromDate != nil {
		q = q.Where("occurred_at >= ?", *f.FromDate)
	}
	if f.ToDate != nil {
		q = q.Where("occurred_at <= ?", *f.ToDate)
	}
	if f.Type != nil {
		q = q.Where("transaction_type = ?", *f.Type)
	}
	if f.BudgetCategoryID != nil {
		q = q.Where("budget_category_id = ?", *f.BudgetCategoryID)
	}
	if f.CardID != nil {
		q = q.Where("card_id = ?", *f.CardID)
	}
	if f.MinAmount != nil {
		q = q.Where("amount >= ?", *f.MinAmount)
	}
	if f.MaxAmount != nil {
		q = q.Where("amount <= ?", *f.MaxAmount)
	}
	return q
}

// GetTransactionByID retrieves a transaction by ID for a specific user
func (s *transactionService) GetTransactionByID(userID, transactionID string) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := s.db.Where("id = ? AND user_id = ?", transactionID, userID).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}

// UpdateTransaction edits a transaction. Card payments are immutable and
// no transaction can be turned into one.
func (s *transactionService) UpdateTransaction(userID, transactionID string, in UpdateTransactionInput) (*models.Transaction, error) {
	tx, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return nil, err
	}
	if err := cardpayment.GuardEditable(tx); err != nil {
		return nil, err
	}
	if in.Type != nil && *in.Type == models.TransactionTypeCardPayment {
		return nil, apperrors.ErrInvalidTypeChange
	}

	updated := *tx
	if in.Type != nil {
		updated.Type = *in.Type
	}
	if in.Amount != nil {
		updated.Amount = money.RoundToCents(*in.Amount)
	}
	if in.Description != nil {
		updated.Description = strings.TrimSpace(*in.Description)
	}
	if in.OccurredAt != nil && !in.OccurredAt.IsZero() {
		updated.OccurredAt = *in.OccurredAt
	}
	if in.ClearCategory {
		updated.BudgetCategoryID = nil
	} else if in.BudgetCategoryID != nil {
		updated.BudgetCategoryID = in.BudgetCategoryID
	}
	if in.CardID != nil {
		updated.CardID = in.CardID
	}

	if err := validateEntry(&updated); err != nil {
		return nil, err
	}
	if in.BudgetCategoryID != nil && !in.ClearCategory {
		if err := s.checkBudgetCategory(tx.BudgetID, *in.BudgetCategoryID); err != nil {
			return nil, err
		}
	}
	if in.CardID != nil {
		if _, err := s.ownedCard(userID, *in.CardID); err != nil {
			return nil, err
		}
	}

	updates := map[string]interface{}{
		"transaction_type":   updated.Type,
		"amount":             updated.Amount,
		"description":        updated.Description,
		"occurred_at":        updated.OccurredAt,
		"budget_category_id": updated.BudgetCategoryID,
		"card_id":            updated.CardID,
	}
	if err := s.db.Model(tx).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return s.GetTransactionByID(userID, transactionID)
}

// DuplicateTransaction copies a transaction into a new one dated now.
func (s *transactionService) DuplicateTransaction(userID, transactionID string) (*models.Transaction, error) {
	original, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return nil, err
	}
	if err := cardpayment.GuardEditable(original); err != nil {
		return nil, err
	}

	copied := &models.Transaction{
		UserID:           original.UserID,
		BudgetID:         original.BudgetID,
		BudgetCategoryID: original.BudgetCategoryID,
		CardID:           original.CardID,
		Type:             original.Type,
		Amount:           original.Amount,
		Description:      original.Description,
		OccurredAt:       time.Now(),
	}
	if err := s.db.Create(copied).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return copied, nil
}

// DeleteTransaction soft-deletes a transaction and returns it. Deleting
// either side of a card payment removes the whole pair.
func (s *transactionService) DeleteTransaction(userID, transactionID string) (*models.Transaction, error) {
	tx, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return nil, err
	}

	if tx.IsCardPayment() {
		if _, err := s.linker.Delete(tx.ID); err != nil {
			return nil, err
		}
		return tx, nil
	}

	if err := s.db.Delete(tx).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return tx, nil
}

// CreateCardPayment moves money from one of the user's cards to another.
func (s *transactionService) CreateCardPayment(userID string, in CardPaymentInput) (*cardpayment.Pair, error) {
	req := cardpayment.Request{
		UserID:      userID,
		BudgetID:    in.BudgetID,
		FromCardID:  in.FromCardID,
		ToCardID:    in.ToCardID,
		Amount:      in.Amount,
		Description: strings.TrimSpace(in.Description),
		OccurredAt:  in.OccurredAt,
	}
	if err := cardpayment.Validate(req); err != nil {
		return nil, err
	}

	if _, err := s.ownedBudget(userID, in.BudgetID); err != nil {
		return nil, err
	}
	if _, err := s.ownedCard(userID, in.FromCardID); err != nil {
		return nil, err
	}
	if _, err := s.ownedCard(userID, in.ToCardID); err != nil {
		return nil, err
	}

	return s.linker.Create(req)
}
