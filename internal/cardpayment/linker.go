// Package cardpayment creates and removes the linked transaction pairs that
// model money moving from one card to another.
//
// A pair is always written and removed inside a single Store.Atomically
// call. The source side (A) stores -|amount| and the destination side (B)
// stores +|amount|, whatever sign the caller supplied.
package cardpayment

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	apperrors "ronin/internal/errors"
	"ronin/internal/models"
	"ronin/internal/money"
)

// Writer is the set of persistence operations the linker needs. All calls
// made through one Writer belong to the same atomic unit.
type Writer interface {
	CreateTransaction(tx *models.Transaction) error
	UpdateTransaction(tx *models.Transaction) error
	SoftDeleteTransaction(id string) error
	FindTransaction(id string) (*models.Transaction, error)
}

// Store runs fn inside one atomic unit. If fn returns an error none of its
// writes are kept.
type Store interface {
	Atomically(fn func(w Writer) error) error
}

// Request describes a card payment.
type Request struct {
	UserID      string
	BudgetID    string
	FromCardID  string
	ToCardID    string
	Amount      decimal.Decimal
	Description string
	OccurredAt  time.Time
}

// Pair is the two sides of a card payment.
type Pair struct {
	From *models.Transaction `json:"from"`
	To   *models.Transaction `json:"to"`
}

// Linker writes card payment pairs through a Store.
type Linker struct {
	store Store
}

// NewLinker creates a Linker backed by store.
func NewLinker(store Store) *Linker {
	return &Linker{store: store}
}

// Validate checks a request without touching the store.
func Validate(req Request) error {
	if strings.TrimSpace(req.BudgetID) == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "budget ID is required")
	}
	if req.FromCardID == "" || req.ToCardID == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "both card IDs are required")
	}
	if req.FromCardID == req.ToCardID {
		return apperrors.ErrSameCardPayment
	}
	if money.IsZero(req.Amount) {
		return apperrors.ErrZeroAmount
	}
	return nil
}

// Create writes both sides of the payment and cross-links them:
//
//  1. A on FromCardID with no category
//  2. B on ToCardID linked to A
//  3. A updated to link to B
func (l *Linker) Create(req Request) (*Pair, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}

	occurredAt := req.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}
	amount := money.RoundToCents(req.Amount).Abs()
	fromCard, toCard := req.FromCardID, req.ToCardID

	var pair Pair
	err := l.store.Atomically(func(w Writer) error {
		from := &models.Transaction{
			UserID:      req.UserID,
			BudgetID:    req.BudgetID,
			CardID:      &fromCard,
			Type:        models.TransactionTypeCardPayment,
			Amount:      amount.Neg(),
			Description: req.Description,
			OccurredAt:  occurredAt,
		}
		if err := w.CreateTransaction(from); err != nil {
			return err
		}

		fromID := from.ID
		to := &models.Transaction{
			UserID:              req.UserID,
			BudgetID:            req.BudgetID,
			CardID:              &toCard,
			LinkedTransactionID: &fromID,
			Type:                models.TransactionTypeCardPayment,
			Amount:              amount,
			Description:         req.Description,
			OccurredAt:          occurredAt,
		}
		if err := w.CreateTransaction(to); err != nil {
			return err
		}

		toID := to.ID
		from.LinkedTransactionID = &toID
		if err := w.UpdateTransaction(from); err != nil {
			return err
		}

		pair = Pair{From: from, To: to}
		return nil
	})
	if err != nil {
		return nil, asAppError(err)
	}
	return &pair, nil
}

// Delete soft-deletes the card payment id together with its partner and
// returns the ids removed. A partner that is already gone is ignored.
func (l *Linker) Delete(id string) ([]string, error) {
	var removed []string
	err := l.store.Atomically(func(w Writer) error {
		tx, err := w.FindTransaction(id)
		if err != nil {
			return err
		}
		if !tx.IsCardPayment() {
			return apperrors.WithMessage(apperrors.ErrInvalidOperation, "transaction is not a card payment")
		}

		if err := w.SoftDeleteTransaction(tx.ID); err != nil {
			return err
		}
		removed = append(removed, tx.ID)

		if tx.LinkedTransactionID == nil {
			return nil
		}
		partner, err := w.FindTransaction(*tx.LinkedTransactionID)
		if err != nil {
			if errors.Is(err, apperrors.ErrTransactionNotFound) {
				return nil
			}
			return err
		}
		if err := w.SoftDeleteTransaction(partner.ID); err != nil {
			return err
		}
		removed = append(removed, partner.ID)
		return nil
	})
	if err != nil {
		return nil, asAppError(err)
	}
	return removed, nil
}

// GuardEditable rejects edits and copies of card payment transactions.
func GuardEditable(tx *models.Transaction) error {
	if tx.IsCardPayment() {
		return apperrors.ErrCardPaymentImmutable
	}
	return nil
}

func asAppError(err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperrors.Wrap(apperrors.ErrInternalServer, err)
}
