package cardpayment

import (
	"errors"

	"gorm.io/gorm"

	apperrors "ronin/internal/errors"
	"ronin/internal/models"
)

// GormStore implements Store with a gorm database transaction.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a Store on db.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Atomically runs fn in a database transaction.
func (s *GormStore) Atomically(fn func(w Writer) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&gormWriter{tx: tx})
	})
}

type gormWriter struct {
	tx *gorm.DB
}

func (w *gormWriter) CreateTransaction(t *models.Transaction) error {
	if err := w.tx.Create(t).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

func (w *gormWriter) UpdateTransaction(t *models.Transaction) error {
	if err := w.tx.Save(t).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

func (w *gormWriter) SoftDeleteTransaction(id string) error {
	if err := w.tx.Where("id = ?", id).Delete(&models.Transaction{}).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

func (w *gormWriter) FindTransaction(id string) (*models.Transaction, error) {
	var t models.Transaction
	if err := w.tx.Where("id = ?", id).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &t, nil
}
