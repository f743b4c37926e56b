package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "ronin/internal/errors"
	"ronin/internal/ledger"
	"ronin/internal/models"
	"ronin/internal/pagination"
)

// cardService handles card-related business logic.
type cardService struct {
	db *gorm.DB
}

// NewCardService creates a new CardServicer.
func NewCardService(db *gorm.DB) CardServicer {
	return &cardService{db: db}
}

// CreateCard creates a new card for a user.
func (s *cardService) CreateCard(userID, name string, cardType models.CardType, lastFour, color string) (*models.Card, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "card name is required")
	}
	if !cardType.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "card type must be DEBIT or CREDIT")
	}

	card := &models.Card{
		UserID:   userID,
		Name:     name,
		Type:     cardType,
		LastFour: lastFour,
		Color:    color,
		IsActive: true,
	}
	if err := s.db.Create(card).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return card, nil
}

// GetUserCards retrieves a paginated list of cards for a user.
func (s *cardService) GetUserCards(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Card], error) {
	page.Defaults()

	var totalItems int64
	base := s.db.Model(&models.Card{}).Where("user_id = ?", userID)
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var cards []models.Card
	if err := base.Order("created_at ASC").Scopes(pagination.Paginate(page)).Find(&cards).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(cards, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetCardByID retrieves a card by ID for a specific user
func (s *cardService) GetCardByID(userID, cardID string) (*models.Card, error) {
	var card models.Card
	if err := s.db.Where("id = ? AND user_id = ?", cardID, userID).First(&card).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCardNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &card, nil
}

// UpdateCard applies the non-nil fields to a card.
func (s *cardService) UpdateCard(userID, cardID string, name, lastFour, color *string, isActive *bool) (*models.Card, error) {
	card, err := s.GetCardByID(userID, cardID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if name != nil && *name != "" {
		updates["name"] = *name
	}
	if lastFour != nil {
		updates["last_four"] = *lastFour
	}
	if color != nil {
		updates["color"] = *color
	}
	if isActive != nil {
		updates["is_active"] = *isActive
	}

	if len(updates) > 0 {
		if err := s.db.Model(card).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := s.db.Where("id = ?", card.ID).First(card).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return card, nil
}

// DeleteCard soft-deletes a card. Transactions keep their card reference
// so history stays intact.
func (s *cardService) DeleteCard(userID, cardID string) error {
	card, err := s.GetCardByID(userID, cardID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(card).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// GetCardBalance nets the live transactions charged to a card with the
// ledger sign rule: REGULAR and INCOME add, RETURN subtracts, and a
// CARD_PAYMENT side counts with its stored sign (the paying card's -amount,
// the paid card's +amount).
func (s *cardService) GetCardBalance(userID, cardID string) (*CardBalance, error) {
	card, err := s.GetCardByID(userID, cardID)
	if err != nil {
		return nil, err
	}

	var txs []models.Transaction
	if err := s.db.Select("id", "transaction_type", "amount").
		Where("card_id = ? AND user_id = ?", card.ID, userID).
		Find(&txs).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return &CardBalance{
		CardID:           card.ID,
		Balance:          ledger.CategorySpent(txs),
		TransactionCount: int64(len(txs)),
	}, nil
}
