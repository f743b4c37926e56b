package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "ronin/internal/errors"
	"ronin/internal/models"
	"ronin/internal/pagination"
)

// categoryService handles category-related business logic.
type categoryService struct {
	db *gorm.DB
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(db *gorm.DB) CategoryServicer {
	return &categoryService{db: db}
}

// CreateCategory creates a new category template
func (s *categoryService) CreateCategory(
	userID string,
	name string,
	group models.CategoryGroup,
	description string,
	icon string,
	color string,
) (*models.Category, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
	}
	if !group.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category group must be NEEDS, WANTS or INVESTMENT")
	}

	if err := s.ensureUniqueName(userID, name, ""); err != nil {
		return nil, err
	}

	category := &models.Category{
		UserID:      userID,
		Name:        name,
		Group:       group,
		Description: description,
		Icon:        icon,
		Color:       color,
	}

	if err := s.db.Create(category).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return category, nil
}

// GetUserCategories retrieves a paginated list of a user's categories,
// optionally restricted to one group.
func (s *categoryService) GetUserCategories(userID string, group *models.CategoryGroup, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error) {
	page.Defaults()

	base := s.db.Model(&models.Category{}).Where("user_id = ?", userID)
	if group != nil {
		base = base.Where("category_group = ?", *group)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var categories []models.Category
	if err := base.Order("name ASC").Scopes(pagination.Paginate(page)).Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(categories, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetCategoryByID retrieves a category by ID for a specific user
func (s *categoryService) GetCategoryByID(userID, categoryID string) (*models.Category, error) {
	var category models.Category
	if err := s.db.Where("id = ? AND user_id = ?", categoryID, userID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &category, nil
}

// UpdateCategory updates a category. Changing the group does not move
// existing budget categories, which keep the group they were created with.
func (s *categoryService) UpdateCategory(userID, categoryID string, in UpdateCategoryInput) (*models.Category, error) {
	category, err := s.GetCategoryByID(userID, categoryID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if in.Name != nil && *in.Name != "" && *in.Name != category.Name {
		if err := s.ensureUniqueName(userID, *in.Name, category.ID); err != nil {
			return nil, err
		}
		updates["name"] = *in.Name
	}
	if in.Group != nil {
		if !in.Group.Valid() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category group must be NEEDS, WANTS or INVESTMENT")
		}
		updates["category_group"] = *in.Group
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if in.Icon != nil {
		updates["icon"] = *in.Icon
	}
	if in.Color != nil {
		updates["color"] = *in.Color
	}

	if len(updates) > 0 {
		if err := s.db.Model(category).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := s.db.Where("id = ?", category.ID).First(category).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return category, nil
}

// DeleteCategory soft-deletes a category that no budget references.
func (s *categoryService) DeleteCategory(userID, categoryID string) error {
	category, err := s.GetCategoryByID(userID, categoryID)
	if err != nil {
		return err
	}

	var refs int64
	if err := s.db.Model(&models.BudgetCategory{}).Where("category_id = ?", category.ID).Count(&refs).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if refs > 0 {
		return apperrors.ErrCategoryInUse
	}

	if err := s.db.Delete(category).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

func (s *categoryService) ensureUniqueName(userID, name, exceptID string) error {
	q := s.db.Model(&models.Category{}).Where("user_id = ? AND name = ?", userID, name)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "category with this name already exists")
	}
	return nil
}
