package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "moneta/internal/errors"
	"moneta/internal/models"
	"moneta/internal/pagination"
)

// categoryService handles entity category management.
type categoryService struct {
	db *gorm.DB
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(db *gorm.DB) CategoryServicer {
	return &categoryService{db: db}
}

// CreateCategory creates a new category scoped to one posting kind.
func (s *categoryService) CreateCategory(userID, name string, kind models.PostingKind, description, color string) (*models.Category, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "name is required")
	}
	if !kind.Valid() {
		return nil, apperrors.ErrInvalidPostingKind
	}

	category := &models.Category{
		UserID:      userID,
		Name:        name,
		Kind:        kind,
		Description: description,
		Color:       color,
	}
	if err := s.db.Create(category).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return category, nil
}

// GetUserCategories returns a paginated list of the user's categories,
// optionally filtered by posting kind.
func (s *categoryService) GetUserCategories(userID string, kind *models.PostingKind, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error) {
	page.Defaults()

	base := s.db.Model(&models.Category{}).Where("user_id = ?", userID)
	if kind != nil {
		base = base.Where("kind = ?", *kind)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var categories []models.Category
	if err := base.Scopes(pagination.Paginate(page)).Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(categories, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetCategoryByID returns a category by ID if it belongs to the user.
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

// UpdateCategory updates a category's mutable fields. The kind is fixed at
// creation; entities already reference the category under that kind.
func (s *categoryService) UpdateCategory(userID, categoryID, name, description, color string) (*models.Category, error) {
	category, err := s.GetCategoryByID(userID, categoryID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if name != "" {
		updates["name"] = name
	}
	if description != "" {
		updates["description"] = description
	}
	if color != "" {
		updates["color"] = color
	}

	if len(updates) > 0 {
		if err := s.db.Model(category).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return category, nil
}

// DeleteCategory soft-deletes a category and detaches the entities
// referencing it.
func (s *categoryService) DeleteCategory(userID, categoryID string) error {
	category, err := s.GetCategoryByID(userID, categoryID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var model interface{}
		switch category.Kind {
		case models.PostingKindBank:
			model = &models.Account{}
		case models.PostingKindContact:
			model = &models.Contact{}
		case models.PostingKindSavingsPlan:
			model = &models.SavingsPlan{}
		case models.PostingKindSecurity:
			model = &models.Security{}
		}
		if err := tx.Model(model).
			Where("category_id = ?", category.ID).
			Update("category_id", nil).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Delete(category).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}
