package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "moneta/internal/errors"
	"moneta/internal/models"
	"moneta/internal/pagination"
)

// savingsPlanService handles savings plan management.
type savingsPlanService struct {
	db *gorm.DB
}

// NewSavingsPlanService creates a new SavingsPlanServicer.
func NewSavingsPlanService(db *gorm.DB) SavingsPlanServicer {
	return &savingsPlanService{db: db}
}

// CreateSavingsPlan creates a new savings plan for the user.
func (s *savingsPlanService) CreateSavingsPlan(userID, name, provider, contractNo string, startDate *time.Time, categoryID *string) (*models.SavingsPlan, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "name is required")
	}
	if err := verifyCategory(s.db, userID, categoryID, models.PostingKindSavingsPlan); err != nil {
		return nil, err
	}

	plan := &models.SavingsPlan{
		UserID:     userID,
		Name:       name,
		Provider:   provider,
		ContractNo: contractNo,
		StartDate:  startDate,
		CategoryID: categoryID,
		IsActive:   true,
	}
	if err := s.db.Create(plan).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return plan, nil
}

// GetUserSavingsPlans returns a paginated list of the user's savings plans.
func (s *savingsPlanService) GetUserSavingsPlans(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.SavingsPlan], error) {
	page.Defaults()

	base := s.db.Model(&models.SavingsPlan{}).Where("user_id = ?", userID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var plans []models.SavingsPlan
	if err := base.Preload("Category").Scopes(pagination.Paginate(page)).Find(&plans).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(plans, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetSavingsPlanByID returns a savings plan by ID if it belongs to the user.
func (s *savingsPlanService) GetSavingsPlanByID(userID, planID string) (*models.SavingsPlan, error) {
	var plan models.SavingsPlan
	if err := s.db.Preload("Category").Where("id = ? AND user_id = ?", planID, userID).First(&plan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrSavingsPlanNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &plan, nil
}

// UpdateSavingsPlan updates a savings plan's mutable fields.
func (s *savingsPlanService) UpdateSavingsPlan(userID, planID, name, provider string, categoryID *string) (*models.SavingsPlan, error) {
	plan, err := s.GetSavingsPlanByID(userID, planID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if name != "" {
		updates["name"] = name
	}
	if provider != "" {
		updates["provider"] = provider
	}
	if categoryID != nil {
		if err := verifyCategory(s.db, userID, categoryID, models.PostingKindSavingsPlan); err != nil {
			return nil, err
		}
		updates["category_id"] = categoryID
	}

	if len(updates) > 0 {
		if err := s.db.Model(plan).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return plan, nil
}

// DeleteSavingsPlan soft-deletes a savings plan.
func (s *savingsPlanService) DeleteSavingsPlan(userID, planID string) error {
	plan, err := s.GetSavingsPlanByID(userID, planID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(plan).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
