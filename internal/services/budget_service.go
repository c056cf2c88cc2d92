package services

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "moneta/internal/errors"
	"moneta/internal/models"
	"moneta/internal/pagination"
	"moneta/internal/period"
)

// budgetService manages budget purposes, rules, overrides and budget
// categories. Validation happens here at construction and mutation time;
// the planning engine can then evaluate stored entities unconditionally.
type budgetService struct {
	db *gorm.DB
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB) BudgetServicer {
	return &budgetService{db: db}
}

// CreatePurpose creates a new budget purpose pointing at a source entity.
func (s *budgetService) CreatePurpose(userID, name string, sourceType models.BudgetSourceType, sourceID string, categoryID *string) (*models.BudgetPurpose, error) {
	if name == "" || sourceID == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "name and source ID are required")
	}
	if !sourceType.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid source type")
	}
	if categoryID != nil {
		var count int64
		if err := s.db.Model(&models.BudgetCategory{}).
			Where("id = ? AND user_id = ?", *categoryID, userID).
			Count(&count).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count == 0 {
			return nil, apperrors.ErrBudgetCategoryNotFound
		}
	}

	purpose := &models.BudgetPurpose{
		UserID:     userID,
		Name:       name,
		SourceType: sourceType,
		SourceID:   sourceID,
		CategoryID: categoryID,
	}
	if err := s.db.Create(purpose).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return purpose, nil
}

// GetUserPurposes returns a paginated list of the user's budget purposes.
func (s *budgetService) GetUserPurposes(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.BudgetPurpose], error) {
	page.Defaults()

	base := s.db.Model(&models.BudgetPurpose{}).Where("user_id = ?", userID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var purposes []models.BudgetPurpose
	if err := base.Preload("Category").Scopes(pagination.Paginate(page)).Find(&purposes).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(purposes, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetPurposeByID returns a purpose by ID if it belongs to the user.
func (s *budgetService) GetPurposeByID(userID, purposeID string) (*models.BudgetPurpose, error) {
	var purpose models.BudgetPurpose
	if err := s.db.Where("id = ? AND user_id = ?", purposeID, userID).First(&purpose).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPurposeNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &purpose, nil
}

// DeletePurpose soft-deletes a purpose together with its rules and overrides.
func (s *budgetService) DeletePurpose(userID, purposeID string) error {
	purpose, err := s.GetPurposeByID(userID, purposeID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("purpose_id = ?", purpose.ID).Delete(&models.BudgetRule{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Unscoped().Where("purpose_id = ?", purpose.ID).Delete(&models.BudgetOverride{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Delete(purpose).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// CreateRule creates a recurring rule for a purpose. The custom month step
// must lie in [1,120] and the end date must not precede the start date.
func (s *budgetService) CreateRule(userID, purposeID string, amount int64, intervalType models.BudgetIntervalType, monthStep int, startDate time.Time, endDate *time.Time) (*models.BudgetRule, error) {
	if !intervalType.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid interval type")
	}
	if intervalType == models.BudgetIntervalCustomMonths && (monthStep < 1 || monthStep > 120) {
		return nil, apperrors.ErrInvalidMonthStep
	}
	if intervalType != models.BudgetIntervalCustomMonths {
		monthStep = 0
	}
	if startDate.IsZero() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "start date is required")
	}
	if endDate != nil && endDate.Before(startDate) {
		return nil, apperrors.ErrInvalidRuleWindow
	}

	purpose, err := s.GetPurposeByID(userID, purposeID)
	if err != nil {
		return nil, err
	}

	rule := &models.BudgetRule{
		UserID:       userID,
		PurposeID:    purpose.ID,
		Amount:       amount,
		IntervalType: intervalType,
		MonthStep:    monthStep,
		StartDate:    normalizeDate(startDate),
	}
	if endDate != nil {
		end := normalizeDate(*endDate)
		rule.EndDate = &end
	}

	if err := s.db.Create(rule).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return rule, nil
}

// GetPurposeRules returns all rules of one purpose, oldest start first.
func (s *budgetService) GetPurposeRules(userID, purposeID string) ([]models.BudgetRule, error) {
	if _, err := s.GetPurposeByID(userID, purposeID); err != nil {
		return nil, err
	}

	var rules []models.BudgetRule
	if err := s.db.Where("user_id = ? AND purpose_id = ?", userID, purposeID).
		Order("start_date ASC").
		Find(&rules).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return rules, nil
}

// DeleteRule soft-deletes a rule.
func (s *budgetService) DeleteRule(userID, ruleID string) error {
	var rule models.BudgetRule
	if err := s.db.Where("id = ? AND user_id = ?", ruleID, userID).First(&rule).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrRuleNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := s.db.Delete(&rule).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// SetOverride creates or replaces the override for (purpose, period). Two
// writers racing to create the same override are an expected, benign
// conflict: the insert lands on the uniqueness constraint and degrades to
// an update of the amount.
func (s *budgetService) SetOverride(userID, purposeID string, p period.Key, amount int64) (*models.BudgetOverride, error) {
	if !p.Valid() {
		return nil, apperrors.ErrInvalidPeriod
	}
	purpose, err := s.GetPurposeByID(userID, purposeID)
	if err != nil {
		return nil, err
	}

	override := &models.BudgetOverride{
		UserID:    userID,
		PurposeID: purpose.ID,
		Year:      p.Year,
		Month:     p.Month,
		Amount:    amount,
	}
	err = s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "purpose_id"}, {Name: "year"}, {Name: "month"},
		},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"amount":     amount,
			"updated_at": time.Now(),
		}),
	}).Create(override).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return override, nil
}

// GetPurposeOverrides returns all overrides of one purpose in period order.
func (s *budgetService) GetPurposeOverrides(userID, purposeID string) ([]models.BudgetOverride, error) {
	if _, err := s.GetPurposeByID(userID, purposeID); err != nil {
		return nil, err
	}

	var overrides []models.BudgetOverride
	if err := s.db.Where("user_id = ? AND purpose_id = ?", userID, purposeID).
		Order("year ASC, month ASC").
		Find(&overrides).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return overrides, nil
}

// DeleteOverride removes an override. The delete is hard so the uniqueness
// slot for (purpose, period) frees up for a later override.
func (s *budgetService) DeleteOverride(userID, overrideID string) error {
	var override models.BudgetOverride
	if err := s.db.Where("id = ? AND user_id = ?", overrideID, userID).First(&override).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrOverrideNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := s.db.Unscoped().Delete(&override).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// CreateBudgetCategory creates a grouping bucket for purposes.
func (s *budgetService) CreateBudgetCategory(userID, name string) (*models.BudgetCategory, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "name is required")
	}
	category := &models.BudgetCategory{UserID: userID, Name: name}
	if err := s.db.Create(category).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return category, nil
}

// GetUserBudgetCategories returns a paginated list of budget categories.
func (s *budgetService) GetUserBudgetCategories(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.BudgetCategory], error) {
	page.Defaults()

	base := s.db.Model(&models.BudgetCategory{}).Where("user_id = ?", userID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var categories []models.BudgetCategory
	if err := base.Scopes(pagination.Paginate(page)).Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(categories, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// DeleteBudgetCategory soft-deletes a budget category and detaches its
// purposes.
func (s *budgetService) DeleteBudgetCategory(userID, categoryID string) error {
	var category models.BudgetCategory
	if err := s.db.Where("id = ? AND user_id = ?", categoryID, userID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrBudgetCategoryNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.BudgetPurpose{}).
			Where("category_id = ?", category.ID).
			Update("category_id", nil).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Delete(&category).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}
