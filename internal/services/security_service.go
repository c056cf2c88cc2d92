package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "moneta/internal/errors"
	"moneta/internal/models"
	"moneta/internal/pagination"
)

// securityService handles security management.
type securityService struct {
	db *gorm.DB
}

// NewSecurityService creates a new SecurityServicer.
func NewSecurityService(db *gorm.DB) SecurityServicer {
	return &securityService{db: db}
}

// CreateSecurity creates a new security for the user.
func (s *securityService) CreateSecurity(userID, name, isin, wkn, symbol string, categoryID *string) (*models.Security, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "name is required")
	}
	if err := verifyCategory(s.db, userID, categoryID, models.PostingKindSecurity); err != nil {
		return nil, err
	}

	security := &models.Security{
		UserID:     userID,
		Name:       name,
		ISIN:       isin,
		WKN:        wkn,
		Symbol:     symbol,
		CategoryID: categoryID,
		IsActive:   true,
	}
	if err := s.db.Create(security).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return security, nil
}

// GetUserSecurities returns a paginated list of the user's securities.
func (s *securityService) GetUserSecurities(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Security], error) {
	page.Defaults()

	base := s.db.Model(&models.Security{}).Where("user_id = ?", userID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var securities []models.Security
	if err := base.Preload("Category").Scopes(pagination.Paginate(page)).Find(&securities).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(securities, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetSecurityByID returns a security by ID if it belongs to the user.
func (s *securityService) GetSecurityByID(userID, securityID string) (*models.Security, error) {
	var security models.Security
	if err := s.db.Preload("Category").Where("id = ? AND user_id = ?", securityID, userID).First(&security).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrSecurityNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &security, nil
}

// UpdateSecurity updates a security's mutable fields.
func (s *securityService) UpdateSecurity(userID, securityID, name, symbol string, categoryID *string) (*models.Security, error) {
	security, err := s.GetSecurityByID(userID, securityID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if name != "" {
		updates["name"] = name
	}
	if symbol != "" {
		updates["symbol"] = symbol
	}
	if categoryID != nil {
		if err := verifyCategory(s.db, userID, categoryID, models.PostingKindSecurity); err != nil {
			return nil, err
		}
		updates["category_id"] = categoryID
	}

	if len(updates) > 0 {
		if err := s.db.Model(security).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return security, nil
}

// DeleteSecurity soft-deletes a security.
func (s *securityService) DeleteSecurity(userID, securityID string) error {
	security, err := s.GetSecurityByID(userID, securityID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(security).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
