package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "moneta/internal/errors"
	"moneta/internal/models"
	"moneta/internal/pagination"
)

// accountService handles bank account management.
type accountService struct {
	db *gorm.DB
}

// NewAccountService creates a new AccountServicer.
func NewAccountService(db *gorm.DB) AccountServicer {
	return &accountService{db: db}
}

// CreateAccount creates a new bank account for the user.
func (s *accountService) CreateAccount(userID, name, iban, bic, description, currency string, categoryID *string) (*models.Account, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "name is required")
	}
	if currency == "" {
		currency = "EUR"
	}
	if err := verifyCategory(s.db, userID, categoryID, models.PostingKindBank); err != nil {
		return nil, err
	}

	account := &models.Account{
		UserID:      userID,
		Name:        name,
		IBAN:        iban,
		BIC:         bic,
		Description: description,
		Currency:    currency,
		CategoryID:  categoryID,
		IsActive:    true,
	}
	if err := s.db.Create(account).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return account, nil
}

// GetUserAccounts returns a paginated list of the user's accounts.
func (s *accountService) GetUserAccounts(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Account], error) {
	page.Defaults()

	base := s.db.Model(&models.Account{}).Where("user_id = ?", userID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var accounts []models.Account
	if err := base.Preload("Category").Scopes(pagination.Paginate(page)).Find(&accounts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(accounts, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetAccountByID returns an account by ID if it belongs to the user.
func (s *accountService) GetAccountByID(userID, accountID string) (*models.Account, error) {
	var account models.Account
	if err := s.db.Preload("Category").Where("id = ? AND user_id = ?", accountID, userID).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &account, nil
}

// UpdateAccount updates an account's mutable fields.
func (s *accountService) UpdateAccount(userID, accountID, name, description string, categoryID *string) (*models.Account, error) {
	account, err := s.GetAccountByID(userID, accountID)
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
	if categoryID != nil {
		if err := verifyCategory(s.db, userID, categoryID, models.PostingKindBank); err != nil {
			return nil, err
		}
		updates["category_id"] = categoryID
	}

	if len(updates) > 0 {
		if err := s.db.Model(account).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return account, nil
}

// DeleteAccount soft-deletes an account. Its postings and rollups stay; the
// aggregate store never forgets history.
func (s *accountService) DeleteAccount(userID, accountID string) error {
	account, err := s.GetAccountByID(userID, accountID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(account).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// verifyCategory checks that a referenced category exists, belongs to the
// user, and is scoped to the expected posting kind.
func verifyCategory(db *gorm.DB, userID string, categoryID *string, kind models.PostingKind) error {
	if categoryID == nil {
		return nil
	}
	var category models.Category
	if err := db.Where("id = ? AND user_id = ?", *categoryID, userID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrCategoryNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if category.Kind != kind {
		return apperrors.ErrCategoryKindMismatch
	}
	return nil
}
