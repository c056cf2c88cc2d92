package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "moneta/internal/errors"
	"moneta/internal/models"
	"moneta/internal/pagination"
)

// contactService handles contact and contact group management.
type contactService struct {
	db *gorm.DB
}

// NewContactService creates a new ContactServicer.
func NewContactService(db *gorm.DB) ContactServicer {
	return &contactService{db: db}
}

// CreateContact creates a new contact for the user.
func (s *contactService) CreateContact(userID, name, iban, note string, groupID, categoryID *string) (*models.Contact, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "name is required")
	}
	if err := s.verifyGroup(userID, groupID); err != nil {
		return nil, err
	}
	if err := verifyCategory(s.db, userID, categoryID, models.PostingKindContact); err != nil {
		return nil, err
	}

	contact := &models.Contact{
		UserID:     userID,
		Name:       name,
		IBAN:       iban,
		Note:       note,
		GroupID:    groupID,
		CategoryID: categoryID,
		IsActive:   true,
	}
	if err := s.db.Create(contact).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return contact, nil
}

// GetUserContacts returns a paginated list of the user's contacts.
func (s *contactService) GetUserContacts(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Contact], error) {
	page.Defaults()

	base := s.db.Model(&models.Contact{}).Where("user_id = ?", userID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var contacts []models.Contact
	if err := base.Preload("Group").Preload("Category").Scopes(pagination.Paginate(page)).Find(&contacts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(contacts, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetContactByID returns a contact by ID if it belongs to the user.
func (s *contactService) GetContactByID(userID, contactID string) (*models.Contact, error) {
	var contact models.Contact
	if err := s.db.Preload("Group").Preload("Category").Where("id = ? AND user_id = ?", contactID, userID).First(&contact).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrContactNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &contact, nil
}

// UpdateContact updates a contact's mutable fields.
func (s *contactService) UpdateContact(userID, contactID, name, note string, groupID, categoryID *string) (*models.Contact, error) {
	contact, err := s.GetContactByID(userID, contactID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if name != "" {
		updates["name"] = name
	}
	if note != "" {
		updates["note"] = note
	}
	if groupID != nil {
		if err := s.verifyGroup(userID, groupID); err != nil {
			return nil, err
		}
		updates["group_id"] = groupID
	}
	if categoryID != nil {
		if err := verifyCategory(s.db, userID, categoryID, models.PostingKindContact); err != nil {
			return nil, err
		}
		updates["category_id"] = categoryID
	}

	if len(updates) > 0 {
		if err := s.db.Model(contact).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return contact, nil
}

// DeleteContact soft-deletes a contact.
func (s *contactService) DeleteContact(userID, contactID string) error {
	contact, err := s.GetContactByID(userID, contactID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(contact).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// CreateContactGroup creates a new contact group for the user.
func (s *contactService) CreateContactGroup(userID, name string) (*models.ContactGroup, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "name is required")
	}
	group := &models.ContactGroup{UserID: userID, Name: name}
	if err := s.db.Create(group).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return group, nil
}

// GetUserContactGroups returns a paginated list of the user's contact groups.
func (s *contactService) GetUserContactGroups(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.ContactGroup], error) {
	page.Defaults()

	base := s.db.Model(&models.ContactGroup{}).Where("user_id = ?", userID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var groups []models.ContactGroup
	if err := base.Scopes(pagination.Paginate(page)).Find(&groups).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(groups, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// DeleteContactGroup soft-deletes a group and detaches its contacts.
func (s *contactService) DeleteContactGroup(userID, groupID string) error {
	var group models.ContactGroup
	if err := s.db.Where("id = ? AND user_id = ?", groupID, userID).First(&group).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrContactGroupNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Contact{}).
			Where("group_id = ?", group.ID).
			Update("group_id", nil).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Delete(&group).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// verifyGroup checks that a referenced contact group exists and belongs to
// the user.
func (s *contactService) verifyGroup(userID string, groupID *string) error {
	if groupID == nil {
		return nil
	}
	var count int64
	if err := s.db.Model(&models.ContactGroup{}).
		Where("id = ? AND user_id = ?", *groupID, userID).
		Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count == 0 {
		return apperrors.ErrContactGroupNotFound
	}
	return nil
}
