package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "moneta/internal/errors"
	"moneta/internal/models"
	"moneta/internal/pagination"
)

// postingService books postings and keeps the month rollups in step with
// them. Every write to a posting and its rollup rows happens in one
// transaction, so the aggregate store only ever reflects committed data.
type postingService struct {
	db         *gorm.DB
	aggregates AggregateServicer
}

// NewPostingService creates a new PostingServicer.
func NewPostingService(db *gorm.DB, aggregates AggregateServicer) PostingServicer {
	return &postingService{db: db, aggregates: aggregates}
}

// CreatePosting validates and books a new posting, then upserts its
// month-granularity rollups inside the same transaction.
func (s *postingService) CreatePosting(userID string, input PostingInput) (*models.Posting, error) {
	if userID == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "user ID is required")
	}
	if !input.Kind.Valid() {
		return nil, apperrors.ErrInvalidPostingKind
	}
	if input.BookingDate.IsZero() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "booking date is required")
	}
	if input.ValutaDate.IsZero() {
		input.ValutaDate = input.BookingDate
	}
	input.BookingDate = normalizeDate(input.BookingDate)
	input.ValutaDate = normalizeDate(input.ValutaDate)
	if err := s.validateReferences(userID, &input); err != nil {
		return nil, err
	}

	posting := &models.Posting{
		UserID:              userID,
		Kind:                input.Kind,
		AccountID:           input.AccountID,
		ContactID:           input.ContactID,
		SavingsPlanID:       input.SavingsPlanID,
		SecurityID:          input.SecurityID,
		BookingDate:         input.BookingDate,
		ValutaDate:          input.ValutaDate,
		Amount:              input.Amount,
		Description:         input.Description,
		SecurityPostingType: input.SecurityPostingType,
		Quantity:            input.Quantity,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(posting).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return s.aggregates.UpsertForPosting(tx, posting)
	})
	if err != nil {
		return nil, err
	}

	return posting, nil
}

// validateReferences enforces the tagged-variant shape: exactly the entity
// reference relevant to the kind must be set, and it must resolve to an
// entity owned by the user. Security posting types and quantities are only
// allowed on security postings.
func (s *postingService) validateReferences(userID string, input *PostingInput) error {
	refs := map[models.PostingKind]*string{
		models.PostingKindBank:        input.AccountID,
		models.PostingKindContact:     input.ContactID,
		models.PostingKindSavingsPlan: input.SavingsPlanID,
		models.PostingKindSecurity:    input.SecurityID,
	}

	for kind, ref := range refs {
		if kind == input.Kind {
			if ref == nil || *ref == "" {
				return apperrors.ErrPostingReference
			}
		} else if ref != nil {
			return apperrors.ErrPostingReference
		}
	}

	if input.Kind != models.PostingKindSecurity {
		if input.SecurityPostingType != nil || input.Quantity != nil {
			return apperrors.ErrPostingReference
		}
	} else if input.SecurityPostingType != nil && !input.SecurityPostingType.Valid() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid security posting type")
	}

	var (
		count    int64
		model    interface{}
		notFound *apperrors.AppError
	)
	switch input.Kind {
	case models.PostingKindBank:
		model, notFound = &models.Account{}, apperrors.ErrAccountNotFound
	case models.PostingKindContact:
		model, notFound = &models.Contact{}, apperrors.ErrContactNotFound
	case models.PostingKindSavingsPlan:
		model, notFound = &models.SavingsPlan{}, apperrors.ErrSavingsPlanNotFound
	case models.PostingKindSecurity:
		model, notFound = &models.Security{}, apperrors.ErrSecurityNotFound
	}

	if err := s.db.Model(model).
		Where("id = ? AND user_id = ?", *refs[input.Kind], userID).
		Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count == 0 {
		return notFound
	}
	return nil
}

// GetUserPostings returns a paginated list of the user's postings with
// optional filters, newest booking date first.
func (s *postingService) GetUserPostings(userID string, page pagination.PageRequest, filter PostingFilter) (*pagination.PageResponse[models.Posting], error) {
	page.Defaults()

	base := s.db.Model(&models.Posting{}).Where("user_id = ?", userID)
	if filter.Kind != nil {
		base = base.Where("kind = ?", *filter.Kind)
	}
	if filter.EntityID != nil {
		base = base.Where(
			"account_id = ? OR contact_id = ? OR savings_plan_id = ? OR security_id = ?",
			*filter.EntityID, *filter.EntityID, *filter.EntityID, *filter.EntityID,
		)
	}
	if filter.FromDate != nil {
		base = base.Where("booking_date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		base = base.Where("booking_date <= ?", *filter.ToDate)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var postings []models.Posting
	if err := base.Order("booking_date DESC").
		Scopes(pagination.Paginate(page)).
		Find(&postings).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(postings, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetPostingByID returns a posting by ID if it belongs to the user.
func (s *postingService) GetPostingByID(userID, postingID string) (*models.Posting, error) {
	var posting models.Posting
	if err := s.db.Where("id = ? AND user_id = ?", postingID, userID).First(&posting).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPostingNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &posting, nil
}

// DeletePosting soft-deletes a posting and reverses its contribution to the
// month rollups by upserting the negated amount, in one transaction.
func (s *postingService) DeletePosting(userID, postingID string) error {
	posting, err := s.GetPostingByID(userID, postingID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(posting).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		reversal := *posting
		reversal.Amount = -posting.Amount
		return s.aggregates.UpsertForPosting(tx, &reversal)
	})
}

// normalizeDate truncates a timestamp to midnight UTC. Booking and valuta
// dates are calendar dates; the time portion is irrelevant.
func normalizeDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
