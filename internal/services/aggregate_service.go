package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "moneta/internal/errors"
	"moneta/internal/logger"
	"moneta/internal/models"
	"moneta/internal/period"
)

// rebuildGranularities is every granularity recomputed during a full rebuild.
// The incremental path only maintains month records; the coarser buckets
// exist after a rebuild and are derived directly from each posting's date,
// never by summing month records.
var rebuildGranularities = []period.Granularity{
	period.GranularityMonth,
	period.GranularityQuarter,
	period.GranularityHalfYear,
	period.GranularityYear,
}

var dateKinds = []period.DateKind{period.DateKindBooking, period.DateKindValuta}

// aggregateService owns the aggregate record store and its maintenance
// engine: the per-posting month upsert and the full per-user rebuild.
type aggregateService struct {
	db        *gorm.DB
	batchSize int

	// One rebuild per user at a time. The booking path must also not run
	// concurrently with a rebuild for the same user; handlers serialize
	// through this same guard.
	mu         sync.Mutex
	rebuilding map[string]bool
}

// NewAggregateService creates a new AggregateServicer.
func NewAggregateService(db *gorm.DB, batchSize int) AggregateServicer {
	if batchSize <= 0 {
		batchSize = 500
	}
	return &aggregateService{
		db:         db,
		batchSize:  batchSize,
		rebuilding: make(map[string]bool),
	}
}

// record builds an AggregateRecord row for a key with the given amount.
func (k AggregateKey) record(amount int64) models.AggregateRecord {
	return models.AggregateRecord{
		UserID:              k.UserID,
		Kind:                k.Kind,
		AccountID:           k.AccountID,
		ContactID:           k.ContactID,
		SavingsPlanID:       k.SavingsPlanID,
		SecurityID:          k.SecurityID,
		SecurityPostingType: k.SecurityPostingType,
		Granularity:         k.Granularity,
		DateKind:            k.DateKind,
		PeriodStart:         k.PeriodStart,
		Amount:              amount,
	}
}

// keyForPosting derives the grouping key for a posting at the given
// granularity and date kind. The second return value is false when the
// posting carries no entity reference relevant to its kind; such postings
// are skipped.
func keyForPosting(p *models.Posting, g period.Granularity, dk period.DateKind) (AggregateKey, bool) {
	key := AggregateKey{
		UserID:      p.UserID,
		Kind:        p.Kind,
		Granularity: g,
		DateKind:    dk,
	}

	date := p.BookingDate
	if dk == period.DateKindValuta {
		date = p.ValutaDate
	}
	key.PeriodStart = period.BucketStart(date, g)

	switch p.Kind {
	case models.PostingKindBank:
		if p.AccountID == nil {
			return key, false
		}
		key.AccountID = *p.AccountID
	case models.PostingKindContact:
		if p.ContactID == nil {
			return key, false
		}
		key.ContactID = *p.ContactID
	case models.PostingKindSavingsPlan:
		if p.SavingsPlanID == nil {
			return key, false
		}
		key.SavingsPlanID = *p.SavingsPlanID
	case models.PostingKindSecurity:
		if p.SecurityID == nil {
			return key, false
		}
		key.SecurityID = *p.SecurityID
		if p.SecurityPostingType != nil {
			key.SecurityPostingType = string(*p.SecurityPostingType)
		}
	default:
		return key, false
	}

	return key, true
}

// AddDelta atomically adds delta to the record for key, creating it when
// absent. The conflict target is the full grouping-key unique index, so two
// writers racing on the same key both land as additions instead of one
// failing with a duplicate-key error.
func (s *aggregateService) AddDelta(tx *gorm.DB, key AggregateKey, delta int64) error {
	if tx == nil {
		tx = s.db
	}

	row := key.record(delta)
	err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "user_id"}, {Name: "kind"},
			{Name: "account_id"}, {Name: "contact_id"},
			{Name: "savings_plan_id"}, {Name: "security_id"},
			{Name: "security_posting_type"},
			{Name: "granularity"}, {Name: "date_kind"}, {Name: "period_start"},
		},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"amount":     gorm.Expr("amount + excluded.amount"),
			"updated_at": time.Now(),
		}),
	}).Create(&row).Error
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// UpsertForPosting adds the posting's amount to its month-granularity
// booking and valuta rollups. A posting whose booking and valuta dates fall
// in different months therefore touches two distinct valuta-dimension rows.
// The caller guarantees at-most-once invocation per posting; the engine
// performs no deduplication by posting id.
func (s *aggregateService) UpsertForPosting(tx *gorm.DB, posting *models.Posting) error {
	for _, dk := range dateKinds {
		key, ok := keyForPosting(posting, period.GranularityMonth, dk)
		if !ok {
			continue
		}
		if err := s.AddDelta(tx, key, posting.Amount); err != nil {
			return err
		}
	}
	return nil
}

// RebuildForUser recomputes the user's entire rollup set from the posting
// history: it drops the existing records, scans postings in batches, and
// derives every granularity for both date kinds by assigning each posting
// directly to its bucket. Cancellation is honored between batches; an
// interrupted rebuild leaves a consistent but incomplete store and is
// expected to be re-run to completion.
func (s *aggregateService) RebuildForUser(ctx context.Context, userID string, progress RebuildProgress) error {
	if userID == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "user ID is required")
	}

	s.mu.Lock()
	if s.rebuilding[userID] {
		s.mu.Unlock()
		return apperrors.ErrRebuildInProgress
	}
	s.rebuilding[userID] = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.rebuilding, userID)
		s.mu.Unlock()
	}()

	log := logger.Get()
	log.Infow("aggregate rebuild started", "user_id", userID)

	if err := s.db.Unscoped().
		Where("user_id = ?", userID).
		Delete(&models.AggregateRecord{}).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var total int64
	if err := s.db.Model(&models.Posting{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	sums := make(map[AggregateKey]int64)
	var done int64

	var postings []models.Posting
	result := s.db.Where("user_id = ?", userID).
		FindInBatches(&postings, s.batchSize, func(tx *gorm.DB, batch int) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			for i := range postings {
				s.accumulate(sums, &postings[i])
			}
			done += int64(len(postings))
			if progress != nil {
				progress(done, total)
			}
			return nil
		})
	if result.Error != nil {
		if errors.Is(result.Error, context.Canceled) || errors.Is(result.Error, context.DeadlineExceeded) {
			log.Infow("aggregate rebuild cancelled", "user_id", userID, "done", done, "total", total)
			return result.Error
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}

	if err := s.insertRecords(ctx, sums); err != nil {
		return err
	}

	log.Infow("aggregate rebuild finished", "user_id", userID, "postings", done, "records", len(sums))
	return nil
}

// accumulate adds one posting to the in-memory sums for every granularity
// and date kind. Zero amounts still materialize their key so the rebuilt
// store keeps presence information for empty groups.
func (s *aggregateService) accumulate(sums map[AggregateKey]int64, p *models.Posting) {
	for _, g := range rebuildGranularities {
		for _, dk := range dateKinds {
			key, ok := keyForPosting(p, g, dk)
			if !ok {
				continue
			}
			sums[key] += p.Amount
		}
	}
}

// insertRecords bulk-inserts the accumulated sums, one insert stream per
// granularity. The streams touch disjoint key ranges, so they run
// concurrently.
func (s *aggregateService) insertRecords(ctx context.Context, sums map[AggregateKey]int64) error {
	byGranularity := make(map[period.Granularity][]models.AggregateRecord, len(rebuildGranularities))
	for key, amount := range sums {
		byGranularity[key.Granularity] = append(byGranularity[key.Granularity], key.record(amount))
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, records := range byGranularity {
		records := records
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := s.db.CreateInBatches(records, s.batchSize).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// Lookup returns the record for the full grouping key, or nil when absent.
func (s *aggregateService) Lookup(key AggregateKey) (*models.AggregateRecord, error) {
	var record models.AggregateRecord
	err := s.db.Where(map[string]interface{}{
		"user_id":               key.UserID,
		"kind":                  key.Kind,
		"account_id":            key.AccountID,
		"contact_id":            key.ContactID,
		"savings_plan_id":       key.SavingsPlanID,
		"security_id":           key.SecurityID,
		"security_posting_type": key.SecurityPostingType,
		"granularity":           key.Granularity,
		"date_kind":             key.DateKind,
		"period_start":          key.PeriodStart,
	}).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &record, nil
}

// Scan returns one (kind, granularity, date kind) slice of the user's
// rollups with period_start in [from, to].
func (s *aggregateService) Scan(userID string, kind models.PostingKind, g period.Granularity, dk period.DateKind, from, to time.Time) ([]models.AggregateRecord, error) {
	var records []models.AggregateRecord
	err := s.db.
		Where("user_id = ? AND kind = ? AND granularity = ? AND date_kind = ?", userID, kind, g, dk).
		Where("period_start >= ? AND period_start <= ?", from, to).
		Find(&records).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return records, nil
}
