package services

import (
	"time"

	"gorm.io/gorm"

	apperrors "moneta/internal/errors"
	"moneta/internal/models"
	"moneta/internal/period"
)

// reportService answers comparison-aware report queries over the aggregate
// store. It is read-only and safe for any number of concurrent callers.
type reportService struct {
	db         *gorm.DB
	aggregates AggregateServicer
}

// NewReportService creates a new ReportServicer.
func NewReportService(db *gorm.DB, aggregates AggregateServicer) ReportServicer {
	return &reportService{db: db, aggregates: aggregates}
}

// groupSeries holds one entity group's amounts keyed by period start. The
// raw map spans more than the retained window so previous-period and
// year-ago lookups can reach before the first retained period.
type groupSeries map[int64]int64

// Query runs one report: select the slice of rollups, retain the most
// recent TakePeriods periods anchored at AnalysisDate, gap-fill the latest
// period, attach comparisons, optionally roll groups up into category
// parents, and prune leaf groups that carry no information.
func (s *reportService) Query(userID string, q ReportQuery) ([]ReportPoint, error) {
	if userID == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "user ID is required")
	}
	if !q.Kind.Valid() {
		return nil, apperrors.ErrInvalidPostingKind
	}
	if !q.Interval.Valid() || !q.DateKind.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid interval or date kind")
	}
	if q.TakePeriods < 1 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "take_periods must be at least 1")
	}

	// The retained window: TakePeriods back-to-back buckets ending at the
	// bucket containing the analysis date.
	latest := period.BucketStart(q.AnalysisDate, q.Interval)
	periods := make([]time.Time, q.TakePeriods)
	for i := range periods {
		periods[i] = latest.AddDate(0, -q.Interval.Months()*(q.TakePeriods-1-i), 0)
	}
	earliest := periods[0]

	// Scan one year before the earliest retained period so year-ago and
	// previous-period comparisons have data to draw from.
	records, err := s.aggregates.Scan(userID, q.Kind, q.Interval, q.DateKind, period.YearAgo(earliest), latest)
	if err != nil {
		return nil, err
	}

	// Group rows by entity, summing across security posting types.
	series := make(map[string]groupSeries)
	for i := range records {
		entityID := records[i].EntityID()
		if entityID == "" {
			continue
		}
		if series[entityID] == nil {
			series[entityID] = make(groupSeries)
		}
		series[entityID][records[i].PeriodStart.Unix()] += records[i].Amount
	}

	points := s.buildPoints(series, periods, q)

	if q.IncludeCategory {
		points, err = s.attachCategories(userID, q.Kind, points)
		if err != nil {
			return nil, err
		}
	}

	return prune(points), nil
}

// buildPoints emits one point per (entity, retained period) with data, plus
// a synthesized zero point for the latest period when a group has history
// but no current record. Gap-filling is forward-only.
func (s *reportService) buildPoints(series map[string]groupSeries, periods []time.Time, q ReportQuery) []ReportPoint {
	latest := periods[len(periods)-1]
	prefix := groupPrefix(q.Kind)

	var points []ReportPoint
	for entityID, sums := range series {
		var hasEarlier, hasLatest bool
		for _, p := range periods {
			if _, ok := sums[p.Unix()]; !ok {
				continue
			}
			if p.Equal(latest) {
				hasLatest = true
			} else {
				hasEarlier = true
			}
		}

		for _, p := range periods {
			amount, ok := sums[p.Unix()]
			if !ok {
				// Trend comparisons need a current-period point even when
				// nothing was booked there, so the latest period is filled
				// with a zero for groups that have history.
				if !p.Equal(latest) || hasLatest || !hasEarlier {
					continue
				}
			}

			point := ReportPoint{
				GroupKey:    prefix + ":" + entityID,
				EntityID:    entityID,
				PeriodStart: p,
				Amount:      amount,
			}
			if q.ComparePrevious {
				point.PreviousAmount = lookupSum(sums, period.Prev(p, q.Interval))
			}
			if q.CompareYear {
				point.YearAgoAmount = lookupSum(sums, period.YearAgo(p))
			}
			points = append(points, point)
		}
	}
	return points
}

// lookupSum returns a pointer to the group's amount at the given period
// start, or nil when no record exists there.
func lookupSum(sums groupSeries, p time.Time) *int64 {
	if v, ok := sums[p.Unix()]; ok {
		return &v
	}
	return nil
}

// groupPrefix maps a posting kind to the entity type tag used in group keys.
func groupPrefix(kind models.PostingKind) string {
	switch kind {
	case models.PostingKindBank:
		return "Account"
	case models.PostingKindContact:
		return "Contact"
	case models.PostingKindSavingsPlan:
		return "SavingsPlan"
	case models.PostingKindSecurity:
		return "Security"
	}
	return "Unknown"
}

// categoryKey builds the synthetic group key for a category bucket.
func categoryKey(kind models.PostingKind, categoryID string) string {
	if categoryID == "" {
		categoryID = "_none"
	}
	return "Category:" + string(kind) + ":" + categoryID
}

// attachCategories builds one synthetic parent group per distinct category
// of the kind's entities (plus a _none bucket) whose per-period values sum
// the children, and links each child point to its parent.
func (s *reportService) attachCategories(userID string, kind models.PostingKind, points []ReportPoint) ([]ReportPoint, error) {
	categoryByEntity, err := s.entityCategories(userID, kind)
	if err != nil {
		return nil, err
	}

	type cell struct {
		amount   int64
		previous *int64
		yearAgo  *int64
	}
	type cellKey struct {
		group  string
		period int64
	}
	cells := make(map[cellKey]*cell)
	starts := make(map[int64]time.Time)

	for i := range points {
		parent := categoryKey(kind, categoryByEntity[points[i].EntityID])
		points[i].ParentGroupKey = parent

		ck := cellKey{group: parent, period: points[i].PeriodStart.Unix()}
		c := cells[ck]
		if c == nil {
			c = &cell{}
			cells[ck] = c
		}
		starts[ck.period] = points[i].PeriodStart
		c.amount += points[i].Amount
		c.previous = addNullable(c.previous, points[i].PreviousAmount)
		c.yearAgo = addNullable(c.yearAgo, points[i].YearAgoAmount)
	}

	for ck, c := range cells {
		points = append(points, ReportPoint{
			GroupKey:       ck.group,
			PeriodStart:    starts[ck.period],
			Amount:         c.amount,
			PreviousAmount: c.previous,
			YearAgoAmount:  c.yearAgo,
		})
	}
	return points, nil
}

// addNullable sums two optional amounts; the result is nil only when both
// inputs are nil.
func addNullable(a, b *int64) *int64 {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	sum := *a + *b
	return &sum
}

// entityCategories maps the ids of a user's entities of one kind to their
// category id ("" when uncategorized).
func (s *reportService) entityCategories(userID string, kind models.PostingKind) (map[string]string, error) {
	type row struct {
		ID         string
		CategoryID *string
	}

	var model interface{}
	switch kind {
	case models.PostingKindBank:
		model = &models.Account{}
	case models.PostingKindContact:
		model = &models.Contact{}
	case models.PostingKindSavingsPlan:
		model = &models.SavingsPlan{}
	case models.PostingKindSecurity:
		model = &models.Security{}
	}

	var rows []row
	if err := s.db.Model(model).
		Select("id", "category_id").
		Where("user_id = ?", userID).
		Scan(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := make(map[string]string, len(rows))
	for _, r := range rows {
		if r.CategoryID != nil {
			result[r.ID] = *r.CategoryID
		} else {
			result[r.ID] = ""
		}
	}
	return result, nil
}

// prune drops leaf entity groups whose every amount and comparison value is
// zero or null. Category groups are kept; an all-zero container is still a
// meaningful bucket.
func prune(points []ReportPoint) []ReportPoint {
	informative := make(map[string]bool)
	for i := range points {
		p := &points[i]
		if p.EntityID == "" {
			continue
		}
		if p.Amount != 0 ||
			(p.PreviousAmount != nil && *p.PreviousAmount != 0) ||
			(p.YearAgoAmount != nil && *p.YearAgoAmount != 0) {
			informative[p.GroupKey] = true
		}
	}

	result := points[:0]
	for i := range points {
		if points[i].EntityID != "" && !informative[points[i].GroupKey] {
			continue
		}
		result = append(result, points[i])
	}
	return result
}
