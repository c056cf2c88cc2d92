package services

import (
	"gorm.io/gorm"

	apperrors "moneta/internal/errors"
	"moneta/internal/models"
	"moneta/internal/period"
)

// planningService expands recurring budget rules and point overrides into
// per-purpose, per-period planned amounts. It reads rules and overrides
// once and evaluates purely in memory.
type planningService struct {
	db *gorm.DB
}

// NewPlanningService creates a new PlanningServicer.
func NewPlanningService(db *gorm.DB) PlanningServicer {
	return &planningService{db: db}
}

// PlannedValues is the result of one evaluation run: a planned amount per
// (purpose, period). Lookups outside the evaluated range or for unknown
// purposes return 0.
type PlannedValues struct {
	amounts map[string]map[period.Key]int64
}

// GetPlanned returns the planned amount for a purpose and period, or 0 when
// nothing applies.
func (v *PlannedValues) GetPlanned(purposeID string, p period.Key) int64 {
	if v == nil || v.amounts == nil {
		return 0
	}
	return v.amounts[purposeID][p]
}

// CalculatePlannedValues evaluates every purpose in purposeIDs over every
// period in [from, to] inclusive. For each (purpose, period) all rules whose
// validity window covers the period's first day and which fire in that month
// sum together; an override for the period then replaces the whole sum. A
// reversed range yields an empty result, not an error.
func (s *planningService) CalculatePlannedValues(userID string, purposeIDs []string, from, to period.Key) (*PlannedValues, error) {
	if userID == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "user ID is required")
	}
	if !from.Valid() || !to.Valid() {
		return nil, apperrors.ErrInvalidPeriod
	}

	values := &PlannedValues{amounts: make(map[string]map[period.Key]int64)}
	if to.Before(from) || len(purposeIDs) == 0 {
		return values, nil
	}

	var rules []models.BudgetRule
	if err := s.db.
		Where("user_id = ? AND purpose_id IN ?", userID, purposeIDs).
		Find(&rules).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var overrides []models.BudgetOverride
	if err := s.db.
		Where("user_id = ? AND purpose_id IN ?", userID, purposeIDs).
		Find(&overrides).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	rulesByPurpose := make(map[string][]models.BudgetRule)
	for _, r := range rules {
		rulesByPurpose[r.PurposeID] = append(rulesByPurpose[r.PurposeID], r)
	}

	overrideByPeriod := make(map[string]map[period.Key]int64)
	for _, o := range overrides {
		if overrideByPeriod[o.PurposeID] == nil {
			overrideByPeriod[o.PurposeID] = make(map[period.Key]int64)
		}
		overrideByPeriod[o.PurposeID][period.Key{Year: o.Year, Month: o.Month}] = o.Amount
	}

	for _, purposeID := range purposeIDs {
		perPeriod := make(map[period.Key]int64)
		for p := from; !p.After(to); p = p.AddMonths(1) {
			amount := int64(0)
			for i := range rulesByPurpose[purposeID] {
				rule := &rulesByPurpose[purposeID][i]
				if ruleFires(rule, p) {
					amount += rule.Amount
				}
			}
			if ov, ok := overrideByPeriod[purposeID][p]; ok {
				// Override precedence is absolute: it corrects a known-wrong
				// forecast no matter how many rules fired.
				amount = ov
			}
			perPeriod[p] = amount
		}
		values.amounts[purposeID] = perPeriod
	}

	return values, nil
}

// ruleFires reports whether a rule contributes to the given period: the
// rule's [start, end] window must cover the period's first day, and the
// whole-month distance from the rule's start month must be a non-negative
// multiple of the rule's recurrence step.
func ruleFires(rule *models.BudgetRule, p period.Key) bool {
	firstDay := p.FirstDay()
	if rule.StartDate.After(firstDay) {
		return false
	}
	if rule.EndDate != nil && rule.EndDate.Before(firstDay) {
		return false
	}

	step := rule.Step()
	if step <= 0 {
		return false
	}

	months := period.MonthsBetween(rule.StartDate, firstDay)
	return months >= 0 && months%step == 0
}
