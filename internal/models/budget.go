package models

import "time"

// BudgetSourceType identifies what real-world source a budget purpose
// draws its actuals from.
type BudgetSourceType string

const (
	BudgetSourceContact      BudgetSourceType = "contact"
	BudgetSourceContactGroup BudgetSourceType = "contact_group"
	BudgetSourceSavingsPlan  BudgetSourceType = "savings_plan"
	BudgetSourceSecurity     BudgetSourceType = "security"
	BudgetSourceAccount      BudgetSourceType = "account"
)

// Valid reports whether t is a known budget source type.
func (t BudgetSourceType) Valid() bool {
	switch t {
	case BudgetSourceContact, BudgetSourceContactGroup, BudgetSourceSavingsPlan,
		BudgetSourceSecurity, BudgetSourceAccount:
		return true
	}
	return false
}

// BudgetCategory groups budget purposes for presentation
type BudgetCategory struct {
	Base
	UserID string `gorm:"type:uuid;not null;index" json:"user_id"`
	Name   string `gorm:"not null" json:"name"`

	// Relationships
	Purposes []BudgetPurpose `gorm:"foreignKey:CategoryID" json:"purposes,omitempty"`
}

// BudgetPurpose is a named planning target pointing at a source entity
type BudgetPurpose struct {
	Base
	UserID     string           `gorm:"type:uuid;not null;index" json:"user_id"`
	Name       string           `gorm:"not null" json:"name"`
	SourceType BudgetSourceType `gorm:"not null" json:"source_type"`
	SourceID   string           `gorm:"type:uuid;not null" json:"source_id"`
	CategoryID *string          `gorm:"type:uuid" json:"category_id,omitempty"`

	// Relationships
	Category  *BudgetCategory  `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Rules     []BudgetRule     `gorm:"foreignKey:PurposeID" json:"rules,omitempty"`
	Overrides []BudgetOverride `gorm:"foreignKey:PurposeID" json:"overrides,omitempty"`
}

// BudgetIntervalType is the recurrence of a budget rule
type BudgetIntervalType string

const (
	BudgetIntervalMonthly      BudgetIntervalType = "monthly"
	BudgetIntervalQuarterly    BudgetIntervalType = "quarterly"
	BudgetIntervalYearly       BudgetIntervalType = "yearly"
	BudgetIntervalCustomMonths BudgetIntervalType = "custom_months"
)

// Valid reports whether t is a known interval type.
func (t BudgetIntervalType) Valid() bool {
	switch t {
	case BudgetIntervalMonthly, BudgetIntervalQuarterly, BudgetIntervalYearly, BudgetIntervalCustomMonths:
		return true
	}
	return false
}

// MonthStep returns the recurrence step in months. For custom_months the
// rule's own step applies and this returns 0.
func (t BudgetIntervalType) MonthStep() int {
	switch t {
	case BudgetIntervalMonthly:
		return 1
	case BudgetIntervalQuarterly:
		return 3
	case BudgetIntervalYearly:
		return 12
	}
	return 0
}

// BudgetRule is a recurring planned-amount generator for one purpose.
// Several rules may exist per purpose; all rules whose [StartDate, EndDate]
// window covers a period contribute to it. MonthStep is only meaningful for
// custom_months and must be within [1,120].
type BudgetRule struct {
	Base
	UserID       string             `gorm:"type:uuid;not null;index" json:"user_id"`
	PurposeID    string             `gorm:"type:uuid;not null;index" json:"purpose_id"`
	Amount       int64              `gorm:"type:bigint;not null" json:"amount"`
	IntervalType BudgetIntervalType `gorm:"not null" json:"interval_type"`
	MonthStep    int                `gorm:"default:0" json:"month_step,omitempty"`
	StartDate    time.Time          `gorm:"not null" json:"start_date"`
	EndDate      *time.Time         `json:"end_date,omitempty"`

	// Relationships
	Purpose *BudgetPurpose `gorm:"foreignKey:PurposeID" json:"purpose,omitempty"`
}

// Step returns the effective recurrence step in months.
func (r *BudgetRule) Step() int {
	if r.IntervalType == BudgetIntervalCustomMonths {
		return r.MonthStep
	}
	return r.IntervalType.MonthStep()
}

// BudgetOverride replaces the rule-computed planned amount of one purpose
// for exactly one (year, month) period. At most one override exists per
// purpose and period, enforced by a uniqueness constraint.
type BudgetOverride struct {
	Base
	UserID    string `gorm:"type:uuid;not null;index" json:"user_id"`
	PurposeID string `gorm:"type:uuid;not null;uniqueIndex:idx_override_period,priority:1" json:"purpose_id"`
	Year      int    `gorm:"not null;uniqueIndex:idx_override_period,priority:2" json:"year"`
	Month     int    `gorm:"not null;uniqueIndex:idx_override_period,priority:3" json:"month"`
	Amount    int64  `gorm:"type:bigint;not null" json:"amount"`

	// Relationships
	Purpose *BudgetPurpose `gorm:"foreignKey:PurposeID" json:"purpose,omitempty"`
}
