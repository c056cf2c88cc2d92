package models

import (
	"time"

	"moneta/internal/period"
)

// AggregateRecord is a denormalized rollup row: the running sum of posting
// amounts sharing one grouping key. The full key is covered by a uniqueness
// constraint so at most one record exists per key. Entity references that do
// not apply to the record's kind are stored as empty strings, not NULLs,
// because Postgres treats NULLs as distinct in unique indexes.
//
// Records are derived data: they are created on first contribution, mutated
// by every upsert, never deleted in normal operation (a zero sum keeps its
// row), and can always be rebuilt from the posting history.
type AggregateRecord struct {
	Base
	UserID              string             `gorm:"type:uuid;not null;uniqueIndex:idx_aggregate_key,priority:1" json:"user_id"`
	Kind                PostingKind        `gorm:"not null;uniqueIndex:idx_aggregate_key,priority:2" json:"kind"`
	AccountID           string             `gorm:"not null;default:'';uniqueIndex:idx_aggregate_key,priority:3" json:"account_id,omitempty"`
	ContactID           string             `gorm:"not null;default:'';uniqueIndex:idx_aggregate_key,priority:4" json:"contact_id,omitempty"`
	SavingsPlanID       string             `gorm:"not null;default:'';uniqueIndex:idx_aggregate_key,priority:5" json:"savings_plan_id,omitempty"`
	SecurityID          string             `gorm:"not null;default:'';uniqueIndex:idx_aggregate_key,priority:6" json:"security_id,omitempty"`
	SecurityPostingType string             `gorm:"not null;default:'';uniqueIndex:idx_aggregate_key,priority:7" json:"security_posting_type,omitempty"`
	Granularity         period.Granularity `gorm:"not null;uniqueIndex:idx_aggregate_key,priority:8" json:"granularity"`
	DateKind            period.DateKind    `gorm:"not null;uniqueIndex:idx_aggregate_key,priority:9" json:"date_kind"`
	PeriodStart         time.Time          `gorm:"not null;uniqueIndex:idx_aggregate_key,priority:10" json:"period_start"`

	Amount int64 `gorm:"type:bigint;not null;default:0" json:"amount"`
}

// EntityID returns the entity reference relevant to the record's kind.
func (r *AggregateRecord) EntityID() string {
	switch r.Kind {
	case PostingKindBank:
		return r.AccountID
	case PostingKindContact:
		return r.ContactID
	case PostingKindSavingsPlan:
		return r.SavingsPlanID
	case PostingKindSecurity:
		return r.SecurityID
	}
	return ""
}
