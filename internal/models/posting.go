package models

import "time"

// PostingKind discriminates which entity a posting belongs to
type PostingKind string

const (
	PostingKindBank        PostingKind = "bank"
	PostingKindContact     PostingKind = "contact"
	PostingKindSavingsPlan PostingKind = "savings_plan"
	PostingKindSecurity    PostingKind = "security"
)

// Valid reports whether k is a known posting kind.
func (k PostingKind) Valid() bool {
	switch k {
	case PostingKindBank, PostingKindContact, PostingKindSavingsPlan, PostingKindSecurity:
		return true
	}
	return false
}

// Posting represents one booked financial movement. It is a tagged variant:
// Kind decides which of the entity references must be set, and the booking
// service validates that exactly the relevant ones are populated. Amount is
// a signed value in the account currency's minor unit. Postings are
// immutable once booked except for linkage fields.
type Posting struct {
	Base
	UserID        string      `gorm:"type:uuid;not null;index" json:"user_id"`
	Kind          PostingKind `gorm:"not null;index" json:"kind"`
	AccountID     *string     `gorm:"type:uuid" json:"account_id,omitempty"`
	ContactID     *string     `gorm:"type:uuid" json:"contact_id,omitempty"`
	SavingsPlanID *string     `gorm:"type:uuid" json:"savings_plan_id,omitempty"`
	SecurityID    *string     `gorm:"type:uuid" json:"security_id,omitempty"`

	BookingDate time.Time `gorm:"not null;index" json:"booking_date"`
	ValutaDate  time.Time `gorm:"not null" json:"valuta_date"`
	Amount      int64     `gorm:"type:bigint;not null" json:"amount"`
	Description string    `json:"description"`

	// For security postings
	SecurityPostingType *SecurityPostingType `json:"security_posting_type,omitempty"`
	Quantity            *float64             `json:"quantity,omitempty"`

	// Relationships
	Account     *Account     `gorm:"foreignKey:AccountID" json:"account,omitempty"`
	Contact     *Contact     `gorm:"foreignKey:ContactID" json:"contact,omitempty"`
	SavingsPlan *SavingsPlan `gorm:"foreignKey:SavingsPlanID" json:"savings_plan,omitempty"`
	Security    *Security    `gorm:"foreignKey:SecurityID" json:"security,omitempty"`
}

// EntityID returns the id of the entity the posting belongs to for its kind,
// or "" when the relevant reference is not set.
func (p *Posting) EntityID() string {
	switch p.Kind {
	case PostingKindBank:
		if p.AccountID != nil {
			return *p.AccountID
		}
	case PostingKindContact:
		if p.ContactID != nil {
			return *p.ContactID
		}
	case PostingKindSavingsPlan:
		if p.SavingsPlanID != nil {
			return *p.SavingsPlanID
		}
	case PostingKindSecurity:
		if p.SecurityID != nil {
			return *p.SecurityID
		}
	}
	return ""
}
