package models

import "time"

// SavingsPlan represents a recurring savings contract (building society,
// retirement plan, etc.) whose deposits appear as postings
type SavingsPlan struct {
	Base
	UserID     string     `gorm:"type:uuid;not null;index" json:"user_id"`
	Name       string     `gorm:"not null" json:"name"`
	Provider   string     `json:"provider,omitempty"`
	ContractNo string     `json:"contract_no,omitempty"`
	StartDate  *time.Time `json:"start_date,omitempty"`
	CategoryID *string    `gorm:"type:uuid" json:"category_id,omitempty"`
	IsActive   bool       `gorm:"default:true" json:"is_active"`

	// Relationships
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Postings []Posting `gorm:"foreignKey:SavingsPlanID" json:"postings,omitempty"`
}
