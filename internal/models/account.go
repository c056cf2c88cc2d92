package models

// Account represents a bank account whose postings are tracked in the system
type Account struct {
	Base
	UserID      string  `gorm:"type:uuid;not null;index" json:"user_id"`
	Name        string  `gorm:"not null" json:"name"`
	IBAN        string  `json:"iban,omitempty"`
	BIC         string  `json:"bic,omitempty"`
	Description string  `json:"description"`
	Currency    string  `gorm:"not null;default:'EUR'" json:"currency"`
	CategoryID  *string `gorm:"type:uuid" json:"category_id,omitempty"`
	IsActive    bool    `gorm:"default:true" json:"is_active"`

	// Relationships
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Postings []Posting `gorm:"foreignKey:AccountID" json:"postings,omitempty"`
}
