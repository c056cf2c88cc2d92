package models

// ContactGroup bundles contacts so budgets can target several payees at once
type ContactGroup struct {
	Base
	UserID string `gorm:"type:uuid;not null;index" json:"user_id"`
	Name   string `gorm:"not null" json:"name"`

	// Relationships
	Contacts []Contact `gorm:"foreignKey:GroupID" json:"contacts,omitempty"`
}

// Contact represents a payee or payer that postings can reference
type Contact struct {
	Base
	UserID     string  `gorm:"type:uuid;not null;index" json:"user_id"`
	Name       string  `gorm:"not null" json:"name"`
	IBAN       string  `json:"iban,omitempty"`
	Note       string  `json:"note,omitempty"`
	GroupID    *string `gorm:"type:uuid" json:"group_id,omitempty"`
	CategoryID *string `gorm:"type:uuid" json:"category_id,omitempty"`
	IsActive   bool    `gorm:"default:true" json:"is_active"`

	// Relationships
	Group    *ContactGroup `gorm:"foreignKey:GroupID" json:"group,omitempty"`
	Category *Category     `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Postings []Posting     `gorm:"foreignKey:ContactID" json:"postings,omitempty"`
}
