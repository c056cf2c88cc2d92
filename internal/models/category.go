package models

// Category groups entities of one posting kind (accounts, contacts, savings
// plans or securities) for reporting. The Kind field scopes which entity
// type a category may be attached to.
type Category struct {
	Base
	UserID      string      `gorm:"type:uuid;not null;index" json:"user_id"`
	Name        string      `gorm:"not null" json:"name"`
	Kind        PostingKind `gorm:"not null" json:"kind"`
	Description string      `json:"description"`
	Color       string      `json:"color,omitempty"`
}
