package models

// SecurityPostingType distinguishes what a security posting represents.
// It is part of the rollup grouping key so buys, sells and dividends
// aggregate separately.
type SecurityPostingType string

const (
	SecurityPostingBuy      SecurityPostingType = "buy"
	SecurityPostingSell     SecurityPostingType = "sell"
	SecurityPostingDividend SecurityPostingType = "dividend"
	SecurityPostingFee      SecurityPostingType = "fee"
	SecurityPostingTax      SecurityPostingType = "tax"
)

// Valid reports whether t is a known security posting type.
func (t SecurityPostingType) Valid() bool {
	switch t {
	case SecurityPostingBuy, SecurityPostingSell, SecurityPostingDividend,
		SecurityPostingFee, SecurityPostingTax:
		return true
	}
	return false
}

// Security represents a tradable instrument (stock, fund, bond)
type Security struct {
	Base
	UserID     string  `gorm:"type:uuid;not null;index" json:"user_id"`
	Name       string  `gorm:"not null" json:"name"`
	ISIN       string  `json:"isin,omitempty"`
	WKN        string  `json:"wkn,omitempty"`
	Symbol     string  `json:"symbol,omitempty"`
	CategoryID *string `gorm:"type:uuid" json:"category_id,omitempty"`
	IsActive   bool    `gorm:"default:true" json:"is_active"`

	// Relationships
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Postings []Posting `gorm:"foreignKey:SecurityID" json:"postings,omitempty"`
}
