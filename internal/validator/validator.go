// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"moneta/internal/models"
	"moneta/internal/period"
)

// validCurrencies contains the ISO 4217 codes accepted for accounts.
var validCurrencies = map[string]bool{
	"AUD": true, "BGN": true, "BRL": true, "CAD": true, "CHF": true,
	"CNY": true, "CZK": true, "DKK": true, "EUR": true, "GBP": true,
	"HKD": true, "HUF": true, "IDR": true, "ILS": true, "INR": true,
	"ISK": true, "JPY": true, "KRW": true, "MXN": true, "MYR": true,
	"NOK": true, "NZD": true, "PHP": true, "PLN": true, "RON": true,
	"SEK": true, "SGD": true, "THB": true, "TRY": true, "USD": true,
	"ZAR": true,
}

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("iso4217", validateISO4217)
		_ = v.RegisterValidation("posting_kind", validatePostingKind)
		_ = v.RegisterValidation("security_posting_type", validateSecurityPostingType)
		_ = v.RegisterValidation("interval_type", validateIntervalType)
		_ = v.RegisterValidation("source_type", validateSourceType)
		_ = v.RegisterValidation("granularity", validateGranularity)
		_ = v.RegisterValidation("date_kind", validateDateKind)
	}
}

func validateISO4217(fl validator.FieldLevel) bool {
	return validCurrencies[fl.Field().String()]
}

func validatePostingKind(fl validator.FieldLevel) bool {
	return models.PostingKind(fl.Field().String()).Valid()
}

func validateSecurityPostingType(fl validator.FieldLevel) bool {
	return models.SecurityPostingType(fl.Field().String()).Valid()
}

func validateIntervalType(fl validator.FieldLevel) bool {
	return models.BudgetIntervalType(fl.Field().String()).Valid()
}

func validateSourceType(fl validator.FieldLevel) bool {
	return models.BudgetSourceType(fl.Field().String()).Valid()
}

func validateGranularity(fl validator.FieldLevel) bool {
	return period.Granularity(fl.Field().String()).Valid()
}

func validateDateKind(fl validator.FieldLevel) bool {
	return period.DateKind(fl.Field().String()).Valid()
}
