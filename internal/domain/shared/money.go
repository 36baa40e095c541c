package shared

import (
	"strings"

	"github.com/shopspring/decimal"
)

// MoneyScale is the number of decimal places carried by every amount
const MoneyScale = 2

// ValidateAmount checks that amount is positive, carries at most two decimals
// and does not exceed max
func ValidateAmount(field string, amount, max decimal.Decimal) error {
	if !amount.IsPositive() {
		return ValidationError{Field: field, Reason: "must be a positive number"}
	}
	if !amount.Equal(amount.Truncate(MoneyScale)) {
		return ValidationError{Field: field, Reason: "must have at most 2 decimal places"}
	}
	if amount.GreaterThan(max) {
		return ValidationError{Field: field, Reason: "must not exceed " + max.StringFixed(MoneyScale)}
	}
	return nil
}

// NormalizeCurrency upper-cases code and checks it is a 3-letter ISO code
func NormalizeCurrency(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 3 {
		return "", ValidationError{Field: "currency", Reason: "must be a 3-letter code"}
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return "", ValidationError{Field: "currency", Reason: "must be a 3-letter code"}
		}
	}
	return code, nil
}
