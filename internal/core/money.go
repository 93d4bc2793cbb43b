// Package core provides money parsing and handling utilities.
//
// Amounts are carried as decimal.Decimal so that sums and percentages are exact.
package core

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var errMalformedDecimal = errors.New("malformed decimal")

// ParseDecimal converts a non-negative decimal string to a decimal.Decimal.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators. Signs,
// exponents and grouping characters are rejected.
//
// Examples:
//
//	ParseDecimal("12.34") -> 12.34, nil
//	ParseDecimal("12,34") -> 12.34, nil
//	ParseDecimal("-1")    -> error
func ParseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, errMalformedDecimal
	}
	s = strings.ReplaceAll(s, ",", ".")
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return decimal.Zero, errMalformedDecimal
	}
	digits := 0
	for _, p := range parts {
		for _, r := range p {
			if r < '0' || r > '9' {
				return decimal.Zero, errMalformedDecimal
			}
			digits++
		}
	}
	if digits == 0 {
		return decimal.Zero, errMalformedDecimal
	}
	if strings.HasPrefix(s, ".") {
		s = "0" + s
	}
	s = strings.TrimSuffix(s, ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, errMalformedDecimal
	}
	return d, nil
}

// ParseAmount parses a transaction amount. The result is always greater than zero.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := ParseDecimal(s)
	if err != nil || !d.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// ParseSavingsGoal parses a percentage in [0,100].
func ParseSavingsGoal(s string) (decimal.Decimal, error) {
	d, err := ParseDecimal(s)
	if err != nil {
		return decimal.Zero, Invalid("savingsGoalPercentage", ErrInvalidSavingsGoal)
	}
	if err := ValidateSavingsGoal(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}
