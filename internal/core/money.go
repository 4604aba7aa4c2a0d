// Package core provides the ledger domain: records, month keys, amounts and
// the aggregation rules that turn a month bucket into totals.
//
// This file contains functions for turning user-entered strings into
// decimal amounts.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a user-entered amount to a decimal.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators.
// The result must be strictly positive and fit in MaxIntegerDigits integer
// digits and MaxFractionDigits fraction digits; anything else is a
// ValidationError wrapping ErrInvalidAmount. Exponent notation is rejected.
//
// Examples:
//
//	ParseAmount("1500")   -> 1500, nil
//	ParseAmount("12,50")  -> 12.5, nil
//	ParseAmount("0")      -> 0, ErrInvalidAmount
//	ParseAmount("abc")    -> 0, ErrInvalidAmount
//	ParseAmount("1e400")  -> 0, ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	d, ok := parseDecimal(s)
	if !ok {
		return decimal.Zero, &ValidationError{Field: "amount", Err: ErrInvalidAmount}
	}
	if err := ValidateAmount(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// CoerceNumber converts an income field to a decimal. Empty, non-numeric or
// out-of-range input becomes zero; negative values are kept as entered.
func CoerceNumber(s string) decimal.Decimal {
	d, ok := parseDecimal(s)
	if !ok || !InRange(d) {
		return decimal.Zero
	}
	return d
}

const (
	// MaxIntegerDigits bounds the integer part of any stored figure.
	MaxIntegerDigits = 15
	// MaxFractionDigits bounds the fraction part of any stored figure.
	MaxFractionDigits = 2

	maxInputLen = 64
)

var integerLimit = decimal.New(1, MaxIntegerDigits)

// InRange reports whether d fits in MaxIntegerDigits integer digits and
// MaxFractionDigits fraction digits. The exponent is checked before any
// comparison so a huge exponent is never expanded.
func InRange(d decimal.Decimal) bool {
	exp := d.Exponent()
	if exp < -MaxFractionDigits || exp > MaxIntegerDigits {
		return false
	}
	return d.Abs().LessThan(integerLimit)
}

func parseDecimal(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > maxInputLen {
		return decimal.Zero, false
	}
	if strings.ContainsAny(s, "eE") {
		return decimal.Zero, false
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	if strings.Count(s, ".") > 1 {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
