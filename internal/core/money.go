// Package core holds the ledger entities, money handling and balance math.
//
// All monetary arithmetic happens in integer minor units (cents); floats
// appear only at display boundaries.
package core

import (
	"strconv"
	"strings"
	"unicode"
)

// ParseDecimalToCents converts a decimal string in major currency units to
// cents. It accepts both dot (12.34) and comma (12,34) decimal separators and
// rounds half-up (away from zero) on the third decimal place. Negative
// amounts are rejected; zero is allowed.
//
// Examples:
//
//	ParseDecimalToCents("12.34")  -> 1234, nil
//	ParseDecimalToCents("12,34")  -> 1234, nil
//	ParseDecimalToCents("12.345") -> 1235, nil (half rounds up)
//	ParseDecimalToCents("12.344") -> 1234, nil
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, NewValidationError("amount", "must not be empty")
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "-") {
		return 0, NewValidationError("amount", "must not be negative")
	}
	s = strings.TrimPrefix(s, "+")
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, NewValidationError("amount", "not a valid decimal number")
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" && fracPart == "" {
		// "." on its own
		return 0, NewValidationError("amount", "not a valid decimal number")
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, NewValidationError("amount", "not a valid decimal number")
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, NewValidationError("amount", "not a valid decimal number")
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, NewValidationError("amount", "not a valid decimal number")
	}
	// Take the first two fractional digits, then half-up rounding on the third
	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}
	// iv*100+fracCents must fit in int64
	const maxInt64 = 1<<63 - 1
	if iv > (maxInt64-fracCents)/100 {
		return 0, NewValidationError("amount", "too large")
	}
	return iv*100 + fracCents, nil
}

// Decimal renders the amount in major units with two decimals ("12.34").
// Integer math only; used for CSV and spreadsheet rows.
func (m Money) Decimal() string {
	cents := m.Cents
	neg := cents < 0
	if neg {
		cents = -cents
	}
	s := strconv.FormatInt(cents/100, 10) + "." + pad2(cents%100)
	if neg {
		return "-" + s
	}
	return s
}

func pad2(n int64) string {
	if n < 10 {
		return "0" + strconv.FormatInt(n, 10)
	}
	return strconv.FormatInt(n, 10)
}
