// Package core holds the purchase-tracking domain: money parsing, purchase
// records, period aggregation, budget evaluation, and duplicate detection.
// Everything here is pure; history and the current instant are always
// arguments, never ambient state.
package core

import (
	"math"
	"strconv"
	"strings"
)

// ParseOrderTotal extracts a cent amount from the raw text of an order-total
// element. Every character that is not a digit, comma, or period is stripped,
// thousands-separator commas are removed, and the remainder is parsed as a
// decimal with half-up rounding on the third fractional digit.
//
// Examples:
//
//	ParseOrderTotal("Total: $1,234.56") -> 123456, nil
//	ParseOrderTotal("€12.345")          -> 1235, nil
//	ParseOrderTotal("free shipping")    -> 0, ErrInvalidAmount
func ParseOrderTotal(text string) (int64, error) {
	var b strings.Builder
	for _, r := range text {
		if (r >= '0' && r <= '9') || r == ',' || r == '.' {
			b.WriteRune(r)
		}
	}
	cleaned := strings.ReplaceAll(b.String(), ",", "")
	return parseDecimalToCents(cleaned)
}

// parseDecimalToCents converts the leading digits[.digits] prefix of a
// cleaned string ("12", "12.3", "12.345") to cents with half-up rounding on
// the third fractional digit. Anything from a second dot onward is ignored:
// stripping prose like "(incl. tax)" leaves stray trailing periods behind,
// and those must not sink the amount. Rejects empty input and non-positive
// results.
func parseDecimalToCents(s string) (int64, error) {
	if s == "" {
		return 0, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	intPart := parts[0]
	fracPart := ""
	if len(parts) > 1 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	if intPart == "0" && fracPart == "" {
		return 0, ErrInvalidAmount
	}

	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	const maxSafe = (1<<63 - 1) / 100
	if iv > maxSafe {
		return 0, ErrInvalidAmount
	}

	var fracCents int64
	if len(fracPart) > 0 {
		if fracPart[0] < '0' || fracPart[0] > '9' {
			return 0, ErrInvalidAmount
		}
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			if fracPart[1] < '0' || fracPart[1] > '9' {
				return 0, ErrInvalidAmount
			}
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 {
				if fracPart[2] < '0' || fracPart[2] > '9' {
					return 0, ErrInvalidAmount
				}
				if fracPart[2] >= '5' {
					fracCents++
				}
			}
		}
	}

	cents := iv*100 + fracCents
	if cents <= 0 {
		return 0, ErrInvalidAmount
	}
	return cents, nil
}

// DetectCurrencySymbol scans raw order-total text for currency markers in
// priority order. The dollar sign is the fallback, not a detection.
func DetectCurrencySymbol(text string) string {
	switch {
	case strings.Contains(text, "€") || strings.Contains(text, "EUR"):
		return "€"
	case strings.Contains(text, "£") || strings.Contains(text, "GBP"):
		return "£"
	case strings.Contains(text, "¥"):
		return "¥"
	default:
		return "$"
	}
}

// roundToCents converts a float amount to cents with standard half-up
// rounding, used when decoding JSON amounts.
func roundToCents(v float64) int64 {
	return int64(math.Round(v * 100))
}
