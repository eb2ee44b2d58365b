// Package money holds the numeric helpers shared by the pricing engine:
// locale-tolerant amount parsing, 2-decimal formatting, rental day counting
// and HT/TTC ratio inference.
package money

import (
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// DefaultVATRatio is the HT/TTC ratio assumed when a pair of amounts cannot
// be used to infer one (20% VAT).
const DefaultVATRatio = 5.0 / 6.0

// ParseAmount parses user input with either '.' or ',' as decimal separator
// and optional whitespace thousand separators. ok is false on empty or
// unparseable input; the value is never NaN.
func ParseAmount(text string) (float64, bool) {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, text)
	if cleaned == "" {
		return 0, false
	}
	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	// "1.234.56" style input: everything but the last dot is a thousand mark.
	if n := strings.Count(cleaned, "."); n > 1 {
		last := strings.LastIndex(cleaned, ".")
		cleaned = strings.ReplaceAll(cleaned[:last], ".", "") + cleaned[last:]
	}
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}
	return value, true
}

// FormatAmount renders an amount with exactly two decimals and no currency
// symbol; locale decoration is a UI concern.
func FormatAmount(value float64) string {
	return strconv.FormatFloat(Round2(value), 'f', 2, 64)
}

// Round2 rounds to two decimals. Applied to terminal user inputs only;
// intermediate arithmetic stays unrounded.
func Round2(value float64) float64 {
	return math.Round(value*100) / 100
}

// RentalDays counts billable days as ceil((end-start)/24h), never less
// than one. A reversed or empty range yields 1; date-order enforcement
// belongs to the draft.
func RentalDays(start, end time.Time) int {
	if !end.After(start) {
		return 1
	}
	days := int(math.Ceil(end.Sub(start).Hours() / 24))
	if days < 1 {
		return 1
	}
	return days
}

// VATRatio returns ht/ttc when both are strictly positive, else fallback.
// Every TTC to HT back-conversion in the engine goes through here.
func VATRatio(ht, ttc, fallback float64) float64 {
	if ht > 0 && ttc > 0 {
		return ht / ttc
	}
	return fallback
}
