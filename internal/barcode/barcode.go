// Package barcode normalizes raw barcode text coming from CSV exports,
// operator input and scanners into the digit-only form used as a storage key.
package barcode

import (
	"strings"
	"unicode"
)

// LeadIn is the preamble character some scanners and the ERP export prepend
// to a barcode ("^60095 51 80 27 61").
const LeadIn = '^'

// Normalize returns the digit-only form of raw, or "" when the value is not a
// usable barcode (empty, no digits, or only zeros).
// No padding or checksum validation is applied.
func Normalize(raw string) string {
	s := strings.TrimSpace(strings.ReplaceAll(raw, "\u00a0", " "))
	s = strings.TrimPrefix(s, string(LeadIn))

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if strings.Trim(digits, "0") == "" {
		return ""
	}
	return digits
}

// IsAbsent reports whether raw normalizes to no barcode at all.
func IsAbsent(raw string) bool { return Normalize(raw) == "" }

// Compact removes every whitespace rune, the way a typed query such as
// "600 95 51" is folded before lookup.
func Compact(q string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, q)
}

// IsNumeric reports whether s is non-empty and made only of ASCII digits.
func IsNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Ptr converts a normalized barcode to the nullable column form.
func Ptr(bc string) *string {
	if bc == "" {
		return nil
	}
	return &bc
}

// Value dereferences a nullable barcode column.
func Value(bc *string) string {
	if bc == nil {
		return ""
	}
	return *bc
}
