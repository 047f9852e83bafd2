// Package pii masks personal identifiers before they reach logs, messages or storage.
package pii

import (
	"regexp"
)

const (
	MaskedMobile = "****XXXX"
	MaskedPAN    = "XXXXX****X"
)

var (
	mobilePattern = regexp.MustCompile(`(?:\+?91[\s-]?)?\b[6-9]\d{9}\b`)
	panPattern    = regexp.MustCompile(`(?i)\b[A-Z]{5}\d{4}[A-Z]\b`)
	// A GSTIN embeds the holder's PAN after the two-digit state code.
	gstinPattern = regexp.MustCompile(`(?i)\b(\d{2})[A-Z]{5}\d{4}[A-Z]([0-9A-Z]Z[0-9A-Z])\b`)
)

// Redact replaces every mobile number and PAN in s with a fixed mask. A PAN
// inside a GSTIN is masked in place, keeping the state code and suffix.
func Redact(s string) string {
	if s == "" {
		return s
	}
	s = mobilePattern.ReplaceAllString(s, MaskedMobile)
	s = gstinPattern.ReplaceAllString(s, "${1}"+MaskedPAN+"${2}")
	return panPattern.ReplaceAllString(s, MaskedPAN)
}

// RedactValue redacts strings and leaves every other type untouched.
func RedactValue(v interface{}) interface{} {
	if s, ok := v.(string); ok {
		return Redact(s)
	}
	return v
}

// RedactMap returns a copy of m with every string value redacted.
func RedactMap(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return nil
	}
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = RedactValue(v)
	}
	return out
}
