package fields

import (
	"strings"

	"github.com/shopspring/decimal"

	apperrors "underwriting-workers/internal/common/errors"
	"underwriting-workers/internal/models"
)

const maxTextLength = 200

var (
	yesWords = map[string]bool{
		"yes": true, "y": true, "yeah": true, "yep": true, "yup": true, "sure": true,
		"true": true, "ok": true, "okay": true, "done": true, "haan": true,
		"registered": true, "gst registered": true, "i have gst": true, "uploaded": true,
		"i agree": true, "agree": true, "consent": true,
	}
	noWords = map[string]bool{
		"no": true, "n": true, "nope": true, "nah": true, "false": true, "nahi": true,
		"not registered": true, "unregistered": true, "no gst": true, "i don't have gst": true,
		"not yet": true, "decline": true,
	}
	noneChoices = map[string]bool{
		"none": true, "no": true, "skip": true, "not now": true, "no thanks": true,
		"no thank you": true, "neither": true, "accept": true, "accept offer": true,
	}
)

// ValidateText trims and collapses whitespace. Empty answers are rejected.
func ValidateText(raw string) (interface{}, error) {
	c := strings.Join(strings.Fields(raw), " ")
	if c == "" {
		return nil, apperrors.NewValidationError(apperrors.CodeRequired, "This answer cannot be empty.")
	}
	if r := []rune(c); len(r) > maxTextLength {
		c = string(r[:maxTextLength])
	}
	return c, nil
}

// ValidateIndustry accepts free text unless it names a denylisted industry.
func (v *Validator) ValidateIndustry(raw string) (interface{}, error) {
	text, err := ValidateText(raw)
	if err != nil {
		return nil, err
	}
	if _, denied := v.policy.DeniedIndustry(text.(string)); denied {
		return nil, apperrors.NewPolicyBlock(apperrors.CodeIndustryBlocked,
			"Unable to process applications for this industry per credit policy.")
	}
	return text, nil
}

// ParseYesNo reads a yes/no answer into a bool.
func ParseYesNo(raw string) (interface{}, error) {
	c := normalizeAnswer(raw)
	switch {
	case yesWords[c]:
		return true, nil
	case noWords[c]:
		return false, nil
	case strings.HasPrefix(c, "yes "):
		return true, nil
	case strings.HasPrefix(c, "no "):
		return false, nil
	}
	return nil, apperrors.NewValidationError(apperrors.CodeInvalidYesNo, "Please answer Yes or No.")
}

// ParseUpgradeChoice maps the upgrade answer onto documents, consent or none.
func ParseUpgradeChoice(raw string) (interface{}, error) {
	c := normalizeAnswer(raw)
	switch {
	case noneChoices[c]:
		return models.UpgradeNone, nil
	case strings.Contains(c, "document"), strings.Contains(c, "upload"), strings.Contains(c, "statement"):
		return models.UpgradeDocuments, nil
	case strings.Contains(c, "consent"), strings.Contains(c, "gst"):
		return models.UpgradeConsent, nil
	}
	return nil, apperrors.NewValidationError(apperrors.CodeInvalidChoice,
		"Please choose 'documents' to upload bank statements, 'consent' to share GST data, or 'none' to keep this offer.")
}

// ValidateYears reads the business vintage in years. Zero is allowed.
func ValidateYears(raw string) (interface{}, error) {
	d, err := decimal.NewFromString(numberRegex.FindString(raw))
	if err != nil || d.IsNegative() || d.GreaterThan(decimal.NewFromInt(100)) {
		return nil, apperrors.NewValidationError(apperrors.CodeInvalidYears,
			"Please enter how many years the business has been operating (e.g., 5).")
	}
	return d.InexactFloat64(), nil
}

var punctuation = strings.NewReplacer(",", " ", ".", " ", "!", " ", "?", " ")

func normalizeAnswer(raw string) string {
	return strings.ToLower(strings.Join(strings.Fields(punctuation.Replace(raw)), " "))
}
