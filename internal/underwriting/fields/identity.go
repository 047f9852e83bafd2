package fields

import (
	"regexp"
	"strings"

	apperrors "underwriting-workers/internal/common/errors"
	"underwriting-workers/internal/models"
)

var (
	mobileRegex = regexp.MustCompile(`^[6-9][0-9]{9}$`)
	otpRegex    = regexp.MustCompile(`^[0-9]{4,6}$`)
	panRegex    = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)
	gstinRegex  = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][A-Z0-9]Z[A-Z0-9]$`)
	cinRegex    = regexp.MustCompile(`^[UL][0-9]{5}[A-Z]{2}[0-9]{4}[A-Z]{3}[0-9]{6}$`)
	dinRegex    = regexp.MustCompile(`^[0-9]{8}$`)
	udyamRegex  = regexp.MustCompile(`^UDYAM-[A-Z]{2}-[0-9]{2}-[0-9]{7}$`)

	mobileStrip = strings.NewReplacer(" ", "", "-", "", "+", "", "\t", "")
)

var udyamSkipWords = map[string]bool{
	"no":             true,
	"na":             true,
	"n/a":            true,
	"n-a":            true,
	"none":           true,
	"not applicable": true,
}

// NotRegistered is returned by ValidateCIN when the applicant says the company
// has no MCA registration to give.
const NotRegistered = "NOT_REGISTERED"

var cinSkipWords = map[string]bool{
	"no":                 true,
	"na":                 true,
	"n/a":                true,
	"none":               true,
	"skip":               true,
	"not registered":     true,
	"not mca registered": true,
	"not applicable":     true,
	"don't have":         true,
	"dont have":          true,
}

// ValidateMobile accepts a 10-digit Indian mobile number, with or without the 91 prefix.
func ValidateMobile(raw string) (interface{}, error) {
	c := mobileStrip.Replace(strings.TrimSpace(raw))
	if len(c) == 12 && strings.HasPrefix(c, "91") {
		c = c[2:]
	}
	if !mobileRegex.MatchString(c) {
		return nil, apperrors.NewValidationError(apperrors.CodeInvalidMobile,
			"Please enter a valid 10-digit Indian mobile number (starting with 6-9).")
	}
	return c, nil
}

func ValidateOTP(raw string) (interface{}, error) {
	c := strings.TrimSpace(raw)
	if !otpRegex.MatchString(c) {
		return nil, apperrors.NewValidationError(apperrors.CodeInvalidOTP, "Please enter a valid OTP (4-6 digits).")
	}
	return c, nil
}

func ValidatePAN(raw string) (interface{}, error) {
	c := strings.ToUpper(strings.TrimSpace(raw))
	if !panRegex.MatchString(c) {
		return nil, apperrors.NewValidationError(apperrors.CodeInvalidPAN,
			"Invalid PAN. Should be 10 chars: 5 letters, 4 digits, 1 letter (e.g., ABCDE1234F).")
	}
	return c, nil
}

func ValidateGSTIN(raw string) (interface{}, error) {
	c := strings.ToUpper(strings.TrimSpace(raw))
	if !gstinRegex.MatchString(c) {
		return nil, apperrors.NewValidationError(apperrors.CodeInvalidGSTIN,
			"Invalid GSTN. Enter a valid 15-character GSTN (e.g., 07AADCS8891H1ZU).")
	}
	return c, nil
}

// ValidateCIN accepts a 21-character CIN, or an opt-out answer which is
// returned as NotRegistered.
func ValidateCIN(raw string) (interface{}, error) {
	c := strings.ToUpper(strings.TrimSpace(raw))
	if cinSkipWords[strings.Join(strings.Fields(strings.ToLower(c)), " ")] {
		return NotRegistered, nil
	}
	if !cinRegex.MatchString(c) {
		return nil, apperrors.NewValidationError(apperrors.CodeInvalidCIN,
			"Invalid CIN. Should be 21 chars (e.g., U74300WB1987PTC041861).")
	}
	return c, nil
}

// ValidateSignatory accepts an 8-digit DIN, or a role description when the
// answer is not purely numeric.
func ValidateSignatory(raw string) (interface{}, error) {
	c := strings.TrimSpace(raw)
	digits := strings.ReplaceAll(c, " ", "")
	if digits != "" && isAllDigits(digits) {
		if !dinRegex.MatchString(digits) {
			return nil, apperrors.NewValidationError(apperrors.CodeInvalidDIN, "Invalid DIN. Should be exactly 8 digits.")
		}
		return digits, nil
	}
	return ValidateText(c)
}

// ValidateUdyam accepts a Udyam registration number or a "no" answer, which
// is stored as models.UdyamNotApplicable.
func ValidateUdyam(raw string) (interface{}, error) {
	c := strings.ToUpper(strings.TrimSpace(raw))
	if udyamSkipWords[strings.ToLower(c)] {
		return models.UdyamNotApplicable, nil
	}
	if !udyamRegex.MatchString(c) {
		return nil, apperrors.NewValidationError(apperrors.CodeInvalidUdyam,
			"Invalid Udyam format. Expected: UDYAM-XX-00-0000000. Enter 'No' if not applicable.")
	}
	return c, nil
}

func isAllDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
