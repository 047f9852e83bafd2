// internal/common/errors/field.go
package errors

import (
	stderrors "errors"
	"fmt"
)

// FieldErrorKind separates malformed input from input that is well-formed but
// outside lending policy.
type FieldErrorKind string

const (
	KindValidation  FieldErrorKind = "VALIDATION"
	KindPolicyBlock FieldErrorKind = "POLICY_BLOCK"
)

// Field error codes
const (
	CodeRequired          = "REQUIRED"
	CodeInvalidMobile     = "INVALID_MOBILE"
	CodeInvalidOTP        = "INVALID_OTP"
	CodeInvalidPAN        = "INVALID_PAN"
	CodeInvalidGSTIN      = "INVALID_GSTIN"
	CodeInvalidCIN        = "INVALID_CIN"
	CodeInvalidDIN        = "INVALID_DIN"
	CodeInvalidUdyam      = "INVALID_UDYAM"
	CodeInvalidAmount     = "INVALID_AMOUNT"
	CodeInvalidYears      = "INVALID_YEARS"
	CodeInvalidYesNo      = "INVALID_YES_NO"
	CodeInvalidChoice     = "INVALID_UPGRADE_CHOICE"
	CodeInvalidRiskScore  = "INVALID_RISK_SCORE"
	CodeAmountBelowMin    = "AMOUNT_BELOW_MIN"
	CodeAmountAboveMax    = "AMOUNT_ABOVE_MAX"
	CodeIndustryBlocked   = "INDUSTRY_BLOCKED"
	CodeInjectionDetected = "INJECTION_DETECTED"
)

// FieldError is returned by the field validators. Kind decides whether the
// applicant is re-asked or the answer is refused on policy grounds.
type FieldError struct {
	Kind    FieldErrorKind `json:"kind"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s[%s]: %s", e.Kind, e.Code, e.Message)
}

func NewValidationError(code, message string) *FieldError {
	return &FieldError{Kind: KindValidation, Code: code, Message: message}
}

func NewPolicyBlock(code, message string) *FieldError {
	return &FieldError{Kind: KindPolicyBlock, Code: code, Message: message}
}

// AsFieldError unwraps err into a FieldError.
func AsFieldError(err error) (*FieldError, bool) {
	var fe *FieldError
	if stderrors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

func IsValidation(err error) bool {
	fe, ok := AsFieldError(err)
	return ok && fe.Kind == KindValidation
}

func IsPolicyBlock(err error) bool {
	fe, ok := AsFieldError(err)
	return ok && fe.Kind == KindPolicyBlock
}
