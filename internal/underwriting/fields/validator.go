// Package fields validates and normalizes raw applicant answers, one validator
// per field kind. Validators are pure and safe to call speculatively.
package fields

import (
	"fmt"
	"regexp"

	apperrors "underwriting-workers/internal/common/errors"
	"underwriting-workers/internal/models"
	"underwriting-workers/internal/underwriting/policy"
)

// Kind names the shape of answer a step expects.
type Kind string

const (
	KindAcknowledge   Kind = "acknowledge"
	KindMobile        Kind = "mobile"
	KindOTP           Kind = "otp"
	KindYesNo         Kind = "yes_no"
	KindText          Kind = "text"
	KindPAN           Kind = "pan"
	KindGSTIN         Kind = "gstin"
	KindCIN           Kind = "cin"
	KindSignatory     Kind = "signatory"
	KindUdyam         Kind = "udyam"
	KindIndustry      Kind = "industry"
	KindYears         Kind = "years"
	KindAmount        Kind = "amount"
	KindOptionalMoney Kind = "optional_amount"
	KindSignedMoney   Kind = "signed_amount"
	KindLoanAmount    Kind = "loan_amount"
	KindUpgradeChoice Kind = "upgrade_choice"
)

// FieldKinds maps each collectable snapshot key to the validator that accepts it.
var FieldKinds = map[string]Kind{
	models.KeyGreeted:             KindAcknowledge,
	models.KeyMobile:              KindMobile,
	models.KeyOTPVerified:         KindOTP,
	models.KeyApplicantName:       KindText,
	models.KeyIsGSTRegistered:     KindYesNo,
	models.KeyPAN:                 KindPAN,
	models.KeyLegalName:           KindText,
	models.KeyGSTIN:               KindGSTIN,
	models.KeyIndustry:            KindIndustry,
	models.KeyLineOfBusiness:      KindText,
	models.KeyCIN:                 KindCIN,
	models.KeyDINOrRole:           KindSignatory,
	models.KeyUdyam:               KindUdyam,
	models.KeyYearsOperating:      KindYears,
	models.KeyAnnualRevenue:       KindAmount,
	models.KeyOperatingProfit:     KindSignedMoney,
	models.KeyExistingDebtService: KindOptionalMoney,
	models.KeyRequestedAmount:     KindLoanAmount,
	models.KeyLoanPurpose:         KindText,
	models.KeyUpgradePath:         KindUpgradeChoice,
	models.KeyDocumentsUploaded:   KindYesNo,
	models.KeyConsentGranted:      KindYesNo,
}

// Validator runs the field checks under one lending policy.
type Validator struct {
	policy    policy.Policy
	injection []*regexp.Regexp
}

// NewValidator compiles the policy's injection patterns.
func NewValidator(p policy.Policy) (*Validator, error) {
	v := &Validator{policy: p}
	for _, pat := range p.InjectionPatterns {
		re, err := regexp.Compile("(?i)" + pat)
		if err != nil {
			return nil, fmt.Errorf("invalid injection pattern %q: %w", pat, err)
		}
		v.injection = append(v.injection, re)
	}
	return v, nil
}

// Validate normalizes raw for the given kind. A rejected answer returns a nil
// value and a *errors.FieldError; an unknown kind returns a StandardError.
func (v *Validator) Validate(kind Kind, raw string) (interface{}, error) {
	switch kind {
	case KindAcknowledge:
		return true, nil
	case KindMobile:
		return ValidateMobile(raw)
	case KindOTP:
		return ValidateOTP(raw)
	case KindYesNo:
		return ParseYesNo(raw)
	case KindText:
		return ValidateText(raw)
	case KindPAN:
		return ValidatePAN(raw)
	case KindGSTIN:
		return ValidateGSTIN(raw)
	case KindCIN:
		return ValidateCIN(raw)
	case KindSignatory:
		return ValidateSignatory(raw)
	case KindUdyam:
		return ValidateUdyam(raw)
	case KindIndustry:
		return v.ValidateIndustry(raw)
	case KindYears:
		return ValidateYears(raw)
	case KindAmount:
		return ValidateAmount(raw)
	case KindOptionalMoney:
		return ValidateNonNegativeAmount(raw)
	case KindSignedMoney:
		return ValidateSignedAmount(raw)
	case KindLoanAmount:
		return v.ValidateLoanAmount(raw)
	case KindUpgradeChoice:
		return ParseUpgradeChoice(raw)
	default:
		return nil, apperrors.NewUnknownFieldError(string(kind))
	}
}

// ValidateField looks up the validator for a snapshot key.
func (v *Validator) ValidateField(field, raw string) (interface{}, error) {
	kind, ok := FieldKinds[field]
	if !ok {
		return nil, apperrors.NewUnknownFieldError(field)
	}
	return v.Validate(kind, raw)
}

// Screen refuses answers that try to steer the assistant instead of answering.
func (v *Validator) Screen(raw string) error {
	for _, re := range v.injection {
		if re.MatchString(raw) {
			return apperrors.NewPolicyBlock(apperrors.CodeInjectionDetected, "Unauthorized input.")
		}
	}
	return nil
}

// Policy returns the policy the validator was built with.
func (v *Validator) Policy() policy.Policy {
	return v.policy
}
