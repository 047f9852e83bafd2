package fields

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	apperrors "underwriting-workers/internal/common/errors"
)

var (
	croreRegex    = regexp.MustCompile(`(-?\d+(?:\.\d+)?)\s*(crore|cr)`)
	lakhRegex     = regexp.MustCompile(`(-?\d+(?:\.\d+)?)\s*(lakh|lac|l\b)`)
	numberRegex   = regexp.MustCompile(`-?\d+(?:\.\d+)?`)
	hundred       = decimal.NewFromInt(100)
	zeroWords     = map[string]bool{"0": true, "nil": true, "none": true, "zero": true, "no": true}
	amountMessage = "Could not parse amount. Please specify in Lakh or Crore (e.g., '25 Lakh' or '1.5 Crore')."
	negativeMsg   = "Amount cannot be negative. Please enter the amount in Lakh or Crore, or 0 if none."
)

// parseSigned reads an amount in lakh keeping its sign. "1.5 Crore" is 150,
// "-18 lakh" is -18 and the first bare number is taken as lakh.
func parseSigned(raw string) (decimal.Decimal, bool) {
	lower := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(raw), ",", ""))

	if m := croreRegex.FindStringSubmatch(lower); m != nil {
		d, err := decimal.NewFromString(m[1])
		return d.Mul(hundred), err == nil
	}
	if m := lakhRegex.FindStringSubmatch(lower); m != nil {
		d, err := decimal.NewFromString(m[1])
		return d, err == nil
	}
	d, err := decimal.NewFromString(numberRegex.FindString(lower))
	return d, err == nil
}

// ParseAmount reads a rupee amount in lakh. Zero and negative amounts are
// rejected.
func ParseAmount(raw string) (decimal.Decimal, error) {
	d, ok := parseSigned(raw)
	if !ok || !d.IsPositive() {
		return decimal.Zero, apperrors.NewValidationError(apperrors.CodeInvalidAmount, amountMessage)
	}
	return d, nil
}

// ValidateAmount accepts any positive amount, in lakh.
func ValidateAmount(raw string) (interface{}, error) {
	d, err := ParseAmount(raw)
	if err != nil {
		return nil, err
	}
	return d.InexactFloat64(), nil
}

// ValidateNonNegativeAmount is ValidateAmount that also accepts an explicit zero.
func ValidateNonNegativeAmount(raw string) (interface{}, error) {
	if zeroWords[strings.ToLower(strings.TrimSpace(raw))] {
		return 0.0, nil
	}
	if d, ok := parseSigned(raw); ok {
		if d.IsZero() {
			return 0.0, nil
		}
		if d.IsNegative() {
			return nil, apperrors.NewValidationError(apperrors.CodeInvalidAmount, negativeMsg)
		}
	}
	return ValidateAmount(raw)
}

// ValidateSignedAmount accepts a profit figure, where a loss is entered with a
// leading minus and stored negative.
func ValidateSignedAmount(raw string) (interface{}, error) {
	if zeroWords[strings.ToLower(strings.TrimSpace(raw))] {
		return 0.0, nil
	}
	d, ok := parseSigned(raw)
	if !ok {
		return nil, apperrors.NewValidationError(apperrors.CodeInvalidAmount, amountMessage)
	}
	if d.IsZero() {
		return 0.0, nil
	}
	return d.InexactFloat64(), nil
}

// ValidateLoanAmount parses the requested amount and applies the policy window.
// An out-of-window amount is a policy block, not a format error.
func (v *Validator) ValidateLoanAmount(raw string) (interface{}, error) {
	d, err := ParseAmount(raw)
	if err != nil {
		return nil, err
	}
	if err := v.CheckLoanLimits(d); err != nil {
		return nil, err
	}
	return d.InexactFloat64(), nil
}

// CheckLoanLimits returns a policy block when amount is outside [min, max] lakh.
func (v *Validator) CheckLoanLimits(amount decimal.Decimal) error {
	minAmt := decimal.NewFromFloat(v.policy.MinLoanAmount)
	maxAmt := decimal.NewFromFloat(v.policy.MaxLoanAmount)

	if amount.LessThan(minAmt) {
		return apperrors.NewPolicyBlock(apperrors.CodeAmountBelowMin,
			fmt.Sprintf("Minimum loan amount is Rs.%s Lakh.", minAmt.String()))
	}
	if amount.GreaterThan(maxAmt) {
		return apperrors.NewPolicyBlock(apperrors.CodeAmountAboveMax,
			fmt.Sprintf("Maximum unsecured loan is Rs.%s Lakh (Rs.%s Crore). For higher amounts, contact our secured lending team.",
				maxAmt.String(), maxAmt.Div(hundred).String()))
	}
	return nil
}
