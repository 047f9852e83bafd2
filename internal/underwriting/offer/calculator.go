// Package offer turns validated financial facts into a loan offer and revises
// it when supplementary evidence arrives. Structure and tenure are fixed by the
// first offer and carried through every revision.
package offer

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	apperrors "underwriting-workers/internal/common/errors"
	"underwriting-workers/internal/models"
	"underwriting-workers/internal/underwriting/policy"
)

// Mode selects how the approved amount and rate are derived.
type Mode string

const (
	ModeInitial          Mode = "initial"
	ModeConsentRevision  Mode = "consentRevision"
	ModeDocumentRevision Mode = "documentRevision"
)

// ParseMode accepts the wire names of the three modes.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeInitial, ModeConsentRevision, ModeDocumentRevision:
		return m, nil
	case "":
		return ModeInitial, nil
	default:
		return "", apperrors.NewInvalidOfferModeError(s)
	}
}

// Loan structures
const (
	Revolving   = "Revolving"
	Installment = "Installment"
)

// rupeesPerLakh converts offer amounts to the unit payouts are quoted in.
const rupeesPerLakh = 100000

// Offer is one computed offer. Amounts are in lakh, the payout in rupees.
type Offer struct {
	Mode                   Mode    `json:"mode"`
	ApprovedAmount         float64 `json:"approvedAmount"`
	LoanType               string  `json:"loanType"`
	InterestRate           float64 `json:"interestRate"`
	Tenure                 string  `json:"tenure"`
	TenureMonths           int     `json:"tenureMonths"`
	MonthlyPayout          float64 `json:"monthlyPayout"`
	MonthlyPayoutFormatted string  `json:"monthlyPayoutFormatted"`
	RiskScore              int     `json:"-"`

	OriginalApprovedAmount float64 `json:"originalApprovedAmount"`
	OriginalLoanType       string  `json:"originalLoanType"`
	OriginalTenureMonths   int     `json:"originalTenureMonths"`
	OriginalInterestRate   float64 `json:"originalInterestRate"`

	PreviousApprovedAmount float64 `json:"previousApprovedAmount,omitempty"`
	ApprovedChangePct      float64 `json:"approvedChangePct,omitempty"`
}

// IsRevision reports whether the offer came from a revision mode.
func (o *Offer) IsRevision() bool {
	return o.Mode == ModeConsentRevision || o.Mode == ModeDocumentRevision
}

// Fields returns the snapshot facts the offer contributes.
func (o *Offer) Fields() map[string]interface{} {
	out := map[string]interface{}{
		models.KeyApprovedAmount:         o.ApprovedAmount,
		models.KeyLoanType:               o.LoanType,
		models.KeyInterestRate:           o.InterestRate,
		models.KeyTenure:                 o.Tenure,
		models.KeyTenureMonths:           o.TenureMonths,
		models.KeyMonthlyPayout:          o.MonthlyPayout,
		models.KeyMonthlyPayoutFormatted: o.MonthlyPayoutFormatted,
		models.KeyOriginalApprovedAmount: o.OriginalApprovedAmount,
		models.KeyOriginalLoanType:       o.OriginalLoanType,
		models.KeyOriginalTenureMonths:   o.OriginalTenureMonths,
		models.KeyOriginalInterestRate:   o.OriginalInterestRate,
	}
	if o.IsRevision() {
		out[models.KeyRevisionMode] = string(o.Mode)
		out[models.KeyPreviousApprovedAmount] = o.PreviousApprovedAmount
		out[models.KeyApprovedChangePct] = o.ApprovedChangePct
	}
	return out
}

// Summary is a one-paragraph description of the offer for the applicant.
func (o *Offer) Summary() string {
	msg := fmt.Sprintf("%s loan of Rs.%s Lakh at %s%% p.a. for %s. Estimated monthly payout: %s.",
		o.LoanType, trim(o.ApprovedAmount), trim(o.InterestRate), o.Tenure, o.MonthlyPayoutFormatted)
	if o.LoanType == Revolving {
		msg += " The limit renews annually and interest is charged only on what you use."
	}
	if o.IsRevision() && o.ApprovedChangePct != 0 {
		msg += fmt.Sprintf(" That is %s%% more than your earlier offer.", trim(o.ApprovedChangePct))
	}
	return msg
}

// Calculator computes offers under one policy. It holds no state.
type Calculator struct {
	policy policy.Policy
}

func NewCalculator(p policy.Policy) *Calculator {
	return &Calculator{policy: p}
}

// Compute builds the offer for s in the given mode.
func (c *Calculator) Compute(s models.Snapshot, mode Mode) (*Offer, error) {
	if _, err := ParseMode(string(mode)); err != nil {
		return nil, err
	}
	requested, ok := s.Float(models.KeyRequestedAmount)
	if !ok || requested <= 0 {
		return nil, apperrors.NewOfferInputMissingError("requestedAmount must be a positive number")
	}

	p := c.policy
	score := c.riskScore(s)
	baseApproved := mul(requested, p.BaseOfferRatio)

	// Structure and tenure come from the first offer when one exists.
	loanType := s.String(models.KeyOriginalLoanType)
	if loanType == "" {
		loanType = s.String(models.KeyLoanType)
	}
	if loanType != Revolving && loanType != Installment {
		loanType = Installment
		if p.IsRevolving(s.String(models.KeyLoanPurpose)) {
			loanType = Revolving
		}
	}

	tenure, ok := s.Int(models.KeyOriginalTenureMonths)
	if !ok || tenure <= 0 {
		tenure, ok = s.Int(models.KeyTenureMonths)
	}
	if !ok || tenure <= 0 {
		if loanType == Revolving {
			tenure = p.RevolvingTenureMonths
		} else {
			tenure = p.InstallmentTenure(baseApproved)
		}
	}

	originalApproved := firstFloat(s, baseApproved, models.KeyOriginalApprovedAmount, models.KeyApprovedAmount)
	originalRate := firstFloat(s, p.RateFor(score), models.KeyOriginalInterestRate, models.KeyInterestRate)

	o := &Offer{
		Mode:                   mode,
		LoanType:               loanType,
		TenureMonths:           tenure,
		Tenure:                 fmt.Sprintf("%d months", tenure),
		RiskScore:              score,
		OriginalApprovedAmount: originalApproved,
		OriginalLoanType:       loanType,
		OriginalTenureMonths:   tenure,
		OriginalInterestRate:   originalRate,
	}

	switch mode {
	case ModeConsentRevision:
		o.ApprovedAmount = mul(requested, p.ConsentMultiplier)
		o.InterestRate = decimal.NewFromFloat(originalRate).
			Sub(decimal.NewFromFloat(p.ConsentDiscount())).
			Round(2).InexactFloat64()
		if o.InterestRate < p.RateFloor() {
			o.InterestRate = p.RateFloor()
		}
	case ModeDocumentRevision:
		o.ApprovedAmount = mul(originalApproved, p.DocumentMultiplier)
		o.InterestRate = originalRate
	default:
		o.ApprovedAmount = baseApproved
		o.InterestRate = p.RateFor(score)
		if !s.Present(models.KeyOriginalApprovedAmount) {
			o.OriginalApprovedAmount = o.ApprovedAmount
			o.OriginalInterestRate = o.InterestRate
		}
	}

	if o.IsRevision() {
		prev := firstFloat(s, originalApproved, models.KeyApprovedAmount)
		o.PreviousApprovedAmount = prev
		if prev > 0 {
			o.ApprovedChangePct = decimal.NewFromFloat(o.ApprovedAmount).
				Sub(decimal.NewFromFloat(prev)).
				Div(decimal.NewFromFloat(prev)).
				Mul(decimal.NewFromInt(100)).
				Round(2).InexactFloat64()
		}
	}

	o.MonthlyPayout = MonthlyPayout(o.LoanType, o.ApprovedAmount*rupeesPerLakh, o.InterestRate, o.TenureMonths)
	o.MonthlyPayoutFormatted = FormatINR(o.MonthlyPayout)
	return o, nil
}

// MonthlyPayout returns the periodic payment in rupees. Revolving limits pay
// simple monthly interest on the full limit; installment loans amortize.
func MonthlyPayout(loanType string, principal, annualRate float64, months int) float64 {
	r := annualRate / 100 / 12
	if loanType == Revolving {
		return math.Round(principal * r)
	}
	if months <= 0 {
		return 0
	}
	if r == 0 {
		return math.Round(principal / float64(months))
	}
	growth := math.Pow(1+r, float64(months))
	return math.Round(principal * r * growth / (growth - 1))
}

func (c *Calculator) riskScore(s models.Snapshot) int {
	score, ok := s.Int(models.KeyRiskScore)
	if !ok {
		score = c.policy.FallbackRiskScore()
	}
	if score < 0 {
		return 0
	}
	if score > 850 {
		return 850
	}
	return score
}

func mul(a, b float64) float64 {
	return decimal.NewFromFloat(a).Mul(decimal.NewFromFloat(b)).Round(2).InexactFloat64()
}

func firstFloat(s models.Snapshot, fallback float64, keys ...string) float64 {
	for _, k := range keys {
		if v, ok := s.Float(k); ok && v > 0 {
			return v
		}
	}
	return fallback
}

func trim(f float64) string {
	return decimal.NewFromFloat(f).String()
}
