// Package policy holds the tunable lending rules for one deployment profile.
// A Policy is passed explicitly to the validators, the state machine and the
// offer calculator, so several profiles can run side by side.
package policy

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// RateTier maps a minimum risk score to an annual interest rate in percent.
type RateTier struct {
	MinScore int     `mapstructure:"min_score" json:"minScore" validate:"gte=0,lte=850"`
	Rate     float64 `mapstructure:"rate" json:"rate" validate:"gt=0,lt=100"`
}

// TenureTier assigns an installment tenure to approved amounts up to UpTo lakh.
type TenureTier struct {
	UpTo   float64 `mapstructure:"up_to" json:"upTo" validate:"gt=0"`
	Months int     `mapstructure:"months" json:"months" validate:"gt=0"`
}

// Policy is one named set of lending rules. Amounts are in lakh.
type Policy struct {
	Name string `mapstructure:"name" json:"name"`

	MinLoanAmount float64 `mapstructure:"min_loan_amount" json:"minLoanAmount" validate:"gt=0"`
	MaxLoanAmount float64 `mapstructure:"max_loan_amount" json:"maxLoanAmount" validate:"gtfield=MinLoanAmount"`

	DeniedIndustries  []string `mapstructure:"denied_industries" json:"deniedIndustries"`
	CompanySuffixes   []string `mapstructure:"company_suffixes" json:"companySuffixes" validate:"min=1,dive,required"`
	RevolvingKeywords []string `mapstructure:"revolving_keywords" json:"revolvingKeywords" validate:"dive,required"`

	BaseOfferRatio     float64 `mapstructure:"base_offer_ratio" json:"baseOfferRatio" validate:"gt=0,lte=1"`
	ConsentMultiplier  float64 `mapstructure:"consent_multiplier" json:"consentMultiplier" validate:"gt=0"`
	DocumentMultiplier float64 `mapstructure:"document_multiplier" json:"documentMultiplier" validate:"gt=0"`

	// RateTiers are checked highest MinScore first; the lowest tier catches everything below.
	RateTiers []RateTier `mapstructure:"rate_tiers" json:"rateTiers" validate:"min=1,dive"`

	// Zero is a valid setting for these three, so nil marks them unset.
	MinRate             *float64 `mapstructure:"min_rate" json:"minRate" validate:"omitempty,gte=0"`
	ConsentRateDiscount *float64 `mapstructure:"consent_rate_discount" json:"consentRateDiscount" validate:"omitempty,gte=0"`
	DefaultRiskScore    *int     `mapstructure:"default_risk_score" json:"defaultRiskScore" validate:"omitempty,gte=0,lte=850"`

	TenureTiers           []TenureTier `mapstructure:"tenure_tiers" json:"tenureTiers" validate:"min=1,dive"`
	LongTenureMonths      int          `mapstructure:"long_tenure_months" json:"longTenureMonths" validate:"gt=0"`
	RevolvingTenureMonths int          `mapstructure:"revolving_tenure_months" json:"revolvingTenureMonths" validate:"gt=0"`

	CollectSignatoryRole bool `mapstructure:"collect_signatory_role" json:"collectSignatoryRole"`
	CollectUdyam         bool `mapstructure:"collect_udyam" json:"collectUdyam"`

	InjectionPatterns []string `mapstructure:"injection_patterns" json:"injectionPatterns"`
	BlockedPhrases    []string `mapstructure:"blocked_phrases" json:"blockedPhrases"`
	OfferDisclaimer   string   `mapstructure:"offer_disclaimer" json:"offerDisclaimer"`
}

// Default returns the stock lending policy.
func Default() Policy {
	return Policy{
		Name:          "default",
		MinLoanAmount: 1,
		MaxLoanAmount: 200,
		DeniedIndustries: []string{
			"gambling", "betting", "casino", "lottery", "arms", "ammunition",
			"weapons", "explosives", "adult", "pornography", "escort",
			"crypto exchange", "ponzi", "chit fund", "mlm", "multi-level marketing",
			"tobacco", "narcotics", "cannabis", "shell company", "hawala",
		},
		CompanySuffixes: []string{
			"private limited", "pvt ltd", "pvt. ltd", " limited", " ltd", " ltd.", "llp", "l.l.p",
		},
		RevolvingKeywords:  []string{"inventory", "working capital", "cash management"},
		BaseOfferRatio:     0.60,
		ConsentMultiplier:  1.15,
		DocumentMultiplier: 1.15,
		RateTiers: []RateTier{
			{MinScore: 750, Rate: 14.0},
			{MinScore: 700, Rate: 15.5},
			{MinScore: 650, Rate: 17.0},
			{MinScore: 0, Rate: 19.0},
		},
		MinRate:             Float64(12.0),
		ConsentRateDiscount: Float64(0.5),
		DefaultRiskScore:    Int(700),
		TenureTiers: []TenureTier{
			{UpTo: 10, Months: 12},
			{UpTo: 25, Months: 24},
		},
		LongTenureMonths:      36,
		RevolvingTenureMonths: 12,
		InjectionPatterns: []string{
			`ignore\s+(all\s+)?previous`,
			`forget\s+your\s+rules`,
			`system\s*prompt`,
			`jailbreak`,
		},
		BlockedPhrases: []string{
			"guaranteed", "100% approval", "definitely approved", "your credit score",
			"your bureau score", "internal risk score", "your cibil",
		},
		OfferDisclaimer: "*This is a preliminary and indicative offer, subject to final verification.*",
	}
}

var validate = validator.New()

// Validate checks field constraints and normalizes the tier ordering.
func (p *Policy) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("policy %q: %w", p.Name, err)
	}
	sort.SliceStable(p.RateTiers, func(i, j int) bool {
		return p.RateTiers[i].MinScore > p.RateTiers[j].MinScore
	})
	sort.SliceStable(p.TenureTiers, func(i, j int) bool {
		return p.TenureTiers[i].UpTo < p.TenureTiers[j].UpTo
	})
	if p.RateFloor() > p.RateTiers[len(p.RateTiers)-1].Rate {
		return fmt.Errorf("policy %q: min_rate %.2f exceeds every rate tier", p.Name, p.RateFloor())
	}
	return nil
}

// Float64 returns a pointer to v, for the optional policy settings.
func Float64(v float64) *float64 { return &v }

// Int returns a pointer to v, for the optional policy settings.
func Int(v int) *int { return &v }

// RateFloor is the lowest annual rate an offer may carry.
func (p Policy) RateFloor() float64 {
	if p.MinRate == nil {
		return 0
	}
	return *p.MinRate
}

// ConsentDiscount is the rate reduction, in percentage points, granted for
// bureau consent.
func (p Policy) ConsentDiscount() float64 {
	if p.ConsentRateDiscount == nil {
		return 0
	}
	return *p.ConsentRateDiscount
}

// FallbackRiskScore is the score assumed when no bureau score is on file.
func (p Policy) FallbackRiskScore() int {
	if p.DefaultRiskScore == nil {
		return 0
	}
	return *p.DefaultRiskScore
}

// RateFor returns the base annual rate for a risk score.
func (p Policy) RateFor(score int) float64 {
	for _, t := range p.RateTiers {
		if score >= t.MinScore {
			return t.Rate
		}
	}
	return p.RateTiers[len(p.RateTiers)-1].Rate
}

// LowestRate is the rate of the best tier.
func (p Policy) LowestRate() float64 {
	lowest := p.RateTiers[0].Rate
	for _, t := range p.RateTiers[1:] {
		if t.Rate < lowest {
			lowest = t.Rate
		}
	}
	return lowest
}

// InstallmentTenure returns the installment tenure in months for an approved amount.
func (p Policy) InstallmentTenure(approved float64) int {
	for _, t := range p.TenureTiers {
		if approved <= t.UpTo {
			return t.Months
		}
	}
	return p.LongTenureMonths
}

// IsRevolving reports whether the loan purpose matches a revolving keyword.
func (p Policy) IsRevolving(purpose string) bool {
	return containsAny(purpose, p.RevolvingKeywords)
}

// RequiresCompanyID reports whether the legal name carries a corporate suffix.
func (p Policy) RequiresCompanyID(legalName string) bool {
	return containsAny(legalName, p.CompanySuffixes)
}

// DeniedIndustry returns the first denylisted term found in text. Terms match
// whole words only, so "arms" blocks "small arms dealer" but not "dairy farms".
func (p Policy) DeniedIndustry(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, term := range p.DeniedIndustries {
		if term != "" && containsWord(lower, strings.ToLower(term)) {
			return term, true
		}
	}
	return "", false
}

func containsWord(text, term string) bool {
	for start := 0; start < len(text); {
		i := strings.Index(text[start:], term)
		if i < 0 {
			return false
		}
		i += start
		end := i + len(term)
		if (i == 0 || !isWordByte(text[i-1])) && (end == len(text) || !isWordByte(text[end])) {
			return true
		}
		start = i + 1
	}
	return false
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= '0' && b <= '9'
}

func containsAny(text string, terms []string) bool {
	lower := strings.ToLower(text)
	for _, term := range terms {
		if term != "" && strings.Contains(lower, strings.ToLower(term)) {
			return true
		}
	}
	return false
}

// WithDefaults fills every zero-valued setting from Default. Boolean switches
// keep their configured value, and the pointer settings are filled only when nil.
func (p Policy) WithDefaults() Policy {
	d := Default()
	if p.MinLoanAmount == 0 {
		p.MinLoanAmount = d.MinLoanAmount
	}
	if p.MaxLoanAmount == 0 {
		p.MaxLoanAmount = d.MaxLoanAmount
	}
	if p.DeniedIndustries == nil {
		p.DeniedIndustries = d.DeniedIndustries
	}
	if len(p.CompanySuffixes) == 0 {
		p.CompanySuffixes = d.CompanySuffixes
	}
	if p.RevolvingKeywords == nil {
		p.RevolvingKeywords = d.RevolvingKeywords
	}
	if p.BaseOfferRatio == 0 {
		p.BaseOfferRatio = d.BaseOfferRatio
	}
	if p.ConsentMultiplier == 0 {
		p.ConsentMultiplier = d.ConsentMultiplier
	}
	if p.DocumentMultiplier == 0 {
		p.DocumentMultiplier = d.DocumentMultiplier
	}
	if len(p.RateTiers) == 0 {
		p.RateTiers = d.RateTiers
	}
	if p.MinRate == nil {
		p.MinRate = d.MinRate
	}
	if p.ConsentRateDiscount == nil {
		p.ConsentRateDiscount = d.ConsentRateDiscount
	}
	if p.DefaultRiskScore == nil {
		p.DefaultRiskScore = d.DefaultRiskScore
	}
	if len(p.TenureTiers) == 0 {
		p.TenureTiers = d.TenureTiers
	}
	if p.LongTenureMonths == 0 {
		p.LongTenureMonths = d.LongTenureMonths
	}
	if p.RevolvingTenureMonths == 0 {
		p.RevolvingTenureMonths = d.RevolvingTenureMonths
	}
	if p.InjectionPatterns == nil {
		p.InjectionPatterns = d.InjectionPatterns
	}
	if p.BlockedPhrases == nil {
		p.BlockedPhrases = d.BlockedPhrases
	}
	if p.OfferDisclaimer == "" {
		p.OfferDisclaimer = d.OfferDisclaimer
	}
	return p
}
