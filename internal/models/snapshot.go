// internal/models/snapshot.go
package models

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Snapshot is the accumulated set of facts collected for one loan application.
// It is a flat map of primitive values handed in and handed back on every call.
type Snapshot map[string]interface{}

// Identity facts
const (
	KeyGreeted         = "greeted"
	KeyMobile          = "mobile"
	KeyOTPVerified     = "otpVerified"
	KeyApplicantName   = "applicantName"
	KeyIsGSTRegistered = "isGSTRegistered"
)

// Entity facts
const (
	KeyPAN            = "pan"
	KeyLegalName      = "legalName"
	KeyGSTIN          = "gstin"
	KeyIndustry       = "industry"
	KeyLineOfBusiness = "lineOfBusiness"
	KeyCIN            = "cin"
	KeyCINSkipped     = "cinSkipped"
	KeyDINOrRole      = "dinOrRole"
	KeyUdyam          = "udyam"
)

// Financial facts
const (
	KeyYearsOperating      = "yearsOperating"
	KeyAnnualRevenue       = "annualRevenue"
	KeyOperatingProfit     = "operatingProfit"
	KeyExistingDebtService = "existingDebtService"
	KeyRequestedAmount     = "requestedAmount"
	KeyLoanPurpose         = "loanPurpose"
	KeyRiskScore           = "riskScore"
	KeyDSCR                = "dscr"
)

// Offer facts
const (
	KeyApprovedAmount         = "approvedAmount"
	KeyLoanType               = "loanType"
	KeyInterestRate           = "interestRate"
	KeyTenure                 = "tenure"
	KeyTenureMonths           = "tenureMonths"
	KeyMonthlyPayout          = "monthlyPayout"
	KeyMonthlyPayoutFormatted = "monthlyPayoutFormatted"
	KeyOriginalApprovedAmount = "originalApprovedAmount"
	KeyOriginalLoanType       = "originalLoanType"
	KeyOriginalTenureMonths   = "originalTenureMonths"
	KeyOriginalInterestRate   = "originalInterestRate"
	KeyPreviousApprovedAmount = "previousApprovedAmount"
	KeyApprovedChangePct      = "approvedChangePct"
	KeyRevisionMode           = "revisionMode"
)

// Upgrade facts
const (
	KeyUpgradePath       = "upgradePath"
	KeyDocumentsUploaded = "documentsUploaded"
	KeyConsentGranted    = "consentGranted"
	KeyUpgradeWithdrawn  = "upgradeWithdrawn"
)

// Flow-control flags. Only the orchestrator writes these.
const (
	KeyOnboardingComplete = "onboardingComplete"
	KeyEntityComplete     = "entityComplete"
	KeyFinancialsComplete = "financialsComplete"
	KeyOfferGenerated     = "offerGenerated"
	KeyOfferRevised       = "offerRevised"
	KeyApplicationClosed  = "applicationClosed"
	KeyClosureReason      = "closureReason"
)

// Upgrade path values
const (
	UpgradeDocuments = "documents"
	UpgradeConsent   = "consent"
	UpgradeNone      = "none"
)

// UdyamNotApplicable is stored when the applicant has no micro-enterprise registration.
const UdyamNotApplicable = "NOT_APPLICABLE"

// FlowControlKeys lists the derived flags. Callers may not set them directly.
var FlowControlKeys = []string{
	KeyOnboardingComplete,
	KeyEntityComplete,
	KeyFinancialsComplete,
	KeyOfferGenerated,
	KeyOfferRevised,
	KeyApplicationClosed,
	KeyClosureReason,
	KeyCINSkipped,
}

// Present reports whether key holds an answer. false and 0 count as answers,
// nil and the empty string do not.
func (s Snapshot) Present(key string) bool {
	v, ok := s[key]
	if !ok || v == nil {
		return false
	}
	if str, ok := v.(string); ok {
		return strings.TrimSpace(str) != ""
	}
	return true
}

// Flag reports the truthiness of a boolean flag. Non-boolean values are false.
func (s Snapshot) Flag(key string) bool {
	b, ok := s[key].(bool)
	return ok && b
}

// Bool returns the value of key when it is a real boolean.
func (s Snapshot) Bool(key string) (bool, bool) {
	b, ok := s[key].(bool)
	return b, ok
}

// String returns the string form of key, or "" when absent.
func (s Snapshot) String(key string) string {
	switch v := s[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Float returns key as a float64. JSON numbers, Go integers and numeric strings
// are accepted.
func (s Snapshot) Float(key string) (float64, bool) {
	if f, ok := number(s[key]); ok {
		return f, true
	}
	str, ok := s[key].(string)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(str), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func number(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// sameValue treats numbers of different Go types as equal when their values
// match, so 24 and 24.0 are the same answer.
func sameValue(a, b interface{}) bool {
	fa, okA := number(a)
	fb, okB := number(b)
	if okA && okB {
		return fa == fb
	}
	if okA != okB {
		return false
	}
	return a == b
}

// Int returns key truncated to an int.
func (s Snapshot) Int(key string) (int, bool) {
	f, ok := s.Float(key)
	if !ok {
		return 0, false
	}
	return int(f), true
}

// Clone returns a shallow copy. Values are primitives so this is a full copy.
func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Merge copies fields into a clone of s and returns the clone with the keys
// that were newly added or changed. A number equal in value to the stored one
// is not a change and leaves the stored value in place.
func (s Snapshot) Merge(fields map[string]interface{}) (Snapshot, []string) {
	out := s.Clone()
	var changed []string
	for k, v := range fields {
		if prev, ok := out[k]; ok && sameValue(prev, v) {
			continue
		}
		out[k] = v
		changed = append(changed, k)
	}
	sort.Strings(changed)
	return out, changed
}

// PublicView drops flow-control flags for display.
func (s Snapshot) PublicView() map[string]interface{} {
	out := make(map[string]interface{}, len(s))
	for k, v := range s {
		out[k] = v
	}
	for _, k := range FlowControlKeys {
		delete(out, k)
	}
	return out
}
