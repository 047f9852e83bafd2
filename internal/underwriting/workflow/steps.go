package workflow

import (
	"underwriting-workers/internal/models"
	"underwriting-workers/internal/underwriting/fields"
)

// StepID names one stage of the intake. The set is closed.
type StepID string

const (
	StepGreeting      StepID = "onboarding.greeting"
	StepMobile        StepID = "onboarding.mobile"
	StepOTP           StepID = "onboarding.otp"
	StepApplicantName StepID = "onboarding.applicant_name"
	StepRegistration  StepID = "onboarding.registration"

	StepATaxID          StepID = "entity_a.tax_id"
	StepALegalName      StepID = "entity_a.legal_name"
	StepAGSTIN          StepID = "entity_a.gstin"
	StepAIndustry       StepID = "entity_a.industry"
	StepALineOfBusiness StepID = "entity_a.line_of_business"
	StepACompanyID      StepID = "entity_a.company_id"
	StepASignatoryRole  StepID = "entity_a.signatory_role"

	StepBTaxID          StepID = "entity_b.tax_id"
	StepBLegalName      StepID = "entity_b.legal_name"
	StepBUdyam          StepID = "entity_b.udyam"
	StepBIndustry       StepID = "entity_b.industry"
	StepBLineOfBusiness StepID = "entity_b.line_of_business"

	StepVintage         StepID = "financials.vintage"
	StepRevenue         StepID = "financials.revenue"
	StepOperatingProfit StepID = "financials.operating_profit"
	StepDebtService     StepID = "financials.debt_service"
	StepRequestedAmount StepID = "financials.requested_amount"
	StepPurpose         StepID = "financials.purpose"

	StepOfferPresent     StepID = "offer.present"
	StepUpgradeChoice    StepID = "upgrade.choice"
	StepUpgradeDocuments StepID = "upgrade.documents"
	StepUpgradeConsent   StepID = "upgrade.consent"
	StepRevision         StepID = "revision.recompute"
	StepClosure          StepID = "closure"
)

// Phase groups steps. Entity A and B share a rank.
type Phase string

const (
	PhaseOnboarding Phase = "onboarding"
	PhaseEntityA    Phase = "entity_a"
	PhaseEntityB    Phase = "entity_b"
	PhaseFinancials Phase = "financials"
	PhaseOffer      Phase = "offer"
	PhaseUpgrade    Phase = "upgrade"
	PhaseRevision   Phase = "revision"
	PhaseClosure    Phase = "closure"
)

var phaseRank = map[Phase]int{
	PhaseOnboarding: 0,
	PhaseEntityA:    1,
	PhaseEntityB:    1,
	PhaseFinancials: 2,
	PhaseOffer:      3,
	PhaseUpgrade:    4,
	PhaseRevision:   5,
	PhaseClosure:    6,
}

// Input types tell the presentation layer which widget to render.
const (
	InputText        = "text"
	InputMobile      = "mobile"
	InputOTP         = "otp"
	InputYesNo       = "yes_no"
	InputAmount      = "amount"
	InputChoice      = "choice"
	InputUpload      = "upload"
	InputPrelimOffer = "prelim_offer"
	InputFinalOffer  = "accept_offer"
	InputEnd         = "end"
)

// Step describes what a step collects and how it is asked.
type Step struct {
	ID        StepID      `json:"id"`
	Phase     Phase       `json:"phase"`
	Field     string      `json:"field,omitempty"`
	Kind      fields.Kind `json:"kind,omitempty"`
	InputType string      `json:"inputType"`
	Prompt    string      `json:"prompt"`
	// StoreAs replaces the normalized answer when the step records a fact
	// about the answer rather than the answer itself.
	StoreAs interface{} `json:"-"`
	// SkipFlag is set to true in place of Field when the validator reports
	// fields.NotRegistered.
	SkipFlag string `json:"-"`
}

// Automatic steps take no answer; the orchestrator runs them on arrival.
func (s Step) Automatic() bool {
	return s.Field == ""
}

var catalog = []Step{
	{ID: StepGreeting, Phase: PhaseOnboarding, Field: models.KeyGreeted, Kind: fields.KindAcknowledge, InputType: InputText,
		Prompt: "Welcome! I can help you apply for a business loan in a few minutes. Say hello to get started."},
	{ID: StepMobile, Phase: PhaseOnboarding, Field: models.KeyMobile, Kind: fields.KindMobile, InputType: InputMobile,
		Prompt: "Please share your 10-digit mobile number."},
	{ID: StepOTP, Phase: PhaseOnboarding, Field: models.KeyOTPVerified, Kind: fields.KindOTP, InputType: InputOTP, StoreAs: true,
		Prompt: "Enter the OTP sent to your mobile."},
	{ID: StepApplicantName, Phase: PhaseOnboarding, Field: models.KeyApplicantName, Kind: fields.KindText, InputType: InputText,
		Prompt: "What is your full name?"},
	{ID: StepRegistration, Phase: PhaseOnboarding, Field: models.KeyIsGSTRegistered, Kind: fields.KindYesNo, InputType: InputYesNo,
		Prompt: "Is your business GST registered?"},

	{ID: StepATaxID, Phase: PhaseEntityA, Field: models.KeyPAN, Kind: fields.KindPAN, InputType: InputText,
		Prompt: "Please enter the business PAN."},
	{ID: StepALegalName, Phase: PhaseEntityA, Field: models.KeyLegalName, Kind: fields.KindText, InputType: InputText,
		Prompt: "What is the legal name of the business?"},
	{ID: StepAGSTIN, Phase: PhaseEntityA, Field: models.KeyGSTIN, Kind: fields.KindGSTIN, InputType: InputText,
		Prompt: "Please enter your 15-character GSTIN."},
	{ID: StepAIndustry, Phase: PhaseEntityA, Field: models.KeyIndustry, Kind: fields.KindIndustry, InputType: InputText,
		Prompt: "Which industry does the business operate in?"},
	{ID: StepALineOfBusiness, Phase: PhaseEntityA, Field: models.KeyLineOfBusiness, Kind: fields.KindText, InputType: InputText,
		Prompt: "Briefly describe your line of business."},
	{ID: StepACompanyID, Phase: PhaseEntityA, Field: models.KeyCIN, Kind: fields.KindCIN, InputType: InputText, SkipFlag: models.KeyCINSkipped,
		Prompt: "Please enter the company's 21-character CIN, or reply 'skip' if it is not MCA registered."},
	{ID: StepASignatoryRole, Phase: PhaseEntityA, Field: models.KeyDINOrRole, Kind: fields.KindSignatory, InputType: InputText,
		Prompt: "Please share your DIN, or your role in the company if you are not a director."},

	{ID: StepBTaxID, Phase: PhaseEntityB, Field: models.KeyPAN, Kind: fields.KindPAN, InputType: InputText,
		Prompt: "Please enter the business PAN."},
	{ID: StepBLegalName, Phase: PhaseEntityB, Field: models.KeyLegalName, Kind: fields.KindText, InputType: InputText,
		Prompt: "What is the legal name of the business?"},
	{ID: StepBUdyam, Phase: PhaseEntityB, Field: models.KeyUdyam, Kind: fields.KindUdyam, InputType: InputText,
		Prompt: "Do you have an Udyam registration number? Enter it, or 'No' if not applicable."},
	{ID: StepBIndustry, Phase: PhaseEntityB, Field: models.KeyIndustry, Kind: fields.KindIndustry, InputType: InputText,
		Prompt: "Which industry does the business operate in?"},
	{ID: StepBLineOfBusiness, Phase: PhaseEntityB, Field: models.KeyLineOfBusiness, Kind: fields.KindText, InputType: InputText,
		Prompt: "Briefly describe your line of business."},

	{ID: StepVintage, Phase: PhaseFinancials, Field: models.KeyYearsOperating, Kind: fields.KindYears, InputType: InputText,
		Prompt: "How many years has the business been operating?"},
	{ID: StepRevenue, Phase: PhaseFinancials, Field: models.KeyAnnualRevenue, Kind: fields.KindAmount, InputType: InputAmount,
		Prompt: "What was your annual revenue last year? (e.g., '80 Lakh' or '1.2 Crore')"},
	{ID: StepOperatingProfit, Phase: PhaseFinancials, Field: models.KeyOperatingProfit, Kind: fields.KindSignedMoney, InputType: InputAmount,
		Prompt: "What was your operating profit for the same year?"},
	{ID: StepDebtService, Phase: PhaseFinancials, Field: models.KeyExistingDebtService, Kind: fields.KindOptionalMoney, InputType: InputAmount,
		Prompt: "How much do you currently pay each month towards existing loans? Enter 0 if none."},
	{ID: StepRequestedAmount, Phase: PhaseFinancials, Field: models.KeyRequestedAmount, Kind: fields.KindLoanAmount, InputType: InputAmount,
		Prompt: "How much would you like to borrow? (e.g., '25 Lakh')"},
	{ID: StepPurpose, Phase: PhaseFinancials, Field: models.KeyLoanPurpose, Kind: fields.KindText, InputType: InputText,
		Prompt: "What will the loan be used for?"},

	{ID: StepOfferPresent, Phase: PhaseOffer, InputType: InputPrelimOffer,
		Prompt: "Here is your preliminary offer."},
	{ID: StepUpgradeChoice, Phase: PhaseUpgrade, Field: models.KeyUpgradePath, Kind: fields.KindUpgradeChoice, InputType: InputChoice,
		Prompt: "You may be eligible for a higher limit. Reply 'documents' to upload bank statements, 'consent' to share GST data, or 'none' to keep this offer."},
	{ID: StepUpgradeDocuments, Phase: PhaseUpgrade, Field: models.KeyDocumentsUploaded, Kind: fields.KindYesNo, InputType: InputUpload,
		Prompt: "Please upload your last 12 months of bank statements and reply 'done' when finished."},
	{ID: StepUpgradeConsent, Phase: PhaseUpgrade, Field: models.KeyConsentGranted, Kind: fields.KindYesNo, InputType: InputYesNo,
		Prompt: "Do you consent to us fetching your GST returns to reassess your limit?"},
	{ID: StepRevision, Phase: PhaseRevision, InputType: InputFinalOffer,
		Prompt: "Here is your revised offer."},
	{ID: StepClosure, Phase: PhaseClosure, InputType: InputEnd,
		Prompt: "Thank you. A relationship manager will contact you shortly."},
}

var catalogIndex = func() map[StepID]Step {
	idx := make(map[StepID]Step, len(catalog))
	for _, s := range catalog {
		idx[s.ID] = s
	}
	return idx
}()

// Lookup returns the metadata for a step.
func Lookup(id StepID) (Step, bool) {
	s, ok := catalogIndex[id]
	return s, ok
}

// Steps returns every step in declaration order.
func Steps() []Step {
	out := make([]Step, len(catalog))
	copy(out, catalog)
	return out
}

// PhaseOf returns the phase of a step, defaulting to onboarding.
func PhaseOf(id StepID) Phase {
	if s, ok := catalogIndex[id]; ok {
		return s.Phase
	}
	return PhaseOnboarding
}
