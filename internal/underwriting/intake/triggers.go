package intake

import (
	"fmt"

	"underwriting-workers/internal/models"
)

type triggerRule struct {
	key   string
	build func(s models.Snapshot) []Trigger
}

func fixed(agent, action, status string) func(models.Snapshot) []Trigger {
	return func(models.Snapshot) []Trigger {
		return []Trigger{{Agent: agent, Action: action, Status: status}}
	}
}

func whenFlag(key string, t Trigger) func(models.Snapshot) []Trigger {
	return func(s models.Snapshot) []Trigger {
		if !s.Flag(key) {
			return nil
		}
		return []Trigger{t}
	}
}

// triggerRules fire in this order when their key was written during the call.
var triggerRules = []triggerRule{
	{models.KeyMobile, fixed("FRAUD_CHECK_AGENT", "Scanning blacklist and mobile vintage.", "Trigger OTP")},
	{models.KeyOTPVerified, func(models.Snapshot) []Trigger {
		return []Trigger{
			{Agent: "OTP_VAL", Action: "Authenticating session token.", Status: "Verified"},
			{Agent: "BUREAU_AGENT", Action: "Triggered CIC soft-pull.", Status: "BUREAU_PULL"},
		}
	}},
	{models.KeyApplicantName, fixed("IDENTITY_VERIFICATION_AGENT", "Validating applicant name against PAN records.", "Applicant Logged")},
	{models.KeyIsGSTRegistered, func(s models.Snapshot) []Trigger {
		path := "GST_MCA-non_registered"
		if s.Flag(models.KeyIsGSTRegistered) {
			path = "GST_registered"
		}
		return []Trigger{{Agent: "ROUTING_LOGIC", Action: fmt.Sprintf("Directing to workflow=%s.", path), Status: "ROUTE"}}
	}},
	{models.KeyPAN, fixed("PAN_VAL_AGENT", "Validating PAN status and ownership.", "PAN Verified")},
	{models.KeyGSTIN, fixed("GSTN_AGENT", "Extracting trade name, legal name and active GSTNs.", "Data Phase 1 Complete")},
	{models.KeyCIN, fixed("MCA_ORCHESTRATOR", "Syncing with MCA master data for director names and status.", "MCA Sync Complete")},
	{models.KeyDINOrRole, fixed("DIRECTOR_VERIFICATION_AGENT", "Validating DIN state and eligibility.", "Role Verified")},
	{models.KeyUdyam, func(s models.Snapshot) []Trigger {
		status := "UDYAM Verified"
		if s.String(models.KeyUdyam) == models.UdyamNotApplicable {
			status = "Validate manual industry"
		}
		return []Trigger{{Agent: "UDYAM_AGENT", Action: "Udyam lookup: " + s.String(models.KeyUdyam), Status: status}}
	}},
	{models.KeyIndustry, fixed("SECTOR_AGENT", "Benchmarking industry-specific risk parameters.", "Sector Mapped")},
	{models.KeyAnnualRevenue, fixed("OFFER_INPUT", "Extracting numerical features for financial benchmarking.", "Revenue Mapped")},
	{models.KeyDSCR, func(s models.Snapshot) []Trigger {
		v, _ := s.Float(models.KeyDSCR)
		return []Trigger{{Agent: "DSCR_ENGINE", Action: fmt.Sprintf("DSCR computed = %.2fx", v), Status: "Computed"}}
	}},
	{models.KeyRequestedAmount, fixed("BUREAU_AGENT", "Obligation impact analysis. Eligibility computation initiated.", "Eligibility Computing")},
	{models.KeyLoanPurpose, fixed("CLASSIFICATION_AGENT", "Mapping loan purpose to product sub-category.", "Purpose Classified")},
	{models.KeyOfferGenerated, fixed("OFFER_STRATEGY_ENGINE", "Preliminary offer generated.", "Prelim Offer")},
	{models.KeyUpgradePath, func(s models.Snapshot) []Trigger {
		path := s.String(models.KeyUpgradePath)
		if path == models.UpgradeNone {
			return nil
		}
		return []Trigger{{Agent: "OFFER_STRATEGY_ENGINE", Action: "User opted for enhanced limit via " + path + ".", Status: "Upsell Opt-in"}}
	}},
	{models.KeyConsentGranted, whenFlag(models.KeyConsentGranted,
		Trigger{Agent: "GST_CONSENT_ORCHESTRATOR", Action: "Requesting digital consent token.", Status: "Consent Pending"})},
	{models.KeyDocumentsUploaded, whenFlag(models.KeyDocumentsUploaded,
		Trigger{Agent: "BSA_AGENT", Action: "Extracting transaction patterns from bank statements.", Status: "BSA Processing"})},
	{models.KeyOfferRevised, fixed("CREDIT_POLICY_ENGINE", "Offer finalization.", "Offer Finalized")},
	{models.KeyApplicationClosed, fixed("WORKFLOW_EXIT", "Dispatching lead to relationship manager.", "Lead Exported")},
}

func triggersFor(s models.Snapshot, added []string) []Trigger {
	seen := make(map[string]bool, len(added))
	for _, k := range added {
		seen[k] = true
	}
	out := []Trigger{}
	for _, rule := range triggerRules {
		if seen[rule.key] {
			out = append(out, rule.build(s)...)
		}
	}
	return out
}
