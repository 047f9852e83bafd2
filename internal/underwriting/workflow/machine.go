// Package workflow decides which intake step an application is on. The
// decision depends only on the snapshot and the policy, never on call order.
package workflow

import (
	"math"

	"underwriting-workers/internal/models"
	"underwriting-workers/internal/underwriting/policy"
)

type predicate func(s models.Snapshot) bool

type transition struct {
	when predicate
	next StepID
}

// Machine is an explicit transition table over the closed step set.
type Machine struct {
	policy      policy.Policy
	done        map[StepID]predicate
	transitions map[StepID][]transition
}

func always(models.Snapshot) bool { return true }

func present(key string) predicate {
	return func(s models.Snapshot) bool { return s.Present(key) }
}

func flagged(key string) predicate {
	return func(s models.Snapshot) bool { return s.Flag(key) }
}

func equals(key, value string) predicate {
	return func(s models.Snapshot) bool { return s.String(key) == value }
}

// NewMachine builds the transition table for a policy.
func NewMachine(p policy.Policy) *Machine {
	m := &Machine{policy: p}

	collectRole := func(models.Snapshot) bool { return p.CollectSignatoryRole }
	collectUdyam := func(models.Snapshot) bool { return p.CollectUdyam }

	m.done = map[StepID]predicate{
		StepGreeting:      present(models.KeyGreeted),
		StepMobile:        present(models.KeyMobile),
		StepOTP:           flagged(models.KeyOTPVerified),
		StepApplicantName: present(models.KeyApplicantName),
		StepRegistration: func(s models.Snapshot) bool {
			_, ok := s.Bool(models.KeyIsGSTRegistered)
			return ok
		},

		StepATaxID:          present(models.KeyPAN),
		StepALegalName:      present(models.KeyLegalName),
		StepAGSTIN:          present(models.KeyGSTIN),
		StepAIndustry:       present(models.KeyIndustry),
		StepALineOfBusiness: present(models.KeyLineOfBusiness),
		StepACompanyID: func(s models.Snapshot) bool {
			return s.Present(models.KeyCIN) || s.Flag(models.KeyCINSkipped)
		},
		StepASignatoryRole: present(models.KeyDINOrRole),

		StepBTaxID:          present(models.KeyPAN),
		StepBLegalName:      present(models.KeyLegalName),
		StepBUdyam:          present(models.KeyUdyam),
		StepBIndustry:       present(models.KeyIndustry),
		StepBLineOfBusiness: present(models.KeyLineOfBusiness),

		StepVintage:         present(models.KeyYearsOperating),
		StepRevenue:         present(models.KeyAnnualRevenue),
		StepOperatingProfit: present(models.KeyOperatingProfit),
		StepDebtService:     present(models.KeyExistingDebtService),
		StepRequestedAmount: present(models.KeyRequestedAmount),
		StepPurpose:         present(models.KeyLoanPurpose),

		StepOfferPresent: func(s models.Snapshot) bool {
			return s.Flag(models.KeyOfferGenerated) && s.Present(models.KeyApprovedAmount)
		},
		StepUpgradeChoice:    present(models.KeyUpgradePath),
		StepUpgradeDocuments: present(models.KeyDocumentsUploaded),
		StepUpgradeConsent:   present(models.KeyConsentGranted),
		StepRevision:         flagged(models.KeyOfferRevised),
		StepClosure:          func(models.Snapshot) bool { return false },
	}

	m.transitions = map[StepID][]transition{
		StepGreeting:      {{always, StepMobile}},
		StepMobile:        {{always, StepOTP}},
		StepOTP:           {{always, StepApplicantName}},
		StepApplicantName: {{always, StepRegistration}},
		StepRegistration: {
			{flagged(models.KeyIsGSTRegistered), StepATaxID},
			{always, StepBTaxID},
		},

		StepATaxID:     {{always, StepALegalName}},
		StepALegalName: {{always, StepAGSTIN}},
		StepAGSTIN:     {{always, StepAIndustry}},
		StepAIndustry:  {{always, StepALineOfBusiness}},
		StepALineOfBusiness: {
			{m.needsCompanyID, StepACompanyID},
			{collectRole, StepASignatoryRole},
			{always, StepVintage},
		},
		StepACompanyID: {
			{collectRole, StepASignatoryRole},
			{always, StepVintage},
		},
		StepASignatoryRole: {{always, StepVintage}},

		StepBTaxID: {{always, StepBLegalName}},
		StepBLegalName: {
			{collectUdyam, StepBUdyam},
			{always, StepBIndustry},
		},
		StepBUdyam:          {{always, StepBIndustry}},
		StepBIndustry:       {{always, StepBLineOfBusiness}},
		StepBLineOfBusiness: {{always, StepVintage}},

		StepVintage:         {{always, StepRevenue}},
		StepRevenue:         {{always, StepOperatingProfit}},
		StepOperatingProfit: {{always, StepDebtService}},
		StepDebtService:     {{always, StepRequestedAmount}},
		StepRequestedAmount: {{always, StepPurpose}},
		StepPurpose:         {{always, StepOfferPresent}},

		StepOfferPresent: {{always, StepUpgradeChoice}},
		StepUpgradeChoice: {
			{equals(models.KeyUpgradePath, models.UpgradeDocuments), StepUpgradeDocuments},
			{equals(models.KeyUpgradePath, models.UpgradeConsent), StepUpgradeConsent},
			{always, StepClosure},
		},
		StepUpgradeDocuments: {
			{flagged(models.KeyDocumentsUploaded), StepRevision},
			{always, StepClosure},
		},
		StepUpgradeConsent: {
			{flagged(models.KeyConsentGranted), StepRevision},
			{always, StepClosure},
		},
		StepRevision: {{always, StepClosure}},
	}

	return m
}

// NextStep returns the first step of the walk from the greeting whose
// completion predicate does not hold. It is total: any snapshot, including an
// empty or malformed one, yields a step.
func (m *Machine) NextStep(s models.Snapshot) StepID {
	if s.Flag(models.KeyApplicationClosed) {
		return StepClosure
	}

	cur := StepGreeting
	for hops := 0; hops <= len(catalog); hops++ {
		done, ok := m.done[cur]
		if !ok || !done(s) {
			return cur
		}
		next, moved := m.advance(cur, s)
		if !moved {
			return cur
		}
		cur = next
	}
	return cur
}

func (m *Machine) advance(cur StepID, s models.Snapshot) (StepID, bool) {
	for _, t := range m.transitions[cur] {
		if t.when(s) {
			return t.next, true
		}
	}
	return cur, false
}

// needsCompanyID is frozen once the skip flag is written, so a later edit to
// the legal name cannot reopen the step.
func (m *Machine) needsCompanyID(s models.Snapshot) bool {
	if s.Flag(models.KeyCINSkipped) {
		return false
	}
	return m.policy.RequiresCompanyID(s.String(models.KeyLegalName))
}

// DeriveFlags returns the flow-control facts that now hold for s but are not yet
// recorded. Existing flags are never cleared.
func (m *Machine) DeriveFlags(s models.Snapshot) map[string]interface{} {
	out := map[string]interface{}{}

	if isGST, ok := s.Bool(models.KeyIsGSTRegistered); ok && isGST &&
		s.Present(models.KeyLegalName) && !s.Present(models.KeyCIN) && !s.Flag(models.KeyCINSkipped) &&
		!m.policy.RequiresCompanyID(s.String(models.KeyLegalName)) {
		out[models.KeyCINSkipped] = true
	}

	// Evaluate phase progress with the skip flag applied.
	view := s
	if len(out) > 0 {
		view, _ = s.Merge(out)
	}
	rank := phaseRank[PhaseOf(m.NextStep(view))]
	if view.Flag(models.KeyApplicationClosed) {
		rank = -1
	}

	setIf := func(key string, cond bool) {
		if cond && !s.Flag(key) {
			out[key] = true
		}
	}
	setIf(models.KeyOnboardingComplete, rank > phaseRank[PhaseOnboarding])
	setIf(models.KeyEntityComplete, rank > phaseRank[PhaseEntityA])
	setIf(models.KeyFinancialsComplete, rank > phaseRank[PhaseFinancials])

	if !s.Present(models.KeyDSCR) {
		if dscr, ok := DSCR(s); ok {
			out[models.KeyDSCR] = dscr
		}
	}
	return out
}

// DSCR is annual operating profit over annual debt service, rounded to two
// places. It is only defined when monthly debt service is positive.
func DSCR(s models.Snapshot) (float64, bool) {
	profit, okP := s.Float(models.KeyOperatingProfit)
	debt, okD := s.Float(models.KeyExistingDebtService)
	if !okP || !okD || debt <= 0 {
		return 0, false
	}
	return math.Round(profit/(debt*12)*100) / 100, true
}

// Policy returns the policy the machine routes under.
func (m *Machine) Policy() policy.Policy {
	return m.policy
}
