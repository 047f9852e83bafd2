package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"underwriting-workers/internal/models"
	"underwriting-workers/internal/underwriting/policy"
)

func onboarded(isGST interface{}) models.Snapshot {
	return models.Snapshot{
		models.KeyGreeted:         true,
		models.KeyMobile:          "9876543210",
		models.KeyOTPVerified:     true,
		models.KeyApplicantName:   "Asha Rao",
		models.KeyIsGSTRegistered: isGST,
	}
}

func withFinancials(s models.Snapshot) models.Snapshot {
	out, _ := s.Merge(map[string]interface{}{
		models.KeyYearsOperating:      6.0,
		models.KeyAnnualRevenue:       120.0,
		models.KeyOperatingProfit:     18.0,
		models.KeyExistingDebtService: 0.0,
		models.KeyRequestedAmount:     25.0,
		models.KeyLoanPurpose:         "working capital",
	})
	return out
}

func entityA(legalName string) models.Snapshot {
	s, _ := onboarded(true).Merge(map[string]interface{}{
		models.KeyPAN:            "ABCDE1234F",
		models.KeyLegalName:      legalName,
		models.KeyGSTIN:          "07AADCS8891H1ZU",
		models.KeyIndustry:       "Textiles",
		models.KeyLineOfBusiness: "Garment exports",
	})
	return s
}

func TestNextStep_OnboardingOrder(t *testing.T) {
	m := NewMachine(policy.Default())
	s := models.Snapshot{}

	assert.Equal(t, StepGreeting, m.NextStep(s))
	s[models.KeyGreeted] = true
	assert.Equal(t, StepMobile, m.NextStep(s))
	s[models.KeyMobile] = "9876543210"
	assert.Equal(t, StepOTP, m.NextStep(s))
	s[models.KeyOTPVerified] = true
	assert.Equal(t, StepApplicantName, m.NextStep(s))
	s[models.KeyApplicantName] = "Asha Rao"
	assert.Equal(t, StepRegistration, m.NextStep(s))
}

func TestNextStep_TotalOverMalformedSnapshots(t *testing.T) {
	m := NewMachine(policy.Default())

	tests := []struct {
		name string
		s    models.Snapshot
	}{
		{"nil", nil},
		{"branch flag absent", onboarded(nil)},
		{"branch flag string", onboarded("yes")},
		{"branch flag number", onboarded(1.0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			step := m.NextStep(tt.s)
			assert.Equal(t, PhaseOnboarding, PhaseOf(step))
		})
	}
}

func TestNextStep_Idempotent(t *testing.T) {
	m := NewMachine(policy.Default())
	snapshots := []models.Snapshot{
		{},
		onboarded(true),
		onboarded(false),
		entityA("Knight Fintech"),
		withFinancials(entityA("Knight Fintech Pvt Ltd")),
	}
	for _, s := range snapshots {
		before := s.Clone()
		first := m.NextStep(s)
		assert.Equal(t, first, m.NextStep(s))
		assert.Equal(t, before, s, "NextStep must not mutate the snapshot")
	}
}

func TestNextStep_BranchInvariance(t *testing.T) {
	m := NewMachine(policy.Default())

	for _, isGST := range []bool{true, false} {
		forbidden := PhaseEntityB
		if !isGST {
			forbidden = PhaseEntityA
		}

		s := onboarded(isGST)
		answers := []struct{ key, value string }{
			{models.KeyPAN, "ABCDE1234F"},
			{models.KeyLegalName, "Knight Fintech Pvt Ltd"},
			{models.KeyGSTIN, "07AADCS8891H1ZU"},
			{models.KeyIndustry, "Textiles"},
			{models.KeyLineOfBusiness, "Exports"},
			{models.KeyCIN, "U74300WB1987PTC041861"},
		}
		for _, a := range answers {
			assert.NotEqual(t, forbidden, PhaseOf(m.NextStep(s)))
			s[a.key] = a.value
		}
		s = withFinancials(s)
		assert.NotEqual(t, forbidden, PhaseOf(m.NextStep(s)))
	}
}

func TestNextStep_EntityBOrder(t *testing.T) {
	m := NewMachine(policy.Default())
	s := onboarded(false)

	assert.Equal(t, StepBTaxID, m.NextStep(s))
	s[models.KeyPAN] = "ABCDE1234F"
	assert.Equal(t, StepBLegalName, m.NextStep(s))
	s[models.KeyLegalName] = "ABC Traders"
	assert.Equal(t, StepBIndustry, m.NextStep(s))
	s[models.KeyIndustry] = "Retail"
	assert.Equal(t, StepBLineOfBusiness, m.NextStep(s))
	s[models.KeyLineOfBusiness] = "Grocery"
	assert.Equal(t, StepVintage, m.NextStep(s))
}

func TestNextStep_OptionalSteps(t *testing.T) {
	p := policy.Default()
	p.CollectUdyam = true
	p.CollectSignatoryRole = true
	m := NewMachine(p)

	b, _ := onboarded(false).Merge(map[string]interface{}{
		models.KeyPAN:       "ABCDE1234F",
		models.KeyLegalName: "ABC Traders",
	})
	assert.Equal(t, StepBUdyam, m.NextStep(b))
	b[models.KeyUdyam] = models.UdyamNotApplicable
	assert.Equal(t, StepBIndustry, m.NextStep(b))

	a := entityA("Knight Fintech Pvt Ltd")
	a[models.KeyCIN] = "U74300WB1987PTC041861"
	assert.Equal(t, StepASignatoryRole, m.NextStep(a))
	a[models.KeyDINOrRole] = "01234567"
	assert.Equal(t, StepVintage, m.NextStep(a))
}

func TestCompanyIDSkip(t *testing.T) {
	m := NewMachine(policy.Default())

	for _, name := range []string{"Knight Fintech", "ABC Traders"} {
		t.Run(name, func(t *testing.T) {
			s := entityA(name)
			flags := m.DeriveFlags(s)
			assert.Equal(t, true, flags[models.KeyCINSkipped])

			s, _ = s.Merge(flags)
			assert.Equal(t, StepVintage, m.NextStep(s))
		})
	}

	for _, name := range []string{"Knight Fintech Pvt Ltd", "ABC Private Limited"} {
		t.Run(name, func(t *testing.T) {
			s := entityA(name)
			flags := m.DeriveFlags(s)
			assert.NotContains(t, flags, models.KeyCINSkipped)
			assert.Equal(t, StepACompanyID, m.NextStep(s))
		})
	}
}

func TestCompanyIDSkip_FrozenAfterRename(t *testing.T) {
	m := NewMachine(policy.Default())
	s := entityA("Knight Fintech")
	s, _ = s.Merge(m.DeriveFlags(s))

	s[models.KeyLegalName] = "Knight Fintech Pvt Ltd"

	assert.Equal(t, StepVintage, m.NextStep(s))
}

func TestNextStep_FinancialsThenOffer(t *testing.T) {
	m := NewMachine(policy.Default())
	s := entityA("Knight Fintech Pvt Ltd")
	s[models.KeyCIN] = "U74300WB1987PTC041861"

	order := []struct {
		step  StepID
		key   string
		value interface{}
	}{
		{StepVintage, models.KeyYearsOperating, 6.0},
		{StepRevenue, models.KeyAnnualRevenue, 120.0},
		{StepOperatingProfit, models.KeyOperatingProfit, 18.0},
		{StepDebtService, models.KeyExistingDebtService, 0.0},
		{StepRequestedAmount, models.KeyRequestedAmount, 25.0},
		{StepPurpose, models.KeyLoanPurpose, "working capital"},
	}
	for _, o := range order {
		require.Equal(t, o.step, m.NextStep(s))
		s[o.key] = o.value
	}
	assert.Equal(t, StepOfferPresent, m.NextStep(s), "zero debt service counts as an answer")

	s[models.KeyApprovedAmount] = 15.0
	s[models.KeyOfferGenerated] = true
	assert.Equal(t, StepUpgradeChoice, m.NextStep(s))
}

func TestNextStep_UpgradePaths(t *testing.T) {
	m := NewMachine(policy.Default())
	base := withFinancials(entityA("Knight Fintech Pvt Ltd"))
	base[models.KeyCIN] = "U74300WB1987PTC041861"
	base[models.KeyApprovedAmount] = 15.0
	base[models.KeyOfferGenerated] = true

	tests := []struct {
		name   string
		fields map[string]interface{}
		want   StepID
	}{
		{"none closes", map[string]interface{}{models.KeyUpgradePath: models.UpgradeNone}, StepClosure},
		{"documents asks upload", map[string]interface{}{models.KeyUpgradePath: models.UpgradeDocuments}, StepUpgradeDocuments},
		{"documents uploaded revises", map[string]interface{}{
			models.KeyUpgradePath: models.UpgradeDocuments, models.KeyDocumentsUploaded: true}, StepRevision},
		{"documents withdrawn closes", map[string]interface{}{
			models.KeyUpgradePath: models.UpgradeDocuments, models.KeyDocumentsUploaded: false}, StepClosure},
		{"consent asks", map[string]interface{}{models.KeyUpgradePath: models.UpgradeConsent}, StepUpgradeConsent},
		{"consent granted revises", map[string]interface{}{
			models.KeyUpgradePath: models.UpgradeConsent, models.KeyConsentGranted: true}, StepRevision},
		{"revised closes", map[string]interface{}{
			models.KeyUpgradePath: models.UpgradeConsent, models.KeyConsentGranted: true, models.KeyOfferRevised: true}, StepClosure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := base.Merge(tt.fields)
			assert.Equal(t, tt.want, m.NextStep(s))
		})
	}
}

func TestNextStep_ClosedShortCircuits(t *testing.T) {
	m := NewMachine(policy.Default())
	s := onboarded(true)
	s[models.KeyApplicationClosed] = true

	assert.Equal(t, StepClosure, m.NextStep(s))
}

func TestDeriveFlags(t *testing.T) {
	m := NewMachine(policy.Default())

	assert.Empty(t, m.DeriveFlags(models.Snapshot{}))

	flags := m.DeriveFlags(onboarded(false))
	assert.Equal(t, map[string]interface{}{models.KeyOnboardingComplete: true}, flags)

	s := withFinancials(entityA("Knight Fintech"))
	s[models.KeyExistingDebtService] = 1.0
	flags = m.DeriveFlags(s)
	assert.Equal(t, true, flags[models.KeyCINSkipped])
	assert.Equal(t, true, flags[models.KeyOnboardingComplete])
	assert.Equal(t, true, flags[models.KeyEntityComplete])
	assert.Equal(t, true, flags[models.KeyFinancialsComplete])
	assert.Equal(t, 1.5, flags[models.KeyDSCR])

	s, _ = s.Merge(flags)
	assert.Empty(t, m.DeriveFlags(s), "recorded flags are not re-emitted")
}

func TestDSCR(t *testing.T) {
	_, ok := DSCR(models.Snapshot{models.KeyOperatingProfit: 18.0, models.KeyExistingDebtService: 0.0})
	assert.False(t, ok)

	v, ok := DSCR(models.Snapshot{models.KeyOperatingProfit: 10.0, models.KeyExistingDebtService: 0.5})
	require.True(t, ok)
	assert.Equal(t, 1.67, v)

	v, ok = DSCR(models.Snapshot{models.KeyOperatingProfit: -6.0, models.KeyExistingDebtService: 0.5})
	require.True(t, ok)
	assert.Equal(t, -1.0, v)
}

func TestSteps_CatalogComplete(t *testing.T) {
	m := NewMachine(policy.Default())
	for _, s := range Steps() {
		_, ok := m.done[s.ID]
		assert.True(t, ok, "missing completion predicate for %s", s.ID)
		if s.ID != StepClosure {
			assert.NotEmpty(t, m.transitions[s.ID], "missing transitions for %s", s.ID)
		}
		if !s.Automatic() {
			assert.NotEmpty(t, s.Kind, "collect step %s has no validator", s.ID)
		}
	}
}
