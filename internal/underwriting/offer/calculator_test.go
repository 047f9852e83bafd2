package offer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "underwriting-workers/internal/common/errors"
	"underwriting-workers/internal/models"
	"underwriting-workers/internal/underwriting/policy"
)

func workingCapitalSnapshot() models.Snapshot {
	return models.Snapshot{
		models.KeyRequestedAmount: 25.0,
		models.KeyLoanPurpose:     "working capital",
		models.KeyRiskScore:       760.0,
	}
}

func TestCompute_InitialRevolving(t *testing.T) {
	c := NewCalculator(policy.Default())

	o, err := c.Compute(workingCapitalSnapshot(), ModeInitial)

	require.NoError(t, err)
	assert.Equal(t, Revolving, o.LoanType)
	assert.Equal(t, "12 months", o.Tenure)
	assert.Equal(t, 12, o.TenureMonths)
	assert.Equal(t, 15.0, o.ApprovedAmount)
	assert.Equal(t, policy.Default().LowestRate(), o.InterestRate)
	assert.Equal(t, 17500.0, o.MonthlyPayout)
	assert.Equal(t, "₹17,500", o.MonthlyPayoutFormatted)
	assert.Equal(t, 15.0, o.OriginalApprovedAmount)
	assert.NotContains(t, o.Fields(), models.KeyRevisionMode)
}

func TestCompute_DocumentRevisionKeepsStructureAndRate(t *testing.T) {
	c := NewCalculator(policy.Default())
	first, err := c.Compute(workingCapitalSnapshot(), ModeInitial)
	require.NoError(t, err)
	s, _ := workingCapitalSnapshot().Merge(first.Fields())

	revised, err := c.Compute(s, ModeDocumentRevision)

	require.NoError(t, err)
	assert.Equal(t, 17.25, revised.ApprovedAmount)
	assert.Equal(t, first.LoanType, revised.LoanType)
	assert.Equal(t, first.TenureMonths, revised.TenureMonths)
	assert.Equal(t, first.InterestRate, revised.InterestRate)
	assert.Equal(t, 15.0, revised.PreviousApprovedAmount)
	assert.Equal(t, 15.0, revised.ApprovedChangePct)
	assert.Equal(t, string(ModeDocumentRevision), revised.Fields()[models.KeyRevisionMode])
}

func TestCompute_ConsentRevision(t *testing.T) {
	c := NewCalculator(policy.Default())
	first, err := c.Compute(workingCapitalSnapshot(), ModeInitial)
	require.NoError(t, err)
	s, _ := workingCapitalSnapshot().Merge(first.Fields())

	revised, err := c.Compute(s, ModeConsentRevision)

	require.NoError(t, err)
	assert.Equal(t, 28.75, revised.ApprovedAmount, "consent scales the requested amount")
	assert.Equal(t, 13.5, revised.InterestRate)
	assert.Equal(t, Revolving, revised.LoanType)
	assert.Equal(t, 12, revised.TenureMonths)
}

func TestCompute_ConsentDiscountFloored(t *testing.T) {
	p := policy.Default()
	p.MinRate = policy.Float64(13.8)
	c := NewCalculator(p)

	revised, err := c.Compute(workingCapitalSnapshot(), ModeConsentRevision)

	require.NoError(t, err)
	assert.Equal(t, 13.8, revised.InterestRate)
}

func TestCompute_ZeroConsentDiscountConfigured(t *testing.T) {
	p := policy.Policy{
		ConsentRateDiscount: policy.Float64(0),
		MinRate:             policy.Float64(0),
	}.WithDefaults()
	require.NoError(t, p.Validate())
	c := NewCalculator(p)

	first, err := c.Compute(workingCapitalSnapshot(), ModeInitial)
	require.NoError(t, err)
	s, _ := workingCapitalSnapshot().Merge(first.Fields())
	revised, err := c.Compute(s, ModeConsentRevision)

	require.NoError(t, err)
	assert.Equal(t, first.InterestRate, revised.InterestRate, "a zero discount leaves the rate unchanged")
}

func TestCompute_ZeroDefaultRiskScoreConfigured(t *testing.T) {
	p := policy.Policy{DefaultRiskScore: policy.Int(0)}.WithDefaults()
	c := NewCalculator(p)

	o, err := c.Compute(models.Snapshot{models.KeyRequestedAmount: 20.0}, ModeInitial)

	require.NoError(t, err)
	assert.Equal(t, 0, o.RiskScore)
	assert.Equal(t, 19.0, o.InterestRate)
}

func TestCompute_RevisionWithoutPriorOfferDerivesFromBase(t *testing.T) {
	c := NewCalculator(policy.Default())

	revised, err := c.Compute(workingCapitalSnapshot(), ModeDocumentRevision)

	require.NoError(t, err)
	assert.Equal(t, 17.25, revised.ApprovedAmount)
	assert.Equal(t, Revolving, revised.LoanType)
	assert.Equal(t, 15.0, revised.OriginalApprovedAmount)
}

func TestCompute_InstallmentTenureTiers(t *testing.T) {
	c := NewCalculator(policy.Default())
	tests := []struct {
		requested float64
		approved  float64
		months    int
	}{
		{10, 6, 12},
		{16, 9.6, 12},
		{40, 24, 24},
		{50, 30, 36},
	}
	for _, tt := range tests {
		o, err := c.Compute(models.Snapshot{
			models.KeyRequestedAmount: tt.requested,
			models.KeyLoanPurpose:     "new machinery",
		}, ModeInitial)
		require.NoError(t, err)
		assert.Equal(t, Installment, o.LoanType)
		assert.Equal(t, tt.approved, o.ApprovedAmount)
		assert.Equal(t, tt.months, o.TenureMonths, "requested %v", tt.requested)
		assert.Equal(t, 15.5, o.InterestRate, "default risk score sits in the 700 tier")
	}
}

func TestCompute_StructureStableAcrossRevisions(t *testing.T) {
	c := NewCalculator(policy.Default())
	s := models.Snapshot{
		models.KeyRequestedAmount: 40.0,
		models.KeyLoanPurpose:     "new machinery",
		models.KeyRiskScore:       655.0,
	}
	first, err := c.Compute(s, ModeInitial)
	require.NoError(t, err)
	s, _ = s.Merge(first.Fields())

	// A later purpose edit must not flip the structure.
	s[models.KeyLoanPurpose] = "inventory"

	for _, mode := range []Mode{ModeDocumentRevision, ModeConsentRevision, ModeDocumentRevision} {
		o, err := c.Compute(s, mode)
		require.NoError(t, err)
		assert.Equal(t, first.LoanType, o.LoanType, mode)
		assert.Equal(t, first.TenureMonths, o.TenureMonths, mode)
		s, _ = s.Merge(o.Fields())
	}
}

func TestCompute_RiskScoreClampedAndDefaulted(t *testing.T) {
	c := NewCalculator(policy.Default())
	tests := []struct {
		score interface{}
		rate  float64
	}{
		{nil, 15.5},
		{9999.0, 14.0},
		{-20.0, 19.0},
		{"680", 17.0},
	}
	for _, tt := range tests {
		s := models.Snapshot{models.KeyRequestedAmount: 20.0, models.KeyRiskScore: tt.score}
		o, err := c.Compute(s, ModeInitial)
		require.NoError(t, err)
		assert.Equal(t, tt.rate, o.InterestRate, "score %v", tt.score)
	}
}

func TestCompute_Errors(t *testing.T) {
	c := NewCalculator(policy.Default())

	_, err := c.Compute(models.Snapshot{}, ModeInitial)
	stdErr, ok := apperrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeOfferInputMissing, stdErr.Code)

	_, err = c.Compute(workingCapitalSnapshot(), Mode("bonus"))
	stdErr, ok = apperrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeInvalidOfferMode, stdErr.Code)
}

func TestMonthlyPayout(t *testing.T) {
	assert.Equal(t, 8885.0, MonthlyPayout(Installment, 100000, 12, 12))
	assert.Equal(t, 10000.0, MonthlyPayout(Installment, 120000, 0, 12), "zero rate degenerates to P/n")
	assert.Equal(t, 1000.0, MonthlyPayout(Revolving, 100000, 12, 12))
	assert.Equal(t, 0.0, MonthlyPayout(Installment, 100000, 12, 0))
}

func TestFormatINR(t *testing.T) {
	tests := map[float64]string{
		0:         "₹0",
		500:       "₹500",
		1000:      "₹1,000",
		187500:    "₹1,87,500",
		1234567:   "₹12,34,567",
		123456789: "₹12,34,56,789",
		-17500:    "-₹17,500",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatINR(in))
	}
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeInitial, m)

	m, err = ParseMode("consentRevision")
	require.NoError(t, err)
	assert.Equal(t, ModeConsentRevision, m)

	_, err = ParseMode("CONSENT")
	assert.Error(t, err)
}
