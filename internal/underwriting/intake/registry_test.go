package intake

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "underwriting-workers/internal/common/errors"
	"underwriting-workers/internal/models"
	"underwriting-workers/internal/underwriting/policy"
	"underwriting-workers/internal/underwriting/workflow"
)

func TestRegistry_ProfilesRunSideBySide(t *testing.T) {
	r, err := NewRegistry(map[string]policy.Policy{
		"msme-lite": {MaxLoanAmount: 50, CollectUdyam: true},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"default", "msme-lite"}, r.Profiles())

	def, err := r.Get("")
	require.NoError(t, err)
	lite, err := r.Get("msme-lite")
	require.NoError(t, err)

	s := models.Snapshot{
		models.KeyGreeted: true, models.KeyMobile: "9876543210", models.KeyOTPVerified: true,
		models.KeyApplicantName: "Asha Rao", models.KeyIsGSTRegistered: false,
		models.KeyPAN: "ABCDE1234F", models.KeyLegalName: "ABC Traders",
	}
	assert.Equal(t, workflow.StepBIndustry, def.Machine().NextStep(s))
	assert.Equal(t, workflow.StepBUdyam, lite.Machine().NextStep(s))

	_, err = lite.Validator().ValidateLoanAmount("80 lakh")
	assert.True(t, apperrors.IsPolicyBlock(err))
	_, err = def.Validator().ValidateLoanAmount("80 lakh")
	assert.NoError(t, err)
}

func TestRegistry_UnknownProfile(t *testing.T) {
	r, err := NewRegistry(nil)
	require.NoError(t, err)

	_, err = r.Get("gold")

	stdErr, ok := apperrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeUnknownPolicyProfile, stdErr.Code)
}

func TestRegistry_InvalidProfile(t *testing.T) {
	_, err := NewRegistry(map[string]policy.Policy{
		"broken": {MinLoanAmount: 500, MaxLoanAmount: 100},
	})
	assert.Error(t, err)
}
