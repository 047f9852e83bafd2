// internal/common/validation/snapshot.go
package validation

import "underwriting-workers/internal/models"

var (
	booleanKeys = []string{
		models.KeyGreeted, models.KeyOTPVerified, models.KeyIsGSTRegistered,
		models.KeyCINSkipped, models.KeyDocumentsUploaded, models.KeyConsentGranted,
		models.KeyUpgradeWithdrawn, models.KeyOnboardingComplete, models.KeyEntityComplete,
		models.KeyFinancialsComplete, models.KeyOfferGenerated, models.KeyOfferRevised,
		models.KeyApplicationClosed,
	}
	numberKeys = []string{
		models.KeyYearsOperating, models.KeyAnnualRevenue, models.KeyOperatingProfit,
		models.KeyExistingDebtService, models.KeyRequestedAmount, models.KeyDSCR,
		models.KeyApprovedAmount, models.KeyInterestRate, models.KeyTenureMonths,
		models.KeyMonthlyPayout, models.KeyOriginalApprovedAmount, models.KeyOriginalTenureMonths,
		models.KeyOriginalInterestRate, models.KeyPreviousApprovedAmount, models.KeyApprovedChangePct,
	}
)

var snapshotSchema = MustCompile(buildSnapshotSchema())

func buildSnapshotSchema() map[string]interface{} {
	primitive := []interface{}{"string", "number", "boolean", "null"}

	props := map[string]interface{}{
		models.KeyUpgradePath: map[string]interface{}{
			"type": []interface{}{"string", "null"},
			"enum": []interface{}{models.UpgradeDocuments, models.UpgradeConsent, models.UpgradeNone, "", nil},
		},
		// Bureau scores arrive from upstream systems as either form.
		models.KeyRiskScore: map[string]interface{}{"type": []interface{}{"number", "string", "null"}},
	}
	for _, k := range booleanKeys {
		props[k] = map[string]interface{}{"type": []interface{}{"boolean", "null"}}
	}
	for _, k := range numberKeys {
		props[k] = map[string]interface{}{"type": []interface{}{"number", "null"}}
	}

	return map[string]interface{}{
		"type":                 "object",
		"properties":           props,
		"additionalProperties": map[string]interface{}{"type": primitive},
	}
}

// ValidateSnapshot checks that s is a flat map of primitives and that the keys
// the workflow reads carry the expected types.
func ValidateSnapshot(s map[string]interface{}) *ValidationResult {
	if s == nil {
		return &ValidationResult{Valid: true}
	}
	return snapshotSchema.Validate(s)
}
