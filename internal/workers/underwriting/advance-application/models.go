// internal/workers/underwriting/advance-application/models.go
package advanceapplication

import "underwriting-workers/internal/underwriting/intake"

type Input struct {
	ApplicationID string                 `json:"applicationId"`
	PolicyProfile string                 `json:"policyProfile"`
	Snapshot      map[string]interface{} `json:"snapshot"`
	Answer        string                 `json:"answer"`
}

type Output struct {
	Snapshot          map[string]interface{} `json:"snapshot"`
	Response          intake.Response        `json:"response"`
	CurrentStep       string                 `json:"currentStep"`
	ApplicationClosed bool                   `json:"applicationClosed"`
	OfferGenerated    bool                   `json:"offerGenerated"`
}
