// internal/workers/underwriting/compute-offer/models.go
package computeoffer

import "underwriting-workers/internal/underwriting/offer"

type Input struct {
	ApplicationID string                 `json:"applicationId"`
	PolicyProfile string                 `json:"policyProfile"`
	Snapshot      map[string]interface{} `json:"snapshot"`
	Mode          string                 `json:"mode"` // initial, consentRevision or documentRevision
}

type Output struct {
	Offer       *offer.Offer           `json:"offer"`
	OfferFields map[string]interface{} `json:"offerFields"`
	Summary     string                 `json:"summary"`
	Disclaimer  string                 `json:"disclaimer"`
}
