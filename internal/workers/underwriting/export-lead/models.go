// internal/workers/underwriting/export-lead/models.go
package exportlead

type Input struct {
	ApplicationID string                 `json:"applicationId"`
	Snapshot      map[string]interface{} `json:"snapshot"`
}

type Output struct {
	LeadID     string `json:"leadId"`
	LeadStatus string `json:"leadStatus"`
	Duplicate  bool   `json:"duplicate"`
	Notified   bool   `json:"notified"`
	ExportedAt string `json:"exportedAt"`
}

// Export progress recorded under the dedupe key.
const (
	statePending  = "pending"
	stateStored   = "stored"
	stateNotified = "notified"
)
