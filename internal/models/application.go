// internal/models/application.go
package models

// Lead is the persisted record of a closed loan application, handed to the
// relationship-manager queue.
type Lead struct {
	ID             string                 `json:"id"`
	ApplicationID  string                 `json:"applicationId"`
	ApplicantName  string                 `json:"applicantName"`
	LegalName      string                 `json:"legalName"`
	GSTRegistered  bool                   `json:"gstRegistered"`
	LoanType       string                 `json:"loanType,omitempty"`
	ApprovedAmount float64                `json:"approvedAmount,omitempty"`
	InterestRate   float64                `json:"interestRate,omitempty"`
	TenureMonths   int                    `json:"tenureMonths,omitempty"`
	Status         string                 `json:"status"`
	ClosureReason  string                 `json:"closureReason,omitempty"`
	Summary        map[string]interface{} `json:"summary"`
	CreatedAt      string                 `json:"createdAt"`
}

// Lead statuses
const (
	LeadStatusOffered  = "offered"
	LeadStatusRevised  = "revised"
	LeadStatusBlocked  = "blocked"
	LeadStatusDeclined = "declined"
)
