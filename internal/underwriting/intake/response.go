package intake

import (
	"underwriting-workers/internal/models"
	"underwriting-workers/internal/underwriting/offer"
	"underwriting-workers/internal/underwriting/workflow"
)

// Status tells the caller how to render the response.
type Status string

const (
	StatusOK           Status = "OK"
	StatusReask        Status = "REASK"
	StatusPolicyBlock  Status = "POLICY_BLOCK"
	StatusInputBlocked Status = "INPUT_BLOCKED"
	StatusClosed       Status = "CLOSED"
)

// Closure reasons
const (
	ClosureCompleted       = "completed"
	ClosureOfferAccepted   = "offer_accepted"
	ClosureUpgradeDeclined = "upgrade_withdrawn"
	ClosureIndustryBlocked = "industry_blocked"
)

// Trigger records a downstream process an answer would kick off. It is
// observability metadata only.
type Trigger struct {
	Agent  string `json:"agent"`
	Action string `json:"action"`
	Status string `json:"status"`
}

// ErrorInfo carries a rejected answer's kind, code and user-facing message.
type ErrorInfo struct {
	Kind    string `json:"kind"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Response is what the applicant's client renders after one answer.
type Response struct {
	Status      Status          `json:"status"`
	Step        workflow.StepID `json:"step"`
	Phase       workflow.Phase  `json:"phase"`
	InputType   string          `json:"inputType"`
	Message     string          `json:"message"`
	Error       *ErrorInfo      `json:"error,omitempty"`
	Offer       *offer.Offer    `json:"offer,omitempty"`
	Triggers    []Trigger       `json:"triggers"`
	AddedFields []string        `json:"addedFields"`
}

// Result is the new snapshot plus the response for one call to Advance.
type Result struct {
	Snapshot models.Snapshot `json:"snapshot"`
	Response Response        `json:"response"`
}
