// internal/models/notification.go
package models

// LeadNotification is the message published to the relationship-manager topic
// when a lead is exported. It never carries raw contact or tax identifiers.
type LeadNotification struct {
	LeadID         string  `json:"leadId"`
	ApplicationID  string  `json:"applicationId"`
	ApplicantName  string  `json:"applicantName"`
	LegalName      string  `json:"legalName"`
	Status         string  `json:"status"`
	ClosureReason  string  `json:"closureReason,omitempty"`
	LoanType       string  `json:"loanType,omitempty"`
	ApprovedAmount float64 `json:"approvedAmount,omitempty"`
	InterestRate   float64 `json:"interestRate,omitempty"`
	MonthlyPayout  string  `json:"monthlyPayout,omitempty"`
	CreatedAt      string  `json:"createdAt"`
}

// NotificationFor builds the topic message for lead.
func NotificationFor(lead Lead) LeadNotification {
	payout, _ := lead.Summary[KeyMonthlyPayoutFormatted].(string)
	return LeadNotification{
		LeadID:         lead.ID,
		ApplicationID:  lead.ApplicationID,
		ApplicantName:  lead.ApplicantName,
		LegalName:      lead.LegalName,
		Status:         lead.Status,
		ClosureReason:  lead.ClosureReason,
		LoanType:       lead.LoanType,
		ApprovedAmount: lead.ApprovedAmount,
		InterestRate:   lead.InterestRate,
		MonthlyPayout:  payout,
		CreatedAt:      lead.CreatedAt,
	}
}
