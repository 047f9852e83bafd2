// internal/common/database/leads.go
package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"

	"underwriting-workers/internal/models"
)

// LeadRepository writes closed applications into the lead table.
type LeadRepository struct {
	db    *sql.DB
	table string
}

const defaultLeadTable = "underwriting_leads"

func NewLeadRepository(db *sql.DB, table string) *LeadRepository {
	if table == "" {
		table = defaultLeadTable
	}
	return &LeadRepository{db: db, table: table}
}

// Insert stores lead. A unique-violation on application_id is reported as
// ErrLeadExists.
func (r *LeadRepository) Insert(ctx context.Context, lead models.Lead) error {
	summary, err := json.Marshal(lead.Summary)
	if err != nil {
		return fmt.Errorf("marshal lead summary: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (
			id, application_id, applicant_name, legal_name, gst_registered,
			loan_type, approved_amount, interest_rate, tenure_months,
			status, closure_reason, summary, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		pq.QuoteIdentifier(r.table))

	_, err = r.db.ExecContext(ctx, query,
		lead.ID,
		lead.ApplicationID,
		lead.ApplicantName,
		lead.LegalName,
		lead.GSTRegistered,
		lead.LoanType,
		lead.ApprovedAmount,
		lead.InterestRate,
		lead.TenureMonths,
		lead.Status,
		lead.ClosureReason,
		summary,
		lead.CreatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrLeadExists
		}
		return err
	}
	return nil
}
