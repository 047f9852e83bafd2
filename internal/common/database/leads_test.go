package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"underwriting-workers/internal/models"
)

func testLead() models.Lead {
	return models.Lead{
		ID:             "lead-1",
		ApplicationID:  "app-1",
		ApplicantName:  "Asha",
		LegalName:      "Asha Traders",
		GSTRegistered:  false,
		LoanType:       "Revolving",
		ApprovedAmount: 15,
		InterestRate:   14,
		TenureMonths:   12,
		Status:         models.LeadStatusOffered,
		ClosureReason:  "offer_accepted",
		Summary:        map[string]interface{}{"mobile": "****3210"},
		CreatedAt:      "2024-01-01T00:00:00Z",
	}
}

func TestLeadRepositoryInsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	lead := testLead()
	mock.ExpectExec(`INSERT INTO "underwriting_leads"`).
		WithArgs(lead.ID, lead.ApplicationID, lead.ApplicantName, lead.LegalName, lead.GSTRegistered,
			lead.LoanType, lead.ApprovedAmount, lead.InterestRate, lead.TenureMonths,
			lead.Status, lead.ClosureReason, []byte(`{"mobile":"****3210"}`), lead.CreatedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	repo := NewLeadRepository(db, "")
	require.NoError(t, repo.Insert(context.Background(), lead))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeadRepositoryInsertDuplicate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO "leads_archive"`).
		WillReturnError(&pq.Error{Code: "23505"})

	repo := NewLeadRepository(db, "leads_archive")
	err = repo.Insert(context.Background(), testLead())
	assert.True(t, errors.Is(err, ErrLeadExists))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeadRepositoryInsertFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO`).WillReturnError(errors.New("connection reset"))

	err = NewLeadRepository(db, "").Insert(context.Background(), testLead())
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrLeadExists))
}

func TestRedisClaim(t *testing.T) {
	mr := miniredis.RunT(t)
	client := &RedisClient{Client: redis.NewClient(&redis.Options{Addr: mr.Addr()})}
	defer client.Close()

	ctx := context.Background()
	require.NoError(t, client.Ping(ctx))

	ok, err := client.Claim(ctx, "lead:app-1", "pending", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = client.Claim(ctx, "lead:app-1", "pending", time.Hour)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, client.Set(ctx, "lead:app-1", "stored", time.Hour))
	val, err := client.Get(ctx, "lead:app-1")
	require.NoError(t, err)
	assert.Equal(t, "stored", val)

	require.NoError(t, client.Release(ctx, "lead:app-1"))
	val, err = client.Get(ctx, "lead:app-1")
	require.NoError(t, err)
	assert.Empty(t, val)

	ok, err = client.Claim(ctx, "lead:app-1", "pending", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)

	mr.FastForward(2 * time.Hour)
	assert.False(t, mr.Exists("lead:app-1"))
}

func TestEnsureLeadSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	client := &PostgresClient{DB: db}

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS "rm_leads"`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE UNIQUE INDEX IF NOT EXISTS "rm_leads_application_id_key" ON "rm_leads"`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, client.EnsureLeadSchema(context.Background(), "rm_leads"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureLeadSchemaFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	client := &PostgresClient{DB: db}
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS "underwriting_leads"`).
		WillReturnError(errors.New("permission denied"))

	err = client.EnsureLeadSchema(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")
}
