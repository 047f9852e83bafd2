package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
camunda:
  broker_address: localhost:26500
database:
  postgres:
    host: localhost
    database: underwriting
    user: ${TEST_DB_USER}
  redis:
    address: localhost:6379
workers:
  export-lead:
    enabled: false
policies:
  msme-lite:
    max_loan_amount: 50
    collect_udyam: true
    consent_rate_discount: 0
    default_risk_score: 0
    rate_tiers:
      - min_score: 750
        rate: 15.0
      - min_score: 0
        rate: 20.0
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile(t *testing.T) {
	t.Setenv("TEST_DB_USER", "underwriter")

	cfg, err := LoadFromFile(writeConfig(t, testConfig))
	require.NoError(t, err)

	assert.Equal(t, "underwriter", cfg.Database.Postgres.User)
	assert.Equal(t, "disable", cfg.Database.Postgres.SSLMode)
	assert.Equal(t, 25, cfg.Database.Postgres.MaxConnections)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "configs/activities.json", cfg.Server.ActivityRegistry)
	assert.Equal(t, "underwriting_leads", cfg.Leads.Table)

	export := GetWorkerConfig(cfg, "export-lead")
	assert.False(t, export.Enabled)
	assert.Equal(t, 3, export.MaxRetries)
	assert.False(t, IsWorkerEnabled(cfg, "export-lead"))
	assert.True(t, IsWorkerEnabled(cfg, "advance-application"))

	lite, ok := cfg.Policies["msme-lite"]
	require.True(t, ok)
	assert.Equal(t, 50.0, lite.MaxLoanAmount)
	assert.True(t, lite.CollectUdyam)
	require.Len(t, lite.RateTiers, 2)
	assert.Equal(t, 750, lite.RateTiers[0].MinScore)
	assert.Equal(t, 20.0, lite.RateTiers[1].Rate)

	require.NotNil(t, lite.ConsentRateDiscount)
	assert.Equal(t, 0.0, *lite.ConsentRateDiscount)
	require.NotNil(t, lite.DefaultRiskScore)
	assert.Equal(t, 0, *lite.DefaultRiskScore)
	assert.Nil(t, lite.MinRate)

	lite = lite.WithDefaults()
	assert.Equal(t, 0.0, lite.ConsentDiscount())
	assert.Equal(t, 12.0, lite.RateFloor())
}

func TestLoadFromFileValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "missing broker",
			body: "database:\n  postgres:\n    host: h\n    database: d\n    user: u\n  redis:\n    address: r\n",
			want: "camunda.broker_address",
		},
		{
			name: "missing redis",
			body: "camunda:\n  broker_address: b\ndatabase:\n  postgres:\n    host: h\n    database: d\n    user: u\n",
			want: "database.redis.address",
		},
		{
			name: "sns without topic",
			body: "camunda:\n  broker_address: b\ndatabase:\n  postgres:\n    host: h\n    database: d\n    user: u\n  redis:\n    address: r\nnotifications:\n  sns:\n    enabled: true\n",
			want: "notifications.sns.topic_arn",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("RM_NOTIFICATION_TOPIC_ARN", "")
			_, err := LoadFromFile(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, "1.5s", GetDuration(1500).String())
}
