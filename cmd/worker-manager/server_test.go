package main

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"underwriting-workers/internal/underwriting/intake"
	"underwriting-workers/internal/underwriting/policy"
	"underwriting-workers/pkg/registry"
)

func testRouter(t *testing.T, checks map[string]healthChecker) http.Handler {
	t.Helper()
	profiles, err := intake.NewRegistry(map[string]policy.Policy{
		"msme-lite": {MaxLoanAmount: 50},
	})
	require.NoError(t, err)

	return newRouter(routerDeps{
		checks:   checks,
		profiles: profiles,
		activities: &registry.ActivityRegistry{
			Version: "1.0.0",
			Activities: []registry.Activity{
				{TaskType: "validate-field"},
				{TaskType: "advance-application"},
			},
		},
	})
}

func get(t *testing.T, h http.Handler, path string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	var body map[string]interface{}
	if rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func ok(context.Context) error { return nil }

func TestHealth(t *testing.T) {
	rec, body := get(t, testRouter(t, nil), "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", body["status"])
}

func TestReady(t *testing.T) {
	t.Run("all dependencies up", func(t *testing.T) {
		rec, body := get(t, testRouter(t, map[string]healthChecker{"postgres": ok, "redis": ok}), "/ready")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "ready", body["status"])
	})

	t.Run("dependency down", func(t *testing.T) {
		down := func(context.Context) error { return stderrors.New("connection refused") }
		rec, body := get(t, testRouter(t, map[string]healthChecker{"postgres": ok, "redis": down}), "/ready")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, "not_ready", body["status"])
		checks := body["checks"].(map[string]interface{})
		assert.Equal(t, "ok", checks["postgres"])
		assert.Equal(t, "connection refused", checks["redis"])
	})
}

func TestSteps(t *testing.T) {
	rec, body := get(t, testRouter(t, nil), "/api/steps")
	assert.Equal(t, http.StatusOK, rec.Code)
	steps := body["steps"].([]interface{})
	require.NotEmpty(t, steps)
	first := steps[0].(map[string]interface{})
	assert.NotEmpty(t, first["id"])
	assert.NotEmpty(t, first["phase"])
}

func TestProfiles(t *testing.T) {
	rec, body := get(t, testRouter(t, nil), "/api/profiles")
	assert.Equal(t, http.StatusOK, rec.Code)

	profiles := body["profiles"].([]interface{})
	require.Len(t, profiles, 2)
	assert.Equal(t, "default", profiles[0].(map[string]interface{})["name"])
	lite := profiles[1].(map[string]interface{})
	assert.Equal(t, "msme-lite", lite["name"])
	assert.Equal(t, 50.0, lite["maxLoanAmount"])
}

func TestActivities(t *testing.T) {
	rec, body := get(t, testRouter(t, nil), "/api/activities")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1.0.0", body["version"])

	acts := body["activities"].([]interface{})
	require.Len(t, acts, 2)
	assert.Equal(t, "advance-application", acts[0].(map[string]interface{})["taskType"])
}

func TestMetricsEndpoint(t *testing.T) {
	rec := httptest.NewRecorder()
	testRouter(t, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
