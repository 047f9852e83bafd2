// cmd/worker-manager/server.go
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"underwriting-workers/internal/underwriting/intake"
	"underwriting-workers/internal/underwriting/policy"
	"underwriting-workers/internal/underwriting/workflow"
	"underwriting-workers/pkg/registry"
)

type healthChecker func(ctx context.Context) error

type routerDeps struct {
	checks     map[string]healthChecker
	profiles   *intake.Registry
	activities *registry.ActivityRegistry
}

func newRouter(deps routerDeps) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		status, code := "ready", http.StatusOK
		results := make(map[string]string, len(deps.checks))
		for name, check := range deps.checks {
			if err := check(ctx); err != nil {
				results[name] = err.Error()
				status, code = "not_ready", http.StatusServiceUnavailable
				continue
			}
			results[name] = "ok"
		}
		writeJSON(w, code, map[string]interface{}{
			"status": status,
			"checks": results,
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	mux.HandleFunc("/api/steps", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"steps": workflow.Steps()})
	})

	mux.HandleFunc("/api/profiles", func(w http.ResponseWriter, r *http.Request) {
		names := deps.profiles.Profiles()
		out := make([]policy.Policy, 0, len(names))
		for _, name := range names {
			if o, err := deps.profiles.Get(name); err == nil {
				out = append(out, o.Policy())
			}
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"profiles": out})
	})

	mux.HandleFunc("/api/activities", func(w http.ResponseWriter, r *http.Request) {
		acts := append([]registry.Activity(nil), deps.activities.Activities...)
		sort.Slice(acts, func(i, j int) bool { return acts[i].TaskType < acts[j].TaskType })
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"version":    deps.activities.Version,
			"activities": acts,
		})
	})

	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func writeJSON(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
