// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "underwriting_worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "underwriting_worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "underwriting_worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "underwriting_worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	StepsAdvanced = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "underwriting_steps_advanced_total",
			Help: "Answers processed, by the step that received them and the outcome",
		},
		[]string{"profile", "step", "status"},
	)

	PolicyBlocks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "underwriting_policy_blocks_total",
			Help: "Answers refused on policy grounds",
		},
		[]string{"profile", "code"},
	)

	OffersComputed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "underwriting_offers_computed_total",
			Help: "Offers computed, by loan structure and mode",
		},
		[]string{"profile", "loan_type", "mode"},
	)

	OfferApprovedAmount = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "underwriting_offer_approved_lakh",
			Help:    "Approved amount in lakh",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 150, 200},
		},
		[]string{"profile", "mode"},
	)

	LeadsExported = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "underwriting_leads_exported_total",
			Help: "Leads written to the lead store, by closure reason",
		},
		[]string{"closure_reason"},
	)
)
