// internal/workers/underwriting/compute-offer/handler.go
package computeoffer

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"underwriting-workers/internal/common/errors"
	"underwriting-workers/internal/common/logger"
	"underwriting-workers/internal/common/metrics"
	"underwriting-workers/internal/common/validation"
	"underwriting-workers/internal/underwriting/intake"
	"underwriting-workers/internal/underwriting/offer"
)

const TaskType = "compute-offer"

type Handler struct {
	config       *Config
	registry     *intake.Registry
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, registry *intake.Registry, log logger.Logger) *Handler {
	log = logger.NewRedacting(log).WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		registry:     registry,
		errorHandler: errors.NewErrorHandler(log),
		logger:       log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.fail(ctx, client, job, errors.NewParseError(err))
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.fail(ctx, client, job, err)
		return
	}

	h.completeJob(ctx, client, job, output)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if result := validation.ValidateSnapshot(input.Snapshot); !result.Valid {
		return nil, errors.NewInvalidSnapshotError(strings.Join(result.GetErrorMessages(), "; "))
	}

	mode, err := offer.ParseMode(input.Mode)
	if err != nil {
		return nil, err
	}

	orch, err := h.registry.Get(input.PolicyProfile)
	if err != nil {
		return nil, err
	}

	computed, err := orch.Calculator().Compute(input.Snapshot, mode)
	if err != nil {
		return nil, err
	}

	profile := orch.Policy().Name
	metrics.OffersComputed.WithLabelValues(profile, computed.LoanType, string(mode)).Inc()
	metrics.OfferApprovedAmount.WithLabelValues(profile, string(mode)).Observe(computed.ApprovedAmount)

	h.logger.Info("offer computed", map[string]interface{}{
		"applicationId":  input.ApplicationID,
		"profile":        profile,
		"mode":           string(mode),
		"loanType":       computed.LoanType,
		"approvedAmount": computed.ApprovedAmount,
		"interestRate":   computed.InterestRate,
	})

	return &Output{
		Offer:       computed,
		OfferFields: computed.Fields(),
		Summary:     computed.Summary(),
		Disclaimer:  orch.Policy().OfferDisclaimer,
	}, nil
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.Normalize(err).Code)).Inc()
	h.errorHandler.HandleJobError(ctx, client, job, err)
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
