// internal/workers/underwriting/advance-application/handler.go
package advanceapplication

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
	"underwriting-workers/internal/common/observability"
	"underwriting-workers/internal/common/validation"
	"underwriting-workers/internal/models"
	"underwriting-workers/internal/underwriting/intake"
	"underwriting-workers/internal/underwriting/workflow"
)

const TaskType = "advance-application"

type Handler struct {
	config       *Config
	registry     *intake.Registry
	obs          *observability.Observability
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, registry *intake.Registry, obs *observability.Observability, log logger.Logger) *Handler {
	log = logger.NewRedacting(log).WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		registry:     registry,
		obs:          obs,
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

// execute applies one answer. Re-asks and policy blocks are normal results;
// only a malformed snapshot or an unknown profile is an error.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if result := validation.ValidateSnapshot(input.Snapshot); !result.Valid {
		return nil, errors.NewInvalidSnapshotError(strings.Join(result.GetErrorMessages(), "; "))
	}

	orch, err := h.registry.Get(input.PolicyProfile)
	if err != nil {
		return nil, err
	}

	before := orch.Machine().NextStep(input.Snapshot)
	result := orch.Advance(input.Snapshot, input.Answer)
	resp := result.Response

	profile := orch.Policy().Name
	metrics.StepsAdvanced.WithLabelValues(profile, string(before), string(resp.Status)).Inc()
	if resp.Status == intake.StatusPolicyBlock && resp.Error != nil {
		metrics.PolicyBlocks.WithLabelValues(profile, resp.Error.Code).Inc()
	}
	if resp.Offer != nil {
		metrics.OffersComputed.WithLabelValues(profile, resp.Offer.LoanType, string(resp.Offer.Mode)).Inc()
		metrics.OfferApprovedAmount.WithLabelValues(profile, string(resp.Offer.Mode)).Observe(resp.Offer.ApprovedAmount)
	}
	h.obs.RecordPhaseTransition(ctx, string(workflow.PhaseOf(before)), string(resp.Phase))

	h.logger.Info("answer processed", map[string]interface{}{
		"applicationId": input.ApplicationID,
		"profile":       profile,
		"fromStep":      string(before),
		"step":          string(resp.Step),
		"status":        string(resp.Status),
		"addedFields":   strings.Join(resp.AddedFields, ","),
	})

	return &Output{
		Snapshot:          result.Snapshot,
		Response:          resp,
		CurrentStep:       string(resp.Step),
		ApplicationClosed: result.Snapshot.Flag(models.KeyApplicationClosed),
		OfferGenerated:    result.Snapshot.Flag(models.KeyOfferGenerated),
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
		return
	}
	h.logger.Info("job completed successfully", map[string]interface{}{
		"jobKey": job.Key,
	})
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
