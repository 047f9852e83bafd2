// internal/workers/underwriting/validate-field/handler.go
package validatefield

import (
	"context"
	"encoding/json"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"underwriting-workers/internal/common/errors"
	"underwriting-workers/internal/common/logger"
	"underwriting-workers/internal/common/metrics"
	"underwriting-workers/internal/underwriting/intake"
)

const TaskType = "validate-field"

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

// execute validates one answer without touching any snapshot. Rejected answers
// complete the job with valid=false; an unknown field is an error.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	orch, err := h.registry.Get(input.PolicyProfile)
	if err != nil {
		return nil, err
	}
	v := orch.Validator()

	if err := v.Screen(input.Value); err != nil {
		return rejected(err), nil
	}

	normalized, err := v.ValidateField(input.Field, input.Value)
	if err != nil {
		if _, ok := errors.AsFieldError(err); ok {
			out := rejected(err)
			if out.ErrorKind == string(errors.KindPolicyBlock) {
				metrics.PolicyBlocks.WithLabelValues(orch.Policy().Name, out.ErrorCode).Inc()
			}
			h.logger.Debug("answer rejected", map[string]interface{}{
				"field":     input.Field,
				"errorCode": out.ErrorCode,
			})
			return out, nil
		}
		return nil, err
	}

	return &Output{Valid: true, Normalized: normalized}, nil
}

func rejected(err error) *Output {
	fe, _ := errors.AsFieldError(err)
	return &Output{
		Valid:     false,
		ErrorKind: string(fe.Kind),
		ErrorCode: fe.Code,
		Message:   fe.Message,
	}
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
