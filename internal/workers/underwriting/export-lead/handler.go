// internal/workers/underwriting/export-lead/handler.go
package exportlead

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"

	"underwriting-workers/internal/common/aws"
	"underwriting-workers/internal/common/database"
	"underwriting-workers/internal/common/errors"
	"underwriting-workers/internal/common/logger"
	"underwriting-workers/internal/common/metrics"
	"underwriting-workers/internal/common/pii"
	"underwriting-workers/internal/common/validation"
	"underwriting-workers/internal/models"
	"underwriting-workers/internal/underwriting/intake"
)

const TaskType = "export-lead"

// leadNamespace makes lead IDs stable across retries of the same application.
var leadNamespace = uuid.MustParse("6f1c1e2a-8d8b-4b8e-9b7a-4d7f2f0c9a51")

// LeadStore persists leads.
type LeadStore interface {
	Insert(ctx context.Context, lead models.Lead) error
}

// ExportTracker records how far an export got so retries resume instead of
// duplicating.
type ExportTracker interface {
	Claim(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Release(ctx context.Context, key string) error
}

type Handler struct {
	config       *Config
	store        LeadStore
	tracker      ExportTracker
	publisher    aws.Publisher
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, store LeadStore, tracker ExportTracker, publisher aws.Publisher, log logger.Logger) *Handler {
	log = logger.NewRedacting(log).WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		store:        store,
		tracker:      tracker,
		publisher:    publisher,
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
	if input.ApplicationID == "" {
		return nil, errors.NewBusinessRuleError("applicationId is required", "export-lead")
	}
	if result := validation.ValidateSnapshot(input.Snapshot); !result.Valid {
		return nil, errors.NewInvalidSnapshotError(strings.Join(result.GetErrorMessages(), "; "))
	}

	s := models.Snapshot(input.Snapshot)
	if !s.Flag(models.KeyApplicationClosed) && !s.Flag(models.KeyOfferGenerated) {
		return nil, errors.NewLeadNotReadyError(input.ApplicationID)
	}

	lead := buildLead(input.ApplicationID, s)
	key := "lead:" + input.ApplicationID

	state, err := h.claim(ctx, key)
	if err != nil {
		return nil, err
	}

	output := &Output{LeadID: lead.ID, LeadStatus: lead.Status, ExportedAt: lead.CreatedAt}
	if state == stateNotified || (state == stateStored && !h.config.NotifyEnabled) {
		h.logger.Info("lead already exported", map[string]interface{}{
			"applicationId": input.ApplicationID,
			"state":         state,
		})
		output.Duplicate = true
		output.Notified = state == stateNotified
		return output, nil
	}

	if state != stateStored {
		if err := h.store.Insert(ctx, lead); err != nil && !stderrors.Is(err, database.ErrLeadExists) {
			if relErr := h.tracker.Release(ctx, key); relErr != nil {
				h.logger.Warn("failed to release export claim", map[string]interface{}{
					"applicationId": input.ApplicationID,
					"error":         relErr.Error(),
				})
			}
			return nil, errors.NewLeadExportFailedError(err)
		}
		h.mark(ctx, key, stateStored)
		metrics.LeadsExported.WithLabelValues(lead.ClosureReason).Inc()
	}

	if h.config.NotifyEnabled {
		if err := h.notify(ctx, lead); err != nil {
			return nil, errors.NewNotificationSendFailedError("sns", err)
		}
		h.mark(ctx, key, stateNotified)
		output.Notified = true
	}

	h.logger.Info("lead exported", map[string]interface{}{
		"applicationId": input.ApplicationID,
		"leadId":        lead.ID,
		"status":        lead.Status,
		"notified":      output.Notified,
	})
	return output, nil
}

// claim takes the dedupe key or reports the state a previous attempt left.
func (h *Handler) claim(ctx context.Context, key string) (string, error) {
	claimed, err := h.tracker.Claim(ctx, key, statePending, h.config.DedupeTTL)
	if err != nil {
		return "", errors.NewCacheUnavailableError(err)
	}
	if claimed {
		return statePending, nil
	}
	state, err := h.tracker.Get(ctx, key)
	if err != nil {
		return "", errors.NewCacheUnavailableError(err)
	}
	return state, nil
}

func (h *Handler) mark(ctx context.Context, key, state string) {
	if err := h.tracker.Set(ctx, key, state, h.config.DedupeTTL); err != nil {
		h.logger.Warn("failed to record export state", map[string]interface{}{
			"key":   key,
			"state": state,
			"error": err.Error(),
		})
	}
}

func (h *Handler) notify(ctx context.Context, lead models.Lead) error {
	body, err := json.Marshal(models.NotificationFor(lead))
	if err != nil {
		return err
	}
	_, err = h.publisher.Publish(ctx, aws.TopicMessage(h.config.TopicARN, h.config.Subject, string(body), map[string]string{
		"leadStatus": lead.Status,
	}))
	return err
}

func buildLead(applicationID string, s models.Snapshot) models.Lead {
	gst, _ := s.Bool(models.KeyIsGSTRegistered)
	approved, _ := s.Float(models.KeyApprovedAmount)
	rate, _ := s.Float(models.KeyInterestRate)
	tenure, _ := s.Int(models.KeyTenureMonths)

	return models.Lead{
		ID:             uuid.NewSHA1(leadNamespace, []byte(applicationID)).String(),
		ApplicationID:  applicationID,
		ApplicantName:  s.String(models.KeyApplicantName),
		LegalName:      s.String(models.KeyLegalName),
		GSTRegistered:  gst,
		LoanType:       s.String(models.KeyLoanType),
		ApprovedAmount: approved,
		InterestRate:   rate,
		TenureMonths:   tenure,
		Status:         leadStatus(s),
		ClosureReason:  s.String(models.KeyClosureReason),
		Summary:        pii.RedactMap(s.PublicView()),
		CreatedAt:      time.Now().UTC().Format(time.RFC3339),
	}
}

func leadStatus(s models.Snapshot) string {
	switch {
	case s.String(models.KeyClosureReason) == intake.ClosureIndustryBlocked:
		return models.LeadStatusBlocked
	case s.Flag(models.KeyOfferRevised):
		return models.LeadStatusRevised
	case s.Flag(models.KeyUpgradeWithdrawn):
		return models.LeadStatusDeclined
	default:
		return models.LeadStatusOffered
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
