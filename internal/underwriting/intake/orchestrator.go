// Package intake composes the validators, the state machine and the offer
// calculator into a single step: one snapshot plus one raw answer in, one new
// snapshot plus one response out.
package intake

import (
	"sort"
	"strings"

	apperrors "underwriting-workers/internal/common/errors"
	"underwriting-workers/internal/models"
	"underwriting-workers/internal/underwriting/fields"
	"underwriting-workers/internal/underwriting/offer"
	"underwriting-workers/internal/underwriting/policy"
	"underwriting-workers/internal/underwriting/workflow"
)

const injectionReply = "I'm your loan assistant. How can I help with your business loan?"

// Orchestrator advances one application at a time. It holds no per-application
// state and is safe for concurrent use across applications; answers for the
// same application must be serialized by the caller.
type Orchestrator struct {
	policy     policy.Policy
	validator  *fields.Validator
	machine    *workflow.Machine
	calculator *offer.Calculator
	guard      *outputGuard
}

// New wires the core components for one policy profile.
func New(p policy.Policy) (*Orchestrator, error) {
	v, err := fields.NewValidator(p)
	if err != nil {
		return nil, err
	}
	return &Orchestrator{
		policy:     p,
		validator:  v,
		machine:    workflow.NewMachine(p),
		calculator: offer.NewCalculator(p),
		guard:      newOutputGuard(p),
	}, nil
}

func (o *Orchestrator) Machine() *workflow.Machine    { return o.machine }
func (o *Orchestrator) Validator() *fields.Validator  { return o.validator }
func (o *Orchestrator) Calculator() *offer.Calculator { return o.calculator }
func (o *Orchestrator) Policy() policy.Policy         { return o.policy }

// Current returns the step the snapshot is waiting on, with its prompt.
func (o *Orchestrator) Current(s models.Snapshot) *Result {
	s = cloneOrEmpty(s)
	id := o.machine.NextStep(s)
	status := StatusOK
	if id == workflow.StepClosure && s.Flag(models.KeyApplicationClosed) {
		status = StatusClosed
	}
	return o.respond(s, id, status, promptFor(id), nil, nil, nil)
}

// Advance applies raw to the step the snapshot is waiting on.
func (o *Orchestrator) Advance(s models.Snapshot, raw string) *Result {
	s = cloneOrEmpty(s)
	id := o.machine.NextStep(s)
	step, _ := workflow.Lookup(id)

	if id == workflow.StepClosure && s.Flag(models.KeyApplicationClosed) {
		return o.respond(s, id, StatusClosed, step.Prompt, nil, nil, nil)
	}
	if strings.TrimSpace(raw) == "" {
		return o.respond(s, id, StatusOK, step.Prompt, nil, nil, nil)
	}
	if err := o.validator.Screen(raw); err != nil {
		return o.respond(s, id, StatusInputBlocked, injectionReply, errorInfo(err), nil, nil)
	}

	var added []string
	if !step.Automatic() {
		value, err := o.validator.Validate(step.Kind, raw)
		if err != nil {
			return o.reject(s, step, err)
		}
		if step.StoreAs != nil {
			value = step.StoreAs
		}
		updates := map[string]interface{}{step.Field: value}
		if step.SkipFlag != "" && value == fields.NotRegistered {
			updates = map[string]interface{}{step.SkipFlag: true}
		}
		if declined, ok := value.(bool); ok && !declined &&
			(id == workflow.StepUpgradeDocuments || id == workflow.StepUpgradeConsent) {
			updates[models.KeyUpgradeWithdrawn] = true
		}
		s, added = s.Merge(updates)
	}

	return o.settle(s, added)
}

// reject turns a validator error into a re-ask, a policy block or an early closure.
func (o *Orchestrator) reject(s models.Snapshot, step workflow.Step, err error) *Result {
	fe, ok := apperrors.AsFieldError(err)
	if !ok {
		return o.respond(s, step.ID, StatusReask, "Sorry, I could not process that answer. "+step.Prompt, errorInfo(err), nil, nil)
	}
	if fe.Kind == apperrors.KindValidation {
		return o.respond(s, step.ID, StatusReask, fe.Message, errorInfo(fe), nil, nil)
	}
	if fe.Code == apperrors.CodeIndustryBlocked {
		closed, added := s.Merge(map[string]interface{}{
			models.KeyApplicationClosed: true,
			models.KeyClosureReason:     ClosureIndustryBlocked,
		})
		return o.respond(closed, workflow.StepClosure, StatusPolicyBlock, fe.Message, errorInfo(fe), nil, added)
	}
	return o.respond(s, step.ID, StatusPolicyBlock, fe.Message, errorInfo(fe), nil, nil)
}

// settle derives flags and runs automatic steps until the snapshot waits on an
// answer or reaches closure.
func (o *Orchestrator) settle(s models.Snapshot, added []string) *Result {
	var (
		computed *offer.Offer
		lead     []string
		status   = StatusOK
		id       workflow.StepID
	)

	for hops := 0; hops < 4; hops++ {
		var changed []string
		s, changed = s.Merge(o.machine.DeriveFlags(s))
		added = append(added, changed...)

		id = o.machine.NextStep(s)
		switch id {
		case workflow.StepOfferPresent, workflow.StepRevision:
			mode, flag := offer.ModeInitial, models.KeyOfferGenerated
			if id == workflow.StepRevision {
				mode, flag = revisionMode(s), models.KeyOfferRevised
			}
			computed, s, changed = o.applyOffer(s, mode, flag)
			if computed == nil {
				return o.respond(s, id, StatusReask, "We need your requested loan amount before we can prepare an offer.", nil, nil, added)
			}
			added = append(added, changed...)
			lead = append(lead, promptFor(id), computed.Summary())
			continue

		case workflow.StepClosure:
			if !s.Flag(models.KeyApplicationClosed) {
				s, changed = s.Merge(map[string]interface{}{
					models.KeyApplicationClosed: true,
					models.KeyClosureReason:     closureReason(s),
				})
				added = append(added, changed...)
			}
			status = StatusClosed
		}
		break
	}

	msg := strings.Join(append(lead, promptFor(id)), "\n\n")
	return o.respond(s, id, status, msg, nil, computed, added)
}

func (o *Orchestrator) applyOffer(s models.Snapshot, mode offer.Mode, flag string) (*offer.Offer, models.Snapshot, []string) {
	computed, err := o.calculator.Compute(s, mode)
	if err != nil {
		return nil, s, nil
	}
	updates := computed.Fields()
	updates[flag] = true
	next, changed := s.Merge(updates)
	return computed, next, changed
}

func (o *Orchestrator) respond(s models.Snapshot, id workflow.StepID, status Status, msg string, info *ErrorInfo, computed *offer.Offer, added []string) *Result {
	step, _ := workflow.Lookup(id)
	inputType := step.InputType
	if computed != nil {
		inputType = workflow.InputPrelimOffer
		if computed.IsRevision() {
			inputType = workflow.InputFinalOffer
		}
	}
	added = dedupe(added)
	return &Result{
		Snapshot: s,
		Response: Response{
			Status:      status,
			Step:        id,
			Phase:       workflow.PhaseOf(id),
			InputType:   inputType,
			Message:     o.guard.apply(msg, computed != nil),
			Error:       info,
			Offer:       computed,
			Triggers:    triggersFor(s, added),
			AddedFields: added,
		},
	}
}

func revisionMode(s models.Snapshot) offer.Mode {
	if s.String(models.KeyUpgradePath) == models.UpgradeConsent {
		return offer.ModeConsentRevision
	}
	return offer.ModeDocumentRevision
}

func closureReason(s models.Snapshot) string {
	switch {
	case s.Flag(models.KeyOfferRevised):
		return ClosureCompleted
	case s.Flag(models.KeyUpgradeWithdrawn):
		return ClosureUpgradeDeclined
	default:
		return ClosureOfferAccepted
	}
}

func promptFor(id workflow.StepID) string {
	step, _ := workflow.Lookup(id)
	return step.Prompt
}

func errorInfo(err error) *ErrorInfo {
	if fe, ok := apperrors.AsFieldError(err); ok {
		return &ErrorInfo{Kind: string(fe.Kind), Code: fe.Code, Message: fe.Message}
	}
	if stdErr, ok := apperrors.AsStandardError(err); ok {
		return &ErrorInfo{Kind: "INTERNAL", Code: string(stdErr.Code), Message: stdErr.Message}
	}
	return &ErrorInfo{Kind: "INTERNAL", Code: "INTERNAL_ERROR", Message: err.Error()}
}

func cloneOrEmpty(s models.Snapshot) models.Snapshot {
	if s == nil {
		return models.Snapshot{}
	}
	return s.Clone()
}

func dedupe(keys []string) []string {
	if len(keys) == 0 {
		return []string{}
	}
	sort.Strings(keys)
	out := keys[:1]
	for _, k := range keys[1:] {
		if k != out[len(out)-1] {
			out = append(out, k)
		}
	}
	return out
}
