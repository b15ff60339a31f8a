// internal/workers/claims/process-claim-intent/flows.go
package processclaimintent

import (
	"context"
	"fmt"
	"strings"

	"dental-claims/internal/common/errors"
	"dental-claims/internal/common/logger"
	"dental-claims/internal/common/masking"
	"dental-claims/internal/common/metrics"
	"dental-claims/internal/models"
	validateclaimslots "dental-claims/internal/workers/claims/validate-claim-slots"
	calculatereimbursement "dental-claims/internal/workers/coverage/calculate-reimbursement"
	evaluatecoverage "dental-claims/internal/workers/coverage/evaluate-coverage"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	stageValidate = "validate"
	stageAnalyze  = "analyze"
	stageCoverage = "coverage"
	stageExtract  = "extract"
	stageDocument = "document"
	stageMatch    = "match"
	stagePersist  = "persist"
	stageNotify   = "notify"
)

const (
	defaultSearchTier      = models.PlanBasic
	defaultSearchSpecialty = "general"
)

// run is the state of one pipeline invocation.
type run struct {
	h       *Handler
	ctx     context.Context
	intent  *models.Intent
	session *models.Session
	log     logger.Logger
	state   State
}

func (r *run) advance(next State) {
	r.log.Debug("state transition", map[string]interface{}{
		"from": r.state,
		"to":   next,
	})
	r.state = next
}

func (r *run) stage(name string) (context.Context, trace.Span) {
	return r.h.deps.Observability.StartSpan(r.ctx, "claims."+name,
		attribute.String("session.id", r.session.ID))
}

func (r *run) route() *models.ResultEnvelope {
	if r.intent == nil || r.intent.Name == "" {
		return r.reject(stageValidate, errors.KindInvalidEventStructure, "")
	}

	switch r.intent.Name {
	case models.IntentPreApproval:
		return r.preApproval()
	case models.IntentReimbursement:
		return r.reimbursement()
	case models.IntentDentistSearch:
		return r.dentistSearch()
	default:
		r.log.Warn("unrecognized intent", map[string]interface{}{
			"rawName": r.intent.RawName,
		})
		return r.reject(stageValidate, errors.KindUnrecognizedIntent, "")
	}
}

// ==========================
// Pre-approval
// ==========================

func (r *run) preApproval() *models.ResultEnvelope {
	slots := r.intent.Slots
	if res := validateclaimslots.ValidateSlots(models.IntentPreApproval, slots); !res.Valid {
		return r.invalid(res)
	}
	r.advance(StateValidated)

	tier := models.ParsePlanTier(slots[models.SlotPlanTier])
	symptoms := slots[models.SlotSymptoms]
	location := slots[models.SlotLocation]

	ctx, span := r.stage(stageAnalyze)
	diagnosis, err := r.h.deps.Analyzer.Analyze(ctx, symptoms, tier)
	endSpan(span, err)
	if err != nil {
		return r.fail(stageAnalyze, errors.KindAnalysisError, err)
	}
	r.advance(StateAnalyzed)

	decision, err := evaluatecoverage.Evaluate(diagnosis, tier)
	if err != nil {
		return r.fail(stageCoverage, errors.KindCoverageError, err)
	}
	r.advance(StateDecided)

	// The decision stands without clinics, so a catalog failure only degrades
	// the reply.
	ctx, span = r.stage(stageMatch)
	clinics, err := r.h.deps.Clinics.Find(ctx, location, tier, "")
	endSpan(span, err)
	if err != nil {
		r.degrade(stageMatch, errors.KindSearchError, err)
		clinics = []models.ClinicRecord{}
	}

	status := "approved"
	if !decision.Approved {
		status = "evaluation_required"
	}
	r.persist(&models.ClaimRecord{
		SessionID:   r.session.ID,
		ClaimType:   models.ClaimPreApproval,
		ProcessStep: models.StepSymptomsAnalysis,
		Status:      status,
		PlanTier:    tier,
		Payload: map[string]interface{}{
			"slots":         masking.Mask(slots),
			"diagnosis":     diagnosis,
			"coverage":      decision,
			"clinics_found": len(clinics),
		},
	})

	ctx, span = r.stage(stageNotify)
	notifications := r.h.deps.Notifier.PreApproval(ctx, r.session, symptoms, diagnosis, decision, clinics)
	span.End()
	r.notified(notifications)

	return success(msgPreApprovalProcessed, r.session.ID, map[string]interface{}{
		DataDiagnosis:     diagnosis,
		DataPreApproval:   decision,
		DataClinics:       clinics,
		DataNotifications: notifications,
	})
}

// ==========================
// Reimbursement
// ==========================

func (r *run) reimbursement() *models.ResultEnvelope {
	slots := r.intent.Slots
	res := validateclaimslots.ValidateSlots(models.IntentReimbursement, slots)
	if !res.Valid {
		return r.invalid(res)
	}
	r.advance(StateValidated)

	tier := models.ParsePlanTier(slots[models.SlotPlanTier])
	documentKey := slots[models.SlotDocumentKey]

	ctx, span := r.stage(stageExtract)
	doc, err := r.h.deps.Extractor.Extract(ctx, documentKey)
	endSpan(span, err)
	if err != nil {
		return r.fail(stageExtract, errors.KindDocumentError, err)
	}
	r.advance(StateExtracted)

	validation := validateclaimslots.ValidateDocument(*doc, res.ProcedureValue)
	if !validation.Valid {
		r.log.Warn("document validation failed", map[string]interface{}{
			"errors": validation.Errors,
		})
		metrics.StageFailures.WithLabelValues(stageDocument, string(errors.KindValidationFailed)).Inc()
		message := errors.KindValidationFailed.Message() + ": " + strings.Join(validation.Errors, ", ")
		env := failure(errors.KindValidationFailed, message, r.session.ID)
		env.Data = map[string]interface{}{
			"errors":   validation.Errors,
			"warnings": validation.Warnings,
		}
		return env
	}

	decision := calculatereimbursement.Calculate(validation.DocumentAmount, tier, validation.HasWarnings())
	r.advance(StateDecided)

	r.persist(&models.ClaimRecord{
		SessionID:   r.session.ID,
		ClaimType:   models.ClaimReimbursement,
		ProcessStep: models.StepDocumentProcessing,
		Status:      string(decision.Status),
		PlanTier:    tier,
		Payload: map[string]interface{}{
			"slots":         masking.Mask(slots),
			"document":      doc,
			"validation":    validation,
			"reimbursement": decision,
		},
	})

	ctx, span = r.stage(stageNotify)
	notifications := r.h.deps.Notifier.Reimbursement(ctx, r.session, decision)
	span.End()
	r.notified(notifications)

	return success(msgReimbursementProcessed, r.session.ID, map[string]interface{}{
		DataReimbursement:      decision,
		DataValidationWarnings: validation.Warnings,
		DataNotifications:      notifications,
	})
}

// ==========================
// Dentist search
// ==========================

func (r *run) dentistSearch() *models.ResultEnvelope {
	params := SearchParams{
		Location:  r.intent.SlotOr(models.SlotLocation, ""),
		PlanTier:  models.ParsePlanTier(r.intent.SlotOr(models.SlotPlanTier, string(defaultSearchTier))),
		Specialty: r.intent.SlotOr(models.SlotSpecialty, defaultSearchSpecialty),
	}
	if res := validateclaimslots.ValidateSlots(models.IntentDentistSearch, r.intent.Slots); !res.Valid {
		return r.invalid(res)
	}
	r.advance(StateValidated)

	ctx, span := r.stage(stageMatch)
	clinics, err := r.h.deps.Clinics.Find(ctx, params.Location, params.PlanTier, params.Specialty)
	endSpan(span, err)
	if err != nil {
		return r.fail(stageMatch, errors.KindSearchError, err)
	}
	r.advance(StateMatched)

	r.persist(&models.ClaimRecord{
		SessionID:   r.session.ID,
		ClaimType:   models.ClaimDentistSearch,
		ProcessStep: models.StepClinicSearch,
		Status:      "completed",
		PlanTier:    params.PlanTier,
		Payload: map[string]interface{}{
			"search_params": SearchParams{
				Location:  masking.Mask(map[string]string{models.SlotLocation: params.Location})[models.SlotLocation],
				PlanTier:  params.PlanTier,
				Specialty: params.Specialty,
			},
			"clinics_found": len(clinics),
		},
	})

	ctx, span = r.stage(stageNotify)
	notifications := r.h.deps.Notifier.DentistSearch(ctx, r.session, params.PlanTier, params.Specialty, clinics)
	span.End()
	r.notified(notifications)

	return success(fmt.Sprintf(msgDentistsFound, len(clinics)), r.session.ID, map[string]interface{}{
		DataClinics:       clinics,
		DataSearchParams:  params,
		DataNotifications: notifications,
	})
}

// ==========================
// Stage outcomes
// ==========================

// invalid answers a slot validation failure. No collaborator has been called.
func (r *run) invalid(res validateclaimslots.Result) *models.ResultEnvelope {
	r.log.Info("claim input rejected", map[string]interface{}{
		"kind":          res.Kind,
		"missingFields": res.MissingFields,
		"slots":         masking.Mask(r.intent.Slots),
	})
	env := r.reject(stageValidate, res.Kind, res.Message)
	if len(res.MissingFields) > 0 {
		env.Data = map[string]interface{}{"missing_fields": res.MissingFields}
	}
	return env
}

func (r *run) reject(stage string, kind errors.Kind, message string) *models.ResultEnvelope {
	metrics.StageFailures.WithLabelValues(stage, string(kind)).Inc()
	return failure(kind, message, r.session.ID)
}

// fail ends the run on a collaborator error. The cause is logged, the reply
// carries only the kind's message.
func (r *run) fail(stage string, kind errors.Kind, err error) *models.ResultEnvelope {
	r.log.Error("pipeline stage failed", map[string]interface{}{
		"stage": stage,
		"state": r.state,
		"kind":  kind,
		"error": err.Error(),
	})
	return r.reject(stage, kind, "")
}

// degrade records a best-effort stage failure and lets the run continue.
func (r *run) degrade(stage string, kind errors.Kind, err error) {
	r.log.Warn("best-effort stage failed", map[string]interface{}{
		"stage": stage,
		"kind":  kind,
		"error": err.Error(),
	})
	metrics.StageFailures.WithLabelValues(stage, string(kind)).Inc()
}

func (r *run) persist(record *models.ClaimRecord) {
	if r.h.deps.Store == nil {
		r.advance(StatePersisted)
		return
	}
	ctx, span := r.stage(stagePersist)
	err := r.h.deps.Store.Put(ctx, record)
	endSpan(span, err)
	if err != nil {
		r.degrade(stagePersist, errors.KindProcessingError, err)
		return
	}
	r.advance(StatePersisted)
	r.log.Info("claim record saved", map[string]interface{}{
		"recordId":  record.ID,
		"claimType": record.ClaimType,
	})
}

func (r *run) notified(results []models.NotificationResult) {
	for _, res := range results {
		if !res.Sent {
			r.log.Warn("notification not delivered", map[string]interface{}{
				"recipient": res.Recipient,
				"error":     res.Error,
			})
		}
	}
	r.advance(StateNotified)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
