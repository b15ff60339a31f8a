// internal/workers/claims/process-claim-intent/handler.go
package processclaimintent

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"dental-claims/internal/common/errors"
	"dental-claims/internal/common/logger"
	"dental-claims/internal/common/masking"
	"dental-claims/internal/common/metrics"
	"dental-claims/internal/common/observability"
	"dental-claims/internal/models"
	buildresponse "dental-claims/internal/workers/infrastructure/build-response"
	normalizeevent "dental-claims/internal/workers/infrastructure/normalize-event"
	resolvesession "dental-claims/internal/workers/infrastructure/resolve-session"
	saveclaimrecord "dental-claims/internal/workers/persistence/save-claim-record"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const TaskType = "process-claim-intent"

// Analyzer turns free-text symptoms into a diagnosis.
type Analyzer interface {
	Analyze(ctx context.Context, symptoms string, tier models.PlanTier) (models.Diagnosis, error)
}

// DocumentExtractor reads receipt fields from an uploaded document.
type DocumentExtractor interface {
	Extract(ctx context.Context, documentKey string) (*models.ExtractedDocument, error)
}

// ClinicFinder returns in-network clinics for a plan and specialty.
type ClinicFinder interface {
	Find(ctx context.Context, location string, tier models.PlanTier, specialty string) ([]models.ClinicRecord, error)
}

// Notifier dispatches the per-intent messages. Delivery failures are reported
// in the returned results, never as errors.
type Notifier interface {
	PreApproval(ctx context.Context, session *models.Session, symptoms string, diagnosis models.Diagnosis, decision models.CoverageDecision, clinics []models.ClinicRecord) []models.NotificationResult
	Reimbursement(ctx context.Context, session *models.Session, decision models.ReimbursementDecision) []models.NotificationResult
	DentistSearch(ctx context.Context, session *models.Session, tier models.PlanTier, specialty string, clinics []models.ClinicRecord) []models.NotificationResult
}

// SessionResolver assigns the session of a run and saves it afterwards.
type SessionResolver interface {
	Resolve(ctx context.Context, attrs map[string]string) *models.Session
	Persist(ctx context.Context, session *models.Session)
}

// Dependencies are the collaborators shared by every run. Sessions and
// Observability may be nil.
type Dependencies struct {
	Analyzer      Analyzer
	Extractor     DocumentExtractor
	Clinics       ClinicFinder
	Store         saveclaimrecord.Store
	Notifier      Notifier
	Sessions      SessionResolver
	Observability *observability.Observability
}

type Handler struct {
	config       *Config
	deps         Dependencies
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, deps Dependencies, log logger.Logger) *Handler {
	if config == nil {
		config = LoadConfig()
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	if deps.Sessions == nil {
		deps.Sessions = resolvesession.NewResolver(nil, log)
	}
	if deps.Observability == nil {
		deps.Observability = observability.NewNoop()
	}
	return &Handler{
		config:       config,
		deps:         deps,
		errorHandler: errors.NewErrorHandler(log),
		logger:       log,
	}
}

// Execute runs one intent through the pipeline. It never returns nil.
func (h *Handler) Execute(ctx context.Context, intent *models.Intent) *models.ResultEnvelope {
	env, _ := h.process(ctx, intent)
	return env
}

// Respond runs intent and renders the Lex reply with the resolved session
// attributes.
func (h *Handler) Respond(ctx context.Context, intent *models.Intent) *buildresponse.LexResponse {
	env, session := h.process(ctx, intent)
	var attrs map[string]string
	if session != nil {
		attrs = session.Attributes
	}
	return buildresponse.BuildLexResponse(env, attrs)
}

// HandleEvent runs a raw Lex or API Gateway proxy event and returns the reply
// in the matching shape: *buildresponse.LexResponse or
// *buildresponse.APIGatewayResponse. Proxy events always get the proxy shape,
// including rejected and crashed ones.
func (h *Handler) HandleEvent(ctx context.Context, raw []byte) (reply interface{}) {
	proxy := normalizeevent.IsProxyEvent(raw)

	defer func() {
		if p := recover(); p != nil {
			h.logger.Error("event handling panic recovered", map[string]interface{}{
				"panic": fmt.Sprint(p),
				"proxy": proxy,
			})
			reply = criticalReply(proxy)
		}
	}()

	ev, err := normalizeevent.Normalize(raw)
	if err != nil {
		h.logger.Warn("event rejected", map[string]interface{}{
			"error": err.Error(),
			"proxy": proxy,
		})
		return h.shape(buildresponse.BuildLexResponse(failure(errors.KindInvalidEventStructure, "", ""), nil), proxy)
	}

	return h.shape(h.Respond(ctx, &ev.Intent), ev.APIGateway)
}

// shape wraps resp in the proxy envelope when the event came through API Gateway.
func (h *Handler) shape(resp *buildresponse.LexResponse, proxy bool) interface{} {
	if !proxy {
		return resp
	}
	wrapped, err := buildresponse.WrapAPIGateway(resp, http.StatusOK)
	if err != nil {
		h.logger.Error("failed to wrap reply", map[string]interface{}{"error": err.Error()})
		return buildresponse.CriticalAPIGatewayResponse(resp.SessionAttributes)
	}
	return wrapped
}

func criticalReply(proxy bool) interface{} {
	if proxy {
		return buildresponse.CriticalAPIGatewayResponse(nil)
	}
	return buildresponse.CriticalErrorResponse(nil)
}

// Handle serves process-claim-intent Zeebe jobs. Claim failures complete the
// job with the failure envelope; only unreadable variables fail the job.
func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.errorHandler.HandleJobError(ctx, client, job, errors.NewInvalidJobVariablesError(err))
		return err
	}

	env, session := h.process(ctx, intentFromInput(&input))
	output := &Output{
		Result:            env,
		SessionAttributes: session.Attributes,
		ClaimError:        claimError(env),
	}

	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return err
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return err
	}

	h.logger.Info("job completed successfully", map[string]interface{}{
		"jobKey":    job.Key,
		"status":    env.Status,
		"sessionId": env.SessionID,
	})
	return nil
}

// claimError describes a failed envelope in the engine's error variables so
// gateways can branch on retryable versus rejected claims. Nil on success.
func claimError(env *models.ResultEnvelope) map[string]interface{} {
	if env == nil || env.Succeeded() {
		return nil
	}
	kind := errors.Kind(env.Status)
	stdErr := errors.NewClaimProcessingError(kind, env.Message)
	if kind.IsUserError() {
		stdErr = errors.NewClaimRejectedError(kind, env.Message)
	}
	return errors.ConvertToBPMNError(stdErr).ToErrorVariables()
}

func intentFromInput(input *Input) *models.Intent {
	raw := strings.TrimSpace(input.Intent)
	intent := &models.Intent{
		RawName:           raw,
		Slots:             normalizeevent.CanonicalSlots(input.Slots),
		SessionAttributes: input.SessionAttributes,
	}
	if raw != "" {
		intent.Name = normalizeevent.CanonicalIntent(raw)
	}
	return intent
}

// process resolves the session, routes the intent and records the run. A
// panic anywhere in the run becomes a processing_error envelope.
func (h *Handler) process(ctx context.Context, intent *models.Intent) (env *models.ResultEnvelope, session *models.Session) {
	start := time.Now()
	label := intentLabel(intent)

	gauge := metrics.ActiveRuns.WithLabelValues(h.config.Transport)
	gauge.Inc()
	defer gauge.Dec()

	ctx, span := h.deps.Observability.StartSpan(ctx, "claims.pipeline", attribute.String("intent", label))
	defer span.End()

	log := h.logger.WithFields(map[string]interface{}{"intent": label})

	defer func() {
		if p := recover(); p != nil {
			sessionID := ""
			if session != nil {
				sessionID = session.ID
			}
			var slots, attrs map[string]string
			if intent != nil {
				slots, attrs = intent.Slots, intent.SessionAttributes
			}
			log.Error("pipeline panic recovered", map[string]interface{}{
				"sessionId":         sessionID,
				"panic":             fmt.Sprint(p),
				"slots":             masking.Mask(slots),
				"sessionAttributes": masking.Mask(attrs),
			})
			metrics.StageFailures.WithLabelValues("pipeline", string(errors.KindProcessingError)).Inc()
			span.SetStatus(codes.Error, "panic")
			env = failure(errors.KindProcessingError, "", sessionID)
			if session == nil {
				session = &models.Session{ID: sessionID, Attributes: map[string]string{}}
			}
		}

		elapsed := time.Since(start)
		metrics.IntentsProcessed.WithLabelValues(label, env.Status).Inc()
		metrics.PipelineDuration.WithLabelValues(label).Observe(elapsed.Seconds())
		h.deps.Observability.RecordRun(ctx, label, env.Status, elapsed)
		span.SetAttributes(attribute.String("status", env.Status))
	}()

	var attrs map[string]string
	if intent != nil {
		attrs = intent.SessionAttributes
	}
	session = h.deps.Sessions.Resolve(ctx, attrs)
	span.SetAttributes(attribute.String("session.id", session.ID))
	ctx = logger.ContextWithSession(ctx, session.ID, label)

	r := &run{
		h:       h,
		ctx:     ctx,
		intent:  intent,
		session: session,
		log:     logger.ForSession(h.logger, session.ID, label),
		state:   StateReceived,
	}
	env = r.route()
	r.advance(StateResponded)

	h.deps.Sessions.Persist(ctx, session)

	log.Info("claim intent processed", map[string]interface{}{
		"sessionId":  session.ID,
		"status":     env.Status,
		"durationMs": time.Since(start).Milliseconds(),
	})
	return env, session
}

func intentLabel(intent *models.Intent) string {
	if intent == nil || intent.Name == "" {
		return "unknown"
	}
	return string(intent.Name)
}

// failure builds an error envelope. An empty message uses the kind's fixed text.
func failure(kind errors.Kind, message, sessionID string) *models.ResultEnvelope {
	if message == "" {
		message = kind.Message()
	}
	return &models.ResultEnvelope{
		Status:    string(kind),
		Message:   message,
		SessionID: sessionID,
	}
}

func success(message, sessionID string, data map[string]interface{}) *models.ResultEnvelope {
	return &models.ResultEnvelope{
		Status:    models.StatusSuccess,
		Message:   message,
		Data:      data,
		SessionID: sessionID,
	}
}
