// internal/workers/ai-analysis/analyze-symptoms/handler.go
package analyzesymptoms

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"dental-claims/internal/common/genai"
	"dental-claims/internal/common/logger"
	"dental-claims/internal/models"
)

const TaskType = "analyze-symptoms"

var (
	ErrAnalysisFailed      = errors.New("ANALYSIS_FAILED")
	ErrInvalidJSONResponse = errors.New("invalid_json_response")
)

type Handler struct {
	completer genai.Completer
	logger    logger.Logger
}

func NewHandler(completer genai.Completer, log logger.Logger) *Handler {
	return &Handler{
		completer: completer,
		logger:    log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

// execute makes exactly one completion call. A fallback diagnosis is a
// successful result; a malformed response is an error. The caller bounds ctx.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	log := logger.FromContext(ctx, h.logger)
	prompt := BuildPrompt(input.Symptoms, string(input.PlanTier))

	log.Info("requesting symptom analysis", map[string]interface{}{
		"symptomsLength": len(input.Symptoms),
		"planTier":       input.PlanTier,
	})

	raw, err := h.completer.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
	}

	result := Interpret(raw)
	switch result.Outcome {
	case OutcomeMalformed:
		log.Error("model returned malformed JSON", map[string]interface{}{
			"error":          result.Err.Error(),
			"responseLength": len(raw),
		})
		return nil, result.Err
	case OutcomeFallback:
		log.Warn("using fallback diagnosis", map[string]interface{}{
			"reason": result.Reason,
		})
	}

	log.Info("symptom analysis completed", map[string]interface{}{
		"outcome":         result.Outcome,
		"urgency":         result.Diagnosis.UrgencyLevel,
		"complexity":      result.Diagnosis.EstimatedComplexity,
		"conditionsCount": len(result.Diagnosis.PossibleConditions),
	})

	return &Output{Diagnosis: result.Diagnosis, Outcome: result.Outcome}, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

// Analyze is Execute for callers holding the raw slot values.
func (h *Handler) Analyze(ctx context.Context, symptoms string, tier models.PlanTier) (models.Diagnosis, error) {
	out, err := h.execute(ctx, &Input{Symptoms: symptoms, PlanTier: tier})
	if err != nil {
		return models.Diagnosis{}, err
	}
	return out.Diagnosis, nil
}

// BuildPrompt renders the triage instructions for one request.
func BuildPrompt(symptoms, planTier string) string {
	var b strings.Builder
	b.WriteString("As a dental specialist, analyze these symptoms for pre-triage.\n\n")
	fmt.Fprintf(&b, "SYMPTOMS: %s\n", strings.TrimSpace(symptoms))
	fmt.Fprintf(&b, "PLAN: %s\n\n", planTier)
	b.WriteString("Respond with a JSON object with exactly these keys:\n")
	b.WriteString(`- "possible_conditions": list of possible conditions (at most 3)` + "\n")
	b.WriteString(`- "urgency_level": "low", "medium" or "high"` + "\n")
	b.WriteString(`- "recommended_actions": list of recommended actions` + "\n")
	b.WriteString(`- "coverage_probability": "low", "medium" or "high"` + "\n")
	b.WriteString(`- "estimated_complexity": "simple", "moderate" or "complex"` + "\n\n")
	b.WriteString("Be conservative in your recommendations. Return ONLY the JSON, with no additional text.\n")
	return b.String()
}
