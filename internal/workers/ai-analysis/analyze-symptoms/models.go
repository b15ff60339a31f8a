// internal/workers/ai-analysis/analyze-symptoms/models.go
package analyzesymptoms

import "dental-claims/internal/models"

type Input struct {
	Symptoms string          `json:"symptoms"`
	PlanTier models.PlanTier `json:"planTier"`
}

type Output struct {
	Diagnosis models.Diagnosis `json:"diagnosis"`
	Outcome   Outcome          `json:"outcome"`
}

// Outcome tags how the model response was turned into a diagnosis.
type Outcome string

const (
	// OutcomeStructured: the response held a schema-conforming object.
	OutcomeStructured Outcome = "structured"
	// OutcomeFallback: no object, or one that failed the schema; the fixed
	// fallback diagnosis is used.
	OutcomeFallback Outcome = "fallback"
	// OutcomeMalformed: an object was present but is not valid JSON.
	OutcomeMalformed Outcome = "malformed"
)

// Interpretation is the tagged result of Interpret. Err is set only for
// OutcomeMalformed; Reason explains a fallback.
type Interpretation struct {
	Outcome   Outcome
	Diagnosis models.Diagnosis
	Reason    string
	Err       error
}
