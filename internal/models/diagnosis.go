// internal/models/diagnosis.go
package models

import "strings"

type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

type Complexity string

const (
	ComplexitySimple   Complexity = "simple"
	ComplexityModerate Complexity = "moderate"
	ComplexityComplex  Complexity = "complex"
)

// MaxConditions bounds Diagnosis.PossibleConditions.
const MaxConditions = 3

// Diagnosis is the structured clinical assessment for one pipeline run.
type Diagnosis struct {
	PossibleConditions  []string   `json:"possible_conditions"`
	UrgencyLevel        Level      `json:"urgency_level"`
	RecommendedActions  []string   `json:"recommended_actions"`
	CoverageProbability Level      `json:"coverage_probability"`
	EstimatedComplexity Complexity `json:"estimated_complexity"`
}

// FallbackDiagnosis is used when the model output carries no usable structure.
func FallbackDiagnosis() Diagnosis {
	return Diagnosis{
		PossibleConditions:  []string{"evaluation needed"},
		UrgencyLevel:        LevelMedium,
		RecommendedActions:  []string{"evaluation visit"},
		CoverageProbability: LevelMedium,
		EstimatedComplexity: ComplexityModerate,
	}
}

// PlanTier is the coverage class governing rule lookups.
type PlanTier string

const (
	PlanBasic   PlanTier = "basic"
	PlanPremium PlanTier = "premium"
)

// ParsePlanTier trims and lower-cases the slot value. Anything that is not a
// known tier resolves to basic.
func ParsePlanTier(raw string) PlanTier {
	switch PlanTier(strings.ToLower(strings.TrimSpace(raw))) {
	case PlanPremium:
		return PlanPremium
	default:
		return PlanBasic
	}
}
