// internal/workers/coverage/evaluate-coverage/evaluator.go
package evaluatecoverage

import (
	"errors"
	"fmt"

	"dental-claims/internal/models"
)

const TaskType = "evaluate-coverage"

var ErrCoverageCheckFailed = errors.New("coverage_check_failed")

// Evaluate applies the plan rule row to the diagnosis. Empty urgency is read
// as low and empty complexity as simple.
func Evaluate(diagnosis models.Diagnosis, tier models.PlanTier) (models.CoverageDecision, error) {
	rule := models.RuleFor(tier)

	urgency := diagnosis.UrgencyLevel
	if urgency == "" {
		urgency = models.LevelLow
	}
	complexity := diagnosis.EstimatedComplexity
	if complexity == "" {
		complexity = models.ComplexitySimple
	}

	if !validLevel(urgency) || !validComplexity(complexity) {
		failed := models.CoverageDecision{
			Approved: false,
			PlanTier: rule.Tier,
			Error:    ErrCoverageCheckFailed.Error(),
		}
		return failed, fmt.Errorf("%w: urgency=%q complexity=%q",
			ErrCoverageCheckFailed, diagnosis.UrgencyLevel, diagnosis.EstimatedComplexity)
	}

	approved := (urgency != models.LevelHigh || rule.Tier == models.PlanPremium) &&
		complexity != models.ComplexityComplex

	return models.CoverageDecision{
		Approved:           approved,
		PlanTier:           rule.Tier,
		CoveragePercentage: rule.Percentage,
		MaxCoverage:        rule.MaxCoverage,
		UrgencyLevel:       urgency,
		Complexity:         complexity,
		CoveredCategories:  rule.CoveredCategories,
	}, nil
}

func validLevel(l models.Level) bool {
	switch l {
	case models.LevelLow, models.LevelMedium, models.LevelHigh:
		return true
	}
	return false
}

func validComplexity(c models.Complexity) bool {
	switch c {
	case models.ComplexitySimple, models.ComplexityModerate, models.ComplexityComplex:
		return true
	}
	return false
}
