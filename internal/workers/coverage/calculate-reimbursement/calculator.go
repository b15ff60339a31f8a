// internal/workers/coverage/calculate-reimbursement/calculator.go
package calculatereimbursement

import (
	"fmt"
	"math"

	"dental-claims/internal/models"
)

const TaskType = "calculate-reimbursement"

// warningPenalty is applied to the capped amount when the document
// validation produced warnings.
const warningPenalty = 0.9

const (
	msgApproved = "Reimbursement approved in the amount of R$ %.2f"
	msgPartial  = "Partial reimbursement approved in the amount of R$ %.2f"
	msgRejected = "Reimbursement not approved under the plan rules"
)

// Calculate applies the plan percentage and cap to amount. Rounding happens
// only on the reported amount.
func Calculate(amount float64, tier models.PlanTier, hasWarnings bool) models.ReimbursementDecision {
	rule := models.RuleFor(tier)

	base := amount * rule.Percentage
	final := math.Min(base, rule.MaxCoverage)
	if hasWarnings {
		final *= warningPenalty
	}

	var status models.ReimbursementStatus
	switch {
	case final <= 0:
		status = models.ReimbursementRejected
	case final < base:
		status = models.ReimbursementPartial
	default:
		status = models.ReimbursementApproved
	}

	reported := round2(math.Max(final, 0))

	return models.ReimbursementDecision{
		Status:         status,
		Amount:         reported,
		Percentage:     rule.Percentage,
		OriginalAmount: amount,
		MaxAllowed:     rule.MaxCoverage,
		Message:        message(status, reported),
	}
}

func message(status models.ReimbursementStatus, amount float64) string {
	switch status {
	case models.ReimbursementApproved:
		return fmt.Sprintf(msgApproved, amount)
	case models.ReimbursementPartial:
		return fmt.Sprintf(msgPartial, amount)
	default:
		return msgRejected
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
