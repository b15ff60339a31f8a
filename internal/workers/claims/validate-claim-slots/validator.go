// internal/workers/claims/validate-claim-slots/validator.go
package validateclaimslots

import (
	stderrors "errors"
	"math"
	"strconv"
	"strings"

	"dental-claims/internal/common/errors"
	"dental-claims/internal/models"
)

var (
	ErrInvalidProcedureValue = stderrors.New("INVALID_PROCEDURE_VALUE")
)

// ValidateSlots checks the required slots of an intent. Whitespace-only values
// count as missing. Intents without a rule table entry need nothing.
func ValidateSlots(intent models.IntentName, slots map[string]string) Result {
	var missing []string
	for _, field := range requiredSlots[intent] {
		if strings.TrimSpace(slots[field]) == "" {
			missing = append(missing, field)
		}
	}

	if len(missing) > 0 {
		prefix, ok := missingPrefix[intent]
		if !ok {
			prefix = "Please provide: "
		}
		return Result{
			Kind:          errors.KindMissingRequiredFields,
			MissingFields: missing,
			Message:       prefix + strings.Join(missing, ", "),
		}
	}

	res := Result{Valid: true}
	if intent == models.IntentReimbursement {
		value, err := ParseProcedureValue(slots[models.SlotProcedureValue])
		if err != nil {
			return Result{
				Kind:    errors.KindInvalidValue,
				Message: errors.KindInvalidValue.Message(),
			}
		}
		res.ProcedureValue = value
	}
	return res
}

// ParseProcedureValue accepts finite, non-negative decimals with a dot separator.
func ParseProcedureValue(raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, ErrInvalidProcedureValue
	}
	return v, nil
}

// ValidateDocument compares extracted receipt data with the claimed value.
// A missing total is an error; the other checks only warn.
func ValidateDocument(doc models.ExtractedDocument, claimed float64) models.DocumentValidation {
	out := models.DocumentValidation{
		Errors:   []string{},
		Warnings: []string{},
	}

	if doc.TotalAmount == nil || *doc.TotalAmount <= 0 {
		out.Errors = append(out.Errors, errDocumentAmount)
	} else {
		out.DocumentAmount = *doc.TotalAmount
		if math.Abs(out.DocumentAmount-claimed) > amountTolerance {
			out.Warnings = append(out.Warnings, warnAmountMismatch)
		}
	}

	if strings.TrimSpace(doc.Date) == "" {
		out.Warnings = append(out.Warnings, warnMissingDate)
	}
	if strings.TrimSpace(doc.ProviderName) == "" {
		out.Warnings = append(out.Warnings, warnMissingProvider)
	}

	out.Valid = len(out.Errors) == 0
	return out
}
