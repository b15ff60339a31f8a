// internal/workers/claims/validate-claim-slots/models.go
package validateclaimslots

import (
	"dental-claims/internal/common/errors"
	"dental-claims/internal/models"
)

// requiredSlots lists the non-empty slots each intent needs, in report order.
var requiredSlots = map[models.IntentName][]string{
	models.IntentPreApproval:   {models.SlotSymptoms, models.SlotPlanTier, models.SlotLocation},
	models.IntentReimbursement: {models.SlotDocumentKey, models.SlotPlanTier, models.SlotProcedureValue},
	models.IntentDentistSearch: {},
}

var missingPrefix = map[models.IntentName]string{
	models.IntentPreApproval:   "Please provide: ",
	models.IntentReimbursement: "For reimbursement I need: ",
}

// RequiredSlots returns a copy of the required slot list for an intent.
func RequiredSlots(intent models.IntentName) []string {
	return append([]string(nil), requiredSlots[intent]...)
}

// Result is the outcome of slot validation. Kind is empty when Valid.
type Result struct {
	Valid         bool        `json:"valid"`
	Kind          errors.Kind `json:"kind,omitempty"`
	MissingFields []string    `json:"missingFields,omitempty"`
	Message       string      `json:"message,omitempty"`
	// ProcedureValue is the parsed procedureValue for reimbursements.
	ProcedureValue float64 `json:"procedureValue,omitempty"`
}

const amountTolerance = 10.0

const (
	errDocumentAmount   = "Total amount not found in the document"
	warnAmountMismatch  = "Claimed amount differs from the document"
	warnMissingDate     = "Date not found in the document"
	warnMissingProvider = "Dentist or clinic name not found in the document"
)
