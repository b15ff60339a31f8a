// internal/models/intent.go
package models

// IntentName is the canonical name of an inbound claim request.
type IntentName string

const (
	IntentPreApproval   IntentName = "PreApproval"
	IntentReimbursement IntentName = "Reimbursement"
	IntentDentistSearch IntentName = "DentistSearch"
	IntentUnrecognized  IntentName = "Unrecognized"
)

// Canonical slot names.
const (
	SlotSymptoms       = "symptoms"
	SlotPlanTier       = "planTier"
	SlotLocation       = "location"
	SlotDocumentKey    = "documentKey"
	SlotProcedureValue = "procedureValue"
	SlotSpecialty      = "specialty"
)

// Intent is the normalized request handed to the claim pipeline. A slot key
// being present does not imply a non-empty value.
type Intent struct {
	Name              IntentName        `json:"name"`
	RawName           string            `json:"rawName,omitempty"`
	Slots             map[string]string `json:"slots"`
	SessionAttributes map[string]string `json:"sessionAttributes"`
}

// Slot returns the slot value or "" when absent.
func (i *Intent) Slot(name string) string {
	if i == nil || i.Slots == nil {
		return ""
	}
	return i.Slots[name]
}

// SlotOr returns the slot value, or def when absent or empty.
func (i *Intent) SlotOr(name, def string) string {
	if v := i.Slot(name); v != "" {
		return v
	}
	return def
}
