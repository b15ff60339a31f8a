// internal/workers/claims/process-claim-intent/models.go
package processclaimintent

import (
	"dental-claims/internal/models"
)

// State is a pipeline run position. Transitions only move forward; failures
// jump straight to StateResponded.
type State string

const (
	StateReceived  State = "received"
	StateValidated State = "validated"
	StateAnalyzed  State = "analyzed"
	StateExtracted State = "extracted"
	StateMatched   State = "matched"
	StateDecided   State = "decided"
	StatePersisted State = "persisted"
	StateNotified  State = "notified"
	StateResponded State = "responded"
)

// Data keys of a success envelope.
const (
	DataDiagnosis          = "diagnosis"
	DataPreApproval        = "pre_approval"
	DataClinics            = "clinics"
	DataNotifications      = "notifications"
	DataReimbursement      = "reimbursement_result"
	DataValidationWarnings = "validation_warnings"
	DataSearchParams       = "search_params"
)

const (
	msgPreApprovalProcessed   = "Pre-approval processed successfully"
	msgReimbursementProcessed = "Reimbursement processed successfully"
	msgDentistsFound          = "Found %d dentists"
)

// SearchParams echoes the effective dentist search filters.
type SearchParams struct {
	Location  string          `json:"location"`
	PlanTier  models.PlanTier `json:"plan_tier"`
	Specialty string          `json:"specialty"`
}

// Input is the job variable document of a process-claim-intent job.
type Input struct {
	Intent            string            `json:"intent"`
	Slots             map[string]string `json:"slots"`
	SessionAttributes map[string]string `json:"sessionAttributes"`
}

// Output is written back to the process instance.
type Output struct {
	Result *models.ResultEnvelope `json:"result"`
	// SessionAttributes are the resolved attributes, including lexSessionId.
	SessionAttributes map[string]string `json:"sessionAttributes"`
	// ClaimError is set when Result is a failure.
	ClaimError map[string]interface{} `json:"claimError,omitempty"`
}
