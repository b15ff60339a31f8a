// internal/models/claim.go
package models

import "time"

type ClaimType string

const (
	ClaimPreApproval   ClaimType = "pre_approval"
	ClaimReimbursement ClaimType = "reimbursement"
	ClaimDentistSearch ClaimType = "dentist_search"
)

type ProcessStep string

const (
	StepSymptomsAnalysis   ProcessStep = "symptoms_analysis"
	StepDocumentProcessing ProcessStep = "document_processing"
	StepClinicSearch       ProcessStep = "clinic_search"
)

// ClaimRecord is the append-only audit entry written once per decision.
type ClaimRecord struct {
	ID          string                 `json:"id" db:"id"`
	SessionID   string                 `json:"sessionId" db:"session_id"`
	ClaimType   ClaimType              `json:"claimType" db:"claim_type"`
	ProcessStep ProcessStep            `json:"processStep" db:"process_step"`
	Status      string                 `json:"status" db:"status"`
	PlanTier    PlanTier               `json:"planTier" db:"plan_tier"`
	Payload     map[string]interface{} `json:"payload" db:"payload"`
	CreatedAt   time.Time              `json:"createdAt" db:"created_at"`
}

type Recipient string

const (
	RecipientClient   Recipient = "client"
	RecipientProvider Recipient = "provider"
)

// NotificationResult tracks delivery per recipient.
type NotificationResult struct {
	Recipient Recipient `json:"recipient"`
	Sent      bool      `json:"sent"`
	MessageID string    `json:"messageId,omitempty"`
	EmailSent bool      `json:"emailSent,omitempty"`
	Error     string    `json:"error,omitempty"`
}
