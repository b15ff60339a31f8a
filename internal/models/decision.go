// internal/models/decision.go
package models

// CoverageDecision is the pre-approval outcome. Percentage and cap always come
// from the plan rule table.
type CoverageDecision struct {
	Approved           bool       `json:"approved"`
	PlanTier           PlanTier   `json:"plan_tier"`
	CoveragePercentage float64    `json:"coverage_percentage"`
	MaxCoverage        float64    `json:"max_coverage"`
	UrgencyLevel       Level      `json:"urgency_level"`
	Complexity         Complexity `json:"complexity"`
	CoveredCategories  []string   `json:"covered_categories"`
	Error              string     `json:"error,omitempty"`
}

type ReimbursementStatus string

const (
	ReimbursementApproved ReimbursementStatus = "approved"
	ReimbursementPartial  ReimbursementStatus = "partial"
	ReimbursementRejected ReimbursementStatus = "rejected"
)

// ReimbursementDecision is the reimbursement outcome. Amount is rounded to two
// decimal places and never negative.
type ReimbursementDecision struct {
	Status         ReimbursementStatus `json:"status"`
	Amount         float64             `json:"amount"`
	Percentage     float64             `json:"percentage"`
	OriginalAmount float64             `json:"original_amount"`
	MaxAllowed     float64             `json:"max_allowed"`
	Message        string              `json:"message"`
}

// ExtractedDocument is the untrusted output of document extraction.
type ExtractedDocument struct {
	TotalAmount          *float64 `json:"total_amount,omitempty"`
	TaxAmount            *float64 `json:"tax_amount,omitempty"`
	Date                 string   `json:"date,omitempty"`
	ProviderName         string   `json:"provider_name,omitempty"`
	ProcedureDescription string   `json:"procedure_description,omitempty"`
}

// DocumentValidation compares an extracted document with the claimed value.
type DocumentValidation struct {
	Valid          bool     `json:"valid"`
	Errors         []string `json:"errors"`
	Warnings       []string `json:"warnings"`
	DocumentAmount float64  `json:"document_amount"`
}

// HasWarnings reports whether the reimbursement penalty applies.
func (v DocumentValidation) HasWarnings() bool {
	return len(v.Warnings) > 0
}
