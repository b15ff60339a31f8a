// Package errors defines the claim error taxonomy and its mapping onto
// workflow (BPMN) errors.
package errors

import (
	"fmt"
	"time"
)

// ==========================
// 1. Claim Error Kinds
// ==========================

// Kind is the user-facing error classification carried by a result envelope.
type Kind string

const (
	KindMissingRequiredFields Kind = "missing_required_fields"
	KindInvalidValue          Kind = "invalid_value"
	KindAnalysisError         Kind = "analysis_error"
	KindCoverageError         Kind = "coverage_error"
	KindDocumentError         Kind = "document_error"
	KindValidationFailed      Kind = "validation_failed"
	KindSearchError           Kind = "search_error"
	KindProcessingError       Kind = "processing_error"
	KindInvalidEventStructure Kind = "invalid_event_structure"
	KindUnrecognizedIntent    Kind = "unrecognized_intent"
)

var kindMessages = map[Kind]string{
	KindMissingRequiredFields: "Required information is missing",
	KindInvalidValue:          "Invalid procedure value",
	KindAnalysisError:         "Error analyzing symptoms",
	KindCoverageError:         "Error checking coverage",
	KindDocumentError:         "Error processing document",
	KindValidationFailed:      "Document validation failed",
	KindSearchError:           "Error searching for dentists",
	KindProcessingError:       "Internal error. Please try again.",
	KindInvalidEventStructure: "Invalid request structure",
	KindUnrecognizedIntent:    "Intent not recognized",
}

// Message returns the fixed human-readable message for a kind. Unknown kinds
// get the generic processing message so internal detail never leaks.
func (k Kind) Message() string {
	if msg, ok := kindMessages[k]; ok {
		return msg
	}
	return kindMessages[KindProcessingError]
}

// IsUserError reports whether the kind is caused by caller input rather than
// a collaborator.
func (k Kind) IsUserError() bool {
	switch k {
	case KindMissingRequiredFields, KindInvalidValue, KindValidationFailed,
		KindInvalidEventStructure, KindUnrecognizedIntent:
		return true
	}
	return false
}

// ==========================
// 2. Standard Error Types
// ==========================

// ErrorCode represents internal error codes reported to the workflow engine.
type ErrorCode string

const (
	ErrCodeInvalidJobVariables ErrorCode = "INVALID_JOB_VARIABLES"
	ErrCodeClaimRejected       ErrorCode = "CLAIM_REJECTED"
	ErrCodeClaimProcessing     ErrorCode = "CLAIM_PROCESSING_FAILED"
	ErrCodeExternalService     ErrorCode = "EXTERNAL_SERVICE_ERROR"
	ErrCodeTimeout             ErrorCode = "TIMEOUT_ERROR"
	ErrCodeInternal            ErrorCode = "INTERNAL_ERROR"
)

// StandardError is the internal error shape handed to the job error handler.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Kind      Kind                   `json:"kind,omitempty"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// BPMNError is what gets thrown to (or failed on) the Zeebe job.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Constructors
// ==========================

func NewInvalidJobVariablesError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidJobVariables,
		Kind:      KindInvalidEventStructure,
		Message:   KindInvalidEventStructure.Message(),
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewClaimRejectedError reports a claim that ended with a user-caused kind.
func NewClaimRejectedError(kind Kind, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeClaimRejected,
		Kind:      kind,
		Message:   kind.Message(),
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewClaimProcessingError reports a claim that failed in a collaborator stage.
func NewClaimProcessingError(kind Kind, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeClaimProcessing,
		Kind:      kind,
		Message:   kind.Message(),
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewExternalServiceError(service string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeExternalService,
		Message:   fmt.Sprintf("External service '%s' error", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewTimeoutError(service string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTimeout,
		Message:   fmt.Sprintf("Timeout calling '%s'", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. BPMN Mapping
// ==========================

var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeInvalidJobVariables: "INVALID_CLAIM_EVENT",
	ErrCodeClaimRejected:       "CLAIM_REJECTED",
	ErrCodeClaimProcessing:     "CLAIM_PROCESSING_FAILED",
}

func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeClaimProcessing, ErrCodeExternalService:
		return 3
	case ErrCodeTimeout:
		return 2
	default:
		return 0
	}
}

func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	if stdErr.Kind != "" {
		vars["errorKind"] = string(stdErr.Kind)
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}
