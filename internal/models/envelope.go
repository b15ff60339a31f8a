// internal/models/envelope.go
package models

// StatusSuccess is the envelope status of a completed claim. Failures carry
// the error kind instead.
const StatusSuccess = "success"

// ResultEnvelope is the uniform return contract of every pipeline run.
type ResultEnvelope struct {
	Status    string                 `json:"status"`
	Message   string                 `json:"message"`
	Data      map[string]interface{} `json:"data,omitempty"`
	SessionID string                 `json:"sessionId"`
}

func (e *ResultEnvelope) Succeeded() bool {
	return e != nil && e.Status == StatusSuccess
}
