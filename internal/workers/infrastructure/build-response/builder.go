// internal/workers/infrastructure/build-response/builder.go
package buildresponse

import (
	"encoding/json"
	"fmt"
	"net/http"

	"dental-claims/internal/models"
)

const TaskType = "build-response"

// CriticalErrorMessage is the only text a caller sees after an unexpected failure.
const CriticalErrorMessage = "Critical system error. Please try again later."

// Keys of ResultEnvelope.Data read when composing the reply text.
const (
	DataPreApproval   = "pre_approval"
	DataClinics       = "clinics"
	DataReimbursement = "reimbursement_result"
)

// BuildLexResponse turns an envelope into a close-dialog reply. Failed
// envelopes only ever expose their message.
func BuildLexResponse(envelope *models.ResultEnvelope, sessionAttributes map[string]string) *LexResponse {
	state := StateFailed
	content := CriticalErrorMessage
	if envelope != nil {
		content = envelope.Message
		if envelope.Succeeded() {
			state = StateFulfilled
			content = successMessage(envelope)
		}
	}

	attrs := sessionAttributes
	if attrs == nil {
		attrs = map[string]string{}
	}

	return &LexResponse{
		SessionAttributes: attrs,
		DialogAction: DialogAction{
			Type:             DialogClose,
			FulfillmentState: state,
			Message: Message{
				ContentType: ContentPlainText,
				Content:     content,
			},
		},
	}
}

func successMessage(envelope *models.ResultEnvelope) string {
	data := envelope.Data

	if raw, ok := data[DataPreApproval]; ok {
		var decision models.CoverageDecision
		if decode(raw, &decision) {
			clinics := clinicCount(data[DataClinics])
			if decision.Approved {
				return fmt.Sprintf("Pre-approval GRANTED! Coverage: %.0f%%. We found %d nearby clinics.",
					decision.CoveragePercentage*100, clinics)
			}
			return fmt.Sprintf("In-person evaluation required. We found %d clinics for your evaluation.", clinics)
		}
	}

	if raw, ok := data[DataReimbursement]; ok {
		var decision models.ReimbursementDecision
		if decode(raw, &decision) && decision.Message != "" {
			return decision.Message
		}
		return "Reimbursement processing completed."
	}

	if _, ok := data[DataClinics]; ok {
		return envelope.Message + ". Details sent to your email."
	}

	return envelope.Message
}

func clinicCount(v interface{}) int {
	switch c := v.(type) {
	case []models.ClinicRecord:
		return len(c)
	case []interface{}:
		return len(c)
	}
	return 0
}

// decode accepts either the typed value or its decoded-JSON form.
func decode(v interface{}, out interface{}) bool {
	switch typed := out.(type) {
	case *models.CoverageDecision:
		if d, ok := v.(models.CoverageDecision); ok {
			*typed = d
			return true
		}
	case *models.ReimbursementDecision:
		if d, ok := v.(models.ReimbursementDecision); ok {
			*typed = d
			return true
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return false
	}
	return json.Unmarshal(b, out) == nil
}

// WrapAPIGateway wraps a reply in the proxy envelope.
func WrapAPIGateway(resp *LexResponse, statusCode int) (*APIGatewayResponse, error) {
	body, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("encode response: %w", err)
	}
	return &APIGatewayResponse{
		StatusCode: statusCode,
		Headers:    proxyHeaders(),
		Body:       string(body),
	}, nil
}

// CriticalErrorResponse is the reply used when the pipeline itself failed.
func CriticalErrorResponse(sessionAttributes map[string]string) *LexResponse {
	return BuildLexResponse(nil, sessionAttributes)
}

// CriticalAPIGatewayResponse is CriticalErrorResponse in the proxy envelope.
func CriticalAPIGatewayResponse(sessionAttributes map[string]string) *APIGatewayResponse {
	resp, err := WrapAPIGateway(CriticalErrorResponse(sessionAttributes), http.StatusInternalServerError)
	if err != nil {
		return &APIGatewayResponse{
			StatusCode: http.StatusInternalServerError,
			Headers:    proxyHeaders(),
			Body:       `{}`,
		}
	}
	return resp
}

func proxyHeaders() map[string]string {
	return map[string]string{
		"Content-Type":                "application/json",
		"Access-Control-Allow-Origin": "*",
	}
}
