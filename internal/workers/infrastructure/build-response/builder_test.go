package buildresponse

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dental-claims/internal/models"
)

func TestBuildLexResponse_Messages(t *testing.T) {
	clinics := []models.ClinicRecord{{Name: "a"}, {Name: "b"}}

	tests := []struct {
		name     string
		envelope *models.ResultEnvelope
		state    string
		content  string
	}{
		{
			name: "pre-approval granted",
			envelope: &models.ResultEnvelope{Status: models.StatusSuccess, Message: "Pre-approval processed successfully", Data: map[string]interface{}{
				DataPreApproval: models.CoverageDecision{Approved: true, CoveragePercentage: 0.9},
				DataClinics:     clinics,
			}},
			state:   StateFulfilled,
			content: "Pre-approval GRANTED! Coverage: 90%. We found 2 nearby clinics.",
		},
		{
			name: "pre-approval needs evaluation",
			envelope: &models.ResultEnvelope{Status: models.StatusSuccess, Data: map[string]interface{}{
				DataPreApproval: models.CoverageDecision{Approved: false, CoveragePercentage: 0.7},
				DataClinics:     []models.ClinicRecord{},
			}},
			state:   StateFulfilled,
			content: "In-person evaluation required. We found 0 clinics for your evaluation.",
		},
		{
			name: "pre-approval from decoded JSON",
			envelope: &models.ResultEnvelope{Status: models.StatusSuccess, Data: map[string]interface{}{
				DataPreApproval: map[string]interface{}{"approved": true, "coverage_percentage": 0.7},
				DataClinics:     []interface{}{map[string]interface{}{"name": "a"}},
			}},
			state:   StateFulfilled,
			content: "Pre-approval GRANTED! Coverage: 70%. We found 1 nearby clinics.",
		},
		{
			name: "reimbursement",
			envelope: &models.ResultEnvelope{Status: models.StatusSuccess, Data: map[string]interface{}{
				DataReimbursement: models.ReimbursementDecision{Message: "Reimbursement approved in the amount of R$ 900.00"},
			}},
			state:   StateFulfilled,
			content: "Reimbursement approved in the amount of R$ 900.00",
		},
		{
			name: "dentist search",
			envelope: &models.ResultEnvelope{Status: models.StatusSuccess, Message: "Found 2 dentists", Data: map[string]interface{}{
				DataClinics: clinics,
			}},
			state:   StateFulfilled,
			content: "Found 2 dentists. Details sent to your email.",
		},
		{
			name:     "failure shows envelope message",
			envelope: &models.ResultEnvelope{Status: "missing_required_fields", Message: "Please provide: symptoms"},
			state:    StateFailed,
			content:  "Please provide: symptoms",
		},
		{
			name:     "failure with data still hides it",
			envelope: &models.ResultEnvelope{Status: "search_error", Message: "Error searching for dentists", Data: map[string]interface{}{DataClinics: clinics}},
			state:    StateFailed,
			content:  "Error searching for dentists",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := BuildLexResponse(tt.envelope, map[string]string{"lexSessionId": "s1"})

			assert.Equal(t, DialogClose, resp.DialogAction.Type)
			assert.Equal(t, tt.state, resp.DialogAction.FulfillmentState)
			assert.Equal(t, ContentPlainText, resp.DialogAction.Message.ContentType)
			assert.Equal(t, tt.content, resp.DialogAction.Message.Content)
			assert.Equal(t, "s1", resp.SessionAttributes["lexSessionId"])
		})
	}
}

func TestBuildLexResponse_JSONShape(t *testing.T) {
	resp := BuildLexResponse(&models.ResultEnvelope{Status: models.StatusSuccess, Message: "ok"}, nil)

	b, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"sessionAttributes": {},
		"dialogAction": {
			"type": "Close",
			"fulfillmentState": "Fulfilled",
			"message": {"contentType": "PlainText", "content": "ok"}
		}
	}`, string(b))
}

func TestWrapAPIGateway(t *testing.T) {
	lex := BuildLexResponse(&models.ResultEnvelope{Status: models.StatusSuccess, Message: "ok"}, nil)

	resp, err := WrapAPIGateway(lex, http.StatusOK)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Headers["Content-Type"])
	assert.Equal(t, "*", resp.Headers["Access-Control-Allow-Origin"])

	var decoded LexResponse
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &decoded))
	assert.Equal(t, *lex, decoded)
}

func TestCriticalResponses(t *testing.T) {
	lex := CriticalErrorResponse(map[string]string{"lexSessionId": "s1"})
	assert.Equal(t, StateFailed, lex.DialogAction.FulfillmentState)
	assert.Equal(t, CriticalErrorMessage, lex.DialogAction.Message.Content)
	assert.Equal(t, "s1", lex.SessionAttributes["lexSessionId"])

	proxy := CriticalAPIGatewayResponse(nil)
	assert.Equal(t, http.StatusInternalServerError, proxy.StatusCode)
	assert.Equal(t, "*", proxy.Headers["Access-Control-Allow-Origin"])
	assert.Contains(t, proxy.Body, CriticalErrorMessage)
}
