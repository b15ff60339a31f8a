// internal/workers/notification/send-claim-notification/templates.go
package sendclaimnotification

import (
	"fmt"
	"strings"
)

const (
	TypePreApprovalClient   = "pre_approval_client"
	TypePreApprovalProvider = "pre_approval_provider"
	TypeReimbursement       = "reimbursement"
	TypeDentistSearch       = "dentist_search"
)

type template struct {
	Subject string
	Body    string
}

var templates = map[string]template{
	TypePreApprovalClient: {
		Subject: "{{statusSubject}}",
		Body: `Your Dental Pre-Approval Result

Status: {{status}}
Plan: {{planTier}}
Coverage: {{coveragePercentage}}% of the approved amount

Identified condition: {{primaryCondition}}
Urgency level: {{urgencyLevel}}

Next steps: {{nextSteps}}

Nearby clinics:
{{clinics}}

Support line: (11) 9999-9999`,
	},
	TypePreApprovalProvider: {
		Subject: "New Pre-Approval - Plan {{planTierUpper}}",
		Body: `NEW DENTAL PRE-APPROVAL REQUEST

Plan: {{planTierUpper}}
Urgency: {{urgencyUpper}}
Status: {{providerStatus}}

Symptoms: {{symptoms}}
Conditions: {{conditions}}

This is an automated message from the claims system.`,
	},
	TypeReimbursement: {
		Subject: "{{statusSubject}}",
		Body: `Your Reimbursement Request Result

Status: {{statusUpper}}
Approved amount: R$ {{amount}}
Coverage: {{percentage}}%

{{message}}

Next steps: {{nextSteps}}

Support line: (11) 9999-9999`,
	},
	TypeDentistSearch: {
		Subject: "Dentists Found for Your Plan",
		Body: `Dentist Search Result

Plan: {{planTier}}
Specialty: {{specialty}}
Dentists found: {{count}}

{{clinics}}

Support line: (11) 9999-9999`,
	},
}

// renderTemplate substitutes {{key}} placeholders and drops the ones with no value.
func renderTemplate(tmpl string, data map[string]interface{}) string {
	result := tmpl

	for k, v := range data {
		placeholder := "{{" + k + "}}"
		value := ""
		switch tv := v.(type) {
		case string:
			value = tv
		case int:
			value = fmt.Sprintf("%d", tv)
		case nil:
		default:
			value = fmt.Sprintf("%v", tv)
		}
		result = strings.ReplaceAll(result, placeholder, value)
	}

	for {
		start := strings.Index(result, "{{")
		if start == -1 {
			break
		}
		end := strings.Index(result[start:], "}}")
		if end == -1 {
			break
		}
		end += start + 2
		result = result[:start] + result[end:]
	}

	return result
}
