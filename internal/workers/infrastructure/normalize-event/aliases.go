// internal/workers/infrastructure/normalize-event/aliases.go
package normalizeevent

import "dental-claims/internal/models"

type slotAliases struct {
	Slot    string
	Aliases []string
}

// slotAliasTable maps the field names callers use to canonical slot names.
// Order matters: for each slot the first non-empty alias wins.
var slotAliasTable = []slotAliases{
	{models.SlotSymptoms, []string{"symptoms", "sintomas", "descricao", "description"}},
	{models.SlotPlanTier, []string{"plan", "plano", "planoDental", "planTier", "insurance"}},
	{models.SlotLocation, []string{"location", "localizacao", "cep", "city", "cidade"}},
	{models.SlotDocumentKey, []string{"document", "documentKey", "file", "arquivo"}},
	{models.SlotProcedureValue, []string{"value", "valor", "valorProcedimento", "procedureValue", "amount"}},
	{models.SlotSpecialty, []string{"specialty", "especialidade", "treatment"}},
}

var intentAliases = map[string]models.IntentName{
	"PreApproval":           models.IntentPreApproval,
	"SolicitarPreAprovacao": models.IntentPreApproval,
	"Reimbursement":         models.IntentReimbursement,
	"SolicitarReembolso":    models.IntentReimbursement,
	"DentistSearch":         models.IntentDentistSearch,
	"BuscarDentistas":       models.IntentDentistSearch,
}

// pathIntents infers the intent from a request path fragment.
var pathIntents = []struct {
	Fragment string
	Intent   models.IntentName
}{
	{"pre-approval", models.IntentPreApproval},
	{"reimbursement", models.IntentReimbursement},
	{"dentists", models.IntentDentistSearch},
}

// CanonicalIntent maps a received intent name. Unknown names are Unrecognized.
func CanonicalIntent(raw string) models.IntentName {
	if name, ok := intentAliases[raw]; ok {
		return name
	}
	return models.IntentUnrecognized
}

// CanonicalSlots resolves every alias in fields into canonical slot names.
// Fields that are no known alias are dropped.
func CanonicalSlots(fields map[string]string) map[string]string {
	slots := make(map[string]string)
	for _, entry := range slotAliasTable {
		for _, alias := range entry.Aliases {
			if v := fields[alias]; v != "" {
				slots[entry.Slot] = v
				break
			}
		}
		if _, ok := slots[entry.Slot]; !ok {
			for _, alias := range entry.Aliases {
				if _, present := fields[alias]; present {
					slots[entry.Slot] = ""
					break
				}
			}
		}
	}
	return slots
}
