package validateclaimslots

import (
	"testing"

	"dental-claims/internal/common/errors"
	"dental-claims/internal/models"

	"github.com/stretchr/testify/assert"
)

// ==========================
// Test Helper Functions
// ==========================

func completeSlots(intent models.IntentName) map[string]string {
	switch intent {
	case models.IntentPreApproval:
		return map[string]string{
			models.SlotSymptoms: "tooth pain when chewing",
			models.SlotPlanTier: "premium",
			models.SlotLocation: "Centro",
		}
	case models.IntentReimbursement:
		return map[string]string{
			models.SlotDocumentKey:    "receipts/2024/abc123.pdf",
			models.SlotPlanTier:       "basic",
			models.SlotProcedureValue: "150.00",
		}
	}
	return map[string]string{}
}

func float(v float64) *float64 { return &v }

// ==========================
// Slot Validation Tests
// ==========================

func TestValidateSlots_ReportsExactMissingFieldsInOrder(t *testing.T) {
	for _, intent := range []models.IntentName{models.IntentPreApproval, models.IntentReimbursement} {
		required := RequiredSlots(intent)

		// every subset of required fields removed, blanked or whitespace-only
		for mask := 1; mask < 1<<len(required); mask++ {
			for _, blank := range []string{"<absent>", "", "   "} {
				slots := completeSlots(intent)
				var want []string
				for i, field := range required {
					if mask&(1<<i) == 0 {
						continue
					}
					want = append(want, field)
					if blank == "<absent>" {
						delete(slots, field)
					} else {
						slots[field] = blank
					}
				}

				res := ValidateSlots(intent, slots)

				assert.False(t, res.Valid)
				assert.Equal(t, errors.KindMissingRequiredFields, res.Kind)
				assert.Equal(t, want, res.MissingFields, "intent=%s mask=%b blank=%q", intent, mask, blank)
			}
		}
	}
}

func TestValidateSlots_Messages(t *testing.T) {
	res := ValidateSlots(models.IntentPreApproval, map[string]string{models.SlotPlanTier: "basic"})
	assert.Equal(t, "Please provide: symptoms, location", res.Message)

	res = ValidateSlots(models.IntentReimbursement, map[string]string{})
	assert.Equal(t, "For reimbursement I need: documentKey, planTier, procedureValue", res.Message)
}

func TestValidateSlots_ProcedureValue(t *testing.T) {
	tests := []struct {
		name      string
		value     string
		wantValid bool
		wantValue float64
	}{
		{"decimal", "150.50", true, 150.50},
		{"integer", "200", true, 200},
		{"zero", "0", true, 0},
		{"surrounding spaces", " 99.9 ", true, 99.9},
		{"non numeric", "abc", false, 0},
		{"currency symbol", "R$ 150", false, 0},
		{"comma decimal", "150,50", false, 0},
		{"negative", "-10", false, 0},
		{"not a number", "NaN", false, 0},
		{"infinite", "Inf", false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slots := completeSlots(models.IntentReimbursement)
			slots[models.SlotProcedureValue] = tt.value

			res := ValidateSlots(models.IntentReimbursement, slots)

			assert.Equal(t, tt.wantValid, res.Valid)
			if tt.wantValid {
				assert.Empty(t, res.Kind)
				assert.InDelta(t, tt.wantValue, res.ProcedureValue, 1e-9)
				return
			}
			assert.Equal(t, errors.KindInvalidValue, res.Kind, "non-numeric values are never reported as missing")
			assert.Empty(t, res.MissingFields)
		})
	}
}

func TestValidateSlots_CompleteAndOptional(t *testing.T) {
	assert.True(t, ValidateSlots(models.IntentPreApproval, completeSlots(models.IntentPreApproval)).Valid)
	assert.True(t, ValidateSlots(models.IntentReimbursement, completeSlots(models.IntentReimbursement)).Valid)
	assert.True(t, ValidateSlots(models.IntentDentistSearch, nil).Valid)
}

// ==========================
// Document Validation Tests
// ==========================

func TestValidateDocument(t *testing.T) {
	tests := []struct {
		name         string
		doc          models.ExtractedDocument
		claimed      float64
		wantValid    bool
		wantErrors   []string
		wantWarnings []string
	}{
		{
			name:         "matching document",
			doc:          models.ExtractedDocument{TotalAmount: float(150), Date: "2024-05-10", ProviderName: "Clinic"},
			claimed:      155,
			wantValid:    true,
			wantErrors:   []string{},
			wantWarnings: []string{},
		},
		{
			name:         "amount mismatch beyond tolerance",
			doc:          models.ExtractedDocument{TotalAmount: float(150), Date: "2024-05-10", ProviderName: "Clinic"},
			claimed:      160.01,
			wantValid:    true,
			wantErrors:   []string{},
			wantWarnings: []string{warnAmountMismatch},
		},
		{
			name:         "missing total",
			doc:          models.ExtractedDocument{Date: "2024-05-10", ProviderName: "Clinic"},
			claimed:      100,
			wantValid:    false,
			wantErrors:   []string{errDocumentAmount},
			wantWarnings: []string{},
		},
		{
			name:         "zero total and missing metadata",
			doc:          models.ExtractedDocument{TotalAmount: float(0)},
			claimed:      100,
			wantValid:    false,
			wantErrors:   []string{errDocumentAmount},
			wantWarnings: []string{warnMissingDate, warnMissingProvider},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateDocument(tt.doc, tt.claimed)
			assert.Equal(t, tt.wantValid, got.Valid)
			assert.Equal(t, tt.wantErrors, got.Errors)
			assert.Equal(t, tt.wantWarnings, got.Warnings)
			if tt.doc.TotalAmount != nil && *tt.doc.TotalAmount > 0 {
				assert.Equal(t, *tt.doc.TotalAmount, got.DocumentAmount)
			}
		})
	}
}
