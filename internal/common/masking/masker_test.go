package masking

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Field strategies
// ==========================

func TestMask_FieldStrategies(t *testing.T) {
	tests := []struct {
		name  string
		field string
		value string
		want  string
	}{
		{"long document key", "documentKey", "abcdefgh1234", "abcd...1234"},
		{"short document key", "documentKey", "short", "***"},
		{"eight char document key", "documentKey", "abcdefgh", "***"},
		{"formatted national id", "cpf", "123.456.789-09", "***.456.789-**"},
		{"invalid national id", "nationalId", "123", "***INVALID_ID***"},
		{"email", "email", "maria.silva@example.com", "m***a@example.com"},
		{"short email local part", "email", "ab@x.com", "**@x.com"},
		{"email without at", "email", "invalid", "***"},
		{"mobile phone", "phone", "(11) 98765-4321", "(11) *****-4321"},
		{"landline phone", "phone", "11 3333-4444", "(11) ****-4444"},
		{"international phone", "phone", "+55 11 98765-4321", "***4321"},
		{"short phone", "phone", "123", "***"},
		{"value under 100", "procedureValue", "50", "<100"},
		{"value at 100", "procedureValue", "100", "100-500"},
		{"value under 1000", "procedureValue", "999.99", "500-1000"},
		{"value at 1000", "procedureValue", "1000", ">1000"},
		{"non numeric value", "valorProcedimento", "abc", "INVALID_VALUE"},
		{"plan tier", "planTier", "premium", "pr...um"},
		{"short plan tier", "planoDental", "gold", "***"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Mask(map[string]string{tt.field: tt.value})
			assert.Equal(t, tt.want, got[tt.field])
		})
	}
}

func TestMask_Symptoms(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  string
	}{
		{
			name:  "portuguese age and relationship",
			value: "Dor de dente no meu filho de 12 anos",
			want:  "Dor de dente no meu *** de ***",
		},
		{
			name:  "english age relationship and marital status",
			value: "Tooth pain, my son is 35 years old and married",
			want:  "Tooth pain, my *** is *** and ***",
		},
		{
			name:  "accented terms are case insensitive",
			value: "MÃE com dor, sexo feminino",
			want:  "*** com dor, sexo ***",
		},
		{
			name:  "adjacent terms",
			value: "pai mãe avó",
			want:  "*** *** ***",
		},
		{
			name:  "terms inside words are kept",
			value: "female-only words like personal stay, pain too",
			want:  "***-only words like personal stay, pain too",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Mask(map[string]string{"symptoms": tt.value})
			assert.Equal(t, tt.want, got["symptoms"])
		})
	}
}

func TestMask_SymptomsTruncated(t *testing.T) {
	got := Mask(map[string]string{"sintomas": strings.Repeat("a", 150)})["sintomas"]

	assert.Len(t, got, 100)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.Equal(t, strings.Repeat("a", 97), strings.TrimSuffix(got, "..."))
}

// ==========================
// Copy semantics
// ==========================

func TestMask_DoesNotMutateInput(t *testing.T) {
	in := map[string]string{
		"documentKey": "abcdefgh1234",
		"location":    "",
		"specialty":   "orthodontics",
	}

	out := Mask(in)

	assert.Equal(t, "abcdefgh1234", in["documentKey"])
	assert.Equal(t, "abcd...1234", out["documentKey"])
	assert.Equal(t, "", out["location"], "empty fields are skipped")
	assert.Equal(t, "orthodontics", out["specialty"], "non-sensitive fields are copied")
	_, hasEmail := out["email"]
	assert.False(t, hasEmail, "absent fields stay absent")
}

func TestMask_NilInput(t *testing.T) {
	out := Mask(nil)
	require.NotNil(t, out)
	assert.Empty(t, out)
}

// ==========================
// Fault isolation
// ==========================

func TestMask_FailingStrategyUsesSentinel(t *testing.T) {
	m := New().
		WithStrategy("email", func(string) (string, error) { panic("boom") }).
		WithStrategy("phone", func(string) (string, error) { return "", errors.New("bad input") })

	out := m.Mask(map[string]string{
		"email":       "john@example.com",
		"phone":       "11987654321",
		"documentKey": "abcdefgh1234",
	})

	assert.Equal(t, ErrorSentinel, out["email"])
	assert.Equal(t, ErrorSentinel, out["phone"])
	assert.Equal(t, "abcd...1234", out["documentKey"])
}

func TestMask_NeverPanics(t *testing.T) {
	inputs := []string{"", "@", "@@", "\xff\xfe", "ü", strings.Repeat("9", 500), "-1e309"}
	for _, v := range inputs {
		slots := map[string]string{}
		for _, fs := range New().fields {
			slots[fs.field] = v
		}
		assert.NotPanics(t, func() { Mask(slots) }, "value=%q", v)
	}
}

func TestMaskAny(t *testing.T) {
	out := MaskAny(map[string]interface{}{
		"email":    "john@x.io",
		"symptoms": 42,
		"attempt":  3,
	})

	assert.Equal(t, "j***n@x.io", out["email"])
	assert.Equal(t, "***", out["symptoms"])
	assert.Equal(t, 3, out["attempt"])
}
