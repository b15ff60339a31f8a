// Package masking redacts sensitive claim fields before they reach logs or
// telemetry.
package masking

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ErrorSentinel replaces a field whose strategy failed.
const ErrorSentinel = "***MASKING_ERROR***"

const (
	redacted          = "***"
	invalidNationalID = "***INVALID_ID***"
	invalidValue      = "INVALID_VALUE"
	maxSymptomRunes   = 100
)

// Strategy transforms one field value.
type Strategy func(value string) (string, error)

type fieldStrategy struct {
	field    string
	strategy Strategy
}

// Masker applies per-field strategies. The zero value masks nothing; use New.
type Masker struct {
	fields []fieldStrategy
}

// New returns a masker with the standard claim field strategies, including
// the Portuguese slot aliases still sent by older front-ends.
func New() *Masker {
	m := &Masker{}
	for _, f := range []string{"documentKey", "arquivo"} {
		m.fields = append(m.fields, fieldStrategy{f, maskDocumentKey})
	}
	for _, f := range []string{"cpf", "nationalId"} {
		m.fields = append(m.fields, fieldStrategy{f, maskNationalID})
	}
	m.fields = append(m.fields,
		fieldStrategy{"email", maskEmail},
		fieldStrategy{"phone", maskPhone},
		fieldStrategy{"telefone", maskPhone},
	)
	for _, f := range []string{"planTier", "planoDental", "location", "localizacao", "cep"} {
		m.fields = append(m.fields, fieldStrategy{f, maskGeneric})
	}
	for _, f := range []string{"procedureValue", "valorProcedimento"} {
		m.fields = append(m.fields, fieldStrategy{f, maskCurrency})
	}
	for _, f := range []string{"symptoms", "sintomas"} {
		m.fields = append(m.fields, fieldStrategy{f, maskSymptoms})
	}
	return m
}

// WithStrategy replaces (or adds) the strategy for a field and returns a new masker.
func (m *Masker) WithStrategy(field string, s Strategy) *Masker {
	out := &Masker{fields: make([]fieldStrategy, 0, len(m.fields)+1)}
	replaced := false
	for _, fs := range m.fields {
		if fs.field == field {
			fs.strategy = s
			replaced = true
		}
		out.fields = append(out.fields, fs)
	}
	if !replaced {
		out.fields = append(out.fields, fieldStrategy{field, s})
	}
	return out
}

// Mask returns a copy of slots with sensitive fields redacted. Absent and
// empty fields are left untouched.
func (m *Masker) Mask(slots map[string]string) map[string]string {
	out := make(map[string]string, len(slots))
	for k, v := range slots {
		out[k] = v
	}
	for _, fs := range m.fields {
		v, ok := out[fs.field]
		if !ok || v == "" {
			continue
		}
		out[fs.field] = apply(fs.strategy, v)
	}
	return out
}

// MaskAny masks string values of an arbitrary payload. Non-string values of a
// sensitive field are fully redacted.
func (m *Masker) MaskAny(payload map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(payload))
	for k, v := range payload {
		out[k] = v
	}
	for _, fs := range m.fields {
		v, ok := out[fs.field]
		if !ok || v == nil {
			continue
		}
		s, isString := v.(string)
		if !isString {
			out[fs.field] = redacted
			continue
		}
		if s == "" {
			continue
		}
		out[fs.field] = apply(fs.strategy, s)
	}
	return out
}

func apply(s Strategy, value string) (result string) {
	defer func() {
		if r := recover(); r != nil {
			result = ErrorSentinel
		}
	}()
	masked, err := s(value)
	if err != nil {
		return ErrorSentinel
	}
	return masked
}

var defaultMasker = New()

// Mask masks slots with the standard strategies.
func Mask(slots map[string]string) map[string]string {
	return defaultMasker.Mask(slots)
}

// MaskAny masks a payload with the standard strategies.
func MaskAny(payload map[string]interface{}) map[string]interface{} {
	return defaultMasker.MaskAny(payload)
}

// ==========================
// Field strategies
// ==========================

func maskDocumentKey(v string) (string, error) {
	if utf8.RuneCountInString(v) <= 8 {
		return redacted, nil
	}
	r := []rune(v)
	return string(r[:4]) + "..." + string(r[len(r)-4:]), nil
}

var nonDigit = regexp.MustCompile(`\D`)

func maskNationalID(v string) (string, error) {
	digits := nonDigit.ReplaceAllString(v, "")
	if len(digits) != 11 {
		return invalidNationalID, nil
	}
	return fmt.Sprintf("***.%s.%s-**", digits[3:6], digits[6:9]), nil
}

func maskEmail(v string) (string, error) {
	parts := strings.Split(v, "@")
	if len(parts) != 2 {
		return redacted, nil
	}
	local, domain := []rune(parts[0]), parts[1]
	if len(local) <= 2 {
		return strings.Repeat("*", len(local)) + "@" + domain, nil
	}
	return string(local[0]) + "***" + string(local[len(local)-1]) + "@" + domain, nil
}

func maskPhone(v string) (string, error) {
	d := nonDigit.ReplaceAllString(v, "")
	switch {
	case len(d) < 8:
		return redacted, nil
	case len(d) == 11:
		return fmt.Sprintf("(%s) *****-%s", d[:2], d[len(d)-4:]), nil
	case len(d) == 10:
		return fmt.Sprintf("(%s) ****-%s", d[:2], d[len(d)-4:]), nil
	default:
		return redacted + d[len(d)-4:], nil
	}
}

func maskCurrency(v string) (string, error) {
	n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return invalidValue, nil
	}
	switch {
	case n < 100:
		return "<100", nil
	case n < 500:
		return "100-500", nil
	case n < 1000:
		return "500-1000", nil
	default:
		return ">1000", nil
	}
}

// Terms are matched case-insensitively between non-letter boundaries; RE2's
// \b is ASCII-only and would miss words ending in accented letters.
var symptomPatterns = func() []*regexp.Regexp {
	terms := []string{
		// age
		`\d{2,}\s*(?:anos?|years?(?:\s+old)?|y/?o)`,
		// relationship
		`neto|neta|filho|filha|pai|mãe|avô|avó|marido|esposa|` +
			`son|daughter|father|mother|grandson|granddaughter|grandfather|grandmother|husband|wife`,
		// marital status
		`solteir[oa]|casad[oa]|divorciad[oa]|viúv[oa]|single|married|divorced|widowed|widow(?:er)?`,
		// gender
		`masculino|feminino|male|female`,
	}
	out := make([]*regexp.Regexp, 0, len(terms))
	for _, t := range terms {
		out = append(out, regexp.MustCompile(`(?i)(^|[^\p{L}\p{N}_])(?:`+t+`)($|[^\p{L}\p{N}_])`))
	}
	return out
}()

func maskSymptoms(v string) (string, error) {
	masked := v
	for _, re := range symptomPatterns {
		// adjacent terms share a boundary rune, so repeat until nothing matches
		for {
			next := re.ReplaceAllString(masked, "${1}"+redacted+"${2}")
			if next == masked {
				break
			}
			masked = next
		}
	}
	if utf8.RuneCountInString(masked) > maxSymptomRunes {
		r := []rune(masked)
		masked = string(r[:maxSymptomRunes-3]) + "..."
	}
	return masked, nil
}

func maskGeneric(v string) (string, error) {
	r := []rune(v)
	if len(r) <= 4 {
		return redacted, nil
	}
	return string(r[:2]) + "..." + string(r[len(r)-2:]), nil
}
