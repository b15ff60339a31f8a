// internal/workers/ai-analysis/analyze-symptoms/interpreter.go
package analyzesymptoms

import (
	"encoding/json"
	"fmt"
	"strings"

	"dental-claims/internal/common/validation"
	"dental-claims/internal/models"
)

var diagnosisSchema = validation.MustCompile(map[string]interface{}{
	"type": "object",
	"required": []interface{}{
		"possible_conditions",
		"urgency_level",
		"recommended_actions",
		"coverage_probability",
		"estimated_complexity",
	},
	"properties": map[string]interface{}{
		"possible_conditions": map[string]interface{}{
			"type":     "array",
			"minItems": 1,
			"items":    map[string]interface{}{"type": "string"},
		},
		"urgency_level": levelSchema(),
		"recommended_actions": map[string]interface{}{
			"type":  "array",
			"items": map[string]interface{}{"type": "string"},
		},
		"coverage_probability": levelSchema(),
		"estimated_complexity": map[string]interface{}{
			"type": "string",
			"enum": []interface{}{"simple", "moderate", "complex"},
		},
	},
})

func levelSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "string",
		"enum": []interface{}{"low", "medium", "high"},
	}
}

// Vocabulary the model falls back to when it answers in Portuguese.
var levelSynonyms = map[string]string{
	"baixa": "low", "baixo": "low",
	"media": "medium", "média": "medium", "medio": "medium", "médio": "medium", "moderada": "medium",
	"alta": "high", "alto": "high",
}

var complexitySynonyms = map[string]string{
	"simples":  "simple",
	"moderado": "moderate", "moderada": "moderate",
	"complexo": "complex", "complexa": "complex",
}

// Interpret turns raw model text into a diagnosis. The candidate object spans
// from the first '{' to the last '}'.
func Interpret(raw string) Interpretation {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end < start {
		return fallback("no JSON object in response")
	}

	var doc interface{}
	if err := json.Unmarshal([]byte(raw[start:end+1]), &doc); err != nil {
		return Interpretation{
			Outcome:   OutcomeMalformed,
			Diagnosis: models.FallbackDiagnosis(),
			Err:       fmt.Errorf("%w: %v", ErrInvalidJSONResponse, err),
		}
	}

	obj, ok := doc.(map[string]interface{})
	if !ok {
		return fallback("response object is not a JSON object")
	}
	normalize(obj)

	res, err := diagnosisSchema.Validate(obj)
	if err != nil {
		return fallback(err.Error())
	}
	if !res.Valid {
		return fallback(strings.Join(res.Messages(), "; "))
	}

	return Interpretation{Outcome: OutcomeStructured, Diagnosis: toDiagnosis(obj)}
}

func fallback(reason string) Interpretation {
	return Interpretation{
		Outcome:   OutcomeFallback,
		Diagnosis: models.FallbackDiagnosis(),
		Reason:    reason,
	}
}

// normalize lower-cases enum fields, maps synonyms and fills the optional keys.
func normalize(obj map[string]interface{}) {
	normalizeEnum(obj, "urgency_level", levelSynonyms)
	normalizeEnum(obj, "coverage_probability", levelSynonyms)
	normalizeEnum(obj, "estimated_complexity", complexitySynonyms)

	if v, ok := obj["recommended_actions"]; !ok || v == nil {
		obj["recommended_actions"] = []interface{}{}
	}
	if v, ok := obj["coverage_probability"]; !ok || v == nil {
		obj["coverage_probability"] = string(models.LevelMedium)
	}
}

func normalizeEnum(obj map[string]interface{}, key string, synonyms map[string]string) {
	s, ok := obj[key].(string)
	if !ok {
		return
	}
	s = strings.ToLower(strings.TrimSpace(s))
	if mapped, ok := synonyms[s]; ok {
		s = mapped
	}
	obj[key] = s
}

// toDiagnosis assumes obj passed the schema.
func toDiagnosis(obj map[string]interface{}) models.Diagnosis {
	d := models.Diagnosis{
		PossibleConditions:  stringList(obj["possible_conditions"]),
		UrgencyLevel:        models.Level(obj["urgency_level"].(string)),
		RecommendedActions:  stringList(obj["recommended_actions"]),
		CoverageProbability: models.Level(obj["coverage_probability"].(string)),
		EstimatedComplexity: models.Complexity(obj["estimated_complexity"].(string)),
	}
	if len(d.PossibleConditions) > models.MaxConditions {
		d.PossibleConditions = d.PossibleConditions[:models.MaxConditions]
	}
	return d
}

func stringList(v interface{}) []string {
	items, _ := v.([]interface{})
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
