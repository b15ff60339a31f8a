// internal/workers/infrastructure/normalize-event/normalizer.go
package normalizeevent

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"dental-claims/internal/models"
)

const TaskType = "normalize-event"

var ErrInvalidEventStructure = errors.New("invalid_event_structure")

// Event is a normalized inbound request.
type Event struct {
	Intent models.Intent
	// APIGateway is true when the event arrived in the proxy envelope and the
	// reply must be wrapped the same way.
	APIGateway bool
}

type lexIntent struct {
	Name  string                 `json:"name"`
	Slots map[string]interface{} `json:"slots"`
}

type rawEvent struct {
	CurrentIntent     *lexIntent             `json:"currentIntent"`
	SessionAttributes map[string]interface{} `json:"sessionAttributes"`
	HTTPMethod        string                 `json:"httpMethod"`
	Path              string                 `json:"path"`
	Body              *string                `json:"body"`
}

// Normalize accepts a Lex event or an API Gateway proxy event.
func Normalize(raw []byte) (*Event, error) {
	var ev rawEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEventStructure, err)
	}

	if ev.HTTPMethod != "" && ev.Body != nil {
		intent, err := NormalizeBody(ev.Path, []byte(*ev.Body))
		if err != nil {
			return nil, err
		}
		return &Event{Intent: *intent, APIGateway: true}, nil
	}

	if ev.CurrentIntent == nil {
		return nil, fmt.Errorf("%w: currentIntent not found", ErrInvalidEventStructure)
	}
	intent, err := fromLex(ev.CurrentIntent, ev.SessionAttributes)
	if err != nil {
		return nil, err
	}
	return &Event{Intent: *intent, APIGateway: ev.HTTPMethod != ""}, nil
}

// IsProxyEvent reports whether raw carries the API Gateway proxy envelope. It
// holds for events Normalize rejects, so their reply can keep the proxy shape.
func IsProxyEvent(raw []byte) bool {
	var head struct {
		HTTPMethod string `json:"httpMethod"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return false
	}
	return head.HTTPMethod != ""
}

// NormalizeBody maps a request body, either in Lex shape or a custom shape,
// received on path.
func NormalizeBody(path string, body []byte) (*models.Intent, error) {
	var doc map[string]interface{}
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("%w: body is not a JSON object", ErrInvalidEventStructure)
	}

	if ci, ok := doc["currentIntent"]; ok {
		var ev rawEvent
		if err := json.Unmarshal(body, &ev); err != nil || ci == nil {
			return nil, fmt.Errorf("%w: malformed currentIntent", ErrInvalidEventStructure)
		}
		return fromLex(ev.CurrentIntent, ev.SessionAttributes)
	}

	return fromCustom(path, doc)
}

func fromLex(ci *lexIntent, attrs map[string]interface{}) (*models.Intent, error) {
	if ci == nil || strings.TrimSpace(ci.Name) == "" {
		return nil, fmt.Errorf("%w: intent name is empty", ErrInvalidEventStructure)
	}

	fields := make(map[string]string, len(ci.Slots))
	for k, v := range ci.Slots {
		fields[k] = stringify(v)
	}

	return &models.Intent{
		Name:              CanonicalIntent(ci.Name),
		RawName:           ci.Name,
		Slots:             CanonicalSlots(fields),
		SessionAttributes: stringMap(attrs),
	}, nil
}

func fromCustom(path string, doc map[string]interface{}) (*models.Intent, error) {
	rawName := ""
	for _, key := range []string{"intent", "intentName", "action"} {
		if s := stringify(doc[key]); s != "" {
			rawName = s
			break
		}
	}

	name := models.IntentName("")
	if rawName != "" {
		name = CanonicalIntent(rawName)
	} else {
		for _, p := range pathIntents {
			if strings.Contains(path, p.Fragment) {
				name = p.Intent
				rawName = string(p.Intent)
				break
			}
		}
	}
	if name == "" {
		return nil, fmt.Errorf("%w: intent name is empty", ErrInvalidEventStructure)
	}

	var fields map[string]string
	if slots, ok := doc["slots"].(map[string]interface{}); ok {
		fields = stringMap(slots)
	} else {
		fields = make(map[string]string, len(doc))
		for k, v := range doc {
			fields[k] = stringify(v)
		}
	}

	var attrs map[string]string
	switch {
	case isObject(doc["session"]):
		attrs = stringMap(doc["session"].(map[string]interface{}))
	case isObject(doc["context"]):
		attrs = stringMap(doc["context"].(map[string]interface{}))
	case doc["userId"] != nil:
		attrs = map[string]string{"userId": stringify(doc["userId"])}
	default:
		attrs = map[string]string{}
	}

	return &models.Intent{
		Name:              name,
		RawName:           rawName,
		Slots:             CanonicalSlots(fields),
		SessionAttributes: attrs,
	}, nil
}

func isObject(v interface{}) bool {
	_, ok := v.(map[string]interface{})
	return ok
}

func stringMap(in map[string]interface{}) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = stringify(v)
	}
	return out
}

// stringify renders JSON scalars as slot text; null becomes "".
func stringify(v interface{}) string {
	switch tv := v.(type) {
	case nil:
		return ""
	case string:
		return tv
	case float64:
		return strconv.FormatFloat(tv, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(tv)
	default:
		b, err := json.Marshal(tv)
		if err != nil {
			return fmt.Sprintf("%v", tv)
		}
		return string(b)
	}
}
