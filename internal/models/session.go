package models

// SessionIDAttribute is the session attribute carrying the conversation id.
const SessionIDAttribute = "lexSessionId"

// Session correlates every record and log line of one conversation.
type Session struct {
	ID         string            `json:"id"`
	Attributes map[string]string `json:"attributes"`
	// Created is true when the id was generated for this turn.
	Created bool `json:"-"`
}

// Attribute returns the session attribute or "" when absent.
func (s *Session) Attribute(key string) string {
	if s == nil || s.Attributes == nil {
		return ""
	}
	return s.Attributes[key]
}
