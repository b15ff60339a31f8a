// internal/workers/infrastructure/resolve-session/resolver.go
package resolvesession

import (
	"context"
	"strings"
	"time"

	"dental-claims/internal/common/logger"
	"dental-claims/internal/models"
)

const TaskType = "resolve-session"

// NewSessionID formats t as lex_YYYYMMDD_HHMMSS_ffffff in UTC.
func NewSessionID(t time.Time) string {
	stamp := t.UTC().Format("20060102_150405.000000")
	return "lex_" + strings.Replace(stamp, ".", "_", 1)
}

// Resolver assigns session ids and, when a store is configured, carries
// attributes across turns.
type Resolver struct {
	store  AttributeStore
	now    func() time.Time
	logger logger.Logger
}

// NewResolver builds a resolver. store may be nil.
func NewResolver(store AttributeStore, log logger.Logger) *Resolver {
	return &Resolver{
		store:  store,
		now:    time.Now,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

// Resolve returns the turn's session. The inbound id is reused when present;
// otherwise one is generated. Stored attributes fill keys the inbound
// attributes do not carry. attrs is not modified.
func (r *Resolver) Resolve(ctx context.Context, attrs map[string]string) *models.Session {
	session := &models.Session{Attributes: make(map[string]string, len(attrs)+1)}
	for k, v := range attrs {
		session.Attributes[k] = v
	}

	session.ID = session.Attributes[models.SessionIDAttribute]
	if session.ID == "" {
		session.ID = NewSessionID(r.now())
		session.Created = true
		session.Attributes[models.SessionIDAttribute] = session.ID
		r.logger.Info("session id generated", map[string]interface{}{"sessionId": session.ID})
		return session
	}

	if r.store != nil {
		stored, err := r.store.Load(ctx, session.ID)
		if err != nil {
			r.logger.Warn("session attributes unavailable", map[string]interface{}{
				"sessionId": session.ID,
				"error":     err.Error(),
			})
		}
		for k, v := range stored {
			if _, ok := session.Attributes[k]; !ok {
				session.Attributes[k] = v
			}
		}
	}

	r.logger.Debug("session id reused", map[string]interface{}{"sessionId": session.ID})
	return session
}

// Persist saves the session attributes. Failures are logged only.
func (r *Resolver) Persist(ctx context.Context, session *models.Session) {
	if r.store == nil || session == nil {
		return
	}
	if err := r.store.Save(ctx, session.ID, session.Attributes); err != nil {
		r.logger.Warn("session attributes not saved", map[string]interface{}{
			"sessionId": session.ID,
			"error":     err.Error(),
		})
	}
}
