// internal/workers/persistence/save-claim-record/store.go
package saveclaimrecord

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"dental-claims/internal/common/logger"
	"dental-claims/internal/models"
)

const TaskType = "save-claim-record"

var (
	ErrRecordInsertFailed = errors.New("RECORD_INSERT_FAILED")
	ErrRecordQueryFailed  = errors.New("RECORD_QUERY_FAILED")
)

// Store is the append-only claim audit store.
type Store interface {
	Put(ctx context.Context, record *models.ClaimRecord) error
}

type PostgresStore struct {
	db     *sql.DB
	logger logger.Logger
	now    func() time.Time
}

func NewPostgresStore(db *sql.DB, log logger.Logger) *PostgresStore {
	return &PostgresStore{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
		now:    time.Now,
	}
}

// Put inserts record, assigning ID and CreatedAt when they are unset.
func (s *PostgresStore) Put(ctx context.Context, record *models.ClaimRecord) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = s.now().UTC()
	}

	payload := record.Payload
	if payload == nil {
		payload = map[string]interface{}{}
	}
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal payload: %v", ErrRecordInsertFailed, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO claim_records (
			id, session_id, claim_type, process_step, status, plan_tier, payload, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		record.ID,
		record.SessionID,
		string(record.ClaimType),
		string(record.ProcessStep),
		record.Status,
		string(record.PlanTier),
		payloadJSON,
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: insert failed: %v", ErrRecordInsertFailed, err)
	}

	s.logger.Info("claim record saved", map[string]interface{}{
		"recordId":    record.ID,
		"sessionId":   record.SessionID,
		"claimType":   record.ClaimType,
		"processStep": record.ProcessStep,
		"status":      record.Status,
	})
	return nil
}

// ListBySession returns the session's records, oldest first.
func (s *PostgresStore) ListBySession(ctx context.Context, sessionID string) ([]models.ClaimRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, claim_type, process_step, status, plan_tier, payload, created_at
		FROM claim_records
		WHERE session_id = $1
		ORDER BY created_at`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRecordQueryFailed, err)
	}
	defer rows.Close()

	var records []models.ClaimRecord
	for rows.Next() {
		var (
			r           models.ClaimRecord
			claimType   string
			processStep string
			planTier    string
			payload     []byte
		)
		if err := rows.Scan(&r.ID, &r.SessionID, &claimType, &processStep, &r.Status, &planTier, &payload, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scan: %v", ErrRecordQueryFailed, err)
		}
		r.ClaimType = models.ClaimType(claimType)
		r.ProcessStep = models.ProcessStep(processStep)
		r.PlanTier = models.PlanTier(planTier)
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &r.Payload); err != nil {
				return nil, fmt.Errorf("%w: payload: %v", ErrRecordQueryFailed, err)
			}
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRecordQueryFailed, err)
	}
	return records, nil
}
