package saveclaimrecord

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dental-claims/internal/common/logger"
	"dental-claims/internal/models"
)

func newTestStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store := NewPostgresStore(db, logger.NewTestLogger(t))
	store.now = func() time.Time { return time.Date(2024, 3, 12, 10, 30, 0, 0, time.UTC) }
	return store, mock
}

// ==========================
// Put
// ==========================

func TestPostgresStore_Put(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectExec(`INSERT INTO claim_records`).
		WithArgs(
			sqlmock.AnyArg(), // generated uuid
			"lex_20240312_103000_000001",
			"pre_approval",
			"symptoms_analysis",
			"approved",
			"premium",
			[]byte(`{"coverage_percentage":0.9}`),
			time.Date(2024, 3, 12, 10, 30, 0, 0, time.UTC),
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	record := &models.ClaimRecord{
		SessionID:   "lex_20240312_103000_000001",
		ClaimType:   models.ClaimPreApproval,
		ProcessStep: models.StepSymptomsAnalysis,
		Status:      "approved",
		PlanTier:    models.PlanPremium,
		Payload:     map[string]interface{}{"coverage_percentage": 0.9},
	}

	err := store.Put(context.Background(), record)

	require.NoError(t, err)
	_, parseErr := uuid.Parse(record.ID)
	assert.NoError(t, parseErr)
	assert.False(t, record.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Put_KeepsExistingID(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectExec(`INSERT INTO claim_records`).
		WithArgs("fixed-id", "s1", "dentist_search", "clinic_search", "completed", "basic",
			[]byte(`{}`), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := store.Put(context.Background(), &models.ClaimRecord{
		ID: "fixed-id", SessionID: "s1", ClaimType: models.ClaimDentistSearch,
		ProcessStep: models.StepClinicSearch, Status: "completed", PlanTier: models.PlanBasic,
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Put_Errors(t *testing.T) {
	t.Run("insert failure", func(t *testing.T) {
		store, mock := newTestStore(t)
		mock.ExpectExec(`INSERT INTO claim_records`).WillReturnError(errors.New("connection reset"))

		err := store.Put(context.Background(), &models.ClaimRecord{SessionID: "s1"})

		assert.ErrorIs(t, err, ErrRecordInsertFailed)
		assert.Contains(t, err.Error(), "connection reset")
	})

	t.Run("unencodable payload", func(t *testing.T) {
		store, _ := newTestStore(t)

		err := store.Put(context.Background(), &models.ClaimRecord{
			SessionID: "s1",
			Payload:   map[string]interface{}{"bad": make(chan int)},
		})

		assert.ErrorIs(t, err, ErrRecordInsertFailed)
	})
}

// ==========================
// ListBySession
// ==========================

func TestPostgresStore_ListBySession(t *testing.T) {
	store, mock := newTestStore(t)
	created := time.Date(2024, 3, 12, 10, 30, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT id, session_id, claim_type`).
		WithArgs("s1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "session_id", "claim_type", "process_step", "status", "plan_tier", "payload", "created_at"}).
			AddRow("r1", "s1", "reimbursement", "document_processing", "partial", "basic", []byte(`{"amount":63}`), created))

	records, err := store.ListBySession(context.Background(), "s1")

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, models.ClaimReimbursement, records[0].ClaimType)
	assert.Equal(t, models.StepDocumentProcessing, records[0].ProcessStep)
	assert.Equal(t, 63.0, records[0].Payload["amount"])
	assert.Equal(t, created, records[0].CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListBySession_QueryError(t *testing.T) {
	store, mock := newTestStore(t)
	mock.ExpectQuery(`SELECT id, session_id`).WillReturnError(errors.New("timeout"))

	_, err := store.ListBySession(context.Background(), "s1")

	assert.ErrorIs(t, err, ErrRecordQueryFailed)
}
