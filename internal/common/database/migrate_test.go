package database

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrations_Embedded(t *testing.T) {
	migrations, err := Migrations()
	require.NoError(t, err)
	require.NotEmpty(t, migrations)

	assert.Equal(t, "0001_claim_records", migrations[0].Version)
	assert.Contains(t, migrations[0].SQL, "CREATE TABLE IF NOT EXISTS claim_records")
}

func TestMigrate_AppliesPending(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	migrations := []Migration{
		{Version: "0001_a", SQL: "CREATE TABLE a (id INT)"},
		{Version: "0002_b", SQL: "CREATE TABLE b (id INT)"},
	}

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS schema_migrations")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).WithArgs("0001_a").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).WithArgs("0002_b").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE b (id INT)")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO schema_migrations")).WithArgs("0002_b").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	applied, err := Migrate(context.Background(), db, migrations)
	require.NoError(t, err)
	assert.Equal(t, []string{"0002_b"}, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrate_RollsBackOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS schema_migrations")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).WithArgs("0001_bad").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE broken")).WillReturnError(errors.New("syntax error"))
	mock.ExpectRollback()

	applied, err := Migrate(context.Background(), db, []Migration{{Version: "0001_bad", SQL: "CREATE TABLE broken"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "apply migration 0001_bad")
	assert.Empty(t, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}
