package sqlbase

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationManager_AppliesPendingInOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	defer db.Close()

	manager := NewMigrationManager(slog.Default(), db, map[int]string{
		3: "CREATE TABLE three (id INT)",
		1: "CREATE TABLE one (id INT)",
		2: "CREATE TABLE two (id INT)",
	})
	assert.Equal(t, 3, manager.LatestVersion())

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT COALESCE\(MAX\(version\), 0\) FROM schema_migrations`).
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(1))

	for _, version := range []int{2, 3} {
		table := map[int]string{2: "two", 3: "three"}[version]

		mock.ExpectBegin()
		mock.ExpectExec("CREATE TABLE " + table).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`INSERT INTO schema_migrations \(version\) VALUES \(\$1\)`).
			WithArgs(version).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()
	}

	require.NoError(t, manager.RunMigrations(t.Context()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrationManager_UpToDate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	defer db.Close()

	manager := NewMigrationManager(slog.Default(), db, map[int]string{1: "CREATE TABLE one (id INT)"})

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT COALESCE").WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(1))

	require.NoError(t, manager.RunMigrations(t.Context()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrationManager_RollsBackFailedMigration(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	defer db.Close()

	manager := NewMigrationManager(slog.Default(), db, map[int]string{1: "CREATE TABLE one (id INT)"})

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT COALESCE").WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(0))
	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE one").WillReturnError(errors.New("syntax error"))
	mock.ExpectRollback()

	err = manager.RunMigrations(t.Context())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migration 1: syntax error")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrationManager_CreateTableFails(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	defer db.Close()

	manager := NewMigrationManager(slog.Default(), db, map[int]string{})

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").WillReturnError(errors.New("permission denied"))

	err = manager.RunMigrations(t.Context())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create migrations table")
}
