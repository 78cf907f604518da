package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSettingsMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestSettingsRepositoryGet(t *testing.T) {
	db, mock, cleanup := newSettingsMock(t)
	defer cleanup()
	repo := NewSettingsRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT value FROM app_settings WHERE key = $1")).
		WithArgs("sheets_url").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow([]byte(`"https://sheets.test"`)))

	raw, err := repo.Get(context.Background(), "sheets_url")
	require.NoError(t, err)
	assert.JSONEq(t, `"https://sheets.test"`, string(raw))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingsRepositoryGetUnset(t *testing.T) {
	db, mock, cleanup := newSettingsMock(t)
	defer cleanup()
	repo := NewSettingsRepository(db)

	mock.ExpectQuery("SELECT value FROM app_settings").
		WithArgs("last_sync").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), "last_sync")
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingsRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newSettingsMock(t)
	defer cleanup()
	repo := NewSettingsRepository(db)

	mock.ExpectExec("INSERT INTO app_settings").
		WithArgs("company_profile", []byte(`{"name":"Alfa"}`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Upsert(context.Background(), "company_profile", []byte(`{"name":"Alfa"}`)))
	assert.NoError(t, mock.ExpectationsWereMet())
}
