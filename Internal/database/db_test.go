package datafeed

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fazecat/niftyscreener/Internal/types"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func TestPostgresUniverse_LoadInstruments(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta(selectActiveInstruments)).
		WillReturnRows(sqlmock.NewRows([]string{"tradingsymbol", "instrument_key"}).
			AddRow("RELIANCE", "NSE_EQ|INE002A01018").
			AddRow("TCS", "NSE_EQ|INE467B01029"))

	got, err := NewPostgresUniverse(db).LoadInstruments(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []types.Instrument{
		{Symbol: "RELIANCE", InstrumentKey: "NSE_EQ|INE002A01018"},
		{Symbol: "TCS", InstrumentKey: "NSE_EQ|INE467B01029"},
	}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUniverse_QueryError(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta(selectActiveInstruments)).WillReturnError(errors.New("relation does not exist"))

	_, err := NewPostgresUniverse(db).LoadInstruments(context.Background())
	assert.ErrorContains(t, err, "relation does not exist")
}

func TestImportInstruments(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE instruments SET active = FALSE")).WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("INSERT INTO instruments").WithArgs("SBIN", "NSE_EQ|INE062A01020", 0).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO instruments").WithArgs("ITC", "NSE_EQ|INE154A01025", 1).WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	err := ImportInstruments(context.Background(), db, []types.Instrument{
		{Symbol: "SBIN", InstrumentKey: "NSE_EQ|INE062A01020"},
		{Symbol: "ITC", InstrumentKey: "NSE_EQ|INE154A01025"},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "")
	t.Setenv("DB_USER", "")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_NAME", "")
	t.Setenv("DB_SSLMODE", "")

	cfg := DatabaseConfigFromEnv()
	assert.Equal(t, "host=db.internal port=5432 user=postgres password=secret dbname=niftyscreener sslmode=disable", cfg.DSN())
}

func TestNewBarSource(t *testing.T) {
	src, err := NewBarSource("token", SourceOptions{})
	require.NoError(t, err)
	assert.IsType(t, &UpstoxClient{}, src)

	_, err = NewBarSource("key", SourceOptions{Provider: ProviderAlpaca})
	assert.Error(t, err)

	src, err = NewBarSource("key", SourceOptions{Provider: ProviderAlpaca, AlpacaSecret: "s"})
	require.NoError(t, err)
	assert.IsType(t, &AlpacaSource{}, src)

	_, err = NewBarSource("key", SourceOptions{Provider: "yahoo"})
	assert.Error(t, err)
}
