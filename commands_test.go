package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fazecat/niftyscreener/Internal/utils/config"
	"github.com/fazecat/niftyscreener/Internal/utils/scanner"
)

func TestWriteStatus(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Universe.Path = filepath.Join(t.TempDir(), "missing.csv")

	var buf bytes.Buffer
	require.NoError(t, writeStatus(&buf, cfg))
	out := buf.String()
	assert.Contains(t, out, "CONFIGURATION STATUS")
	assert.Contains(t, out, "❌ Missing")
	assert.Contains(t, out, "SETUP REQUIRED")

	require.NoError(t, os.WriteFile(cfg.Universe.Path, []byte("tradingsymbol,instrument_key\n"), 0o644))
	cfg.Secrets.UpstoxAccessToken = "token"
	buf.Reset()
	require.NoError(t, writeStatus(&buf, cfg))
	assert.Contains(t, buf.String(), "✅ Found")
	assert.Contains(t, buf.String(), "READY TO RUN!")
	assert.NotContains(t, buf.String(), "token\n")
}

func TestPrintResults(t *testing.T) {
	results := []scanner.Result{{Mode: scanner.ModeComposite, Composite: &scanner.CompositeResult{
		Symbol: "TCS", Price: 3500, RSI: 60, ADX: 30, ATR: 40, Volume: 200000, Score: 14,
		Indicators: map[string]float64{"rsi": 60, "macd": 1.25},
	}}}

	defer func() { scanFormat = "table" }()

	scanFormat = "json"
	var buf bytes.Buffer
	require.NoError(t, printResults(&buf, results, scanner.ModeComposite))
	var decoded []map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "composite", decoded[0]["mode"])
	composite := decoded[0]["composite"].(map[string]interface{})
	assert.Equal(t, map[string]interface{}{"rsi": 60.0, "macd": 1.25}, composite["indicators"])

	scanFormat = "table"
	buf.Reset()
	require.NoError(t, printResults(&buf, results, scanner.ModeComposite))
	assert.Contains(t, buf.String(), "TCS")

	scanFormat = "digest"
	buf.Reset()
	require.NoError(t, printResults(&buf, results, scanner.ModeComposite))
	assert.Contains(t, buf.String(), "NIFTY 500 SCREENER")

	scanFormat = "xml"
	assert.Error(t, printResults(&buf, results, scanner.ModeComposite))
}

func TestRootCommand_RegistersModes(t *testing.T) {
	var names []string
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"bot", "scheduler", "full", "test", "status", "scan", "universe", "config"})

	importCmd, _, err := rootCmd.Find([]string{"universe", "import"})
	require.NoError(t, err)
	assert.NotNil(t, importCmd.Flags().Lookup("csv"))
}

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func TestImportUniverse(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS instruments").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE instruments SET active = FALSE").WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("INSERT INTO instruments").
		WithArgs("RELIANCE", "NSE_EQ|INE002A01018", 0).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO instruments").
		WithArgs("TCS", "NSE_EQ|INE467B01029", 1).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	csv := "tradingsymbol,instrument_key\nRELIANCE,NSE_EQ|INE002A01018\nTCS,NSE_EQ|INE467B01029\n"
	n, err := importUniverse(context.Background(), db, strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestImportUniverse_RollsBackOnUpsertFailure(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS instruments").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE instruments SET active = FALSE").WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("INSERT INTO instruments").WillReturnError(errors.New("constraint violated"))
	mock.ExpectRollback()

	_, err := importUniverse(context.Background(), db,
		strings.NewReader("tradingsymbol,instrument_key\nRELIANCE,NSE_EQ|INE002A01018\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RELIANCE")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestImportUniverse_RejectsEmptyFile(t *testing.T) {
	db, mock := newMockDB(t)

	_, err := importUniverse(context.Background(), db, strings.NewReader("tradingsymbol,instrument_key\n"))
	assert.ErrorIs(t, err, errEmptyCSV)

	_, err = importUniverse(context.Background(), db, strings.NewReader("symbol,key\nTCS,x\n"))
	assert.Error(t, err)

	// nothing may touch the table when the file is unusable
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, writeDefaultConfig(path, false))

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig().Scan, cfg.Scan)

	assert.ErrorIs(t, writeDefaultConfig(path, false), errConfigExists)
	assert.NoError(t, writeDefaultConfig(path, true))
}
