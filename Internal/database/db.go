package datafeed

import (
	"context"
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/fazecat/niftyscreener/Internal/types"
)

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DatabaseConfigFromEnv reads DB_* variables with local defaults.
func DatabaseConfigFromEnv() DatabaseConfig {
	return DatabaseConfig{
		Host:     getEnvOrDefault("DB_HOST", "localhost"),
		Port:     getEnvOrDefault("DB_PORT", "5432"),
		User:     getEnvOrDefault("DB_USER", "postgres"),
		Password: os.Getenv("DB_PASSWORD"), // Required - no default
		DBName:   getEnvOrDefault("DB_NAME", "niftyscreener"),
		SSLMode:  getEnvOrDefault("DB_SSLMODE", "disable"),
	}
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// OpenDatabase connects to Postgres. An explicit DATABASE_URL wins over DB_*.
func OpenDatabase(ctx context.Context, databaseURL string) (*sqlx.DB, error) {
	dsn := databaseURL
	if dsn == "" {
		dsn = DatabaseConfigFromEnv().DSN()
	}

	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().Msg("database connected")
	return db, nil
}

const instrumentSchema = `
CREATE TABLE IF NOT EXISTS instruments (
	id SERIAL PRIMARY KEY,
	tradingsymbol TEXT NOT NULL UNIQUE,
	instrument_key TEXT NOT NULL,
	position INTEGER NOT NULL DEFAULT 0,
	active BOOLEAN NOT NULL DEFAULT TRUE
);

CREATE INDEX IF NOT EXISTS idx_instruments_active ON instruments(active, position);
`

func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, instrumentSchema)
	return err
}

const selectActiveInstruments = `SELECT tradingsymbol, instrument_key FROM instruments WHERE active ORDER BY position, tradingsymbol`

// PostgresUniverse loads the active instruments table in scan order.
type PostgresUniverse struct {
	db *sqlx.DB
}

func NewPostgresUniverse(db *sqlx.DB) *PostgresUniverse {
	return &PostgresUniverse{db: db}
}

func (u *PostgresUniverse) LoadInstruments(ctx context.Context) ([]types.Instrument, error) {
	var instruments []types.Instrument
	if err := u.db.SelectContext(ctx, &instruments, selectActiveInstruments); err != nil {
		return nil, fmt.Errorf("failed to load instruments: %w", err)
	}
	return instruments, nil
}

// ImportInstruments replaces the instrument table with the given list, keeping
// list order as the scan position.
func ImportInstruments(ctx context.Context, db *sqlx.DB, instruments []types.Instrument) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `UPDATE instruments SET active = FALSE`); err != nil {
		return fmt.Errorf("failed to deactivate instruments: %w", err)
	}
	for i, inst := range instruments {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO instruments (tradingsymbol, instrument_key, position, active)
			VALUES ($1, $2, $3, TRUE)
			ON CONFLICT (tradingsymbol) DO UPDATE
			SET instrument_key = EXCLUDED.instrument_key, position = EXCLUDED.position, active = TRUE`,
			inst.Symbol, inst.InstrumentKey, i)
		if err != nil {
			return fmt.Errorf("failed to upsert %s: %w", inst.Symbol, err)
		}
	}
	return tx.Commit()
}

func HealthCheck(ctx context.Context, db *sqlx.DB) error {
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}
	return db.PingContext(ctx)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
