// ./internal/state/db.go
package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/elys-network/lockdrop/internal/logger"
)

var stateLogger = logger.GetForComponent("state")

var (
	ErrDBNotInitialized = errors.New("database not initialized")
	ErrNoState          = errors.New("no persisted contract state")
)

// DB is a global database connection pool.
var DB *sql.DB

// DBConfig holds database connection parameters.
type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string // "disable", "require", "verify-full", etc.
}

func (c DBConfig) dsn() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, sslMode)
}

// InitDB initializes the database connection pool.
func InitDB(cfg DBConfig) error {
	var err error
	DB, err = sql.Open("postgres", cfg.dsn())
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	DB.SetMaxOpenConns(25)
	DB.SetMaxIdleConns(25)
	DB.SetConnMaxLifetime(5 * time.Minute)

	if err := DB.Ping(); err != nil {
		DB.Close()
		DB = nil
		return fmt.Errorf("failed to ping database: %w", err)
	}

	stateLogger.Info().Str("host", cfg.Host).Str("db", cfg.DBName).Msg("Successfully connected to the PostgreSQL database!")
	return nil
}

// CloseDB closes the database connection pool.
func CloseDB() {
	if DB != nil {
		stateLogger.Info().Msg("Closing database connection...")
		if err := DB.Close(); err != nil {
			stateLogger.Error().Err(err).Msg("Error closing database connection")
		}
		DB = nil
	}
}

const schemaSQL = `
	CREATE TABLE IF NOT EXISTS liquidity_parameters (
		params_id SERIAL PRIMARY KEY,
		version INTEGER NOT NULL DEFAULT 1,
		config_name VARCHAR(255) NOT NULL DEFAULT 'default',
		is_active BOOLEAN NOT NULL DEFAULT FALSE,
		activated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		fee_denom VARCHAR(128) NOT NULL,
		pool_creation_fee NUMERIC(40, 0) NOT NULL,
		swap_fee NUMERIC(20, 18) NOT NULL,
		exit_fee NUMERIC(20, 18) NOT NULL,
		pool_weight NUMERIC(40, 0) NOT NULL,
		future_pool_governor VARCHAR(255) NOT NULL,
		CONSTRAINT uq_liquidity_parameters_config_version UNIQUE (config_name, version)
	);
	CREATE INDEX IF NOT EXISTS idx_liquidity_parameters_config_active ON liquidity_parameters(config_name, is_active, activated_at DESC);

	CREATE TABLE IF NOT EXISTS contract_state (
		state_id SERIAL PRIMARY KEY,
		contract_address VARCHAR(255) NOT NULL,
		commit_number BIGINT NOT NULL,
		block_height BIGINT NOT NULL,
		contract_version VARCHAR(32) NOT NULL,
		saved_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		hooks TEXT[],
		state JSONB NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_contract_state_address_commit ON contract_state(contract_address, commit_number DESC);

	CREATE TABLE IF NOT EXISTS operation_log (
		operation_id UUID PRIMARY KEY,
		contract_address VARCHAR(255) NOT NULL,
		commit_number BIGINT,
		block_height BIGINT NOT NULL,
		block_time TIMESTAMPTZ NOT NULL,
		sender VARCHAR(255) NOT NULL,
		action VARCHAR(64) NOT NULL,
		success BOOLEAN NOT NULL,
		emitted BOOLEAN NOT NULL DEFAULT FALSE,
		error_message TEXT,
		message_types TEXT[],
		response JSONB,
		recorded_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_operation_log_recorded ON operation_log(recorded_at DESC);
	CREATE INDEX IF NOT EXISTS idx_operation_log_action ON operation_log(action);
	CREATE INDEX IF NOT EXISTS idx_operation_log_sender ON operation_log(sender);
	ALTER TABLE operation_log ADD COLUMN IF NOT EXISTS emitted BOOLEAN NOT NULL DEFAULT FALSE;
	CREATE INDEX IF NOT EXISTS idx_operation_log_unemitted ON operation_log(recorded_at) WHERE success AND NOT emitted;

	-- Commit counter table for persistent global commit tracking
	CREATE TABLE IF NOT EXISTS commit_counter (
		id INTEGER PRIMARY KEY DEFAULT 1,
		current_commit BIGINT NOT NULL DEFAULT 0,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT single_row_check CHECK (id = 1)
	);

	-- Insert initial row if it doesn't exist
	INSERT INTO commit_counter (id, current_commit)
	VALUES (1, 0)
	ON CONFLICT (id) DO NOTHING;
`

// EnsureSchema applies the necessary DDL to create tables if they don't exist.
func EnsureSchema() error {
	if DB == nil {
		return ErrDBNotInitialized
	}
	if _, err := DB.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema DDL: %w", err)
	}
	stateLogger.Info().Msg("Database schema ensured.")
	return nil
}

// DropSchema removes every table created by EnsureSchema.
func DropSchema() error {
	if DB == nil {
		return ErrDBNotInitialized
	}
	_, err := DB.Exec(`
		DROP TABLE IF EXISTS operation_log CASCADE;
		DROP TABLE IF EXISTS contract_state CASCADE;
		DROP TABLE IF EXISTS commit_counter CASCADE;
		DROP TABLE IF EXISTS liquidity_parameters CASCADE;
	`)
	if err != nil {
		return fmt.Errorf("failed to drop tables: %w", err)
	}
	stateLogger.Warn().Msg("Database schema dropped")
	return nil
}

// TestDBConnection tests if the database connection is healthy
func TestDBConnection() error {
	if DB == nil {
		return ErrDBNotInitialized
	}

	// Use a short timeout context for health checks
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := DB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}
