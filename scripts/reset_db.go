package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/elys-network/lockdrop/internal/config"
	"github.com/elys-network/lockdrop/internal/logger"
	"github.com/elys-network/lockdrop/internal/state"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("Warning: .env file not found or error loading .env file. Relying on OS environment variables.")
	}

	logger.Initialize(getenv("LOG_LEVEL", "info"), getenv("LOG_FORMAT", "console"))
	log.Info().Msg("Starting database reset script...")

	dbCfg := config.DatabaseConfig()
	if dbCfg.User == "" {
		log.Fatal().Msg("DB_USER environment variable not set.")
	}
	if dbCfg.DBName == "" {
		log.Fatal().Msg("DB_NAME environment variable not set.")
	}

	log.Info().
		Str("host", dbCfg.Host).
		Int("port", dbCfg.Port).
		Str("user", dbCfg.User).
		Str("dbname", dbCfg.DBName).
		Msg("Connecting to database")

	if err := state.InitDB(dbCfg); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database connection")
	}
	defer state.CloseDB()

	log.Info().Msg("Connected to database. Attempting to drop all tables...")
	if err := state.DropSchema(); err != nil {
		log.Fatal().Err(err).Msg("Failed to drop tables")
	}
	log.Info().Msg("Successfully dropped all tables")

	// Recreate the schema
	log.Info().Msg("Recreating database schema...")
	if err := state.EnsureSchema(); err != nil {
		log.Fatal().Err(err).Msg("Failed to recreate database schema")
	}
	if err := state.ResetCommitNumber(0); err != nil {
		log.Fatal().Err(err).Msg("Failed to reset commit counter")
	}
	log.Info().Msg("Database schema successfully recreated")

	log.Info().Msg("Database reset complete!")
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
