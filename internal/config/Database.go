package config

import (
	"strconv"

	"github.com/elys-network/lockdrop/internal/state"
)

// DatabaseConfig reads the DB_* variables. Host and port fall back to a
// local server; the rest are passed through as set.
func DatabaseConfig() state.DBConfig {
	return state.DBConfig{
		Host:     getEnvOrDefault("DB_HOST", "localhost"),
		Port:     mustAtoi(getEnvOrDefault("DB_PORT", ""), 5432),
		User:     getEnvOrDefault("DB_USER", ""),
		Password: getEnvOrDefault("DB_PASSWORD", ""),
		DBName:   getEnvOrDefault("DB_NAME", ""),
		SSLMode:  getEnvOrDefault("DB_SSLMODE", "disable"),
	}
}

// Helper to convert string to int with a default value
func mustAtoi(s string, defaultValue int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}
	return i
}
