package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/elys-network/lockdrop/internal/types"
)

// AppConfig holds all application configuration loaded from environment variables.
// These are populated at startup by the LoadConfig function.
var (
	// ContractAddress is the account the lockdrop holds funds in.
	ContractAddress string
	// StakingDenom is the asset accepted by Stake and Fund.
	StakingDenom string

	// OwnerAddress and ManagerAddress are the initial privileged roles. Empty means unset.
	OwnerAddress   string
	ManagerAddress string

	// UnstakingDuration is the claim cooldown. Nil releases withdrawals immediately.
	UnstakingDuration *types.Duration

	// RewardContractCodeID is the code id used to instantiate reward distributors.
	RewardContractCodeID uint64

	// MaxClaims caps the outstanding claims of one holder.
	MaxClaims int

	// LogLevel and LogFormat configure the global logger.
	LogLevel  string
	LogFormat string
	// LogFile additionally appends logs to a file when set.
	LogFile string
)

const DefaultMaxClaims = 8

// LoadConfig loads configuration from environment variables and sets the global config vars.
func LoadConfig() error {
	log.Info().Msg("Loading application configuration from environment variables...")

	var err error

	ContractAddress, err = getEnv("CONTRACT_ADDRESS")
	if err != nil {
		return err
	}

	StakingDenom, err = getEnv("STAKING_DENOM")
	if err != nil {
		return err
	}

	OwnerAddress = getEnvOrDefault("OWNER_ADDRESS", "")
	ManagerAddress = getEnvOrDefault("MANAGER_ADDRESS", "")

	UnstakingDuration, err = loadUnstakingDuration()
	if err != nil {
		return err
	}

	RewardContractCodeID, err = getOptionalUint64("REWARD_CONTRACT_CODE_ID", 0)
	if err != nil {
		return err
	}

	maxClaims, err := getOptionalUint64("MAX_CLAIMS", DefaultMaxClaims)
	if err != nil {
		return err
	}
	MaxClaims = int(maxClaims)

	LogLevel = getEnvOrDefault("LOG_LEVEL", "info")
	LogFormat = getEnvOrDefault("LOG_FORMAT", "console")
	LogFile = getEnvOrDefault("LOG_FILE", "")

	if err := loadEndpointConfig(); err != nil {
		return err
	}
	if err := loadLiquidityConfig(); err != nil {
		return err
	}

	log.Debug().
		Str("ContractAddress", ContractAddress).
		Str("StakingDenom", StakingDenom).
		Int("MaxClaims", MaxClaims).
		Msg("Configuration loaded successfully.")

	return nil
}

// ContractConfig builds the instantiate config from the loaded values.
func ContractConfig() types.Config {
	cfg := types.Config{
		Denom:                StakingDenom,
		UnstakingDuration:    UnstakingDuration,
		RewardContractCodeID: RewardContractCodeID,
	}
	if OwnerAddress != "" {
		owner := OwnerAddress
		cfg.Owner = &owner
	}
	if ManagerAddress != "" {
		manager := ManagerAddress
		cfg.Manager = &manager
	}
	return cfg
}

func loadUnstakingDuration() (*types.Duration, error) {
	blocks, err := getOptionalUint64("UNSTAKING_DURATION_HEIGHT", 0)
	if err != nil {
		return nil, err
	}
	seconds, err := getOptionalUint64("UNSTAKING_DURATION_SECONDS", 0)
	if err != nil {
		return nil, err
	}
	switch {
	case blocks > 0 && seconds > 0:
		return nil, errors.New("UNSTAKING_DURATION_HEIGHT and UNSTAKING_DURATION_SECONDS are mutually exclusive")
	case blocks > 0:
		d := types.HeightDuration(blocks)
		return &d, nil
	case seconds > 0:
		d := types.TimeDuration(seconds)
		return &d, nil
	}
	return nil, nil
}

// getEnv retrieves a string environment variable. Returns error if not set.
func getEnv(key string) (string, error) {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value, nil
	}
	return "", errors.New("environment variable " + key + " is required but not set")
}

func getEnvOrDefault(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

// getOptionalUint64 parses key as a uint64, returning fallback when it is unset.
func getOptionalUint64(key string, fallback uint64) (uint64, error) {
	valueStr := getEnvOrDefault(key, "")
	if valueStr == "" {
		return fallback, nil
	}
	value, err := strconv.ParseUint(valueStr, 10, 64)
	if err != nil {
		return 0, errors.New("environment variable " + key + " must be a valid uint64, got: " + valueStr)
	}
	return value, nil
}

// getOptionalFloat64 parses key as a float64, returning fallback when it is unset.
func getOptionalFloat64(key string, fallback float64) (float64, error) {
	valueStr := getEnvOrDefault(key, "")
	if valueStr == "" {
		return fallback, nil
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return 0, errors.New("environment variable " + key + " must be a valid float64, got: " + valueStr)
	}
	return value, nil
}
