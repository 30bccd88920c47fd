package config

import (
	"strings"

	"github.com/rs/zerolog/log"
)

// Endpoint configuration loaded from environment variables.
// These are populated at startup by the LoadConfig function.
var (
	// NodeRPC is the CometBFT RPC endpoint used for block height and time.
	NodeRPC string
	// NodeGRPC is the gRPC endpoint used for bank balance queries.
	NodeGRPC string
	// NodeLCD is the REST endpoint used for gamm pool queries.
	NodeLCD string

	// NatsURL is the NATS server events are published to. Empty logs events instead.
	NatsURL string
	// NatsSubjectPrefix prefixes every event subject.
	NatsSubjectPrefix string

	// WebPort is the port of the HTTP API.
	WebPort string
	// RateLimitPerSecond bounds requests per second across the HTTP API. Zero disables it.
	RateLimitPerSecond float64
)

// loadEndpointConfig loads endpoint configuration from environment variables.
// This function is called by LoadConfig() in General.go.
func loadEndpointConfig() error {
	log.Info().Msg("Loading endpoint configuration from environment variables...")

	var err error

	NodeRPC, err = getEnv("NODE_RPC")
	if err != nil {
		return err
	}

	NodeGRPC, err = getEnv("NODE_GRPC")
	if err != nil {
		return err
	}

	NodeLCD, err = getEnv("NODE_LCD")
	if err != nil {
		return err
	}
	NodeLCD = strings.TrimSuffix(NodeLCD, "/")

	NatsURL = getEnvOrDefault("NATS_URL", "")
	NatsSubjectPrefix = getEnvOrDefault("NATS_SUBJECT_PREFIX", "lockdrop")
	WebPort = getEnvOrDefault("WEB_PORT", "8080")

	RateLimitPerSecond, err = getOptionalFloat64("RATE_LIMIT_PER_SECOND", 20)
	if err != nil {
		return err
	}

	log.Debug().
		Str("NodeRPC", NodeRPC).
		Str("NodeGRPC", NodeGRPC).
		Str("NodeLCD", NodeLCD).
		Str("NatsURL", NatsURL).
		Msg("Endpoint configuration loaded successfully.")

	return nil
}
