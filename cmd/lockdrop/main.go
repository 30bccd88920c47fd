package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/elys-network/lockdrop/internal/chain"
	"github.com/elys-network/lockdrop/internal/config"
	"github.com/elys-network/lockdrop/internal/contract"
	"github.com/elys-network/lockdrop/internal/emitter"
	"github.com/elys-network/lockdrop/internal/logger"
	"github.com/elys-network/lockdrop/internal/metrics"
	"github.com/elys-network/lockdrop/internal/service"
	"github.com/elys-network/lockdrop/internal/state"
	"github.com/elys-network/lockdrop/internal/web"
)

const (
	HEALTH_INTERVAL  = time.Minute
	SHUTDOWN_TIMEOUT = 10 * time.Second
)

// main is the entry point for the lockdrop service.
func main() {
	// --- 1. Initialization Phase ---
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("Warning: .env file not found. Relying on OS environment variables.")
	}

	// Load configuration from environment variables
	if err := config.LoadConfig(); err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if config.LogFile != "" {
		file, err := logger.FileWriter(config.LogFile)
		if err != nil {
			log.Fatal().Err(err).Str("path", config.LogFile).Msg("Failed to open log file")
		}
		logger.InitializeWithWriter(config.LogLevel, config.LogFormat, io.MultiWriter(os.Stdout, file))
	} else {
		logger.Initialize(config.LogLevel, config.LogFormat)
	}
	log.Info().Msg("Lockdrop Service Starting...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize Database Connection
	if err := state.InitDB(config.DatabaseConfig()); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer state.CloseDB()
	if err := state.EnsureSchema(); err != nil {
		log.Fatal().Err(err).Msg("Failed to ensure database schema")
	}

	// Load Liquidity Parameters
	liquidityParams, err := state.LoadActiveLiquidityParameters(config.DEFAULT_LIQUIDITY_CONFIG_NAME)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load active liquidity parameters, using configured values and saving.")
		params := config.LiquidityParameters
		if _, err := state.SaveLiquidityParameters(params, config.DEFAULT_LIQUIDITY_CONFIG_NAME, config.DEFAULT_LIQUIDITY_CONFIG_VERSION, true); err != nil {
			log.Fatal().Err(err).Msg("Failed to save initial liquidity parameters.")
		}
		liquidityParams = &params
	}
	log.Info().Str("feeDenom", liquidityParams.FeeDenom).Msg("Liquidity parameters loaded successfully.")

	// --- 2. Chain Clients ---
	grpcClient, err := chain.DialGRPC(config.NodeGRPC)
	if err != nil {
		log.Fatal().Err(err).Msg("gRPC connection error")
	}
	defer grpcClient.Close()
	log.Info().Str("endpoint", config.NodeGRPC).Msg("gRPC connected")

	clock, err := chain.NewCometClock(config.NodeRPC)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create RPC clock")
	}
	gamm, err := chain.NewGammClient(config.NodeLCD)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create gamm client")
	}

	var em emitter.Emitter
	if config.NatsURL != "" {
		natsEmitter, err := emitter.NewNATS(config.NatsURL, config.NatsSubjectPrefix)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect event emitter")
		}
		em = natsEmitter
	} else {
		log.Warn().Msg("NATS_URL not set, committed operations will only be logged")
		em = emitter.NewLog()
	}
	defer em.Close()

	// --- 3. Contract and Service ---
	lockdrop, err := contract.New(contract.Deps{
		Address:   config.ContractAddress,
		Liquidity: *liquidityParams,
		MaxClaims: config.MaxClaims,
		Balances:  chain.NewBankClient(grpcClient),
		Pools:     gamm,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create contract")
	}

	m := metrics.New()
	store := state.Postgres{}
	svc, err := service.NewService(service.Config{
		Contract:      lockdrop,
		Clock:         clock,
		Emitter:       em,
		Store:         store,
		Metrics:       m,
		InitialConfig: config.ContractConfig(),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create service")
	}
	if err := svc.Restore(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to restore contract state")
	}

	// --- 4. Start Web Server ---
	webServer := web.NewWebServer(web.Config{
		Port:       config.WebPort,
		Backend:    svc,
		Operations: store,
		Metrics:    m.Handler(),
		RateLimit:  config.RateLimitPerSecond,
	})
	go func() {
		log.Info().Str("port", config.WebPort).Str("url", "http://localhost:"+config.WebPort).Msg("Starting lockdrop API")
		if err := webServer.Start(); err != nil {
			log.Error().Err(err).Msg("Web server failed")
			stop()
		}
	}()

	// --- 5. Health Loop until shutdown ---
	svc.RunLoop(ctx, HEALTH_INTERVAL)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), SHUTDOWN_TIMEOUT)
	defer cancel()
	if err := webServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Web server shutdown failed")
	}
	log.Info().Msg("Lockdrop service stopped")
}
