package config

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("CONTRACT_ADDRESS", "osmo1lockdrop")
	t.Setenv("STAKING_DENOM", "ustake")
	t.Setenv("NODE_RPC", "http://localhost:26657")
	t.Setenv("NODE_GRPC", "localhost:9090")
	t.Setenv("NODE_LCD", "http://localhost:1317/")
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequired(t)

	require.NoError(t, LoadConfig())
	require.Equal(t, "osmo1lockdrop", ContractAddress)
	require.Equal(t, DefaultMaxClaims, MaxClaims)
	require.Nil(t, UnstakingDuration)
	require.Equal(t, "http://localhost:1317", NodeLCD)
	require.Equal(t, "8080", WebPort)
	require.Equal(t, "lockdrop", NatsSubjectPrefix)
	require.Equal(t, 20.0, RateLimitPerSecond)
	require.Equal(t, DefaultLiquidityParameters, LiquidityParameters)

	cfg := ContractConfig()
	require.Equal(t, "ustake", cfg.Denom)
	require.Nil(t, cfg.Owner)
	require.Nil(t, cfg.Manager)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("OWNER_ADDRESS", "owner")
	t.Setenv("MANAGER_ADDRESS", "manager")
	t.Setenv("UNSTAKING_DURATION_HEIGHT", "100")
	t.Setenv("MAX_CLAIMS", "3")
	t.Setenv("FEE_ASSET_DENOM", "uatom")
	t.Setenv("POOL_CREATION_FEE", "5000")

	require.NoError(t, LoadConfig())
	require.Equal(t, 3, MaxClaims)
	require.NotNil(t, UnstakingDuration)
	require.Equal(t, uint64(100), *UnstakingDuration.Height)
	require.Equal(t, "uatom", LiquidityParameters.FeeDenom)
	require.True(t, LiquidityParameters.PoolCreationFee.Equal(sdkmath.NewInt(5000)))
	require.Equal(t, "uosmo", DefaultLiquidityParameters.FeeDenom)

	cfg := ContractConfig()
	require.Equal(t, "owner", *cfg.Owner)
	require.Equal(t, "manager", *cfg.Manager)
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"missing contract address", "CONTRACT_ADDRESS", ""},
		{"missing lcd", "NODE_LCD", ""},
		{"bad max claims", "MAX_CLAIMS", "-1"},
		{"bad code id", "REWARD_CONTRACT_CODE_ID", "seven"},
		{"bad pool fee", "POOL_CREATION_FEE", "1.5"},
		{"bad rate limit", "RATE_LIMIT_PER_SECOND", "fast"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tt.key, tt.val)
			require.Error(t, LoadConfig())
		})
	}
}

func TestUnstakingDurationIsExclusive(t *testing.T) {
	setRequired(t)
	t.Setenv("UNSTAKING_DURATION_HEIGHT", "10")
	t.Setenv("UNSTAKING_DURATION_SECONDS", "60")
	require.Error(t, LoadConfig())

	t.Setenv("UNSTAKING_DURATION_HEIGHT", "")
	require.NoError(t, LoadConfig())
	require.Equal(t, uint64(60), *UnstakingDuration.Time)
}

func TestDatabaseConfig(t *testing.T) {
	t.Setenv("DB_HOST", "")
	t.Setenv("DB_PORT", "not-a-port")
	t.Setenv("DB_USER", "lockdrop")
	t.Setenv("DB_NAME", "lockdrop")

	cfg := DatabaseConfig()
	require.Equal(t, "localhost", cfg.Host)
	require.Equal(t, 5432, cfg.Port)
	require.Equal(t, "lockdrop", cfg.User)
	require.Equal(t, "disable", cfg.SSLMode)
}
