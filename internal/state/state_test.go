package state

import (
	"encoding/json"
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/elys-network/lockdrop/internal/types"
)

func TestFunctionsRequireInitializedDB(t *testing.T) {
	require.Nil(t, DB)

	_, err := GetCurrentCommitNumber()
	require.ErrorIs(t, err, ErrDBNotInitialized)
	_, err = IncrementCommitNumber()
	require.ErrorIs(t, err, ErrDBNotInitialized)
	require.ErrorIs(t, ResetCommitNumber(0), ErrDBNotInitialized)

	_, err = SaveContractState(StateRecord{State: json.RawMessage(`{}`)})
	require.ErrorIs(t, err, ErrDBNotInitialized)
	_, err = LoadLatestContractState("addr")
	require.ErrorIs(t, err, ErrDBNotInitialized)
	_, err = PruneContractStates("addr", 1)
	require.ErrorIs(t, err, ErrDBNotInitialized)

	require.ErrorIs(t, RecordOperation(OperationRecord{OperationID: "x"}), ErrDBNotInitialized)
	_, err = GetRecentOperations(5)
	require.ErrorIs(t, err, ErrDBNotInitialized)
	_, err = GetUnemittedOperations(5)
	require.ErrorIs(t, err, ErrDBNotInitialized)
	_, err = GetOperationByID("x")
	require.ErrorIs(t, err, ErrDBNotInitialized)
	_, err = GetOperationSummary()
	require.ErrorIs(t, err, ErrDBNotInitialized)

	require.ErrorIs(t, EnsureSchema(), ErrDBNotInitialized)
	require.ErrorIs(t, DropSchema(), ErrDBNotInitialized)
	require.ErrorIs(t, TestDBConnection(), ErrDBNotInitialized)

	var store Postgres
	_, err = store.NextCommit()
	require.ErrorIs(t, err, ErrDBNotInitialized)
	require.ErrorIs(t, store.Healthy(), ErrDBNotInitialized)
}

func TestDSNDefaultsSSLMode(t *testing.T) {
	cfg := DBConfig{Host: "localhost", Port: 5432, User: "u", Password: "p", DBName: "lockdrop"}
	require.Equal(t, "host=localhost port=5432 user=u password=p dbname=lockdrop sslmode=disable", cfg.dsn())

	cfg.SSLMode = "require"
	require.Contains(t, cfg.dsn(), "sslmode=require")
}

func TestParseLiquidityParams(t *testing.T) {
	p, err := parseLiquidityParams("uosmo", "100000000", "0.003000000000000000", "0", "100", "24h")
	require.NoError(t, err)
	require.Equal(t, "uosmo", p.FeeDenom)
	require.True(t, p.PoolCreationFee.Equal(sdkmath.NewInt(100000000)))
	require.True(t, p.SwapFee.Equal(sdkmath.LegacyMustNewDecFromStr("0.003")))
	require.True(t, p.ExitFee.IsZero())
	require.True(t, p.Weight.Equal(sdkmath.NewInt(100)))
	require.Equal(t, "24h", p.FuturePoolGovernor)

	_, err = parseLiquidityParams("uosmo", "1.5", "0", "0", "100", "")
	require.Error(t, err)
	_, err = parseLiquidityParams("uosmo", "1", "abc", "0", "100", "")
	require.Error(t, err)
	_, err = parseLiquidityParams("uosmo", "1", "0", "0", "0", "")
	require.ErrorIs(t, err, types.ErrInvalidConfig)
	_, err = parseLiquidityParams("uosmo", "1", "1", "0", "100", "")
	require.ErrorIs(t, err, types.ErrInvalidConfig)
}

func TestSaveRejectsInvalidInputBeforeTouchingDB(t *testing.T) {
	_, err := SaveLiquidityParameters(types.LiquidityParams{FeeDenom: "uosmo"}, "default", 1, true)
	require.Error(t, err)
}
