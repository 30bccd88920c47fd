/*

This file contains the default pool creation parameters used when the
rebalance workflow seeds new pools.

They mirror the gamm module defaults of the target chain. FEE_ASSET_DENOM and
POOL_CREATION_FEE override the fee leg; the rest only change through a new
active row in liquidity_parameters.

*/

package config

import (
	"errors"

	sdkmath "cosmossdk.io/math"

	"github.com/elys-network/lockdrop/internal/types"
)

const (
	DEFAULT_LIQUIDITY_CONFIG_NAME    = "default"
	DEFAULT_LIQUIDITY_CONFIG_VERSION = 1
)

var DefaultLiquidityParameters = types.LiquidityParams{
	FeeDenom:        "uosmo",
	PoolCreationFee: sdkmath.NewInt(100_000_000),
	SwapFee:         sdkmath.LegacyNewDecWithPrec(3, 3),
	ExitFee:         sdkmath.LegacyZeroDec(),
	Weight:          sdkmath.NewInt(100),

	// Matches the chain default so created pools keep the standard lock period.
	FuturePoolGovernor: "24h",
}

// LiquidityParameters is DefaultLiquidityParameters with environment overrides applied.
var LiquidityParameters = DefaultLiquidityParameters

func loadLiquidityConfig() error {
	params := DefaultLiquidityParameters
	params.FeeDenom = getEnvOrDefault("FEE_ASSET_DENOM", params.FeeDenom)

	if fee := getEnvOrDefault("POOL_CREATION_FEE", ""); fee != "" {
		amount, ok := sdkmath.NewIntFromString(fee)
		if !ok {
			return errors.New("environment variable POOL_CREATION_FEE must be an integer, got: " + fee)
		}
		params.PoolCreationFee = amount
	}

	if err := params.Validate(); err != nil {
		return err
	}
	LiquidityParameters = params
	return nil
}
