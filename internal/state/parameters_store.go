// ./internal/state/parameters_store.go
package state

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	sdkmath "cosmossdk.io/math"

	"github.com/elys-network/lockdrop/internal/types"
)

// SaveLiquidityParameters saves a new version of the pool creation parameters.
func SaveLiquidityParameters(params types.LiquidityParams, configName string, version int, makeActive bool) (id int64, err error) {
	if DB == nil {
		return 0, ErrDBNotInitialized
	}
	if err := params.Validate(); err != nil {
		return 0, fmt.Errorf("refusing to save invalid liquidity parameters: %w", err)
	}

	tx, err := DB.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		} else if err != nil {
			tx.Rollback()
		}
	}()

	if makeActive {
		_, err = tx.Exec(`UPDATE liquidity_parameters SET is_active = FALSE WHERE config_name = $1 AND is_active = TRUE;`, configName)
		if err != nil {
			return 0, fmt.Errorf("failed to deactivate existing active parameters for %s: %w", configName, err)
		}
	}

	stmt := `
		INSERT INTO liquidity_parameters (
			version, config_name, is_active, activated_at, created_at,
			fee_denom, pool_creation_fee, swap_fee, exit_fee, pool_weight, future_pool_governor
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING params_id;`

	now := time.Now()
	err = tx.QueryRow(stmt,
		version, configName, makeActive, now, now,
		params.FeeDenom, params.PoolCreationFee.String(), params.SwapFee.String(), params.ExitFee.String(),
		params.Weight.String(), params.FuturePoolGovernor,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert liquidity parameters: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	stateLogger.Info().
		Int("version", version).
		Str("config", configName).
		Int64("params_id", id).
		Bool("active", makeActive).
		Msg("Saved liquidity parameters")
	return id, nil
}

// LoadActiveLiquidityParameters loads the currently active parameters of configName.
func LoadActiveLiquidityParameters(configName string) (*types.LiquidityParams, error) {
	if DB == nil {
		return nil, ErrDBNotInitialized
	}

	query := `
		SELECT fee_denom, pool_creation_fee::TEXT, swap_fee::TEXT, exit_fee::TEXT, pool_weight::TEXT, future_pool_governor
		FROM liquidity_parameters
		WHERE config_name = $1 AND is_active = TRUE
		ORDER BY activated_at DESC
		LIMIT 1;`

	var feeDenom, fee, swapFee, exitFee, weight, governor string
	err := DB.QueryRow(query, configName).Scan(&feeDenom, &fee, &swapFee, &exitFee, &weight, &governor)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("no active liquidity parameters found for config '%s'", configName)
		}
		return nil, fmt.Errorf("failed to scan active liquidity parameters for config '%s': %w", configName, err)
	}

	p, err := parseLiquidityParams(feeDenom, fee, swapFee, exitFee, weight, governor)
	if err != nil {
		return nil, fmt.Errorf("stored liquidity parameters for '%s' are invalid: %w", configName, err)
	}
	stateLogger.Info().Str("config", configName).Msg("Loaded active liquidity parameters")
	return p, nil
}

func parseLiquidityParams(feeDenom, fee, swapFee, exitFee, weight, governor string) (*types.LiquidityParams, error) {
	creationFee, ok := sdkmath.NewIntFromString(fee)
	if !ok {
		return nil, fmt.Errorf("pool creation fee %q is not an integer", fee)
	}
	poolWeight, ok := sdkmath.NewIntFromString(weight)
	if !ok {
		return nil, fmt.Errorf("pool weight %q is not an integer", weight)
	}
	swap, err := sdkmath.LegacyNewDecFromStr(swapFee)
	if err != nil {
		return nil, fmt.Errorf("swap fee %q: %w", swapFee, err)
	}
	exit, err := sdkmath.LegacyNewDecFromStr(exitFee)
	if err != nil {
		return nil, fmt.Errorf("exit fee %q: %w", exitFee, err)
	}
	p := &types.LiquidityParams{
		FeeDenom:           feeDenom,
		PoolCreationFee:    creationFee,
		SwapFee:            swap,
		ExitFee:            exit,
		Weight:             poolWeight,
		FuturePoolGovernor: governor,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}
