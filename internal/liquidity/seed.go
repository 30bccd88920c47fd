// Package liquidity computes pool seeding and pool exit plans. It never
// dispatches anything; the plans are handed to the host as messages.
package liquidity

import (
	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/elys-network/lockdrop/internal/logger"
	"github.com/elys-network/lockdrop/internal/types"
)

var liquidityLogger = logger.GetForComponent("liquidity")

// SeedPlan is the outcome of PlanSeed.
type SeedPlan struct {
	Pools       []types.CreateBalancerPool `json:"pools"`
	PerPoolSeed sdkmath.Int                `json:"per_pool_seed"`
	Remainder   sdk.Coin                   `json:"remainder"`
	FeeReserved sdkmath.Int                `json:"fee_reserved"`
}

// feeFold carries the pool creation fee bookkeeping across the pool list.
// All n fees are reserved up front from the fee asset's contribution and the
// obligation is consumed one fee per planned pool.
type feeFold struct {
	upfront    sdkmath.Int
	obligation sdkmath.Int
	reserved   sdkmath.Int
}

func (f feeFold) contribution(asset sdk.Coin, feeDenom string) (sdkmath.Int, feeFold, error) {
	if asset.Denom != feeDenom {
		return asset.Amount, f, nil
	}
	if asset.Amount.LTE(f.upfront) {
		return sdkmath.ZeroInt(), f, errorsmod.Wrapf(types.ErrInsufficientFunds,
			"holding %s%s cannot cover pool creation fees of %s%s", asset.Amount, asset.Denom, f.upfront, feeDenom)
	}
	f.reserved = f.upfront
	return asset.Amount.Sub(f.upfront), f, nil
}

func (f feeFold) consume(fee sdkmath.Int) feeFold {
	f.obligation = f.obligation.Sub(fee)
	return f
}

// PlanSeed pairs each held asset with an equal share of seed in a new
// two-asset pool. holdings are the amounts of each pool asset the contract
// will contribute, in pool order. The integer remainder of the seed split is
// returned for refund.
func PlanSeed(sender string, holdings []sdk.Coin, seed sdk.Coin, params types.LiquidityParams) (SeedPlan, error) {
	if seed.Amount.IsNil() || seed.Amount.IsNegative() {
		return SeedPlan{}, errorsmod.Wrap(types.ErrPayment, "seed amount must be non-negative")
	}
	if err := types.CheckAmount(seed.Amount, "seed amount"); err != nil {
		return SeedPlan{}, err
	}

	n := int64(len(holdings))
	if n == 0 {
		liquidityLogger.Debug().Str("seed", seed.String()).Msg("No pool assets, refunding full seed amount")
		return SeedPlan{PerPoolSeed: sdkmath.ZeroInt(), Remainder: seed, FeeReserved: sdkmath.ZeroInt()}, nil
	}
	if err := validateHoldings(holdings, seed.Denom); err != nil {
		return SeedPlan{}, err
	}

	perPool := seed.Amount.QuoRaw(n)
	if perPool.IsZero() {
		return SeedPlan{}, errorsmod.Wrapf(types.ErrInsufficientFunds, "seed %s cannot be split across %d pools", seed, n)
	}
	remainder := seed.Amount.Sub(perPool.MulRaw(n))

	upfront := params.PoolCreationFee.MulRaw(n)
	if err := types.CheckAmount(upfront, "pool creation fees"); err != nil {
		return SeedPlan{}, err
	}
	fold := feeFold{upfront: upfront, obligation: upfront, reserved: sdkmath.ZeroInt()}

	pools := make([]types.CreateBalancerPool, 0, n)
	for _, asset := range holdings {
		contributed, next, err := fold.contribution(asset, params.FeeDenom)
		if err != nil {
			return SeedPlan{}, err
		}
		fold = next
		if !contributed.IsPositive() {
			return SeedPlan{}, errorsmod.Wrapf(types.ErrInsufficientFunds, "no %s held to seed its pool", asset.Denom)
		}

		pools = append(pools, types.CreateBalancerPool{
			Sender: sender,
			PoolParams: types.PoolParams{
				SwapFee: params.SwapFee,
				ExitFee: params.ExitFee,
			},
			PoolAssets: []types.PoolAsset{
				{Token: sdk.NewCoin(asset.Denom, contributed), Weight: params.Weight},
				{Token: sdk.NewCoin(seed.Denom, perPool), Weight: params.Weight},
			},
			FuturePoolGovernor: params.FuturePoolGovernor,
		})
		fold = fold.consume(params.PoolCreationFee)
	}

	if !fold.obligation.IsZero() {
		return SeedPlan{}, errorsmod.Wrapf(types.ErrFeeAccounting, "%s left after planning %d pools", fold.obligation, n)
	}

	liquidityLogger.Debug().
		Int64("pools", n).
		Str("perPoolSeed", perPool.String()).
		Str("remainder", remainder.String()).
		Str("feeReserved", fold.reserved.String()).
		Msg("Planned pool seeding")

	return SeedPlan{
		Pools:       pools,
		PerPoolSeed: perPool,
		Remainder:   sdk.NewCoin(seed.Denom, remainder),
		FeeReserved: fold.reserved,
	}, nil
}

func validateHoldings(holdings []sdk.Coin, seedDenom string) error {
	seen := make(map[string]struct{}, len(holdings))
	for _, h := range holdings {
		if err := sdk.ValidateDenom(h.Denom); err != nil {
			return errorsmod.Wrapf(types.ErrInvalidDenom, "pool asset %q: %v", h.Denom, err)
		}
		if h.Denom == seedDenom {
			return errorsmod.Wrapf(types.ErrInvalidDenom, "pool asset %s is the seed denom", h.Denom)
		}
		if _, dup := seen[h.Denom]; dup {
			return errorsmod.Wrapf(types.ErrInvalidDenom, "pool asset %s listed twice", h.Denom)
		}
		if h.Amount.IsNil() || h.Amount.IsNegative() {
			return errorsmod.Wrapf(types.ErrInsufficientFunds, "negative holding of %s", h.Denom)
		}
		seen[h.Denom] = struct{}{}
	}
	return nil
}
