package liquidity

import (
	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/elys-network/lockdrop/internal/types"
)

// WithdrawAmounts returns floor(reserve * held / totalShares) for each reserve.
func WithdrawAmounts(held sdkmath.Int, reserves []sdk.Coin, totalShares sdkmath.Int) ([]sdk.Coin, error) {
	if totalShares.IsNil() || !totalShares.IsPositive() {
		return nil, errorsmod.Wrap(types.ErrPoolState, "pool reports no outstanding shares")
	}
	if len(reserves) == 0 {
		return nil, errorsmod.Wrap(types.ErrPoolState, "pool reports no reserves")
	}
	if held.GT(totalShares) {
		return nil, errorsmod.Wrapf(types.ErrPoolState, "held shares %s exceed pool total %s", held, totalShares)
	}

	out := make([]sdk.Coin, 0, len(reserves))
	for _, r := range reserves {
		amount, err := types.MulDivFloor(r.Amount, held, totalShares)
		if err != nil {
			return nil, err
		}
		out = append(out, sdk.Coin{Denom: r.Denom, Amount: amount})
	}
	return out, nil
}

// PlanEject exits the whole held position in the pool named by gammDenom,
// using the proportional reserves as the minimum acceptable output.
func PlanEject(sender, gammDenom string, held sdkmath.Int, reserves []sdk.Coin, totalShares sdkmath.Int) (types.ExitPool, error) {
	poolID, err := ParsePoolDenom(gammDenom)
	if err != nil {
		return types.ExitPool{}, err
	}
	if held.IsNil() || !held.IsPositive() {
		return types.ExitPool{}, errorsmod.Wrapf(types.ErrInsufficientFunds, "no %s held", gammDenom)
	}

	mins, err := WithdrawAmounts(held, reserves, totalShares)
	if err != nil {
		return types.ExitPool{}, errorsmod.Wrapf(err, "pool %d", poolID)
	}

	liquidityLogger.Debug().
		Uint64("poolId", poolID).
		Str("shareIn", held.String()).
		Int("minAmountsOutCount", len(mins)).
		Msg("Planned pool exit")

	return types.ExitPool{
		Sender:        sender,
		PoolID:        poolID,
		ShareInAmount: held,
		TokenOutMins:  mins,
	}, nil
}
