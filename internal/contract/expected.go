package contract

import (
	"context"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

// BalanceProvider reads bank balances of an account.
type BalanceProvider interface {
	Balance(ctx context.Context, addr, denom string) (sdk.Coin, error)
	AllBalances(ctx context.Context, addr string) ([]sdk.Coin, error)
}

// PoolStateProvider reads point-in-time pool reserves and outstanding shares.
type PoolStateProvider interface {
	TotalPoolLiquidity(ctx context.Context, poolID uint64) ([]sdk.Coin, error)
	TotalShares(ctx context.Context, poolID uint64) (sdk.Coin, error)
}
