package chain

import (
	"context"
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/query"
	banktypes "github.com/cosmos/cosmos-sdk/x/bank/types"
	"google.golang.org/grpc"
)

const balancePageLimit = 200

// BankClient reads balances through the bank module gRPC query service.
type BankClient struct {
	query banktypes.QueryClient
}

func NewBankClient(conn *grpc.ClientConn) *BankClient {
	return &BankClient{query: banktypes.NewQueryClient(conn)}
}

func (b *BankClient) Balance(ctx context.Context, addr, denom string) (sdk.Coin, error) {
	resp, err := b.query.Balance(ctx, &banktypes.QueryBalanceRequest{Address: addr, Denom: denom})
	if err != nil {
		return sdk.Coin{}, fmt.Errorf("bank balance query failed: %w", err)
	}
	if resp == nil || resp.Balance == nil {
		return sdk.Coin{}, fmt.Errorf("%w: empty balance for %s", ErrInvalidResponse, denom)
	}
	return *resp.Balance, nil
}

// AllBalances pages through every balance of addr.
func (b *BankClient) AllBalances(ctx context.Context, addr string) ([]sdk.Coin, error) {
	var out []sdk.Coin
	var nextKey []byte
	for {
		resp, err := b.query.AllBalances(ctx, &banktypes.QueryAllBalancesRequest{
			Address:    addr,
			Pagination: &query.PageRequest{Key: nextKey, Limit: balancePageLimit},
		})
		if err != nil {
			return nil, fmt.Errorf("bank all balances query failed: %w", err)
		}
		if resp == nil {
			return nil, fmt.Errorf("%w: nil all balances response", ErrInvalidResponse)
		}
		out = append(out, resp.Balances...)
		if resp.Pagination == nil || len(resp.Pagination.NextKey) == 0 {
			break
		}
		nextKey = resp.Pagination.NextKey
	}
	chainLogger.Debug().Str("address", addr).Int("denoms", len(out)).Msg("Fetched balances")
	return out, nil
}
