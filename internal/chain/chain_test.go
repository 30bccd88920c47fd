package chain

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/query"
	banktypes "github.com/cosmos/cosmos-sdk/x/bank/types"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"

	"github.com/elys-network/lockdrop/internal/types"
)

func newLCD(t *testing.T, routes map[string]string) *GammClient {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	g, err := NewGammClient(srv.URL + "/")
	require.NoError(t, err)
	return g
}

func TestGammClientReadsPoolState(t *testing.T) {
	g := newLCD(t, map[string]string{
		"/osmosis/gamm/v1beta1/pools/7/total_pool_liquidity": `{"liquidity":[{"denom":"uatom","amount":"1000"},{"denom":"uosmo","amount":"2000"}]}`,
		"/osmosis/gamm/v1beta1/pools/7/total_shares":         `{"total_shares":{"denom":"gamm/pool/7","amount":"50"}}`,
	})

	reserves, err := g.TotalPoolLiquidity(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, []sdk.Coin{sdk.NewInt64Coin("uatom", 1000), sdk.NewInt64Coin("uosmo", 2000)}, reserves)

	shares, err := g.TotalShares(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, "gamm/pool/7", shares.Denom)
	require.Equal(t, int64(50), shares.Amount.Int64())
}

func TestGammClientRejectsBadResponses(t *testing.T) {
	g := newLCD(t, map[string]string{
		"/osmosis/gamm/v1beta1/pools/1/total_pool_liquidity": `{"liquidity":[]}`,
		"/osmosis/gamm/v1beta1/pools/1/total_shares":         `{}`,
		"/osmosis/gamm/v1beta1/pools/2/total_shares":         `not json`,
	})
	ctx := context.Background()

	_, err := g.TotalPoolLiquidity(ctx, 1)
	require.ErrorIs(t, err, ErrInvalidResponse)
	_, err = g.TotalShares(ctx, 1)
	require.ErrorIs(t, err, ErrInvalidResponse)
	_, err = g.TotalShares(ctx, 2)
	require.ErrorIs(t, err, ErrInvalidResponse)
	_, err = g.TotalPoolLiquidity(ctx, 3)
	require.ErrorIs(t, err, ErrInvalidResponse)

	_, err = NewGammClient("  ")
	require.Error(t, err)
}

type fakeBankQuery struct {
	banktypes.QueryClient
	pages [][]sdk.Coin
}

func (f *fakeBankQuery) Balance(_ context.Context, req *banktypes.QueryBalanceRequest, _ ...grpc.CallOption) (*banktypes.QueryBalanceResponse, error) {
	coin := sdk.NewInt64Coin(req.Denom, 42)
	return &banktypes.QueryBalanceResponse{Balance: &coin}, nil
}

func (f *fakeBankQuery) AllBalances(_ context.Context, req *banktypes.QueryAllBalancesRequest, _ ...grpc.CallOption) (*banktypes.QueryAllBalancesResponse, error) {
	page := 0
	if len(req.Pagination.Key) > 0 {
		page = int(req.Pagination.Key[0])
	}
	resp := &banktypes.QueryAllBalancesResponse{Balances: f.pages[page], Pagination: &query.PageResponse{}}
	if page+1 < len(f.pages) {
		resp.Pagination.NextKey = []byte{byte(page + 1)}
	}
	return resp, nil
}

func TestBankClientPagesThroughBalances(t *testing.T) {
	b := &BankClient{query: &fakeBankQuery{pages: [][]sdk.Coin{
		{sdk.NewInt64Coin("uatom", 1)},
		{sdk.NewInt64Coin("uosmo", 2), sdk.NewInt64Coin("ustake", 3)},
	}}}

	all, err := b.AllBalances(context.Background(), "contract")
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, "ustake", all[2].Denom)

	coin, err := b.Balance(context.Background(), "contract", "uatom")
	require.NoError(t, err)
	require.Equal(t, int64(42), coin.Amount.Int64())
}

func TestFixedClockAdvances(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := &FixedClock{Current: types.Block{Height: 10, Time: start}}
	c.Advance(5, 6*time.Second)

	b, err := c.Block(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint64(15), b.Height)
	require.Equal(t, start.Add(30*time.Second), b.Time)
}
