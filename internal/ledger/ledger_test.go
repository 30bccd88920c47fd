package ledger

import (
	"encoding/json"
	"math/rand"
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/elys-network/lockdrop/internal/types"
)

func TestFirstDepositMintsOneToOne(t *testing.T) {
	l := New(1)

	shares, err := l.Deposit("alice", sdkmath.NewInt(1234), 2)
	require.NoError(t, err)
	require.Equal(t, int64(1234), shares.Int64())
	require.Equal(t, int64(1234), l.Total().Int64())
	require.Equal(t, int64(1234), l.Value().Int64())
}

func TestDepositRoundsDown(t *testing.T) {
	l := New(1)
	_, err := l.Deposit("alice", sdkmath.NewInt(100), 2)
	require.NoError(t, err)
	require.NoError(t, l.Fund(sdkmath.NewInt(200)))
	require.Equal(t, int64(300), l.Value().Int64())

	shares, err := l.Deposit("bob", sdkmath.NewInt(7), 3)
	require.NoError(t, err)
	require.Equal(t, int64(2), shares.Int64())
	require.Equal(t, int64(102), l.Total().Int64())
	require.Equal(t, int64(307), l.Value().Int64())
}

func TestDepositIntoEmptyValueBalanceMintsOneToOne(t *testing.T) {
	l := New(1)
	_, err := l.Deposit("alice", sdkmath.NewInt(10), 2)
	require.NoError(t, err)

	// a withdrawal that leaves shares but no value cannot happen through the
	// ledger, so construct the state through an import
	g := l.Export()
	g.Value = sdkmath.ZeroInt()
	l, err = Import(g)
	require.NoError(t, err)

	shares, err := l.Deposit("bob", sdkmath.NewInt(5), 3)
	require.NoError(t, err)
	require.Equal(t, int64(5), shares.Int64())
}

func TestWithdrawAllReturnsEntireValue(t *testing.T) {
	l := New(1)
	_, err := l.Deposit("alice", sdkmath.NewInt(100), 2)
	require.NoError(t, err)
	require.NoError(t, l.Fund(sdkmath.NewInt(55)))

	released, err := l.Withdraw("alice", sdkmath.NewInt(100), 3)
	require.NoError(t, err)
	require.Equal(t, int64(155), released.Int64())
	require.True(t, l.Value().IsZero())
	require.True(t, l.Total().IsZero())
	require.True(t, l.Balance("alice").IsZero())
}

func TestWithdrawWithZeroTotalFails(t *testing.T) {
	l := New(1)
	_, err := l.Withdraw("alice", sdkmath.NewInt(1), 2)
	require.ErrorIs(t, err, types.ErrInvalidUnstakeAmount)
}

func TestWithdrawValidation(t *testing.T) {
	l := New(1)
	_, err := l.Deposit("alice", sdkmath.NewInt(10), 2)
	require.NoError(t, err)

	_, err = l.Withdraw("alice", sdkmath.NewInt(11), 3)
	require.ErrorIs(t, err, types.ErrInvalidUnstakeAmount)

	_, err = l.Withdraw("alice", sdkmath.ZeroInt(), 3)
	require.ErrorIs(t, err, types.ErrInvalidUnstakeAmount)

	_, err = l.Withdraw("bob", sdkmath.NewInt(1), 3)
	require.ErrorIs(t, err, types.ErrInvalidUnstakeAmount)

	require.Equal(t, int64(10), l.Balance("alice").Int64())
	require.Equal(t, int64(10), l.Value().Int64())
}

func TestWithdrawRejectsWorthlessShares(t *testing.T) {
	l := New(1)
	_, err := l.Deposit("alice", sdkmath.NewInt(3), 2)
	require.NoError(t, err)

	g := l.Export()
	g.Value = sdkmath.OneInt()
	l, err = Import(g)
	require.NoError(t, err)

	_, err = l.Withdraw("alice", sdkmath.OneInt(), 3)
	require.ErrorIs(t, err, types.ErrInvalidUnstakeAmount)
	require.Equal(t, int64(3), l.Balance("alice").Int64())

	released, err := l.Withdraw("alice", sdkmath.NewInt(3), 3)
	require.NoError(t, err)
	require.Equal(t, int64(1), released.Int64())
}

func TestLowerHeightWriteLeavesLedgerUntouched(t *testing.T) {
	l := New(1)
	_, err := l.Deposit("alice", sdkmath.NewInt(10), 5)
	require.NoError(t, err)

	_, err = l.Deposit("alice", sdkmath.NewInt(10), 4)
	require.ErrorIs(t, err, types.ErrNonMonotonicHeight)
	require.Equal(t, int64(10), l.Balance("alice").Int64())
	require.Equal(t, int64(10), l.Total().Int64())
	require.Equal(t, int64(10), l.Value().Int64())
}

func TestDepositOverflow(t *testing.T) {
	l := New(1)
	_, err := l.Deposit("alice", types.MaxAmount, 2)
	require.NoError(t, err)

	_, err = l.Deposit("bob", sdkmath.OneInt(), 3)
	require.ErrorIs(t, err, types.ErrOverflow)
	require.True(t, l.Balance("bob").IsZero())
}

func TestShareConservation(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	holders := []string{"alice", "bob", "carol", "dave"}
	l := New(1)

	for height := uint64(2); height < 400; height++ {
		holder := holders[r.Intn(len(holders))]
		switch r.Intn(3) {
		case 0, 1:
			_, err := l.Deposit(holder, sdkmath.NewInt(int64(r.Intn(1000)+1)), height)
			require.NoError(t, err)
		default:
			if bal := l.Balance(holder); bal.IsPositive() {
				amount := sdkmath.NewInt(r.Int63n(bal.Int64()) + 1)
				_, err := l.Withdraw(holder, amount, height)
				if err != nil {
					require.ErrorIs(t, err, types.ErrInvalidUnstakeAmount)
				}
			}
		}
		if r.Intn(10) == 0 {
			require.NoError(t, l.Fund(sdkmath.NewInt(int64(r.Intn(50)+1))))
		}

		sum := sdkmath.ZeroInt()
		for _, s := range l.Stakers("", 0) {
			sum = sum.Add(s.Balance)
		}
		require.True(t, sum.Equal(l.Total()), "height %d: %s != %s", height, sum, l.Total())
	}
}

func TestHistoricalBalancesAreStable(t *testing.T) {
	l := New(1)
	_, err := l.Deposit("alice", sdkmath.NewInt(100), 10)
	require.NoError(t, err)

	atEleven := l.BalanceAt("alice", 11)
	totalAtEleven := l.TotalAt(11)

	_, err = l.Deposit("alice", sdkmath.NewInt(50), 12)
	require.NoError(t, err)
	_, err = l.Withdraw("alice", sdkmath.NewInt(30), 20)
	require.NoError(t, err)

	require.True(t, atEleven.Equal(l.BalanceAt("alice", 11)))
	require.True(t, totalAtEleven.Equal(l.TotalAt(11)))
	require.Equal(t, int64(150), l.BalanceAt("alice", 19).Int64())
	require.Equal(t, int64(120), l.BalanceAt("alice", 20).Int64())
	require.True(t, l.BalanceAt("alice", 9).IsZero())
	require.True(t, l.BalanceAt("nobody", 20).IsZero())
}

func TestValueOf(t *testing.T) {
	l := New(1)
	require.True(t, l.ValueOf("alice").IsZero())

	_, err := l.Deposit("alice", sdkmath.NewInt(100), 2)
	require.NoError(t, err)
	_, err = l.Deposit("bob", sdkmath.NewInt(300), 2)
	require.NoError(t, err)
	require.NoError(t, l.Fund(sdkmath.NewInt(100)))

	require.Equal(t, int64(125), l.ValueOf("alice").Int64())
	require.Equal(t, int64(375), l.ValueOf("bob").Int64())
	require.True(t, l.ValueOf("carol").IsZero())
}

func TestStakersPagination(t *testing.T) {
	l := New(1)
	for _, addr := range []string{"dave", "alice", "carol", "bob"} {
		_, err := l.Deposit(addr, sdkmath.NewInt(10), 2)
		require.NoError(t, err)
	}

	page := l.Stakers("", 2)
	require.Len(t, page, 2)
	require.Equal(t, "alice", page[0].Address)
	require.Equal(t, "bob", page[1].Address)

	page = l.Stakers("bob", 0)
	require.Len(t, page, 2)
	require.Equal(t, "carol", page[0].Address)
	require.Equal(t, "dave", page[1].Address)
}

func TestExportImport(t *testing.T) {
	l := New(1)
	_, err := l.Deposit("alice", sdkmath.NewInt(100), 2)
	require.NoError(t, err)
	_, err = l.Deposit("bob", sdkmath.NewInt(50), 3)
	require.NoError(t, err)

	raw, err := json.Marshal(l.Export())
	require.NoError(t, err)

	var g Genesis
	require.NoError(t, json.Unmarshal(raw, &g))
	restored, err := Import(g)
	require.NoError(t, err)

	require.True(t, restored.Total().Equal(l.Total()))
	require.True(t, restored.BalanceAt("bob", 2).IsZero())
	require.Equal(t, int64(50), restored.BalanceAt("bob", 3).Int64())

	g.Shares["bob"][0].Value = sdkmath.NewInt(51)
	_, err = Import(g)
	require.Error(t, err)
}
