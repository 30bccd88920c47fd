package claims

import (
	"testing"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/elys-network/lockdrop/internal/types"
)

func releaseAfter(t *testing.T, d types.Duration, block types.Block) types.Expiration {
	t.Helper()
	exp, err := d.After(block)
	require.NoError(t, err)
	return exp
}

func TestClaimCap(t *testing.T) {
	q := NewQueue(3)
	release := releaseAfter(t, types.HeightDuration(10), types.Block{Height: 1})

	for i := 0; i < 3; i++ {
		require.NoError(t, q.Create("alice", sdkmath.NewInt(1), release))
	}
	err := q.Create("alice", sdkmath.NewInt(1), release)
	require.ErrorIs(t, err, types.ErrTooManyClaims)
	require.Len(t, q.Claims("alice"), 3)

	require.NoError(t, q.Create("bob", sdkmath.NewInt(1), release))
}

func TestDefaultCap(t *testing.T) {
	q := NewQueue(0)
	require.Equal(t, DefaultMaxClaims, q.MaxClaims())
}

func TestClaimMaturesAtReleaseHeight(t *testing.T) {
	q := NewQueue(DefaultMaxClaims)
	release := releaseAfter(t, types.HeightDuration(10), types.Block{Height: 90})
	require.NoError(t, q.Create("alice", sdkmath.NewInt(42), release))

	_, err := q.Settle("alice", types.Block{Height: 99})
	require.ErrorIs(t, err, types.ErrNothingToClaim)
	require.Len(t, q.Claims("alice"), 1)

	amount, err := q.Settle("alice", types.Block{Height: 100})
	require.NoError(t, err)
	require.Equal(t, int64(42), amount.Int64())
	require.Empty(t, q.Claims("alice"))

	_, err = q.Settle("alice", types.Block{Height: 200})
	require.ErrorIs(t, err, types.ErrNothingToClaim)
}

func TestPartialSettlement(t *testing.T) {
	q := NewQueue(DefaultMaxClaims)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cooldown := types.TimeDuration(60)

	require.NoError(t, q.Create("alice", sdkmath.NewInt(5), releaseAfter(t, cooldown, types.Block{Height: 1, Time: now})))
	require.NoError(t, q.Create("alice", sdkmath.NewInt(7), releaseAfter(t, cooldown, types.Block{Height: 2, Time: now.Add(30 * time.Second)})))
	require.NoError(t, q.Create("alice", sdkmath.NewInt(11), releaseAfter(t, cooldown, types.Block{Height: 3, Time: now.Add(10 * time.Second)})))

	amount, err := q.Settle("alice", types.Block{Height: 10, Time: now.Add(75 * time.Second)})
	require.NoError(t, err)
	require.Equal(t, int64(16), amount.Int64())

	left := q.Claims("alice")
	require.Len(t, left, 1)
	require.Equal(t, int64(7), left[0].Amount.Int64())
}

func TestImportEnforcesCap(t *testing.T) {
	release := releaseAfter(t, types.HeightDuration(1), types.Block{Height: 1})
	q := NewQueue(1)
	err := q.Import(map[string][]types.Claim{
		"alice": {{Amount: sdkmath.NewInt(1), ReleaseAt: release}, {Amount: sdkmath.NewInt(2), ReleaseAt: release}},
	})
	require.ErrorIs(t, err, types.ErrTooManyClaims)

	require.NoError(t, q.Import(map[string][]types.Claim{
		"alice": {{Amount: sdkmath.NewInt(1), ReleaseAt: release}},
	}))
	require.Len(t, q.Export()["alice"], 1)
}
