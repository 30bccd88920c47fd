// Package claims holds withdrawals that are waiting out the unstaking cooldown.
package claims

import (
	"maps"
	"slices"

	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"
	"github.com/samber/lo"

	"github.com/elys-network/lockdrop/internal/types"
)

// DefaultMaxClaims bounds the pending claims of one holder.
const DefaultMaxClaims = 8

// Queue is the per-holder list of pending claims.
type Queue struct {
	maxClaims int
	claims    map[string][]types.Claim
}

func NewQueue(maxClaims int) *Queue {
	if maxClaims <= 0 {
		maxClaims = DefaultMaxClaims
	}
	return &Queue{maxClaims: maxClaims, claims: make(map[string][]types.Claim)}
}

func (q *Queue) MaxClaims() int {
	return q.maxClaims
}

// CanCreate fails with ErrTooManyClaims once holder is at the cap.
func (q *Queue) CanCreate(holder string) error {
	if n := len(q.claims[holder]); n >= q.maxClaims {
		return errorsmod.Wrapf(types.ErrTooManyClaims, "%s has %d pending claims", holder, n)
	}
	return nil
}

// Create appends a claim for amount that matures at releaseAt.
func (q *Queue) Create(holder string, amount sdkmath.Int, releaseAt types.Expiration) error {
	if err := q.CanCreate(holder); err != nil {
		return err
	}
	q.claims[holder] = append(q.claims[holder], types.Claim{Amount: amount, ReleaseAt: releaseAt})
	return nil
}

// Settle removes every claim of holder that has matured at block and returns
// their sum. Pending claims stay queued in their original order.
func (q *Queue) Settle(holder string, block types.Block) (sdkmath.Int, error) {
	pending := q.claims[holder]
	matured := lo.Filter(pending, func(c types.Claim, _ int) bool {
		return c.ReleaseAt.IsExpired(block)
	})
	if len(matured) == 0 {
		return sdkmath.ZeroInt(), errorsmod.Wrapf(types.ErrNothingToClaim, "no matured claims for %s", holder)
	}

	released := lo.Reduce(matured, func(sum sdkmath.Int, c types.Claim, _ int) sdkmath.Int {
		return sum.Add(c.Amount)
	}, sdkmath.ZeroInt())
	if err := types.CheckAmount(released, "released claims"); err != nil {
		return sdkmath.ZeroInt(), err
	}

	remaining := lo.Reject(pending, func(c types.Claim, _ int) bool {
		return c.ReleaseAt.IsExpired(block)
	})
	if len(remaining) == 0 {
		delete(q.claims, holder)
	} else {
		q.claims[holder] = remaining
	}
	return released, nil
}

// Claims returns a copy of holder's pending claims.
func (q *Queue) Claims(holder string) []types.Claim {
	return slices.Clone(q.claims[holder])
}

// Export returns every holder's claims.
func (q *Queue) Export() map[string][]types.Claim {
	out := make(map[string][]types.Claim, len(q.claims))
	for holder, cs := range q.claims {
		out[holder] = slices.Clone(cs)
	}
	return out
}

// Import replaces the queue contents, enforcing the cap.
func (q *Queue) Import(in map[string][]types.Claim) error {
	for _, holder := range slices.Sorted(maps.Keys(in)) {
		if len(in[holder]) > q.maxClaims {
			return errorsmod.Wrapf(types.ErrTooManyClaims, "%s has %d claims, cap is %d", holder, len(in[holder]), q.maxClaims)
		}
	}
	q.claims = make(map[string][]types.Claim, len(in))
	for holder, cs := range in {
		if len(cs) > 0 {
			q.claims[holder] = slices.Clone(cs)
		}
	}
	return nil
}
