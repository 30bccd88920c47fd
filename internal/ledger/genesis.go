package ledger

import (
	"fmt"

	sdkmath "cosmossdk.io/math"

	"github.com/elys-network/lockdrop/internal/snapshot"
	"github.com/elys-network/lockdrop/internal/types"
)

// Genesis is the full exported ledger, histories included.
type Genesis struct {
	Value  sdkmath.Int                              `json:"value"`
	Total  []snapshot.Entry[sdkmath.Int]            `json:"total"`
	Shares map[string][]snapshot.Entry[sdkmath.Int] `json:"shares"`
}

func (l *Ledger) Export() Genesis {
	return Genesis{
		Value:  l.value,
		Total:  l.total.Entries(),
		Shares: l.shares.Entries(),
	}
}

// Import rebuilds a ledger from an export.
func Import(g Genesis) (*Ledger, error) {
	if g.Value.IsNil() {
		g.Value = sdkmath.ZeroInt()
	}
	if err := types.CheckAmount(g.Value, "value balance"); err != nil {
		return nil, err
	}
	l := &Ledger{
		value:  g.Value,
		total:  snapshot.NewHistory[sdkmath.Int](),
		shares: snapshot.NewMap[string, sdkmath.Int](),
	}
	if err := l.total.Restore(g.Total); err != nil {
		return nil, fmt.Errorf("restore share total: %w", err)
	}
	if err := l.shares.Restore(g.Shares); err != nil {
		return nil, fmt.Errorf("restore share balances: %w", err)
	}
	sum := sdkmath.ZeroInt()
	for _, addr := range l.shares.Keys() {
		sum = sum.Add(l.Balance(addr))
	}
	if !sum.Equal(l.Total()) {
		return nil, fmt.Errorf("share balances sum to %s, total is %s", sum, l.Total())
	}
	return l, nil
}
