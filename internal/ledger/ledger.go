// Package ledger implements proportional share accounting over a single
// pooled value balance.
package ledger

import (
	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"

	"github.com/elys-network/lockdrop/internal/snapshot"
	"github.com/elys-network/lockdrop/internal/types"
)

// Ledger tracks the value balance, the share total and per-holder shares.
// Every mutating method validates fully before writing anything.
type Ledger struct {
	value  sdkmath.Int
	total  *snapshot.History[sdkmath.Int]
	shares *snapshot.Map[string, sdkmath.Int]
}

// New returns an empty ledger with a zero share total recorded at height.
func New(height uint64) *Ledger {
	l := &Ledger{
		value:  sdkmath.ZeroInt(),
		total:  snapshot.NewHistory[sdkmath.Int](),
		shares: snapshot.NewMap[string, sdkmath.Int](),
	}
	// an empty history cannot reject a write
	_ = l.total.Save(height, sdkmath.ZeroInt())
	return l
}

// Deposit mints shares for amount at the current exchange rate. The first
// deposit, or any deposit while the value balance is empty, mints 1:1.
func (l *Ledger) Deposit(holder string, amount sdkmath.Int, height uint64) (sdkmath.Int, error) {
	if amount.IsNil() || !amount.IsPositive() {
		return sdkmath.ZeroInt(), errorsmod.Wrap(types.ErrPayment, "deposit amount must be positive")
	}
	if err := l.canWrite(holder, height); err != nil {
		return sdkmath.ZeroInt(), err
	}

	total := l.Total()
	issued, err := l.SharesFor(amount)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}

	newBalance, err := types.SafeAdd(l.Balance(holder), issued)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	newTotal, err := types.SafeAdd(total, issued)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	newValue, err := types.SafeAdd(l.value, amount)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}

	l.commit(holder, height, newBalance, newTotal, newValue)
	return issued, nil
}

// SharesFor quotes the shares a deposit of amount would mint right now.
func (l *Ledger) SharesFor(amount sdkmath.Int) (sdkmath.Int, error) {
	total := l.Total()
	if total.IsZero() || l.value.IsZero() {
		return amount, types.CheckAmount(amount, "deposit")
	}
	return types.MulDivFloor(total, amount, l.value)
}

// Withdraw burns shareAmount of holder's shares and returns the value they
// represented, rounded down. Shares worth less than one unit are rejected with
// ErrInvalidUnstakeAmount, so no payout or claim is ever zero.
func (l *Ledger) Withdraw(holder string, shareAmount sdkmath.Int, height uint64) (sdkmath.Int, error) {
	if shareAmount.IsNil() || !shareAmount.IsPositive() {
		return sdkmath.ZeroInt(), errorsmod.Wrap(types.ErrInvalidUnstakeAmount, "amount must be positive")
	}
	balance := l.Balance(holder)
	if shareAmount.GT(balance) {
		return sdkmath.ZeroInt(), errorsmod.Wrapf(types.ErrInvalidUnstakeAmount, "%s exceeds staked balance %s", shareAmount, balance)
	}
	total := l.Total()
	if total.IsZero() {
		return sdkmath.ZeroInt(), errorsmod.Wrap(types.ErrInvalidUnstakeAmount, "no shares outstanding")
	}
	if err := l.canWrite(holder, height); err != nil {
		return sdkmath.ZeroInt(), err
	}

	released, err := types.MulDivFloor(shareAmount, l.value, total)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	if released.IsZero() {
		return sdkmath.ZeroInt(), errorsmod.Wrapf(types.ErrInvalidUnstakeAmount, "%s shares are worth nothing", shareAmount)
	}

	newBalance, err := types.SafeSub(balance, shareAmount)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	newTotal, err := types.SafeSub(total, shareAmount)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	newValue, err := types.SafeSub(l.value, released)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}

	l.commit(holder, height, newBalance, newTotal, newValue)
	return released, nil
}

// Fund adds amount to the value balance without minting shares.
func (l *Ledger) Fund(amount sdkmath.Int) error {
	if amount.IsNil() || !amount.IsPositive() {
		return errorsmod.Wrap(types.ErrPayment, "fund amount must be positive")
	}
	newValue, err := types.SafeAdd(l.value, amount)
	if err != nil {
		return err
	}
	l.value = newValue
	return nil
}

func (l *Ledger) canWrite(holder string, height uint64) error {
	if err := l.total.CanSave(height); err != nil {
		return err
	}
	return l.shares.CanSave(holder, height)
}

func (l *Ledger) commit(holder string, height uint64, balance, total, value sdkmath.Int) {
	// canWrite has already cleared both writes at this height
	_ = l.shares.Save(holder, height, balance)
	_ = l.total.Save(height, total)
	l.value = value
}

// Value is the pooled value balance.
func (l *Ledger) Value() sdkmath.Int {
	return l.value
}

// Total is the latest share total.
func (l *Ledger) Total() sdkmath.Int {
	v, ok := l.total.Latest()
	if !ok {
		return sdkmath.ZeroInt()
	}
	return v
}

// TotalAt is the share total as of height, zero before the first entry.
func (l *Ledger) TotalAt(height uint64) sdkmath.Int {
	v, ok := l.total.At(height)
	if !ok {
		return sdkmath.ZeroInt()
	}
	return v
}

// Balance is holder's latest share balance.
func (l *Ledger) Balance(holder string) sdkmath.Int {
	v, ok := l.shares.Latest(holder)
	if !ok {
		return sdkmath.ZeroInt()
	}
	return v
}

// BalanceAt is holder's share balance as of height, zero for unknown holders.
func (l *Ledger) BalanceAt(holder string, height uint64) sdkmath.Int {
	v, ok := l.shares.At(holder, height)
	if !ok {
		return sdkmath.ZeroInt()
	}
	return v
}

// ValueOf is holder's proportional claim on the value balance. It is zero
// whenever any of the three operands is zero.
func (l *Ledger) ValueOf(holder string) sdkmath.Int {
	balance, total := l.Balance(holder), l.Total()
	if balance.IsZero() || total.IsZero() || l.value.IsZero() {
		return sdkmath.ZeroInt()
	}
	v, err := types.MulDivFloor(balance, l.value, total)
	if err != nil {
		return sdkmath.ZeroInt()
	}
	return v
}

// Stakers lists holders in ascending address order, starting strictly after
// startAfter. A limit of zero returns every remaining holder.
func (l *Ledger) Stakers(startAfter string, limit int) []types.Staker {
	var out []types.Staker
	for _, addr := range l.shares.Keys() {
		if startAfter != "" && addr <= startAfter {
			continue
		}
		out = append(out, types.Staker{Address: addr, Balance: l.Balance(addr)})
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
