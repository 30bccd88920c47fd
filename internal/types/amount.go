package types

import (
	"math/big"

	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"
)

// MaxAmount is the largest amount the ledger may hold in any balance (2^128 - 1).
var MaxAmount = sdkmath.NewIntFromBigInt(
	new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1)),
)

// CheckAmount fails with ErrOverflow when x exceeds MaxAmount and with
// ErrUnderflow when x is negative.
func CheckAmount(x sdkmath.Int, what string) error {
	if x.IsNegative() {
		return errorsmod.Wrapf(ErrUnderflow, "%s is negative: %s", what, x)
	}
	if x.GT(MaxAmount) {
		return errorsmod.Wrapf(ErrOverflow, "%s exceeds 128 bits: %s", what, x)
	}
	return nil
}

// MulDivFloor returns floor(a * b / c). Operands are bounded to 128 bits so the
// intermediate product always fits the 256-bit Int.
func MulDivFloor(a, b, c sdkmath.Int) (sdkmath.Int, error) {
	if c.IsZero() {
		return sdkmath.ZeroInt(), errorsmod.Wrap(ErrOverflow, "division by zero")
	}
	for _, x := range []sdkmath.Int{a, b, c} {
		if err := CheckAmount(x, "operand"); err != nil {
			return sdkmath.ZeroInt(), err
		}
	}
	out := a.Mul(b).Quo(c)
	if err := CheckAmount(out, "result"); err != nil {
		return sdkmath.ZeroInt(), err
	}
	return out, nil
}

// SafeAdd returns a + b, failing when the sum leaves the 128-bit range.
func SafeAdd(a, b sdkmath.Int) (sdkmath.Int, error) {
	out := a.Add(b)
	if err := CheckAmount(out, "sum"); err != nil {
		return sdkmath.ZeroInt(), err
	}
	return out, nil
}

// SafeSub returns a - b, failing with ErrUnderflow when b > a.
func SafeSub(a, b sdkmath.Int) (sdkmath.Int, error) {
	if b.GT(a) {
		return sdkmath.ZeroInt(), errorsmod.Wrapf(ErrUnderflow, "%s - %s", a, b)
	}
	return a.Sub(b), nil
}
