package metrics

import (
	"errors"
	"fmt"
	"math"

	sdkmath "cosmossdk.io/math"
)

var (
	ErrAmountNil      = errors.New("amount is nil")
	ErrAmountNegative = errors.New("amount is negative")
	ErrNotFinite      = errors.New("value is not finite")
)

// AmountToFloat64 converts a base-unit amount to a gauge value. Amounts above
// 2^53 lose precision.
func AmountToFloat64(amount sdkmath.Int) (float64, error) {
	if amount.IsNil() {
		return 0, ErrAmountNil
	}
	if amount.IsNegative() {
		return 0, ErrAmountNegative
	}

	f, err := sdkmath.LegacyNewDecFromInt(amount).Float64()
	if err != nil {
		return 0, fmt.Errorf("failed to convert %s: %w", amount, err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: result is %f", ErrNotFinite, f)
	}
	return f, nil
}
