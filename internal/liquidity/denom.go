package liquidity

import (
	"strconv"
	"strings"

	errorsmod "cosmossdk.io/errors"

	"github.com/elys-network/lockdrop/internal/types"
)

// ParsePoolDenom extracts the numeric pool id from a pool share denom of the
// form <prefix>/<kind>/<id>, e.g. gamm/pool/7.
func ParsePoolDenom(denom string) (uint64, error) {
	if denom == "" {
		return 0, errorsmod.Wrap(types.ErrInvalidDenom, "pool denom is empty")
	}
	parts := strings.Split(denom, "/")
	if len(parts) != 3 {
		return 0, errorsmod.Wrapf(types.ErrInvalidDenom, "invalid pool denom structure: %s", denom)
	}
	poolID, err := strconv.ParseUint(parts[2], 10, 64)
	if err != nil {
		return 0, errorsmod.Wrapf(types.ErrInvalidDenom, "failed to parse pool id from denom %s: %v", denom, err)
	}
	return poolID, nil
}
