package types

import (
	"errors"

	errorsmod "cosmossdk.io/errors"
)

// ModuleName is the codespace of every registered lockdrop error.
const ModuleName = "lockdrop"

var (
	ErrUnauthorized            = errorsmod.Register(ModuleName, 2, "unauthorized")
	ErrOnlyOwnerCanChangeOwner = errorsmod.Register(ModuleName, 3, "only the owner can change the owner")
	ErrInvalidConfig           = errorsmod.Register(ModuleName, 4, "invalid config")
	ErrInvalidDenom            = errorsmod.Register(ModuleName, 5, "invalid denom")
	ErrPayment                 = errorsmod.Register(ModuleName, 6, "payment error")
	ErrInsufficientFunds       = errorsmod.Register(ModuleName, 7, "insufficient funds")
	ErrInvalidUnstakeAmount    = errorsmod.Register(ModuleName, 8, "invalid unstake amount")
	ErrTooManyClaims           = errorsmod.Register(ModuleName, 9, "too many outstanding claims")
	ErrNothingToClaim          = errorsmod.Register(ModuleName, 10, "nothing to claim")
	ErrPoolState               = errorsmod.Register(ModuleName, 11, "pool state error")
	ErrOverflow                = errorsmod.Register(ModuleName, 12, "arithmetic overflow")
	ErrUnderflow               = errorsmod.Register(ModuleName, 13, "arithmetic underflow")
	ErrHookAlreadyRegistered   = errorsmod.Register(ModuleName, 14, "hook already registered")
	ErrHookNotRegistered       = errorsmod.Register(ModuleName, 15, "hook not registered")
	ErrRewardContractNotFound  = errorsmod.Register(ModuleName, 16, "reward contract not found")
	ErrWorkflowNotFound        = errorsmod.Register(ModuleName, 17, "rebalance workflow not found")
	ErrNonMonotonicHeight      = errorsmod.Register(ModuleName, 18, "snapshot height lower than latest entry")
	ErrFeeAccounting           = errorsmod.Register(ModuleName, 19, "pool creation fee obligation not settled")
)

// IsUnauthorized reports whether err was caused by a failed role check.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrOnlyOwnerCanChangeOwner)
}

// IsRetryable reports whether the caller may succeed by trying again later
// without changing the request.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrNothingToClaim) || errors.Is(err, ErrTooManyClaims)
}

// IsRegistered reports whether err carries one of the lockdrop error kinds.
func IsRegistered(err error) bool {
	var e *errorsmod.Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Codespace() == ModuleName
}
