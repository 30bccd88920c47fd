// Package auth encodes the owner/manager privilege rules. Callers are
// identified by the host; this package only compares identities.
package auth

import (
	errorsmod "cosmossdk.io/errors"

	"github.com/elys-network/lockdrop/internal/types"
)

type Role int

const (
	RoleNone Role = iota
	RoleManager
	RoleOwner
)

func (r Role) String() string {
	switch r {
	case RoleOwner:
		return "owner"
	case RoleManager:
		return "manager"
	default:
		return "none"
	}
}

// RoleOf resolves caller against cfg. An address configured as both owner and
// manager is treated as the owner.
func RoleOf(caller string, cfg types.Config) Role {
	if caller == "" {
		return RoleNone
	}
	if cfg.Owner != nil && *cfg.Owner == caller {
		return RoleOwner
	}
	if cfg.Manager != nil && *cfg.Manager == caller {
		return RoleManager
	}
	return RoleNone
}

// RequireOwnerOrManager gates config updates, hook changes and distribution triggers.
func RequireOwnerOrManager(caller string, cfg types.Config) error {
	if RoleOf(caller, cfg) == RoleNone {
		return errorsmod.Wrapf(types.ErrUnauthorized, "%q is neither owner nor manager", caller)
	}
	return nil
}

// RequireManager gates each phase of a rebalance workflow.
func RequireManager(caller string, cfg types.Config) error {
	if cfg.Manager == nil || *cfg.Manager != caller || caller == "" {
		return errorsmod.Wrapf(types.ErrUnauthorized, "%q is not the manager", caller)
	}
	return nil
}

// CheckConfigUpdate lets the owner change anything and the manager change
// everything except the owner.
func CheckConfigUpdate(caller string, current types.Config, newOwner *string) error {
	switch RoleOf(caller, current) {
	case RoleOwner:
		return nil
	case RoleManager:
		if !sameAddress(current.Owner, newOwner) {
			return errorsmod.Wrapf(types.ErrOnlyOwnerCanChangeOwner, "manager %q", caller)
		}
		return nil
	default:
		return errorsmod.Wrapf(types.ErrUnauthorized, "%q cannot update config", caller)
	}
}

func sameAddress(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
