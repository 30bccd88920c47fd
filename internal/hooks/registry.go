// Package hooks keeps the ordered set of addresses notified of stake changes.
package hooks

import (
	"encoding/json"
	"slices"

	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"
	"github.com/samber/lo"

	"github.com/elys-network/lockdrop/internal/types"
)

type Registry struct {
	addrs []string
}

func NewRegistry(addrs ...string) (*Registry, error) {
	r := &Registry{}
	for _, a := range addrs {
		if err := r.Add(a); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) Add(addr string) error {
	if lo.Contains(r.addrs, addr) {
		return errorsmod.Wrap(types.ErrHookAlreadyRegistered, addr)
	}
	r.addrs = append(r.addrs, addr)
	return nil
}

func (r *Registry) Remove(addr string) error {
	if !lo.Contains(r.addrs, addr) {
		return errorsmod.Wrap(types.ErrHookNotRegistered, addr)
	}
	r.addrs = lo.Without(r.addrs, addr)
	return nil
}

// List returns the hooks in registration order.
func (r *Registry) List() []string {
	return slices.Clone(r.addrs)
}

type changeData struct {
	Addr   string      `json:"addr"`
	Amount sdkmath.Int `json:"amount"`
}

type stakeChange struct {
	Stake   *changeData `json:"stake,omitempty"`
	Unstake *changeData `json:"unstake,omitempty"`
}

type stakeChangedHookMsg struct {
	StakeChangeHook stakeChange `json:"stake_change_hook"`
}

// StakeMsgs notifies every hook that addr gained amount shares.
func (r *Registry) StakeMsgs(addr string, amount sdkmath.Int) ([]types.Msg, error) {
	return r.fanOut(stakeChange{Stake: &changeData{Addr: addr, Amount: amount}})
}

// UnstakeMsgs notifies every hook that addr gave up amount shares.
func (r *Registry) UnstakeMsgs(addr string, amount sdkmath.Int) ([]types.Msg, error) {
	return r.fanOut(stakeChange{Unstake: &changeData{Addr: addr, Amount: amount}})
}

func (r *Registry) fanOut(change stakeChange) ([]types.Msg, error) {
	if len(r.addrs) == 0 {
		return nil, nil
	}
	payload, err := json.Marshal(stakeChangedHookMsg{StakeChangeHook: change})
	if err != nil {
		return nil, err
	}
	return lo.Map(r.addrs, func(hook string, _ int) types.Msg {
		return types.WasmExecute{ContractAddr: hook, Msg: payload, Funds: nil}
	}), nil
}
