// Package rewards tracks the reward distributor deployed for each non-staking
// denom and builds the messages that create and fund them.
package rewards

import (
	"encoding/json"
	"maps"
	"slices"

	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/samber/lo"

	"github.com/elys-network/lockdrop/internal/types"
)

// RewardDurationBlocks is the payout period given to new distributors.
const RewardDurationBlocks = 24

// Contract is one denom to distributor mapping.
type Contract struct {
	Denom   string `json:"denom"`
	Address string `json:"address"`
}

type Registry struct {
	byDenom map[string]string
	pending map[string]struct{}
}

func NewRegistry() *Registry {
	return &Registry{byDenom: make(map[string]string), pending: make(map[string]struct{})}
}

func (r *Registry) Lookup(denom string) (string, bool) {
	addr, ok := r.byDenom[denom]
	return addr, ok
}

func (r *Registry) IsPending(denom string) bool {
	_, ok := r.pending[denom]
	return ok
}

// All lists every registered distributor in descending denom order.
func (r *Registry) All() []Contract {
	denoms := slices.Sorted(maps.Keys(r.byDenom))
	slices.Reverse(denoms)
	return lo.Map(denoms, func(d string, _ int) Contract {
		return Contract{Denom: d, Address: r.byDenom[d]}
	})
}

// Pending lists denoms whose distributor instantiation has not been reported back.
func (r *Registry) Pending() []string {
	return slices.Sorted(maps.Keys(r.pending))
}

type rewardToken struct {
	Native string `json:"native"`
}

type instantiateMsg struct {
	Owner           string      `json:"owner"`
	Manager         string      `json:"manager"`
	StakingContract string      `json:"staking_contract"`
	RewardToken     rewardToken `json:"reward_token"`
	RewardDuration  uint64      `json:"reward_duration"`
}

// PlanDistribute returns the instantiation of a distributor for denom, owned
// and managed by self, or nothing when one already exists or is on its way.
// The denom is marked pending until Register is called.
func (r *Registry) PlanDistribute(self, denom string, cfg types.Config) ([]types.Msg, error) {
	if denom == cfg.Denom {
		return nil, errorsmod.Wrapf(types.ErrUnauthorized, "cannot distribute the staking denom %s", denom)
	}
	if err := sdk.ValidateDenom(denom); err != nil {
		return nil, errorsmod.Wrapf(types.ErrInvalidDenom, "%q: %v", denom, err)
	}
	if _, ok := r.byDenom[denom]; ok || r.IsPending(denom) {
		return nil, nil
	}

	payload, err := json.Marshal(instantiateMsg{
		Owner:           self,
		Manager:         self,
		StakingContract: self,
		RewardToken:     rewardToken{Native: denom},
		RewardDuration:  RewardDurationBlocks,
	})
	if err != nil {
		return nil, err
	}
	r.pending[denom] = struct{}{}
	return []types.Msg{types.WasmInstantiate{
		Admin:  self,
		CodeID: cfg.RewardContractCodeID,
		Label:  Label(denom),
		Msg:    payload,
	}}, nil
}

// Label is the instantiation label of the distributor for denom.
func Label(denom string) string {
	return "lockdrop_rewards_" + denom
}

// CanRegister validates a reported instantiation without recording it.
func (r *Registry) CanRegister(addr string, token types.RewardToken) (string, error) {
	denom, err := token.NativeDenom()
	if err != nil {
		return "", err
	}
	if !r.IsPending(denom) {
		return "", errorsmod.Wrapf(types.ErrRewardContractNotFound, "no distributor instantiation pending for %s", denom)
	}
	if addr == "" {
		return "", errorsmod.Wrap(types.ErrInvalidConfig, "distributor address is empty")
	}
	return denom, nil
}

// Register records the distributor instantiated for a pending denom.
func (r *Registry) Register(addr string, token types.RewardToken) (string, error) {
	denom, err := r.CanRegister(addr, token)
	if err != nil {
		return "", err
	}
	delete(r.pending, denom)
	r.byDenom[denom] = addr
	return denom, nil
}

// FundMsg sends the full held balance of denom to its distributor.
func (r *Registry) FundMsg(denom string, held sdkmath.Int) (types.Msg, error) {
	addr, ok := r.byDenom[denom]
	if !ok {
		return nil, errorsmod.Wrapf(types.ErrRewardContractNotFound, "no distributor for %s", denom)
	}
	if held.IsNil() || !held.IsPositive() {
		return nil, errorsmod.Wrapf(types.ErrInsufficientFunds, "no %s held to fund distributor", denom)
	}
	return types.WasmExecute{
		ContractAddr: addr,
		Msg:          json.RawMessage(`{"fund":{}}`),
		Funds:        []sdk.Coin{sdk.NewCoin(denom, held)},
	}, nil
}

// Genesis is the exported registry.
type Genesis struct {
	Contracts []Contract `json:"contracts"`
	Pending   []string   `json:"pending"`
}

func (r *Registry) Export() Genesis {
	return Genesis{Contracts: r.All(), Pending: r.Pending()}
}

func (r *Registry) Import(g Genesis) {
	r.byDenom = make(map[string]string, len(g.Contracts))
	for _, c := range g.Contracts {
		r.byDenom[c.Denom] = c.Address
	}
	r.pending = make(map[string]struct{}, len(g.Pending))
	for _, d := range g.Pending {
		r.pending[d] = struct{}{}
	}
}
