package contract

import (
	"context"
	"encoding/json"

	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/elys-network/lockdrop/internal/types"
)

type unstakeMsg struct {
	Amount sdkmath.Int `json:"amount"`
}

type hookMsg struct {
	Addr string `json:"addr"`
}

type denomMsg struct {
	Denom string `json:"denom"`
}

type registerRewardMsg struct {
	Address     string            `json:"address"`
	RewardToken types.RewardToken `json:"reward_token"`
}

type startRebalanceMsg struct {
	GammDenom string `json:"gamm_denom"`
}

type advanceRebalanceMsg struct {
	ID string `json:"id"`
}

// ExecuteMsg is the JSON union of state-changing calls. Exactly one field is set.
type ExecuteMsg struct {
	Stake                  *struct{}            `json:"stake,omitempty"`
	Unstake                *unstakeMsg          `json:"unstake,omitempty"`
	Claim                  *struct{}            `json:"claim,omitempty"`
	Fund                   *struct{}            `json:"fund,omitempty"`
	UpdateConfig           *UpdateConfigMsg     `json:"update_config,omitempty"`
	AddHook                *hookMsg             `json:"add_hook,omitempty"`
	RemoveHook             *hookMsg             `json:"remove_hook,omitempty"`
	DistributeAllTokens    *struct{}            `json:"distribute_all_tokens,omitempty"`
	DistributeToken        *denomMsg            `json:"distribute_token,omitempty"`
	RegisterRewardContract *registerRewardMsg   `json:"register_reward_contract,omitempty"`
	FundRewardsContract    *denomMsg            `json:"fund_rewards_contract,omitempty"`
	StartRebalance         *startRebalanceMsg   `json:"start_rebalance,omitempty"`
	AdvanceRebalance       *advanceRebalanceMsg `json:"advance_rebalance,omitempty"`
}

type heightQuery struct {
	Address string  `json:"address,omitempty"`
	Height  *uint64 `json:"height,omitempty"`
}

type addressQuery struct {
	Address string `json:"address"`
}

type listStakersQuery struct {
	StartAfter string `json:"start_after,omitempty"`
	Limit      int    `json:"limit,omitempty"`
}

// QueryMsg is the JSON union of read-only calls. Exactly one field is set.
type QueryMsg struct {
	Info                  *struct{}         `json:"info,omitempty"`
	GetConfig             *struct{}         `json:"get_config,omitempty"`
	StakedBalanceAtHeight *heightQuery      `json:"staked_balance_at_height,omitempty"`
	TotalStakedAtHeight   *heightQuery      `json:"total_staked_at_height,omitempty"`
	StakedValue           *addressQuery     `json:"staked_value,omitempty"`
	TotalValue            *struct{}         `json:"total_value,omitempty"`
	Claims                *addressQuery     `json:"claims,omitempty"`
	GetHooks              *struct{}         `json:"get_hooks,omitempty"`
	ListStakers           *listStakersQuery `json:"list_stakers,omitempty"`
	AllRewardContracts    *struct{}         `json:"all_reward_contracts,omitempty"`
	PendingWorkflows      *struct{}         `json:"pending_workflows,omitempty"`
}

type valueResponse struct {
	Value sdkmath.Int `json:"value"`
}

type claimsResponse struct {
	Claims []types.Claim `json:"claims"`
}

type hooksResponse struct {
	Hooks []string `json:"hooks"`
}

type stakersResponse struct {
	Stakers []types.Staker `json:"stakers"`
}

// Execute decodes raw as an ExecuteMsg and runs it for sender with the
// attached funds.
func (c *Contract) Execute(ctx context.Context, block types.Block, sender string, funds []sdk.Coin, raw []byte) (*types.Response, error) {
	var msg ExecuteMsg
	if err := decodeUnion(raw, &msg); err != nil {
		return nil, err
	}

	switch {
	case msg.Stake != nil:
		return c.Stake(block, sender, funds)
	case msg.Unstake != nil:
		return c.Unstake(block, sender, msg.Unstake.Amount)
	case msg.Claim != nil:
		return c.Claim(block, sender)
	case msg.Fund != nil:
		return c.Fund(sender, funds)
	case msg.UpdateConfig != nil:
		return c.UpdateConfig(sender, *msg.UpdateConfig)
	case msg.AddHook != nil:
		return c.AddHook(sender, msg.AddHook.Addr)
	case msg.RemoveHook != nil:
		return c.RemoveHook(sender, msg.RemoveHook.Addr)
	case msg.DistributeAllTokens != nil:
		return c.DistributeAllTokens(ctx, sender)
	case msg.DistributeToken != nil:
		return c.DistributeToken(sender, msg.DistributeToken.Denom)
	case msg.RegisterRewardContract != nil:
		return c.RegisterRewardContract(ctx, sender, msg.RegisterRewardContract.Address, msg.RegisterRewardContract.RewardToken)
	case msg.FundRewardsContract != nil:
		return c.FundRewardsContract(ctx, sender, msg.FundRewardsContract.Denom)
	case msg.StartRebalance != nil:
		return c.StartRebalance(block, sender, msg.StartRebalance.GammDenom, funds)
	case msg.AdvanceRebalance != nil:
		return c.AdvanceRebalance(ctx, block, sender, msg.AdvanceRebalance.ID)
	}
	return nil, errorsmod.Wrap(types.ErrInvalidConfig, "empty execute message")
}

// Query decodes raw as a QueryMsg and returns its JSON-serializable result.
func (c *Contract) Query(block types.Block, raw []byte) (any, error) {
	var msg QueryMsg
	if err := decodeUnion(raw, &msg); err != nil {
		return nil, err
	}

	switch {
	case msg.Info != nil:
		return c.Info(), nil
	case msg.GetConfig != nil:
		return c.Config()
	case msg.StakedBalanceAtHeight != nil:
		return c.StakedBalanceAtHeight(block, msg.StakedBalanceAtHeight.Address, msg.StakedBalanceAtHeight.Height)
	case msg.TotalStakedAtHeight != nil:
		return c.TotalStakedAtHeight(block, msg.TotalStakedAtHeight.Height)
	case msg.StakedValue != nil:
		v, err := c.StakedValue(msg.StakedValue.Address)
		return valueResponse{Value: v}, err
	case msg.TotalValue != nil:
		v, err := c.TotalValue()
		return valueResponse{Value: v}, err
	case msg.Claims != nil:
		cs, err := c.Claims(msg.Claims.Address)
		return claimsResponse{Claims: cs}, err
	case msg.GetHooks != nil:
		return hooksResponse{Hooks: c.Hooks()}, nil
	case msg.ListStakers != nil:
		stakers, err := c.ListStakers(msg.ListStakers.StartAfter, msg.ListStakers.Limit)
		return stakersResponse{Stakers: stakers}, err
	case msg.AllRewardContracts != nil:
		return c.AllRewardContracts(), nil
	case msg.PendingWorkflows != nil:
		return c.Workflows(), nil
	}
	return nil, errorsmod.Wrap(types.ErrInvalidConfig, "empty query message")
}

// decodeUnion rejects unknown variants and more than one top-level key.
func decodeUnion(raw []byte, into any) error {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		return errorsmod.Wrapf(types.ErrInvalidConfig, "malformed message: %v", err)
	}
	if len(keys) != 1 {
		return errorsmod.Wrapf(types.ErrInvalidConfig, "message must have exactly one variant, got %d", len(keys))
	}
	if err := json.Unmarshal(raw, into); err != nil {
		return errorsmod.Wrapf(types.ErrInvalidConfig, "malformed message: %v", err)
	}
	return nil
}
