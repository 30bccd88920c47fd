package contract

import (
	"context"
	"fmt"
	"strings"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/elys-network/lockdrop/internal/auth"
	"github.com/elys-network/lockdrop/internal/types"
)

// DistributeAllTokens starts a reward distributor for every non-staking denom
// the contract holds.
func (c *Contract) DistributeAllTokens(ctx context.Context, sender string) (*types.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ready(); err != nil {
		return nil, err
	}
	if err := auth.RequireOwnerOrManager(sender, c.config); err != nil {
		return nil, err
	}

	held, err := c.balances.AllBalances(ctx, c.address)
	if err != nil {
		return nil, fmt.Errorf("failed to query contract balances: %w", err)
	}

	var denoms []string
	for _, coin := range held {
		if coin.Denom == c.config.Denom {
			continue
		}
		if err := sdk.ValidateDenom(coin.Denom); err != nil {
			c.logger.Warn().Str("denom", coin.Denom).Msg("Skipping unparseable denom in contract balance")
			continue
		}
		denoms = append(denoms, coin.Denom)
	}

	resp := types.NewResponse("distribute_all_tokens").
		AddAttribute("denoms", strings.Join(denoms, ","))
	for _, denom := range denoms {
		msgs, err := c.rewards.PlanDistribute(c.address, denom, c.config)
		if err != nil {
			// every denom here is valid and differs from the staking denom
			return nil, err
		}
		resp.AddMessages(msgs...)
	}

	c.logger.Info().Strs("denoms", denoms).Int("instantiations", len(resp.Messages)).Msg("Distribution started")
	return resp, nil
}

// DistributeToken starts a reward distributor for denom unless one exists.
func (c *Contract) DistributeToken(sender, denom string) (*types.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ready(); err != nil {
		return nil, err
	}
	if err := auth.RequireOwnerOrManager(sender, c.config); err != nil {
		return nil, err
	}
	msgs, err := c.rewards.PlanDistribute(c.address, denom, c.config)
	if err != nil {
		return nil, err
	}
	return types.NewResponse("distribute_token").
		AddAttribute("denom", denom).
		AddMessages(msgs...), nil
}

// RegisterRewardContract records the distributor the host instantiated for a
// pending denom and funds it with the contract's full balance of that denom.
func (c *Contract) RegisterRewardContract(ctx context.Context, sender, addr string, token types.RewardToken) (*types.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ready(); err != nil {
		return nil, err
	}
	if err := auth.RequireOwnerOrManager(sender, c.config); err != nil {
		return nil, err
	}
	denom, err := c.rewards.CanRegister(addr, token)
	if err != nil {
		return nil, err
	}
	held, err := c.balanceOf(ctx, denom)
	if err != nil {
		return nil, err
	}

	if _, err := c.rewards.Register(addr, token); err != nil {
		return nil, err
	}
	resp := types.NewResponse("register_reward_contract").
		AddAttribute("denom", denom).
		AddAttribute("reward_contract", addr)
	if held.IsPositive() {
		// the distributor is registered and held is positive
		msg, _ := c.rewards.FundMsg(denom, held)
		resp.AddMessages(msg)
	}

	c.logger.Info().Str("denom", denom).Str("rewardContract", addr).Str("funded", held.String()).Msg("Reward contract registered")
	return resp, nil
}

// FundRewardsContract sends the contract's full balance of denom to its distributor.
func (c *Contract) FundRewardsContract(ctx context.Context, sender, denom string) (*types.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ready(); err != nil {
		return nil, err
	}
	if err := auth.RequireOwnerOrManager(sender, c.config); err != nil {
		return nil, err
	}
	if _, ok := c.rewards.Lookup(denom); !ok {
		return nil, types.ErrRewardContractNotFound.Wrap(denom)
	}
	held, err := c.balanceOf(ctx, denom)
	if err != nil {
		return nil, err
	}
	msg, err := c.rewards.FundMsg(denom, held)
	if err != nil {
		return nil, err
	}
	return types.NewResponse("fund_rewards_contract").
		AddAttribute("denom", denom).
		AddAttribute("amount", held.String()).
		AddMessages(msg), nil
}
