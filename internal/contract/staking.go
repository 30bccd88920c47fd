package contract

import (
	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/elys-network/lockdrop/internal/auth"
	"github.com/elys-network/lockdrop/internal/types"
)

// Stake deposits the attached staking denom and mints shares to sender.
func (c *Contract) Stake(block types.Block, sender string, funds []sdk.Coin) (*types.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ready(); err != nil {
		return nil, err
	}
	amount, err := types.MustPay(funds, c.config.Denom)
	if err != nil {
		return nil, err
	}
	quoted, err := c.ledger.SharesFor(amount)
	if err != nil {
		return nil, err
	}
	hookMsgs, err := c.hooks.StakeMsgs(sender, quoted)
	if err != nil {
		return nil, err
	}

	shares, err := c.ledger.Deposit(sender, amount, block.Height)
	if err != nil {
		return nil, err
	}

	c.logger.Info().
		Str("staker", sender).
		Str("amount", amount.String()).
		Str("shares", shares.String()).
		Uint64("height", block.Height).
		Msg("Stake committed")

	return types.NewResponse("stake").
		AddAttribute("from", sender).
		AddAttribute("amount", amount.String()).
		AddAttribute("shares", shares.String()).
		AddMessages(hookMsgs...), nil
}

// Unstake burns amount of sender's shares. The released value is paid out
// immediately when no cooldown is configured, otherwise queued as a claim.
func (c *Contract) Unstake(block types.Block, sender string, amount sdkmath.Int) (*types.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ready(); err != nil {
		return nil, err
	}
	cooldown := c.config.UnstakingDuration
	var releaseAt types.Expiration
	if cooldown != nil {
		if err := c.claims.CanCreate(sender); err != nil {
			return nil, err
		}
		var err error
		if releaseAt, err = cooldown.After(block); err != nil {
			return nil, err
		}
	}
	if amount.IsNil() {
		amount = sdkmath.ZeroInt()
	}
	hookMsgs, err := c.hooks.UnstakeMsgs(sender, amount)
	if err != nil {
		return nil, err
	}

	released, err := c.ledger.Withdraw(sender, amount, block.Height)
	if err != nil {
		return nil, err
	}

	resp := types.NewResponse("unstake").
		AddAttribute("from", sender).
		AddAttribute("amount", amount.String()).
		AddAttribute("released", released.String()).
		AddMessages(hookMsgs...)

	if cooldown == nil {
		resp.AddMessages(types.BankSend{
			ToAddress: sender,
			Amount:    []sdk.Coin{sdk.NewCoin(c.config.Denom, released)},
		})
		resp.AddAttribute("claim_duration", "none")
	} else {
		// CanCreate above guarantees room for this claim
		_ = c.claims.Create(sender, released, releaseAt)
		resp.AddAttribute("claim_duration", cooldown.String())
		resp.AddAttribute("release_at", releaseAt.String())
	}

	c.logger.Info().
		Str("staker", sender).
		Str("shares", amount.String()).
		Str("released", released.String()).
		Bool("queued", cooldown != nil).
		Uint64("height", block.Height).
		Msg("Unstake committed")

	return resp, nil
}

// Claim pays out every matured claim of sender.
func (c *Contract) Claim(block types.Block, sender string) (*types.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ready(); err != nil {
		return nil, err
	}
	released, err := c.claims.Settle(sender, block)
	if err != nil {
		return nil, err
	}

	c.logger.Info().Str("staker", sender).Str("released", released.String()).Msg("Claims settled")

	return types.NewResponse("claim").
		AddAttribute("from", sender).
		AddAttribute("amount", released.String()).
		AddMessages(types.BankSend{
			ToAddress: sender,
			Amount:    []sdk.Coin{sdk.NewCoin(c.config.Denom, released)},
		}), nil
}

// Fund grows the value balance by the attached staking denom without minting shares.
func (c *Contract) Fund(sender string, funds []sdk.Coin) (*types.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ready(); err != nil {
		return nil, err
	}
	amount, err := types.MustPay(funds, c.config.Denom)
	if err != nil {
		return nil, err
	}
	if err := c.ledger.Fund(amount); err != nil {
		return nil, err
	}

	c.logger.Info().Str("from", sender).Str("amount", amount.String()).Msg("Value balance funded")

	return types.NewResponse("fund").
		AddAttribute("from", sender).
		AddAttribute("amount", amount.String()), nil
}

// UpdateConfigMsg replaces the privileged fields of the config.
type UpdateConfigMsg struct {
	Owner    *string         `json:"owner,omitempty"`
	Manager  *string         `json:"manager,omitempty"`
	Duration *types.Duration `json:"duration,omitempty"`
}

func (c *Contract) UpdateConfig(sender string, msg UpdateConfigMsg) (*types.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ready(); err != nil {
		return nil, err
	}
	if err := auth.CheckConfigUpdate(sender, c.config, msg.Owner); err != nil {
		return nil, err
	}
	next := c.config
	next.Owner = msg.Owner
	next.Manager = msg.Manager
	next.UnstakingDuration = msg.Duration
	if err := next.Validate(); err != nil {
		return nil, err
	}
	c.config = next

	c.logger.Info().
		Str("sender", sender).
		Str("owner", optString(next.Owner)).
		Str("manager", optString(next.Manager)).
		Msg("Config updated")

	return types.NewResponse("update_config").
		AddAttribute("owner", optString(next.Owner)).
		AddAttribute("manager", optString(next.Manager)), nil
}

func (c *Contract) AddHook(sender, addr string) (*types.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ready(); err != nil {
		return nil, err
	}
	if err := auth.RequireOwnerOrManager(sender, c.config); err != nil {
		return nil, err
	}
	if err := c.hooks.Add(addr); err != nil {
		return nil, err
	}
	return types.NewResponse("add_hook").AddAttribute("hook", addr), nil
}

func (c *Contract) RemoveHook(sender, addr string) (*types.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ready(); err != nil {
		return nil, err
	}
	if err := auth.RequireOwnerOrManager(sender, c.config); err != nil {
		return nil, err
	}
	if err := c.hooks.Remove(addr); err != nil {
		return nil, err
	}
	return types.NewResponse("remove_hook").AddAttribute("hook", addr), nil
}
