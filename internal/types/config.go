package types

import (
	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Config is the privileged configuration record of a lockdrop instance.
type Config struct {
	Owner                *string   `json:"owner,omitempty"`
	Manager              *string   `json:"manager,omitempty"`
	Denom                string    `json:"denom"`
	UnstakingDuration    *Duration `json:"unstaking_duration,omitempty"`
	RewardContractCodeID uint64    `json:"reward_contract_code_id"`
}

// Validate checks the staking denom and the optional cooldown.
func (c Config) Validate() error {
	if err := sdk.ValidateDenom(c.Denom); err != nil {
		return errorsmod.Wrapf(ErrInvalidDenom, "staking denom %q: %v", c.Denom, err)
	}
	if c.UnstakingDuration != nil {
		if err := c.UnstakingDuration.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Claim is a queued withdrawal awaiting cooldown maturity.
type Claim struct {
	Amount    sdkmath.Int `json:"amount"`
	ReleaseAt Expiration  `json:"release_at"`
}

// Staker is one row of the staker listing.
type Staker struct {
	Address string      `json:"address"`
	Balance sdkmath.Int `json:"balance"`
}

// RewardToken identifies the token a reward distributor pays out.
type RewardToken struct {
	Native *string `json:"native,omitempty"`
	Cw20   *string `json:"cw20,omitempty"`
}

// NativeDenom returns the native denom, failing with ErrInvalidDenom for
// contract-issued tokens.
func (t RewardToken) NativeDenom() (string, error) {
	if t.Native == nil || *t.Native == "" {
		return "", errorsmod.Wrap(ErrInvalidDenom, "reward token must be a native denom")
	}
	return *t.Native, nil
}

// LiquidityParams are the fixed parameters applied to every planned pool.
type LiquidityParams struct {
	FeeDenom           string            `json:"fee_denom"`
	PoolCreationFee    sdkmath.Int       `json:"pool_creation_fee"`
	SwapFee            sdkmath.LegacyDec `json:"swap_fee"`
	ExitFee            sdkmath.LegacyDec `json:"exit_fee"`
	Weight             sdkmath.Int       `json:"weight"`
	FuturePoolGovernor string            `json:"future_pool_governor"`
}

// Validate checks that fees are within [0, 1) and that the weight is positive.
func (p LiquidityParams) Validate() error {
	if err := sdk.ValidateDenom(p.FeeDenom); err != nil {
		return errorsmod.Wrapf(ErrInvalidDenom, "fee denom %q: %v", p.FeeDenom, err)
	}
	if p.PoolCreationFee.IsNil() || p.PoolCreationFee.IsNegative() {
		return errorsmod.Wrap(ErrInvalidConfig, "pool creation fee must be non-negative")
	}
	if p.SwapFee.IsNil() || p.SwapFee.IsNegative() || p.SwapFee.GTE(sdkmath.LegacyOneDec()) {
		return errorsmod.Wrap(ErrInvalidConfig, "swap fee must be in [0, 1)")
	}
	if p.ExitFee.IsNil() || p.ExitFee.IsNegative() || p.ExitFee.GTE(sdkmath.LegacyOneDec()) {
		return errorsmod.Wrap(ErrInvalidConfig, "exit fee must be in [0, 1)")
	}
	if p.Weight.IsNil() || !p.Weight.IsPositive() {
		return errorsmod.Wrap(ErrInvalidConfig, "pool weight must be positive")
	}
	return nil
}

// MustPay returns the amount of denom attached in funds. Exactly one coin of
// denom with a positive amount is accepted.
func MustPay(funds []sdk.Coin, denom string) (sdkmath.Int, error) {
	coin, err := OneCoin(funds)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	if coin.Denom != denom {
		return sdkmath.ZeroInt(), errorsmod.Wrapf(ErrPayment, "must send %s, got %s", denom, coin.Denom)
	}
	return coin.Amount, nil
}

// OneCoin returns the single positive coin attached in funds.
func OneCoin(funds []sdk.Coin) (sdk.Coin, error) {
	switch len(funds) {
	case 0:
		return sdk.Coin{}, errorsmod.Wrap(ErrPayment, "no funds sent")
	case 1:
	default:
		return sdk.Coin{}, errorsmod.Wrap(ErrPayment, "sent more than one denomination")
	}
	coin := funds[0]
	if coin.Amount.IsNil() || !coin.Amount.IsPositive() {
		return sdk.Coin{}, errorsmod.Wrapf(ErrPayment, "received zero %s", coin.Denom)
	}
	if err := CheckAmount(coin.Amount, "payment"); err != nil {
		return sdk.Coin{}, err
	}
	return coin, nil
}
