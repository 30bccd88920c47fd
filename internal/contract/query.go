package contract

import (
	sdkmath "cosmossdk.io/math"

	"github.com/elys-network/lockdrop/internal/rewards"
	"github.com/elys-network/lockdrop/internal/types"
)

type Info struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type StakedBalance struct {
	Balance sdkmath.Int `json:"balance"`
	Height  uint64      `json:"height"`
}

type TotalStaked struct {
	Total  sdkmath.Int `json:"total"`
	Height uint64      `json:"height"`
}

func (c *Contract) Info() Info {
	return Info{Name: ContractName, Version: ContractVersion}
}

func (c *Contract) Config() (types.Config, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ready(); err != nil {
		return types.Config{}, err
	}
	return c.config, nil
}

// StakedBalanceAtHeight reads holder's shares as of height, or as of block
// when height is nil.
func (c *Contract) StakedBalanceAtHeight(block types.Block, holder string, height *uint64) (StakedBalance, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ready(); err != nil {
		return StakedBalance{}, err
	}
	h := heightOr(height, block)
	return StakedBalance{Balance: c.ledger.BalanceAt(holder, h), Height: h}, nil
}

func (c *Contract) TotalStakedAtHeight(block types.Block, height *uint64) (TotalStaked, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ready(); err != nil {
		return TotalStaked{}, err
	}
	h := heightOr(height, block)
	return TotalStaked{Total: c.ledger.TotalAt(h), Height: h}, nil
}

func (c *Contract) StakedValue(holder string) (sdkmath.Int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ready(); err != nil {
		return sdkmath.ZeroInt(), err
	}
	return c.ledger.ValueOf(holder), nil
}

func (c *Contract) TotalValue() (sdkmath.Int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ready(); err != nil {
		return sdkmath.ZeroInt(), err
	}
	return c.ledger.Value(), nil
}

func (c *Contract) Claims(holder string) ([]types.Claim, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ready(); err != nil {
		return nil, err
	}
	return c.claims.Claims(holder), nil
}

func (c *Contract) Hooks() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hooks.List()
}

// ListStakers pages through holders in ascending address order.
func (c *Contract) ListStakers(startAfter string, limit int) ([]types.Staker, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ready(); err != nil {
		return nil, err
	}
	return c.ledger.Stakers(startAfter, limit), nil
}

func (c *Contract) AllRewardContracts() []rewards.Contract {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rewards.All()
}

func heightOr(height *uint64, block types.Block) uint64 {
	if height != nil {
		return *height
	}
	return block.Height
}
