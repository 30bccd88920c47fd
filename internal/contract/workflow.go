package contract

import (
	"context"
	"fmt"
	"maps"
	"slices"

	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/google/uuid"

	"github.com/elys-network/lockdrop/internal/auth"
	"github.com/elys-network/lockdrop/internal/liquidity"
	"github.com/elys-network/lockdrop/internal/types"
)

type Phase string

const (
	PhaseEject Phase = "eject"
	PhaseSeed  Phase = "seed"
)

// Workflow is a pending eject-then-seed rebalance. Each phase is a separate,
// manager-authorized invocation; the phase field is the only record of progress.
type Workflow struct {
	ID        string   `json:"id"`
	Requester string   `json:"requester"`
	GammDenom string   `json:"gamm_denom"`
	PoolID    uint64   `json:"pool_id"`
	Seed      sdk.Coin `json:"seed"`
	Phase     Phase    `json:"phase"`
	StartedAt uint64   `json:"started_at"`
}

// StartRebalance opens a workflow that exits the pool named by gammDenom and
// then seeds new pools with the attached funds.
func (c *Contract) StartRebalance(block types.Block, sender, gammDenom string, funds []sdk.Coin) (*types.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ready(); err != nil {
		return nil, err
	}
	if err := auth.RequireManager(sender, c.config); err != nil {
		return nil, err
	}
	poolID, err := liquidity.ParsePoolDenom(gammDenom)
	if err != nil {
		return nil, err
	}
	seed, err := types.OneCoin(funds)
	if err != nil {
		return nil, err
	}

	wf := &Workflow{
		ID:        uuid.NewString(),
		Requester: sender,
		GammDenom: gammDenom,
		PoolID:    poolID,
		Seed:      seed,
		Phase:     PhaseEject,
		StartedAt: block.Height,
	}
	c.workflows[wf.ID] = wf

	c.logger.Info().
		Str("workflowId", wf.ID).
		Uint64("poolId", poolID).
		Str("seed", seed.String()).
		Msg("Rebalance workflow started")

	return types.NewResponse("start_rebalance").
		AddAttribute("workflow_id", wf.ID).
		AddAttribute("pool_id", fmt.Sprint(poolID)).
		AddAttribute("seed", seed.String()).
		WithData(*wf), nil
}

// AdvanceRebalance runs the next phase of workflow id. The eject phase plans
// the pool exit; the seed phase plans the new pools from what the contract
// then holds and closes the workflow.
func (c *Contract) AdvanceRebalance(ctx context.Context, block types.Block, sender, id string) (*types.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ready(); err != nil {
		return nil, err
	}
	if err := auth.RequireManager(sender, c.config); err != nil {
		return nil, err
	}
	wf, ok := c.workflows[id]
	if !ok {
		return nil, errorsmod.Wrap(types.ErrWorkflowNotFound, id)
	}

	switch wf.Phase {
	case PhaseEject:
		return c.eject(ctx, wf)
	case PhaseSeed:
		return c.seed(ctx, wf)
	default:
		return nil, fmt.Errorf("workflow %s in unknown phase %q", id, wf.Phase)
	}
}

func (c *Contract) eject(ctx context.Context, wf *Workflow) (*types.Response, error) {
	held, err := c.balanceOf(ctx, wf.GammDenom)
	if err != nil {
		return nil, err
	}
	resp := types.NewResponse("eject_liquidity").
		AddAttribute("workflow_id", wf.ID).
		AddAttribute("pool_id", fmt.Sprint(wf.PoolID))

	if held.IsZero() {
		c.logger.Warn().Str("workflowId", wf.ID).Str("denom", wf.GammDenom).Msg("No pool shares held, skipping exit")
		wf.Phase = PhaseSeed
		return resp.AddAttribute("share_in", "0"), nil
	}

	reserves, totalShares, err := c.poolState(ctx, wf.PoolID)
	if err != nil {
		return nil, err
	}
	exit, err := liquidity.PlanEject(c.address, wf.GammDenom, held, reserves, totalShares)
	if err != nil {
		return nil, err
	}
	wf.Phase = PhaseSeed

	c.logger.Info().
		Str("workflowId", wf.ID).
		Uint64("poolId", wf.PoolID).
		Str("shareIn", held.String()).
		Msg("Rebalance eject planned")

	return resp.
		AddAttribute("share_in", held.String()).
		AddMessages(exit).
		WithData(exit), nil
}

func (c *Contract) seed(ctx context.Context, wf *Workflow) (*types.Response, error) {
	reserves, err := c.pools.TotalPoolLiquidity(ctx, wf.PoolID)
	if err != nil {
		return nil, errorsmod.Wrapf(types.ErrPoolState, "pool %d liquidity: %v", wf.PoolID, err)
	}
	holdings := make([]sdk.Coin, 0, len(reserves))
	for _, r := range reserves {
		amount, err := c.balanceOf(ctx, r.Denom)
		if err != nil {
			return nil, err
		}
		holdings = append(holdings, sdk.Coin{Denom: r.Denom, Amount: amount})
	}

	plan, err := liquidity.PlanSeed(c.address, holdings, wf.Seed, c.params)
	if err != nil {
		return nil, err
	}

	resp := types.NewResponse("seed_liquidity").
		AddAttribute("workflow_id", wf.ID).
		AddAttribute("pools", fmt.Sprint(len(plan.Pools))).
		AddAttribute("per_pool_seed", plan.PerPoolSeed.String()).
		AddAttribute("refund", plan.Remainder.String())
	for _, p := range plan.Pools {
		resp.AddMessages(p)
	}
	if plan.Remainder.Amount.IsPositive() {
		resp.AddMessages(types.BankSend{ToAddress: wf.Requester, Amount: []sdk.Coin{plan.Remainder}})
	}
	delete(c.workflows, wf.ID)

	c.logger.Info().
		Str("workflowId", wf.ID).
		Int("pools", len(plan.Pools)).
		Str("refund", plan.Remainder.String()).
		Msg("Rebalance seed planned, workflow closed")

	return resp.WithData(plan), nil
}

func (c *Contract) poolState(ctx context.Context, poolID uint64) ([]sdk.Coin, sdkmath.Int, error) {
	reserves, err := c.pools.TotalPoolLiquidity(ctx, poolID)
	if err != nil {
		return nil, sdkmath.ZeroInt(), errorsmod.Wrapf(types.ErrPoolState, "pool %d liquidity: %v", poolID, err)
	}
	shares, err := c.pools.TotalShares(ctx, poolID)
	if err != nil {
		return nil, sdkmath.ZeroInt(), errorsmod.Wrapf(types.ErrPoolState, "pool %d total shares: %v", poolID, err)
	}
	if shares.Amount.IsNil() {
		return nil, sdkmath.ZeroInt(), errorsmod.Wrapf(types.ErrPoolState, "pool %d reports no shares", poolID)
	}
	return reserves, shares.Amount, nil
}

func (c *Contract) balanceOf(ctx context.Context, denom string) (sdkmath.Int, error) {
	coin, err := c.balances.Balance(ctx, c.address, denom)
	if err != nil {
		return sdkmath.ZeroInt(), fmt.Errorf("failed to query %s balance: %w", denom, err)
	}
	if coin.Amount.IsNil() {
		return sdkmath.ZeroInt(), nil
	}
	return coin.Amount, nil
}

// Workflows lists pending rebalances ordered by id.
func (c *Contract) Workflows() []Workflow {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.workflowList()
}

func (c *Contract) workflowList() []Workflow {
	out := make([]Workflow, 0, len(c.workflows))
	for _, id := range slices.Sorted(maps.Keys(c.workflows)) {
		out = append(out, *c.workflows[id])
	}
	return out
}
