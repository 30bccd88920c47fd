package contract

import (
	"fmt"

	"github.com/elys-network/lockdrop/internal/claims"
	"github.com/elys-network/lockdrop/internal/hooks"
	"github.com/elys-network/lockdrop/internal/ledger"
	"github.com/elys-network/lockdrop/internal/rewards"
	"github.com/elys-network/lockdrop/internal/types"
)

// Genesis is the complete persisted state of an instantiated contract.
type Genesis struct {
	Name      string                   `json:"name"`
	Version   string                   `json:"version"`
	Address   string                   `json:"address"`
	Config    types.Config             `json:"config"`
	Ledger    ledger.Genesis           `json:"ledger"`
	Claims    map[string][]types.Claim `json:"claims"`
	Hooks     []string                 `json:"hooks"`
	Rewards   rewards.Genesis          `json:"rewards"`
	Workflows []Workflow               `json:"workflows"`
}

func (c *Contract) Export() (Genesis, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ready(); err != nil {
		return Genesis{}, err
	}
	return Genesis{
		Name:      ContractName,
		Version:   ContractVersion,
		Address:   c.address,
		Config:    c.config,
		Ledger:    c.ledger.Export(),
		Claims:    c.claims.Export(),
		Hooks:     c.hooks.List(),
		Rewards:   c.rewards.Export(),
		Workflows: c.workflowList(),
	}, nil
}

// Import replaces the state of an uninstantiated contract with g. Nothing is
// changed when g fails validation.
func (c *Contract) Import(g Genesis) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.instantiated {
		return ErrAlreadyInstantiated
	}
	if err := c.load(g); err != nil {
		return err
	}

	c.logger.Info().
		Str("version", g.Version).
		Int("stakers", len(g.Ledger.Shares)).
		Int("workflows", len(g.Workflows)).
		Msg("State imported")
	return nil
}

// Rollback puts an instantiated contract back to g, an earlier Export of the
// same contract. Used to undo an operation whose state could not be stored.
func (c *Contract) Rollback(g Genesis) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ready(); err != nil {
		return err
	}
	if err := c.load(g); err != nil {
		return fmt.Errorf("rollback: %w", err)
	}
	c.logger.Warn().Int("stakers", len(g.Ledger.Shares)).Msg("State rolled back")
	return nil
}

// load validates g and swaps it in. Callers hold mu.
func (c *Contract) load(g Genesis) error {
	if g.Name != ContractName {
		return fmt.Errorf("state belongs to %q, not %q", g.Name, ContractName)
	}
	if g.Address != c.address {
		return fmt.Errorf("state was exported for %s, contract is %s", g.Address, c.address)
	}
	if err := g.Config.Validate(); err != nil {
		return err
	}

	l, err := ledger.Import(g.Ledger)
	if err != nil {
		return fmt.Errorf("import ledger: %w", err)
	}
	q := claims.NewQueue(c.claims.MaxClaims())
	if err := q.Import(g.Claims); err != nil {
		return fmt.Errorf("import claims: %w", err)
	}
	h, err := hooks.NewRegistry(g.Hooks...)
	if err != nil {
		return fmt.Errorf("import hooks: %w", err)
	}
	r := rewards.NewRegistry()
	r.Import(g.Rewards)

	workflows := make(map[string]*Workflow, len(g.Workflows))
	for i := range g.Workflows {
		wf := g.Workflows[i]
		if wf.Phase != PhaseEject && wf.Phase != PhaseSeed {
			return fmt.Errorf("workflow %s in unknown phase %q", wf.ID, wf.Phase)
		}
		workflows[wf.ID] = &wf
	}

	c.config = g.Config
	c.ledger = l
	c.claims = q
	c.hooks = h
	c.rewards = r
	c.workflows = workflows
	c.instantiated = true
	return nil
}
