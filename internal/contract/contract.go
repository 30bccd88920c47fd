package contract

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/elys-network/lockdrop/internal/claims"
	"github.com/elys-network/lockdrop/internal/hooks"
	"github.com/elys-network/lockdrop/internal/ledger"
	"github.com/elys-network/lockdrop/internal/logger"
	"github.com/elys-network/lockdrop/internal/rewards"
	"github.com/elys-network/lockdrop/internal/types"
)

const (
	ContractName    = "lockdrop"
	ContractVersion = "0.1.0"
)

var (
	ErrNotInstantiated     = errors.New("contract is not instantiated")
	ErrAlreadyInstantiated = errors.New("contract is already instantiated")
)

// Contract owns all lockdrop state. Every operation runs to completion under
// mu and either commits all of its effects or none of them.
type Contract struct {
	mu     sync.Mutex
	logger zerolog.Logger

	address  string
	params   types.LiquidityParams
	balances BalanceProvider
	pools    PoolStateProvider

	instantiated bool
	config       types.Config
	ledger       *ledger.Ledger
	claims       *claims.Queue
	hooks        *hooks.Registry
	rewards      *rewards.Registry
	workflows    map[string]*Workflow
}

// Deps holds the collaborators of a Contract.
type Deps struct {
	Address   string
	Liquidity types.LiquidityParams
	MaxClaims int
	Balances  BalanceProvider
	Pools     PoolStateProvider
}

// New creates an uninstantiated contract bound to deps.
func New(deps Deps) (*Contract, error) {
	if err := validateDeps(deps); err != nil {
		return nil, fmt.Errorf("contract dependency validation failed: %w", err)
	}
	hookRegistry, _ := hooks.NewRegistry()
	return &Contract{
		logger:    logger.GetForComponent("contract").With().Str("address", deps.Address).Logger(),
		address:   deps.Address,
		params:    deps.Liquidity,
		balances:  deps.Balances,
		pools:     deps.Pools,
		claims:    claims.NewQueue(deps.MaxClaims),
		hooks:     hookRegistry,
		rewards:   rewards.NewRegistry(),
		workflows: make(map[string]*Workflow),
	}, nil
}

func validateDeps(deps Deps) error {
	if deps.Address == "" {
		return fmt.Errorf("contract address cannot be empty")
	}
	if deps.Balances == nil {
		return fmt.Errorf("balance provider cannot be nil")
	}
	if deps.Pools == nil {
		return fmt.Errorf("pool state provider cannot be nil")
	}
	if deps.MaxClaims < 0 {
		return fmt.Errorf("max claims cannot be negative")
	}
	return deps.Liquidity.Validate()
}

// Address is the account the contract holds funds in.
func (c *Contract) Address() string {
	return c.address
}

// Instantiate records cfg and starts an empty ledger at block.
func (c *Contract) Instantiate(block types.Block, cfg types.Config) (*types.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.instantiated {
		return nil, ErrAlreadyInstantiated
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c.config = cfg
	c.ledger = ledger.New(block.Height)
	c.instantiated = true

	c.logger.Info().
		Str("denom", cfg.Denom).
		Str("owner", optString(cfg.Owner)).
		Str("manager", optString(cfg.Manager)).
		Uint64("height", block.Height).
		Msg("Lockdrop instantiated")

	return types.NewResponse("instantiate").
		AddAttribute("owner", optString(cfg.Owner)).
		AddAttribute("manager", optString(cfg.Manager)).
		AddAttribute("denom", cfg.Denom), nil
}

func (c *Contract) ready() error {
	if !c.instantiated {
		return ErrNotInstantiated
	}
	return nil
}

func optString(s *string) string {
	if s == nil {
		return "none"
	}
	return *s
}
