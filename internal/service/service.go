package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/elys-network/lockdrop/internal/contract"
	"github.com/elys-network/lockdrop/internal/emitter"
	"github.com/elys-network/lockdrop/internal/logger"
	"github.com/elys-network/lockdrop/internal/metrics"
	"github.com/elys-network/lockdrop/internal/state"
	"github.com/elys-network/lockdrop/internal/types"
)

// ErrPersistence is returned when the state after an operation could not be
// stored. The operation is rolled back in memory and nothing is emitted.
var ErrPersistence = errors.New("operation rolled back: state could not be persisted")

// Clock supplies the authoritative block for each invocation.
type Clock interface {
	Block(ctx context.Context) (types.Block, error)
}

// Store persists exported state and the operation log.
type Store interface {
	NextCommit() (int64, error)
	SaveState(rec state.StateRecord) error
	LoadState(address string) (*state.StateRecord, error)
	RecordOperation(rec state.OperationRecord) error
	Healthy() error
}

// Service runs contract operations against the chain clock and commits each
// successful one to the store and the emitter.
type Service struct {
	// Core dependencies
	logger   zerolog.Logger
	contract *contract.Contract
	clock    Clock
	emitter  emitter.Emitter
	store    Store
	metrics  *metrics.Metrics

	initial types.Config

	// mu orders commits so stored states follow execution order.
	mu         sync.Mutex
	lastCommit int64
	cycleCount int
}

// Config holds the configuration for creating a new Service instance
type Config struct {
	Contract *contract.Contract
	Clock    Clock
	Emitter  emitter.Emitter
	Store    Store
	Metrics  *metrics.Metrics

	// InitialConfig instantiates the contract when the store holds no state.
	InitialConfig types.Config
}

// Result is the outcome of a committed operation.
type Result struct {
	OperationID string          `json:"operation_id"`
	Commit      int64           `json:"commit"`
	Height      uint64          `json:"height"`
	Response    *types.Response `json:"response"`
}

// Status summarizes the service for health checks.
type Status struct {
	Healthy          bool   `json:"healthy"`
	Height           uint64 `json:"height"`
	LastCommit       int64  `json:"last_commit"`
	PendingWorkflows int    `json:"pending_workflows"`
	StoreError       string `json:"store_error,omitempty"`
	ClockError       string `json:"clock_error,omitempty"`
}

func NewService(cfg Config) (*Service, error) {
	if err := validateServiceConfig(cfg); err != nil {
		return nil, fmt.Errorf("service configuration validation failed: %w", err)
	}
	s := &Service{
		logger:   logger.GetForComponent("service").With().Str("contract", cfg.Contract.Address()).Logger(),
		contract: cfg.Contract,
		clock:    cfg.Clock,
		emitter:  cfg.Emitter,
		store:    cfg.Store,
		metrics:  cfg.Metrics,
		initial:  cfg.InitialConfig,
	}
	s.logger.Info().Str("denom", cfg.InitialConfig.Denom).Msg("Service created")
	return s, nil
}

func validateServiceConfig(cfg Config) error {
	if cfg.Contract == nil {
		return fmt.Errorf("contract cannot be nil")
	}
	if cfg.Clock == nil {
		return fmt.Errorf("clock cannot be nil")
	}
	if cfg.Emitter == nil {
		return fmt.Errorf("emitter cannot be nil")
	}
	if cfg.Store == nil {
		return fmt.Errorf("store cannot be nil")
	}
	if cfg.Metrics == nil {
		return fmt.Errorf("metrics cannot be nil")
	}
	return cfg.InitialConfig.Validate()
}

// Restore imports the latest stored state, or instantiates the contract with
// the initial config and stores that as the first commit.
func (s *Service) Restore(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.store.LoadState(s.contract.Address())
	switch {
	case err == nil:
		var g contract.Genesis
		if err := json.Unmarshal(rec.State, &g); err != nil {
			return fmt.Errorf("failed to decode stored state %d: %w", rec.StateID, err)
		}
		if err := s.contract.Import(g); err != nil {
			return fmt.Errorf("failed to import stored state %d: %w", rec.StateID, err)
		}
		s.lastCommit = rec.CommitNumber
		s.logger.Info().
			Int64("commit", rec.CommitNumber).
			Uint64("height", rec.BlockHeight).
			Str("version", rec.ContractVersion).
			Msg("Contract state restored")
		s.refreshMetrics(rec.BlockHeight)
		return nil
	case errors.Is(err, state.ErrNoState):
		block, err := s.clock.Block(ctx)
		if err != nil {
			return fmt.Errorf("failed to read block for instantiation: %w", err)
		}
		if _, err := s.contract.Instantiate(block, s.initial); err != nil {
			return fmt.Errorf("failed to instantiate contract: %w", err)
		}
		if _, err := s.persist(block); err != nil {
			return err
		}
		s.refreshMetrics(block.Height)
		s.logger.Info().Uint64("height", block.Height).Msg("No stored state, contract instantiated")
		return nil
	}
	return fmt.Errorf("failed to load stored state: %w", err)
}

// Execute runs raw for sender at the current block. Failed operations are
// logged to the store and change nothing. The block is read under mu so
// commits never see a lower height than the one before.
func (s *Service) Execute(ctx context.Context, sender string, funds []sdk.Coin, raw []byte) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	block, err := s.clock.Block(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read current block: %w", err)
	}

	start := time.Now()
	opID := uuid.New().String()
	opLogger := s.logger.With().Str("operation_id", opID).Str("sender", sender).Logger()
	failed := state.OperationRecord{
		OperationID:     opID,
		ContractAddress: s.contract.Address(),
		BlockHeight:     block.Height,
		BlockTime:       block.Time,
		Sender:          sender,
		Action:          actionOf(raw),
	}

	// only fails before instantiation, where Execute is rejected anyway
	before, snapErr := s.contract.Export()

	resp, execErr := s.contract.Execute(ctx, block, sender, funds, raw)
	if execErr != nil {
		s.metrics.ObserveOperation(failed.Action, execErr, time.Since(start))
		opLogger.Warn().Err(execErr).Str("action", failed.Action).Uint64("height", block.Height).Msg("Operation rejected")
		failed.ErrorMessage = execErr.Error()
		s.record(opLogger, failed)
		return nil, execErr
	}

	commit, err := s.persist(block)
	if err != nil {
		if snapErr == nil {
			if rbErr := s.contract.Rollback(before); rbErr != nil {
				opLogger.Error().Err(rbErr).Msg("Failed to roll back unstored operation")
			}
		}
		s.metrics.ObserveOperation(resp.Action, err, time.Since(start))
		opLogger.Error().Err(err).Str("action", resp.Action).Msg("State was not stored, operation rolled back")
		failed.Action = resp.Action
		failed.ErrorMessage = err.Error()
		s.record(opLogger, failed)
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	ev := emitter.Event{ID: opID, Height: block.Height, Time: block.Time, Sender: sender, Response: resp}
	emitErr := s.emitter.Emit(ctx, ev)
	if emitErr != nil {
		s.metrics.EmitFailed()
		opLogger.Error().Err(emitErr).Str("action", resp.Action).Msg("Failed to emit committed operation")
	}

	respJSON, err := json.Marshal(resp)
	if err != nil {
		opLogger.Error().Err(err).Msg("Failed to encode response for the operation log")
	}
	s.record(opLogger, state.OperationRecord{
		OperationID:     opID,
		ContractAddress: s.contract.Address(),
		CommitNumber:    commit,
		BlockHeight:     block.Height,
		BlockTime:       block.Time,
		Sender:          sender,
		Action:          resp.Action,
		Success:         true,
		Emitted:         emitErr == nil,
		MessageTypes:    messageTypes(resp),
		Response:        respJSON,
	})

	s.metrics.ObserveOperation(resp.Action, nil, time.Since(start))
	s.refreshMetrics(block.Height)

	opLogger.Info().
		Str("action", resp.Action).
		Int64("commit", commit).
		Uint64("height", block.Height).
		Int("messages", len(resp.Messages)).
		Dur("took", time.Since(start)).
		Msg("Operation committed")

	return &Result{OperationID: opID, Commit: commit, Height: block.Height, Response: resp}, nil
}

// Query answers raw at the current block.
func (s *Service) Query(ctx context.Context, raw []byte) (any, error) {
	block, err := s.clock.Block(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read current block: %w", err)
	}
	return s.contract.Query(block, raw)
}

// persist stores the exported state under the next commit number. Callers hold mu.
func (s *Service) persist(block types.Block) (int64, error) {
	g, err := s.contract.Export()
	if err != nil {
		return 0, fmt.Errorf("failed to export state: %w", err)
	}
	data, err := json.Marshal(g)
	if err != nil {
		return 0, fmt.Errorf("failed to encode state: %w", err)
	}
	commit, err := s.store.NextCommit()
	if err != nil {
		return 0, fmt.Errorf("failed to allocate commit number: %w", err)
	}
	err = s.store.SaveState(state.StateRecord{
		ContractAddress: g.Address,
		CommitNumber:    commit,
		BlockHeight:     block.Height,
		ContractVersion: g.Version,
		Hooks:           g.Hooks,
		State:           data,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to store state at commit %d: %w", commit, err)
	}
	s.lastCommit = commit
	return commit, nil
}

func (s *Service) record(l zerolog.Logger, rec state.OperationRecord) {
	if err := s.store.RecordOperation(rec); err != nil {
		l.Error().Err(err).Msg("Failed to record operation")
	}
}

func (s *Service) refreshMetrics(height uint64) {
	total, err := s.contract.TotalStakedAtHeight(types.Block{Height: height}, nil)
	if err != nil {
		return
	}
	value, err := s.contract.TotalValue()
	if err != nil {
		return
	}
	stakers, err := s.contract.ListStakers("", 0)
	if err != nil {
		return
	}
	s.metrics.SetTotals(height, total.Total, value, len(stakers))
}

// RunLoop checks the store and the clock every interval until ctx is done.
func (s *Service) RunLoop(ctx context.Context, interval time.Duration) {
	s.logger.Info().Dur("interval", interval).Msg("Starting service health loop")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Service loop stopped due to context cancellation")
			return
		case <-ticker.C:
			s.cycleCount++
			st := s.Status(ctx)
			ev := s.logger.Info()
			if !st.Healthy {
				ev = s.logger.Warn()
			}
			ev.Int("cycle", s.cycleCount).
				Bool("healthy", st.Healthy).
				Uint64("height", st.Height).
				Int64("lastCommit", st.LastCommit).
				Int("pendingWorkflows", st.PendingWorkflows).
				Msg("Service health check")
		}
	}
}

// Status reports store and clock health along with the commit position.
func (s *Service) Status(ctx context.Context) Status {
	s.mu.Lock()
	st := Status{Healthy: true, LastCommit: s.lastCommit}
	s.mu.Unlock()

	st.PendingWorkflows = len(s.contract.Workflows())
	if err := s.store.Healthy(); err != nil {
		st.Healthy = false
		st.StoreError = err.Error()
	}
	block, err := s.clock.Block(ctx)
	if err != nil {
		st.Healthy = false
		st.ClockError = err.Error()
	} else {
		st.Height = block.Height
	}
	return st
}

// actionOf names a message by its single top-level key.
func actionOf(raw []byte) string {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil || len(keys) != 1 {
		return "unknown"
	}
	for k := range keys {
		return k
	}
	return "unknown"
}

func messageTypes(resp *types.Response) []string {
	out := make([]string, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		out = append(out, m.MsgType())
	}
	return out
}
