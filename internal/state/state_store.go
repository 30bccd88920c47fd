package state

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq" // PostgreSQL driver for array support
)

// StateRecord is one persisted export of the contract.
type StateRecord struct {
	StateID         int64           `json:"state_id"`
	ContractAddress string          `json:"contract_address"`
	CommitNumber    int64           `json:"commit_number"`
	BlockHeight     uint64          `json:"block_height"`
	ContractVersion string          `json:"contract_version"`
	Hooks           []string        `json:"hooks"`
	State           json.RawMessage `json:"state"`
}

// SaveContractState stores an exported contract state as JSONB.
func SaveContractState(rec StateRecord) (int64, error) {
	if DB == nil {
		return 0, ErrDBNotInitialized
	}
	if !json.Valid(rec.State) {
		return 0, errors.New("contract state is not valid JSON")
	}

	query := `
		INSERT INTO contract_state (
			contract_address, commit_number, block_height, contract_version, hooks, state
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING state_id;`

	var stateID int64
	err := DB.QueryRow(query,
		rec.ContractAddress, rec.CommitNumber, int64(rec.BlockHeight), rec.ContractVersion,
		pq.Array(rec.Hooks), []byte(rec.State),
	).Scan(&stateID)
	if err != nil {
		return 0, fmt.Errorf("failed to save contract state: %w", err)
	}

	stateLogger.Debug().
		Int64("state_id", stateID).
		Int64("commit", rec.CommitNumber).
		Uint64("height", rec.BlockHeight).
		Msg("Contract state saved to database")
	return stateID, nil
}

// LoadLatestContractState returns the most recent state of address, or
// ErrNoState when nothing was saved yet.
func LoadLatestContractState(address string) (*StateRecord, error) {
	if DB == nil {
		return nil, ErrDBNotInitialized
	}

	query := `
		SELECT state_id, contract_address, commit_number, block_height, contract_version, hooks, state
		FROM contract_state
		WHERE contract_address = $1
		ORDER BY commit_number DESC, state_id DESC
		LIMIT 1;`

	var rec StateRecord
	var height int64
	var raw []byte
	err := DB.QueryRow(query, address).Scan(
		&rec.StateID, &rec.ContractAddress, &rec.CommitNumber, &height, &rec.ContractVersion,
		pq.Array(&rec.Hooks), &raw,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoState
		}
		return nil, fmt.Errorf("failed to load contract state: %w", err)
	}
	rec.BlockHeight = uint64(height)
	rec.State = raw

	stateLogger.Info().
		Int64("state_id", rec.StateID).
		Int64("commit", rec.CommitNumber).
		Uint64("height", rec.BlockHeight).
		Msg("Loaded latest contract state")
	return &rec, nil
}

// PruneContractStates keeps the newest keep states of address.
func PruneContractStates(address string, keep int) (int64, error) {
	if DB == nil {
		return 0, ErrDBNotInitialized
	}
	if keep <= 0 {
		return 0, fmt.Errorf("must keep at least one state, got %d", keep)
	}
	result, err := DB.Exec(`
		DELETE FROM contract_state
		WHERE contract_address = $1 AND state_id NOT IN (
			SELECT state_id FROM contract_state
			WHERE contract_address = $1
			ORDER BY commit_number DESC, state_id DESC
			LIMIT $2
		);`, address, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune contract states: %w", err)
	}
	return result.RowsAffected()
}
