package state

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// OperationRecord is one executed message as stored in operation_log.
type OperationRecord struct {
	OperationID     string          `json:"operation_id"`
	ContractAddress string          `json:"contract_address"`
	CommitNumber    int64           `json:"commit_number"`
	BlockHeight     uint64          `json:"block_height"`
	BlockTime       time.Time       `json:"block_time"`
	Sender          string          `json:"sender"`
	Action          string          `json:"action"`
	Success         bool            `json:"success"`
	Emitted         bool            `json:"emitted"`
	ErrorMessage    string          `json:"error_message,omitempty"`
	MessageTypes    []string        `json:"message_types"`
	Response        json.RawMessage `json:"response,omitempty"`
	RecordedAt      time.Time       `json:"recorded_at"`
}

// OperationSummary aggregates the operation log.
type OperationSummary struct {
	TotalOperations int            `json:"total_operations"`
	Successful      int            `json:"successful"`
	Failed          int            `json:"failed"`
	ByAction        map[string]int `json:"by_action"`
	LastHeight      uint64         `json:"last_height"`
}

// RecordOperation inserts rec into the operation log.
func RecordOperation(rec OperationRecord) error {
	if DB == nil {
		return ErrDBNotInitialized
	}
	if rec.OperationID == "" {
		return errors.New("operation id is required")
	}

	var commit sql.NullInt64
	if rec.Success {
		commit = sql.NullInt64{Int64: rec.CommitNumber, Valid: true}
	}
	var errMsg sql.NullString
	if rec.ErrorMessage != "" {
		errMsg = sql.NullString{String: rec.ErrorMessage, Valid: true}
	}
	var response []byte
	if len(rec.Response) > 0 {
		response = rec.Response
	}

	_, err := DB.Exec(`
		INSERT INTO operation_log (
			operation_id, contract_address, commit_number, block_height, block_time,
			sender, action, success, emitted, error_message, message_types, response
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);`,
		rec.OperationID, rec.ContractAddress, commit, int64(rec.BlockHeight), rec.BlockTime,
		rec.Sender, rec.Action, rec.Success, rec.Emitted, errMsg, pq.Array(rec.MessageTypes), response,
	)
	if err != nil {
		return fmt.Errorf("failed to record operation %s: %w", rec.OperationID, err)
	}

	stateLogger.Debug().
		Str("operationId", rec.OperationID).
		Str("action", rec.Action).
		Bool("success", rec.Success).
		Bool("emitted", rec.Emitted).
		Msg("Operation recorded")
	return nil
}

const operationColumns = `
	operation_id::TEXT, contract_address, commit_number, block_height, block_time,
	sender, action, success, emitted, error_message, message_types, response, recorded_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOperation(row rowScanner) (OperationRecord, error) {
	var rec OperationRecord
	var commit sql.NullInt64
	var height int64
	var errMsg sql.NullString
	var response []byte
	err := row.Scan(
		&rec.OperationID, &rec.ContractAddress, &commit, &height, &rec.BlockTime,
		&rec.Sender, &rec.Action, &rec.Success, &rec.Emitted, &errMsg, pq.Array(&rec.MessageTypes), &response, &rec.RecordedAt,
	)
	if err != nil {
		return rec, err
	}
	rec.CommitNumber = commit.Int64
	rec.BlockHeight = uint64(height)
	rec.ErrorMessage = errMsg.String
	if len(response) > 0 {
		rec.Response = response
	}
	return rec, nil
}

// GetRecentOperations retrieves the newest operations, most recent first.
func GetRecentOperations(limit int) ([]OperationRecord, error) {
	if DB == nil {
		return nil, ErrDBNotInitialized
	}

	if limit <= 0 || limit > 100 {
		limit = 10 // Default limit
	}

	return queryOperations(limit, `SELECT `+operationColumns+` FROM operation_log ORDER BY recorded_at DESC LIMIT $1`)
}

// GetUnemittedOperations lists committed operations whose event never reached
// the emitter, oldest first, so they can be replayed.
func GetUnemittedOperations(limit int) ([]OperationRecord, error) {
	if DB == nil {
		return nil, ErrDBNotInitialized
	}

	if limit <= 0 || limit > 100 {
		limit = 10
	}
	return queryOperations(limit, `SELECT `+operationColumns+` FROM operation_log WHERE success AND NOT emitted ORDER BY recorded_at ASC LIMIT $1`)
}

func queryOperations(limit int, query string) ([]OperationRecord, error) {
	rows, err := DB.Query(query, limit)
	if err != nil {
		stateLogger.Error().Err(err).Msg("Failed to query operations")
		return nil, fmt.Errorf("failed to query operations: %w", err)
	}
	defer rows.Close()

	ops := make([]OperationRecord, 0, limit)
	for rows.Next() {
		rec, err := scanOperation(rows)
		if err != nil {
			stateLogger.Error().Err(err).Msg("Failed to scan operation row")
			continue // Skip this row and continue with others
		}
		ops = append(ops, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating operation rows: %w", err)
	}
	return ops, nil
}

// GetOperationByID retrieves a single operation.
func GetOperationByID(id string) (*OperationRecord, error) {
	if DB == nil {
		return nil, ErrDBNotInitialized
	}

	rec, err := scanOperation(DB.QueryRow(`SELECT `+operationColumns+` FROM operation_log WHERE operation_id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("operation %s not found", id)
		}
		return nil, fmt.Errorf("failed to get operation %s: %w", id, err)
	}
	return &rec, nil
}

// GetOperationSummary counts operations by outcome and action.
func GetOperationSummary() (*OperationSummary, error) {
	if DB == nil {
		return nil, ErrDBNotInitialized
	}

	summary := &OperationSummary{ByAction: map[string]int{}}
	var lastHeight sql.NullInt64
	err := DB.QueryRow(`
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE success),
			COUNT(*) FILTER (WHERE NOT success),
			MAX(block_height)
		FROM operation_log`,
	).Scan(&summary.TotalOperations, &summary.Successful, &summary.Failed, &lastHeight)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize operations: %w", err)
	}
	summary.LastHeight = uint64(lastHeight.Int64)

	rows, err := DB.Query(`SELECT action, COUNT(*) FROM operation_log GROUP BY action`)
	if err != nil {
		return nil, fmt.Errorf("failed to count operations by action: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var action string
		var n int
		if err := rows.Scan(&action, &n); err != nil {
			stateLogger.Error().Err(err).Msg("Failed to scan action count")
			continue
		}
		summary.ByAction[action] = n
	}
	return summary, rows.Err()
}
