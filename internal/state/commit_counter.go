/*

This file manages the persistent commit counter. Every committed operation
takes the next number, so a restart resumes the sequence where it stopped.

*/

package state

import (
	"database/sql"
	"errors"
	"fmt"
)

// GetCurrentCommitNumber retrieves the last issued commit number.
func GetCurrentCommitNumber() (int64, error) {
	if DB == nil {
		return 0, ErrDBNotInitialized
	}

	var current int64
	err := DB.QueryRow(`SELECT current_commit FROM commit_counter WHERE id = 1;`).Scan(&current)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// EnsureSchema inserts the row; a missing row means a hand-edited table
			stateLogger.Warn().Msg("No commit counter row found, treating as 0")
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get current commit number: %w", err)
	}

	stateLogger.Debug().Int64("currentCommit", current).Msg("Retrieved current commit number")
	return current, nil
}

// IncrementCommitNumber increments the commit counter and returns the new value.
func IncrementCommitNumber() (int64, error) {
	if DB == nil {
		return 0, ErrDBNotInitialized
	}

	updateQuery := `
		UPDATE commit_counter
		SET current_commit = current_commit + 1,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = 1
		RETURNING current_commit;`

	var next int64
	if err := DB.QueryRow(updateQuery).Scan(&next); err != nil {
		return 0, fmt.Errorf("failed to increment commit number: %w", err)
	}

	stateLogger.Debug().Int64("commit", next).Msg("Incremented commit counter")
	return next, nil
}

// ResetCommitNumber sets the counter to n (for maintenance).
func ResetCommitNumber(n int64) error {
	if DB == nil {
		return ErrDBNotInitialized
	}
	if n < 0 {
		return fmt.Errorf("commit number cannot be negative: %d", n)
	}

	result, err := DB.Exec(`
		UPDATE commit_counter
		SET current_commit = $1,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = 1;`, n)
	if err != nil {
		return fmt.Errorf("failed to reset commit number to %d: %w", n, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return errors.New("no rows updated when resetting commit number")
	}

	stateLogger.Warn().Int64("commit", n).Msg("Reset commit counter")
	return nil
}
