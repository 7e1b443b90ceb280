package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/eshaffer321/receipt-reconciler/internal/domain/matcher"
)

const runColumns = `id, workspace_id, source, status, transaction_count, receipt_count,
	total_transactions, matched_receipts, transactions_without_receipts, limited_processing,
	result_json, error_message, duration_ms, started_at, completed_at`

// SaveRun records a finished run
func (s *Storage) SaveRun(ctx context.Context, run *ReconciliationRun) error {
	var resultJSON sql.NullString
	if run.Result != nil {
		data, err := json.Marshal(run.Result)
		if err != nil {
			return fmt.Errorf("encode run result: %w", err)
		}
		resultJSON = sql.NullString{String: string(data), Valid: true}
	}

	query := `INSERT INTO reconciliation_runs (` + runColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		run.ID,
		run.WorkspaceID,
		run.Source,
		run.Status,
		run.TransactionCount,
		run.ReceiptCount,
		run.Stats.TotalTransactions,
		run.Stats.MatchedReceipts,
		run.Stats.TransactionsWithoutReceipts,
		run.Stats.LimitedProcessing,
		resultJSON,
		run.ErrorMessage,
		run.DurationMs,
		formatTime(run.StartedAt),
		formatTime(run.CompletedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save run %s: %w", run.ID, err)
	}
	return nil
}

// GetRun retrieves a run by ID
func (s *Storage) GetRun(ctx context.Context, id string) (*ReconciliationRun, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM reconciliation_runs WHERE id = ?`, id)

	run, err := scanRun(row, true)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run %s: %w", id, err)
	}
	return run, nil
}

// ListRuns returns recent runs, newest first. Results are not loaded.
func (s *Storage) ListRuns(ctx context.Context, filters RunFilters) ([]ReconciliationRun, error) {
	var (
		where []string
		args  []any
	)
	if filters.WorkspaceID != "" {
		where = append(where, "workspace_id = ?")
		args = append(args, filters.WorkspaceID)
	}
	if filters.Status != "" {
		where = append(where, "status = ?")
		args = append(args, filters.Status)
	}

	limit := filters.Limit
	if limit <= 0 {
		limit = DefaultRunLimit
	}

	query := `SELECT ` + runColumns + ` FROM reconciliation_runs`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY started_at DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := make([]ReconciliationRun, 0)
	for rows.Next() {
		run, err := scanRun(rows, false)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner, withResult bool) (*ReconciliationRun, error) {
	var (
		run                    ReconciliationRun
		resultJSON             sql.NullString
		startedAt, completedAt string
	)
	err := row.Scan(
		&run.ID,
		&run.WorkspaceID,
		&run.Source,
		&run.Status,
		&run.TransactionCount,
		&run.ReceiptCount,
		&run.Stats.TotalTransactions,
		&run.Stats.MatchedReceipts,
		&run.Stats.TransactionsWithoutReceipts,
		&run.Stats.LimitedProcessing,
		&resultJSON,
		&run.ErrorMessage,
		&run.DurationMs,
		&startedAt,
		&completedAt,
	)
	if err != nil {
		return nil, err
	}

	if run.StartedAt, err = parseTime(startedAt); err != nil {
		return nil, fmt.Errorf("run %s: bad started_at: %w", run.ID, err)
	}
	if run.CompletedAt, err = parseTime(completedAt); err != nil {
		return nil, fmt.Errorf("run %s: bad completed_at: %w", run.ID, err)
	}

	if withResult && resultJSON.Valid {
		var result matcher.Result
		if err := json.Unmarshal([]byte(resultJSON.String), &result); err != nil {
			return nil, fmt.Errorf("run %s: decode result: %w", run.ID, err)
		}
		run.Result = &result
	}
	return &run, nil
}
