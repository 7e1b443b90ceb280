package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/eshaffer321/receipt-reconciler/internal/domain/matcher"
)

// Records are stored as their JSON payload so dates and amounts keep the
// exact wire form they were uploaded with.

// ReplaceTransactions replaces every stored transaction of the workspace
func (s *Storage) ReplaceTransactions(ctx context.Context, workspaceID string, transactions []matcher.Transaction) error {
	rows := make([]storedRow, len(transactions))
	for i := range transactions {
		payload, err := json.Marshal(&transactions[i])
		if err != nil {
			return fmt.Errorf("encode transaction %q: %w", transactions[i].ID, err)
		}
		rows[i] = storedRow{id: transactions[i].ID, payload: payload}
	}
	return s.replaceRows(ctx, "workspace_transactions", "transaction_id", workspaceID, rows)
}

// ListTransactions returns the workspace's transactions in upload order
func (s *Storage) ListTransactions(ctx context.Context, workspaceID string) ([]matcher.Transaction, error) {
	payloads, err := s.listPayloads(ctx, "workspace_transactions", workspaceID)
	if err != nil {
		return nil, err
	}

	transactions := make([]matcher.Transaction, len(payloads))
	for i, p := range payloads {
		if err := json.Unmarshal(p, &transactions[i]); err != nil {
			return nil, fmt.Errorf("decode transaction %d: %w", i, err)
		}
	}
	return transactions, nil
}

// ReplaceReceipts replaces every stored receipt of the workspace
func (s *Storage) ReplaceReceipts(ctx context.Context, workspaceID string, receipts []matcher.Receipt) error {
	rows := make([]storedRow, len(receipts))
	for i := range receipts {
		payload, err := json.Marshal(&receipts[i])
		if err != nil {
			return fmt.Errorf("encode receipt %q: %w", receipts[i].ID, err)
		}
		rows[i] = storedRow{id: receipts[i].ID, payload: payload}
	}
	return s.replaceRows(ctx, "workspace_receipts", "receipt_id", workspaceID, rows)
}

// ListReceipts returns the workspace's receipts in upload order
func (s *Storage) ListReceipts(ctx context.Context, workspaceID string) ([]matcher.Receipt, error) {
	payloads, err := s.listPayloads(ctx, "workspace_receipts", workspaceID)
	if err != nil {
		return nil, err
	}

	receipts := make([]matcher.Receipt, len(payloads))
	for i, p := range payloads {
		if err := json.Unmarshal(p, &receipts[i]); err != nil {
			return nil, fmt.Errorf("decode receipt %d: %w", i, err)
		}
	}
	return receipts, nil
}

type storedRow struct {
	id      string
	payload []byte
}

// replaceRows swaps the workspace's rows in a single transaction.
// table and idColumn are package constants, never user input.
func (s *Storage) replaceRows(ctx context.Context, table, idColumn, workspaceID string, rows []storedRow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE workspace_id = ?", workspaceID); err != nil {
		return fmt.Errorf("failed to clear %s: %w", table, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO "+table+" (workspace_id, position, "+idColumn+", payload, stored_at) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	storedAt := formatTime(time.Now())
	for i, row := range rows {
		if _, err := stmt.ExecContext(ctx, workspaceID, i, row.id, string(row.payload), storedAt); err != nil {
			return fmt.Errorf("failed to insert into %s: %w", table, err)
		}
	}

	return tx.Commit()
}

func (s *Storage) listPayloads(ctx context.Context, table, workspaceID string) ([][]byte, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT payload FROM "+table+" WHERE workspace_id = ? ORDER BY position", workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer rows.Close()

	var payloads [][]byte
	for rows.Next() {
		var payload sql.RawBytes
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		payloads = append(payloads, append([]byte(nil), payload...))
	}
	return payloads, rows.Err()
}
