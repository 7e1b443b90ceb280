package storage

import (
	"context"
	"errors"

	"github.com/eshaffer321/receipt-reconciler/internal/domain/matcher"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Repository defines the complete storage interface.
// This interface allows swapping implementations (SQLite, MySQL, mock)
// and makes testing with mocks straightforward.
type Repository interface {
	TransactionRepository
	ReceiptRepository
	RunRepository
	Close() error
}

// TransactionRepository stores the transactions uploaded to a workspace
type TransactionRepository interface {
	// ReplaceTransactions replaces every stored transaction of the workspace
	ReplaceTransactions(ctx context.Context, workspaceID string, transactions []matcher.Transaction) error

	// ListTransactions returns the workspace's transactions in upload order
	ListTransactions(ctx context.Context, workspaceID string) ([]matcher.Transaction, error)
}

// ReceiptRepository stores the receipts uploaded to a workspace
type ReceiptRepository interface {
	// ReplaceReceipts replaces every stored receipt of the workspace
	ReplaceReceipts(ctx context.Context, workspaceID string, receipts []matcher.Receipt) error

	// ListReceipts returns the workspace's receipts in upload order
	ListReceipts(ctx context.Context, workspaceID string) ([]matcher.Receipt, error)
}

// RunRepository handles reconciliation run history
type RunRepository interface {
	// SaveRun records a finished run
	SaveRun(ctx context.Context, run *ReconciliationRun) error

	// GetRun retrieves a run by ID, or ErrNotFound
	GetRun(ctx context.Context, id string) (*ReconciliationRun, error)

	// ListRuns returns recent runs, newest first
	ListRuns(ctx context.Context, filters RunFilters) ([]ReconciliationRun, error)
}

// RunFilters defines filters for listing runs
type RunFilters struct {
	WorkspaceID string // empty = all workspaces
	Status      string // empty = all
	Limit       int    // 0 = default 50
}

// DefaultRunLimit is used when RunFilters.Limit is not set.
const DefaultRunLimit = 50
