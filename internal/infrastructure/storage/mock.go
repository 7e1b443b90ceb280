package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/eshaffer321/receipt-reconciler/internal/domain/matcher"
)

// MockRepository is an in-memory implementation of Repository for testing.
// It stores all data in maps and slices, making tests fast and isolated.
type MockRepository struct {
	mu           sync.Mutex
	transactions map[string][]matcher.Transaction // Keyed by workspace
	receipts     map[string][]matcher.Receipt     // Keyed by workspace
	runs         map[string]*ReconciliationRun

	// Hooks for test assertions
	SaveRunCalled bool
	LastSavedRun  *ReconciliationRun

	// Error injection for testing error paths
	ReplaceTransactionsErr error
	ListTransactionsErr    error
	ReplaceReceiptsErr     error
	ListReceiptsErr        error
	SaveRunErr             error
	GetRunErr              error
	ListRunsErr            error
}

// NewMockRepository creates a new mock repository for testing
func NewMockRepository() *MockRepository {
	return &MockRepository{
		transactions: make(map[string][]matcher.Transaction),
		receipts:     make(map[string][]matcher.Receipt),
		runs:         make(map[string]*ReconciliationRun),
	}
}

// Compile-time check that MockRepository implements Repository
var _ Repository = (*MockRepository)(nil)

// Close does nothing for mock
func (m *MockRepository) Close() error {
	return nil
}

// ReplaceTransactions stores a copy of the transactions
func (m *MockRepository) ReplaceTransactions(_ context.Context, workspaceID string, transactions []matcher.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReplaceTransactionsErr != nil {
		return m.ReplaceTransactionsErr
	}
	m.transactions[workspaceID] = append([]matcher.Transaction(nil), transactions...)
	return nil
}

// ListTransactions returns a copy of the stored transactions
func (m *MockRepository) ListTransactions(_ context.Context, workspaceID string) ([]matcher.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListTransactionsErr != nil {
		return nil, m.ListTransactionsErr
	}
	return append(make([]matcher.Transaction, 0), m.transactions[workspaceID]...), nil
}

// ReplaceReceipts stores a copy of the receipts
func (m *MockRepository) ReplaceReceipts(_ context.Context, workspaceID string, receipts []matcher.Receipt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReplaceReceiptsErr != nil {
		return m.ReplaceReceiptsErr
	}
	m.receipts[workspaceID] = append([]matcher.Receipt(nil), receipts...)
	return nil
}

// ListReceipts returns a copy of the stored receipts
func (m *MockRepository) ListReceipts(_ context.Context, workspaceID string) ([]matcher.Receipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListReceiptsErr != nil {
		return nil, m.ListReceiptsErr
	}
	return append(make([]matcher.Receipt, 0), m.receipts[workspaceID]...), nil
}

// SaveRun saves a run to the in-memory map
func (m *MockRepository) SaveRun(_ context.Context, run *ReconciliationRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveRunCalled = true
	m.LastSavedRun = run
	if m.SaveRunErr != nil {
		return m.SaveRunErr
	}
	// Copy to avoid test mutations
	copied := *run
	m.runs[run.ID] = &copied
	return nil
}

// GetRun retrieves a run by ID
func (m *MockRepository) GetRun(_ context.Context, id string) (*ReconciliationRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetRunErr != nil {
		return nil, m.GetRunErr
	}
	run, ok := m.runs[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *run
	return &copied, nil
}

// ListRuns returns runs newest first, without results
func (m *MockRepository) ListRuns(_ context.Context, filters RunFilters) ([]ReconciliationRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListRunsErr != nil {
		return nil, m.ListRunsErr
	}

	runs := make([]ReconciliationRun, 0, len(m.runs))
	for _, run := range m.runs {
		if filters.WorkspaceID != "" && run.WorkspaceID != filters.WorkspaceID {
			continue
		}
		if filters.Status != "" && run.Status != filters.Status {
			continue
		}
		runs = append(runs, run.Summary())
	}

	sort.Slice(runs, func(i, j int) bool {
		if runs[i].StartedAt.Equal(runs[j].StartedAt) {
			return runs[i].ID > runs[j].ID
		}
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})

	limit := filters.Limit
	if limit <= 0 {
		limit = DefaultRunLimit
	}
	if len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

// AddRun seeds a run directly (for testing)
func (m *MockRepository) AddRun(run ReconciliationRun) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs[run.ID] = &run
}

// RunCount returns how many runs are stored (for testing)
func (m *MockRepository) RunCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.runs)
}
