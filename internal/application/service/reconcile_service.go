package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/eshaffer321/receipt-reconciler/internal/domain/matcher"
	"github.com/eshaffer321/receipt-reconciler/internal/infrastructure/logging"
	"github.com/eshaffer321/receipt-reconciler/internal/infrastructure/storage"
)

var (
	// ErrEngineFailure wraps an unexpected failure inside the matching engine.
	ErrEngineFailure = errors.New("matching engine failure")

	// ErrInvalidInput is returned for requests that cannot be analyzed.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoStorage is returned by operations that need a repository when none is configured.
	ErrNoStorage = errors.New("storage not configured")
)

// AnalyzeRequest holds the inputs of one reconciliation.
type AnalyzeRequest struct {
	WorkspaceID  string
	Source       string // storage.Source*; defaults to api
	Transactions []matcher.Transaction
	Receipts     []matcher.Receipt
}

// Analysis is the outcome of a successful reconciliation.
type Analysis struct {
	RunID  string
	Result *matcher.Result
}

// ReconcileService runs the matching engine, logs, and records run history.
type ReconcileService struct {
	matcher *matcher.Matcher
	storage storage.Repository // optional
	logger  *slog.Logger

	// overridable in tests
	now   func() time.Time
	newID func() string
}

// NewReconcileService creates a new reconcile service. store may be nil, in
// which case runs are not recorded and workspace operations fail with ErrNoStorage.
func NewReconcileService(m *matcher.Matcher, store storage.Repository, logger *slog.Logger) *ReconcileService {
	if logger == nil {
		logger = logging.Discard()
	}
	return &ReconcileService{
		matcher: m,
		storage: store,
		logger:  logger,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// Analyze runs the engine over the request. The caller gets either a complete
// result or a single error; panics inside the engine become ErrEngineFailure.
func (s *ReconcileService) Analyze(ctx context.Context, req AnalyzeRequest) (*Analysis, error) {
	return s.run(ctx, req, nil)
}

// AnalyzeWorkspace analyzes the transactions and receipts stored for a workspace.
func (s *ReconcileService) AnalyzeWorkspace(ctx context.Context, workspaceID string) (*Analysis, error) {
	if s.storage == nil {
		return nil, ErrNoStorage
	}
	if workspaceID == "" {
		return nil, fmt.Errorf("%w: workspace id is required", ErrInvalidInput)
	}

	transactions, err := s.storage.ListTransactions(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}
	receipts, err := s.storage.ListReceipts(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load receipts: %w", err)
	}

	return s.run(ctx, AnalyzeRequest{
		WorkspaceID:  workspaceID,
		Source:       storage.SourceWorkspace,
		Transactions: transactions,
		Receipts:     receipts,
	}, nil)
}

func (s *ReconcileService) run(ctx context.Context, req AnalyzeRequest, progress matcher.ProgressFunc) (*Analysis, error) {
	if req.Source == "" {
		req.Source = storage.SourceAPI
	}
	runID := s.newID()
	log := s.logger.With("run_id", runID, "source", req.Source)
	if req.WorkspaceID != "" {
		log = log.With("workspace", req.WorkspaceID)
	}

	log.Info("Starting reconciliation",
		"transactions", len(req.Transactions),
		"receipts", len(req.Receipts))

	started := s.now()
	result, err := s.analyze(ctx, req, s.observe(ctx, log, progress))
	completed := s.now()

	run := &storage.ReconciliationRun{
		ID:               runID,
		WorkspaceID:      req.WorkspaceID,
		Source:           req.Source,
		Status:           storage.RunStatusCompleted,
		TransactionCount: len(req.Transactions),
		ReceiptCount:     len(req.Receipts),
		DurationMs:       completed.Sub(started).Milliseconds(),
		StartedAt:        started,
		CompletedAt:      completed,
	}

	if err != nil {
		run.Status = storage.RunStatusFailed
		run.ErrorMessage = err.Error()
		log.Error("Reconciliation failed", "error", err, "duration_ms", run.DurationMs)
		s.record(ctx, log, run)
		return nil, err
	}

	run.Stats = result.Stats
	run.Result = result
	log.Info("Reconciliation complete",
		"total_transactions", result.Stats.TotalTransactions,
		"matched_receipts", result.Stats.MatchedReceipts,
		"transactions_without_receipts", result.Stats.TransactionsWithoutReceipts,
		"limited_processing", result.Stats.LimitedProcessing,
		"duration_ms", run.DurationMs)
	s.record(ctx, log, run)

	return &Analysis{RunID: runID, Result: result}, nil
}

// analyze calls the engine, converting a panic into ErrEngineFailure.
func (s *ReconcileService) analyze(ctx context.Context, req AnalyzeRequest, progress matcher.ProgressFunc) (result *matcher.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("%w: %v", ErrEngineFailure, r)
		}
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.matcher.AnalyzeWithProgress(req.Transactions, req.Receipts, progress)
}

// observe wraps progress with cancellation checks and per-receipt debug logging.
func (s *ReconcileService) observe(ctx context.Context, log *slog.Logger, progress matcher.ProgressFunc) matcher.ProgressFunc {
	return func(p matcher.Progress) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		if len(p.Candidates) > 0 {
			best := p.Candidates[0]
			log.Debug("Receipt matched",
				"receipt", p.Receipt.ID,
				"merchant", p.Receipt.SupplierName,
				"transaction", best.TransactionID,
				"confidence", fmt.Sprintf("%.1f", best.Confidence),
				"candidates", len(p.Candidates))
		} else {
			log.Debug("No candidate above floor", "receipt", p.Receipt.ID)
		}

		if progress != nil {
			return progress(p)
		}
		return nil
	}
}

// record saves the run; failures are logged and never returned.
func (s *ReconcileService) record(ctx context.Context, log *slog.Logger, run *storage.ReconciliationRun) {
	if s.storage == nil {
		return
	}
	if err := s.storage.SaveRun(context.WithoutCancel(ctx), run); err != nil {
		log.Warn("Failed to record reconciliation run", "error", err)
	}
}
