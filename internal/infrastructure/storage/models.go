package storage

import (
	"time"

	"github.com/eshaffer321/receipt-reconciler/internal/domain/matcher"
)

// Run statuses
const (
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// Run sources
const (
	SourceAPI       = "api"
	SourceStream    = "stream"
	SourceWorkspace = "workspace"
	SourceCLI       = "cli"
)

// ReconciliationRun is one recorded engine invocation.
type ReconciliationRun struct {
	ID               string             `json:"id"`
	WorkspaceID      string             `json:"workspace_id,omitempty"`
	Source           string             `json:"source"`
	Status           string             `json:"status"`
	TransactionCount int                `json:"transaction_count"` // as submitted, before filtering
	ReceiptCount     int                `json:"receipt_count"`
	Stats            matcher.BatchStats `json:"stats"`
	Result           *matcher.Result    `json:"result,omitempty"`
	ErrorMessage     string             `json:"error_message,omitempty"`
	DurationMs       int64              `json:"duration_ms"`
	StartedAt        time.Time          `json:"started_at"`
	CompletedAt      time.Time          `json:"completed_at"`
}

// Summary returns a copy without the stored result, for listings.
func (r ReconciliationRun) Summary() ReconciliationRun {
	r.Result = nil
	return r
}
