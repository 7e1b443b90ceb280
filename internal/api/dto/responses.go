package dto

import (
	"time"

	"github.com/eshaffer321/receipt-reconciler/internal/domain/matcher"
	"github.com/eshaffer321/receipt-reconciler/internal/infrastructure/storage"
)

// HealthResponse is returned by the health check endpoint.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// NewHealthResponse creates a healthy response with the current timestamp.
func NewHealthResponse() HealthResponse {
	return HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// ReconcileResponse is returned when reconciling a stored workspace.
type ReconcileResponse struct {
	RunID string `json:"run_id"`
	*matcher.Result
}

// UploadResponse is returned after storing workspace inputs.
type UploadResponse struct {
	WorkspaceID string `json:"workspace_id"`
	Stored      int    `json:"stored"`
}

// RunResponse represents a reconciliation run in API responses.
type RunResponse struct {
	ID               string             `json:"id"`
	WorkspaceID      string             `json:"workspace_id,omitempty"`
	Source           string             `json:"source"`
	Status           string             `json:"status"`
	TransactionCount int                `json:"transaction_count"`
	ReceiptCount     int                `json:"receipt_count"`
	Stats            matcher.BatchStats `json:"stats"`
	ErrorMessage     string             `json:"error_message,omitempty"`
	DurationMs       int64              `json:"duration_ms"`
	StartedAt        string             `json:"started_at"`
	CompletedAt      string             `json:"completed_at"`
	Result           *matcher.Result    `json:"result,omitempty"`
}

// RunListResponse is returned when listing runs.
type RunListResponse struct {
	Runs  []RunResponse `json:"runs"`
	Count int           `json:"count"`
}

// NewRunResponse converts a stored run to its API form.
func NewRunResponse(run storage.ReconciliationRun) RunResponse {
	return RunResponse{
		ID:               run.ID,
		WorkspaceID:      run.WorkspaceID,
		Source:           run.Source,
		Status:           run.Status,
		TransactionCount: run.TransactionCount,
		ReceiptCount:     run.ReceiptCount,
		Stats:            run.Stats,
		ErrorMessage:     run.ErrorMessage,
		DurationMs:       run.DurationMs,
		StartedAt:        run.StartedAt.UTC().Format(time.RFC3339),
		CompletedAt:      run.CompletedAt.UTC().Format(time.RFC3339),
		Result:           run.Result,
	}
}
