package service

import (
	"context"
	"fmt"

	"github.com/eshaffer321/receipt-reconciler/internal/domain/matcher"
	"github.com/eshaffer321/receipt-reconciler/internal/infrastructure/storage"
)

// Stream stages, in emission order. error is only sent by transports.
const (
	StageInit     = "init"
	StageProgress = "progress"
	StageMatch    = "match"
	StageSummary  = "summary"
	StageComplete = "complete"
	StageError    = "error"
)

// Event is one line of a progress stream.
type Event struct {
	Stage    string  `json:"stage"`
	Progress float64 `json:"progress"` // 0-100
	Message  string  `json:"message"`
	Data     any     `json:"data,omitempty"`
}

// ReceiptProgress is the data of a progress event.
type ReceiptProgress struct {
	ReceiptID  string `json:"receipt_id"`
	Processed  int    `json:"processed"`
	Total      int    `json:"total"`
	Candidates int    `json:"candidates"`
}

// CompleteData is the data of the final event.
type CompleteData struct {
	RunID string `json:"run_id"`
}

// EmitFunc delivers one event. Returning an error aborts the analysis.
type EmitFunc func(Event) error

// AnalyzeStream runs the same analysis as Analyze while emitting an init
// event, a progress event per processed receipt, a match event per receipt
// with candidates, then summary and complete events.
func (s *ReconcileService) AnalyzeStream(ctx context.Context, req AnalyzeRequest, emit EmitFunc) (*Analysis, error) {
	if emit == nil {
		return nil, fmt.Errorf("%w: emit function is required", ErrInvalidInput)
	}
	if req.Source == "" {
		req.Source = storage.SourceStream
	}

	err := emit(Event{
		Stage:   StageInit,
		Message: fmt.Sprintf("Processing %d receipts and %d transactions", len(req.Receipts), len(req.Transactions)),
	})
	if err != nil {
		return nil, err
	}

	analysis, err := s.run(ctx, req, func(p matcher.Progress) error {
		percent := float64(p.Index+1) / float64(p.Total) * 100

		if err := emit(Event{
			Stage:    StageProgress,
			Progress: percent,
			Message:  fmt.Sprintf("Processed receipt %d of %d", p.Index+1, p.Total),
			Data: ReceiptProgress{
				ReceiptID:  p.Receipt.ID,
				Processed:  p.Index + 1,
				Total:      p.Total,
				Candidates: len(p.Candidates),
			},
		}); err != nil {
			return err
		}

		if len(p.Candidates) == 0 {
			return nil
		}
		return emit(Event{
			Stage:    StageMatch,
			Progress: percent,
			Message:  "Found match",
			Data:     matcher.NewReceiptMatchResult(p.Receipt, p.Candidates),
		})
	})
	if err != nil {
		return nil, err
	}

	if err := emit(Event{
		Stage:    StageSummary,
		Progress: 100,
		Message:  "Matching complete",
		Data:     analysis.Result.Stats,
	}); err != nil {
		return nil, err
	}
	if err := emit(Event{
		Stage:    StageComplete,
		Progress: 100,
		Message:  "Processing complete",
		Data:     CompleteData{RunID: analysis.RunID},
	}); err != nil {
		return nil, err
	}

	return analysis, nil
}
