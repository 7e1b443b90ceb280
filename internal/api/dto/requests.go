package dto

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/eshaffer321/receipt-reconciler/internal/domain/matcher"
)

// AnalyzeRequest is the body of the analyze and stream endpoints.
// Fields are kept raw so that a missing or non-list field can be treated as
// an empty list instead of failing the whole request.
type AnalyzeRequest struct {
	Transactions json.RawMessage `json:"transactions"`
	Receipts     json.RawMessage `json:"receipts"`
}

// Decode returns the transactions and receipts. A field that is absent or
// not a JSON array decodes to an empty list; an array whose elements cannot
// be decoded is an error.
func (r AnalyzeRequest) Decode() ([]matcher.Transaction, []matcher.Receipt, error) {
	var transactions []matcher.Transaction
	if err := decodeList(r.Transactions, &transactions); err != nil {
		return nil, nil, fmt.Errorf("transactions: %w", err)
	}
	var receipts []matcher.Receipt
	if err := decodeList(r.Receipts, &receipts); err != nil {
		return nil, nil, fmt.Errorf("receipts: %w", err)
	}
	return transactions, receipts, nil
}

// TransactionsUpload is the body of PUT /api/workspaces/:workspaceID/transactions.
type TransactionsUpload struct {
	Transactions json.RawMessage `json:"transactions"`
}

// Decode returns the uploaded transactions; see AnalyzeRequest.Decode.
func (u TransactionsUpload) Decode() ([]matcher.Transaction, error) {
	var transactions []matcher.Transaction
	if err := decodeList(u.Transactions, &transactions); err != nil {
		return nil, fmt.Errorf("transactions: %w", err)
	}
	return transactions, nil
}

// ReceiptsUpload is the body of PUT /api/workspaces/:workspaceID/receipts.
type ReceiptsUpload struct {
	Receipts json.RawMessage `json:"receipts"`
}

// Decode returns the uploaded receipts; see AnalyzeRequest.Decode.
func (u ReceiptsUpload) Decode() ([]matcher.Receipt, error) {
	var receipts []matcher.Receipt
	if err := decodeList(u.Receipts, &receipts); err != nil {
		return nil, fmt.Errorf("receipts: %w", err)
	}
	return receipts, nil
}

// RunListParams represents query parameters for listing runs.
type RunListParams struct {
	WorkspaceID string `json:"workspace_id"`
	Status      string `json:"status"`
	Limit       int    `json:"limit"`
}

// DefaultRunListParams returns default values for run list params.
func DefaultRunListParams() RunListParams {
	return RunListParams{
		Limit: 20,
	}
}

func decodeList[T any](raw json.RawMessage, out *[]T) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		*out = []T{}
		return nil
	}
	return json.Unmarshal(trimmed, out)
}
