// Package matcher proposes which bank/card transaction most plausibly
// corresponds to each scanned receipt.
//
// Each (receipt, transaction) pair is scored by three weighted matchers:
//   - Date: same day, within 2 days, within 5 days
//   - Amount: exact to the cent, then < 1%, < 5%, < 10% difference
//   - Merchant: known digital service alias, then edit-distance similarity
//
// Candidates above the confidence floor are ranked per receipt and the top
// few are returned together with human-readable reasons.
//
// Example usage:
//
//	m := matcher.NewMatcher(matcher.DefaultConfig())
//	result := m.Analyze(transactions, receipts)
//	for _, pm := range result.PotentialMatches {
//		best := pm.Matches[0]
//	}
package matcher

import (
	"math"
	"sort"
)

// Progress is reported once per processed receipt.
type Progress struct {
	Index      int // 0-based position among eligible receipts
	Total      int // number of eligible receipts being processed
	Receipt    *Receipt
	Candidates []MatchCandidate
}

// ProgressFunc receives per-receipt progress. Returning an error aborts the
// analysis.
type ProgressFunc func(p Progress) error

// Matcher scores receipts against transactions
type Matcher struct {
	config   Config
	matchers []weightedMatcher
}

type weightedMatcher struct {
	match  FieldMatcher
	weight float64
}

// NewMatcher creates a new matcher with the given config
func NewMatcher(config Config) *Matcher {
	return &Matcher{
		config: config,
		matchers: []weightedMatcher{
			{match: MatchDate, weight: config.Weights.Date},
			{match: MatchAmount, weight: config.Weights.Amount},
			{match: merchantMatcher(config.KnownServices, config.SentinelSuppliers), weight: config.Weights.Merchant},
		},
	}
}

// Config returns the matcher configuration.
func (m *Matcher) Config() Config {
	return m.config
}

// Score returns the confidence in [0,1] that the receipt and transaction
// describe the same payment, and the reasons in date, amount, merchant order.
func (m *Matcher) Score(r *Receipt, t *Transaction) (float64, []string) {
	if r == nil || t == nil {
		return 0, []string{"Invalid receipt or transaction"}
	}
	if amount, ok := r.TotalAmount.Decimal(); ok && amount.IsZero() {
		return 0, []string{"Receipt has zero amount"}
	}

	confidence := 0.0
	reasons := make([]string, 0, len(m.matchers))
	for _, wm := range m.matchers {
		score, reason := wm.match(r, t, wm.weight)
		confidence += score
		if reason != "" {
			reasons = append(reasons, reason)
		}
	}

	return math.Max(0, math.Min(1, confidence)), reasons
}

// Rank scores the receipt against every transaction and returns the
// candidates above the confidence floor, best first. Ties keep input order.
func (m *Matcher) Rank(r *Receipt, transactions []Transaction) []MatchCandidate {
	candidates := make([]MatchCandidate, 0)
	for i := range transactions {
		t := &transactions[i]
		confidence, reasons := m.Score(r, t)
		confidence *= 100
		if confidence <= m.config.MinConfidence {
			continue
		}
		candidates = append(candidates, MatchCandidate{
			TransactionID:   t.ID,
			Confidence:      confidence,
			Reasons:         reasons,
			TransactionData: snapshotTransaction(t),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Confidence > candidates[j].Confidence
	})

	if m.config.MaxCandidates > 0 && len(candidates) > m.config.MaxCandidates {
		candidates = candidates[:m.config.MaxCandidates]
	}
	return candidates
}

// Analyze ranks candidate transactions for every eligible receipt.
func (m *Matcher) Analyze(transactions []Transaction, receipts []Receipt) *Result {
	result, _ := m.AnalyzeWithProgress(transactions, receipts, nil)
	return result
}

// AnalyzeWithProgress is Analyze with a per-receipt progress callback.
// The only error it returns is one produced by progress.
func (m *Matcher) AnalyzeWithProgress(transactions []Transaction, receipts []Receipt, progress ProgressFunc) (*Result, error) {
	result := &Result{PotentialMatches: make([]ReceiptMatchResult, 0)}

	if len(transactions) == 0 {
		return result, nil
	}
	if len(receipts) == 0 {
		result.Stats = BatchStats{
			TotalTransactions:           len(transactions),
			TransactionsWithoutReceipts: len(transactions),
		}
		return result, nil
	}

	payments := m.FilterTransactions(transactions)
	eligible := m.EligibleReceipts(receipts)

	compared := payments
	if limit := m.config.MaxTransactionsPerReceipt; limit > 0 && len(compared) > limit {
		compared = compared[:limit]
	}

	for i := range eligible {
		r := &eligible[i]
		candidates := m.Rank(r, compared)

		if progress != nil {
			if err := progress(Progress{Index: i, Total: len(eligible), Receipt: r, Candidates: candidates}); err != nil {
				return nil, err
			}
		}

		if len(candidates) == 0 {
			continue
		}
		result.PotentialMatches = append(result.PotentialMatches, NewReceiptMatchResult(r, candidates))
	}

	result.Stats = BatchStats{
		TotalTransactions:           len(payments),
		MatchedReceipts:             len(result.PotentialMatches),
		TransactionsWithoutReceipts: len(payments) - len(result.PotentialMatches),
		LimitedProcessing:           m.config.MaxReceipts > 0 && len(receipts) > m.config.MaxReceipts,
	}
	return result, nil
}

// FilterTransactions keeps untyped transactions and allow-listed payment
// types. If nothing survives, the unfiltered list is returned.
func (m *Matcher) FilterTransactions(transactions []Transaction) []Transaction {
	allowed := make(map[string]bool, len(m.config.PaymentTypes))
	for _, t := range m.config.PaymentTypes {
		allowed[t] = true
	}

	filtered := make([]Transaction, 0, len(transactions))
	for _, t := range transactions {
		if t.Type == "" || allowed[t.Type] {
			filtered = append(filtered, t)
		}
	}

	if len(filtered) == 0 {
		return transactions
	}
	return filtered
}

// EligibleReceipts drops receipts without a positive amount or with a
// missing or sentinel supplier name, then applies the receipt cap.
func (m *Matcher) EligibleReceipts(receipts []Receipt) []Receipt {
	sentinels := make(map[string]bool, len(m.config.SentinelSuppliers))
	for _, s := range m.config.SentinelSuppliers {
		sentinels[s] = true
	}

	eligible := make([]Receipt, 0, len(receipts))
	for _, r := range receipts {
		amount, ok := r.TotalAmount.Decimal()
		if !ok || !amount.IsPositive() {
			continue
		}
		if r.SupplierName == "" || sentinels[r.SupplierName] {
			continue
		}
		eligible = append(eligible, r)
	}

	if limit := m.config.MaxReceipts; limit > 0 && len(eligible) > limit {
		eligible = eligible[:limit]
	}
	return eligible
}

// NewReceiptMatchResult pairs a receipt snapshot with its ranked candidates.
func NewReceiptMatchResult(r *Receipt, candidates []MatchCandidate) ReceiptMatchResult {
	return ReceiptMatchResult{
		ReceiptID: r.ID,
		ReceiptData: ReceiptSnapshot{
			Date:     r.Date.Clone(),
			Amount:   r.TotalAmount.Clone(),
			Merchant: r.SupplierName,
			FilePath: r.SourcePath(),
		},
		Matches: candidates,
	}
}

func snapshotTransaction(t *Transaction) TransactionSnapshot {
	snap := TransactionSnapshot{
		Amount:    t.Amount.Float(),
		Reference: t.Reference,
		Type:      t.Type,
	}
	if day, ok := NormalizeDate(t.Date); ok {
		formatted := FormatDay(day)
		snap.Date = &formatted
	}
	return snap
}
