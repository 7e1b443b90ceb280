package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/eshaffer321/receipt-reconciler/internal/application/service"
)

// PrintSummary prints the batch statistics of an analysis.
func PrintSummary(w io.Writer, analysis *service.Analysis, recorded bool) {
	stats := analysis.Result.Stats

	fmt.Fprintln(w, strings.Repeat("-", 60))
	fmt.Fprintf(w, "Summary: Transactions=%d Matched=%d Unmatched=%d\n",
		stats.TotalTransactions,
		stats.MatchedReceipts,
		stats.TransactionsWithoutReceipts)

	if stats.LimitedProcessing {
		fmt.Fprintln(w, "Receipt cap reached: only the first receipts were analyzed.")
	}

	// Top candidate per receipt
	for _, m := range analysis.Result.PotentialMatches {
		best := m.Matches[0]
		fmt.Fprintf(w, "  %s -> %s (%.1f%%, %d candidates)\n",
			m.ReceiptID, best.TransactionID, best.Confidence, len(m.Matches))
	}

	if recorded {
		fmt.Fprintf(w, "\nRun recorded: %s\n", analysis.RunID)
	}
}
