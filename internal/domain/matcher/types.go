package matcher

// Weights splits the total confidence between the three field matchers.
// The three values should sum to 1.
type Weights struct {
	Date     float64 `yaml:"date" json:"date"`
	Amount   float64 `yaml:"amount" json:"amount"`
	Merchant float64 `yaml:"merchant" json:"merchant"`
}

// KnownService is a recurring vendor whose billing descriptors are
// recognised by literal alias substrings.
type KnownService struct {
	Name    string   `yaml:"name" json:"name"`
	Aliases []string `yaml:"aliases" json:"aliases"`
}

// Config holds matcher configuration
type Config struct {
	Weights Weights

	// MinConfidence is the floor on the 0-100 scale; candidates must score above it.
	MinConfidence float64

	// Caps. Zero means unlimited.
	MaxCandidates             int // per receipt (default 5)
	MaxReceipts               int // per batch (default 20)
	MaxTransactionsPerReceipt int // compared against each receipt (default 100)

	// PaymentTypes is the allow-list of transaction types. Transactions
	// without a type are always kept.
	PaymentTypes []string

	// SentinelSuppliers mark receipts whose merchant could not be extracted.
	SentinelSuppliers []string

	// KnownServices is consulted in declaration order; first hit wins.
	KnownServices []KnownService
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Weights: Weights{
			Date:     0.3,
			Amount:   0.4,
			Merchant: 0.3,
		},
		MinConfidence:             10,
		MaxCandidates:             5,
		MaxReceipts:               20,
		MaxTransactionsPerReceipt: 100,
		PaymentTypes:              []string{"CARD_PAYMENT", "CARD_CREDIT"},
		SentinelSuppliers:         []string{"Unknown", "Error"},
		KnownServices:             DefaultKnownServices(),
	}
}

// Transaction is an externally recorded payment event.
type Transaction struct {
	ID          string    `json:"id"`
	Date        DateValue `json:"date"`
	Amount      Amount    `json:"amount"`
	Reference   string    `json:"reference,omitempty"`
	Description string    `json:"description,omitempty"`
	Type        string    `json:"type,omitempty"`
	CreatedAt   DateValue `json:"created_at"`
}

// Text returns the reference, falling back to the description.
func (t *Transaction) Text() string {
	if t.Reference != "" {
		return t.Reference
	}
	return t.Description
}

// Timestamp returns the created_at text, if any.
func (t *Transaction) Timestamp() string {
	return t.CreatedAt.String()
}

// Receipt is a parsed proof-of-purchase document.
type Receipt struct {
	ID           string    `json:"id"`
	Date         DateValue `json:"date"`
	TotalAmount  Amount    `json:"total_amount"`
	SupplierName string    `json:"supplier_name,omitempty"`
	Filename     string    `json:"filename,omitempty"`
	FilePath     string    `json:"file_path,omitempty"`
}

// SourcePath returns the filename, falling back to file_path.
func (r *Receipt) SourcePath() string {
	if r.Filename != "" {
		return r.Filename
	}
	return r.FilePath
}

// TransactionSnapshot is a normalized copy of a transaction's fields.
type TransactionSnapshot struct {
	Date      *string `json:"date"`
	Amount    float64 `json:"amount"`
	Reference string  `json:"reference"`
	Type      string  `json:"type"`
}

// MatchCandidate is one scored (receipt, transaction) pairing.
type MatchCandidate struct {
	TransactionID   string              `json:"transaction_id"`
	Confidence      float64             `json:"confidence"` // 0-100
	Reasons         []string            `json:"reasons"`
	TransactionData TransactionSnapshot `json:"transaction_data"`
}

// ReceiptSnapshot is the denormalized receipt shown alongside its candidates.
type ReceiptSnapshot struct {
	Date     DateValue `json:"date"`
	Amount   Amount    `json:"amount"`
	Merchant string    `json:"merchant,omitempty"`
	FilePath string    `json:"file_path"`
}

// ReceiptMatchResult is one receipt with its ranked candidates.
type ReceiptMatchResult struct {
	ReceiptID   string           `json:"receipt_id"`
	ReceiptData ReceiptSnapshot  `json:"receipt_data"`
	Matches     []MatchCandidate `json:"matches"`
}

// BatchStats are aggregate counters over one Analyze call.
type BatchStats struct {
	TotalTransactions           int  `json:"total_transactions"`
	MatchedReceipts             int  `json:"matched_receipts"`
	TransactionsWithoutReceipts int  `json:"transactions_without_receipts"`
	LimitedProcessing           bool `json:"limited_processing"`
}

// Result is the full response of one Analyze call.
type Result struct {
	PotentialMatches []ReceiptMatchResult `json:"potential_matches"`
	Stats            BatchStats           `json:"stats"`
}
