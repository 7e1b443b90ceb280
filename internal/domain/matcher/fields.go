package matcher

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// FieldMatcher scores one aspect of a (receipt, transaction) pair. It returns
// the partial score, already scaled by weight, and a reason; the reason is
// empty when the field contributes nothing.
type FieldMatcher func(r *Receipt, t *Transaction, weight float64) (float64, string)

var (
	centTolerance = decimal.RequireFromString("0.01")
	hundred       = decimal.NewFromInt(100)
)

// MatchDate scores how close the receipt and transaction dates are.
func MatchDate(r *Receipt, t *Transaction, weight float64) (float64, string) {
	receiptDay, ok := NormalizeDate(r.Date)
	if !ok {
		return 0, ""
	}
	txDay, ok := transactionDay(t)
	if !ok {
		return 0, ""
	}

	d := dayDiff(receiptDay, txDay)
	switch {
	case d == 0:
		return weight, "Same date"
	case d <= 2:
		return weight * 0.5, fmt.Sprintf("Close date (within %d days)", d)
	case d <= 5:
		return weight * 0.2, fmt.Sprintf("Near date (within %d days)", d)
	default:
		return 0, ""
	}
}

// MatchAmount scores how close the absolute amounts are.
func MatchAmount(r *Receipt, t *Transaction, weight float64) (float64, string) {
	txAmount, ok := t.Amount.Decimal()
	if !ok {
		return 0, ""
	}
	receiptAmount, ok := r.TotalAmount.Decimal()
	if !ok {
		return 0, ""
	}

	txAmount = txAmount.Abs()
	receiptAmount = receiptAmount.Abs()
	diff := receiptAmount.Sub(txAmount).Abs()

	if diff.LessThan(centTolerance) {
		return weight, "Exact amount match"
	}

	pct := hundred
	if receiptAmount.IsPositive() {
		pct = diff.Mul(hundred).Div(receiptAmount)
	}

	switch {
	case pct.LessThan(decimal.NewFromInt(1)):
		return weight * 0.8, "Very close amount (< 1% difference)"
	case pct.LessThan(decimal.NewFromInt(5)):
		return weight * 0.6, "Similar amount (< 5% difference)"
	case pct.LessThan(decimal.NewFromInt(10)):
		return weight * 0.3, "Somewhat similar amount (< 10% difference)"
	default:
		return 0, ""
	}
}

// merchantMatcher builds the merchant FieldMatcher over the configured
// known services and sentinel supplier names.
func merchantMatcher(services []KnownService, sentinels []string) FieldMatcher {
	sentinelSet := make(map[string]bool, len(sentinels))
	for _, s := range sentinels {
		sentinelSet[lower(s)] = true
	}

	return func(r *Receipt, t *Transaction, weight float64) (float64, string) {
		supplier := lower(r.SupplierName)
		if supplier == "" || sentinelSet[supplier] {
			return 0, ""
		}
		text := lower(t.Text())

		if service, ok := MatchKnownService(services, supplier, text); ok {
			return weight, fmt.Sprintf("Digital service match (%s)", service)
		}

		similarity := Similarity(supplier, text)
		switch {
		case similarity > 0.8:
			return weight, "Strong merchant name match"
		case similarity > 0.5:
			return weight * 0.5, "Partial merchant name match"
		case similarity > 0.3:
			return weight * 0.2, "Weak merchant name match"
		default:
			return 0, ""
		}
	}
}

// transactionDay prefers the transaction's date and falls back to its
// created_at timestamp.
func transactionDay(t *Transaction) (time.Time, bool) {
	if day, ok := NormalizeDate(t.Date); ok {
		return day, true
	}
	return NormalizeDate(t)
}
