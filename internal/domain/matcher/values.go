package matcher

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var jsonNull = []byte("null")

// DateValue keeps a date exactly as it arrived on the wire. It may be a
// string, an object carrying a created_at timestamp, or anything else.
type DateValue struct {
	raw json.RawMessage
}

// NewDate wraps a date string.
func NewDate(s string) DateValue {
	b, _ := json.Marshal(s)
	return DateValue{raw: b}
}

// IsZero reports whether no date was supplied.
func (d DateValue) IsZero() bool {
	return len(d.raw) == 0 || bytes.Equal(d.raw, jsonNull)
}

// String returns the date text when the value is a JSON string.
func (d DateValue) String() string {
	var s string
	if err := json.Unmarshal(d.raw, &s); err != nil {
		return ""
	}
	return s
}

// Raw returns the JSON encoding as received.
func (d DateValue) Raw() json.RawMessage {
	return d.raw
}

// Clone returns a copy that shares no memory with d.
func (d DateValue) Clone() DateValue {
	return DateValue{raw: bytes.Clone(d.raw)}
}

// MarshalJSON implements json.Marshaler.
func (d DateValue) MarshalJSON() ([]byte, error) {
	if len(d.raw) == 0 {
		return jsonNull, nil
	}
	return d.raw, nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *DateValue) UnmarshalJSON(b []byte) error {
	d.raw = append(d.raw[:0], b...)
	return nil
}

// Amount keeps a monetary amount as it arrived: a JSON number or string.
type Amount struct {
	raw json.RawMessage
}

// NewAmount wraps a decimal string such as "-49.00".
func NewAmount(s string) Amount {
	b, _ := json.Marshal(s)
	return Amount{raw: b}
}

// NewAmountFromFloat wraps a numeric amount.
func NewAmountFromFloat(f float64) Amount {
	b, _ := json.Marshal(f)
	return Amount{raw: b}
}

// Raw returns the JSON encoding as received.
func (a Amount) Raw() json.RawMessage {
	return a.raw
}

// Clone returns a copy that shares no memory with a.
func (a Amount) Clone() Amount {
	return Amount{raw: bytes.Clone(a.raw)}
}

// MarshalJSON implements json.Marshaler.
func (a Amount) MarshalJSON() ([]byte, error) {
	if len(a.raw) == 0 {
		return jsonNull, nil
	}
	return a.raw, nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (a *Amount) UnmarshalJSON(b []byte) error {
	a.raw = append(a.raw[:0], b...)
	return nil
}

// Decimal parses the amount. ok is false for missing or non-numeric input.
func (a Amount) Decimal() (decimal.Decimal, bool) {
	if len(a.raw) == 0 || bytes.Equal(a.raw, jsonNull) {
		return decimal.Zero, false
	}

	var s string
	if err := json.Unmarshal(a.raw, &s); err == nil {
		return ParseAmount(s)
	}

	var n json.Number
	if err := json.Unmarshal(a.raw, &n); err != nil {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(n.String())
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// Float returns the parsed amount as a float64, or 0 when unparsable.
func (a Amount) Float() float64 {
	d, ok := a.Decimal()
	if !ok {
		return 0
	}
	f, _ := d.Float64()
	return f
}

var currencyPattern = regexp.MustCompile(`(?i)[$£€]|\bsek\b|\bkr\b|\busd\b|\beur\b|\bgbp\b`)

// ParseAmount parses a free-form amount string such as "-49.00",
// "1 234,50 kr" or "$1,234.50".
func ParseAmount(s string) (decimal.Decimal, bool) {
	s = currencyPattern.ReplaceAllString(s, "")
	s = strings.Join(strings.Fields(s), "")
	if s == "" {
		return decimal.Zero, false
	}

	hasComma := strings.Contains(s, ",")
	hasDot := strings.Contains(s, ".")
	switch {
	case hasComma && !hasDot:
		s = strings.ReplaceAll(s, ",", ".")
	case hasComma && hasDot:
		s = strings.ReplaceAll(s, ",", "")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
