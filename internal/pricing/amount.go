package pricing

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a JSON-lenient non-negative decimal. Any value that does not
// decode to a finite non-negative number (strings with garbage, null,
// booleans, objects) becomes zero instead of an error. The leniency policy
// lives here and nowhere else; quote payloads arrive from clients that are
// not trusted to send clean numbers.
type Amount struct {
	d decimal.Decimal
}

// NewAmount wraps a decimal, clamping negatives to zero.
func NewAmount(d decimal.Decimal) Amount {
	return Amount{d: clampAmount(d)}
}

// Decimal returns the coerced value.
func (a Amount) Decimal() decimal.Decimal { return a.d }

// UnmarshalJSON never returns an error; invalid input coerces to zero.
func (a *Amount) UnmarshalJSON(data []byte) error {
	a.d = parseNonNegativeNumber(string(data))
	return nil
}

// MarshalJSON renders the amount as a JSON number literal.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.d.String()), nil
}

// Count is a JSON-lenient non-negative integer quantity. Fractional values
// truncate toward zero; anything unparsable becomes zero.
type Count int64

// UnmarshalJSON never returns an error; invalid input coerces to zero.
func (c *Count) UnmarshalJSON(data []byte) error {
	*c = Count(parseNonNegativeNumber(string(data)).IntPart())
	return nil
}

// parseNonNegativeNumber coerces a raw JSON token into a non-negative
// decimal. Quoted numeric strings are accepted ("12.5" -> 12.5); null,
// booleans, bare garbage, and negatives all yield zero.
func parseNonNegativeNumber(raw string) decimal.Decimal {
	s := strings.TrimSpace(raw)
	if s == "" || s == "null" || s == "true" || s == "false" {
		return decimal.Zero
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		unquoted, err := strconv.Unquote(s)
		if err != nil {
			return decimal.Zero
		}
		s = strings.TrimSpace(unquoted)
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}
	return d
}
