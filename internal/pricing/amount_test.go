package pricing

import (
	"encoding/json"
	"testing"
)

func TestAmountCoercion(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{`12.5`, "12.5"},
		{`"12.5"`, "12.5"},
		{`"  7 "`, "7"},
		{`0`, "0"},
		{`-3`, "0"},
		{`"-3"`, "0"},
		{`"abc"`, "0"},
		{`null`, "0"},
		{`true`, "0"},
		{`""`, "0"},
	}
	for _, tc := range cases {
		var a Amount
		if err := json.Unmarshal([]byte(tc.raw), &a); err != nil {
			t.Fatalf("unmarshal %s: %v", tc.raw, err)
		}
		if a.Decimal().String() != tc.want {
			t.Fatalf("coerce %s: want %s, got %s", tc.raw, tc.want, a.Decimal())
		}
	}
}

func TestCountCoercion(t *testing.T) {
	cases := []struct {
		raw  string
		want Count
	}{
		{`3`, 3},
		{`"4"`, 4},
		{`2.9`, 2},
		{`-1`, 0},
		{`null`, 0},
		{`"many"`, 0},
	}
	for _, tc := range cases {
		var c Count
		if err := json.Unmarshal([]byte(tc.raw), &c); err != nil {
			t.Fatalf("unmarshal %s: %v", tc.raw, err)
		}
		if c != tc.want {
			t.Fatalf("coerce %s: want %d, got %d", tc.raw, tc.want, c)
		}
	}
}

func TestLenientItemPayloadNeverErrors(t *testing.T) {
	// Shape mirrors what the quote endpoint decodes: clients may send
	// anything in numeric positions and still get a priced result.
	type line struct {
		UnitPrice Amount `json:"unitPrice"`
		Quantity  Count  `json:"quantity"`
	}
	payload := `[
		{"unitPrice":"abc","quantity":null},
		{"unitPrice":10,"quantity":3},
		{"quantity":2},
		{"unitPrice":{"nested":true},"quantity":"2"}
	]`
	var lines []line
	if err := json.Unmarshal([]byte(payload), &lines); err != nil {
		t.Fatalf("lenient decode must not fail: %v", err)
	}
	items := make([]LineItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, LineItem{UnitPrice: l.UnitPrice.Decimal(), Quantity: int64(l.Quantity)})
	}
	got := Engine{}.Compute(items, Options{})
	if got.Subtotal.String() != "30" {
		t.Fatalf("expected garbage lines to contribute zero, subtotal %s", got.Subtotal)
	}
	if got.Total.IsNegative() {
		t.Fatalf("total must stay non-negative, got %s", got.Total)
	}
}
