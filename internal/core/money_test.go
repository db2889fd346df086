package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1", true},
		{"1.0", "1", true},
		{"1.23", "1.23", true},
		{"1,23", "1.23", true},
		{"0.01", "0.01", true},
		{"1.005", "1.01", true}, // half-up rounding
		{" 2.50 ", "2.5", true},
		{"-1", "", false},
		{"0", "", false},
		{"0.004", "", false},
		{"abc", "", false},
		{"1.2.3", "", false},
		{"1e3", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || !got.Equal(decimal.RequireFromString(tc.out)) {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestParseBoundAcceptsZero(t *testing.T) {
	got, err := ParseBound("0")
	if err != nil || !got.IsZero() {
		t.Fatalf("ParseBound(0) = %s, %v", got, err)
	}
}

func TestParseSigned(t *testing.T) {
	cases := map[string]string{"-500": "-500", "+10": "10", "12,5": "12.5"}
	for in, want := range cases {
		got, err := ParseSigned(in)
		if err != nil || !got.Equal(decimal.RequireFromString(want)) {
			t.Fatalf("ParseSigned(%q) = %s, %v", in, got, err)
		}
	}
	if _, err := ParseSigned("ten"); err == nil {
		t.Fatalf("expected error")
	}
}
