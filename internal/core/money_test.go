package core

import "testing"

func TestParseAmountToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"$50", 5000, true},
		{"$1.234,56", 0, false}, // mixed separators are not supported
		{"$0.50", 50, true},
		{"€2,50", 250, true},
		{"0", 0, true},
		{"0.00", 0, true},
		{"1.005", 101, true}, // half-up rounding
		{" 2.50 ", 250, true},
		{"$ 3.10", 310, true},
		{"-1", 0, false},
		{"+1", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
		{"$", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmountToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestFormatCentsDecimal(t *testing.T) {
	cases := []struct {
		in  int64
		out string
	}{
		{0, "0.00"},
		{5, "0.05"},
		{50, "0.50"},
		{123, "1.23"},
		{105000, "1050.00"},
		{-123, "-1.23"},
	}
	for _, tc := range cases {
		if got := FormatCentsDecimal(tc.in); got != tc.out {
			t.Errorf("FormatCentsDecimal(%d) = %q, want %q", tc.in, got, tc.out)
		}
	}
}
