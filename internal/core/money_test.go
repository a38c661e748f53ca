package core

import (
	"errors"
	"testing"
)

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"0", 0, true},
		{"100.00", 10000, true},
		{"12.345", 1235, true}, // half-up on the third decimal
		{"12.344", 1234, true},
		{"1.005", 101, true},
		{" 2.50 ", 250, true},
		{".5", 50, true},
		{"92233720368547758.07", 9223372036854775807, true},
		{"-1", 0, false},
		{"92233720368547758.08", 0, false}, // one cent past int64
		{"92233720368547758.99", 0, false},
		{"99999999999999999999", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{".", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
			if !IsValidation(err) {
				t.Fatalf("%q expected ValidationError, got %T", tc.in, err)
			}
		}
	}
}

func TestParseDecimalToCentsOverflowReason(t *testing.T) {
	// The fractional cents must count against the headroom too; wrapping
	// negative would surface as a bogus "must not be negative".
	for _, in := range []string{"92233720368547758.99", "92233720368547759"} {
		_, err := ParseDecimalToCents(in)
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("%q expected ValidationError, got %v", in, err)
		}
		if ve.Reason != "too large" {
			t.Fatalf("%q reason = %q, want %q", in, ve.Reason, "too large")
		}
	}
}

func TestMoneyDecimal(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{0, "0.00"},
		{1, "0.01"},
		{1234, "12.34"},
		{10000, "100.00"},
		{-4005, "-40.05"},
	}
	for _, tc := range cases {
		if got := (Money{Cents: tc.cents}).Decimal(); got != tc.want {
			t.Fatalf("%d cents expected %q, got %q", tc.cents, tc.want, got)
		}
	}
}
