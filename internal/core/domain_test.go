package core

import (
	"errors"
	"testing"
	"time"
)

func TestDraftValidate(t *testing.T) {
	good := Draft{
		Amount: Money{Cents: 100},
		Type:   Payment,
		Payer:  "Alice",
		Date:   time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name  string
		draft Draft
		field string
	}{
		{
			name:  "unknown type",
			draft: Draft{Amount: Money{Cents: 1}, Type: "transfer", Date: good.Date},
			field: "type",
		},
		{
			name:  "negative amount",
			draft: Draft{Amount: Money{Cents: -1}, Type: Payment, Date: good.Date},
			field: "amount",
		},
		{
			name:  "zero date",
			draft: Draft{Amount: Money{Cents: 1}, Type: Withdrawal},
			field: "date",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.draft.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %T", err)
			}
			if ve.Field != tc.field {
				t.Fatalf("expected field %q, got %q", tc.field, ve.Field)
			}
		})
	}
}

func TestDraftValidateAllowsMissingCounterpart(t *testing.T) {
	// Forms may submit both fields or neither; only the type-relevant one is
	// used downstream, so absence of the counterpart is never an error.
	d := Draft{
		Amount:      Money{Cents: 500},
		Type:        Withdrawal,
		Payer:       "Alice", // irrelevant for withdrawals, still accepted
		WithdrawnBy: "",
		Date:        time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := d.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if got := d.Counterparty(); got != "" {
		t.Fatalf("expected empty counterparty, got %q", got)
	}
}

func TestCounterparty(t *testing.T) {
	p := Transaction{Type: Payment, Payer: "Alice", WithdrawnBy: "Bob"}
	if p.Counterparty() != "Alice" {
		t.Fatalf("payment counterparty: got %q", p.Counterparty())
	}
	w := Transaction{Type: Withdrawal, Payer: "Alice", WithdrawnBy: "Bob"}
	if w.Counterparty() != "Bob" {
		t.Fatalf("withdrawal counterparty: got %q", w.Counterparty())
	}
}

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"2024-01-05", time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), true},
		{"2024-01-05T10:30:00Z", time.Date(2024, 1, 5, 10, 30, 0, 0, time.UTC), true},
		{"2024-01-05T10:30:00+02:00", time.Date(2024, 1, 5, 8, 30, 0, 0, time.UTC), true},
		{"05/01/2024", time.Time{}, false},
		{"", time.Time{}, false},
	}
	for _, tc := range cases {
		got, err := ParseDate(tc.in)
		if tc.ok {
			if err != nil || !got.Equal(tc.want) {
				t.Fatalf("%q expected %v, got %v (err=%v)", tc.in, tc.want, got, err)
			}
			if got.Location() != time.UTC {
				t.Fatalf("%q expected UTC, got %v", tc.in, got.Location())
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestUserValidate(t *testing.T) {
	if err := (User{Username: "alice", Password: "hash"}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (User{Username: " ", Password: "hash"}).Validate(); err == nil {
		t.Fatal("expected error for blank username")
	}
	if err := (User{Username: "alice"}).Validate(); err == nil {
		t.Fatal("expected error for empty password")
	}
}
