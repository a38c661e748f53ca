package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"bluepay/internal/core"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t.UTC()
}

func mustCreateUser(t *testing.T, s *Store, name string) core.User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), name, "hash")
	if err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return u
}

func mustCreate(t *testing.T, s *Store, userID int64, d core.Draft) core.Transaction {
	t.Helper()
	tx, err := s.CreateTransaction(context.Background(), userID, d)
	if err != nil {
		t.Fatalf("create transaction: %v", err)
	}
	return tx
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	s := New()
	mustCreateUser(t, s, "alice")
	_, err := s.CreateUser(context.Background(), "alice", "otherhash")
	if !core.IsValidation(err) {
		t.Fatalf("expected ValidationError for duplicate username, got %v", err)
	}
}

func TestCreateRoundTrip(t *testing.T) {
	s := New()
	u := mustCreateUser(t, s, "alice")

	created := mustCreate(t, s, u.ID, core.Draft{
		Amount: core.Money{Cents: 1235},
		Type:   core.Payment,
		Payer:  "Alice",
		Date:   date("2024-01-05"),
		Notes:  "rent",
	})
	if created.ID == 0 {
		t.Fatal("expected assigned id")
	}

	got, err := s.Transactions(context.Background(), u.ID, date("2024-01-01"), date("2024-01-31"))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(got))
	}
	if got[0].Amount.Cents != 1235 {
		t.Fatalf("amount not preserved: %d", got[0].Amount.Cents)
	}
	if got[0].Payer != "Alice" || got[0].Notes != "rent" {
		t.Fatalf("fields not preserved: %+v", got[0])
	}
}

func TestRangeBoundsInclusive(t *testing.T) {
	s := New()
	u := mustCreateUser(t, s, "alice")

	atStart := mustCreate(t, s, u.ID, core.Draft{
		Amount: core.Money{Cents: 100}, Type: core.Payment, Date: date("2024-01-01"),
	})
	atEnd := mustCreate(t, s, u.ID, core.Draft{
		Amount: core.Money{Cents: 200}, Type: core.Payment, Date: date("2024-01-31"),
	})
	// One second before the lower bound must be excluded.
	mustCreate(t, s, u.ID, core.Draft{
		Amount: core.Money{Cents: 300}, Type: core.Payment,
		Date: date("2024-01-01").Add(-time.Second),
	})

	got, err := s.Transactions(context.Background(), u.ID, date("2024-01-01"), date("2024-01-31"))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(got))
	}
	if got[0].ID != atStart.ID || got[1].ID != atEnd.ID {
		t.Fatalf("unexpected order: %d, %d", got[0].ID, got[1].ID)
	}
}

func TestRangeStartAfterEnd(t *testing.T) {
	s := New()
	u := mustCreateUser(t, s, "alice")
	_, err := s.Transactions(context.Background(), u.ID, date("2024-02-01"), date("2024-01-01"))
	if !core.IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestDeleteTwiceFails(t *testing.T) {
	s := New()
	u := mustCreateUser(t, s, "alice")
	tx := mustCreate(t, s, u.ID, core.Draft{
		Amount: core.Money{Cents: 100}, Type: core.Payment, Date: date("2024-01-05"),
	})

	if err := s.DeleteTransaction(context.Background(), u.ID, tx.ID); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	got, err := s.Transactions(context.Background(), u.ID, date("2024-01-01"), date("2024-01-31"))
	if err != nil || len(got) != 0 {
		t.Fatalf("expected empty list after delete, got %d (err=%v)", len(got), err)
	}
	if balance, _ := s.Balance(context.Background(), u.ID); balance != 0 {
		t.Fatalf("expected 0 balance after delete, got %d", balance)
	}

	err = s.DeleteTransaction(context.Background(), u.ID, tx.ID)
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("second delete: expected ErrNotFound, got %v", err)
	}
}

func TestDeleteForeignTransaction(t *testing.T) {
	s := New()
	alice := mustCreateUser(t, s, "alice")
	mallory := mustCreateUser(t, s, "mallory")

	tx := mustCreate(t, s, alice.ID, core.Draft{
		Amount: core.Money{Cents: 100}, Type: core.Payment, Date: date("2024-01-05"),
	})

	err := s.DeleteTransaction(context.Background(), mallory.ID, tx.ID)
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign delete, got %v", err)
	}

	// The owner's data must be unaffected.
	got, err := s.Transactions(context.Background(), alice.ID, date("2024-01-01"), date("2024-01-31"))
	if err != nil || len(got) != 1 {
		t.Fatalf("owner's transaction should survive, got %d (err=%v)", len(got), err)
	}
}

func TestBalanceScenario(t *testing.T) {
	s := New()
	u := mustCreateUser(t, s, "alice")

	mustCreate(t, s, u.ID, core.Draft{
		Amount: core.Money{Cents: 10000}, Type: core.Payment,
		Payer: "Alice", Date: date("2024-01-05"),
	})
	mustCreate(t, s, u.ID, core.Draft{
		Amount: core.Money{Cents: 4000}, Type: core.Withdrawal,
		WithdrawnBy: "Bob", Date: date("2024-01-10"),
	})

	balance, err := s.Balance(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance != 6000 {
		t.Fatalf("expected 6000 cents, got %d", balance)
	}

	got, err := s.Transactions(context.Background(), u.ID, date("2024-01-01"), date("2024-01-31"))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected both transactions, got %d", len(got))
	}
	if got[0].Type != core.Payment || got[1].Type != core.Withdrawal {
		t.Fatalf("unexpected order: %s, %s", got[0].Type, got[1].Type)
	}
}

func TestBalanceCreationOrderIndependent(t *testing.T) {
	drafts := []core.Draft{
		{Amount: core.Money{Cents: 500}, Type: core.Payment, Date: date("2024-03-01")},
		{Amount: core.Money{Cents: 250}, Type: core.Withdrawal, Date: date("2024-03-02")},
		{Amount: core.Money{Cents: 1000}, Type: core.Payment, Date: date("2024-03-03")},
	}

	forward := New()
	u1 := mustCreateUser(t, forward, "alice")
	for _, d := range drafts {
		mustCreate(t, forward, u1.ID, d)
	}

	reverse := New()
	u2 := mustCreateUser(t, reverse, "alice")
	for i := len(drafts) - 1; i >= 0; i-- {
		mustCreate(t, reverse, u2.ID, drafts[i])
	}

	b1, _ := forward.Balance(context.Background(), u1.ID)
	b2, _ := reverse.Balance(context.Background(), u2.ID)
	if b1 != b2 || b1 != 1250 {
		t.Fatalf("expected 1250 regardless of order, got %d and %d", b1, b2)
	}
}

func TestBalanceIsolatedPerUser(t *testing.T) {
	s := New()
	alice := mustCreateUser(t, s, "alice")
	bob := mustCreateUser(t, s, "bob")

	mustCreate(t, s, alice.ID, core.Draft{
		Amount: core.Money{Cents: 10000}, Type: core.Payment, Date: date("2024-01-05"),
	})

	if b, _ := s.Balance(context.Background(), bob.ID); b != 0 {
		t.Fatalf("expected 0 for user with no transactions, got %d", b)
	}
}
