package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"bluepay/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "bluepay_test.db"))
	if err != nil {
		t.Fatalf("open test repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func date(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d.UTC()
}

func TestUserRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.CreateUser(ctx, "alice", "bcrypt-hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("expected assigned id")
	}

	byName, err := repo.UserByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("user by username: %v", err)
	}
	if byName.ID != created.ID || byName.Password != "bcrypt-hash" {
		t.Fatalf("unexpected user: %+v", byName)
	}

	byID, err := repo.UserByID(ctx, created.ID)
	if err != nil || byID.Username != "alice" {
		t.Fatalf("user by id: %+v (err=%v)", byID, err)
	}

	if _, err := repo.UserByUsername(ctx, "nobody"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if _, err := repo.CreateUser(ctx, "alice", "other"); !core.IsValidation(err) {
		t.Fatalf("expected ValidationError for duplicate username, got %v", err)
	}
}

func TestTransactionRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	u, err := repo.CreateUser(ctx, "alice", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	draft := core.Draft{
		Amount:      core.Money{Cents: 1235},
		Type:        core.Payment,
		Payer:       "Alice",
		WithdrawnBy: "ignored",
		Date:        date("2024-01-05"),
		Notes:       "rent",
	}
	created, err := repo.CreateTransaction(ctx, u.ID, draft)
	if err != nil {
		t.Fatalf("create transaction: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("expected assigned id")
	}

	got, err := repo.Transactions(ctx, u.ID, date("2024-01-01"), date("2024-01-31"))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 row, got %d", len(got))
	}
	if got[0].Amount.Cents != 1235 || got[0].Payer != "Alice" || got[0].Notes != "rent" {
		t.Fatalf("row not preserved: %+v", got[0])
	}
	if !got[0].Date.Equal(date("2024-01-05")) {
		t.Fatalf("date not preserved: %v", got[0].Date)
	}
}

func TestCreateTransactionRevalidates(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	u, _ := repo.CreateUser(ctx, "alice", "hash")

	// The store must not trust the caller's payload.
	_, err := repo.CreateTransaction(ctx, u.ID, core.Draft{
		Amount: core.Money{Cents: -1},
		Type:   core.Payment,
		Date:   date("2024-01-05"),
	})
	if !core.IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestRangeInclusiveBounds(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	u, _ := repo.CreateUser(ctx, "alice", "hash")

	mk := func(d time.Time, cents int64) {
		t.Helper()
		if _, err := repo.CreateTransaction(ctx, u.ID, core.Draft{
			Amount: core.Money{Cents: cents}, Type: core.Payment, Date: d,
		}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	mk(date("2024-01-01"), 100)                   // exactly at startDate
	mk(date("2024-01-31"), 200)                   // exactly at endDate
	mk(date("2024-01-01").Add(-time.Second), 300) // one second before: excluded

	got, err := repo.Transactions(ctx, u.ID, date("2024-01-01"), date("2024-01-31"))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got))
	}
	if got[0].Amount.Cents != 100 || got[1].Amount.Cents != 200 {
		t.Fatalf("unexpected order: %d, %d", got[0].Amount.Cents, got[1].Amount.Cents)
	}

	if _, err := repo.Transactions(ctx, u.ID, date("2024-02-01"), date("2024-01-01")); !core.IsValidation(err) {
		t.Fatalf("expected ValidationError for inverted range, got %v", err)
	}
}

func TestDeleteOwnershipScoped(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	alice, _ := repo.CreateUser(ctx, "alice", "hash")
	mallory, _ := repo.CreateUser(ctx, "mallory", "hash")

	tx, err := repo.CreateTransaction(ctx, alice.ID, core.Draft{
		Amount: core.Money{Cents: 100}, Type: core.Payment, Date: date("2024-01-05"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := repo.DeleteTransaction(ctx, mallory.ID, tx.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("foreign delete: expected ErrNotFound, got %v", err)
	}
	if got, _ := repo.Transactions(ctx, alice.ID, date("2024-01-01"), date("2024-01-31")); len(got) != 1 {
		t.Fatalf("owner's row should survive foreign delete, got %d rows", len(got))
	}

	if err := repo.DeleteTransaction(ctx, alice.ID, tx.ID); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if err := repo.DeleteTransaction(ctx, alice.ID, tx.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("second delete: expected ErrNotFound, got %v", err)
	}
}

func TestBalance(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	u, _ := repo.CreateUser(ctx, "alice", "hash")

	if b, err := repo.Balance(ctx, u.ID); err != nil || b != 0 {
		t.Fatalf("empty ledger: expected 0, got %d (err=%v)", b, err)
	}

	if _, err := repo.CreateTransaction(ctx, u.ID, core.Draft{
		Amount: core.Money{Cents: 10000}, Type: core.Payment, Payer: "Alice", Date: date("2024-01-05"),
	}); err != nil {
		t.Fatalf("create payment: %v", err)
	}
	if _, err := repo.CreateTransaction(ctx, u.ID, core.Draft{
		Amount: core.Money{Cents: 4000}, Type: core.Withdrawal, WithdrawnBy: "Bob", Date: date("2024-01-10"),
	}); err != nil {
		t.Fatalf("create withdrawal: %v", err)
	}

	b, err := repo.Balance(ctx, u.ID)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if b != 6000 {
		t.Fatalf("expected 6000 cents, got %d", b)
	}
}
