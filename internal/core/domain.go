package core

import (
	"strings"
	"time"
)

const (
	Payment    TransactionType = "payment"
	Withdrawal TransactionType = "withdrawal"
)

type (
	TransactionType string

	Money struct {
		Cents int64
	}

	// User is created at registration and immutable thereafter.
	// Password holds the bcrypt hash, never the plaintext.
	User struct {
		ID       int64
		Username string
		Password string
	}

	// Transaction is a persisted ledger row, immutably tied to its owner.
	Transaction struct {
		ID          int64
		UserID      int64
		Amount      Money
		Type        TransactionType
		Description string
		Payer       string // meaningful iff Type == Payment
		WithdrawnBy string // meaningful iff Type == Withdrawal
		Date        time.Time
		Notes       string
	}

	// Draft is a validated transaction-creation payload. Forms may submit
	// both payer and withdrawnBy; only the one matching Type is relevant.
	Draft struct {
		Amount      Money
		Type        TransactionType
		Description string
		Payer       string
		WithdrawnBy string
		Date        time.Time
		Notes       string
	}
)

// Valid reports whether t is one of the known transaction types.
func (t TransactionType) Valid() bool {
	return t == Payment || t == Withdrawal
}

// Signed returns the amount's contribution to the balance in cents:
// positive for payments, negative for withdrawals.
func (t Transaction) Signed() int64 {
	if t.Type == Withdrawal {
		return -t.Amount.Cents
	}
	return t.Amount.Cents
}

// Counterparty returns the type-relevant party: the payer for payments,
// the withdrawer for withdrawals. The other field is ignored.
func (t Transaction) Counterparty() string {
	if t.Type == Withdrawal {
		return t.WithdrawnBy
	}
	return t.Payer
}

// Counterparty mirrors Transaction.Counterparty for not-yet-persisted drafts.
func (d Draft) Counterparty() string {
	if d.Type == Withdrawal {
		return d.WithdrawnBy
	}
	return d.Payer
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return NewValidationError("amount", "must not be negative")
	}
	return nil
}

// Validate checks every Draft invariant and names the offending field.
// Stores re-run it before persisting instead of trusting the caller.
func (d Draft) Validate() error {
	if !d.Type.Valid() {
		return NewValidationError("type", "must be payment or withdrawal")
	}
	if err := d.Amount.Validate(); err != nil {
		return err
	}
	if d.Date.IsZero() {
		return NewValidationError("date", "must be a valid timestamp")
	}
	if len(d.Notes) > 500 {
		return NewValidationError("notes", "too long (max 500 characters)")
	}
	if len(d.Description) > 200 {
		return NewValidationError("description", "too long (max 200 characters)")
	}
	return nil
}

// Validate checks registration input. The hash itself is produced elsewhere.
func (u User) Validate() error {
	if strings.TrimSpace(u.Username) == "" {
		return NewValidationError("username", "must not be empty")
	}
	if len(u.Username) > 64 {
		return NewValidationError("username", "too long (max 64 characters)")
	}
	if u.Password == "" {
		return NewValidationError("password", "must not be empty")
	}
	return nil
}
