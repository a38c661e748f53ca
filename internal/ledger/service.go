// Package ledger orchestrates transaction operations across the persistence
// store and the export queue.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"bluepay/internal/core"
)

// Service fronts a Store for the HTTP layer and hooks in the export queue.
// It re-validates input on the way in so the store never sees an unchecked
// payload, regardless of what the transport layer did.
type Service struct {
	store Store
	queue ExportQueue
}

// NewService builds a Service. queue may be nil; export requests then fail
// cleanly instead of at startup.
func NewService(store Store, queue ExportQueue) *Service {
	return &Service{store: store, queue: queue}
}

// Create validates and persists a draft for the given owner.
func (s *Service) Create(ctx context.Context, userID int64, d core.Draft) (core.Transaction, error) {
	if err := d.Validate(); err != nil {
		return core.Transaction{}, err
	}
	tx, err := s.store.CreateTransaction(ctx, userID, d)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction created",
		"id", tx.ID,
		"user_id", userID,
		"type", tx.Type,
		"amount_cents", tx.Amount.Cents,
		"date", tx.Date.Format(time.RFC3339))

	return tx, nil
}

// List returns the owner's transactions within the inclusive [start, end]
// range, date ascending.
func (s *Service) List(ctx context.Context, userID int64, start, end time.Time) ([]core.Transaction, error) {
	if err := ValidateRange(start, end); err != nil {
		return nil, err
	}
	txs, err := s.store.Transactions(ctx, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

// ListMonth returns the owner's transactions for a calendar month.
func (s *Service) ListMonth(ctx context.Context, userID int64, year, month int) ([]core.Transaction, error) {
	if month < 1 || month > 12 {
		return nil, core.NewValidationError("month", "must be between 1 and 12")
	}
	start, end := core.MonthRange(year, month)
	return s.List(ctx, userID, start, end)
}

// Delete removes one of the owner's transactions. Unknown ids and rows owned
// by other users fail identically with core.ErrNotFound.
func (s *Service) Delete(ctx context.Context, userID, id int64) error {
	if err := s.store.DeleteTransaction(ctx, userID, id); err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}

	slog.InfoContext(ctx, "Transaction deleted", "id", id, "user_id", userID)
	return nil
}

// Balance returns the owner's current balance in cents.
func (s *Service) Balance(ctx context.Context, userID int64) (int64, error) {
	balance, err := s.store.Balance(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("balance: %w", err)
	}
	return balance, nil
}

// RequestExport enqueues an asynchronous spreadsheet export of one calendar
// month and returns the job id.
func (s *Service) RequestExport(ctx context.Context, userID int64, year, month int) (string, error) {
	if month < 1 || month > 12 {
		return "", core.NewValidationError("month", "must be between 1 and 12")
	}
	if s.queue == nil {
		return "", fmt.Errorf("export queue not configured")
	}
	jobID, err := s.queue.PublishExport(ctx, userID, year, month)
	if err != nil {
		return "", fmt.Errorf("publish export job: %w", err)
	}

	slog.InfoContext(ctx, "Export job enqueued",
		"job_id", jobID,
		"user_id", userID,
		"year", year,
		"month", month)

	return jobID, nil
}
