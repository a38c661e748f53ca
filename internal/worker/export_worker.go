// Package worker processes export jobs delivered over AMQP.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"bluepay/internal/amqp"
	"bluepay/internal/core"
	"bluepay/internal/export"
	"bluepay/internal/ledger"
)

// ExportWorker replays a user's month from storage into a spreadsheet.
type ExportWorker struct {
	store  ledger.Store
	sheets export.SheetWriter
}

func NewExportWorker(store ledger.Store, sheets export.SheetWriter) *ExportWorker {
	return &ExportWorker{store: store, sheets: sheets}
}

// HandleExportMessage processes a single export job from AMQP.
func (w *ExportWorker) HandleExportMessage(ctx context.Context, msg *amqp.ExportMessage) error {
	slog.InfoContext(ctx, "Processing export job",
		"job_id", msg.JobID,
		"user_id", msg.UserID,
		"year", msg.Year,
		"month", msg.Month)

	if msg.Month < 1 || msg.Month > 12 {
		return fmt.Errorf("export job %s: invalid month %d", msg.JobID, msg.Month)
	}

	user, err := w.store.UserByID(ctx, msg.UserID)
	if err != nil {
		return fmt.Errorf("export job %s: load user %d: %w", msg.JobID, msg.UserID, err)
	}

	start, end := core.MonthRange(msg.Year, msg.Month)
	txs, err := w.store.Transactions(ctx, user.ID, start, end)
	if err != nil {
		return fmt.Errorf("export job %s: list transactions: %w", msg.JobID, err)
	}

	ref, err := w.sheets.WriteMonth(ctx, user, msg.Year, msg.Month, txs)
	if err != nil {
		return fmt.Errorf("export job %s: write sheet: %w", msg.JobID, err)
	}

	slog.InfoContext(ctx, "Export job completed",
		"job_id", msg.JobID,
		"user_id", msg.UserID,
		"rows", len(txs),
		"sheets_ref", ref)
	return nil
}
