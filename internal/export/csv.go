package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"bluepay/internal/core"
)

// Header is the first row of every export, CSV and spreadsheet alike.
var Header = []string{"Date", "Type", "Amount", "Payer/Withdrawn By", "Notes"}

// FileName returns the download name for a month export, e.g. "bluepay-2025-03.csv".
func FileName(year, month int) string {
	return fmt.Sprintf("bluepay-%04d-%02d.csv", year, month)
}

// Row flattens a transaction into the export column layout.
func Row(t core.Transaction) []string {
	return []string{
		t.Date.Format("2006-01-02"),
		string(t.Type),
		t.Amount.Decimal(),
		t.Counterparty(),
		t.Notes,
	}
}

// WriteCSV renders the transactions as CSV, header first.
func WriteCSV(w io.Writer, txs []core.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, t := range txs {
		if err := cw.Write(Row(t)); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
