// Package export renders a user's month of transactions as spreadsheet data.
package export

import (
	"context"

	"bluepay/internal/core"
)

// SheetWriter is the outbound port for asynchronous spreadsheet export.
// Implementations write the month's rows to an external spreadsheet and
// return a reference to the written range or tab.
type SheetWriter interface {
	WriteMonth(ctx context.Context, user core.User, year, month int, txs []core.Transaction) (ref string, err error)
}
