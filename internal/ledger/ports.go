package ledger

import (
	"context"
	"time"

	"bluepay/internal/core"
)

// Ports for the persistence and export adapters.
type (
	// TransactionStore is the owner-scoped transaction persistence port.
	// Every operation is filtered to the supplied user id; there is no
	// cross-user visibility.
	TransactionStore interface {
		// CreateTransaction persists a validated draft and returns the row
		// with its freshly assigned id. Implementations re-validate the
		// draft rather than trusting the caller.
		CreateTransaction(ctx context.Context, userID int64, d core.Draft) (core.Transaction, error)

		// Transactions returns the user's transactions with
		// start <= date <= end (inclusive on both bounds), ordered by date
		// ascending, id ascending for equal dates.
		Transactions(ctx context.Context, userID int64, start, end time.Time) ([]core.Transaction, error)

		// DeleteTransaction removes the row. It fails with core.ErrNotFound
		// when the id is unknown or owned by a different user.
		DeleteTransaction(ctx context.Context, userID, id int64) error

		// Balance returns the signed cent sum over all of the user's
		// transactions; 0 when there are none.
		Balance(ctx context.Context, userID int64) (int64, error)
	}

	// UserStore is the registration/login persistence port.
	UserStore interface {
		// CreateUser inserts a new user with an already-hashed password.
		// A duplicate username fails with a ValidationError on "username".
		CreateUser(ctx context.Context, username, passwordHash string) (core.User, error)

		// UserByUsername fails with core.ErrNotFound for unknown usernames.
		UserByUsername(ctx context.Context, username string) (core.User, error)

		// UserByID fails with core.ErrNotFound for unknown ids.
		UserByID(ctx context.Context, id int64) (core.User, error)
	}

	// Store is the full persistence surface a backend must provide.
	Store interface {
		TransactionStore
		UserStore
	}

	// ExportQueue enqueues asynchronous spreadsheet export jobs and returns
	// a job id for tracing.
	ExportQueue interface {
		PublishExport(ctx context.Context, userID int64, year, month int) (jobID string, err error)
	}
)

// ValidateRange checks the [start, end] query bounds shared by every range
// read: both must be valid instants and start must not exceed end.
func ValidateRange(start, end time.Time) error {
	if start.IsZero() {
		return core.NewValidationError("startDate", "must be a valid timestamp")
	}
	if end.IsZero() {
		return core.NewValidationError("endDate", "must be a valid timestamp")
	}
	if start.After(end) {
		return core.NewValidationError("startDate", "must not be after endDate")
	}
	return nil
}
