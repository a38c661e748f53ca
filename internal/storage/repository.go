package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"bluepay/internal/core"
	"bluepay/internal/ledger"

	_ "modernc.org/sqlite"
)

// dateLayout keeps stored dates lexicographically ordered: constant-width
// UTC RFC 3339 at second precision, so TEXT comparison equals time order.
const dateLayout = "2006-01-02T15:04:05Z"

// SQLiteRepository implements ledger.Store on a sqlite database file.
type SQLiteRepository struct {
	db *sql.DB
}

var _ ledger.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) CreateUser(ctx context.Context, username, passwordHash string) (core.User, error) {
	u := core.User{Username: username, Password: passwordHash}
	if err := u.Validate(); err != nil {
		return core.User{}, err
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (username, password) VALUES (?, ?)`,
		username, passwordHash)
	if err != nil {
		if isUniqueViolation(err) {
			return core.User{}, core.NewValidationError("username", "already taken")
		}
		return core.User{}, core.NewPersistenceError("create user", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.User{}, core.NewPersistenceError("create user", err)
	}
	u.ID = id

	slog.InfoContext(ctx, "User created", "id", u.ID, "username", u.Username)
	return u, nil
}

func (r *SQLiteRepository) UserByUsername(ctx context.Context, username string) (core.User, error) {
	var u core.User
	err := r.db.QueryRowContext(ctx,
		`SELECT id, username, password FROM users WHERE username = ?`,
		username).Scan(&u.ID, &u.Username, &u.Password)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, core.ErrNotFound
	}
	if err != nil {
		return core.User{}, core.NewPersistenceError("user by username", err)
	}
	return u, nil
}

func (r *SQLiteRepository) UserByID(ctx context.Context, id int64) (core.User, error) {
	var u core.User
	err := r.db.QueryRowContext(ctx,
		`SELECT id, username, password FROM users WHERE id = ?`,
		id).Scan(&u.ID, &u.Username, &u.Password)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, core.ErrNotFound
	}
	if err != nil {
		return core.User{}, core.NewPersistenceError("user by id", err)
	}
	return u, nil
}

// CreateTransaction re-validates the draft before persisting; the stored
// amount is already in minor units.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, userID int64, d core.Draft) (core.Transaction, error) {
	if err := d.Validate(); err != nil {
		return core.Transaction{}, err
	}

	date := d.Date.UTC().Truncate(time.Second)
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (user_id, amount, type, description, payer, withdrawn_by, date, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		userID, d.Amount.Cents, string(d.Type), d.Description, d.Payer, d.WithdrawnBy,
		date.Format(dateLayout), d.Notes)
	if err != nil {
		return core.Transaction{}, core.NewPersistenceError("create transaction", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.Transaction{}, core.NewPersistenceError("create transaction", err)
	}

	tx := core.Transaction{
		ID:          id,
		UserID:      userID,
		Amount:      d.Amount,
		Type:        d.Type,
		Description: d.Description,
		Payer:       d.Payer,
		WithdrawnBy: d.WithdrawnBy,
		Date:        date,
		Notes:       d.Notes,
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", tx.ID,
		"user_id", userID,
		"type", tx.Type,
		"amount_cents", tx.Amount.Cents)

	return tx, nil
}

// Transactions returns the user's rows with start <= date <= end, date
// ascending, id ascending as a tiebreak.
func (r *SQLiteRepository) Transactions(ctx context.Context, userID int64, start, end time.Time) ([]core.Transaction, error) {
	if err := ledger.ValidateRange(start, end); err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, amount, type, description, payer, withdrawn_by, date, notes
		 FROM transactions
		 WHERE user_id = ? AND date >= ? AND date <= ?
		 ORDER BY date ASC, id ASC`,
		userID,
		start.UTC().Truncate(time.Second).Format(dateLayout),
		end.UTC().Truncate(time.Second).Format(dateLayout))
	if err != nil {
		return nil, core.NewPersistenceError("list transactions", err)
	}
	defer rows.Close()

	out := make([]core.Transaction, 0)
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, core.NewPersistenceError("scan transaction", err)
		}
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, core.NewPersistenceError("list transactions", err)
	}
	return out, nil
}

// DeleteTransaction checks ownership in the statement itself: a foreign row
// and a missing row both affect zero rows and fail with the same error.
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return core.NewPersistenceError("delete transaction", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return core.NewPersistenceError("delete transaction", err)
	}
	if affected == 0 {
		return core.ErrNotFound
	}

	slog.InfoContext(ctx, "Transaction deleted from SQLite", "id", id, "user_id", userID)
	return nil
}

func (r *SQLiteRepository) Balance(ctx context.Context, userID int64) (int64, error) {
	var balance int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(CASE WHEN type = 'payment' THEN amount ELSE -amount END), 0)
		 FROM transactions WHERE user_id = ?`,
		userID).Scan(&balance)
	if err != nil {
		return 0, core.NewPersistenceError("balance", err)
	}
	return balance, nil
}

func scanTransaction(rows *sql.Rows) (core.Transaction, error) {
	var (
		tx      core.Transaction
		typ     string
		dateRaw string
	)
	if err := rows.Scan(&tx.ID, &tx.UserID, &tx.Amount.Cents, &typ, &tx.Description,
		&tx.Payer, &tx.WithdrawnBy, &dateRaw, &tx.Notes); err != nil {
		return core.Transaction{}, err
	}
	tx.Type = core.TransactionType(typ)
	date, err := time.Parse(dateLayout, dateRaw)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse stored date %q: %w", dateRaw, err)
	}
	tx.Date = date
	return tx, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
