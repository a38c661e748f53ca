// Package memstore is an in-memory ledger.Store used by tests and the
// "memory" data backend. It honors the same contract as the sqlite
// repository: ownership scoping, inclusive range bounds, ascending order.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"bluepay/internal/core"
	"bluepay/internal/ledger"
)

type Store struct {
	mu         sync.Mutex
	users      map[int64]core.User
	txs        map[int64]core.Transaction
	nextUserID int64
	nextTxID   int64
}

var _ ledger.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		users:      make(map[int64]core.User),
		txs:        make(map[int64]core.Transaction),
		nextUserID: 1,
		nextTxID:   1,
	}
}

func (s *Store) CreateUser(_ context.Context, username, passwordHash string) (core.User, error) {
	u := core.User{Username: username, Password: passwordHash}
	if err := u.Validate(); err != nil {
		return core.User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Username == username {
			return core.User{}, core.NewValidationError("username", "already taken")
		}
	}
	u.ID = s.nextUserID
	s.nextUserID++
	s.users[u.ID] = u
	return u, nil
}

func (s *Store) UserByUsername(_ context.Context, username string) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return core.User{}, core.ErrNotFound
}

func (s *Store) UserByID(_ context.Context, id int64) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return core.User{}, core.ErrNotFound
}

func (s *Store) CreateTransaction(_ context.Context, userID int64, d core.Draft) (core.Transaction, error) {
	if err := d.Validate(); err != nil {
		return core.Transaction{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	tx := core.Transaction{
		ID:          s.nextTxID,
		UserID:      userID,
		Amount:      d.Amount,
		Type:        d.Type,
		Description: d.Description,
		Payer:       d.Payer,
		WithdrawnBy: d.WithdrawnBy,
		Date:        d.Date.UTC().Truncate(time.Second),
		Notes:       d.Notes,
	}
	s.nextTxID++
	s.txs[tx.ID] = tx
	return tx, nil
}

func (s *Store) Transactions(_ context.Context, userID int64, start, end time.Time) ([]core.Transaction, error) {
	if err := ledger.ValidateRange(start, end); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, 0)
	for _, tx := range s.txs {
		if tx.UserID != userID {
			continue
		}
		if tx.Date.Before(start) || tx.Date.After(end) {
			continue
		}
		out = append(out, tx)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) DeleteTransaction(_ context.Context, userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.txs[id]
	if !ok || tx.UserID != userID {
		// Same error for both cases so existence never leaks to non-owners.
		return core.ErrNotFound
	}
	delete(s.txs, id)
	return nil
}

func (s *Store) Balance(_ context.Context, userID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total int64
	for _, tx := range s.txs {
		if tx.UserID == userID {
			total += tx.Signed()
		}
	}
	return total, nil
}
