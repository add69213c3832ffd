// Package memstore is an in-process ledger store for local runs and tests.
//
// It offers the same guarantees the PostgreSQL repositories rely on: an
// exclusive per-account lock held until the atomic unit ends, writes that
// become visible only on commit, and per-account creation times that never
// go backwards.
package memstore

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
)

var errDuplicateID = errors.New("memstore: duplicate id")

type row struct {
	// lock is held by at most one unit; a send acquires it.
	lock    chan struct{}
	account domain.Account
	history []domain.Transaction // oldest first
	lastAt  time.Time
}

// Store keeps accounts and their transactions in memory.
type Store struct {
	mu   sync.RWMutex
	rows map[uuid.UUID]*row
	now  func() time.Time
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		rows: make(map[uuid.UUID]*row),
		now:  time.Now,
	}
}

func (s *Store) lookup(id uuid.UUID) (*row, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.rows[id]

	return r, ok
}

// Create inserts an account with zero balance.
func (s *Store) Create(ctx context.Context, id uuid.UUID) (domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rows[id]; ok {
		zerolog.Ctx(ctx).Error().Err(errDuplicateID).Stringer("account_id", id).Send()
		return domain.Account{}, errorspkg.ErrInternal
	}

	account := domain.Account{
		ID:        id,
		Balance:   decimal.Zero,
		CreatedAt: s.now().UTC(),
	}

	s.rows[id] = &row{
		lock:    make(chan struct{}, 1),
		account: account,
	}

	return account, nil
}

// Get returns the last committed state of the account.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.rows[id]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound
	}

	return r.account, nil
}

// List returns the committed transactions of the account, newest first.
func (s *Store) List(ctx context.Context, accountID uuid.UUID) ([]domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := []domain.Transaction{}

	r, ok := s.rows[accountID]
	if !ok {
		return items, nil
	}

	for i := len(r.history) - 1; i >= 0; i-- {
		items = append(items, r.history[i])
	}

	return items, nil
}

// RunAtomic runs fn in a unit whose writes are published only if fn succeeds
// and ctx is still alive. Account locks taken by the unit are released when it ends.
func (s *Store) RunAtomic(ctx context.Context, fn domain.AtomicFunc) error {
	u := &unit{
		store:    s,
		held:     make(map[uuid.UUID]*row),
		balances: make(map[uuid.UUID]domain.Account),
	}
	defer u.release()

	if err := ctx.Err(); err != nil {
		return ctxError(err)
	}

	if err := fn(ctx, u); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return ctxError(err)
	}

	u.commit()

	return nil
}

func ctxError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return errorspkg.ErrTimeout
	}

	return errorspkg.ErrInternal
}

// stamp returns a creation time for the account that is later than any it handed out before.
func (s *Store) stamp(r *row) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	at := s.now().UTC()
	if !at.After(r.lastAt) {
		at = r.lastAt.Add(time.Nanosecond)
	}

	r.lastAt = at

	return at
}
