package memstore

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-ledger/internal/domain"
)

// unit is one atomic unit of work against a Store.
type unit struct {
	store    *Store
	held     map[uuid.UUID]*row
	balances map[uuid.UUID]domain.Account
	appended []domain.Transaction
}

func (u *unit) lock(ctx context.Context, id uuid.UUID) (*row, error) {
	if r, ok := u.held[id]; ok {
		return r, nil
	}

	r, ok := u.store.lookup(id)
	if !ok {
		return nil, domain.ErrAccountNotFound
	}

	select {
	case r.lock <- struct{}{}:
		u.held[id] = r
		return r, nil
	case <-ctx.Done():
		return nil, ctxError(ctx.Err())
	}
}

// GetForUpdate locks the account and returns its latest state as seen by this unit.
func (u *unit) GetForUpdate(ctx context.Context, id uuid.UUID) (domain.Account, error) {
	r, err := u.lock(ctx, id)
	if err != nil {
		return domain.Account{}, err
	}

	if account, ok := u.balances[id]; ok {
		return account, nil
	}

	u.store.mu.RLock()
	defer u.store.mu.RUnlock()

	return r.account, nil
}

// UpdateBalance stages a new balance, locking the account if the unit does not hold it yet.
func (u *unit) UpdateBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) (domain.Account, error) {
	account, err := u.GetForUpdate(ctx, id)
	if err != nil {
		return domain.Account{}, err
	}

	if balance.IsNegative() {
		return domain.Account{}, domain.ErrInsufficientFunds
	}

	account.Balance = balance
	u.balances[id] = account

	return account, nil
}

// CreateTransaction stages a transaction record, locking the account if the unit does not hold it yet.
//
// The lock keeps created_at in commit order for the account.
func (u *unit) CreateTransaction(ctx context.Context, arg domain.CreateTransactionParams) (domain.Transaction, error) {
	if err := domain.ValidateAmount(arg.Amount); err != nil {
		return domain.Transaction{}, err
	}

	r, err := u.lock(ctx, arg.AccountID)
	if err != nil {
		return domain.Transaction{}, err
	}

	t := domain.Transaction{
		ID:        arg.ID,
		AccountID: arg.AccountID,
		Amount:    arg.Amount,
		Type:      arg.Type,
		CreatedAt: u.store.stamp(r),
	}

	u.appended = append(u.appended, t)

	return t, nil
}

func (u *unit) commit() {
	s := u.store

	s.mu.Lock()
	defer s.mu.Unlock()

	for id, account := range u.balances {
		s.rows[id].account = account
	}

	for _, t := range u.appended {
		r := s.rows[t.AccountID]
		r.history = append(r.history, t)
	}
}

func (u *unit) release() {
	for id, r := range u.held {
		<-r.lock
		delete(u.held, id)
	}
}
