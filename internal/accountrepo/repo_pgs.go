// Package accountrepo manages repository layer of accounts.
package accountrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/dbpkg"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
)

// RepoPGS facilitates account repository layer logic.
//
// It works the same on top of *sql.DB and *sql.Tx.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns account RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

// storeError maps a raw storage error onto the domain taxonomy.
func storeError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrAccountNotFound
	}

	if dbpkg.IsTimeout(err) {
		return errorspkg.ErrTimeout
	}

	if constraint, ok := dbpkg.ViolatedConstraint(err); ok && constraint == "accounts_balance_check" {
		return domain.ErrInsufficientFunds
	}

	return errorspkg.ErrInternal
}

func (r *RepoPGS) scanOne(ctx context.Context, query string, args ...any) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, query, args...)

	var a domain.Account

	err := row.Scan(
		&a.ID,
		&a.Balance,
		&a.CreatedAt,
	)

	if err != nil {
		l.Error().Err(err).Send()
		return domain.Account{}, storeError(err)
	}

	return a, nil
}

const createQuery = `
INSERT INTO 
    accounts (id, balance)
VALUES
    ($1, 0)
RETURNING id, balance, created_at
`

// Create inserts an account with zero balance and then returns it.
func (r *RepoPGS) Create(ctx context.Context, id uuid.UUID) (domain.Account, error) {
	return r.scanOne(ctx, createQuery, id)
}

const getQuery = `
SELECT 
	id, balance, created_at 
FROM accounts
WHERE id = $1
`

// Get returns the last committed state of the account with the given id.
func (r *RepoPGS) Get(ctx context.Context, id uuid.UUID) (domain.Account, error) {
	return r.scanOne(ctx, getQuery, id)
}

const getForUpdateQuery = `
SELECT 
	id, balance, created_at 
FROM accounts
WHERE id = $1
FOR UPDATE
`

// GetForUpdate returns the account and holds its row lock until the surrounding transaction ends.
//
// Outside of a transaction the lock is released right after the statement.
func (r *RepoPGS) GetForUpdate(ctx context.Context, id uuid.UUID) (domain.Account, error) {
	return r.scanOne(ctx, getForUpdateQuery, id)
}

const updateBalanceQuery = `
UPDATE accounts
SET balance = $1
WHERE id = $2
RETURNING id, balance, created_at
`

// UpdateBalance sets the account's balance and returns the changed account.
func (r *RepoPGS) UpdateBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) (domain.Account, error) {
	return r.scanOne(ctx, updateBalanceQuery, balance, id)
}

const deleteQuery = `
DELETE FROM accounts
WHERE id = $1
`

// Delete removes the account with the given id together with its transactions.
func (r *RepoPGS) Delete(ctx context.Context, id uuid.UUID) error {
	l := zerolog.Ctx(ctx)

	if _, err := r.db.ExecContext(ctx, deleteQuery, id); err != nil {
		l.Error().Err(err).Send()
		return storeError(err)
	}

	return nil
}
