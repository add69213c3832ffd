// Package ledgerrepo runs balance mutations as PostgreSQL transactions.
package ledgerrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-ledger/internal/accountrepo"
	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/internal/transactionrepo"
	"github.com/go-petr/pet-ledger/pkg/dbpkg"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
)

// RepoPGS facilitates atomic ledger units and history reads.
type RepoPGS struct {
	conn         *sql.DB
	lockTimeout  time.Duration
	transactions *transactionrepo.RepoPGS
}

// NewRepoPGS returns ledger RepoPGS.
//
// lockTimeout caps how long a unit waits for an account row lock; zero
// keeps the server default.
func NewRepoPGS(conn *sql.DB, lockTimeout time.Duration) *RepoPGS {
	return &RepoPGS{
		conn:         conn,
		lockTimeout:  lockTimeout,
		transactions: transactionrepo.NewRepoPGS(conn),
	}
}

// List returns the committed transactions of the account, newest first.
func (r *RepoPGS) List(ctx context.Context, accountID uuid.UUID) ([]domain.Transaction, error) {
	return r.transactions.List(ctx, accountID)
}

// unit scopes the account and transaction repositories to one *sql.Tx.
type unit struct {
	accounts     *accountrepo.RepoPGS
	transactions *transactionrepo.RepoPGS
}

func (u unit) GetForUpdate(ctx context.Context, id uuid.UUID) (domain.Account, error) {
	return u.accounts.GetForUpdate(ctx, id)
}

func (u unit) UpdateBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) (domain.Account, error) {
	return u.accounts.UpdateBalance(ctx, id, balance)
}

func (u unit) CreateTransaction(ctx context.Context, arg domain.CreateTransactionParams) (domain.Transaction, error) {
	return u.transactions.Create(ctx, arg)
}

func txError(err error) error {
	if dbpkg.IsTimeout(err) {
		return errorspkg.ErrTimeout
	}

	return errorspkg.ErrInternal
}

// RunAtomic runs fn inside one read committed transaction.
//
// The transaction commits only if fn returns nil; otherwise it is rolled
// back and fn's error is returned as is.
func (r *RepoPGS) RunAtomic(ctx context.Context, fn domain.AtomicFunc) error {
	l := zerolog.Ctx(ctx)

	tx, err := r.conn.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		l.Error().Err(err).Send()
		return txError(err)
	}

	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			l.Error().Err(err).Send()
		}
	}()

	if r.lockTimeout > 0 {
		query := fmt.Sprintf("SET LOCAL lock_timeout = %d", r.lockTimeout.Milliseconds())

		if _, err := tx.ExecContext(ctx, query); err != nil {
			l.Error().Err(err).Send()
			return txError(err)
		}
	}

	u := unit{
		accounts:     accountrepo.NewRepoPGS(tx),
		transactions: transactionrepo.NewRepoPGS(tx),
	}

	if err := fn(ctx, u); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		l.Error().Err(err).Send()
		return txError(err)
	}

	return nil
}
