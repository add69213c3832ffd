// Package transactionrepo manages repository layer of the transaction log.
package transactionrepo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/dbpkg"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
)

// RepoPGS facilitates transaction log repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns transaction RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

func storeError(err error) error {
	if dbpkg.IsTimeout(err) {
		return errorspkg.ErrTimeout
	}

	if constraint, ok := dbpkg.ViolatedConstraint(err); ok {
		switch constraint {
		case "transactions_account_id_fkey":
			return domain.ErrAccountNotFound
		case "transactions_amount_check":
			return domain.ErrInvalidAmount
		}
	}

	return errorspkg.ErrInternal
}

// created_at comes from clock_timestamp() so that a record appended after
// waiting on the account lock is never stamped before the one it waited for.
const createQuery = `
INSERT INTO transactions 
	(id, account_id, amount, type, created_at)
VALUES 
	($1, $2, $3, $4, clock_timestamp())
RETURNING id, account_id, amount, type, created_at
`

// Create appends a transaction record and returns it.
func (r *RepoPGS) Create(ctx context.Context, arg domain.CreateTransactionParams) (domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery, arg.ID, arg.AccountID, arg.Amount, arg.Type)

	var t domain.Transaction

	err := row.Scan(
		&t.ID,
		&t.AccountID,
		&t.Amount,
		&t.Type,
		&t.CreatedAt,
	)

	if err != nil {
		l.Error().Err(err).Send()
		return domain.Transaction{}, storeError(err)
	}

	return t, nil
}

const listQuery = `
SELECT 
	id, account_id, amount, type, created_at
FROM transactions
WHERE account_id = $1
ORDER BY created_at DESC, id DESC
`

// List returns all transactions of the account, newest first.
//
// An account without transactions yields an empty, non-nil slice.
func (r *RepoPGS) List(ctx context.Context, accountID uuid.UUID) ([]domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listQuery, accountID)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, storeError(err)
	}
	defer rows.Close()

	items := []domain.Transaction{}

	for rows.Next() {
		var t domain.Transaction
		if err := rows.Scan(&t.ID, &t.AccountID, &t.Amount, &t.Type, &t.CreatedAt); err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, t)
	}

	if err := rows.Close(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()

		if errors.Is(storeError(err), errorspkg.ErrTimeout) {
			return nil, errorspkg.ErrTimeout
		}

		return nil, errorspkg.ErrInternal
	}

	return items, nil
}
