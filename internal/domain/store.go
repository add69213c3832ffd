package domain

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Unit is the set of store operations available inside an atomic unit of work.
//
// Everything done through a Unit is committed or rolled back together.
type Unit interface {
	// GetForUpdate returns the account holding its exclusive row lock until the unit ends.
	GetForUpdate(ctx context.Context, id uuid.UUID) (Account, error)
	UpdateBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) (Account, error)
	CreateTransaction(ctx context.Context, arg CreateTransactionParams) (Transaction, error)
}

// AtomicFunc is the work run inside an atomic unit.
//
// Returning an error rolls the unit back.
type AtomicFunc func(ctx context.Context, u Unit) error
