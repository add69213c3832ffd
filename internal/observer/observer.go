// Package observer provides sinks notified about ledger events.
//
// The services call an observer after an account is created, after a
// transaction commits and after a mutation is rejected. Observers must not
// fail the operation that notified them.
package observer

import (
	"context"

	"github.com/go-petr/pet-ledger/internal/domain"
)

// Observer receives ledger events.
type Observer interface {
	AccountCreated(ctx context.Context, account domain.Account)
	Applied(ctx context.Context, tx domain.Transaction, account domain.Account)
	Rejected(ctx context.Context, arg domain.ApplyTransactionParams, err error)
}

// Nop ignores every event.
type Nop struct{}

// AccountCreated does nothing.
func (Nop) AccountCreated(context.Context, domain.Account) {}

// Applied does nothing.
func (Nop) Applied(context.Context, domain.Transaction, domain.Account) {}

// Rejected does nothing.
func (Nop) Rejected(context.Context, domain.ApplyTransactionParams, error) {}

// Multi fans every event out to all of its observers in order.
type Multi []Observer

// AccountCreated notifies every observer.
func (m Multi) AccountCreated(ctx context.Context, account domain.Account) {
	for _, o := range m {
		o.AccountCreated(ctx, account)
	}
}

// Applied notifies every observer.
func (m Multi) Applied(ctx context.Context, tx domain.Transaction, account domain.Account) {
	for _, o := range m {
		o.Applied(ctx, tx, account)
	}
}

// Rejected notifies every observer.
func (m Multi) Rejected(ctx context.Context, arg domain.ApplyTransactionParams, err error) {
	for _, o := range m {
		o.Rejected(ctx, arg, err)
	}
}
