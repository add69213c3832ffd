package observer

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
)

// Log writes ledger events as structured log lines.
type Log struct {
	logger zerolog.Logger
}

// NewLog returns a Log observer that falls back to logger when the context carries none.
func NewLog(logger zerolog.Logger) *Log {
	return &Log{logger: logger}
}

// from prefers the request scoped logger so events keep their request_id.
func (o *Log) from(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}

	return &o.logger
}

// AccountCreated logs the new account.
func (o *Log) AccountCreated(ctx context.Context, account domain.Account) {
	o.from(ctx).Info().
		Str("event", "account_created").
		Stringer("account_id", account.ID).
		Send()
}

// Applied logs a committed transaction and the resulting balance.
func (o *Log) Applied(ctx context.Context, tx domain.Transaction, account domain.Account) {
	o.from(ctx).Info().
		Str("event", "transaction_applied").
		Stringer("transaction_id", tx.ID).
		Stringer("account_id", tx.AccountID).
		Str("type", string(tx.Type)).
		Stringer("amount", tx.Amount).
		Stringer("balance", account.Balance).
		Send()
}

// Rejected logs a failed mutation, at error level when it was not the caller's fault.
func (o *Log) Rejected(ctx context.Context, arg domain.ApplyTransactionParams, err error) {
	l := o.from(ctx)

	e := l.Info()
	if errors.Is(err, errorspkg.ErrInternal) {
		e = l.Error()
	}

	e.Str("event", "transaction_rejected").
		Stringer("account_id", arg.AccountID).
		Str("type", string(arg.Type)).
		Stringer("amount", arg.Amount).
		Err(err).
		Send()
}
