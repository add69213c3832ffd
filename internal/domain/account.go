// Package domain provides defenitions of all entities.
package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrAccountNotFound indicates that the account is not found.
	ErrAccountNotFound = errors.New("account not found")
	// ErrInsufficientFunds indicates that the account balance does not cover the withdrawal.
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// Account holds the current balance of a single ledger account.
type Account struct {
	ID        uuid.UUID       `json:"id"`
	Balance   decimal.Decimal `json:"balance"` // never negative
	CreatedAt time.Time       `json:"created_at"`
}

// Apply returns the account with amount deposited or withdrawn.
//
// The receiver is left untouched. A withdrawal that would drive the balance
// below zero fails with ErrInsufficientFunds.
func (a Account) Apply(amount decimal.Decimal, t TransactionType) (Account, error) {
	if err := ValidateAmount(amount); err != nil {
		return a, err
	}

	switch t {
	case Deposit:
		a.Balance = a.Balance.Add(amount)
	case Withdrawal:
		if a.Balance.LessThan(amount) {
			return a, ErrInsufficientFunds
		}
		a.Balance = a.Balance.Sub(amount)
	default:
		return a, ErrInvalidTransactionType
	}

	return a, nil
}
