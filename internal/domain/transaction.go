package domain

import (
	"errors"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidAmount indicates that the amount is not strictly positive or is out of range.
	ErrInvalidAmount = errors.New("amount must be positive with at most 20 integer and 18 fractional digits")
	// ErrInvalidTransactionType indicates a type other than DEPOSIT or WITHDRAWAL.
	ErrInvalidTransactionType = errors.New("transaction type must be DEPOSIT or WITHDRAWAL")
)

// Amount bounds, at most 38 significant digits in total.
const (
	MaxAmountScale         = 18
	MaxAmountIntegerDigits = 20

	// log2(10^38) < 127, so a coefficient above this many bits has too many digits.
	maxCoefficientBits = 127
)

// ValidateAmount checks that amount is positive and fits the ledger's precision.
//
// Its cost does not depend on the amount's exponent.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}

	exp := int(amount.Exponent())
	if exp < -MaxAmountScale || exp > MaxAmountIntegerDigits {
		return ErrInvalidAmount
	}

	coef := amount.Coefficient()
	if coef.BitLen() > maxCoefficientBits {
		return ErrInvalidAmount
	}

	if digits(coef)+exp > MaxAmountIntegerDigits {
		return ErrInvalidAmount
	}

	return nil
}

func digits(n *big.Int) int {
	return len(new(big.Int).Abs(n).String())
}

// TransactionType tells in which direction a transaction moves the balance.
type TransactionType string

// Supported transaction types.
const (
	Deposit    TransactionType = "DEPOSIT"
	Withdrawal TransactionType = "WITHDRAWAL"
)

// Valid reports whether t is one of the supported transaction types.
func (t TransactionType) Valid() bool {
	return t == Deposit || t == Withdrawal
}

// Transaction is an immutable record of one balance change.
type Transaction struct {
	ID        uuid.UUID       `json:"id"`
	AccountID uuid.UUID       `json:"account_id"`
	Amount    decimal.Decimal `json:"amount"` // always positive, direction is in Type
	Type      TransactionType `json:"type"`
	CreatedAt time.Time       `json:"created_at"`
}

// ApplyTransactionParams is the input data for a balance mutation.
type ApplyTransactionParams struct {
	AccountID uuid.UUID
	Amount    decimal.Decimal
	Type      TransactionType
}

// CreateTransactionParams is the input data for appending a transaction record.
type CreateTransactionParams struct {
	ID        uuid.UUID
	AccountID uuid.UUID
	Amount    decimal.Decimal
	Type      TransactionType
}

// Replay sums the given transactions starting from a zero balance.
func Replay(txs []Transaction) decimal.Decimal {
	balance := decimal.Zero

	for _, tx := range txs {
		switch tx.Type {
		case Deposit:
			balance = balance.Add(tx.Amount)
		case Withdrawal:
			balance = balance.Sub(tx.Amount)
		}
	}

	return balance
}
