package helpers

import (
	"time"

	"github.com/google/uuid"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/randompkg"
)

// RandomAccount returns an in-memory Account with a random balance.
func RandomAccount() domain.Account {
	return domain.Account{
		ID:        uuid.New(),
		Balance:   randompkg.MoneyAmountBetween(1_000, 10_000),
		CreatedAt: time.Now().Truncate(time.Second).UTC(),
	}
}

// RandomTransaction returns an in-memory Transaction of the given type against accountID.
func RandomTransaction(accountID uuid.UUID, txType domain.TransactionType) domain.Transaction {
	return domain.Transaction{
		ID:        uuid.New(),
		AccountID: accountID,
		Amount:    randompkg.MoneyAmountBetween(1, 1_000),
		Type:      txType,
		CreatedAt: time.Now().Truncate(time.Second).UTC(),
	}
}
