// Package helpers provides seeding helpers shared by integration tests.
package helpers

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-ledger/internal/accountrepo"
	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/internal/transactionrepo"
	"github.com/go-petr/pet-ledger/pkg/dbpkg"
)

// SeedAccount creates an Account with zero balance.
func SeedAccount(t *testing.T, db dbpkg.SQLInterface) domain.Account {
	t.Helper()

	accountRepo := accountrepo.NewRepoPGS(db)

	id := uuid.New()

	account, err := accountRepo.Create(context.Background(), id)
	if err != nil {
		t.Fatalf("accountRepo.Create(context.Background(), %v) returned error: %v", id, err)
	}

	return account
}

// SeedDeposit records a deposit of amount and raises the account balance accordingly,
// keeping the balance consistent with the transaction history.
func SeedDeposit(t *testing.T, db dbpkg.SQLInterface, account domain.Account, amount string) (domain.Account, domain.Transaction) {
	t.Helper()

	ctx := context.Background()
	value := decimal.RequireFromString(amount)

	arg := domain.CreateTransactionParams{
		ID:        uuid.New(),
		AccountID: account.ID,
		Amount:    value,
		Type:      domain.Deposit,
	}

	tx, err := transactionrepo.NewRepoPGS(db).Create(ctx, arg)
	if err != nil {
		t.Fatalf("transactionRepo.Create(ctx, %+v) returned error: %v", arg, err)
	}

	updated, err := accountrepo.NewRepoPGS(db).UpdateBalance(ctx, account.ID, account.Balance.Add(value))
	if err != nil {
		t.Fatalf("accountRepo.UpdateBalance(ctx, %v) returned error: %v", account.ID, err)
	}

	return updated, tx
}

// SeedAccountWithBalance creates an Account funded by a single deposit.
func SeedAccountWithBalance(t *testing.T, db dbpkg.SQLInterface, amount string) domain.Account {
	t.Helper()

	account, _ := SeedDeposit(t, db, SeedAccount(t, db), amount)

	return account
}
