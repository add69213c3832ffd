package memstore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
)

func seedAccount(t *testing.T, s *Store) domain.Account {
	t.Helper()

	account, err := s.Create(context.Background(), uuid.New())
	require.NoError(t, err)

	return account
}

func deposit(ctx context.Context, s *Store, id uuid.UUID, amount string) error {
	return s.RunAtomic(ctx, func(ctx context.Context, u domain.Unit) error {
		account, err := u.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}

		next, err := account.Apply(decimal.RequireFromString(amount), domain.Deposit)
		if err != nil {
			return err
		}

		if _, err := u.UpdateBalance(ctx, id, next.Balance); err != nil {
			return err
		}

		_, err = u.CreateTransaction(ctx, domain.CreateTransactionParams{
			ID:        uuid.New(),
			AccountID: id,
			Amount:    decimal.RequireFromString(amount),
			Type:      domain.Deposit,
		})

		return err
	})
}

func TestCreateAndGet(t *testing.T) {
	s := New()
	ctx := context.Background()

	account := seedAccount(t, s)
	require.True(t, account.Balance.IsZero())
	require.NotZero(t, account.CreatedAt)

	got, err := s.Get(ctx, account.ID)
	require.NoError(t, err)
	require.Equal(t, account, got)

	_, err = s.Create(ctx, account.ID)
	require.ErrorIs(t, err, errorspkg.ErrInternal)

	_, err = s.Get(ctx, uuid.New())
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestRunAtomicCommit(t *testing.T) {
	s := New()
	ctx := context.Background()
	account := seedAccount(t, s)

	require.NoError(t, deposit(ctx, s, account.ID, "100"))
	require.NoError(t, deposit(ctx, s, account.ID, "0.5"))

	got, err := s.Get(ctx, account.ID)
	require.NoError(t, err)
	require.True(t, got.Balance.Equal(decimal.RequireFromString("100.5")))

	txs, err := s.List(ctx, account.ID)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	require.True(t, txs[0].Amount.Equal(decimal.RequireFromString("0.5")), "newest first")
	require.True(t, txs[0].CreatedAt.After(txs[1].CreatedAt))
}

func TestRunAtomicRollback(t *testing.T) {
	s := New()
	ctx := context.Background()
	account := seedAccount(t, s)
	errBoom := errors.New("boom")

	err := s.RunAtomic(ctx, func(ctx context.Context, u domain.Unit) error {
		if _, err := u.UpdateBalance(ctx, account.ID, decimal.RequireFromString("500")); err != nil {
			return err
		}

		if _, err := u.CreateTransaction(ctx, domain.CreateTransactionParams{
			ID:        uuid.New(),
			AccountID: account.ID,
			Amount:    decimal.RequireFromString("500"),
			Type:      domain.Deposit,
		}); err != nil {
			return err
		}

		return errBoom
	})
	require.ErrorIs(t, err, errBoom)

	got, err := s.Get(ctx, account.ID)
	require.NoError(t, err)
	require.True(t, got.Balance.IsZero())

	txs, err := s.List(ctx, account.ID)
	require.NoError(t, err)
	require.Empty(t, txs)

	// The lock is released on rollback.
	require.NoError(t, deposit(ctx, s, account.ID, "1"))
}

func TestUnitSeesOwnWrites(t *testing.T) {
	s := New()
	ctx := context.Background()
	account := seedAccount(t, s)

	err := s.RunAtomic(ctx, func(ctx context.Context, u domain.Unit) error {
		_, err := u.UpdateBalance(ctx, account.ID, decimal.RequireFromString("7"))
		require.NoError(t, err)

		staged, err := u.GetForUpdate(ctx, account.ID)
		require.NoError(t, err)
		require.True(t, staged.Balance.Equal(decimal.RequireFromString("7")))

		committed, err := s.Get(ctx, account.ID)
		require.NoError(t, err)
		require.True(t, committed.Balance.IsZero(), "staged writes must stay invisible")

		return nil
	})
	require.NoError(t, err)
}

func TestUnitConstraints(t *testing.T) {
	s := New()
	ctx := context.Background()
	account := seedAccount(t, s)

	err := s.RunAtomic(ctx, func(ctx context.Context, u domain.Unit) error {
		_, err := u.UpdateBalance(ctx, account.ID, decimal.RequireFromString("-1"))
		return err
	})
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)

	err = s.RunAtomic(ctx, func(ctx context.Context, u domain.Unit) error {
		_, err := u.GetForUpdate(ctx, uuid.New())
		return err
	})
	require.ErrorIs(t, err, domain.ErrAccountNotFound)

	err = s.RunAtomic(ctx, func(ctx context.Context, u domain.Unit) error {
		_, err := u.CreateTransaction(ctx, domain.CreateTransactionParams{
			ID:        uuid.New(),
			AccountID: account.ID,
			Amount:    decimal.Zero,
			Type:      domain.Deposit,
		})
		return err
	})
	require.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestLockTimeout(t *testing.T) {
	s := New()
	account := seedAccount(t, s)

	locked := make(chan struct{})
	done := make(chan struct{})

	go func() {
		_ = s.RunAtomic(context.Background(), func(ctx context.Context, u domain.Unit) error {
			if _, err := u.GetForUpdate(ctx, account.ID); err != nil {
				return err
			}
			close(locked)
			<-done
			return nil
		})
	}()

	<-locked

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := deposit(ctx, s, account.ID, "1")
	require.ErrorIs(t, err, errorspkg.ErrTimeout)

	close(done)

	require.Eventually(t, func() bool {
		return deposit(context.Background(), s, account.ID, "1") == nil
	}, time.Second, 10*time.Millisecond)
}

func TestCreateTransactionWaitsForLock(t *testing.T) {
	s := New()
	account := seedAccount(t, s)

	locked := make(chan struct{})
	done := make(chan struct{})
	finished := make(chan error, 1)

	go func() {
		finished <- s.RunAtomic(context.Background(), func(ctx context.Context, u domain.Unit) error {
			if _, err := u.GetForUpdate(ctx, account.ID); err != nil {
				return err
			}
			close(locked)
			<-done
			return nil
		})
	}()

	<-locked

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := s.RunAtomic(ctx, func(ctx context.Context, u domain.Unit) error {
		_, err := u.CreateTransaction(ctx, domain.CreateTransactionParams{
			ID:        uuid.New(),
			AccountID: account.ID,
			Amount:    decimal.RequireFromString("1"),
			Type:      domain.Deposit,
		})
		return err
	})
	require.ErrorIs(t, err, errorspkg.ErrTimeout)

	close(done)
	require.NoError(t, <-finished)

	txs, err := s.List(context.Background(), account.ID)
	require.NoError(t, err)
	require.Empty(t, txs)

	err = s.RunAtomic(context.Background(), func(ctx context.Context, u domain.Unit) error {
		_, err := u.CreateTransaction(ctx, domain.CreateTransactionParams{
			ID:        uuid.New(),
			AccountID: uuid.New(),
			Amount:    decimal.RequireFromString("1"),
			Type:      domain.Deposit,
		})
		return err
	})
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestIndependentAccountsDoNotBlock(t *testing.T) {
	s := New()
	a := seedAccount(t, s)
	b := seedAccount(t, s)

	locked := make(chan struct{})
	done := make(chan struct{})
	finished := make(chan error, 1)

	go func() {
		finished <- s.RunAtomic(context.Background(), func(ctx context.Context, u domain.Unit) error {
			if _, err := u.GetForUpdate(ctx, a.ID); err != nil {
				return err
			}
			close(locked)
			<-done
			return nil
		})
	}()

	<-locked

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	require.NoError(t, deposit(ctx, s, b.ID, "10"))

	close(done)
	require.NoError(t, <-finished)

	got, err := s.Get(context.Background(), a.ID)
	require.NoError(t, err)
	require.True(t, got.Balance.IsZero())
}

func TestConcurrentDeposits(t *testing.T) {
	s := New()
	account := seedAccount(t, s)

	const n = 50

	var wg sync.WaitGroup

	errs := make(chan error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()
			errs <- deposit(context.Background(), s, account.ID, "10")
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	got, err := s.Get(context.Background(), account.ID)
	require.NoError(t, err)
	require.True(t, got.Balance.Equal(decimal.NewFromInt(10*n)), "balance = %s", got.Balance)

	txs, err := s.List(context.Background(), account.ID)
	require.NoError(t, err)
	require.Len(t, txs, n)

	for i := 1; i < len(txs); i++ {
		require.True(t, txs[i-1].CreatedAt.After(txs[i].CreatedAt))
	}
}

func TestStampIsMonotonic(t *testing.T) {
	s := New()

	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	account := seedAccount(t, s)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, deposit(ctx, s, account.ID, "1"))
	}

	txs, err := s.List(ctx, account.ID)
	require.NoError(t, err)
	require.Len(t, txs, 3)
	require.True(t, txs[0].CreatedAt.After(txs[1].CreatedAt))
	require.True(t, txs[1].CreatedAt.After(txs[2].CreatedAt))
}

func TestListUnknownAccount(t *testing.T) {
	txs, err := New().List(context.Background(), uuid.New())
	require.NoError(t, err)
	require.NotNil(t, txs)
	require.Empty(t, txs)
}
