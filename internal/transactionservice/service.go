// Package transactionservice manages business logic layer of balance mutations.
package transactionservice

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
)

const tracerName = "github.com/go-petr/pet-ledger/internal/transactionservice"

// Repo provides data access layer interface needed by transaction service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package transactionservice
//go:generate mockgen -destination unit_mock.go -package transactionservice github.com/go-petr/pet-ledger/internal/domain Unit
type Repo interface {
	// RunAtomic runs fn in a single unit that is committed only if fn returns nil.
	RunAtomic(ctx context.Context, fn domain.AtomicFunc) error
	List(ctx context.Context, accountID uuid.UUID) ([]domain.Transaction, error)
}

// AccountService provides plain account reads.
type AccountService interface {
	Get(ctx context.Context, id uuid.UUID) (domain.Account, error)
}

// Observer is notified about the outcome of every mutation.
type Observer interface {
	Applied(ctx context.Context, tx domain.Transaction, account domain.Account)
	Rejected(ctx context.Context, arg domain.ApplyTransactionParams, err error)
}

// Service facilitates transaction service layer logic.
type Service struct {
	repo           Repo
	accountService AccountService
	observer       Observer
	timeout        time.Duration
}

// New return transaction service struct to manage balance mutations.
//
// timeout bounds the whole operation, the advisory read and the wait for
// the account lock included; zero leaves it to the caller's context.
func New(tr Repo, as AccountService, obs Observer, timeout time.Duration) *Service {
	return &Service{
		repo:           tr,
		accountService: as,
		observer:       obs,
		timeout:        timeout,
	}
}

// Apply deposits or withdraws arg.Amount and returns the recorded transaction.
//
// The balance update and the transaction record are committed together
// while the account row is locked. Calls for the same account are
// serialized, calls for different accounts do not wait for each other.
func (s *Service) Apply(ctx context.Context, arg domain.ApplyTransactionParams) (domain.Transaction, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "transactionservice.Apply",
		trace.WithAttributes(
			attribute.String("account.id", arg.AccountID.String()),
			attribute.String("transaction.type", string(arg.Type)),
			attribute.String("transaction.amount", arg.Amount.String()),
		))
	defer span.End()

	t, account, err := s.apply(ctx, arg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.observer.Rejected(ctx, arg, err)

		return domain.Transaction{}, err
	}

	span.SetAttributes(attribute.String("transaction.id", t.ID.String()))
	s.observer.Applied(ctx, t, account)

	return t, nil
}

func (s *Service) validRequest(ctx context.Context, arg domain.ApplyTransactionParams) error {
	if err := domain.ValidateAmount(arg.Amount); err != nil {
		return err
	}

	if !arg.Type.Valid() {
		return domain.ErrInvalidTransactionType
	}

	// Advisory only, the authoritative check runs under the lock.
	account, err := s.accountService.Get(ctx, arg.AccountID)
	if err != nil {
		return classify(ctx, err)
	}

	if _, err := account.Apply(arg.Amount, arg.Type); err != nil {
		return err
	}

	return nil
}

func (s *Service) apply(ctx context.Context, arg domain.ApplyTransactionParams) (domain.Transaction, domain.Account, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	if err := s.validRequest(ctx, arg); err != nil {
		return domain.Transaction{}, domain.Account{}, err
	}

	var (
		t       domain.Transaction
		account domain.Account
	)

	err := s.repo.RunAtomic(ctx, func(ctx context.Context, u domain.Unit) error {
		locked, err := u.GetForUpdate(ctx, arg.AccountID)
		if err != nil {
			return err
		}

		next, err := locked.Apply(arg.Amount, arg.Type)
		if err != nil {
			return err
		}

		account, err = u.UpdateBalance(ctx, next.ID, next.Balance)
		if err != nil {
			return err
		}

		t, err = u.CreateTransaction(ctx, domain.CreateTransactionParams{
			ID:        uuid.New(),
			AccountID: arg.AccountID,
			Amount:    arg.Amount,
			Type:      arg.Type,
		})

		return err
	})
	if err != nil {
		return domain.Transaction{}, domain.Account{}, classify(ctx, err)
	}

	return t, account, nil
}

// List returns the account's transactions, newest first.
//
// An existing account without activity yields an empty slice.
func (s *Service) List(ctx context.Context, accountID uuid.UUID) (txs []domain.Transaction, err error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "transactionservice.List",
		trace.WithAttributes(attribute.String("account.id", accountID.String())))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if _, err := s.accountService.Get(ctx, accountID); err != nil {
		return nil, classify(ctx, err)
	}

	txs, err = s.repo.List(ctx, accountID)
	if err != nil {
		return nil, classify(ctx, err)
	}

	if txs == nil {
		txs = []domain.Transaction{}
	}

	span.SetAttributes(attribute.Int("transactions.count", len(txs)))

	return txs, nil
}

var callerErrors = []error{
	domain.ErrInvalidAmount,
	domain.ErrInvalidTransactionType,
	domain.ErrAccountNotFound,
	domain.ErrInsufficientFunds,
}

// classify reduces any error to one of the ledger sentinels.
//
// Anything outside the taxonomy is logged and reported as ErrInternal.
func classify(ctx context.Context, err error) error {
	for _, target := range callerErrors {
		if errors.Is(err, target) {
			return target
		}
	}

	if errors.Is(err, errorspkg.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return errorspkg.ErrTimeout
	}

	if errors.Is(err, errorspkg.ErrInternal) {
		return errorspkg.ErrInternal
	}

	zerolog.Ctx(ctx).Error().Err(err).Msg("unexpected store error")

	return errorspkg.ErrInternal
}
