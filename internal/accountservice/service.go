// Package accountservice manages business logic layer of accounts.
package accountservice

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/go-petr/pet-ledger/internal/domain"
)

const tracerName = "github.com/go-petr/pet-ledger/internal/accountservice"

// Repo provides data access layer interface needed by account service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package accountservice
type Repo interface {
	Create(ctx context.Context, id uuid.UUID) (domain.Account, error)
	Get(ctx context.Context, id uuid.UUID) (domain.Account, error)
}

// Observer is notified about newly created accounts.
type Observer interface {
	AccountCreated(ctx context.Context, account domain.Account)
}

// Service facilitates account service layer logic.
type Service struct {
	repo     Repo
	observer Observer
}

// New returns account service struct to manage account bussines logic.
func New(ar Repo, obs Observer) *Service {
	return &Service{
		repo:     ar,
		observer: obs,
	}
}

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	span.End()
}

// Create creates and returns an account with zero balance.
func (s *Service) Create(ctx context.Context) (account domain.Account, err error) {
	ctx, span := startSpan(ctx, "accountservice.Create")
	defer func() { endSpan(span, err) }()

	account, err = s.repo.Create(ctx, uuid.New())
	if err != nil {
		return domain.Account{}, err
	}

	span.SetAttributes(attribute.String("account.id", account.ID.String()))
	s.observer.AccountCreated(ctx, account)

	return account, nil
}

// Get returns the last committed state of the account with the given id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (account domain.Account, err error) {
	ctx, span := startSpan(ctx, "accountservice.Get", attribute.String("account.id", id.String()))
	defer func() { endSpan(span, err) }()

	account, err = s.repo.Get(ctx, id)
	if err != nil {
		return domain.Account{}, err
	}

	return account, nil
}

// Balance returns the current balance of the account with the given id.
func (s *Service) Balance(ctx context.Context, id uuid.UUID) (decimal.Decimal, error) {
	account, err := s.Get(ctx, id)
	if err != nil {
		return decimal.Zero, err
	}

	return account.Balance, nil
}
