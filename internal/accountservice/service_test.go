package accountservice

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
)

func randomAccount(balance string) domain.Account {
	return domain.Account{
		ID:        uuid.New(),
		Balance:   decimal.RequireFromString(balance),
		CreatedAt: time.Now().Truncate(time.Second).UTC(),
	}
}

func TestCreate(t *testing.T) {
	testAccount := randomAccount("0")

	testCases := []struct {
		name          string
		buildStubs    func(repo *MockRepo, obs *MockObserver)
		checkResponse func(account domain.Account, err error)
	}{
		{
			name: "OK",
			buildStubs: func(repo *MockRepo, obs *MockObserver) {
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).
					Times(1).
					Return(testAccount, nil)
				obs.EXPECT().AccountCreated(gomock.Any(), gomock.Eq(testAccount)).Times(1)
			},
			checkResponse: func(account domain.Account, err error) {
				require.NoError(t, err)
				require.Equal(t, testAccount, account)
				require.True(t, account.Balance.IsZero())
			},
		},
		{
			name: "InternalError",
			buildStubs: func(repo *MockRepo, obs *MockObserver) {
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.Account{}, errorspkg.ErrInternal)
				obs.EXPECT().AccountCreated(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(account domain.Account, err error) {
				require.ErrorIs(t, err, errorspkg.ErrInternal)
				require.Empty(t, account)
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := NewMockRepo(ctrl)
			obs := NewMockObserver(ctrl)
			tc.buildStubs(repo, obs)

			service := New(repo, obs)
			account, err := service.Create(context.Background())
			tc.checkResponse(account, err)
		})
	}
}

func TestCreateGeneratesDistinctIDs(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := NewMockRepo(ctrl)
	obs := NewMockObserver(ctrl)

	var ids []uuid.UUID

	repo.EXPECT().Create(gomock.Any(), gomock.Any()).
		Times(2).
		DoAndReturn(func(_ context.Context, id uuid.UUID) (domain.Account, error) {
			ids = append(ids, id)
			return domain.Account{ID: id}, nil
		})
	obs.EXPECT().AccountCreated(gomock.Any(), gomock.Any()).Times(2)

	service := New(repo, obs)

	_, err := service.Create(context.Background())
	require.NoError(t, err)
	_, err = service.Create(context.Background())
	require.NoError(t, err)

	require.Len(t, ids, 2)
	require.NotEqual(t, uuid.Nil, ids[0])
	require.NotEqual(t, ids[0], ids[1])
}

func TestBalance(t *testing.T) {
	testAccount := randomAccount("100.5")

	testCases := []struct {
		name        string
		buildStubs  func(repo *MockRepo)
		wantBalance decimal.Decimal
		wantErr     error
	}{
		{
			name: "OK",
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().Get(gomock.Any(), gomock.Eq(testAccount.ID)).
					Times(1).
					Return(testAccount, nil)
			},
			wantBalance: testAccount.Balance,
		},
		{
			name: "AccountNotFound",
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().Get(gomock.Any(), gomock.Eq(testAccount.ID)).
					Times(1).
					Return(domain.Account{}, domain.ErrAccountNotFound)
			},
			wantBalance: decimal.Zero,
			wantErr:     domain.ErrAccountNotFound,
		},
		{
			name: "InternalError",
			buildStubs: func(repo *MockRepo) {
				repo.EXPECT().Get(gomock.Any(), gomock.Eq(testAccount.ID)).
					Times(1).
					Return(domain.Account{}, errorspkg.ErrInternal)
			},
			wantBalance: decimal.Zero,
			wantErr:     errorspkg.ErrInternal,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := NewMockRepo(ctrl)
			tc.buildStubs(repo)

			service := New(repo, NewMockObserver(ctrl))

			balance, err := service.Balance(context.Background(), testAccount.ID)
			require.ErrorIs(t, err, tc.wantErr)
			require.True(t, tc.wantBalance.Equal(balance), "balance = %s, want %s", balance, tc.wantBalance)
		})
	}
}

func TestGetRecordsSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)

	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := NewMockRepo(ctrl)
	id := uuid.New()

	repo.EXPECT().Get(gomock.Any(), gomock.Eq(id)).
		Times(1).
		Return(domain.Account{}, domain.ErrAccountNotFound)

	_, err := New(repo, NewMockObserver(ctrl)).Get(context.Background(), id)
	require.ErrorIs(t, err, domain.ErrAccountNotFound)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	require.Equal(t, "accountservice.Get", spans[0].Name())
	require.Equal(t, codes.Error, spans[0].Status().Code)
}
