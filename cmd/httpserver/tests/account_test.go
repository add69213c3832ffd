//go:build integration

package tests

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/internal/integrationtest"
	"github.com/go-petr/pet-ledger/internal/integrationtest/helpers"
	"github.com/go-petr/pet-ledger/pkg/web"
)

var compareDecimal = cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })

func TestCreateAccountAPI(t *testing.T) {
	server := integrationtest.SetupServer(t)

	req, err := http.NewRequest(http.MethodPost, "/accounts", nil)
	if err != nil {
		t.Fatalf("Creating request error: %v", err)
	}

	recorder := httptest.NewRecorder()
	server.ServeHTTP(recorder, req)

	if got := recorder.Code; got != http.StatusCreated {
		t.Fatalf("Status code: got %v, want %v", got, http.StatusCreated)
	}

	type payload struct {
		Account domain.Account `json:"account"`
	}

	res := web.Response{Data: &payload{}}
	if err := json.NewDecoder(recorder.Body).Decode(&res); err != nil {
		t.Fatalf("Decoding response body error: %v", err)
	}

	got := res.Data.(*payload).Account
	want := domain.Account{
		Balance:   decimal.Zero,
		CreatedAt: time.Now(),
	}

	opts := cmp.Options{
		cmpopts.IgnoreFields(domain.Account{}, "ID"),
		cmpopts.EquateApproxTime(5 * time.Second),
		compareDecimal,
	}
	if diff := cmp.Diff(want, got, opts); diff != "" {
		t.Errorf("res.Data mismatch (-want +got):\n%s", diff)
	}

	if got.ID == uuid.Nil {
		t.Errorf("account.ID is nil")
	}
}

func TestGetBalanceAPI(t *testing.T) {
	server := integrationtest.SetupServer(t)
	account := helpers.SeedAccountWithBalance(t, server.DB, "123.45")

	testCases := []struct {
		name           string
		id             string
		wantStatusCode int
		wantBalance    decimal.Decimal
		wantError      string
	}{
		{
			name:           "OK",
			id:             account.ID.String(),
			wantStatusCode: http.StatusOK,
			wantBalance:    decimal.RequireFromString("123.45"),
		},
		{
			name:           "NotFound",
			id:             uuid.NewString(),
			wantStatusCode: http.StatusNotFound,
			wantError:      domain.ErrAccountNotFound.Error(),
		},
		{
			name:           "InvalidID",
			id:             "42",
			wantStatusCode: http.StatusBadRequest,
			wantError:      "ID must be a valid UUID",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodGet, "/accounts/"+tc.id, nil)
			if err != nil {
				t.Fatalf("Creating request error: %v", err)
			}

			recorder := httptest.NewRecorder()
			server.ServeHTTP(recorder, req)

			if got := recorder.Code; got != tc.wantStatusCode {
				t.Errorf("Status code: got %v, want %v", got, tc.wantStatusCode)
			}

			type payload struct {
				Balance decimal.Decimal `json:"balance"`
			}

			res := web.Response{Data: &payload{}}
			if err := json.NewDecoder(recorder.Body).Decode(&res); err != nil {
				t.Fatalf("Decoding response body error: %v", err)
			}

			if tc.wantError != "" {
				if res.Error != tc.wantError {
					t.Errorf(`res.Error=%q, want %q`, res.Error, tc.wantError)
				}

				return
			}

			if got := res.Data.(*payload).Balance; !got.Equal(tc.wantBalance) {
				t.Errorf("balance=%v, want %v", got, tc.wantBalance)
			}
		})
	}
}
