// Package transactiondelivery manages delivery layer of balance mutations.
package transactiondelivery

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
	"github.com/go-petr/pet-ledger/pkg/web"
)

// Service provides service layer interface needed by transaction delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package transactiondelivery
type Service interface {
	Apply(ctx context.Context, arg domain.ApplyTransactionParams) (domain.Transaction, error)
	List(ctx context.Context, accountID uuid.UUID) ([]domain.Transaction, error)
}

// Handler facilitates transaction delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns transaction handler.
func NewHandler(ts Service) Handler {
	return Handler{service: ts}
}

// writeError maps service errors to HTTP responses.
func writeError(gctx *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidTransactionType),
		errors.Is(err, domain.ErrInsufficientFunds):
		gctx.JSON(http.StatusBadRequest, web.Error(err))
	case errors.Is(err, domain.ErrAccountNotFound):
		gctx.JSON(http.StatusNotFound, web.Error(err))
	default:
		zerolog.Ctx(gctx.Request.Context()).Error().Err(err).Send()
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
	}
}

type createRequest struct {
	AccountID string           `json:"account_id" binding:"required,uuid"`
	Amount    *decimal.Decimal `json:"amount" binding:"required"`
	Type      string           `json:"type" binding:"required,oneof=DEPOSIT WITHDRAWAL"`
}

type data struct {
	Transaction domain.Transaction `json:"transaction"`
}
type response struct {
	Data data `json:"data,omitempty"`
}

// Create handles http request to deposit or withdraw money.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req createRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: web.BindErrorMsg(err)})

		return
	}

	arg := domain.ApplyTransactionParams{
		AccountID: uuid.MustParse(req.AccountID),
		Amount:    *req.Amount,
		Type:      domain.TransactionType(req.Type),
	}

	tx, err := h.service.Apply(ctx, arg)
	if err != nil {
		writeError(gctx, err)
		return
	}

	res := response{
		Data: data{tx},
	}

	gctx.JSON(http.StatusCreated, res)
}

type listRequest struct {
	AccountID string `uri:"account_id" binding:"required,uuid"`
}

type listData struct {
	Transactions []domain.Transaction `json:"transactions"`
}
type listResponse struct {
	Data listData `json:"data,omitempty"`
}

// List handles http request to list account transactions, newest first.
func (h *Handler) List(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req listRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: web.BindErrorMsg(err)})

		return
	}

	txs, err := h.service.List(ctx, uuid.MustParse(req.AccountID))
	if err != nil {
		writeError(gctx, err)
		return
	}

	res := listResponse{
		Data: listData{txs},
	}

	gctx.JSON(http.StatusOK, res)
}
