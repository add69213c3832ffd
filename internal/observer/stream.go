package observer

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-ledger/internal/domain"
)

const publishTimeout = time.Second

// Stream publishes committed ledger events to a Redis stream.
//
// Publishing happens after commit, so a failed XADD is logged and never
// reported back to the caller.
type Stream struct {
	client redis.Cmdable
	stream string
	maxLen int64
}

// NewStream returns a Stream observer appending to the given stream key,
// trimmed to roughly maxLen entries. A non-positive maxLen disables trimming.
func NewStream(client redis.Cmdable, stream string, maxLen int64) *Stream {
	return &Stream{
		client: client,
		stream: stream,
		maxLen: maxLen,
	}
}

func (s *Stream) publish(ctx context.Context, values map[string]any) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	args := &redis.XAddArgs{
		Stream: s.stream,
		Values: values,
	}

	if s.maxLen > 0 {
		args.MaxLen = s.maxLen
		args.Approx = true
	}

	if err := s.client.XAdd(ctx, args).Err(); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("stream", s.stream).Msg("cannot publish ledger event")
	}
}

// AccountCreated publishes an account_created event.
func (s *Stream) AccountCreated(ctx context.Context, account domain.Account) {
	s.publish(ctx, map[string]any{
		"event":      "account_created",
		"account_id": account.ID.String(),
		"created_at": account.CreatedAt.UTC().Format(time.RFC3339Nano),
	})
}

// Applied publishes a transaction_applied event.
func (s *Stream) Applied(ctx context.Context, tx domain.Transaction, account domain.Account) {
	s.publish(ctx, map[string]any{
		"event":          "transaction_applied",
		"transaction_id": tx.ID.String(),
		"account_id":     tx.AccountID.String(),
		"type":           string(tx.Type),
		"amount":         tx.Amount.String(),
		"balance":        account.Balance.String(),
		"created_at":     tx.CreatedAt.UTC().Format(time.RFC3339Nano),
	})
}

// Rejected is a no-op: only committed changes are published.
func (s *Stream) Rejected(context.Context, domain.ApplyTransactionParams, error) {}
