package projector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/garmenttrack/go-order-tracker/internal/orders"
	"github.com/garmenttrack/go-order-tracker/internal/redisx"
)

// Service keeps the Redis order cache in step with lifecycle events. The API
// drops cache entries it mutates itself; the projector re-reads the order and
// rewrites the cached copy so follow-up reads stay warm.
type Service struct {
	Store       orders.OrderStore
	Redis       *redis.Client
	Log         *zap.Logger
	ServiceName string
}

// HandleOrderEvent is wired as the consumer handler for the lifecycle topic.
func (s *Service) HandleOrderEvent(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		// Malformed message: log and commit, a retry cannot fix it.
		s.Log.Warn("dropping malformed event", zap.Error(err))
		return nil
	}

	switch env.EventType {
	case orders.EventOrderCreated, orders.EventStatusChanged,
		orders.EventOrderCancelled, orders.EventTrackingAppended:
	default:
		return nil
	}

	dkey := fmt.Sprintf(redisx.KeyDedup, s.ServiceName, env.EventID)
	if seen, err := redisx.Seen(ctx, s.Redis, dkey, redisx.TTLDedup); err != nil {
		return err
	} else if seen {
		return nil
	}

	orderID := env.CorrelationID
	if orderID == "" {
		s.Log.Warn("event without order id", zap.String("event_type", env.EventType))
		return nil
	}

	o, err := s.Store.GetByID(ctx, orderID)
	var nf *orders.NotFoundError
	if errors.As(err, &nf) {
		// Order not visible yet or gone; drop the stale cache entry and move on.
		return s.Redis.Del(ctx, fmt.Sprintf(redisx.KeyOrder, orderID)).Err()
	}
	if err != nil {
		return err
	}

	b, err := json.Marshal(o)
	if err != nil {
		return err
	}
	if err := s.Redis.Set(ctx, fmt.Sprintf(redisx.KeyOrder, orderID), b, redisx.TTLOrderCache).Err(); err != nil {
		return err
	}

	s.Log.Debug("order cache refreshed",
		zap.String("order_id", orderID),
		zap.String("event_type", env.EventType),
		zap.String("status", string(o.Status)),
	)
	return nil
}
