package projector

import (
	"context"
	"testing"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	kafkax "github.com/garmenttrack/go-order-tracker/internal/kafka"
	"github.com/garmenttrack/go-order-tracker/internal/orders"
)

// Messages that cannot be processed must still be committed, otherwise the
// consumer wedges on a poison message. These paths run before any Redis or
// store access, so no fakes are needed.

func TestHandleOrderEvent_MalformedMessageCommits(t *testing.T) {
	s := &Service{Log: zap.NewNop(), ServiceName: "test"}
	err := s.HandleOrderEvent(context.Background(), kafkago.Message{Value: []byte("not json")})
	assert.NoError(t, err)
}

func TestHandleOrderEvent_ForeignEventTypeIgnored(t *testing.T) {
	s := &Service{Log: zap.NewNop(), ServiceName: "test"}
	env := orders.Envelope{
		EventID:   "ev-1",
		EventType: "SomethingElse",
	}
	err := s.HandleOrderEvent(context.Background(), kafkago.Message{Value: kafkax.MustMarshal(env)})
	assert.NoError(t, err)
}
