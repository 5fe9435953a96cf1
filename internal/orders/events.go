package orders

import (
	"encoding/json"
	"time"
)

// All lifecycle events share one topic; the event type rides in the envelope
// and a kafka header. Partitioning by order id keeps per-order ordering.
const TopicOrderEvents = "orders.lifecycle"

const (
	EventOrderCreated     = "OrderCreated"
	EventStatusChanged    = "OrderStatusChanged"
	EventOrderCancelled   = "OrderCancelled"
	EventTrackingAppended = "OrderTrackingAppended"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order id
	Payload       json.RawMessage `json:"payload"`
}

type OrderCreatedPayload struct {
	OrderID    string `json:"order_id"`
	UserID     string `json:"user_id"`
	ProductID  string `json:"product_id"`
	Quantity   int    `json:"quantity"`
	TotalCents int64  `json:"total_cents"`
}

type StatusChangedPayload struct {
	OrderID string `json:"order_id"`
	From    Status `json:"from"`
	To      Status `json:"to"`
}

type OrderCancelledPayload struct {
	OrderID   string    `json:"order_id"`
	ProductID string    `json:"product_id"`
	Quantity  int       `json:"quantity"` // restored to stock
	At        time.Time `json:"at"`
}

type TrackingAppendedPayload struct {
	OrderID string        `json:"order_id"`
	Entry   TrackingEntry `json:"entry"`
}

func PartitionKey(orderID string) []byte { return []byte(orderID) }
