package redisx

import "time"

const (
	// Full-order JSON cache: order:{order_id} -> serialized order document.
	// Dropped on every mutation, refreshed by the projector and on read miss.
	KeyOrder = "order:%s"

	// Dedup for event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLOrderCache = 5 * time.Minute
	TTLDedup      = 48 * time.Hour
)
