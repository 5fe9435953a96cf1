package orders

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/garmenttrack/go-order-tracker/internal/catalog"
	kafkax "github.com/garmenttrack/go-order-tracker/internal/kafka"
)

// OrderStore is what the service needs from persistence. *Repo implements it;
// tests substitute fakes.
type OrderStore interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	ListByEmail(ctx context.Context, email string) ([]Order, error)
	ListPending(ctx context.Context) ([]Order, error)
	ListInProgress(ctx context.Context) ([]Order, error)
	List(ctx context.Context, f ListFilter) ([]Order, int, error)
	UpdateStatus(ctx context.Context, id string, from, to Status, entry TrackingEntry) error
	AppendTracking(ctx context.Context, id string, entry TrackingEntry) error
	Cancel(ctx context.Context, id string, entry TrackingEntry, now time.Time) (*Order, error)
}

// ProductSource is the read-only catalog lookup used at validation time.
type ProductSource interface {
	GetByID(ctx context.Context, id string) (*catalog.Product, error)
}

// Publisher matches the kafka producer's fire-and-forget Publish.
type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

// Service is the order lifecycle engine: the sole writer of order state and
// the sole caller of inventory mutation.
type Service struct {
	Store    OrderStore
	Products ProductSource
	Events   Publisher // optional
	Name     string

	now func() time.Time
}

func NewService(store OrderStore, products ProductSource, events Publisher, name string) *Service {
	return &Service{
		Store:    store,
		Products: products,
		Events:   events,
		Name:     name,
		now:      time.Now,
	}
}

// Create validates the request, then reserves stock and persists the order as
// one atomic unit in the store.
func (s *Service) Create(ctx context.Context, in *CreateOrderInput) (*Order, error) {
	if missing := in.missingFields(); len(missing) > 0 {
		return nil, Invalid("missing required fields", missing...)
	}
	if _, err := uuid.Parse(in.ProductID); err != nil {
		// Reject before the lookup; a malformed id would otherwise fail the
		// uuid bind in Postgres and surface as an internal error.
		return nil, Invalid("invalid product id format", "product_id")
	}

	p, err := s.Products.GetByID(ctx, in.ProductID)
	if errors.Is(err, catalog.ErrProductNotFound) {
		return nil, NotFound("product")
	}
	if err != nil {
		return nil, internal("load product", err)
	}

	o, err := ValidateDraft(in, p, s.now().UTC())
	if err != nil {
		return nil, err
	}

	if err := s.Store.Create(ctx, o); err != nil {
		return nil, err
	}

	s.publish(EventOrderCreated, o.ID, OrderCreatedPayload{
		OrderID:    o.ID,
		UserID:     o.UserID,
		ProductID:  o.ProductID,
		Quantity:   o.Quantity,
		TotalCents: o.TotalCents,
	})
	return o, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Order, error) {
	return s.Store.GetByID(ctx, id)
}

// ListByUser looks orders up by user id, falling back to the buyer email when
// the id yields nothing. Some orders were recorded under the email only.
func (s *Service) ListByUser(ctx context.Context, userID, email string) ([]Order, error) {
	out, err := s.Store.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 && email != "" {
		return s.Store.ListByEmail(ctx, email)
	}
	return out, nil
}

func (s *Service) ListByEmail(ctx context.Context, email string) ([]Order, error) {
	return s.Store.ListByEmail(ctx, email)
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]Order, int, error) {
	return s.Store.List(ctx, f)
}

func (s *Service) ListPending(ctx context.Context) ([]Order, error) {
	return s.Store.ListPending(ctx)
}

func (s *Service) ListInProgress(ctx context.Context) ([]Order, error) {
	return s.Store.ListInProgress(ctx)
}

// UpdateStatus advances an order along the strict transition order and appends
// exactly one tracking entry. No inventory side effect: stock moves only at
// creation and cancellation.
func (s *Service) UpdateStatus(ctx context.Context, id string, target Status, notes, location string) error {
	if !ValidStatus(target) {
		return Invalid(ReasonInvalidStatus, "status")
	}

	o, err := s.Store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !CanTransition(o.Status, target) {
		return &ConflictError{Reason: ReasonInvalidTransition}
	}

	entry := TrackingEntry{
		Status:   target,
		Date:     s.now().UTC(),
		Location: defaulted(location, LocationUnknown),
		Notes:    notes,
	}
	if err := s.Store.UpdateStatus(ctx, id, o.Status, target, entry); err != nil {
		return err
	}

	s.publish(EventStatusChanged, id, StatusChangedPayload{OrderID: id, From: o.Status, To: target})
	return nil
}

// AppendTracking records an intermediate fulfillment note. The label is free
// text ("left warehouse") and the order's status does not move.
func (s *Service) AppendTracking(ctx context.Context, id string, label Status, notes, location string) error {
	if label == "" {
		return Invalid(ReasonInvalidStatus, "status")
	}

	entry := TrackingEntry{
		Status:   label,
		Date:     s.now().UTC(),
		Location: defaulted(location, LocationFactory),
		Notes:    notes,
	}
	if err := s.Store.AppendTracking(ctx, id, entry); err != nil {
		return err
	}

	s.publish(EventTrackingAppended, id, TrackingAppendedPayload{OrderID: id, Entry: entry})
	return nil
}

// Cancel is legal only while the order is still pending. The store restores
// the reserved quantity in the same transaction that flips the status, so a
// second cancel always fails the pending guard.
func (s *Service) Cancel(ctx context.Context, id string) (*Order, error) {
	now := s.now().UTC()
	entry := TrackingEntry{
		Status:   StatusCancelled,
		Date:     now,
		Location: LocationOrigin,
		Notes:    "Order cancelled by buyer",
	}
	o, err := s.Store.Cancel(ctx, id, entry, now)
	if err != nil {
		return nil, err
	}

	s.publish(EventOrderCancelled, id, OrderCancelledPayload{
		OrderID:   o.ID,
		ProductID: o.ProductID,
		Quantity:  o.Quantity,
		At:        now,
	})
	return o, nil
}

func (s *Service) publish(eventType, orderID string, payload any) {
	if s.Events == nil {
		return
	}
	env := Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    s.now().UTC(),
		Producer:      s.Name,
		CorrelationID: orderID,
		Payload:       kafkax.MustMarshal(payload),
	}
	s.Events.Publish(PartitionKey(orderID), kafkax.MustMarshal(env),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func defaulted(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
