package orders

import (
	"time"

	"github.com/garmenttrack/go-order-tracker/internal/catalog"
	"github.com/google/uuid"
)

// CreateOrderInput is the schema-validated create request. Legacy clients sent
// the quantity under two names; that fallback is one explicit normalization
// step here, not scattered through the handlers.
type CreateOrderInput struct {
	UserID          string `json:"user_id"`
	ProductID       string `json:"product_id"`
	Quantity        int    `json:"quantity"`
	OrderQuantity   int    `json:"order_quantity,omitempty"` // legacy alias for quantity
	TotalCents      int64  `json:"total_cents"`
	BuyerEmail      string `json:"buyer_email"`
	BuyerName       string `json:"buyer_name"`
	ContactNumber   string `json:"contact_number"`
	DeliveryAddress string `json:"delivery_address"`
	AdditionalNotes string `json:"additional_notes"`
	PaymentMethod   string `json:"payment_method"`
}

func (in *CreateOrderInput) quantity() int {
	if in.Quantity != 0 {
		return in.Quantity
	}
	return in.OrderQuantity
}

// missingFields lists every required field absent from the input.
func (in *CreateOrderInput) missingFields() []string {
	var missing []string
	if in.UserID == "" {
		missing = append(missing, "user_id")
	}
	if in.ProductID == "" {
		missing = append(missing, "product_id")
	}
	if in.quantity() == 0 {
		missing = append(missing, "quantity")
	}
	if in.TotalCents == 0 {
		missing = append(missing, "total_cents")
	}
	if in.BuyerEmail == "" {
		missing = append(missing, "buyer_email")
	}
	if in.BuyerName == "" {
		missing = append(missing, "buyer_name")
	}
	return missing
}

// ValidateDraft checks in against the referenced product and returns a
// normalized order draft ready for persistence. The stock check here gives the
// caller a precise rejection; the ledger re-checks atomically at reserve time.
func ValidateDraft(in *CreateOrderInput, p *catalog.Product, now time.Time) (*Order, error) {
	if missing := in.missingFields(); len(missing) > 0 {
		return nil, Invalid("missing required fields", missing...)
	}

	qty := in.quantity()
	if qty < 1 {
		return nil, Invalid("quantity must be at least 1", "quantity")
	}
	if qty > p.AvailableQty {
		return nil, &ConflictError{Reason: ReasonInsufficientStock, Requested: qty, Available: p.AvailableQty}
	}
	if qty < p.MinOrder() {
		return nil, Invalid(ReasonBelowMinimum, "quantity")
	}

	total := in.TotalCents
	if total <= 0 {
		total = int64(qty) * p.PriceCents
	}

	payment := in.PaymentMethod
	if payment == "" {
		payment = DefaultPaymentMethod
	}

	return &Order{
		ID:              uuid.NewString(),
		UserID:          in.UserID,
		BuyerEmail:      in.BuyerEmail,
		BuyerName:       in.BuyerName,
		ProductID:       p.ID,
		ProductName:     p.Name,
		ProductImage:    p.ImageURL,
		ProductCategory: p.Category,
		UnitPriceCents:  p.PriceCents,
		Quantity:        qty,
		TotalCents:      total,
		ContactNumber:   in.ContactNumber,
		DeliveryAddress: in.DeliveryAddress,
		AdditionalNotes: in.AdditionalNotes,
		PaymentMethod:   payment,
		Status:          StatusPending,
		Tracking: []TrackingEntry{{
			Status:   TrackingOrdered,
			Date:     now,
			Location: LocationOrigin,
			Notes:    "Order placed successfully",
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
