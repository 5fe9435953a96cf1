package orders

import "time"

// Order is the single document this service owns. Product attributes are
// denormalized at creation time so later catalog edits never rewrite history.
type Order struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	BuyerEmail      string          `json:"buyer_email"`
	BuyerName       string          `json:"buyer_name"`
	ProductID       string          `json:"product_id"`
	ProductName     string          `json:"product_name"`
	ProductImage    string          `json:"product_image"`
	ProductCategory string          `json:"product_category"`
	UnitPriceCents  int64           `json:"unit_price_cents"`
	Quantity        int             `json:"quantity"`
	TotalCents      int64           `json:"total_cents"`
	ContactNumber   string          `json:"contact_number"`
	DeliveryAddress string          `json:"delivery_address"`
	AdditionalNotes string          `json:"additional_notes"`
	PaymentMethod   string          `json:"payment_method"`
	Status          Status          `json:"status"`
	Tracking        []TrackingEntry `json:"tracking"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	CancelledAt     *time.Time      `json:"cancelled_at,omitempty"`
}

// TrackingEntry is one immutable fulfillment record. Entries are only ever
// appended, oldest first.
type TrackingEntry struct {
	Status   Status    `json:"status"`
	Date     time.Time `json:"date"`
	Location string    `json:"location"`
	Notes    string    `json:"notes"`
}

// Locations stamped on tracking entries when the caller supplies none.
const (
	LocationOrigin  = "Online Store" // initial entry at creation
	LocationFactory = "Factory"      // tracking annotations
	LocationUnknown = "Unknown"      // status transitions
)

const DefaultPaymentMethod = "Cash on Delivery"

// TrackingOrdered is the label of the entry written at creation. It is a
// tracking label only, not an order status.
const TrackingOrdered = "ordered"

// ListFilter drives the admin listing: optional status filter, free-text
// search over product name / buyer name / buyer email, page starting at 1.
type ListFilter struct {
	Status Status
	Search string
	Page   int
	Limit  int
}

func (f ListFilter) normalized() ListFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 10
	}
	return f
}

// Pages computes the page count for a total under this filter's limit.
func (f ListFilter) Pages(total int) int {
	f = f.normalized()
	return (total + f.Limit - 1) / f.Limit
}
