package catalog

import "time"

// Product is owned by the catalog. The order core reads it for validation and
// mutates only available_quantity, through the inventory ledger.
type Product struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	Category        string    `json:"category"`
	PriceCents      int64     `json:"price_cents"`
	AvailableQty    int       `json:"available_quantity"`
	MinimumOrderQty int       `json:"minimum_order_quantity"`
	ImageURL        string    `json:"image_url"`
	DemoVideoLink   string    `json:"demo_video_link"`
	ShowOnHome      bool      `json:"show_on_home"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// MinOrder returns the minimum order quantity, defaulting to 1 when unset.
func (p *Product) MinOrder() int {
	if p.MinimumOrderQty < 1 {
		return 1
	}
	return p.MinimumOrderQty
}
