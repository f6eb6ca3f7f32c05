package domain

import "time"

// Product is a marketplace listing as seen by the cart. Prices are in cents,
// CO2Saved is in kilograms.
type Product struct {
	ID          string    `json:"id"`
	SellerID    string    `json:"seller"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category,omitempty"`
	Condition   string    `json:"condition,omitempty"`
	PriceCents  int64     `json:"priceCents"`
	CO2Saved    float64   `json:"co2Saved"`
	Images      []string  `json:"images"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Available reports whether the listing can be put in a cart or bought.
func (p *Product) Available() bool {
	return p != nil && p.IsActive
}
