package seed

import (
	"context"
	"fmt"

	"ecofinds-api/internal/domain"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

// Demo identities. Tokens for these users can be minted with JWT_SECRET to
// exercise the cart against the seeded catalog.
const (
	DemoSellerID = "seller-demo-1"
	DemoBuyerID  = "buyer-demo-1"
)

// Products is the demo catalog. Ids are fixed so Apply is idempotent.
var Products = []domain.Product{
	{
		ID:          "3f1c9a52-6a0e-4c1b-9a57-0d5c0f5e2a01",
		SellerID:    DemoSellerID,
		Title:       "Refurbished Desk Lamp",
		Description: "Brass desk lamp with a new cable and switch",
		Category:    "home",
		Condition:   "good",
		PriceCents:  1999,
		CO2Saved:    2.5,
		Images:      []string{"/uploads/demo-lamp.jpg"},
		IsActive:    true,
	},
	{
		ID:          "3f1c9a52-6a0e-4c1b-9a57-0d5c0f5e2a02",
		SellerID:    DemoSellerID,
		Title:       "Secondhand Denim Jacket",
		Description: "Size M, lightly worn",
		Category:    "clothing",
		Condition:   "like_new",
		PriceCents:  3450,
		CO2Saved:    12,
		IsActive:    true,
	},
	{
		ID:          "3f1c9a52-6a0e-4c1b-9a57-0d5c0f5e2a03",
		SellerID:    "seller-demo-2",
		Title:       "Oak Bookshelf",
		Description: "Solid oak, five shelves",
		Category:    "furniture",
		Condition:   "fair",
		PriceCents:  7500,
		CO2Saved:    40.75,
		IsActive:    true,
	},
	{
		ID:          "3f1c9a52-6a0e-4c1b-9a57-0d5c0f5e2a04",
		SellerID:    "seller-demo-2",
		Title:       "Sold Bicycle",
		Description: "Listing kept for history",
		Category:    "sports",
		Condition:   "good",
		PriceCents:  12000,
		CO2Saved:    95,
		IsActive:    false,
	},
}

// Apply upserts the demo catalog for manual testing.
func Apply(ctx context.Context, products ProductWriter) error {
	for _, p := range Products {
		if _, err := products.Upsert(ctx, p); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.Title, err)
		}
	}
	return nil
}
