package domain

import "time"

// Cart is the stored cart of one user. Items keep insertion order and hold at
// most one entry per product.
type Cart struct {
	ID        string
	UserID    string
	Version   int64
	Items     []CartItem
	CreatedAt time.Time
	UpdatedAt time.Time
}

type CartItem struct {
	ID        string
	ProductID string
	Quantity  int
	AddedAt   time.Time
}

// CartLine is a cart item joined with the current catalog record.
type CartLine struct {
	Item    CartItem
	Product *Product
}

// CartView is the presentation of a cart: only lines whose product is still
// available, with totals computed over those lines.
type CartView struct {
	UserID        string
	Lines         []CartLine
	TotalItems    int
	TotalCents    int64
	TotalCO2Saved float64
	UpdatedAt     time.Time
}

// NewCartView filters out unavailable lines and computes totals.
func NewCartView(userID string, updatedAt time.Time, lines []CartLine) CartView {
	view := CartView{UserID: userID, UpdatedAt: updatedAt, Lines: make([]CartLine, 0, len(lines))}
	for _, line := range lines {
		if !line.Product.Available() {
			continue
		}
		view.Lines = append(view.Lines, line)
		view.TotalItems += line.Item.Quantity
		view.TotalCents += line.Product.PriceCents * int64(line.Item.Quantity)
		view.TotalCO2Saved += line.Product.CO2Saved * float64(line.Item.Quantity)
	}
	return view
}
