package cart

import (
	"context"
	"errors"
	"fmt"

	"ecofinds-api/internal/domain"
)

var (
	ErrCartNotFound = fmt.Errorf("cart %w", domain.ErrNotFound)
	ErrItemNotFound = fmt.Errorf("cart item %w", domain.ErrNotFound)
	// ErrVersionConflict is returned by Checkout when the cart changed after it was read.
	ErrVersionConflict = errors.New("cart version conflict")
)

// Repository stores one cart per user. Every mutation bumps the cart version.
type Repository interface {
	Get(ctx context.Context, userID string) (*domain.Cart, error)
	// AddItem creates the cart if needed and adds quantity to the product's line.
	AddItem(ctx context.Context, userID, productID string, quantity int) error
	SetItemQuantity(ctx context.Context, userID, itemID string, quantity int) error
	RemoveItem(ctx context.Context, userID, itemID string) error
	Clear(ctx context.Context, userID string) error
	// Checkout persists order and empties the cart in one transaction, provided
	// the cart is still at version.
	Checkout(ctx context.Context, userID string, version int64, order domain.Order) error
}
