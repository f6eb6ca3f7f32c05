package product

import (
	"context"

	"ecofinds-api/internal/domain"
)

// Repository is the catalog lookup used by carts. GetByID returns
// domain.ErrNotFound for unknown or malformed ids.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

// Store is a catalog that can also be written by the importer and seed tools.
type Store interface {
	Repository
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}
