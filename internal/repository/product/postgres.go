package product

import (
	"context"
	"errors"
	"fmt"

	"ecofinds-api/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &postgresRepo{pool: pool, logger: logger.Named("product_repo")}
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}

	const q = `
SELECT id::text, seller_id, title, COALESCE(description, ''), COALESCE(category, ''), COALESCE(condition, ''),
       price_cents, co2_saved, images, is_active, created_at
FROM products
WHERE id = $1
`
	var p domain.Product
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&p.ID, &p.SellerID, &p.Title, &p.Description, &p.Category, &p.Condition,
		&p.PriceCents, &p.CO2Saved, &p.Images, &p.IsActive, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug("get: not found", zap.String("id", id))
			return nil, domain.ErrNotFound
		}
		r.logger.Error("get failed", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("select product: %w", err)
	}
	r.logger.Debug("get", zap.String("id", id), zap.Bool("active", p.IsActive))
	return &p, nil
}

func (r *postgresRepo) Upsert(ctx context.Context, product domain.Product) (*domain.Product, error) {
	if product.ID != "" {
		if _, err := uuid.Parse(product.ID); err != nil {
			return nil, fmt.Errorf("product repo: invalid id %q: %w", product.ID, err)
		}
	}
	if product.Images == nil {
		product.Images = []string{}
	}

	const q = `
INSERT INTO products (id, seller_id, title, description, category, condition, price_cents, co2_saved, images, is_active)
VALUES (COALESCE(NULLIF($1, '')::uuid, gen_random_uuid()), $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), $7, $8, $9, $10)
ON CONFLICT (id) DO UPDATE SET
    seller_id = EXCLUDED.seller_id,
    title = EXCLUDED.title,
    description = EXCLUDED.description,
    category = EXCLUDED.category,
    condition = EXCLUDED.condition,
    price_cents = EXCLUDED.price_cents,
    co2_saved = EXCLUDED.co2_saved,
    images = EXCLUDED.images,
    is_active = EXCLUDED.is_active,
    updated_at = now()
RETURNING id::text, created_at
`
	res := product
	err := r.pool.QueryRow(ctx, q,
		product.ID,
		product.SellerID,
		product.Title,
		product.Description,
		product.Category,
		product.Condition,
		product.PriceCents,
		product.CO2Saved,
		product.Images,
		product.IsActive,
	).Scan(&res.ID, &res.CreatedAt)
	if err != nil {
		r.logger.Error("upsert failed", zap.String("title", product.Title), zap.Error(err))
		return nil, fmt.Errorf("upsert product: %w", err)
	}
	r.logger.Debug("upserted", zap.String("id", res.ID), zap.String("seller_id", res.SellerID))
	return &res, nil
}
