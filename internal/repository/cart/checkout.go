package cart

import (
	"context"
	"errors"
	"fmt"

	"ecofinds-api/internal/domain"
	"github.com/jackc/pgx/v5"
)

func (r *postgresRepo) Checkout(ctx context.Context, userID string, version int64, order domain.Order) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var cartID string
	err = tx.QueryRow(ctx, `
UPDATE carts
SET version = version + 1,
    updated_at = now()
WHERE user_id = $1 AND version = $2
RETURNING id::text
`, userID, version).Scan(&cartID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrVersionConflict
		}
		return fmt.Errorf("lock cart: %w", err)
	}

	if _, err := tx.Exec(ctx, `
INSERT INTO orders (id, order_number, buyer_id, total_cents, total_co2_saved, shipping_address, payment_method, notes, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
`,
		order.ID,
		order.Number,
		order.BuyerID,
		order.TotalCents,
		order.TotalCO2Saved,
		order.ShippingAddress,
		string(order.PaymentMethod),
		order.Notes,
		order.Status,
		order.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	batch := &pgx.Batch{}
	for i, item := range order.Items {
		batch.Queue(`
INSERT INTO order_items (order_id, position, product_id, seller_id, title, quantity, price_cents, co2_saved)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`, order.ID, i+1, item.ProductID, item.SellerID, item.Title, item.Quantity, item.PriceCents, item.CO2Saved)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert order items: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}

	return tx.Commit(ctx)
}
