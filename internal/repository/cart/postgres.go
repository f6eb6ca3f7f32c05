package cart

import (
	"context"
	"errors"
	"fmt"

	"ecofinds-api/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	const cartQuery = `
SELECT id::text, user_id, version, created_at, updated_at
FROM carts
WHERE user_id = $1
`
	var cart domain.Cart
	err := r.pool.QueryRow(ctx, cartQuery, userID).Scan(
		&cart.ID,
		&cart.UserID,
		&cart.Version,
		&cart.CreatedAt,
		&cart.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("select cart: %w", err)
	}

	const itemsQuery = `
SELECT id::text, product_id, quantity, added_at
FROM cart_items
WHERE cart_id = $1
ORDER BY added_at ASC, id ASC
`
	rows, err := r.pool.Query(ctx, itemsQuery, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("select cart items: %w", err)
	}
	defer rows.Close()

	cart.Items = []domain.CartItem{}
	for rows.Next() {
		var item domain.CartItem
		if err := rows.Scan(&item.ID, &item.ProductID, &item.Quantity, &item.AddedAt); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		cart.Items = append(cart.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cart items: %w", err)
	}

	return &cart, nil
}

func (r *postgresRepo) AddItem(ctx context.Context, userID, productID string, quantity int) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var cartID string
	err = tx.QueryRow(ctx, `
INSERT INTO carts (user_id)
VALUES ($1)
ON CONFLICT (user_id) DO UPDATE
SET version = carts.version + 1,
    updated_at = now()
RETURNING id::text
`, userID).Scan(&cartID)
	if err != nil {
		return fmt.Errorf("upsert cart: %w", err)
	}

	if _, err := tx.Exec(ctx, `
INSERT INTO cart_items (cart_id, product_id, quantity)
VALUES ($1, $2, $3)
ON CONFLICT (cart_id, product_id) DO UPDATE
SET quantity = cart_items.quantity + EXCLUDED.quantity
`, cartID, productID, quantity); err != nil {
		return fmt.Errorf("upsert cart item: %w", err)
	}

	return tx.Commit(ctx)
}

func (r *postgresRepo) SetItemQuantity(ctx context.Context, userID, itemID string, quantity int) error {
	return r.mutateItem(ctx, userID, itemID, `
UPDATE cart_items
SET quantity = $3
WHERE cart_id = $1 AND id = $2
`, quantity)
}

func (r *postgresRepo) RemoveItem(ctx context.Context, userID, itemID string) error {
	return r.mutateItem(ctx, userID, itemID, `
DELETE FROM cart_items
WHERE cart_id = $1 AND id = $2
`)
}

func (r *postgresRepo) Clear(ctx context.Context, userID string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	cartID, err := lockCart(ctx, tx, userID)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return fmt.Errorf("delete cart items: %w", err)
	}
	return tx.Commit(ctx)
}

// mutateItem runs stmt against one item of the user's cart. stmt receives the
// cart id as $1 and the item id as $2, followed by args.
func (r *postgresRepo) mutateItem(ctx context.Context, userID, itemID, stmt string, args ...any) error {
	if _, err := uuid.Parse(itemID); err != nil {
		// Still distinguish a missing cart from a malformed item id.
		if _, err := r.Get(ctx, userID); err != nil {
			return err
		}
		return ErrItemNotFound
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	cartID, err := lockCart(ctx, tx, userID)
	if err != nil {
		return err
	}

	cmd, err := tx.Exec(ctx, stmt, append([]any{cartID, itemID}, args...)...)
	if err != nil {
		return fmt.Errorf("update cart item: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return tx.Commit(ctx)
}

// lockCart bumps the version of the user's cart, holding its row lock until
// the transaction ends so that mutations of one cart are serialized.
func lockCart(ctx context.Context, tx pgx.Tx, userID string) (string, error) {
	var cartID string
	err := tx.QueryRow(ctx, `
UPDATE carts
SET version = version + 1,
    updated_at = now()
WHERE user_id = $1
RETURNING id::text
`, userID).Scan(&cartID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrCartNotFound
		}
		return "", fmt.Errorf("lock cart: %w", err)
	}
	return cartID, nil
}
