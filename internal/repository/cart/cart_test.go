package cart

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"ecofinds-api/internal/domain"
	"ecofinds-api/internal/migrate"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
)

func TestPostgres_AddItemMergesQuantities(t *testing.T) {
	ctx := context.Background()
	repo, _ := setupRepo(ctx, t)

	if _, err := repo.Get(ctx, "user-1"); !errors.Is(err, ErrCartNotFound) {
		t.Fatalf("expected ErrCartNotFound before first add, got %v", err)
	}

	if err := repo.AddItem(ctx, "user-1", "prod-a", 2); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if err := repo.AddItem(ctx, "user-1", "prod-a", 3); err != nil {
		t.Fatalf("AddItem again: %v", err)
	}
	if err := repo.AddItem(ctx, "user-1", "prod-b", 1); err != nil {
		t.Fatalf("AddItem other: %v", err)
	}

	cart, err := repo.Get(ctx, "user-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(cart.Items) != 2 {
		t.Fatalf("expected 2 items, got %+v", cart.Items)
	}
	if cart.Items[0].ProductID != "prod-a" || cart.Items[0].Quantity != 5 {
		t.Fatalf("expected prod-a x5 first, got %+v", cart.Items[0])
	}
	if cart.Version != 3 {
		t.Fatalf("expected version 3 after three adds, got %d", cart.Version)
	}
}

func TestPostgres_ConcurrentAddsDoNotLoseUpdates(t *testing.T) {
	ctx := context.Background()
	repo, _ := setupRepo(ctx, t)

	const workers = 20
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			return repo.AddItem(gctx, "user-race", "prod-a", 1)
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent adds: %v", err)
	}

	cart, err := repo.Get(ctx, "user-race")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(cart.Items) != 1 || cart.Items[0].Quantity != workers {
		t.Fatalf("expected one item with quantity %d, got %+v", workers, cart.Items)
	}
}

func TestPostgres_ItemMutations(t *testing.T) {
	ctx := context.Background()
	repo, _ := setupRepo(ctx, t)

	if err := repo.SetItemQuantity(ctx, "nobody", uuid.NewString(), 2); !errors.Is(err, ErrCartNotFound) {
		t.Fatalf("expected ErrCartNotFound, got %v", err)
	}
	if err := repo.AddItem(ctx, "user-1", "prod-a", 1); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if err := repo.SetItemQuantity(ctx, "user-1", uuid.NewString(), 2); !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
	if err := repo.RemoveItem(ctx, "user-1", "not-a-uuid"); !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound for malformed id, got %v", err)
	}

	cart, err := repo.Get(ctx, "user-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	itemID := cart.Items[0].ID

	if err := repo.SetItemQuantity(ctx, "user-1", itemID, 7); err != nil {
		t.Fatalf("SetItemQuantity: %v", err)
	}
	cart, _ = repo.Get(ctx, "user-1")
	if cart.Items[0].Quantity != 7 {
		t.Fatalf("expected quantity 7, got %d", cart.Items[0].Quantity)
	}

	// Items of another user's cart are invisible.
	if err := repo.AddItem(ctx, "user-2", "prod-b", 1); err != nil {
		t.Fatalf("AddItem user-2: %v", err)
	}
	if err := repo.RemoveItem(ctx, "user-2", itemID); !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound across users, got %v", err)
	}

	if err := repo.RemoveItem(ctx, "user-1", itemID); err != nil {
		t.Fatalf("RemoveItem: %v", err)
	}
	cart, _ = repo.Get(ctx, "user-1")
	if len(cart.Items) != 0 {
		t.Fatalf("expected empty cart, got %+v", cart.Items)
	}
}

func TestPostgres_ClearKeepsCart(t *testing.T) {
	ctx := context.Background()
	repo, _ := setupRepo(ctx, t)

	if err := repo.Clear(ctx, "user-1"); !errors.Is(err, ErrCartNotFound) {
		t.Fatalf("expected ErrCartNotFound, got %v", err)
	}
	if err := repo.AddItem(ctx, "user-1", "prod-a", 2); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if err := repo.Clear(ctx, "user-1"); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	cart, err := repo.Get(ctx, "user-1")
	if err != nil {
		t.Fatalf("expected cart to survive clear, got %v", err)
	}
	if len(cart.Items) != 0 {
		t.Fatalf("expected no items, got %+v", cart.Items)
	}
	if err := repo.Clear(ctx, "user-1"); err != nil {
		t.Fatalf("clearing an empty cart: %v", err)
	}
}

func TestPostgres_CheckoutPersistsOrderAndEmptiesCart(t *testing.T) {
	ctx := context.Background()
	repo, pool := setupRepo(ctx, t)

	if err := repo.AddItem(ctx, "buyer", "prod-a", 2); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	cart, err := repo.Get(ctx, "buyer")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	order := testOrder("buyer")
	if err := repo.Checkout(ctx, "buyer", cart.Version, order); err != nil {
		t.Fatalf("Checkout: %v", err)
	}

	after, err := repo.Get(ctx, "buyer")
	if err != nil {
		t.Fatalf("Get after checkout: %v", err)
	}
	if len(after.Items) != 0 {
		t.Fatalf("expected cart emptied, got %+v", after.Items)
	}

	var total int64
	var items int
	if err := pool.QueryRow(ctx, `SELECT total_cents, (SELECT count(*) FROM order_items WHERE order_id = $1) FROM orders WHERE id = $1`, order.ID).Scan(&total, &items); err != nil {
		t.Fatalf("select order: %v", err)
	}
	if total != order.TotalCents || items != 1 {
		t.Fatalf("unexpected order row total=%d items=%d", total, items)
	}
}

func TestPostgres_CheckoutStaleVersionLeavesCartUntouched(t *testing.T) {
	ctx := context.Background()
	repo, pool := setupRepo(ctx, t)

	if err := repo.AddItem(ctx, "buyer", "prod-a", 2); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	cart, _ := repo.Get(ctx, "buyer")
	if err := repo.AddItem(ctx, "buyer", "prod-b", 1); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	order := testOrder("buyer")
	if err := repo.Checkout(ctx, "buyer", cart.Version, order); !errors.Is(err, ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict, got %v", err)
	}

	after, _ := repo.Get(ctx, "buyer")
	if len(after.Items) != 2 {
		t.Fatalf("expected both items kept, got %+v", after.Items)
	}
	var orders int
	if err := pool.QueryRow(ctx, `SELECT count(*) FROM orders`).Scan(&orders); err != nil {
		t.Fatalf("count orders: %v", err)
	}
	if orders != 0 {
		t.Fatalf("expected no order rows, got %d", orders)
	}
}

func testOrder(buyer string) domain.Order {
	return domain.Order{
		ID:      uuid.NewString(),
		Number:  "ECO-TEST-" + uuid.NewString()[:8],
		BuyerID: buyer,
		Items: []domain.OrderItem{
			{ProductID: "prod-a", SellerID: "seller", Title: "Lamp", Quantity: 2, PriceCents: 1000, CO2Saved: 1.5},
		},
		TotalCents:      2000,
		TotalCO2Saved:   3,
		ShippingAddress: domain.ShippingAddress{Street: "1 Main", City: "Springfield", ZipCode: "12345"},
		PaymentMethod:   domain.PaymentCreditCard,
		Status:          domain.OrderStatusPending,
		CreatedAt:       time.Now().UTC(),
	}
}

func setupRepo(ctx context.Context, t *testing.T) (Repository, *pgxpool.Pool) {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(pool.Close)

	if _, err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	if _, err := pool.Exec(ctx, `TRUNCATE order_items, orders, cart_items, carts RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
	return NewPostgres(pool), pool
}
