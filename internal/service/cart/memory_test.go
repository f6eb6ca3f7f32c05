package cart

import (
	"context"
	"sync"
	"time"

	"ecofinds-api/internal/domain"
	cartrepo "ecofinds-api/internal/repository/cart"
	"github.com/google/uuid"
)

// memoryRepo is an in-memory cart store with the same versioning rules as the
// postgres implementation.
type memoryRepo struct {
	mu     sync.Mutex
	carts  map[string]*domain.Cart
	orders []domain.Order

	// checkoutConflicts makes the next N Checkout calls fail with a version conflict.
	checkoutConflicts int
	checkoutCalls     int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{carts: map[string]*domain.Cart{}}
}

func (m *memoryRepo) Get(_ context.Context, userID string) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.carts[userID]
	if !ok {
		return nil, cartrepo.ErrCartNotFound
	}
	cp := *c
	cp.Items = append([]domain.CartItem{}, c.Items...)
	return &cp, nil
}

func (m *memoryRepo) AddItem(_ context.Context, userID, productID string, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.carts[userID]
	if !ok {
		c = &domain.Cart{ID: uuid.NewString(), UserID: userID, CreatedAt: time.Now()}
		m.carts[userID] = c
	}
	c.Version++
	c.UpdatedAt = time.Now()
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity += quantity
			return nil
		}
	}
	c.Items = append(c.Items, domain.CartItem{ID: uuid.NewString(), ProductID: productID, Quantity: quantity, AddedAt: time.Now()})
	return nil
}

func (m *memoryRepo) SetItemQuantity(_ context.Context, userID, itemID string, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.carts[userID]
	if !ok {
		return cartrepo.ErrCartNotFound
	}
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			c.Items[i].Quantity = quantity
			c.Version++
			return nil
		}
	}
	return cartrepo.ErrItemNotFound
}

func (m *memoryRepo) RemoveItem(_ context.Context, userID, itemID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.carts[userID]
	if !ok {
		return cartrepo.ErrCartNotFound
	}
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			c.Version++
			return nil
		}
	}
	return cartrepo.ErrItemNotFound
}

func (m *memoryRepo) Clear(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.carts[userID]
	if !ok {
		return cartrepo.ErrCartNotFound
	}
	c.Items = nil
	c.Version++
	return nil
}

func (m *memoryRepo) Checkout(_ context.Context, userID string, version int64, order domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checkoutCalls++
	if m.checkoutConflicts > 0 {
		m.checkoutConflicts--
		return cartrepo.ErrVersionConflict
	}
	c, ok := m.carts[userID]
	if !ok || c.Version != version {
		return cartrepo.ErrVersionConflict
	}
	c.Items = nil
	c.Version++
	m.orders = append(m.orders, order)
	return nil
}

type stubCatalog struct {
	mu       sync.Mutex
	products map[string]*domain.Product
	err      error
}

func newStubCatalog(products ...domain.Product) *stubCatalog {
	c := &stubCatalog{products: map[string]*domain.Product{}}
	for _, p := range products {
		c.put(p)
	}
	return c
}

func (c *stubCatalog) put(p domain.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := p
	c.products[p.ID] = &cp
}

func (c *stubCatalog) GetByID(_ context.Context, id string) (*domain.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	p, ok := c.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

type stubIdempotency struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (s *stubIdempotency) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *stubIdempotency) Set(_ context.Context, key string, payload []byte, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		s.data = map[string][]byte{}
	}
	s.data[key] = payload
	return nil
}

type stubPublisher struct {
	orders []domain.Order
	err    error
}

func (p *stubPublisher) OrderPlaced(_ context.Context, order domain.Order) error {
	p.orders = append(p.orders, order)
	return p.err
}
