package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ecofinds-api/internal/domain"
	"ecofinds-api/internal/events"
	cartrepo "ecofinds-api/internal/repository/cart"
	"ecofinds-api/internal/repository/idempotency"
	"go.uber.org/zap"
)

type Service struct {
	repo        cartRepo
	catalog     catalog
	idempotency idempotency.Repository
	idemTTL     time.Duration
	events      events.Publisher
	logger      *zap.Logger
	lookupLimit int
	now         func() time.Time
}

type cartRepo interface {
	Get(ctx context.Context, userID string) (*domain.Cart, error)
	AddItem(ctx context.Context, userID, productID string, quantity int) error
	SetItemQuantity(ctx context.Context, userID, itemID string, quantity int) error
	RemoveItem(ctx context.Context, userID, itemID string) error
	Clear(ctx context.Context, userID string) error
	Checkout(ctx context.Context, userID string, version int64, order domain.Order) error
}

type catalog interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

type Option func(*Service)

// WithIdempotency replays checkout results stored under client keys for ttl.
func WithIdempotency(repo idempotency.Repository, ttl time.Duration) Option {
	return func(s *Service) {
		s.idempotency = repo
		s.idemTTL = ttl
	}
}

func WithEvents(pub events.Publisher) Option {
	return func(s *Service) { s.events = pub }
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithLookupConcurrency bounds parallel catalog lookups per request.
func WithLookupConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.lookupLimit = n
		}
	}
}

func New(repo cartRepo, catalog catalog, opts ...Option) *Service {
	s := &Service{
		repo:        repo,
		catalog:     catalog,
		idempotency: idempotency.NewNop(),
		idemTTL:     24 * time.Hour,
		events:      events.NewNop(),
		logger:      zap.NewNop(),
		lookupLimit: 8,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Named("cart_service")
	return s
}

// Get returns the user's cart view. A user without a stored cart gets an
// empty view; nothing is created.
func (s *Service) Get(ctx context.Context, userID string) (*domain.CartView, error) {
	cart, err := s.repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			view := domain.NewCartView(userID, time.Time{}, nil)
			return &view, nil
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}
	lines, err := s.resolve(ctx, cart.Items)
	if err != nil {
		return nil, err
	}
	view := domain.NewCartView(userID, cart.UpdatedAt, lines)
	return &view, nil
}

// AddItem adds quantity of a product to the user's cart, creating the cart on
// first use. Quantities below one are treated as one.
func (s *Service) AddItem(ctx context.Context, userID, productID string, quantity int) (*domain.CartView, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, domain.Validation(MsgProductIDRequired)
	}
	if quantity < 1 {
		quantity = 1
	}

	product, err := s.catalog.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NotFound(MsgProductUnavailable)
		}
		return nil, fmt.Errorf("lookup product %s: %w", productID, err)
	}
	if !product.Available() {
		return nil, domain.NotFound(MsgProductUnavailable)
	}
	if product.SellerID == userID {
		return nil, domain.Conflict(MsgOwnProduct)
	}

	if err := s.repo.AddItem(ctx, userID, product.ID, quantity); err != nil {
		return nil, fmt.Errorf("add item: %w", err)
	}
	return s.Get(ctx, userID)
}

// UpdateItemQuantity sets the quantity of one cart item.
func (s *Service) UpdateItemQuantity(ctx context.Context, userID, itemID string, quantity int) (*domain.CartView, error) {
	if quantity < 1 {
		return nil, domain.Validation(MsgInvalidQuantity)
	}
	if err := s.repo.SetItemQuantity(ctx, userID, strings.TrimSpace(itemID), quantity); err != nil {
		return nil, mapStoreError(err)
	}
	return s.Get(ctx, userID)
}

func (s *Service) RemoveItem(ctx context.Context, userID, itemID string) (*domain.CartView, error) {
	if err := s.repo.RemoveItem(ctx, userID, strings.TrimSpace(itemID)); err != nil {
		return nil, mapStoreError(err)
	}
	return s.Get(ctx, userID)
}

// Clear empties the cart but keeps it. It fails when the user never had one.
func (s *Service) Clear(ctx context.Context, userID string) error {
	if err := s.repo.Clear(ctx, userID); err != nil {
		return mapStoreError(err)
	}
	return nil
}

func mapStoreError(err error) error {
	switch {
	case errors.Is(err, cartrepo.ErrCartNotFound):
		return domain.NotFound(MsgCartNotFound)
	case errors.Is(err, cartrepo.ErrItemNotFound):
		return domain.NotFound(MsgItemNotFound)
	default:
		return fmt.Errorf("cart store: %w", err)
	}
}
