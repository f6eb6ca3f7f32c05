package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"ecofinds-api/internal/domain"
	cartrepo "ecofinds-api/internal/repository/cart"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// checkoutAttempts bounds re-reads when the cart changes between read and commit.
const checkoutAttempts = 3

type CheckoutInput struct {
	ShippingAddress domain.ShippingAddress
	PaymentMethod   string
	Notes           string
	// IdempotencyKey, when set, makes repeated submissions return the first result.
	IdempotencyKey string
}

type CheckoutResult struct {
	Message string       `json:"message"`
	Order   domain.Order `json:"order"`
}

// Checkout turns the cart into an order. The order is persisted and the cart
// emptied in one transaction; any unavailable product aborts the whole checkout.
func (s *Service) Checkout(ctx context.Context, userID string, in CheckoutInput) (*CheckoutResult, error) {
	if !in.ShippingAddress.Present() {
		return nil, domain.Validation(MsgShippingRequired)
	}
	method := domain.PaymentMethod(strings.TrimSpace(in.PaymentMethod))
	if method == "" {
		method = domain.PaymentCreditCard
	}
	if !method.Valid() {
		return nil, domain.Validation(MsgInvalidPayment)
	}

	idemKey := ""
	if k := strings.TrimSpace(in.IdempotencyKey); k != "" {
		idemKey = "checkout:" + userID + ":" + k
		if res, ok := s.replay(ctx, idemKey); ok {
			return res, nil
		}
	}

	var (
		order domain.Order
		err   error
	)
	for attempt := 1; attempt <= checkoutAttempts; attempt++ {
		order, err = s.checkoutOnce(ctx, userID, method, in)
		if !errors.Is(err, cartrepo.ErrVersionConflict) {
			break
		}
		s.logger.Warn("checkout raced with a cart update", zap.String("user_id", userID), zap.Int("attempt", attempt))
	}
	if errors.Is(err, cartrepo.ErrVersionConflict) {
		return nil, domain.Conflict(MsgCartChanged)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("order placed",
		zap.String("user_id", userID),
		zap.String("order_id", order.ID),
		zap.Int("items", len(order.Items)),
		zap.Int64("total_cents", order.TotalCents),
	)

	if err := s.events.OrderPlaced(ctx, order); err != nil {
		s.logger.Error("publish order placed", zap.String("order_id", order.ID), zap.Error(err))
	}

	res := &CheckoutResult{Message: MsgCheckoutSuccessful, Order: order}
	if idemKey != "" {
		s.remember(ctx, idemKey, res)
	}
	return res, nil
}

func (s *Service) checkoutOnce(ctx context.Context, userID string, method domain.PaymentMethod, in CheckoutInput) (domain.Order, error) {
	cart, err := s.repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Order{}, domain.Validation(MsgCartEmpty)
		}
		return domain.Order{}, fmt.Errorf("get cart: %w", err)
	}
	if len(cart.Items) == 0 {
		return domain.Order{}, domain.Validation(MsgCartEmpty)
	}

	lines, err := s.resolve(ctx, cart.Items)
	if err != nil {
		return domain.Order{}, err
	}

	var unavailable []string
	for _, line := range lines {
		if line.Product.Available() {
			continue
		}
		title := line.Item.ProductID
		if line.Product != nil {
			title = line.Product.Title
		}
		unavailable = append(unavailable, title)
	}
	if len(unavailable) > 0 {
		return domain.Order{}, domain.Conflict(MsgItemsUnavailable, unavailable...)
	}

	view := domain.NewCartView(userID, cart.UpdatedAt, lines)
	now := s.now().UTC()
	id := uuid.New()

	order := domain.Order{
		ID:              id.String(),
		Number:          orderNumber(now.Format("20060102"), id),
		BuyerID:         userID,
		Items:           make([]domain.OrderItem, 0, len(lines)),
		TotalCents:      view.TotalCents,
		TotalCO2Saved:   view.TotalCO2Saved,
		ShippingAddress: in.ShippingAddress,
		PaymentMethod:   method,
		Notes:           strings.TrimSpace(in.Notes),
		Status:          domain.OrderStatusPending,
		CreatedAt:       now,
	}
	for _, line := range lines {
		order.Items = append(order.Items, domain.OrderItem{
			ProductID:  line.Product.ID,
			SellerID:   line.Product.SellerID,
			Title:      line.Product.Title,
			Quantity:   line.Item.Quantity,
			PriceCents: line.Product.PriceCents,
			CO2Saved:   line.Product.CO2Saved,
		})
	}

	if err := s.repo.Checkout(ctx, userID, cart.Version, order); err != nil {
		if errors.Is(err, cartrepo.ErrVersionConflict) {
			return domain.Order{}, err
		}
		return domain.Order{}, fmt.Errorf("commit checkout: %w", err)
	}
	return order, nil
}

func orderNumber(day string, id uuid.UUID) string {
	suffix := strings.ToUpper(strings.ReplaceAll(id.String(), "-", "")[:8])
	return "ECO-" + day + "-" + suffix
}

func (s *Service) replay(ctx context.Context, key string) (*CheckoutResult, bool) {
	payload, ok, err := s.idempotency.Get(ctx, key)
	if err != nil {
		s.logger.Warn("idempotency lookup failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var res CheckoutResult
	if err := json.Unmarshal(payload, &res); err != nil {
		s.logger.Warn("idempotency payload unreadable", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return &res, true
}

func (s *Service) remember(ctx context.Context, key string, res *CheckoutResult) {
	payload, err := json.Marshal(res)
	if err != nil {
		s.logger.Warn("idempotency encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.idempotency.Set(ctx, key, payload, s.idemTTL); err != nil {
		s.logger.Warn("idempotency store failed", zap.String("key", key), zap.Error(err))
	}
}
