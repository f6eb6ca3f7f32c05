package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ecofinds-api/internal/domain"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

const TypeOrderPlaced = "order.placed"

// Publisher announces orders after they were committed.
type Publisher interface {
	OrderPlaced(ctx context.Context, order domain.Order) error
}

// SNSAPI is the subset of the SNS client used here.
type SNSAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type OrderPlacedEvent struct {
	Type          string           `json:"type"`
	OrderID       string           `json:"orderId"`
	OrderNumber   string           `json:"orderNumber"`
	BuyerID       string           `json:"buyerId"`
	Items         []OrderEventItem `json:"items"`
	TotalCents    int64            `json:"totalCents"`
	TotalCO2Saved float64          `json:"totalCO2Saved"`
	PaymentMethod string           `json:"paymentMethod"`
	PlacedAt      time.Time        `json:"placedAt"`
}

type OrderEventItem struct {
	ProductID  string `json:"productId"`
	SellerID   string `json:"sellerId"`
	Quantity   int    `json:"quantity"`
	PriceCents int64  `json:"priceCents"`
}

func NewOrderPlacedEvent(order domain.Order) OrderPlacedEvent {
	items := make([]OrderEventItem, 0, len(order.Items))
	for _, it := range order.Items {
		items = append(items, OrderEventItem{
			ProductID:  it.ProductID,
			SellerID:   it.SellerID,
			Quantity:   it.Quantity,
			PriceCents: it.PriceCents,
		})
	}
	return OrderPlacedEvent{
		Type:          TypeOrderPlaced,
		OrderID:       order.ID,
		OrderNumber:   order.Number,
		BuyerID:       order.BuyerID,
		Items:         items,
		TotalCents:    order.TotalCents,
		TotalCO2Saved: order.TotalCO2Saved,
		PaymentMethod: string(order.PaymentMethod),
		PlacedAt:      order.CreatedAt,
	}
}

type snsPublisher struct {
	client   SNSAPI
	topicARN string
}

func NewSNS(client SNSAPI, topicARN string) Publisher {
	return &snsPublisher{client: client, topicARN: topicARN}
}

func (p *snsPublisher) OrderPlaced(ctx context.Context, order domain.Order) error {
	body, err := json.Marshal(NewOrderPlacedEvent(order))
	if err != nil {
		return fmt.Errorf("marshal order event: %w", err)
	}
	_, err = p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Message:  aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"type": {DataType: aws.String("String"), StringValue: aws.String(TypeOrderPlaced)},
		},
	})
	if err != nil {
		return fmt.Errorf("sns publish to %s: %w", p.topicARN, err)
	}
	return nil
}

type nopPublisher struct{}

// NewNop returns a Publisher that drops every event.
func NewNop() Publisher {
	return nopPublisher{}
}

func (nopPublisher) OrderPlaced(context.Context, domain.Order) error {
	return nil
}
