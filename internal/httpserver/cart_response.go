package httpserver

import (
	"time"

	"ecofinds-api/internal/domain"
)

type cartResponse struct {
	User          string             `json:"user"`
	Items         []cartItemResponse `json:"items"`
	TotalItems    int                `json:"totalItems"`
	TotalPrice    float64            `json:"totalPrice"`
	TotalCO2Saved float64            `json:"totalCO2Saved"`
	UpdatedAt     *time.Time         `json:"updatedAt,omitempty"`
}

type cartItemResponse struct {
	ID       string          `json:"id"`
	Product  productResponse `json:"product"`
	Quantity int             `json:"quantity"`
	AddedAt  time.Time       `json:"addedAt"`
}

type productResponse struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Price    float64  `json:"price"`
	Images   []string `json:"images"`
	CO2Saved float64  `json:"co2Saved"`
	IsActive bool     `json:"isActive"`
	Seller   string   `json:"seller"`
}

type checkoutResponse struct {
	Message       string        `json:"message"`
	OrderData     orderResponse `json:"orderData"`
	TotalAmount   float64       `json:"totalAmount"`
	TotalCO2Saved float64       `json:"totalCO2Saved"`
}

type orderResponse struct {
	ID              string                 `json:"id"`
	OrderNumber     string                 `json:"orderNumber"`
	Buyer           string                 `json:"buyer"`
	Items           []orderItemResponse    `json:"items"`
	TotalAmount     float64                `json:"totalAmount"`
	TotalCO2Saved   float64                `json:"totalCO2Saved"`
	ShippingAddress domain.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string                 `json:"paymentMethod"`
	Notes           string                 `json:"notes"`
	Status          string                 `json:"status"`
	CreatedAt       time.Time              `json:"createdAt"`
}

type orderItemResponse struct {
	Product  string  `json:"product"`
	Seller   string  `json:"seller"`
	Title    string  `json:"title"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
	CO2Saved float64 `json:"co2Saved"`
}

func centsToAmount(cents int64) float64 {
	return float64(cents) / 100
}

func toCartResponse(view *domain.CartView) cartResponse {
	resp := cartResponse{
		User:          view.UserID,
		Items:         make([]cartItemResponse, 0, len(view.Lines)),
		TotalItems:    view.TotalItems,
		TotalPrice:    centsToAmount(view.TotalCents),
		TotalCO2Saved: view.TotalCO2Saved,
	}
	if !view.UpdatedAt.IsZero() {
		t := view.UpdatedAt
		resp.UpdatedAt = &t
	}
	for _, line := range view.Lines {
		p := line.Product
		images := p.Images
		if images == nil {
			images = []string{}
		}
		resp.Items = append(resp.Items, cartItemResponse{
			ID: line.Item.ID,
			Product: productResponse{
				ID:       p.ID,
				Title:    p.Title,
				Price:    centsToAmount(p.PriceCents),
				Images:   images,
				CO2Saved: p.CO2Saved,
				IsActive: p.IsActive,
				Seller:   p.SellerID,
			},
			Quantity: line.Item.Quantity,
			AddedAt:  line.Item.AddedAt,
		})
	}
	return resp
}

func toOrderResponse(o domain.Order) orderResponse {
	resp := orderResponse{
		ID:              o.ID,
		OrderNumber:     o.Number,
		Buyer:           o.BuyerID,
		Items:           make([]orderItemResponse, 0, len(o.Items)),
		TotalAmount:     centsToAmount(o.TotalCents),
		TotalCO2Saved:   o.TotalCO2Saved,
		ShippingAddress: o.ShippingAddress,
		PaymentMethod:   string(o.PaymentMethod),
		Notes:           o.Notes,
		Status:          o.Status,
		CreatedAt:       o.CreatedAt,
	}
	for _, it := range o.Items {
		resp.Items = append(resp.Items, orderItemResponse{
			Product:  it.ProductID,
			Seller:   it.SellerID,
			Title:    it.Title,
			Quantity: it.Quantity,
			Price:    centsToAmount(it.PriceCents),
			CO2Saved: it.CO2Saved,
		})
	}
	return resp
}
