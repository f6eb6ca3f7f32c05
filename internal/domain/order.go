package domain

import (
	"strings"
	"time"
)

type PaymentMethod string

const (
	PaymentCreditCard     PaymentMethod = "credit_card"
	PaymentDebitCard      PaymentMethod = "debit_card"
	PaymentPayPal         PaymentMethod = "paypal"
	PaymentCashOnDelivery PaymentMethod = "cash_on_delivery"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCreditCard, PaymentDebitCard, PaymentPayPal, PaymentCashOnDelivery:
		return true
	}
	return false
}

type ShippingAddress struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country,omitempty"`
}

// Present reports whether the address carries enough to ship to.
func (a ShippingAddress) Present() bool {
	return strings.TrimSpace(a.Street) != "" &&
		strings.TrimSpace(a.City) != "" &&
		strings.TrimSpace(a.ZipCode) != ""
}

const OrderStatusPending = "pending"

// Order is the order data assembled at checkout. Item prices and CO2 figures
// are snapshots taken at checkout time.
type Order struct {
	ID              string
	Number          string
	BuyerID         string
	Items           []OrderItem
	TotalCents      int64
	TotalCO2Saved   float64
	ShippingAddress ShippingAddress
	PaymentMethod   PaymentMethod
	Notes           string
	Status          string
	CreatedAt       time.Time
}

type OrderItem struct {
	ProductID  string
	SellerID   string
	Title      string
	Quantity   int
	PriceCents int64
	CO2Saved   float64
}
