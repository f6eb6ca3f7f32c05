package httpserver

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"ecofinds-api/internal/domain"
	cartsvc "ecofinds-api/internal/service/cart"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const idempotencyHeader = "Idempotency-Key"

type cartHandlers struct {
	svc    cartService
	logger *zap.Logger
}

// quantity accepts a JSON number or numeric string. Anything else decodes as
// unset.
type quantity struct {
	set bool
	n   int
}

func (q *quantity) UnmarshalJSON(b []byte) error {
	*q = quantity{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	var raw interface{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil
	}
	switch v := raw.(type) {
	case float64:
		if v == float64(int(v)) {
			*q = quantity{set: true, n: int(v)}
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			*q = quantity{set: true, n: n}
		}
	}
	return nil
}

type addItemRequest struct {
	ProductID string   `json:"productId"`
	Quantity  quantity `json:"quantity"`
}

type updateItemRequest struct {
	Quantity quantity `json:"quantity"`
}

type checkoutRequest struct {
	ShippingAddress *domain.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string                  `json:"paymentMethod"`
	Notes           string                  `json:"notes"`
}

// bindJSON decodes an optional JSON body; an empty body leaves dst zero.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return false
	}
	return true
}

func (h *cartHandlers) get(c *gin.Context) {
	view, err := h.svc.Get(c.Request.Context(), userID(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toCartResponse(view))
}

func (h *cartHandlers) add(c *gin.Context) {
	var req addItemRequest
	if !bindJSON(c, &req) {
		return
	}
	qty := 1
	if req.Quantity.set {
		qty = req.Quantity.n
	}
	view, err := h.svc.AddItem(c.Request.Context(), userID(c), req.ProductID, qty)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toCartResponse(view))
}

func (h *cartHandlers) update(c *gin.Context) {
	var req updateItemRequest
	if !bindJSON(c, &req) {
		return
	}
	view, err := h.svc.UpdateItemQuantity(c.Request.Context(), userID(c), c.Param("itemId"), req.Quantity.n)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toCartResponse(view))
}

func (h *cartHandlers) remove(c *gin.Context) {
	view, err := h.svc.RemoveItem(c.Request.Context(), userID(c), c.Param("itemId"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toCartResponse(view))
}

func (h *cartHandlers) clear(c *gin.Context) {
	if err := h.svc.Clear(c.Request.Context(), userID(c)); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": cartsvc.MsgCartCleared})
}

func (h *cartHandlers) checkout(c *gin.Context) {
	var req checkoutRequest
	if !bindJSON(c, &req) {
		return
	}
	in := cartsvc.CheckoutInput{
		PaymentMethod:  req.PaymentMethod,
		Notes:          req.Notes,
		IdempotencyKey: c.GetHeader(idempotencyHeader),
	}
	if req.ShippingAddress != nil {
		in.ShippingAddress = *req.ShippingAddress
	}

	res, err := h.svc.Checkout(c.Request.Context(), userID(c), in)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, checkoutResponse{
		Message:       res.Message,
		OrderData:     toOrderResponse(res.Order),
		TotalAmount:   centsToAmount(res.Order.TotalCents),
		TotalCO2Saved: res.Order.TotalCO2Saved,
	})
}
