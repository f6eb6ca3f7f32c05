package cart

// User-facing messages returned by the service.
const (
	MsgProductIDRequired  = "Product ID is required"
	MsgProductUnavailable = "Product not found or unavailable"
	MsgOwnProduct         = "Cannot add your own product to cart"
	MsgInvalidQuantity    = "Valid quantity is required"
	MsgCartNotFound       = "Cart not found"
	MsgItemNotFound       = "Item not found in cart"
	MsgCartCleared        = "Cart cleared successfully"
	MsgShippingRequired   = "Shipping address is required"
	MsgInvalidPayment     = "Invalid payment method"
	MsgCartEmpty          = "Cart is empty"
	MsgItemsUnavailable   = "Some items in your cart are no longer available"
	MsgCartChanged        = "Your cart changed during checkout, please try again"
	MsgCheckoutSuccessful = "Checkout successful"
)
