package types

import "time"

// PlaceOrderRequest is the POST /api/orders body.
type PlaceOrderRequest struct {
	Symbol    string   `json:"symbol" binding:"required"`
	Side      string   `json:"side" binding:"required"`
	OrderType string   `json:"orderType" binding:"required"`
	Quantity  float64  `json:"quantity" binding:"required"`
	Price     *float64 `json:"price"`
}

// Validate rejects malformed order specifications before any backend call.
// Gin's binding covers missing fields; the cross-field rules live here.
func (r *PlaceOrderRequest) Validate() error {
	if r.Quantity <= 0 {
		return ErrInvalidOrderSpec
	}
	orderType, err := ParseOrderType(r.OrderType)
	if err != nil {
		return err
	}
	if _, err := ParseSide(r.Side); err != nil {
		return err
	}
	// A limit order is meaningless without a price. Market orders take
	// whatever the book gives them.
	if orderType == OrderTypeLimit && (r.Price == nil || *r.Price <= 0) {
		return ErrInvalidOrderSpec
	}
	return nil
}

// OrderResponse is the public outcome shape shared by both order strategies.
// Domain rejections (insufficient balance, unknown order id) come back as
// Success=false with a status, never as a transport fault.
type OrderResponse struct {
	Success bool   `json:"success"`
	OrderID string `json:"orderId"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// PriceResponse is the latest-price payload. Price is null when the cache
// holds no entry for the symbol, which is distinct from a zero price.
type PriceResponse struct {
	Symbol    string    `json:"symbol"`
	Price     *float64  `json:"price"`
	Timestamp time.Time `json:"timestamp"`
}
