package types

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Validation errors raised before any backend call is made.
var (
	ErrInvalidOrderSpec = errors.New("invalid order specification")
	ErrInvalidRange     = errors.New("invalid time range: start is after end")
)

// Side is the direction of an order.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// ParseSide maps a request-level side string to the typed enum.
func ParseSide(s string) (Side, error) {
	switch strings.ToUpper(s) {
	case "BUY":
		return SideBuy, nil
	case "SELL":
		return SideSell, nil
	default:
		return "", ErrInvalidOrderSpec
	}
}

// OrderType distinguishes market from limit orders.
type OrderType string

const (
	OrderTypeMarket OrderType = "MARKET"
	OrderTypeLimit  OrderType = "LIMIT"
)

// ParseOrderType maps a request-level order type string to the typed enum.
func ParseOrderType(s string) (OrderType, error) {
	switch strings.ToUpper(s) {
	case "MARKET":
		return OrderTypeMarket, nil
	case "LIMIT":
		return OrderTypeLimit, nil
	default:
		return "", ErrInvalidOrderSpec
	}
}

// OrderStatus values. Transitions are monotonic:
// PENDING -> {APPROVED, REJECTED} -> {EXECUTED, CANCELLED}.
// EXECUTED and CANCELLED are terminal. NOT_FOUND is a lookup outcome,
// never persisted.
const (
	StatusPending   = "PENDING"
	StatusApproved  = "APPROVED"
	StatusRejected  = "REJECTED"
	StatusExecuted  = "EXECUTED"
	StatusCancelled = "CANCELLED"
	StatusNotFound  = "NOT_FOUND"
)

// TerminalStatus reports whether an order status admits no further transitions.
func TerminalStatus(status string) bool {
	return status == StatusExecuted || status == StatusCancelled
}

// Order is the persisted order record. Owned by the history store once
// written; never physically deleted.
type Order struct {
	gorm.Model `json:"-"`
	OrderID    string     `gorm:"uniqueIndex" json:"order_id"`
	Symbol     string     `json:"symbol"`
	Side       Side       `json:"side"`
	OrderType  OrderType  `json:"order_type"`
	Quantity   float64    `json:"quantity"`
	Price      float64    `json:"price"`
	Status     string     `json:"status"`
	Exchange   string     `json:"exchange"`
	ExecutedAt *time.Time `json:"executed_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// MarketTick is one append-only trade print. Retrieval is always newest first.
type MarketTick struct {
	ID       uint      `gorm:"primarykey" json:"-"`
	Time     time.Time `gorm:"index:idx_ticks_symbol_time,priority:2" json:"time"`
	Symbol   string    `gorm:"index:idx_ticks_symbol_time,priority:1" json:"symbol"`
	Exchange string    `json:"exchange"`
	Price    float64   `json:"price"`
	Volume   float64   `json:"volume"`
}

// TableName keeps the hypertable name used by the ingest pipeline.
func (MarketTick) TableName() string {
	return "market_ticks"
}

// OhlcvCandle is a read-only aggregate row from the ohlcv_1m view.
type OhlcvCandle struct {
	Bucket   time.Time `json:"bucket"`
	Symbol   string    `json:"symbol"`
	Exchange string    `json:"exchange"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	Volume   float64   `json:"volume"`
}

// Balance is a point-in-time funds snapshot for one currency.
// Total == Available + Locked when the authoritative engine answered; a
// cache-derived balance carries Locked == 0 and Total == Available by
// convention (degraded precision, not an error).
type Balance struct {
	Currency  string  `json:"currency"`
	Available float64 `json:"available"`
	Locked    float64 `json:"locked"`
	Total     float64 `json:"total"`
}
