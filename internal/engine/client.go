// Package engine is the synchronous client for the authoritative trading
// engine. Calls block at the protocol level, so every one of them is
// dispatched through the bounded Pool and carries its own deadline.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tradegate/gateway-api/internal/types"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// ErrUnavailable marks a transport failure: the engine could not be reached
// or did not answer in time. Domain rejections never carry this error; they
// come back as a normal result with Success=false.
var ErrUnavailable = errors.New("trading engine unavailable")

// RPC method names of the engine service.
const (
	methodPlaceOrder  = "/trading_engine.TradingEngine/PlaceOrder"
	methodCancelOrder = "/trading_engine.TradingEngine/CancelOrder"
	methodOrderStatus = "/trading_engine.TradingEngine/GetOrderStatus"
	methodBalance     = "/trading_engine.TradingEngine/GetBalance"
)

// OrderResult is the engine's answer to place and cancel calls.
type OrderResult struct {
	Success bool   `json:"success"`
	OrderID string `json:"order_id"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// StatusResult is the engine's answer to a status lookup.
type StatusResult struct {
	OrderID        string  `json:"order_id"`
	Status         string  `json:"status"`
	FilledQuantity float64 `json:"filled_quantity"`
	AveragePrice   float64 `json:"average_price"`
}

// BalanceResult is the engine's answer to a balance lookup.
type BalanceResult struct {
	Available float64 `json:"available"`
	Locked    float64 `json:"locked"`
	Total     float64 `json:"total"`
}

type orderRequest struct {
	Symbol    string          `json:"symbol"`
	Side      types.Side      `json:"side"`
	OrderType types.OrderType `json:"order_type"`
	Quantity  float64         `json:"quantity"`
	Price     *float64        `json:"price,omitempty"`
}

type orderIDRequest struct {
	OrderID string `json:"order_id"`
}

type balanceRequest struct {
	Currency string `json:"currency"`
}

// Client is the call surface of the trading engine.
type Client interface {
	PlaceOrder(ctx context.Context, symbol string, side types.Side, orderType types.OrderType, quantity float64, price *float64) (*OrderResult, error)
	CancelOrder(ctx context.Context, orderID string) (*OrderResult, error)
	OrderStatus(ctx context.Context, orderID string) (*StatusResult, error)
	Balance(ctx context.Context, currency string) (*BalanceResult, error)
}

// GRPCClient talks to the engine over a shared connection. The connection is
// pooled by grpc itself and carries no per-request state.
type GRPCClient struct {
	conn        *grpc.ClientConn
	pool        *Pool
	callTimeout time.Duration
}

// NewGRPCClient dials the engine and wraps the connection with the bounded
// worker pool.
func NewGRPCClient(addr string, pool *Pool, callTimeout time.Duration) (*GRPCClient, error) {
	conn, err := grpc.NewClient(addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype("json")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to dial trading engine: %w", err)
	}
	return &GRPCClient{conn: conn, pool: pool, callTimeout: callTimeout}, nil
}

// Close releases the engine connection.
func (c *GRPCClient) Close() error {
	return c.conn.Close()
}

// invoke runs one blocking RPC on the pool with a bounded deadline. Any
// transport-level failure is folded into ErrUnavailable so callers can decide
// on fallback without inspecting grpc internals.
func (c *GRPCClient) invoke(ctx context.Context, method string, req, resp interface{}) error {
	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	err := c.pool.Do(callCtx, func() error {
		return c.conn.Invoke(callCtx, method, req, resp)
	})
	if err != nil {
		log.Warn().Err(err).Str("method", method).Msg("engine call failed")
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (c *GRPCClient) PlaceOrder(ctx context.Context, symbol string, side types.Side, orderType types.OrderType, quantity float64, price *float64) (*OrderResult, error) {
	req := &orderRequest{
		Symbol:    symbol,
		Side:      side,
		OrderType: orderType,
		Quantity:  quantity,
		Price:     price,
	}
	var resp OrderResult
	if err := c.invoke(ctx, methodPlaceOrder, req, &resp); err != nil {
		return nil, err
	}
	log.Info().
		Str("order_id", resp.OrderID).
		Str("status", resp.Status).
		Msg("order placed on engine")
	return &resp, nil
}

func (c *GRPCClient) CancelOrder(ctx context.Context, orderID string) (*OrderResult, error) {
	var resp OrderResult
	if err := c.invoke(ctx, methodCancelOrder, &orderIDRequest{OrderID: orderID}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *GRPCClient) OrderStatus(ctx context.Context, orderID string) (*StatusResult, error) {
	var resp StatusResult
	if err := c.invoke(ctx, methodOrderStatus, &orderIDRequest{OrderID: orderID}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *GRPCClient) Balance(ctx context.Context, currency string) (*BalanceResult, error) {
	var resp BalanceResult
	if err := c.invoke(ctx, methodBalance, &balanceRequest{Currency: currency}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
