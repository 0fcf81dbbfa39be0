// Package trading is the order resolver: placement, cancellation, status and
// balance queries routed to the authoritative engine or the local history
// store, behind one strategy contract.
package trading

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/tradegate/gateway-api/internal/engine"
	"github.com/tradegate/gateway-api/internal/types"
	"github.com/tradegate/gateway-api/pkg/response"
)

// DefaultHistoryLimit is applied to order listings without an explicit limit.
const DefaultHistoryLimit = 50

// OrderStrategy is the contract both resolver variants satisfy. A caller
// cannot tell which one is active except through the venue and message
// fields of the responses.
type OrderStrategy interface {
	PlaceOrder(ctx context.Context, req *types.PlaceOrderRequest) (*types.OrderResponse, error)
	CancelOrder(ctx context.Context, orderID string) (*types.OrderResponse, error)
	OrderStatus(ctx context.Context, orderID string) (*types.OrderResponse, error)
}

// Service handles order operations and balance queries. Order history is
// always served from the history store regardless of the active strategy.
type Service struct {
	strategy OrderStrategy
	balances BalanceSource
	db       OrderStore
}

// NewService creates the order resolver with the given strategy and balance
// policy.
func NewService(strategy OrderStrategy, balances BalanceSource, db OrderStore) *Service {
	return &Service{strategy: strategy, balances: balances, db: db}
}

// PlaceOrder validates the request and hands it to the active strategy.
func (s *Service) PlaceOrder(ctx context.Context, req *types.PlaceOrderRequest) (*types.OrderResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.strategy.PlaceOrder(ctx, req)
}

// CancelOrder cancels via the active strategy.
func (s *Service) CancelOrder(ctx context.Context, orderID string) (*types.OrderResponse, error) {
	return s.strategy.CancelOrder(ctx, orderID)
}

// OrderStatus queries via the active strategy.
func (s *Service) OrderStatus(ctx context.Context, orderID string) (*types.OrderResponse, error) {
	return s.strategy.OrderStatus(ctx, orderID)
}

// Balance resolves a balance snapshot through the configured source policy.
func (s *Service) Balance(ctx context.Context, currency string) (*types.Balance, error) {
	return s.balances.Balance(ctx, currency)
}

// OrderHistory lists recent orders, newest first.
func (s *Service) OrderHistory(ctx context.Context, limit int) ([]types.Order, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return s.db.RecentOrders(ctx, limit)
}

// OrdersByStatus lists orders in a given status, newest first.
func (s *Service) OrdersByStatus(ctx context.Context, status string, limit int) ([]types.Order, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return s.db.OrdersByStatus(ctx, strings.ToUpper(status), limit)
}

// OrdersInRange lists orders created within [start, end], newest first.
func (s *Service) OrdersInRange(ctx context.Context, start, end time.Time) ([]types.Order, error) {
	if start.After(end) {
		return nil, types.ErrInvalidRange
	}
	return s.db.OrdersInRange(ctx, start, end)
}

// GinHandlers contains HTTP handlers for order and balance endpoints
type GinHandlers struct {
	service *Service
}

// NewGinHandlers creates a new set of HTTP handlers for order endpoints
func NewGinHandlers(service *Service) *GinHandlers {
	return &GinHandlers{service: service}
}

// PlaceOrderHandler handles POST /api/orders. Returns 201 on acceptance, not
// on fill.
func (h *GinHandlers) PlaceOrderHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.PlaceOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.ValidationFailed(c, err.Error())
			return
		}

		result, err := h.service.PlaceOrder(c.Request.Context(), &req)
		if err != nil {
			h.handleOrderError(c, err, "place order")
			return
		}
		response.Success(c, result)
	}
}

// CancelOrderHandler handles DELETE /api/orders/:order_id
func (h *GinHandlers) CancelOrderHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID := c.Param("order_id")
		if orderID == "" {
			response.BadRequest(c, "Order ID is required")
			return
		}

		result, err := h.service.CancelOrder(c.Request.Context(), orderID)
		if err != nil {
			h.handleOrderError(c, err, "cancel order")
			return
		}
		response.Success(c, result)
	}
}

// OrderStatusHandler handles GET /api/orders/:order_id/status
func (h *GinHandlers) OrderStatusHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID := c.Param("order_id")
		if orderID == "" {
			response.BadRequest(c, "Order ID is required")
			return
		}

		result, err := h.service.OrderStatus(c.Request.Context(), orderID)
		if err != nil {
			h.handleOrderError(c, err, "order status")
			return
		}
		response.Success(c, result)
	}
}

// BalanceHandler handles GET /api/balance/:currency
func (h *GinHandlers) BalanceHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		currency := c.Param("currency")

		balance, err := h.service.Balance(c.Request.Context(), currency)
		if err != nil {
			log.Error().Err(err).Str("currency", currency).Msg("balance lookup failed")
			response.UpstreamError(c, "Balance temporarily unavailable")
			return
		}
		response.Success(c, balance)
	}
}

// OrderHistoryHandler handles GET /api/orders/history
func (h *GinHandlers) OrderHistoryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

		orders, err := h.service.OrderHistory(c.Request.Context(), limit)
		if err != nil {
			log.Error().Err(err).Msg("order history query failed")
			response.InternalError(c, "Failed to fetch order history")
			return
		}
		response.Success(c, orders)
	}
}

// OrdersByRangeHandler handles GET /api/orders/history/range
func (h *GinHandlers) OrdersByRangeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		start, err := time.Parse(time.RFC3339, c.Query("start"))
		if err != nil {
			response.ValidationFailed(c, "start must be an RFC3339 timestamp")
			return
		}
		end, err := time.Parse(time.RFC3339, c.Query("end"))
		if err != nil {
			response.ValidationFailed(c, "end must be an RFC3339 timestamp")
			return
		}

		orders, err := h.service.OrdersInRange(c.Request.Context(), start, end)
		if errors.Is(err, types.ErrInvalidRange) {
			response.ValidationFailed(c, "start must not be after end")
			return
		}
		if err != nil {
			log.Error().Err(err).Msg("order range query failed")
			response.InternalError(c, "Failed to fetch orders")
			return
		}
		response.Success(c, orders)
	}
}

// OrdersByStatusHandler handles GET /api/orders/status/:status
func (h *GinHandlers) OrdersByStatusHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		status := c.Param("status")
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

		orders, err := h.service.OrdersByStatus(c.Request.Context(), status, limit)
		if err != nil {
			log.Error().Err(err).Str("status", status).Msg("order status query failed")
			response.InternalError(c, "Failed to fetch orders")
			return
		}
		response.Success(c, orders)
	}
}

// handleOrderError maps resolver errors to transport responses: validation
// errors to a client fault, transport failures to an upstream fault with a
// generic message, anything else to a server fault.
func (h *GinHandlers) handleOrderError(c *gin.Context, err error, op string) {
	switch {
	case errors.Is(err, types.ErrInvalidOrderSpec):
		response.ValidationFailed(c, "Invalid order: check side, orderType, quantity and price")
	case errors.Is(err, engine.ErrUnavailable):
		log.Error().Err(err).Str("op", op).Msg("engine unavailable")
		response.UpstreamError(c, "Trading engine temporarily unavailable")
	default:
		log.Error().Err(err).Str("op", op).Msg("order operation failed")
		response.InternalError(c, "An unexpected error occurred")
	}
}
