package trading

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/tradegate/gateway-api/internal/types"
)

// SimulatedVenue tags orders created without an authoritative engine behind
// them. The venue field is the only way a caller can tell the strategies
// apart.
const SimulatedVenue = "SIMULATED"

// LocalStrategy runs the order lifecycle entirely against the history store.
// It is selected when no trading engine is configured (degraded/offline mode).
type LocalStrategy struct {
	db OrderStore
}

// NewLocalStrategy creates the store-only order strategy.
func NewLocalStrategy(db OrderStore) *LocalStrategy {
	return &LocalStrategy{db: db}
}

// PlaceOrder synthesizes a PENDING order with a fresh identity and persists
// it. The request is validated before it reaches the strategy.
func (s *LocalStrategy) PlaceOrder(ctx context.Context, req *types.PlaceOrderRequest) (*types.OrderResponse, error) {
	side, err := types.ParseSide(req.Side)
	if err != nil {
		return nil, err
	}
	orderType, err := types.ParseOrderType(req.OrderType)
	if err != nil {
		return nil, err
	}

	order := &types.Order{
		OrderID:   uuid.New().String(),
		Symbol:    req.Symbol,
		Side:      side,
		OrderType: orderType,
		Quantity:  req.Quantity,
		Status:    types.StatusPending,
		Exchange:  SimulatedVenue,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if req.Price != nil {
		order.Price = *req.Price
	}

	if err := s.db.CreateOrder(ctx, order); err != nil {
		return nil, err
	}

	log.Info().
		Str("order_id", order.OrderID).
		Str("symbol", order.Symbol).
		Str("venue", SimulatedVenue).
		Msg("order accepted locally")

	return &types.OrderResponse{
		Success: true,
		OrderID: order.OrderID,
		Message: "Order accepted (simulated venue)",
		Status:  order.Status,
	}, nil
}

// CancelOrder transitions a known order to CANCELLED. An unknown identity is
// a structured not-found result, never a fault. Terminal orders are never
// reverted.
func (s *LocalStrategy) CancelOrder(ctx context.Context, orderID string) (*types.OrderResponse, error) {
	order, err := s.db.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return notFoundResponse(orderID), nil
	}

	if order.Status == types.StatusCancelled {
		return &types.OrderResponse{
			Success: true,
			OrderID: orderID,
			Message: "Order already cancelled",
			Status:  types.StatusCancelled,
		}, nil
	}
	if types.TerminalStatus(order.Status) {
		return &types.OrderResponse{
			Success: false,
			OrderID: orderID,
			Message: "Order already in terminal state",
			Status:  order.Status,
		}, nil
	}

	order.Status = types.StatusCancelled
	order.UpdatedAt = time.Now().UTC()
	if err := s.db.UpdateOrder(ctx, order); err != nil {
		return nil, err
	}

	return &types.OrderResponse{
		Success: true,
		OrderID: orderID,
		Message: "Order cancelled",
		Status:  types.StatusCancelled,
	}, nil
}

// OrderStatus reflects the persisted status verbatim.
func (s *LocalStrategy) OrderStatus(ctx context.Context, orderID string) (*types.OrderResponse, error) {
	order, err := s.db.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return notFoundResponse(orderID), nil
	}

	return &types.OrderResponse{
		Success: true,
		OrderID: orderID,
		Message: "Venue: " + order.Exchange,
		Status:  order.Status,
	}, nil
}

func notFoundResponse(orderID string) *types.OrderResponse {
	return &types.OrderResponse{
		Success: false,
		OrderID: orderID,
		Message: "Order not found",
		Status:  types.StatusNotFound,
	}
}
