package trading

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/tradegate/gateway-api/internal/engine"
	"github.com/tradegate/gateway-api/internal/types"
)

// EngineStrategy routes the order lifecycle to the authoritative trading
// engine. Transport failures on place, cancel and status are surfaced to the
// caller as-is: fabricating an order outcome the engine never confirmed is
// unsafe. Domain rejections come back as normal Success=false responses and
// are passed through unchanged.
type EngineStrategy struct {
	client engine.Client
}

// NewEngineStrategy creates the engine-backed order strategy.
func NewEngineStrategy(client engine.Client) *EngineStrategy {
	return &EngineStrategy{client: client}
}

func (s *EngineStrategy) PlaceOrder(ctx context.Context, req *types.PlaceOrderRequest) (*types.OrderResponse, error) {
	side, err := types.ParseSide(req.Side)
	if err != nil {
		return nil, err
	}
	orderType, err := types.ParseOrderType(req.OrderType)
	if err != nil {
		return nil, err
	}

	result, err := s.client.PlaceOrder(ctx, req.Symbol, side, orderType, req.Quantity, req.Price)
	if err != nil {
		return nil, err
	}

	if !result.Success {
		log.Info().
			Str("symbol", req.Symbol).
			Str("status", result.Status).
			Msg("order rejected by engine")
	}
	return mapOrderResult(result), nil
}

func (s *EngineStrategy) CancelOrder(ctx context.Context, orderID string) (*types.OrderResponse, error) {
	result, err := s.client.CancelOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return mapOrderResult(result), nil
}

func (s *EngineStrategy) OrderStatus(ctx context.Context, orderID string) (*types.OrderResponse, error) {
	result, err := s.client.OrderStatus(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &types.OrderResponse{
		Success: true,
		OrderID: result.OrderID,
		Message: fmt.Sprintf("Filled: %v @ %v", result.FilledQuantity, result.AveragePrice),
		Status:  result.Status,
	}, nil
}

func mapOrderResult(result *engine.OrderResult) *types.OrderResponse {
	return &types.OrderResponse{
		Success: result.Success,
		OrderID: result.OrderID,
		Message: result.Message,
		Status:  result.Status,
	}
}
