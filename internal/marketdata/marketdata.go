// Package marketdata resolves market-data queries against the history store
// and the hot-state cache, choosing the backend per query shape.
package marketdata

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/tradegate/gateway-api/internal/types"
	"github.com/tradegate/gateway-api/pkg/response"
)

// DefaultTickLimit is applied whenever a limit is missing or non-positive.
const DefaultTickLimit = 100

// maxTickLimit keeps a single query from dragging the whole hypertable over
// the wire.
const maxTickLimit = 1000

// PriceSource supplies the latest-price scalar from the cache.
type PriceSource interface {
	LatestPrice(ctx context.Context, symbol string) (float64, bool, error)
}

// Service answers recent, ranged, aggregated and latest-price queries.
type Service struct {
	db     TickStore
	prices PriceSource
}

// NewService creates the market-data resolver.
func NewService(db TickStore, prices PriceSource) *Service {
	return &Service{db: db, prices: prices}
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultTickLimit
	}
	if limit > maxTickLimit {
		return maxTickLimit
	}
	return limit
}

// RecentTicks returns up to limit ticks for a symbol, newest first.
func (s *Service) RecentTicks(ctx context.Context, symbol string, limit int) ([]types.MarketTick, error) {
	return s.db.RecentTicks(ctx, symbol, clampLimit(limit))
}

// HistoricalTicks returns ticks in [start, end], newest first.
func (s *Service) HistoricalTicks(ctx context.Context, symbol string, start, end time.Time) ([]types.MarketTick, error) {
	if start.After(end) {
		return nil, types.ErrInvalidRange
	}
	return s.db.TicksInRange(ctx, symbol, start, end)
}

// Candles dispatches on the request shape: the ranged query runs only when
// both bounds are present, otherwise the latest-N query runs. One endpoint,
// two query paths.
func (s *Service) Candles(ctx context.Context, symbol string, start, end *time.Time, limit int) ([]types.OhlcvCandle, error) {
	if start != nil && end != nil {
		if start.After(*end) {
			return nil, types.ErrInvalidRange
		}
		return s.db.CandlesInRange(ctx, symbol, *start, *end)
	}
	return s.db.LatestCandles(ctx, symbol, clampLimit(limit))
}

// LatestPrice returns the cache's price snapshot for a symbol. A symbol the
// cache has never seen yields a null price, not an error.
func (s *Service) LatestPrice(ctx context.Context, symbol string) (*types.PriceResponse, error) {
	price, ok, err := s.prices.LatestPrice(ctx, symbol)
	if err != nil {
		return nil, err
	}
	resp := &types.PriceResponse{Symbol: symbol, Timestamp: time.Now().UTC()}
	if ok {
		resp.Price = &price
	}
	return resp, nil
}

// GinHandlers contains HTTP handlers for market-data endpoints
type GinHandlers struct {
	service *Service
}

// NewGinHandlers creates a new set of HTTP handlers for market-data endpoints
func NewGinHandlers(service *Service) *GinHandlers {
	return &GinHandlers{service: service}
}

// RecentTicksHandler handles GET /api/market-data/ticks/:symbol
func (h *GinHandlers) RecentTicksHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		symbol := c.Param("symbol")
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

		ticks, err := h.service.RecentTicks(c.Request.Context(), symbol, limit)
		if err != nil {
			log.Error().Err(err).Str("symbol", symbol).Msg("recent ticks query failed")
			response.InternalError(c, "Failed to fetch ticks")
			return
		}
		response.Success(c, ticks)
	}
}

// HistoricalTicksHandler handles GET /api/market-data/ticks/:symbol/range
func (h *GinHandlers) HistoricalTicksHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		symbol := c.Param("symbol")
		start, err := parseTime(c.Query("start"))
		if err != nil {
			response.ValidationFailed(c, "start must be an RFC3339 timestamp")
			return
		}
		end, err := parseTime(c.Query("end"))
		if err != nil {
			response.ValidationFailed(c, "end must be an RFC3339 timestamp")
			return
		}

		ticks, err := h.service.HistoricalTicks(c.Request.Context(), symbol, start, end)
		if errors.Is(err, types.ErrInvalidRange) {
			response.ValidationFailed(c, "start must not be after end")
			return
		}
		if err != nil {
			log.Error().Err(err).Str("symbol", symbol).Msg("historical ticks query failed")
			response.InternalError(c, "Failed to fetch ticks")
			return
		}
		response.Success(c, ticks)
	}
}

// CandlesHandler handles GET /api/market-data/ohlcv/:symbol
func (h *GinHandlers) CandlesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		symbol := c.Param("symbol")
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

		start, err := parseOptionalTime(c.Query("start"))
		if err != nil {
			response.ValidationFailed(c, "start must be an RFC3339 timestamp")
			return
		}
		end, err := parseOptionalTime(c.Query("end"))
		if err != nil {
			response.ValidationFailed(c, "end must be an RFC3339 timestamp")
			return
		}

		candles, err := h.service.Candles(c.Request.Context(), symbol, start, end, limit)
		if errors.Is(err, types.ErrInvalidRange) {
			response.ValidationFailed(c, "start must not be after end")
			return
		}
		if err != nil {
			log.Error().Err(err).Str("symbol", symbol).Msg("candle query failed")
			response.InternalError(c, "Failed to fetch candles")
			return
		}
		response.Success(c, candles)
	}
}

// LatestPriceHandler handles GET /api/market-data/latest/:symbol
func (h *GinHandlers) LatestPriceHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		symbol := c.Param("symbol")

		price, err := h.service.LatestPrice(c.Request.Context(), symbol)
		if err != nil {
			log.Error().Err(err).Str("symbol", symbol).Msg("latest price lookup failed")
			response.InternalError(c, "Failed to fetch latest price")
			return
		}
		response.Success(c, price)
	}
}

func parseTime(value string) (time.Time, error) {
	return time.Parse(time.RFC3339, value)
}

func parseOptionalTime(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
