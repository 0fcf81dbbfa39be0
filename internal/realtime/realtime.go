// Package realtime is the typed client for the hot-state cache. Price and
// balance scalars live in the cache's backing store; the gateway re-fetches
// them on every call and holds no copy across requests.
package realtime

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Key conventions shared with the ingest pipeline.
const (
	priceKeyPrefix   = "price:"
	balanceKeyPrefix = "balance:"
)

// Service wraps the shared cache connection. Connections are pooled by the
// client library; Service itself is stateless.
type Service struct {
	rdb     *redis.Client
	channel string
}

// NewService creates the cache service publishing and subscribing on the
// given market-data channel.
func NewService(rdb *redis.Client, channel string) *Service {
	if channel == "" {
		channel = "market_data"
	}
	return &Service{rdb: rdb, channel: channel}
}

// NewClient connects to the cache and verifies the connection.
func NewClient(addr, password string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("cache connection failed: %w", err)
	}
	log.Info().Str("addr", addr).Msg("connected to cache")
	return rdb, nil
}

// LatestPrice returns the most recent price for a symbol. The second return
// distinguishes "no entry" from a zero price; absence is not an error.
func (s *Service) LatestPrice(ctx context.Context, symbol string) (float64, bool, error) {
	val, err := s.rdb.Get(ctx, priceKeyPrefix+symbol).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	price, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, false, fmt.Errorf("malformed price for %s: %w", symbol, err)
	}
	return price, true, nil
}

// Balance returns the cached available balance for a currency. A missing key
// reads as zero, matching the ingest pipeline's behaviour of only writing
// non-zero balances.
func (s *Service) Balance(ctx context.Context, currency string) (float64, error) {
	val, err := s.rdb.Get(ctx, balanceKeyPrefix+currency).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	balance, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed balance for %s: %w", currency, err)
	}
	return balance, nil
}

// SetValue writes a raw scalar, used by tooling and tests.
func (s *Service) SetValue(ctx context.Context, key, value string) error {
	return s.rdb.Set(ctx, key, value, 0).Err()
}

// GetValue reads a raw scalar.
func (s *Service) GetValue(ctx context.Context, key string) (string, error) {
	return s.rdb.Get(ctx, key).Result()
}

// PublishMarketData pushes a message to the market-data channel and returns
// the number of subscribers that received it.
func (s *Service) PublishMarketData(ctx context.Context, data string) (int64, error) {
	count, err := s.rdb.Publish(ctx, s.channel, data).Result()
	if err != nil {
		return 0, err
	}
	log.Debug().Int64("receivers", count).Msg("published market data")
	return count, nil
}

// Subscribe opens a dedicated subscription on the market-data channel. The
// subscription is per-caller, not shared; callers own the returned PubSub and
// must Close it.
func (s *Service) Subscribe(ctx context.Context) *redis.PubSub {
	log.Info().Str("channel", s.channel).Msg("subscribed to market data channel")
	return s.rdb.Subscribe(ctx, s.channel)
}

// Channel returns the configured market-data channel name.
func (s *Service) Channel() string {
	return s.channel
}
