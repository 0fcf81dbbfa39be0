package trading

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/tradegate/gateway-api/internal/engine"
	"github.com/tradegate/gateway-api/internal/types"
)

// BalanceSource is the capability interface behind which the authoritative
// engine and the cache sit as two independently failing dependencies.
type BalanceSource interface {
	Balance(ctx context.Context, currency string) (*types.Balance, error)
}

// CacheBalances is the slice of the cache client the balance path needs.
type CacheBalances interface {
	Balance(ctx context.Context, currency string) (float64, error)
}

// EngineBalanceSource reads the true balance from the trading engine.
type EngineBalanceSource struct {
	client engine.Client
}

func NewEngineBalanceSource(client engine.Client) *EngineBalanceSource {
	return &EngineBalanceSource{client: client}
}

func (s *EngineBalanceSource) Balance(ctx context.Context, currency string) (*types.Balance, error) {
	result, err := s.client.Balance(ctx, currency)
	if err != nil {
		return nil, err
	}
	return &types.Balance{
		Currency:  currency,
		Available: result.Available,
		Locked:    result.Locked,
		Total:     result.Total,
	}, nil
}

// CacheBalanceSource synthesizes a best-effort balance from the cached
// scalar. The cache only holds the available amount, so Locked is reported
// as 0 and Total equals Available. This understates locked funds during an
// engine outage; callers can tell the shapes apart because a cached balance
// always has Locked == 0.
type CacheBalanceSource struct {
	cache CacheBalances
}

func NewCacheBalanceSource(cache CacheBalances) *CacheBalanceSource {
	return &CacheBalanceSource{cache: cache}
}

func (s *CacheBalanceSource) Balance(ctx context.Context, currency string) (*types.Balance, error) {
	available, err := s.cache.Balance(ctx, currency)
	if err != nil {
		return nil, err
	}
	return &types.Balance{
		Currency:  currency,
		Available: available,
		Locked:    0,
		Total:     available,
	}, nil
}

// FallbackBalanceSource consults the primary source and falls back to the
// secondary only on transport failure. Domain errors pass through unchanged.
type FallbackBalanceSource struct {
	primary  BalanceSource
	fallback BalanceSource
}

func NewFallbackBalanceSource(primary, fallback BalanceSource) *FallbackBalanceSource {
	return &FallbackBalanceSource{primary: primary, fallback: fallback}
}

func (s *FallbackBalanceSource) Balance(ctx context.Context, currency string) (*types.Balance, error) {
	balance, err := s.primary.Balance(ctx, currency)
	if err == nil {
		return balance, nil
	}
	if !errors.Is(err, engine.ErrUnavailable) {
		return nil, err
	}

	log.Warn().
		Err(err).
		Str("currency", currency).
		Msg("engine balance call failed, falling back to cache")
	return s.fallback.Balance(ctx, currency)
}
