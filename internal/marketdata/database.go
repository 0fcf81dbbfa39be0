package marketdata

import (
	"context"
	"time"

	"github.com/tradegate/gateway-api/internal/types"
	"gorm.io/gorm"
)

// TickStore is the history-store query surface the resolver needs. Satisfied
// by Database; tests substitute a fake.
type TickStore interface {
	RecentTicks(ctx context.Context, symbol string, limit int) ([]types.MarketTick, error)
	TicksInRange(ctx context.Context, symbol string, start, end time.Time) ([]types.MarketTick, error)
	CandlesInRange(ctx context.Context, symbol string, start, end time.Time) ([]types.OhlcvCandle, error)
	LatestCandles(ctx context.Context, symbol string, limit int) ([]types.OhlcvCandle, error)
}

type Database struct {
	db *gorm.DB
}

func NewDatabase(db *gorm.DB) *Database {
	return &Database{db: db}
}

func (d *Database) RecentTicks(ctx context.Context, symbol string, limit int) ([]types.MarketTick, error) {
	var ticks []types.MarketTick
	err := d.db.WithContext(ctx).
		Where("symbol = ?", symbol).
		Order("time DESC").
		Limit(limit).
		Find(&ticks).Error
	return ticks, err
}

func (d *Database) TicksInRange(ctx context.Context, symbol string, start, end time.Time) ([]types.MarketTick, error) {
	var ticks []types.MarketTick
	err := d.db.WithContext(ctx).
		Where("symbol = ? AND time BETWEEN ? AND ?", symbol, start, end).
		Order("time DESC").
		Find(&ticks).Error
	return ticks, err
}

// CandlesInRange reads the aggregated candle view. The view is maintained
// outside the gateway (continuous aggregate on TimescaleDB).
func (d *Database) CandlesInRange(ctx context.Context, symbol string, start, end time.Time) ([]types.OhlcvCandle, error) {
	var candles []types.OhlcvCandle
	err := d.db.WithContext(ctx).Raw(`
		SELECT bucket, symbol, exchange, open, high, low, close, volume
		FROM ohlcv_1m
		WHERE symbol = ? AND bucket BETWEEN ? AND ?
		ORDER BY bucket DESC`,
		symbol, start, end,
	).Scan(&candles).Error
	return candles, err
}

func (d *Database) LatestCandles(ctx context.Context, symbol string, limit int) ([]types.OhlcvCandle, error) {
	var candles []types.OhlcvCandle
	err := d.db.WithContext(ctx).Raw(`
		SELECT bucket, symbol, exchange, open, high, low, close, volume
		FROM ohlcv_1m
		WHERE symbol = ?
		ORDER BY bucket DESC
		LIMIT ?`,
		symbol, limit,
	).Scan(&candles).Error
	return candles, err
}
