package database

import (
	"fmt"

	"github.com/tradegate/gateway-api/internal/config"
	"github.com/tradegate/gateway-api/internal/types"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase opens the history store. With DATABASE_URL set it connects to
// the shared TimescaleDB instance; otherwise it opens a local sqlite file so
// the gateway runs standalone in development.
func NewDatabase(cfg *config.Config) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)
	gormCfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}

	if cfg.DatabaseURL != "" {
		db, err = gorm.Open(postgres.Open(cfg.DatabaseURL), gormCfg)
	} else {
		db, err = gorm.Open(sqlite.Open(cfg.SQLitePath), gormCfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open history store: %w", err)
	}

	if err := db.AutoMigrate(&types.Order{}, &types.MarketTick{}); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// On TimescaleDB the candle view is a continuous aggregate owned by the
	// ingest pipeline. The sqlite fallback gets a plain view with the same
	// name so the candle queries work end to end.
	if cfg.DatabaseURL == "" {
		if err := createOhlcvView(db); err != nil {
			return nil, fmt.Errorf("failed to create ohlcv view: %w", err)
		}
	}

	return db, nil
}

func createOhlcvView(db *gorm.DB) error {
	return db.Exec(`
		CREATE VIEW IF NOT EXISTS ohlcv_1m AS
		SELECT
			datetime(strftime('%Y-%m-%d %H:%M:00', time)) AS bucket,
			symbol,
			exchange,
			(SELECT t2.price FROM market_ticks t2
				WHERE t2.symbol = t1.symbol
				AND strftime('%Y-%m-%d %H:%M', t2.time) = strftime('%Y-%m-%d %H:%M', t1.time)
				ORDER BY t2.time ASC LIMIT 1) AS open,
			MAX(t1.price) AS high,
			MIN(t1.price) AS low,
			(SELECT t3.price FROM market_ticks t3
				WHERE t3.symbol = t1.symbol
				AND strftime('%Y-%m-%d %H:%M', t3.time) = strftime('%Y-%m-%d %H:%M', t1.time)
				ORDER BY t3.time DESC LIMIT 1) AS close,
			SUM(t1.volume) AS volume
		FROM market_ticks t1
		GROUP BY strftime('%Y-%m-%d %H:%M', t1.time), t1.symbol, t1.exchange
	`).Error
}
