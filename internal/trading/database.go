package trading

import (
	"context"
	"errors"
	"time"

	"github.com/tradegate/gateway-api/internal/types"
	"gorm.io/gorm"
)

// OrderStore is the history-store surface for order records. Satisfied by
// Database; tests substitute fakes.
type OrderStore interface {
	CreateOrder(ctx context.Context, order *types.Order) error
	GetOrder(ctx context.Context, orderID string) (*types.Order, error)
	UpdateOrder(ctx context.Context, order *types.Order) error
	RecentOrders(ctx context.Context, limit int) ([]types.Order, error)
	OrdersByStatus(ctx context.Context, status string, limit int) ([]types.Order, error)
	OrdersInRange(ctx context.Context, start, end time.Time) ([]types.Order, error)
}

type Database struct {
	db *gorm.DB
}

func NewDatabase(db *gorm.DB) *Database {
	return &Database{db: db}
}

func (d *Database) CreateOrder(ctx context.Context, order *types.Order) error {
	return d.db.WithContext(ctx).Create(order).Error
}

// GetOrder returns (nil, nil) for an unknown identity; absence is a normal
// outcome for the resolver, not a fault.
func (d *Database) GetOrder(ctx context.Context, orderID string) (*types.Order, error) {
	var order types.Order
	if err := d.db.WithContext(ctx).Where("order_id = ?", orderID).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (d *Database) UpdateOrder(ctx context.Context, order *types.Order) error {
	return d.db.WithContext(ctx).Save(order).Error
}

func (d *Database) RecentOrders(ctx context.Context, limit int) ([]types.Order, error) {
	var orders []types.Order
	err := d.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&orders).Error
	return orders, err
}

func (d *Database) OrdersByStatus(ctx context.Context, status string, limit int) ([]types.Order, error) {
	var orders []types.Order
	err := d.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at DESC").
		Limit(limit).
		Find(&orders).Error
	return orders, err
}

func (d *Database) OrdersInRange(ctx context.Context, start, end time.Time) ([]types.Order, error) {
	var orders []types.Order
	err := d.db.WithContext(ctx).
		Where("created_at BETWEEN ? AND ?", start, end).
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}
