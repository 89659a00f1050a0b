package repository

import (
	"context"

	"stockhub/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DashboardRepository runs the read-only aggregate queries behind the summary.
type DashboardRepository interface {
	CountProducts(ctx context.Context) (int64, error)
	CountSuppliers(ctx context.Context) (int64, error)
	CountLowStock(ctx context.Context, threshold int) (int64, error)
	StockValue(ctx context.Context) (decimal.Decimal, error)
	LowestStock(ctx context.Context, threshold, limit int) ([]model.Stock, error)
}

type dashboardRepo struct{ db *gorm.DB }

func NewDashboardRepository(db *gorm.DB) DashboardRepository { return &dashboardRepo{db: db} }

func (r *dashboardRepo) CountProducts(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Product{}).Count(&n).Error
	return n, err
}

func (r *dashboardRepo) CountSuppliers(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Supplier{}).Count(&n).Error
	return n, err
}

// lowStock matches stock that is running out but not yet empty.
func lowStock(threshold int) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		return q.Where("stocks.quantity > 0 AND stocks.quantity <= ?", threshold)
	}
}

func (r *dashboardRepo) CountLowStock(ctx context.Context, threshold int) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Stock{}).
		Scopes(LiveStockOwner, lowStock(threshold)).
		Count(&n).Error
	return n, err
}

// StockValue is Σ quantity × unit price over live owners, where a variant
// without its own price falls back to its product's price.
func (r *dashboardRepo) StockValue(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := r.db.WithContext(ctx).Model(&model.Stock{}).
		Scopes(LiveStockOwner).
		Select("SUM(stocks.quantity * COALESCE(sv.price, svp.price, sp.price))").
		Row().Scan(&total)
	if err != nil || !total.Valid {
		return decimal.Zero, err
	}
	return total.Decimal, nil
}

func (r *dashboardRepo) LowestStock(ctx context.Context, threshold, limit int) ([]model.Stock, error) {
	var stocks []model.Stock
	err := r.db.WithContext(ctx).
		Scopes(LiveStockOwner, lowStock(threshold)).
		Preload("Product").
		Preload("ProductVariant.Product").
		Order("stocks.quantity ASC").
		Limit(limit).
		Find(&stocks).Error
	return stocks, err
}
