package repository

import (
	"context"

	"stockhub/internal/apperror"
	"stockhub/internal/model"
	"stockhub/internal/softdelete"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StockRepository is the persistence side of the ledger: stock rows and their
// append-only history.
type StockRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Stock, error)
	// ListLive returns every stock whose owner is live, newest change first,
	// with the owner (and a variant's parent product) preloaded.
	ListLive(ctx context.Context) ([]model.Stock, error)
	History(ctx context.Context, stockID uuid.UUID, offset, limit int) ([]model.StockHistory, int64, error)
	// Ledger returns the full history of a stock in application order.
	Ledger(ctx context.Context, stockID uuid.UUID) ([]model.StockHistory, error)

	// Used inside transactions: callers pass the tx instance
	CreateTx(tx *gorm.DB, s *model.Stock) error
	LockTx(tx *gorm.DB, id uuid.UUID) (*model.Stock, error)
	// FindByOwnerTx resolves the stock of a product or variant. Unless
	// opts.IncludeDeleted is set the owner, and a variant's parent product,
	// must be live.
	FindByOwnerTx(tx *gorm.DB, owner model.StockOwner, opts softdelete.Options) (*model.Stock, error)
	// UpdateQuantityTx writes quantity and bumps version, provided the row is
	// still at version. It reports whether the row was updated.
	UpdateQuantityTx(tx *gorm.DB, id uuid.UUID, version, quantity int) (bool, error)
	AppendHistoryTx(tx *gorm.DB, h *model.StockHistory) error

	DB() *gorm.DB
}

type stockRepo struct{ db *gorm.DB }

func NewStockRepository(db *gorm.DB) StockRepository { return &stockRepo{db: db} }

func (r *stockRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Stock, error) {
	var s model.Stock
	err := r.db.WithContext(ctx).
		Preload("Product").
		Preload("ProductVariant.Product").
		First(&s, "id = ?", id).Error
	if err != nil {
		return nil, apperror.FromDB(err, "stock")
	}
	return &s, nil
}

func (r *stockRepo) ListLive(ctx context.Context) ([]model.Stock, error) {
	var stocks []model.Stock
	err := r.db.WithContext(ctx).
		Scopes(LiveStockOwner).
		Preload("Product").
		Preload("ProductVariant.Product").
		Order("stocks.updated_at DESC").
		Find(&stocks).Error
	return stocks, apperror.FromDB(err, "stock")
}

// LiveStockOwner restricts a stocks query to rows whose owner is not deleted.
// A variant's stock is hidden when either the variant or its product is deleted.
func LiveStockOwner(q *gorm.DB) *gorm.DB {
	return q.
		Joins("LEFT JOIN products sp ON sp.id = stocks.product_id").
		Joins("LEFT JOIN product_variants sv ON sv.id = stocks.product_variant_id").
		Joins("LEFT JOIN products svp ON svp.id = sv.product_id").
		Where("((sp.id IS NOT NULL AND sp.deleted_at IS NULL) OR " +
			"(sv.id IS NOT NULL AND sv.deleted_at IS NULL AND svp.deleted_at IS NULL))")
}

func (r *stockRepo) History(ctx context.Context, stockID uuid.UUID, offset, limit int) ([]model.StockHistory, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.StockHistory{}).Where("stock_id = ?", stockID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []model.StockHistory
	err := q.Order("sequence DESC").Offset(offset).Limit(limit).Find(&rows).Error
	return rows, total, err
}

func (r *stockRepo) Ledger(ctx context.Context, stockID uuid.UUID) ([]model.StockHistory, error) {
	var rows []model.StockHistory
	err := r.db.WithContext(ctx).
		Where("stock_id = ?", stockID).
		Order("sequence ASC").
		Find(&rows).Error
	return rows, err
}

func (r *stockRepo) CreateTx(tx *gorm.DB, s *model.Stock) error {
	return apperror.FromDB(tx.Omit(clause.Associations).Create(s).Error, "stock")
}

func (r *stockRepo) LockTx(tx *gorm.DB, id uuid.UUID) (*model.Stock, error) {
	var s model.Stock
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&s, "id = ?", id).Error
	if err != nil {
		return nil, apperror.FromDB(err, "stock")
	}
	return &s, nil
}

func (r *stockRepo) FindByOwnerTx(tx *gorm.DB, owner model.StockOwner, opts softdelete.Options) (*model.Stock, error) {
	if !owner.Valid() {
		return nil, apperror.Validation("stock owner must be exactly one of product or variant")
	}
	q := tx.Model(&model.Stock{})
	switch {
	case owner.ProductID != nil:
		q = q.Where("stocks.product_id = ?", *owner.ProductID)
		if !opts.IncludeDeleted {
			q = q.Where("EXISTS (SELECT 1 FROM products p WHERE p.id = stocks.product_id AND p.deleted_at IS NULL)")
		}
	default:
		q = q.Where("stocks.product_variant_id = ?", *owner.ProductVariantID)
		if !opts.IncludeDeleted {
			q = q.Where("EXISTS (SELECT 1 FROM product_variants v JOIN products p ON p.id = v.product_id " +
				"WHERE v.id = stocks.product_variant_id AND v.deleted_at IS NULL AND p.deleted_at IS NULL)")
		}
	}
	var s model.Stock
	if err := q.First(&s).Error; err != nil {
		return nil, apperror.FromDB(err, "stock")
	}
	return &s, nil
}

func (r *stockRepo) UpdateQuantityTx(tx *gorm.DB, id uuid.UUID, version, quantity int) (bool, error) {
	res := tx.Model(&model.Stock{}).
		Where("id = ? AND version = ?", id, version).
		Updates(map[string]interface{}{
			"quantity": quantity,
			"version":  version + 1,
		})
	if res.Error != nil {
		return false, apperror.FromDB(res.Error, "stock")
	}
	return res.RowsAffected == 1, nil
}

func (r *stockRepo) AppendHistoryTx(tx *gorm.DB, h *model.StockHistory) error {
	return apperror.FromDB(tx.Omit(clause.Associations).Create(h).Error, "stock history")
}

func (r *stockRepo) DB() *gorm.DB { return r.db }
