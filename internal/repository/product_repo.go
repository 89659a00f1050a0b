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

// ProductRepository defines the data access contract for products and their
// variants. Reads and deletes of either family go through the soft-delete
// repositories returned by Products and Variants.
type ProductRepository interface {
	Products() *softdelete.Repository[model.Product, *model.Product]
	Variants() *softdelete.Repository[model.ProductVariant, *model.ProductVariant]

	// FindDetailed loads a product with everything a client renders:
	// category, brand, discounts, stock and live variants with their axis and stock.
	FindDetailed(ctx context.Context, opts softdelete.Options, id uuid.UUID) (*model.Product, error)
	List(ctx context.Context, opts softdelete.Options) ([]model.Product, error)

	// Used inside transactions: callers pass the tx instance
	CreateTx(tx *gorm.DB, p *model.Product) error
	CreateVariantTx(tx *gorm.DB, v *model.ProductVariant) error
	UpdateFieldsTx(tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) error
	UpdateVariantFieldsTx(tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) error
	ReplaceDiscountsTx(tx *gorm.DB, p *model.Product, discounts []model.Discount) error
	LiveVariantIDsTx(tx *gorm.DB, productID uuid.UUID) ([]uuid.UUID, error)
	// SKUInUseTx reports whether any product or variant other than exceptID,
	// deleted or not, already carries sku.
	SKUInUseTx(tx *gorm.DB, sku string, exceptID uuid.UUID) (bool, error)

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type productRepo struct {
	db       *gorm.DB
	products *softdelete.Repository[model.Product, *model.Product]
	variants *softdelete.Repository[model.ProductVariant, *model.ProductVariant]
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepo{
		db:       db,
		products: softdelete.New[model.Product](db, "product"),
		variants: softdelete.New[model.ProductVariant](db, "product variant"),
	}
}

func (r *productRepo) Products() *softdelete.Repository[model.Product, *model.Product] {
	return r.products
}

func (r *productRepo) Variants() *softdelete.Repository[model.ProductVariant, *model.ProductVariant] {
	return r.variants
}

func (r *productRepo) FindDetailed(ctx context.Context, opts softdelete.Options, id uuid.UUID) (*model.Product, error) {
	return r.products.FindByID(ctx, opts, id, withDetails)
}

func (r *productRepo) List(ctx context.Context, opts softdelete.Options) ([]model.Product, error) {
	return r.products.Find(ctx, opts, withDetails, func(q *gorm.DB) *gorm.DB {
		return q.Order("products.created_at DESC")
	})
}

// withDetails preloads the product graph. References are loaded unscoped so a
// product keeps showing a category or brand that was deleted after it.
// Variants are always restricted to live rows: an unscoped parent query would
// otherwise propagate into the preload.
func withDetails(q *gorm.DB) *gorm.DB {
	return q.
		Preload("Category", unscoped).
		Preload("Brand", unscoped).
		Preload("Discounts", unscoped).
		Preload("Stock").
		Preload("Variants", func(db *gorm.DB) *gorm.DB {
			return db.Where("product_variants.deleted_at IS NULL").Order("product_variants.created_at ASC")
		}).
		Preload("Variants.VariantType", unscoped).
		Preload("Variants.Stock")
}

func unscoped(db *gorm.DB) *gorm.DB { return db.Unscoped() }

func (r *productRepo) CreateTx(tx *gorm.DB, p *model.Product) error {
	return apperror.FromDB(tx.Omit(clause.Associations).Create(p).Error, "product")
}

func (r *productRepo) CreateVariantTx(tx *gorm.DB, v *model.ProductVariant) error {
	return apperror.FromDB(tx.Omit(clause.Associations).Create(v).Error, "product variant")
}

func (r *productRepo) UpdateFieldsTx(tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return r.products.WithTx(tx).Updates(tx.Statement.Context, id, fields)
}

func (r *productRepo) UpdateVariantFieldsTx(tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return r.variants.WithTx(tx).Updates(tx.Statement.Context, id, fields)
}

func (r *productRepo) ReplaceDiscountsTx(tx *gorm.DB, p *model.Product, discounts []model.Discount) error {
	return apperror.FromDB(tx.Model(p).Association("Discounts").Replace(discounts), "product")
}

func (r *productRepo) LiveVariantIDsTx(tx *gorm.DB, productID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := tx.Model(&model.ProductVariant{}).
		Where("product_id = ?", productID).
		Order("created_at ASC").
		Pluck("id", &ids).Error
	return ids, apperror.FromDB(err, "product variant")
}

func (r *productRepo) SKUInUseTx(tx *gorm.DB, sku string, exceptID uuid.UUID) (bool, error) {
	var n int64
	err := tx.Unscoped().Model(&model.Product{}).
		Where("sku = ? AND id <> ?", sku, exceptID).
		Count(&n).Error
	if err != nil || n > 0 {
		return n > 0, err
	}
	err = tx.Unscoped().Model(&model.ProductVariant{}).
		Where("sku = ? AND id <> ?", sku, exceptID).
		Count(&n).Error
	return n > 0, err
}

func (r *productRepo) DB() *gorm.DB { return r.db }
