package repository

import (
	"context"
	"errors"

	"stockhub/internal/apperror"
	"stockhub/internal/dto"
	"stockhub/internal/model"
	"stockhub/internal/softdelete"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PurchaseRepository interface {
	Purchases() *softdelete.Repository[model.Purchase, *model.Purchase]

	// FindDetailed loads a live purchase with supplier and items; each item
	// carries its product or variant (and the variant's product) even when
	// those were deleted after the purchase.
	FindDetailed(ctx context.Context, id uuid.UUID) (*model.Purchase, error)
	List(ctx context.Context, p dto.Pagination) ([]dto.PurchaseSummary, int64, error)
	Recent(ctx context.Context, limit int) ([]dto.PurchaseSummary, error)

	// Used inside transactions: callers pass the tx instance
	CreateTx(tx *gorm.DB, p *model.Purchase) error
	CreateItemTx(tx *gorm.DB, item *model.PurchaseItem) error
	FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Purchase, error)
	UpdateFieldsTx(tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) error
	DeleteItemsTx(tx *gorm.DB, purchaseID uuid.UUID) error
	InvoiceExistsTx(tx *gorm.DB, invoice string) (bool, error)

	DB() *gorm.DB
}

type purchaseRepo struct {
	db        *gorm.DB
	purchases *softdelete.Repository[model.Purchase, *model.Purchase]
}

func NewPurchaseRepository(db *gorm.DB) PurchaseRepository {
	return &purchaseRepo{db: db, purchases: softdelete.New[model.Purchase](db, "purchase")}
}

func (r *purchaseRepo) Purchases() *softdelete.Repository[model.Purchase, *model.Purchase] {
	return r.purchases
}

func (r *purchaseRepo) FindDetailed(ctx context.Context, id uuid.UUID) (*model.Purchase, error) {
	return r.purchases.FindByID(ctx, softdelete.Default, id, purchaseDetails)
}

func purchaseDetails(q *gorm.DB) *gorm.DB {
	return q.
		Preload("Supplier", unscoped).
		Preload("Items").
		Preload("Items.Product", unscoped).
		Preload("Items.ProductVariant", unscoped).
		Preload("Items.ProductVariant.Product", unscoped)
}

func (r *purchaseRepo) summaries(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("purchases").
		Select("purchases.id, purchases.invoice_number, purchases.supplier_id, " +
			"suppliers.name AS supplier_name, purchases.total_amount, purchases.purchase_date, " +
			"(SELECT COUNT(*) FROM purchase_items pi WHERE pi.purchase_id = purchases.id) AS item_count").
		Joins("LEFT JOIN suppliers ON suppliers.id = purchases.supplier_id").
		Where("purchases.deleted_at IS NULL")
}

func (r *purchaseRepo) List(ctx context.Context, p dto.Pagination) ([]dto.PurchaseSummary, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Purchase{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	rows := []dto.PurchaseSummary{}
	err := r.summaries(ctx).
		Order("purchases.purchase_date DESC, purchases.created_at DESC").
		Offset(p.Offset()).Limit(p.Limit).
		Scan(&rows).Error
	return rows, total, err
}

func (r *purchaseRepo) Recent(ctx context.Context, limit int) ([]dto.PurchaseSummary, error) {
	rows := []dto.PurchaseSummary{}
	err := r.summaries(ctx).
		Order("purchases.purchase_date DESC, purchases.created_at DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *purchaseRepo) CreateTx(tx *gorm.DB, p *model.Purchase) error {
	return apperror.FromDB(tx.Omit(clause.Associations).Create(p).Error, "purchase")
}

func (r *purchaseRepo) CreateItemTx(tx *gorm.DB, item *model.PurchaseItem) error {
	return apperror.FromDB(tx.Omit(clause.Associations).Create(item).Error, "purchase item")
}

// FindForUpdateTx locks the purchase row and loads its current items.
func (r *purchaseRepo) FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Purchase, error) {
	var p model.Purchase
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Items").
		First(&p, "id = ?", id).Error
	if err != nil {
		return nil, apperror.FromDB(err, "purchase")
	}
	return &p, nil
}

func (r *purchaseRepo) UpdateFieldsTx(tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return r.purchases.WithTx(tx).Updates(tx.Statement.Context, id, fields)
}

func (r *purchaseRepo) DeleteItemsTx(tx *gorm.DB, purchaseID uuid.UUID) error {
	return tx.Where("purchase_id = ?", purchaseID).Delete(&model.PurchaseItem{}).Error
}

func (r *purchaseRepo) InvoiceExistsTx(tx *gorm.DB, invoice string) (bool, error) {
	var p model.Purchase
	err := tx.Unscoped().Select("id").Where("invoice_number = ?", invoice).Take(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (r *purchaseRepo) DB() *gorm.DB { return r.db }
