package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"stockhub/internal/softdelete"
)

// Purchase is an inbound supplier invoice. TotalAmount always equals the sum
// of its items' subtotals.
type Purchase struct {
	Base
	InvoiceNumber string          `gorm:"uniqueIndex;not null" json:"invoice_number"`
	SupplierID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"supplier_id"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(16,2);not null" json:"total_amount"`
	PurchaseDate  time.Time       `gorm:"not null;index" json:"purchase_date"`
	Notes         *string         `json:"notes"`
	Audit
	softdelete.Marker

	Supplier *Supplier      `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`
	Items    []PurchaseItem `gorm:"foreignKey:PurchaseID" json:"items"`
}

// PurchaseItem is one line of a purchase. It targets exactly one of a SIMPLE
// product or a product variant.
type PurchaseItem struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	PurchaseID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"purchase_id"`
	ProductID        *uuid.UUID      `gorm:"type:uuid;index" json:"product_id"`
	ProductVariantID *uuid.UUID      `gorm:"type:uuid;index" json:"product_variant_id"`
	Quantity         int             `gorm:"not null" json:"quantity"`
	Price            decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"price"`
	Subtotal         decimal.Decimal `gorm:"type:decimal(16,2);not null" json:"subtotal"`

	Product        *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	ProductVariant *ProductVariant `gorm:"foreignKey:ProductVariantID" json:"product_variant,omitempty"`
}

func (i *PurchaseItem) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
