package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"stockhub/internal/softdelete"
)

// ProductType discriminates sellable products from variant containers.
type ProductType string

const (
	// ProductTypeSimple products carry their own sku, price and stock.
	ProductTypeSimple ProductType = "SIMPLE"
	// ProductTypeVariable products sell through their ProductVariant children.
	ProductTypeVariable ProductType = "VARIABLE"
)

// Product is a catalog entry. SIMPLE products own exactly one Stock row;
// VARIABLE products have no top-level sku, price or stock.
type Product struct {
	Base
	Name        string           `gorm:"index;not null" json:"name"`
	Description *string          `json:"description"`
	SKU         *string          `gorm:"uniqueIndex" json:"sku"`
	Price       *decimal.Decimal `gorm:"type:decimal(14,2)" json:"price"`
	Type        ProductType      `gorm:"type:varchar(16);not null" json:"type"`
	CategoryID  uuid.UUID        `gorm:"type:uuid;not null;index" json:"category_id"`
	BrandID     uuid.UUID        `gorm:"type:uuid;not null;index" json:"brand_id"`
	Audit
	softdelete.Marker

	Category  *Category        `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Brand     *Brand           `gorm:"foreignKey:BrandID" json:"brand,omitempty"`
	Discounts []Discount       `gorm:"many2many:product_discounts" json:"discounts"`
	Stock     *Stock           `gorm:"foreignKey:ProductID" json:"stock,omitempty"`
	Variants  []ProductVariant `gorm:"foreignKey:ProductID" json:"variants,omitempty"`
}

// ProductVariant is one sellable value of a VARIABLE product along a variant axis.
type ProductVariant struct {
	Base
	ProductID     uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id"`
	VariantTypeID uuid.UUID `gorm:"type:uuid;not null;index" json:"variant_type_id"`
	Value         string    `gorm:"not null" json:"value"`
	SKU           string    `gorm:"uniqueIndex;not null" json:"sku"`
	// Price overrides nothing when nil; callers fall back to the product price.
	Price *decimal.Decimal `gorm:"type:decimal(14,2)" json:"price"`
	Audit
	softdelete.Marker

	Product     *Product     `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	VariantType *VariantType `gorm:"foreignKey:VariantTypeID" json:"variant_type,omitempty"`
	Stock       *Stock       `gorm:"foreignKey:ProductVariantID" json:"stock,omitempty"`
}
