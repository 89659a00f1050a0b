package model

import (
	"github.com/shopspring/decimal"

	"stockhub/internal/apperror"
	"stockhub/internal/softdelete"
)

// Supplier is the counterparty of a purchase.
type Supplier struct {
	Base
	Name    string  `gorm:"index;not null" json:"name"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
	Audit
	softdelete.Marker
}

// Category groups products.
type Category struct {
	Base
	Name     string `gorm:"uniqueIndex;not null" json:"name"`
	IsActive bool   `gorm:"not null" json:"is_active"`
	Audit
	softdelete.Marker
}

// Brand is the manufacturer label of a product.
type Brand struct {
	Base
	Name     string `gorm:"uniqueIndex;not null" json:"name"`
	IsActive bool   `gorm:"not null" json:"is_active"`
	Audit
	softdelete.Marker
}

// VariantType is a variant axis such as "Color".
type VariantType struct {
	Base
	Name     string `gorm:"uniqueIndex;not null" json:"name"`
	IsActive bool   `gorm:"not null" json:"is_active"`
	Audit
	softdelete.Marker
}

// DiscountType tells how Discount.Value is applied.
type DiscountType string

const (
	DiscountPercentage DiscountType = "PERCENTAGE"
	DiscountFixed      DiscountType = "FIXED"
)

// Discount is attached to products many-to-many.
type Discount struct {
	Base
	Name     string          `gorm:"not null" json:"name"`
	Type     DiscountType    `gorm:"type:varchar(16);not null" json:"type"`
	Value    decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"value"`
	IsActive bool            `gorm:"not null" json:"is_active"`
	Audit
	softdelete.Marker
}

var maxPercentage = decimal.NewFromInt(100)

// Check reports a percentage discount above 100.
func (d *Discount) Check() error {
	if d.Type == DiscountPercentage && d.Value.GreaterThan(maxPercentage) {
		return apperror.Validation("percentage discounts cannot exceed 100")
	}
	return nil
}

// CheckPatch checks the discount as it would be after fields are applied.
func (d *Discount) CheckPatch(fields map[string]interface{}) error {
	next := *d
	if t, ok := fields["type"].(DiscountType); ok {
		next.Type = t
	}
	if v, ok := fields["value"].(decimal.Decimal); ok {
		next.Value = v
	}
	return next.Check()
}
