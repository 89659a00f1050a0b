package repository

import (
	"stockhub/internal/model"
	"stockhub/internal/softdelete"

	"gorm.io/gorm"
)

// References bundles the soft-delete repositories of the reference entities
// products and purchases point at.
type References struct {
	Suppliers    *softdelete.Repository[model.Supplier, *model.Supplier]
	Categories   *softdelete.Repository[model.Category, *model.Category]
	Brands       *softdelete.Repository[model.Brand, *model.Brand]
	Discounts    *softdelete.Repository[model.Discount, *model.Discount]
	VariantTypes *softdelete.Repository[model.VariantType, *model.VariantType]
}

func NewReferences(db *gorm.DB) *References {
	return &References{
		Suppliers:    softdelete.New[model.Supplier](db, "supplier"),
		Categories:   softdelete.New[model.Category](db, "category"),
		Brands:       softdelete.New[model.Brand](db, "brand"),
		Discounts:    softdelete.New[model.Discount](db, "discount"),
		VariantTypes: softdelete.New[model.VariantType](db, "variant type"),
	}
}

// WithTx returns the same repositories bound to tx.
func (r *References) WithTx(tx *gorm.DB) *References {
	return &References{
		Suppliers:    r.Suppliers.WithTx(tx),
		Categories:   r.Categories.WithTx(tx),
		Brands:       r.Brands.WithTx(tx),
		Discounts:    r.Discounts.WithTx(tx),
		VariantTypes: r.VariantTypes.WithTx(tx),
	}
}
