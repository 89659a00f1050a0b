package dto

import (
	"stockhub/internal/apperror"
	"stockhub/internal/model"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

// VariantInput describes one variant of a VARIABLE product. ID is set when an
// update refers to an existing variant.
type VariantInput struct {
	ID            *string          `json:"id"              validate:"omitempty,uuid"`
	VariantTypeID string           `json:"variant_type_id" validate:"required,uuid"`
	Value         string           `json:"value"           validate:"required,min=1,max=100"`
	SKU           string           `json:"sku"             validate:"required,min=1,max=64"`
	Price         *decimal.Decimal `json:"price"           validate:"omitempty,gt=0"`
	Stock         *int             `json:"stock"           validate:"omitempty,min=0"`
}

type CreateProductRequest struct {
	Name        string            `json:"name"         validate:"required,min=3,max=150"`
	Description *string           `json:"description"`
	Type        model.ProductType `json:"type"         validate:"required,oneof=SIMPLE VARIABLE"`
	CategoryID  string            `json:"category_id"  validate:"required,uuid"`
	BrandID     string            `json:"brand_id"     validate:"required,uuid"`
	DiscountIDs []string          `json:"discount_ids" validate:"omitempty,dive,uuid"`

	// SIMPLE only
	SKU   *string          `json:"sku"   validate:"omitempty,min=1,max=64"`
	Price *decimal.Decimal `json:"price" validate:"omitempty,gt=0"`
	Stock *int             `json:"stock" validate:"omitempty,min=0"`

	// VARIABLE only
	Variants []VariantInput `json:"variants" validate:"omitempty,dive"`
}

// Check enforces the rules that depend on the product type.
func (r CreateProductRequest) Check() error {
	switch r.Type {
	case model.ProductTypeSimple:
		if r.SKU == nil || *r.SKU == "" {
			return apperror.Validation("sku is required for SIMPLE products")
		}
		if r.Price == nil {
			return apperror.Validation("price is required for SIMPLE products")
		}
		if len(r.Variants) > 0 {
			return apperror.Validation("SIMPLE products cannot have variants")
		}
	case model.ProductTypeVariable:
		if len(r.Variants) == 0 {
			return apperror.Validation("VARIABLE products need at least one variant")
		}
		for i, v := range r.Variants {
			if v.ID != nil {
				return apperror.Validation("variants[%d]: id must not be set on create", i)
			}
		}
		return checkVariableTopLevel(r.SKU, r.Price, r.Stock)
	}
	return nil
}

// UpdateProductRequest is a partial update. Type is required and must match
// the stored product type. A nil Variants leaves the variant set untouched.
type UpdateProductRequest struct {
	Type        model.ProductType `json:"type"         validate:"required,oneof=SIMPLE VARIABLE"`
	Name        *string           `json:"name"         validate:"omitempty,min=3,max=150"`
	Description *string           `json:"description"`
	CategoryID  *string           `json:"category_id"  validate:"omitempty,uuid"`
	BrandID     *string           `json:"brand_id"     validate:"omitempty,uuid"`
	DiscountIDs []string          `json:"discount_ids" validate:"omitempty,dive,uuid"`

	SKU   *string          `json:"sku"   validate:"omitempty,min=1,max=64"`
	Price *decimal.Decimal `json:"price" validate:"omitempty,gt=0"`
	Stock *int             `json:"stock" validate:"omitempty,min=0"`

	Variants []VariantInput `json:"variants" validate:"omitempty,dive"`
}

func (r UpdateProductRequest) Check() error {
	switch r.Type {
	case model.ProductTypeSimple:
		if len(r.Variants) > 0 {
			return apperror.Validation("SIMPLE products cannot have variants")
		}
	case model.ProductTypeVariable:
		if r.Variants != nil && len(r.Variants) == 0 {
			return apperror.Validation("VARIABLE products need at least one variant")
		}
		return checkVariableTopLevel(r.SKU, r.Price, r.Stock)
	}
	return nil
}

func checkVariableTopLevel(sku *string, price *decimal.Decimal, stock *int) error {
	if sku != nil && *sku != "" {
		return apperror.Validation("VARIABLE products cannot have a top-level sku")
	}
	if price != nil {
		return apperror.Validation("VARIABLE products cannot have a top-level price")
	}
	if stock != nil {
		return apperror.Validation("VARIABLE products keep stock on their variants")
	}
	return nil
}
