package dto

import (
	"time"

	"stockhub/internal/apperror"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

// PurchaseItemInput names exactly one of a SIMPLE product or a variant.
type PurchaseItemInput struct {
	ProductID        *string         `json:"product_id"         validate:"omitempty,uuid"`
	ProductVariantID *string         `json:"product_variant_id" validate:"omitempty,uuid"`
	Quantity         int             `json:"quantity"           validate:"required,gt=0"`
	Price            decimal.Decimal `json:"price"              validate:"required,gt=0"`
}

// Subtotal is quantity × price.
func (i PurchaseItemInput) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type CreatePurchaseRequest struct {
	SupplierID   string              `json:"supplier_id"   validate:"required,uuid"`
	PurchaseDate *time.Time          `json:"purchase_date"`
	Notes        *string             `json:"notes"         validate:"omitempty,max=1000"`
	Items        []PurchaseItemInput `json:"items"         validate:"required,min=1,dive"`
}

func (r CreatePurchaseRequest) Check() error { return checkItems(r.Items) }

// UpdatePurchaseRequest is a partial update. A nil Items leaves the line items
// and stock untouched; a non-nil Items replaces them.
type UpdatePurchaseRequest struct {
	SupplierID   *string             `json:"supplier_id"   validate:"omitempty,uuid"`
	PurchaseDate *time.Time          `json:"purchase_date"`
	Notes        *string             `json:"notes"         validate:"omitempty,max=1000"`
	Items        []PurchaseItemInput `json:"items"         validate:"omitempty,dive"`
}

func (r UpdatePurchaseRequest) Check() error {
	if r.Items != nil && len(r.Items) == 0 {
		return apperror.Validation("items must not be empty")
	}
	return checkItems(r.Items)
}

func checkItems(items []PurchaseItemInput) error {
	for i, it := range items {
		hasProduct := it.ProductID != nil && *it.ProductID != ""
		hasVariant := it.ProductVariantID != nil && *it.ProductVariantID != ""
		if hasProduct == hasVariant {
			return apperror.Validation("items[%d]: exactly one of product_id or product_variant_id is required", i)
		}
	}
	return nil
}

// TotalOf sums the subtotals of items.
func TotalOf(items []PurchaseItemInput) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// PurchaseSummary is the list view of a purchase.
type PurchaseSummary struct {
	ID            string          `json:"id"`
	InvoiceNumber string          `json:"invoice_number"`
	SupplierID    string          `json:"supplier_id"`
	SupplierName  string          `json:"supplier_name"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PurchaseDate  time.Time       `json:"purchase_date"`
	ItemCount     int64           `json:"item_count"`
}
