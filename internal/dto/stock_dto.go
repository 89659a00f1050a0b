package dto

import (
	"time"

	"stockhub/internal/apperror"
	"stockhub/internal/model"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

// AdjustStockRequest is a manual, audited stock correction.
type AdjustStockRequest struct {
	StockID string                 `json:"stock_id" validate:"required,uuid"`
	Change  int                    `json:"change"`
	Type    model.StockHistoryType `json:"type"     validate:"required,oneof=ADJUSTMENT_IN ADJUSTMENT_OUT RETURN"`
	Notes   *string                `json:"notes"    validate:"omitempty,min=3,max=500"`
}

func (r AdjustStockRequest) Check() error {
	if r.Change == 0 {
		return apperror.Validation("change must not be zero")
	}
	return nil
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// StockOwnerSummary names the sellable unit behind a stock row.
type StockOwnerSummary struct {
	ProductID    string           `json:"product_id"`
	ProductName  string           `json:"product_name"`
	VariantID    *string          `json:"variant_id,omitempty"`
	VariantValue *string          `json:"variant_value,omitempty"`
	SKU          string           `json:"sku"`
	Price        *decimal.Decimal `json:"price"`
}

type StockResponse struct {
	ID        string            `json:"id"`
	Quantity  int               `json:"quantity"`
	Version   int               `json:"version"`
	UpdatedAt time.Time         `json:"updated_at"`
	Owner     StockOwnerSummary `json:"owner"`
}

type StockHistoryResponse struct {
	ID          string                 `json:"id"`
	StockID     string                 `json:"stock_id"`
	Sequence    int                    `json:"sequence"`
	Change      int                    `json:"change"`
	NewQuantity int                    `json:"new_quantity"`
	Type        model.StockHistoryType `json:"type"`
	Notes       *string                `json:"notes"`
	CreatedAt   time.Time              `json:"created_at"`
}

// StockToResponse flattens a stock row whose owner (and, for variants, the
// parent product) has been preloaded.
func StockToResponse(s *model.Stock) StockResponse {
	resp := StockResponse{
		ID:        s.ID.String(),
		Quantity:  s.Quantity,
		Version:   s.Version,
		UpdatedAt: s.UpdatedAt,
	}
	switch {
	case s.Product != nil:
		resp.Owner.ProductID = s.Product.ID.String()
		resp.Owner.ProductName = s.Product.Name
		if s.Product.SKU != nil {
			resp.Owner.SKU = *s.Product.SKU
		}
		resp.Owner.Price = s.Product.Price
	case s.ProductVariant != nil:
		v := s.ProductVariant
		id := v.ID.String()
		value := v.Value
		resp.Owner.VariantID = &id
		resp.Owner.VariantValue = &value
		resp.Owner.SKU = v.SKU
		resp.Owner.ProductID = v.ProductID.String()
		resp.Owner.Price = v.Price
		if v.Product != nil {
			resp.Owner.ProductName = v.Product.Name
			if resp.Owner.Price == nil {
				resp.Owner.Price = v.Product.Price
			}
		}
	}
	return resp
}

func HistoryToResponse(h *model.StockHistory) StockHistoryResponse {
	return StockHistoryResponse{
		ID:          h.ID.String(),
		StockID:     h.StockID.String(),
		Sequence:    h.Sequence,
		Change:      h.Change,
		NewQuantity: h.NewQuantity,
		Type:        h.Type,
		Notes:       h.Notes,
		CreatedAt:   h.CreatedAt,
	}
}
