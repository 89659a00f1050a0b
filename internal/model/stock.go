package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Stock is the current quantity of exactly one sellable unit: a SIMPLE product
// or a product variant. It has no deletion marker of its own and is hidden
// whenever its owner is.
type Stock struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Quantity int       `gorm:"not null;default:0" json:"quantity"`
	// Version increases on every mutation and guards against lost updates.
	Version          int        `gorm:"not null;default:0" json:"version"`
	ProductID        *uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"product_id"`
	ProductVariantID *uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"product_variant_id"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`

	Product        *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	ProductVariant *ProductVariant `gorm:"foreignKey:ProductVariantID" json:"product_variant,omitempty"`
}

// ErrStockOwner is returned when a stock row names zero or two owners.
var ErrStockOwner = errors.New("stock must belong to exactly one product or product variant")

func (s *Stock) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if (s.ProductID == nil) == (s.ProductVariantID == nil) {
		return ErrStockOwner
	}
	if s.Quantity < 0 {
		return errors.New("stock quantity cannot be negative")
	}
	return nil
}

// StockOwner identifies the sellable unit a Stock row belongs to.
type StockOwner struct {
	ProductID        *uuid.UUID
	ProductVariantID *uuid.UUID
}

// Valid reports whether exactly one owner is set.
func (o StockOwner) Valid() bool { return (o.ProductID == nil) != (o.ProductVariantID == nil) }

// StockHistoryType is the business reason for a ledger entry.
type StockHistoryType string

const (
	StockHistoryPurchase      StockHistoryType = "PURCHASE"
	StockHistoryAdjustmentIn  StockHistoryType = "ADJUSTMENT_IN"
	StockHistoryAdjustmentOut StockHistoryType = "ADJUSTMENT_OUT"
	StockHistoryReturn        StockHistoryType = "RETURN"
)

// ErrHistoryAppendOnly is returned by any attempt to change a ledger entry.
var ErrHistoryAppendOnly = errors.New("stock history is append-only")

// StockHistory is one immutable ledger entry. For a given stock, NewQuantity
// equals the running sum of Change ordered by Sequence.
type StockHistory struct {
	ID          uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	StockID     uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_stock_history_seq,priority:1" json:"stock_id"`
	Sequence    int              `gorm:"not null;uniqueIndex:idx_stock_history_seq,priority:2" json:"sequence"`
	Change      int              `gorm:"not null" json:"change"`
	NewQuantity int              `gorm:"not null" json:"new_quantity"`
	Type        StockHistoryType `gorm:"type:varchar(20);not null" json:"type"`
	Notes       *string          `json:"notes"`
	CreatedAt   time.Time        `gorm:"index" json:"created_at"`

	Stock *Stock `gorm:"foreignKey:StockID" json:"-"`
}

func (h *StockHistory) BeforeCreate(*gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}

func (*StockHistory) BeforeUpdate(*gorm.DB) error { return ErrHistoryAppendOnly }
func (*StockHistory) BeforeDelete(*gorm.DB) error { return ErrHistoryAppendOnly }
