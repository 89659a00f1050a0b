package dto

import "github.com/shopspring/decimal"

// ─── Response DTOs ───────────────────────────────────────────────────────────

type DashboardStats struct {
	TotalProducts      int64           `json:"total_products"`
	TotalSuppliers     int64           `json:"total_suppliers"`
	LowStockItemsCount int64           `json:"low_stock_items_count"`
	TotalStockValue    decimal.Decimal `json:"total_stock_value"`
}

type DashboardSummary struct {
	Stats           DashboardStats    `json:"stats"`
	RecentPurchases []PurchaseSummary `json:"recent_purchases"`
	LowStockItems   []StockResponse   `json:"low_stock_items"`
}
