package models

import "github.com/shopspring/decimal"

// Realtime channel event names. Server -> client except user_connected.
const (
	EventSaleCompleted    = "sale_completed"
	EventInventoryUpdated = "inventory_updated"
	EventLowStockAlert    = "low_stock_alert"
	EventUserConnected    = "user_connected"
)

type SaleCompletedEvent struct {
	SaleID     string          `json:"sale_id"`
	SaleNumber string          `json:"sale_number"`
	Total      decimal.Decimal `json:"total"`
	Items      []SaleItem      `json:"items"`
}

type InventoryUpdatedEvent struct {
	ProductID        string `json:"product_id"`
	NewStockQuantity int    `json:"new_stock_quantity"`
}

type LowStockAlertEvent struct {
	ProductID     string `json:"product_id"`
	ProductName   string `json:"product_name"`
	StockQuantity int    `json:"stock_quantity"`
}

type UserConnectedEvent struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}
