package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	SaleStatusCompleted = "completed"
	SaleStatusFailed    = "failed"
)

// SaleItem is a committed line of a sale. Unit prices are frozen at commit
// time; later price changes never touch a persisted sale.
type SaleItem struct {
	ProductID string          `json:"product_id" bson:"product_id"`
	Name      string          `json:"name" bson:"name"`
	Quantity  int             `json:"quantity" bson:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price" bson:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total" bson:"line_total"`
}

// Sale is an append-only record. It is created exactly once by a successful
// finalize and never mutated afterwards.
type Sale struct {
	ID            string          `json:"id" bson:"_id"`
	SaleNumber    string          `json:"sale_number" bson:"sale_number"`
	CustomerID    string          `json:"customer_id,omitempty" bson:"customer_id,omitempty"`
	Items         []SaleItem      `json:"items" bson:"items"`
	Subtotal      decimal.Decimal `json:"subtotal" bson:"subtotal"`
	TaxAmount     decimal.Decimal `json:"tax_amount" bson:"tax_amount"`
	Total         decimal.Decimal `json:"total" bson:"total"`
	PaymentMethod string          `json:"payment_method" bson:"payment_method"`
	Status        string          `json:"status" bson:"status"`
	CreatedAt     time.Time       `json:"created_at" bson:"created_at"`
}

// SaleItemInput is one requested line of a cart snapshot handed to the
// finalizer. UnitPrice is the price captured when the line was added.
type SaleItemInput struct {
	ProductID string          `json:"product_id" binding:"required"`
	Quantity  int             `json:"quantity" binding:"required"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}
