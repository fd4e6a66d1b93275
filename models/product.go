package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID            string          `json:"id" bson:"_id"`
	Name          string          `json:"name" bson:"name"`
	Price         decimal.Decimal `json:"price" bson:"price"`
	StockQuantity int             `json:"stock_quantity" bson:"stock_quantity"`
	ReorderLevel  int             `json:"reorder_level" bson:"reorder_level"`
	Barcode       string          `json:"barcode,omitempty" bson:"barcode,omitempty"`
	Category      string          `json:"category" bson:"category"`
	CreatedAt     time.Time       `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" bson:"updated_at"`
}
