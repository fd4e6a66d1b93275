package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"pos-service/models"
	"pos-service/repository"
)

// SeedDemoData loads a small catalog so a fresh install has something to
// sell. Insert failures on existing data are ignored on purpose.
func SeedDemoData(ctx context.Context, products repository.ProductRepository, customers repository.CustomerRepository) error {
	demoProducts := []models.Product{
		{Name: "Espresso Roast 250g", Price: decimal.RequireFromString("9.99"), StockQuantity: 40, ReorderLevel: 10, Barcode: "810001001", Category: "Coffee"},
		{Name: "Cold Brew Bottle", Price: decimal.RequireFromString("4.50"), StockQuantity: 24, ReorderLevel: 6, Barcode: "810001002", Category: "Coffee"},
		{Name: "Ceramic Mug", Price: decimal.RequireFromString("12.00"), StockQuantity: 15, ReorderLevel: 5, Barcode: "810002001", Category: "Merch"},
		{Name: "Tote Bag", Price: decimal.RequireFromString("18.75"), StockQuantity: 8, ReorderLevel: 5, Barcode: "810002002", Category: "Merch"},
		{Name: "Blueberry Muffin", Price: decimal.RequireFromString("3.25"), StockQuantity: 12, ReorderLevel: 4, Barcode: "810003001", Category: "Bakery"},
	}
	for i := range demoProducts {
		demoProducts[i].ID = uuid.NewString()
		if err := products.Create(ctx, &demoProducts[i]); err != nil {
			return err
		}
	}

	demoCustomers := []models.Customer{
		{Name: "Walk-in Customer"},
		{Name: "Dana Reyes", Phone: "555-0138"},
		{Name: "Sam Okafor", Phone: "555-0192"},
	}
	for i := range demoCustomers {
		demoCustomers[i].ID = uuid.NewString()
		if err := customers.Create(ctx, &demoCustomers[i]); err != nil {
			return err
		}
	}
	return nil
}
