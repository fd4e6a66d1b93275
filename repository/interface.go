package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pos-service/models"
)

var ErrNotFound = errors.New("not found")

// StockShortageError reports the first line whose requested quantity
// exceeded the authoritative stock at decrement time.
type StockShortageError struct {
	ProductID string
	Requested int
	Available int
}

func (e *StockShortageError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

type ProductFilter struct {
	Search   string
	Category string
}

// ProductRepository is the only path to authoritative stock. DecrementStock
// is the serialization point for sale commitment: it either applies every
// line or leaves stock untouched, and two concurrent calls competing for
// the last unit of a product cannot both succeed.
type ProductRepository interface {
	FindByID(ctx context.Context, id string) (*models.Product, error)
	Find(ctx context.Context, filter ProductFilter) ([]models.Product, error)
	Count(ctx context.Context) (int64, error)
	CountLowStock(ctx context.Context) (int64, error)
	Categories(ctx context.Context) ([]string, error)
	Create(ctx context.Context, p *models.Product) error

	// DecrementStock atomically applies every requested decrement and
	// returns the post-decrement quantity per product. On shortage it
	// returns *StockShortageError with no net stock change.
	DecrementStock(ctx context.Context, items []models.SaleItemInput) (map[string]int, error)

	// RestoreStock adds quantities back (compensation and replenishment).
	RestoreStock(ctx context.Context, items []models.SaleItemInput) error

	// Replenish increases one product's stock and returns the updated product.
	Replenish(ctx context.Context, id string, qty int) (*models.Product, error)
}

// SaleRepository is append-only: committed sales are never updated.
type SaleRepository interface {
	Create(ctx context.Context, s *models.Sale) error
	FindSince(ctx context.Context, since time.Time) ([]models.Sale, error)
}

type CustomerRepository interface {
	FindByID(ctx context.Context, id string) (*models.Customer, error)
	FindAll(ctx context.Context) ([]models.Customer, error)
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, c *models.Customer) error
}
