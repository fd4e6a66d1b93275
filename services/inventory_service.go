package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"pos-service/logger"
	"pos-service/models"
	"pos-service/repository"
)

// InventoryService covers the out-of-band stock mutations the finalizer
// does not own: replenishment. It shares the alert latch so a restock above
// the threshold re-arms the low-stock alert.
type InventoryService struct {
	products  repository.ProductRepository
	publisher EventPublisher
	alerts    *AlertTracker
}

func NewInventoryService(products repository.ProductRepository, publisher EventPublisher, alerts *AlertTracker) *InventoryService {
	return &InventoryService{products: products, publisher: publisher, alerts: alerts}
}

func (s *InventoryService) Replenish(ctx context.Context, productID string, qty int) (*models.Product, error) {
	if qty <= 0 {
		return nil, fmt.Errorf("%w: replenish quantity must be positive", ErrValidation)
	}

	p, err := s.products.Replenish(ctx, productID, qty)
	if err != nil {
		return nil, err
	}

	if s.alerts != nil {
		s.alerts.Observe(p.ID, p.StockQuantity, p.ReorderLevel)
	}
	if s.publisher != nil {
		s.publisher.Publish(models.EventInventoryUpdated, models.InventoryUpdatedEvent{
			ProductID:        p.ID,
			NewStockQuantity: p.StockQuantity,
		})
	}

	logger.Log.Info("stock replenished",
		zap.String("product_id", p.ID), zap.Int("stock_quantity", p.StockQuantity))
	return p, nil
}
