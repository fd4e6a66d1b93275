package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"pos-service/logger"
	"pos-service/models"
	"pos-service/repository"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// EventPublisher fans a committed state change out to connected sessions.
// Delivery is fire-and-forget.
type EventPublisher interface {
	Publish(event string, data any)
}

// SaleStream receives every committed sale (receipt sink, external consumers).
type SaleStream interface {
	PublishSale(ctx context.Context, sale models.Sale) error
}

// SaleApplier is the read-model hook fed from the committed sale stream.
type SaleApplier interface {
	ApplySale(sale models.Sale)
}

type FinalizeRequest struct {
	CustomerID    string
	Items         []models.SaleItemInput
	PaymentMethod string
}

// SaleService is the only authority allowed to commit a sale and mutate
// product stock. The atomic read-validate-decrement lives in the product
// repository; everything after a successful decrement either commits or is
// compensated back.
type SaleService struct {
	products  repository.ProductRepository
	sales     repository.SaleRepository
	publisher EventPublisher
	stream    SaleStream
	stats     SaleApplier
	alerts    *AlertTracker
	taxRate   decimal.Decimal
}

func NewSaleService(
	products repository.ProductRepository,
	sales repository.SaleRepository,
	publisher EventPublisher,
	stream SaleStream,
	stats SaleApplier,
	alerts *AlertTracker,
	taxRate decimal.Decimal,
) *SaleService {
	return &SaleService{
		products:  products,
		sales:     sales,
		publisher: publisher,
		stream:    stream,
		stats:     stats,
		alerts:    alerts,
		taxRate:   taxRate,
	}
}

func (s *SaleService) FinalizeSale(ctx context.Context, req FinalizeRequest) (*models.Sale, error) {
	if err := validateFinalizeRequest(req); err != nil {
		return nil, err
	}

	// Resolve every product up front: names for the receipt, reorder
	// levels for the alert latch, existence for validation.
	resolved := make(map[string]*models.Product, len(req.Items))
	for _, it := range req.Items {
		p, err := s.products.FindByID(ctx, it.ProductID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown product %s", ErrValidation, it.ProductID)
		}
		if err != nil {
			return nil, fmt.Errorf("resolve product %s: %w", it.ProductID, err)
		}
		resolved[it.ProductID] = p
	}

	newQuantities, err := s.products.DecrementStock(ctx, req.Items)
	if err != nil {
		var shortage *repository.StockShortageError
		if errors.As(err, &shortage) {
			return nil, fmt.Errorf("%w: %w", ErrInsufficientStock, shortage)
		}
		return nil, fmt.Errorf("decrement stock: %w", err)
	}

	sale := s.buildSale(req, resolved)
	if err := s.sales.Create(ctx, sale); err != nil {
		// Stock was already taken; give it back so the failed call
		// leaves no partial state.
		if rerr := s.products.RestoreStock(ctx, req.Items); rerr != nil {
			logger.Log.Error("stock compensation failed after persist error",
				zap.String("sale_number", sale.SaleNumber), zap.Error(rerr))
		}
		return nil, fmt.Errorf("persist sale: %w", err)
	}

	s.emit(ctx, *sale, req.Items, resolved, newQuantities)
	return sale, nil
}

func validateFinalizeRequest(req FinalizeRequest) error {
	if len(req.Items) == 0 {
		return fmt.Errorf("%w: empty item list", ErrValidation)
	}
	if req.PaymentMethod == "" {
		return fmt.Errorf("%w: missing payment method", ErrValidation)
	}
	seen := make(map[string]struct{}, len(req.Items))
	for _, it := range req.Items {
		if it.ProductID == "" {
			return fmt.Errorf("%w: missing product id", ErrValidation)
		}
		if it.Quantity <= 0 {
			return fmt.Errorf("%w: non-positive quantity for product %s", ErrValidation, it.ProductID)
		}
		if it.UnitPrice.IsNegative() {
			return fmt.Errorf("%w: negative unit price for product %s", ErrValidation, it.ProductID)
		}
		if _, dup := seen[it.ProductID]; dup {
			return fmt.Errorf("%w: duplicate product %s", ErrValidation, it.ProductID)
		}
		seen[it.ProductID] = struct{}{}
	}
	return nil
}

func (s *SaleService) buildSale(req FinalizeRequest, resolved map[string]*models.Product) *models.Sale {
	items := make([]models.SaleItem, 0, len(req.Items))
	subtotal := decimal.Zero
	for _, it := range req.Items {
		lineTotal := it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
		items = append(items, models.SaleItem{
			ProductID: it.ProductID,
			Name:      resolved[it.ProductID].Name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			LineTotal: lineTotal,
		})
		subtotal = subtotal.Add(lineTotal)
	}

	// One rounding rule for the whole system: round the tax amount to two
	// decimals, then total = subtotal + tax. Never derive tax from total.
	tax := subtotal.Mul(s.taxRate).Round(2)

	now := time.Now().UTC()
	return &models.Sale{
		ID:            uuid.NewString(),
		SaleNumber:    newSaleNumber(now),
		CustomerID:    req.CustomerID,
		Items:         items,
		Subtotal:      subtotal,
		TaxAmount:     tax,
		Total:         subtotal.Add(tax),
		PaymentMethod: req.PaymentMethod,
		Status:        models.SaleStatusCompleted,
		CreatedAt:     now,
	}
}

func newSaleNumber(now time.Time) string {
	return "SALE-" + now.Format("20060102-150405") + "-" + uuid.NewString()[:8]
}

func (s *SaleService) emit(
	ctx context.Context,
	sale models.Sale,
	items []models.SaleItemInput,
	resolved map[string]*models.Product,
	newQuantities map[string]int,
) {
	if s.stats != nil {
		s.stats.ApplySale(sale)
	}

	if s.publisher != nil {
		s.publisher.Publish(models.EventSaleCompleted, models.SaleCompletedEvent{
			SaleID:     sale.ID,
			SaleNumber: sale.SaleNumber,
			Total:      sale.Total,
			Items:      sale.Items,
		})
		for _, it := range items {
			qty := newQuantities[it.ProductID]
			s.publisher.Publish(models.EventInventoryUpdated, models.InventoryUpdatedEvent{
				ProductID:        it.ProductID,
				NewStockQuantity: qty,
			})
			p := resolved[it.ProductID]
			if s.alerts != nil && s.alerts.Observe(it.ProductID, qty, p.ReorderLevel) {
				s.publisher.Publish(models.EventLowStockAlert, models.LowStockAlertEvent{
					ProductID:     it.ProductID,
					ProductName:   p.Name,
					StockQuantity: qty,
				})
			}
		}
	}

	if s.stream != nil {
		if err := s.stream.PublishSale(ctx, sale); err != nil {
			logger.Log.Warn("sale stream publish failed",
				zap.String("sale_number", sale.SaleNumber), zap.Error(err))
		}
	}

	logger.Log.Info("sale committed",
		zap.String("sale_number", sale.SaleNumber),
		zap.String("total", sale.Total.String()),
		zap.Int("items", len(sale.Items)))
}
