package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"pos-service/logger"
	"pos-service/models"
	"pos-service/repository"
	"pos-service/services"
)

type SaleFinalizer interface {
	FinalizeSale(ctx context.Context, req services.FinalizeRequest) (*models.Sale, error)
}

type SaleController struct {
	finalizer SaleFinalizer
}

func NewSaleController(finalizer SaleFinalizer) *SaleController {
	return &SaleController{finalizer: finalizer}
}

type saleItemRequest struct {
	ProductID string          `json:"product_id" binding:"required"`
	Quantity  int             `json:"quantity" binding:"required"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type saleRequest struct {
	CustomerID    string            `json:"customer_id"`
	Items         []saleItemRequest `json:"items" binding:"required"`
	PaymentMethod string            `json:"payment_method" binding:"required"`
}

// CreateSale finalizes a cart snapshot into a committed sale.
func (sc *SaleController) CreateSale(c *gin.Context) {
	var req saleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid sale payload"})
		return
	}

	items := make([]models.SaleItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, models.SaleItemInput{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}

	sale, err := sc.finalizer.FinalizeSale(c.Request.Context(), services.FinalizeRequest{
		CustomerID:    req.CustomerID,
		Items:         items,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		var shortage *repository.StockShortageError
		switch {
		case errors.As(err, &shortage):
			c.JSON(http.StatusConflict, gin.H{
				"error":      "insufficient_stock",
				"product_id": shortage.ProductID,
				"requested":  shortage.Requested,
				"available":  shortage.Available,
			})
		case errors.Is(err, services.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Log.Error("finalize sale failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "sale could not be completed, cart preserved"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"sale_id":     sale.ID,
		"sale_number": sale.SaleNumber,
		"subtotal":    sale.Subtotal,
		"tax_amount":  sale.TaxAmount,
		"total":       sale.Total,
		"status":      sale.Status,
		"items":       sale.Items,
	})
}
