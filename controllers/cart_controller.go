package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"pos-service/cart"
	"pos-service/logger"
	"pos-service/repository"
)

// CartController keeps a per-terminal cart server-side for thin terminals.
// Stock checks here are advisory (last-known snapshot); the finalizer is
// the authority.
type CartController struct {
	store    cart.Store
	products repository.ProductRepository
	taxRate  decimal.Decimal
}

func NewCartController(store cart.Store, products repository.ProductRepository, taxRate decimal.Decimal) *CartController {
	return &CartController{store: store, products: products, taxRate: taxRate}
}

func (cc *CartController) terminalID(c *gin.Context) (string, bool) {
	id := c.GetHeader("X-Terminal-ID")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing X-Terminal-ID header"})
		return "", false
	}
	return id, true
}

func (cc *CartController) load(c *gin.Context, terminalID string) (*cart.Cart, bool) {
	current, err := cc.store.Get(c.Request.Context(), terminalID)
	if err != nil {
		logger.Log.Error("load cart failed", zap.String("terminal_id", terminalID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load cart"})
		return nil, false
	}
	if current == nil {
		current = cart.New(terminalID)
	}
	return current, true
}

func (cc *CartController) respond(c *gin.Context, current *cart.Cart) {
	if err := cc.store.Save(c.Request.Context(), current); err != nil {
		logger.Log.Error("save cart failed", zap.String("terminal_id", current.TerminalID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save cart"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": current, "totals": current.Totals(cc.taxRate)})
}

func (cc *CartController) GetCart(c *gin.Context) {
	terminalID, ok := cc.terminalID(c)
	if !ok {
		return
	}
	current, ok := cc.load(c, terminalID)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": current, "totals": current.Totals(cc.taxRate)})
}

type addItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity"`
}

func (cc *CartController) AddItem(c *gin.Context) {
	terminalID, ok := cc.terminalID(c)
	if !ok {
		return
	}

	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	product, err := cc.products.FindByID(c.Request.Context(), req.ProductID)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}
	if err != nil {
		logger.Log.Error("resolve product failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve product"})
		return
	}

	current, ok := cc.load(c, terminalID)
	if !ok {
		return
	}
	if err := current.AddItem(*product, req.Quantity); err != nil {
		cc.cartError(c, err)
		return
	}
	cc.respond(c, current)
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

func (cc *CartController) UpdateItem(c *gin.Context) {
	terminalID, ok := cc.terminalID(c)
	if !ok {
		return
	}

	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	current, ok := cc.load(c, terminalID)
	if !ok {
		return
	}
	if err := current.UpdateQuantity(c.Param("product_id"), req.Quantity); err != nil {
		cc.cartError(c, err)
		return
	}
	cc.respond(c, current)
}

func (cc *CartController) RemoveItem(c *gin.Context) {
	terminalID, ok := cc.terminalID(c)
	if !ok {
		return
	}
	current, ok := cc.load(c, terminalID)
	if !ok {
		return
	}
	current.RemoveItem(c.Param("product_id"))
	cc.respond(c, current)
}

func (cc *CartController) ClearCart(c *gin.Context) {
	terminalID, ok := cc.terminalID(c)
	if !ok {
		return
	}
	if err := cc.store.Delete(c.Request.Context(), terminalID); err != nil {
		logger.Log.Error("clear cart failed", zap.String("terminal_id", terminalID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to clear cart"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "cart cleared"})
}

type setCustomerRequest struct {
	CustomerID string `json:"customer_id"`
}

func (cc *CartController) SetCustomer(c *gin.Context) {
	terminalID, ok := cc.terminalID(c)
	if !ok {
		return
	}

	var req setCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	current, ok := cc.load(c, terminalID)
	if !ok {
		return
	}
	current.SetCustomer(req.CustomerID)
	cc.respond(c, current)
}

func (cc *CartController) cartError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, cart.ErrInsufficientStock):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, cart.ErrInvalidQuantity):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}
