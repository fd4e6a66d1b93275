package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pos-service/logger"
	"pos-service/repository"
	"pos-service/services"
)

type ProductController struct {
	products  repository.ProductRepository
	inventory *services.InventoryService
}

func NewProductController(products repository.ProductRepository, inventory *services.InventoryService) *ProductController {
	return &ProductController{products: products, inventory: inventory}
}

// GetProducts is the catalog read surface terminals use to populate choices.
func (pc *ProductController) GetProducts(c *gin.Context) {
	filter := repository.ProductFilter{
		Search:   c.Query("search"),
		Category: c.Query("category"),
	}

	products, err := pc.products.Find(c.Request.Context(), filter)
	if err != nil {
		logger.Log.Error("list products failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (pc *ProductController) GetCategories(c *gin.Context) {
	categories, err := pc.products.Categories(c.Request.Context())
	if err != nil {
		logger.Log.Error("list categories failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load categories"})
		return
	}
	c.JSON(http.StatusOK, categories)
}

type replenishRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

// ReplenishStock is the inventory-management hook that puts stock back.
// It routes through the repository, never through a cart.
func (pc *ProductController) ReplenishStock(c *gin.Context) {
	var req replenishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	product, err := pc.inventory.Replenish(c.Request.Context(), c.Param("id"), req.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		case errors.Is(err, services.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Log.Error("replenish failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to replenish stock"})
		}
		return
	}

	c.JSON(http.StatusOK, product)
}
