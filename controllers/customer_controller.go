package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pos-service/logger"
	"pos-service/repository"
)

type CustomerController struct {
	customers repository.CustomerRepository
}

func NewCustomerController(customers repository.CustomerRepository) *CustomerController {
	return &CustomerController{customers: customers}
}

func (cc *CustomerController) GetCustomers(c *gin.Context) {
	customers, err := cc.customers.FindAll(c.Request.Context())
	if err != nil {
		logger.Log.Error("list customers failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load customers"})
		return
	}
	c.JSON(http.StatusOK, customers)
}
