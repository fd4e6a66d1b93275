package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pos-service/logger"
	"pos-service/services"
)

type DashboardController struct {
	stats *services.StatsService
}

func NewDashboardController(stats *services.StatsService) *DashboardController {
	return &DashboardController{stats: stats}
}

func (dc *DashboardController) GetStats(c *gin.Context) {
	stats, err := dc.stats.Stats(c.Request.Context())
	if err != nil {
		logger.Log.Error("dashboard stats failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (dc *DashboardController) GetSalesChart(c *gin.Context) {
	c.JSON(http.StatusOK, dc.stats.SalesChart())
}

func (dc *DashboardController) GetTopProducts(c *gin.Context) {
	c.JSON(http.StatusOK, dc.stats.TopProducts())
}
