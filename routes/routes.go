package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pos-service/controllers"
	"pos-service/middleware"
	"pos-service/realtime"
)

type Controllers struct {
	Sales     *controllers.SaleController
	Products  *controllers.ProductController
	Customers *controllers.CustomerController
	Dashboard *controllers.DashboardController
	Carts     *controllers.CartController
}

// Register wires the HTTP and websocket surface. Everything except /health
// sits behind the bearer guard.
func Register(router *gin.Engine, hub *realtime.Hub, ctrl Controllers, jwtSecret string) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "connected_terminals": hub.ClientCount()})
	})

	api := router.Group("/api")
	api.Use(middleware.RequireAuth(jwtSecret))
	{
		api.POST("/sales", ctrl.Sales.CreateSale)

		api.GET("/products", ctrl.Products.GetProducts)
		api.PUT("/products/:id/stock", ctrl.Products.ReplenishStock)
		api.GET("/categories", ctrl.Products.GetCategories)
		api.GET("/customers", ctrl.Customers.GetCustomers)

		api.GET("/dashboard/stats", ctrl.Dashboard.GetStats)
		api.GET("/dashboard/sales-chart", ctrl.Dashboard.GetSalesChart)
		api.GET("/dashboard/top-products", ctrl.Dashboard.GetTopProducts)

		api.GET("/cart", ctrl.Carts.GetCart)
		api.POST("/cart/items", ctrl.Carts.AddItem)
		api.PUT("/cart/items/:product_id", ctrl.Carts.UpdateItem)
		api.DELETE("/cart/items/:product_id", ctrl.Carts.RemoveItem)
		api.DELETE("/cart", ctrl.Carts.ClearCart)
		api.PUT("/cart/customer", ctrl.Carts.SetCustomer)
	}

	ws := router.Group("/ws")
	ws.Use(middleware.RequireAuth(jwtSecret))
	ws.GET("", realtime.ServeWS(hub))
}
