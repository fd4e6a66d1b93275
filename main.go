package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"pos-service/cart"
	"pos-service/config"
	"pos-service/controllers"
	"pos-service/database"
	"pos-service/kafka"
	"pos-service/logger"
	"pos-service/realtime"
	"pos-service/repository"
	"pos-service/routes"
	"pos-service/services"
)

func main() {
	cfg := config.Load()
	logger.Init()
	defer logger.Log.Sync()

	taxRate, err := decimal.NewFromString(cfg.TaxRate)
	if err != nil {
		logger.Log.Fatal("invalid TAX_RATE", zap.String("value", cfg.TaxRate), zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		products  repository.ProductRepository
		sales     repository.SaleRepository
		customers repository.CustomerRepository
	)

	if cfg.MongoURI != "" {
		client, db, err := database.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			logger.Log.Fatal("mongo connection failed", zap.Error(err))
		}
		defer client.Disconnect(context.Background())

		productRepo := repository.NewMongoProductRepository(db)
		saleRepo := repository.NewMongoSaleRepository(db)
		if err := productRepo.EnsureIndexes(ctx); err != nil {
			logger.Log.Fatal("product indexes failed", zap.Error(err))
		}
		if err := saleRepo.EnsureIndexes(ctx); err != nil {
			logger.Log.Fatal("sale indexes failed", zap.Error(err))
		}
		products = productRepo
		sales = saleRepo
		customers = repository.NewMongoCustomerRepository(db)
		logger.Log.Info("using mongo store", zap.String("db", cfg.MongoDB))
	} else {
		store := repository.NewMemoryStore()
		products = store
		sales = store.Sales()
		customers = store.Customers()
		if cfg.SeedDemoData {
			if err := database.SeedDemoData(ctx, products, customers); err != nil {
				logger.Log.Fatal("seed failed", zap.Error(err))
			}
			logger.Log.Info("seeded demo catalog")
		}
		logger.Log.Info("using in-memory store (demo mode)")
	}

	var cartStore cart.Store
	if cfg.RedisURL != "" {
		redisClient, err := database.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Log.Fatal("redis connection failed", zap.Error(err))
		}
		defer redisClient.Close()
		cartStore = cart.NewRedisStore(redisClient, cfg.CartTTL)
		logger.Log.Info("using redis cart store")
	} else {
		cartStore = cart.NewMemoryStore()
		logger.Log.Info("using in-memory cart store")
	}

	hub := realtime.NewHub()
	go hub.Run(ctx)

	var stream services.SaleStream
	if cfg.KafkaBrokers != "" {
		producer := kafka.NewProducer(strings.Split(cfg.KafkaBrokers, ","), cfg.KafkaSalesTopic)
		defer producer.Close()
		stream = producer
		logger.Log.Info("sale stream enabled", zap.String("topic", cfg.KafkaSalesTopic))
	}

	alerts := services.NewAlertTracker(cfg.LowStockThreshold)
	stats := services.NewStatsService(products, customers, sales)
	if err := stats.Rebuild(ctx); err != nil {
		logger.Log.Warn("stats rebuild failed", zap.Error(err))
	}
	saleService := services.NewSaleService(products, sales, hub, stream, stats, alerts, taxRate)
	inventoryService := services.NewInventoryService(products, hub, alerts)

	router := gin.Default()
	routes.Register(router, hub, routes.Controllers{
		Sales:     controllers.NewSaleController(saleService),
		Products:  controllers.NewProductController(products, inventoryService),
		Customers: controllers.NewCustomerController(customers),
		Dashboard: controllers.NewDashboardController(stats),
		Carts:     controllers.NewCartController(cartStore, products, taxRate),
	}, cfg.JWTSecret)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Log.Info("pos service listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Log.Info("shutting down gracefully")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("shutdown error", zap.Error(err))
	}
	cancel()
	logger.Log.Info("server shutdown complete")
}
