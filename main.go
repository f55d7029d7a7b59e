package main

import (
	stdlog "log"
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/username/cryptotax/backend/src/config"
	"github.com/username/cryptotax/backend/src/database"
	"github.com/username/cryptotax/backend/src/handlers"
	"github.com/username/cryptotax/backend/src/logger"
	"github.com/username/cryptotax/backend/src/parsers"
	"github.com/username/cryptotax/backend/src/processors"
	"github.com/username/cryptotax/backend/src/reports"
	"github.com/username/cryptotax/backend/src/services"
)

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)
	logger.L.Info("Crypto tax backend server starting...")

	logger.L.Info("Initializing database...", "path", config.Cfg.DatabasePath)
	database.InitDB(config.Cfg.DatabasePath)
	logger.L.Info("Database initialized successfully.")

	logger.L.Info("Initializing caches...")
	priceCache := cache.New(config.Cfg.PriceCacheTTL, services.CacheCleanupInterval)
	reportCache := cache.New(config.Cfg.ReportCacheTTL, services.CacheCleanupInterval)

	logger.L.Info("Initializing services and handlers...")
	priceService := services.NewPriceService(database.DB, priceCache, config.Cfg.PriceLookupTimeout)
	uploadService := services.NewUploadService(
		database.DB,
		parsers.Options{Prices: priceService, Concurrency: config.Cfg.PriceLookupConcurrency},
		processors.NewTransactionProcessor(),
		processors.NewTaxProcessor(processors.TaxOptionsFromConfig(config.Cfg)),
		processors.NewReportProcessor(),
		reportCache,
	)

	uploadHandler := handlers.NewUploadHandler(uploadService, config.Cfg.MaxUploadSizeBytes)
	reportHandler := handlers.NewReportHandler(uploadService, reports.OptionsFromConfig(config.Cfg))
	priceHandler := handlers.NewPriceHandler(priceService, config.Cfg.MaxUploadSizeBytes)

	logger.L.Info("Configuring routes...", "sources", parsers.Sources())
	rootMux := handlers.NewRouter(uploadHandler, reportHandler, priceHandler)

	logger.L.Info("Applying global middleware...")
	finalHandler := handlers.RequestLoggerMiddleware(
		handlers.CORSMiddleware(config.Cfg.AllowedOrigin)(
			handlers.RateLimitMiddleware(config.Cfg.RateLimitRPS, config.Cfg.RateLimitBurst)(rootMux)))

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      finalHandler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.L.Info("Server starting", "address", serverAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.L.Error("Failed to start server", "error", err)
		stdlog.Fatalf("Failed to start server: %v", err)
	} else if err == http.ErrServerClosed {
		logger.L.Info("Server stopped gracefully.")
	}
}
