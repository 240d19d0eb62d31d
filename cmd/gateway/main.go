package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	cataloghandler "github.com/negobi/negobi-gateway/internal/catalog/handler"
	catalogrepo "github.com/negobi/negobi-gateway/internal/catalog/repository"
	catalogservice "github.com/negobi/negobi-gateway/internal/catalog/service"
	inventoryhandler "github.com/negobi/negobi-gateway/internal/inventory/handler"
	inventoryrepo "github.com/negobi/negobi-gateway/internal/inventory/repository"
	inventoryservice "github.com/negobi/negobi-gateway/internal/inventory/service"
	rateshandler "github.com/negobi/negobi-gateway/internal/rates/handler"
	ratesrepo "github.com/negobi/negobi-gateway/internal/rates/repository"
	ratesservice "github.com/negobi/negobi-gateway/internal/rates/service"
	visitshandler "github.com/negobi/negobi-gateway/internal/visits/handler"
	visitsrepo "github.com/negobi/negobi-gateway/internal/visits/repository"
	visitsservice "github.com/negobi/negobi-gateway/internal/visits/service"
	"github.com/negobi/negobi-gateway/pkg/config"
	"github.com/negobi/negobi-gateway/pkg/erp"
	"github.com/negobi/negobi-gateway/pkg/httputil"
	"github.com/negobi/negobi-gateway/pkg/logger"
	"github.com/negobi/negobi-gateway/pkg/saga"
)

func main() {
	// Load configuration with validation (fails fast in production if required config is missing)
	cfg, err := config.LoadWithValidation("gateway")
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New("negobi-gateway", cfg.Server.Environment)
	log.Info().Str("upstream", cfg.Upstream.BaseURL).Msg("starting Negobi gateway")

	// Upstream ERP client and saga runner
	client := erp.NewClient(&cfg.Upstream, log)
	sagas := saga.NewRunner(log)

	// Initialize repositories
	stockRepo := inventoryrepo.NewStockRepository(client)
	lotRepo := inventoryrepo.NewLotRepository(client)
	serialRepo := inventoryrepo.NewSerialRepository(client)
	visitRepo := visitsrepo.NewVisitRepository(client)
	rateRepo := ratesrepo.NewRateRepository(client)
	offeringRepo := catalogrepo.NewOfferingRepository(client)

	// Initialize services
	stockService := inventoryservice.NewStockService(stockRepo, sagas, log)
	lotService := inventoryservice.NewLotService(lotRepo, log)
	serialService := inventoryservice.NewSerialService(serialRepo, log)
	visitService := visitsservice.NewVisitService(visitRepo, cfg.Visits.DefaultDuration, log)
	rateService := ratesservice.NewRateService(rateRepo, log)
	catalogService := catalogservice.NewCatalogService(offeringRepo, cfg.Catalog.MaxPrice, log)

	// Initialize handlers
	stockHandler := inventoryhandler.NewStockHandler(stockService, log)
	lotHandler := inventoryhandler.NewLotHandler(lotService, log)
	serialHandler := inventoryhandler.NewSerialHandler(serialService, log)
	visitHandler := visitshandler.NewVisitHandler(visitService, log)
	rateHandler := rateshandler.NewRateHandler(rateService, log)
	offeringHandler := cataloghandler.NewOfferingHandler(catalogService, log)

	// Create router
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RealIP)
	r.Use(httputil.RequestID)
	r.Use(httputil.Logger(log))
	r.Use(httputil.Recoverer(log))
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5173", "https://*.negobi.app"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]interface{}{
			"status":  "healthy",
			"service": "negobi-gateway",
		})
	})

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/stock-by-warehouse", func(r chi.Router) {
			r.Get("/", stockHandler.List)
			r.Post("/", stockHandler.Create)
			r.Get("/low", stockHandler.Low)
			r.Get("/out-of-stock", stockHandler.OutOfStock)
			r.Post("/transfers", stockHandler.Transfer)
			r.Post("/sync", stockHandler.Sync)
			r.Get("/{id}", stockHandler.Get)
			r.Patch("/{id}", stockHandler.Update)
			r.Delete("/{id}", stockHandler.Delete)
		})

		r.Route("/product-lots", func(r chi.Router) {
			r.Get("/", lotHandler.List)
			r.Post("/", lotHandler.Create)
			r.Post("/bulk", lotHandler.BulkCreate)
			r.Get("/expired", lotHandler.Expired)
			r.Get("/expiring", lotHandler.Expiring)
			r.Get("/{id}", lotHandler.Get)
			r.Patch("/{id}", lotHandler.Update)
			r.Delete("/{id}", lotHandler.Delete)
			r.Post("/{id}/adjust", lotHandler.Adjust)
		})

		r.Route("/product-serials", func(r chi.Router) {
			r.Get("/", serialHandler.List)
			r.Post("/", serialHandler.Create)
			r.Post("/bulk", serialHandler.BulkCreate)
			r.Get("/availability/{serialNumber}", serialHandler.Availability)
			r.Get("/{id}", serialHandler.Get)
			r.Patch("/{id}", serialHandler.Update)
			r.Delete("/{id}", serialHandler.Delete)
			r.Patch("/{id}/status", serialHandler.ChangeStatus)
			r.Post("/{id}/transfer", serialHandler.Transfer)
		})

		r.Route("/visits", func(r chi.Router) {
			r.Get("/", visitHandler.List)
			r.Post("/", visitHandler.Create)
			r.Get("/conflicts", visitHandler.Conflicts)
			r.Post("/route", visitHandler.OptimizeRoute)
			r.Get("/statistics", visitHandler.Statistics)
			r.Get("/{id}", visitHandler.Get)
			r.Patch("/{id}", visitHandler.Update)
			r.Delete("/{id}", visitHandler.Delete)
		})

		r.Route("/exchange-rates", func(r chi.Router) {
			r.Get("/", rateHandler.List)
			r.Post("/", rateHandler.Create)
			r.Get("/latest", rateHandler.Latest)
			r.Post("/convert", rateHandler.Convert)
			r.Get("/{id}", rateHandler.Get)
			r.Patch("/{id}", rateHandler.Update)
			r.Delete("/{id}", rateHandler.Delete)
		})

		r.Route("/services", func(r chi.Router) {
			r.Get("/", offeringHandler.List)
			r.Post("/", offeringHandler.Create)
			r.Get("/{id}", offeringHandler.Get)
			r.Patch("/{id}", offeringHandler.Update)
			r.Delete("/{id}", offeringHandler.Delete)
		})
	})

	// Create server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server
	go func() {
		log.Info().Str("addr", addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
