package server

import (
	"fmt"
	"net/http"
	"time"

	"boutique-pos/internal/config"
	custommiddleware "boutique-pos/internal/middleware"
	"boutique-pos/internal/service"
	"boutique-pos/internal/store"
	"boutique-pos/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Stores bundles the CSV table stores backing the API.
type Stores struct {
	Products  *store.ProductStore
	Customers *store.CustomerStore
	Sales     *store.SaleStore
	Users     *store.UserStore
}

// NewStores builds the entity stores from the storage configuration.
func NewStores(cfg config.StorageConfig) *Stores {
	return &Stores{
		Products:  store.NewProductStore(cfg.TablePath(cfg.ProductsFile)),
		Customers: store.NewCustomerStore(cfg.TablePath(cfg.CustomersFile)),
		Sales:     store.NewSaleStore(cfg.TablePath(cfg.SalesFile)),
		Users:     store.NewUserStore(cfg.TablePath(cfg.UsersFile)),
	}
}

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
}

func NewServer(cfg *config.Config, logger *zap.Logger, stores *Stores) *Server {
	// Create router
	router := chi.NewRouter()

	// Add basic middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(custommiddleware.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.IsDevelopment()))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.RateLimitMiddleware(custommiddleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		Burst:             cfg.RateLimit.Burst,
	}, logger))

	// Health check endpoint
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Initialize services
	userService := service.NewUserService(stores.Users, cfg.JWT.Secret, cfg.JWT.AccessExpiry)
	productService := service.NewProductService(stores.Products)
	customerService := service.NewCustomerService(stores.Customers)
	saleService := service.NewSaleService(stores.Sales, stores.Products, stores.Customers)
	analyticsService := service.NewAnalyticsService(stores.Sales, stores.Products)

	// Initialize handlers
	authHandler := transport.NewAuthHandler(userService, cfg.JWT.Secret, logger)
	productHandler := transport.NewProductHandler(productService, logger)
	customerHandler := transport.NewCustomerHandler(customerService, logger)
	saleHandler := transport.NewSaleHandler(saleService, analyticsService, logger)

	// Auth routes manage their own middleware; everything else requires a
	// valid access token.
	authHandler.RegisterRoutes(router)
	router.Group(func(r chi.Router) {
		r.Use(custommiddleware.AuthMiddleware(cfg.JWT.Secret, logger))
		productHandler.RegisterRoutes(r)
		customerHandler.RegisterRoutes(r)
		saleHandler.RegisterRoutes(r)
	})

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
	}

	return server
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")
	s.logger.Sync()
	return nil
}
