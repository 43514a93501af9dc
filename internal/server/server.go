package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"shop-api/internal/auth"
	"shop-api/internal/config"
	"shop-api/internal/database"
	custommiddleware "shop-api/internal/middleware"
	"shop-api/internal/repository"
	"shop-api/internal/service"
	"shop-api/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     database.Service
	redis  *redis.Client
}

func NewServer(cfg *config.Config, logger *zap.Logger, db database.Service) *Server {
	router := chi.NewRouter()

	for _, mw := range custommiddleware.DefaultMiddlewareStack() {
		router.Use(mw)
	}
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(cfg.Server.AllowedOrigins, cfg.Server.IsDevelopment()))

	tokens := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Expiry())
	router.Use(custommiddleware.AuthMiddleware(tokens, publicRoutes(cfg.Server.APIPrefix), logger))

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		custommiddleware.RespondWithError(w, http.StatusNotFound, "route not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		custommiddleware.RespondWithError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	router.Get("/health", healthHandler(db))

	// Initialize repositories
	sqlDB := db.DB()
	productRepo := repository.NewProductRepository(sqlDB)
	categoryRepo := repository.NewCategoryRepository(sqlDB)
	orderRepo := repository.NewOrderRepository(sqlDB)
	userRepo := repository.NewUserRepository(sqlDB)

	// Initialize services
	productService := service.NewProductService(productRepo, categoryRepo)
	categoryService := service.NewCategoryService(categoryRepo)
	orderService := service.NewOrderService(orderRepo, productRepo)
	userService := service.NewUserService(userRepo, tokens)

	rateLimit, redisClient := newRateLimiter(cfg, logger)

	router.Route(cfg.Server.APIPrefix, func(r chi.Router) {
		transport.NewProductHandler(productService, logger).RegisterRoutes(r)
		transport.NewCategoryHandler(categoryService, logger).RegisterRoutes(r)
		transport.NewOrderHandler(orderService, logger).RegisterRoutes(r)
		transport.NewUserHandler(userService, logger).RegisterRoutes(r, rateLimit)
	})

	return &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
		db:     db,
		redis:  redisClient,
	}
}

// publicRoutes lists the routes reachable without a bearer token
func publicRoutes(prefix string) custommiddleware.AllowList {
	read := []string{http.MethodGet, http.MethodOptions}
	return custommiddleware.AllowList{
		{Methods: []string{http.MethodGet}, Prefix: "/health"},
		{Methods: read, Prefix: prefix + "/products"},
		{Methods: read, Prefix: prefix + "/categories"},
		{Methods: []string{http.MethodPost}, Prefix: prefix + "/users/login"},
		{Methods: []string{http.MethodPost}, Prefix: prefix + "/users/register"},
	}
}

// newRateLimiter prefers the shared Redis limiter and falls back to an
// in-process one when Redis does not answer at startup. The returned client
// is nil in the fallback case.
func newRateLimiter(cfg *config.Config, logger *zap.Logger) (func(http.Handler) http.Handler, *redis.Client) {
	limitConfig := custommiddleware.RateLimitConfig{
		RequestsPerWindow: cfg.RateLimit.Requests,
		Window:            time.Duration(cfg.RateLimit.WindowSeconds) * time.Second,
		KeyPrefix:         "rate_limit:auth",
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("Redis unavailable, using in-process rate limiter",
			zap.String("addr", cfg.Redis.Addr()),
			zap.Error(err),
		)
		client.Close()
		limiter := custommiddleware.NewLocalRateLimiter(limitConfig)
		return custommiddleware.LocalRateLimitMiddleware(limiter, logger), nil
	}

	logger.Info("Redis rate limiter enabled", zap.String("addr", cfg.Redis.Addr()))
	return custommiddleware.RateLimitMiddleware(client, limitConfig, logger), client
}

type healthResponse struct {
	Status   string            `json:"status"`
	Database map[string]string `json:"database"`
}

func healthHandler(db database.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats := db.Health()
		if stats["status"] != "up" {
			custommiddleware.RespondWithErrorDetails(w, http.StatusServiceUnavailable, "database unavailable",
				map[string]interface{}{"database": stats})
			return
		}
		custommiddleware.RespondWithJSON(w, http.StatusOK, healthResponse{Status: "ok", Database: stats})
	}
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis client", zap.Error(err))
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	_ = s.logger.Sync()
	return nil
}
