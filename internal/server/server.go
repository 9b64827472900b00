package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/impawawa/Final-Project/internal/circuitbreaker"
	"github.com/impawawa/Final-Project/internal/config"
	"github.com/impawawa/Final-Project/internal/handler"
	"github.com/impawawa/Final-Project/internal/healthcheck"
	"github.com/impawawa/Final-Project/internal/middleware"
	"github.com/impawawa/Final-Project/internal/observability"
	"github.com/impawawa/Final-Project/internal/ratelimit"
	"github.com/impawawa/Final-Project/internal/repository"
	"github.com/impawawa/Final-Project/internal/service"
	"github.com/impawawa/Final-Project/internal/storage"
)

// Dependencies are the stores the server is built on. New fills them from
// postgres and redis; tests pass in-memory ones.
type Dependencies struct {
	Users   service.UserRepository
	Cars    service.CarRepository
	Rentals service.RentalRepository

	// RateStore backs the per-IP windows. Nil means an in-memory store.
	RateStore ratelimit.Store
	// Probes are reported by /health
	Probes map[string]healthcheck.Probe
	// Clock drives the limiter and token expiry; defaults to time.Now
	Clock func() time.Time
}

type Server struct {
	router     *gin.Engine
	config     *config.Config
	logger     *zap.Logger
	metrics    *observability.Metrics
	guard      *ratelimit.Guard
	breaker    *circuitbreaker.Breaker
	checker    *healthcheck.Checker
	httpServer *http.Server
}

// New wires the server against postgres and, when the limiter uses it, redis.
func New(cfg *config.Config, logger *zap.Logger, postgres *storage.Postgres, redis *storage.RedisClient) *Server {
	deps := Dependencies{
		Users:   repository.NewUserRepository(postgres),
		Cars:    repository.NewCarRepository(postgres),
		Rentals: repository.NewRentalRepository(postgres),
		Probes: map[string]healthcheck.Probe{
			"database": postgres.Ping,
		},
	}

	if redis != nil {
		deps.RateStore = ratelimit.NewRedisStore(redis)
		deps.Probes["redis"] = redis.Ping
	}

	return NewWithDependencies(cfg, logger, deps)
}

func NewWithDependencies(cfg *config.Config, logger *zap.Logger, deps Dependencies) *Server {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}

	handler.RegisterValidation()

	s := &Server{
		router:  gin.New(),
		config:  cfg,
		logger:  logger,
		metrics: observability.NewMetrics(),
		checker: healthcheck.NewChecker(healthcheck.Config{
			Probes: deps.Probes,
			Logger: logger,
		}),
	}

	s.setupRateLimit(deps)
	s.setupMiddleware()
	s.setupRoutes(deps)

	return s
}

func (s *Server) setupRateLimit(deps Dependencies) {
	rl := s.config.RateLimit
	if !rl.Enabled {
		return
	}

	var store ratelimit.Store
	if rl.Store == "redis" && deps.RateStore != nil {
		s.breaker = circuitbreaker.New(circuitbreaker.Config{Now: deps.Clock})
		s.breaker.OnTransition(func(from, to circuitbreaker.State) {
			s.logger.Warn("rate limit store breaker changed state",
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		})
		store = ratelimit.NewGuardedStore(deps.RateStore, s.breaker)
	} else {
		if rl.Store == "redis" {
			s.logger.Warn("redis rate limit store unavailable, counting in memory")
		}
		store = ratelimit.NewMemoryStore(deps.Clock)
	}

	limiter := ratelimit.NewFixedWindow(store, rl.Limit, rl.PeriodDuration(), ratelimit.WithClock(deps.Clock))
	s.guard = ratelimit.NewGuard(limiter,
		ratelimit.WithFailOpen(rl.FailOpen),
		ratelimit.WithLogger(s.logger),
		ratelimit.WithObserver(s.metrics.RecordRateLimit),
		ratelimit.WithGuardClock(deps.Clock),
	)

	s.logger.Info("rate limiting enabled",
		zap.Int("limit", rl.Limit),
		zap.Int("period_seconds", rl.Period),
		zap.String("store", rl.Store),
		zap.Bool("fail_open", rl.FailOpen),
	)
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recovery(s.logger))
	s.router.Use(middleware.RequestID())
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(middleware.Metrics(s.metrics))
}

func (s *Server) setupRoutes(deps Dependencies) {
	authService := service.NewAuthService(deps.Users, s.config.Auth.JWTSecret, s.config.Auth.JWTExpiryHours,
		service.WithAuthClock(deps.Clock))
	carService := service.NewCarService(deps.Cars)
	rentalService := service.NewRentalService(deps.Rentals, deps.Cars, deps.Users)

	authHandler := handler.NewAuthHandler(authService, s.logger)
	carHandler := handler.NewCarHandler(carService, s.logger)
	rentalHandler := handler.NewRentalHandler(rentalService, s.logger)

	s.router.GET("/health", s.healthCheck)
	s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{})))

	api := s.router.Group("/api")
	if s.guard != nil {
		api.Use(middleware.RateLimit(s.guard))
	}

	api.POST("/register", authHandler.Register)
	api.POST("/login", authHandler.Login)

	authed := api.Group("")
	authed.Use(middleware.RequireAuth(authService))
	{
		authed.GET("/protected", authHandler.Protected)

		authed.GET("/cars", carHandler.List)
		authed.POST("/cars", carHandler.Create)
		authed.GET("/cars/:id", carHandler.Get)
		authed.PUT("/cars/:id", carHandler.Update)
		authed.DELETE("/cars/:id", carHandler.Delete)

		authed.GET("/rentals", rentalHandler.List)
		authed.POST("/rentals", rentalHandler.Create)
		authed.GET("/rentals/:id", rentalHandler.Get)
		authed.PUT("/rentals/:id", rentalHandler.Update)
		authed.DELETE("/rentals/:id", rentalHandler.Delete)
	}
}

func (s *Server) healthCheck(c *gin.Context) {
	s.checker.CheckAll(c.Request.Context())

	overall := s.checker.OverallHealth()
	statusCode := http.StatusOK
	if overall != healthcheck.Healthy {
		statusCode = http.StatusServiceUnavailable
	}

	checks := gin.H{}
	for name, status := range s.checker.GetAllStatus() {
		checks[name] = status.IsHealthy
	}

	body := gin.H{
		"status":    overall.String(),
		"service":   "car-rental",
		"timestamp": time.Now().Unix(),
		"checks":    checks,
	}
	if s.breaker != nil {
		body["rate_limit_store"] = s.breaker.State().String()
	}

	c.JSON(statusCode, body)
}

func (s *Server) Run(addr string) error {
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.checker.Start()

	s.logger.Info("starting car rental api",
		zap.String("addr", addr),
		zap.String("environment", s.config.Server.Environment),
	)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")
	s.checker.Stop()

	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}

	return nil
}

func (s *Server) GetRouter() *gin.Engine {
	return s.router
}
