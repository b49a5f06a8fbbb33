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
	appacademic "github.com/sanable/backend/internal/application/academic"
	identityapp "github.com/sanable/backend/internal/application/identity"
	importapp "github.com/sanable/backend/internal/application/import"
	appregistry "github.com/sanable/backend/internal/application/registry"
	"github.com/sanable/backend/internal/infrastructure/auth"
	"github.com/sanable/backend/internal/infrastructure/cache"
	"github.com/sanable/backend/internal/infrastructure/config"
	csvimport "github.com/sanable/backend/internal/infrastructure/import"
	"github.com/sanable/backend/internal/infrastructure/logger"
	"github.com/sanable/backend/internal/infrastructure/persistence"
	"github.com/sanable/backend/internal/interfaces/http/handler"
	"github.com/sanable/backend/internal/interfaces/http/middleware"
	"github.com/sanable/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

//	@title			Sanable Backend API
//	@version		1.0
//	@description	Student records and tuition payment administration API

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Sanable Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.Connect(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	studentRepo := persistence.NewGormStudentRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	yearRepo := persistence.NewGormAcademicYearRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	uow := persistence.NewGormUnitOfWork(db.DB)

	// Idempotency store for payment deduplication. Redis is preferred;
	// single-instance deployments fall back to an in-memory store.
	idempotencyStore, err := cache.NewIdempotencyStore(cfg.Redis, cache.WithLogger(log))
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}

	// Token blacklist for logout. Redis-backed when available so revoked
	// tokens stay revoked across instances.
	var tokenBlacklist auth.TokenBlacklist
	redisBlacklist, err := auth.NewRedisTokenBlacklist(auth.RedisTokenBlacklistConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Warn("Redis unavailable for token blacklist, using in-memory store", zap.Error(err))
		tokenBlacklist = auth.NewInMemoryTokenBlacklist()
	} else {
		tokenBlacklist = redisBlacklist
	}

	// Initialize application services
	jwtService := auth.NewJWTService(cfg.JWT)
	studentService := appregistry.NewStudentService(studentRepo, yearRepo)
	ledgerService := appregistry.NewLedgerService(uow, studentRepo, paymentRepo, idempotencyStore)
	rosterService := appacademic.NewRosterService(yearRepo, studentRepo)
	authService := identityapp.NewAuthService(userRepo, jwtService, tokenBlacklist, identityapp.DefaultAuthServiceConfig(), log)

	importSessions := csvimport.NewInMemorySessionStore(30 * time.Minute)
	defer importSessions.Stop()
	importService := importapp.NewStudentImportService(
		studentRepo, yearRepo, importSessions, log,
		importapp.WithMaxRows(cfg.Import.MaxRows),
	)

	// Initialize HTTP handlers
	studentHandler := handler.NewStudentHandler(studentService, ledgerService)
	academicYearHandler := handler.NewAcademicYearHandler(rosterService)
	authHandler := handler.NewAuthHandler(authService, cfg.Cookie)
	importHandler := handler.NewImportHandler(importService, cfg.Import)
	systemHandler := handler.NewSystemHandler()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	// Initialize router with custom middleware
	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Security - Add security headers
	// 5. CORS - Handle cross-origin requests
	// 6. BodyLimit - Limit request body size
	// 7. RateLimit - Apply rate limiting (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	// Configure CORS from config
	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Body size limit
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Per-request deadline
	if cfg.HTTP.RequestTimeout > 0 {
		engine.Use(middleware.Timeout(cfg.HTTP.RequestTimeout))
	}

	// Rate limiting (if enabled)
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Stricter rate limiting for credential endpoints
	if cfg.HTTP.AuthRateLimitEnabled {
		authLimiter := middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
		authLimit := middleware.AuthRateLimit(authLimiter)
		engine.Use(func(c *gin.Context) {
			if strings.HasPrefix(c.Request.URL.Path, "/api/v1/auth/") {
				authLimit(c)
				return
			}
			c.Next()
		})
		log.Info("Auth rate limiting enabled",
			zap.Int("requests", cfg.HTTP.AuthRateLimitRequests),
			zap.Duration("window", cfg.HTTP.AuthRateLimitWindow),
		)
	}

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db, log))

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Apply JWT authentication middleware to API routes
	// Configure skip paths for public endpoints
	jwtConfig := middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: tokenBlacklist,
		SkipPaths: []string{
			"/api/v1/auth/login",
			"/api/v1/auth/register",
			"/api/v1/auth/refresh",
			"/api/v1/ping",
			"/api/v1/system/ping",
			"/api/v1/system/info",
		},
		Logger: log,
	}
	r.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	// Register all route groups
	r.Register(studentHandler).
		Register(academicYearHandler).
		Register(authHandler).
		Register(importHandler).
		Register(systemHandler)

	// Setup routes
	r.Setup()

	// Also keep a simple ping at root API level for basic health checks
	engine.GET("/api/v1/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database, _ *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		resp := gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		}
		if stats, err := db.Stats(); err == nil {
			resp["pool"] = stats
		}
		c.JSON(http.StatusOK, resp)
	}
}
