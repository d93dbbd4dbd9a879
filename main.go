package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"classfinder/config"
	"classfinder/cron"
	"classfinder/database"
	resultsRepo "classfinder/database/repository/results"
	"classfinder/handlers"
	"classfinder/middleware"
	"classfinder/models"
	"classfinder/routes"
	"classfinder/services/auth"
	"classfinder/services/portal"
	"classfinder/services/query"
	"classfinder/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer logger.Sync()
	cfg := config.AppConfig

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	metrics := utils.NewMetrics()

	// Portal client.
	breaker := portal.NewBreaker("portal", portal.BreakerConfig{
		MaxFailures:  cfg.BreakerMaxFailures,
		ResetTimeout: cfg.BreakerResetTimeout,
	}, logger)
	breaker.OnStateChange(func(s portal.State) { metrics.SetBreakerState(int(s)) })

	portalClient, err := portal.New(cfg.PortalBaseURL, cfg.PortalTimeout, breaker, logger, metrics)
	if err != nil {
		logger.Sugar().Fatalf("main: invalid portal configuration: %v", err)
	}

	// Result store.
	var store resultsRepo.ResultStore
	if client, err := database.InitRedis(ctx); err != nil {
		logger.Warn("Redis unavailable, caching results in memory", zap.Error(err))
		store = resultsRepo.NewMemoryResultStore(cfg.CacheTTL, metrics)
	} else {
		defer client.Close()
		store = resultsRepo.NewRedisResultStore(client, cfg.CacheTTL, metrics)
	}

	// services.
	queryService := &query.DefaultQueryService{
		Sessions:    query.PortalSessions(portalClient),
		Store:       store,
		DefaultWeek: cfg.DefaultWeek,
		Concurrency: cfg.PortalConcurrency,
		Logger:      logger,
	}

	secret := cfg.JWTSecret
	if secret == "" {
		secret, err = utils.RandomSecret(32)
		if err != nil {
			logger.Sugar().Fatalf("main: failed to generate session secret: %v", err)
		}
		logger.Warn("JWT_SECRET not set, sessions will not survive a restart")
	}
	authService := &auth.DefaultAuthService{
		Verifier: queryService,
		Secret:   []byte(secret),
		TTL:      cfg.SessionTTL,
	}

	defaultCredentials := func() (models.Credentials, bool) {
		if !config.HasDefaultCredentials() {
			return models.Credentials{}, false
		}
		return models.Credentials{Username: cfg.PortalUsername, Password: cfg.PortalPassword}, true
	}

	queryHandler := handlers.NewQueryHandler(queryService, defaultCredentials)
	authHandler := handlers.NewAuthHandler(authService, cfg.SessionTTL, config.IsProduction())

	checks := utils.HealthChecks{
		StoreName: store.Name(),
		PingStore: store.Ping,
		Breaker:   func() string { return breaker.State().String() },
	}
	utils.StartHealthMonitor(ctx, checks, 30*time.Second)

	if cfg.RefreshCron != "" {
		creds, ok := defaultCredentials()
		switch {
		case !ok:
			logger.Warn("REFRESH_CRON set without PORTAL_USERNAME/PORTAL_PASSWORD, refresh disabled")
		case cfg.RedisAddr == "":
			logger.Warn("REFRESH_CRON set without REDIS_ADDR, refresh disabled")
		default:
			worker, err := cron.InitRefreshWorker(cfg.RefreshCron, queryService, creds, logger)
			if err != nil {
				logger.Sugar().Fatalf("main: failed to start refresh worker: %v", err)
			}
			defer worker.Shutdown()
		}
	}

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RequestLogger(logger))
	router.Use(metrics.Middleware())

	handlerBundle := &handlers.HandlerBundle{
		AuthService: authService,
		Metrics:     metrics,

		QueryHandler:  queryHandler.Query,
		LoginHandler:  authHandler.Login,
		LogoutHandler: authHandler.Logout,

		IndexHandler:  handlers.ServeIndex,
		HealthHandler: handlers.HealthHandler(checks),
	}
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := cfg.AppPort
	if port == "" {
		port = "8000"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Sugar().Errorf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
