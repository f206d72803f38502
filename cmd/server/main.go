package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hampstead-on-demand/request-management-api/internal/audit"
	"github.com/hampstead-on-demand/request-management-api/internal/household"
	"github.com/hampstead-on-demand/request-management-api/internal/membership"
	"github.com/hampstead-on-demand/request-management-api/internal/message"
	"github.com/hampstead-on-demand/request-management-api/internal/notification"
	"github.com/hampstead-on-demand/request-management-api/internal/ratelimit"
	"github.com/hampstead-on-demand/request-management-api/internal/request"
	"github.com/hampstead-on-demand/request-management-api/internal/system/config"
	"github.com/hampstead-on-demand/request-management-api/internal/system/database"
	"github.com/hampstead-on-demand/request-management-api/internal/system/database/provider"
	"github.com/hampstead-on-demand/request-management-api/internal/system/log"
	"github.com/hampstead-on-demand/request-management-api/internal/system/middleware"
	"github.com/hampstead-on-demand/request-management-api/internal/system/stores"
	"github.com/hampstead-on-demand/request-management-api/internal/user"
	"github.com/hampstead-on-demand/request-management-api/internal/waitlist"
)

// Version information (set by build script)
var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	logger := log.GetLogger()
	logger.Info("Starting Request Management API Server...",
		log.String("version", version),
		log.String("build_date", buildDate))

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		logger.Fatal("Failed to load configuration", log.Error(err))
	}
	config.SetGlobal(cfg)
	log.Configure(cfg.Logging.Level, cfg.Logging.Format)

	// Initialize database
	db, err := database.Initialize(&cfg.Database.Requests)
	if err != nil {
		logger.Fatal("Failed to initialize database", log.Error(err))
	}
	defer db.Close()

	provider.InitDBProvider(db)
	dbClient, err := provider.GetDBProvider().GetRequestsDBClient()
	if err != nil {
		logger.Fatal("Failed to get database client", log.Error(err))
	}

	// Store registry shared by all feature services
	userStore := user.NewUserStore(dbClient)
	registry := stores.NewStoreRegistry(dbClient)
	registry.Request = request.NewStore(dbClient)
	registry.Membership = membership.NewStore(dbClient)
	registry.Household = household.NewHouseholdStore(dbClient)
	registry.User = userStore
	registry.Message = message.NewStore(dbClient)
	registry.Audit = audit.NewAuditStore(dbClient)
	registry.Waitlist = waitlist.NewStore(dbClient)

	notifier := notification.NewEmailNotifier(cfg.Email)
	logger.Info("Email notifier initialized", log.Bool("enabled", cfg.Email.Enabled))

	limiter := ratelimit.NewLimiter(ratelimit.NewMemoryStore(), map[string]ratelimit.Rule{
		ratelimit.PoolAuth:     {Max: cfg.RateLimit.Auth.Max, Window: cfg.RateLimit.Auth.Window},
		ratelimit.PoolAPIWrite: {Max: cfg.RateLimit.APIWrite.Max, Window: cfg.RateLimit.APIWrite.Window},
		ratelimit.PoolWaitlist: {Max: cfg.RateLimit.Waitlist.Max, Window: cfg.RateLimit.Waitlist.Window},
	})

	// The membership service doubles as the membership lookup for actor
	// resolution, so it is created before any routes.
	membershipService := membership.NewService(registry, notifier)
	resolver := user.NewResolverService(userStore, membershipService)

	mux := http.NewServeMux()

	// Health check races the DB ping against a 5s deadline
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")
		if err := db.HealthCheck(ctx); err != nil {
			logger.Warn("Health check failed", log.Error(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unhealthy"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	_ = request.Initialize(mux, registry, resolver, notifier, limiter)
	logger.Info("Request module initialized")

	membership.Initialize(mux, membershipService, resolver, limiter)
	logger.Info("Membership module initialized")

	_ = message.Initialize(mux, registry, resolver, notifier, limiter)
	logger.Info("Message module initialized")

	_ = waitlist.Initialize(mux, registry, resolver, limiter)
	logger.Info("Waitlist module initialized")

	httpHandler := middleware.WrapWithCorrelationID(mux)

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Hostname, cfg.Server.Port)
	server := &http.Server{
		Addr:           serverAddr,
		Handler:        httpHandler,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}

	go func() {
		logger.Info("Starting HTTP server...", log.String("addr", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", log.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", log.Error(err))
	}

	logger.Info("Server exited gracefully")
}
