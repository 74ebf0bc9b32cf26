package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/zap"

	"github.com/benvon/smart-connections/internal/config"
	"github.com/benvon/smart-connections/internal/database"
	"github.com/benvon/smart-connections/internal/handlers"
	"github.com/benvon/smart-connections/internal/logger"
	"github.com/benvon/smart-connections/internal/middleware"
	"github.com/benvon/smart-connections/internal/models"
	"github.com/benvon/smart-connections/internal/notify"
	"github.com/benvon/smart-connections/internal/queue"
	"github.com/benvon/smart-connections/internal/services/ai"
	"github.com/benvon/smart-connections/internal/services/oidc"
	"github.com/benvon/smart-connections/internal/telemetry"
)

const version = "1.0.0"

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug mode for LLM API logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.ServerDebugMode || *debugFlag

	zapLogger, err := logger.NewProductionLogger(debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		_ = zapLogger.Sync()
	}()

	zapLogger.Info("starting_server",
		zap.Bool("debug_mode", debugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.String("frontend_url", cfg.FrontendURL),
		zap.String("ai_model", cfg.AIModel),
		zap.Bool("ai_enabled", cfg.OpenAIKey != ""),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
	)

	shutdownTracing, tracing := telemetry.Setup(context.Background(), cfg.OTELEnabled, telemetry.ServiceAPI, cfg.OTELEndpoint, zapLogger)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
		}
	}()

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			zapLogger.Warn("failed_to_close_database_connection", zap.Error(err))
		}
	}()
	zapLogger.Info("connected_to_database")

	redisClient, err := middleware.ConnectRedis(context.Background(), cfg.RedisURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_redis", zap.Error(err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			zapLogger.Warn("failed_to_close_redis_connection", zap.Error(err))
		}
	}()
	zapLogger.Info("connected_to_redis")

	jobQueue := connectQueue(cfg.RabbitMQURL, zapLogger)
	defer func() {
		if err := jobQueue.Close(); err != nil {
			zapLogger.Warn("failed_to_close_rabbitmq_connection", zap.Error(err))
		}
	}()

	// Repositories
	userRepo := database.NewUserRepository(db)
	personRepo := database.NewPersonRepository(db)
	interactionRepo := database.NewInteractionRepository(db)
	journalRepo := database.NewJournalRepository(db)
	notificationRepo := database.NewNotificationRepository(db)
	prefsRepo := database.NewNotificationPreferencesRepository(db)
	activityRepo := database.NewUserActivityRepository(db)
	oidcConfigRepo := database.NewOIDCConfigRepository(db)
	corsConfigRepo := database.NewCorsConfigRepository(db)
	ratelimitConfigRepo := database.NewRatelimitConfigRepository(db)

	// Services
	oidcProvider := oidc.NewProvider(oidcConfigRepo)
	authenticator := oidc.NewAuthenticator(oidcProvider, oidc.NewJWKSManager(), cfg.OIDCProvider)

	refresher := handlers.NewQueueRefresher(
		queue.NewDebouncer(jobQueue, redisClient, cfg.AnalyticsDebounce),
		cfg.AnalyticsDebounce,
		zapLogger,
	)
	trigger := notify.NewTrigger(notificationRepo, notify.NewRedisStateStore(redisClient, 0), prefsRepo, zapLogger)
	defer trigger.Wait()
	reminders := notify.NewReminderGenerator(personRepo, interactionRepo, notificationRepo, prefsRepo, zapLogger)
	drafter := ai.NewFallbackDrafter(createDrafter(cfg, zapLogger, debugMode), zapLogger)

	// Handlers
	authHandler := handlers.NewAuthHandler(oidcProvider, cfg.OIDCProvider, zapLogger)
	peopleHandler := handlers.NewPeopleHandler(personRepo, interactionRepo, refresher, drafter, zapLogger)
	interactionHandler := handlers.NewInteractionHandler(interactionRepo, personRepo, refresher, zapLogger)
	journalHandler := handlers.NewJournalHandler(journalRepo, personRepo, notificationRepo, zapLogger)
	analyticsHandler := handlers.NewAnalyticsHandler(personRepo, interactionRepo, trigger, refresher, zapLogger)
	notificationHandler := handlers.NewNotificationHandler(notificationRepo, prefsRepo, reminders, zapLogger)
	healthChecker := handlers.NewHealthChecker().
		AddCheck("database", db.PingContext).
		AddCheck("redis", middleware.RedisPing(redisClient)).
		AddCheck("queue", jobQueue.HealthCheck)

	r := mux.NewRouter()

	// gorilla/mux runs middleware in registration order: the first registered is outermost.
	zapLogger.Info("setting_up_middleware")
	if tracing {
		r.Use(otelmux.Middleware(telemetry.ServiceAPI))
	}
	r.Use(middleware.SecurityHeaders(cfg.EnableHSTS))
	corsReloader := middleware.NewCORSReloader(corsConfigRepo, cfg.FrontendURL, zapLogger, time.Minute)
	r.Use(corsReloader.Middleware())
	r.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize))
	r.Use(middleware.ContentType)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.ErrorHandler(zapLogger))
	r.Use(middleware.Audit(zapLogger))
	r.Use(middleware.Logging(zapLogger))

	// Applied per subrouter so health checks stay unthrottled
	rateLimitReloader, err := middleware.NewRateLimitReloader(redisClient, ratelimitConfigRepo, models.DefaultRate, zapLogger, time.Minute)
	if err != nil {
		zapLogger.Fatal("failed_to_create_rate_limit_reloader", zap.Error(err))
	}
	rateLimitMW := rateLimitReloader.Middleware()
	authMW := middleware.Auth(authenticator, userRepo, zapLogger)
	activityMW := middleware.ActivityTracking(activityRepo, zapLogger)

	r.HandleFunc("/healthz", healthChecker.HealthCheck).Methods(http.MethodGet)
	r.HandleFunc("/version", versionInfo).Methods(http.MethodGet)

	openAPIHandler, err := handlers.NewOpenAPIHandler(filepath.Join("api", "openapi", "openapi.yaml"))
	if err != nil {
		zapLogger.Warn("openapi_document_unavailable", zap.Error(err))
	} else {
		openAPIHandler.RegisterRoutes(r)
	}

	apiRouter := r.PathPrefix("/api/v1").Subrouter()

	publicAuthRouter := apiRouter.PathPrefix("/auth").Subrouter()
	publicAuthRouter.Use(rateLimitMW)
	authHandler.RegisterRoutes(publicAuthRouter)

	// Auth runs before rate limiting so limits key on the user rather than the client IP
	protected := func(prefix string) *mux.Router {
		sub := apiRouter.PathPrefix(prefix).Subrouter()
		sub.Use(authMW, activityMW, rateLimitMW)
		return sub
	}

	authHandler.RegisterProtectedRoutes(protected("/auth"))
	peopleHandler.RegisterRoutes(protected("/people"))
	interactionHandler.RegisterRoutes(protected("/interactions"))
	journalHandler.RegisterRoutes(protected("/journal"))
	notificationHandler.RegisterRoutes(protected("/notifications"))
	analyticsHandler.RegisterRoutes(protected(""))

	// Preflight requests reach here after the CORS middleware has set headers
	r.Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	srv := &http.Server{
		Addr:           ":" + cfg.ServerPort,
		Handler:        r,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   35 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	reloadCtx, reloadCancel := context.WithCancel(context.Background())
	defer reloadCancel()
	go corsReloader.Start(reloadCtx)
	go rateLimitReloader.Start(reloadCtx)

	go func() {
		zapLogger.Info("server_starting", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("server_failed_to_start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("server_shutting_down")
	reloadCancel()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("server_forced_to_shutdown", zap.Error(err))
	}

	zapLogger.Info("server_exited")
}

// connectQueue retries with exponential backoff to ride out RabbitMQ startup delays
func connectQueue(url string, zapLogger *zap.Logger) *queue.RabbitMQQueue {
	const maxRetries = 10
	const initialDelay = 2 * time.Second

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		q, err := queue.NewRabbitMQQueue(url, zapLogger)
		if err == nil {
			zapLogger.Info("connected_to_rabbitmq")
			return q
		}
		lastErr = err

		delay := min(initialDelay*time.Duration(1<<uint(attempt)), 30*time.Second)
		zapLogger.Warn("failed_to_connect_to_rabbitmq_retrying",
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", maxRetries),
			zap.Error(err),
			zap.Duration("retry_delay", delay),
		)
		time.Sleep(delay)
	}

	zapLogger.Fatal("failed_to_connect_to_rabbitmq_after_retries",
		zap.Int("max_retries", maxRetries),
		zap.Error(lastErr),
	)
	return nil
}

// createDrafter returns the model-backed outreach drafter, or nil when no API key is configured
func createDrafter(cfg *config.Config, zapLogger *zap.Logger, debugMode bool) ai.Drafter {
	if cfg.OpenAIKey == "" {
		zapLogger.Info("openai_key_not_configured_using_template_drafts")
		return nil
	}

	registry := ai.NewProviderRegistry()
	ai.RegisterOpenAI(registry, zapLogger, debugMode)
	drafter, err := registry.GetProvider("openai", map[string]string{
		"api_key":  cfg.OpenAIKey,
		"model":    cfg.AIModel,
		"base_url": cfg.AIBaseURL,
	})
	if err != nil {
		zapLogger.Warn("failed_to_create_ai_drafter_using_templates", zap.Error(err))
		return nil
	}
	return drafter
}

func versionInfo(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, `{"version":%q,"timestamp":%q}`, version, time.Now().UTC().Format(time.RFC3339))
}
