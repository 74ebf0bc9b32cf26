package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/benvon/smart-connections/internal/config"
	"github.com/benvon/smart-connections/internal/database"
	"github.com/benvon/smart-connections/internal/logger"
	"github.com/benvon/smart-connections/internal/notify"
	"github.com/benvon/smart-connections/internal/queue"
	"github.com/benvon/smart-connections/internal/telemetry"
	"github.com/benvon/smart-connections/internal/workers"
)

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.WorkerDebugMode || *debugFlag

	zapLogger, err := logger.NewProductionLogger(debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		_ = zapLogger.Sync()
	}()

	zapLogger.Info("starting_worker",
		zap.Bool("debug_mode", debugMode),
		zap.String("reminder_schedule", cfg.ReminderSchedule),
		zap.String("cleanup_schedule", cfg.NotificationCleanupSchedule),
		zap.Int("inactivity_pause_days", cfg.InactivityPauseDays),
	)

	shutdownTracing, _ := telemetry.Setup(context.Background(), cfg.OTELEnabled, telemetry.ServiceWorker, cfg.OTELEndpoint, zapLogger)
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

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		zapLogger.Fatal("invalid_redis_url", zap.Error(err))
	}
	redisClient := redis.NewClient(redisOpts)
	defer func() {
		if err := redisClient.Close(); err != nil {
			zapLogger.Warn("failed_to_close_redis_connection", zap.Error(err))
		}
	}()

	jobQueue, err := queue.NewRabbitMQQueue(cfg.RabbitMQURL, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_rabbitmq", zap.Error(err))
	}
	defer func() {
		if err := jobQueue.Close(); err != nil {
			zapLogger.Warn("failed_to_close_rabbitmq_connection", zap.Error(err))
		}
	}()
	zapLogger.Info("connected_to_rabbitmq", zap.Int("prefetch", cfg.RabbitMQPrefetch))

	personRepo := database.NewPersonRepository(db)
	interactionRepo := database.NewInteractionRepository(db)
	notificationRepo := database.NewNotificationRepository(db)
	prefsRepo := database.NewNotificationPreferencesRepository(db)
	activityRepo := database.NewUserActivityRepository(db)

	trigger := notify.NewTrigger(notificationRepo, notify.NewRedisStateStore(redisClient, 0), prefsRepo, zapLogger)
	reminders := notify.NewReminderGenerator(personRepo, interactionRepo, notificationRepo, prefsRepo, zapLogger)

	// Retries go straight to the broker; the debouncer would swallow them while the original key is live.
	analyticsWorker := workers.NewAnalyticsWorker(
		personRepo,
		interactionRepo,
		trigger,
		reminders,
		activityRepo,
		jobQueue,
		zapLogger,
	)

	scheduler, err := workers.NewScheduler(jobQueue, activityRepo, notificationRepo, workers.SchedulerConfig{
		ReminderSchedule: cfg.ReminderSchedule,
		CleanupSchedule:  cfg.NotificationCleanupSchedule,
		InactivityPause:  time.Duration(cfg.InactivityPauseDays) * 24 * time.Hour,
	}, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed_to_create_scheduler", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	msgChan, errChan, err := jobQueue.Consume(ctx, cfg.RabbitMQPrefetch)
	if err != nil {
		zapLogger.Fatal("failed_to_start_consuming", zap.Error(err))
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		scheduler.Start(ctx)
	}()

	gc := queue.NewGarbageCollector(jobQueue, cfg.DLQGCInterval, cfg.DLQRetention, zapLogger)
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := gc.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			zapLogger.Error("dlq_garbage_collector_stopped_with_error", zap.Error(err))
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgChan:
				if !ok {
					zapLogger.Info("message_channel_closed")
					return
				}
				if err := analyticsWorker.ProcessJob(ctx, msg); err != nil {
					zapLogger.Error("failed_to_process_job",
						zap.Error(err),
						zap.String("job_id", msg.GetJob().ID.String()),
						zap.String("job_type", string(msg.GetJob().Type)),
					)
				}
			}
		}
	}()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-errChan:
				if !ok {
					return
				}
				zapLogger.Error("queue_error", zap.Error(err))
			}
		}
	}()

	zapLogger.Info("worker_started")

	<-sigChan
	zapLogger.Info("worker_shutting_down")
	cancel()
	wg.Wait()
	trigger.Wait()

	zapLogger.Info("worker_stopped")
}
