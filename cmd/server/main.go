package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appissue "github.com/storefront/backend/internal/application/issue"
	appnotification "github.com/storefront/backend/internal/application/notification"
	apporder "github.com/storefront/backend/internal/application/order"
	"github.com/storefront/backend/internal/domain/notification"
	"github.com/storefront/backend/internal/infrastructure/cache"
	"github.com/storefront/backend/internal/infrastructure/channel"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/event"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/storefront/backend/internal/infrastructure/scheduler"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"github.com/storefront/backend/internal/interfaces/http/handler"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"github.com/storefront/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		os.Stderr.WriteString("failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Sync(log)

	log.Info("starting server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port))

	// Database
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, log, cfg.Log.Level)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	// Telemetry
	ctx := context.Background()
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("failed to initialize metrics", zap.Error(err))
	}

	// Repositories
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	issueRepo := persistence.NewGormIssueRepository(db.DB)
	prefsRepo := persistence.NewGormPreferencesRepository(db.DB)

	// Event bus
	bus := event.NewInMemoryEventBus(log)
	if err := bus.Start(ctx); err != nil {
		log.Fatal("failed to start event bus", zap.Error(err))
	}

	// Preferences store with cache in front of the database
	cacheFactory := cache.NewPreferencesCacheFactory(cfg.Redis, cache.WithLogger(log))
	prefsCache, err := cacheFactory.CreateCache()
	if err != nil {
		log.Fatal("failed to create preferences cache", zap.Error(err))
	}
	prefsStore := cache.NewCachedPreferencesStore(prefsRepo, prefsCache, log)
	prefsService := appnotification.NewPreferencesService(prefsStore)

	// Delivery channel adapters. Unconfigured channels stay registered and
	// report CHANNEL_UNAVAILABLE, so per-job records show why nothing went out.
	adapters := []notification.ChannelAdapter{
		channel.NewEmailAdapter(cfg.Channels.Email, log),
		channel.NewSMSAdapter(cfg.Channels.SMS, log),
		channel.NewPushAdapter(cfg.Channels.Push, log),
	}

	// Notification delivery queue
	queue := appnotification.NewDeliveryQueue(adapters, prefsService, appnotification.QueueConfig{
		MaxAttempts:       cfg.Queue.MaxAttempts,
		BaseBackoff:       cfg.Queue.BaseBackoff,
		MaxBackoff:        cfg.Queue.MaxBackoff,
		WorkersPerChannel: cfg.Queue.WorkersPerChannel,
		BufferSize:        cfg.Queue.BufferSize,
	}, log)

	if cfg.Telemetry.Enabled {
		deliveryMetrics, err := telemetry.NewDeliveryMetrics(meterProvider.Meter("notification"))
		if err != nil {
			log.Fatal("failed to create delivery metrics", zap.Error(err))
		}
		queue.SetDispatchRecorder(deliveryMetrics)
	}

	if err := queue.Start(ctx); err != nil {
		log.Fatal("failed to start delivery queue", zap.Error(err))
	}

	// In-app notification center
	center := appnotification.NewCenter(cfg.Center.RetentionPerUser, log)

	// Application services
	orderService := apporder.NewLifecycleService(orderRepo, apporder.PermissiveInventoryGate{}, log)
	orderService.SetEventPublisher(bus)

	issueService := appissue.NewService(issueRepo, orderRepo, log)
	issueService.SetEventPublisher(bus)
	orderService.SetIssueReporter(issueService)

	// Notification center actions
	center.RegisterCommand(appnotification.CommandViewOrder, func(ctx context.Context, n appnotification.InAppNotification) error {
		logger.FromContext(ctx).Info("view order action",
			zap.String("user_id", n.UserID.String()),
			zap.String("order_id", n.OrderID.String()))
		return nil
	})
	center.RegisterCommand(appnotification.CommandTrackOrder, func(ctx context.Context, n appnotification.InAppNotification) error {
		_, err := orderService.GetByID(ctx, n.OrderID)
		return err
	})
	center.RegisterCommand(appnotification.CommandReportIssue, func(ctx context.Context, n appnotification.InAppNotification) error {
		_, err := orderService.ReportIssue(ctx, n.OrderID, "other", "medium", "Reported from delivery notification")
		return err
	})

	// Fan order and issue events out to the notification pipeline
	fanout := appnotification.NewFanoutHandler(queue, center, log)
	bus.Subscribe(fanout, fanout.EventTypes()...)

	// Workflow simulator for demo environments
	var simulator *scheduler.WorkflowSimulator
	if cfg.Workflow.SimulationEnabled {
		simulator = scheduler.NewWorkflowSimulator(orderService, orderRepo, cfg.Workflow.StepDelay, log)
		if err := simulator.Start(ctx); err != nil {
			log.Fatal("failed to start workflow simulator", zap.Error(err))
		}
		trigger := scheduler.NewSimulationTrigger(simulator, log)
		bus.Subscribe(trigger, trigger.EventTypes()...)
		log.Info("order workflow simulation enabled",
			zap.Duration("step_delay", cfg.Workflow.StepDelay))
	}

	// HTTP server
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.Secure(),
	)

	corsCfg := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsCfg))

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("invalid trusted proxies", zap.Error(err))
		}
	}

	engine.GET("/health", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.NewRouter(engine).
		Register(handler.NewOrderHandler(orderService, log)).
		Register(handler.NewIssueHandler(issueService, log)).
		Register(handler.NewNotificationHandler(prefsService, center, queue, log)).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown failed", zap.Error(err))
	}

	if simulator != nil {
		if err := simulator.Stop(shutdownCtx); err != nil {
			log.Error("workflow simulator shutdown failed", zap.Error(err))
		}
	}

	// Stop the bus first so no new events enqueue work, then drain the queue
	if err := bus.Stop(shutdownCtx); err != nil {
		log.Error("event bus shutdown failed", zap.Error(err))
	}
	if err := queue.Stop(shutdownCtx); err != nil {
		log.Error("delivery queue shutdown failed", zap.Error(err))
	}

	if closer, ok := prefsCache.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			log.Error("preferences cache close failed", zap.Error(err))
		}
	}

	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("meter provider shutdown failed", zap.Error(err))
	}

	log.Info("server stopped")
}
