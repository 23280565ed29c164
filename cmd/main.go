package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/shenikar/emergency_dispatch_system/internal/auth"
	"github.com/shenikar/emergency_dispatch_system/internal/config"
	"github.com/shenikar/emergency_dispatch_system/internal/directquery"
	v1 "github.com/shenikar/emergency_dispatch_system/internal/handler/http/v1"
	"github.com/shenikar/emergency_dispatch_system/internal/metrics"
	"github.com/shenikar/emergency_dispatch_system/internal/notification"
	"github.com/shenikar/emergency_dispatch_system/internal/realtime"
	"github.com/shenikar/emergency_dispatch_system/internal/repository"
	"github.com/shenikar/emergency_dispatch_system/internal/service"
	"github.com/shenikar/emergency_dispatch_system/pkg/logger"
	"github.com/shenikar/emergency_dispatch_system/pkg/postgres"
	redisclient "github.com/shenikar/emergency_dispatch_system/pkg/redis"

	_ "github.com/shenikar/emergency_dispatch_system/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const poolStatsInterval = 15 * time.Second

// @title Emergency Dispatch System API
// @version 1.0
// @description Emergency dispatch lifecycle: reporting, assignment, arrival and resolution.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func runMigrations(cfg *config.Config, log *logrus.Logger) error {
	log.Info("Running database migrations...")

	migrationURL := cfg.DatabaseURL
	if !strings.HasPrefix(migrationURL, "pgx5://") {
		migrationURL = strings.Replace(migrationURL, "postgres://", "pgx5://", 1)
		migrationURL = strings.Replace(migrationURL, "postgresql://", "pgx5://", 1)
	}

	m, err := migrate.New(cfg.MigrationsPath, migrationURL)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("Database migrations applied successfully")
	return nil
}

func newPushSender(ctx context.Context, cfg *config.Config, log *logrus.Logger) (notification.PushSender, error) {
	switch cfg.PushProvider {
	case config.PushProviderFCM:
		return notification.NewFCMSender(ctx, cfg.FirebaseCredentialsFile, log)
	case config.PushProviderWebhook:
		return notification.NewWebhookSender(notification.WebhookOptions{
			URL:        cfg.PushWebhookURL,
			Secret:     cfg.PushWebhookSecret,
			Timeout:    cfg.PushWebhookTimeout,
			MaxRetries: cfg.PushWebhookMaxRetries,
			BaseDelay:  cfg.PushWebhookBaseDelay,
		}, log), nil
	default:
		return notification.NoopSender{}, nil
	}
}

// collectPoolStats периодически снимает статистику обоих пулов
func collectPoolStats(ctx context.Context, m *metrics.Metrics, store *repository.Store, direct *directquery.Service) {
	ticker := time.NewTicker(poolStatsInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.RecordPgxPoolStats("primary", store.Pool().Stat())
			m.RecordSQLPoolStats("direct", direct.Stats())
		}
	}
}

func main() {
	// Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Инициализация логгера и метрик
	log := logger.New(cfg.LogLevel)
	m := metrics.New(prometheus.DefaultRegisterer)

	// Контекст для graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Запуск миграций
	if err := runMigrations(cfg, log); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}

	// Подключение к PostgreSQL: основной пул с повторами и переподключением
	store, err := repository.NewStore(ctx, cfg, log, m)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer store.Close()
	store.StartHealthCheck(ctx)
	log.Info("Successfully connected to PostgreSQL")

	// Отдельный пул для прямых запросов
	directDB, err := postgres.NewDirectDB(ctx, cfg.DirectDatabaseURL, postgres.DirectOptions{
		MaxOpenConns: cfg.DirectDBMaxOpenConns,
		MaxIdleConns: cfg.DirectDBMaxIdleConns,
	})
	if err != nil {
		log.Fatalf("Failed to open direct PostgreSQL pool: %v", err)
	}
	defer directDB.Close()
	direct := directquery.New(directDB)

	// Инициализация Redis клиента
	redisClient, err := redisclient.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	log.Info("Successfully connected to Redis")

	g, gctx := errgroup.WithContext(ctx)

	// Realtime: локальный хаб и рассылка между экземплярами через Redis
	hub := realtime.NewHub(log, m)
	broker := realtime.NewRedisBroker(redisClient, cfg.RealtimeChannel, hub, log)
	g.Go(func() error {
		broker.Run(gctx)
		return nil
	})

	// Уведомления: очередь в Redis, воркер сохраняет и отправляет push
	sender, err := newPushSender(ctx, cfg, log)
	if err != nil {
		log.Fatalf("Failed to init push sender: %v", err)
	}
	publisher := notification.NewRedisPublisher(redisClient)
	notification.NewWorker(redisClient, repository.NewNotificationRepository(store), sender, log, m).Start(gctx)

	// Инициализация репозиториев
	emergencyRepo := repository.NewEmergencyRepository(store)
	historyRepo := repository.NewHistoryRepository(store)

	// Инициализация сервисов
	emergencyService := service.NewEmergencyService(service.EmergencyDeps{
		Emergencies: emergencyRepo,
		Arrivals:    emergencyRepo,
		History:     historyRepo,
		Direct:      direct,
		Notifier:    publisher,
		Emitter:     broker,
	}, log, cfg, m)
	authService := service.NewAuthService(direct, auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL), log)

	// Инициализация хэндлеров
	handler := v1.NewHandler(emergencyService, authService, hub, v1.HealthChecks{
		"storage": store.Probe,
		"direct":  direct.Ping,
		"redis": func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		},
	}, log)

	// Настройка Gin роутера
	router := gin.New()
	router.Use(gin.Recovery(), metrics.GinMiddleware(m), v1.RequestLogger(log), v1.RequestTimeout(cfg.RequestTimeout))
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	// Добавление маршрута для Swagger UI
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	g.Go(func() error {
		collectPoolStats(gctx, m, store, direct)
		return nil
	})

	// Запуск HTTP-сервера
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g.Go(func() error {
		log.Infof("HTTP server started on port %s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Received shutdown signal, shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Errorf("Server stopped with error: %v", err)
		return
	}
	log.Info("Server gracefully stopped")
}
