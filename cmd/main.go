package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	goredis "github.com/redis/go-redis/v9"

	"github.com/shenikar/binalert/internal/analysis"
	"github.com/shenikar/binalert/internal/config"
	v1 "github.com/shenikar/binalert/internal/handler/http/v1"
	"github.com/shenikar/binalert/internal/media"
	"github.com/shenikar/binalert/internal/models"
	"github.com/shenikar/binalert/internal/repository"
	"github.com/shenikar/binalert/internal/scheduler"
	"github.com/shenikar/binalert/internal/service"
	"github.com/shenikar/binalert/internal/webhook"
	"github.com/shenikar/binalert/pkg/logger"
	minioclient "github.com/shenikar/binalert/pkg/minio"
	"github.com/shenikar/binalert/pkg/postgres"
	redisclient "github.com/shenikar/binalert/pkg/redis"
	"github.com/sirupsen/logrus"

	_ "github.com/shenikar/binalert/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// store объединяет хранилища отчетов и пользователей одного драйвера
type store interface {
	service.ReportRepository
	service.UserRepository
}

// @title BinAlert API
// @version 1.0
// @description Waste bin overflow reporting and image analysis proxy.
// @host localhost:4000
// @BasePath /
func runMigrations(cfg *config.Config, log *logrus.Logger) error {
	log.Info("Running database migrations...")

	m, err := migrate.New(
		cfg.MigrationsPath,
		postgres.MigrationURL(cfg.DatabaseURL),
	)
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

// seedDemoData загружает демонстрационных персон и отчеты
func seedDemoData(ctx context.Context, cfg *config.Config, st store, log *logrus.Logger) error {
	now := time.Now()
	users := []*models.User{service.DemoCitizen(), service.DemoEmployer()}
	reports := repository.DemoReports(now)

	if cfg.SeedRandomReports > 0 {
		citizens := repository.RandomCitizens(10, now.UnixNano())
		ids := make([]string, len(citizens))
		for i, c := range citizens {
			ids[i] = c.ID
		}
		users = append(users, citizens...)
		reports = append(reports, repository.RandomReports(cfg.SeedRandomReports, now.UnixNano(), ids, now)...)
	}

	if err := repository.Seed(ctx, st, st, users, reports); err != nil {
		return err
	}
	log.WithField("reports", len(reports)).Info("Demo data seeded")
	return nil
}

func main() {
	// Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Инициализация логгера
	log := logger.New(cfg.LogLevel)

	// Контекст для graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis нужен для хранилища и очереди вебхуков
	var redisClient *goredis.Client
	if cfg.RedisAddr != "" {
		redisClient, err = redisclient.NewRedisClient(ctx, cfg)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		log.Info("Successfully connected to Redis")
	}

	// Выбор хранилища
	var st store
	switch cfg.StorageDriver {
	case config.StoragePostgres:
		if err := runMigrations(cfg, log); err != nil {
			log.Fatalf("Failed to run database migrations: %v", err)
		}
		dbpool, err := postgres.NewPostgresDB(ctx, cfg)
		if err != nil {
			log.Fatalf("Failed to connect to PostgreSQL: %v", err)
		}
		defer dbpool.Close()
		log.Info("Successfully connected to PostgreSQL")
		st = repository.NewPostgresStore(dbpool)
	case config.StorageRedis:
		st = repository.NewRedisStore(redisClient)
	default:
		st = repository.NewMemoryStore()
	}
	log.WithField("driver", cfg.StorageDriver).Info("Report storage initialized")

	if err := seedDemoData(ctx, cfg, st, log); err != nil {
		log.Fatalf("Failed to seed demo data: %v", err)
	}

	// Хранилище фотографий
	var images service.ImageStore = media.NewInlineStore()
	if cfg.MinioEndpoint != "" {
		minioClient, err := minioclient.NewMinioClient(ctx, cfg)
		if err != nil {
			log.Fatalf("Failed to connect to MinIO: %v", err)
		}
		images = media.NewMinioStore(minioClient, cfg.MinioBucket)
		log.WithField("bucket", cfg.MinioBucket).Info("Report images are stored in MinIO")
	}

	// Инициализация издателя и воркера вебхуков
	var publisher webhook.WebhookPublisher = webhook.NewNopPublisher(log)
	if redisClient != nil {
		publisher = webhook.NewRedisWebhookPublisher(redisClient)
		if cfg.WebhookURL != "" {
			webhook.NewWebhookWorker(redisClient, log, cfg).Start(ctx)
		}
	}

	// Клиент анализа изображений
	if cfg.GoogleAPIKey == "" {
		log.Warn("GOOGLE_API_KEY is not set, analysis will use the fallback result")
	}
	classifier, err := analysis.NewGeminiClassifier(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to create Gemini client: %v", err)
	}
	analyzer := analysis.NewAnalyzer(classifier, log, cfg.AnalyzeTimeout)

	// Инициализация сервисов
	reportService := service.NewReportService(st, st, analyzer, images, publisher, log)
	userService := service.NewUserService(st, log)

	// Периодическая сводка
	var digest *scheduler.DigestJob
	if cfg.DigestSchedule != "" {
		digest = scheduler.NewDigestJob(reportService, publisher, log)
		if err := digest.Start(cfg.DigestSchedule); err != nil {
			log.Fatalf("Failed to schedule digest: %v", err)
		}
	}

	// Инициализация хэндлеров
	handler := v1.NewHandler(reportService, userService, analyzer, log, cfg)

	// Настройка Gin роутера
	router := gin.New()
	router.Use(gin.Recovery(), v1.RequestLogMiddleware(log), v1.BodyLimitMiddleware(cfg.MaxBodyBytes))

	corsCfg := cors.DefaultConfig()
	if len(cfg.CORSOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.CORSOrigins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	router.Use(cors.New(corsCfg))

	handler.RegisterRootRoutes(router)
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)

	// Добавление маршрута для Swagger UI
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Запуск HTTP-сервера
	serverAddr := fmt.Sprintf(":%s", cfg.HTTPPort)

	srv := &http.Server{
		Addr:              serverAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Запуск сервера в горутине
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Error starting HTTP server: %v", err)
		}
	}()
	log.Infof("HTTP server started on port %s", cfg.HTTPPort)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Received shutdown signal, shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	if digest != nil {
		digest.Stop(shutdownCtx)
	}
	cancel()

	log.Info("Server gracefully stopped")
}
