package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/nereus-app/coastal_risk_system/internal/auth"
	"github.com/nereus-app/coastal_risk_system/internal/config"
	v1 "github.com/nereus-app/coastal_risk_system/internal/handler/http/v1"
	"github.com/nereus-app/coastal_risk_system/internal/inference"
	"github.com/nereus-app/coastal_risk_system/internal/narrative"
	"github.com/nereus-app/coastal_risk_system/internal/repository"
	"github.com/nereus-app/coastal_risk_system/internal/service"
	"github.com/nereus-app/coastal_risk_system/internal/webhook"
	"github.com/nereus-app/coastal_risk_system/pkg/logger"
	"github.com/nereus-app/coastal_risk_system/pkg/postgres"
	redisclient "github.com/nereus-app/coastal_risk_system/pkg/redis"
	"github.com/sirupsen/logrus"

	_ "github.com/nereus-app/coastal_risk_system/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title Coastal Risk Assessment API
// @version 1.0
// @description Incident assessment pipeline for coastal environmental readings.
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
	}

	m, err := migrate.New(
		"file://migrations",
		migrationURL,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("Database migrations applied successfully")
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

	// Выбор хранилища: Postgres при заданном DATABASE_URL, иначе in-memory
	var (
		userRepo     service.UserRepository
		incidentRepo service.IncidentRepository
		alertRepo    service.AlertRepository
	)
	if cfg.DatabaseURL != "" {
		if err := runMigrations(cfg, log); err != nil {
			log.Fatalf("Failed to run database migrations: %v", err)
		}

		dbpool, err := postgres.NewPostgresDB(ctx, cfg)
		if err != nil {
			log.Fatalf("Failed to connect to PostgreSQL: %v", err)
		}
		defer dbpool.Close()
		log.Info("Successfully connected to PostgreSQL")

		store := repository.NewPostgresStore(dbpool)
		userRepo, incidentRepo, alertRepo = store, store, store
	} else {
		log.Info("DATABASE_URL is not set, using in-memory store")
		store := repository.NewMemoryStore()
		userRepo, incidentRepo, alertRepo = store, store, store
	}

	// Очередь вебхуков работает только при настроенном Redis
	var alertPublisher webhook.AlertPublisher = webhook.NopAlertPublisher{}
	if cfg.RedisAddr != "" {
		redisClient, err := redisclient.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		log.Info("Successfully connected to Redis")

		alertPublisher = webhook.NewRedisAlertPublisher(redisClient)

		webhookWorker := webhook.NewWorker(redisClient, log, cfg)
		webhookWorker.Start(ctx)
	} else {
		log.Info("REDIS_ADDR is not set, alert webhooks are disabled")
	}

	// Менеджер токенов
	tokenManager := auth.NewManager(cfg.JWTSecret, cfg.TokenTTL)

	// Клиент движка инференса
	inferenceClient := inference.NewClient(cfg.InferenceURL, cfg.InferenceTimeout, log)

	// Сервис генерации отчётов подключается только при наличии ключа
	var enricher service.NarrativeEnricher
	if cfg.NarrativeEnabled() {
		geminiEnricher, err := narrative.NewEnricher(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID, cfg.NarrativeTimeout, log)
		if err != nil {
			log.Fatalf("Failed to create narrative enricher: %v", err)
		}
		enricher = geminiEnricher
		log.Info("Narrative enrichment enabled")
	} else {
		log.Info("GEMINI_API_KEY is not set, narrative enrichment is disabled")
	}

	// Инициализация сервисов
	authService := service.NewAuthService(userRepo, tokenManager, log)
	assessmentService := service.NewAssessmentService(incidentRepo, alertRepo, inferenceClient, enricher, alertPublisher, log)

	// Инициализация хэндлеров
	handler := v1.NewHandler(authService, assessmentService, tokenManager, log)

	// Настройка Gin роутера
	router := gin.Default()
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)

	// Добавление маршрута для Swagger UI
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Запуск HTTP-сервера
	serverAddr := fmt.Sprintf(":%s", cfg.HTTPPort)

	srv := &http.Server{
		Addr:    serverAddr,
		Handler: router,
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

	log.Info("Server gracefully stopped")
}
