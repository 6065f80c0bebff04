package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/projetojaiba/corrida-system/config"
	"github.com/projetojaiba/corrida-system/db"
	"github.com/projetojaiba/corrida-system/draw"
	"github.com/projetojaiba/corrida-system/handlers"
	"github.com/projetojaiba/corrida-system/repositories"
	api "github.com/projetojaiba/corrida-system/routes"
	"github.com/projetojaiba/corrida-system/services"
	"github.com/projetojaiba/corrida-system/storage"
	_ "github.com/lib/pq"
)

const sessionCleanupInterval = 10 * time.Minute // How often stale draw sessions are purged

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	// Инициализация загрузчика файлов (Cloudflare R2)
	cloudflareUploader, err := storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		SecretAccessKey: cfg.R2SecretAccessKey,
		BucketName:      cfg.R2BucketName,
		PublicBaseURL:   cfg.R2PublicBaseURL,
	})
	if err != nil {
		logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("Cloudflare R2 uploader initialized")

	// Инициализация WebSocket Hub для трансляции розыгрышей
	wsHub := draw.NewHub()
	go wsHub.Run()
	logger.Info("WebSocket Hub started")

	// Менеджер сессий розыгрыша + фоновая чистка неактивных сессий
	drawManager := draw.NewManager()
	go func() {
		ticker := time.NewTicker(sessionCleanupInterval)
		defer ticker.Stop()
		for range ticker.C {
			if removed := drawManager.CleanupInactive(); removed > 0 {
				logger.Info("stale draw sessions removed", slog.Int("count", removed))
			}
		}
	}()

	// Инициализация репозиториев
	loteRepo := repositories.NewPostgresLoteRepository(dbConn)
	inscricaoRepo := repositories.NewPostgresInscricaoRepository(dbConn)
	sorteioRepo := repositories.NewPostgresSorteioRepository(dbConn)
	adminUserRepo := repositories.NewPostgresAdminUserRepository(dbConn)
	logger.Info("Repositories initialized")

	// Инициализация сервисов
	emailService := services.NewEmailService(cfg)
	authService := services.NewAuthService(adminUserRepo)
	loteService := services.NewLoteService(loteRepo)
	inscricaoService := services.NewInscricaoService(inscricaoRepo, loteRepo, cloudflareUploader, emailService)
	sorteioService := services.NewSorteioService(sorteioRepo)
	exportService := services.NewExportService(inscricaoRepo)
	logger.Info("Services initialized")

	// Инициализация обработчиков HTTP
	authHandler := handlers.NewAuthHandler(authService, []byte(cfg.JWTSecretKey))
	inscricaoHandler := handlers.NewInscricaoHandler(inscricaoService)
	loteHandler := handlers.NewLoteHandler(loteService)
	sorteioHandler := handlers.NewSorteioHandler(sorteioService, inscricaoService, authService, drawManager, wsHub)
	exportHandler := handlers.NewExportHandler(exportService)
	fileHandler := handlers.NewFileHandler(inscricaoService)
	logger.Info("HTTP handlers initialized")

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		[]byte(cfg.JWTSecretKey),
		cfg.CORSAllowedOrigins,
		authHandler,
		inscricaoHandler,
		loteHandler,
		sorteioHandler,
		exportHandler,
		fileHandler,
		wsHub,
	)
	logger.Info("Routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second, // CSV-выгрузка может быть объёмной
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		} else {
			logger.Info("server stopped gracefully")
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		} else {
			logger.Info("server shutdown complete")
		}
	}
	logger.Info("application exited")
}
