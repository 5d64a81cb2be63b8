package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/athebyme/gomarket-platform/pkg/interfaces"
	"github.com/athebyme/gomarket-platform/pkg/tx"
	"github.com/athebyme/gomarket-platform/services/catalog-service/config"
	"github.com/athebyme/gomarket-platform/services/catalog-service/internal/adapters/cache"
	"github.com/athebyme/gomarket-platform/services/catalog-service/internal/adapters/logger"
	"github.com/athebyme/gomarket-platform/services/catalog-service/internal/adapters/storage"
	"github.com/athebyme/gomarket-platform/services/catalog-service/internal/api"
	"github.com/athebyme/gomarket-platform/services/catalog-service/internal/api/handlers"
	"github.com/athebyme/gomarket-platform/services/catalog-service/internal/domain/models"
	"github.com/athebyme/gomarket-platform/services/catalog-service/internal/domain/services"
	"github.com/athebyme/gomarket-platform/services/catalog-service/internal/export"
	"github.com/athebyme/gomarket-platform/services/catalog-service/internal/utils"
)

// @title Catalog Service API
// @version 1.0
// @description Срез каталога и статус выгрузки YML
// @BasePath /api/v1
func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Printf("Ошибка загрузки конфигурации: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log, err := logger.NewZapLogger(cfg.LogLevel, cfg.ENV == "production")
	if err != nil {
		fmt.Printf("Ошибка инициализации логгера: %v\n", err)
		os.Exit(1)
	}
	log.Info("Инициализация сервиса",
		interfaces.LogField{Key: "app_name", Value: cfg.AppName},
		interfaces.LogField{Key: "version", Value: cfg.Version},
		interfaces.LogField{Key: "env", Value: cfg.ENV},
	)

	postgresCon, err := utils.GenerateConnectionString(
		cfg.Postgres.Host,
		cfg.Postgres.User,
		cfg.Postgres.Password,
		cfg.Postgres.DBName,
		cfg.Postgres.SSLMode,
		cfg.Postgres.Port,
		cfg.Postgres.PoolSize,
		cfg.Postgres.Timeout,
	)
	if err != nil {
		fmt.Printf("Ошибка инициализации строки подключения базы: %v\n", err)
		os.Exit(1)
	}

	db, err := postgres.NewPostgresStorage(ctx, postgresCon)
	if err != nil {
		log.Fatal("Ошибка инициализации хранилища", interfaces.LogField{Key: "error", Value: err.Error()})
	}
	log.Info("Хранилище инициализировано")

	testCtx, testCancel := context.WithTimeout(ctx, 5*time.Second)
	defer testCancel()

	if err := db.Ping(testCtx); err != nil {
		log.Fatal("Ошибка подключения к PostgreSQL",
			interfaces.LogField{Key: "error", Value: err.Error()})
	}
	log.Info("Соединение с PostgreSQL проверено")

	readiness := []api.Dependency{{Name: "postgres", Pinger: db}}

	// Отчет о выгрузке пишет воркер, поэтому без общего Redis статус всегда пуст
	var reportCache interfaces.CachePort
	if cfg.Redis.Enabled {
		redisCache, err := cache.NewRedisCache(
			ctx,
			cfg.Redis.Host,
			cfg.Redis.Port,
			cfg.Redis.Password,
			cfg.Redis.DB,
			cfg.Redis.Prefix,
		)
		if err != nil {
			log.Fatal("Ошибка инициализации кэша", interfaces.LogField{Key: "error", Value: err.Error()})
		}

		if err := checkRedisConnection(testCtx, redisCache); err != nil {
			log.Fatal("Ошибка подключения к Redis",
				interfaces.LogField{Key: "error", Value: err.Error()})
		}
		log.Info("Соединение с Redis проверено")
		reportCache = redisCache
		readiness = append(readiness, api.Dependency{Name: "redis", Pinger: redisCache})
	} else {
		log.Warn("Redis выключен, статус выгрузки доступен только на HTTP сервере воркера")
		reportCache = cache.NewMemoryCache(10 * time.Minute)
	}

	snapshotCache := cache.NewMemoryCache(time.Minute)

	catalogService := services.NewCatalogService(
		tx.NewTxManager(db.Pool(), log),
		db,
		db,
		db,
		db,
		services.CatalogConfig{
			Language:  models.Language(cfg.Export.Language),
			Cluster:   cfg.Export.Cluster,
			UseStocks: cfg.Export.UseStocks,
		},
		log,
	)
	log.Info("Сервис каталога инициализирован")

	router := api.SetupRouter(
		handlers.NewCatalogHandler(catalogService, snapshotCache, cfg.API.SnapshotCacheTTL, log),
		handlers.NewExportHandler(export.NewCacheReportStore(reportCache), log),
		log,
		readiness...,
	)
	log.Info("Маршрутизатор настроен")

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	done := make(chan struct{})
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info("Сервер запущен", interfaces.LogField{Key: "address", Value: server.Addr})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Ошибка запуска сервера", interfaces.LogField{Key: "error", Value: err.Error()})
		}
	}()

	go func() {
		<-quit
		log.Info("Получен сигнал завершения, выполняется graceful shutdown...")

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			log.Error("Ошибка при graceful shutdown", interfaces.LogField{Key: "error", Value: err.Error()})
		}

		log.Info("HTTP сервер остановлен")

		log.Info("Закрытие соединений с зависимостями...")

		if err := snapshotCache.Close(); err != nil {
			log.Error("Ошибка при закрытии кэша каталога",
				interfaces.LogField{Key: "error", Value: err.Error()})
		}

		if err := reportCache.Close(); err != nil {
			log.Error("Ошибка при закрытии Redis",
				interfaces.LogField{Key: "error", Value: err.Error()})
		}

		if err := db.Close(); err != nil {
			log.Error("Ошибка при закрытии БД",
				interfaces.LogField{Key: "error", Value: err.Error()})
		}

		close(done)
	}()

	// Ожидаем завершения работы
	<-done
	log.Info("Сервер корректно завершил работу")
	_ = log.Sync()
}

// Проверка соединения с Redis
func checkRedisConnection(ctx context.Context, cacheClient interfaces.CachePort) error {
	testKey := "test:connection"
	testValue := []byte("test-value")

	// Попытка записи в Redis
	if err := cacheClient.Set(ctx, testKey, testValue, 10*time.Second); err != nil {
		return fmt.Errorf("ошибка записи в Redis: %w", err)
	}

	// Попытка чтения из Redis
	value, err := cacheClient.Get(ctx, testKey)
	if err != nil {
		return fmt.Errorf("ошибка чтения из Redis: %w", err)
	}

	// Проверка значения
	if string(value) != string(testValue) {
		return fmt.Errorf("некорректное значение из Redis: получено %s, ожидалось %s",
			string(value), string(testValue))
	}

	// Удаление тестового ключа
	if err := cacheClient.Delete(ctx, testKey); err != nil {
		return fmt.Errorf("ошибка удаления из Redis: %w", err)
	}

	return nil
}
