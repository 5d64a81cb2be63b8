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

	"github.com/athebyme/gomarket-platform/pkg/interfaces"
	"github.com/athebyme/gomarket-platform/pkg/tx"
	"github.com/athebyme/gomarket-platform/services/catalog-service/config"
	"github.com/athebyme/gomarket-platform/services/catalog-service/internal/adapters/cache"
	"github.com/athebyme/gomarket-platform/services/catalog-service/internal/adapters/logger"
	"github.com/athebyme/gomarket-platform/services/catalog-service/internal/adapters/messaging"
	"github.com/athebyme/gomarket-platform/services/catalog-service/internal/adapters/objectstore"
	"github.com/athebyme/gomarket-platform/services/catalog-service/internal/adapters/storage"
	"github.com/athebyme/gomarket-platform/services/catalog-service/internal/adapters/yml"
	"github.com/athebyme/gomarket-platform/services/catalog-service/internal/api"
	"github.com/athebyme/gomarket-platform/services/catalog-service/internal/api/handlers"
	"github.com/athebyme/gomarket-platform/services/catalog-service/internal/domain/models"
	"github.com/athebyme/gomarket-platform/services/catalog-service/internal/domain/services"
	"github.com/athebyme/gomarket-platform/services/catalog-service/internal/export"
	"github.com/athebyme/gomarket-platform/services/catalog-service/internal/utils"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Printf("Ошибка загрузки конфигурации: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log, err := logger.NewZapLogger(cfg.LogLevel, cfg.ENV == "production")
	if err != nil {
		fmt.Printf("Ошибка инициализации логгера: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Инициализация воркера выгрузки каталога",
		interfaces.LogField{Key: "app_name", Value: cfg.AppName + "-worker"},
		interfaces.LogField{Key: "version", Value: cfg.Version},
		interfaces.LogField{Key: "env", Value: cfg.ENV},
	)

	// Пул воркера ограничен export.threadCount, а не общим postgres.poolSize
	connectionStr, err := utils.GenerateConnectionString(
		cfg.Postgres.Host,
		cfg.Postgres.User,
		cfg.Postgres.Password,
		cfg.Postgres.DBName,
		cfg.Postgres.SSLMode,
		cfg.Postgres.Port,
		cfg.ExportPoolSize(),
		cfg.Postgres.Timeout,
	)
	if err != nil {
		log.Fatal("Ошибка генерации строки подключения к PostgreSQL",
			interfaces.LogField{Key: "error", Value: err.Error()})
	}

	repo, err := postgres.NewPostgresStorage(ctx, connectionStr)
	if err != nil {
		log.Fatal("Ошибка инициализации хранилища",
			interfaces.LogField{Key: "error", Value: err.Error()})
	}
	defer repo.Close()

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	if err := repo.Ping(pingCtx); err != nil {
		pingCancel()
		log.Fatal("Ошибка подключения к PostgreSQL",
			interfaces.LogField{Key: "error", Value: err.Error()})
	}
	pingCancel()
	log.Info("Хранилище инициализировано")

	txManager := tx.NewTxManager(repo.Pool(), log)

	reportCache, err := newReportCache(ctx, cfg, log)
	if err != nil {
		log.Fatal("Ошибка инициализации хранилища отчетов",
			interfaces.LogField{Key: "error", Value: err.Error()})
	}
	defer reportCache.Close()
	reports := export.NewCacheReportStore(reportCache)

	readiness := []api.Dependency{{Name: "postgres", Pinger: repo}}
	if pinger, ok := reportCache.(api.Pinger); ok {
		readiness = append(readiness, api.Dependency{Name: "redis", Pinger: pinger})
	}

	var notifier export.Notifier = export.NopNotifier{}
	if cfg.Kafka.Enabled {
		messagingClient, err := messaging.NewKafkaMessaging(cfg.Kafka.Brokers, cfg.Kafka.ClientID, log)
		if err != nil {
			log.Fatal("Ошибка инициализации системы обмена сообщениями",
				interfaces.LogField{Key: "error", Value: err.Error()})
		}
		defer messagingClient.Close()
		notifier = export.NewEventNotifier(messagingClient, cfg.Kafka.ExportTopic)
		log.Info("События выгрузки публикуются в Kafka",
			interfaces.LogField{Key: "topic", Value: cfg.Kafka.ExportTopic})
	}

	language := models.Language(cfg.Export.Language)

	catalogService := services.NewCatalogService(
		txManager,
		repo,
		repo,
		repo,
		repo,
		services.CatalogConfig{
			Language:  language,
			Cluster:   cfg.Export.Cluster,
			UseStocks: cfg.Export.UseStocks,
		},
		log,
	)

	s3Config := objectstore.Config{
		Region:          cfg.S3.Region,
		Bucket:          cfg.S3.Bucket,
		Key:             cfg.S3.Key,
		Secret:          cfg.S3.Secret,
		Endpoint:        cfg.S3.Endpoint,
		Host:            cfg.S3.Host,
		BreakerFailures: uint32(max(cfg.Resilience.TripThreshold, 0)),
		BreakerTimeout:  cfg.Resilience.CircuitTimeout,
	}
	uploader := objectstore.NewS3Uploader(objectstore.NewS3Client(s3Config), s3Config, log)

	exporter := export.NewExporter(
		catalogService,
		yml.NewSerializer(cfg.Export.Indent),
		uploader,
		reports,
		notifier,
		export.ExporterConfig{
			FileName:   cfg.Export.FileName,
			Language:   language,
			RunTimeout: cfg.Export.RunTimeout,
		},
		log,
	)

	if !cfg.ExportConfigured() {
		log.Warn("Выгрузка каталога выключена или не заданы параметры S3, тики будут пропускаться")
	}

	scheduler := export.NewScheduler(exporter, export.SchedulerConfig{
		Enabled:  cfg.ExportConfigured(),
		Interval: cfg.ExportInterval(),
	}, log)

	g, gctx := errgroup.WithContext(ctx)

	if cfg.Metrics.Enabled {
		server := newMetricsServer(cfg.Metrics.Port, handlers.NewExportHandler(reports, log), log, readiness...)

		g.Go(func() error {
			log.Info("Запуск HTTP сервера для метрик",
				interfaces.LogField{Key: "addr", Value: server.Addr})
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})

		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error {
		if err := scheduler.Start(gctx); err != nil {
			return err
		}
		<-gctx.Done()

		log.Info("Получен сигнал завершения, ожидание текущей выгрузки...")

		// Контекст запуска уже отменен, выполняющаяся выгрузка прервется на ближайшем чтении или загрузке
		select {
		case <-scheduler.Stop().Done():
		case <-time.After(cfg.Server.ShutdownTimeout):
			log.Warn("Выгрузка не завершилась за отведенное время")
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error("Воркер завершился с ошибкой",
			interfaces.LogField{Key: "error", Value: err.Error()})
		return
	}

	log.Info("Воркер корректно завершил работу")
}

// newReportCache выбирает хранилище отчета: Redis, общий с API, или память процесса
func newReportCache(ctx context.Context, cfg *config.Config, log interfaces.LoggerPort) (interfaces.CachePort, error) {
	if !cfg.Redis.Enabled {
		log.Warn("Redis выключен, отчет о выгрузке хранится в памяти воркера")
		return cache.NewMemoryCache(10 * time.Minute), nil
	}

	redisCache, err := cache.NewRedisCache(
		ctx,
		cfg.Redis.Host,
		cfg.Redis.Port,
		cfg.Redis.Password,
		cfg.Redis.DB,
		cfg.Redis.Prefix,
	)
	if err != nil {
		return nil, err
	}
	log.Info("Кэш инициализирован")
	return redisCache, nil
}

func newMetricsServer(port int, exportHandler *handlers.ExportHandler, log interfaces.LoggerPort, readiness ...api.Dependency) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.HandleFunc("/ready", api.Readiness(log, readiness...))
	mux.HandleFunc("/export/status", exportHandler.Status)

	return &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
