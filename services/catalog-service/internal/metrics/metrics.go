package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Метрики выгрузки каталога
var (
	ExportRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_export_runs_total",
		Help: "Количество завершенных запусков выгрузки каталога",
	}, []string{"status"})

	ExportSkippedTicks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_export_skipped_ticks_total",
		Help: "Количество тиков планировщика, не запустивших выгрузку",
	}, []string{"reason"})

	ExportDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "catalog_export_duration_seconds",
		Help:    "Длительность выгрузки каталога",
		Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 900},
	})

	ExportOffers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "catalog_export_offers",
		Help: "Количество предложений в последнем выгруженном документе",
	})

	ExportOrphanOffers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "catalog_export_orphan_offers",
		Help: "Предложения последнего документа, ссылающиеся на отсутствующие категории",
	})

	ExportDocumentBytes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "catalog_export_document_bytes",
		Help: "Размер последнего выгруженного документа в байтах",
	})

	ExportInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "catalog_export_in_flight",
		Help: "1, если выгрузка сейчас выполняется",
	})

	UploadErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_upload_errors_total",
		Help: "Ошибки публикации документа в объектное хранилище",
	}, []string{"kind"})

	UploadBreakerState = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "catalog_upload_breaker_state",
		Help: "Состояние circuit breaker публикации: 0 закрыт, 1 полуоткрыт, 2 открыт",
	})
)

// Метрики HTTP API
var (
	HTTPDurations = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_durations_seconds",
		Help:    "Длительность HTTP запросов",
		Buckets: prometheus.DefBuckets,
	}, []string{"path", "method", "status"})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Общее количество HTTP запросов",
	}, []string{"path", "method", "status"})

	CacheOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_operations_total",
		Help: "Количество операций с кэшем",
	}, []string{"operation", "status"})
)
