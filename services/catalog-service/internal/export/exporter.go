package export

import (
	"context"
	"fmt"
	"time"

	"github.com/athebyme/gomarket-platform/pkg/interfaces"
	"github.com/athebyme/gomarket-platform/services/catalog-service/internal/domain/models"
	"github.com/athebyme/gomarket-platform/services/catalog-service/internal/domain/services"
	"github.com/athebyme/gomarket-platform/services/catalog-service/internal/metrics"
)

// Aggregator собирает документ каталога
type Aggregator interface {
	Aggregate(ctx context.Context) (*models.CatalogDocument, services.AggregateStats, error)
}

// Serializer превращает документ каталога в байты
type Serializer interface {
	Serialize(doc *models.CatalogDocument) ([]byte, error)
}

// ExporterConfig настройки запуска выгрузки
type ExporterConfig struct {
	FileName string
	Language models.Language
	// RunTimeout ограничение на весь запуск. 0 отключает ограничение.
	RunTimeout time.Duration
}

// Exporter выполняет один запуск: сборка, сериализация, публикация
type Exporter struct {
	aggregator Aggregator
	serializer Serializer
	uploader   interfaces.ObjectStorePort
	reports    ReportStore
	notifier   Notifier
	config     ExporterConfig
	logger     interfaces.LoggerPort
	now        func() time.Time
}

// NewExporter создает новый экземпляр Exporter. reports и notifier могут быть nil.
func NewExporter(
	aggregator Aggregator,
	serializer Serializer,
	uploader interfaces.ObjectStorePort,
	reports ReportStore,
	notifier Notifier,
	config ExporterConfig,
	logger interfaces.LoggerPort,
) *Exporter {
	if config.Language == "" {
		config.Language = models.LanguageEn
	}
	if notifier == nil {
		notifier = NopNotifier{}
	}

	return &Exporter{
		aggregator: aggregator,
		serializer: serializer,
		uploader:   uploader,
		reports:    reports,
		notifier:   notifier,
		config:     config,
		logger:     logger,
		now:        time.Now,
	}
}

// FileName имя публикуемого файла: <fileName>_<lang>.xml
func (e *Exporter) FileName() string {
	return fmt.Sprintf("%s_%s.xml", e.config.FileName, e.config.Language)
}

// Run выполняет один запуск и возвращает отчет о нем.
// Ошибки запуска не выходят наружу: они попадают в лог, отчет и метрики.
func (e *Exporter) Run(ctx context.Context, runID string) models.ExportReport {
	log := e.logger.WithRunID(runID)
	ctx = interfaces.ContextWithRunID(ctx, runID)

	if e.config.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.RunTimeout)
		defer cancel()
	}

	report := models.ExportReport{
		RunID:     runID,
		FileName:  e.FileName(),
		StartedAt: e.now().UTC(),
	}
	log.Info("Запуск выгрузки каталога", interfaces.LogField{Key: "file_name", Value: report.FileName})

	err := e.run(ctx, &report)

	report.FinishedAt = e.now().UTC()
	duration := report.FinishedAt.Sub(report.StartedAt)
	metrics.ExportDuration.Observe(duration.Seconds())

	if err != nil {
		report.Status = models.ExportFailed
		report.ErrorKind = KindOf(err)
		report.Error = err.Error()
		metrics.ExportRuns.WithLabelValues(string(models.ExportFailed)).Inc()

		log.Error("Выгрузка каталога завершилась ошибкой",
			interfaces.LogField{Key: "error_kind", Value: string(report.ErrorKind)},
			interfaces.LogField{Key: "error", Value: err.Error()},
			interfaces.LogField{Key: "duration", Value: duration.String()},
		)
	} else {
		report.Status = models.ExportSucceeded
		metrics.ExportRuns.WithLabelValues(string(models.ExportSucceeded)).Inc()
		metrics.ExportOffers.Set(float64(report.Offers))
		metrics.ExportOrphanOffers.Set(float64(report.Orphans))
		metrics.ExportDocumentBytes.Set(float64(report.Bytes))

		log.Info("Выгрузка каталога завершена",
			interfaces.LogField{Key: "categories", Value: report.Categories},
			interfaces.LogField{Key: "offers", Value: report.Offers},
			interfaces.LogField{Key: "bytes", Value: report.Bytes},
			interfaces.LogField{Key: "url", Value: report.URL},
			interfaces.LogField{Key: "duration", Value: duration.String()},
		)
	}

	// Отчет и событие пишутся без таймаута запуска: он мог уже истечь
	outCtx := context.WithoutCancel(ctx)
	if e.reports != nil {
		if err := e.reports.Save(outCtx, report); err != nil {
			log.Warn("Не удалось сохранить отчет о выгрузке", interfaces.LogField{Key: "error", Value: err.Error()})
		}
	}
	if err := e.notifier.Notify(outCtx, report); err != nil {
		log.Warn("Не удалось отправить событие о выгрузке", interfaces.LogField{Key: "error", Value: err.Error()})
	}

	return report
}

func (e *Exporter) run(ctx context.Context, report *models.ExportReport) error {
	doc, stats, err := e.aggregator.Aggregate(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDataAccess, err)
	}
	report.Categories = stats.Categories
	report.Offers = stats.Offers
	report.Orphans = stats.OrphanOffers

	data, err := e.serializer.Serialize(doc)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSerialization, err)
	}
	report.Bytes = len(data)

	url, err := e.uploader.Upload(ctx, report.FileName, data)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUpload, err)
	}
	report.URL = url

	return nil
}

