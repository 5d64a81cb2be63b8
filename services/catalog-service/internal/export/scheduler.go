package export

import (
	"context"
	"fmt"
	"time"

	"github.com/athebyme/gomarket-platform/pkg/interfaces"
	"github.com/athebyme/gomarket-platform/services/catalog-service/internal/domain/models"
	"github.com/athebyme/gomarket-platform/services/catalog-service/internal/metrics"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// DefaultInterval интервал выгрузки, если он не задан
const DefaultInterval = time.Hour

// Причины пропуска тика для метрик
const (
	skipReasonDisabled = "disabled"
	skipReasonBusy     = "busy"
)

// Runner выполняет один запуск выгрузки
type Runner interface {
	Run(ctx context.Context, runID string) models.ExportReport
}

// SchedulerConfig настройки планировщика
type SchedulerConfig struct {
	// Enabled false, если выгрузка не настроена: каждый тик ничего не делает
	Enabled  bool
	Interval time.Duration
}

// Scheduler запускает выгрузку с фиксированным интервалом, не более одной одновременно.
// Тик, пришедший во время выполнения, отбрасывается и не ставится в очередь.
type Scheduler struct {
	runner   Runner
	guard    *Guard
	config   SchedulerConfig
	cron     *cron.Cron
	logger   interfaces.LoggerPort
	newRunID func() string
}

// Option настраивает Scheduler
type Option func(*Scheduler)

// WithGuard задает Guard снаружи
func WithGuard(guard *Guard) Option {
	return func(s *Scheduler) {
		s.guard = guard
	}
}

// WithRunIDGenerator подменяет генератор идентификаторов запуска
func WithRunIDGenerator(fn func() string) Option {
	return func(s *Scheduler) {
		s.newRunID = fn
	}
}

// NewScheduler создает новый экземпляр Scheduler
func NewScheduler(runner Runner, config SchedulerConfig, logger interfaces.LoggerPort, opts ...Option) *Scheduler {
	if config.Interval <= 0 {
		config.Interval = DefaultInterval
	}

	s := &Scheduler{
		runner:   runner,
		config:   config,
		logger:   logger,
		newRunID: func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.guard == nil {
		s.guard = &Guard{}
	}

	cronLog := cronLogger{logger: logger}
	s.cron = cron.New(
		cron.WithLogger(cronLog),
		cron.WithChain(cron.Recover(cronLog)),
	)

	return s
}

// Spec расписание в формате cron
func (s *Scheduler) Spec() string {
	return fmt.Sprintf("@every %ds", int64(s.config.Interval/time.Second))
}

// Start регистрирует задачу и запускает таймер. Тики выполняются с контекстом ctx.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.Spec(), func() { s.Tick(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule export: %w", err)
	}
	s.cron.Start()

	s.logger.Info("Планировщик выгрузки каталога запущен",
		interfaces.LogField{Key: "spec", Value: s.Spec()},
		interfaces.LogField{Key: "enabled", Value: s.config.Enabled},
	)
	return nil
}

// Stop останавливает таймер и возвращает контекст, который завершится
// после окончания выполняющегося запуска
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// Running сообщает, выполняется ли выгрузка
func (s *Scheduler) Running() bool {
	return s.guard.Running()
}

// Tick обрабатывает один тик таймера. Возвращает true, если запуск состоялся.
// Guard освобождается на любом пути выхода, включая панику в запуске.
func (s *Scheduler) Tick(ctx context.Context) bool {
	if !s.config.Enabled {
		metrics.ExportSkippedTicks.WithLabelValues(skipReasonDisabled).Inc()
		s.logger.Info("Выгрузка каталога не настроена, тик пропущен")
		return false
	}

	if !s.guard.TryAcquire() {
		metrics.ExportSkippedTicks.WithLabelValues(skipReasonBusy).Inc()
		s.logger.Warn("Предыдущая выгрузка каталога еще выполняется, тик пропущен")
		return false
	}
	defer s.guard.Release()

	metrics.ExportInFlight.Set(1)
	defer metrics.ExportInFlight.Set(0)

	s.runner.Run(ctx, s.newRunID())
	return true
}

// cronLogger передает сообщения cron в LoggerPort
type cronLogger struct {
	logger interfaces.LoggerPort
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, append(keysAndValues, "error", err.Error())...)
}
