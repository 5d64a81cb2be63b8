package export

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/athebyme/gomarket-platform/services/catalog-service/internal/adapters/logger"
	"github.com/athebyme/gomarket-platform/services/catalog-service/internal/domain/models"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// blockingRunner блокируется до закрытия release
type blockingRunner struct {
	started chan struct{}
	release chan struct{}
	calls   atomic.Int32
}

func newBlockingRunner() *blockingRunner {
	return &blockingRunner{
		started: make(chan struct{}, 32),
		release: make(chan struct{}),
	}
}

func (r *blockingRunner) Run(ctx context.Context, runID string) models.ExportReport {
	r.calls.Add(1)
	r.started <- struct{}{}
	<-r.release
	return models.ExportReport{RunID: runID, Status: models.ExportSucceeded}
}

type countingRunner struct {
	calls  int
	runIDs []string
	panic  bool
}

func (r *countingRunner) Run(ctx context.Context, runID string) models.ExportReport {
	r.calls++
	r.runIDs = append(r.runIDs, runID)
	if r.panic {
		panic("boom")
	}
	return models.ExportReport{RunID: runID}
}

func TestGuard_TryAcquire(t *testing.T) {
	var g Guard

	if !g.TryAcquire() {
		t.Fatal("Expected first acquire to succeed")
	}
	if g.TryAcquire() {
		t.Error("Expected second acquire to fail while running")
	}
	if !g.Running() {
		t.Error("Expected guard to be running")
	}

	g.Release()
	if g.Running() {
		t.Error("Expected guard to be idle after release")
	}
	if !g.TryAcquire() {
		t.Error("Expected acquire after release to succeed")
	}
}

func TestScheduler_SingleFlight(t *testing.T) {
	runner := newBlockingRunner()
	guard := &Guard{}
	s := NewScheduler(runner, SchedulerConfig{Enabled: true, Interval: time.Hour}, logger.NewNopLogger(), WithGuard(guard))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if !s.Tick(context.Background()) {
			t.Error("Expected first tick to start a run")
		}
	}()

	select {
	case <-runner.started:
	case <-time.After(time.Second):
		t.Fatal("Expected first run to start")
	}

	// Тики во время выполнения отбрасываются
	for i := 0; i < 3; i++ {
		if s.Tick(context.Background()) {
			t.Error("Expected tick during a run to be skipped")
		}
	}
	if !s.Running() {
		t.Error("Expected scheduler to report running")
	}

	close(runner.release)
	wg.Wait()

	if got := runner.calls.Load(); got != 1 {
		t.Errorf("Expected exactly 1 run, got %d", got)
	}
	if guard.Running() {
		t.Error("Expected guard to be cleared after run")
	}

	// Пропущенные тики не накапливаются: следующий тик запускает ровно один запуск
	if !s.Tick(context.Background()) {
		t.Error("Expected tick after completion to start a run")
	}
	if got := runner.calls.Load(); got != 2 {
		t.Errorf("Expected 2 runs in total, got %d", got)
	}
}

func TestScheduler_ConcurrentTicks(t *testing.T) {
	runner := newBlockingRunner()
	s := NewScheduler(runner, SchedulerConfig{Enabled: true}, logger.NewNopLogger())

	var (
		wg      sync.WaitGroup
		started atomic.Int32
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.Tick(context.Background()) {
				started.Add(1)
			}
		}()
	}

	<-runner.started
	close(runner.release)
	wg.Wait()

	if got := started.Load(); got < 1 {
		t.Fatalf("Expected at least one run, got %d", got)
	}
	if got := runner.calls.Load(); got != started.Load() {
		t.Errorf("Expected runs to match started ticks, got %d runs for %d ticks", got, started.Load())
	}
	if s.Running() {
		t.Error("Expected guard to be cleared")
	}
}

func TestScheduler_DisabledIsNoop(t *testing.T) {
	runner := &countingRunner{}
	guard := &Guard{}
	s := NewScheduler(runner, SchedulerConfig{Enabled: false}, logger.NewNopLogger(), WithGuard(guard))

	for i := 0; i < 3; i++ {
		if s.Tick(context.Background()) {
			t.Error("Expected disabled tick to be a no-op")
		}
	}
	if runner.calls != 0 {
		t.Errorf("Expected no runs, got %d", runner.calls)
	}
	if guard.Running() {
		t.Error("Expected guard to stay idle")
	}
}

func TestScheduler_SkipLogLevels(t *testing.T) {
	level := zap.NewAtomicLevelAt(zapcore.DebugLevel)
	core, logs := observer.New(level)
	log := logger.NewZapLoggerWithCore(core, level)

	disabled := NewScheduler(&countingRunner{}, SchedulerConfig{Enabled: false}, log)
	guard := &Guard{}
	busy := NewScheduler(&countingRunner{}, SchedulerConfig{Enabled: true}, log, WithGuard(guard))
	logs.TakeAll()

	disabled.Tick(context.Background())
	disabledEntries := logs.TakeAll()

	if !guard.TryAcquire() {
		t.Fatal("Expected guard to be free")
	}
	busy.Tick(context.Background())
	guard.Release()
	busyEntries := logs.TakeAll()

	if len(disabledEntries) != 1 || len(busyEntries) != 1 {
		t.Fatalf("Expected one entry per skipped tick, got %d and %d", len(disabledEntries), len(busyEntries))
	}
	if disabledEntries[0].Level != zapcore.InfoLevel {
		t.Errorf("Expected unconfigured tick at info, got %s", disabledEntries[0].Level)
	}
	if busyEntries[0].Level != zapcore.WarnLevel {
		t.Errorf("Expected busy tick at warn, got %s", busyEntries[0].Level)
	}
	if disabledEntries[0].Level >= busyEntries[0].Level {
		t.Error("Expected unconfigured tick to log below a busy skip")
	}
}

func TestScheduler_GuardClearedOnPanic(t *testing.T) {
	runner := &countingRunner{panic: true}
	guard := &Guard{}
	s := NewScheduler(runner, SchedulerConfig{Enabled: true}, logger.NewNopLogger(), WithGuard(guard))

	func() {
		defer func() { _ = recover() }()
		s.Tick(context.Background())
	}()

	if guard.Running() {
		t.Error("Expected guard to be cleared after panic")
	}
}

func TestScheduler_RunIDs(t *testing.T) {
	runner := &countingRunner{}
	n := 0
	s := NewScheduler(runner, SchedulerConfig{Enabled: true}, logger.NewNopLogger(),
		WithRunIDGenerator(func() string { n++; return "run-" + string(rune('0'+n)) }))

	s.Tick(context.Background())
	s.Tick(context.Background())

	if len(runner.runIDs) != 2 || runner.runIDs[0] != "run-1" || runner.runIDs[1] != "run-2" {
		t.Errorf("Expected run ids [run-1 run-2], got %v", runner.runIDs)
	}
}

func TestScheduler_Spec(t *testing.T) {
	tests := []struct {
		interval time.Duration
		want     string
	}{
		{0, "@every 3600s"},
		{90 * time.Second, "@every 90s"},
	}
	for _, tt := range tests {
		s := NewScheduler(&countingRunner{}, SchedulerConfig{Interval: tt.interval}, logger.NewNopLogger())
		if got := s.Spec(); got != tt.want {
			t.Errorf("Interval %v: expected %q, got %q", tt.interval, tt.want, got)
		}
	}
}

func TestScheduler_StartStop(t *testing.T) {
	s := NewScheduler(&countingRunner{}, SchedulerConfig{Enabled: true, Interval: time.Hour}, logger.NewNopLogger())

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	select {
	case <-s.Stop().Done():
	case <-time.After(time.Second):
		t.Error("Expected scheduler to stop promptly")
	}
}
