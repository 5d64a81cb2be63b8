package export

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/athebyme/gomarket-platform/pkg/interfaces"
	"github.com/athebyme/gomarket-platform/services/catalog-service/internal/domain/models"
)

// LastReportKey ключ отчета о последнем запуске в кэше
const LastReportKey = "export:last_report"

// ReportStore хранит отчет о последнем запуске выгрузки
type ReportStore interface {
	Save(ctx context.Context, report models.ExportReport) error
	// Last возвращает ErrNoReport, если выгрузка еще не запускалась
	Last(ctx context.Context) (*models.ExportReport, error)
}

// CacheReportStore хранит отчет в CachePort (Redis или память процесса)
type CacheReportStore struct {
	cache interfaces.CachePort
}

// NewCacheReportStore создает новый экземпляр CacheReportStore
func NewCacheReportStore(cache interfaces.CachePort) *CacheReportStore {
	return &CacheReportStore{cache: cache}
}

func (s *CacheReportStore) Save(ctx context.Context, report models.ExportReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal export report: %w", err)
	}
	if err := s.cache.Set(ctx, LastReportKey, data, 0); err != nil {
		return fmt.Errorf("failed to save export report: %w", err)
	}
	return nil
}

func (s *CacheReportStore) Last(ctx context.Context) (*models.ExportReport, error) {
	data, err := s.cache.Get(ctx, LastReportKey)
	if err != nil {
		if errors.Is(err, interfaces.ErrCacheMiss) {
			return nil, ErrNoReport
		}
		return nil, fmt.Errorf("failed to load export report: %w", err)
	}

	var report models.ExportReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal export report: %w", err)
	}
	return &report, nil
}
