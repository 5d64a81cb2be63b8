package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/athebyme/gomarket-platform/pkg/interfaces"
	"github.com/athebyme/gomarket-platform/services/catalog-service/internal/domain/models"
	"github.com/athebyme/gomarket-platform/services/catalog-service/internal/metrics"
	"github.com/go-chi/render"
)

// SnapshotCacheKey ключ среза каталога в кэше
const SnapshotCacheKey = "catalog:snapshot"

// SnapshotReader источник среза каталога
type SnapshotReader interface {
	Snapshot(ctx context.Context) (*models.CatalogSnapshot, error)
}

// CatalogHandler обработчик запросов к каталогу
type CatalogHandler struct {
	catalog SnapshotReader
	cache   interfaces.CachePort
	ttl     time.Duration
	logger  interfaces.LoggerPort
}

// NewCatalogHandler создает новый обработчик каталога.
// Если cache равен nil или ttl не положителен, срез читается из БД на каждый запрос.
func NewCatalogHandler(catalog SnapshotReader, cache interfaces.CachePort, ttl time.Duration, logger interfaces.LoggerPort) *CatalogHandler {
	return &CatalogHandler{
		catalog: catalog,
		cache:   cache,
		ttl:     ttl,
		logger:  logger,
	}
}

// GetCatalog возвращает категории, опубликованные магазины и их товары,
// прочитанные в одной транзакции
// @Summary Срез каталога
// @Description Категории, опубликованные магазины и их товары из одной транзакции
// @Tags catalog
// @Produce json
// @Success 200 {object} response
// @Failure 500 {object} errorResponse
// @Router /catalog [get]
func (h *CatalogHandler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if data, ok := h.cached(ctx); ok {
		render.Status(r, http.StatusOK)
		render.JSON(w, r, response{Success: true, Data: json.RawMessage(data)})
		return
	}

	snapshot, err := h.catalog.Snapshot(ctx)
	if err != nil {
		h.logger.ErrorWithContext(ctx, "Ошибка получения каталога",
			interfaces.LogField{Key: "error", Value: err.Error()})
		writeError(w, r, http.StatusInternalServerError, "internal_error", "Ошибка получения каталога")
		return
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		h.logger.ErrorWithContext(ctx, "Ошибка сериализации каталога",
			interfaces.LogField{Key: "error", Value: err.Error()})
		writeError(w, r, http.StatusInternalServerError, "internal_error", "Ошибка получения каталога")
		return
	}

	h.store(ctx, data)

	render.Status(r, http.StatusOK)
	render.JSON(w, r, response{
		Success: true,
		Data:    json.RawMessage(data),
		Meta: map[string]int{
			"categories":    len(snapshot.Categories),
			"stores":        len(snapshot.Stores),
			"base_products": len(snapshot.BaseProducts),
		},
	})
}

func (h *CatalogHandler) cached(ctx context.Context) ([]byte, bool) {
	if h.cache == nil || h.ttl <= 0 {
		return nil, false
	}

	data, err := h.cache.Get(ctx, SnapshotCacheKey)
	switch {
	case err == nil:
		metrics.CacheOperations.WithLabelValues("get", "hit").Inc()
		return data, true
	case errors.Is(err, interfaces.ErrCacheMiss):
		metrics.CacheOperations.WithLabelValues("get", "miss").Inc()
	default:
		metrics.CacheOperations.WithLabelValues("get", "error").Inc()
		h.logger.WarnWithContext(ctx, "Ошибка чтения каталога из кэша",
			interfaces.LogField{Key: "error", Value: err.Error()})
	}
	return nil, false
}

func (h *CatalogHandler) store(ctx context.Context, data []byte) {
	if h.cache == nil || h.ttl <= 0 {
		return
	}

	if err := h.cache.Set(ctx, SnapshotCacheKey, data, h.ttl); err != nil {
		metrics.CacheOperations.WithLabelValues("set", "error").Inc()
		h.logger.WarnWithContext(ctx, "Ошибка записи каталога в кэш",
			interfaces.LogField{Key: "error", Value: err.Error()})
		return
	}
	metrics.CacheOperations.WithLabelValues("set", "ok").Inc()
}
