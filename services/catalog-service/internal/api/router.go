package api

import (
	"context"
	"net/http"
	"time"

	"github.com/athebyme/gomarket-platform/pkg/interfaces"
	"github.com/athebyme/gomarket-platform/services/catalog-service/internal/api/handlers"
	"github.com/athebyme/gomarket-platform/services/catalog-service/internal/api/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

// RequestTimeout ограничение на обработку одного запроса
const RequestTimeout = 30 * time.Second

const readinessTimeout = 2 * time.Second

// Pinger проверяет доступность внешней зависимости
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependency зависимость, без которой сервис не готов принимать запросы
type Dependency struct {
	Name   string
	Pinger Pinger
}

// SetupRouter настраивает маршрутизатор
func SetupRouter(
	catalogHandler *handlers.CatalogHandler,
	exportHandler *handlers.ExportHandler,
	logger interfaces.LoggerPort,
	deps ...Dependency,
) *chi.Mux {
	r := chi.NewRouter()

	// Глобальные middleware
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Metrics)
	r.Use(chimiddleware.Timeout(RequestTimeout))
	r.Use(middleware.SecurityHeaders)

	r.Method(http.MethodGet, "/health", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}))
	r.Method(http.MethodHead, "/health", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	r.Get("/ready", Readiness(logger, deps...))
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/catalog", catalogHandler.GetCatalog)
		r.Get("/export/status", exportHandler.Status)
	})

	return r
}

// Readiness отвечает 503, пока недоступна хотя бы одна зависимость
func Readiness(logger interfaces.LoggerPort, deps ...Dependency) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		for _, dep := range deps {
			if err := dep.Pinger.Ping(ctx); err != nil {
				logger.WarnWithContext(ctx, "Зависимость недоступна",
					interfaces.LogField{Key: "dependency", Value: dep.Name},
					interfaces.LogField{Key: "error", Value: err.Error()})
				http.Error(w, dep.Name+" unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}
}
