package services

import (
	"context"
	"fmt"
	"time"

	"github.com/athebyme/gomarket-platform/pkg/interfaces"
	"github.com/athebyme/gomarket-platform/services/catalog-service/internal/domain/category"
	"github.com/athebyme/gomarket-platform/services/catalog-service/internal/domain/models"
)

// DocumentDateLayout формат времени генерации документа
const DocumentDateLayout = "2006-01-02 15:04"

// CategoryReader читает категории
type CategoryReader interface {
	ListCategories(ctx context.Context) ([]models.CategoryRecord, error)
}

// StoreReader читает магазины
type StoreReader interface {
	ListPublishedStores(ctx context.Context) ([]models.Store, error)
}

// BaseProductReader читает базовые продукты вместе с вариантами и атрибутами
type BaseProductReader interface {
	ListCatalog(ctx context.Context, storeIDs []int) ([]models.BaseProductWithVariants, error)
}

// StockReader читает складские остатки по id варианта
type StockReader interface {
	ListStocks(ctx context.Context) (map[int]int, error)
}

// UnitOfWork выполняет fn в одной транзакции только на чтение.
// Все репозитории, вызванные внутри fn с переданным контекстом, видят один снимок данных.
type UnitOfWork interface {
	DoSnapshot(ctx context.Context, fn func(ctx context.Context) error) error
}

// CatalogServiceInterface определяет операции сервиса каталога
type CatalogServiceInterface interface {
	// Aggregate собирает документ каталога для выгрузки
	Aggregate(ctx context.Context) (*models.CatalogDocument, AggregateStats, error)

	// Snapshot возвращает согласованный срез исходных данных каталога
	Snapshot(ctx context.Context) (*models.CatalogSnapshot, error)
}

// CatalogConfig настройки сборки документа
type CatalogConfig struct {
	// Language язык, на котором подбираются все тексты документа
	Language models.Language
	// Cluster хост витрины, из которого строятся ссылки на товары
	Cluster string
	// UseStocks учитывать складские остатки при расчете доступности
	UseStocks bool
}

// AggregateStats статистика одной сборки документа
type AggregateStats struct {
	Categories          int
	UnreachedCategories int
	Stores              int
	BaseProducts        int
	// ExcludedProducts базовые продукты, магазин которых не опубликован
	ExcludedProducts int
	Offers           int
	// OrphanOffers предложения, категории которых нет в документе
	OrphanOffers int
}

// CatalogService собирает каталог из четырех источников данных в одной транзакции
type CatalogService struct {
	uow        UnitOfWork
	categories CategoryReader
	stores     StoreReader
	products   BaseProductReader
	stocks     StockReader
	config     CatalogConfig
	logger     interfaces.LoggerPort
	now        func() time.Time
}

// NewCatalogService создает новый экземпляр CatalogService.
// stocks может быть nil, если складские остатки не используются.
func NewCatalogService(
	uow UnitOfWork,
	categories CategoryReader,
	stores StoreReader,
	products BaseProductReader,
	stocks StockReader,
	config CatalogConfig,
	logger interfaces.LoggerPort,
) *CatalogService {
	if config.Language == "" {
		config.Language = models.LanguageEn
	}
	return &CatalogService{
		uow:        uow,
		categories: categories,
		stores:     stores,
		products:   products,
		stocks:     stocks,
		config:     config,
		logger:     logger,
		now:        time.Now,
	}
}

// WithClock подменяет источник времени
func (s *CatalogService) WithClock(now func() time.Time) *CatalogService {
	s.now = now
	return s
}

// Aggregate читает категории, опубликованные магазины, каталог и остатки в одной транзакции
// и собирает из них документ. Любая ошибка чтения прерывает сборку целиком.
func (s *CatalogService) Aggregate(ctx context.Context) (*models.CatalogDocument, AggregateStats, error) {
	var (
		stats    AggregateStats
		document *models.CatalogDocument
	)

	err := s.uow.DoSnapshot(ctx, func(ctx context.Context) error {
		records, err := s.categories.ListCategories(ctx)
		if err != nil {
			return fmt.Errorf("failed to list categories: %w", err)
		}
		tree := category.BuildTree(records, s.config.Language)
		categories := category.Flatten(tree.Roots)
		stats.Categories = len(categories)
		stats.UnreachedCategories = len(tree.Unreached)

		stores, err := s.stores.ListPublishedStores(ctx)
		if err != nil {
			return fmt.Errorf("failed to list published stores: %w", err)
		}
		stats.Stores = len(stores)

		storesByID := make(map[int]models.Store, len(stores))
		storeIDs := make([]int, 0, len(stores))
		for _, store := range stores {
			storesByID[store.ID] = store
			storeIDs = append(storeIDs, store.ID)
		}

		catalog, err := s.products.ListCatalog(ctx, storeIDs)
		if err != nil {
			return fmt.Errorf("failed to list catalog: %w", err)
		}

		var stocks map[int]int
		if s.config.UseStocks && s.stocks != nil {
			stocks, err = s.stocks.ListStocks(ctx)
			if err != nil {
				return fmt.Errorf("failed to list stocks: %w", err)
			}
			if stocks == nil {
				stocks = map[int]int{}
			}
		}

		categoryIDs := make(map[int]struct{}, len(categories))
		for _, c := range categories {
			categoryIDs[c.ID] = struct{}{}
		}

		offers := make([]models.CatalogEntry, 0, len(catalog))
		for _, item := range catalog {
			store, ok := storesByID[item.BaseProduct.StoreID]
			if !ok {
				stats.ExcludedProducts++
				continue
			}
			stats.BaseProducts++

			for _, variant := range item.Variants {
				entry := buildEntry(item.BaseProduct, store, variant, stocks, s.config)
				if _, ok := categoryIDs[entry.CategoryID]; !ok {
					stats.OrphanOffers++
				}
				offers = append(offers, entry)
			}
		}
		stats.Offers = len(offers)

		document = &models.CatalogDocument{
			GeneratedAt: s.now().UTC().Format(DocumentDateLayout),
			Categories:  categories,
			Offers:      offers,
		}
		return nil
	})
	if err != nil {
		return nil, AggregateStats{}, err
	}

	if stats.OrphanOffers > 0 {
		s.logger.WarnWithContext(ctx, "Предложения ссылаются на категории, которых нет в документе",
			interfaces.LogField{Key: "orphan_offers", Value: stats.OrphanOffers},
		)
	}
	if stats.UnreachedCategories > 0 {
		s.logger.WarnWithContext(ctx, "Категории недостижимы от корня и пропущены",
			interfaces.LogField{Key: "unreached_categories", Value: stats.UnreachedCategories},
		)
	}
	s.logger.DebugWithContext(ctx, "Каталог собран",
		interfaces.LogField{Key: "categories", Value: stats.Categories},
		interfaces.LogField{Key: "stores", Value: stats.Stores},
		interfaces.LogField{Key: "base_products", Value: stats.BaseProducts},
		interfaces.LogField{Key: "excluded_products", Value: stats.ExcludedProducts},
		interfaces.LogField{Key: "offers", Value: stats.Offers},
	)

	return document, stats, nil
}

// Snapshot читает исходные данные каталога в одной транзакции.
// Базовые продукты неопубликованных магазинов в срез не попадают.
func (s *CatalogService) Snapshot(ctx context.Context) (*models.CatalogSnapshot, error) {
	snapshot := &models.CatalogSnapshot{}

	err := s.uow.DoSnapshot(ctx, func(ctx context.Context) error {
		categories, err := s.categories.ListCategories(ctx)
		if err != nil {
			return fmt.Errorf("failed to list categories: %w", err)
		}

		stores, err := s.stores.ListPublishedStores(ctx)
		if err != nil {
			return fmt.Errorf("failed to list published stores: %w", err)
		}

		published := make(map[int]struct{}, len(stores))
		storeIDs := make([]int, 0, len(stores))
		for _, store := range stores {
			published[store.ID] = struct{}{}
			storeIDs = append(storeIDs, store.ID)
		}

		catalog, err := s.products.ListCatalog(ctx, storeIDs)
		if err != nil {
			return fmt.Errorf("failed to list catalog: %w", err)
		}

		baseProducts := make([]models.BaseProductWithVariants, 0, len(catalog))
		for _, item := range catalog {
			if _, ok := published[item.BaseProduct.StoreID]; ok {
				baseProducts = append(baseProducts, item)
			}
		}

		snapshot.Categories = categories
		snapshot.Stores = stores
		snapshot.BaseProducts = baseProducts
		return nil
	})
	if err != nil {
		return nil, err
	}

	return snapshot, nil
}
