package postgres

import (
	"context"
	"fmt"

	"github.com/athebyme/gomarket-platform/pkg/tx"
	"github.com/athebyme/gomarket-platform/services/catalog-service/internal/domain/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CatalogStorage читает каталог из PostgreSQL.
// Если в контексте есть транзакция из pkg/tx, запросы выполняются в ней.
type CatalogStorage struct {
	pool *pgxpool.Pool
}

// NewPostgresStorage создает пул соединений и проверяет доступность БД
func NewPostgresStorage(ctx context.Context, connectionString string) (*CatalogStorage, error) {
	pool, err := pgxpool.New(ctx, connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	return &CatalogStorage{pool: pool}, nil
}

// Pool возвращает пул соединений для менеджера транзакций
func (r *CatalogStorage) Pool() *pgxpool.Pool {
	return r.pool
}

// Ping проверяет доступность БД
func (r *CatalogStorage) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close закрывает соединение с БД
func (r *CatalogStorage) Close() error {
	r.pool.Close()
	return nil
}

type executor interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// getExecutor возвращает исполнителя запросов (транзакцию или пул)
func (r *CatalogStorage) getExecutor(ctx context.Context) executor {
	if t, ok := tx.GetTxFromContext(ctx); ok {
		return t
	}
	return r.pool
}

// ListCategories возвращает все категории
func (r *CatalogStorage) ListCategories(ctx context.Context) ([]models.CategoryRecord, error) {
	query := `
		SELECT id, parent_id, name
		FROM categories
		ORDER BY id
	`

	rows, err := r.getExecutor(ctx).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []models.CategoryRecord
	for rows.Next() {
		var (
			category models.CategoryRecord
			name     []byte
		)
		if err := rows.Scan(&category.ID, &category.ParentID, &name); err != nil {
			return nil, fmt.Errorf("failed to scan category row: %w", err)
		}
		category.Name = models.ParseLocalizedText(name)
		categories = append(categories, category)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error while iterating category rows: %w", err)
	}

	return categories, nil
}

// ListPublishedStores возвращает активные магазины в статусе published
func (r *CatalogStorage) ListPublishedStores(ctx context.Context) ([]models.Store, error) {
	query := `
		SELECT id, name, status
		FROM stores
		WHERE is_active = true AND status = $1
		ORDER BY id
	`

	rows, err := r.getExecutor(ctx).Query(ctx, query, string(models.StatusPublished))
	if err != nil {
		return nil, fmt.Errorf("failed to list published stores: %w", err)
	}
	defer rows.Close()

	var stores []models.Store
	for rows.Next() {
		var (
			store  models.Store
			name   []byte
			status string
		)
		if err := rows.Scan(&store.ID, &name, &status); err != nil {
			return nil, fmt.Errorf("failed to scan store row: %w", err)
		}
		store.Name = models.ParseLocalizedText(name)
		store.Status = models.ModerationStatus(status)
		stores = append(stores, store)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error while iterating store rows: %w", err)
	}

	return stores, nil
}

// ListCatalog возвращает активные базовые продукты магазинов storeIDs
// вместе с активными вариантами и значениями атрибутов
func (r *CatalogStorage) ListCatalog(ctx context.Context, storeIDs []int) ([]models.BaseProductWithVariants, error) {
	if len(storeIDs) == 0 {
		return nil, nil
	}

	baseProducts, err := r.listBaseProducts(ctx, storeIDs)
	if err != nil {
		return nil, err
	}

	variants, err := r.listVariants(ctx, storeIDs)
	if err != nil {
		return nil, err
	}

	attributes, err := r.listAttributeValues(ctx, storeIDs)
	if err != nil {
		return nil, err
	}

	return assembleCatalog(baseProducts, variants, attributes), nil
}

func (r *CatalogStorage) listBaseProducts(ctx context.Context, storeIDs []int) ([]models.BaseProduct, error) {
	query := `
		SELECT bp.id, bp.store_id, bp.name, bp.short_description, bp.long_description,
			bp.category_id, COALESCE(c.name, ''), bp.status
		FROM base_products bp
		LEFT JOIN currencies c ON c.id = bp.currency_id
		WHERE bp.is_active = true AND bp.store_id = ANY($1)
		ORDER BY bp.id
	`

	rows, err := r.getExecutor(ctx).Query(ctx, query, storeIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list base products: %w", err)
	}
	defer rows.Close()

	var products []models.BaseProduct
	for rows.Next() {
		var (
			product           models.BaseProduct
			name, short, long []byte
			status            string
		)
		err := rows.Scan(&product.ID, &product.StoreID, &name, &short, &long,
			&product.CategoryID, &product.Currency, &status)
		if err != nil {
			return nil, fmt.Errorf("failed to scan base product row: %w", err)
		}
		product.Name = models.ParseLocalizedText(name)
		product.ShortDescription = models.ParseLocalizedText(short)
		product.LongDescription = models.ParseLocalizedText(long)
		product.Status = models.ModerationStatus(status)
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error while iterating base product rows: %w", err)
	}

	return products, nil
}

func (r *CatalogStorage) listVariants(ctx context.Context, storeIDs []int) ([]models.Variant, error) {
	query := `
		SELECT p.id, p.base_product_id, p.price, COALESCE(c.name, ''), p.photo_main, p.vendor_code
		FROM products p
		JOIN base_products bp ON bp.id = p.base_product_id
		LEFT JOIN currencies c ON c.id = p.currency_id
		WHERE p.is_active = true AND bp.is_active = true AND bp.store_id = ANY($1)
		ORDER BY p.id
	`

	rows, err := r.getExecutor(ctx).Query(ctx, query, storeIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list variants: %w", err)
	}
	defer rows.Close()

	var variants []models.Variant
	for rows.Next() {
		var variant models.Variant
		err := rows.Scan(&variant.ID, &variant.BaseProductID, &variant.Price,
			&variant.Currency, &variant.PhotoMain, &variant.VendorCode)
		if err != nil {
			return nil, fmt.Errorf("failed to scan variant row: %w", err)
		}
		variants = append(variants, variant)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error while iterating variant rows: %w", err)
	}

	return variants, nil
}

// listAttributeValues возвращает значения атрибутов, сгруппированные по id варианта
func (r *CatalogStorage) listAttributeValues(ctx context.Context, storeIDs []int) (map[int][]models.AttributeValue, error) {
	query := `
		SELECT v.prod_id, v.attr_id, a.name, v.value
		FROM prod_attr_values v
		JOIN attributes a ON a.id = v.attr_id
		JOIN base_products bp ON bp.id = v.base_prod_id
		WHERE bp.is_active = true AND bp.store_id = ANY($1)
		ORDER BY v.prod_id, v.id
	`

	rows, err := r.getExecutor(ctx).Query(ctx, query, storeIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list attribute values: %w", err)
	}
	defer rows.Close()

	values := make(map[int][]models.AttributeValue)
	for rows.Next() {
		var (
			variantID int
			value     models.AttributeValue
			name      []byte
		)
		if err := rows.Scan(&variantID, &value.AttributeID, &name, &value.Value); err != nil {
			return nil, fmt.Errorf("failed to scan attribute value row: %w", err)
		}
		value.Name = models.ParseLocalizedText(name)
		values[variantID] = append(values[variantID], value)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error while iterating attribute value rows: %w", err)
	}

	return values, nil
}

// ListStocks возвращает суммарный остаток по складам для каждого варианта
func (r *CatalogStorage) ListStocks(ctx context.Context) (map[int]int, error) {
	query := `
		SELECT product_id, COALESCE(SUM(quantity), 0)
		FROM warehouse_stocks
		GROUP BY product_id
	`

	rows, err := r.getExecutor(ctx).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list stocks: %w", err)
	}
	defer rows.Close()

	stocks := make(map[int]int)
	for rows.Next() {
		var variantID, quantity int
		if err := rows.Scan(&variantID, &quantity); err != nil {
			return nil, fmt.Errorf("failed to scan stock row: %w", err)
		}
		stocks[variantID] = quantity
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error while iterating stock rows: %w", err)
	}

	return stocks, nil
}

// assembleCatalog раскладывает варианты по базовым продуктам с сохранением порядка.
// Варианты без базового продукта из списка отбрасываются.
func assembleCatalog(
	baseProducts []models.BaseProduct,
	variants []models.Variant,
	attributes map[int][]models.AttributeValue,
) []models.BaseProductWithVariants {
	catalog := make([]models.BaseProductWithVariants, len(baseProducts))
	index := make(map[int]int, len(baseProducts))
	for i, product := range baseProducts {
		catalog[i] = models.BaseProductWithVariants{BaseProduct: product}
		index[product.ID] = i
	}

	for _, variant := range variants {
		i, ok := index[variant.BaseProductID]
		if !ok {
			continue
		}
		variant.Attributes = attributes[variant.ID]
		catalog[i].Variants = append(catalog[i].Variants, variant)
	}

	return catalog
}
