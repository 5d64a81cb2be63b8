package services

import (
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/athebyme/gomarket-platform/services/catalog-service/internal/domain/models"
	"github.com/athebyme/gomarket-platform/services/catalog-service/internal/domain/translation"
)

// MaxDescriptionLength максимальная длина описания предложения в символах
const MaxDescriptionLength = 300

// pictureSuffix суффикс уменьшенной копии основной фотографии
const pictureSuffix = "-medium"

// buildEntry собирает одно предложение из тройки (базовый продукт, магазин, вариант).
// stocks == nil означает, что сигнала об остатках нет.
func buildEntry(
	product models.BaseProduct,
	store models.Store,
	variant models.Variant,
	stocks map[int]int,
	config CatalogConfig,
) models.CatalogEntry {
	lang := config.Language

	vendor := translation.Resolve(store.Name, lang, translation.FieldStoreName)
	description := resolveDescription(product, lang)

	currency := variant.Currency
	if currency == "" {
		currency = product.Currency
	}

	entry := models.CatalogEntry{
		OfferID:      strconv.Itoa(variant.ID),
		Name:         translation.Resolve(product.Name, lang, translation.FieldName),
		Vendor:       &vendor,
		Description:  &description,
		URL:          OfferURL(config.Cluster, store.ID, product.ID, variant.ID),
		Price:        variant.Price,
		CurrencyCode: currency,
		PictureURL:   PictureURL(variant.PhotoMain),
		CategoryID:   product.CategoryID,
		Params:       buildParams(variant.Attributes, lang),
	}

	if variant.VendorCode != "" {
		model := variant.VendorCode
		entry.Model = &model
	}

	available := IsAvailable(store, product, variant.ID, stocks)
	entry.Available = &available

	return entry
}

// IsAvailable возвращает true, если магазин и базовый продукт опубликованы
// и остаток варианта положителен. Без сигнала об остатках учитываются только статусы.
func IsAvailable(store models.Store, product models.BaseProduct, variantID int, stocks map[int]int) bool {
	if store.Status != models.StatusPublished || product.Status != models.StatusPublished {
		return false
	}
	if stocks == nil {
		return true
	}
	return stocks[variantID] > 0
}

// OfferURL строит ссылку на страницу варианта на витрине
func OfferURL(cluster string, storeID, baseProductID, variantID int) string {
	return fmt.Sprintf("https://%s/store/%d/products/%d/variant/%d", cluster, storeID, baseProductID, variantID)
}

// PictureURL строит ссылку на уменьшенную копию основной фотографии: a/b/x.png -> a/b/x-medium.png.
// Если фотографии нет или имя файла не делится ровно на имя и расширение, возвращает пустую строку.
func PictureURL(photo *string) string {
	if photo == nil || *photo == "" {
		return ""
	}

	dir, file := path.Split(*photo)
	parts := strings.Split(file, ".")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return ""
	}

	return dir + parts[0] + pictureSuffix + "." + parts[1]
}

// resolveDescription берет длинное описание, если оно есть на нужном языке, иначе короткое
func resolveDescription(product models.BaseProduct, lang models.Language) string {
	description, ok := translation.Lookup(product.LongDescription, lang)
	if !ok || description == "" {
		description = translation.Resolve(product.ShortDescription, lang, translation.FieldDescription)
	}
	return truncate(description, MaxDescriptionLength)
}

func buildParams(attributes []models.AttributeValue, lang models.Language) []models.Param {
	if len(attributes) == 0 {
		return nil
	}

	params := make([]models.Param, 0, len(attributes))
	for _, attr := range attributes {
		params = append(params, models.Param{
			Name:  translation.Resolve(attr.Name, lang, translation.FieldName),
			Value: attr.Value,
		})
	}
	return params
}

// truncate обрезает строку до limit символов (рун)
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
