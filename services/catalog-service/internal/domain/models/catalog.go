package models

import (
	"encoding/json"
)

// Language код языка перевода
type Language string

const (
	LanguageEn Language = "en"
	LanguageRu Language = "ru"
)

// ModerationStatus статус модерации магазина или базового продукта
type ModerationStatus string

const (
	StatusDraft      ModerationStatus = "draft"
	StatusModeration ModerationStatus = "moderation"
	StatusDecline    ModerationStatus = "decline"
	StatusBlocked    ModerationStatus = "blocked"
	StatusPublished  ModerationStatus = "published"
)

// Translation текст на одном языке
type Translation struct {
	Lang Language `json:"lang"`
	Text string   `json:"text"`
}

// LocalizedText набор переводов одного поля.
// Учитывается только первый перевод для каждого языка.
type LocalizedText []Translation

// ParseLocalizedText разбирает JSON-массив переводов.
// Некорректный JSON дает пустой набор: отсутствие перевода не является ошибкой.
func ParseLocalizedText(raw []byte) LocalizedText {
	if len(raw) == 0 {
		return nil
	}
	var text LocalizedText
	if err := json.Unmarshal(raw, &text); err != nil {
		return nil
	}
	return text
}

// CategoryRecord категория в том виде, в котором она хранится в БД
type CategoryRecord struct {
	ID       int           `json:"id"`
	ParentID *int          `json:"parent_id,omitempty"`
	Name     LocalizedText `json:"name"`
}

// Store магазин
type Store struct {
	ID     int              `json:"id"`
	Name   LocalizedText    `json:"name"`
	Status ModerationStatus `json:"status"`
}

// BaseProduct базовый продукт, объединяющий варианты
type BaseProduct struct {
	ID               int              `json:"id"`
	StoreID          int              `json:"store_id"`
	Name             LocalizedText    `json:"name"`
	ShortDescription LocalizedText    `json:"short_description"`
	LongDescription  LocalizedText    `json:"long_description,omitempty"`
	CategoryID       int              `json:"category_id"`
	Currency         string           `json:"currency"`
	Status           ModerationStatus `json:"status"`
}

// AttributeValue значение атрибута варианта
type AttributeValue struct {
	AttributeID int           `json:"attribute_id"`
	Name        LocalizedText `json:"name"`
	Value       string        `json:"value"`
}

// Variant вариант (конкретный товар) базового продукта
type Variant struct {
	ID            int              `json:"id"`
	BaseProductID int              `json:"base_product_id"`
	Price         float64          `json:"price"`
	Currency      string           `json:"currency"`
	PhotoMain     *string          `json:"photo_main,omitempty"`
	VendorCode    string           `json:"vendor_code"`
	Attributes    []AttributeValue `json:"attributes"`
}

// BaseProductWithVariants базовый продукт вместе с вариантами и их атрибутами
type BaseProductWithVariants struct {
	BaseProduct BaseProduct `json:"base_product"`
	Variants    []Variant   `json:"variants"`
}

// CatalogSnapshot согласованный срез каталога, прочитанный в одной транзакции
type CatalogSnapshot struct {
	Categories   []CategoryRecord          `json:"categories"`
	Stores       []Store                   `json:"stores"`
	BaseProducts []BaseProductWithVariants `json:"base_products"`
}
