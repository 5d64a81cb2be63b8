package models

// CategoryNode узел дерева категорий
type CategoryNode struct {
	ID       int
	ParentID *int
	Title    string
	Children []*CategoryNode
}

// Category категория в плоском списке выгружаемого документа
type Category struct {
	ID       int
	ParentID *int
	Title    string
}

// Param характеристика предложения
type Param struct {
	Name  string
	Value string
}

// CatalogEntry предложение (offer) документа каталога, одно на вариант товара
type CatalogEntry struct {
	OfferID      string
	Name         string
	Model        *string
	Vendor       *string
	Description  *string
	URL          string
	Price        float64
	OldPrice     *float64
	CurrencyCode string
	PictureURL   string
	CategoryID   int
	Params       []Param
	// Available nil означает, что доступность неизвестна
	Available *bool
}

// CatalogDocument документ каталога. Строится на каждый запуск выгрузки и не сохраняется.
type CatalogDocument struct {
	// GeneratedAt время генерации в формате "YYYY-MM-DD HH:MM"
	GeneratedAt string
	Categories  []Category
	Offers      []CatalogEntry
}
