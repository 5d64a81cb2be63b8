package yml

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"math"
	"strconv"
	"unicode/utf8"

	"github.com/athebyme/gomarket-platform/services/catalog-service/internal/domain/models"
)

// ContentType MIME-тип документа
const ContentType = "text/xml"

// MaxURLLength максимальная длина url и picture в символах
const MaxURLLength = 512

// ErrInvalidDocument документ нельзя сериализовать из-за некорректных данных
var ErrInvalidDocument = errors.New("invalid catalog document")

type ymlCatalog struct {
	XMLName xml.Name `xml:"yml_catalog"`
	Date    string   `xml:"date,attr"`
	Shop    ymlShop  `xml:"shop"`
}

type ymlShop struct {
	Categories ymlCategories `xml:"categories"`
	Offers     ymlOffers     `xml:"offers"`
}

type ymlCategories struct {
	Items []ymlCategory `xml:"category"`
}

type ymlCategory struct {
	ID       int    `xml:"id,attr"`
	ParentID *int   `xml:"parentId,attr,omitempty"`
	Title    string `xml:",chardata"`
}

type ymlOffers struct {
	Items []ymlOffer `xml:"offer"`
}

// ymlOffer порядок полей задает порядок дочерних элементов
type ymlOffer struct {
	ID          string     `xml:"id,attr"`
	Available   string     `xml:"available,attr"`
	Name        string     `xml:"name"`
	Model       *string    `xml:"model,omitempty"`
	Vendor      *string    `xml:"vendor,omitempty"`
	URL         string     `xml:"url,omitempty"`
	Price       string     `xml:"price"`
	OldPrice    string     `xml:"oldprice,omitempty"`
	CategoryID  int        `xml:"categoryId"`
	CurrencyID  string     `xml:"currencyId"`
	Picture     string     `xml:"picture,omitempty"`
	Description *string    `xml:"description,omitempty"`
	Params      []ymlParam `xml:"param"`
}

type ymlParam struct {
	Name  string `xml:"name,attr"`
	Value string `xml:",chardata"`
}

// Serializer превращает документ каталога в YML (XML-формат каталога маркетплейса)
type Serializer struct {
	indent bool
}

// NewSerializer создает сериализатор. indent включает форматирование с отступами.
func NewSerializer(indent bool) *Serializer {
	return &Serializer{indent: indent}
}

// Serialize проверяет документ и возвращает его XML-представление в UTF-8.
// Отсутствующие необязательные поля не выводятся вовсе.
func (s *Serializer) Serialize(doc *models.CatalogDocument) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: nil document", ErrInvalidDocument)
	}

	catalog := ymlCatalog{Date: doc.GeneratedAt}

	catalog.Shop.Categories.Items = make([]ymlCategory, 0, len(doc.Categories))
	for _, c := range doc.Categories {
		catalog.Shop.Categories.Items = append(catalog.Shop.Categories.Items, ymlCategory{
			ID:       c.ID,
			ParentID: c.ParentID,
			Title:    c.Title,
		})
	}

	catalog.Shop.Offers.Items = make([]ymlOffer, 0, len(doc.Offers))
	for i := range doc.Offers {
		offer, err := toOffer(&doc.Offers[i])
		if err != nil {
			return nil, err
		}
		catalog.Shop.Offers.Items = append(catalog.Shop.Offers.Items, offer)
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)

	enc := xml.NewEncoder(&buf)
	if s.indent {
		enc.Indent("", "  ")
	}
	if err := enc.Encode(catalog); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	return buf.Bytes(), nil
}

func toOffer(entry *models.CatalogEntry) (ymlOffer, error) {
	if entry.OfferID == "" {
		return ymlOffer{}, fmt.Errorf("%w: offer without id", ErrInvalidDocument)
	}
	if !validPrice(entry.Price) {
		return ymlOffer{}, fmt.Errorf("%w: offer %s: invalid price %v", ErrInvalidDocument, entry.OfferID, entry.Price)
	}
	if utf8.RuneCountInString(entry.URL) > MaxURLLength {
		return ymlOffer{}, fmt.Errorf("%w: offer %s: url longer than %d characters", ErrInvalidDocument, entry.OfferID, MaxURLLength)
	}
	if utf8.RuneCountInString(entry.PictureURL) > MaxURLLength {
		return ymlOffer{}, fmt.Errorf("%w: offer %s: picture longer than %d characters", ErrInvalidDocument, entry.OfferID, MaxURLLength)
	}

	offer := ymlOffer{
		ID:          entry.OfferID,
		Available:   "true",
		Name:        entry.Name,
		Model:       entry.Model,
		Vendor:      entry.Vendor,
		URL:         entry.URL,
		Price:       formatPrice(entry.Price),
		CategoryID:  entry.CategoryID,
		CurrencyID:  entry.CurrencyCode,
		Picture:     entry.PictureURL,
		Description: entry.Description,
	}

	if entry.Available != nil {
		offer.Available = strconv.FormatBool(*entry.Available)
	}

	if entry.OldPrice != nil {
		if !validPrice(*entry.OldPrice) {
			return ymlOffer{}, fmt.Errorf("%w: offer %s: invalid old price %v", ErrInvalidDocument, entry.OfferID, *entry.OldPrice)
		}
		offer.OldPrice = formatPrice(*entry.OldPrice)
	}

	if len(entry.Params) > 0 {
		offer.Params = make([]ymlParam, 0, len(entry.Params))
		for _, p := range entry.Params {
			offer.Params = append(offer.Params, ymlParam{Name: p.Name, Value: p.Value})
		}
	}

	return offer, nil
}

func validPrice(price float64) bool {
	return !math.IsNaN(price) && !math.IsInf(price, 0) && price >= 0
}

// formatPrice десятичная запись без экспоненты и лишних нулей: 19.99, 50
func formatPrice(price float64) string {
	return strconv.FormatFloat(price, 'f', -1, 64)
}
