package yml

import (
	"encoding/xml"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/athebyme/gomarket-platform/services/catalog-service/internal/domain/models"
)

// parsed структура для разбора результата в тестах
type parsed struct {
	XMLName xml.Name `xml:"yml_catalog"`
	Date    string   `xml:"date,attr"`
	Shop    struct {
		Categories []struct {
			ID       string `xml:"id,attr"`
			ParentID string `xml:"parentId,attr"`
			Title    string `xml:",chardata"`
		} `xml:"categories>category"`
		Offers []struct {
			ID         string `xml:"id,attr"`
			Available  string `xml:"available,attr"`
			Name       string `xml:"name"`
			Price      string `xml:"price"`
			CurrencyID string `xml:"currencyId"`
			CategoryID string `xml:"categoryId"`
			Params     []struct {
				Name  string `xml:"name,attr"`
				Value string `xml:",chardata"`
			} `xml:"param"`
		} `xml:"offers>offer"`
	} `xml:"shop"`
}

func boolPtr(b bool) *bool { return &b }

func strPtr(s string) *string { return &s }

func intPtr(v int) *int { return &v }

func minimalDocument() *models.CatalogDocument {
	return &models.CatalogDocument{
		GeneratedAt: "2024-03-05 07:09",
		Categories:  []models.Category{{ID: 1, Title: "Shoes"}},
		Offers: []models.CatalogEntry{{
			OfferID:      "42",
			Name:         "Sneaker",
			Price:        19.99,
			CurrencyCode: "USD",
			CategoryID:   1,
			Available:    boolPtr(true),
		}},
	}
}

func TestSerializer_MinimalDocumentShape(t *testing.T) {
	out, err := NewSerializer(false).Serialize(minimalDocument())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	text := string(out)
	if !strings.HasPrefix(text, `<?xml version="1.0" encoding="UTF-8"?>`) {
		t.Errorf("Expected UTF-8 XML header, got %q", text[:40])
	}
	for _, absent := range []string{"<url", "<oldprice", "<vendor", "<model", "<picture", "<description", "<param", "parentId"} {
		if strings.Contains(text, absent) {
			t.Errorf("Expected %s to be omitted, got %s", absent, text)
		}
	}

	var doc parsed
	if err := xml.Unmarshal(out, &doc); err != nil {
		t.Fatalf("Expected valid XML, got %v", err)
	}
	if doc.Date != "2024-03-05 07:09" {
		t.Errorf("Expected date attribute, got %q", doc.Date)
	}
	if len(doc.Shop.Categories) != 1 {
		t.Fatalf("Expected 1 category, got %d", len(doc.Shop.Categories))
	}
	if c := doc.Shop.Categories[0]; c.ID != "1" || c.Title != "Shoes" {
		t.Errorf("Expected category id=1 'Shoes', got %+v", c)
	}
	if len(doc.Shop.Offers) != 1 {
		t.Fatalf("Expected 1 offer, got %d", len(doc.Shop.Offers))
	}
	o := doc.Shop.Offers[0]
	if o.ID != "42" || o.Available != "true" {
		t.Errorf("Expected offer id=42 available=true, got id=%s available=%s", o.ID, o.Available)
	}
	if o.Name != "Sneaker" || o.Price != "19.99" || o.CurrencyID != "USD" || o.CategoryID != "1" {
		t.Errorf("Unexpected offer children: %+v", o)
	}
}

func TestSerializer_ChildOrder(t *testing.T) {
	doc := minimalDocument()
	doc.Offers[0].Model = strPtr("SN-1")
	doc.Offers[0].Vendor = strPtr("Store")
	doc.Offers[0].URL = "https://shop/store/1/products/2/variant/42"
	doc.Offers[0].OldPrice = func() *float64 { v := 25.0; return &v }()
	doc.Offers[0].PictureURL = "img/a-medium.png"
	doc.Offers[0].Description = strPtr("Nice")
	doc.Offers[0].Params = []models.Param{{Name: "Size", Value: "42"}}

	out, err := NewSerializer(false).Serialize(doc)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	text := string(out)
	order := []string{"<name>", "<model>", "<vendor>", "<url>", "<price>", "<oldprice>25</oldprice>",
		"<categoryId>", "<currencyId>", "<picture>", "<description>", `<param name="Size">42</param>`}
	last := -1
	for _, tag := range order {
		idx := strings.Index(text, tag)
		if idx < 0 {
			t.Fatalf("Expected %s in output, got %s", tag, text)
		}
		if idx < last {
			t.Errorf("Expected %s after previous element", tag)
		}
		last = idx
	}
}

func TestSerializer_AvailabilityAttribute(t *testing.T) {
	tests := []struct {
		name      string
		available *bool
		want      string
	}{
		{"unknown defaults to true", nil, `available="true"`},
		{"true", boolPtr(true), `available="true"`},
		{"false", boolPtr(false), `available="false"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := minimalDocument()
			doc.Offers[0].Available = tt.available

			out, err := NewSerializer(true).Serialize(doc)
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if !strings.Contains(string(out), tt.want) {
				t.Errorf("Expected %s in output, got %s", tt.want, out)
			}
		})
	}
}

func TestSerializer_ParentAndEscaping(t *testing.T) {
	doc := minimalDocument()
	doc.Categories = append(doc.Categories, models.Category{ID: 2, ParentID: intPtr(1), Title: "Boots & <Shoes>"})

	out, err := NewSerializer(false).Serialize(doc)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	var parsedDoc parsed
	if err := xml.Unmarshal(out, &parsedDoc); err != nil {
		t.Fatalf("Expected valid XML, got %v", err)
	}
	child := parsedDoc.Shop.Categories[1]
	if child.ParentID != "1" {
		t.Errorf("Expected parentId=1, got %q", child.ParentID)
	}
	if child.Title != "Boots & <Shoes>" {
		t.Errorf("Expected escaped title to round-trip, got %q", child.Title)
	}
}

func TestSerializer_EmptyDocumentKeepsSections(t *testing.T) {
	out, err := NewSerializer(false).Serialize(&models.CatalogDocument{GeneratedAt: "2024-01-01 00:00"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	text := string(out)
	if !strings.Contains(text, "<categories></categories>") || !strings.Contains(text, "<offers></offers>") {
		t.Errorf("Expected empty categories and offers sections, got %s", text)
	}
}

func TestSerializer_InvalidData(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(e *models.CatalogEntry)
	}{
		{"empty id", func(e *models.CatalogEntry) { e.OfferID = "" }},
		{"NaN price", func(e *models.CatalogEntry) { e.Price = math.NaN() }},
		{"negative price", func(e *models.CatalogEntry) { e.Price = -1 }},
		{"long url", func(e *models.CatalogEntry) { e.URL = "https://" + strings.Repeat("a", MaxURLLength) }},
		{"long picture", func(e *models.CatalogEntry) { e.PictureURL = strings.Repeat("p", MaxURLLength+1) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := minimalDocument()
			tt.mutate(&doc.Offers[0])

			_, err := NewSerializer(false).Serialize(doc)
			if !errors.Is(err, ErrInvalidDocument) {
				t.Errorf("Expected ErrInvalidDocument, got %v", err)
			}
		})
	}

	if _, err := NewSerializer(false).Serialize(nil); !errors.Is(err, ErrInvalidDocument) {
		t.Errorf("Expected ErrInvalidDocument for nil document, got %v", err)
	}
}
