package postgres

import (
	"testing"

	"github.com/athebyme/gomarket-platform/services/catalog-service/internal/domain/models"
)

func TestAssembleCatalog(t *testing.T) {
	baseProducts := []models.BaseProduct{{ID: 2}, {ID: 1}}
	variants := []models.Variant{
		{ID: 10, BaseProductID: 1},
		{ID: 20, BaseProductID: 2},
		{ID: 11, BaseProductID: 1},
		{ID: 99, BaseProductID: 42},
	}
	attributes := map[int][]models.AttributeValue{
		11: {{AttributeID: 5, Value: "XL"}},
	}

	catalog := assembleCatalog(baseProducts, variants, attributes)

	if len(catalog) != 2 {
		t.Fatalf("Expected 2 base products, got %d", len(catalog))
	}
	if catalog[0].BaseProduct.ID != 2 || catalog[1].BaseProduct.ID != 1 {
		t.Errorf("Expected base product order to be kept, got %d, %d", catalog[0].BaseProduct.ID, catalog[1].BaseProduct.ID)
	}
	if len(catalog[1].Variants) != 2 || catalog[1].Variants[0].ID != 10 || catalog[1].Variants[1].ID != 11 {
		t.Errorf("Expected variants [10 11] for base product 1, got %+v", catalog[1].Variants)
	}
	if attrs := catalog[1].Variants[1].Attributes; len(attrs) != 1 || attrs[0].Value != "XL" {
		t.Errorf("Expected attribute XL on variant 11, got %+v", attrs)
	}
	if catalog[1].Variants[0].Attributes != nil {
		t.Errorf("Expected no attributes on variant 10, got %+v", catalog[1].Variants[0].Attributes)
	}
	total := 0
	for _, item := range catalog {
		total += len(item.Variants)
	}
	if total != 3 {
		t.Errorf("Expected orphan variant to be dropped, got %d variants", total)
	}
}

func TestAssembleCatalog_Empty(t *testing.T) {
	if catalog := assembleCatalog(nil, nil, nil); len(catalog) != 0 {
		t.Errorf("Expected empty catalog, got %d", len(catalog))
	}
}
