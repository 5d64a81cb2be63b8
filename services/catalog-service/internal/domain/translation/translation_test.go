package translation

import (
	"testing"

	"github.com/athebyme/gomarket-platform/services/catalog-service/internal/domain/models"
)

func TestLookup_FirstMatchWins(t *testing.T) {
	text := models.LocalizedText{
		{Lang: models.LanguageRu, Text: "Кроссовки"},
		{Lang: models.LanguageEn, Text: "Sneaker"},
		{Lang: models.LanguageEn, Text: "Shoe"},
	}

	got, ok := Lookup(text, models.LanguageEn)
	if !ok {
		t.Fatal("Expected translation to be found")
	}
	if got != "Sneaker" {
		t.Errorf("Expected 'Sneaker', got %q", got)
	}
}

func TestLookup_MissingLanguage(t *testing.T) {
	text := models.LocalizedText{{Lang: models.LanguageRu, Text: "Кроссовки"}}

	got, ok := Lookup(text, models.LanguageEn)
	if ok {
		t.Errorf("Expected no translation, got %q", got)
	}
}

func TestResolve_Fallback(t *testing.T) {
	tests := []struct {
		name  string
		text  models.LocalizedText
		lang  models.Language
		field Field
		want  string
	}{
		{
			name:  "present",
			text:  models.LocalizedText{{Lang: models.LanguageEn, Text: "Shoes"}},
			lang:  models.LanguageEn,
			field: FieldCategoryTitle,
			want:  "Shoes",
		},
		{
			name:  "nil text",
			text:  nil,
			lang:  models.LanguageEn,
			field: FieldName,
			want:  "no name for language: en",
		},
		{
			name:  "empty list",
			text:  models.LocalizedText{},
			lang:  models.LanguageRu,
			field: FieldDescription,
			want:  "no description for language: ru",
		},
		{
			name:  "other language only",
			text:  models.LocalizedText{{Lang: models.LanguageRu, Text: "Магазин"}},
			lang:  models.LanguageEn,
			field: FieldStoreName,
			want:  "no store name for language: en",
		},
		{
			name:  "unknown language code",
			text:  models.LocalizedText{{Lang: models.LanguageEn, Text: "Shoes"}},
			lang:  models.Language("xx"),
			field: FieldCategoryTitle,
			want:  "no category title for language: xx",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.text, tt.lang, tt.field); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestParseLocalizedText_MalformedIsEmpty(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int
	}{
		{"valid", `[{"lang":"en","text":"Shoes"},{"lang":"ru","text":"Обувь"}]`, 2},
		{"object instead of array", `{"lang":"en"}`, 0},
		{"garbage", `not json`, 0},
		{"empty", ``, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := models.ParseLocalizedText([]byte(tt.raw))
			if len(got) != tt.want {
				t.Errorf("Expected %d translations, got %d", tt.want, len(got))
			}
			// Разбор никогда не ломает подбор перевода
			_ = Resolve(got, models.LanguageEn, FieldName)
		})
	}
}
