package translation

import (
	"fmt"

	"github.com/athebyme/gomarket-platform/services/catalog-service/internal/domain/models"
)

// Field название поля, для которого подбирается перевод. Используется в тексте заглушки.
type Field string

const (
	FieldName          Field = "name"
	FieldDescription   Field = "description"
	FieldStoreName     Field = "store name"
	FieldCategoryTitle Field = "category title"
)

// Lookup возвращает текст на языке lang и true, если такой перевод есть.
// При нескольких переводах на один язык используется первый.
func Lookup(text models.LocalizedText, lang models.Language) (string, bool) {
	for _, item := range text {
		if item.Lang == lang {
			return item.Text, true
		}
	}
	return "", false
}

// Resolve возвращает текст на языке lang или заглушку "no <field> for language: <lang>".
// Никогда не завершается ошибкой.
func Resolve(text models.LocalizedText, lang models.Language, field Field) string {
	if value, ok := Lookup(text, lang); ok {
		return value
	}
	return Fallback(field, lang)
}

// Fallback формирует текст заглушки для отсутствующего перевода
func Fallback(field Field, lang models.Language) string {
	return fmt.Sprintf("no %s for language: %s", field, lang)
}
