package export

import (
	"errors"

	"github.com/athebyme/gomarket-platform/pkg/interfaces"
	"github.com/athebyme/gomarket-platform/services/catalog-service/internal/domain/models"
)

var (
	// ErrDataAccess ошибка чтения каталога из хранилища
	ErrDataAccess = errors.New("catalog data access failed")
	// ErrSerialization данные каталога не удалось превратить в документ
	ErrSerialization = errors.New("catalog serialization failed")
	// ErrUpload документ не удалось опубликовать
	ErrUpload = errors.New("catalog upload failed")
	// ErrNoReport выгрузка еще не запускалась
	ErrNoReport = errors.New("no export report yet")
)

// KindOf возвращает класс ошибки, прервавшей запуск
func KindOf(err error) models.ExportErrorKind {
	switch {
	case err == nil:
		return models.ErrorKindNone
	case errors.Is(err, ErrDataAccess):
		return models.ErrorKindDataAccess
	case errors.Is(err, ErrSerialization):
		return models.ErrorKindSerialization
	case errors.Is(err, ErrUpload):
		var uploadErr *interfaces.UploadError
		if !errors.As(err, &uploadErr) {
			return models.ErrorKindUploadUnknown
		}
		switch uploadErr.Kind {
		case interfaces.UploadErrorAccess:
			return models.ErrorKindUploadAccess
		case interfaces.UploadErrorNetwork:
			return models.ErrorKindUploadNetwork
		default:
			return models.ErrorKindUploadUnknown
		}
	default:
		return models.ErrorKindUnknown
	}
}
