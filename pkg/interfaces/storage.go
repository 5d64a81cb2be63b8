package interfaces

import (
	"context"
)

// ObjectStorePort определяет интерфейс публикации файлов во внешнее объектное хранилище
type ObjectStorePort interface {
	// Upload публикует данные под именем name и возвращает публичный адрес файла
	Upload(ctx context.Context, name string, data []byte) (string, error)
}

// UploadErrorKind вид ошибки публикации в объектное хранилище
type UploadErrorKind string

const (
	// UploadErrorAccess ошибка учетных данных, прав доступа или валидации запроса
	UploadErrorAccess UploadErrorKind = "access"
	// UploadErrorNetwork ошибка транспорта или недоступность хранилища
	UploadErrorNetwork UploadErrorKind = "network"
	// UploadErrorUnknown любая другая ошибка
	UploadErrorUnknown UploadErrorKind = "unknown"
)

// UploadError ошибка публикации с классификацией по виду
type UploadError struct {
	Kind UploadErrorKind
	Err  error
}

func (e *UploadError) Error() string {
	switch e.Kind {
	case UploadErrorAccess:
		return "Access Error: " + e.Err.Error()
	case UploadErrorNetwork:
		return "Network Error: " + e.Err.Error()
	default:
		return "Unknown error: " + e.Err.Error()
	}
}

func (e *UploadError) Unwrap() error {
	return e.Err
}
