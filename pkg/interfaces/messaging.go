package interfaces

import (
	"context"
)

// MessagingPort определяет интерфейс отправки событий во внешнюю шину
type MessagingPort interface {
	// PublishWithKey публикует сообщение с ключом партиционирования
	PublishWithKey(ctx context.Context, topic string, key string, message []byte) error

	// Close дожидается доставки буферизованных сообщений и закрывает соединение
	Close() error
}
