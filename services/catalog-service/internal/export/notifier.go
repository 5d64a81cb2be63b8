package export

import (
	"context"
	"fmt"

	"github.com/athebyme/gomarket-platform/pkg/interfaces"
	"github.com/athebyme/gomarket-platform/services/catalog-service/internal/adapters/messaging"
	"github.com/athebyme/gomarket-platform/services/catalog-service/internal/domain/models"
)

// Notifier сообщает внешним системам о результате запуска
type Notifier interface {
	Notify(ctx context.Context, report models.ExportReport) error
}

// NopNotifier ничего не отправляет
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, models.ExportReport) error { return nil }

// EventNotifier публикует события выгрузки в шину сообщений.
// Ключ сообщения имя файла, чтобы события одного каталога попадали в одну партицию.
type EventNotifier struct {
	messaging interfaces.MessagingPort
	topic     string
}

// NewEventNotifier создает новый экземпляр EventNotifier
func NewEventNotifier(messaging interfaces.MessagingPort, topic string) *EventNotifier {
	return &EventNotifier{messaging: messaging, topic: topic}
}

func (n *EventNotifier) Notify(ctx context.Context, report models.ExportReport) error {
	data, err := EventFromReport(report).Marshal()
	if err != nil {
		return fmt.Errorf("failed to marshal export event: %w", err)
	}
	return n.messaging.PublishWithKey(ctx, n.topic, report.FileName, data)
}

// EventFromReport строит событие по отчету о запуске
func EventFromReport(report models.ExportReport) messaging.ExportEvent {
	eventType := messaging.CatalogExportedEvent
	if report.Status != models.ExportSucceeded {
		eventType = messaging.CatalogExportFailedEvent
	}

	return messaging.ExportEvent{
		EventType:  eventType,
		RunID:      report.RunID,
		FileName:   report.FileName,
		URL:        report.URL,
		Categories: report.Categories,
		Offers:     report.Offers,
		Bytes:      report.Bytes,
		ErrorKind:  string(report.ErrorKind),
		Error:      report.Error,
		OccurredAt: report.FinishedAt,
	}
}
