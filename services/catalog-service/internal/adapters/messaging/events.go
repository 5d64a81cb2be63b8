package messaging

import (
	"encoding/json"
	"time"
)

// KafkaEvent тип события
type KafkaEvent = string

const (
	CatalogExportedEvent     KafkaEvent = "catalog_exported"
	CatalogExportFailedEvent KafkaEvent = "catalog_export_failed"
)

// DefaultExportTopic тема событий выгрузки каталога по умолчанию
const DefaultExportTopic = "catalog-export-events"

// ExportEvent событие о завершении запуска выгрузки
type ExportEvent struct {
	EventType  KafkaEvent `json:"event_type"`
	RunID      string     `json:"run_id"`
	FileName   string     `json:"file_name"`
	URL        string     `json:"url,omitempty"`
	Categories int        `json:"categories"`
	Offers     int        `json:"offers"`
	Bytes      int        `json:"bytes"`
	ErrorKind  string     `json:"error_kind,omitempty"`
	Error      string     `json:"error,omitempty"`
	OccurredAt time.Time  `json:"occurred_at"`
}

// Marshal сериализует событие в JSON
func (e ExportEvent) Marshal() ([]byte, error) {
	return json.Marshal(e)
}
