package messaging

import (
	"encoding/json"
	"testing"
	"time"
)

func TestMessageToKafkaMessage(t *testing.T) {
	now := time.Date(2024, 3, 5, 7, 9, 0, 0, time.UTC)
	msg := messageToKafkaMessage(DefaultExportTopic, []byte(`{}`), "catalog_en.xml", map[string]string{"source": "worker"}, now)

	if *msg.TopicPartition.Topic != DefaultExportTopic {
		t.Errorf("Expected topic %q, got %q", DefaultExportTopic, *msg.TopicPartition.Topic)
	}
	if string(msg.Key) != "catalog_en.xml" {
		t.Errorf("Expected key 'catalog_en.xml', got %q", msg.Key)
	}

	headers := make(map[string]string)
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	if headers["source"] != "worker" {
		t.Errorf("Expected custom header to be kept, got %v", headers)
	}
	if headers["message_id"] == "" {
		t.Error("Expected message_id header")
	}
	if headers["timestamp"] != "2024-03-05T07:09:00Z" {
		t.Errorf("Expected RFC3339 timestamp header, got %q", headers["timestamp"])
	}
}

func TestMessageToKafkaMessage_EmptyKey(t *testing.T) {
	msg := messageToKafkaMessage("t", []byte("v"), "", nil, time.Now())
	if msg.Key != nil {
		t.Errorf("Expected nil key, got %q", msg.Key)
	}
}

func TestExportEvent_Marshal(t *testing.T) {
	event := ExportEvent{EventType: CatalogExportFailedEvent, RunID: "r1", ErrorKind: "upload_network"}

	data, err := event.Marshal()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Expected valid JSON, got %v", err)
	}
	if decoded["event_type"] != "catalog_export_failed" {
		t.Errorf("Expected event_type catalog_export_failed, got %v", decoded["event_type"])
	}
	if _, ok := decoded["url"]; ok {
		t.Error("Expected empty url to be omitted")
	}
}
