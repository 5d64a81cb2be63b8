package messaging

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/athebyme/gomarket-platform/pkg/interfaces"
	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/google/uuid"
)

// flushTimeout время ожидания доставки буферизованных сообщений при закрытии
const flushTimeout = 15 * time.Second

// KafkaMessaging реализация MessagingPort поверх Kafka producer
type KafkaMessaging struct {
	producer *kafka.Producer
	logger   interfaces.LoggerPort
	done     chan struct{}
}

// NewKafkaMessaging создает новый экземпляр KafkaMessaging
func NewKafkaMessaging(brokers []string, clientID string, logger interfaces.LoggerPort) (*KafkaMessaging, error) {
	producer, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers":            strings.Join(brokers, ","),
		"client.id":                    clientID,
		"acks":                         "all",
		"retries":                      5,
		"retry.backoff.ms":             500,
		"compression.type":             "snappy",
		"linger.ms":                    10,
		"message.max.bytes":            1000000,
		"queue.buffering.max.messages": 10000,
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка создания Kafka producer: %w", err)
	}

	k := &KafkaMessaging{
		producer: producer,
		logger:   logger,
		done:     make(chan struct{}),
	}
	go k.handleDeliveryReports()

	return k, nil
}

// handleDeliveryReports логирует сообщения, которые не удалось доставить
func (k *KafkaMessaging) handleDeliveryReports() {
	defer close(k.done)

	for e := range k.producer.Events() {
		switch ev := e.(type) {
		case *kafka.Message:
			if ev.TopicPartition.Error != nil {
				topic := ""
				if ev.TopicPartition.Topic != nil {
					topic = *ev.TopicPartition.Topic
				}
				k.logger.Error("Сообщение не доставлено в Kafka",
					interfaces.LogField{Key: "topic", Value: topic},
					interfaces.LogField{Key: "error", Value: ev.TopicPartition.Error.Error()},
				)
			}
		case kafka.Error:
			k.logger.Warn("Ошибка Kafka producer",
				interfaces.LogField{Key: "code", Value: ev.Code().String()},
				interfaces.LogField{Key: "error", Value: ev.Error()},
			)
		}
	}
}

// messageToKafkaMessage преобразует данные в kafka.Message со служебными заголовками
func messageToKafkaMessage(topic string, message []byte, key string, headers map[string]string, now time.Time) *kafka.Message {
	kafkaHeaders := make([]kafka.Header, 0, len(headers)+2)
	for k, v := range headers {
		kafkaHeaders = append(kafkaHeaders, kafka.Header{Key: k, Value: []byte(v)})
	}

	kafkaHeaders = append(kafkaHeaders,
		kafka.Header{Key: "message_id", Value: []byte(uuid.New().String())},
		kafka.Header{Key: "timestamp", Value: []byte(now.UTC().Format(time.RFC3339Nano))},
	)

	var keyBytes []byte
	if key != "" {
		keyBytes = []byte(key)
	}

	return &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Value:          message,
		Key:            keyBytes,
		Headers:        kafkaHeaders,
		Timestamp:      now,
	}
}

// PublishWithKey публикует сообщение с указанным ключом.
// Доставка асинхронная: ошибки доставки попадают в лог.
func (k *KafkaMessaging) PublishWithKey(ctx context.Context, topic string, key string, message []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := messageToKafkaMessage(topic, message, key, nil, time.Now())
	if err := k.producer.Produce(msg, nil); err != nil {
		return fmt.Errorf("ошибка отправки сообщения в Kafka: %w", err)
	}
	return nil
}

// Close дожидается доставки буферизованных сообщений и закрывает producer
func (k *KafkaMessaging) Close() error {
	if remaining := k.producer.Flush(int(flushTimeout.Milliseconds())); remaining > 0 {
		k.logger.Warn("Не все сообщения доставлены в Kafka до закрытия",
			interfaces.LogField{Key: "remaining", Value: remaining})
	}
	k.producer.Close()
	<-k.done
	return nil
}
