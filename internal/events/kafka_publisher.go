package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/ignatzorin/talent-sift/internal/audit"
)

// MessageWriter - часть kafka.Writer, которой пользуется издатель.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher публикует события журнала в Kafka.
type KafkaPublisher struct {
	writer       MessageWriter
	topicByEvent map[string]string
}

func NewKafkaPublisher(brokers []string, topicByEvent map[string]string) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("events: kafka publisher requires at least one broker")
	}
	return NewKafkaPublisherWithWriter(&kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		RequiredAcks: kafka.RequireAll,
		Balancer:     &kafka.Hash{},
	}, topicByEvent), nil
}

// NewKafkaPublisherWithWriter нужен тестам.
func NewKafkaPublisherWithWriter(w MessageWriter, topicByEvent map[string]string) *KafkaPublisher {
	return &KafkaPublisher{writer: w, topicByEvent: topicByEvent}
}

func (p *KafkaPublisher) Name() string { return "kafka" }

// Record реализует audit.Sink. Ключ партиции - номер кейса, иначе сессия.
func (p *KafkaPublisher) Record(ctx context.Context, e audit.Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("events: marshal %s: %w", e.Type, err)
	}
	key := e.CaseID
	if key == "" {
		key = e.SessionID
	}
	return p.Publish(ctx, e.Type, payload, key)
}

func (p *KafkaPublisher) Publish(ctx context.Context, eventType string, payload []byte, partitionKey string) error {
	topic := eventType
	if mapped, ok := p.topicByEvent[eventType]; ok && mapped != "" {
		topic = mapped
	}
	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(partitionKey),
		Value: payload,
		Time:  time.Now().UTC(),
	}); err != nil {
		return fmt.Errorf("events: publish %s: %w", topic, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// Topics строит таблицу событие -> топик.
func Topics(shortlistTopic, runTopic string) map[string]string {
	return map[string]string{
		audit.EventCandidateShortlisted:   shortlistTopic,
		audit.EventCandidateShortlistFail: shortlistTopic,
		audit.EventRunCompleted:           runTopic,
	}
}
