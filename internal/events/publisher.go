package events

import (
	"context"
	"encoding/json"
	"time"

	"nextmove-cargo/internal/logging"

	skafka "github.com/segmentio/kafka-go"
)

// Event types published by the marketplace workflows
const (
	TypeOfferAccepted        = "offer.accepted"
	TypeShipmentStatusChange = "shipment.status_changed"
	TypePODReviewed          = "pod.reviewed"
	TypePaymentSettled       = "payment.settled"
)

// Event is the envelope written to the topic
type Event struct {
	Type       string      `json:"type"`
	EntityID   string      `json:"entity_id"`
	OccurredAt time.Time   `json:"occurred_at"`
	Payload    interface{} `json:"payload"`
}

// Writer defines the subset of segmentio kafka.Writer we need. This makes the producer testable.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...skafka.Message) error
	Close() error
}

// Publisher is the interface services publish domain events through.
type Publisher interface {
	Publish(ctx context.Context, eventType, entityID string, payload interface{}) error
	Close() error
}

// KafkaPublisher writes events keyed by entity id so one entity's events stay ordered.
type KafkaPublisher struct {
	writer Writer
	now    func() time.Time
}

func NewKafkaPublisher(brokerURL, topic string) *KafkaPublisher {
	w := &skafka.Writer{
		Addr:                   skafka.TCP(brokerURL),
		Topic:                  topic,
		Balancer:               &skafka.Hash{},
		AllowAutoTopicCreation: true,
	}
	return NewKafkaPublisherWithWriter(w)
}

// NewKafkaPublisherWithWriter allows injecting a test writer.
func NewKafkaPublisherWithWriter(w Writer) *KafkaPublisher {
	return &KafkaPublisher{writer: w, now: time.Now}
}

func (p *KafkaPublisher) Publish(ctx context.Context, eventType, entityID string, payload interface{}) error {
	b, err := json.Marshal(Event{
		Type:       eventType,
		EntityID:   entityID,
		OccurredAt: p.now().UTC(),
		Payload:    payload,
	})
	if err != nil {
		return err
	}
	msg := skafka.Message{
		Key:     []byte(entityID),
		Value:   b,
		Headers: []skafka.Header{{Key: "type", Value: []byte(eventType)}},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		logging.Error("kafka write failed", map[string]interface{}{"type": eventType, "entity_id": entityID, "error": err})
		return err
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher drops events; used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, eventType, entityID string, payload interface{}) error {
	return nil
}

func (NopPublisher) Close() error { return nil }
