package kafka

import (
	"context"
	"fmt"

	"github.com/vladislavdragonenkov/acdshop/internal/domain"
)

// ShippingEventPublisher публикует события смены адреса доставки в Kafka topic.
type ShippingEventPublisher struct {
	producer *Producer
	topic    string
}

// NewShippingEventPublisher создаёт Kafka-реализацию domain.EventPublisher.
func NewShippingEventPublisher(producer *Producer, topic string) *ShippingEventPublisher {
	if topic == "" {
		topic = TopicOrderEvents
	}
	return &ShippingEventPublisher{
		producer: producer,
		topic:    topic,
	}
}

func (p *ShippingEventPublisher) PublishShippingAddressChanged(ctx context.Context, event domain.ShippingAddressChanged) error {
	if p == nil || p.producer == nil {
		return fmt.Errorf("kafka shipping publisher is not initialized")
	}

	envelope := NewShippingAddressChangedEvent(event)
	return p.producer.PublishEvent(ctx, p.topic, envelope.Key(), envelope.EventType, envelope)
}

var _ domain.EventPublisher = (*ShippingEventPublisher)(nil)
