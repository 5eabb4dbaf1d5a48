package kafka

import (
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/acdshop/internal/domain"
)

// EventType определяет тип события
type EventType string

const (
	// EventTypeShippingAddressChanged — заказу назначен новый адрес доставки.
	EventTypeShippingAddressChanged EventType = "order.shipping_address_changed"
)

// TopicOrderEvents — topic по умолчанию для событий заказов.
const TopicOrderEvents = "acdshop.order.events"

// HeaderEventType дублирует тип события в заголовке сообщения.
const HeaderEventType = "x-event-type"

// ShippingAddressChangedEvent — JSON-конверт события смены адреса доставки.
type ShippingAddressChangedEvent struct {
	EventID           string    `json:"event_id"`
	EventType         EventType `json:"event_type"`
	OrderID           int64     `json:"order_id"`
	CustomerID        int64     `json:"customer_id"`
	PreviousAddressID *int64    `json:"previous_address_id,omitempty"`
	AddressID         int64     `json:"address_id"`
	OccurredAt        time.Time `json:"occurred_at"`
}

// NewShippingAddressChangedEvent строит конверт из доменного события.
func NewShippingAddressChangedEvent(event domain.ShippingAddressChanged) *ShippingAddressChangedEvent {
	occurredAt := event.ChangedAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}
	return &ShippingAddressChangedEvent{
		EventID:           uuid.NewString(),
		EventType:         EventTypeShippingAddressChanged,
		OrderID:           event.OrderID,
		CustomerID:        event.CustomerID,
		PreviousAddressID: event.PreviousAddressID,
		AddressID:         event.AddressID,
		OccurredAt:        occurredAt,
	}
}

// Key — ключ партиционирования: все события заказа попадают в одну партицию.
func (e *ShippingAddressChangedEvent) Key() string {
	return strconv.FormatInt(e.OrderID, 10)
}
