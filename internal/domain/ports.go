package domain

import (
	"context"
	"time"
)

// ShippingAddressChanged — событие успешной смены адреса доставки.
type ShippingAddressChanged struct {
	OrderID           int64
	CustomerID        int64
	PreviousAddressID *int64
	AddressID         int64
	ChangedAt         time.Time
}

// EventPublisher публикует доменные события во внешний брокер.
type EventPublisher interface {
	PublishShippingAddressChanged(ctx context.Context, event ShippingAddressChanged) error
}

// NoopPublisher ничего не публикует; используется, когда брокер не настроен.
type NoopPublisher struct{}

// PublishShippingAddressChanged всегда завершается успешно.
func (NoopPublisher) PublishShippingAddressChanged(context.Context, ShippingAddressChanged) error {
	return nil
}

var _ EventPublisher = NoopPublisher{}
