package app

import (
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/acdshop/internal/domain"
	"github.com/vladislavdragonenkov/acdshop/internal/messaging/kafka"
)

// initKafkaProducer инициализирует Kafka producer если brokers не пустой.
// Возвращает nil, nil если brokers пустой.
func initKafkaProducer(brokers string, logger *log.Entry) (*kafka.Producer, error) {
	list := brokerList(brokers)
	if len(list) == 0 {
		return nil, nil
	}

	producer, err := kafka.NewProducer(list)
	if err != nil {
		logger.WithError(err).Warn("failed to create kafka producer, continuing without kafka")
		return nil, err
	}

	logger.WithField("brokers", list).Info("kafka producer initialized")
	return producer, nil
}

// newEventPublisher выбирает публикатор событий: Kafka с повторами при наличии
// producer, иначе no-op.
func newEventPublisher(producer *kafka.Producer, topic string, logger *log.Entry) domain.EventPublisher {
	if producer == nil {
		return domain.NoopPublisher{}
	}
	return kafka.NewRetryingPublisher(
		kafka.NewShippingEventPublisher(producer, topic),
		kafka.DefaultRetryConfig(),
		kafka.NewCircuitBreaker(5, 30*time.Second, logger.WithField("component", "circuit-breaker")),
		logger.WithField("component", "retrying-publisher"),
	)
}

// closeKafka закрывает Kafka producer если он не nil.
func closeKafka(producer *kafka.Producer, logger *log.Entry) {
	if producer == nil {
		return
	}

	if err := producer.Close(); err != nil {
		logger.WithError(err).Warn("failed to close kafka producer")
	} else {
		logger.Info("kafka producer closed")
	}
}
