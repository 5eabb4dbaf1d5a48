package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Исходы операции смены адреса доставки.
const (
	ResultSuccess       = "success"
	ResultInvalidInput  = "invalid_input"
	ResultCrossCustomer = "cross_customer"
	ResultNotFound      = "not_found"
	ResultUpdateFailed  = "update_failed"
	ResultError         = "error"
)

// ShippingMetrics содержит метрики операций с заказами и адресами.
// Нулевой указатель допустим: все методы становятся no-op.
type ShippingMetrics struct {
	// Счётчики по исходам
	reassignments *prometheus.CounterVec
	events        *prometheus.CounterVec

	addressesCreated  prometheus.Counter
	addressesRejected prometheus.Counter

	operationDuration *prometheus.HistogramVec
}

// NewShippingMetrics регистрирует метрики в prometheus.DefaultRegisterer.
func NewShippingMetrics() *ShippingMetrics {
	return NewShippingMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewShippingMetricsWithRegisterer регистрирует метрики в переданном реестре.
// Повторная регистрация возвращает уже существующие коллекторы.
func NewShippingMetricsWithRegisterer(registerer prometheus.Registerer) *ShippingMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &ShippingMetrics{
		reassignments: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "acdshop_shipping_address_reassignments_total",
			Help: "Total number of shipping address reassignments by result",
		}, []string{"result"}),
		events: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "acdshop_shipping_events_published_total",
			Help: "Total number of shipping address change events by publish result",
		}, []string{"result"}),
		addressesCreated: registerCounter(registerer, prometheus.CounterOpts{
			Name: "acdshop_addresses_created_total",
			Help: "Total number of addresses created for customers",
		}),
		addressesRejected: registerCounter(registerer, prometheus.CounterOpts{
			Name: "acdshop_addresses_rejected_total",
			Help: "Total number of address creations rejected by validation",
		}),
		operationDuration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "acdshop_order_operation_duration_seconds",
			Help:    "Duration of order service operations in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"operation"}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogramVec(registerer prometheus.Registerer, opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	collector := prometheus.NewHistogramVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.HistogramVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram vec %q: %v", opts.Name, err))
	}
	return collector
}

// RecordReassignment увеличивает счётчик смен адреса с указанным исходом.
func (m *ShippingMetrics) RecordReassignment(result string) {
	if m == nil {
		return
	}
	m.reassignments.WithLabelValues(result).Inc()
}

// RecordEventPublished учитывает попытку публикации события.
func (m *ShippingMetrics) RecordEventPublished(err error) {
	if m == nil {
		return
	}
	result := ResultSuccess
	if err != nil {
		result = ResultError
	}
	m.events.WithLabelValues(result).Inc()
}

// RecordAddressCreated увеличивает счётчик созданных адресов.
func (m *ShippingMetrics) RecordAddressCreated() {
	if m == nil {
		return
	}
	m.addressesCreated.Inc()
}

// RecordAddressRejected увеличивает счётчик отклонённых адресов.
func (m *ShippingMetrics) RecordAddressRejected() {
	if m == nil {
		return
	}
	m.addressesRejected.Inc()
}

// RecordOperationDuration записывает время выполнения операции сервиса.
func (m *ShippingMetrics) RecordOperationDuration(operation string, duration time.Duration) {
	if m == nil {
		return
	}
	m.operationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
