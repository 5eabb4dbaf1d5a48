package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/acdshop/internal/domain"
	"github.com/vladislavdragonenkov/acdshop/internal/metrics"
)

const (
	opGetOrderDetails      = "get_order_details"
	opGetCustomerAddresses = "get_customer_addresses"
	opCreateAddress        = "create_address"
	opReassignAddress      = "reassign_shipping_address"
	opOrderExists          = "order_exists"

	// DefaultPublishTimeout ограничивает публикацию события после commit.
	DefaultPublishTimeout = 3 * time.Second
)

// OrderService — сценарий смены адреса доставки заказа.
//
// Сервис владеет проверкой инварианта «адрес доставки принадлежит клиенту
// заказа» и не делает повторов: ошибки хранилища возвращаются вызывающему.
type OrderService struct {
	orders    domain.OrderRepository
	addresses domain.AddressRepository
	customers domain.CustomerRepository
	publisher domain.EventPublisher
	metrics   *metrics.ShippingMetrics
	logger    *log.Entry
	now       func() time.Time

	publishTimeout time.Duration
}

// NewOrderService конструирует сервис с зависимостями.
// publisher, metrics и logger необязательны.
func NewOrderService(
	orders domain.OrderRepository,
	addresses domain.AddressRepository,
	customers domain.CustomerRepository,
	publisher domain.EventPublisher,
	shippingMetrics *metrics.ShippingMetrics,
	logger *log.Entry,
) *OrderService {
	if publisher == nil {
		publisher = domain.NoopPublisher{}
	}
	if logger == nil {
		logger = log.New().WithField("component", "order-service")
	}
	return &OrderService{
		orders:    orders,
		addresses: addresses,
		customers: customers,
		publisher: publisher,
		metrics:   shippingMetrics,
		logger:    logger,
		now:       time.Now,

		publishTimeout: DefaultPublishTimeout,
	}
}

// GetOrderDetails возвращает заказ с разрешёнными клиентом и адресом доставки.
func (s *OrderService) GetOrderDetails(ctx context.Context, orderID int64) (domain.Order, error) {
	defer s.observe(opGetOrderDetails, time.Now())

	order, err := s.orders.FindByIDWithDetails(ctx, orderID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("get order %d details: %w", orderID, err)
	}
	return order, nil
}

// GetCustomerAddresses возвращает адреса клиента в порядке создания.
// При отсутствии адресов возвращается пустой, но не nil срез.
func (s *OrderService) GetCustomerAddresses(ctx context.Context, customer domain.Customer) ([]domain.Address, error) {
	defer s.observe(opGetCustomerAddresses, time.Now())

	addresses, err := s.addresses.FindByCustomer(ctx, customer.ID)
	if err != nil {
		return nil, fmt.Errorf("list addresses of customer %d: %w", customer.ID, err)
	}
	if addresses == nil {
		addresses = make([]domain.Address, 0)
	}
	return addresses, nil
}

// CreateAddressForCustomer проверяет и сохраняет новый адрес клиента.
// Код страны приводится к верхнему регистру; невалидный ввод отклоняется
// до обращения к хранилищу. Неизвестный клиент даёт ErrCustomerNotFound.
func (s *OrderService) CreateAddressForCustomer(ctx context.Context, customer domain.Customer, line1, city, country string) (domain.Address, error) {
	defer s.observe(opCreateAddress, time.Now())

	address, err := newAddress(customer, line1, city, country)
	if err != nil {
		s.metrics.RecordAddressRejected()
		s.logger.WithError(err).WithField("customer_id", customer.ID).Warn("address rejected")
		return domain.Address{}, err
	}

	if _, err := s.customers.FindByID(ctx, customer.ID); err != nil {
		if errors.Is(err, domain.ErrCustomerNotFound) {
			s.metrics.RecordAddressRejected()
		}
		return domain.Address{}, fmt.Errorf("create address for customer %d: %w", customer.ID, err)
	}

	id, err := s.addresses.Create(ctx, address)
	if err != nil {
		return domain.Address{}, fmt.Errorf("create address for customer %d: %w", customer.ID, err)
	}
	address.ID = id

	s.metrics.RecordAddressCreated()
	s.logger.WithFields(log.Fields{
		"customer_id": customer.ID,
		"address_id":  id,
	}).Info("address created")

	return address, nil
}

func newAddress(customer domain.Customer, line1, city, country string) (domain.Address, error) {
	if customer.ID <= 0 {
		return domain.Address{}, fmt.Errorf("%w: customer id is required", domain.ErrInvalidInput)
	}
	line1 = strings.TrimSpace(line1)
	if line1 == "" {
		return domain.Address{}, fmt.Errorf("%w: address line is required", domain.ErrInvalidInput)
	}
	city = strings.TrimSpace(city)
	if city == "" {
		return domain.Address{}, fmt.Errorf("%w: city is required", domain.ErrInvalidInput)
	}
	code, err := domain.NormalizeCountry(country)
	if err != nil {
		return domain.Address{}, err
	}

	return domain.Address{
		CustomerID: customer.ID,
		Line1:      line1,
		City:       city,
		Country:    code,
	}, nil
}

// ReassignShippingAddress назначает заказу адрес доставки.
//
// order должен быть прочитан через GetOrderDetails. При успехе копия заказа
// у вызывающего обновляется; при любой ошибке остаётся прежней. Повторное
// чтение зафиксированного состояния остаётся за вызывающим.
func (s *OrderService) ReassignShippingAddress(ctx context.Context, order *domain.Order, address domain.Address) (err error) {
	defer s.observe(opReassignAddress, time.Now())
	defer func() {
		s.metrics.RecordReassignment(reassignmentResult(err))
	}()

	if !order.DetailsLoaded() {
		return fmt.Errorf("%w: order must be loaded with details", domain.ErrInvalidInput)
	}
	if !address.Persisted() {
		return fmt.Errorf("%w: address must be saved before assignment", domain.ErrInvalidInput)
	}

	logger := s.logger.WithFields(log.Fields{
		"order_id":    order.ID,
		"customer_id": order.Customer.ID,
		"address_id":  address.ID,
	})

	if address.CustomerID != order.Customer.ID {
		logger.WithField("address_customer_id", address.CustomerID).Warn("cross-customer address rejected")
		return fmt.Errorf("order %d, address %d: %w", order.ID, address.ID, domain.ErrCrossCustomerAddress)
	}

	// Владельца проверяем и по сохранённой записи: переданная копия может устареть.
	stored, err := s.addresses.FindByID(ctx, address.ID)
	if err != nil {
		return fmt.Errorf("load address %d: %w", address.ID, err)
	}
	if stored.CustomerID != order.Customer.ID {
		logger.WithField("address_customer_id", stored.CustomerID).Warn("stored address belongs to another customer")
		return fmt.Errorf("order %d, address %d: %w", order.ID, address.ID, domain.ErrCrossCustomerAddress)
	}

	if err := s.orders.SetShippingAddress(ctx, order.ID, domain.IDRef(stored.ID)); err != nil {
		logger.WithError(err).Error("shipping address update failed")
		return fmt.Errorf("order %d: %w: %w", order.ID, domain.ErrUpdateFailed, err)
	}

	var previous *int64
	if order.ShippingAddressID != nil {
		previous = domain.IDRef(*order.ShippingAddressID)
	}
	order.ShippingAddressID = domain.IDRef(stored.ID)
	order.ShippingAddress = &stored

	logger.Info("shipping address reassigned")

	s.publishChanged(ctx, logger, domain.ShippingAddressChanged{
		OrderID:           order.ID,
		CustomerID:        order.Customer.ID,
		PreviousAddressID: previous,
		AddressID:         stored.ID,
		ChangedAt:         s.now().UTC(),
	})

	return nil
}

// publishChanged публикует событие после commit. Ошибка публикации не
// откатывает изменение и только логируется. Время ожидания брокера
// ограничено publishTimeout.
func (s *OrderService) publishChanged(ctx context.Context, logger *log.Entry, event domain.ShippingAddressChanged) {
	if s.publishTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.publishTimeout)
		defer cancel()
	}

	err := s.publisher.PublishShippingAddressChanged(ctx, event)
	s.metrics.RecordEventPublished(err)
	if err != nil {
		logger.WithError(err).Warn("failed to publish shipping address change")
	}
}

// OrderExists проверяет существование заказа без загрузки связей.
func (s *OrderService) OrderExists(ctx context.Context, orderID int64) (bool, error) {
	defer s.observe(opOrderExists, time.Now())

	if _, err := s.orders.FindByID(ctx, orderID); err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("check order %d: %w", orderID, err)
	}
	return true, nil
}

func (s *OrderService) observe(operation string, started time.Time) {
	s.metrics.RecordOperationDuration(operation, time.Since(started))
}

func reassignmentResult(err error) string {
	switch {
	case err == nil:
		return metrics.ResultSuccess
	case errors.Is(err, domain.ErrUpdateFailed):
		return metrics.ResultUpdateFailed
	case errors.Is(err, domain.ErrInvalidInput):
		return metrics.ResultInvalidInput
	case errors.Is(err, domain.ErrCrossCustomerAddress):
		return metrics.ResultCrossCustomer
	case errors.Is(err, domain.ErrNotFound):
		return metrics.ResultNotFound
	default:
		return metrics.ResultError
	}
}
