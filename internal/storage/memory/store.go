package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/vladislavdragonenkov/acdshop/internal/domain"
)

// Store — in-memory хранилище магазина для локальной разработки и тестов.
//
// Транзакции сериализуются: каждая работает с копией данных и при commit
// целиком заменяет опубликованное состояние. Читатели вне транзакции видят
// только зафиксированные данные.
type Store struct {
	txMu sync.Mutex

	mu   sync.RWMutex
	data *state

	commitErr error
}

type state struct {
	customers map[int64]domain.Customer
	employees map[int64]domain.Employee
	addresses map[int64]domain.Address
	// orders хранит заказы в неразрешённом виде: только идентификаторы связей.
	orders map[int64]domain.Order

	nextCustomerID int64
	nextEmployeeID int64
	nextAddressID  int64
	nextOrderID    int64
	nextItemID     int64
	nextPaymentID  int64
	nextShipmentID int64
}

type txKey struct{}

type tx struct {
	data *state
}

// NewStore создаёт пустое хранилище.
func NewStore() *Store {
	return &Store{data: newState()}
}

func newState() *state {
	return &state{
		customers: make(map[int64]domain.Customer),
		employees: make(map[int64]domain.Employee),
		addresses: make(map[int64]domain.Address),
		orders:    make(map[int64]domain.Order),
	}
}

func (st *state) clone() *state {
	out := *st
	out.customers = make(map[int64]domain.Customer, len(st.customers))
	for k, v := range st.customers {
		out.customers[k] = v
	}
	out.employees = make(map[int64]domain.Employee, len(st.employees))
	for k, v := range st.employees {
		out.employees[k] = v
	}
	out.addresses = make(map[int64]domain.Address, len(st.addresses))
	for k, v := range st.addresses {
		out.addresses[k] = v
	}
	out.orders = make(map[int64]domain.Order, len(st.orders))
	for k, v := range st.orders {
		out.orders[k] = v.Clone()
	}
	return &out
}

// WithTransaction выполняет fn на рабочей копии данных и публикует её при успехе.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if txFromContext(ctx) != nil {
		return domain.ErrNestedTransaction
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("begin tx: %w: %w", domain.ErrStorageUnavailable, err)
	}

	s.mu.RLock()
	work := s.data.clone()
	s.mu.RUnlock()

	if err := fn(context.WithValue(ctx, txKey{}, &tx{data: work})); err != nil {
		return classify("transaction", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.commitErr != nil {
		err := s.commitErr
		s.commitErr = nil
		return classify("commit tx", err)
	}
	s.data = work

	return nil
}

// FailNextCommit заставляет следующий commit завершиться ошибкой err.
// Предназначено для тестов отказов хранилища.
func (s *Store) FailNextCommit(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commitErr = err
}

// Ping всегда успешен: хранилище живёт в памяти процесса.
func (s *Store) Ping(context.Context) error {
	return nil
}

// read выполняет fn над состоянием открытой транзакции либо над зафиксированными данными.
func (s *Store) read(ctx context.Context, fn func(st *state) error) error {
	if t := txFromContext(ctx); t != nil {
		return fn(t.data)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("read: %w: %w", domain.ErrStorageUnavailable, err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.data)
}

// write открывает собственную транзакцию и передаёт fn её рабочую копию.
func (s *Store) write(ctx context.Context, fn func(st *state) error) error {
	return s.WithTransaction(ctx, func(ctx context.Context) error {
		return fn(txFromContext(ctx).data)
	})
}

// classify приводит ошибку транзакции к доменной категории так же, как
// PostgreSQL-шлюз: отмена контекста означает недоступность, прочие
// неклассифицированные ошибки считаются сбоем записи.
func classify(op string, err error) error {
	for _, target := range []error{
		domain.ErrNotFound,
		domain.ErrInvalidInput,
		domain.ErrNestedTransaction,
		domain.ErrStorageUnavailable,
		domain.ErrConstraintViolation,
		domain.ErrWriteFailed,
	} {
		if errors.Is(err, target) {
			return err
		}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrStorageUnavailable, err)
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrWriteFailed, err)
}

func txFromContext(ctx context.Context) *tx {
	t, _ := ctx.Value(txKey{}).(*tx)
	return t
}

// SeedCustomer добавляет клиента. Ядро клиентов не создаёт, поэтому метод
// предназначен для фикстур и демо-данных.
func (s *Store) SeedCustomer(customer domain.Customer) (int64, error) {
	var id int64
	err := s.write(context.Background(), func(st *state) error {
		for _, existing := range st.customers {
			if existing.Email == customer.Email {
				return fmt.Errorf("seed customer: %w: email %q already exists", domain.ErrConstraintViolation, customer.Email)
			}
		}
		st.nextCustomerID++
		customer.ID = st.nextCustomerID
		st.customers[customer.ID] = customer
		id = customer.ID
		return nil
	})
	return id, err
}

// SeedEmployee добавляет сотрудника.
func (s *Store) SeedEmployee(employee domain.Employee) (int64, error) {
	var id int64
	err := s.write(context.Background(), func(st *state) error {
		st.nextEmployeeID++
		employee.ID = st.nextEmployeeID
		st.employees[employee.ID] = employee
		id = employee.ID
		return nil
	})
	return id, err
}

// SeedOrder добавляет заказ, проверяя внешние ключи так же, как схема БД.
func (s *Store) SeedOrder(order domain.Order) (int64, error) {
	var id int64
	err := s.write(context.Background(), func(st *state) error {
		if _, ok := st.customers[order.CustomerID]; !ok {
			return fmt.Errorf("seed order: %w: unknown customer %d", domain.ErrConstraintViolation, order.CustomerID)
		}
		if order.EmployeeID != nil {
			if _, ok := st.employees[*order.EmployeeID]; !ok {
				return fmt.Errorf("seed order: %w: unknown employee %d", domain.ErrConstraintViolation, *order.EmployeeID)
			}
		}
		if err := st.checkShippingAddress(order.CustomerID, order.ShippingAddressID); err != nil {
			return err
		}

		row := order.Clone()
		st.nextOrderID++
		row.ID = st.nextOrderID
		row.Customer = nil
		row.ShippingAddress = nil
		row.ItemIDs = make([]int64, 0, len(order.ItemIDs))
		for range order.ItemIDs {
			st.nextItemID++
			row.ItemIDs = append(row.ItemIDs, st.nextItemID)
		}
		if order.PaymentID != nil {
			st.nextPaymentID++
			row.PaymentID = domain.IDRef(st.nextPaymentID)
		}
		if order.ShipmentID != nil {
			st.nextShipmentID++
			row.ShipmentID = domain.IDRef(st.nextShipmentID)
		}
		st.orders[row.ID] = row
		id = row.ID
		return nil
	})
	return id, err
}

// checkShippingAddress повторяет составной внешний ключ
// (shipping_address_id, customer_id) → addresses(address_id, customer_id).
func (st *state) checkShippingAddress(customerID int64, addressID *int64) error {
	if addressID == nil {
		return nil
	}
	address, ok := st.addresses[*addressID]
	if !ok || address.CustomerID != customerID {
		return fmt.Errorf("%w: shipping address %d does not belong to customer %d",
			domain.ErrConstraintViolation, *addressID, customerID)
	}
	return nil
}

func sortedAddressIDs(addresses map[int64]domain.Address) []int64 {
	ids := make([]int64, 0, len(addresses))
	for id := range addresses {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

var _ domain.TxRunner = (*Store)(nil)
