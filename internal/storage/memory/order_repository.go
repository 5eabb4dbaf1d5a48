package memory

import (
	"context"
	"fmt"

	"github.com/vladislavdragonenkov/acdshop/internal/domain"
)

// orderRepositoryInMemory — in-memory реализация OrderRepository поверх Store.
type orderRepositoryInMemory struct {
	store *Store
}

// NewOrderRepository возвращает in-memory репозиторий заказов.
func NewOrderRepository(store *Store) domain.OrderRepository {
	return &orderRepositoryInMemory{store: store}
}

// FindByID возвращает копию заказа без разрешённых связей.
func (r *orderRepositoryInMemory) FindByID(ctx context.Context, id int64) (domain.Order, error) {
	var order domain.Order
	err := r.store.read(ctx, func(st *state) error {
		found, ok := st.orders[id]
		if !ok {
			return domain.ErrOrderNotFound
		}
		order = found.Clone()
		return nil
	})
	return order, err
}

// FindByIDWithDetails разрешает клиента и адрес доставки под одной блокировкой чтения.
func (r *orderRepositoryInMemory) FindByIDWithDetails(ctx context.Context, id int64) (domain.Order, error) {
	var order domain.Order
	err := r.store.read(ctx, func(st *state) error {
		found, ok := st.orders[id]
		if !ok {
			return domain.ErrOrderNotFound
		}
		customer, ok := st.customers[found.CustomerID]
		if !ok {
			// Заказ без клиента не проходит inner join.
			return domain.ErrOrderNotFound
		}

		order = found.Clone()
		order.Customer = &customer
		if order.ShippingAddressID != nil {
			if address, ok := st.addresses[*order.ShippingAddressID]; ok {
				order.ShippingAddress = &address
			}
		}
		if order.ItemIDs == nil {
			order.ItemIDs = make([]int64, 0)
		}
		return nil
	})
	return order, err
}

// SetShippingAddress перечитывает заказ внутри транзакции и меняет только ссылку на адрес.
func (r *orderRepositoryInMemory) SetShippingAddress(ctx context.Context, orderID int64, addressID *int64) error {
	return r.store.write(ctx, func(st *state) error {
		order, ok := st.orders[orderID]
		if !ok {
			return domain.ErrOrderNotFound
		}
		if err := st.checkShippingAddress(order.CustomerID, addressID); err != nil {
			return fmt.Errorf("set shipping address of order %d: %w", orderID, err)
		}
		if addressID == nil {
			order.ShippingAddressID = nil
		} else {
			order.ShippingAddressID = domain.IDRef(*addressID)
		}
		st.orders[orderID] = order
		return nil
	})
}

var _ domain.OrderRepository = (*orderRepositoryInMemory)(nil)
