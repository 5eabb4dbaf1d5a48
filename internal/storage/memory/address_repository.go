package memory

import (
	"context"
	"fmt"

	"github.com/vladislavdragonenkov/acdshop/internal/domain"
)

// addressRepositoryInMemory — in-memory реализация AddressRepository поверх Store.
type addressRepositoryInMemory struct {
	store *Store
}

// NewAddressRepository возвращает in-memory репозиторий адресов.
func NewAddressRepository(store *Store) domain.AddressRepository {
	return &addressRepositoryInMemory{store: store}
}

// Create вставляет адрес в отдельной транзакции.
func (r *addressRepositoryInMemory) Create(ctx context.Context, address domain.Address) (int64, error) {
	if err := address.ValidateForCreate(); err != nil {
		return 0, err
	}

	var id int64
	err := r.store.write(ctx, func(st *state) error {
		if _, ok := st.customers[address.CustomerID]; !ok {
			return fmt.Errorf("insert address: %w: unknown customer %d", domain.ErrConstraintViolation, address.CustomerID)
		}
		st.nextAddressID++
		address.ID = st.nextAddressID
		st.addresses[address.ID] = address
		id = address.ID
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// FindByID возвращает копию адреса или ErrAddressNotFound.
func (r *addressRepositoryInMemory) FindByID(ctx context.Context, id int64) (domain.Address, error) {
	var address domain.Address
	err := r.store.read(ctx, func(st *state) error {
		found, ok := st.addresses[id]
		if !ok {
			return domain.ErrAddressNotFound
		}
		address = found
		return nil
	})
	return address, err
}

// FindByCustomer возвращает адреса клиента в порядке создания.
func (r *addressRepositoryInMemory) FindByCustomer(ctx context.Context, customerID int64) ([]domain.Address, error) {
	result := make([]domain.Address, 0)
	err := r.store.read(ctx, func(st *state) error {
		for _, id := range sortedAddressIDs(st.addresses) {
			if address := st.addresses[id]; address.CustomerID == customerID {
				result = append(result, address)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Update перезаписывает адрес целиком.
func (r *addressRepositoryInMemory) Update(ctx context.Context, address domain.Address) error {
	if !address.Persisted() {
		return fmt.Errorf("%w: address id is required for update", domain.ErrInvalidInput)
	}
	if err := address.ValidateForCreate(); err != nil {
		return err
	}

	return r.store.write(ctx, func(st *state) error {
		if _, ok := st.addresses[address.ID]; !ok {
			return domain.ErrAddressNotFound
		}
		if _, ok := st.customers[address.CustomerID]; !ok {
			return fmt.Errorf("update address: %w: unknown customer %d", domain.ErrConstraintViolation, address.CustomerID)
		}
		for _, order := range st.orders {
			if order.ShippingAddressID != nil && *order.ShippingAddressID == address.ID && order.CustomerID != address.CustomerID {
				return fmt.Errorf("update address: %w: address %d is shipping address of order %d",
					domain.ErrConstraintViolation, address.ID, order.ID)
			}
		}
		st.addresses[address.ID] = address
		return nil
	})
}

// Delete удаляет адрес и обнуляет ссылки заказов на него (ON DELETE SET NULL).
func (r *addressRepositoryInMemory) Delete(ctx context.Context, id int64) error {
	return r.store.write(ctx, func(st *state) error {
		if _, ok := st.addresses[id]; !ok {
			return nil
		}
		delete(st.addresses, id)
		for orderID, order := range st.orders {
			if order.ShippingAddressID != nil && *order.ShippingAddressID == id {
				order.ShippingAddressID = nil
				st.orders[orderID] = order
			}
		}
		return nil
	})
}

var _ domain.AddressRepository = (*addressRepositoryInMemory)(nil)
