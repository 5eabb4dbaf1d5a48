package domain

import "context"

// TxRunner — граница транзакции хранилища.
type TxRunner interface {
	// WithTransaction выполняет fn в транзакции: commit при успехе,
	// rollback и возврат ошибки при любом сбое. Вложенные вызовы запрещены.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// AddressRepository описывает требования к хранилищу адресов.
type AddressRepository interface {
	// Create вставляет новый адрес и возвращает присвоенный идентификатор.
	Create(ctx context.Context, address Address) (int64, error)
	// FindByID возвращает адрес или ErrAddressNotFound.
	FindByID(ctx context.Context, id int64) (Address, error)
	// FindByCustomer возвращает адреса клиента в порядке создания.
	FindByCustomer(ctx context.Context, customerID int64) ([]Address, error)
	// Update полностью перезаписывает существующий адрес.
	Update(ctx context.Context, address Address) error
	// Delete удаляет адрес; отсутствие записи ошибкой не считается.
	Delete(ctx context.Context, id int64) error
}

// OrderRepository описывает требования к хранилищу заказов.
type OrderRepository interface {
	// FindByID возвращает заказ без разрешённых связей.
	FindByID(ctx context.Context, id int64) (Order, error)
	// FindByIDWithDetails возвращает заказ вместе с клиентом и адресом доставки.
	FindByIDWithDetails(ctx context.Context, id int64) (Order, error)
	// SetShippingAddress меняет только ссылку на адрес доставки; nil сбрасывает её.
	SetShippingAddress(ctx context.Context, orderID int64, addressID *int64) error
}

// CustomerRepository — чтение клиентов.
type CustomerRepository interface {
	FindByID(ctx context.Context, id int64) (Customer, error)
	FindByEmail(ctx context.Context, email string) (Customer, error)
}
