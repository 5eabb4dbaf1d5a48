package memory

import (
	"context"
	"strings"

	"github.com/vladislavdragonenkov/acdshop/internal/domain"
)

type customerRepositoryInMemory struct {
	store *Store
}

// NewCustomerRepository возвращает in-memory репозиторий клиентов.
func NewCustomerRepository(store *Store) domain.CustomerRepository {
	return &customerRepositoryInMemory{store: store}
}

func (r *customerRepositoryInMemory) FindByID(ctx context.Context, id int64) (domain.Customer, error) {
	var customer domain.Customer
	err := r.store.read(ctx, func(st *state) error {
		found, ok := st.customers[id]
		if !ok {
			return domain.ErrCustomerNotFound
		}
		customer = found
		return nil
	})
	return customer, err
}

func (r *customerRepositoryInMemory) FindByEmail(ctx context.Context, email string) (domain.Customer, error) {
	email = strings.TrimSpace(email)

	var customer domain.Customer
	err := r.store.read(ctx, func(st *state) error {
		for _, found := range st.customers {
			if found.Email == email {
				customer = found
				return nil
			}
		}
		return domain.ErrCustomerNotFound
	})
	return customer, err
}

var _ domain.CustomerRepository = (*customerRepositoryInMemory)(nil)
