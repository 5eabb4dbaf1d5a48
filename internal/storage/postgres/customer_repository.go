package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/vladislavdragonenkov/acdshop/internal/domain"
)

type customerRepository struct {
	store *Store
}

// NewCustomerRepository создаёт PostgreSQL-реализацию CustomerRepository.
func NewCustomerRepository(store *Store) domain.CustomerRepository {
	return &customerRepository{store: store}
}

func (r *customerRepository) FindByID(ctx context.Context, id int64) (domain.Customer, error) {
	return r.findOne(ctx, `WHERE customer_id = $1`, id)
}

func (r *customerRepository) FindByEmail(ctx context.Context, email string) (domain.Customer, error) {
	return r.findOne(ctx, `WHERE email = $1`, strings.TrimSpace(email))
}

func (r *customerRepository) findOne(ctx context.Context, where string, arg any) (domain.Customer, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var customer domain.Customer
	err := r.store.executor(ctx).QueryRowContext(ctx, `
		SELECT customer_id, full_name, email
		FROM customers
		`+where, arg).Scan(&customer.ID, &customer.FullName, &customer.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Customer{}, domain.ErrCustomerNotFound
		}
		return domain.Customer{}, classify("select customer", err, false)
	}
	return customer, nil
}

var _ domain.CustomerRepository = (*customerRepository)(nil)
