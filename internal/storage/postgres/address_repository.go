package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/acdshop/internal/domain"
)

type addressRepository struct {
	store *Store
}

// NewAddressRepository создаёт PostgreSQL-реализацию AddressRepository.
func NewAddressRepository(store *Store) domain.AddressRepository {
	return &addressRepository{store: store}
}

const addressColumns = `address_id, customer_id, line1, city, country, is_default`

func (r *addressRepository) Create(ctx context.Context, address domain.Address) (int64, error) {
	if err := address.ValidateForCreate(); err != nil {
		return 0, err
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var id int64
	err := r.store.WithTransaction(ctx, func(ctx context.Context) error {
		err := r.store.executor(ctx).QueryRowContext(ctx, `
			INSERT INTO addresses (customer_id, line1, city, country, is_default)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING address_id
		`,
			address.CustomerID, address.Line1, address.City, address.Country, address.IsDefault,
		).Scan(&id)
		return classify("insert address", err, true)
	})
	if err != nil {
		return 0, err
	}

	return id, nil
}

func (r *addressRepository) FindByID(ctx context.Context, id int64) (domain.Address, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	row := r.store.executor(ctx).QueryRowContext(ctx, `
		SELECT `+addressColumns+`
		FROM addresses
		WHERE address_id = $1
	`, id)

	address, err := scanAddress(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Address{}, domain.ErrAddressNotFound
		}
		return domain.Address{}, classify("select address", err, false)
	}
	return address, nil
}

func (r *addressRepository) FindByCustomer(ctx context.Context, customerID int64) ([]domain.Address, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	rows, err := r.store.executor(ctx).QueryContext(ctx, `
		SELECT `+addressColumns+`
		FROM addresses
		WHERE customer_id = $1
		ORDER BY address_id ASC
	`, customerID)
	if err != nil {
		return nil, classify("list addresses", err, false)
	}
	defer rows.Close()

	addresses := make([]domain.Address, 0)
	for rows.Next() {
		address, err := scanAddress(rows)
		if err != nil {
			return nil, classify("scan address row", err, false)
		}
		addresses = append(addresses, address)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("iterate address rows", err, false)
	}

	return addresses, nil
}

func (r *addressRepository) Update(ctx context.Context, address domain.Address) error {
	if !address.Persisted() {
		return fmt.Errorf("%w: address id is required for update", domain.ErrInvalidInput)
	}
	if err := address.ValidateForCreate(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	return r.store.WithTransaction(ctx, func(ctx context.Context) error {
		res, err := r.store.executor(ctx).ExecContext(ctx, `
			UPDATE addresses
			SET customer_id = $1,
			    line1 = $2,
			    city = $3,
			    country = $4,
			    is_default = $5
			WHERE address_id = $6
		`,
			address.CustomerID, address.Line1, address.City, address.Country, address.IsDefault, address.ID,
		)
		if err != nil {
			return classify("update address", err, true)
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return classify("rows affected", err, true)
		}
		if affected == 0 {
			return domain.ErrAddressNotFound
		}
		return nil
	})
}

func (r *addressRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	return r.store.WithTransaction(ctx, func(ctx context.Context) error {
		// Заказы, ссылающиеся на адрес, обнуляют ссылку через ON DELETE SET NULL.
		_, err := r.store.executor(ctx).ExecContext(ctx, `DELETE FROM addresses WHERE address_id = $1`, id)
		return classify("delete address", err, true)
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAddress(row rowScanner) (domain.Address, error) {
	var address domain.Address
	err := row.Scan(
		&address.ID, &address.CustomerID, &address.Line1,
		&address.City, &address.Country, &address.IsDefault,
	)
	return address, err
}

var _ domain.AddressRepository = (*addressRepository)(nil)
