package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/acdshop/internal/domain"
)

type orderRepository struct {
	store *Store
}

// NewOrderRepository создаёт PostgreSQL-реализацию OrderRepository.
func NewOrderRepository(store *Store) domain.OrderRepository {
	return &orderRepository{store: store}
}

func (r *orderRepository) FindByID(ctx context.Context, id int64) (domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var (
		order      domain.Order
		employeeID sql.NullInt64
		addressID  sql.NullInt64
	)
	err := r.store.executor(ctx).QueryRowContext(ctx, `
		SELECT order_id, customer_id, employee_id, shipping_address_id, order_date, status, total_amount
		FROM orders
		WHERE order_id = $1
	`, id).Scan(
		&order.ID, &order.CustomerID, &employeeID, &addressID,
		&order.OrderDate, &order.Status, &order.TotalAmount,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, classify("select order", err, false)
	}
	order.EmployeeID = nullableID(employeeID)
	order.ShippingAddressID = nullableID(addressID)

	return order, nil
}

func (r *orderRepository) FindByIDWithDetails(ctx context.Context, id int64) (domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var order domain.Order
	err := r.store.readSnapshot(ctx, func(ctx context.Context) error {
		loaded, err := r.loadDetails(ctx, id)
		if err != nil {
			return err
		}
		items, err := r.loadItemIDs(ctx, id)
		if err != nil {
			return err
		}
		loaded.ItemIDs = items
		order = loaded
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}

	return order, nil
}

func (r *orderRepository) SetShippingAddress(ctx context.Context, orderID int64, addressID *int64) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	return r.store.WithTransaction(ctx, func(ctx context.Context) error {
		exec := r.store.executor(ctx)

		// Перечитываем строку под блокировкой, чтобы не опираться на устаревшую копию.
		var lockedID int64
		err := exec.QueryRowContext(ctx, `
			SELECT order_id FROM orders WHERE order_id = $1 FOR UPDATE
		`, orderID).Scan(&lockedID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.ErrOrderNotFound
			}
			return classify("lock order", err, true)
		}

		ref := sql.NullInt64{}
		if addressID != nil {
			ref = sql.NullInt64{Int64: *addressID, Valid: true}
		}
		if _, err := exec.ExecContext(ctx, `
			UPDATE orders
			SET shipping_address_id = $1
			WHERE order_id = $2
		`, ref, orderID); err != nil {
			return classify(fmt.Sprintf("set shipping address of order %d", orderID), err, true)
		}

		return nil
	})
}

func (r *orderRepository) loadDetails(ctx context.Context, id int64) (domain.Order, error) {
	var (
		order    domain.Order
		customer domain.Customer

		employeeID   sql.NullInt64
		addressRefID sql.NullInt64
		paymentID    sql.NullInt64
		shipmentID   sql.NullInt64

		addrID         sql.NullInt64
		addrCustomerID sql.NullInt64
		addrLine1      sql.NullString
		addrCity       sql.NullString
		addrCountry    sql.NullString
		addrIsDefault  sql.NullBool
	)

	err := r.store.executor(ctx).QueryRowContext(ctx, `
		SELECT o.order_id, o.customer_id, o.employee_id, o.shipping_address_id,
		       o.order_date, o.status, o.total_amount,
		       c.customer_id, c.full_name, c.email,
		       a.address_id, a.customer_id, a.line1, a.city, a.country, a.is_default,
		       p.payment_id, s.shipment_id
		FROM orders o
		JOIN customers c ON c.customer_id = o.customer_id
		LEFT JOIN addresses a ON a.address_id = o.shipping_address_id
		LEFT JOIN payments p ON p.order_id = o.order_id
		LEFT JOIN shipments s ON s.order_id = o.order_id
		WHERE o.order_id = $1
	`, id).Scan(
		&order.ID, &order.CustomerID, &employeeID, &addressRefID,
		&order.OrderDate, &order.Status, &order.TotalAmount,
		&customer.ID, &customer.FullName, &customer.Email,
		&addrID, &addrCustomerID, &addrLine1, &addrCity, &addrCountry, &addrIsDefault,
		&paymentID, &shipmentID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, classify("select order details", err, false)
	}

	order.EmployeeID = nullableID(employeeID)
	order.ShippingAddressID = nullableID(addressRefID)
	order.PaymentID = nullableID(paymentID)
	order.ShipmentID = nullableID(shipmentID)
	order.Customer = &customer
	if addrID.Valid {
		order.ShippingAddress = &domain.Address{
			ID:         addrID.Int64,
			CustomerID: addrCustomerID.Int64,
			Line1:      addrLine1.String,
			City:       addrCity.String,
			Country:    addrCountry.String,
			IsDefault:  addrIsDefault.Bool,
		}
	}

	return order, nil
}

func (r *orderRepository) loadItemIDs(ctx context.Context, orderID int64) ([]int64, error) {
	rows, err := r.store.executor(ctx).QueryContext(ctx, `
		SELECT order_item_id
		FROM order_items
		WHERE order_id = $1
		ORDER BY order_item_id ASC
	`, orderID)
	if err != nil {
		return nil, classify("load order items", err, false)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, classify("scan order item", err, false)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("iterate order items", err, false)
	}

	return ids, nil
}

func nullableID(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	return domain.IDRef(v.Int64)
}

var _ domain.OrderRepository = (*orderRepository)(nil)
