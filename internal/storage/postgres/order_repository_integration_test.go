package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/acdshop/internal/domain"
)

func TestOrderRepository_PostgresFindByIDUnresolved(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewOrderRepository(store)

	customerID := seedCustomer(t, store, "Ana Lopez", "ana@example.com")
	addressID := seedAddress(t, store, customerID, "Gran Via 1", "Madrid", "ES")
	orderID := seedOrder(t, store, customerID, &addressID, "120.50")

	order, err := repo.FindByID(context.Background(), orderID)
	require.NoError(t, err)
	assert.Equal(t, customerID, order.CustomerID)
	require.NotNil(t, order.ShippingAddressID)
	assert.Equal(t, addressID, *order.ShippingAddressID)
	assert.True(t, decimal.RequireFromString("120.50").Equal(order.TotalAmount))
	assert.Nil(t, order.Customer)
	assert.Nil(t, order.ShippingAddress)
}

func TestOrderRepository_PostgresFindByIDWithDetails(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewOrderRepository(store)
	ctx := context.Background()

	customerID := seedCustomer(t, store, "Ana Lopez", "ana@example.com")
	addressID := seedAddress(t, store, customerID, "Gran Via 1", "Madrid", "ES")
	orderID := seedOrder(t, store, customerID, &addressID, "99.90")

	_, err := store.DB().ExecContext(ctx, `
		INSERT INTO order_items (order_id, product_name, quantity, unit_price) VALUES ($1, 'mug', 2, 9.95), ($1, 'tee', 1, 80.00)
	`, orderID)
	require.NoError(t, err)
	_, err = store.DB().ExecContext(ctx, `
		INSERT INTO payments (order_id, method, amount) VALUES ($1, 'CARD', 99.90)
	`, orderID)
	require.NoError(t, err)

	order, err := repo.FindByIDWithDetails(ctx, orderID)
	require.NoError(t, err)

	require.NotNil(t, order.Customer)
	assert.Equal(t, domain.Customer{ID: customerID, FullName: "Ana Lopez", Email: "ana@example.com"}, *order.Customer)
	require.NotNil(t, order.ShippingAddress)
	assert.Equal(t, "Gran Via 1", order.ShippingAddress.Line1)
	assert.Equal(t, customerID, order.ShippingAddress.CustomerID)
	assert.Len(t, order.ItemIDs, 2)
	assert.NotNil(t, order.PaymentID)
	assert.Nil(t, order.ShipmentID)
	assert.Empty(t, order.ValidateInvariants())
}

func TestOrderRepository_PostgresDetailsWithoutAddress(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewOrderRepository(store)

	customerID := seedCustomer(t, store, "Ana Lopez", "ana@example.com")
	orderID := seedOrder(t, store, customerID, nil, "5.00")

	order, err := repo.FindByIDWithDetails(context.Background(), orderID)
	require.NoError(t, err)
	assert.NotNil(t, order.Customer)
	assert.Nil(t, order.ShippingAddress)
	assert.NotNil(t, order.ItemIDs)
}

func TestOrderRepository_PostgresNotFound(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewOrderRepository(store)
	ctx := context.Background()

	_, err := repo.FindByID(ctx, 404)
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)

	_, err = repo.FindByIDWithDetails(ctx, 404)
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)

	err = repo.SetShippingAddress(ctx, 404, nil)
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestOrderRepository_PostgresSetShippingAddress(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewOrderRepository(store)
	ctx := context.Background()

	customerID := seedCustomer(t, store, "Ana Lopez", "ana@example.com")
	oldAddress := seedAddress(t, store, customerID, "Gran Via 1", "Madrid", "ES")
	newAddress := seedAddress(t, store, customerID, "Rue de Rivoli 2", "Paris", "FR")
	orderID := seedOrder(t, store, customerID, &oldAddress, "10.00")

	require.NoError(t, repo.SetShippingAddress(ctx, orderID, &newAddress))

	order, err := repo.FindByIDWithDetails(ctx, orderID)
	require.NoError(t, err)
	require.NotNil(t, order.ShippingAddress)
	assert.Equal(t, newAddress, order.ShippingAddress.ID)
	assert.Equal(t, "PENDING", order.Status, "other fields must stay untouched")

	require.NoError(t, repo.SetShippingAddress(ctx, orderID, nil))
	order, err = repo.FindByIDWithDetails(ctx, orderID)
	require.NoError(t, err)
	assert.Nil(t, order.ShippingAddress)
}

func TestOrderRepository_PostgresSchemaRejectsCrossCustomerAddress(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewOrderRepository(store)

	owner := seedCustomer(t, store, "Ana Lopez", "ana@example.com")
	other := seedCustomer(t, store, "Luis Gil", "luis@example.com")
	foreignAddress := seedAddress(t, store, other, "Via Roma 3", "Rome", "IT")
	orderID := seedOrder(t, store, owner, nil, "10.00")

	err := repo.SetShippingAddress(context.Background(), orderID, &foreignAddress)
	if !errors.Is(err, domain.ErrConstraintViolation) {
		t.Fatalf("expected constraint violation, got %v", err)
	}

	order, err := repo.FindByID(context.Background(), orderID)
	require.NoError(t, err)
	assert.Nil(t, order.ShippingAddressID)
}

func TestCustomerRepository_PostgresFind(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewCustomerRepository(store)
	ctx := context.Background()

	id := seedCustomer(t, store, "Ana Lopez", "ana@example.com")

	byID, err := repo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Ana Lopez", byID.FullName)

	byEmail, err := repo.FindByEmail(ctx, " ana@example.com ")
	require.NoError(t, err)
	assert.Equal(t, id, byEmail.ID)

	_, err = repo.FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, domain.ErrCustomerNotFound)
}
