package memory_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/acdshop/internal/domain"
	"github.com/vladislavdragonenkov/acdshop/internal/storage/memory"
)

type fixture struct {
	store     *memory.Store
	addresses domain.AddressRepository
	orders    domain.OrderRepository
	customers domain.CustomerRepository

	customerID int64
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	store := memory.NewStore()
	customerID, err := store.SeedCustomer(domain.Customer{FullName: "Ana Lopez", Email: "ana@example.com"})
	if err != nil {
		t.Fatalf("seed customer: %v", err)
	}

	return fixture{
		store:      store,
		addresses:  memory.NewAddressRepository(store),
		orders:     memory.NewOrderRepository(store),
		customers:  memory.NewCustomerRepository(store),
		customerID: customerID,
	}
}

func (f fixture) seedOrder(t *testing.T, customerID int64, addressID *int64) int64 {
	t.Helper()

	id, err := f.store.SeedOrder(domain.Order{
		CustomerID:        customerID,
		ShippingAddressID: addressID,
		OrderDate:         time.Date(2025, 1, 15, 9, 30, 0, 0, time.UTC),
		Status:            domain.OrderStatusPending,
		TotalAmount:       decimal.RequireFromString("49.95"),
		ItemIDs:           []int64{0, 0},
	})
	if err != nil {
		t.Fatalf("seed order: %v", err)
	}
	return id
}

func (f fixture) createAddress(t *testing.T, customerID int64, line1, city, country string) int64 {
	t.Helper()

	id, err := f.addresses.Create(t.Context(), domain.Address{
		CustomerID: customerID,
		Line1:      line1,
		City:       city,
		Country:    country,
	})
	if err != nil {
		t.Fatalf("create address: %v", err)
	}
	return id
}
