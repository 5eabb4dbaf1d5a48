package app

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/acdshop/internal/domain"
	"github.com/vladislavdragonenkov/acdshop/internal/storage/memory"
)

// seedDemoData наполняет in-memory хранилище небольшим набором клиентов и заказов.
func seedDemoData(ctx context.Context, store *memory.Store) error {
	addresses := memory.NewAddressRepository(store)

	employeeID, err := store.SeedEmployee(domain.Employee{Name: "Marta Ruiz", Role: "sales"})
	if err != nil {
		return err
	}

	customers := []struct {
		customer domain.Customer
		address  domain.Address
		total    string
		status   string
	}{
		{
			customer: domain.Customer{FullName: "Ana Lopez", Email: "ana.lopez@example.com"},
			address:  domain.Address{Line1: "Gran Via 1", City: "Madrid", Country: "ES", IsDefault: true},
			total:    "149.90",
			status:   domain.OrderStatusPending,
		},
		{
			customer: domain.Customer{FullName: "Jean Martin", Email: "jean.martin@example.com"},
			address:  domain.Address{Line1: "Rue de Rivoli 10", City: "Paris", Country: "FR", IsDefault: true},
			total:    "42.00",
			status:   domain.OrderStatusPaid,
		},
	}

	orderDate := time.Date(2025, 1, 20, 10, 0, 0, 0, time.UTC)
	for _, seed := range customers {
		customerID, err := store.SeedCustomer(seed.customer)
		if err != nil {
			return err
		}

		address := seed.address
		address.CustomerID = customerID
		addressID, err := addresses.Create(ctx, address)
		if err != nil {
			return err
		}

		if _, err := store.SeedOrder(domain.Order{
			CustomerID:        customerID,
			EmployeeID:        domain.IDRef(employeeID),
			ShippingAddressID: domain.IDRef(addressID),
			OrderDate:         orderDate,
			Status:            seed.status,
			TotalAmount:       decimal.RequireFromString(seed.total),
			ItemIDs:           []int64{0, 0},
			PaymentID:         domain.IDRef(0),
		}); err != nil {
			return err
		}
		orderDate = orderDate.Add(24 * time.Hour)
	}

	return nil
}
