package shell_test

import (
	"bytes"
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/acdshop/internal/domain"
	"github.com/vladislavdragonenkov/acdshop/internal/service/orders"
	"github.com/vladislavdragonenkov/acdshop/internal/shell"
	"github.com/vladislavdragonenkov/acdshop/internal/storage/memory"
)

type fixture struct {
	store   *memory.Store
	svc     *orders.OrderService
	orderID int64
	homeID  int64
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	store := memory.NewStore()
	customerID, err := store.SeedCustomer(domain.Customer{FullName: "Ana Lopez", Email: "ana@example.com"})
	require.NoError(t, err)

	addresses := memory.NewAddressRepository(store)
	homeID, err := addresses.Create(context.Background(), domain.Address{
		CustomerID: customerID, Line1: "Gran Via 1", City: "Madrid", Country: "ES", IsDefault: true,
	})
	require.NoError(t, err)

	orderID, err := store.SeedOrder(domain.Order{
		CustomerID:        customerID,
		ShippingAddressID: &homeID,
		OrderDate:         time.Date(2025, 2, 10, 18, 45, 0, 0, time.UTC),
		Status:            domain.OrderStatusPending,
		TotalAmount:       decimal.RequireFromString("99.9"),
	})
	require.NoError(t, err)

	return fixture{
		store:   store,
		svc:     orders.NewOrderService(memory.NewOrderRepository(store), addresses, memory.NewCustomerRepository(store), nil, nil, quietLogger()),
		orderID: orderID,
		homeID:  homeID,
	}
}

func quietLogger() *log.Entry {
	logger := log.New()
	logger.SetLevel(log.PanicLevel)
	return logger.WithField("component", "shell-test")
}

func run(t *testing.T, api shell.OrderAPI, input ...string) string {
	t.Helper()

	var out bytes.Buffer
	sh := shell.New(api, strings.NewReader(strings.Join(input, "\n")+"\n"), &out, quietLogger())
	require.NoError(t, sh.Run(context.Background()))
	return out.String()
}

func TestShell_ExitOnZero(t *testing.T) {
	f := newFixture(t)

	out := run(t, f.svc, "0")

	assert.Contains(t, out, "=== MAIN MENU ===")
	assert.Contains(t, out, "Goodbye!")
}

func TestShell_EndOfInputStopsLoop(t *testing.T) {
	f := newFixture(t)

	var out bytes.Buffer
	sh := shell.New(f.svc, strings.NewReader(""), &out, quietLogger())
	assert.NoError(t, sh.Run(context.Background()))
}

func TestShell_CanceledContext(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err := shell.New(f.svc, strings.NewReader("0\n"), &out, quietLogger()).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestShell_InvalidOption(t *testing.T) {
	f := newFixture(t)

	out := run(t, f.svc, "7", "0")

	assert.Contains(t, out, "Invalid option")
}

func TestShell_UnknownOrder(t *testing.T) {
	f := newFixture(t)

	out := run(t, f.svc, "1", "555", "0")

	assert.Contains(t, out, "there is no order with ID 555")
}

func TestShell_ShowsOrderAndDeclines(t *testing.T) {
	f := newFixture(t)

	out := run(t, f.svc, "1", itoa(f.orderID), "n", "0")

	assert.Contains(t, out, "Name: Ana Lopez")
	assert.Contains(t, out, "Total amount: $99.90")
	assert.Contains(t, out, "Street: Gran Via 1")
	assert.Contains(t, out, "No changes were made.")
}

func TestShell_CreateNewAddressAndReassign(t *testing.T) {
	f := newFixture(t)

	out := run(t, f.svc, "1", itoa(f.orderID), "S", "1", "Rue de Rivoli 10", "Paris", "fr", "0")

	assert.Contains(t, out, "New address created successfully")
	assert.Contains(t, out, "Address updated successfully")
	assert.Contains(t, out, "Country: FR")

	order, err := f.svc.GetOrderDetails(context.Background(), f.orderID)
	require.NoError(t, err)
	assert.Equal(t, "Paris", order.ShippingAddress.City)
}

func TestShell_RejectsInvalidCountry(t *testing.T) {
	f := newFixture(t)

	out := run(t, f.svc, "1", itoa(f.orderID), "y", "1", "Main St", "Madrid", "ESP", "0")

	assert.Contains(t, out, "Error:")
	assert.NotContains(t, out, "Address updated successfully")

	order, err := f.svc.GetOrderDetails(context.Background(), f.orderID)
	require.NoError(t, err)
	assert.Equal(t, f.homeID, order.ShippingAddress.ID)
}

func TestShell_SelectExistingAddress(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	order, err := f.svc.GetOrderDetails(ctx, f.orderID)
	require.NoError(t, err)
	second, err := f.svc.CreateAddressForCustomer(ctx, *order.Customer, "Calle Mayor 2", "Toledo", "ES")
	require.NoError(t, err)

	out := run(t, f.svc, "1", itoa(f.orderID), "s", "2", "2", "0")

	assert.Contains(t, out, "1. Gran Via 1, Madrid, ES")
	assert.Contains(t, out, "2. Calle Mayor 2, Toledo, ES")
	assert.Contains(t, out, "City: Toledo")

	order, err = f.svc.GetOrderDetails(ctx, f.orderID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, order.ShippingAddress.ID)
}

func TestShell_SelectExistingAddressOutOfRange(t *testing.T) {
	f := newFixture(t)

	out := run(t, f.svc, "1", itoa(f.orderID), "s", "2", "9", "0")

	assert.Contains(t, out, "Invalid address number")
}

type failingAPI struct {
	shell.OrderAPI
}

func (failingAPI) OrderExists(context.Context, int64) (bool, error) {
	return false, errors.Join(domain.ErrStorageUnavailable, errors.New("dial tcp: refused"))
}

func TestShell_StorageErrorsBecomeMessages(t *testing.T) {
	out := run(t, failingAPI{}, "1", "3", "0")

	assert.Contains(t, out, "storage is temporarily unavailable")
	assert.Contains(t, out, "Goodbye!")
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
