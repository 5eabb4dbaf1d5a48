package memory_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/acdshop/internal/domain"
)

func TestStore_RollbackDiscardsWrites(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := f.store.WithTransaction(ctx, func(txCtx context.Context) error {
		// внутри транзакции запись видна
		_, err := f.addresses.FindByCustomer(txCtx, f.customerID)
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.ErrorIs(t, err, domain.ErrWriteFailed)

	listed, err := f.addresses.FindByCustomer(ctx, f.customerID)
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestStore_NestedTransactionRejected(t *testing.T) {
	f := newFixture(t)

	err := f.store.WithTransaction(context.Background(), func(txCtx context.Context) error {
		_, err := f.addresses.Create(txCtx, domain.Address{CustomerID: f.customerID, Line1: "a", City: "b", Country: "ES"})
		return err
	})
	require.ErrorIs(t, err, domain.ErrNestedTransaction)

	listed, err := f.addresses.FindByCustomer(context.Background(), f.customerID)
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestStore_FailNextCommitLeavesStateUnchanged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	diskFull := errors.New("disk full")
	f.store.FailNextCommit(diskFull)
	_, err := f.addresses.Create(ctx, domain.Address{CustomerID: f.customerID, Line1: "a", City: "b", Country: "ES"})
	require.ErrorIs(t, err, domain.ErrWriteFailed)
	require.ErrorIs(t, err, diskFull)
	assert.False(t, domain.IsRetryable(err))

	listed, err := f.addresses.FindByCustomer(ctx, f.customerID)
	require.NoError(t, err)
	assert.Empty(t, listed)

	// ошибка одноразовая
	_, err = f.addresses.Create(ctx, domain.Address{CustomerID: f.customerID, Line1: "a", City: "b", Country: "ES"})
	require.NoError(t, err)
}

func TestStore_CanceledContextIsUnavailable(t *testing.T) {
	f := newFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.orders.FindByID(ctx, 1)
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)

	err = f.orders.SetShippingAddress(ctx, 1, nil)
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
}

func TestStore_ConcurrentWritesDoNotLoseUpdates(t *testing.T) {
	f := newFixture(t)

	const writers = 20
	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func() {
			defer wg.Done()
			_, err := f.addresses.Create(context.Background(), domain.Address{CustomerID: f.customerID, Line1: "a", City: "b", Country: "ES"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	listed, err := f.addresses.FindByCustomer(context.Background(), f.customerID)
	require.NoError(t, err)
	assert.Len(t, listed, writers)
}

func TestStore_SeedCustomerRejectsDuplicateEmail(t *testing.T) {
	f := newFixture(t)

	_, err := f.store.SeedCustomer(domain.Customer{FullName: "Other", Email: "ana@example.com"})
	assert.ErrorIs(t, err, domain.ErrConstraintViolation)
}

func TestStore_SeedOrderChecksForeignKeys(t *testing.T) {
	f := newFixture(t)

	_, err := f.store.SeedOrder(domain.Order{CustomerID: 999, Status: domain.OrderStatusPending})
	assert.ErrorIs(t, err, domain.ErrConstraintViolation)

	_, err = f.store.SeedOrder(domain.Order{CustomerID: f.customerID, EmployeeID: domain.IDRef(5)})
	assert.ErrorIs(t, err, domain.ErrConstraintViolation)

	_, err = f.store.SeedOrder(domain.Order{CustomerID: f.customerID, ShippingAddressID: domain.IDRef(5)})
	assert.ErrorIs(t, err, domain.ErrConstraintViolation)
}

func TestStore_TransactionErrorsAreClassified(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("commit failure caused by deadline is unavailable", func(t *testing.T) {
		f.store.FailNextCommit(context.DeadlineExceeded)
		err := f.store.WithTransaction(ctx, func(context.Context) error { return nil })
		require.ErrorIs(t, err, domain.ErrStorageUnavailable)
		assert.True(t, domain.IsRetryable(err))
	})

	t.Run("domain errors pass through unchanged", func(t *testing.T) {
		err := f.store.WithTransaction(ctx, func(txCtx context.Context) error {
			_, err := f.addresses.FindByID(txCtx, 9999)
			return err
		})
		require.ErrorIs(t, err, domain.ErrAddressNotFound)
		assert.NotErrorIs(t, err, domain.ErrWriteFailed)
	})

	t.Run("constraint violation keeps its class", func(t *testing.T) {
		_, err := f.addresses.Create(ctx, domain.Address{CustomerID: 9999, Line1: "a", City: "b", Country: "ES"})
		require.ErrorIs(t, err, domain.ErrConstraintViolation)
		assert.NotErrorIs(t, err, domain.ErrWriteFailed)
	})
}
