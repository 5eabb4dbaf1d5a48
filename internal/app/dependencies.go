package app

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/acdshop/internal/domain"
	healthcheck "github.com/vladislavdragonenkov/acdshop/internal/health"
	"github.com/vladislavdragonenkov/acdshop/internal/storage/memory"
	"github.com/vladislavdragonenkov/acdshop/internal/storage/postgres"
)

// runtimeDependencies — репозитории выбранного хранилища и связанные с ним ресурсы.
type runtimeDependencies struct {
	orders    domain.OrderRepository
	addresses domain.AddressRepository
	customers domain.CustomerRepository

	storageChecker healthcheck.Checker
	closeFn        func() error
}

func (d *runtimeDependencies) close() error {
	if d == nil || d.closeFn == nil {
		return nil
	}
	return d.closeFn()
}

// initRuntimeDependencies создаёт репозитории для драйвера из конфигурации.
func initRuntimeDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*runtimeDependencies, error) {
	switch cfg.StorageDriver {
	case StorageDriverMemory:
		store := memory.NewStore()
		if cfg.SeedDemoData {
			if err := seedDemoData(ctx, store); err != nil {
				return nil, fmt.Errorf("seed demo data: %w", err)
			}
			logger.Info("in-memory storage seeded with demo data")
		}
		return &runtimeDependencies{
			orders:         memory.NewOrderRepository(store),
			addresses:      memory.NewAddressRepository(store),
			customers:      memory.NewCustomerRepository(store),
			storageChecker: healthcheck.NewStorageChecker("storage", store, 0),
		}, nil

	case StorageDriverPostgres:
		if cfg.PostgresDSN == "" {
			return nil, errors.New("postgres storage requires a DSN")
		}
		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		if cfg.PostgresAutoMigrate {
			if err := store.EnsureSchema(ctx); err != nil {
				_ = store.Close()
				return nil, fmt.Errorf("apply migrations: %w", err)
			}
			logger.Info("postgres schema is up to date")
		}
		return &runtimeDependencies{
			orders:         postgres.NewOrderRepository(store),
			addresses:      postgres.NewAddressRepository(store),
			customers:      postgres.NewCustomerRepository(store),
			storageChecker: healthcheck.NewStorageChecker("storage", store, 0),
			closeFn:        store.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported storage driver: %q", cfg.StorageDriver)
	}
}
