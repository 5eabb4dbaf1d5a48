package app

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	healthcheck "github.com/vladislavdragonenkov/acdshop/internal/health"
	"github.com/vladislavdragonenkov/acdshop/internal/metrics"
	"github.com/vladislavdragonenkov/acdshop/internal/service/orders"
	"github.com/vladislavdragonenkov/acdshop/internal/shell"
	"github.com/vladislavdragonenkov/acdshop/internal/version"
)

// Run поднимает зависимости, HTTP-сервер метрик и интерактивное меню.
// Возвращает nil, когда пользователь вышел из меню, и ctx.Err() при отмене.
func Run(ctx context.Context, cfg Config, in io.Reader, out io.Writer) error {
	logger := log.WithField("component", "app")

	if err := cfg.Validate(); err != nil {
		return err
	}

	deps, err := initRuntimeDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := deps.close(); err != nil {
			logger.WithError(err).Warn("failed to close storage")
		}
	}()

	// Kafka необязательна: ошибка уже залогирована, работаем без публикации событий.
	producer, _ := initKafkaProducer(cfg.KafkaBrokers, logger)
	defer closeKafka(producer, logger)

	orderService := orders.NewOrderService(
		deps.orders,
		deps.addresses,
		deps.customers,
		newEventPublisher(producer, cfg.KafkaTopic, logger),
		metrics.NewShippingMetrics(),
		logger.WithField("layer", "service"),
	)

	healthHandler := newHealthHandler(deps.storageChecker)

	var metricsSrv *http.Server
	if cfg.MetricsAddr != "" {
		metricsSrv = startMetricsServer(ctx, cfg.MetricsAddr, logger, healthHandler)
	}
	defer shutdownHTTP(metricsSrv, logger)

	menu := shell.New(orderService, in, out, logger.WithField("layer", "shell"))

	doneCh := make(chan error, 1)
	go func() {
		doneCh <- menu.Run(ctx)
	}()

	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки")
		return ctx.Err()
	case err := <-doneCh:
		return err
	}
}

// newHealthHandler собирает health handler с проверкой хранилища.
func newHealthHandler(storageChecker healthcheck.Checker) *healthcheck.Handler {
	handler := healthcheck.NewHandler(version.GetVersion())
	handler.RegisterChecker("storage", storageChecker)
	return handler
}

// startMetricsServer запускает HTTP-обработчик /metrics и health checks.
func startMetricsServer(ctx context.Context, addr string, logger *log.Entry, healthHandler *healthcheck.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/livez", healthcheck.LivenessHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		logger.Infof("health checks: %s/healthz, %s/livez, %s/readyz", addr, addr, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("metrics server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, logger)
	}()

	return srv
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("metrics shutdown with error")
	}
}
