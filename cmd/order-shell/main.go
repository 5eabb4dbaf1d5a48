package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/acdshop/internal/app"
	"github.com/vladislavdragonenkov/acdshop/internal/version"
)

// setupLogger настраивает формат и уровень логирования.
// Логи идут в stderr, чтобы не смешиваться с меню в stdout.
func setupLogger(level string) {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	parsed, err := log.ParseLevel(level)
	if err != nil {
		parsed = log.InfoLevel
	}
	log.SetLevel(parsed)
}

func main() {
	cfg, warnings, err := app.LoadConfig(os.LookupEnv)
	if err != nil {
		setupLogger("info")
		log.WithError(err).Fatal("некорректная конфигурация")
	}
	setupLogger(cfg.LogLevel)
	for _, warning := range warnings {
		log.Warn(warning)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithFields(log.Fields{
		"version":        version.GetVersion(),
		"storage_driver": cfg.StorageDriver,
		"metrics_addr":   cfg.MetricsAddr,
		"kafka_enabled":  cfg.KafkaBrokers != "",
	}).Info("запускаем order shell")

	if err := app.Run(ctx, cfg, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Fatal("приложение завершилось с ошибкой")
	}

	log.Info("order shell остановлен")
}
