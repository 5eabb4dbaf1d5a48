package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Поддерживаемые драйверы хранилища.
const (
	StorageDriverMemory   = "memory"
	StorageDriverPostgres = "postgres"
)

// Переменные окружения, переопределяющие конфигурацию.
const (
	EnvConfigFile          = "ACD_CONFIG_FILE"
	EnvMetricsAddr         = "ACD_METRICS_ADDR"
	EnvStorageDriver       = "ACD_STORAGE_DRIVER"
	EnvPostgresDSN         = "ACD_POSTGRES_DSN"
	EnvPostgresAutoMigrate = "ACD_POSTGRES_AUTO_MIGRATE"
	EnvSeedDemoData        = "ACD_SEED_DEMO_DATA"
	EnvKafkaBrokers        = "ACD_KAFKA_BROKERS"
	EnvKafkaTopic          = "ACD_KAFKA_TOPIC"
	EnvLogLevel            = "ACD_LOG_LEVEL"
)

// Config описывает настройки запуска приложения.
type Config struct {
	// MetricsAddr — адрес HTTP-сервера /metrics и health checks; пустая строка отключает сервер.
	MetricsAddr string `yaml:"metrics_addr"`

	StorageDriver       string `yaml:"storage_driver"`
	PostgresDSN         string `yaml:"postgres_dsn"`
	PostgresAutoMigrate bool   `yaml:"postgres_auto_migrate"`
	// SeedDemoData наполняет in-memory хранилище демонстрационными данными.
	SeedDemoData bool `yaml:"seed_demo_data"`

	// KafkaBrokers — список брокеров через запятую; пустой список отключает публикацию событий.
	KafkaBrokers string `yaml:"kafka_brokers"`
	KafkaTopic   string `yaml:"kafka_topic"`

	LogLevel string `yaml:"log_level"`
}

// DefaultConfig возвращает конфигурацию для локального запуска.
func DefaultConfig() Config {
	return Config{
		MetricsAddr:         ":9090",
		StorageDriver:       StorageDriverMemory,
		PostgresAutoMigrate: true,
		SeedDemoData:        true,
		KafkaTopic:          "acdshop.order.events",
		LogLevel:            "info",
	}
}

// Validate проверяет согласованность настроек.
func (c Config) Validate() error {
	switch c.StorageDriver {
	case StorageDriverMemory:
	case StorageDriverPostgres:
		if strings.TrimSpace(c.PostgresDSN) == "" {
			return errors.New("postgres storage requires a DSN")
		}
	default:
		return fmt.Errorf("unsupported storage driver %q (use %s|%s)", c.StorageDriver, StorageDriverMemory, StorageDriverPostgres)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	return nil
}

// EnvLookup — источник переменных окружения, совместимый с os.LookupEnv.
type EnvLookup func(key string) (string, bool)

// LoadConfig собирает конфигурацию: значения по умолчанию, затем YAML-файл
// из ACD_CONFIG_FILE, затем переменные окружения. Некорректные значения
// переменных не прерывают загрузку: они возвращаются как предупреждения,
// а поле сохраняет предыдущее значение.
func LoadConfig(lookup EnvLookup) (Config, []string, error) {
	cfg := DefaultConfig()

	if path, ok := lookupTrimmed(lookup, EnvConfigFile); ok {
		if err := readConfigFile(path, &cfg); err != nil {
			return Config{}, nil, err
		}
	}

	warnings := applyEnv(&cfg, lookup)

	if err := cfg.Validate(); err != nil {
		return Config{}, warnings, err
	}
	return cfg, warnings, nil
}

func readConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config, lookup EnvLookup) []string {
	var warnings []string

	if v, ok := lookupTrimmed(lookup, EnvMetricsAddr); ok {
		cfg.MetricsAddr = v
	}
	if v, ok := lookupTrimmed(lookup, EnvStorageDriver); ok {
		cfg.StorageDriver = strings.ToLower(v)
	}
	if v, ok := lookupTrimmed(lookup, EnvPostgresDSN); ok {
		cfg.PostgresDSN = v
	}
	if v, ok := lookupTrimmed(lookup, EnvPostgresAutoMigrate); ok {
		if parsed, err := parseBool(v); err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v", EnvPostgresAutoMigrate, err))
		} else {
			cfg.PostgresAutoMigrate = parsed
		}
	}
	if v, ok := lookupTrimmed(lookup, EnvSeedDemoData); ok {
		if parsed, err := parseBool(v); err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v", EnvSeedDemoData, err))
		} else {
			cfg.SeedDemoData = parsed
		}
	}
	if v, ok := lookupTrimmed(lookup, EnvKafkaBrokers); ok {
		cfg.KafkaBrokers = v
	}
	if v, ok := lookupTrimmed(lookup, EnvKafkaTopic); ok {
		cfg.KafkaTopic = v
	}
	if v, ok := lookupTrimmed(lookup, EnvLogLevel); ok {
		if _, err := log.ParseLevel(v); err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v", EnvLogLevel, err))
		} else {
			cfg.LogLevel = strings.ToLower(v)
		}
	}

	return warnings
}

// lookupTrimmed возвращает значение переменной без пробелов; пустое значение считается отсутствующим.
func lookupTrimmed(lookup EnvLookup, key string) (string, bool) {
	if lookup == nil {
		return "", false
	}
	v, ok := lookup(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func parseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "y", "on":
		return true, nil
	case "0", "false", "no", "n", "off":
		return false, nil
	default:
		if v, err := strconv.ParseBool(raw); err == nil {
			return v, nil
		}
		return false, fmt.Errorf("invalid boolean value %q", raw)
	}
}

// brokerList разбирает список брокеров через запятую.
func brokerList(raw string) []string {
	parts := strings.Split(raw, ",")
	brokers := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			brokers = append(brokers, part)
		}
	}
	return brokers
}
