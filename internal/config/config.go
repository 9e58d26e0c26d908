package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/couchcryptid/storm-hydrograph-service/internal/domain"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers     []string
	KafkaSourceTopic string
	KafkaSinkTopic   string
	KafkaGroupID     string
	HTTPAddr         string
	LogLevel         string
	LogFormat        string
	ShutdownTimeout  time.Duration

	BatchSize          int
	BatchFlushInterval time.Duration

	// Run defaults; requests may override them.
	OutputIntervalMinutes float64
	RoundingDecimals      int
	CurveConstant         float64
	StepFraction          float64
	Workers               int

	// Result cache. Redis is used when RedisURL is set, otherwise an in-process
	// LRU of ResultCacheSize entries (0 disables caching).
	RedisURL        string
	ResultCacheSize int
	ResultCacheTTL  time.Duration

	// Run archive, enabled when set.
	DatabaseURL string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	defaults := domain.DefaultSettings()
	cfg := &Config{
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   sharedcfg.EnvOrDefault("KAFKA_SOURCE_TOPIC", "hydrograph-requests"),
		KafkaSinkTopic:     sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "hydrograph-results"),
		KafkaGroupID:       sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "storm-hydrograph"),
		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,

		RedisURL:    os.Getenv("REDIS_URL"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
	}

	if cfg.OutputIntervalMinutes, err = parseFloat("OUTPUT_INTERVAL_MINUTES", defaults.OutputIntervalMinutes); err != nil {
		return nil, err
	}
	if cfg.RoundingDecimals, err = parseInt("ROUNDING_DECIMALS", defaults.Decimals); err != nil {
		return nil, err
	}
	if cfg.CurveConstant, err = parseFloat("UH_CURVE_CONSTANT", defaults.CurveConstant); err != nil {
		return nil, err
	}
	if cfg.StepFraction, err = parseFloat("UH_STEP_FRACTION", defaults.StepFraction); err != nil {
		return nil, err
	}
	if cfg.Workers, err = parseInt("WORKERS", runtime.GOMAXPROCS(0)); err != nil {
		return nil, err
	}
	if cfg.ResultCacheSize, err = parseInt("RESULT_CACHE_SIZE", 256); err != nil {
		return nil, err
	}
	if cfg.ResultCacheTTL, err = parseDuration("RESULT_CACHE_TTL", 24*time.Hour); err != nil {
		return nil, err
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSourceTopic == "" {
		return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
	}
	if cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}
	if cfg.Workers < 1 {
		return nil, errors.New("invalid WORKERS: must be at least 1")
	}
	if cfg.ResultCacheSize < 0 {
		return nil, errors.New("invalid RESULT_CACHE_SIZE: must not be negative")
	}
	if err := cfg.validateSettings(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Settings returns the run defaults as engine settings.
func (c *Config) Settings() domain.Settings {
	return domain.Settings{
		OutputIntervalMinutes: c.OutputIntervalMinutes,
		Decimals:              c.RoundingDecimals,
		CurveConstant:         c.CurveConstant,
		StepFraction:          c.StepFraction,
	}
}

var settingsEnv = map[string]string{
	"output_interval_minutes": "OUTPUT_INTERVAL_MINUTES",
	"decimals":                "ROUNDING_DECIMALS",
	"curve_constant":          "UH_CURVE_CONSTANT",
	"step_fraction":           "UH_STEP_FRACTION",
}

func (c *Config) validateSettings() error {
	err := c.Settings().Validate()
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return fmt.Errorf("invalid %s: %s", settingsEnv[ve.Field], ve.Reason)
	}
	return err
}

func parseFloat(name string, def float64) (float64, error) {
	s := os.Getenv(name)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	return v, nil
}

func parseInt(name string, def int) (int, error) {
	s := os.Getenv(name)
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	return v, nil
}

func parseDuration(name string, def time.Duration) (time.Duration, error) {
	s := os.Getenv(name)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive duration", name)
	}
	return d, nil
}
