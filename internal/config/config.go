package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Record store backends.
const (
	StoreSQLite = "sqlite"
	StoreGCal   = "gcal"
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

	// Tide computation.
	ConfigFile       string
	HarmonicsDir     string
	SampleInterval   time.Duration
	PeriodWindowDays int

	// Record store.
	RecordStore  string
	SQLitePath   string
	GCalBaseURL  string
	GCalCalendar string
	GCalToken    string
	GCalTimeout  time.Duration

	// Mapbox geocoding configuration.
	MapboxToken     string
	MapboxEnabled   bool
	MapboxTimeout   time.Duration
	MapboxCacheSize int
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

	mapboxTimeout, err := parsePositiveDuration("MAPBOX_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}
	gcalTimeout, err := parsePositiveDuration("GCAL_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	sampleInterval, err := parsePositiveDuration("SAMPLE_INTERVAL", "10m")
	if err != nil {
		return nil, err
	}

	windowDays, err := parsePeriodWindowDays()
	if err != nil {
		return nil, err
	}

	mapboxToken := os.Getenv("MAPBOX_TOKEN")
	mapboxEnabled := mapboxToken != ""
	if v := os.Getenv("MAPBOX_ENABLED"); v != "" {
		mapboxEnabled = v == "true"
	}

	cfg := &Config{
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   sharedcfg.EnvOrDefault("KAFKA_SOURCE_TOPIC", "tide-sync-requests"),
		KafkaSinkTopic:     sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "tide-day-summaries"),
		KafkaGroupID:       sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "tide-calendar-sync"),
		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,

		ConfigFile:       sharedcfg.EnvOrDefault("TIDE_CONFIG_FILE", "config/tidesync.yaml"),
		HarmonicsDir:     sharedcfg.EnvOrDefault("HARMONICS_DIR", "config/harmonics"),
		SampleInterval:   sampleInterval,
		PeriodWindowDays: windowDays,

		RecordStore:  sharedcfg.EnvOrDefault("RECORD_STORE", StoreSQLite),
		SQLitePath:   sharedcfg.EnvOrDefault("SQLITE_PATH", "data/tidesync.db"),
		GCalBaseURL:  sharedcfg.EnvOrDefault("GCAL_BASE_URL", "https://www.googleapis.com/calendar/v3"),
		GCalCalendar: os.Getenv("GCAL_CALENDAR_ID"),
		GCalToken:    os.Getenv("GCAL_TOKEN"),
		GCalTimeout:  gcalTimeout,

		MapboxToken:     mapboxToken,
		MapboxEnabled:   mapboxEnabled,
		MapboxTimeout:   mapboxTimeout,
		MapboxCacheSize: parseMapboxCacheSize(),
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
	switch cfg.RecordStore {
	case StoreSQLite:
		if cfg.SQLitePath == "" {
			return nil, errors.New("SQLITE_PATH is required")
		}
	case StoreGCal:
		if cfg.GCalCalendar == "" {
			return nil, errors.New("GCAL_CALENDAR_ID is required")
		}
		if cfg.GCalToken == "" {
			return nil, errors.New("GCAL_TOKEN is required")
		}
	default:
		return nil, fmt.Errorf("invalid RECORD_STORE %q", cfg.RecordStore)
	}
	if cfg.MapboxEnabled && cfg.MapboxToken == "" {
		return nil, errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
	}

	return cfg, nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePeriodWindowDays() (int, error) {
	s := sharedcfg.EnvOrDefault("PERIOD_WINDOW_DAYS", "7")
	n, err := strconv.Atoi(s)
	if err != nil || n < 3 {
		return 0, errors.New("invalid PERIOD_WINDOW_DAYS: must be an integer >= 3")
	}
	return n, nil
}

func parseMapboxCacheSize() int {
	if s := os.Getenv("MAPBOX_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}
