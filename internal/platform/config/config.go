package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store drivers accepted by STORE_DRIVER.
const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// Config holds application configuration.
type Config struct {
	Port          string
	IsProduction  bool
	LogLevel      string
	DatabaseURL   string
	StoreDriver   string
	EnableDBCheck bool
	// MigrationsPath is a golang-migrate source URL such as file://migrations.
	MigrationsPath string

	SupportedCurrencies []string

	// Bundesbank source
	BundesbankBaseURL      string
	BundesbankFormatSuffix string
	BundesbankTimeout      time.Duration

	// Source resilience
	SourceMaxConcurrent     int64
	SourceMaxWait           time.Duration
	SourceRetryAttempts     int
	SourceRetryInitial      time.Duration
	SourceRetryMax          time.Duration
	BreakerFailureThreshold uint32
	BreakerOpenTimeout      time.Duration
	BreakerHalfOpenMax      uint32

	IngestLockTimeout time.Duration
	RefreshCron       string
	RefreshEnabled    bool

	RateLimit          string
	CORSAllowedOrigins []string

	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	setDefaults()
	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.Port = viper.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.LogLevel = viper.GetString("LOG_LEVEL")

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(viper.GetString("STORE_DRIVER")))
	switch cfg.StoreDriver {
	case StoreDriverPostgres, StoreDriverMemory:
	default:
		log.Printf("Warning: Invalid value for STORE_DRIVER ('%s'). Defaulting to %s.\n", cfg.StoreDriver, StoreDriverPostgres)
		cfg.StoreDriver = StoreDriverPostgres
	}
	if cfg.StoreDriver == StoreDriverPostgres && cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")
	cfg.MigrationsPath = viper.GetString("MIGRATIONS_PATH")

	cfg.SupportedCurrencies = normalizeCurrencies(splitList(viper.GetString("SUPPORTED_CURRENCIES")))
	if len(cfg.SupportedCurrencies) == 0 {
		log.Println("Warning: SUPPORTED_CURRENCIES is empty. Scheduled and bulk ingestion will do nothing.")
	}

	cfg.BundesbankBaseURL = strings.TrimRight(viper.GetString("BUNDESBANK_BASE_URL"), "/")
	cfg.BundesbankFormatSuffix = viper.GetString("BUNDESBANK_FORMAT_SUFFIX")
	cfg.BundesbankTimeout = durationOrDefault("BUNDESBANK_TIMEOUT", 10*time.Second)

	cfg.SourceMaxConcurrent = int64(positiveIntOrDefault("SOURCE_MAX_CONCURRENT", 4))
	cfg.SourceMaxWait = durationOrDefault("SOURCE_MAX_WAIT", 2*time.Second)
	cfg.SourceRetryAttempts = positiveIntOrDefault("SOURCE_RETRY_ATTEMPTS", 3)
	cfg.SourceRetryInitial = durationOrDefault("SOURCE_RETRY_INITIAL", 500*time.Millisecond)
	cfg.SourceRetryMax = durationOrDefault("SOURCE_RETRY_MAX", 5*time.Second)
	cfg.BreakerFailureThreshold = uint32(positiveIntOrDefault("BREAKER_FAILURE_THRESHOLD", 5))
	cfg.BreakerOpenTimeout = durationOrDefault("BREAKER_OPEN_TIMEOUT", 30*time.Second)
	cfg.BreakerHalfOpenMax = uint32(positiveIntOrDefault("BREAKER_HALF_OPEN_MAX", 1))

	cfg.IngestLockTimeout = durationOrDefault("INGEST_LOCK_TIMEOUT", 15*time.Second)
	cfg.RefreshCron = viper.GetString("REFRESH_CRON")
	cfg.RefreshEnabled = viper.GetBool("REFRESH_ENABLED")

	cfg.RateLimit = viper.GetString("RATE_LIMIT")
	cfg.CORSAllowedOrigins = splitList(viper.GetString("CORS_ALLOWED_ORIGINS"))

	cfg.KafkaEnabled = viper.GetBool("KAFKA_ENABLED")
	cfg.KafkaBrokers = splitList(viper.GetString("KAFKA_BROKERS"))
	cfg.KafkaTopic = viper.GetString("KAFKA_TOPIC")
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		log.Println("Warning: KAFKA_ENABLED is set but KAFKA_BROKERS is empty. Events will not be published.")
		cfg.KafkaEnabled = false
	}

	return cfg, nil
}

func setDefaults() {
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("STORE_DRIVER", StoreDriverPostgres)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("MIGRATIONS_PATH", "file://migrations")
	viper.SetDefault("SUPPORTED_CURRENCIES", "USD,GBP,JPY,CHF")
	viper.SetDefault("BUNDESBANK_BASE_URL", "https://api.statistiken.bundesbank.de/rest/data/BBEX3")
	viper.SetDefault("BUNDESBANK_FORMAT_SUFFIX", "EUR.BB.AC.000?format=csv&lang=en")
	viper.SetDefault("BUNDESBANK_TIMEOUT", "10s")
	viper.SetDefault("SOURCE_MAX_CONCURRENT", 4)
	viper.SetDefault("SOURCE_MAX_WAIT", "2s")
	viper.SetDefault("SOURCE_RETRY_ATTEMPTS", 3)
	viper.SetDefault("SOURCE_RETRY_INITIAL", "500ms")
	viper.SetDefault("SOURCE_RETRY_MAX", "5s")
	viper.SetDefault("BREAKER_FAILURE_THRESHOLD", 5)
	viper.SetDefault("BREAKER_OPEN_TIMEOUT", "30s")
	viper.SetDefault("BREAKER_HALF_OPEN_MAX", 1)
	viper.SetDefault("INGEST_LOCK_TIMEOUT", "15s")
	viper.SetDefault("REFRESH_CRON", "0 30 16 * * MON-FRI")
	viper.SetDefault("REFRESH_ENABLED", true)
	viper.SetDefault("RATE_LIMIT", "100-M")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	viper.SetDefault("KAFKA_ENABLED", false)
	viper.SetDefault("KAFKA_BROKERS", "")
	viper.SetDefault("KAFKA_TOPIC", "fx.rates.ingested")
}

func durationOrDefault(key string, def time.Duration) time.Duration {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, def.String())
		}
		return def
	}
	return d
}

func positiveIntOrDefault(key string, def int) int {
	v := viper.GetInt(key)
	if v <= 0 {
		log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %d.\n", key, viper.GetString(key), def)
		return def
	}
	return v
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func normalizeCurrencies(codes []string) []string {
	seen := make(map[string]struct{}, len(codes))
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		c = strings.ToUpper(c)
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
