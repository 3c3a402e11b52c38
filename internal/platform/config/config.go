package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage drivers accepted by STORAGE_DRIVER.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Audit sinks accepted by AUDIT_SINK.
const (
	AuditSinkLog   = "log"
	AuditSinkKafka = "kafka"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool
	StorageDriver string

	JWTSecret         string
	JWTExpiryDuration time.Duration
	JWTIssuer         string

	AuthorizerURL                 string
	AuthorizerTimeout             time.Duration
	AuthorizerAvailabilityTimeout time.Duration
	AuthorizerBreakerFailures     uint32
	AuthorizerBreakerOpenTimeout  time.Duration

	NotifierURL         string
	NotifierTimeout     time.Duration
	NotifierWorkers     int
	NotifierQueueSize   int
	NotifierMaxAttempts int

	RedisURL       string
	IdempotencyTTL time.Duration

	AuditSink       string
	KafkaBrokers    []string
	KafkaAuditTopic string

	PendingTTL           time.Duration
	PendingSweepInterval time.Duration

	LoginRateLimit     string // ulule/limiter format, e.g. "5-M"
	CORSAllowedOrigins []string
	DebugErrors        bool
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("ENABLE_DB_CHECK", true)
	v.SetDefault("STORAGE_DRIVER", StoragePostgres)
	v.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	v.SetDefault("JWT_EXPIRY_DURATION", "1h")
	v.SetDefault("JWT_ISSUER", "payflow-backend")
	v.SetDefault("AUTHORIZER_URL", "https://util.devi.tools/api/v2/authorize")
	v.SetDefault("AUTHORIZER_TIMEOUT", "5s")
	v.SetDefault("AUTHORIZER_AVAILABILITY_TIMEOUT", "3s")
	v.SetDefault("AUTHORIZER_BREAKER_FAILURES", 5)
	v.SetDefault("AUTHORIZER_BREAKER_OPEN_TIMEOUT", "30s")
	v.SetDefault("NOTIFIER_URL", "https://util.devi.tools/api/v1/notify")
	v.SetDefault("NOTIFIER_TIMEOUT", "5s")
	v.SetDefault("NOTIFIER_WORKERS", 4)
	v.SetDefault("NOTIFIER_QUEUE_SIZE", 1024)
	v.SetDefault("NOTIFIER_MAX_ATTEMPTS", 3)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("IDEMPOTENCY_TTL", "24h")
	v.SetDefault("AUDIT_SINK", AuditSinkLog)
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("KAFKA_AUDIT_TOPIC", "payflow.audit")
	v.SetDefault("PENDING_TTL", "2m")
	v.SetDefault("PENDING_SWEEP_INTERVAL", "30s")
	v.SetDefault("LOGIN_RATE_LIMIT", "5-M")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("DEBUG_ERRORS", false)
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()
	return loadFrom(viper.GetViper())
}

func loadFrom(v *viper.Viper) (*Config, error) {
	setDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		DatabaseURL:         v.GetString("PGSQL_URL"),
		Port:                v.GetString("PORT"),
		IsProduction:        v.GetBool("IS_PRODUCTION"),
		EnableDBCheck:       v.GetBool("ENABLE_DB_CHECK"),
		StorageDriver:       strings.ToLower(v.GetString("STORAGE_DRIVER")),
		JWTSecret:           v.GetString("JWT_SECRET"),
		JWTIssuer:           v.GetString("JWT_ISSUER"),
		AuthorizerURL:       v.GetString("AUTHORIZER_URL"),
		NotifierURL:         v.GetString("NOTIFIER_URL"),
		NotifierWorkers:     v.GetInt("NOTIFIER_WORKERS"),
		NotifierQueueSize:   v.GetInt("NOTIFIER_QUEUE_SIZE"),
		NotifierMaxAttempts: v.GetInt("NOTIFIER_MAX_ATTEMPTS"),
		RedisURL:            v.GetString("REDIS_URL"),
		AuditSink:           strings.ToLower(v.GetString("AUDIT_SINK")),
		KafkaBrokers:        splitList(v.GetString("KAFKA_BROKERS")),
		KafkaAuditTopic:     v.GetString("KAFKA_AUDIT_TOPIC"),
		LoginRateLimit:      v.GetString("LOGIN_RATE_LIMIT"),
		CORSAllowedOrigins:  splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		DebugErrors:         v.GetBool("DEBUG_ERRORS"),
	}
	cfg.AuthorizerBreakerFailures = v.GetUint32("AUTHORIZER_BREAKER_FAILURES")

	durations := []struct {
		key      string
		target   *time.Duration
		fallback time.Duration
	}{
		{"JWT_EXPIRY_DURATION", &cfg.JWTExpiryDuration, time.Hour},
		{"AUTHORIZER_TIMEOUT", &cfg.AuthorizerTimeout, 5 * time.Second},
		{"AUTHORIZER_AVAILABILITY_TIMEOUT", &cfg.AuthorizerAvailabilityTimeout, 3 * time.Second},
		{"AUTHORIZER_BREAKER_OPEN_TIMEOUT", &cfg.AuthorizerBreakerOpenTimeout, 30 * time.Second},
		{"NOTIFIER_TIMEOUT", &cfg.NotifierTimeout, 5 * time.Second},
		{"IDEMPOTENCY_TTL", &cfg.IdempotencyTTL, 24 * time.Hour},
		{"PENDING_TTL", &cfg.PendingTTL, 2 * time.Minute},
		{"PENDING_SWEEP_INTERVAL", &cfg.PendingSweepInterval, 30 * time.Second},
	}
	for _, d := range durations {
		raw := v.GetString(d.key)
		parsed, err := time.ParseDuration(raw)
		if err != nil || parsed <= 0 {
			slog.Warn("Invalid duration, using default",
				slog.String("key", d.key), slog.String("value", raw), slog.String("default", d.fallback.String()))
			parsed = d.fallback
		}
		*d.target = parsed
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.NotifierWorkers <= 0 {
		cfg.NotifierWorkers = 1
	}
	if cfg.NotifierQueueSize <= 0 {
		cfg.NotifierQueueSize = 1
	}
	if cfg.NotifierMaxAttempts <= 0 {
		cfg.NotifierMaxAttempts = 1
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StorageDriver {
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("PGSQL_URL is required when STORAGE_DRIVER=%s", StoragePostgres)
		}
	case StorageMemory:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}

	switch c.AuditSink {
	case AuditSinkLog:
	case AuditSinkKafka:
		if len(c.KafkaBrokers) == 0 {
			return fmt.Errorf("KAFKA_BROKERS is required when AUDIT_SINK=%s", AuditSinkKafka)
		}
	default:
		return fmt.Errorf("unknown AUDIT_SINK %q", c.AuditSink)
	}

	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must not be empty")
	}
	if c.IsProduction && c.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		return fmt.Errorf("JWT_SECRET must be changed in production")
	}
	if c.AuthorizerURL == "" || c.NotifierURL == "" {
		return fmt.Errorf("AUTHORIZER_URL and NOTIFIER_URL are required")
	}
	return nil
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
