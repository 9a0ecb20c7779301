// Package config loads process configuration from the environment. A .env
// file in the working directory is read first when present; real environment
// variables win over it.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"bloodlink/pkg/platform/strings"
)

// Config is the full process configuration.
type Config struct {
	Server     Server
	Postgres   PostgresConfig
	Redis      RedisConfig
	Kafka      KafkaConfig
	Escalation EscalationConfig
	Dispatch   DispatchConfig
	Admin      AdminConfig
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr        string `env:"BLOODLINK_ADDR" envDefault:":8080"`
	Environment string `env:"BLOODLINK_ENV" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
}

// IsProduction reports whether the service runs with production defaults.
func (s Server) IsProduction() bool {
	return s.Environment == "production"
}

// PostgresConfig selects the postgres store. An empty URL selects the
// in-memory store.
type PostgresConfig struct {
	URL             string        `env:"DATABASE_URL"`
	MaxOpenConns    int           `env:"DATABASE_MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns    int           `env:"DATABASE_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"DATABASE_CONN_MAX_LIFETIME" envDefault:"30m"`
	RunMigrations   bool          `env:"RUN_MIGRATIONS" envDefault:"true"`
}

// RedisConfig selects the shared match generation counter. An empty URL
// keeps generations in process memory.
type RedisConfig struct {
	URL          string        `env:"REDIS_URL"`
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

// KafkaConfig selects the Kafka notification gateway. No brokers means
// notifications are only logged.
type KafkaConfig struct {
	Brokers           []string `env:"KAFKA_BROKERS" envSeparator:","`
	ClientID          string   `env:"KAFKA_CLIENT_ID" envDefault:"bloodlink"`
	DonorTopic        string   `env:"KAFKA_DONOR_TOPIC" envDefault:"bloodlink.donor-notifications"`
	AuthoritiesTopic  string   `env:"KAFKA_AUTHORITIES_TOPIC" envDefault:"bloodlink.authority-notifications"`
	CreateTopics      bool     `env:"KAFKA_CREATE_TOPICS" envDefault:"false"`
	TopicPartitions   int32    `env:"KAFKA_TOPIC_PARTITIONS" envDefault:"3"`
	ReplicationFactor int16    `env:"KAFKA_REPLICATION_FACTOR" envDefault:"1"`
}

// Enabled reports whether a broker is configured.
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

// EscalationConfig holds the escalation monitor's timing and bounds.
type EscalationConfig struct {
	SweepInterval         time.Duration `env:"SWEEP_INTERVAL" envDefault:"5m"`
	CriticalResponseTime  time.Duration `env:"CRITICAL_RESPONSE_TIME" envDefault:"30m"`
	EscalationTime        time.Duration `env:"ESCALATION_TIME" envDefault:"60m"`
	EmergencyRadiusKm     float64       `env:"EMERGENCY_RADIUS_KM" envDefault:"200"`
	LowStockDonorRadiusKm float64       `env:"LOW_STOCK_DONOR_RADIUS_KM" envDefault:"50"`
	RetryBatchSize        int           `env:"RETRY_BATCH_SIZE" envDefault:"20"`
	MaxProactiveDonors    int           `env:"MAX_PROACTIVE_DONORS" envDefault:"10"`
}

// DispatchConfig tunes the dispatch circuit breaker.
type DispatchConfig struct {
	BreakerThreshold int           `env:"DISPATCH_BREAKER_THRESHOLD" envDefault:"5"`
	BreakerCooldown  time.Duration `env:"DISPATCH_BREAKER_COOLDOWN" envDefault:"1m"`
}

// AdminConfig protects the operator endpoints. An empty secret disables them.
type AdminConfig struct {
	JWTSecret string `env:"ADMIN_JWT_SECRET"`
	Issuer    string `env:"ADMIN_JWT_ISSUER" envDefault:"bloodlink-ops"`
}

// FromEnv loads .env when present and parses the environment into a Config.
func FromEnv() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	cfg.Kafka.Brokers = strings.DedupeAndTrim(cfg.Kafka.Brokers)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values the services cannot run with.
func (c *Config) Validate() error {
	e := c.Escalation
	switch {
	case e.SweepInterval <= 0:
		return errors.New("SWEEP_INTERVAL must be positive")
	case e.CriticalResponseTime <= 0:
		return errors.New("CRITICAL_RESPONSE_TIME must be positive")
	case e.EscalationTime <= 0:
		return errors.New("ESCALATION_TIME must be positive")
	case e.EmergencyRadiusKm <= 0 || e.LowStockDonorRadiusKm <= 0:
		return errors.New("escalation radii must be positive")
	case e.RetryBatchSize <= 0:
		return errors.New("RETRY_BATCH_SIZE must be positive")
	case e.MaxProactiveDonors < 0:
		return errors.New("MAX_PROACTIVE_DONORS must not be negative")
	}
	if c.Dispatch.BreakerThreshold <= 0 {
		return errors.New("DISPATCH_BREAKER_THRESHOLD must be positive")
	}
	if c.Server.IsProduction() && c.Admin.JWTSecret != "" && len(c.Admin.JWTSecret) < 32 {
		return errors.New("ADMIN_JWT_SECRET must be at least 32 bytes in production")
	}
	return nil
}
