package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	log "github.com/sirupsen/logrus"
)

// Config holds all configuration for the application
type Config struct {
	App       AppConfig
	DB        DBConfig
	Redis     RedisConfig
	JWT       JWTConfig
	MinIO     MinIOConfig
	CORS      CORSConfig
	Firebase  FirebaseConfig
	NATS      NATSConfig
	Fanout    FanoutConfig
	Scheduler SchedulerConfig
	Discovery DiscoveryConfig
	OTEL      OTELConfig
}

type AppConfig struct {
	Env      string `envconfig:"APP_ENV" default:"development"`
	Port     string `envconfig:"APP_PORT" default:"8080"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// IsProduction reports whether the app runs with production settings
func (a AppConfig) IsProduction() bool {
	return a.Env == "production"
}

type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"kickoff"`
	Password string `envconfig:"DB_PASSWORD" default:"kickoff"`
	Name     string `envconfig:"DB_NAME" default:"kickoff"`
	SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	TimeZone string `envconfig:"DB_TIMEZONE" default:"UTC"`
}

// DSN returns the PostgreSQL connection string
func (d DBConfig) DSN() string {
	return "host=" + d.Host +
		" user=" + d.User +
		" password=" + d.Password +
		" dbname=" + d.Name +
		" port=" + d.Port +
		" sslmode=" + d.SSLMode +
		" TimeZone=" + d.TimeZone
}

// URL returns the PostgreSQL connection URL (for golang-migrate)
func (d DBConfig) URL() string {
	return "postgres://" + d.User + ":" + d.Password +
		"@" + d.Host + ":" + d.Port +
		"/" + d.Name + "?sslmode=" + d.SSLMode
}

type RedisConfig struct {
	Host     string `envconfig:"REDIS_HOST" default:"localhost"`
	Port     string `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD" default:""`
}

// Addr returns the Redis address
func (r RedisConfig) Addr() string {
	return r.Host + ":" + r.Port
}

type JWTConfig struct {
	Secret string        `envconfig:"JWT_SECRET" default:"default-secret"`
	Issuer string        `envconfig:"JWT_ISSUER" default:"kickoff"`
	Expiry time.Duration `envconfig:"JWT_EXPIRY" default:"24h"`
}

type MinIOConfig struct {
	Endpoint  string `envconfig:"MINIO_ENDPOINT" default:"localhost:9000"`
	PublicURL string `envconfig:"MINIO_PUBLIC_URL" default:""`
	AccessKey string `envconfig:"MINIO_ACCESS_KEY" default:"minioadmin"`
	SecretKey string `envconfig:"MINIO_SECRET_KEY" default:"minioadmin"`
	Bucket    string `envconfig:"MINIO_BUCKET" default:"kickoff-media"`
	UseSSL    bool   `envconfig:"MINIO_USE_SSL" default:"false"`
}

type CORSConfig struct {
	Origins []string `envconfig:"CORS_ORIGINS" default:"http://localhost:3000"`
}

type FirebaseConfig struct {
	CredentialsFile string `envconfig:"FIREBASE_CREDENTIALS_FILE" default:""`
}

// Enabled reports whether push delivery is configured
func (f FirebaseConfig) Enabled() bool {
	return f.CredentialsFile != ""
}

type NATSConfig struct {
	URL   string `envconfig:"NATS_URL" default:""`
	Token string `envconfig:"NATS_TOKEN" default:""`
}

// Enabled reports whether events go through NATS instead of the in-process bus
func (n NATSConfig) Enabled() bool {
	return n.URL != ""
}

type FanoutConfig struct {
	Concurrency int           `envconfig:"FANOUT_CONCURRENCY" default:"8"`
	Timeout     time.Duration `envconfig:"FANOUT_TIMEOUT" default:"5s"`
}

type SchedulerConfig struct {
	Interval time.Duration `envconfig:"SCHEDULER_INTERVAL" default:"1m"`
}

type DiscoveryConfig struct {
	DefaultRadiusKm float64 `envconfig:"DISCOVERY_DEFAULT_RADIUS_KM" default:"5"`
	MaxRadiusKm     float64 `envconfig:"DISCOVERY_MAX_RADIUS_KM" default:"100"`
}

type OTELConfig struct {
	Endpoint    string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT" default:""`
	ServiceName string `envconfig:"OTEL_SERVICE_NAME" default:"kickoff-api"`
}

// Enabled reports whether traces are exported
func (o OTELConfig) Enabled() bool {
	return o.Endpoint != ""
}

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// Load .env file (ignore error if not exists - e.g. in Docker)
	if err := godotenv.Load(); err != nil {
		log.Warn("⚠️  No .env file found, reading from environment variables")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Fanout.Concurrency < 1 {
		return fmt.Errorf("FANOUT_CONCURRENCY must be positive, got %d", c.Fanout.Concurrency)
	}
	if c.Fanout.Timeout <= 0 {
		return fmt.Errorf("FANOUT_TIMEOUT must be positive, got %s", c.Fanout.Timeout)
	}
	if c.Discovery.DefaultRadiusKm <= 0 || c.Discovery.DefaultRadiusKm > c.Discovery.MaxRadiusKm {
		return fmt.Errorf("DISCOVERY_DEFAULT_RADIUS_KM must be in (0, %v]", c.Discovery.MaxRadiusKm)
	}
	if c.App.IsProduction() && c.JWT.Secret == "default-secret" {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}
	return nil
}
