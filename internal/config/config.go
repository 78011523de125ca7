package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	ServiceName    = "warehouse"
	ServiceVersion = "0.1.0"
)

const (
	defaultHTTPAddr     = ":8080"
	defaultGRPCAddr     = ":50051"
	defaultLogLevel     = "info"
	defaultLogFormat    = "json"
	defaultKafkaTopic   = "warehouse.sales"
	defaultGuardKey     = "warehouse:sale:in-progress"
	defaultNotifyBuffer = 100
)

type Config struct {
	API       APIConfig       `yaml:"api"`
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Redis     RedisConfig     `yaml:"redis"`
	MySQL     MySQLConfig     `yaml:"mysql"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

type APIConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

type ServerConfig struct {
	HTTPAddr           string `yaml:"http_addr"`
	GRPCAddr           string `yaml:"grpc_addr"`
	NotificationBuffer int    `yaml:"notification_buffer"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	GuardKey string        `yaml:"guard_key"`
	GuardTTL time.Duration `yaml:"guard_ttl"`
}

type MySQLConfig struct {
	DSN string `yaml:"dsn"`
}

type KafkaConfig struct {
	Broker string `yaml:"broker"`
	Topic  string `yaml:"topic"`
}

type TelemetryConfig struct {
	Endpoint   string `yaml:"endpoint"`
	AuthHeader string `yaml:"auth_header"`
}

// Load builds the configuration from defaults, the optional YAML file at
// path, a .env file in the working directory, and the environment, in that
// order of increasing precedence.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPAddr:           defaultHTTPAddr,
			GRPCAddr:           defaultGRPCAddr,
			NotificationBuffer: defaultNotifyBuffer,
		},
		Log:   LogConfig{Level: defaultLogLevel, Format: defaultLogFormat},
		Redis: RedisConfig{GuardKey: defaultGuardKey},
		Kafka: KafkaConfig{Topic: defaultKafkaTopic},
	}
}

func applyEnv(cfg *Config) error {
	setString(&cfg.API.URL, "WAREHOUSE_API_URL")
	setString(&cfg.Server.HTTPAddr, "HTTP_ADDR")
	setString(&cfg.Server.GRPCAddr, "GRPC_ADDR")
	setString(&cfg.Log.Level, "LOG_LEVEL")
	setString(&cfg.Log.Format, "LOG_FORMAT")
	setString(&cfg.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.MySQL.DSN, "MYSQL_DSN")
	setString(&cfg.Kafka.Broker, "KAFKA_BROKER")
	setString(&cfg.Kafka.Topic, "KAFKA_TOPIC")
	setString(&cfg.Telemetry.Endpoint, "OTEL_ENDPOINT")
	setString(&cfg.Telemetry.AuthHeader, "OTEL_AUTH_HEADER")

	if err := setDuration(&cfg.API.Timeout, "WAREHOUSE_API_TIMEOUT"); err != nil {
		return err
	}
	return setDuration(&cfg.Redis.GuardTTL, "SALE_GUARD_TTL")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: invalid duration %q: %w", key, v, err)
	}
	*dst = d
	return nil
}

func (c *Config) Validate() error {
	if c.API.URL == "" {
		return fmt.Errorf("WAREHOUSE_API_URL environment variable is required")
	}
	u, err := url.Parse(c.API.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api url %q must be an absolute URL", c.API.URL)
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("api timeout must not be negative")
	}
	if c.Redis.GuardTTL < 0 {
		return fmt.Errorf("sale guard ttl must not be negative")
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("log format %q must be json or console", c.Log.Format)
	}
	return nil
}
