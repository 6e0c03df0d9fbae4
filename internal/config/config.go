package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

type Config struct {
	Env       string          `yaml:"env"`
	Http      HttpConfig      `yaml:"http"`
	Store     StoreConfig     `yaml:"store"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	Redis     RedisConfig     `yaml:"redis"`
	Streams   StreamsConfig   `yaml:"streams"`
	Events    EventsConfig    `yaml:"events"`
	Bridge    BridgeConfig    `yaml:"bridge"`
	Cache     CacheConfig     `yaml:"cache"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	APIKey    string          `yaml:"api_key,omitempty"`
}

type HttpConfig struct {
	Port            string        `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type StoreConfig struct {
	Driver string `yaml:"driver"`
}

type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password,omitempty"`
	SSLMode  string `yaml:"ssl_mode"`

	MaxConns        int32         `yaml:"max_conns"`
	MinConns        int32         `yaml:"min_conns"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"`
}

func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.Database, p.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db"`
}

// StreamsConfig describes the Redis Streams transport. Each logical stream is
// split into Partitions physical streams named "<stream>:<n>".
type StreamsConfig struct {
	CommandStream string        `yaml:"command_stream"`
	EventStream   string        `yaml:"event_stream"`
	Group         string        `yaml:"group"`
	Consumer      string        `yaml:"consumer"`
	Partitions    int           `yaml:"partitions"`
	BlockTimeout  time.Duration `yaml:"block_timeout"`
	BatchSize     int64         `yaml:"batch_size"`
	MaxLen        int64         `yaml:"max_len"`
	DroppedKey    string        `yaml:"dropped_key"`
	DroppedMax    int64         `yaml:"dropped_max"`
}

type EventsConfig struct {
	Format    string `yaml:"format"`
	Source    string `yaml:"source"`
	QueueSize int    `yaml:"queue_size"`
}

type BridgeConfig struct {
	Workers        int           `yaml:"workers"`
	QueueSize      int           `yaml:"queue_size"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	TTL     time.Duration `yaml:"ttl"`
	Prefix  string        `yaml:"prefix"`
}

type RateLimitConfig struct {
	RPS   int           `yaml:"rps"`
	Burst int           `yaml:"burst"`
	TTL   time.Duration `yaml:"ttl"`
}

func defaults() *Config {
	host, _ := os.Hostname()
	if host == "" {
		host = "incident-service"
	}
	return &Config{
		Env: "local",
		Http: HttpConfig{
			Port:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Store: StoreConfig{Driver: StoreDriverPostgres},
		Postgres: PostgresConfig{
			Host:            "pg-local",
			Port:            5432,
			Database:        "incident_db",
			User:            "postgres",
			Password:        "postgres",
			SSLMode:         "disable",
			MaxConns:        20,
			MinConns:        1,
			MaxConnLifetime: time.Hour,
		},
		Redis: RedisConfig{Addr: "redis-local:6379"},
		Streams: StreamsConfig{
			CommandStream: "incident-command",
			EventStream:   "incident-event",
			Group:         "incident-service",
			Consumer:      host,
			Partitions:    4,
			BlockTimeout:  2 * time.Second,
			BatchSize:     16,
			MaxLen:        100000,
			DroppedKey:    "incident-command:dropped",
			DroppedMax:    1000,
		},
		Events: EventsConfig{
			Format:    "cloudevent",
			Source:    "IncidentService",
			QueueSize: 64,
		},
		Bridge: BridgeConfig{
			Workers:        8,
			QueueSize:      64,
			RequestTimeout: 5 * time.Second,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     10 * time.Minute,
			Prefix:  "incident:",
		},
		RateLimit: RateLimitConfig{RPS: 20, Burst: 40, TTL: 5 * time.Minute},
	}
}

// Load builds the configuration from defaults, an optional YAML file and the
// environment, in that order. path falls back to CONFIG_FILE.
func Load(path string) (*Config, error) {
	stdLogger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		stdLogger.Warn(".env load warning", slog.Any("error", err))
	}

	cfg := defaults()

	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	stdLogger.Info("Config loaded successfully",
		slog.String("env", cfg.Env),
		slog.String("http_port", cfg.Http.Port),
		slog.String("store", cfg.Store.Driver),
		slog.String("redis_addr", cfg.Redis.Addr),
		slog.String("event_format", cfg.Events.Format),
		slog.Int("partitions", cfg.Streams.Partitions),
	)

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Env = getEnv("ENV", c.Env)

	c.Http.Port = getEnv("HTTP_PORT", c.Http.Port)
	c.Http.ReadTimeout = getEnvDuration("HTTP_READ_TIMEOUT", c.Http.ReadTimeout)
	c.Http.WriteTimeout = getEnvDuration("HTTP_WRITE_TIMEOUT", c.Http.WriteTimeout)
	c.Http.ShutdownTimeout = getEnvDuration("HTTP_SHUTDOWN_TIMEOUT", c.Http.ShutdownTimeout)

	c.Store.Driver = getEnv("STORE_DRIVER", c.Store.Driver)

	c.Postgres.Host = getEnv("POSTGRES_HOST", c.Postgres.Host)
	c.Postgres.Port = getEnvInt("POSTGRES_PORT", c.Postgres.Port)
	c.Postgres.Database = getEnv("POSTGRES_DB", c.Postgres.Database)
	c.Postgres.User = getEnv("POSTGRES_USER", c.Postgres.User)
	c.Postgres.Password = getEnv("POSTGRES_PASSWORD", c.Postgres.Password)
	c.Postgres.SSLMode = getEnv("POSTGRES_SSL_MODE", c.Postgres.SSLMode)

	c.Redis.Addr = getEnv("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = getEnv("REDIS_PASSWORD", c.Redis.Password)
	c.Redis.DB = getEnvInt("REDIS_DB", c.Redis.DB)

	c.Streams.CommandStream = getEnv("STREAM_COMMANDS", c.Streams.CommandStream)
	c.Streams.EventStream = getEnv("STREAM_EVENTS", c.Streams.EventStream)
	c.Streams.Group = getEnv("STREAM_GROUP", c.Streams.Group)
	c.Streams.Consumer = getEnv("STREAM_CONSUMER", c.Streams.Consumer)
	c.Streams.Partitions = getEnvInt("STREAM_PARTITIONS", c.Streams.Partitions)
	c.Streams.BlockTimeout = getEnvDuration("STREAM_BLOCK_TIMEOUT", c.Streams.BlockTimeout)
	c.Streams.DroppedKey = getEnv("STREAM_DROPPED_KEY", c.Streams.DroppedKey)

	c.Events.Format = getEnv("EVENT_FORMAT", c.Events.Format)
	c.Events.Source = getEnv("EVENT_SOURCE", c.Events.Source)

	c.Bridge.Workers = getEnvInt("BRIDGE_WORKERS", c.Bridge.Workers)
	c.Bridge.RequestTimeout = getEnvDuration("BRIDGE_REQUEST_TIMEOUT", c.Bridge.RequestTimeout)

	c.Cache.Enabled = getEnvBool("CACHE_ENABLED", c.Cache.Enabled)
	c.Cache.TTL = getEnvDuration("CACHE_TTL", c.Cache.TTL)

	c.APIKey = getEnv("API_KEY", c.APIKey)
}

func (c *Config) Validate() error {
	if c.Http.Port == "" || c.Http.Port[0] != ':' {
		return errors.New("HTTP_PORT must start with ':' like ':8080'")
	}

	switch c.Store.Driver {
	case StoreDriverPostgres:
		if c.Postgres.Host == "" {
			return errors.New("POSTGRES_HOST required")
		}
	case StoreDriverMemory:
	default:
		return fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", StoreDriverPostgres, StoreDriverMemory, c.Store.Driver)
	}

	if c.Streams.Partitions < 1 {
		return errors.New("STREAM_PARTITIONS must be >= 1")
	}
	if c.Streams.CommandStream == "" || c.Streams.EventStream == "" || c.Streams.Group == "" {
		return errors.New("stream names and consumer group required")
	}

	switch strings.ToLower(c.Events.Format) {
	case "cloudevent", "message":
		c.Events.Format = strings.ToLower(c.Events.Format)
	default:
		return fmt.Errorf("EVENT_FORMAT must be cloudevent or message, got %q", c.Events.Format)
	}

	if c.Bridge.Workers < 1 {
		return errors.New("BRIDGE_WORKERS must be >= 1")
	}

	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
