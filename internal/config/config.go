package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the point-of-sale backend
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
	Redis    RedisConfig    `yaml:"redis"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port           int           `yaml:"port"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
	MaxConns int32  `yaml:"max_conns"`
}

// RabbitMQConfig holds RabbitMQ connection configuration.
// Messaging is disabled when Host is empty.
type RabbitMQConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	VHost    string `yaml:"vhost"`
}

// RedisConfig holds the optional menu cache connection. The cache is disabled when Addr is empty.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads configuration from a YAML file and applies KITCHENPOS_* environment overrides
func Load(filename string) (*Config, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(content, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Default returns the configuration used for keys missing from the file
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           8080,
			RequestTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			Port:     5432,
			SSLMode:  "disable",
			MaxConns: 25,
		},
		RabbitMQ: RabbitMQConfig{
			Port:  5672,
			VHost: "/",
		},
		Log: LogConfig{
			Level: "debug",
		},
	}
}

// LoadEnvFile loads variables from a .env file into the process environment.
// A missing file is not an error.
func LoadEnvFile(path string) error {
	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// applyEnv overrides values with KITCHENPOS_* environment variables
func (c *Config) applyEnv() error {
	strs := map[string]*string{
		"KITCHENPOS_DB_HOST":           &c.Database.Host,
		"KITCHENPOS_DB_USER":           &c.Database.User,
		"KITCHENPOS_DB_PASSWORD":       &c.Database.Password,
		"KITCHENPOS_DB_NAME":           &c.Database.Database,
		"KITCHENPOS_DB_SSLMODE":        &c.Database.SSLMode,
		"KITCHENPOS_RABBITMQ_HOST":     &c.RabbitMQ.Host,
		"KITCHENPOS_RABBITMQ_USER":     &c.RabbitMQ.User,
		"KITCHENPOS_RABBITMQ_PASSWORD": &c.RabbitMQ.Password,
		"KITCHENPOS_RABBITMQ_VHOST":    &c.RabbitMQ.VHost,
		"KITCHENPOS_REDIS_ADDR":        &c.Redis.Addr,
		"KITCHENPOS_REDIS_PASSWORD":    &c.Redis.Password,
		"KITCHENPOS_LOG_LEVEL":         &c.Log.Level,
	}
	for key, target := range strs {
		if value, ok := os.LookupEnv(key); ok {
			*target = value
		}
	}

	ints := map[string]*int{
		"KITCHENPOS_HTTP_PORT":     &c.Server.Port,
		"KITCHENPOS_DB_PORT":       &c.Database.Port,
		"KITCHENPOS_RABBITMQ_PORT": &c.RabbitMQ.Port,
		"KITCHENPOS_REDIS_DB":      &c.Redis.DB,
	}
	for key, target := range ints {
		value, ok := os.LookupEnv(key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid %s value %q: %w", key, value, err)
		}
		*target = n
	}

	return nil
}

// ValidateDatabase checks the settings needed to reach PostgreSQL
func (c *Config) ValidateDatabase() error {
	if c.Database.Host == "" || c.Database.User == "" || c.Database.Database == "" {
		return errors.New("database config incomplete: host, user and database are required")
	}
	return nil
}

// MessagingEnabled reports whether status events should be published to RabbitMQ
func (c *Config) MessagingEnabled() bool {
	return c.RabbitMQ.Host != ""
}

// CacheEnabled reports whether the Redis menu cache is configured
func (c *Config) CacheEnabled() bool {
	return c.Redis.Addr != ""
}

// DatabaseURL returns a PostgreSQL connection URL
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(c.Database.User), url.QueryEscape(c.Database.Password),
		c.Database.Host, c.Database.Port, c.Database.Database, c.Database.SSLMode)
}

// RabbitMQURL returns an AMQP connection URL
func (c *Config) RabbitMQURL() string {
	vhost := c.RabbitMQ.VHost
	if vhost == "/" {
		vhost = ""
	}
	return fmt.Sprintf("amqp://%s:%s@%s:%d/%s",
		url.QueryEscape(c.RabbitMQ.User), url.QueryEscape(c.RabbitMQ.Password),
		c.RabbitMQ.Host, c.RabbitMQ.Port, url.PathEscape(vhost))
}
