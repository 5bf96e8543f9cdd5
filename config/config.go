package config

import (
	"fmt"
	"time"

	"github.com/transitlk/bus-tracker/pkg/configparser"
	"github.com/transitlk/bus-tracker/pkg/logger"
	"github.com/transitlk/bus-tracker/pkg/postgres"
)

// Config contains all configuration variables of the application
type (
	Config struct {
		Server    ServerConfig
		WebSocket WebSocketConfig
		Database  DatabaseConfig
		RabbitMQ  RabbitMQConfig
		Log       LogConfig
	}

	ServerConfig struct {
		Host string `env:"SERVER_HOST" default:"0.0.0.0"`
		Port string `env:"SERVER_PORT" default:"3000"`
	}

	WebSocketConfig struct {
		// "*" разрешает подключение с любого Origin
		AllowedOrigin string `env:"WEBSOCKET_ALLOWED_ORIGIN" default:"*"`
	}

	DatabaseConfig struct {
		Host     string `env:"DATABASE_HOST" default:"localhost"`
		Port     string `env:"DATABASE_PORT" default:"5432"`
		User     string `env:"DATABASE_USER" default:"tracker_user"`
		Password string `env:"DATABASE_PASSWORD" default:"tracker_pass"`
		Database string `env:"DATABASE_DATABASE" default:"tracker_db"`

		MaxConns        int32         `env:"DATABASE_MAXCONNS" default:"20"`         // максимум открытых соединений
		MinConns        int32         `env:"DATABASE_MINCONNS" default:"2"`          // минимум соединений в пуле
		MaxConnLifetime time.Duration `env:"DATABASE_MAXCONNLIFETIME" default:"30m"` // макс. "время жизни" соединения
		MaxConnIdleTime time.Duration `env:"DATABASE_MAXCONNIDLETIME" default:"5m"`  // макс. "время простоя" соединения
	}

	RabbitMQConfig struct {
		// Enabled включает relay принятых отчётов через fanout exchange
		// для кластерного развёртывания. По умолчанию выключен: одному
		// broadcast-узлу он не нужен.
		Enabled  bool   `env:"RABBITMQ_ENABLED" default:"false"`
		Host     string `env:"RABBITMQ_HOST" default:"localhost"`
		Port     string `env:"RABBITMQ_PORT" default:"5672"`
		User     string `env:"RABBITMQ_USER" default:"guest"`
		Password string `env:"RABBITMQ_PASSWORD" default:"guest"`
	}

	LogConfig struct {
		Level string `env:"LOG_LEVEL" default:"INFO"`
	}
)

func (c DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

func (c DatabaseConfig) PoolSettings() postgres.PoolSettings {
	return postgres.PoolSettings{
		MaxConns:        c.MaxConns,
		MinConns:        c.MinConns,
		MaxConnLifetime: c.MaxConnLifetime,
		MaxConnIdleTime: c.MaxConnIdleTime,
	}
}

func (c RabbitMQConfig) GetDSN() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s/",
		c.User,
		c.Password,
		c.Host,
		c.Port,
	)
}

func NewConfig(filepath string) (*Config, error) {
	cfg := &Config{}

	// Loading enviromental variables and parsing to config struct.
	if err := configparser.LoadAndParseYaml(filepath, cfg); err != nil {
		return nil, fmt.Errorf("failed to load and parse config: %w", err)
	}

	if !logger.ValidateLogLevel(cfg.Log.Level) {
		return nil, fmt.Errorf("invalid log level: %s", cfg.Log.Level)
	}

	return cfg, nil
}
