package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Service   ServiceConfig   `mapstructure:"service"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Sqlite    SqliteConfig    `mapstructure:"sqlite"`
	Mysql     MysqlConfig     `mapstructure:"mysql"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Consul    ConsulConfig    `mapstructure:"consul"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
	RabbitMQ  RabbitMQConfig  `mapstructure:"rabbitmq"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Orders    OrdersConfig    `mapstructure:"orders"`
}

type ServiceConfig struct {
	Name     string `mapstructure:"name"`
	Port     int    `mapstructure:"port"`
	Mode     string `mapstructure:"mode"`
	LogLevel string `mapstructure:"log_level"`
}

type DatabaseConfig struct {
	Driver       string `mapstructure:"driver"`
	LogLevel     string `mapstructure:"log_level"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

type SqliteConfig struct {
	Path string `mapstructure:"path"`
}

type MysqlConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DbName   string `mapstructure:"dbname"`
}

type RedisConfig struct {
	Address        string        `mapstructure:"address"`
	Password       string        `mapstructure:"password"`
	Db             int           `mapstructure:"db"`
	IdempotencyTTL time.Duration `mapstructure:"idempotency_ttl"`
}

type ConsulConfig struct {
	Address string `mapstructure:"address"`
}

type TracingConfig struct {
	Endpoint string `mapstructure:"endpoint"`
}

type RabbitMQConfig struct {
	URL      string `mapstructure:"url"`
	Exchange string `mapstructure:"exchange"`
}

type RateLimitConfig struct {
	QPS float64 `mapstructure:"qps"`
}

type OrdersConfig struct {
	DefaultPerPage int  `mapstructure:"default_per_page"`
	MaxPerPage     int  `mapstructure:"max_per_page"`
	StrictDates    bool `mapstructure:"strict_dates"`
	Seed           bool `mapstructure:"seed"`
}

var defaults = map[string]any{
	"service.name":            "order-service",
	"service.port":            8080,
	"service.mode":            "release",
	"service.log_level":       "info",
	"database.driver":         "sqlite",
	"database.log_level":      "warn",
	"database.max_idle_conns": 10,
	"database.max_open_conns": 100,
	"sqlite.path":             "order_system.db",
	"mysql.host":              "localhost",
	"mysql.port":              3306,
	"mysql.user":              "root",
	"mysql.password":          "",
	"mysql.dbname":            "db_order",
	"redis.address":           "",
	"redis.password":          "",
	"redis.db":                0,
	"redis.idempotency_ttl":   "24h",
	"consul.address":          "",
	"tracing.endpoint":        "",
	"rabbitmq.url":            "",
	"rabbitmq.exchange":       "orders",
	"ratelimit.qps":           0,
	"orders.default_per_page": 20,
	"orders.max_per_page":     100,
	"orders.strict_dates":     false,
	"orders.seed":             true,
}

// LoadConfig reads config.yaml from path. A missing file is fine; every key
// has a default and can be overridden from the environment (MYSQL_HOST, ...).
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
