package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	ListenAddr    string `mapstructure:"listen_addr"`
	DBDriver      string `mapstructure:"db_driver"`
	DBPath        string `mapstructure:"db_path"`
	DatabaseURL   string `mapstructure:"database_url"`
	AutoMigrate   bool   `mapstructure:"auto_migrate"`
	NotifyBackend string `mapstructure:"notify_backend"`
	NotifyPrefix  string `mapstructure:"notify_prefix"`
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
	MQTTBroker    string `mapstructure:"mqtt_broker"`
	MQTTClientID  string `mapstructure:"mqtt_client_id"`
	MQTTUsername  string `mapstructure:"mqtt_username"`
	MQTTPassword  string `mapstructure:"mqtt_password"`
	LogLevel      string `mapstructure:"log_level"`
	LogFormat     string `mapstructure:"log_format"`
	LogFile       string `mapstructure:"log_file"`
	TestMode      bool   `mapstructure:"infratrack_test_mode"`
}

var defaults = map[string]any{
	"listen_addr":          ":8080",
	"db_driver":            "sqlite",
	"db_path":              "/data/infratrack.db",
	"database_url":         "",
	"auto_migrate":         true,
	"notify_backend":       "local",
	"notify_prefix":        "",
	"redis_addr":           "localhost:6379",
	"redis_password":       "",
	"redis_db":             0,
	"mqtt_broker":          "tcp://localhost:1883",
	"mqtt_client_id":       "",
	"mqtt_username":        "",
	"mqtt_password":        "",
	"log_level":            "info",
	"log_format":           "json",
	"log_file":             "",
	"infratrack_test_mode": false,
}

// Load builds the configuration from defaults, then configFile (optional,
// any format viper understands), then environment variables. Environment
// variables use the upper-case key, e.g. LISTEN_ADDR or NOTIFY_BACKEND.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	for key, val := range defaults {
		v.SetDefault(key, val)
		if err := v.BindEnv(key, strings.ToUpper(key)); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	switch c.DBDriver {
	case "sqlite":
		if c.DBPath == "" {
			errs = append(errs, errors.New("DB_PATH is required when DB_DRIVER=sqlite"))
		}
	case "postgres":
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required when DB_DRIVER=postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver))
	}

	switch c.NotifyBackend {
	case "local", "redis", "mqtt":
	case "postgres":
		if c.DBDriver != "postgres" {
			errs = append(errs, errors.New("NOTIFY_BACKEND=postgres requires DB_DRIVER=postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported NOTIFY_BACKEND %q", c.NotifyBackend))
	}

	switch c.LogFormat {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("unsupported LOG_FORMAT %q", c.LogFormat))
	}
	return errors.Join(errs...)
}
