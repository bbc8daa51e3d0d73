package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/deskchat-backend/internal/data/db"
	"github.com/yungbote/deskchat-backend/internal/platform/envutil"
	"github.com/yungbote/deskchat-backend/internal/services"
)

const defaultJWTSecret = "defaultsecret"

type OTelConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Endpoint    string  `yaml:"endpoint"`
	Headers     string  `yaml:"headers"`
	Insecure    bool    `yaml:"insecure"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

type Config struct {
	HTTPAddr        string        `yaml:"http_addr"`
	LogMode         string        `yaml:"log_mode"`
	ServiceName     string        `yaml:"service_name"`
	Environment     string        `yaml:"environment"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	JWTSecretKey   string        `yaml:"jwt_secret_key"`
	AccessTokenTTL time.Duration `yaml:"access_token_ttl"`

	DB db.Config `yaml:"db"`

	RedisAddr    string `yaml:"redis_addr"`
	RedisChannel string `yaml:"redis_channel"`

	AMQPURL           string `yaml:"amqp_url"`
	AMQPExchange      string `yaml:"amqp_exchange"`
	AMQPRetryAttempts int    `yaml:"amqp_retry_attempts"`

	ProtocolMaxAttempts int           `yaml:"protocol_max_attempts"`
	WebhookTimeout      time.Duration `yaml:"webhook_timeout"`
	EventTimeout        time.Duration `yaml:"event_timeout"`
	CORSOrigins         []string      `yaml:"cors_origins"`

	OTel OTelConfig `yaml:"otel"`
}

func defaultConfig() Config {
	return Config{
		HTTPAddr:        ":8080",
		LogMode:         "development",
		ServiceName:     "deskchat",
		Environment:     "development",
		ShutdownTimeout: 15 * time.Second,
		JWTSecretKey:    defaultJWTSecret,
		AccessTokenTTL:  time.Hour,
		DB: db.Config{
			Driver:       "postgres",
			PostgresHost: "localhost",
			PostgresPort: "5432",
			PostgresUser: "postgres",
			PostgresName: "deskchat",
		},
		RedisChannel:        "deskchat:realtime",
		AMQPExchange:        "deskchat.events",
		AMQPRetryAttempts:   5,
		ProtocolMaxAttempts: services.DefaultProtocolAttempts,
		WebhookTimeout:      5 * time.Second,
		EventTimeout:        10 * time.Second,
		OTel:                OTelConfig{SampleRatio: 0.1},
	}
}

// LoadConfig layers defaults, then the optional YAML file, then the
// environment. Environment values win.
func LoadConfig(path string) (Config, error) {
	cfg := defaultConfig()

	if path = strings.TrimSpace(path); path == "" {
		path = envutil.String("CONFIG_FILE", "")
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.HTTPAddr = envutil.String("HTTP_ADDR", c.HTTPAddr)
	c.LogMode = envutil.String("LOG_MODE", c.LogMode)
	c.ServiceName = envutil.String("OTEL_SERVICE_NAME", c.ServiceName)
	c.Environment = envutil.String("APP_ENV", c.Environment)
	c.ShutdownTimeout = envutil.Seconds("SHUTDOWN_TIMEOUT", c.ShutdownTimeout)

	c.JWTSecretKey = envutil.String("JWT_SECRET_KEY", c.JWTSecretKey)
	c.AccessTokenTTL = envutil.Seconds("ACCESS_TOKEN_TTL", c.AccessTokenTTL)

	c.DB.Driver = envutil.String("DB_DRIVER", c.DB.Driver)
	c.DB.PostgresHost = envutil.String("POSTGRES_HOST", c.DB.PostgresHost)
	c.DB.PostgresPort = envutil.String("POSTGRES_PORT", c.DB.PostgresPort)
	c.DB.PostgresUser = envutil.String("POSTGRES_USER", c.DB.PostgresUser)
	c.DB.PostgresPassword = envutil.String("POSTGRES_PASSWORD", c.DB.PostgresPassword)
	c.DB.PostgresName = envutil.String("POSTGRES_NAME", c.DB.PostgresName)
	c.DB.PostgresSSLMode = envutil.String("POSTGRES_SSLMODE", c.DB.PostgresSSLMode)
	c.DB.SQLitePath = envutil.String("SQLITE_PATH", c.DB.SQLitePath)

	c.RedisAddr = envutil.String("REDIS_ADDR", c.RedisAddr)
	c.RedisChannel = envutil.String("REDIS_CHANNEL", c.RedisChannel)

	c.AMQPURL = envutil.String("AMQP_URL", c.AMQPURL)
	c.AMQPExchange = envutil.String("AMQP_EXCHANGE", c.AMQPExchange)
	c.AMQPRetryAttempts = envutil.Int("AMQP_RETRY_ATTEMPTS", c.AMQPRetryAttempts)

	c.ProtocolMaxAttempts = envutil.Int("PROTOCOL_MAX_ATTEMPTS", c.ProtocolMaxAttempts)
	c.WebhookTimeout = envutil.Seconds("WEBHOOK_TIMEOUT", c.WebhookTimeout)
	c.EventTimeout = envutil.Seconds("EVENT_TIMEOUT", c.EventTimeout)
	if origins := envutil.List("CORS_ORIGINS"); len(origins) > 0 {
		c.CORSOrigins = origins
	}

	c.OTel.Enabled = envutil.Bool("OTEL_ENABLED", c.OTel.Enabled)
	c.OTel.Endpoint = envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", c.OTel.Endpoint)
	c.OTel.Headers = envutil.String("OTEL_EXPORTER_OTLP_HEADERS", c.OTel.Headers)
	c.OTel.Insecure = envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", c.OTel.Insecure)
	c.OTel.SampleRatio = envutil.Float("OTEL_SAMPLER_RATIO", c.OTel.SampleRatio)
}

func (c Config) validate() error {
	if strings.TrimSpace(c.JWTSecretKey) == "" {
		return fmt.Errorf("JWT_SECRET_KEY must not be empty")
	}
	if c.AccessTokenTTL <= 0 {
		return fmt.Errorf("ACCESS_TOKEN_TTL must be positive")
	}
	if c.ProtocolMaxAttempts <= 0 {
		return fmt.Errorf("PROTOCOL_MAX_ATTEMPTS must be positive")
	}
	switch strings.ToLower(c.DB.Driver) {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DB.Driver)
	}
	return nil
}
