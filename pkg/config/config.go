package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App        AppConfig
	Storefront StorefrontConfig
	Storage    StorageConfig
	Cookie     CookieConfig
	DB         DBConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Backend    BackendConfig
	Square     SquareConfig
	GCP        GCPConfig
	PubSub     PubSubConfig
	Payments   PaymentsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if _, err := cfg.Storefront.TaxRateDecimal(); err != nil {
		return nil, err
	}
	if err := cfg.Storage.validate(cfg); err != nil {
		return nil, err
	}
	if cfg.App.IsProd() && !cfg.Cookie.Secure {
		return nil, fmt.Errorf("STOREFRONT_COOKIE_SECURE must be true when %s=%s", EnvAppEnv, AppEnvProd)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"STOREFRONT_APP_ENV" required:"true"`
	Port         string `envconfig:"STOREFRONT_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"STOREFRONT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STOREFRONT_LOG_WARN_STACK" default:"false"`

	CORSOrigins []string `envconfig:"STOREFRONT_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// StorefrontConfig carries the pricing knobs shared by the cart and the public config endpoint.
type StorefrontConfig struct {
	TaxRate         string `envconfig:"STOREFRONT_TAX_RATE" default:"0.15"`
	MaxLineQuantity int    `envconfig:"STOREFRONT_MAX_LINE_QUANTITY" default:"10"`
	DefaultCountry  string `envconfig:"STOREFRONT_DEFAULT_COUNTRY" default:"ECU"`
}

// TaxRateDecimal parses the configured tax rate. Negative rates are rejected.
func (s StorefrontConfig) TaxRateDecimal() (decimal.Decimal, error) {
	raw := strings.TrimSpace(s.TaxRate)
	if raw == "" {
		return decimal.RequireFromString(DefaultTaxRate), nil
	}
	rate, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s %q: %w", EnvTaxRate, s.TaxRate, err)
	}
	if rate.IsNegative() {
		return decimal.Zero, fmt.Errorf("%s must be non-negative", EnvTaxRate)
	}
	return rate, nil
}

type StorageConfig struct {
	Driver     string        `envconfig:"STOREFRONT_STORAGE_DRIVER" default:"cookie"`
	SessionTTL time.Duration `envconfig:"STOREFRONT_STORAGE_SESSION_TTL" default:"720h"`
}

// Normalized returns the lower-cased driver name, defaulting to cookies.
func (s StorageConfig) Normalized() string {
	driver := strings.ToLower(strings.TrimSpace(s.Driver))
	if driver == "" {
		return StorageDriverCookie
	}
	return driver
}

func (s StorageConfig) validate(cfg Config) error {
	switch s.Normalized() {
	case StorageDriverCookie, StorageDriverMemory:
		return nil
	case StorageDriverRedis:
		if cfg.Redis.URL == "" && cfg.Redis.Address == "" {
			return fmt.Errorf("%s or %s is required for the redis storage driver", EnvRedisURL, EnvRedisAddr)
		}
		return nil
	case StorageDriverSQL:
		if strings.TrimSpace(cfg.DB.DSN) == "" {
			return fmt.Errorf("%s is required for the sql storage driver", EnvDBDSN)
		}
		return nil
	default:
		return fmt.Errorf("unsupported %s %q", EnvStorageDriver, s.Driver)
	}
}

type CookieConfig struct {
	Domain   string        `envconfig:"STOREFRONT_COOKIE_DOMAIN"`
	Path     string        `envconfig:"STOREFRONT_COOKIE_PATH" default:"/"`
	Secure   bool          `envconfig:"STOREFRONT_COOKIE_SECURE" default:"false"`
	MaxAge   time.Duration `envconfig:"STOREFRONT_COOKIE_MAX_AGE" default:"720h"`
	SameSite string        `envconfig:"STOREFRONT_COOKIE_SAME_SITE" default:"lax"`
}

type DBConfig struct {
	DSN    string `envconfig:"STOREFRONT_DB_DSN"`
	Driver string `envconfig:"STOREFRONT_DB_DRIVER" default:"postgres"`

	MaxOpenConns    int           `envconfig:"STOREFRONT_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"STOREFRONT_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"STOREFRONT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STOREFRONT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	AutoMigrate     bool          `envconfig:"STOREFRONT_DB_AUTO_MIGRATE" default:"false"`
}

// UseSQLite reports whether the sqlite dialector should be used.
func (db DBConfig) UseSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DBDriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"STOREFRONT_REDIS_URL"`
	Address      string        `envconfig:"STOREFRONT_REDIS_ADDR"`
	Password     string        `envconfig:"STOREFRONT_REDIS_PASSWORD"`
	DB           int           `envconfig:"STOREFRONT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STOREFRONT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STOREFRONT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STOREFRONT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether any redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type JWTConfig struct {
	Secret            string `envconfig:"STOREFRONT_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"STOREFRONT_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"STOREFRONT_JWT_EXPIRATION_MINUTES" default:"60"`
}

type BackendConfig struct {
	BaseURL string        `envconfig:"STOREFRONT_BACKEND_URL" required:"true"`
	Timeout time.Duration `envconfig:"STOREFRONT_BACKEND_TIMEOUT" default:"10s"`
}

type SquareConfig struct {
	ApplicationID string `envconfig:"STOREFRONT_SQUARE_APPLICATION_ID"`
	AccessToken   string `envconfig:"STOREFRONT_SQUARE_ACCESS_TOKEN"`
	Env           string `envconfig:"STOREFRONT_SQUARE_ENV" default:"sandbox"`
}

// Environment returns the normalized Square environment (sandbox/production).
func (s SquareConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "sandbox"
	}
	return env
}

// VerificationEnabled reports whether captures are re-checked against Square.
func (s SquareConfig) VerificationEnabled() bool {
	return strings.TrimSpace(s.AccessToken) != ""
}

type GCPConfig struct {
	ProjectID       string `envconfig:"STOREFRONT_GCP_PROJECT_ID"`
	CredentialsJSON string `envconfig:"STOREFRONT_GCP_CREDENTIALS_JSON"`
}

type PubSubConfig struct {
	OrdersTopic string `envconfig:"STOREFRONT_PUBSUB_ORDERS_TOPIC"`
}

// Enabled reports whether order events should be published.
func (p PubSubConfig) Enabled() bool {
	return strings.TrimSpace(p.OrdersTopic) != ""
}

type PaymentsConfig struct {
	InFlightTTL time.Duration `envconfig:"STOREFRONT_PAYMENTS_IN_FLIGHT_TTL" default:"2m"`
}
