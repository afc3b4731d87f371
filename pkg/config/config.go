package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Commerce     CommerceConfig
	Gateway      GatewayConfig
	Delivery     DeliveryConfig
	Payment      PaymentConfig
	GuestCart    GuestCartConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SOUKLY_APP_ENV" required:"true"`
	Port         string `envconfig:"SOUKLY_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SOUKLY_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SOUKLY_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"SOUKLY_DB_DSN"`
	Driver string `envconfig:"SOUKLY_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SOUKLY_DB_HOST"`
	LegacyPort     int    `envconfig:"SOUKLY_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SOUKLY_DB_USER"`
	LegacyPassword string `envconfig:"SOUKLY_DB_PASSWORD"`
	LegacyName     string `envconfig:"SOUKLY_DB_NAME"`
	LegacySSLMode  string `envconfig:"SOUKLY_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SOUKLY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SOUKLY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SOUKLY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SOUKLY_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SOUKLY_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SOUKLY_REDIS_ADDR"`
	Password     string        `envconfig:"SOUKLY_REDIS_PASSWORD"`
	DB           int           `envconfig:"SOUKLY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SOUKLY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SOUKLY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SOUKLY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SOUKLY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SOUKLY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret string `envconfig:"SOUKLY_JWT_SECRET" required:"true"`
	Issuer string `envconfig:"SOUKLY_JWT_ISSUER" required:"true"`
}

// CommerceConfig points at the storefront commerce API that owns order creation.
type CommerceConfig struct {
	BaseURL  string        `envconfig:"SOUKLY_COMMERCE_BASE_URL" required:"true"`
	APIToken string        `envconfig:"SOUKLY_COMMERCE_API_TOKEN"`
	Timeout  time.Duration `envconfig:"SOUKLY_COMMERCE_TIMEOUT" default:"15s"`
}

// GatewayConfig carries the hosted payment gateway merchant credentials.
type GatewayConfig struct {
	BaseURL            string        `envconfig:"SOUKLY_GATEWAY_BASE_URL" required:"true"`
	MerchantID         string        `envconfig:"SOUKLY_GATEWAY_MERCHANT_ID" required:"true"`
	TerminalID         string        `envconfig:"SOUKLY_GATEWAY_TERMINAL_ID" required:"true"`
	SecureHashKey      string        `envconfig:"SOUKLY_GATEWAY_SECURE_HASH_KEY" required:"true"`
	Timeout            time.Duration `envconfig:"SOUKLY_GATEWAY_TIMEOUT" default:"20s"`
	ConfirmMaxAttempts int           `envconfig:"SOUKLY_GATEWAY_CONFIRM_MAX_ATTEMPTS" default:"3"`
}

type DeliveryConfig struct {
	DefaultProviderID int64 `envconfig:"SOUKLY_DELIVERY_DEFAULT_PROVIDER_ID" default:"1"`
}

type PaymentConfig struct {
	QRCodeText     string        `envconfig:"SOUKLY_PAYMENT_QR_CODE_TEXT"`
	SessionTTL     time.Duration `envconfig:"SOUKLY_PAYMENT_SESSION_TTL" default:"24h"`
	PickupLocation string        `envconfig:"SOUKLY_PAYMENT_PICKUP_LOCATION" default:"pickup"`
}

type GuestCartConfig struct {
	TTL time.Duration `envconfig:"SOUKLY_GUEST_CART_TTL" default:"720h"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"SOUKLY_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
