package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Cart     CartConfig
	Checkout CheckoutConfig
	Flags    FeatureFlagsConfig
	CORS     CORSConfig
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
	Env          string `envconfig:"INDUSTRO_APP_ENV" required:"true"`
	Port         string `envconfig:"INDUSTRO_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"INDUSTRO_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"INDUSTRO_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"INDUSTRO_DB_DSN"`
	Driver string `envconfig:"INDUSTRO_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"INDUSTRO_DB_HOST"`
	LegacyPort     int    `envconfig:"INDUSTRO_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"INDUSTRO_DB_USER"`
	LegacyPassword string `envconfig:"INDUSTRO_DB_PASSWORD"`
	LegacyName     string `envconfig:"INDUSTRO_DB_NAME"`
	LegacySSLMode  string `envconfig:"INDUSTRO_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"INDUSTRO_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"INDUSTRO_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"INDUSTRO_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"INDUSTRO_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"INDUSTRO_REDIS_URL" required:"true"`
	Address      string        `envconfig:"INDUSTRO_REDIS_ADDR"`
	Password     string        `envconfig:"INDUSTRO_REDIS_PASSWORD"`
	DB           int           `envconfig:"INDUSTRO_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"INDUSTRO_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"INDUSTRO_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"INDUSTRO_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"INDUSTRO_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"INDUSTRO_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"INDUSTRO_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"INDUSTRO_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"INDUSTRO_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"INDUSTRO_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type CartConfig struct {
	CookieName   string        `envconfig:"INDUSTRO_CART_COOKIE_NAME" default:"industro_cart"`
	CookieTTL    time.Duration `envconfig:"INDUSTRO_CART_COOKIE_TTL" default:"720h"`
	CookieSecure bool          `envconfig:"INDUSTRO_CART_COOKIE_SECURE" default:"true"`
}

type CheckoutConfig struct {
	VATPercent     int64 `envconfig:"INDUSTRO_CHECKOUT_VAT_PERCENT" default:"10"`
	ShippingFeeVND int64 `envconfig:"INDUSTRO_CHECKOUT_SHIPPING_FEE_VND" default:"30000"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"INDUSTRO_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"INDUSTRO_AUTO_MIGRATE" default:"false"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"INDUSTRO_CORS_ALLOWED_ORIGINS" default:"*"`
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
