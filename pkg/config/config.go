package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "RENTFLOW"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv   = "RENTFLOW_APP_ENV"
	EnvPort     = "RENTFLOW_APP_PORT"
	EnvLogLevel = "RENTFLOW_LOG_LEVEL"

	EnvDBDSN  = "RENTFLOW_DB_DSN"
	EnvDBHost = "RENTFLOW_DB_HOST"
	EnvDBUser = "RENTFLOW_DB_USER"
	EnvDBName = "RENTFLOW_DB_NAME"

	EnvRedisURL = "RENTFLOW_REDIS_URL"

	EnvJWTSecret = "RENTFLOW_JWT_SECRET"
	EnvJWTIssuer = "RENTFLOW_JWT_ISSUER"

	EnvAlertsCacheTTL = "RENTFLOW_ALERTS_CACHE_TTL"

	EnvTracingEndpoint = "RENTFLOW_OTLP_ENDPOINT"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	CORS         CORSConfig
	Alerts       AlertsConfig
	Tracing      TracingConfig
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
	Env             string        `envconfig:"RENTFLOW_APP_ENV" required:"true"`
	Port            string        `envconfig:"RENTFLOW_APP_PORT" required:"true"`
	LogLevel        string        `envconfig:"RENTFLOW_LOG_LEVEL" default:"info"`
	LogFormat       string        `envconfig:"RENTFLOW_LOG_FORMAT" default:"json"`
	LogWarnStack    bool          `envconfig:"RENTFLOW_LOG_WARN_STACK" default:"false"`
	ShutdownTimeout time.Duration `envconfig:"RENTFLOW_SHUTDOWN_TIMEOUT" default:"15s"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"RENTFLOW_DB_DSN"`

	LegacyHost     string `envconfig:"RENTFLOW_DB_HOST"`
	LegacyPort     int    `envconfig:"RENTFLOW_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"RENTFLOW_DB_USER"`
	LegacyPassword string `envconfig:"RENTFLOW_DB_PASSWORD"`
	LegacyName     string `envconfig:"RENTFLOW_DB_NAME"`
	LegacySSLMode  string `envconfig:"RENTFLOW_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"RENTFLOW_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"RENTFLOW_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"RENTFLOW_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"RENTFLOW_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	SlowQuery       time.Duration `envconfig:"RENTFLOW_DB_SLOW_QUERY" default:"250ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"RENTFLOW_REDIS_URL"`
	Address      string        `envconfig:"RENTFLOW_REDIS_ADDR"`
	Password     string        `envconfig:"RENTFLOW_REDIS_PASSWORD"`
	DB           int           `envconfig:"RENTFLOW_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"RENTFLOW_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"RENTFLOW_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"RENTFLOW_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"RENTFLOW_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"RENTFLOW_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether any redis endpoint is configured.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

// JWTConfig verifies access tokens minted by the external auth service.
type JWTConfig struct {
	Secret            string `envconfig:"RENTFLOW_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"RENTFLOW_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"RENTFLOW_JWT_EXPIRATION_MINUTES" default:"60"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"RENTFLOW_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

type AlertsConfig struct {
	CacheTTL time.Duration `envconfig:"RENTFLOW_ALERTS_CACHE_TTL" default:"30s"`
}

type TracingConfig struct {
	Endpoint    string  `envconfig:"RENTFLOW_OTLP_ENDPOINT"`
	SampleRatio float64 `envconfig:"RENTFLOW_TRACE_SAMPLE_RATIO" default:"1"`
}

// Enabled reports whether spans should be exported.
func (t TracingConfig) Enabled() bool {
	return strings.TrimSpace(t.Endpoint) != ""
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"RENTFLOW_AUTO_MIGRATE" default:"false"`
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
