package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "platwatch"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "PLATWATCH_DB_DSN"
	EnvDBHost = "PLATWATCH_DB_HOST"
	EnvDBUser = "PLATWATCH_DB_USER"
	EnvDBName = "PLATWATCH_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Feed         FeedConfig
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
	Env          string   `envconfig:"PLATWATCH_APP_ENV" required:"true"`
	Port         string   `envconfig:"PLATWATCH_APP_PORT" default:"8080"`
	LogLevel     string   `envconfig:"PLATWATCH_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"PLATWATCH_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"PLATWATCH_CORS_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"PLATWATCH_DB_DSN"`

	LegacyHost     string `envconfig:"PLATWATCH_DB_HOST"`
	LegacyPort     int    `envconfig:"PLATWATCH_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"PLATWATCH_DB_USER"`
	LegacyPassword string `envconfig:"PLATWATCH_DB_PASSWORD"`
	LegacyName     string `envconfig:"PLATWATCH_DB_NAME"`
	LegacySSLMode  string `envconfig:"PLATWATCH_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PLATWATCH_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PLATWATCH_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PLATWATCH_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PLATWATCH_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	// URL empty means the feed cache is disabled; the service runs without it.
	URL          string        `envconfig:"PLATWATCH_REDIS_URL"`
	Address      string        `envconfig:"PLATWATCH_REDIS_ADDR"`
	Password     string        `envconfig:"PLATWATCH_REDIS_PASSWORD"`
	DB           int           `envconfig:"PLATWATCH_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PLATWATCH_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PLATWATCH_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PLATWATCH_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PLATWATCH_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PLATWATCH_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a Redis endpoint is configured at all.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

type FeedConfig struct {
	BaseURL       string        `envconfig:"PLATWATCH_FEED_BASE_URL" default:"https://api.warframe.market/v1"`
	Timeout       time.Duration `envconfig:"PLATWATCH_FEED_TIMEOUT" default:"15s"`
	CacheTTL      time.Duration `envconfig:"PLATWATCH_FEED_CACHE_TTL" default:"5m"`
	LanguageCode  string        `envconfig:"PLATWATCH_FEED_LANGUAGE" default:"en"`
	PlatformLabel string        `envconfig:"PLATWATCH_FEED_PLATFORM" default:"pc"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"PLATWATCH_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"PLATWATCH_AUTO_MIGRATE" default:"false"`
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
