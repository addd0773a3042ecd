package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
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
	Env          string `envconfig:"VINOTECA_APP_ENV" required:"true"`
	Port         string `envconfig:"VINOTECA_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"VINOTECA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"VINOTECA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"VINOTECA_DB_DSN"`
	Driver string `envconfig:"VINOTECA_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"VINOTECA_DB_HOST"`
	LegacyPort     int    `envconfig:"VINOTECA_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"VINOTECA_DB_USER"`
	LegacyPassword string `envconfig:"VINOTECA_DB_PASSWORD"`
	LegacyName     string `envconfig:"VINOTECA_DB_NAME"`
	LegacySSLMode  string `envconfig:"VINOTECA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"VINOTECA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"VINOTECA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"VINOTECA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"VINOTECA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// ensureDSN builds a DSN from the discrete host/user fields when one was not
// provided directly.
func (d *DBConfig) ensureDSN() error {
	if d.DSN != "" {
		return nil
	}
	if d.LegacyHost == "" || d.LegacyUser == "" || d.LegacyName == "" {
		return fmt.Errorf("either VINOTECA_DB_DSN or VINOTECA_DB_HOST/USER/NAME must be set")
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.LegacyUser, d.LegacyPassword),
		Host:   fmt.Sprintf("%s:%d", d.LegacyHost, d.LegacyPort),
		Path:   d.LegacyName,
	}
	q := u.Query()
	q.Set("sslmode", d.LegacySSLMode)
	u.RawQuery = q.Encode()
	d.DSN = u.String()
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"VINOTECA_REDIS_URL"`
	Address      string        `envconfig:"VINOTECA_REDIS_ADDR"`
	Password     string        `envconfig:"VINOTECA_REDIS_PASSWORD"`
	DB           int           `envconfig:"VINOTECA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"VINOTECA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"VINOTECA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"VINOTECA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"VINOTECA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"VINOTECA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"VINOTECA_FEATURE_AUTO_MIGRATE" default:"false"`
}
