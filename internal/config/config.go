package config

import (
	"errors"
	"time"
)

const (
	defaultServerPort        = 8070
	defaultServerTimeout     = 30
	defaultDatabasePort      = 5432
	defaultMaxOpenConns      = 25
	defaultMaxIdleConns      = 5
	defaultConnMaxLifetime   = 5
	defaultRedisAddress      = "localhost:6379"
	defaultDurationMonths    = 12
	defaultRangeFilterDays   = 30
	defaultExclusionCacheTTL = 5 * time.Minute
	defaultExportDateFormat  = "2006-01-02"
	defaultSiteID            = 1
)

type Config struct {
	Debug    bool           `env:"APP_DEBUG" yaml:"debug"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Expiry   ExpiryConfig   `yaml:"expiry"`
	Log      LogConfig      `yaml:"log"`
}

type ServerConfig struct {
	Host         string        `env:"SERVER_HOST"  yaml:"host"`
	Port         int           `env:"SERVER_PORT"  yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	CORSOrigins  []string      `env:"CORS_ORIGINS" yaml:"cors_origins"`
}

type DatabaseConfig struct {
	Host            string        `env:"DB_HOST"     yaml:"host"`
	Port            int           `env:"DB_PORT"     yaml:"port"`
	User            string        `env:"DB_USER"     yaml:"user"`
	Password        string        `env:"DB_PASSWORD" yaml:"password"`
	DBName          string        `env:"DB_NAME"     yaml:"dbname"`
	SSLMode         string        `env:"DB_SSLMODE"  yaml:"sslmode"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// RedisConfig holds the connection shared by the exclusion cache and the
// version event consumer.
type RedisConfig struct {
	Address  string `env:"REDIS_ADDRESS"  yaml:"address"`
	Password string `env:"REDIS_PASSWORD" yaml:"password"`
	DB       int    `env:"REDIS_DB"       yaml:"db"`
	// Events toggles the version lifecycle event consumer.
	Events bool `env:"REDIS_EVENTS_ENABLED" yaml:"events"`
}

// ExpiryConfig is the expiry policy surface, read-only at runtime.
type ExpiryConfig struct {
	// DefaultDurationMonths is the global fallback used when a content type
	// has no default duration configuration row.
	DefaultDurationMonths int `env:"EXPIRY_DEFAULT_DURATION_MONTHS" yaml:"default_duration_months"`
	// RangeFilterDays is the size of the default expires date range window.
	RangeFilterDays int `env:"EXPIRY_RANGE_FILTER_DAYS" yaml:"range_filter_days"`
	// ExclusionCacheTTL bounds the staleness of site-exclusion scoping.
	ExclusionCacheTTL time.Duration `env:"EXPIRY_EXCLUSION_CACHE_TTL" yaml:"exclusion_cache_ttl"`
	// ExportDateFormat is the Go time layout used for exported expiry dates.
	ExportDateFormat string `env:"EXPIRY_EXPORT_DATE_FORMAT" yaml:"export_date_format"`
	// SiteID is the site the changelist is scoped to when the request does
	// not name one.
	SiteID int64 `env:"EXPIRY_SITE_ID" yaml:"site_id"`
}

type LogConfig struct {
	Level string `env:"LOG_LEVEL" yaml:"level"`
}

func (c *Config) Validate() error {
	if c.Server.Host == "" {
		return errors.New("server.host is required")
	}
	if c.Server.Port <= 0 {
		return errors.New("server.port is required and must be positive")
	}
	if c.Database.Host == "" {
		return errors.New("database.host is required")
	}
	if c.Database.Port <= 0 {
		return errors.New("database.port is required and must be positive")
	}
	if c.Database.User == "" {
		return errors.New("database.user is required")
	}
	if c.Database.DBName == "" {
		return errors.New("database.dbname is required")
	}
	if c.Expiry.DefaultDurationMonths <= 0 {
		return errors.New("expiry.default_duration_months must be positive")
	}
	if c.Expiry.RangeFilterDays <= 0 {
		return errors.New("expiry.range_filter_days must be positive")
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = defaultServerPort
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = defaultServerTimeout * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = defaultServerTimeout * time.Second
	}
	if c.Database.Port == 0 {
		c.Database.Port = defaultDatabasePort
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = defaultMaxOpenConns
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = defaultMaxIdleConns
	}
	if c.Database.ConnMaxLifetime == 0 {
		c.Database.ConnMaxLifetime = defaultConnMaxLifetime * time.Minute
	}
	if c.Redis.Address == "" {
		c.Redis.Address = defaultRedisAddress
	}
	if c.Expiry.DefaultDurationMonths == 0 {
		c.Expiry.DefaultDurationMonths = defaultDurationMonths
	}
	if c.Expiry.RangeFilterDays == 0 {
		c.Expiry.RangeFilterDays = defaultRangeFilterDays
	}
	if c.Expiry.ExclusionCacheTTL == 0 {
		c.Expiry.ExclusionCacheTTL = defaultExclusionCacheTTL
	}
	if c.Expiry.ExportDateFormat == "" {
		c.Expiry.ExportDateFormat = defaultExportDateFormat
	}
	if c.Expiry.SiteID == 0 {
		c.Expiry.SiteID = defaultSiteID
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}
