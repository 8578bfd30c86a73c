package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	AppEnv    string
	LogLevel  string
	Port      string
	JWTSecret string
	EncKey    string
	Database  DatabaseConfig
	Odoo      OdooConfig
	InSales   InSalesConfig
	Sync      SyncConfig
	Redis     RedisConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Database string
	Alter    bool
}

// OdooConfig holds the Odoo XML-RPC connection
type OdooConfig struct {
	URL      string
	Database string
	Username string
	Password string
}

// InSalesConfig tunes the InSales API clients
type InSalesConfig struct {
	Timeout time.Duration
	PerPage int
}

// SyncConfig holds scheduling settings
type SyncConfig struct {
	Interval          int // minutes
	OnStartup         bool
	LockTTL           time.Duration
	PrecisionCacheTTL time.Duration
}

// RedisConfig enables the shared run lock when Addr is set
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// IsProduction reports whether the service runs in production mode
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("port", "3001")

	v.SetDefault("pg_host", "localhost")
	v.SetDefault("pg_port", "5432")
	v.SetDefault("pg_username", "postgres")
	v.SetDefault("pg_password", "")
	v.SetDefault("pg_database", "insalessync")
	v.SetDefault("db_alter", false)

	v.SetDefault("odoo_url", "")
	v.SetDefault("odoo_db", "")
	v.SetDefault("odoo_username", "")
	v.SetDefault("odoo_password", "")

	v.SetDefault("insales_timeout", 60)
	v.SetDefault("insales_per_page", 100)

	v.SetDefault("sync_interval", 15)
	v.SetDefault("sync_on_startup", true)
	v.SetDefault("lock_ttl", 60)
	v.SetDefault("precision_cache_ttl", 10)

	v.SetDefault("redis_addr", "")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)

	v.SetDefault("jwt_secret", "")
	v.SetDefault("enc_key", "")
}

// Load loads configuration from .env and environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()
	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

// FromViper builds the configuration from an initialized viper instance
func FromViper(v *viper.Viper) (*Config, error) {
	jwtSecret := v.GetString("jwt_secret")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	cfg := &Config{
		AppEnv:    v.GetString("app_env"),
		LogLevel:  v.GetString("log_level"),
		Port:      v.GetString("port"),
		JWTSecret: jwtSecret,
		EncKey:    v.GetString("enc_key"),
		Database: DatabaseConfig{
			Host:     v.GetString("pg_host"),
			Port:     v.GetString("pg_port"),
			Username: v.GetString("pg_username"),
			Password: v.GetString("pg_password"),
			Database: v.GetString("pg_database"),
			Alter:    v.GetBool("db_alter"),
		},
		Odoo: OdooConfig{
			URL:      strings.TrimRight(v.GetString("odoo_url"), "/"),
			Database: v.GetString("odoo_db"),
			Username: v.GetString("odoo_username"),
			Password: v.GetString("odoo_password"),
		},
		InSales: InSalesConfig{
			Timeout: time.Duration(v.GetInt("insales_timeout")) * time.Second,
			PerPage: v.GetInt("insales_per_page"),
		},
		Sync: SyncConfig{
			Interval:          v.GetInt("sync_interval"),
			OnStartup:         v.GetBool("sync_on_startup"),
			LockTTL:           time.Duration(v.GetInt("lock_ttl")) * time.Minute,
			PrecisionCacheTTL: time.Duration(v.GetInt("precision_cache_ttl")) * time.Minute,
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis_addr"),
			Password: v.GetString("redis_password"),
			DB:       v.GetInt("redis_db"),
		},
	}

	if cfg.InSales.PerPage <= 0 || cfg.InSales.PerPage > 250 {
		return nil, fmt.Errorf("INSALES_PER_PAGE must be between 1 and 250, got %d", cfg.InSales.PerPage)
	}
	if cfg.Odoo.URL != "" && cfg.Odoo.Database == "" {
		return nil, fmt.Errorf("ODOO_DB is required when ODOO_URL is set")
	}

	return cfg, nil
}
