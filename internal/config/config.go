package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Log        LogConfig        `mapstructure:"log"`
	CORS       CORSConfig       `mapstructure:"cors"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"`
	StaticDir       string        `mapstructure:"static_dir"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	URL             string        `mapstructure:"url"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	CACert          string        `mapstructure:"ca_cert"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool   `mapstructure:"prometheus_enabled"`
	MetricsPath       string `mapstructure:"metrics_path"`
}

// envAliases binds the short variable names used by hosting platforms.
var envAliases = map[string]string{
	"server.port":          "PORT",
	"database.url":         "DATABASE_URL",
	"database.driver":      "DB_DRIVER",
	"database.ca_cert":     "DB_CA_CERT",
	"log.level":            "LOG_LEVEL",
	"cors.allowed_origins": "CORS_ORIGINS",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)
	v.SetDefault("server.request_timeout", 25*time.Second)
	v.SetDefault("server.max_body_bytes", 1<<20)
	v.SetDefault("server.static_dir", "")

	v.SetDefault("database.driver", DriverPostgres)
	v.SetDefault("database.url", "")
	v.SetDefault("database.host", "")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.ca_cert", "")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("cors.allowed_origins", []string{
		"http://localhost:8000",
		"http://127.0.0.1:8000",
		"http://localhost:5500",
		"http://127.0.0.1:5500",
	})

	v.SetDefault("rate_limit.enabled", false)
	v.SetDefault("rate_limit.requests_per_second", 50)
	v.SetDefault("rate_limit.burst", 100)

	v.SetDefault("monitoring.prometheus_enabled", true)
	v.SetDefault("monitoring.metrics_path", "/metrics")
}

// LoadConfig reads config.yaml from . or ./config when present, then
// applies environment overrides (SERVER_PORT, DATABASE_URL, ...).
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envAliases {
		if err := v.BindEnv(key, strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres:
		if strings.TrimSpace(c.Database.URL) == "" && c.Database.Host == "" {
			return errors.New("DATABASE_URL is not set")
		}
	case DriverSQLite:
		if strings.TrimSpace(c.Database.URL) == "" {
			return errors.New("DATABASE_URL is not set")
		}
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	return nil
}

// DSN returns the connection string handed to the driver.
func (c DatabaseConfig) DSN() (string, error) {
	if c.Driver == DriverSQLite {
		return sqliteDSN(strings.TrimSpace(c.URL)), nil
	}

	raw := strings.TrimSpace(c.URL)
	if raw == "" {
		return fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			c.Host,
			c.Port,
			c.User,
			c.Password,
			c.Name,
			c.SSLMode,
		), nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid database url: %w", err)
	}
	if u.Scheme == "postgresql" {
		u.Scheme = "postgres"
	}

	q := u.Query()
	// Managed providers hand out ssl-mode=REQUIRED, which lib/pq rejects.
	for _, key := range []string{"ssl-mode", "ssl_mode"} {
		if mode := q.Get(key); mode != "" && q.Get("sslmode") == "" {
			q.Set("sslmode", normalizeSSLMode(mode))
		}
		q.Del(key)
	}

	if c.CACert != "" {
		path, err := writeCACert(c.CACert)
		if err != nil {
			return "", err
		}
		q.Set("sslrootcert", path)
		if q.Get("sslmode") == "" {
			q.Set("sslmode", "verify-ca")
		}
	}

	u.RawQuery = q.Encode()
	return u.String(), nil
}

func normalizeSSLMode(mode string) string {
	switch strings.ToLower(mode) {
	case "required", "require":
		return "require"
	case "disabled", "disable":
		return "disable"
	case "verify_ca", "verify-ca":
		return "verify-ca"
	case "verify_identity", "verify-full":
		return "verify-full"
	default:
		return strings.ToLower(mode)
	}
}

func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_foreign_keys") || strings.Contains(dsn, "_fk=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_foreign_keys=on"
}

func writeCACert(pem string) (string, error) {
	path := filepath.Join(os.TempDir(), "clinic-db-ca.pem")
	if err := os.WriteFile(path, []byte(pem), 0o600); err != nil {
		return "", fmt.Errorf("failed to write CA certificate: %w", err)
	}
	return path, nil
}
