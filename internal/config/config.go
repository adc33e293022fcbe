package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the top-level application configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Log      LogConfig      `koanf:"log"`
	Auth     AuthConfig     `koanf:"auth"`
	Library  LibraryConfig  `koanf:"library"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host       string     `koanf:"host"`
	Port       int        `koanf:"port"`
	Mode       string     `koanf:"mode"`
	CSRFSecret string     `koanf:"csrf_secret"`
	CORS       CORSConfig `koanf:"cors"`
}

// CORSConfig holds CORS middleware settings.
type CORSConfig struct {
	AllowOrigins     []string `koanf:"allow_origins"`
	AllowCredentials bool     `koanf:"allow_credentials"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Driver   string         `koanf:"driver"`
	SQLite   SQLiteConfig   `koanf:"sqlite"`
	Postgres PostgresConfig `koanf:"postgres"`
	Pool     PoolConfig     `koanf:"pool"`
}

// SQLiteConfig holds SQLite-specific settings.
type SQLiteConfig struct {
	Path string `koanf:"path"`
}

// PostgresConfig holds PostgreSQL-specific settings.
type PostgresConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	DBName   string `koanf:"dbname"`
	SSLMode  string `koanf:"sslmode"`
}

// PoolConfig holds database connection pool settings.
type PoolConfig struct {
	MaxIdleConns    int    `koanf:"max_idle_conns"`
	MaxOpenConns    int    `koanf:"max_open_conns"`
	ConnMaxLifetime string `koanf:"conn_max_lifetime"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level           string `koanf:"level"`
	Format          string `koanf:"format"`
	Color           *bool  `koanf:"color"`
	FilePath        string `koanf:"file_path"`
	MaxSizeMB       int    `koanf:"max_size_mb"`
	RetentionDays   int    `koanf:"retention_days"`
	MaxBackups      int    `koanf:"max_backups"`
	CompressRotated *bool  `koanf:"compress_rotated"`
}

// AuthConfig holds session credential and access gate settings.
type AuthConfig struct {
	JWTSecret   string          `koanf:"jwt_secret"`
	TokenExpiry string          `koanf:"token_expiry"`
	LoginPath   string          `koanf:"login_path"`
	Protected   []ProtectedRule `koanf:"protected"`
	SeedAdmin   SeedAdminConfig `koanf:"seed_admin"`
}

// SeedAdminConfig declares an administrator account created at startup when
// no member with the given email exists. Seeding is skipped entirely when
// Email is empty.
type SeedAdminConfig struct {
	Name     string `koanf:"name"`
	Email    string `koanf:"email"`
	Password string `koanf:"password"`
}

// ProtectedRule declares one protected path prefix. Rules apply in
// declaration order, first prefix match wins. An empty Role means any valid
// credential passes; otherwise the credential's role must match exactly.
type ProtectedRule struct {
	Prefix string `koanf:"prefix"`
	Role   string `koanf:"role"`
}

// LibraryConfig holds circulation policy settings.
type LibraryConfig struct {
	LoanPeriod string `koanf:"loan_period"`
}

// Load reads configuration from a YAML file and overlays environment
// variables. Environment variables use the prefix "APP__" and
// double-underscore as the hierarchy separator; single underscores stay part
// of the key. For example APP__SERVER__PORT=9090 overrides server.port and
// APP__AUTH__JWT_SECRET overrides auth.jwt_secret.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
	}

	if err := k.Load(env.Provider("APP__", ".", func(s string) string {
		key := strings.TrimPrefix(s, "APP__")
		key = strings.ToLower(key)
		key = strings.ReplaceAll(key, "__", ".")
		return key
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks cross-field constraints and supported values, normalizing
// whitespace along the way.
func (c *Config) Validate() error {
	mode := strings.TrimSpace(c.Server.Mode)
	switch mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		c.Server.Mode = mode
	default:
		return fmt.Errorf("invalid server.mode %q: must be one of %q, %q, %q", c.Server.Mode, gin.DebugMode, gin.ReleaseMode, gin.TestMode)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d: must be between 1 and 65535", c.Server.Port)
	}

	host := strings.TrimSpace(c.Server.Host)
	if host == "" {
		return fmt.Errorf("server.host is required")
	}
	c.Server.Host = host

	// An empty or placeholder csrf_secret is resolved at startup: rejected
	// in release mode, replaced with a random one otherwise.
	c.Server.CSRFSecret = strings.TrimSpace(c.Server.CSRFSecret)

	switch c.Database.Driver {
	case "sqlite", "postgres":
		// ok
	default:
		return fmt.Errorf("invalid database.driver %q: must be one of %q, %q", c.Database.Driver, "sqlite", "postgres")
	}

	if c.Database.Driver == "sqlite" {
		sqlitePath := strings.TrimSpace(c.Database.SQLite.Path)
		if sqlitePath == "" {
			return fmt.Errorf("database.sqlite.path is required when driver is sqlite")
		}
		c.Database.SQLite.Path = sqlitePath
	}

	if c.Database.Driver == "postgres" {
		pgHost := strings.TrimSpace(c.Database.Postgres.Host)
		if pgHost == "" {
			return fmt.Errorf("database.postgres.host is required when driver is postgres")
		}
		if c.Database.Postgres.Port < 1 || c.Database.Postgres.Port > 65535 {
			return fmt.Errorf("invalid database.postgres.port %d: must be between 1 and 65535", c.Database.Postgres.Port)
		}
		user := strings.TrimSpace(c.Database.Postgres.User)
		if user == "" {
			return fmt.Errorf("database.postgres.user is required when driver is postgres")
		}
		dbName := strings.TrimSpace(c.Database.Postgres.DBName)
		if dbName == "" {
			return fmt.Errorf("database.postgres.dbname is required when driver is postgres")
		}
		sslMode := strings.TrimSpace(c.Database.Postgres.SSLMode)
		switch sslMode {
		case "disable", "allow", "prefer", "require", "verify-ca", "verify-full":
			// ok
		default:
			return fmt.Errorf("invalid database.postgres.sslmode %q", c.Database.Postgres.SSLMode)
		}
		if c.Server.Mode == gin.ReleaseMode {
			switch sslMode {
			case "require", "verify-ca", "verify-full":
				// ok
			default:
				return fmt.Errorf("invalid database.postgres.sslmode %q for server.mode %q: must be one of %q, %q, %q", c.Database.Postgres.SSLMode, gin.ReleaseMode, "require", "verify-ca", "verify-full")
			}
		}
		c.Database.Postgres.Host = pgHost
		c.Database.Postgres.User = user
		c.Database.Postgres.DBName = dbName
		c.Database.Postgres.SSLMode = sslMode
	}

	c.Database.Pool.ConnMaxLifetime = strings.TrimSpace(c.Database.Pool.ConnMaxLifetime)
	if lm := c.Database.Pool.ConnMaxLifetime; lm != "" {
		d, err := time.ParseDuration(lm)
		if err != nil {
			return fmt.Errorf("invalid database.pool.conn_max_lifetime %q: %w", c.Database.Pool.ConnMaxLifetime, err)
		}
		if d <= 0 {
			return fmt.Errorf("invalid database.pool.conn_max_lifetime %q: must be greater than 0", c.Database.Pool.ConnMaxLifetime)
		}
	}

	// Auth settings are always required: the access gate and login flow
	// depend on them.
	jwtSecret := strings.TrimSpace(c.Auth.JWTSecret)
	if jwtSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	if len(jwtSecret) < 32 {
		return fmt.Errorf("invalid auth.jwt_secret: must be at least 32 characters")
	}
	c.Auth.JWTSecret = jwtSecret

	tokenExpiry := strings.TrimSpace(c.Auth.TokenExpiry)
	if tokenExpiry == "" {
		tokenExpiry = "168h" // 7 days
	}
	td, err := time.ParseDuration(tokenExpiry)
	if err != nil {
		return fmt.Errorf("invalid auth.token_expiry %q: %w", c.Auth.TokenExpiry, err)
	}
	if td <= 0 {
		return fmt.Errorf("invalid auth.token_expiry %q: must be greater than 0", c.Auth.TokenExpiry)
	}
	c.Auth.TokenExpiry = tokenExpiry

	loginPath := strings.TrimSpace(c.Auth.LoginPath)
	if loginPath == "" {
		loginPath = "/auth"
	}
	if !strings.HasPrefix(loginPath, "/") {
		return fmt.Errorf("invalid auth.login_path %q: must start with '/'", c.Auth.LoginPath)
	}
	c.Auth.LoginPath = loginPath

	c.Auth.SeedAdmin.Name = strings.TrimSpace(c.Auth.SeedAdmin.Name)
	c.Auth.SeedAdmin.Email = strings.TrimSpace(c.Auth.SeedAdmin.Email)
	if c.Auth.SeedAdmin.Email == "" {
		if c.Auth.SeedAdmin.Password != "" {
			return fmt.Errorf("auth.seed_admin.password is set but auth.seed_admin.email is empty")
		}
	} else {
		if c.Auth.SeedAdmin.Name == "" {
			c.Auth.SeedAdmin.Name = "Administrator"
		}
		if len(c.Auth.SeedAdmin.Password) < 8 {
			return fmt.Errorf("invalid auth.seed_admin.password: must be at least 8 characters")
		}
		if len(c.Auth.SeedAdmin.Password) > 72 {
			return fmt.Errorf("invalid auth.seed_admin.password: must not exceed 72 characters")
		}
	}

	for i, rule := range c.Auth.Protected {
		prefix := strings.TrimSpace(rule.Prefix)
		if prefix == "" {
			return fmt.Errorf("auth.protected[%d].prefix cannot be empty", i)
		}
		if !strings.HasPrefix(prefix, "/") {
			return fmt.Errorf("invalid auth.protected[%d].prefix %q: must start with '/'", i, rule.Prefix)
		}
		if strings.HasPrefix(loginPath, prefix) {
			return fmt.Errorf("auth.protected[%d].prefix %q covers the login path %q", i, prefix, loginPath)
		}
		c.Auth.Protected[i].Prefix = prefix
		c.Auth.Protected[i].Role = strings.TrimSpace(rule.Role)
	}

	loanPeriod := strings.TrimSpace(c.Library.LoanPeriod)
	if loanPeriod == "" {
		loanPeriod = "336h" // 14 days
	}
	lp, err := time.ParseDuration(loanPeriod)
	if err != nil {
		return fmt.Errorf("invalid library.loan_period %q: %w", c.Library.LoanPeriod, err)
	}
	if lp <= 0 {
		return fmt.Errorf("invalid library.loan_period %q: must be greater than 0", c.Library.LoanPeriod)
	}
	c.Library.LoanPeriod = loanPeriod

	level := strings.ToLower(strings.TrimSpace(c.Log.Level))
	switch level {
	case "debug", "info", "warn", "error":
		c.Log.Level = level
	default:
		return fmt.Errorf("invalid log.level %q: must be one of %q, %q, %q, %q", c.Log.Level, "debug", "info", "warn", "error")
	}

	format := strings.ToLower(strings.TrimSpace(c.Log.Format))
	switch format {
	case "text", "json":
		c.Log.Format = format
	default:
		return fmt.Errorf("invalid log.format %q: must be one of %q, %q", c.Log.Format, "text", "json")
	}

	return nil
}

// TokenExpiryDuration returns the parsed token expiry. Validate must have
// run first.
func (c *Config) TokenExpiryDuration() time.Duration {
	d, _ := time.ParseDuration(c.Auth.TokenExpiry)
	return d
}

// LoanPeriodDuration returns the parsed loan period. Validate must have run
// first.
func (c *Config) LoanPeriodDuration() time.Duration {
	d, _ := time.ParseDuration(c.Library.LoanPeriod)
	return d
}
