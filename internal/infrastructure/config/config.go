package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Cookie   CookieConfig
	Log      LogConfig
	HTTP     HTTPConfig
	Import   ImportConfig
}

// AppConfig identifies the service and where it listens.
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds PostgreSQL connection and pool settings.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string `mapstructure:"dbname"`
	SSLMode         string `mapstructure:"sslmode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`  // minutes
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // minutes
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// JWTConfig holds token signing settings.
type JWTConfig struct {
	Secret                 string
	RefreshSecret          string        `mapstructure:"refresh_secret"`
	AccessTokenExpiration  time.Duration `mapstructure:"access_token_expiration"`
	RefreshTokenExpiration time.Duration `mapstructure:"refresh_token_expiration"`
	Issuer                 string
	MaxRefreshCount        int `mapstructure:"max_refresh_count"`
}

// CookieConfig holds settings for the refresh-token cookie.
type CookieConfig struct {
	Domain   string
	Path     string
	Secure   bool
	SameSite string `mapstructure:"same_site"` // strict, lax or none
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or a file path
}

// HTTPConfig holds server timeouts, limits and CORS settings.
type HTTPConfig struct {
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxHeaderBytes int           `mapstructure:"max_header_bytes"`
	MaxBodySize    int64         `mapstructure:"max_body_size"`

	RateLimitEnabled  bool          `mapstructure:"rate_limit_enabled"`
	RateLimitRequests int           `mapstructure:"rate_limit_requests"`
	RateLimitWindow   time.Duration `mapstructure:"rate_limit_window"`

	// Login and register endpoints get a stricter limit against
	// credential stuffing.
	AuthRateLimitEnabled  bool          `mapstructure:"auth_rate_limit_enabled"`
	AuthRateLimitRequests int           `mapstructure:"auth_rate_limit_requests"`
	AuthRateLimitWindow   time.Duration `mapstructure:"auth_rate_limit_window"`

	CORSAllowOrigins []string `mapstructure:"cors_allow_origins"`
	CORSAllowMethods []string `mapstructure:"cors_allow_methods"`
	CORSAllowHeaders []string `mapstructure:"cors_allow_headers"`
	TrustedProxies   []string `mapstructure:"trusted_proxies"`
}

// ImportConfig holds CSV import limits.
type ImportConfig struct {
	MaxFileSize int64 `mapstructure:"max_file_size"` // bytes
	MaxRows     int   `mapstructure:"max_rows"`
}

// Load reads configuration from config.toml and the environment. Environment
// variables use the SANABLE_ prefix with underscores for dots, for example
// SANABLE_DATABASE_PASSWORD, and take precedence over the file. Missing keys
// fall back to the defaults registered in setDefaults.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./backend")
	v.AddConfigPath("/app")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// No file is fine, defaults and env vars carry the config.
	}

	v.SetEnvPrefix("SANABLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults registers every config key with its default. Registering a key
// is also what makes its SANABLE_ environment variable visible to Unmarshal,
// so secrets default to the empty string rather than being left out.
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "sanable-backend")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "sanable")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 60)
	v.SetDefault("database.conn_max_idle_time", 30)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.refresh_secret", "")
	v.SetDefault("jwt.access_token_expiration", 15*time.Minute)
	v.SetDefault("jwt.refresh_token_expiration", 168*time.Hour)
	v.SetDefault("jwt.issuer", "sanable-backend")
	v.SetDefault("jwt.max_refresh_count", 10)

	v.SetDefault("cookie.domain", "")
	v.SetDefault("cookie.path", "/")
	v.SetDefault("cookie.secure", false)
	v.SetDefault("cookie.same_site", "lax")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stdout")

	v.SetDefault("http.read_timeout", 15*time.Second)
	v.SetDefault("http.write_timeout", 15*time.Second)
	v.SetDefault("http.idle_timeout", 60*time.Second)
	v.SetDefault("http.request_timeout", 30*time.Second)
	v.SetDefault("http.max_header_bytes", 1<<20)
	v.SetDefault("http.max_body_size", int64(10<<20))
	v.SetDefault("http.rate_limit_enabled", false)
	v.SetDefault("http.rate_limit_requests", 100)
	v.SetDefault("http.rate_limit_window", time.Minute)
	v.SetDefault("http.auth_rate_limit_enabled", false)
	v.SetDefault("http.auth_rate_limit_requests", 5)
	v.SetDefault("http.auth_rate_limit_window", time.Minute)
	// CORS origins deliberately have no fallback to "*": an empty list
	// allows no cross-origin requests until origins are configured.
	v.SetDefault("http.cors_allow_origins", []string{})
	v.SetDefault("http.cors_allow_methods", []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"})
	v.SetDefault("http.cors_allow_headers", []string{"Content-Type", "Authorization", "X-Request-ID"})
	v.SetDefault("http.trusted_proxies", []string{})

	v.SetDefault("import.max_file_size", int64(5<<20))
	v.SetDefault("import.max_rows", 5000)
}

// validate rejects configurations the server must not start with.
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	if c.App.Env == "production" {
		return c.validateProduction()
	}
	return nil
}

func (c *Config) validateProduction() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt.secret is required in production")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("jwt.secret must be at least 32 characters in production")
	}
	if c.Database.Password == "" {
		return fmt.Errorf("database.password is required in production")
	}
	if c.Database.SSLMode == "disable" {
		return fmt.Errorf("database.sslmode cannot be 'disable' in production")
	}
	// The refresh token travels in a cookie, so it must only be sent
	// over HTTPS.
	if !c.Cookie.Secure {
		return fmt.Errorf("cookie.secure must be true in production (HTTPS required for secure cookies)")
	}
	for _, origin := range c.HTTP.CORSAllowOrigins {
		if origin == "*" {
			return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
		}
	}
	return nil
}

// DSN returns the Postgres connection string with escaped credentials.
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
