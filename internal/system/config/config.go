package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabasesConfig   `mapstructure:"database"`
	Email       EmailConfig       `mapstructure:"email"`
	RateLimit   RateLimitConfig   `mapstructure:"rate_limit"`
	ServiceArea ServiceAreaConfig `mapstructure:"service_area"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	CORS        CORSConfig        `mapstructure:"cors"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Hostname     string        `mapstructure:"hostname"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"readTimeout"`
	WriteTimeout time.Duration `mapstructure:"writeTimeout"`
	IdleTimeout  time.Duration `mapstructure:"idleTimeout"`
}

// DatabasesConfig holds all database configurations
type DatabasesConfig struct {
	Requests DatabaseConfig `mapstructure:"requests"`
}

// DatabaseConfig holds individual database configuration
type DatabaseConfig struct {
	Type            string        `mapstructure:"type"`
	Hostname        string        `mapstructure:"hostname"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// EmailConfig holds the SMTP notification channel configuration.
// Notifications are silently skipped when Enabled is false.
type EmailConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	AppURL   string `mapstructure:"app_url"`
}

// RateLimitPool holds the fixed-window rule for one named limiter pool.
type RateLimitPool struct {
	Max    int           `mapstructure:"max"`
	Window time.Duration `mapstructure:"window"`
}

// RateLimitConfig holds the named limiter pools.
type RateLimitConfig struct {
	Auth     RateLimitPool `mapstructure:"auth"`
	APIWrite RateLimitPool `mapstructure:"api_write"`
	Waitlist RateLimitPool `mapstructure:"waitlist"`
}

// ServiceAreaConfig holds the allowed postcode prefixes for request intake.
type ServiceAreaConfig struct {
	AllowedPostcodes []string `mapstructure:"allowed_postcodes"`
}

// IsPostcodeAllowed reports whether the postcode falls inside the service
// area. Comparison is case-insensitive and ignores whitespace.
func (s *ServiceAreaConfig) IsPostcodeAllowed(postcode string) bool {
	normalized := strings.ToUpper(strings.ReplaceAll(postcode, " ", ""))
	for _, prefix := range s.AllowedPostcodes {
		if strings.HasPrefix(normalized, strings.ToUpper(prefix)) {
			return true
		}
	}
	return false
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
}

var globalConfig *Config

// Load reads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("deployment")
		v.SetConfigType("yaml")
		v.AddConfigPath("./repository/conf")
		v.AddConfigPath("./cmd/server/repository/conf")
		v.AddConfigPath("../repository/conf")
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()
	v.SetEnvPrefix("HAMPSTEAD")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	globalConfig = &config
	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.hostname", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("service_area.allowed_postcodes", []string{"NW3", "NW6", "NW8"})
	v.SetDefault("rate_limit.auth.max", 5)
	v.SetDefault("rate_limit.auth.window", time.Minute)
	v.SetDefault("rate_limit.api_write.max", 20)
	v.SetDefault("rate_limit.api_write.window", time.Minute)
	v.SetDefault("rate_limit.waitlist.max", 3)
	v.SetDefault("rate_limit.waitlist.window", time.Minute)
}

// validateConfig validates the configuration
func validateConfig(config *Config) error {
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	if config.Database.Requests.Hostname == "" {
		return fmt.Errorf("database hostname is required")
	}

	if config.Database.Requests.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if config.Email.Enabled {
		if config.Email.Host == "" {
			return fmt.Errorf("email host is required when email is enabled")
		}
		if config.Email.From == "" {
			return fmt.Errorf("email from address is required when email is enabled")
		}
	}

	if len(config.ServiceArea.AllowedPostcodes) == 0 {
		return fmt.Errorf("at least one allowed postcode prefix is required")
	}

	for _, pool := range []struct {
		name string
		rule RateLimitPool
	}{
		{"auth", config.RateLimit.Auth},
		{"api_write", config.RateLimit.APIWrite},
		{"waitlist", config.RateLimit.Waitlist},
	} {
		if pool.rule.Max <= 0 {
			return fmt.Errorf("rate limit pool %s: max must be positive", pool.name)
		}
		if pool.rule.Window <= 0 {
			return fmt.Errorf("rate limit pool %s: window must be positive", pool.name)
		}
	}

	return nil
}

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// SetGlobal sets the global configuration (for testing purposes)
func SetGlobal(cfg *Config) {
	globalConfig = cfg
}

// GetDSN returns the database connection string
func (d *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&multiStatements=true",
		d.User,
		d.Password,
		d.Hostname,
		d.Port,
		d.Database,
	)
}

// GetServerAddress returns the server address in host:port format
func (s *ServerConfig) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", s.Hostname, s.Port)
}
