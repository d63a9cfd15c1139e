package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string   `mapstructure:"PORT"`
	Env         string   `mapstructure:"ENV"`
	DatabaseURL string   `mapstructure:"DATABASE_URL"`
	DBMaxConns  int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns  int32    `mapstructure:"DB_MIN_CONNS"`
	CORSOrigins []string `mapstructure:"CORS_ORIGINS"`
	JWTSecret   string   `mapstructure:"AUTH_JWT_SECRET"`

	// Defaults the graph endpoints apply when the query omits them.
	TopNDefault      int `mapstructure:"TOP_N_DEFAULT"`
	NeighborsDefault int `mapstructure:"NEIGHBORS_DEFAULT"`

	// UploadMaxBytes caps dataset upload bodies ("20M", "512K", bare bytes).
	UploadMaxBytes string `mapstructure:"UPLOAD_MAX_BYTES"`
	// RequestTimeoutSeconds is the per-request context deadline.
	RequestTimeoutSeconds int `mapstructure:"REQUEST_TIMEOUT_SECONDS"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("TOP_N_DEFAULT", 10)
	v.SetDefault("NEIGHBORS_DEFAULT", 5)
	v.SetDefault("UPLOAD_MAX_BYTES", "20M")
	v.SetDefault("REQUEST_TIMEOUT_SECONDS", 30)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("AUTH_JWT_SECRET")
	v.BindEnv("TOP_N_DEFAULT")
	v.BindEnv("NEIGHBORS_DEFAULT")
	v.BindEnv("UPLOAD_MAX_BYTES")
	v.BindEnv("REQUEST_TIMEOUT_SECONDS")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.IsDev() {
		log.Println("WARNING: server is running in DEVELOPMENT mode (ENV=development).")
		log.Println("WARNING: requests are not authenticated; set ENV=production and AUTH_JWT_SECRET for production.")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// HasDatabase reports whether a Postgres catalog store is configured.
// Without one the server falls back to the in-memory catalog repository
// and hierarchy labels degrade to raw codes until catalog CSVs are loaded.
func (c *Config) HasDatabase() bool {
	return c.DatabaseURL != ""
}

// Validate checks that the configuration is safe to run. In production
// AUTH_JWT_SECRET must be set so that bearer tokens are actually verified.
func (c *Config) Validate() error {
	if c.IsProduction() && c.JWTSecret == "" {
		return fmt.Errorf("AUTH_JWT_SECRET is required in production. " +
			"Refusing to start without authentication configuration")
	}
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS (%d) must not exceed DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}
	if c.TopNDefault <= 0 {
		return fmt.Errorf("TOP_N_DEFAULT must be positive, got %d", c.TopNDefault)
	}
	if c.NeighborsDefault < 0 {
		return fmt.Errorf("NEIGHBORS_DEFAULT must not be negative, got %d", c.NeighborsDefault)
	}
	if c.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT_SECONDS must be positive, got %d", c.RequestTimeoutSeconds)
	}
	return nil
}
