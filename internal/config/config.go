package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port           string   `mapstructure:"PORT"`
	Env            string   `mapstructure:"ENV"`
	DatabaseURL    string   `mapstructure:"DATABASE_URL"`
	DBMaxConns     int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns     int32    `mapstructure:"DB_MIN_CONNS"`
	CORSOrigins    []string `mapstructure:"CORS_ORIGINS"`
	RateLimitRPS   float64  `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int      `mapstructure:"RATE_LIMIT_BURST"`
	PharmaciesFile string   `mapstructure:"PHARMACIES_FILE"`
	InventoryFile  string   `mapstructure:"INVENTORY_FILE"`
	FormularyFile  string   `mapstructure:"FORMULARY_FILE"`
	DefaultLat     float64  `mapstructure:"DEFAULT_PATIENT_LAT"`
	DefaultLon     float64  `mapstructure:"DEFAULT_PATIENT_LON"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT_RPS", 100)
	v.SetDefault("RATE_LIMIT_BURST", 200)
	v.SetDefault("DEFAULT_PATIENT_LAT", 19.12)
	v.SetDefault("DEFAULT_PATIENT_LON", 72.84)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("RATE_LIMIT_RPS")
	v.BindEnv("RATE_LIMIT_BURST")
	v.BindEnv("PHARMACIES_FILE")
	v.BindEnv("INVENTORY_FILE")
	v.BindEnv("FORMULARY_FILE")
	v.BindEnv("DEFAULT_PATIENT_LAT")
	v.BindEnv("DEFAULT_PATIENT_LON")

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

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// UsePostgres reports whether reference data and inventory should be backed
// by Postgres. When DATABASE_URL is unset the service runs entirely from
// in-memory repositories seeded from the reference data files.
func (c *Config) UsePostgres() bool {
	return c.DatabaseURL != ""
}

// Validate checks that the configuration is safe to run.
func (c *Config) Validate() error {
	if c.DefaultLat < -90 || c.DefaultLat > 90 {
		return fmt.Errorf("DEFAULT_PATIENT_LAT must be in [-90,90], got %v", c.DefaultLat)
	}
	if c.DefaultLon < -180 || c.DefaultLon > 180 {
		return fmt.Errorf("DEFAULT_PATIENT_LON must be in [-180,180], got %v", c.DefaultLon)
	}
	if c.IsProduction() && !c.UsePostgres() {
		return fmt.Errorf("DATABASE_URL is required in production; the in-memory inventory store loses reservations on restart")
	}
	return nil
}
