package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Store     StoreConfig     `mapstructure:"store"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Map       MapConfig       `mapstructure:"map"`
}

type ServerConfig struct {
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
	AllowOrigins string `mapstructure:"allow_origins"`
}

// StoreConfig selects the snapshot backend.
type StoreConfig struct {
	Driver string `mapstructure:"driver"` // badger | valkey | postgres | memory
	Path   string `mapstructure:"path"`   // badger directory
	Key    string `mapstructure:"key"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type ValkeyConfig struct {
	Addr string `mapstructure:"addr"`
}

type NATSConfig struct {
	URL     string `mapstructure:"url"`
	Enabled bool   `mapstructure:"enabled"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

// MapConfig is the static configuration of the map surface.
type MapConfig struct {
	TileURL     string  `mapstructure:"tile_url" json:"tile_url"`
	Attribution string  `mapstructure:"attribution" json:"attribution"`
	CenterLat   float64 `mapstructure:"center_lat" json:"center_lat"`
	CenterLng   float64 `mapstructure:"center_lng" json:"center_lng"`
	Zoom        int     `mapstructure:"zoom" json:"zoom"`
	Cluster     bool    `mapstructure:"cluster" json:"cluster"`
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("server.allow_origins", "http://localhost:3000, http://localhost:5173")
	v.SetDefault("store.driver", "badger")
	v.SetDefault("store.path", "./data/markers")
	v.SetDefault("store.key", "markers")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "markermap")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "markermap")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.enabled", false)
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("map.tile_url", "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png")
	v.SetDefault("map.attribution", `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors`)
	v.SetDefault("map.center_lat", 46.772397)
	v.SetDefault("map.center_lng", 23.603139)
	v.SetDefault("map.zoom", 13)
	v.SetDefault("map.cluster", true)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: MARKERMAP_STORE_DRIVER → store.driver
	v.SetEnvPrefix("MARKERMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if c.Store.Key == "" {
		errs = append(errs, "store.key is required")
	}

	switch c.Store.Driver {
	case "badger":
		if c.Store.Path == "" {
			errs = append(errs, "store.path is required for the badger driver")
		}
	case "valkey":
		if c.Valkey.Addr == "" {
			errs = append(errs, "valkey.addr is required for the valkey driver")
		}
	case "postgres":
		if c.Database.Host == "" {
			errs = append(errs, "database.host is required")
		}
		if c.Database.Port <= 0 || c.Database.Port > 65535 {
			errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", c.Database.Port))
		}
		if c.Database.User == "" {
			errs = append(errs, "database.user is required")
		}
		if c.Database.DBName == "" {
			errs = append(errs, "database.dbname is required")
		}
	case "memory":
	default:
		errs = append(errs, fmt.Sprintf("store.driver must be one of badger, valkey, postgres, memory, got %q", c.Store.Driver))
	}

	if c.NATS.Enabled && c.NATS.URL == "" {
		errs = append(errs, "nats.url is required when nats is enabled")
	}
	if c.Map.TileURL == "" {
		errs = append(errs, "map.tile_url is required")
	}
	if c.Map.CenterLat < -90 || c.Map.CenterLat > 90 || c.Map.CenterLng < -180 || c.Map.CenterLng > 180 {
		errs = append(errs, fmt.Sprintf("map center out of range: %v, %v", c.Map.CenterLat, c.Map.CenterLng))
	}
	if c.Map.Zoom < 0 || c.Map.Zoom > 22 {
		errs = append(errs, fmt.Sprintf("map.zoom must be 0-22, got %d", c.Map.Zoom))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
