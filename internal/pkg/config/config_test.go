package config_test

import (
	"strings"
	"testing"

	"github.com/samirrijal/markermap/internal/pkg/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("markermap-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Store.Driver != "badger" {
		t.Errorf("expected badger driver, got %s", cfg.Store.Driver)
	}
	if cfg.Store.Key != "markers" {
		t.Errorf("expected key markers, got %s", cfg.Store.Key)
	}
	if cfg.Map.Zoom != 13 {
		t.Errorf("expected zoom 13, got %d", cfg.Map.Zoom)
	}
	if !strings.Contains(cfg.Map.TileURL, "tile.openstreetmap.org") {
		t.Errorf("unexpected tile url %s", cfg.Map.TileURL)
	}
	if cfg.Telemetry.ServiceName != "markermap-test" {
		t.Errorf("expected service name from argument, got %s", cfg.Telemetry.ServiceName)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("MARKERMAP_STORE_DRIVER", "memory")
	t.Setenv("MARKERMAP_SERVER_PORT", "9090")

	cfg, err := config.Load("markermap-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Store.Driver != "memory" {
		t.Errorf("expected memory driver, got %s", cfg.Store.Driver)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
}

func TestValidate(t *testing.T) {
	valid := func() config.Config {
		return config.Config{
			Server: config.ServerConfig{Port: 8080, ReadTimeout: 10, WriteTimeout: 10},
			Store:  config.StoreConfig{Driver: "memory", Key: "markers"},
			Map:    config.MapConfig{TileURL: "https://tiles/{z}/{x}/{y}.png", CenterLat: 46.77, CenterLng: 23.6, Zoom: 13},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{"ok", func(*config.Config) {}, ""},
		{"bad driver", func(c *config.Config) { c.Store.Driver = "s3" }, "store.driver"},
		{"badger without path", func(c *config.Config) { c.Store.Driver = "badger" }, "store.path"},
		{"valkey without addr", func(c *config.Config) { c.Store.Driver = "valkey" }, "valkey.addr"},
		{"postgres without host", func(c *config.Config) { c.Store.Driver = "postgres" }, "database.host"},
		{"empty key", func(c *config.Config) { c.Store.Key = "" }, "store.key"},
		{"bad port", func(c *config.Config) { c.Server.Port = 0 }, "server.port"},
		{"bad center", func(c *config.Config) { c.Map.CenterLat = 100 }, "map center"},
		{"bad zoom", func(c *config.Config) { c.Map.Zoom = 30 }, "map.zoom"},
		{"nats without url", func(c *config.Config) { c.NATS.Enabled = true }, "nats.url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}
