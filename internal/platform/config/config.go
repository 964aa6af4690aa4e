// Package config loads server configuration from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds every tunable of the engine server.
type Config struct {
	// Addr is the HTTP/WebSocket listen address.
	Addr string `env:"COMPLOT_ADDR" envDefault:":8080"`

	// DBPath is the SQLite database file for snapshots and the journal.
	DBPath string `env:"COMPLOT_DB" envDefault:"complot.db"`

	// CatalogDir optionally points at YAML overlay files merged over the
	// builtin catalog. Empty means builtins only.
	CatalogDir string `env:"COMPLOT_CATALOG_DIR"`

	// TickInterval is the scheduler cadence for passive accrual.
	TickInterval time.Duration `env:"COMPLOT_TICK_INTERVAL" envDefault:"1s"`

	// AutosaveDebounce coalesces rapid snapshot writes into one.
	AutosaveDebounce time.Duration `env:"COMPLOT_AUTOSAVE_DEBOUNCE" envDefault:"3s"`

	// Seed overrides the RNG seed for reproducible sessions. Zero means a
	// non-deterministic source.
	Seed uint64 `env:"COMPLOT_SEED"`

	// ClientSendBuffer is the per-WebSocket outbound queue length.
	ClientSendBuffer int `env:"COMPLOT_CLIENT_SEND_BUFFER" envDefault:"64"`

	// MinActionInterval rate-limits a single client's action frames.
	MinActionInterval time.Duration `env:"COMPLOT_MIN_ACTION_INTERVAL" envDefault:"20ms"`
}

// Load parses the configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
