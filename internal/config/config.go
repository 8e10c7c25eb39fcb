package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ICSConfig describes a single ICS source imported into the event collection.
type ICSConfig struct {
	// URL is an http(s) feed or a local file path (file:// or plain path).
	URL string `yaml:"url" json:"url"`
	// ID is an internal identifier used for de-dup and logging.
	ID string `yaml:"id" json:"id"`
	// Name is a human-friendly label shown in the UI.
	Name string `yaml:"name" json:"name"`
	// Color is the palette tag given to imported events without their own color.
	Color string `yaml:"color,omitempty" json:"color,omitempty"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// GridConfig shapes the day/week time grid.
type GridConfig struct {
	StartHour  int `yaml:"start_hour" json:"start_hour"`
	EndHour    int `yaml:"end_hour" json:"end_hour"`
	HourHeight int `yaml:"hour_height" json:"hour_height"`
}

// PaletteEntry is one togglable color label.
type PaletteEntry struct {
	Name   string `yaml:"name" json:"name"`
	Label  string `yaml:"label" json:"label"`
	Hex    string `yaml:"hex" json:"hex"`
	Active bool   `yaml:"active" json:"active"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the API.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA timezone whose wall clock the calendar uses.
	Timezone string `yaml:"timezone" json:"timezone"`

	// WeekStart controls which weekday is treated as the first day of the week
	// in calendar views. Supported values:
	//   - "sunday" (default)
	//   - "monday"
	WeekStart string `yaml:"week_start" json:"week_start"`

	// AgendaDays is the length of the agenda window.
	AgendaDays int `yaml:"agenda_days" json:"agenda_days"`

	// RefreshCron is a cron-style schedule string (e.g. "*/15 * * * *")
	// used to re-import ICS sources.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	LogLevel    string `yaml:"log_level" json:"log_level"`
	LogEncoding string `yaml:"log_encoding" json:"log_encoding"`

	// CacheSize bounds the number of cached render models.
	CacheSize int `yaml:"cache_size" json:"cache_size"`

	// CacheDir stores downloaded ICS bodies and their HTTP cache metadata.
	CacheDir string `yaml:"cache_dir" json:"cache_dir"`

	Grid GridConfig `yaml:"grid" json:"grid"`

	Palette []PaletteEntry `yaml:"palette" json:"palette"`

	// ICS is the list of imported ICS sources.
	ICS []ICSConfig `yaml:"ics" json:"ics"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all endpoints
	// except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultPalette mirrors the labels shipped with the calendar UI.
func DefaultPalette() []PaletteEntry {
	return []PaletteEntry{
		{Name: "emerald", Label: "My Events", Hex: "#10b981", Active: true},
		{Name: "orange", Label: "Marketing Team", Hex: "#f97316", Active: true},
		{Name: "violet", Label: "Interviews", Hex: "#8b5cf6", Active: true},
		{Name: "blue", Label: "Events", Hex: "#3b82f6", Active: true},
		{Name: "rose", Label: "Holidays", Hex: "#f43f5e", Active: true},
	}
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:      "127.0.0.1:8080",
		Timezone:    "Local",
		WeekStart:   "sunday",
		AgendaDays:  30,
		RefreshCron: "*/15 * * * *",
		LogLevel:    "info",
		LogEncoding: "console",
		CacheSize:   128,
		CacheDir:    "./cache/ics-cache",
		Grid: GridConfig{
			StartHour:  0,
			EndHour:    24,
			HourHeight: 64,
		},
		Palette:   DefaultPalette(),
		ICS:       []ICSConfig{},
		BasicAuth: nil,
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs (e.g., older versions) still behave correctly.
func (c *Config) Normalize() {
	def := DefaultConfig()
	if c.Listen == "" {
		c.Listen = def.Listen
	}
	if c.Timezone == "" {
		c.Timezone = def.Timezone
	}
	switch c.WeekStart {
	case "monday", "sunday":
		// ok
	default:
		// Unknown value; fall back to sunday to avoid surprising layouts.
		c.WeekStart = "sunday"
	}
	if c.AgendaDays <= 0 {
		c.AgendaDays = def.AgendaDays
	}
	if c.RefreshCron == "" {
		c.RefreshCron = def.RefreshCron
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if c.LogEncoding == "" {
		c.LogEncoding = def.LogEncoding
	}
	if c.CacheSize <= 0 {
		c.CacheSize = def.CacheSize
	}
	if c.CacheDir == "" {
		c.CacheDir = def.CacheDir
	}
	if c.Grid.StartHour < 0 || c.Grid.StartHour > 23 {
		c.Grid.StartHour = def.Grid.StartHour
	}
	if c.Grid.EndHour <= c.Grid.StartHour || c.Grid.EndHour > 24 {
		c.Grid.EndHour = def.Grid.EndHour
	}
	if c.Grid.HourHeight <= 0 {
		c.Grid.HourHeight = def.Grid.HourHeight
	}
	if len(c.Palette) == 0 {
		c.Palette = def.Palette
	}
	if c.ICS == nil {
		c.ICS = []ICSConfig{}
	}
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - read YAML and unmarshal into Config
//   - normalize defaults
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the given configuration to the specified path atomically
// (temp file + rename) with 0600 permissions.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".eventcal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	// Ensure we clean up temp file on error.
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}

// Save is a convenience method on Config that delegates to the package-level
// Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}

// Location resolves Timezone, falling back to time.Local.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// FirstWeekday maps WeekStart to a time.Weekday.
func (c *Config) FirstWeekday() time.Weekday {
	if c.WeekStart == "monday" {
		return time.Monday
	}
	return time.Sunday
}
