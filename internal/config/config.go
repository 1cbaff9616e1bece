package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ICSConfig describes a single ICS subscription source.
type ICSConfig struct {
	// URL is the ICS subscription endpoint.
	URL string `yaml:"url" json:"url"`
	// ID is an internal identifier used for de-dup, event identity and logging.
	ID string `yaml:"id" json:"id"`
	// Name is a human-friendly label shown by consumers of the API.
	Name string `yaml:"name" json:"name"`
	// ColorIndex selects the display color slot for events of this source.
	ColorIndex int `yaml:"color_index" json:"color_index"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// DisplayConfig groups the presentation settings the layout engine is
// parameterized by. These map 1:1 onto layout.DisplaySettings.
type DisplayConfig struct {
	// WeekStart controls which weekday is the first grid column:
	// "monday" (default) or "sunday".
	WeekStart string `yaml:"week_start" json:"week_start"`

	// ShowAdjacentMonths fills leading/trailing empty cells with the
	// neighboring month's day numbers (cosmetic only, no event data).
	ShowAdjacentMonths bool `yaml:"show_adjacent_months" json:"show_adjacent_months"`

	// ShowWeekNumbers enables the ISO week number column.
	ShowWeekNumbers bool `yaml:"show_week_numbers" json:"show_week_numbers"`

	// HideEndedEvents removes events whose end lies strictly in the past
	// from both the spanning bars and the per-day lists.
	HideEndedEvents bool `yaml:"hide_ended_events" json:"hide_ended_events"`

	// EventStyle is "spanning" (multi-day bars, default) or "daily"
	// (per-day membership only, no bars).
	EventStyle string `yaml:"event_style" json:"event_style"`

	// CompactMode raises the per-week visible bar cap from 5 to 6.
	CompactMode bool `yaml:"compact_mode" json:"compact_mode"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the API.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the effective timezone for day boundaries: the literal
	// string "local" for the host clock, or an IANA name such as
	// "Europe/Berlin".
	Timezone string `yaml:"timezone" json:"timezone"`

	// Display holds the layout presentation settings.
	Display DisplayConfig `yaml:"display" json:"display"`

	// RefreshCron is a cron-style schedule (e.g. "*/15 * * * *") for the
	// background ICS refresh that keeps the feed cache warm.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// FetchTimeout bounds a single ICS fetch. Zero means the default.
	FetchTimeout time.Duration `yaml:"fetch_timeout" json:"fetch_timeout"`

	// ICS is the list of subscribed ICS sources.
	ICS []ICSConfig `yaml:"ics" json:"ics"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all
	// endpoints except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:   "127.0.0.1:8080",
		Timezone: "local",
		Display: DisplayConfig{
			WeekStart:          "monday",
			ShowAdjacentMonths: true,
			ShowWeekNumbers:    false,
			HideEndedEvents:    false,
			EventStyle:         "spanning",
			CompactMode:        false,
		},
		RefreshCron:  "*/15 * * * *",
		FetchTimeout: 15 * time.Second,
		ICS:          []ICSConfig{},
		BasicAuth:    nil,
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	if c.Timezone == "" {
		c.Timezone = "local"
	}
	switch c.Display.WeekStart {
	case "monday", "sunday":
		// ok
	case "":
		c.Display.WeekStart = "monday"
	default:
		// Unknown value; fall back to monday to avoid surprising layouts.
		c.Display.WeekStart = "monday"
	}
	switch c.Display.EventStyle {
	case "spanning", "daily":
		// ok
	default:
		c.Display.EventStyle = "spanning"
	}
	if c.RefreshCron == "" {
		c.RefreshCron = "*/15 * * * *"
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = 15 * time.Second
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

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Marshals cfg to YAML.
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600.
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

	// Atomic write: write to temp file in same directory then rename.
	tmp, err := os.CreateTemp(dir, ".gridcal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

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

	if err := os.Rename(tmpName, path); err != nil {
		return err
	}

	return nil
}

// Save is a convenience method on Config that delegates to the package-level
// Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
