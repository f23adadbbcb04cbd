// Package userconfig provides user-level configuration for actracker.
// This configuration is stored in ~/.config/actracker/config.yaml and holds
// the opt-in flag, collector credentials and where installation data lives.
package userconfig

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/natefinch/atomic"

	"github.com/animalscode/actracker/pkg/paths"
)

// Tracker configures reporting.
type Tracker struct {
	// Enabled records the site owner's opt-in. Nothing is sent without it.
	Enabled      bool   `yaml:"enabled"`
	Endpoint     string `yaml:"endpoint,omitempty"`
	APIKey       string `yaml:"api_key,omitempty"`
	APISecretKey string `yaml:"api_secret_key,omitempty"`
	// PluginKey and PluginVersion identify the extension in the report's settings section.
	PluginKey     string `yaml:"plugin_key,omitempty"`
	PluginVersion string `yaml:"plugin_version,omitempty"`
	// MinInterval is the minimum time between scheduled reports, e.g. "168h".
	MinInterval string `yaml:"min_interval,omitempty"`
	// Timeout bounds a single submission, e.g. "45s".
	Timeout      string `yaml:"timeout,omitempty"`
	MaxRedirects *int   `yaml:"max_redirects,omitempty"`
	// SettingsSchema lists settings store keys included in reports.
	SettingsSchema []string `yaml:"settings_schema,omitempty"`
}

// Store selects the settings store.
type Store struct {
	// Driver is "sqlite" (default) or "memory". The memory store forgets the
	// last send time when the process exits.
	Driver string `yaml:"driver,omitempty"`
	// Path is the sqlite database file. Defaults to ~/.actracker/settings.db.
	Path string `yaml:"path,omitempty"`
}

// Host points at the installation manifest.
type Host struct {
	Manifest string `yaml:"manifest,omitempty"`
}

// Schedule configures the run command.
type Schedule struct {
	// Interval between send events, e.g. "12h". The tracker throttles on its own,
	// so this only bounds how late a due report can be.
	Interval string `yaml:"interval,omitempty"`
	// Listen is the address of the trigger server; empty disables it.
	Listen string `yaml:"listen,omitempty"`
}

// FilterCommand replaces the value at a filter point with the output of a
// shell command. See hooks.Command for the stdin/stdout contract.
type FilterCommand struct {
	Filter  string `yaml:"filter"`
	Command string `yaml:"command"`
	// Timeout in seconds; 0 uses the default.
	Timeout int `yaml:"timeout,omitempty"`
}

// CurrentVersion is the current version of the user config format
const CurrentVersion = "v1"

// Config represents the user-level actracker configuration
type Config struct {
	mu sync.Mutex

	// Version is the config format version
	Version  string    `yaml:"version,omitempty"`
	Tracker  *Tracker  `yaml:"tracker,omitempty"`
	Store    *Store    `yaml:"store,omitempty"`
	Host     *Host     `yaml:"host,omitempty"`
	Schedule *Schedule `yaml:"schedule,omitempty"`
	// Filters replaces the value at a filter point with a constant.
	Filters map[string]string `yaml:"filters,omitempty"`
	// FilterCommands run after the constant Filters, in order.
	FilterCommands []FilterCommand `yaml:"filter_commands,omitempty"`
}

// Path returns the path to the config file
func Path() string {
	return filepath.Join(paths.GetConfigDir(), "config.yaml")
}

// Load loads the user configuration from path, or from Path() when path is
// empty, then applies environment overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		path = Path()
	}
	config, err := readConfig(path)
	if err != nil {
		return nil, err
	}
	if err := config.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return config, nil
}

// Read loads the file at path (or Path()) as written, without environment
// overrides. Use it when the config is going to be saved back.
func Read(path string) (*Config, error) {
	if path == "" {
		path = Path()
	}
	return readConfig(path)
}

// readConfig reads and parses the config file, returning an empty config if file doesn't exist.
func readConfig(configPath string) (*Config, error) {
	config := &Config{}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// ApplyEnv overrides file values with ACTRACKER_* environment variables.
func (c *Config) ApplyEnv() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.tracker()
	if env := os.Getenv("ACTRACKER_ENABLED"); env != "" {
		enabled, err := strconv.ParseBool(env)
		if err != nil {
			return fmt.Errorf("ACTRACKER_ENABLED: %w", err)
		}
		t.Enabled = enabled
	}
	if env := os.Getenv("ACTRACKER_ENDPOINT"); env != "" {
		t.Endpoint = env
	}
	if env := os.Getenv("ACTRACKER_API_KEY"); env != "" {
		t.APIKey = env
	}
	if env := os.Getenv("ACTRACKER_API_SECRET_KEY"); env != "" {
		t.APISecretKey = env
	}
	return nil
}

// Validate checks the values Load cannot type check on its own.
func (c *Config) Validate() error {
	t := c.GetTracker()
	if _, err := ParseDuration(t.MinInterval); err != nil {
		return fmt.Errorf("tracker.min_interval: %w", err)
	}
	if _, err := ParseDuration(t.Timeout); err != nil {
		return fmt.Errorf("tracker.timeout: %w", err)
	}
	if t.MaxRedirects != nil && *t.MaxRedirects < 0 {
		return fmt.Errorf("tracker.max_redirects must not be negative, got %d", *t.MaxRedirects)
	}
	if _, err := ParseDuration(c.GetSchedule().Interval); err != nil {
		return fmt.Errorf("schedule.interval: %w", err)
	}
	for i, fc := range c.FilterCommands {
		if strings.TrimSpace(fc.Filter) == "" || strings.TrimSpace(fc.Command) == "" {
			return fmt.Errorf("filter_commands[%d]: filter and command are required", i)
		}
		if fc.Timeout < 0 {
			return fmt.Errorf("filter_commands[%d].timeout must not be negative, got %d", i, fc.Timeout)
		}
	}
	switch driver := strings.ToLower(c.GetStore().Driver); driver {
	case "", "memory", "sqlite":
	default:
		return fmt.Errorf("store.driver: unsupported driver %q", driver)
	}
	return nil
}

// ParseDuration parses a Go duration. Empty means unset and yields 0.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration %q must not be negative", s)
	}
	return d, nil
}

// Save saves the configuration to the config file
func (c *Config) Save() error {
	return c.SaveTo(Path())
}

func (c *Config) SaveTo(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Ensure version is always set to current version when saving
	c.Version = CurrentVersion

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return atomic.WriteFile(path, bytes.NewReader(data))
}

// SetEnabled records the opt-in decision.
func (c *Config) SetEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.tracker().Enabled = enabled
}

func (c *Config) tracker() *Tracker {
	if c.Tracker == nil {
		c.Tracker = &Tracker{}
	}
	return c.Tracker
}

// GetTracker returns the tracker settings, or an empty Tracker if not set
func (c *Config) GetTracker() *Tracker {
	if c.Tracker == nil {
		return &Tracker{}
	}
	return c.Tracker
}

// GetStore returns the store settings with the sqlite driver and path defaulted.
func (c *Config) GetStore() *Store {
	s := Store{}
	if c.Store != nil {
		s = *c.Store
	}
	if strings.TrimSpace(s.Driver) == "" {
		s.Driver = "sqlite"
	}
	if s.Path == "" {
		s.Path = paths.GetSettingsDBPath()
	}
	return &s
}

func (c *Config) GetHost() *Host {
	if c.Host == nil {
		return &Host{}
	}
	return c.Host
}

func (c *Config) GetSchedule() *Schedule {
	if c.Schedule == nil {
		return &Schedule{}
	}
	return c.Schedule
}
