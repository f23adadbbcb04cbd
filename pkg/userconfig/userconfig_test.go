package userconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Empty(t *testing.T) {
	t.Parallel()

	config, err := readConfig(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)

	assert.False(t, config.GetTracker().Enabled)
	assert.Empty(t, config.GetHost().Manifest)
	assert.Equal(t, "sqlite", config.GetStore().Driver)
	assert.NotEmpty(t, config.GetStore().Path)
}

func TestConfig_ExplicitMemoryStore(t *testing.T) {
	t.Parallel()

	config := &Config{Store: &Store{Driver: "memory"}}
	assert.Equal(t, "memory", config.GetStore().Driver)
}

func TestConfig_Parse(t *testing.T) {
	t.Parallel()

	configFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte(`version: v1
tracker:
  enabled: true
  endpoint: https://collector.example/v1/
  api_key: key
  api_secret_key: secret
  plugin_key: ac-pro
  plugin_version: 2.1.0
  min_interval: 72h
  timeout: 10s
  max_redirects: 2
  settings_schema: [ac_license, ac_mode]
store:
  driver: sqlite
  path: /var/lib/actracker/settings.db
host:
  manifest: /etc/actracker/site.yaml
schedule:
  interval: 1h
  listen: 127.0.0.1:8089
filters:
  animals_code_tracker_admin_email: ""
filter_commands:
  - filter: animals_code_tracker_data
    command: /usr/local/bin/redact-report
    timeout: 5
`), 0o644))

	config, err := readConfig(configFile)
	require.NoError(t, err)
	require.NoError(t, config.Validate())

	tr := config.GetTracker()
	assert.True(t, tr.Enabled)
	assert.Equal(t, "https://collector.example/v1/", tr.Endpoint)
	assert.Equal(t, "key", tr.APIKey)
	assert.Equal(t, "secret", tr.APISecretKey)
	assert.Equal(t, "ac-pro", tr.PluginKey)
	assert.Equal(t, "2.1.0", tr.PluginVersion)
	require.NotNil(t, tr.MaxRedirects)
	assert.Equal(t, 2, *tr.MaxRedirects)
	assert.Equal(t, []string{"ac_license", "ac_mode"}, tr.SettingsSchema)

	interval, err := ParseDuration(tr.MinInterval)
	require.NoError(t, err)
	assert.Equal(t, 72*time.Hour, interval)

	assert.Equal(t, "sqlite", config.GetStore().Driver)
	assert.Equal(t, "/var/lib/actracker/settings.db", config.GetStore().Path)
	assert.Equal(t, "/etc/actracker/site.yaml", config.GetHost().Manifest)
	assert.Equal(t, "127.0.0.1:8089", config.GetSchedule().Listen)
	assert.Contains(t, config.Filters, "animals_code_tracker_admin_email")
	assert.Equal(t, []FilterCommand{{Filter: "animals_code_tracker_data", Command: "/usr/local/bin/redact-report", Timeout: 5}}, config.FilterCommands)
}

func TestConfig_InvalidYAML(t *testing.T) {
	t.Parallel()

	configFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("tracker: [unclosed\n"), 0o644))

	_, err := readConfig(configFile)
	require.ErrorContains(t, err, "failed to parse config file")
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	negative := -1
	tests := []struct {
		name    string
		config  *Config
		wantErr string
	}{
		{"empty", &Config{}, ""},
		{"bad interval", &Config{Tracker: &Tracker{MinInterval: "weekly"}}, "tracker.min_interval"},
		{"negative timeout", &Config{Tracker: &Tracker{Timeout: "-5s"}}, "tracker.timeout"},
		{"negative redirects", &Config{Tracker: &Tracker{MaxRedirects: &negative}}, "tracker.max_redirects"},
		{"bad schedule", &Config{Schedule: &Schedule{Interval: "soon"}}, "schedule.interval"},
		{"unknown driver", &Config{Store: &Store{Driver: "redis"}}, "store.driver"},
		{"sqlite driver", &Config{Store: &Store{Driver: "SQLite"}}, ""},
		{"filter command without command", &Config{FilterCommands: []FilterCommand{{Filter: "f"}}}, "filter_commands[0]"},
		{"filter command negative timeout", &Config{FilterCommands: []FilterCommand{{Filter: "f", Command: "true", Timeout: -1}}}, "filter_commands[0].timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestConfig_EnvOverrides(t *testing.T) {
	t.Setenv("ACTRACKER_ENABLED", "true")
	t.Setenv("ACTRACKER_ENDPOINT", "https://env.example/v1/")
	t.Setenv("ACTRACKER_API_KEY", "env-key")
	t.Setenv("ACTRACKER_API_SECRET_KEY", "env-secret")

	config := &Config{Tracker: &Tracker{Endpoint: "https://file.example/v1/", APIKey: "file-key"}}
	require.NoError(t, config.ApplyEnv())

	tr := config.GetTracker()
	assert.True(t, tr.Enabled)
	assert.Equal(t, "https://env.example/v1/", tr.Endpoint)
	assert.Equal(t, "env-key", tr.APIKey)
	assert.Equal(t, "env-secret", tr.APISecretKey)
}

func TestConfig_EnvInvalidEnabled(t *testing.T) {
	t.Setenv("ACTRACKER_ENABLED", "maybe")

	require.ErrorContains(t, (&Config{}).ApplyEnv(), "ACTRACKER_ENABLED")
}

func TestConfig_Load(t *testing.T) {
	t.Setenv("ACTRACKER_ENABLED", "")

	configFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("store:\n  driver: nosql\n"), 0o644))

	_, err := Load(configFile)
	require.ErrorContains(t, err, "invalid config")
}

func TestConfig_SaveRoundTrip(t *testing.T) {
	t.Parallel()

	configFile := filepath.Join(t.TempDir(), "nested", "config.yaml")

	config := &Config{Host: &Host{Manifest: "/srv/site.yaml"}}
	config.SetEnabled(true)
	require.NoError(t, config.SaveTo(configFile))

	loaded, err := readConfig(configFile)
	require.NoError(t, err)
	assert.Equal(t, CurrentVersion, loaded.Version)
	assert.True(t, loaded.GetTracker().Enabled)
	assert.Equal(t, "/srv/site.yaml", loaded.GetHost().Manifest)

	loaded.SetEnabled(false)
	require.NoError(t, loaded.SaveTo(configFile))

	reloaded, err := readConfig(configFile)
	require.NoError(t, err)
	assert.False(t, reloaded.GetTracker().Enabled)
}
