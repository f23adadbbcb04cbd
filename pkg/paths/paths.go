package paths

import (
	"os"
	"path/filepath"
)

// GetConfigDir returns the directory holding actracker's config.yaml.
//
// If the home directory cannot be determined, it falls back to a directory
// under the system temporary directory.
func GetConfigDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Clean(filepath.Join(os.TempDir(), ".actracker-config"))
	}
	return filepath.Clean(filepath.Join(homeDir, ".config", "actracker"))
}

// GetDataDir returns the directory for the settings database and debug logs.
func GetDataDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Clean(filepath.Join(os.TempDir(), ".actracker"))
	}
	return filepath.Clean(filepath.Join(homeDir, ".actracker"))
}

// GetSettingsDBPath returns the default location of the sqlite settings store.
func GetSettingsDBPath() string {
	return filepath.Join(GetDataDir(), "settings.db")
}
