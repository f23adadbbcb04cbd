package host

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
)

// Manifest is a Host backed by a YAML export of the installation.
// Sections left out of the file report ErrUnavailable.
type Manifest struct {
	Site         Site                `yaml:"site"`
	PlatformInfo *Platform           `yaml:"platform"`
	Theme        *Theme              `yaml:"theme"`
	RuntimeInfo  *Runtime            `yaml:"runtime"`
	Database     *Database           `yaml:"database"`
	Extensions   *ExtensionInventory `yaml:"extensions"`
	Users        *UserCounts         `yaml:"users"`
}

type Site struct {
	HomeURL    string `yaml:"home_url"`
	AdminEmail string `yaml:"admin_email"`
}

// Database names the engine backing the installation. When Driver and DSN
// are set the version is read from the live server, falling back to Version.
type Database struct {
	Version string `yaml:"version"`
	Driver  string `yaml:"driver"`
	DSN     string `yaml:"dsn"`
}

type ExtensionInventory struct {
	Installed []Extension `yaml:"installed"`
	Active    []string    `yaml:"active"`
}

var _ Host = (*Manifest)(nil)

// LoadManifest reads and parses the manifest at path.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read host manifest: %w", err)
	}
	return ParseManifest(data)
}

func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse host manifest: %w", err)
	}
	return &m, nil
}

func (m *Manifest) HomeURL(context.Context) (string, error) {
	if strings.TrimSpace(m.Site.HomeURL) == "" {
		return "", ErrUnavailable
	}
	return strings.TrimRight(strings.TrimSpace(m.Site.HomeURL), "/"), nil
}

func (m *Manifest) AdminEmail(context.Context) (string, error) {
	if strings.TrimSpace(m.Site.AdminEmail) == "" {
		return "", ErrUnavailable
	}
	return strings.TrimSpace(m.Site.AdminEmail), nil
}

func (m *Manifest) Platform(context.Context) (Platform, error) {
	if m.PlatformInfo == nil {
		return Platform{}, ErrUnavailable
	}
	return *m.PlatformInfo, nil
}

func (m *Manifest) ActiveTheme(context.Context) (Theme, error) {
	if m.Theme == nil {
		return Theme{}, ErrUnavailable
	}
	return *m.Theme, nil
}

func (m *Manifest) Runtime(context.Context) (Runtime, error) {
	if m.RuntimeInfo == nil {
		return Runtime{}, ErrUnavailable
	}
	return *m.RuntimeInfo, nil
}

func (m *Manifest) DatabaseVersion(ctx context.Context) (string, error) {
	if m.Database == nil {
		return "", ErrUnavailable
	}

	if m.Database.Driver != "" && m.Database.DSN != "" {
		v, err := ProbeDatabaseVersion(ctx, m.Database.Driver, m.Database.DSN)
		if err == nil {
			return v, nil
		}
		slog.Debug("Database version probe failed", "driver", m.Database.Driver, "error", err)
	}

	if m.Database.Version == "" {
		return "", ErrUnavailable
	}
	return m.Database.Version, nil
}

func (m *Manifest) ListInstalledExtensions(context.Context) ([]Extension, error) {
	if m.Extensions == nil {
		return nil, ErrUnavailable
	}
	return m.Extensions.Installed, nil
}

func (m *Manifest) ActiveExtensionIDs(context.Context) ([]string, error) {
	if m.Extensions == nil {
		return nil, ErrUnavailable
	}
	return m.Extensions.Active, nil
}

func (m *Manifest) CountUsersByRole(context.Context) (UserCounts, error) {
	if m.Users == nil {
		return UserCounts{}, ErrUnavailable
	}
	return *m.Users, nil
}
