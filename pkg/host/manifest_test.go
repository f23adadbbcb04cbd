package host

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullManifest = `
site:
  home_url: https://shop.example.com/
  admin_email: owner@example.com
platform:
  version: 4.3.1
  locale: en_GB
  memory_limit: 40M
  debug: true
theme:
  name: Storefront
  version: "2.1"
  template: storefront
  supports: [animals_code, menus]
runtime:
  software: nginx/1.24.0
  version: 8.2.12
  post_max_size: 8M
  upload_max_size: 2M
  max_execution_time: "30"
  max_input_vars: "1000"
  default_timezone: UTC
  extensions: [curl, SOAP]
database:
  version: 8.0.35
extensions:
  installed:
    - id: akismet/akismet.php
      name: Akismet
      version: "3.1"
    - id: hello.php
      name: Hello Dolly
  active: [akismet/akismet.php]
users:
  total: 3
  roles:
    - role: administrator
      count: 1
    - role: subscriber
      count: 2
`

func TestParseManifest_Full(t *testing.T) {
	m, err := ParseManifest([]byte(fullManifest))
	require.NoError(t, err)
	ctx := t.Context()

	url, err := m.HomeURL(ctx)
	require.NoError(t, err)
	assert.Equal(t, "https://shop.example.com", url)

	email, err := m.AdminEmail(ctx)
	require.NoError(t, err)
	assert.Equal(t, "owner@example.com", email)

	platform, err := m.Platform(ctx)
	require.NoError(t, err)
	assert.Equal(t, Platform{Version: "4.3.1", Locale: "en_GB", MemoryLimit: "40M", Debug: true}, platform)

	theme, err := m.ActiveTheme(ctx)
	require.NoError(t, err)
	assert.True(t, theme.SupportsFeature("animals_code"))
	assert.False(t, theme.SupportsFeature("widgets"))

	rt, err := m.Runtime(ctx)
	require.NoError(t, err)
	assert.True(t, rt.HasExtension("soap"))
	assert.False(t, rt.HasExtension("fsockopen"))

	dbVersion, err := m.DatabaseVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, "8.0.35", dbVersion)

	installed, err := m.ListInstalledExtensions(ctx)
	require.NoError(t, err)
	require.Len(t, installed, 2)
	require.NotNil(t, installed[0].Version)
	assert.Equal(t, "3.1", *installed[0].Version)
	assert.Nil(t, installed[1].Version)
	assert.Nil(t, installed[1].Author)

	active, err := m.ActiveExtensionIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"akismet/akismet.php"}, active)

	users, err := m.CountUsersByRole(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, users.Total)
	assert.Equal(t, []RoleCount{{Role: "administrator", Count: 1}, {Role: "subscriber", Count: 2}}, users.Roles)
}

func TestParseManifest_MissingSectionsAreUnavailable(t *testing.T) {
	m, err := ParseManifest([]byte("site:\n  home_url: https://example.com\n"))
	require.NoError(t, err)
	ctx := t.Context()

	_, err = m.AdminEmail(ctx)
	require.ErrorIs(t, err, ErrUnavailable)
	_, err = m.Platform(ctx)
	require.ErrorIs(t, err, ErrUnavailable)
	_, err = m.ActiveTheme(ctx)
	require.ErrorIs(t, err, ErrUnavailable)
	_, err = m.Runtime(ctx)
	require.ErrorIs(t, err, ErrUnavailable)
	_, err = m.DatabaseVersion(ctx)
	require.ErrorIs(t, err, ErrUnavailable)
	_, err = m.ListInstalledExtensions(ctx)
	require.ErrorIs(t, err, ErrUnavailable)
	_, err = m.ActiveExtensionIDs(ctx)
	require.ErrorIs(t, err, ErrUnavailable)
	_, err = m.CountUsersByRole(ctx)
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestParseManifest_Invalid(t *testing.T) {
	_, err := ParseManifest([]byte("site: [unclosed"))
	require.ErrorContains(t, err, "failed to parse host manifest")
}

func TestLoadManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "host.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fullManifest), 0o600))

	m, err := LoadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, "Storefront", m.Theme.Name)

	_, err = LoadManifest(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorContains(t, err, "failed to read host manifest")
}

func TestDatabaseVersion_ProbesSQLite(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "site.db")
	m := &Manifest{Database: &Database{Driver: "sqlite", DSN: dsn, Version: "static"}}

	v, err := m.DatabaseVersion(t.Context())
	require.NoError(t, err)
	assert.NotEqual(t, "static", v)
	assert.Regexp(t, `^3\.\d+\.\d+`, v)
}

func TestDatabaseVersion_ProbeFailureFallsBack(t *testing.T) {
	m := &Manifest{Database: &Database{Driver: "oracle", DSN: "x", Version: "19c"}}

	v, err := m.DatabaseVersion(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "19c", v)
}

func TestProbeDatabaseVersion_UnsupportedDriver(t *testing.T) {
	_, err := ProbeDatabaseVersion(t.Context(), "mssql", "")
	require.ErrorContains(t, err, `unsupported database driver "mssql"`)
}
