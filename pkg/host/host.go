// Package host describes the installation the tracker reports on.
//
// The tracker only ever reads from a Host. Every method may fail or return
// partial data; callers are expected to skip whatever is unavailable.
package host

import (
	"context"
	"errors"
	"slices"
	"strings"
)

// ErrUnavailable is returned when the installation does not expose a value.
var ErrUnavailable = errors.New("host data unavailable")

type Host interface {
	HomeURL(ctx context.Context) (string, error)
	AdminEmail(ctx context.Context) (string, error)
	Platform(ctx context.Context) (Platform, error)
	ActiveTheme(ctx context.Context) (Theme, error)
	Runtime(ctx context.Context) (Runtime, error)
	DatabaseVersion(ctx context.Context) (string, error)
	ListInstalledExtensions(ctx context.Context) ([]Extension, error)
	ActiveExtensionIDs(ctx context.Context) ([]string, error)
	CountUsersByRole(ctx context.Context) (UserCounts, error)
}

// Platform is the CMS core the extension runs inside.
type Platform struct {
	Version string `yaml:"version"`
	Locale  string `yaml:"locale"`
	// MemoryLimit uses php.ini shorthand, e.g. "40M".
	MemoryLimit string `yaml:"memory_limit"`
	Debug       bool   `yaml:"debug"`
	Multisite   bool   `yaml:"multisite"`
}

type Theme struct {
	Name     string   `yaml:"name"`
	Version  string   `yaml:"version"`
	Template string   `yaml:"template"`
	Child    bool     `yaml:"child"`
	Supports []string `yaml:"supports"`
}

// SupportsFeature reports whether the theme declared feature.
func (t Theme) SupportsFeature(feature string) bool {
	return slices.Contains(t.Supports, feature)
}

// Runtime is the web server and interpreter serving the installation.
// Size limits use php.ini shorthand.
type Runtime struct {
	Software         string   `yaml:"software"`
	Version          string   `yaml:"version"`
	PostMaxSize      string   `yaml:"post_max_size"`
	UploadMaxSize    string   `yaml:"upload_max_size"`
	MaxExecutionTime string   `yaml:"max_execution_time"`
	MaxInputVars     string   `yaml:"max_input_vars"`
	DefaultTimezone  string   `yaml:"default_timezone"`
	Extensions       []string `yaml:"extensions"`
}

// HasExtension reports whether the interpreter has the named extension
// (or capability, such as "curl" or "fsockopen") loaded.
func (r Runtime) HasExtension(name string) bool {
	return slices.ContainsFunc(r.Extensions, func(e string) bool {
		return strings.EqualFold(e, name)
	})
}

// Extension is one installed plugin. Optional metadata is nil when the
// plugin header does not declare it.
type Extension struct {
	ID        string  `yaml:"id"`
	Name      string  `yaml:"name"`
	Version   *string `yaml:"version"`
	Author    *string `yaml:"author"`
	Network   *string `yaml:"network"`
	PluginURI *string `yaml:"plugin_uri"`
}

type RoleCount struct {
	Role  string `yaml:"role"`
	Count int    `yaml:"count"`
}

// UserCounts keeps roles in the order the installation reports them.
type UserCounts struct {
	Total int         `yaml:"total"`
	Roles []RoleCount `yaml:"roles"`
}
