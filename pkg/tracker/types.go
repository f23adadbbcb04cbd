package tracker

import (
	"net/http"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// HTTPClient interface for making HTTP requests (allows mocking in tests)
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// ExtensionMap is a plugin inventory keyed by plugin id, in install order.
type ExtensionMap = orderedmap.OrderedMap[string, ExtensionInfo]

// Snapshot is one report. Sections the host could not provide are omitted.
type Snapshot struct {
	URL             string                              `json:"url,omitempty"`
	Email           string                              `json:"email,omitempty"`
	Theme           *ThemeInfo                          `json:"theme,omitempty"`
	WP              *PlatformInfo                       `json:"wp,omitempty"`
	Server          *ServerInfo                         `json:"server,omitempty"`
	ActivePlugins   *ExtensionMap                       `json:"active_plugins,omitempty"`
	InactivePlugins *ExtensionMap                       `json:"inactive_plugins,omitempty"`
	Settings        *orderedmap.OrderedMap[string, any] `json:"settings,omitempty"`
	Users           *orderedmap.OrderedMap[string, int] `json:"users,omitempty"`
}

type ThemeInfo struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	ChildTheme  string `json:"child_theme"`
	ACSupported string `json:"ac_supported"`
}

type PlatformInfo struct {
	MemoryLimit string `json:"memory_limit,omitempty"`
	DebugMode   string `json:"debug_mode"`
	Locale      string `json:"locale,omitempty"`
	Version     string `json:"version,omitempty"`
	Multisite   string `json:"multisite"`
}

type ServerInfo struct {
	Software    string `json:"software,omitempty"`
	PHPVersion  string `json:"php_version,omitempty"`
	PostMaxSize string `json:"php_post_max_size,omitempty"`
	// Key spelling matches what the collector ingests.
	TimeLimit       string `json:"php_time_limt,omitempty"`
	MaxInputVars    string `json:"php_max_input_vars,omitempty"`
	Suhosin         string `json:"php_suhosin,omitempty"`
	MySQLVersion    string `json:"mysql_version,omitempty"`
	MaxUploadSize   string `json:"php_max_upload_size,omitempty"`
	DefaultTimezone string `json:"php_default_timezone,omitempty"`
	SOAP            string `json:"php_soap,omitempty"`
	FSockOpen       string `json:"php_fsockopen,omitempty"`
	CURL            string `json:"php_curl,omitempty"`
}

// ExtensionInfo carries only the metadata the plugin header declares.
type ExtensionInfo struct {
	Name      string  `json:"name"`
	Version   *string `json:"version,omitempty"`
	Author    *string `json:"author,omitempty"`
	Network   *string `json:"network,omitempty"`
	PluginURI *string `json:"plugin_uri,omitempty"`
}

// Outcome says what a send event did. It exists for logs and tests; the
// event itself has no failure mode.
type Outcome int

const (
	OutcomeSent Outcome = iota
	OutcomeDisabled
	OutcomeAsyncRequest
	OutcomeThrottled
	OutcomeStoreFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSent:
		return "sent"
	case OutcomeDisabled:
		return "disabled"
	case OutcomeAsyncRequest:
		return "async_request"
	case OutcomeThrottled:
		return "throttled"
	case OutcomeStoreFailed:
		return "store_failed"
	default:
		return "unknown"
	}
}

// Status describes the throttle state.
type Status struct {
	Enabled  bool     `json:"enabled"`
	LastSend *int64   `json:"last_send,omitempty"`
	Interval string   `json:"interval"`
	NextSend int64    `json:"next_send"`
	Due      bool     `json:"due"`
	Endpoint string   `json:"endpoint"`
	Filters  []string `json:"filters,omitempty"`
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
