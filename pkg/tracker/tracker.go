// Package tracker reports anonymous usage data about a CMS installation.
//
// A report is a snapshot of non-personal configuration: platform and
// interpreter versions, server limits, installed plugins, the active theme
// and user counts per role. Reports are sent at most once per interval
// (7 days by default), or on an explicit override with a one hour cooldown,
// and only when tracking has been opted into.
//
// Sending never blocks the caller and never reports errors: a failed
// submission is logged at debug level and the next scheduled run tries
// again.
//
// Every reported value and the main control decisions pass through named
// filters (see the Hook* constants) so they can be replaced at runtime.
//
// Files in this package:
//   - client.go: Tracker construction and options
//   - gate.go: send throttling
//   - snapshot.go: snapshot aggregation
//   - sizes.go: php.ini size shorthand parsing and formatting
//   - http.go: fire-and-forget submission
//   - send.go: the scheduled send event
//   - types.go: payload types
package tracker

import "time"

const (
	// SendEvent is the scheduled event whose handler is SendTrackingData.
	SendEvent = "animals_code_tracker_send_event"

	// LastSendOption is the settings key holding the last send time in epoch seconds.
	LastSendOption = "animals_code_tracker_last_send"

	// CompatibilityFeature is the theme feature that marks a theme as compatible.
	CompatibilityFeature = "animals_code"

	DefaultInterval     = 7 * 24 * time.Hour
	OverrideCooldown    = time.Hour
	DefaultTimeout      = 45 * time.Second
	DefaultMaxRedirects = 5
)

// Filter points. Names are part of the public contract.
const (
	HookSendOverride     = "animals_code_tracker_send_override"
	HookLastSendInterval = "animals_code_tracker_last_send_interval"
	HookLastSendTime     = "animals_code_tracker_last_send_time"
	HookSiteURL          = "animals_code_tracker_site_url"
	HookAdminEmail       = "animals_code_tracker_admin_email"
	HookThemeInfo        = "animals_code_tracker_theme_info"
	HookSupportedThemes  = "animals_code_tracker_supported_themes"
	HookPlatformInfo     = "animals_code_tracker_wp_info"
	HookServerInfo       = "animals_code_tracker_server_info"
	HookActivePlugins    = "animals_code_tracker_active_plugins"
	HookInactivePlugins  = "animals_code_tracker_inactive_plugins"
	HookAllOptions       = "animals_code_tracker_get_all_options"
	HookUserCounts       = "animals_code_tracker_user_counts"
	HookData             = "animals_code_tracker_data"

	// HookOptionPrefix + key filters a single settings_schema value.
	HookOptionPrefix = "animals_code_tracker_option_"
)

// SupportedThemes returns the bundled default themes known to work without
// declaring CompatibilityFeature.
func SupportedThemes() []string {
	return []string{"twentyfifteen", "twentyfourteen", "twentythirteen", "twentyeleven", "twentytwelve", "twentyten"}
}
