package tracker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/animalscode/actracker/pkg/hooks"
	"github.com/animalscode/actracker/pkg/httpclient"
	"github.com/animalscode/actracker/pkg/host"
	"github.com/animalscode/actracker/pkg/settings"
)

// trackerLogger wraps slog.Logger to automatically prepend "[Tracker]" to all messages
type trackerLogger struct {
	logger *slog.Logger
}

func newTrackerLogger(logger *slog.Logger) *trackerLogger {
	return &trackerLogger{logger: logger}
}

func (tl *trackerLogger) Debug(msg string, args ...any) {
	tl.logger.Debug("[Tracker] "+msg, args...)
}

func (tl *trackerLogger) Info(msg string, args ...any) {
	tl.logger.Info("[Tracker] "+msg, args...)
}

func (tl *trackerLogger) Warn(msg string, args ...any) {
	tl.logger.Warn("[Tracker] "+msg, args...)
}

func (tl *trackerLogger) Error(msg string, args ...any) {
	tl.logger.Error("[Tracker] "+msg, args...)
}

func (tl *trackerLogger) Enabled(ctx context.Context, level slog.Level) bool {
	return tl.logger.Enabled(ctx, level)
}

// Tracker gathers and submits usage reports for one installation.
type Tracker struct {
	logger     *trackerLogger
	store      settings.Store
	host       host.Host
	filters    *hooks.Registry
	httpClient HTTPClient
	now        func() time.Time

	enabled        bool
	endpoint       string
	apiKey         string
	apiSecretKey   string
	pluginKey      string
	pluginVersion  string
	settingsSchema []string
	interval       time.Duration
	timeout        time.Duration
	maxRedirects   int

	inflight sync.WaitGroup
}

type Opt func(*Tracker)

func WithLogger(logger *slog.Logger) Opt {
	return func(t *Tracker) {
		t.logger = newTrackerLogger(logger)
	}
}

// WithFilters sets the filter registry consulted at every hook point.
func WithFilters(r *hooks.Registry) Opt {
	return func(t *Tracker) {
		if r != nil {
			t.filters = r
		}
	}
}

// WithHTTPClient replaces the default client. The caller is then responsible
// for its timeout and redirect policy.
func WithHTTPClient(c HTTPClient) Opt {
	return func(t *Tracker) {
		t.httpClient = c
	}
}

func WithClock(now func() time.Time) Opt {
	return func(t *Tracker) {
		t.now = now
	}
}

func WithEndpoint(endpoint string) Opt {
	return func(t *Tracker) {
		if endpoint != "" {
			t.endpoint = endpoint
		}
	}
}

func WithCredentials(apiKey, apiSecretKey string) Opt {
	return func(t *Tracker) {
		t.apiKey = apiKey
		t.apiSecretKey = apiSecretKey
	}
}

func WithPlugin(key, version string) Opt {
	return func(t *Tracker) {
		t.pluginKey = key
		t.pluginVersion = version
	}
}

// WithSettingsSchema lists the settings store keys copied into the report.
func WithSettingsSchema(keys ...string) Opt {
	return func(t *Tracker) {
		t.settingsSchema = keys
	}
}

// WithInterval sets the minimum time between scheduled reports. The
// animals_code_tracker_last_send_interval filter still applies on top.
func WithInterval(d time.Duration) Opt {
	return func(t *Tracker) {
		if d > 0 {
			t.interval = d
		}
	}
}

func WithTimeout(d time.Duration) Opt {
	return func(t *Tracker) {
		if d > 0 {
			t.timeout = d
		}
	}
}

func WithMaxRedirects(n int) Opt {
	return func(t *Tracker) {
		if n >= 0 {
			t.maxRedirects = n
		}
	}
}

// Enabled records the site owner's opt-in. A tracker that is not enabled
// never sends.
func Enabled(enabled bool) Opt {
	return func(t *Tracker) {
		t.enabled = enabled
	}
}

// New creates a tracker reading state from store and installation data from h.
func New(store settings.Store, h host.Host, opts ...Opt) *Tracker {
	t := &Tracker{
		logger:        newTrackerLogger(slog.Default()),
		store:         store,
		host:          h,
		filters:       hooks.New(),
		now:           time.Now,
		endpoint:      TrackerEndpoint,
		apiKey:        TrackerAPIKey,
		apiSecretKey:  TrackerAPISecretKey,
		pluginKey:     TrackerPluginKey,
		pluginVersion: TrackerPluginVersion,
		interval:      DefaultInterval,
		timeout:       DefaultTimeout,
		maxRedirects:  DefaultMaxRedirects,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.httpClient == nil {
		t.httpClient = httpclient.NewHTTPClient(
			httpclient.WithTimeout(t.timeout),
			httpclient.WithMaxRedirects(t.maxRedirects),
		)
	}

	t.logger.Debug("Tracker created", "enabled", t.enabled, "endpoint", t.endpoint, "store", store.Driver())
	return t
}
