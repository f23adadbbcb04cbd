package tracker

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/animalscode/actracker/pkg/host"
	"github.com/animalscode/actracker/pkg/settings"
)

var testNow = time.Unix(1_700_000_000, 0)

func strPtr(s string) *string { return &s }

// fakeHost returns its fields, or host.ErrUnavailable for nil sections.
type fakeHost struct {
	homeURL    string
	email      string
	platform   *host.Platform
	theme      *host.Theme
	runtime    *host.Runtime
	dbVersion  string
	installed  []host.Extension
	activeIDs  []string
	users      *host.UserCounts
	activeErr  error
	installErr error
}

func (h *fakeHost) HomeURL(context.Context) (string, error) {
	if h.homeURL == "" {
		return "", host.ErrUnavailable
	}
	return h.homeURL, nil
}

func (h *fakeHost) AdminEmail(context.Context) (string, error) {
	if h.email == "" {
		return "", host.ErrUnavailable
	}
	return h.email, nil
}

func (h *fakeHost) Platform(context.Context) (host.Platform, error) {
	if h.platform == nil {
		return host.Platform{}, host.ErrUnavailable
	}
	return *h.platform, nil
}

func (h *fakeHost) ActiveTheme(context.Context) (host.Theme, error) {
	if h.theme == nil {
		return host.Theme{}, host.ErrUnavailable
	}
	return *h.theme, nil
}

func (h *fakeHost) Runtime(context.Context) (host.Runtime, error) {
	if h.runtime == nil {
		return host.Runtime{}, host.ErrUnavailable
	}
	return *h.runtime, nil
}

func (h *fakeHost) DatabaseVersion(context.Context) (string, error) {
	if h.dbVersion == "" {
		return "", host.ErrUnavailable
	}
	return h.dbVersion, nil
}

func (h *fakeHost) ListInstalledExtensions(context.Context) ([]host.Extension, error) {
	if h.installErr != nil {
		return nil, h.installErr
	}
	return h.installed, nil
}

func (h *fakeHost) ActiveExtensionIDs(context.Context) ([]string, error) {
	if h.activeErr != nil {
		return nil, h.activeErr
	}
	return h.activeIDs, nil
}

func (h *fakeHost) CountUsersByRole(context.Context) (host.UserCounts, error) {
	if h.users == nil {
		return host.UserCounts{}, host.ErrUnavailable
	}
	return *h.users, nil
}

func fullHost() *fakeHost {
	return &fakeHost{
		homeURL: "https://shop.example.com",
		email:   "owner@example.com",
		platform: &host.Platform{
			Version:     "6.4.2",
			Locale:      "en_US",
			MemoryLimit: "40M",
			Debug:       false,
			Multisite:   true,
		},
		theme: &host.Theme{
			Name:     "Storefront",
			Version:  "4.5.0",
			Template: "storefront",
			Supports: []string{CompatibilityFeature},
		},
		runtime: &host.Runtime{
			Software:         "nginx/1.25.3",
			Version:          "8.2.12",
			PostMaxSize:      "8M",
			UploadMaxSize:    "2M",
			MaxExecutionTime: "30",
			MaxInputVars:     "1000",
			DefaultTimezone:  "UTC",
			Extensions:       []string{"curl", "SOAP"},
		},
		dbVersion: "8.0.35",
		installed: []host.Extension{
			{ID: "akismet/akismet.php", Name: "Akismet", Version: strPtr("5.3"), Author: strPtr("Automattic")},
			{ID: "hello.php", Name: "Hello Dolly", Version: strPtr("1.7.2")},
			{ID: "woo/woo.php", Name: "<b>Woo</b>", Network: strPtr("false"), PluginURI: strPtr("https://woo.example")},
		},
		activeIDs: []string{"woo/woo.php", "akismet/akismet.php"},
		users: &host.UserCounts{
			Total: 12,
			Roles: []host.RoleCount{{Role: "administrator", Count: 2}, {Role: "subscriber", Count: 10}},
		},
	}
}

// failingStore wraps a store and fails the operations that have an error set.
type failingStore struct {
	settings.Store
	getErr error
	setErr error
}

func (s *failingStore) Get(ctx context.Context, key string) (string, bool, error) {
	if s.getErr != nil {
		return "", false, s.getErr
	}
	return s.Store.Get(ctx, key)
}

func (s *failingStore) Set(ctx context.Context, key, value string) error {
	if s.setErr != nil {
		return s.setErr
	}
	return s.Store.Set(ctx, key, value)
}

var errStore = errors.New("store unavailable")

// MockHTTPClient captures HTTP requests for testing
type MockHTTPClient struct {
	*http.Client
	mu       sync.Mutex
	requests []*http.Request
	bodies   [][]byte
	status   int
	// onRequest, when set, runs before the response is returned.
	onRequest func(*http.Request)
}

func NewMockHTTPClient() *MockHTTPClient {
	mock := &MockHTTPClient{status: http.StatusOK}
	mock.Client = &http.Client{Transport: mock}
	return mock
}

func (m *MockHTTPClient) RoundTrip(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil {
		body, _ = io.ReadAll(req.Body)
	}

	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.bodies = append(m.bodies, body)
	onRequest, status := m.onRequest, m.status
	m.mu.Unlock()

	if onRequest != nil {
		onRequest(req)
	}
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewReader([]byte(`{"success": true}`))),
		Header:     make(http.Header),
		Request:    req,
	}, nil
}

func (m *MockHTTPClient) GetRequests() []*http.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*http.Request{}, m.requests...)
}

func (m *MockHTTPClient) GetBodies() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]byte{}, m.bodies...)
}

func (m *MockHTTPClient) GetRequestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

func newTestTracker(store settings.Store, h host.Host, opts ...Opt) *Tracker {
	base := []Opt{
		WithLogger(slog.New(slog.DiscardHandler)),
		WithClock(func() time.Time { return testNow }),
		Enabled(true),
	}
	return New(store, h, append(base, opts...)...)
}

func setLastSend(ctx context.Context, store settings.Store, ago time.Duration) error {
	return settings.SetInt64(ctx, store, LastSendOption, testNow.Add(-ago).Unix())
}
