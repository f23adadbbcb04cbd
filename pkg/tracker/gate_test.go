package tracker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/animalscode/actracker/pkg/hooks"
	"github.com/animalscode/actracker/pkg/settings"
)

func TestShouldSendNeverSent(t *testing.T) {
	tr := newTestTracker(settings.NewMemoryStore(), fullHost())

	assert.True(t, tr.ShouldSend(t.Context(), false))
	assert.True(t, tr.ShouldSend(t.Context(), true))
}

func TestShouldSendZeroTimestampMeansNeverSent(t *testing.T) {
	store := settings.NewMemoryStore()
	require.NoError(t, store.Set(t.Context(), LastSendOption, "0"))
	tr := newTestTracker(store, fullHost())

	assert.True(t, tr.ShouldSend(t.Context(), false))
}

func TestShouldSendInterval(t *testing.T) {
	tests := []struct {
		name     string
		ago      time.Duration
		override bool
		want     bool
	}{
		{name: "one day ago", ago: 24 * time.Hour, want: false},
		{name: "exactly seven days ago", ago: DefaultInterval, want: false},
		{name: "just over seven days ago", ago: DefaultInterval + time.Second, want: true},
		{name: "override within cooldown", ago: 30 * time.Minute, override: true, want: false},
		{name: "override at cooldown", ago: time.Hour, override: true, want: false},
		{name: "override past cooldown", ago: 61 * time.Minute, override: true, want: true},
		{name: "override ignores weekly interval", ago: 2 * time.Hour, override: true, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := settings.NewMemoryStore()
			require.NoError(t, setLastSend(t.Context(), store, tt.ago))
			tr := newTestTracker(store, fullHost())

			assert.Equal(t, tt.want, tr.ShouldSend(t.Context(), tt.override))
		})
	}
}

func TestShouldSendAsyncRequest(t *testing.T) {
	tr := newTestTracker(settings.NewMemoryStore(), fullHost())
	ctx := WithAsyncRequest(t.Context())

	assert.False(t, tr.ShouldSend(ctx, false))
	assert.False(t, tr.ShouldSend(ctx, true))
}

func TestShouldSendDoesNotWrite(t *testing.T) {
	store := settings.NewMemoryStore()
	tr := newTestTracker(store, fullHost())

	require.True(t, tr.ShouldSend(t.Context(), false))

	_, ok, err := store.Get(t.Context(), LastSendOption)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestShouldSendMalformedTimestampMeansNeverSent(t *testing.T) {
	store := settings.NewMemoryStore()
	require.NoError(t, store.Set(t.Context(), LastSendOption, "yesterday"))
	tr := newTestTracker(store, fullHost())

	assert.True(t, tr.ShouldSend(t.Context(), false))

	st, err := tr.Status(t.Context())
	require.NoError(t, err)
	assert.Nil(t, st.LastSend)
	assert.True(t, st.Due)
}

func TestShouldSendStoreError(t *testing.T) {
	store := &failingStore{Store: settings.NewMemoryStore(), getErr: errStore}
	tr := newTestTracker(store, fullHost())

	assert.False(t, tr.ShouldSend(t.Context(), true))
}

func TestShouldSendFilters(t *testing.T) {
	t.Run("interval", func(t *testing.T) {
		store := settings.NewMemoryStore()
		require.NoError(t, setLastSend(t.Context(), store, 2*time.Hour))
		filters := hooks.New()
		hooks.Value(filters, HookLastSendInterval, time.Hour)
		tr := newTestTracker(store, fullHost(), WithFilters(filters))

		assert.True(t, tr.ShouldSend(t.Context(), false))
	})

	t.Run("interval from config string", func(t *testing.T) {
		store := settings.NewMemoryStore()
		require.NoError(t, setLastSend(t.Context(), store, 2*time.Hour))
		filters := hooks.FromConfig(map[string]string{HookLastSendInterval: "90m"})
		tr := newTestTracker(store, fullHost(), WithFilters(filters))

		assert.True(t, tr.ShouldSend(t.Context(), false))
	})

	t.Run("override forced on", func(t *testing.T) {
		store := settings.NewMemoryStore()
		require.NoError(t, setLastSend(t.Context(), store, 2*time.Hour))
		filters := hooks.New()
		hooks.Value(filters, HookSendOverride, true)
		tr := newTestTracker(store, fullHost(), WithFilters(filters))

		assert.True(t, tr.ShouldSend(t.Context(), false))
	})

	t.Run("last send time", func(t *testing.T) {
		filters := hooks.New()
		hooks.AddFunc(filters, HookLastSendTime, func(int64) int64 {
			return testNow.Add(-time.Minute).Unix()
		})
		tr := newTestTracker(settings.NewMemoryStore(), fullHost(), WithFilters(filters))

		assert.False(t, tr.ShouldSend(t.Context(), true))
	})
}

func TestStatus(t *testing.T) {
	t.Run("never sent", func(t *testing.T) {
		tr := newTestTracker(settings.NewMemoryStore(), fullHost())

		st, err := tr.Status(t.Context())
		require.NoError(t, err)

		assert.True(t, st.Enabled)
		assert.True(t, st.Due)
		assert.Nil(t, st.LastSend)
		assert.Equal(t, testNow.Unix(), st.NextSend)
		assert.Equal(t, DefaultInterval.String(), st.Interval)
	})

	t.Run("recently sent", func(t *testing.T) {
		store := settings.NewMemoryStore()
		require.NoError(t, setLastSend(t.Context(), store, 24*time.Hour))
		tr := newTestTracker(store, fullHost())

		st, err := tr.Status(t.Context())
		require.NoError(t, err)

		require.NotNil(t, st.LastSend)
		assert.Equal(t, testNow.Add(-24*time.Hour).Unix(), *st.LastSend)
		assert.Equal(t, testNow.Add(6*24*time.Hour).Unix(), st.NextSend)
		assert.False(t, st.Due)
	})

	t.Run("store error", func(t *testing.T) {
		store := &failingStore{Store: settings.NewMemoryStore(), getErr: errStore}
		tr := newTestTracker(store, fullHost())

		_, err := tr.Status(t.Context())
		require.ErrorIs(t, err, errStore)
	})
}
