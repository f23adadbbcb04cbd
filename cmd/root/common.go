package root

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/animalscode/actracker/pkg/hooks"
	"github.com/animalscode/actracker/pkg/host"
	"github.com/animalscode/actracker/pkg/schedule"
	"github.com/animalscode/actracker/pkg/settings"
	"github.com/animalscode/actracker/pkg/tracker"
	"github.com/animalscode/actracker/pkg/userconfig"
	"github.com/animalscode/actracker/pkg/version"
)

// drainGrace is added to the submit timeout when waiting for in-flight
// reports before exit.
const drainGrace = 5 * time.Second

// app is everything a command needs to talk to the tracker.
type app struct {
	config    *userconfig.Config
	store     settings.Store
	tracker   *tracker.Tracker
	scheduler *schedule.Scheduler
	timeout   time.Duration
}

func newApp(configPath string) (*app, error) {
	cfg, err := userconfig.Load(configPath)
	if err != nil {
		return nil, err
	}

	manifestPath := cfg.GetHost().Manifest
	if manifestPath == "" {
		return nil, errors.New("no installation manifest configured: set host.manifest in " + cmp.Or(configPath, userconfig.Path()))
	}
	manifest, err := host.LoadManifest(manifestPath)
	if err != nil {
		return nil, err
	}

	storeCfg := cfg.GetStore()
	store, err := settings.NewStore(storeCfg.Driver, storeCfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open settings store: %w", err)
	}

	opts := trackerOptions(cfg)
	tr := tracker.New(store, manifest, opts...)

	scheduler := schedule.New()
	scheduler.On(tracker.SendEvent, func(ctx context.Context, override bool) {
		outcome := tr.SendTrackingData(ctx, override)
		slog.Debug("Send event handled", "override", override, "outcome", outcome.String())
	})

	timeout, _ := userconfig.ParseDuration(cfg.GetTracker().Timeout)
	return &app{
		config:    cfg,
		store:     store,
		tracker:   tr,
		scheduler: scheduler,
		timeout:   cmp.Or(timeout, tracker.DefaultTimeout),
	}, nil
}

func trackerOptions(cfg *userconfig.Config) []tracker.Opt {
	t := cfg.GetTracker()
	interval, _ := userconfig.ParseDuration(t.MinInterval)
	timeout, _ := userconfig.ParseDuration(t.Timeout)

	opts := []tracker.Opt{
		tracker.Enabled(t.Enabled),
		tracker.WithLogger(slog.Default()),
		tracker.WithEndpoint(t.Endpoint),
		tracker.WithPlugin(cmp.Or(t.PluginKey, tracker.TrackerPluginKey), cmp.Or(t.PluginVersion, tracker.TrackerPluginVersion, version.Version)),
		tracker.WithSettingsSchema(t.SettingsSchema...),
		tracker.WithInterval(interval),
		tracker.WithTimeout(timeout),
	}
	if t.APIKey != "" || t.APISecretKey != "" {
		opts = append(opts, tracker.WithCredentials(
			cmp.Or(t.APIKey, tracker.TrackerAPIKey),
			cmp.Or(t.APISecretKey, tracker.TrackerAPISecretKey),
		))
	}
	if t.MaxRedirects != nil {
		opts = append(opts, tracker.WithMaxRedirects(*t.MaxRedirects))
	}
	if len(cfg.Filters) > 0 || len(cfg.FilterCommands) > 0 {
		opts = append(opts, tracker.WithFilters(filterRegistry(cfg)))
	}
	return opts
}

func filterRegistry(cfg *userconfig.Config) *hooks.Registry {
	registry := hooks.FromConfig(cfg.Filters)
	if len(cfg.FilterCommands) == 0 {
		return registry
	}

	commands := make([]hooks.Command, 0, len(cfg.FilterCommands))
	for _, fc := range cfg.FilterCommands {
		commands = append(commands, hooks.Command{Filter: fc.Filter, Command: fc.Command, Timeout: fc.Timeout})
	}
	hooks.AddCommands(registry, hooks.NewExecutor("", nil), commands)
	return registry
}

// Close waits for in-flight reports, then closes the store.
func (a *app) Close(ctx context.Context) error {
	drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.timeout+drainGrace)
	defer cancel()

	var errs []error
	if err := a.tracker.Wait(drainCtx); err != nil {
		errs = append(errs, fmt.Errorf("reports still in flight: %w", err))
	}
	if err := a.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close settings store: %w", err))
	}
	return errors.Join(errs...)
}
