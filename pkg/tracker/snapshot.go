package tracker

import (
	"context"
	"slices"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/animalscode/actracker/pkg/hooks"
	"github.com/animalscode/actracker/pkg/host"
)

// BuildSnapshot collects the report for the current installation. Whatever
// the host cannot provide is left out; it never fails.
func (t *Tracker) BuildSnapshot(ctx context.Context) *Snapshot {
	s := &Snapshot{}

	if url, err := t.host.HomeURL(ctx); err == nil {
		s.URL = url
	} else {
		t.skip("url", err)
	}
	s.URL = hooks.Apply(t.filters, HookSiteURL, s.URL)

	if email, err := t.host.AdminEmail(ctx); err == nil {
		s.Email = email
	} else {
		t.skip("email", err)
	}
	s.Email = hooks.Apply(t.filters, HookAdminEmail, s.Email)

	s.Theme = hooks.Apply(t.filters, HookThemeInfo, t.themeInfo(ctx))
	s.WP = hooks.Apply(t.filters, HookPlatformInfo, t.platformInfo(ctx))
	s.Server = hooks.Apply(t.filters, HookServerInfo, t.serverInfo(ctx))

	active, inactive := t.extensions(ctx)
	s.ActivePlugins = hooks.Apply(t.filters, HookActivePlugins, active)
	s.InactivePlugins = hooks.Apply(t.filters, HookInactivePlugins, inactive)

	s.Settings = hooks.Apply(t.filters, HookAllOptions, t.options(ctx))
	s.Users = hooks.Apply(t.filters, HookUserCounts, t.userCounts(ctx))

	return hooks.Apply(t.filters, HookData, s)
}

func (t *Tracker) skip(section string, err error) {
	t.logger.Debug("Leaving section out of report", "section", section, "error", err)
}

func (t *Tracker) themeInfo(ctx context.Context) *ThemeInfo {
	theme, err := t.host.ActiveTheme(ctx)
	if err != nil {
		t.skip("theme", err)
		return nil
	}
	return &ThemeInfo{
		Name:        stripTags(theme.Name),
		Version:     theme.Version,
		ChildTheme:  yesNo(theme.Child),
		ACSupported: yesNo(t.themeSupported(theme)),
	}
}

// themeSupported: the theme declares CompatibilityFeature, or is one of the
// bundled themes known to work.
func (t *Tracker) themeSupported(theme host.Theme) bool {
	if theme.SupportsFeature(CompatibilityFeature) {
		return true
	}
	supported := hooks.Apply(t.filters, HookSupportedThemes, SupportedThemes())
	return slices.Contains(supported, theme.Template)
}

func (t *Tracker) platformInfo(ctx context.Context) *PlatformInfo {
	p, err := t.host.Platform(ctx)
	if err != nil {
		t.skip("wp", err)
		return nil
	}
	return &PlatformInfo{
		MemoryLimit: humanSize(p.MemoryLimit),
		DebugMode:   yesNo(p.Debug),
		Locale:      p.Locale,
		Version:     p.Version,
		Multisite:   yesNo(p.Multisite),
	}
}

func (t *Tracker) serverInfo(ctx context.Context) *ServerInfo {
	rt, rtErr := t.host.Runtime(ctx)
	if rtErr != nil {
		t.skip("server", rtErr)
	}
	dbVersion, dbErr := t.host.DatabaseVersion(ctx)
	if dbErr != nil {
		t.skip("server.mysql_version", dbErr)
	}
	if rtErr != nil && dbErr != nil {
		return nil
	}

	info := &ServerInfo{MySQLVersion: dbVersion}
	if rtErr == nil {
		info.Software = rt.Software
		info.PHPVersion = rt.Version
		info.PostMaxSize = humanSize(rt.PostMaxSize)
		info.TimeLimit = rt.MaxExecutionTime
		info.MaxInputVars = rt.MaxInputVars
		info.Suhosin = yesNo(rt.HasExtension("suhosin"))
		info.MaxUploadSize = humanSize(rt.UploadMaxSize)
		info.DefaultTimezone = rt.DefaultTimezone
		info.SOAP = yesNo(rt.HasExtension("soap"))
		info.FSockOpen = yesNo(rt.HasExtension("fsockopen"))
		info.CURL = yesNo(rt.HasExtension("curl"))
	}
	return info
}

func (t *Tracker) extensions(ctx context.Context) (active, inactive *ExtensionMap) {
	installed, err := t.host.ListInstalledExtensions(ctx)
	if err != nil {
		t.skip("plugins", err)
		return nil, nil
	}
	activeIDs, err := t.host.ActiveExtensionIDs(ctx)
	if err != nil {
		t.skip("active_plugins", err)
	}
	return SplitExtensions(installed, activeIDs)
}

// SplitExtensions partitions installed by membership in activeIDs. Both maps
// keep install order; an id listed twice ends up once, in the position of
// its first appearance.
func SplitExtensions(installed []host.Extension, activeIDs []string) (active, inactive *ExtensionMap) {
	isActive := make(map[string]struct{}, len(activeIDs))
	for _, id := range activeIDs {
		isActive[id] = struct{}{}
	}

	active = orderedmap.New[string, ExtensionInfo]()
	inactive = orderedmap.New[string, ExtensionInfo]()
	for _, ext := range installed {
		info := ExtensionInfo{
			Name:      stripTags(ext.Name),
			Version:   stripTagsPtr(ext.Version),
			Author:    stripTagsPtr(ext.Author),
			Network:   stripTagsPtr(ext.Network),
			PluginURI: stripTagsPtr(ext.PluginURI),
		}
		if _, ok := isActive[ext.ID]; ok {
			active.Set(ext.ID, info)
		} else {
			inactive.Set(ext.ID, info)
		}
	}
	return active, inactive
}

// options reports the extension's own settings: its version and key, then
// every settings_schema key present in the store.
func (t *Tracker) options(ctx context.Context) *orderedmap.OrderedMap[string, any] {
	opts := orderedmap.New[string, any]()
	opts.Set("plugin_version", t.pluginVersion)
	opts.Set("plugin_key", t.pluginKey)

	for _, key := range t.settingsSchema {
		var value any
		raw, ok, err := t.store.Get(ctx, key)
		switch {
		case err != nil:
			t.skip("settings."+key, err)
		case ok:
			value = raw
		}
		value = hooks.Apply(t.filters, HookOptionPrefix+key, value)
		if value != nil {
			opts.Set(key, value)
		}
	}
	return opts
}

func (t *Tracker) userCounts(ctx context.Context) *orderedmap.OrderedMap[string, int] {
	counts, err := t.host.CountUsersByRole(ctx)
	if err != nil {
		t.skip("users", err)
		return nil
	}
	users := orderedmap.New[string, int]()
	users.Set("total", counts.Total)
	for _, role := range counts.Roles {
		users.Set(role.Role, role.Count)
	}
	return users
}
