// Package hooks is a table of named filter points. Code that produces a
// value passes it through Apply under a stable name, and anything that
// registered a filter under that name may replace it.
package hooks

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/animalscode/actracker/pkg/concurrent"
)

// Filter receives the current value and returns the replacement.
// Returning nil leaves the value unchanged.
type Filter func(value any) any

// Registry maps filter point names to their filters, in registration order.
// The zero value is not usable. A nil *Registry filters nothing and ignores
// registrations.
type Registry struct {
	filters *concurrent.Map[string, []Filter]
}

func New() *Registry {
	return &Registry{filters: concurrent.NewMap[string, []Filter]()}
}

// Add appends f to the filters run for name.
func (r *Registry) Add(name string, f Filter) {
	if r == nil {
		return
	}
	r.filters.Update(name, func(current []Filter, _ bool) []Filter {
		return append(current, f)
	})
}

// AddFunc registers a typed filter. Values of another type pass through it untouched.
func AddFunc[T any](r *Registry, name string, fn func(T) T) {
	r.Add(name, func(value any) any {
		v, ok := value.(T)
		if !ok {
			return nil
		}
		return fn(v)
	})
}

// Value registers a filter that always replaces the value with v.
func Value(r *Registry, name string, v any) {
	r.Add(name, func(any) any { return v })
}

// Remove drops every filter registered for name.
func (r *Registry) Remove(name string) {
	if r == nil {
		return
	}
	r.filters.Delete(name)
}

// Has reports whether at least one filter is registered for name.
func (r *Registry) Has(name string) bool {
	if r == nil {
		return false
	}
	fs, ok := r.filters.Load(name)
	return ok && len(fs) > 0
}

// Names lists the filter points that have filters, sorted.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	return r.filters.Keys(strings.Compare)
}

// Apply runs value through the filters registered for name.
//
// A filter result that is not a T is discarded, except that strings are
// parsed into time.Duration, bool, int and int64 targets so values coming
// from configuration files can override typed filter points.
func Apply[T any](r *Registry, name string, value T) T {
	if r == nil {
		return value
	}
	fs, ok := r.filters.Load(name)
	if !ok {
		return value
	}

	for _, f := range fs {
		out := f(value)
		if out == nil {
			continue
		}
		v, ok := coerce[T](out)
		if !ok {
			slog.Debug("Ignoring filter result of unexpected type", "filter", name, "got", fmt.Sprintf("%T", out))
			continue
		}
		value = v
	}
	return value
}

func coerce[T any](v any) (T, bool) {
	if t, ok := v.(T); ok {
		return t, true
	}

	var zero T
	s, ok := v.(string)
	if !ok {
		return zero, false
	}
	s = strings.TrimSpace(s)

	var (
		out any
		err error
	)
	switch any(zero).(type) {
	case time.Duration:
		out, err = time.ParseDuration(s)
	case bool:
		out, err = strconv.ParseBool(s)
	case int64:
		out, err = strconv.ParseInt(s, 10, 64)
	case int:
		out, err = strconv.Atoi(s)
	default:
		return zero, false
	}
	if err != nil {
		return zero, false
	}
	return out.(T), true
}

// FromConfig builds a registry of constant replacements, one per entry.
func FromConfig(values map[string]string) *Registry {
	r := New()
	for name, v := range values {
		Value(r, name, v)
	}
	return r
}
