// Package settings is the persistent key-value option store the tracker
// reads its last-send timestamp from and writes it back to.
package settings

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Store is a flat string key/value option table.
type Store interface {
	Driver() string
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// NewStore opens the store for driver. An empty driver selects the in-memory
// store; userconfig fills in "sqlite" before the CLI gets here.
func NewStore(driver, sqlitePath string) (Store, error) {
	switch normalizeDriver(driver) {
	case "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return NewSQLiteStore(sqlitePath)
	default:
		return nil, fmt.Errorf("unsupported settings driver %q", driver)
	}
}

func normalizeDriver(driver string) string {
	driver = strings.ToLower(strings.TrimSpace(driver))
	if driver == "" {
		return "memory"
	}
	return driver
}

// ErrNotInteger is returned by GetInt64 for a stored value that is not a base-10 integer.
var ErrNotInteger = errors.New("not an integer")

// GetInt64 reads key as a base-10 integer. Missing or empty values report
// ok=false; a value that does not parse is an error.
func GetInt64(ctx context.Context, s Store, key string) (int64, bool, error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return 0, false, err
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("option %q is %w: %w", key, ErrNotInteger, err)
	}
	return n, true, nil
}

// SetInt64 stores n under key in base 10.
func SetInt64(ctx context.Context, s Store, key string, n int64) error {
	return s.Set(ctx, key, strconv.FormatInt(n, 10))
}
