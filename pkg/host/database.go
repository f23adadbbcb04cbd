package host

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	_ "modernc.org/sqlite"
)

const probeTimeout = 5 * time.Second

// ProbeDatabaseVersion asks a live database server for its version string.
// Supported drivers are sqlite and postgres.
func ProbeDatabaseVersion(ctx context.Context, driver, dsn string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "sqlite", "sqlite3":
		return probeSQLite(ctx, dsn)
	case "postgres", "postgresql", "pgx":
		return probePostgres(ctx, dsn)
	default:
		return "", fmt.Errorf("unsupported database driver %q", driver)
	}
}

func probeSQLite(ctx context.Context, dsn string) (string, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return "", fmt.Errorf("opening sqlite database: %w", err)
	}
	defer db.Close()

	var version string
	if err := db.QueryRowContext(ctx, "SELECT sqlite_version()").Scan(&version); err != nil {
		return "", fmt.Errorf("querying sqlite version: %w", err)
	}
	return version, nil
}

func probePostgres(ctx context.Context, dsn string) (string, error) {
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return "", fmt.Errorf("connecting to postgres: %w", err)
	}
	defer conn.Close(context.WithoutCancel(ctx))

	var version string
	if err := conn.QueryRow(ctx, "SHOW server_version").Scan(&version); err != nil {
		return "", fmt.Errorf("querying postgres version: %w", err)
	}
	return version, nil
}
