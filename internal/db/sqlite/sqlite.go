// Package sqlite opens a local database file through modernc.org/sqlite.
package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/hrutik5321/pms/internal/db"
	"github.com/hrutik5321/pms/internal/db/sqldb"
)

const driverName = "sqlite"

func init() {
	sqlx.BindDriver(driverName, sqlx.QUESTION)
}

func buildDSN(cfg db.ConnConfig) string {
	path := cfg.Database
	if path == "" {
		path = ":memory:"
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%s_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", path, sep)
}

// Open returns a provider for the file named by cfg.Database. An in-memory
// database lives as long as one connection, so it is capped to a single one.
func Open(ctx context.Context, cfg db.ConnConfig) (*sqldb.Provider, error) {
	if cfg.Database == "" || strings.HasPrefix(cfg.Database, ":memory:") {
		cfg.MaxConns = 1
	}
	p, err := sqldb.Open(driverName, buildDSN(cfg), cfg)
	if err != nil {
		return nil, err
	}
	// fail fast on unreadable files
	if err := db.WithHandle(ctx, p, func(db.Handle) error { return nil }); err != nil {
		_ = p.Close()
		return nil, err
	}
	return p, nil
}
