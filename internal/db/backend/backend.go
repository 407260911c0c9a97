// Package backend picks the db.Provider implementation for a driver name.
package backend

import (
	"context"
	"fmt"
	"strings"

	u "github.com/araddon/gou"

	"github.com/hrutik5321/pms/internal/db"
	"github.com/hrutik5321/pms/internal/db/mysql"
	"github.com/hrutik5321/pms/internal/db/postgres"
	"github.com/hrutik5321/pms/internal/db/sqlite"
)

// Drivers lists the accepted ConnConfig.Driver values.
var Drivers = []string{"mysql", "postgres", "sqlite"}

// Open connects with the backend named by cfg.Driver.
func Open(ctx context.Context, cfg db.ConnConfig) (db.Provider, error) {
	u.Infof("backend: connecting driver=%s host=%s database=%s", cfg.Driver, cfg.Host, cfg.Database)
	switch strings.ToLower(cfg.Driver) {
	case "mysql":
		return mysql.Open(ctx, cfg)
	case "postgres", "postgresql", "pgx":
		return postgres.Open(ctx, cfg)
	case "sqlite", "sqlite3":
		return sqlite.Open(ctx, cfg)
	default:
		return nil, fmt.Errorf("%w: unknown driver %q (want one of %s)", db.ErrConnection, cfg.Driver, strings.Join(Drivers, ", "))
	}
}
