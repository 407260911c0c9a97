// Package mysql opens db.Provider connections to MySQL servers.
package mysql

import (
	"context"
	"net"

	"github.com/go-sql-driver/mysql"

	"github.com/hrutik5321/pms/internal/db"
	"github.com/hrutik5321/pms/internal/db/sqldb"
)

const driverName = "mysql"

func buildDSN(cfg db.ConnConfig) string {
	port := cfg.Port
	if port == "" {
		port = "3306"
	}
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}
	mc := mysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(host, port)
	mc.DBName = cfg.Database
	// report matched rather than changed rows so an unchanged update is not "not found"
	mc.ClientFoundRows = true
	return mc.FormatDSN()
}

// Open returns a provider and checks the credentials with one round trip.
func Open(ctx context.Context, cfg db.ConnConfig) (*sqldb.Provider, error) {
	p, err := sqldb.Open(driverName, buildDSN(cfg), cfg)
	if err != nil {
		return nil, err
	}
	if err := db.WithHandle(ctx, p, func(db.Handle) error { return nil }); err != nil {
		_ = p.Close()
		return nil, err
	}
	return p, nil
}
