// Package sqldb implements db.Provider on top of database/sql through sqlx.
// The mysql and sqlite backends are thin constructors around it.
package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	u "github.com/araddon/gou"
	"github.com/jmoiron/sqlx"

	"github.com/hrutik5321/pms/internal/db"
)

type Provider struct {
	sqlDB    *sqlx.DB
	bindType int
	timeout  time.Duration
}

// Open opens a pool for driverName. Nothing is dialed until Acquire.
func Open(driverName, dsn string, cfg db.ConnConfig) (*Provider, error) {
	sqlDB, err := sqlx.Open(driverName, dsn)
	if err != nil {
		return nil, db.Wrap(db.ErrConnection, err)
	}
	return New(sqlDB, cfg), nil
}

// New wraps an already opened pool.
func New(sqlDB *sqlx.DB, cfg db.ConnConfig) *Provider {
	maxConns := cfg.MaxConns
	if maxConns <= 0 {
		maxConns = db.DefaultMaxConns
	}
	sqlDB.SetMaxOpenConns(maxConns)
	sqlDB.SetMaxIdleConns(maxConns)

	timeout := cfg.ExecTimeout
	if timeout <= 0 {
		timeout = db.DefaultExecTimeout
	}
	return &Provider{
		sqlDB:    sqlDB,
		bindType: sqlx.BindType(sqlDB.DriverName()),
		timeout:  timeout,
	}
}

// Acquire implements db.Provider.
func (p *Provider) Acquire(ctx context.Context) (db.Handle, error) {
	conn, err := p.sqlDB.Connx(ctx)
	if err != nil {
		return nil, db.Classify(ctx, db.ErrConnection, err)
	}
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, db.Classify(ctx, db.ErrConnection, err)
	}
	return &handle{conn: conn, bindType: p.bindType, timeout: p.timeout}, nil
}

// Close db
func (p *Provider) Close() error {
	return p.sqlDB.Close()
}

type handle struct {
	mu       sync.Mutex
	conn     *sqlx.Conn
	bindType int
	timeout  time.Duration
}

func (h *handle) session() (*sqlx.Conn, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.conn == nil {
		return nil, db.Wrap(db.ErrQuery, db.ErrHandleClosed)
	}
	return h.conn, nil
}

// Execute implements db.Handle.
func (h *handle) Execute(ctx context.Context, stmt db.Statement) (db.Cursor, error) {
	conn, err := h.session()
	if err != nil {
		return nil, err
	}
	query := stmt.Rebind(h.bindType)
	u.Debugf("sqldb: query %q (%d args)", query, len(stmt.Args))

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	rows, err := conn.QueryxContext(ctx, query, stmt.Args...)
	if err != nil {
		err = db.Classify(ctx, db.ErrQuery, err)
		cancel()
		return nil, err
	}
	return &cursor{ctx: ctx, rows: rows, cancel: cancel}, nil
}

// Exec implements db.Handle.
func (h *handle) Exec(ctx context.Context, stmt db.Statement) (int64, error) {
	conn, err := h.session()
	if err != nil {
		return 0, err
	}
	query := stmt.Rebind(h.bindType)
	u.Debugf("sqldb: exec %q (%d args)", query, len(stmt.Args))

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	res, err := conn.ExecContext(ctx, query, stmt.Args...)
	if err != nil {
		return 0, db.Classify(ctx, db.ErrQuery, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, db.Classify(ctx, db.ErrQuery, err)
	}
	return n, nil
}

// Release implements db.Handle.
func (h *handle) Release() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.conn == nil {
		return nil
	}
	err := h.conn.Close()
	h.conn = nil
	if errors.Is(err, sql.ErrConnDone) {
		return nil
	}
	return err
}

type cursor struct {
	ctx    context.Context
	rows   *sqlx.Rows
	cancel context.CancelFunc
}

func (c *cursor) Columns() ([]db.Column, error) {
	types, err := c.rows.ColumnTypes()
	if err != nil {
		return nil, err
	}
	cols := make([]db.Column, len(types))
	for i, ct := range types {
		cols[i] = db.Column{Name: ct.Name(), Type: ct.DatabaseTypeName()}
	}
	return cols, nil
}

func (c *cursor) Next() bool { return c.rows.Next() }

func (c *cursor) Values() ([]any, error) {
	return c.rows.SliceScan()
}

func (c *cursor) Err() error {
	return db.Classify(c.ctx, db.ErrQuery, c.rows.Err())
}

func (c *cursor) Close() error {
	defer c.cancel()
	return c.rows.Close()
}
