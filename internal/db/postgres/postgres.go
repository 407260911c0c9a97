package postgres

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"sync"
	"time"

	u "github.com/araddon/gou"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/hrutik5321/pms/internal/db"
)

type PostgresDB struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

func buildDSN(cfg db.ConnConfig) string {
	port := cfg.Port
	if port == "" {
		port = "5432"
	}
	dsn := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     net.JoinHostPort(cfg.Host, port),
		Path:     "/" + cfg.Database,
		RawQuery: "sslmode=disable",
	}
	return dsn.String()
}

// Open creates the pool and pings once so bad credentials surface immediately.
func Open(ctx context.Context, cfg db.ConnConfig) (*PostgresDB, error) {
	poolCfg, err := pgxpool.ParseConfig(buildDSN(cfg))
	if err != nil {
		return nil, db.Wrap(db.ErrConnection, err)
	}
	maxConns := cfg.MaxConns
	if maxConns <= 0 {
		maxConns = db.DefaultMaxConns
	}
	poolCfg.MaxConns = int32(maxConns)

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, db.Classify(ctx, db.ErrConnection, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, db.Classify(ctx, db.ErrConnection, err)
	}

	timeout := cfg.ExecTimeout
	if timeout <= 0 {
		timeout = db.DefaultExecTimeout
	}
	return &PostgresDB{pool: pool, timeout: timeout}, nil
}

// Acquire implements db.Provider.
func (p *PostgresDB) Acquire(ctx context.Context) (db.Handle, error) {
	if p.pool == nil {
		return nil, db.Wrap(db.ErrConnection, fmt.Errorf("database not connected"))
	}
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, db.Classify(ctx, db.ErrConnection, err)
	}
	if err := conn.Ping(ctx); err != nil {
		conn.Release()
		return nil, db.Classify(ctx, db.ErrConnection, err)
	}
	return &handle{conn: conn, timeout: p.timeout}, nil
}

// Close db
func (p *PostgresDB) Close() error {
	if p.pool != nil {
		p.pool.Close()
	}
	return nil
}

type handle struct {
	mu      sync.Mutex
	conn    *pgxpool.Conn
	timeout time.Duration
}

func (h *handle) session() (*pgxpool.Conn, error) {
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
	query := stmt.Rebind(sqlx.DOLLAR)
	u.Debugf("postgres: query %q (%d args)", query, len(stmt.Args))

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	rows, err := conn.Query(ctx, query, stmt.Args...)
	if err != nil {
		err = classify(ctx, err)
		cancel()
		return nil, err
	}
	return &cursor{ctx: ctx, rows: rows, typeMap: conn.Conn().TypeMap(), cancel: cancel}, nil
}

// Exec implements db.Handle.
func (h *handle) Exec(ctx context.Context, stmt db.Statement) (int64, error) {
	conn, err := h.session()
	if err != nil {
		return 0, err
	}
	query := stmt.Rebind(sqlx.DOLLAR)
	u.Debugf("postgres: exec %q (%d args)", query, len(stmt.Args))

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	cmdTag, err := conn.Exec(ctx, query, stmt.Args...)
	if err != nil {
		return 0, classify(ctx, err)
	}
	return cmdTag.RowsAffected(), nil
}

// Release implements db.Handle.
func (h *handle) Release() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.conn != nil {
		h.conn.Release()
		h.conn = nil
	}
	return nil
}

// classify keeps server-side rejections as query errors and treats a lost
// socket as a connection failure.
func classify(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return db.Classify(ctx, db.ErrQuery, err)
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) || pgconn.SafeToRetry(err) {
		return db.Classify(ctx, db.ErrConnection, err)
	}
	return db.Classify(ctx, db.ErrQuery, err)
}

type cursor struct {
	ctx     context.Context
	rows    pgx.Rows
	typeMap *pgtype.Map
	cancel  context.CancelFunc
}

func (c *cursor) Columns() ([]db.Column, error) {
	fds := c.rows.FieldDescriptions()
	if fds == nil {
		if err := c.rows.Err(); err != nil {
			return nil, err
		}
	}
	cols := make([]db.Column, len(fds))
	for i, fd := range fds {
		cols[i] = db.Column{Name: fd.Name}
		if t, ok := c.typeMap.TypeForOID(fd.DataTypeOID); ok {
			cols[i].Type = t.Name
		}
	}
	return cols, nil
}

func (c *cursor) Next() bool { return c.rows.Next() }

func (c *cursor) Values() ([]any, error) {
	values, err := c.rows.Values()
	if err != nil {
		return nil, err
	}
	for i, v := range values {
		values[i] = normalize(v)
	}
	return values, nil
}

func (c *cursor) Err() error {
	return classify(c.ctx, c.rows.Err())
}

func (c *cursor) Close() error {
	defer c.cancel()
	c.rows.Close()
	if err := c.rows.Err(); err != nil {
		return classify(c.ctx, err)
	}
	return nil
}

// normalize turns pgx UUID representations into uuid.UUID and numerics
// into float64.
func normalize(v any) any {
	switch val := v.(type) {

	// UUID as [16]byte
	case [16]byte:
		return uuid.UUID(val)

	// pgx UUID type
	case pgtype.UUID:
		if !val.Valid {
			return nil
		}
		return uuid.UUID(val.Bytes)

	case pgtype.Numeric:
		if !val.Valid {
			return nil
		}
		if f, err := val.Float64Value(); err == nil && f.Valid {
			return f.Float64
		}
		return fmt.Sprint(val)

	default:
		return v
	}
}
