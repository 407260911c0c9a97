package db

import (
	"context"
	"time"

	u "github.com/araddon/gou"
)

// Connection parameters for any SQL DB.
type ConnConfig struct {
	Driver   string // postgres, mysql or sqlite
	Host     string
	Port     string
	User     string
	Password string
	Database string // file path for sqlite

	MaxConns    int
	ExecTimeout time.Duration
}

const (
	DefaultMaxConns    = 2
	DefaultExecTimeout = 10 * time.Second
)

// Provider owns the driver pool. Every logical operation acquires its own
// Handle and releases it when done.
type Provider interface {
	Acquire(ctx context.Context) (Handle, error)
	Close() error
}

// Handle is one live session to the backend. It is not safe for concurrent use.
type Handle interface {
	// Execute runs a statement that returns rows. The returned cursor must be
	// closed; Adapt does that.
	Execute(ctx context.Context, stmt Statement) (Cursor, error)

	// Exec runs a statement that does not return rows and reports rows affected.
	Exec(ctx context.Context, stmt Statement) (int64, error)

	// Release gives the session back. Calling it more than once is a no-op.
	Release() error
}

// ----- Scoped helpers -----

// WithHandle acquires a handle, runs fn and releases the handle on every exit path.
func WithHandle(ctx context.Context, p Provider, fn func(Handle) error) (err error) {
	h, err := p.Acquire(ctx)
	if err != nil {
		return err
	}
	u.Debugf("db: handle acquired")
	defer func() {
		if rerr := h.Release(); rerr != nil {
			u.Warnf("db: release handle: %v", rerr)
			if err == nil {
				err = rerr
			}
		}
	}()
	return fn(h)
}

// Query executes stmt on a fresh handle and adapts the result.
func Query(ctx context.Context, p Provider, stmt Statement) (Table, error) {
	var t Table
	err := WithHandle(ctx, p, func(h Handle) error {
		cur, err := h.Execute(ctx, stmt)
		if err != nil {
			return err
		}
		t, err = Adapt(cur)
		return err
	})
	if err != nil {
		return Table{}, err
	}
	return t, nil
}

// Exec runs stmt on a fresh handle.
func Exec(ctx context.Context, p Provider, stmt Statement) (int64, error) {
	var n int64
	err := WithHandle(ctx, p, func(h Handle) error {
		var err error
		n, err = h.Exec(ctx, stmt)
		return err
	})
	return n, err
}
