package db

import (
	"context"
	"errors"
)

var (
	// ErrConnection indicates the backend is unreachable or rejected the credentials.
	ErrConnection = errors.New("db: connection failed")

	// ErrInvalidQuery indicates a statement was refused before any I/O.
	ErrInvalidQuery = errors.New("db: invalid query")

	// ErrQuery wraps failures reported by the backend while running a statement.
	ErrQuery = errors.New("db: query failed")

	// ErrAdapter indicates the raw result could not be turned into a Table.
	ErrAdapter = errors.New("db: cannot adapt result")

	// ErrTimeout indicates the operation ran past its deadline.
	ErrTimeout = errors.New("db: operation timed out")

	// ErrHandleClosed is joined with ErrQuery when a released handle is used.
	ErrHandleClosed = errors.New("db: handle is released")
)

// Classify decides which sentinel a driver error belongs to: ErrTimeout when
// ctx ran out, kind otherwise. Errors already carrying a sentinel are returned
// unchanged.
func Classify(ctx context.Context, kind error, err error) error {
	if err == nil {
		return nil
	}
	if !classified(err) && ctx != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return errors.Join(ErrTimeout, err)
	}
	return Wrap(kind, err)
}

// Wrap joins err with kind unless it already carries a sentinel.
func Wrap(kind error, err error) error {
	if err == nil || classified(err) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return errors.Join(ErrTimeout, err)
	}
	return errors.Join(kind, err)
}

func classified(err error) bool {
	for _, s := range []error{ErrConnection, ErrInvalidQuery, ErrQuery, ErrAdapter, ErrTimeout} {
		if errors.Is(err, s) {
			return true
		}
	}
	return false
}
