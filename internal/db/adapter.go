package db

import (
	"errors"
	"fmt"
)

// Cursor is the raw result of Handle.Execute.
type Cursor interface {
	Columns() ([]Column, error)
	Next() bool
	Values() ([]any, error)
	Err() error
	Close() error
}

// Adapt drains cur into a Table and closes it. Columns come from the
// result metadata in backend order; rows keep cursor order. On any failure
// no Table is returned.
func Adapt(cur Cursor) (t Table, err error) {
	defer func() {
		if cerr := cur.Close(); cerr != nil && err == nil {
			t, err = Table{}, Wrap(ErrAdapter, cerr)
		}
	}()

	cols, err := cur.Columns()
	if err != nil {
		return Table{}, errors.Join(ErrAdapter, fmt.Errorf("read columns: %w", err))
	}

	rows := make([][]Cell, 0)
	for cur.Next() {
		vals, err := cur.Values()
		if err != nil {
			return Table{}, Wrap(ErrAdapter, fmt.Errorf("read row %d: %w", len(rows)+1, err))
		}
		if len(vals) != len(cols) {
			return Table{}, fmt.Errorf("%w: row %d has %d values, want %d", ErrAdapter, len(rows)+1, len(vals), len(cols))
		}
		row := make([]Cell, len(cols))
		for i, v := range vals {
			row[i] = CellOf(v, cols[i].Type)
		}
		rows = append(rows, row)
	}
	if err := cur.Err(); err != nil {
		return Table{}, Wrap(ErrAdapter, err)
	}

	return Table{Columns: cols, Rows: rows}, nil
}
