// Package product holds the console's operations on the product table.
package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	u "github.com/araddon/gou"

	"github.com/hrutik5321/pms/internal/db"
)

const (
	Table    = "product"
	IDColumn = "proid"
)

// ErrNotFound is returned by Update when no product has the given id.
var ErrNotFound = errors.New("product: not found")

// Catalog runs product operations, one handle per call.
type Catalog struct {
	p db.Provider
}

func NewCatalog(p db.Provider) *Catalog {
	return &Catalog{p: p}
}

// List returns every product.
func (c *Catalog) List(ctx context.Context) (db.Table, error) {
	stmt, err := db.SelectAll(Table)
	if err != nil {
		return db.Table{}, err
	}
	return db.Query(ctx, c.p, stmt)
}

// Search filters products by equality criteria. Empty criteria lists all.
func (c *Catalog) Search(ctx context.Context, where db.Criteria) (db.Table, error) {
	stmt, err := db.SelectWhereEquals(Table, where)
	if err != nil {
		return db.Table{}, err
	}
	return db.Query(ctx, c.p, stmt)
}

// Find returns the rows whose id equals id. No match is an empty table.
func (c *Catalog) Find(ctx context.Context, id string) (db.Table, error) {
	return c.Search(ctx, db.Where(IDColumn, id))
}

// IDs returns every product id in backend order.
func (c *Catalog) IDs(ctx context.Context) ([]string, error) {
	stmt, err := db.SelectColumn(Table, IDColumn)
	if err != nil {
		return nil, err
	}
	t, err := db.Query(ctx, c.p, stmt)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, t.Len())
	for _, row := range t.Rows {
		ids = append(ids, row[0].String())
	}
	return ids, nil
}

// Columns returns the product table's column list without transferring rows.
func (c *Catalog) Columns(ctx context.Context) ([]db.Column, error) {
	stmt, err := db.SelectSchema(Table)
	if err != nil {
		return nil, err
	}
	t, err := db.Query(ctx, c.p, stmt)
	if err != nil {
		return nil, err
	}
	return t.Columns, nil
}

// Add inserts one product. values must include the id column.
func (c *Catalog) Add(ctx context.Context, values db.Criteria) error {
	if !hasColumn(values, IDColumn) {
		return fmt.Errorf("%w: %s is required", db.ErrInvalidQuery, IDColumn)
	}
	stmt, err := db.Insert(Table, values)
	if err != nil {
		return err
	}
	if _, err := db.Exec(ctx, c.p, stmt); err != nil {
		return err
	}
	u.Infof("product: added %v", idOf(values))
	return nil
}

// Update sets values on the product with the given id.
func (c *Catalog) Update(ctx context.Context, id string, values db.Criteria) error {
	stmt, err := db.UpdateWhereEquals(Table, values, db.Where(IDColumn, id))
	if err != nil {
		return err
	}
	n, err := db.Exec(ctx, c.p, stmt)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s = %q", ErrNotFound, IDColumn, id)
	}
	u.Infof("product: updated %q (%d columns)", id, values.Len())
	return nil
}

func hasColumn(c db.Criteria, name string) bool {
	for _, col := range c.Columns() {
		if strings.EqualFold(col, name) {
			return true
		}
	}
	return false
}

func idOf(c db.Criteria) any {
	vals := c.Values()
	for i, col := range c.Columns() {
		if strings.EqualFold(col, IDColumn) {
			return vals[i]
		}
	}
	return nil
}
