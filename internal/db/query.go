package db

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jmoiron/sqlx"
)

// Criteria is an ordered set of column = value filters.
// The zero value means no filter. Builder methods never modify the receiver.
type Criteria struct {
	pairs []pair
}

type pair struct {
	column string
	value  any
}

// Where starts a Criteria with a single equality pair.
func Where(column string, value any) Criteria {
	return Criteria{}.And(column, value)
}

// CriteriaFrom zips parallel column and value slices.
func CriteriaFrom(columns []string, values []any) (Criteria, error) {
	if len(columns) != len(values) {
		return Criteria{}, fmt.Errorf("%w: %d columns but %d values", ErrInvalidQuery, len(columns), len(values))
	}
	c := Criteria{}
	for i, col := range columns {
		c = c.And(col, values[i])
	}
	return c, nil
}

// And returns a copy of c with one more pair appended.
func (c Criteria) And(column string, value any) Criteria {
	next := make([]pair, len(c.pairs), len(c.pairs)+1)
	copy(next, c.pairs)
	return Criteria{pairs: append(next, pair{column: column, value: value})}
}

func (c Criteria) Len() int { return len(c.pairs) }

func (c Criteria) Columns() []string {
	cols := make([]string, len(c.pairs))
	for i, p := range c.pairs {
		cols[i] = p.column
	}
	return cols
}

func (c Criteria) Values() []any {
	vals := make([]any, len(c.pairs))
	for i, p := range c.pairs {
		vals[i] = p.value
	}
	return vals
}

// Statement is a query template with ? placeholders and its bound values.
type Statement struct {
	SQL  string
	Args []any
}

// Rebind rewrites the placeholders for the given sqlx bind type.
func (s Statement) Rebind(bindType int) string {
	return sqlx.Rebind(bindType, s.SQL)
}

func (s Statement) String() string {
	return fmt.Sprintf("%s [%d args]", s.SQL, len(s.Args))
}

// ----- Query builder -----

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

func checkIdent(kind, name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty %s name", ErrInvalidQuery, kind)
	}
	if !identRe.MatchString(name) {
		return fmt.Errorf("%w: bad %s name %q", ErrInvalidQuery, kind, name)
	}
	return nil
}

func checkCriteria(c Criteria) error {
	seen := make(map[string]bool, c.Len())
	for _, p := range c.pairs {
		if err := checkIdent("column", p.column); err != nil {
			return err
		}
		key := strings.ToLower(p.column)
		if seen[key] {
			return fmt.Errorf("%w: column %q given twice", ErrInvalidQuery, p.column)
		}
		seen[key] = true
	}
	return nil
}

// SelectAll returns every row and column of table.
func SelectAll(table string) (Statement, error) {
	if err := checkIdent("table", table); err != nil {
		return Statement{}, err
	}
	return Statement{SQL: "SELECT * FROM " + table}, nil
}

// SelectSchema matches no rows; its result carries only the column metadata.
func SelectSchema(table string) (Statement, error) {
	stmt, err := SelectAll(table)
	if err != nil {
		return Statement{}, err
	}
	stmt.SQL += " WHERE 1 = 0"
	return stmt, nil
}

// SelectColumn returns a single column of every row of table.
func SelectColumn(table, column string) (Statement, error) {
	if err := checkIdent("table", table); err != nil {
		return Statement{}, err
	}
	if err := checkIdent("column", column); err != nil {
		return Statement{}, err
	}
	return Statement{SQL: fmt.Sprintf("SELECT %s FROM %s", column, table)}, nil
}

// SelectWhereEquals filters table by every pair of c, joined with AND in
// insertion order. Values are bound, never spliced into the SQL text.
func SelectWhereEquals(table string, c Criteria) (Statement, error) {
	stmt, err := SelectAll(table)
	if err != nil {
		return Statement{}, err
	}
	if c.Len() == 0 {
		return stmt, nil
	}
	if err := checkCriteria(c); err != nil {
		return Statement{}, err
	}
	where, args := equalsList(c, " AND ")
	stmt.SQL += " WHERE " + where
	stmt.Args = args
	return stmt, nil
}

// Insert adds one row holding the pairs of values.
func Insert(table string, values Criteria) (Statement, error) {
	if err := checkIdent("table", table); err != nil {
		return Statement{}, err
	}
	if values.Len() == 0 {
		return Statement{}, fmt.Errorf("%w: insert into %s without values", ErrInvalidQuery, table)
	}
	if err := checkCriteria(values); err != nil {
		return Statement{}, err
	}
	marks := strings.TrimSuffix(strings.Repeat("?, ", values.Len()), ", ")
	return Statement{
		SQL:  fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(values.Columns(), ", "), marks),
		Args: values.Values(),
	}, nil
}

// UpdateWhereEquals sets the pairs of set on rows matching where.
// An empty where is refused: unfiltered updates are never built.
func UpdateWhereEquals(table string, set, where Criteria) (Statement, error) {
	if err := checkIdent("table", table); err != nil {
		return Statement{}, err
	}
	if set.Len() == 0 {
		return Statement{}, fmt.Errorf("%w: update %s without values", ErrInvalidQuery, table)
	}
	if where.Len() == 0 {
		return Statement{}, fmt.Errorf("%w: update %s without filter", ErrInvalidQuery, table)
	}
	if err := errors.Join(checkCriteria(set), checkCriteria(where)); err != nil {
		return Statement{}, err
	}
	assign, args := equalsList(set, ", ")
	cond, condArgs := equalsList(where, " AND ")
	return Statement{
		SQL:  fmt.Sprintf("UPDATE %s SET %s WHERE %s", table, assign, cond),
		Args: append(args, condArgs...),
	}, nil
}

func equalsList(c Criteria, sep string) (string, []any) {
	parts := make([]string, len(c.pairs))
	args := make([]any, len(c.pairs))
	for i, p := range c.pairs {
		parts[i] = p.column + " = ?"
		args[i] = p.value
	}
	return strings.Join(parts, sep), args
}
