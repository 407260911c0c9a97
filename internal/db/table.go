package db

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Column is one entry of a result's metadata.
type Column struct {
	Name string
	Type string // database type name as reported by the driver, may be empty
}

// Kind is the native type family of a Cell.
type Kind int

const (
	KindNull Kind = iota
	KindText
	KindInt
	KindFloat
	KindBool
	KindTime
	KindBytes
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindText:
		return "text"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindTime:
		return "time"
	case KindBytes:
		return "bytes"
	default:
		return "other"
	}
}

// Cell is one typed value of a Table row.
type Cell struct {
	Kind Kind
	V    any
}

var Null = Cell{Kind: KindNull}

func Text(s string) Cell { return Cell{Kind: KindText, V: s} }
func Int(n int64) Cell { return Cell{Kind: KindInt, V: n} }
func Float(f float64) Cell { return Cell{Kind: KindFloat, V: f} }

func (c Cell) IsNull() bool { return c.Kind == KindNull }

// String renders the cell for display. NULL renders as "NULL".
func (c Cell) String() string {
	switch v := c.V.(type) {
	case nil:
		return "NULL"
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		return v.Format(time.RFC3339)
	case []byte:
		return string(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// textTypes are database type names whose byte-slice values are text.
var textTypes = []string{"CHAR", "TEXT", "CLOB", "DECIMAL", "NUMERIC", "ENUM", "SET", "JSON", "DATE", "TIME", "YEAR"}

func isTextType(dbType string) bool {
	t := strings.ToUpper(dbType)
	for _, s := range textTypes {
		if strings.Contains(t, s) {
			return true
		}
	}
	return false
}

// CellOf converts a driver value to a Cell, keeping its native type.
// dbType is used to tell text columns returned as bytes from real binary data.
func CellOf(v any, dbType string) Cell {
	switch val := v.(type) {
	case nil:
		return Null
	case string:
		return Text(val)
	case []byte:
		if isTextType(dbType) {
			return Text(string(val))
		}
		return Cell{Kind: KindBytes, V: append([]byte(nil), val...)}
	case int64:
		return Int(val)
	case int:
		return Int(int64(val))
	case int32:
		return Int(int64(val))
	case int16:
		return Int(int64(val))
	case int8:
		return Int(int64(val))
	case uint64:
		if val > math.MaxInt64 {
			return Cell{Kind: KindOther, V: val}
		}
		return Int(int64(val))
	case uint:
		if uint64(val) > math.MaxInt64 {
			return Cell{Kind: KindOther, V: val}
		}
		return Int(int64(val))
	case uint32:
		return Int(int64(val))
	case uint16:
		return Int(int64(val))
	case uint8:
		return Int(int64(val))
	case float64:
		return Float(val)
	case float32:
		return Float(float64(val))
	case bool:
		return Cell{Kind: KindBool, V: val}
	case time.Time:
		return Cell{Kind: KindTime, V: val}
	default:
		return Cell{Kind: KindOther, V: v}
	}
}

// Table is a schema-agnostic query result.
// Every row has exactly len(Columns) cells.
type Table struct {
	Columns []Column
	Rows    [][]Cell
}

func (t Table) Width() int { return len(t.Columns) }
func (t Table) Len() int { return len(t.Rows) }

func (t Table) Names() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Index returns the position of the named column, matching case-insensitively,
// or -1.
func (t Table) Index(name string) int {
	for i, c := range t.Columns {
		if strings.EqualFold(c.Name, name) {
			return i
		}
	}
	return -1
}

// Strings renders every cell with Cell.String.
func (t Table) Strings() [][]string {
	out := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		r := make([]string, len(row))
		for j, c := range row {
			r[j] = c.String()
		}
		out[i] = r
	}
	return out
}
