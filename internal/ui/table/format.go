package table

import (
	"encoding/csv"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/hrutik5321/pms/internal/db"
)

// FormatCell renders one cell for display.
func FormatCell(c db.Cell) string {
	if c.Kind != db.KindBytes {
		return c.String()
	}
	val, _ := c.V.([]byte)

	// UUID stored as BINARY(16)
	if len(val) == 16 {
		if uid, err := uuid.FromBytes(val); err == nil {
			return uid.String()
		}
	}
	if utf8.Valid(val) {
		return string(val)
	}
	return "0x" + hex.EncodeToString(val)
}

// Strings renders every cell of t with FormatCell.
func Strings(t db.Table) [][]string {
	out := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		r := make([]string, len(row))
		for j, c := range row {
			r[j] = FormatCell(c)
		}
		out[i] = r
	}
	return out
}

type jsonTable struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// WriteJSON encodes t as {"columns": [...], "rows": [[...], ...]} keeping
// numbers, booleans and nulls native.
func WriteJSON(w io.Writer, t db.Table) error {
	out := jsonTable{Columns: t.Names(), Rows: make([][]any, len(t.Rows))}
	for i, row := range t.Rows {
		r := make([]any, len(row))
		for j, c := range row {
			switch c.Kind {
			case db.KindNull:
				r[j] = nil
			case db.KindInt, db.KindFloat, db.KindBool:
				r[j] = c.V
			default:
				r[j] = FormatCell(c)
			}
		}
		out.Rows[i] = r
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// WriteCSV writes a header line followed by one record per row. NULL is an
// empty field.
func WriteCSV(w io.Writer, t db.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Names()); err != nil {
		return err
	}
	for _, row := range t.Rows {
		rec := make([]string, len(row))
		for j, c := range row {
			if !c.IsNull() {
				rec[j] = FormatCell(c)
			}
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// CheckFormat reports whether Write accepts format.
func CheckFormat(format string) error {
	switch format {
	case "", "table", "json", "csv":
		return nil
	default:
		return fmt.Errorf("unknown format %q (want table, json or csv)", format)
	}
}

// Write renders t to w in the named format: table, json or csv.
func Write(w io.Writer, t db.Table, format string) error {
	if err := CheckFormat(format); err != nil {
		return err
	}
	switch format {
	case "", "table":
		_, err := io.WriteString(w, RenderTable(t, -1))
		return err
	case "json":
		return WriteJSON(w, t)
	default:
		return WriteCSV(w, t)
	}
}
