package app

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"

	"github.com/hrutik5321/pms/internal/db"
	"github.com/hrutik5321/pms/internal/product"
)

// formValues collects the typed values of a product form. When adding, blank
// fields are left out so the column default applies. When editing, only the
// fields that differ from orig are kept and a cleared field becomes NULL.
func formValues(cols []db.Column, inputs []textinput.Model, orig []string, editing bool) (db.Criteria, error) {
	values := db.Criteria{}
	for i, col := range cols {
		raw := strings.TrimSpace(inputs[i].Value())
		if editing && raw == orig[i] {
			continue
		}
		if raw == "" {
			if editing {
				values = values.And(col.Name, nil)
			}
			continue
		}
		v, err := parseValue(col, raw)
		if err != nil {
			return db.Criteria{}, err
		}
		values = values.And(col.Name, v)
	}
	return values, nil
}

// parseValue converts form text to the Go type the column's driver expects.
func parseValue(col db.Column, raw string) (any, error) {
	t := strings.ToUpper(col.Type)
	switch {
	case isIntType(t):
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s must be a whole number", col.Name)
		}
		return n, nil
	case strings.Contains(t, "REAL"), strings.Contains(t, "FLOA"), strings.Contains(t, "DOUB"),
		strings.Contains(t, "NUMERIC"), strings.Contains(t, "DECIMAL"):
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("%s must be a number", col.Name)
		}
		return f, nil
	case strings.Contains(t, "BOOL"):
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("%s must be true or false", col.Name)
		}
		return b, nil
	default:
		return raw, nil
	}
}

func isIntType(t string) bool {
	return strings.Contains(t, "INT") && !strings.Contains(t, "INTERVAL") && !strings.Contains(t, "POINT")
}

func idValue(values db.Criteria) any {
	for i, col := range values.Columns() {
		if strings.EqualFold(col, product.IDColumn) {
			return values.Values()[i]
		}
	}
	return nil
}
