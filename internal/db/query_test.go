package db

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"
)

func TestSelectAll(t *testing.T) {
	stmt, err := SelectAll("product")
	if err != nil {
		t.Fatalf("SelectAll error: %v", err)
	}
	if stmt.SQL != "SELECT * FROM product" || len(stmt.Args) != 0 {
		t.Fatalf("unexpected statement: %+v", stmt)
	}
}

func TestSelectWhereEquals_InsertionOrder(t *testing.T) {
	c := Where("proid", "P1").And("name", "Pen")
	stmt, err := SelectWhereEquals("product", c)
	if err != nil {
		t.Fatalf("SelectWhereEquals error: %v", err)
	}
	want := "SELECT * FROM product WHERE proid = ? AND name = ?"
	if stmt.SQL != want {
		t.Fatalf("sql = %q, want %q", stmt.SQL, want)
	}
	if !reflect.DeepEqual(stmt.Args, []any{"P1", "Pen"}) {
		t.Fatalf("args = %v", stmt.Args)
	}
}

func TestSelectWhereEquals_EmptyCriteriaIsSelectAll(t *testing.T) {
	all, _ := SelectAll("product")
	stmt, err := SelectWhereEquals("product", Criteria{})
	if err != nil {
		t.Fatalf("SelectWhereEquals error: %v", err)
	}
	if !reflect.DeepEqual(stmt, all) {
		t.Fatalf("got %+v, want %+v", stmt, all)
	}
}

func TestSelectWhereEquals_ValueNeverInSQL(t *testing.T) {
	values := []string{
		"' OR '1'='1",
		"P100",
		"x; DROP TABLE product; --",
		`"quoted"`,
		"?",
	}
	for _, v := range values {
		stmt, err := SelectWhereEquals("product", Where("proid", v))
		if err != nil {
			t.Fatalf("SelectWhereEquals(%q) error: %v", v, err)
		}
		if v != "?" && strings.Contains(stmt.SQL, v) {
			t.Fatalf("value %q leaked into sql %q", v, stmt.SQL)
		}
		if len(stmt.Args) != 1 || stmt.Args[0] != v {
			t.Fatalf("value %q not bound: %v", v, stmt.Args)
		}
	}
}

func TestBuilders_RejectBadIdentifiers(t *testing.T) {
	cases := []struct {
		name  string
		build func() (Statement, error)
	}{
		{"empty table", func() (Statement, error) { return SelectAll("") }},
		{"empty table with criteria", func() (Statement, error) { return SelectWhereEquals("", Where("proid", "P1")) }},
		{"injected table", func() (Statement, error) { return SelectAll("product; DROP TABLE login") }},
		{"injected column", func() (Statement, error) { return SelectWhereEquals("product", Where("proid = proid OR 1", 1)) }},
		{"empty column", func() (Statement, error) { return SelectWhereEquals("product", Where("", 1)) }},
		{"duplicate column", func() (Statement, error) {
			return SelectWhereEquals("product", Where("proid", 1).And("PROID", 2))
		}},
		{"bad select column", func() (Statement, error) { return SelectColumn("product", "*") }},
		{"insert without values", func() (Statement, error) { return Insert("product", Criteria{}) }},
		{"update without filter", func() (Statement, error) { return UpdateWhereEquals("product", Where("name", "x"), Criteria{}) }},
		{"update without values", func() (Statement, error) { return UpdateWhereEquals("product", Criteria{}, Where("proid", "P1")) }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.build()
			if !errors.Is(err, ErrInvalidQuery) {
				t.Fatalf("expected ErrInvalidQuery, got %v", err)
			}
		})
	}
}

func TestSchemaQualifiedTable(t *testing.T) {
	stmt, err := SelectAll("public.product")
	if err != nil {
		t.Fatalf("SelectAll error: %v", err)
	}
	if stmt.SQL != "SELECT * FROM public.product" {
		t.Fatalf("unexpected sql %q", stmt.SQL)
	}
}

func TestSelectColumn(t *testing.T) {
	stmt, err := SelectColumn("product", "proid")
	if err != nil {
		t.Fatalf("SelectColumn error: %v", err)
	}
	if stmt.SQL != "SELECT proid FROM product" {
		t.Fatalf("unexpected sql %q", stmt.SQL)
	}
}

func TestInsert(t *testing.T) {
	stmt, err := Insert("product", Where("proid", "P3").And("name", "Ink").And("price", 5))
	if err != nil {
		t.Fatalf("Insert error: %v", err)
	}
	want := "INSERT INTO product (proid, name, price) VALUES (?, ?, ?)"
	if stmt.SQL != want {
		t.Fatalf("sql = %q, want %q", stmt.SQL, want)
	}
	if !reflect.DeepEqual(stmt.Args, []any{"P3", "Ink", 5}) {
		t.Fatalf("args = %v", stmt.Args)
	}
}

func TestUpdateWhereEquals(t *testing.T) {
	stmt, err := UpdateWhereEquals("product", Where("name", "Pencil").And("price", 12), Where("proid", "P1"))
	if err != nil {
		t.Fatalf("UpdateWhereEquals error: %v", err)
	}
	want := "UPDATE product SET name = ?, price = ? WHERE proid = ?"
	if stmt.SQL != want {
		t.Fatalf("sql = %q, want %q", stmt.SQL, want)
	}
	if !reflect.DeepEqual(stmt.Args, []any{"Pencil", 12, "P1"}) {
		t.Fatalf("args = %v", stmt.Args)
	}
}

func TestCriteria_AndDoesNotMutate(t *testing.T) {
	base := Where("proid", "P1")
	a := base.And("name", "a")
	b := base.And("name", "b")
	if base.Len() != 1 || a.Len() != 2 || b.Len() != 2 {
		t.Fatalf("lens = %d %d %d", base.Len(), a.Len(), b.Len())
	}
	if a.Values()[1] != "a" || b.Values()[1] != "b" {
		t.Fatalf("shared backing array: %v %v", a.Values(), b.Values())
	}
}

func TestCriteriaFrom(t *testing.T) {
	c, err := CriteriaFrom([]string{"proid", "name"}, []any{"P1", "Pen"})
	if err != nil {
		t.Fatalf("CriteriaFrom error: %v", err)
	}
	if !reflect.DeepEqual(c.Columns(), []string{"proid", "name"}) {
		t.Fatalf("columns = %v", c.Columns())
	}
	if _, err := CriteriaFrom([]string{"proid"}, nil); !errors.Is(err, ErrInvalidQuery) {
		t.Fatalf("expected ErrInvalidQuery, got %v", err)
	}
}

func TestStatement_Rebind(t *testing.T) {
	stmt, _ := SelectWhereEquals("product", Where("proid", "P1").And("name", "Pen"))
	if got := stmt.Rebind(sqlx.DOLLAR); got != "SELECT * FROM product WHERE proid = $1 AND name = $2" {
		t.Fatalf("dollar rebind = %q", got)
	}
	if got := stmt.Rebind(sqlx.QUESTION); got != stmt.SQL {
		t.Fatalf("question rebind = %q", got)
	}
}

func TestSelectSchema(t *testing.T) {
	stmt, err := SelectSchema("product")
	if err != nil {
		t.Fatalf("SelectSchema error: %v", err)
	}
	if stmt.SQL != "SELECT * FROM product WHERE 1 = 0" || len(stmt.Args) != 0 {
		t.Fatalf("unexpected statement: %+v", stmt)
	}
}
