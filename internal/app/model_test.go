package app

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hrutik5321/pms/internal/auth"
	"github.com/hrutik5321/pms/internal/db"
	"github.com/hrutik5321/pms/internal/product"
)

type fakeStore struct {
	rows     db.Table
	added    []db.Criteria
	updated  map[string]db.Criteria
	listErr  error
	lastFind string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		rows: db.Table{
			Columns: []db.Column{{Name: "proid", Type: "TEXT"}, {Name: "name", Type: "TEXT"}, {Name: "price", Type: "INTEGER"}},
			Rows: [][]db.Cell{
				{db.Text("P1"), db.Text("Pen"), db.Int(10)},
				{db.Text("P2"), db.Text("Book"), db.Int(50)},
			},
		},
		updated: map[string]db.Criteria{},
	}
}

func (f *fakeStore) Authenticate(_ context.Context, username, password string) error {
	if username == "admin" && password == "secret" {
		return nil
	}
	return auth.ErrInvalidCredentials
}

func (f *fakeStore) List(context.Context) (db.Table, error) {
	return f.rows, f.listErr
}

func (f *fakeStore) Find(_ context.Context, id string) (db.Table, error) {
	f.lastFind = id
	out := db.Table{Columns: f.rows.Columns, Rows: [][]db.Cell{}}
	for _, r := range f.rows.Rows {
		if r[0].String() == id {
			out.Rows = append(out.Rows, r)
		}
	}
	return out, nil
}

func (f *fakeStore) IDs(context.Context) ([]string, error) {
	ids := make([]string, len(f.rows.Rows))
	for i, r := range f.rows.Rows {
		ids[i] = r[0].String()
	}
	return ids, nil
}

func (f *fakeStore) Columns(context.Context) ([]db.Column, error) {
	return f.rows.Columns, nil
}

func (f *fakeStore) Add(_ context.Context, values db.Criteria) error {
	f.added = append(f.added, values)
	return nil
}

func (f *fakeStore) Update(_ context.Context, id string, values db.Criteria) error {
	if id == "P9" {
		return product.ErrNotFound
	}
	f.updated[id] = values
	return nil
}

func send(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

// run executes cmd and feeds its message back into the model.
func run(t *testing.T, m Model, cmd tea.Cmd) (Model, tea.Cmd) {
	t.Helper()
	if cmd == nil {
		t.Fatalf("expected a command")
	}
	return send(t, m, cmd())
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func login(t *testing.T, s Store, user, pass string) (Model, tea.Cmd) {
	t.Helper()
	m := initialModel(s)
	m.userInput.SetValue(user)
	m.passInput.SetValue(pass)
	m, _ = send(t, m, key("enter"))
	m, cmd := send(t, m, key("enter"))
	return run(t, m, cmd)
}

func loggedIn(t *testing.T, s *fakeStore) Model {
	t.Helper()
	m, cmd := login(t, s, "admin", "secret")
	m, _ = run(t, m, cmd)
	if m.mode != modeRows {
		t.Fatalf("mode = %v, want rows", m.mode)
	}
	return m
}

func TestLogin_Success(t *testing.T) {
	m := loggedIn(t, newFakeStore())
	if m.rows.Len() != 2 {
		t.Fatalf("rows = %d, want 2", m.rows.Len())
	}
	view := m.View()
	for _, want := range []string{"proid", "P1", "Book", "2 product(s)."} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
}

func TestLogin_Failure(t *testing.T) {
	m, cmd := login(t, newFakeStore(), "admin", "' OR '1'='1")
	if cmd != nil {
		t.Fatalf("unexpected command after failed login")
	}
	if m.mode != modeLogin {
		t.Fatalf("mode = %v, want login", m.mode)
	}
	if !strings.Contains(m.status, "Invalid Username or Password") {
		t.Fatalf("status = %q", m.status)
	}
	if m.passInput.Value() != "" {
		t.Fatalf("password not cleared")
	}
}

func TestRows_FetchError(t *testing.T) {
	s := newFakeStore()
	s.listErr = errors.Join(db.ErrQuery, errors.New("no such table: product"))
	m, cmd := login(t, s, "admin", "secret")
	m, _ = run(t, m, cmd)
	if !m.failed || !strings.Contains(m.status, "no such table") {
		t.Fatalf("status = %q", m.status)
	}
}

func TestRows_Search(t *testing.T) {
	s := newFakeStore()
	m := loggedIn(t, s)

	m, _ = send(t, m, key("/"))
	if !m.editingSearch {
		t.Fatalf("search not opened")
	}
	m.searchInput.SetValue("P2")
	m, cmd := send(t, m, key("enter"))
	m, _ = run(t, m, cmd)

	if s.lastFind != "P2" || m.search != "P2" {
		t.Fatalf("find = %q, search = %q", s.lastFind, m.search)
	}
	if !reflect.DeepEqual(m.rows.Strings(), [][]string{{"P2", "Book", "50"}}) {
		t.Fatalf("rows = %v", m.rows.Strings())
	}

	m, _ = send(t, m, key("/"))
	m.searchInput.SetValue("nonexistent")
	m, cmd = send(t, m, key("enter"))
	m, _ = run(t, m, cmd)
	if m.rows.Len() != 0 || !strings.Contains(m.status, "No product") {
		t.Fatalf("rows = %d, status = %q", m.rows.Len(), m.status)
	}

	// empty search shows everything again
	m, _ = send(t, m, key("/"))
	m.searchInput.SetValue("")
	m, cmd = send(t, m, key("enter"))
	m, _ = run(t, m, cmd)
	if m.rows.Len() != 2 || m.search != "" {
		t.Fatalf("rows = %d, search = %q", m.rows.Len(), m.search)
	}
}

func TestRows_SearchShowsIDs(t *testing.T) {
	s := newFakeStore()
	m := loggedIn(t, s)

	m, _ = send(t, m, key("/"))
	ids, _ := s.IDs(context.Background())
	m, _ = send(t, m, idsResultMsg{ids: ids})
	if !reflect.DeepEqual(m.ids, []string{"P1", "P2"}) {
		t.Fatalf("ids = %v", m.ids)
	}
	if view := m.View(); !strings.Contains(view, "IDs: P1, P2") {
		t.Fatalf("view missing ids:\n%s", view)
	}
}

func TestRows_CursorBounds(t *testing.T) {
	m := loggedIn(t, newFakeStore())
	for range 5 {
		m, _ = send(t, m, key("down"))
	}
	if m.rowCursor != 1 {
		t.Fatalf("cursor = %d, want 1", m.rowCursor)
	}
	for range 5 {
		m, _ = send(t, m, key("k"))
	}
	if m.rowCursor != 0 {
		t.Fatalf("cursor = %d, want 0", m.rowCursor)
	}
}

func TestForm_EditSendsChangedFields(t *testing.T) {
	s := newFakeStore()
	m := loggedIn(t, s)

	m, _ = send(t, m, key("e"))
	if m.mode != modeForm || m.editingID != "P1" {
		t.Fatalf("mode = %v, editing = %q", m.mode, m.editingID)
	}
	if len(m.formInputs) != 2 {
		t.Fatalf("id column should not be editable, got %d inputs", len(m.formInputs))
	}
	m.formInputs[1].SetValue("12")

	m, _ = send(t, m, key("enter"))
	m, cmd := send(t, m, key("enter"))
	m, cmd = run(t, m, cmd)
	if cmd == nil {
		t.Fatalf("expected reload after save")
	}

	got := s.updated["P1"]
	if !reflect.DeepEqual(got.Columns(), []string{"price"}) || !reflect.DeepEqual(got.Values(), []any{int64(12)}) {
		t.Fatalf("update = %v %v", got.Columns(), got.Values())
	}
	if m.mode != modeRows {
		t.Fatalf("mode = %v, want rows", m.mode)
	}
}

func TestForm_EditWithoutChanges(t *testing.T) {
	s := newFakeStore()
	m := loggedIn(t, s)

	m, _ = send(t, m, key("e"))
	m, _ = send(t, m, key("tab"))
	m, cmd := send(t, m, key("enter"))
	if cmd != nil {
		t.Fatalf("unexpected command")
	}
	if m.status != "Nothing to save." || len(s.updated) != 0 {
		t.Fatalf("status = %q, updated = %v", m.status, s.updated)
	}
}

func TestForm_Add(t *testing.T) {
	s := newFakeStore()
	m := loggedIn(t, s)

	m, cmd := send(t, m, key("a"))
	m, _ = run(t, m, cmd)
	if m.mode != modeForm || len(m.formInputs) != 3 {
		t.Fatalf("mode = %v, inputs = %d", m.mode, len(m.formInputs))
	}
	m.formInputs[0].SetValue("P3")
	m.formInputs[1].SetValue("Ink")

	m, _ = send(t, m, key("enter"))
	m, _ = send(t, m, key("enter"))
	m, cmd = send(t, m, key("enter"))
	m, _ = run(t, m, cmd)

	if len(s.added) != 1 {
		t.Fatalf("added = %d", len(s.added))
	}
	if got := s.added[0]; !reflect.DeepEqual(got.Values(), []any{"P3", "Ink"}) {
		t.Fatalf("add values = %v", got.Values())
	}
	if !strings.Contains(m.status, "P3 added") {
		t.Fatalf("status = %q", m.status)
	}
}

func TestForm_BadNumber(t *testing.T) {
	s := newFakeStore()
	m := loggedIn(t, s)

	m, cmd := send(t, m, key("a"))
	m, _ = run(t, m, cmd)
	m.formInputs[0].SetValue("P3")
	m.formInputs[2].SetValue("ten")
	m.formFocus = 2

	m, cmd = send(t, m, key("enter"))
	if cmd != nil || len(s.added) != 0 {
		t.Fatalf("bad form was submitted")
	}
	if !m.failed || !strings.Contains(m.status, "price must be a whole number") {
		t.Fatalf("status = %q", m.status)
	}
}

func TestForm_UpdateMissing(t *testing.T) {
	m := loggedIn(t, newFakeStore())
	m, _ = send(t, m, saveResultMsg{id: "P9", err: product.ErrNotFound})
	if !m.failed || !strings.Contains(m.status, "no such product") {
		t.Fatalf("status = %q", m.status)
	}
}

func TestForm_EscCancels(t *testing.T) {
	m := loggedIn(t, newFakeStore())
	m, _ = send(t, m, key("e"))
	m, _ = send(t, m, key("esc"))
	if m.mode != modeRows {
		t.Fatalf("mode = %v, want rows", m.mode)
	}
}

func TestQuit(t *testing.T) {
	m := loggedIn(t, newFakeStore())
	_, cmd := send(t, m, key("q"))
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("q did not quit")
	}
}

func TestForm_NoEditableColumns(t *testing.T) {
	s := newFakeStore()
	s.rows = db.Table{
		Columns: []db.Column{{Name: "proid", Type: "TEXT"}},
		Rows:    [][]db.Cell{{db.Text("P1")}},
	}
	m := loggedIn(t, s)

	m, _ = send(t, m, key("e"))
	if m.mode != modeRows || m.status != "Nothing to edit." {
		t.Fatalf("mode = %v, status = %q", m.mode, m.status)
	}
	m, _ = send(t, m, key("x"))
	m, _ = send(t, m, key("enter"))
	if len(s.updated) != 0 {
		t.Fatalf("updated = %v", s.updated)
	}

	// a table without columns gives an empty add form
	m, _ = send(t, m, columnsResultMsg{})
	if m.mode != modeRows {
		t.Fatalf("mode = %v, want rows", m.mode)
	}
	m.mode = modeForm
	m, _ = send(t, m, key("x"))
	if m.mode != modeRows {
		t.Fatalf("mode = %v, want rows", m.mode)
	}
}
