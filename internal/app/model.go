package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hrutik5321/pms/internal/auth"
	"github.com/hrutik5321/pms/internal/db"
	"github.com/hrutik5321/pms/internal/product"
	"github.com/hrutik5321/pms/internal/ui/table"
)

// ----- Modes -----

type mode int

const (
	modeLogin mode = iota
	modeRows
	modeForm
)

// ----- Styles -----

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// ----- Messages from async DB commands -----

type loginResultMsg struct {
	err error
}

type rowsResultMsg struct {
	table db.Table
	// search is the product id the rows were filtered by, empty for all rows.
	search string
	err    error
}

type idsResultMsg struct {
	ids []string
	err error
}

type columnsResultMsg struct {
	columns []db.Column
	err     error
}

type saveResultMsg struct {
	id  string
	add bool
	err error
}

// ----- Model -----

type Model struct {
	store Store

	// login form
	userInput  textinput.Model
	passInput  textinput.Model
	focusIndex int

	// state
	mode    mode
	status  string
	failed  bool
	loading bool

	rows      db.Table
	rowCursor int

	// search by product id
	search        string
	searchInput   textinput.Model
	editingSearch bool
	ids           []string

	// add / edit form
	formColumns []db.Column
	formInputs  []textinput.Model
	formOrig    []string
	formFocus   int
	editingID   string // empty when adding

	// terminal / scroll
	width       int
	horizOffset int
}

// ----- Initial model -----

func initialModel(s Store) Model {
	user := textinput.New()
	user.Placeholder = "admin"
	user.Prompt = "Username: "

	pass := textinput.New()
	pass.Placeholder = "password"
	pass.Prompt = "Password: "
	pass.EchoMode = textinput.EchoPassword
	pass.EchoCharacter = '•'

	search := textinput.New()
	search.Placeholder = "P100"
	search.Prompt = product.IDColumn + " = "
	search.ShowSuggestions = true

	m := Model{
		store:       s,
		userInput:   user,
		passInput:   pass,
		searchInput: search,
		mode:        modeLogin,
		status:      "Enter your credentials and press Enter to log in.",
	}

	m.userInput.Focus()
	return m
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// ----- Commands (async DB operations) -----

func loginCmd(s Store, username, password string) tea.Cmd {
	return func() tea.Msg {
		err := s.Authenticate(context.Background(), username, password)
		return loginResultMsg{err: err}
	}
}

func listCmd(s Store) tea.Cmd {
	return func() tea.Msg {
		t, err := s.List(context.Background())
		return rowsResultMsg{table: t, err: err}
	}
}

func findCmd(s Store, id string) tea.Cmd {
	return func() tea.Msg {
		t, err := s.Find(context.Background(), id)
		return rowsResultMsg{table: t, search: id, err: err}
	}
}

func idsCmd(s Store) tea.Cmd {
	return func() tea.Msg {
		ids, err := s.IDs(context.Background())
		return idsResultMsg{ids: ids, err: err}
	}
}

func columnsCmd(s Store) tea.Cmd {
	return func() tea.Msg {
		cols, err := s.Columns(context.Background())
		return columnsResultMsg{columns: cols, err: err}
	}
}

func addCmd(s Store, values db.Criteria) tea.Cmd {
	return func() tea.Msg {
		err := s.Add(context.Background(), values)
		return saveResultMsg{id: fmt.Sprint(idValue(values)), add: true, err: err}
	}
}

func updateCmd(s Store, id string, values db.Criteria) tea.Cmd {
	return func() tea.Msg {
		err := s.Update(context.Background(), id, values)
		return saveResultMsg{id: id, err: err}
	}
}

func (m Model) reload() tea.Cmd {
	if m.search != "" {
		return findCmd(m.store, m.search)
	}
	return listCmd(m.store)
}

func (m *Model) setError(prefix string, err error) {
	m.failed = true
	m.status = prefix + ": " + describe(err)
}

func (m *Model) setStatus(s string) {
	m.failed = false
	m.status = s
}

// describe turns core errors into operator-facing text.
func describe(err error) string {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Invalid Username or Password"
	case errors.Is(err, db.ErrTimeout):
		return "the database did not answer in time"
	case errors.Is(err, db.ErrConnection):
		return "cannot reach the database (" + err.Error() + ")"
	case errors.Is(err, product.ErrNotFound):
		return "no such product"
	default:
		return err.Error()
	}
}

// ----- Update -----

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case loginResultMsg:
		m.loading = false
		if msg.err != nil {
			m.setError("Login failed", msg.err)
			m.passInput.SetValue("")
			return m, nil
		}
		m.setStatus("Logged in. Fetching products...")
		m.mode = modeRows
		m.loading = true
		return m, listCmd(m.store)

	case rowsResultMsg:
		m.loading = false
		if msg.err != nil {
			m.setError("Failed to fetch products", msg.err)
			return m, nil
		}
		m.rows = msg.table
		m.search = msg.search
		if m.rowCursor >= m.rows.Len() {
			m.rowCursor = max(m.rows.Len()-1, 0)
		}
		switch {
		case msg.search != "" && m.rows.Len() == 0:
			m.setStatus(fmt.Sprintf("No product with %s = %q.", product.IDColumn, msg.search))
		default:
			m.setStatus(fmt.Sprintf("%d product(s).", m.rows.Len()))
		}
		m.mode = modeRows
		return m, nil

	case idsResultMsg:
		if msg.err != nil {
			m.setError("Failed to fetch product ids", msg.err)
			return m, nil
		}
		m.ids = msg.ids
		m.searchInput.SetSuggestions(msg.ids)
		return m, nil

	case columnsResultMsg:
		m.loading = false
		if msg.err != nil {
			m.setError("Failed to read product columns", msg.err)
			return m, nil
		}
		m.openForm(msg.columns, nil, "")
		return m, m.focusForm()

	case saveResultMsg:
		m.loading = false
		if msg.err != nil {
			m.setError("Save failed", msg.err)
			return m, nil
		}
		if msg.add {
			m.setStatus(fmt.Sprintf("Product %s added. Reloading...", msg.id))
		} else {
			m.setStatus(fmt.Sprintf("Product %s updated. Reloading...", msg.id))
		}
		m.mode = modeRows
		m.loading = true
		return m, m.reload()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

// ----- Key handling dispatcher -----

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeLogin:
		return m.updateLoginKey(msg)
	case modeRows:
		return m.updateRowsKey(msg)
	case modeForm:
		return m.updateFormKey(msg)
	default:
		return m, nil
	}
}

// --- login mode ---

func (m Model) updateLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit
	case "ctrl+r":
		m.userInput.SetValue("")
		m.passInput.SetValue("")
		m.focusIndex = 0
		m.setStatus("Form cleared.")
		return m, tea.Batch(m.updateLoginFocus()...)
	case "tab", "down":
		m.focusIndex = 1
	case "shift+tab", "up":
		m.focusIndex = 0
	case "enter":
		if m.focusIndex == 1 {
			if m.loading {
				return m, nil
			}
			m.loading = true
			m.setStatus("Checking credentials...")
			return m, loginCmd(m.store, m.userInput.Value(), m.passInput.Value())
		}
		m.focusIndex = 1
	}

	cmds := m.updateLoginFocus()
	var cmd tea.Cmd
	if m.focusIndex == 0 {
		m.userInput, cmd = m.userInput.Update(msg)
	} else {
		m.passInput, cmd = m.passInput.Update(msg)
	}
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m *Model) updateLoginFocus() []tea.Cmd {
	m.userInput.Blur()
	m.passInput.Blur()
	if m.focusIndex == 0 {
		return []tea.Cmd{m.userInput.Focus()}
	}
	return []tea.Cmd{m.passInput.Focus()}
}

// --- rows mode ---

func (m Model) updateRowsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// editing search box
	if m.editingSearch {
		switch msg.String() {
		case "esc", "ctrl+c":
			m.editingSearch = false
			m.searchInput.Blur()
			m.setStatus("Search cancelled.")
			return m, nil
		case "enter":
			m.editingSearch = false
			m.searchInput.Blur()
			m.loading = true
			id := strings.TrimSpace(m.searchInput.Value())
			if id == "" {
				m.search = ""
				m.setStatus("Fetching products...")
				return m, listCmd(m.store)
			}
			m.setStatus("Searching...")
			m.rowCursor = 0
			return m, findCmd(m.store, id)
		}

		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(msg)
		return m, cmd
	}

	if m.loading {
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m, nil
	}

	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "up", "k":
		if m.rowCursor > 0 {
			m.rowCursor--
		}
	case "down", "j":
		if m.rowCursor < m.rows.Len()-1 {
			m.rowCursor++
		}

	case "/":
		m.editingSearch = true
		m.searchInput.SetValue(m.search)
		m.setStatus("Enter a product id. Tab completes, Enter searches, empty shows all, Esc cancels.")
		return m, tea.Batch(m.searchInput.Focus(), idsCmd(m.store))

	// show all products again
	case "r":
		m.search = ""
		m.loading = true
		m.setStatus("Fetching products...")
		return m, listCmd(m.store)

	case "a":
		m.loading = true
		m.setStatus("Preparing new product form...")
		return m, columnsCmd(m.store)

	case "e", "enter":
		if m.rows.Len() == 0 {
			return m, nil
		}
		idIdx := m.rows.Index(product.IDColumn)
		if idIdx < 0 {
			m.setError("Cannot edit", fmt.Errorf("table has no %s column", product.IDColumn))
			return m, nil
		}
		row := m.rows.Rows[m.rowCursor]
		values := make([]string, len(row))
		for i, c := range row {
			if !c.IsNull() {
				values[i] = table.FormatCell(c)
			}
		}
		m.openForm(m.rows.Columns, values, row[idIdx].String())
		return m, m.focusForm()

	// horizontal scroll
	case "left", "h":
		m.horizOffset -= 4
		if m.horizOffset < 0 {
			m.horizOffset = 0
		}
	case "right", "l":
		m.horizOffset += 4
	case "shift+left":
		m.horizOffset -= 16
		if m.horizOffset < 0 {
			m.horizOffset = 0
		}
	case "shift+right":
		m.horizOffset += 16
	}

	return m, nil
}

// --- form mode ---

func (m Model) updateFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.loading {
		return m, nil
	}
	if len(m.formInputs) == 0 {
		m.mode = modeRows
		return m, nil
	}
	last := len(m.formInputs) - 1

	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.mode = modeRows
		m.setStatus("Cancelled.")
		return m, nil
	case "tab", "down":
		if m.formFocus < last {
			m.formFocus++
		}
		return m, m.focusForm()
	case "shift+tab", "up":
		if m.formFocus > 0 {
			m.formFocus--
		}
		return m, m.focusForm()
	case "enter":
		if m.formFocus < last {
			m.formFocus++
			return m, m.focusForm()
		}
		return m.submitForm()
	}

	var cmd tea.Cmd
	m.formInputs[m.formFocus], cmd = m.formInputs[m.formFocus].Update(msg)
	return m, cmd
}

func (m *Model) openForm(cols []db.Column, values []string, id string) {
	m.mode = modeForm
	m.editingID = id
	m.formColumns = nil
	m.formInputs = nil
	m.formOrig = nil
	m.formFocus = 0

	for i, col := range cols {
		// the id is the update key, not an editable field
		if id != "" && strings.EqualFold(col.Name, product.IDColumn) {
			continue
		}
		in := textinput.New()
		in.Prompt = fmt.Sprintf("%s: ", col.Name)
		if col.Type != "" {
			in.Placeholder = strings.ToLower(col.Type)
		}
		orig := ""
		if values != nil {
			orig = values[i]
			in.SetValue(orig)
		}
		m.formColumns = append(m.formColumns, col)
		m.formInputs = append(m.formInputs, in)
		m.formOrig = append(m.formOrig, orig)
	}

	if len(m.formInputs) == 0 {
		m.mode = modeRows
		m.setStatus("Nothing to edit.")
		return
	}
	if id == "" {
		m.setStatus("New product. Enter on the last field saves, Esc cancels.")
	} else {
		m.setStatus(fmt.Sprintf("Editing %s. Enter on the last field saves, Esc cancels.", id))
	}
}

func (m *Model) focusForm() tea.Cmd {
	var cmd tea.Cmd
	for i := range m.formInputs {
		if i == m.formFocus {
			cmd = m.formInputs[i].Focus()
		} else {
			m.formInputs[i].Blur()
		}
	}
	return cmd
}

func (m Model) submitForm() (tea.Model, tea.Cmd) {
	values, err := formValues(m.formColumns, m.formInputs, m.formOrig, m.editingID != "")
	if err != nil {
		m.setError("Check the form", err)
		return m, nil
	}
	if values.Len() == 0 {
		m.setStatus("Nothing to save.")
		return m, nil
	}

	m.loading = true
	m.setStatus("Saving...")
	if m.editingID == "" {
		return m, addCmd(m.store, values)
	}
	return m, updateCmd(m.store, m.editingID, values)
}

// ----- Views -----

func (m Model) View() string {
	switch m.mode {
	case modeLogin:
		return m.viewLogin()
	case modeRows:
		return m.viewRows()
	case modeForm:
		return m.viewForm()
	default:
		return "Unknown state"
	}
}

func (m Model) viewStatus() string {
	if m.failed {
		return errorStyle.Render(m.status)
	}
	return statusStyle.Render(m.status)
}

func (m Model) viewLogin() string {
	loading := ""
	if m.loading {
		loading = "\n\n[Working...]"
	}

	return fmt.Sprintf(
		"%s\n\n%s\n%s\n\n%s%s\n\n(Enter to submit, ctrl+r to reset, ctrl+c/esc to quit)\n",
		titleStyle.Render("Product Management System: Login"),
		m.userInput.View(),
		m.passInput.View(),
		m.viewStatus(),
		loading,
	)
}

func (m Model) viewRows() string {
	s := titleStyle.Render("Products") + "\n\n"

	if m.search != "" {
		s += fmt.Sprintf("Search: %s = %s\n\n", product.IDColumn, m.search)
	}

	if m.rows.Width() == 0 {
		s += "(No rows or columns found)\n"
	} else {
		s += table.RenderTable(m.rows, m.rowCursor)
	}

	if m.editingSearch {
		input := m.searchInput.View()
		label := "Search by Product ID"

		top := "┌" + strings.Repeat("─", len(input)+2) + "┐"
		middle := "│ " + input + " "
		bottom := "└" + strings.Repeat("─", len(input)+2) + "┘"

		s += "\n" + label + "\n" + top + "\n" + middle + "\n" + bottom + "\n"
		if len(m.ids) > 0 {
			s += statusStyle.Render("IDs: "+strings.Join(m.ids, ", ")) + "\n"
		}
	}

	if m.loading {
		s += "\nLoading...\n"
	}

	s += "\n" + m.viewStatus() + "\n"
	s += "\n↑/↓ select, e/Enter edit, a add, '/' search by id, r show all, ←/→ or h/l scroll, q quit.\n"

	// apply horizontal scroll based on terminal width and offset
	return table.ApplyHorizontalScroll(s, m.horizOffset, m.width)
}

func (m Model) viewForm() string {
	title := "Add Product"
	if m.editingID != "" {
		title = fmt.Sprintf("Update Product %s", m.editingID)
	}
	s := titleStyle.Render(title) + "\n\n"
	for _, in := range m.formInputs {
		s += in.View() + "\n"
	}
	if m.loading {
		s += "\n[Working...]\n"
	}
	s += "\n" + m.viewStatus() + "\n"
	s += "\nTab/↑/↓ move, Enter on the last field saves, Esc back.\n"
	return s
}
