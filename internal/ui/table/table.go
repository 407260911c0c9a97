package table

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/hrutik5321/pms/internal/db"
)

// Render draws an ASCII table from columns + rows.
func Render(columns []string, rows [][]string) string {
	return render(columns, rows, -1)
}

// RenderTable draws t with a marker in front of the selected row.
// A negative selected draws no marker column.
func RenderTable(t db.Table, selected int) string {
	return render(t.Names(), Strings(t), selected)
}

func render(columns []string, rows [][]string, selected int) string {
	if len(columns) == 0 {
		return "(No columns)\n"
	}

	// Calculate width of each column
	widths := make([]int, len(columns))
	for i, col := range columns {
		widths[i] = utf8.RuneCountInString(col)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i >= len(widths) {
				continue
			}
			l := utf8.RuneCountInString(cell)
			if l > widths[i] {
				widths[i] = l
			}
		}
	}

	marker := func(row int) string {
		switch {
		case selected < 0:
			return ""
		case row == selected:
			return "> "
		default:
			return "  "
		}
	}

	// Helper to draw a border line
	makeBorder := func() string {
		var b strings.Builder
		b.WriteString(marker(-1))
		b.WriteString("+")
		for _, w := range widths {
			b.WriteString(strings.Repeat("-", w+2))
			b.WriteString("+")
		}
		b.WriteString("\n")
		return b.String()
	}

	var sb strings.Builder

	// Top border
	sb.WriteString(makeBorder())

	// Header
	sb.WriteString(marker(-1))
	sb.WriteString("|")
	for i, col := range columns {
		sb.WriteString(" ")
		sb.WriteString(fmt.Sprintf("%-*s", widths[i], col))
		sb.WriteString(" |")
	}
	sb.WriteString("\n")

	// Separator
	sb.WriteString(makeBorder())

	// Rows
	for r, row := range rows {
		sb.WriteString(marker(r))
		sb.WriteString("|")
		for i := range columns {
			var cell string
			if i < len(row) {
				cell = row[i]
			}
			sb.WriteString(" ")
			sb.WriteString(fmt.Sprintf("%-*s", widths[i], cell))
			sb.WriteString(" |")
		}
		sb.WriteString("\n")
	}

	// Bottom border
	sb.WriteString(makeBorder())

	return sb.String()
}

// ApplyHorizontalScroll clips text horizontally based on offset and width.
func ApplyHorizontalScroll(s string, offset, width int) string {
	if width <= 0 {
		return s
	}
	if offset < 0 {
		offset = 0
	}

	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		runes := []rune(line)

		if offset >= len(runes) {
			out = append(out, "")
			continue
		}

		end := offset + width
		if end > len(runes) {
			end = len(runes)
		}

		out = append(out, string(runes[offset:end]))
	}

	return strings.Join(out, "\n")
}
