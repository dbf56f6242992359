package display

import (
	"fmt"
	"strings"
)

// Table renders an aligned text table. Each row can carry a State that
// decides its styling.
type Table struct {
	headers []string
	rows    [][]string
	states  map[int]State
}

// NewTable creates a new table with the given column headers.
func NewTable(headers ...string) *Table {
	return &Table{
		headers: headers,
		states:  make(map[int]State),
	}
}

// AddRow appends a row and returns its index.
func (t *Table) AddRow(values ...string) int {
	t.rows = append(t.rows, values)
	return len(t.rows) - 1
}

// SetRowState styles row idx for state s.
func (t *Table) SetRowState(idx int, s State) {
	t.states[idx] = s
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Render produces the formatted table with a two-space indent.
func (t *Table) Render() string {
	if len(t.headers) == 0 {
		return ""
	}

	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = len(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var sb strings.Builder

	sb.WriteString("  " + Bold(formatRow(t.headers, widths)) + "\n")

	sep := make([]string, len(widths))
	for i, w := range widths {
		sep[i] = strings.Repeat("─", w)
	}
	sb.WriteString(Dim("  "+strings.Join(sep, "  ")) + "\n")

	for i, row := range t.rows {
		sb.WriteString("  " + Styled(t.states[i], formatRow(row, widths)) + "\n")
	}

	return sb.String()
}

// formatRow pads cells to the column widths. Trailing spaces are trimmed so
// an empty last column leaves no padding behind.
func formatRow(cells []string, widths []int) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		parts[i] = fmt.Sprintf("%-*s", w, cell)
	}
	return strings.TrimRight(strings.Join(parts, "  "), " ")
}
