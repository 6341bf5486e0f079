// Package formatter renders archive data as markdown for terminals and files.
package formatter

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

const minColumnWidth = 3

// FormatTables realigns every markdown table in content so that columns line
// up by display width, which keeps CJK text aligned in a terminal.
func FormatTables(content string) string {
	lines := strings.Split(content, "\n")

	var formatted, table []string

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "|") && strings.HasSuffix(trimmed, "|") {
			table = append(table, line)
			continue
		}

		if len(table) > 0 {
			formatted = append(formatted, alignTable(table)...)
			table = nil
		}

		formatted = append(formatted, line)
	}

	if len(table) > 0 {
		formatted = append(formatted, alignTable(table)...)
	}

	return strings.Join(formatted, "\n")
}

// Table builds an aligned markdown table.
func Table(header []string, rows [][]string) string {
	cells := make([][]string, 0, len(rows)+2)
	cells = append(cells, escapeRow(header))
	cells = append(cells, make([]string, len(header)))

	for _, r := range rows {
		cells = append(cells, escapeRow(r))
	}

	return strings.Join(renderTable(cells, 1), "\n")
}

func escapeRow(row []string) []string {
	out := make([]string, len(row))
	for i, c := range row {
		c = strings.ReplaceAll(c, "\n", " ")
		out[i] = strings.ReplaceAll(strings.TrimSpace(c), "|", `\|`)
	}

	return out
}

func alignTable(rows []string) []string {
	// A table needs at least a header and a separator.
	if len(rows) < 2 {
		return rows
	}

	cells := make([][]string, 0, len(rows))
	for _, row := range rows {
		cells = append(cells, splitRow(row))
	}

	sep := -1
	if isSeparator(cells[1]) {
		sep = 1
	}

	return renderTable(cells, sep)
}

func splitRow(row string) []string {
	parts := strings.Split(strings.TrimSpace(row), "|")

	if len(parts) > 0 && strings.TrimSpace(parts[0]) == "" {
		parts = parts[1:]
	}

	if len(parts) > 0 && strings.TrimSpace(parts[len(parts)-1]) == "" {
		parts = parts[:len(parts)-1]
	}

	cells := make([]string, 0, len(parts))
	for _, p := range parts {
		cells = append(cells, strings.TrimSpace(p))
	}

	return cells
}

func isSeparator(cells []string) bool {
	for _, c := range cells {
		if strings.Trim(c, "-: ") != "" {
			return false
		}
	}

	return true
}

// renderTable pads every cell to its column's display width. The row at
// index sep, if any, is redrawn as dashes.
func renderTable(cells [][]string, sep int) []string {
	cols := 0
	for _, row := range cells {
		cols = max(cols, len(row))
	}

	widths := make([]int, cols)
	for i := range widths {
		widths[i] = minColumnWidth
	}

	for r, row := range cells {
		if r == sep {
			continue
		}

		for i, c := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(c))
		}
	}

	out := make([]string, 0, len(cells))

	for r, row := range cells {
		var sb strings.Builder

		sb.WriteString("|")

		for j := range cols {
			sb.WriteString(" ")

			if r == sep {
				sb.WriteString(strings.Repeat("-", widths[j]))
			} else {
				content := ""
				if j < len(row) {
					content = row[j]
				}

				sb.WriteString(runewidth.FillRight(content, widths[j]))
			}

			sb.WriteString(" |")
		}

		out = append(out, sb.String())
	}

	return out
}
