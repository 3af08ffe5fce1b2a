package cli

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"
)

const columnGap = 2

// Table prints column-aligned rows. Rows are buffered until Flush so that
// column widths can be fitted to the terminal; cells that do not fit are
// word-wrapped. Empty tables produce no output.
type Table struct {
	out     io.Writer
	width   int
	headers []string
	prefix  string
	rows    [][]string
}

// NewTable creates a table with the given column headers, written to stdout.
func NewTable(headers ...string) *Table {
	return &Table{
		out:     os.Stdout,
		width:   TerminalWidth(),
		headers: headers,
	}
}

// WithPrefix sets a string prepended to each line (headers, divider, rows).
// Useful for indenting sub-tables within larger output.
func (t *Table) WithPrefix(prefix string) *Table {
	t.prefix = prefix
	return t
}

// WithWriter redirects the table to w with the given line width; 0 means
// unlimited.
func (t *Table) WithWriter(w io.Writer, width int) *Table {
	t.out = w
	t.width = width
	return t
}

// Row adds a row. Missing trailing cells are left blank.
func (t *Table) Row(values ...string) {
	row := make([]string, len(t.headers))
	copy(row, values)
	t.rows = append(t.rows, row)
}

// Flush writes the table. If no rows were added, nothing is printed.
func (t *Table) Flush() {
	if len(t.rows) == 0 {
		return
	}
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = visualLen(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			widths[i] = max(widths[i], visualLen(cell))
		}
	}
	if t.width > 0 {
		widths = capWidths(widths, t.headers, t.width, visualLen(t.prefix))
	}

	dividers := make([]string, len(t.headers))
	for i, h := range t.headers {
		dividers[i] = strings.Repeat("-", visualLen(h))
	}
	t.writeRow(t.headers, widths)
	t.writeRow(dividers, widths)
	for _, row := range t.rows {
		t.writeRow(row, widths)
	}
	t.rows = nil
}

func (t *Table) writeRow(row []string, widths []int) {
	cells := make([][]string, len(row))
	lines := 1
	for i, cell := range row {
		cells[i] = wrapCell(cell, widths[i])
		lines = max(lines, len(cells[i]))
	}
	for l := 0; l < lines; l++ {
		var sb strings.Builder
		sb.WriteString(t.prefix)
		for i := range cells {
			var s string
			if l < len(cells[i]) {
				s = cells[i][l]
			}
			sb.WriteString(s)
			if i < len(cells)-1 {
				sb.WriteString(strings.Repeat(" ", widths[i]-visualLen(s)+columnGap))
			}
		}
		fmt.Fprintln(t.out, strings.TrimRight(sb.String(), " "))
	}
}

// capWidths shrinks the widest columns until the row fits termWidth. No
// column goes below the width of its header, even if the row then still
// overflows.
func capWidths(widths []int, headers []string, termWidth, prefix int) []int {
	out := append([]int(nil), widths...)
	total := prefix + columnGap*(len(out)-1)
	for _, w := range out {
		total += w
	}
	for total > termWidth {
		widest := -1
		for i, w := range out {
			if w > visualLen(headers[i]) && (widest < 0 || w > out[widest]) {
				widest = i
			}
		}
		if widest < 0 {
			break
		}
		out[widest]--
		total--
	}
	return out
}

var ansiEscape = regexp.MustCompile("\x1b\\[[0-9;]*m")

// visualLen is the printed width of s, ignoring ANSI colour codes.
func visualLen(s string) int {
	return utf8.RuneCountInString(ansiEscape.ReplaceAllString(s, ""))
}

// wrapCell word-wraps s to width. Words longer than width are broken
// hard. A cell that fits is returned unchanged, colour codes included.
func wrapCell(s string, width int) []string {
	if width <= 0 || visualLen(s) <= width {
		return []string{s}
	}
	var lines []string
	var cur string
	for _, word := range strings.Fields(ansiEscape.ReplaceAllString(s, "")) {
		switch {
		case cur == "":
			cur = word
		case utf8.RuneCountInString(cur)+1+utf8.RuneCountInString(word) <= width:
			cur += " " + word
			continue
		default:
			lines = append(lines, cur)
			cur = word
		}
		for utf8.RuneCountInString(cur) > width {
			r := []rune(cur)
			lines = append(lines, string(r[:width]))
			cur = string(r[width:])
		}
	}
	if cur != "" {
		lines = append(lines, cur)
	}
	return lines
}
