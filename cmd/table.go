package cmd

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type tableColumn struct {
	Name        string
	Style       lipgloss.Style
	HeaderStyle lipgloss.Style
}

type tableRow struct {
	Cells []string
	Style lipgloss.Style
}

type table struct {
	columns []tableColumn
	rows    []*tableRow
}

func (t *table) addColumn(name string, width int) *table {
	t.columns = append(t.columns, tableColumn{
		Name:        name,
		Style:       lipgloss.NewStyle().Width(width).PaddingRight(1),
		HeaderStyle: lipgloss.NewStyle().Width(width).Bold(true).Underline(true).PaddingRight(1),
	})
	return t
}

// addRow adds a row. Missing cells are rendered empty
func (t *table) addRow(cells ...string) *tableRow {
	row := &tableRow{Cells: cells, Style: lipgloss.NewStyle()}
	t.rows = append(t.rows, row)
	return row
}

func (t *table) render() string {
	var b strings.Builder

	headers := make([]string, len(t.columns))
	for i, column := range t.columns {
		headers[i] = column.HeaderStyle.Render(column.Name)
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, headers...))
	b.WriteString("\n")

	for _, row := range t.rows {
		cells := make([]string, len(t.columns))
		for i, column := range t.columns {
			cell := ""
			if i < len(row.Cells) {
				cell = row.Cells[i]
			}
			cells[i] = column.Style.Render(cell)
		}
		b.WriteString(row.Style.Render(lipgloss.JoinHorizontal(lipgloss.Top, cells...)))
		b.WriteString("\n")
	}
	return b.String()
}
