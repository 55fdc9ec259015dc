package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/riskaudit/internal/records"
	"github.com/kingrea/riskaudit/internal/report"
)

var (
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)
	titleStyle        = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	labelStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#CCCCCC"))
	focusedLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")).Bold(true)
	detailTextStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#A0AEC0"))
	mutedStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	hintStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
)

// recordColumnWidths follows report.Headers; notes get the most room.
var recordColumnWidths = []int{4, 16, 16, 20, 12, 30, 30, 12}

func newRecordsTable() table.Model {
	columns := make([]table.Column, len(report.Headers))
	for i, title := range report.Headers {
		columns[i] = table.Column{Title: title, Width: recordColumnWidths[i]}
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color("#5B8DEF"))
	t.SetStyles(styles)
	return t
}

// recordRows flattens records for the table. Cells are single-line, so
// newlines inside notes are shown as "⏎".
func recordRows(recs []records.Record) []table.Row {
	rows := make([]table.Row, 0, len(recs))
	for _, rec := range recs {
		cells := report.Row(rec)
		for i, cell := range cells {
			cells[i] = strings.ReplaceAll(cell, "\n", " ⏎ ")
		}
		rows = append(rows, table.Row(cells))
	}
	return rows
}

func (a *App) renderRecords() string {
	title := titleStyle.Render(fmt.Sprintf("Stored records (%d)", a.recordCount))
	if a.recordCount == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, title, "", mutedStyle.Render("No records yet. Save notes from a stage to add one."))
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, "", a.records.View())
}
