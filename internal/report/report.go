// Package report renders stored audit records for review outside the TUI.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"

	"github.com/kingrea/riskaudit/internal/records"
)

// Format selects an output encoding.
type Format string

const (
	FormatTable Format = "table"
	FormatYAML  Format = "yaml"
	FormatCSV   Format = "csv"
)

// Formats lists the supported formats for flag help.
var Formats = []Format{FormatTable, FormatYAML, FormatCSV}

// Headers are the column titles, in storage order.
var Headers = []string{"ID", "Auditor", "Position", "Stage", "Requirements", "Performed work", "Problems", "Results"}

// ParseFormat validates a user-supplied format name.
func ParseFormat(value string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(value)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("report: unsupported format %q", value)
}

// Row flattens a record into its column values.
func Row(rec records.Record) []string {
	return []string{
		strconv.FormatInt(rec.ID, 10),
		rec.AuditorName,
		rec.AuditorPosition,
		rec.Stage,
		rec.Requirements,
		rec.PerformedWork,
		rec.Problems,
		rec.Results,
	}
}

// Write renders recs to w in the requested format.
func Write(w io.Writer, format Format, recs []records.Record) error {
	switch format {
	case FormatTable:
		_, err := fmt.Fprintln(w, Table(recs))
		return err
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if recs == nil {
			recs = []records.Record{}
		}
		if err := enc.Encode(recs); err != nil {
			return fmt.Errorf("report: encode yaml: %w", err)
		}
		return enc.Close()
	case FormatCSV:
		cw := csv.NewWriter(w)
		if err := cw.Write(Headers); err != nil {
			return err
		}
		for _, rec := range recs {
			if err := cw.Write(Row(rec)); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	default:
		return fmt.Errorf("report: unsupported format %q", format)
	}
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#444444"))
)

// Table renders recs as a bordered table.
func Table(recs []records.Record) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(Headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	for _, rec := range recs {
		t.Row(Row(rec)...)
	}
	return t.String()
}
