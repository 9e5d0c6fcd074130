package report

import (
	"context"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/roach88/incimine/internal/store"
)

const bannerRule = "================================================================================"

// StatsSource is the read side of the incident store that statistics need.
type StatsSource interface {
	CountIncidents(ctx context.Context) (int64, error)
	ValueCounts(ctx context.Context, column string) ([]store.ValueCount, error)
}

// StatsColumn is one attribute broken down in the dataset statistics.
type StatsColumn struct {
	Column string
	Label  string
}

// DefaultStatsColumns are the breakdowns printed before an analysis.
var DefaultStatsColumns = []StatsColumn{
	{Column: "severity", Label: "Severity"},
	{Column: "category", Label: "Category"},
	{Column: "status", Label: "Status"},
	{Column: "websiteType", Label: "Website Type"},
}

// ColumnStats holds the value counts of one column.
type ColumnStats struct {
	Column string             `json:"column"`
	Label  string             `json:"label"`
	Counts []store.ValueCount `json:"counts"`
}

// Stats summarizes the incident dataset.
type Stats struct {
	Total   int64         `json:"total"`
	Columns []ColumnStats `json:"columns"`
}

// CollectStats reads the total and per-column counts from src.
func CollectStats(ctx context.Context, src StatsSource, columns []StatsColumn) (*Stats, error) {
	total, err := src.CountIncidents(ctx)
	if err != nil {
		return nil, fmt.Errorf("collect stats: %w", err)
	}

	stats := &Stats{Total: total, Columns: make([]ColumnStats, 0, len(columns))}
	for _, col := range columns {
		counts, err := src.ValueCounts(ctx, col.Column)
		if err != nil {
			return nil, fmt.Errorf("collect stats: %w", err)
		}
		stats.Columns = append(stats.Columns, ColumnStats{
			Column: col.Column,
			Label:  col.Label,
			Counts: counts,
		})
	}
	return stats, nil
}

// NewPrinter returns the printer used for grouped numbers in reports.
func NewPrinter() *message.Printer {
	return message.NewPrinter(language.English)
}

// WriteStats prints the dataset statistics block. Columns with no values
// are omitted.
func WriteStats(w io.Writer, stats *Stats, p *message.Printer) error {
	var b strings.Builder
	banner(&b, "DATASET STATISTICS")

	b.WriteString(p.Sprintf("Total Incidents: %d\n\n", stats.Total))

	for _, col := range stats.Columns {
		if len(col.Counts) == 0 {
			continue
		}
		fmt.Fprintf(&b, "Incidents by %s:\n", col.Label)

		width := 0
		for _, vc := range col.Counts {
			width = max(width, len(vc.Value))
		}
		for _, vc := range col.Counts {
			fmt.Fprintf(&b, "  %s%s  %s\n",
				vc.Value, strings.Repeat(" ", width-len(vc.Value)), p.Sprintf("%d", vc.Count))
		}
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func banner(b *strings.Builder, title string) {
	b.WriteString(bannerRule)
	b.WriteString("\n")
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(bannerRule)
	b.WriteString("\n\n")
}
