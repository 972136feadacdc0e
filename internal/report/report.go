// Package report renders transactions and their summary as terminal tables.
package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/olekukonko/tablewriter"

	"finance/internal/core"
)

// Format selects the table style.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
)

// ParseFormat accepts text or markdown.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatText, FormatMarkdown:
		return Format(s), nil
	}
	return "", fmt.Errorf("unknown report format %q: must be text or markdown", s)
}

func newTable(w io.Writer, format Format, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	if format == FormatMarkdown {
		table.SetAutoFormatHeaders(false)
		table.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
		table.SetCenterSeparator("|")
	}
	return table
}

// WriteTransactions prints one row per transaction in insertion order.
func WriteTransactions(w io.Writer, format Format, items []core.Transaction) {
	table := newTable(w, format, []string{"ID", "Date", "Description", "Category", "Amount"})
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT,
	})
	for _, t := range items {
		table.Append([]string{t.ID, t.Date, t.Description, t.Category, t.Amount.StringFixed(2)})
	}
	table.Render()
}

// WriteSummary prints the totals followed by expenses per category, largest
// first.
func WriteSummary(w io.Writer, format Format, s core.Summary) {
	totals := newTable(w, format, []string{"Revenues", "Expenses", "Balance"})
	totals.Append([]string{s.Revenues.StringFixed(2), s.Expenses.StringFixed(2), s.Balance.StringFixed(2)})
	totals.Render()

	if len(s.Categories) == 0 {
		return
	}
	fmt.Fprintln(w)

	names := make([]string, 0, len(s.Categories))
	for name := range s.Categories {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := s.Categories[names[i]], s.Categories[names[j]]
		if !a.Equal(b.Decimal) {
			return a.GreaterThan(b.Decimal)
		}
		return names[i] < names[j]
	})

	categories := newTable(w, format, []string{"Category", "Spent"})
	categories.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})
	for _, name := range names {
		categories.Append([]string{name, s.Categories[name].StringFixed(2)})
	}
	categories.Render()
}
