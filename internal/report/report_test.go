package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finance/internal/core"
)

func sample() []core.Transaction {
	return []core.Transaction{
		{ID: "1", Description: "Salary", Amount: core.NewAmount(3000), Category: "Salary", Date: "2025-10-01"},
		{ID: "2", Description: "Fuel", Amount: core.NewAmount(-80), Category: "Transport", Date: "2025-10-20"},
		{ID: "3", Description: "Supermarket", Amount: core.NewAmount(-150.5), Category: "Groceries", Date: "2025-10-15"},
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("markdown")
	require.NoError(t, err)
	assert.Equal(t, FormatMarkdown, f)

	_, err = ParseFormat("html")
	assert.Error(t, err)
}

func TestWriteTransactions(t *testing.T) {
	var buf bytes.Buffer
	WriteTransactions(&buf, FormatText, sample())

	out := buf.String()
	assert.Contains(t, out, "Supermarket")
	assert.Contains(t, out, "-150.50")
	assert.Contains(t, out, "3000.00")
	assert.Less(t, strings.Index(out, "Salary"), strings.Index(out, "Fuel"), "insertion order")
}

func TestWriteSummaryMarkdown(t *testing.T) {
	var buf bytes.Buffer
	WriteSummary(&buf, FormatMarkdown, core.Summarize(sample()))

	out := buf.String()
	assert.Contains(t, out, "| Revenues")
	assert.Contains(t, out, "2769.50")
	assert.Less(t, strings.Index(out, "Groceries"), strings.Index(out, "Transport"), "largest category first")
	assert.NotContains(t, out, "+-", "markdown tables have no box corners")
}

func TestWriteSummaryWithoutExpenses(t *testing.T) {
	var buf bytes.Buffer
	WriteSummary(&buf, FormatText, core.Summarize(nil))

	assert.Contains(t, buf.String(), "0.00")
	assert.NotContains(t, buf.String(), "SPENT")
}
