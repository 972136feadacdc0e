// Package charts renders summary data as PNG images.
package charts

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/wcharczuk/go-chart/v2"

	"finance/internal/core"
)

const (
	pieWidth  = 800
	pieHeight = 800
)

// CategorySlice is one category's share of total expenses.
type CategorySlice struct {
	Category string
	Amount   float64
	Percent  float64
}

// CategorySlices orders the expense categories by amount, largest first,
// breaking ties by name.
func CategorySlices(s core.Summary) []CategorySlice {
	total := s.Expenses.Float64()
	if total <= 0 {
		return nil
	}
	out := make([]CategorySlice, 0, len(s.Categories))
	for name, amount := range s.Categories {
		v := amount.Float64()
		out = append(out, CategorySlice{Category: name, Amount: v, Percent: v / total * 100})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount != out[j].Amount {
			return out[i].Amount > out[j].Amount
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// CategoryPie draws the per-category expense breakdown. It returns nil when
// there are no expenses to draw.
func CategoryPie(s core.Summary) ([]byte, error) {
	slices := CategorySlices(s)
	if len(slices) == 0 {
		return nil, nil
	}

	values := make([]chart.Value, 0, len(slices))
	for _, sl := range slices {
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s: %.2f (%.1f%%)", sl.Category, sl.Amount, sl.Percent),
			Value: sl.Amount,
			Style: chart.Style{
				FontSize:  12,
				FontColor: chart.ColorBlack,
			},
		})
	}

	pie := chart.PieChart{
		Title:  "Expenses by category",
		Width:  pieWidth,
		Height: pieHeight,
		Values: values,
		Background: chart.Style{
			Padding: chart.Box{
				Top:    50,
				Left:   50,
				Right:  50,
				Bottom: 50,
			},
			FillColor: chart.ColorWhite,
		},
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := pie.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("failed to render category pie chart: %w", err)
	}
	return buffer.Bytes(), nil
}
