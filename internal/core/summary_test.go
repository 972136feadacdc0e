package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	s := Summarize([]Transaction{
		{Amount: NewAmount(100), Category: "Salary"},
		{Amount: NewAmount(-30), Category: "Food"},
		{Amount: NewAmount(-20), Category: "Food"},
		{Amount: NewAmount(-10), Category: "Gas"},
	})

	assert.Equal(t, "100", s.Revenues.String())
	assert.Equal(t, "60", s.Expenses.String())
	assert.Equal(t, "40", s.Balance.String())
	require.Len(t, s.Categories, 2)
	assert.Equal(t, "50", s.Categories["Food"].String())
	assert.Equal(t, "10", s.Categories["Gas"].String())
	_, hasSalary := s.Categories["Salary"]
	assert.False(t, hasSalary, "revenue categories must not appear")
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)

	out, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"revenues":0,"expenses":0,"balance":0,"categories":{}}`, string(out))
}

func TestSummarizeZeroAmountCountsAsNeither(t *testing.T) {
	s := Summarize([]Transaction{{Amount: NewAmount(0), Category: "Misc"}})

	assert.True(t, s.Revenues.IsZero())
	assert.True(t, s.Expenses.IsZero())
	assert.Empty(t, s.Categories)
}

func TestSummarizeKeepsDecimalPrecision(t *testing.T) {
	s := Summarize([]Transaction{
		{Amount: NewAmount(0.1)},
		{Amount: NewAmount(0.2)},
		{Amount: NewAmount(-0.3), Category: "x"},
	})

	assert.Equal(t, "0.3", s.Revenues.String())
	assert.True(t, s.Balance.IsZero())
}
