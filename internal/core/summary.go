package core

// Summary is the derived financial overview of a set of transactions.
type Summary struct {
	Revenues   Amount            `json:"revenues"`
	Expenses   Amount            `json:"expenses"`
	Balance    Amount            `json:"balance"`
	Categories map[string]Amount `json:"categories"`
}

// Summarize computes revenues, expenses, balance and per-category expense
// totals in a single pass. Zero amounts count as neither revenue nor expense,
// and categories appear only when they hold at least one expense.
func Summarize(transactions []Transaction) Summary {
	s := Summary{Categories: make(map[string]Amount)}
	for _, t := range transactions {
		switch {
		case t.Amount.IsRevenue():
			s.Revenues = s.Revenues.Add(t.Amount)
		case t.Amount.IsExpense():
			spent := t.Amount.Abs()
			s.Expenses = s.Expenses.Add(spent)
			s.Categories[t.Category] = s.Categories[t.Category].Add(spent)
		}
	}
	s.Balance = s.Revenues.Sub(s.Expenses)
	return s
}
