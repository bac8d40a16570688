package core

import "github.com/shopspring/decimal"

// Totals holds the income/expense partition for a scope (global or one category).
type Totals struct {
	TotalIncome  decimal.Decimal `json:"total_income"`
	TotalExpense decimal.Decimal `json:"total_expense"`
	NetTotal     decimal.Decimal `json:"net_total"`
}

// CategorySummary maps each used category to its totals.
type CategorySummary struct {
	Categories map[string]Totals `json:"categories"`
}

// CategoryCatalog lists the distinct categories seen in the ledger.
type CategoryCatalog struct {
	Categories []string `json:"categories"`
}

// Add accumulates one amount into the right bucket and refreshes the net total.
// A zero amount lands in neither bucket.
func (t *Totals) Add(amount decimal.Decimal) {
	switch {
	case amount.IsPositive():
		t.TotalIncome = t.TotalIncome.Add(amount)
	case amount.IsNegative():
		t.TotalExpense = t.TotalExpense.Add(amount)
	}
	t.NetTotal = t.TotalIncome.Add(t.TotalExpense)
}
