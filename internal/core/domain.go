package core

import (
	"github.com/shopspring/decimal"
)

func init() {
	// Amounts travel as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

type (
	// Transaction is a single ledger record. ID is assigned by the store.
	Transaction struct {
		ID          int64           `json:"id"`
		Date        string          `json:"date"`
		Description string          `json:"description"`
		Amount      decimal.Decimal `json:"amount"` // positive = income, negative = expense
		Category    string          `json:"category"`
	}

	// TransactionInput is a transaction before the store assigns its ID.
	TransactionInput struct {
		Date        string
		Description string
		Amount      decimal.Decimal
		Category    string
	}
)

// WithID builds the stored record for the given identifier.
func (in TransactionInput) WithID(id int64) Transaction {
	return Transaction{
		ID:          id,
		Date:        in.Date,
		Description: in.Description,
		Amount:      in.Amount,
		Category:    in.Category,
	}
}

// IsIncome reports whether the transaction falls in the income bucket.
func (t Transaction) IsIncome() bool {
	return t.Amount.IsPositive()
}

// IsExpense reports whether the transaction falls in the expense bucket.
func (t Transaction) IsExpense() bool {
	return t.Amount.IsNegative()
}
