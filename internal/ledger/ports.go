package ledger

import (
	"context"

	"ledger/internal/core"
)

// Ports implemented by ledger backends.
type (
	// Lister returns every stored transaction in insertion order.
	Lister interface {
		List(ctx context.Context) ([]core.Transaction, error)
	}

	// Appender stores a new transaction and assigns its ID.
	Appender interface {
		// Append assigns id = current count + 1 and stores the record last.
		Append(ctx context.Context, in core.TransactionInput) (core.Transaction, error)
	}

	// CategoryReader returns the distinct categories referenced so far.
	CategoryReader interface {
		Categories(ctx context.Context) ([]string, error)
	}

	// Store is the full ledger contract.
	Store interface {
		Lister
		Appender
		CategoryReader
	}
)
