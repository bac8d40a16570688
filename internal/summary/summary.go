// Package summary computes read-only aggregates over a ledger snapshot.
//
// Every call recomputes from the full transaction list; nothing is cached or
// maintained incrementally, so cost grows linearly with ledger size.
package summary

import (
	"context"
	"fmt"

	"ledger/internal/core"
	"ledger/internal/ledger"
)

// Global partitions amounts into income (> 0) and expense (< 0) buckets.
// Net total is the sum of the two buckets.
func Global(txs []core.Transaction) core.Totals {
	var t core.Totals
	for _, tx := range txs {
		t.Add(tx.Amount)
	}
	return t
}

// ByCategory applies the Global partition per category. Only categories
// with at least one transaction appear in the result.
func ByCategory(txs []core.Transaction) core.CategorySummary {
	out := core.CategorySummary{Categories: make(map[string]core.Totals)}
	for _, tx := range txs {
		t := out.Categories[tx.Category]
		t.Add(tx.Amount)
		out.Categories[tx.Category] = t
	}
	return out
}

// Catalog wraps the distinct category set. Order is not meaningful.
func Catalog(categories []string) core.CategoryCatalog {
	if categories == nil {
		categories = []string{}
	}
	return core.CategoryCatalog{Categories: categories}
}

// Engine runs the aggregations against a live store.
type Engine struct {
	lister ledger.Lister
	cats   ledger.CategoryReader
}

func NewEngine(lister ledger.Lister, cats ledger.CategoryReader) *Engine {
	return &Engine{lister: lister, cats: cats}
}

// GlobalSummary returns income, expense and net totals over the whole ledger.
func (e *Engine) GlobalSummary(ctx context.Context) (core.Totals, error) {
	txs, err := e.lister.List(ctx)
	if err != nil {
		return core.Totals{}, fmt.Errorf("list transactions: %w", err)
	}
	return Global(txs), nil
}

// CategorySummary returns the per-category totals.
func (e *Engine) CategorySummary(ctx context.Context) (core.CategorySummary, error) {
	txs, err := e.lister.List(ctx)
	if err != nil {
		return core.CategorySummary{}, fmt.Errorf("list transactions: %w", err)
	}
	return ByCategory(txs), nil
}

// CategoryCatalog returns the categories known to the store.
func (e *Engine) CategoryCatalog(ctx context.Context) (core.CategoryCatalog, error) {
	cats, err := e.cats.Categories(ctx)
	if err != nil {
		return core.CategoryCatalog{}, fmt.Errorf("list categories: %w", err)
	}
	return Catalog(cats), nil
}
