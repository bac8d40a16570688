package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"ledger/internal/core"
	"ledger/internal/ledger"
	"ledger/internal/summary"
)

// EventPublisher announces ledger changes to other processes.
type EventPublisher interface {
	PublishTransactionCreated(ctx context.Context, tx core.Transaction) error
	Close() error
}

// LedgerService orchestrates the ledger store, the aggregation engine and
// event publishing.
type LedgerService struct {
	store     ledger.Store
	engine    *summary.Engine
	publisher EventPublisher
	closers   []func() error
}

// NewLedgerService wires a service around store. publisher may be nil.
func NewLedgerService(store ledger.Store, publisher EventPublisher) *LedgerService {
	return &LedgerService{
		store:     store,
		engine:    summary.NewEngine(store, store),
		publisher: publisher,
	}
}

// OnClose registers a cleanup run by Close, e.g. closing the backing database.
func (s *LedgerService) OnClose(fn func() error) {
	s.closers = append(s.closers, fn)
}

// List implements ledger.Lister
func (s *LedgerService) List(ctx context.Context) ([]core.Transaction, error) {
	txs, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	if txs == nil {
		txs = []core.Transaction{}
	}
	return txs, nil
}

// Append stores the transaction and then publishes an event. A failed
// publish is logged and never fails the append.
func (s *LedgerService) Append(ctx context.Context, in core.TransactionInput) (core.Transaction, error) {
	tx, err := s.store.Append(ctx, in)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("append transaction: %w", err)
	}

	if err := s.publishCreated(ctx, tx); err != nil {
		slog.ErrorContext(ctx, "Failed to publish transaction event",
			"id", tx.ID, "error", err)
	}

	return tx, nil
}

// Categories implements ledger.CategoryReader
func (s *LedgerService) Categories(ctx context.Context) ([]string, error) {
	return s.store.Categories(ctx)
}

// GlobalSummary returns the income/expense/net totals for the whole ledger.
func (s *LedgerService) GlobalSummary(ctx context.Context) (core.Totals, error) {
	return s.engine.GlobalSummary(ctx)
}

// CategorySummary returns the totals grouped by category.
func (s *LedgerService) CategorySummary(ctx context.Context) (core.CategorySummary, error) {
	return s.engine.CategorySummary(ctx)
}

// CategoryCatalog returns the distinct categories in use.
func (s *LedgerService) CategoryCatalog(ctx context.Context) (core.CategoryCatalog, error) {
	return s.engine.CategoryCatalog(ctx)
}

func (s *LedgerService) publishCreated(ctx context.Context, tx core.Transaction) error {
	if s.publisher == nil {
		slog.DebugContext(ctx, "No event publisher configured, skipping transaction event", "id", tx.ID)
		return nil
	}
	return s.publisher.PublishTransactionCreated(ctx, tx)
}

// Close releases the publisher and every registered cleanup.
func (s *LedgerService) Close() error {
	var errs []error

	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("publisher: %w", err))
		}
	}
	for _, fn := range s.closers {
		if err := fn(); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %w", errors.Join(errs...))
	}
	return nil
}
