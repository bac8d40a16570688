package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"ledger/internal/amqp"
	"ledger/internal/cache"
	"ledger/internal/core"
	applog "ledger/internal/log"
)

// Bounds for the set of message ids already tallied.
const (
	seenCapacity = 100_000
	seenTTL      = 24 * time.Hour
)

// ErrInvalidMessage is returned for events that carry no usable transaction.
var ErrInvalidMessage = errors.New("invalid transaction event")

// TallyWorker keeps running totals of the transactions announced on the
// ledger event queue. Redelivered messages are counted once.
type TallyWorker struct {
	logger *applog.Logger

	seen *cache.LRUCache[struct{}]

	mu         sync.Mutex
	global     core.Totals
	categories map[string]core.Totals
	order      []string
	processed  int64
}

func NewTallyWorker(logger *applog.Logger) *TallyWorker {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &TallyWorker{
		logger:     logger.WithComponent(applog.ComponentWorker),
		seen:       cache.NewLRUCache[struct{}](seenCapacity, seenTTL),
		categories: make(map[string]core.Totals),
	}
}

// HandleTransactionCreated processes a single transaction event from AMQP
func (w *TallyWorker) HandleTransactionCreated(ctx context.Context, msg *amqp.TransactionCreatedMessage) error {
	if msg == nil || msg.MessageID == "" || msg.Transaction.ID < 1 {
		return fmt.Errorf("%w: missing message id or transaction id", ErrInvalidMessage)
	}
	tx := msg.Transaction

	if !w.seen.Add(msg.MessageID, struct{}{}) {
		w.logger.DebugContext(ctx, "Skipping redelivered event", "message_id", msg.MessageID)
		return nil
	}

	w.mu.Lock()
	w.global.Add(tx.Amount)
	totals, known := w.categories[tx.Category]
	if !known {
		w.order = append(w.order, tx.Category)
	}
	totals.Add(tx.Amount)
	w.categories[tx.Category] = totals
	w.processed++
	w.mu.Unlock()

	w.logger.InfoContext(ctx, "Transaction event processed",
		applog.NewFields().
			WithTransaction(tx.ID, tx.Description, tx.Amount.String(), tx.Category).
			WithOperation(applog.OpConsume).
			ToSlice()...)
	return nil
}

// Snapshot returns the current totals. The returned values are copies.
func (w *TallyWorker) Snapshot() (core.Totals, core.CategorySummary, core.CategoryCatalog) {
	w.mu.Lock()
	defer w.mu.Unlock()

	byCat := core.CategorySummary{Categories: make(map[string]core.Totals, len(w.categories))}
	for name, t := range w.categories {
		byCat.Categories[name] = t
	}
	catalog := core.CategoryCatalog{Categories: make([]string, len(w.order))}
	copy(catalog.Categories, w.order)
	return w.global, byCat, catalog
}

// Processed returns the number of distinct events tallied.
func (w *TallyWorker) Processed() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.processed
}

// LogSummary writes the current totals to the log and drops expired message ids.
func (w *TallyWorker) LogSummary(ctx context.Context) {
	w.seen.CleanExpired()
	global, byCat, _ := w.Snapshot()
	w.logger.InfoContext(ctx, "Ledger tally",
		"processed", w.Processed(),
		"total_income", global.TotalIncome.String(),
		"total_expense", global.TotalExpense.String(),
		"net_total", global.NetTotal.String(),
		"categories", len(byCat.Categories))
}
