package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"sync"

	"ledger/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository is a ledger.Store backed by an in-memory SQLite database.
// The database lives as long as the repository is open and is never written
// to disk.
type SQLiteRepository struct {
	db *sql.DB

	// serializes id assignment with the insert
	writeMu sync.Mutex
}

// MemoryDSN builds the shared-cache in-memory DSN for a named database.
func MemoryDSN(name string) string {
	return "file:" + url.PathEscape(name) + "?mode=memory&cache=shared&_pragma=busy_timeout(5000)"
}

func NewSQLiteRepository(name string) (*SQLiteRepository, error) {
	if name == "" {
		return nil, fmt.Errorf("sqlite database name is empty")
	}
	dsn := MemoryDSN(name)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One long-lived connection keeps the in-memory database alive.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Append implements ledger.Appender
func (r *SQLiteRepository) Append(ctx context.Context, in core.TransactionInput) (core.Transaction, error) {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var count int64
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&count); err != nil {
		return core.Transaction{}, fmt.Errorf("count transactions: %w", err)
	}

	rec := in.WithID(count + 1)
	_, err = tx.ExecContext(ctx,
		`INSERT INTO transactions (id, date, description, amount, category) VALUES (?, ?, ?, ?, ?)`,
		rec.ID, rec.Date, rec.Description, rec.Amount, rec.Category)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return core.Transaction{}, fmt.Errorf("commit transaction: %w", err)
	}

	slog.DebugContext(ctx, "Transaction saved to SQLite",
		"id", rec.ID,
		"category", rec.Category,
		"amount", rec.Amount.String())

	return rec, nil
}

// List implements ledger.Lister
func (r *SQLiteRepository) List(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, date, description, amount, category FROM transactions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var t core.Transaction
		if err := rows.Scan(&t.ID, &t.Date, &t.Description, &t.Amount, &t.Category); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

// Categories implements ledger.CategoryReader
func (r *SQLiteRepository) Categories(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT category FROM transactions GROUP BY category ORDER BY MIN(id)`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return out, nil
}

// Ping checks the database connection.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
