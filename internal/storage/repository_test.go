package storage

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"ledger/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository("test-" + uuid.NewString())
	if err != nil {
		t.Fatalf("new repository: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestSQLiteAppendAndList(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	items, err := repo.List(ctx)
	if err != nil || len(items) != 0 {
		t.Fatalf("expected empty ledger, got %v err=%v", items, err)
	}

	in := core.TransactionInput{
		Date:        "27-11-2025",
		Description: "Ventas",
		Amount:      decimal.RequireFromString("150.50"),
		Category:    "Ventas",
	}
	got, err := repo.Append(ctx, in)
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if got.ID != 1 || got.Date != in.Date || got.Description != in.Description || got.Category != in.Category || !got.Amount.Equal(in.Amount) {
		t.Fatalf("unexpected record %+v", got)
	}

	second, err := repo.Append(ctx, core.TransactionInput{Date: "x", Description: "Renta", Amount: decimal.NewFromInt(-800), Category: "Otros"})
	if err != nil || second.ID != 2 {
		t.Fatalf("expected id 2, got %+v err=%v", second, err)
	}

	items, err = repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 2 || items[0].ID != 1 || items[1].ID != 2 {
		t.Fatalf("unexpected list %+v", items)
	}
	if !items[0].Amount.Equal(decimal.RequireFromString("150.5")) || !items[1].Amount.Equal(decimal.NewFromInt(-800)) {
		t.Fatalf("amounts did not round-trip: %+v", items)
	}
}

func TestSQLiteCategories(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	for _, c := range []string{"Ventas", "Otros", "Ventas"} {
		if _, err := repo.Append(ctx, core.TransactionInput{Amount: decimal.NewFromInt(1), Category: c}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	cats, err := repo.Categories(ctx)
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	if len(cats) != 2 {
		t.Fatalf("expected 2 categories, got %v", cats)
	}
}

func TestSQLiteDatabasesAreIsolated(t *testing.T) {
	a := newTestRepo(t)
	b := newTestRepo(t)
	ctx := context.Background()
	if _, err := a.Append(ctx, core.TransactionInput{Amount: decimal.NewFromInt(1), Category: "A"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	items, _ := b.List(ctx)
	if len(items) != 0 {
		t.Fatalf("expected separate databases, got %v", items)
	}
}

func TestSQLiteConcurrentAppends(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	const n = 25
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.Append(ctx, core.TransactionInput{Amount: decimal.NewFromInt(1), Category: "A"}); err != nil {
				t.Errorf("append: %v", err)
			}
		}()
	}
	wg.Wait()
	items, _ := repo.List(ctx)
	if len(items) != n {
		t.Fatalf("expected %d items, got %d", n, len(items))
	}
	for i, it := range items {
		if it.ID != int64(i+1) {
			t.Fatalf("gap in ids at %d: %d", i, it.ID)
		}
	}
}

func TestNewSQLiteRepositoryRequiresName(t *testing.T) {
	if _, err := NewSQLiteRepository(""); err == nil {
		t.Fatalf("expected error for empty name")
	}
}
