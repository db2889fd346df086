package storage

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"testing"

	"github.com/shopspring/decimal"

	"spendlens/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "spendlens.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func sampleTxn(id, amount string) core.Transaction {
	return core.Transaction{
		ID:          id,
		Description: "Grocery Shopping",
		Amount:      decimal.RequireFromString(amount),
		Category:    "Groceries",
		Kind:        core.Expense,
		Date:        core.NewDate(2025, 1, 12),
		Notes:       "Weekly shop",
	}
}

func TestTransactionRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	for _, id := range []string{"a", "b", "c"} {
		if err := repo.SaveTransaction(ctx, sampleTxn(id, "67.89")); err != nil {
			t.Fatalf("save %s: %v", id, err)
		}
	}

	got, err := repo.GetTransaction(ctx, "b")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	want := sampleTxn("b", "67.89")
	if got.Description != want.Description || !got.Amount.Equal(want.Amount) || got.Date.Compare(want.Date) != 0 ||
		got.Kind != want.Kind || got.Notes != want.Notes || got.Category != want.Category {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, want)
	}

	list, err := repo.ListTransactions(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	ids := []string{}
	for _, tr := range list {
		ids = append(ids, tr.ID)
	}
	if !slices.Equal(ids, []string{"c", "b", "a"}) {
		t.Fatalf("ids = %v, want newest first", ids)
	}
}

func TestTransactionUpdateKeepsPosition(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	_ = repo.SaveTransaction(ctx, sampleTxn("a", "1"))
	_ = repo.SaveTransaction(ctx, sampleTxn("b", "2"))

	edited := sampleTxn("a", "99.99")
	if err := repo.SaveTransaction(ctx, edited); err != nil {
		t.Fatalf("update: %v", err)
	}
	list, _ := repo.ListTransactions(ctx)
	if len(list) != 2 || list[1].ID != "a" || !list[1].Amount.Equal(decimal.RequireFromString("99.99")) {
		t.Fatalf("unexpected list after update: %+v", list)
	}
}

func TestDeleteTransactions(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	for _, id := range []string{"a", "b", "c"} {
		_ = repo.SaveTransaction(ctx, sampleTxn(id, "5"))
	}
	n, err := repo.DeleteTransactions(ctx, "a", "c", "zzz")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if n != 2 {
		t.Fatalf("deleted %d, want 2", n)
	}
	if _, err := repo.GetTransaction(ctx, "a"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSaveTransactionRejectsInvalid(t *testing.T) {
	repo := newTestRepo(t)
	bad := sampleTxn("x", "1")
	bad.Kind = "refund"
	if err := repo.SaveTransaction(context.Background(), bad); !errors.Is(err, core.ErrInvalidKind) {
		t.Fatalf("expected ErrInvalidKind, got %v", err)
	}
}

func TestBudgets(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	budgets := []core.Budget{
		{ID: "1", Category: "Housing", Allocated: decimal.NewFromInt(2000), Spent: decimal.NewFromInt(1850), Period: core.Monthly},
		{ID: "2", Category: "Shopping", Allocated: decimal.NewFromInt(250), Spent: decimal.NewFromInt(320), Period: core.Monthly},
	}
	if err := repo.SaveBudgets(ctx, budgets); err != nil {
		t.Fatalf("save budgets: %v", err)
	}

	budgets[0].Allocated = decimal.RequireFromString("2200.5")
	if err := repo.SaveBudget(ctx, budgets[0]); err != nil {
		t.Fatalf("update budget: %v", err)
	}

	list, err := repo.ListBudgets(ctx)
	if err != nil {
		t.Fatalf("list budgets: %v", err)
	}
	if len(list) != 2 || list[0].ID != "1" || !list[0].Allocated.Equal(decimal.RequireFromString("2200.5")) {
		t.Fatalf("unexpected budgets %+v", list)
	}

	bad := budgets[1]
	bad.Period = "daily"
	if err := repo.SaveBudgets(ctx, []core.Budget{budgets[0], bad}); !errors.Is(err, core.ErrInvalidPeriod) {
		t.Fatalf("expected ErrInvalidPeriod, got %v", err)
	}

	if err := repo.DeleteBudget(ctx, "2"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.DeleteBudget(ctx, "2"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := repo.GetBudget(ctx, "2"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDismissals(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	for _, id := range []string{"warning-2", "caution-1", "warning-2"} {
		if err := repo.Dismiss(ctx, id); err != nil {
			t.Fatalf("dismiss %s: %v", id, err)
		}
	}
	ids, err := repo.ListDismissed(ctx)
	if err != nil {
		t.Fatalf("list dismissed: %v", err)
	}
	slices.Sort(ids)
	if !slices.Equal(ids, []string{"caution-1", "warning-2"}) {
		t.Fatalf("dismissed = %v", ids)
	}
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "twice.db")
	first, err := NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	first.Close()
	second, err := NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	defer second.Close()
	if first.SchemaVersion() != 1 || second.SchemaVersion() != 1 {
		t.Errorf("schema versions = %d, %d, want 1", first.SchemaVersion(), second.SchemaVersion())
	}
}
