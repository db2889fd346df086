package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"spendlens/internal/budget"
	"spendlens/internal/cache"
	"spendlens/internal/core"
	"spendlens/internal/log"
	"spendlens/internal/query"
	"spendlens/internal/sheets/memory"
)

var fixedNow = time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)

type recordingPublisher struct {
	published [][]budget.Alert
	err       error
}

func (p *recordingPublisher) PublishAlerts(_ context.Context, alerts []budget.Alert) error {
	p.published = append(p.published, alerts)
	return p.err
}

func (p *recordingPublisher) ids() []string {
	var out []string
	for _, batch := range p.published {
		for _, a := range batch {
			out = append(out, a.ID)
		}
	}
	return out
}

type recordingExporter struct {
	overview budget.Overview
	budgets  []core.Budget
}

func (e *recordingExporter) ExportBudgetReport(_ context.Context, o budget.Overview, bs []core.Budget) error {
	e.overview = o
	e.budgets = bs
	return nil
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func txn(id, amount, category string, kind core.Kind, d core.Date) core.Transaction {
	return core.Transaction{
		ID:          id,
		Description: "txn " + id,
		Amount:      decimal.RequireFromString(amount),
		Category:    category,
		Kind:        kind,
		Date:        d,
	}
}

func bgt(id, category, allocated, spent string) core.Budget {
	return core.Budget{
		ID:        id,
		Category:  category,
		Allocated: decimal.RequireFromString(allocated),
		Spent:     decimal.RequireFromString(spent),
		Period:    core.Monthly,
	}
}

func seedBudgets() []core.Budget {
	return []core.Budget{
		bgt("1", "Housing", "2000", "1850"),
		bgt("2", "Food & Dining", "600", "425"),
		bgt("3", "Transportation", "400", "380"),
		bgt("5", "Shopping", "250", "320"),
	}
}

func newTestService(store *memory.Store, opts ...Option) *LedgerService {
	base := []Option{
		WithClock(func() time.Time { return fixedNow }),
		WithLocation(time.UTC),
		WithIDGenerator(sequentialIDs()),
		WithLogger(log.New(log.Config{Output: io.Discard})),
	}
	return NewLedgerService(store, append(base, opts...)...)
}

func alertIDs(alerts []budget.Alert) []string {
	out := make([]string, len(alerts))
	for i, a := range alerts {
		out[i] = a.ID
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestQueryGroupsByDayAndCaches(t *testing.T) {
	store := memory.New([]core.Transaction{
		txn("a", "12.50", "Food & Dining", core.Expense, core.NewDate(2025, 1, 15)),
		txn("b", "100", "Income", core.Income, core.NewDate(2025, 1, 14)),
		txn("c", "40", "Shopping", core.Expense, core.NewDate(2025, 1, 10)),
	}, nil)
	c := cache.NewLRUCache[QueryView](8, time.Hour)
	svc := newTestService(store, WithQueryCache(c))
	ctx := context.Background()

	view, err := svc.Query(ctx, query.FilterSpec{}, "date")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	var labels []string
	for _, b := range view.Buckets {
		labels = append(labels, b.Label)
	}
	want := []string{"Today", "Yesterday", "Friday, January 10, 2025"}
	if !equalStrings(labels, want) {
		t.Fatalf("labels = %v, want %v", labels, want)
	}
	if !view.Totals.Net.Equal(decimal.RequireFromString("47.5")) || view.Totals.Count != 3 {
		t.Fatalf("unexpected totals %+v", view.Totals)
	}

	if _, err := svc.Query(ctx, query.FilterSpec{}, "date"); err != nil {
		t.Fatalf("Query: %v", err)
	}
	if st := c.Stats(); st.Hits != 1 {
		t.Errorf("expected second identical query to hit the cache, stats %+v", st)
	}

	if _, err := svc.CreateTransaction(ctx, txn("", "5", "Food & Dining", core.Expense, core.NewDate(2025, 1, 15))); err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}
	view, err = svc.Query(ctx, query.FilterSpec{}, "date")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if view.Totals.Count != 4 {
		t.Errorf("query after create returned %d records, want 4", view.Totals.Count)
	}
}

func TestQueryRejectsInvalidSelectors(t *testing.T) {
	svc := newTestService(memory.New(nil, nil))
	ctx := context.Background()

	cases := []struct {
		name  string
		spec  query.FilterSpec
		group string
	}{
		{"sort", query.FilterSpec{SortBy: "newest"}, ""},
		{"range", query.FilterSpec{TimeRange: "decade"}, ""},
		{"group", query.FilterSpec{}, "weekday"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Query(ctx, tc.spec, tc.group)
			if !errors.Is(err, core.ErrInvalidSpec) {
				t.Fatalf("expected ErrInvalidSpec, got %v", err)
			}
		})
	}
}

func TestTransactionLifecycle(t *testing.T) {
	store := memory.New(nil, nil)
	svc := newTestService(store)
	ctx := context.Background()

	created, err := svc.CreateTransaction(ctx, core.Transaction{
		Description: "  Groceries  ",
		Amount:      decimal.RequireFromString("45.20"),
		Category:    "Food & Dining",
		Kind:        core.Expense,
		Date:        core.NewDate(2025, 1, 14),
	})
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}
	if created.ID != "id-1" || created.Description != "Groceries" {
		t.Fatalf("unexpected created transaction %+v", created)
	}

	created.Amount = decimal.RequireFromString("50")
	updated, err := svc.UpdateTransaction(ctx, "id-1", created)
	if err != nil {
		t.Fatalf("UpdateTransaction: %v", err)
	}
	if updated.ID != "id-1" {
		t.Errorf("update changed identifier to %s", updated.ID)
	}
	got, _ := store.GetTransaction(ctx, "id-1")
	if !got.Amount.Equal(decimal.NewFromInt(50)) {
		t.Errorf("stored amount = %s, want 50", got.Amount)
	}

	if _, err := svc.UpdateTransaction(ctx, "missing", created); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("update of unknown id: expected ErrNotFound, got %v", err)
	}
	if err := svc.DeleteTransaction(ctx, "missing"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("delete of unknown id: expected ErrNotFound, got %v", err)
	}
	if err := svc.DeleteTransaction(ctx, "id-1"); err != nil {
		t.Errorf("DeleteTransaction: %v", err)
	}
}

func TestCreateTransactionValidation(t *testing.T) {
	valid := core.Transaction{
		Description: "Coffee",
		Amount:      decimal.RequireFromString("3.50"),
		Category:    "Food & Dining",
		Kind:        core.Expense,
		Date:        core.NewDate(2025, 1, 14),
	}
	cases := []struct {
		name   string
		mutate func(*core.Transaction)
		want   error
	}{
		{"blank description", func(t *core.Transaction) { t.Description = "   " }, core.ErrEmptyDescription},
		{"zero amount", func(t *core.Transaction) { t.Amount = decimal.Zero }, core.ErrInvalidAmount},
		{"missing category", func(t *core.Transaction) { t.Category = "" }, core.ErrEmptyCategory},
		{"unknown kind", func(t *core.Transaction) { t.Kind = "transfer" }, core.ErrInvalidKind},
		{"missing date", func(t *core.Transaction) { t.Date = core.Date{} }, core.ErrInvalidDate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := memory.New(nil, nil)
			svc := newTestService(store)
			tr := valid
			tc.mutate(&tr)
			if _, err := svc.CreateTransaction(context.Background(), tr); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if all, _ := store.ListTransactions(context.Background()); len(all) != 0 {
				t.Errorf("invalid transaction was stored")
			}
		})
	}
}

func TestRejectedCreatesDoNotConsumeIDs(t *testing.T) {
	svc := newTestService(memory.New(nil, nil))
	ctx := context.Background()

	if _, err := svc.CreateBudget(ctx, bgt("", "", "100", "0")); !errors.Is(err, core.ErrEmptyCategory) {
		t.Fatalf("expected ErrEmptyCategory, got %v", err)
	}
	badPeriod := bgt("", "Travel", "100", "0")
	badPeriod.Period = "daily"
	if _, err := svc.CreateBudget(ctx, badPeriod); !errors.Is(err, core.ErrInvalidPeriod) {
		t.Fatalf("expected ErrInvalidPeriod, got %v", err)
	}
	if _, err := svc.CreateTransaction(ctx, txn("", "0", "Other", core.Expense, core.NewDate(2025, 1, 14))); !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}

	b, err := svc.CreateBudget(ctx, bgt("", "Travel", "100", "0"))
	if err != nil {
		t.Fatalf("CreateBudget: %v", err)
	}
	if b.ID != "id-1" {
		t.Errorf("budget ID = %q, want id-1", b.ID)
	}
	tr, err := svc.CreateTransaction(ctx, txn("", "4.20", "Other", core.Expense, core.NewDate(2025, 1, 14)))
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}
	if tr.ID != "id-2" {
		t.Errorf("transaction ID = %q, want id-2", tr.ID)
	}
}

func TestBulkDeleteCountsExisting(t *testing.T) {
	store := memory.New([]core.Transaction{
		txn("a", "1", "Other", core.Expense, core.NewDate(2025, 1, 1)),
		txn("b", "2", "Other", core.Expense, core.NewDate(2025, 1, 2)),
		txn("c", "3", "Other", core.Expense, core.NewDate(2025, 1, 3)),
	}, nil)
	svc := newTestService(store)

	n, err := svc.DeleteTransactions(context.Background(), []string{"a", "c", "zzz"})
	if err != nil {
		t.Fatalf("DeleteTransactions: %v", err)
	}
	if n != 2 {
		t.Errorf("deleted %d, want 2", n)
	}
	left, _ := store.ListTransactions(context.Background())
	if len(left) != 1 || left[0].ID != "b" {
		t.Errorf("unexpected remaining transactions %+v", left)
	}
}

func TestBudgetChangesPublishNewlyRaisedAlerts(t *testing.T) {
	store := memory.New(nil, []core.Budget{bgt("1", "Food & Dining", "100", "50")})
	pub := &recordingPublisher{}
	svc := newTestService(store, WithPublisher(pub))
	ctx := context.Background()

	if _, err := svc.UpdateBudget(ctx, "1", bgt("", "Food & Dining", "100", "95")); err != nil {
		t.Fatalf("UpdateBudget: %v", err)
	}
	if _, err := svc.UpdateBudget(ctx, "1", bgt("", "Food & Dining", "100", "96")); err != nil {
		t.Fatalf("UpdateBudget: %v", err)
	}
	if _, err := svc.Adjust(ctx, budget.AdjustmentSpec{Mode: budget.ModeFixedAmount, Value: decimal.NewFromInt(-10)}); err != nil {
		t.Fatalf("Adjust: %v", err)
	}

	want := []string{"warning-1", "exceeded-1"}
	if got := pub.ids(); !equalStrings(got, want) {
		t.Errorf("published %v, want %v", got, want)
	}
}

func TestPublishFailureDoesNotFailMutation(t *testing.T) {
	store := memory.New(nil, nil)
	pub := &recordingPublisher{err: errors.New("broker down")}
	svc := newTestService(store, WithPublisher(pub))

	b, err := svc.CreateBudget(context.Background(), bgt("", "Shopping", "100", "120"))
	if err != nil {
		t.Fatalf("CreateBudget: %v", err)
	}
	if len(pub.published) != 1 {
		t.Fatalf("expected one publish attempt, got %d", len(pub.published))
	}
	if _, err := store.GetBudget(context.Background(), b.ID); err != nil {
		t.Errorf("budget not stored: %v", err)
	}
}

func TestCreateBudgetNormalizesPeriod(t *testing.T) {
	svc := newTestService(memory.New(nil, nil))
	ctx := context.Background()

	b := bgt("", "  Travel ", "300", "0")
	b.Period = "Weekly"
	got, err := svc.CreateBudget(ctx, b)
	if err != nil {
		t.Fatalf("CreateBudget: %v", err)
	}
	if got.Period != core.Weekly || got.Category != "Travel" {
		t.Errorf("unexpected budget %+v", got)
	}

	b.Period = ""
	if got, _ = svc.CreateBudget(ctx, b); got.Period != core.Monthly {
		t.Errorf("empty period = %q, want monthly", got.Period)
	}

	b.Period = "daily"
	if _, err := svc.CreateBudget(ctx, b); !errors.Is(err, core.ErrInvalidPeriod) {
		t.Errorf("expected ErrInvalidPeriod, got %v", err)
	}
}

func TestAlertsAndBudgetsHonorDismissals(t *testing.T) {
	store := memory.New(nil, seedBudgets())
	svc := newTestService(store)
	ctx := context.Background()

	alerts, err := svc.Alerts(ctx)
	if err != nil {
		t.Fatalf("Alerts: %v", err)
	}
	if got, want := alertIDs(alerts), []string{"exceeded-5", "warning-1", "warning-3"}; !equalStrings(got, want) {
		t.Fatalf("alerts = %v, want %v", got, want)
	}

	if err := svc.Dismiss(ctx, "exceeded-5"); err != nil {
		t.Fatalf("Dismiss: %v", err)
	}
	alerts, _ = svc.Alerts(ctx)
	if got, want := alertIDs(alerts), []string{"warning-1", "warning-3"}; !equalStrings(got, want) {
		t.Errorf("alerts after dismiss = %v, want %v", got, want)
	}

	visible, err := svc.Budgets(ctx, false)
	if err != nil {
		t.Fatalf("Budgets: %v", err)
	}
	if len(visible.Budgets) != 3 {
		t.Errorf("visible budgets = %d, want 3", len(visible.Budgets))
	}
	if visible.Overview.BudgetCount != 4 || visible.Overview.OverBudgetCount != 1 {
		t.Errorf("overview should cover every budget, got %+v", visible.Overview)
	}

	all, _ := svc.Budgets(ctx, true)
	if len(all.Budgets) != 4 {
		t.Errorf("all budgets = %d, want 4", len(all.Budgets))
	}

	if err := svc.Dismiss(ctx, "  "); !errors.Is(err, core.ErrInvalidSpec) {
		t.Errorf("blank dismissal: expected ErrInvalidSpec, got %v", err)
	}
}

func TestAdjustRejectsUnknownMode(t *testing.T) {
	store := memory.New(nil, seedBudgets())
	svc := newTestService(store)

	_, err := svc.Adjust(context.Background(), budget.AdjustmentSpec{Mode: "double", Value: decimal.NewFromInt(2)})
	if !errors.Is(err, core.ErrInvalidSpec) {
		t.Fatalf("expected ErrInvalidSpec, got %v", err)
	}
	b, _ := store.GetBudget(context.Background(), "1")
	if !b.Allocated.Equal(decimal.NewFromInt(2000)) {
		t.Errorf("budget changed after rejected adjustment: %s", b.Allocated)
	}
}

func TestApplyTemplateAppendsBudgets(t *testing.T) {
	store := memory.New(nil, seedBudgets())
	svc := newTestService(store)
	ctx := context.Background()

	created, err := svc.ApplyTemplate(ctx, "student", "")
	if err != nil {
		t.Fatalf("ApplyTemplate: %v", err)
	}
	if len(created) != 6 {
		t.Fatalf("created %d budgets, want 6", len(created))
	}
	for _, b := range created {
		if b.Period != core.Monthly || !b.Spent.IsZero() {
			t.Errorf("unexpected template budget %+v", b)
		}
	}
	all, _ := store.ListBudgets(ctx)
	if len(all) != 10 {
		t.Errorf("store holds %d budgets, want 10", len(all))
	}

	if _, err := svc.ApplyTemplate(ctx, "retiree", "monthly"); !errors.Is(err, budget.ErrTemplateNotFound) {
		t.Errorf("expected ErrTemplateNotFound, got %v", err)
	}
	if _, err := svc.ApplyTemplate(ctx, "student", "fortnightly"); !errors.Is(err, core.ErrInvalidPeriod) {
		t.Errorf("expected ErrInvalidPeriod, got %v", err)
	}
}

func TestDashboard(t *testing.T) {
	store := memory.New([]core.Transaction{
		txn("a", "40", "Shopping", core.Expense, core.NewDate(2025, 1, 10)),
		txn("b", "100", "Income", core.Income, core.NewDate(2024, 11, 1)),
		txn("c", "15", "Food & Dining", core.Expense, core.NewDate(2024, 12, 20)),
	}, seedBudgets())
	svc := newTestService(store)
	ctx := context.Background()
	if err := svc.Dismiss(ctx, "warning-3"); err != nil {
		t.Fatalf("Dismiss: %v", err)
	}

	d, err := svc.Dashboard(ctx)
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if d.Month.Count != 2 || !d.Month.Expense.Equal(decimal.NewFromInt(55)) || !d.Month.Income.IsZero() {
		t.Errorf("unexpected month totals %+v", d.Month)
	}
	if len(d.Recent) != 3 || d.Recent[0].ID != "a" || d.Recent[2].ID != "b" {
		t.Errorf("recent should be newest first, got %+v", d.Recent)
	}
	if got, want := alertIDs(d.Alerts), []string{"exceeded-5", "warning-1"}; !equalStrings(got, want) {
		t.Errorf("dashboard alerts = %v, want %v", got, want)
	}
	if d.Overview.BudgetCount != 4 {
		t.Errorf("overview budget count = %d", d.Overview.BudgetCount)
	}
}

func TestExportReport(t *testing.T) {
	store := memory.New(nil, seedBudgets())

	if err := newTestService(store).ExportReport(context.Background()); !errors.Is(err, ErrExportUnavailable) {
		t.Fatalf("expected ErrExportUnavailable, got %v", err)
	}

	exp := &recordingExporter{}
	if err := newTestService(store, WithExporter(exp)).ExportReport(context.Background()); err != nil {
		t.Fatalf("ExportReport: %v", err)
	}
	if len(exp.budgets) != 4 || !exp.overview.TotalAllocated.Equal(decimal.NewFromInt(3250)) {
		t.Errorf("unexpected export %+v", exp.overview)
	}
}
