package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"

	"spendlens/internal/budget"
	"spendlens/internal/cache"
	"spendlens/internal/core"
	"spendlens/internal/log"
	"spendlens/internal/metrics"
	"spendlens/internal/query"
	"spendlens/internal/sheets"
)

// ErrExportUnavailable is returned by ExportReport when no exporter is configured.
var ErrExportUnavailable = errors.New("budget report export not configured")

// recentLimit bounds Dashboard.Recent.
const recentLimit = 5

// QueryView is a grouped query result.
type QueryView struct {
	Buckets []query.Bucket `json:"buckets"`
	Totals  query.Totals   `json:"totals"`
}

// BudgetsView lists budgets with an overview computed over all of them.
type BudgetsView struct {
	Budgets  []core.Budget   `json:"budgets"`
	Overview budget.Overview `json:"overview"`
}

type Dashboard struct {
	Month    query.Totals       `json:"month"`
	Recent   []core.Transaction `json:"recent"`
	Overview budget.Overview    `json:"overview"`
	Alerts   []budget.Alert     `json:"alerts"`
}

// LedgerService runs the query and budget engines over a store. The engines
// are pure; everything stateful (persistence, dismissals, cache, publishing)
// lives here.
type LedgerService struct {
	store     sheets.Store
	publisher sheets.AlertPublisher
	exporter  sheets.ReportExporter

	cache    *cache.LRUCache[QueryView]
	revision atomic.Uint64

	loc       *time.Location
	collation language.Tag
	now       func() time.Time
	newID     func() string
	logger    *log.Logger
}

type Option func(*LedgerService)

// WithPublisher publishes newly raised alerts after budget changes.
func WithPublisher(p sheets.AlertPublisher) Option {
	return func(s *LedgerService) { s.publisher = p }
}

func WithExporter(e sheets.ReportExporter) Option {
	return func(s *LedgerService) { s.exporter = e }
}

func WithQueryCache(c *cache.LRUCache[QueryView]) Option {
	return func(s *LedgerService) { s.cache = c }
}

// WithLocation sets the zone that defines "today" for windows and labels.
func WithLocation(loc *time.Location) Option {
	return func(s *LedgerService) { s.loc = loc }
}

func WithCollation(tag language.Tag) Option {
	return func(s *LedgerService) { s.collation = tag }
}

func WithClock(now func() time.Time) Option {
	return func(s *LedgerService) { s.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(s *LedgerService) { s.newID = newID }
}

func WithLogger(l *log.Logger) Option {
	return func(s *LedgerService) { s.logger = l }
}

func NewLedgerService(store sheets.Store, opts ...Option) *LedgerService {
	s := &LedgerService{
		store:     store,
		loc:       time.Local,
		collation: language.English,
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cache == nil {
		s.cache = cache.NewLRUCache[QueryView](128, time.Minute)
	}
	if s.logger == nil {
		s.logger = log.New(log.DefaultConfig())
	}
	s.logger = s.logger.WithComponent(log.ComponentLedger)
	return s
}

func (s *LedgerService) clock() time.Time {
	return s.now().In(s.loc)
}

// QueryCache exposes the result cache so it can be registered for cleanup.
func (s *LedgerService) QueryCache() *cache.LRUCache[QueryView] {
	return s.cache
}

// Query filters, sorts, totals and groups the transactions. Results are
// memoized per store revision, spec, grouping and calendar day.
func (s *LedgerService) Query(ctx context.Context, spec query.FilterSpec, group string) (QueryView, error) {
	key, err := query.ParseGroupKey(group)
	if err != nil {
		return QueryView{}, err
	}
	now := s.clock()

	specJSON, err := json.Marshal(spec)
	if err != nil {
		return QueryView{}, fmt.Errorf("encode filter: %w", err)
	}
	cacheKey := fmt.Sprintf("%d|%s|%s|%s", s.revision.Load(), specJSON, key, core.DateOf(now))

	sortLabel := string(spec.SortBy)
	if sortLabel == "" {
		sortLabel = string(query.SortDateDesc)
	}

	if view, ok := s.cache.Get(cacheKey); ok {
		metrics.Queries.WithLabelValues(sortLabel, "hit").Inc()
		s.logger.DebugContext(ctx, "Query served from cache",
			log.FieldCacheHit, true,
			log.FieldResultCount, view.Totals.Count)
		return view, nil
	}

	records, err := s.store.ListTransactions(ctx)
	if err != nil {
		return QueryView{}, fmt.Errorf("list transactions: %w", err)
	}
	res, err := query.Transactions(records, spec, now, query.WithCollation(s.collation))
	if err != nil {
		return QueryView{}, err
	}
	buckets, err := query.Group(res.Ordered, key, now)
	if err != nil {
		return QueryView{}, err
	}

	view := QueryView{Buckets: buckets, Totals: res.Totals}
	s.cache.Set(cacheKey, view)

	metrics.Queries.WithLabelValues(sortLabel, "miss").Inc()
	metrics.QueryResults.Observe(float64(res.Totals.Count))
	s.logger.DebugContext(ctx, "Query executed",
		log.NewFields().
			WithQuery(sortLabel, string(spec.TimeRange), string(key), res.Totals.Count).
			WithOperation(log.OpQuery).
			ToSlice()...)
	return view, nil
}

// CreateTransaction assigns a fresh identifier and stores t.
func (s *LedgerService) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	normalizeTransaction(&t)
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	t.ID = s.newID()
	if err := s.store.SaveTransaction(ctx, t); err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}
	s.revision.Add(1)

	s.logger.InfoContext(ctx, "Transaction created",
		log.FieldTransactionID, t.ID,
		log.FieldCategory, t.Category,
		log.FieldOperation, log.OpCreate)
	return t, nil
}

// UpdateTransaction replaces the stored transaction, keeping its identifier.
func (s *LedgerService) UpdateTransaction(ctx context.Context, id string, t core.Transaction) (core.Transaction, error) {
	if _, err := s.store.GetTransaction(ctx, id); err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %s: %w", id, err)
	}
	t.ID = id
	normalizeTransaction(&t)
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if err := s.store.SaveTransaction(ctx, t); err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}
	s.revision.Add(1)

	s.logger.InfoContext(ctx, "Transaction updated",
		log.FieldTransactionID, id,
		log.FieldOperation, log.OpUpdate)
	return t, nil
}

func (s *LedgerService) DeleteTransaction(ctx context.Context, id string) error {
	n, err := s.DeleteTransactions(ctx, []string{id})
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
	}
	return nil
}

// DeleteTransactions removes every listed transaction and reports how many
// existed. Unknown identifiers are ignored.
func (s *LedgerService) DeleteTransactions(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	n, err := s.store.DeleteTransactions(ctx, ids...)
	if err != nil {
		return 0, fmt.Errorf("delete transactions: %w", err)
	}
	if n > 0 {
		s.revision.Add(1)
	}
	s.logger.InfoContext(ctx, "Transactions deleted",
		"requested", len(ids),
		"deleted", n,
		log.FieldOperation, log.OpDelete)
	return n, nil
}

// Budgets lists budgets. Unless includeDismissed is set, budgets whose
// current alert was dismissed are left out. The overview always covers every
// budget.
func (s *LedgerService) Budgets(ctx context.Context, includeDismissed bool) (BudgetsView, error) {
	budgets, err := s.store.ListBudgets(ctx)
	if err != nil {
		return BudgetsView{}, fmt.Errorf("list budgets: %w", err)
	}
	view := BudgetsView{Budgets: budgets, Overview: budget.Summarize(budgets)}
	if includeDismissed {
		return view, nil
	}
	dismissed, err := s.dismissed(ctx)
	if err != nil {
		return BudgetsView{}, err
	}
	view.Budgets = budget.VisibleBudgets(budgets, dismissed)
	return view, nil
}

// CreateBudget stores a custom budget under a fresh identifier.
func (s *LedgerService) CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	if err := normalizeBudget(&b); err != nil {
		return core.Budget{}, err
	}
	b.ID = s.newID()
	err := s.mutateBudgets(ctx, func() error {
		return s.store.SaveBudget(ctx, b)
	})
	if err != nil {
		return core.Budget{}, err
	}
	s.logger.InfoContext(ctx, "Budget created",
		log.FieldBudgetID, b.ID,
		log.FieldCategory, b.Category,
		log.FieldOperation, log.OpCreate)
	return b, nil
}

// UpdateBudget replaces a budget's numbers, keeping its identifier.
func (s *LedgerService) UpdateBudget(ctx context.Context, id string, b core.Budget) (core.Budget, error) {
	if _, err := s.store.GetBudget(ctx, id); err != nil {
		return core.Budget{}, fmt.Errorf("get budget %s: %w", id, err)
	}
	b.ID = id
	if err := normalizeBudget(&b); err != nil {
		return core.Budget{}, err
	}
	err := s.mutateBudgets(ctx, func() error {
		return s.store.SaveBudget(ctx, b)
	})
	if err != nil {
		return core.Budget{}, err
	}
	s.logger.InfoContext(ctx, "Budget updated",
		log.FieldBudgetID, id,
		log.FieldOperation, log.OpUpdate)
	return b, nil
}

func (s *LedgerService) DeleteBudget(ctx context.Context, id string) error {
	if err := s.store.DeleteBudget(ctx, id); err != nil {
		return fmt.Errorf("delete budget %s: %w", id, err)
	}
	s.logger.InfoContext(ctx, "Budget deleted",
		log.FieldBudgetID, id,
		log.FieldOperation, log.OpDelete)
	return nil
}

// Alerts returns the current alerts that have not been dismissed, most
// severe first.
func (s *LedgerService) Alerts(ctx context.Context) ([]budget.Alert, error) {
	budgets, err := s.store.ListBudgets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	dismissed, err := s.dismissed(ctx)
	if err != nil {
		return nil, err
	}
	return budget.Active(budget.ComputeAlerts(budgets, s.clock()), dismissed), nil
}

// Dismiss suppresses an alert identifier. Identifiers need not match a
// current alert.
func (s *LedgerService) Dismiss(ctx context.Context, alertID string) error {
	alertID = strings.TrimSpace(alertID)
	if alertID == "" {
		return core.NewConfigurationError("alertId", alertID)
	}
	if err := s.store.Dismiss(ctx, alertID); err != nil {
		return fmt.Errorf("dismiss alert %s: %w", alertID, err)
	}
	metrics.AlertsDismissed.Inc()
	s.logger.InfoContext(ctx, "Alert dismissed",
		log.FieldAlertID, alertID,
		log.FieldOperation, log.OpDismiss)
	return nil
}

// Adjust applies spec to every budget and stores the result.
func (s *LedgerService) Adjust(ctx context.Context, spec budget.AdjustmentSpec) ([]core.Budget, error) {
	var adjusted []core.Budget
	err := s.mutateBudgets(ctx, func() error {
		budgets, err := s.store.ListBudgets(ctx)
		if err != nil {
			return fmt.Errorf("list budgets: %w", err)
		}
		adjusted, err = budget.BulkAdjust(budgets, spec)
		if err != nil {
			return err
		}
		return s.store.SaveBudgets(ctx, adjusted)
	})
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "Budgets adjusted",
		"mode", spec.Mode,
		"value", spec.Value.String(),
		"count", len(adjusted),
		log.FieldOperation, log.OpAdjust)
	return adjusted, nil
}

func (s *LedgerService) Templates() ([]budget.Template, error) {
	return budget.Templates()
}

// ApplyTemplate appends the template's budgets with the given period.
func (s *LedgerService) ApplyTemplate(ctx context.Context, templateID, period string) ([]core.Budget, error) {
	p := core.Monthly
	if strings.TrimSpace(period) != "" {
		var err error
		if p, err = core.ParsePeriod(period); err != nil {
			return nil, err
		}
	}
	created, err := budget.ApplyTemplate(templateID, p, s.newID)
	if err != nil {
		return nil, err
	}
	err = s.mutateBudgets(ctx, func() error {
		return s.store.SaveBudgets(ctx, created)
	})
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "Budget template applied",
		"template", templateID,
		"count", len(created),
		log.FieldOperation, log.OpCreate)
	return created, nil
}

func (s *LedgerService) Categories() core.CategoryCatalogue {
	return core.Catalogue()
}

// Dashboard loads transactions, budgets and dismissals concurrently and
// summarizes the current month.
func (s *LedgerService) Dashboard(ctx context.Context) (Dashboard, error) {
	var (
		records   []core.Transaction
		budgets   []core.Budget
		dismissed []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = s.store.ListTransactions(gctx)
		if err != nil {
			return fmt.Errorf("list transactions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		budgets, err = s.store.ListBudgets(gctx)
		if err != nil {
			return fmt.Errorf("list budgets: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		dismissed, err = s.store.ListDismissed(gctx)
		if err != nil {
			return fmt.Errorf("list dismissed alerts: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}

	now := s.clock()
	collation := query.WithCollation(s.collation)
	month, err := query.Transactions(records, query.FilterSpec{TimeRange: query.RangeMonth}, now, collation)
	if err != nil {
		return Dashboard{}, err
	}
	recent, err := query.Transactions(records, query.FilterSpec{}, now, collation)
	if err != nil {
		return Dashboard{}, err
	}
	if len(recent.Ordered) > recentLimit {
		recent.Ordered = recent.Ordered[:recentLimit]
	}

	return Dashboard{
		Month:    month.Totals,
		Recent:   recent.Ordered,
		Overview: budget.Summarize(budgets),
		Alerts:   budget.Active(budget.ComputeAlerts(budgets, now), budget.NewDismissedSet(dismissed...)),
	}, nil
}

// ExportReport writes the budget overview through the configured exporter.
func (s *LedgerService) ExportReport(ctx context.Context) error {
	if s.exporter == nil {
		return ErrExportUnavailable
	}
	budgets, err := s.store.ListBudgets(ctx)
	if err != nil {
		return fmt.Errorf("list budgets: %w", err)
	}
	if err := s.exporter.ExportBudgetReport(ctx, budget.Summarize(budgets), budgets); err != nil {
		return fmt.Errorf("export budget report: %w", err)
	}
	s.logger.InfoContext(ctx, "Budget report exported",
		"count", len(budgets),
		log.FieldOperation, log.OpExport)
	return nil
}

func (s *LedgerService) dismissed(ctx context.Context) (budget.DismissedSet, error) {
	ids, err := s.store.ListDismissed(ctx)
	if err != nil {
		return nil, fmt.Errorf("list dismissed alerts: %w", err)
	}
	return budget.NewDismissedSet(ids...), nil
}

// mutateBudgets runs change and announces the alerts it raised. Publishing
// failures are logged; the change itself has already been stored.
func (s *LedgerService) mutateBudgets(ctx context.Context, change func() error) error {
	before, err := s.store.ListBudgets(ctx)
	if err != nil {
		return fmt.Errorf("list budgets: %w", err)
	}
	if err := change(); err != nil {
		return err
	}
	after, err := s.store.ListBudgets(ctx)
	if err != nil {
		return fmt.Errorf("list budgets: %w", err)
	}

	now := s.clock()
	raised := budget.NewlyRaised(budget.ComputeAlerts(before, now), budget.ComputeAlerts(after, now))
	if len(raised) == 0 {
		return nil
	}
	for _, a := range raised {
		metrics.AlertsRaised.WithLabelValues(string(a.Tier)).Inc()
	}
	s.publishAlerts(ctx, raised)
	return nil
}

func (s *LedgerService) publishAlerts(ctx context.Context, alerts []budget.Alert) {
	if s.publisher == nil {
		s.logger.DebugContext(ctx, "Alert publisher not available, skipping alert messages",
			"count", len(alerts))
		return
	}
	if err := s.publisher.PublishAlerts(ctx, alerts); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish raised alerts",
			"count", len(alerts),
			log.FieldError, err.Error(),
			log.FieldOperation, log.OpPublish)
	}
}

func normalizeTransaction(t *core.Transaction) {
	t.Description = strings.TrimSpace(t.Description)
	t.Category = strings.TrimSpace(t.Category)
	t.Notes = strings.TrimSpace(t.Notes)
}

// normalizeBudget trims the category, canonicalizes the period (monthly when
// empty) and validates.
func normalizeBudget(b *core.Budget) error {
	b.Category = strings.TrimSpace(b.Category)
	if b.Period == "" {
		b.Period = core.Monthly
	} else {
		p, err := core.ParsePeriod(string(b.Period))
		if err != nil {
			return err
		}
		b.Period = p
	}
	return b.Validate()
}
