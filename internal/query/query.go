package query

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"spendlens/internal/core"
)

// SortKey selects the result ordering.
type SortKey string

const (
	SortDateDesc    SortKey = "date-desc"
	SortDateAsc     SortKey = "date-asc"
	SortAmountDesc  SortKey = "amount-desc"
	SortAmountAsc   SortKey = "amount-asc"
	SortCategory    SortKey = "category"
	SortCategoryAsc SortKey = "category-asc"
)

// Totals aggregates the filtered records. Net is income minus expense.
type Totals struct {
	Expense decimal.Decimal `json:"expense"`
	Income  decimal.Decimal `json:"income"`
	Net     decimal.Decimal `json:"net"`
	Count   int             `json:"count"`
}

type Result struct {
	Ordered []core.Transaction `json:"ordered"`
	Totals  Totals             `json:"totals"`
}

type options struct {
	lang      language.Tag
	codePoint bool
}

// Option tunes how Transactions orders its result.
type Option func(*options)

// WithCollation sorts categories with the collation rules of lang.
func WithCollation(lang language.Tag) Option {
	return func(o *options) {
		o.lang = lang
		o.codePoint = false
	}
}

// WithCodePointOrder sorts categories by plain byte order.
func WithCodePointOrder() Option {
	return func(o *options) { o.codePoint = true }
}

// ParseSortKey normalizes a sort selector. Empty selects date-desc.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return SortDateDesc, nil
	case SortDateDesc, SortDateAsc, SortAmountDesc, SortAmountAsc:
		return k, nil
	case SortCategory, SortCategoryAsc:
		return SortCategory, nil
	default:
		return "", core.NewConfigurationError("sort key", s)
	}
}

// Transactions filters records by spec, stable-sorts the survivors and
// totals them. records is not modified.
func Transactions(records []core.Transaction, spec FilterSpec, now time.Time, opts ...Option) (Result, error) {
	o := options{lang: language.English}
	for _, opt := range opts {
		opt(&o)
	}

	key, err := ParseSortKey(string(spec.SortBy))
	if err != nil {
		return Result{}, err
	}
	preds, err := BuildPredicates(spec, now)
	if err != nil {
		return Result{}, err
	}

	var ordered []core.Transaction
	switch {
	case preds.Window.Empty():
		ordered = []core.Transaction{}
	case preds.Len() == 0:
		ordered = slices.Clone(records)
		if ordered == nil {
			ordered = []core.Transaction{}
		}
	default:
		ordered = make([]core.Transaction, 0, len(records))
		for _, t := range records {
			if preds.Match(t) {
				ordered = append(ordered, t)
			}
		}
	}
	slices.SortStableFunc(ordered, comparator(key, o))

	return Result{Ordered: ordered, Totals: Sum(ordered)}, nil
}

// Sum totals expense and income amounts over records.
func Sum(records []core.Transaction) Totals {
	tot := Totals{Expense: decimal.Zero, Income: decimal.Zero, Count: len(records)}
	for _, t := range records {
		switch t.Kind {
		case core.Expense:
			tot.Expense = tot.Expense.Add(t.Amount)
		case core.Income:
			tot.Income = tot.Income.Add(t.Amount)
		}
	}
	tot.Net = tot.Income.Sub(tot.Expense)
	return tot
}

func comparator(key SortKey, o options) func(a, b core.Transaction) int {
	switch key {
	case SortDateAsc:
		return func(a, b core.Transaction) int { return a.Date.Compare(b.Date) }
	case SortAmountDesc:
		return func(a, b core.Transaction) int { return b.Amount.Cmp(a.Amount) }
	case SortAmountAsc:
		return func(a, b core.Transaction) int { return a.Amount.Cmp(b.Amount) }
	case SortCategory:
		if o.codePoint {
			return func(a, b core.Transaction) int { return cmp.Compare(a.Category, b.Category) }
		}
		// Collator keeps internal buffers, so each query gets its own.
		col := collate.New(o.lang)
		return func(a, b core.Transaction) int { return col.CompareString(a.Category, b.Category) }
	default:
		return func(a, b core.Transaction) int { return b.Date.Compare(a.Date) }
	}
}
