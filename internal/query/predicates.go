package query

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"spendlens/internal/core"
)

// All bypasses the category and kind selectors.
const All = "all"

// FilterSpec holds the user-chosen criteria. Every field is optional and the
// zero value matches every transaction.
type FilterSpec struct {
	Search      string              `json:"search,omitempty"`
	Category    string              `json:"category,omitempty"`
	Kind        string              `json:"type,omitempty"`
	TimeRange   TimeRange           `json:"range,omitempty"`
	CustomStart string              `json:"start,omitempty"`
	CustomEnd   string              `json:"end,omitempty"`
	Min         decimal.NullDecimal `json:"min"`
	Max         decimal.NullDecimal `json:"max"`
	SortBy      SortKey             `json:"sort,omitempty"`
}

// Predicate is a pure inclusion test over one transaction.
type Predicate func(core.Transaction) bool

// Predicates is the AND-combination built from a FilterSpec.
type Predicates struct {
	Window Window
	preds  []Predicate
}

// Match reports whether t satisfies every predicate.
func (p Predicates) Match(t core.Transaction) bool {
	for _, pred := range p.preds {
		if !pred(t) {
			return false
		}
	}
	return true
}

// Len is the number of active predicates.
func (p Predicates) Len() int { return len(p.preds) }

// BuildPredicates turns spec into its predicates. Only an unrecognized time
// range selector is an error; absent or blank fields add no predicate.
func BuildPredicates(spec FilterSpec, now time.Time) (Predicates, error) {
	window, err := ResolveTimeWindow(spec.TimeRange, spec.CustomStart, spec.CustomEnd, now)
	if err != nil {
		return Predicates{}, err
	}

	p := Predicates{Window: window}
	if term := strings.TrimSpace(spec.Search); term != "" {
		p.preds = append(p.preds, SearchPredicate(term))
	}
	if c := spec.Category; c != "" && c != All {
		p.preds = append(p.preds, CategoryPredicate(c))
	}
	if k := spec.Kind; k != "" && k != All {
		p.preds = append(p.preds, KindPredicate(core.Kind(k)))
	}
	if spec.Min.Valid || spec.Max.Valid {
		p.preds = append(p.preds, AmountPredicate(spec.Min, spec.Max))
	}
	if !window.Unbounded() {
		p.preds = append(p.preds, WindowPredicate(window))
	}
	return p, nil
}

// SearchPredicate matches term case-insensitively against the description,
// category and notes.
func SearchPredicate(term string) Predicate {
	needle := strings.ToLower(term)
	return func(t core.Transaction) bool {
		return strings.Contains(strings.ToLower(t.Description), needle) ||
			strings.Contains(strings.ToLower(t.Category), needle) ||
			strings.Contains(strings.ToLower(t.Notes), needle)
	}
}

func CategoryPredicate(category string) Predicate {
	return func(t core.Transaction) bool { return t.Category == category }
}

func KindPredicate(kind core.Kind) Predicate {
	return func(t core.Transaction) bool { return t.Kind == kind }
}

// AmountPredicate keeps amounts in [min, max]. With min > max nothing passes.
func AmountPredicate(min, max decimal.NullDecimal) Predicate {
	return func(t core.Transaction) bool {
		if min.Valid && t.Amount.LessThan(min.Decimal) {
			return false
		}
		if max.Valid && t.Amount.GreaterThan(max.Decimal) {
			return false
		}
		return true
	}
}

func WindowPredicate(w Window) Predicate {
	return func(t core.Transaction) bool { return w.Contains(t.Date) }
}
